package parser

import "strings"

// Client is a coarse description of the software behind a User-Agent header.
type Client struct {
	OS      string `json:"os"`
	Browser string `json:"browser"`
}

func (c Client) String() string {
	return c.Browser + " on " + c.OS
}

func ParseUserAgent(ua string) Client {
	uaLower := strings.ToLower(ua)
	var c Client

	switch {
	case strings.Contains(uaLower, "android"):
		c.OS = "Android"
	case strings.Contains(uaLower, "iphone") || strings.Contains(uaLower, "ipad"):
		c.OS = "iOS"
	case strings.Contains(uaLower, "windows"):
		c.OS = "Windows"
	case strings.Contains(uaLower, "mac os"):
		c.OS = "macOS"
	case strings.Contains(uaLower, "linux"):
		c.OS = "Linux"
	default:
		c.OS = "Unknown"
	}

	switch {
	case strings.Contains(uaLower, "edg"):
		c.Browser = "Edge"
	case strings.Contains(uaLower, "chrome"):
		c.Browser = "Chrome"
	case strings.Contains(uaLower, "firefox"):
		c.Browser = "Firefox"
	case strings.Contains(uaLower, "safari"):
		c.Browser = "Safari"
	case strings.HasPrefix(uaLower, "curl/"):
		c.Browser = "curl"
	default:
		c.Browser = "Unknown"
	}

	return c
}
