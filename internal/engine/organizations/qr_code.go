package organizations

import (
	"errors"
	"strings"

	"github.com/skip2/go-qrcode"
)

var errInvalidSize = errors.New("must be between 128 and 2048")

// ShareURL is the public page where members join and ask questions.
func ShareURL(appDomain, uniqueURL string) string {
	return strings.TrimRight(appDomain, "/") + "/org/" + uniqueURL
}

func GenerateQRCode(content string, size int) ([]byte, error) {
	if size == 0 {
		size = 512
	}

	if size < 128 || size > 2048 {
		return nil, errInvalidSize
	}

	qr, err := qrcode.New(content, qrcode.Medium)
	if err != nil {
		return nil, err
	}

	return qr.PNG(size)
}
