package models

// Timestamps are Unix milliseconds.

type User struct {
	ID            string   `json:"id"`
	Username      string   `json:"username"`
	Email         string   `json:"email"`
	PasswordHash  string   `json:"-"`
	IsCreator     bool     `json:"isCreator"`
	Organizations []string `json:"organizations"` // insertion order
	CreatedAt     int64    `json:"createdAt"`
	UpdatedAt     int64    `json:"updatedAt"`
}

const DefaultCooldownTime int64 = 60000

type Organization struct {
	ID                 string   `json:"id"`
	Name               string   `json:"name"`
	OwnerID            string   `json:"owner"`
	UniqueURL          string   `json:"uniqueUrl"`
	AllowMessages      bool     `json:"allowMessages"`
	CooldownTime       int64    `json:"cooldownTime"` // milliseconds
	OneQuestionPerUser bool     `json:"oneQuestionPerUser"`
	Members            []string `json:"members"` // insertion order
	CreatedAt          int64    `json:"createdAt"`
	UpdatedAt          int64    `json:"updatedAt"`
}

func (o *Organization) IsOwner(userID string) bool {
	return o.OwnerID == userID
}

func (o *Organization) HasMember(userID string) bool {
	for _, id := range o.Members {
		if id == userID {
			return true
		}
	}
	return false
}
