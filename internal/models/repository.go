package models

import (
	"strings"
	"time"
)

// Repository is a registered source repository and its webhook bookkeeping.
type Repository struct {
	FullName      string    `json:"fullName" bson:"fullName" db:"full_name"`
	Owner         string    `json:"owner" bson:"owner" db:"owner"`
	Name          string    `json:"name" bson:"name" db:"name"`
	WebhookSecret string    `json:"-" bson:"webhookSecret" db:"webhook_secret"`
	WebhookID     int64     `json:"webhookId" bson:"webhookId" db:"webhook_id"`
	CreatedAt     time.Time `json:"createdAt" bson:"createdAt" db:"created_at"`
	UpdatedAt     time.Time `json:"updatedAt" bson:"updatedAt" db:"updated_at"`
}

// FullRepoName joins owner and name as owner/name.
func FullRepoName(owner, name string) string {
	return owner + "/" + name
}

// SplitRepoName splits owner/name. ok is false unless both halves are
// non-empty and there is exactly one slash.
func SplitRepoName(fullName string) (owner, name string, ok bool) {
	owner, name, found := strings.Cut(fullName, "/")
	if !found || owner == "" || name == "" || strings.Contains(name, "/") {
		return "", "", false
	}
	return owner, name, true
}
