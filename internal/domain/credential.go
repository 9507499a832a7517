package domain

import "time"

// Credentials is an access-key/secret pair owned by exactly one user.
// SecretAccessKey is populated only when the pair is first created; reads
// return the access key id and creation date only.
type Credentials struct {
	AccessKeyID     string
	SecretAccessKey string
	UserID          string
	CreatedAt       time.Time
}
