package domain

import "time"

// User is the domain model for account holders. User ids are the subject ids
// carried in issued tokens.
type User struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
