package domain

import "time"

// List is a shared collection of contacts.
type List struct {
	ID        string
	CreatorID string
	Name      string
	MemberIDs []string
	CreatedAt time.Time
	UpdatedAt time.Time
}
