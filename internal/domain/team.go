package domain

import "time"

// Team groups identities under a single creator.
type Team struct {
	ID          string
	CreatorID   string
	Name        string
	Description string
	MemberIDs   []string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
