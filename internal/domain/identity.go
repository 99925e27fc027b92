package domain

import "time"

// IdentityStatus represents lifecycle states for an identity.
type IdentityStatus string

const (
	IdentityStatusActive    IdentityStatus = "active"
	IdentityStatusSuspended IdentityStatus = "suspended"
)

// Role is a global role granted to an identity.
type Role string

const (
	RoleUser       Role = "user"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "super_admin"
)

// MemberRole distinguishes managers from the agents they create.
type MemberRole string

const (
	MemberRoleManager MemberRole = "manager"
	MemberRoleAgent   MemberRole = "agent"
)

// Valid reports whether r is a known member role.
func (r MemberRole) Valid() bool {
	return r == MemberRoleManager || r == MemberRoleAgent
}

// Phone is a country code plus national number.
type Phone struct {
	CountryCode string
	Number      string
}

// String renders the phone as countryCode followed by number.
func (p Phone) String() string {
	return p.CountryCode + p.Number
}

// Capabilities are the per-identity feature flags.
type Capabilities struct {
	CrmAccess     bool
	ModifyMember  bool
	SkipCall      bool
	AllListAccess bool
}

// DefaultCapabilities is granted to self-registered identities.
func DefaultCapabilities() Capabilities {
	return Capabilities{CrmAccess: true, ModifyMember: true, SkipCall: true, AllListAccess: true}
}

// AgentCeiling clears the flags an agent may never hold.
func (c Capabilities) AgentCeiling() Capabilities {
	c.CrmAccess = false
	c.ModifyMember = false
	c.AllListAccess = false
	return c
}

// Identity is an authenticated principal: a manager who signed up or a member created by one.
type Identity struct {
	ID                    string
	CreatorID             *string
	Name                  string
	Username              string
	Email                 string
	Phone                 Phone
	PasswordHash          string
	IsPhoneNumberVerified bool
	IsEmailVerified       bool
	Status                IdentityStatus
	Roles                 []Role
	Capabilities          Capabilities
	MemberRole            MemberRole
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// HasRole reports whether the identity holds role.
func (i *Identity) HasRole(role Role) bool {
	for _, r := range i.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// IsElevated reports whether the identity holds a global admin role.
func (i *Identity) IsElevated() bool {
	return i.HasRole(RoleAdmin) || i.HasRole(RoleSuperAdmin)
}

// IsSuspended reports whether the identity has been suspended.
func (i *Identity) IsSuspended() bool {
	return i.Status == IdentityStatusSuspended
}

// CreatedBy reports whether creatorID created this identity.
func (i *Identity) CreatedBy(creatorID string) bool {
	return i.CreatorID != nil && *i.CreatorID == creatorID
}
