// Package access decides who may touch shared resources.
//
// A resource is accessible to its creator and to every registered member. Contacts
// inherit access from the list that holds them.
package access

import (
	"fmt"

	"github.com/spec-kit/crm-service/internal/domain"
	apperrors "github.com/spec-kit/crm-service/pkg/util/errorutil"
)

// Kind names a resource type in error messages.
type Kind string

const (
	KindTeam   Kind = "team"
	KindList   Kind = "list"
	KindMember Kind = "member"
)

// Grant is the creator and membership set of a resource.
type Grant struct {
	CreatorID string
	MemberIDs []string
}

// Resource is anything protected by a Grant.
type Resource interface {
	AccessGrant() Grant
	AccessKind() Kind
}

// Team adapts a domain team to Resource.
type Team struct{ *domain.Team }

func (t Team) AccessGrant() Grant { return Grant{CreatorID: t.CreatorID, MemberIDs: t.MemberIDs} }
func (t Team) AccessKind() Kind   { return KindTeam }

// List adapts a domain list to Resource.
type List struct{ *domain.List }

func (l List) AccessGrant() Grant { return Grant{CreatorID: l.CreatorID, MemberIDs: l.MemberIDs} }
func (l List) AccessKind() Kind   { return KindList }

// Policy is stateless; the zero value is ready to use.
type Policy struct{}

// CanAccess reports whether identityID created r or is registered on it.
func (Policy) CanAccess(identityID string, r Resource) bool {
	if identityID == "" || r == nil {
		return false
	}
	grant := r.AccessGrant()
	if grant.CreatorID == identityID {
		return true
	}
	for _, id := range grant.MemberIDs {
		if id == identityID {
			return true
		}
	}
	return false
}

// Authorize is CanAccess as an error. Denials look exactly like unknown ids.
func (p Policy) Authorize(identityID string, r Resource) error {
	if p.CanAccess(identityID, r) {
		return nil
	}
	return InvalidID(r.AccessKind())
}

// IsCreator reports whether identityID created r.
func (Policy) IsCreator(identityID string, r Resource) bool {
	return r != nil && identityID != "" && r.AccessGrant().CreatorID == identityID
}

// CanAccessContact reports whether identityID may touch contact through list.
func (p Policy) CanAccessContact(identityID string, list *domain.List, contact *domain.Contact) bool {
	if list == nil || contact == nil || contact.ListID != list.ID {
		return false
	}
	return p.CanAccess(identityID, List{list})
}

// CanManageMember reports whether managerID created member.
func (Policy) CanManageMember(managerID string, member *domain.Identity) bool {
	return member != nil && member.CreatedBy(managerID)
}

// InvalidID is the BadRequest returned for inaccessible or unknown resources of kind.
func InvalidID(kind Kind) error {
	return apperrors.NewBadRequest(fmt.Sprintf("invalid %s id", kind))
}
