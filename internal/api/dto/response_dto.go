package dto

import (
	"time"

	"github.com/spec-kit/crm-service/internal/domain"
)

// TokenResponse is returned by both signin flows.
type TokenResponse struct {
	AccessToken      string    `json:"accessToken"`
	RefreshToken     string    `json:"refreshToken"`
	AccessExpiresAt  time.Time `json:"accessExpiresAt"`
	RefreshExpiresAt time.Time `json:"refreshExpiresAt"`
}

func NewTokenResponse(pair domain.TokenPair) TokenResponse {
	return TokenResponse{
		AccessToken:      pair.AccessToken,
		RefreshToken:     pair.RefreshToken,
		AccessExpiresAt:  pair.AccessExpiresAt,
		RefreshExpiresAt: pair.RefreshExpiresAt,
	}
}

// AccessTokenResponse is returned by refresh.
type AccessTokenResponse struct {
	AccessToken string `json:"accessToken"`
}

// IdentityResponse is the public view of an identity. The password hash never leaves the service.
type IdentityResponse struct {
	ID                    string    `json:"id"`
	CreatorID             *string   `json:"creatorId,omitempty"`
	Name                  string    `json:"name"`
	Username              string    `json:"username"`
	Email                 string    `json:"email"`
	CountryCode           string    `json:"countryCode"`
	PhoneNumber           string    `json:"phoneNumber"`
	IsPhoneNumberVerified bool      `json:"isPhoneNumberVerified"`
	IsEmailVerified       bool      `json:"isEmailVerified"`
	Status                string    `json:"status"`
	Roles                 []string  `json:"roles"`
	CrmAccess             bool      `json:"crmAccess"`
	ModifyMember          bool      `json:"modifyMember"`
	SkipCall              bool      `json:"skipCall"`
	AllListAccess         bool      `json:"allListAccess"`
	MemberRole            string    `json:"memberRole"`
	CreatedAt             time.Time `json:"createdAt"`
	UpdatedAt             time.Time `json:"updatedAt"`
}

func NewIdentityResponse(identity *domain.Identity) IdentityResponse {
	roles := make([]string, 0, len(identity.Roles))
	for _, role := range identity.Roles {
		roles = append(roles, string(role))
	}
	return IdentityResponse{
		ID:                    identity.ID,
		CreatorID:             identity.CreatorID,
		Name:                  identity.Name,
		Username:              identity.Username,
		Email:                 identity.Email,
		CountryCode:           identity.Phone.CountryCode,
		PhoneNumber:           identity.Phone.Number,
		IsPhoneNumberVerified: identity.IsPhoneNumberVerified,
		IsEmailVerified:       identity.IsEmailVerified,
		Status:                string(identity.Status),
		Roles:                 roles,
		CrmAccess:             identity.Capabilities.CrmAccess,
		ModifyMember:          identity.Capabilities.ModifyMember,
		SkipCall:              identity.Capabilities.SkipCall,
		AllListAccess:         identity.Capabilities.AllListAccess,
		MemberRole:            string(identity.MemberRole),
		CreatedAt:             identity.CreatedAt,
		UpdatedAt:             identity.UpdatedAt,
	}
}

func NewIdentityResponses(identities []domain.Identity) []IdentityResponse {
	out := make([]IdentityResponse, 0, len(identities))
	for i := range identities {
		out = append(out, NewIdentityResponse(&identities[i]))
	}
	return out
}

// TeamResponse is the public view of a team.
type TeamResponse struct {
	ID          string    `json:"id"`
	CreatorID   string    `json:"creatorId"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	MemberIDs   []string  `json:"memberIds"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func NewTeamResponse(team *domain.Team) TeamResponse {
	return TeamResponse{
		ID:          team.ID,
		CreatorID:   team.CreatorID,
		Name:        team.Name,
		Description: team.Description,
		MemberIDs:   nonNil(team.MemberIDs),
		CreatedAt:   team.CreatedAt,
		UpdatedAt:   team.UpdatedAt,
	}
}

func NewTeamResponses(teams []domain.Team) []TeamResponse {
	out := make([]TeamResponse, 0, len(teams))
	for i := range teams {
		out = append(out, NewTeamResponse(&teams[i]))
	}
	return out
}

// ListResponse is the public view of a list.
type ListResponse struct {
	ID        string    `json:"id"`
	CreatorID string    `json:"creatorId"`
	Name      string    `json:"name"`
	MemberIDs []string  `json:"memberIds"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func NewListResponse(list *domain.List) ListResponse {
	return ListResponse{
		ID:        list.ID,
		CreatorID: list.CreatorID,
		Name:      list.Name,
		MemberIDs: nonNil(list.MemberIDs),
		CreatedAt: list.CreatedAt,
		UpdatedAt: list.UpdatedAt,
	}
}

func NewListResponses(lists []domain.List) []ListResponse {
	out := make([]ListResponse, 0, len(lists))
	for i := range lists {
		out = append(out, NewListResponse(&lists[i]))
	}
	return out
}

// ContactResponse is the public view of a contact.
type ContactResponse struct {
	ID                     string    `json:"id"`
	ListID                 string    `json:"listId"`
	PrimaryCountryCode     string    `json:"primaryCountryCode"`
	PrimaryContactNumber   string    `json:"primaryContactNumber"`
	SecondaryCountryCode   string    `json:"secondaryCountryCode,omitempty"`
	SecondaryContactNumber string    `json:"secondaryContactNumber,omitempty"`
	Name                   string    `json:"name"`
	Email                  string    `json:"email"`
	Company                string    `json:"company"`
	Disposition            string    `json:"disposition"`
	Extra                  string    `json:"extra"`
	Remarks                string    `json:"remarks"`
	Note                   string    `json:"note"`
	CreatedAt              time.Time `json:"createdAt"`
	UpdatedAt              time.Time `json:"updatedAt"`
}

func NewContactResponse(contact *domain.Contact) ContactResponse {
	resp := ContactResponse{
		ID:                   contact.ID,
		ListID:               contact.ListID,
		PrimaryCountryCode:   contact.Primary.CountryCode,
		PrimaryContactNumber: contact.Primary.Number,
		Name:                 contact.Name,
		Email:                contact.Email,
		Company:              contact.Company,
		Disposition:          string(contact.Disposition),
		Extra:                contact.Extra,
		Remarks:              contact.Remarks,
		Note:                 contact.Note,
		CreatedAt:            contact.CreatedAt,
		UpdatedAt:            contact.UpdatedAt,
	}
	if contact.Secondary != nil {
		resp.SecondaryCountryCode = contact.Secondary.CountryCode
		resp.SecondaryContactNumber = contact.Secondary.Number
	}
	return resp
}

func NewContactResponses(contacts []domain.Contact) []ContactResponse {
	out := make([]ContactResponse, 0, len(contacts))
	for i := range contacts {
		out = append(out, NewContactResponse(&contacts[i]))
	}
	return out
}

func nonNil(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}
