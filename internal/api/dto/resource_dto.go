package dto

import "github.com/spec-kit/crm-service/internal/domain"

// CreateTeamRequest payload.
type CreateTeamRequest struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
}

// UpdateTeamRequest requires at least one of name or description.
type UpdateTeamRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=1"`
	Description *string `json:"description"`
}

// ListNameRequest is the payload for creating and renaming lists.
type ListNameRequest struct {
	Name string `json:"name" validate:"required"`
}

// CreateContactRequest payload.
type CreateContactRequest struct {
	PrimaryCountryCode     string              `json:"primaryCountryCode" validate:"countrycode"`
	PrimaryContactNumber   string              `json:"primaryContactNumber" validate:"len=10,number"`
	SecondaryCountryCode   string              `json:"secondaryCountryCode" validate:"omitempty,countrycode"`
	SecondaryContactNumber string              `json:"secondaryContactNumber" validate:"omitempty,len=10,number"`
	Name                   string              `json:"name"`
	Email                  string              `json:"email"`
	Company                string              `json:"company"`
	Disposition            *domain.Disposition `json:"disposition" validate:"omitempty,disposition"`
	Extra                  string              `json:"extra"`
	Remarks                string              `json:"remarks"`
	Note                   string              `json:"note"`
}

// Secondary returns the optional secondary phone.
func (r CreateContactRequest) Secondary() *domain.Phone {
	return secondaryPhone(r.SecondaryCountryCode, r.SecondaryContactNumber)
}

// UpdateContactRequest is a partial update. The primary phone cannot change.
// A secondary country code and number must be sent together.
type UpdateContactRequest struct {
	SecondaryCountryCode   string              `json:"secondaryCountryCode" validate:"omitempty,countrycode"`
	SecondaryContactNumber string              `json:"secondaryContactNumber" validate:"omitempty,len=10,number"`
	Name                   *string             `json:"name"`
	Email                  *string             `json:"email"`
	Company                *string             `json:"company"`
	Disposition            *domain.Disposition `json:"disposition" validate:"omitempty,disposition"`
	Extra                  *string             `json:"extra"`
	Remarks                *string             `json:"remarks"`
	Note                   *string             `json:"note"`
}

// Secondary returns the secondary phone when one is being set.
func (r UpdateContactRequest) Secondary() *domain.Phone {
	return secondaryPhone(r.SecondaryCountryCode, r.SecondaryContactNumber)
}

func secondaryPhone(countryCode, number string) *domain.Phone {
	if number == "" {
		return nil
	}
	return &domain.Phone{CountryCode: countryCode, Number: number}
}
