package dto

import "github.com/spec-kit/crm-service/internal/domain"

// CreateMemberRequest payload for a manager creating a member.
type CreateMemberRequest struct {
	Name          string            `json:"name" validate:"required"`
	TeamID        string            `json:"teamId" validate:"required"`
	Username      string            `json:"username" validate:"min=4"`
	CountryCode   string            `json:"countryCode" validate:"countrycode"`
	PhoneNumber   string            `json:"phoneNumber" validate:"len=10,number"`
	Email         string            `json:"email" validate:"email"`
	Password      string            `json:"password" validate:"min=8,max=30"`
	CrmAccess     bool              `json:"crmAccess"`
	ModifyMember  bool              `json:"modifyMember"`
	SkipCall      bool              `json:"skipCall"`
	AllListAccess bool              `json:"allListAccess"`
	MemberRole    domain.MemberRole `json:"memberRole" validate:"oneof=manager agent"`
}

// UpdateMemberRequest is a partial update; absent fields are unchanged.
type UpdateMemberRequest struct {
	Name          *string            `json:"name" validate:"omitempty,min=1"`
	Password      *string            `json:"password" validate:"omitempty,min=8,max=30"`
	CrmAccess     *bool              `json:"crmAccess"`
	ModifyMember  *bool              `json:"modifyMember"`
	SkipCall      *bool              `json:"skipCall"`
	AllListAccess *bool              `json:"allListAccess"`
	MemberRole    *domain.MemberRole `json:"memberRole" validate:"omitempty,oneof=manager agent"`
}
