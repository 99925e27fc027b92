package dto

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/spec-kit/crm-service/internal/domain"
)

func TestCountryCodes(t *testing.T) {
	v := NewValidator()
	for code, ok := range map[string]bool{
		"+91":   true,
		"91":    true,
		"+1":    true,
		"1234":  true,
		"+1234": false,
		"12345": false,
		"":      false,
		"+9a":   false,
	} {
		errs := v.Validate(SendOTPRequest{CountryCode: code, PhoneNumber: "9876543210"})
		require.Equal(t, ok, len(errs) == 0, code)
	}
}

func TestPhoneNumbers(t *testing.T) {
	v := NewValidator()
	require.Empty(t, v.Validate(SendOTPRequest{CountryCode: "+91", PhoneNumber: "9876543210"}))
	for _, number := range []string{"", "987654321", "98765432100", "98765x3210"} {
		require.Equal(t, []string{"Invalid Phone Number"},
			v.Validate(SendOTPRequest{CountryCode: "+91", PhoneNumber: number}), number)
	}
}

func TestPasswordBounds(t *testing.T) {
	v := NewValidator()
	valid := SigninRequest{Username: "asha", Password: strings.Repeat("x", 8)}
	require.Empty(t, v.Validate(valid))

	valid.Password = strings.Repeat("x", 30)
	require.Empty(t, v.Validate(valid))

	valid.Password = strings.Repeat("x", 31)
	require.Equal(t, []string{"password is too long"}, v.Validate(valid))

	valid.Password = "short"
	require.Equal(t, []string{"password is too short"}, v.Validate(&valid))
}

func TestSigninIdentifier(t *testing.T) {
	v := NewValidator()
	require.Equal(t, []string{"Invalid username length"}, v.Validate(SigninRequest{Username: "abc", Password: "password123"}))
	require.Equal(t, []string{"email must be an email"}, v.Validate(SigninRequest{Email: "asha", Password: "password123"}))
	require.Equal(t, []string{"username or email is required"}, v.Validate(SigninRequest{Password: "password123"}))
	require.Equal(t, []string{"provide either username or email, not both"},
		v.Validate(SigninRequest{Username: "asha", Email: "asha@example.com", Password: "password123"}))
}

func TestVerifyOTPLength(t *testing.T) {
	v := NewValidator()
	req := VerifyOTPRequest{CountryCode: "+91", PhoneNumber: "9876543210", OTP: "12345"}
	require.Equal(t, []string{"Invalid OTP"}, v.Validate(req))

	req.OTP = "123456"
	require.Empty(t, v.Validate(req))
}

func TestSignupMessages(t *testing.T) {
	errs := NewValidator().Validate(SignupRequest{Username: "asha", CountryCode: "+91", PhoneNumber: "9876543210", Email: "asha@example.com", Password: "password123"})
	require.Equal(t, []string{"name should not be empty"}, errs)
}

func TestUpdateRequests(t *testing.T) {
	v := NewValidator()
	require.Empty(t, v.Validate(UpdateMemberRequest{}))

	short := "short"
	role := domain.MemberRole("owner")
	require.Equal(t, []string{
		"password is too short",
		"memberRole must be one of: manager, agent",
	}, v.Validate(UpdateMemberRequest{Password: &short, MemberRole: &role}))

	empty := ""
	require.Equal(t, []string{"name should not be empty"}, v.Validate(UpdateMemberRequest{Name: &empty}))

	require.Equal(t, []string{"name or description is required"}, v.Validate(UpdateTeamRequest{}))
	description := "north region"
	require.Empty(t, v.Validate(UpdateTeamRequest{Description: &description}))
}

func TestCreateMemberRole(t *testing.T) {
	v := NewValidator()
	req := CreateMemberRequest{
		Name: "Ravi", TeamID: "team-1", Username: "ravi", CountryCode: "+91",
		PhoneNumber: "9876500000", Email: "ravi@example.com", Password: "password123",
	}
	require.Equal(t, []string{"memberRole must be one of: manager, agent"}, v.Validate(req))

	req.MemberRole = domain.MemberRoleAgent
	require.Empty(t, v.Validate(req))
}

func TestContactDisposition(t *testing.T) {
	v := NewValidator()
	bogus := domain.Disposition("Maybe")
	require.Equal(t, []string{"invalid disposition"}, v.Validate(UpdateContactRequest{Disposition: &bogus}))

	valid := domain.DispositionNew
	require.Empty(t, v.Validate(UpdateContactRequest{Disposition: &valid}))
}

func TestSecondaryPhoneTravelsTogether(t *testing.T) {
	v := NewValidator()
	base := CreateContactRequest{PrimaryCountryCode: "+91", PrimaryContactNumber: "9555555555"}

	withCode := base
	withCode.SecondaryCountryCode = "+91"
	require.Equal(t, []string{"secondaryContactNumber is required with secondaryCountryCode"}, v.Validate(withCode))

	withNumber := base
	withNumber.SecondaryContactNumber = "9444444444"
	require.Equal(t, []string{"Invalid country code"}, v.Validate(withNumber))

	both := withNumber
	both.SecondaryCountryCode = "+91"
	require.Empty(t, v.Validate(both))

	require.Equal(t, []string{"secondaryContactNumber is required with secondaryCountryCode"},
		v.Validate(UpdateContactRequest{SecondaryCountryCode: "+44"}))
}

func TestSecondaryPhone(t *testing.T) {
	require.Nil(t, CreateContactRequest{SecondaryCountryCode: "+91"}.Secondary())
	require.Equal(t, &domain.Phone{CountryCode: "+91", Number: "9444444444"},
		UpdateContactRequest{SecondaryCountryCode: "+91", SecondaryContactNumber: "9444444444"}.Secondary())
}

func TestIdentityResponseOmitsSecrets(t *testing.T) {
	resp := NewIdentityResponse(&domain.Identity{
		ID:           "identity-1",
		PasswordHash: "hash",
		Roles:        []domain.Role{domain.RoleUser},
		Capabilities: domain.Capabilities{SkipCall: true},
		MemberRole:   domain.MemberRoleAgent,
	})
	require.Equal(t, []string{"user"}, resp.Roles)
	require.True(t, resp.SkipCall)
	require.Equal(t, "agent", resp.MemberRole)
	require.Equal(t, []string{}, NewTeamResponse(&domain.Team{}).MemberIDs)
}
