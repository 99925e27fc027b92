package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/crm-service/internal/api/dto"
	"github.com/spec-kit/crm-service/internal/domain"
	"github.com/spec-kit/crm-service/internal/service"
)

// AuthAPI is the auth service surface used by AuthHandler.
type AuthAPI interface {
	Signup(ctx context.Context, in service.SignupInput) (*domain.Identity, error)
	PasswordSignin(ctx context.Context, creds service.Credentials) (domain.TokenPair, error)
	RequestOTPSignin(ctx context.Context, phone domain.Phone) (string, error)
	VerifyOTPSignin(ctx context.Context, phone domain.Phone, code string) (domain.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (string, error)
	Signout(ctx context.Context, refreshToken string) error
	IsUsernameAvailable(ctx context.Context, username string) (bool, error)
}

// AuthHandler exposes signup, signin and session endpoints.
type AuthHandler struct {
	auth AuthAPI
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService AuthAPI) *AuthHandler {
	return &AuthHandler{auth: authService}
}

// Signup handles POST /auth/signup.
func (h *AuthHandler) Signup(c *fiber.Ctx) error {
	var req dto.SignupRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	identity, err := h.auth.Signup(c.UserContext(), service.SignupInput{
		Name:     req.Name,
		Username: req.Username,
		Email:    req.Email,
		Phone:    domain.Phone{CountryCode: req.CountryCode, Number: req.PhoneNumber},
		Password: req.Password,
		Company:  req.Company,
	})
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusCreated, dto.NewIdentityResponse(identity))
}

// Signin handles POST /auth/signin.
func (h *AuthHandler) Signin(c *fiber.Ctx) error {
	var req dto.SigninRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	pair, err := h.auth.PasswordSignin(c.UserContext(), service.Credentials{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, dto.NewTokenResponse(pair))
}

// SendOTP handles POST /auth/sendOTPToSignin.
func (h *AuthHandler) SendOTP(c *fiber.Ctx) error {
	var req dto.SendOTPRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	message, err := h.auth.RequestOTPSignin(c.UserContext(), domain.Phone{CountryCode: req.CountryCode, Number: req.PhoneNumber})
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, fiber.Map{"message": message})
}

// VerifyOTP handles POST /auth/verifyOtpAndSignin.
func (h *AuthHandler) VerifyOTP(c *fiber.Ctx) error {
	var req dto.VerifyOTPRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	pair, err := h.auth.VerifyOTPSignin(c.UserContext(), domain.Phone{CountryCode: req.CountryCode, Number: req.PhoneNumber}, req.OTP)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, dto.NewTokenResponse(pair))
}

// Refresh handles POST /auth/refreshToken.
func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	var req dto.RefreshTokenRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	accessToken, err := h.auth.Refresh(c.UserContext(), req.RefreshToken)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, dto.AccessTokenResponse{AccessToken: accessToken})
}

// Signout handles DELETE /auth/signout.
func (h *AuthHandler) Signout(c *fiber.Ctx) error {
	var req dto.RefreshTokenRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	if err := h.auth.Signout(c.UserContext(), req.RefreshToken); err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, nil)
}

// UsernameAvailable handles GET /member/username/isAvailable/:username.
func (h *AuthHandler) UsernameAvailable(c *fiber.Ctx) error {
	available, err := h.auth.IsUsernameAvailable(c.UserContext(), c.Params("username"))
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, fiber.Map{"isAvailable": available})
}
