package service

import (
	"context"
	"crypto/subtle"
	"errors"

	"go.uber.org/zap"

	"github.com/spec-kit/crm-service/internal/auth"
	"github.com/spec-kit/crm-service/internal/config"
	"github.com/spec-kit/crm-service/internal/domain"
	"github.com/spec-kit/crm-service/internal/events"
	"github.com/spec-kit/crm-service/internal/observability"
	"github.com/spec-kit/crm-service/internal/otp"
	"github.com/spec-kit/crm-service/internal/repository"
	"github.com/spec-kit/crm-service/internal/session"
	apperrors "github.com/spec-kit/crm-service/pkg/util/errorutil"
)

// Signin methods recorded on events.
const (
	SigninMethodPassword = "password"
	SigninMethodOTP      = "otp"
)

// SignupInput is a self-registration request.
type SignupInput struct {
	Name     string
	Username string
	Email    string
	Phone    domain.Phone
	Password string
	// Company, when set, names a default team created for the new identity.
	Company string
}

// Credentials identify an identity by exactly one of Username or Email.
type Credentials struct {
	Username string
	Email    string
	Password string
}

// AuthService coordinates signup, both signin flows and the refresh session lifecycle.
type AuthService struct {
	identities repository.IdentityRepository
	sessions   session.Store
	otp        *otp.Flow
	tokens     *auth.TokenIssuer
	metrics    *observability.Metrics
	logger     *zap.Logger
	events     publisher
	bcryptCost int
}

// AuthDependencies encapsulates collaborators for the auth service.
type AuthDependencies struct {
	Identities repository.IdentityRepository
	Sessions   session.Store
	OTP        *otp.Flow
	Tokens     *auth.TokenIssuer
	Dispatcher events.Dispatcher
	Metrics    *observability.Metrics
	Logger     *zap.Logger
}

// NewAuthService builds the service.
func NewAuthService(cfg config.AuthConfig, deps AuthDependencies) *AuthService {
	return &AuthService{
		identities: deps.Identities,
		sessions:   deps.Sessions,
		otp:        deps.OTP,
		tokens:     deps.Tokens,
		metrics:    deps.Metrics,
		logger:     deps.Logger,
		events:     publisher{dispatcher: deps.Dispatcher, logger: deps.Logger},
		bcryptCost: cfg.BcryptCost,
	}
}

// Signup creates a manager identity and, when a company is given, its default team.
func (s *AuthService) Signup(ctx context.Context, in SignupInput) (_ *domain.Identity, err error) {
	ctx, span := observability.StartSpan(ctx, "auth.signup")
	defer func() {
		observability.EndSpan(span, err)
		s.metrics.RecordAuthEvent("signup", err)
	}()

	hash, err := auth.HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	identity := &domain.Identity{
		Name:         in.Name,
		Username:     in.Username,
		Email:        in.Email,
		Phone:        in.Phone,
		PasswordHash: hash,
		Status:       domain.IdentityStatusActive,
		Roles:        []domain.Role{domain.RoleUser},
		Capabilities: domain.DefaultCapabilities(),
		MemberRole:   domain.MemberRoleManager,
	}
	if in.Company == "" {
		err = s.identities.Create(ctx, identity)
	} else {
		err = s.identities.CreateWithTeam(ctx, identity, &domain.Team{Name: in.Company})
	}
	if err != nil {
		return nil, mapWriteError(err)
	}

	s.events.publish(ctx, events.New(events.EventIdentitySignedUp, identity.ID, "", nil))
	return identity, nil
}

// PasswordSignin checks credentials and starts a session. An unknown identifier and a
// wrong password fail identically.
func (s *AuthService) PasswordSignin(ctx context.Context, creds Credentials) (_ domain.TokenPair, err error) {
	ctx, span := observability.StartSpan(ctx, "auth.password_signin")
	defer func() {
		observability.EndSpan(span, err)
		s.metrics.RecordAuthEvent("signin", err)
	}()

	var identity *domain.Identity
	if creds.Username != "" {
		identity, err = s.identities.GetByUsername(ctx, creds.Username)
	} else {
		identity, err = s.identities.GetByEmail(ctx, creds.Email)
	}
	if err != nil {
		auth.CompareDummy(creds.Password)
		return domain.TokenPair{}, notFoundAs(err, apperrors.NewNotFound("identity"))
	}
	if err := auth.ComparePassword(identity.PasswordHash, creds.Password); err != nil {
		return domain.TokenPair{}, apperrors.NewNotFound("identity")
	}
	return s.startSession(ctx, identity, SigninMethodPassword)
}

// RequestOTPSignin texts a one-time code to a registered phone.
func (s *AuthService) RequestOTPSignin(ctx context.Context, phone domain.Phone) (_ string, err error) {
	ctx, span := observability.StartSpan(ctx, "auth.request_otp")
	defer func() {
		observability.EndSpan(span, err)
		s.metrics.RecordAuthEvent("otp_request", err)
	}()

	message, err := s.otp.Request(ctx, phone)
	if err != nil {
		return "", err
	}
	s.events.publish(ctx, events.New(events.EventOTPRequested, "", "", map[string]string{
		"destination": maskPhone(phone),
	}))
	return message, nil
}

// VerifyOTPSignin redeems a code and starts a session.
func (s *AuthService) VerifyOTPSignin(ctx context.Context, phone domain.Phone, code string) (_ domain.TokenPair, err error) {
	ctx, span := observability.StartSpan(ctx, "auth.verify_otp")
	defer func() {
		observability.EndSpan(span, err)
		s.metrics.RecordAuthEvent("otp_signin", err)
	}()

	identity, err := s.otp.Verify(ctx, phone, code)
	if err != nil {
		return domain.TokenPair{}, err
	}
	return s.startSession(ctx, identity, SigninMethodOTP)
}

// Refresh exchanges a live refresh token for a new access token. The refresh token is not rotated.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (_ string, err error) {
	ctx, span := observability.StartSpan(ctx, "auth.refresh")
	defer func() {
		observability.EndSpan(span, err)
		s.metrics.RecordAuthEvent("refresh", err)
	}()

	claims, err := s.checkRefreshToken(ctx, refreshToken)
	if err != nil {
		return "", err
	}

	identity, err := s.identities.GetByID(ctx, claims.IdentityID)
	if err != nil {
		return "", notFoundAs(err, apperrors.NewUnauthorized("identity not found"))
	}
	if identity.IsSuspended() {
		return "", apperrors.NewUnauthorized("account suspended")
	}

	accessToken, _, err := s.tokens.IssueAccess(identity.ID)
	if err != nil {
		return "", apperrors.NewInternalError(err)
	}
	s.events.publish(ctx, events.New(events.EventSessionRefreshed, identity.ID, identity.ID, nil))
	return accessToken, nil
}

// Signout revokes the session bound to refreshToken. A second call with the same token fails.
func (s *AuthService) Signout(ctx context.Context, refreshToken string) (err error) {
	ctx, span := observability.StartSpan(ctx, "auth.signout")
	defer func() {
		observability.EndSpan(span, err)
		s.metrics.RecordAuthEvent("signout", err)
	}()

	claims, err := s.checkRefreshToken(ctx, refreshToken)
	if err != nil {
		return err
	}
	if err := s.sessions.Delete(ctx, session.RefreshKey(claims.IdentityID)); err != nil {
		return apperrors.NewInternalError(err)
	}
	s.events.publish(ctx, events.New(events.EventIdentitySignedOut, claims.IdentityID, claims.IdentityID, nil))
	return nil
}

// IsUsernameAvailable reports whether no identity holds username.
func (s *AuthService) IsUsernameAvailable(ctx context.Context, username string) (bool, error) {
	exists, err := s.identities.UsernameExists(ctx, username)
	if err != nil {
		return false, apperrors.MapError(err)
	}
	return !exists, nil
}

func (s *AuthService) startSession(ctx context.Context, identity *domain.Identity, method string) (domain.TokenPair, error) {
	if identity.IsSuspended() {
		return domain.TokenPair{}, apperrors.NewUnauthorized("account suspended")
	}
	pair, err := s.tokens.IssuePair(identity.ID)
	if err != nil {
		return domain.TokenPair{}, apperrors.NewInternalError(err)
	}
	// Overwrites any previous session: one live refresh token per identity.
	if err := s.sessions.Set(ctx, session.RefreshKey(identity.ID), pair.RefreshToken, s.tokens.RefreshTTL()); err != nil {
		return domain.TokenPair{}, apperrors.NewInternalError(err)
	}
	s.events.publish(ctx, events.New(events.EventIdentitySignedIn, identity.ID, identity.ID, events.SignedInPayload{Method: method}))
	return pair, nil
}

// checkRefreshToken verifies the signature and that the token is the one currently stored.
func (s *AuthService) checkRefreshToken(ctx context.Context, refreshToken string) (*auth.Claims, error) {
	claims, err := s.tokens.VerifyRefresh(refreshToken)
	if err != nil {
		if errors.Is(err, auth.ErrTokenExpired) {
			return nil, apperrors.NewUnauthorized("session expired")
		}
		return nil, apperrors.NewUnauthorized("invalid token")
	}

	stored, found, err := s.sessions.Get(ctx, session.RefreshKey(claims.IdentityID))
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	if !found || subtle.ConstantTimeCompare([]byte(stored), []byte(refreshToken)) != 1 {
		return nil, apperrors.NewUnauthorized("invalid token")
	}
	return claims, nil
}

func maskPhone(phone domain.Phone) string {
	n := phone.Number
	if len(n) <= 4 {
		return phone.CountryCode + n
	}
	masked := make([]byte, len(n))
	for i := range masked {
		if i < len(n)-4 {
			masked[i] = '*'
		} else {
			masked[i] = n[i]
		}
	}
	return phone.CountryCode + string(masked)
}
