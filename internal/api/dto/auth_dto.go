package dto

// SignupRequest payload for self-registration.
type SignupRequest struct {
	Name        string `json:"name" validate:"required"`
	Company     string `json:"company"`
	TeamID      string `json:"teamId"`
	Username    string `json:"username" validate:"min=4"`
	CountryCode string `json:"countryCode" validate:"countrycode"`
	PhoneNumber string `json:"phoneNumber" validate:"len=10,number"`
	Email       string `json:"email" validate:"email"`
	Password    string `json:"password" validate:"min=8,max=30"`
}

// SigninRequest identifies the account by exactly one of username or email.
type SigninRequest struct {
	Username string `json:"username" validate:"omitempty,min=4"`
	Email    string `json:"email" validate:"omitempty,email"`
	Password string `json:"password" validate:"min=8,max=30"`
}

// SendOTPRequest payload for requesting a signin code.
type SendOTPRequest struct {
	CountryCode string `json:"countryCode" validate:"countrycode"`
	PhoneNumber string `json:"phoneNumber" validate:"len=10,number"`
}

// VerifyOTPRequest payload for redeeming a signin code.
type VerifyOTPRequest struct {
	CountryCode string `json:"countryCode" validate:"countrycode"`
	PhoneNumber string `json:"phoneNumber" validate:"len=10,number"`
	OTP         string `json:"otp" validate:"len=6"`
}

// RefreshTokenRequest carries a refresh token for refresh and signout.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}
