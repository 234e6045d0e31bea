package dto

import "volunteerhub/model"

type SigninRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type SignupRequest struct {
	Email        string `json:"email" binding:"required,email"`
	Password     string `json:"password" binding:"required,min=8,max=128"`
	FirstName    string `json:"firstName" binding:"required,max=100"`
	LastName     string `json:"lastName" binding:"required,max=100"`
	CaptchaToken string `json:"captchaToken"`
}

type FederatedRequest struct {
	IDToken string `json:"idToken" binding:"required"`
}

type RoleRequest struct {
	Role string `json:"role" binding:"required,oneof=volunteer coordinator community"`
}

type TokenResponse struct {
	Email        string `json:"email"`
	IDToken      string `json:"idToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    int64  `json:"expiresIn"`
}

// MeResponse is the reloaded view of the signed-in account.
type MeResponse struct {
	Email              string      `json:"email"`
	EmailVerified      bool        `json:"emailVerified"`
	Role               model.Role  `json:"role"`
	NeedsRoleSelection bool        `json:"needsRoleSelection"`
	User               *model.User `json:"user,omitempty"`
}
