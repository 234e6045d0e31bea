package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"firebase.google.com/go/v4/auth"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/identitytoolkit/v3"

	"volunteerhub/dto"
	"volunteerhub/model"
)

// TokenClaims is what the API needs from a verified ID token.
type TokenClaims struct {
	UID           string
	Email         string
	Name          string
	EmailVerified bool
}

type TokenVerifier interface {
	VerifyToken(ctx context.Context, token string) (*TokenClaims, error)
}

// Identity is the external account provider. Passwords and sessions never touch
// the document store.
type Identity interface {
	TokenVerifier
	CreateAccount(ctx context.Context, email, password, displayName string) (string, error)
	SignIn(ctx context.Context, email, password string) (*dto.TokenResponse, error)
	RevokeSessions(ctx context.Context, uid string) error
	VerificationLink(ctx context.Context, email string) (string, error)
	EmailVerified(ctx context.Context, email string) (bool, error)
}

// FirebaseIdentity uses the Admin SDK for tokens and accounts and the Identity
// Toolkit REST API for password sign-in.
type FirebaseIdentity struct {
	auth    *auth.Client
	toolkit *identitytoolkit.Service
}

var _ Identity = (*FirebaseIdentity)(nil)

func NewFirebaseIdentity(client *auth.Client, toolkit *identitytoolkit.Service) *FirebaseIdentity {
	return &FirebaseIdentity{auth: client, toolkit: toolkit}
}

func (f *FirebaseIdentity) VerifyToken(ctx context.Context, token string) (*TokenClaims, error) {
	tok, err := f.auth.VerifyIDTokenAndCheckRevoked(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	email, _ := tok.Claims["email"].(string)
	name, _ := tok.Claims["name"].(string)
	verified, _ := tok.Claims["email_verified"].(bool)
	return &TokenClaims{
		UID:           tok.UID,
		Email:         model.NormalizeEmail(email),
		Name:          name,
		EmailVerified: verified,
	}, nil
}

func (f *FirebaseIdentity) CreateAccount(ctx context.Context, email, password, displayName string) (string, error) {
	params := (&auth.UserToCreate{}).
		Email(email).
		Password(password).
		DisplayName(displayName).
		EmailVerified(false)
	rec, err := f.auth.CreateUser(ctx, params)
	if auth.IsEmailAlreadyExists(err) {
		return "", ErrEmailTaken
	}
	if err != nil {
		return "", fmt.Errorf("create account: %w", err)
	}
	return rec.UID, nil
}

func (f *FirebaseIdentity) SignIn(ctx context.Context, email, password string) (*dto.TokenResponse, error) {
	req := &identitytoolkit.IdentitytoolkitRelyingpartyVerifyPasswordRequest{
		Email:             email,
		Password:          password,
		ReturnSecureToken: true,
	}
	resp, err := f.toolkit.Relyingparty.VerifyPassword(req).Context(ctx).Do()
	var gerr *googleapi.Error
	if errors.As(err, &gerr) && gerr.Code == http.StatusBadRequest {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}
	return &dto.TokenResponse{
		Email:        model.NormalizeEmail(resp.Email),
		IDToken:      resp.IdToken,
		RefreshToken: resp.RefreshToken,
		ExpiresIn:    resp.ExpiresIn,
	}, nil
}

func (f *FirebaseIdentity) RevokeSessions(ctx context.Context, uid string) error {
	return f.auth.RevokeRefreshTokens(ctx, uid)
}

func (f *FirebaseIdentity) VerificationLink(ctx context.Context, email string) (string, error) {
	return f.auth.EmailVerificationLink(ctx, email)
}

func (f *FirebaseIdentity) EmailVerified(ctx context.Context, email string) (bool, error) {
	rec, err := f.auth.GetUserByEmail(ctx, email)
	if err != nil {
		return false, fmt.Errorf("reload account: %w", err)
	}
	return rec.EmailVerified, nil
}
