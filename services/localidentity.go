package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"volunteerhub/dto"
	"volunteerhub/model"
)

const (
	localIssuer       = "volunteerhub-local"
	localTokenTTL     = 60 * time.Minute
	localVerifyTTL    = 24 * time.Hour
	purposeVerifyMail = "verify_email"
)

type localClaims struct {
	Email         string `json:"email"`
	Name          string `json:"name,omitempty"`
	EmailVerified bool   `json:"email_verified"`
	Generation    int    `json:"gen"`
	Purpose       string `json:"purpose,omitempty"`
	jwt.RegisteredClaims
}

type localAccount struct {
	uid        string
	email      string
	name       string
	hash       []byte
	verified   bool
	generation int
}

// LocalIdentity is an in-process identity provider for development and tests:
// bcrypt password hashes and HS256 tokens. It must not run in production.
type LocalIdentity struct {
	mu       sync.Mutex
	secret   []byte
	baseURL  string
	accounts map[string]*localAccount
	byUID    map[string]*localAccount
	now      func() time.Time
}

var _ Identity = (*LocalIdentity)(nil)

func NewLocalIdentity(secret, baseURL string) *LocalIdentity {
	return &LocalIdentity{
		secret:   []byte(secret),
		baseURL:  baseURL,
		accounts: make(map[string]*localAccount),
		byUID:    make(map[string]*localAccount),
		now:      time.Now,
	}
}

func (l *LocalIdentity) sign(claims *localClaims, ttl time.Duration) (string, error) {
	now := l.now()
	claims.RegisteredClaims = jwt.RegisteredClaims{
		Issuer:    localIssuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		Subject:   claims.Subject,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(l.secret)
}

func (l *LocalIdentity) parse(token string) (*localClaims, error) {
	claims := &localClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return l.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(localIssuer),
		jwt.WithTimeFunc(l.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return claims, nil
}

func (l *LocalIdentity) VerifyToken(_ context.Context, token string) (*TokenClaims, error) {
	claims, err := l.parse(token)
	if err != nil {
		return nil, err
	}
	if claims.Purpose != "" {
		return nil, ErrInvalidToken
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	acct, ok := l.byUID[claims.Subject]
	if !ok || acct.generation != claims.Generation {
		return nil, ErrInvalidToken
	}
	return &TokenClaims{UID: acct.uid, Email: acct.email, Name: acct.name, EmailVerified: acct.verified}, nil
}

func (l *LocalIdentity) CreateAccount(_ context.Context, email, password, displayName string) (string, error) {
	email = model.NormalizeEmail(email)
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.accounts[email]; ok {
		return "", ErrEmailTaken
	}
	acct := &localAccount{uid: uuid.New().String(), email: email, name: displayName, hash: hash}
	l.accounts[email] = acct
	l.byUID[acct.uid] = acct
	return acct.uid, nil
}

func (l *LocalIdentity) SignIn(_ context.Context, email, password string) (*dto.TokenResponse, error) {
	l.mu.Lock()
	acct, ok := l.accounts[model.NormalizeEmail(email)]
	var snapshot localAccount
	if ok {
		snapshot = *acct
	}
	l.mu.Unlock()
	if !ok || bcrypt.CompareHashAndPassword(snapshot.hash, []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}

	claims := &localClaims{
		Email:         snapshot.email,
		Name:          snapshot.name,
		EmailVerified: snapshot.verified,
		Generation:    snapshot.generation,
	}
	claims.Subject = snapshot.uid
	token, err := l.sign(claims, localTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	return &dto.TokenResponse{
		Email:        snapshot.email,
		IDToken:      token,
		RefreshToken: uuid.New().String(),
		ExpiresIn:    int64(localTokenTTL / time.Second),
	}, nil
}

// RevokeSessions invalidates every token issued so far for uid.
func (l *LocalIdentity) RevokeSessions(_ context.Context, uid string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	acct, ok := l.byUID[uid]
	if !ok {
		return ErrInvalidToken
	}
	acct.generation++
	return nil
}

func (l *LocalIdentity) VerificationLink(_ context.Context, email string) (string, error) {
	email = model.NormalizeEmail(email)
	l.mu.Lock()
	acct, ok := l.accounts[email]
	l.mu.Unlock()
	if !ok {
		return "", errors.New("unknown account")
	}
	claims := &localClaims{Email: email, Purpose: purposeVerifyMail}
	claims.Subject = acct.uid
	token, err := l.sign(claims, localVerifyTTL)
	if err != nil {
		return "", fmt.Errorf("sign verification token: %w", err)
	}
	return l.baseURL + "/auth/local/verify?token=" + url.QueryEscape(token), nil
}

// ConfirmEmail consumes a token produced by VerificationLink.
func (l *LocalIdentity) ConfirmEmail(token string) (string, error) {
	claims, err := l.parse(token)
	if err != nil {
		return "", err
	}
	if claims.Purpose != purposeVerifyMail {
		return "", ErrInvalidToken
	}
	if err := l.MarkVerified(claims.Email); err != nil {
		return "", err
	}
	return claims.Email, nil
}

func (l *LocalIdentity) MarkVerified(email string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	acct, ok := l.accounts[model.NormalizeEmail(email)]
	if !ok {
		return ErrInvalidToken
	}
	acct.verified = true
	return nil
}

func (l *LocalIdentity) EmailVerified(_ context.Context, email string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	acct, ok := l.accounts[model.NormalizeEmail(email)]
	if !ok {
		return false, errors.New("unknown account")
	}
	return acct.verified, nil
}
