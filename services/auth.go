package services

import (
	"context"
	"unicode"

	"go.uber.org/zap"

	"volunteerhub/dto"
	"volunteerhub/model"
)

const ErrAlreadyVerified model.RuleError = "email address is already verified"

const minPasswordLength = 8

// AuthService fronts the identity provider and keeps the user documents in step
// with the accounts it manages.
type AuthService struct {
	identity Identity
	users    *UserService
	mailer   Mailer
	log      *zap.Logger
}

func NewAuthService(identity Identity, users *UserService, mailer Mailer, log *zap.Logger) *AuthService {
	return &AuthService{identity: identity, users: users, mailer: mailer, log: log}
}

func checkPassword(pw string) error {
	if len(pw) < minPasswordLength {
		return model.Invalid("password", "password must be at least 8 characters")
	}
	var letter, digit bool
	for _, r := range pw {
		switch {
		case unicode.IsLetter(r):
			letter = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	if !letter || !digit {
		return model.Invalid("password", "password must contain a letter and a digit")
	}
	return nil
}

// Signup creates the account and its user document, then mails a verification
// link. A failed mail is logged; the account is usable once verified by resending.
func (s *AuthService) Signup(ctx context.Context, req dto.SignupRequest) (*model.User, error) {
	if err := checkPassword(req.Password); err != nil {
		return nil, err
	}
	email := model.NormalizeEmail(req.Email)
	first, last := cleanText(req.FirstName), cleanText(req.LastName)
	if first == "" {
		return nil, model.Invalid("firstName", "first name is required")
	}

	uid, err := s.identity.CreateAccount(ctx, email, req.Password, first+" "+last)
	if err != nil {
		return nil, err
	}
	user, err := s.users.Register(ctx, email, first, last)
	if err != nil {
		return nil, err
	}
	if err := s.sendVerification(ctx, email, user.DisplayName()); err != nil {
		s.log.Warn("verification mail not sent", zap.String("email", email), zap.Error(err))
	}
	s.log.Info("account created", zap.String("email", email), zap.String("uid", uid))
	return user, nil
}

func (s *AuthService) Signin(ctx context.Context, req dto.SigninRequest) (*dto.TokenResponse, error) {
	return s.identity.SignIn(ctx, model.NormalizeEmail(req.Email), req.Password)
}

// Federated accepts an ID token issued by a federated provider sign-in and makes
// sure the user document exists.
func (s *AuthService) Federated(ctx context.Context, idToken string) (*dto.MeResponse, error) {
	claims, err := s.identity.VerifyToken(ctx, idToken)
	if err != nil {
		return nil, err
	}
	if claims.Email == "" {
		return nil, model.Invalid("idToken", "token carries no email address")
	}
	user, err := s.users.RegisterDisplayName(ctx, claims.Email, claims.Name)
	if err != nil {
		return nil, err
	}
	return meResponse(claims.Email, claims.EmailVerified, user), nil
}

func (s *AuthService) Signout(ctx context.Context, sess *model.Session) error {
	if err := s.identity.RevokeSessions(ctx, sess.UID); err != nil {
		return err
	}
	s.log.Info("signed out", zap.String("email", sess.Email))
	return nil
}

func (s *AuthService) SendVerificationEmail(ctx context.Context, sess *model.Session) error {
	verified, err := s.identity.EmailVerified(ctx, sess.Email)
	if err != nil {
		return err
	}
	if verified {
		return ErrAlreadyVerified
	}
	return s.sendVerification(ctx, sess.Email, sess.DisplayName())
}

// Me reloads the account so a freshly verified email is reflected immediately.
func (s *AuthService) Me(ctx context.Context, sess *model.Session) (*dto.MeResponse, error) {
	verified, err := s.identity.EmailVerified(ctx, sess.Email)
	if err != nil {
		return nil, err
	}
	user, err := s.users.Lookup(ctx, sess.Email)
	if err != nil {
		return nil, err
	}
	return meResponse(sess.Email, verified, user), nil
}

func (s *AuthService) sendVerification(ctx context.Context, email, name string) error {
	link, err := s.identity.VerificationLink(ctx, email)
	if err != nil {
		return err
	}
	mail, err := verificationMail(email, name, link)
	if err != nil {
		return err
	}
	return s.mailer.Send(ctx, mail)
}

func meResponse(email string, verified bool, user *model.User) *dto.MeResponse {
	resp := &dto.MeResponse{Email: email, EmailVerified: verified, User: user, NeedsRoleSelection: true}
	if user != nil {
		resp.Role = user.Role
		resp.NeedsRoleSelection = user.Role == ""
	}
	return resp
}
