package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hollydays/wishlist-backend/internal/proxylists"
	pkgAuth "github.com/hollydays/wishlist-backend/pkg/auth"
	"github.com/hollydays/wishlist-backend/pkg/auth/session"
	"github.com/hollydays/wishlist-backend/pkg/config"
	"github.com/hollydays/wishlist-backend/pkg/db"
	"github.com/hollydays/wishlist-backend/pkg/db/models"
	pkgerrors "github.com/hollydays/wishlist-backend/pkg/errors"
	"github.com/hollydays/wishlist-backend/pkg/logger"
	"github.com/hollydays/wishlist-backend/pkg/security"
)

const invalidCredentialsMessage = "invalid credentials"

// Service defines the behavior needed by the auth controller.
type Service interface {
	Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error)
	Login(ctx context.Context, req LoginRequest) (*AuthResponse, error)
	RequestMagicLink(ctx context.Context, email string) error
	RedeemMagicLink(ctx context.Context, token string) (*AuthResponse, error)
	Logout(ctx context.Context, accessID string) error
	Impersonate(ctx context.Context, adminID, targetID uuid.UUID) (*AuthResponse, error)
}

type accountRepository interface {
	Create(ctx context.Context, account *models.Account) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Account, error)
	FindByEmail(ctx context.Context, email string) (*models.Account, error)
	UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
}

type listConverter interface {
	ConvertForAccount(ctx context.Context, account models.Account) (*proxylists.ConversionResult, error)
}

type sessionManager interface {
	Create(ctx context.Context, accessID string) error
	Revoke(ctx context.Context, accessID string) error
}

type mailSender interface {
	Send(ctx context.Context, to, subject, body string) error
}

type service struct {
	accounts  accountRepository
	converter listConverter
	session   sessionManager
	mailer    mailSender
	logg      *logger.Logger
	jwtCfg    config.JWTConfig
	pwCfg     config.PasswordConfig
	baseURL   string
}

// ServiceParams bundles the dependencies required to build an auth service.
type ServiceParams struct {
	AccountRepo    accountRepository
	Converter      listConverter
	SessionManager sessionManager
	Mailer         mailSender
	Logger         *logger.Logger
	JWTConfig      config.JWTConfig
	PasswordConfig config.PasswordConfig
	BaseURL        string
}

// NewService constructs the auth service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.AccountRepo == nil {
		return nil, fmt.Errorf("account repository is required")
	}
	if params.Converter == nil {
		return nil, fmt.Errorf("proxy list converter is required")
	}
	if params.SessionManager == nil {
		return nil, fmt.Errorf("session manager is required")
	}
	if params.Mailer == nil {
		return nil, fmt.Errorf("mailer is required")
	}
	return &service{
		accounts:  params.AccountRepo,
		converter: params.Converter,
		session:   params.SessionManager,
		mailer:    params.Mailer,
		logg:      params.Logger,
		jwtCfg:    params.JWTConfig,
		pwCfg:     params.PasswordConfig,
		baseURL:   strings.TrimSuffix(params.BaseURL, "/"),
	}, nil
}

// Register creates the account and immediately converts any proxy lists whose
// contact email matches, so the new user's wishlist is waiting for them on
// first login.
func (s *service) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	email := normalizeEmail(req.Email)
	name := strings.TrimSpace(req.Name)
	if email == "" || !strings.Contains(email, "@") {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "a valid email is required")
	}
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}

	account := &models.Account{ID: uuid.New(), Email: email, Name: name}
	if req.Password != "" {
		if len(req.Password) < 8 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "password must be at least 8 characters")
		}
		hash, err := security.HashPassword(req.Password, s.pwCfg)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
		}
		account.PasswordHash = &hash
	}

	if err := s.accounts.Create(ctx, account); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create account")
	}

	conversion, err := s.converter.ConvertForAccount(ctx, *account)
	if err != nil {
		return nil, err
	}

	resp, err := s.establishSession(ctx, account, nil)
	if err != nil {
		return nil, err
	}
	resp.ConvertedLists = conversion.ConvertedLists
	return resp, nil
}

func (s *service) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	account, err := s.lookup(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if account.PasswordHash == nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}
	valid, err := security.VerifyPassword(req.Password, *account.PasswordHash)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !valid {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}
	return s.establishSession(ctx, account, nil)
}

// RequestMagicLink emails a single-use sign-in link. The response is the same
// whether or not the address has an account, so it cannot be used to probe
// for registered emails. Delivery is fire-and-forget.
func (s *service) RequestMagicLink(ctx context.Context, email string) error {
	account, err := s.lookup(ctx, email)
	if err != nil {
		typed := pkgerrors.As(err)
		if typed != nil && typed.Code() == pkgerrors.CodeUnauthorized {
			return nil
		}
		return err
	}

	token, err := pkgAuth.MintMagicLinkToken(s.jwtCfg, time.Now().UTC(), account.Email)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint magic link token")
	}

	link := fmt.Sprintf("%s/auth/magic?token=%s", s.baseURL, token)
	body := fmt.Sprintf("Hi %s,\n\nUse this link to sign in:\n\n%s\n\nThe link expires soon and can be used once.\n", account.Name, link)

	go func() {
		sendCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := s.mailer.Send(sendCtx, account.Email, "Your sign-in link", body); err != nil && s.logg != nil {
			s.logg.Error(sendCtx, "sending magic link email", err)
		}
	}()
	return nil
}

func (s *service) RedeemMagicLink(ctx context.Context, token string) (*AuthResponse, error) {
	claims, err := pkgAuth.ParseMagicLinkToken(s.jwtCfg, token)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid or expired link")
	}
	account, err := s.lookup(ctx, claims.Email)
	if err != nil {
		return nil, err
	}
	return s.establishSession(ctx, account, nil)
}

func (s *service) Logout(ctx context.Context, accessID string) error {
	if accessID == "" {
		return nil
	}
	if err := s.session.Revoke(ctx, accessID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "revoke session")
	}
	return nil
}

// Impersonate mints a token for the target account on behalf of an admin.
// The admin's id rides along in the token for audit logging; nothing about
// the admin's own session changes.
func (s *service) Impersonate(ctx context.Context, adminID, targetID uuid.UUID) (*AuthResponse, error) {
	admin, err := s.accounts.FindByID(ctx, adminID)
	if err != nil || !admin.IsAdmin {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "not permitted")
	}
	target, err := s.accounts.FindByID(ctx, targetID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "account not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load account")
	}

	resp, err := s.establishSession(ctx, target, &adminID)
	if err != nil {
		return nil, err
	}
	resp.ImpersonatedBy = &adminID
	return resp, nil
}

func (s *service) establishSession(ctx context.Context, account *models.Account, impersonatedBy *uuid.UUID) (*AuthResponse, error) {
	now := time.Now().UTC()
	if err := s.accounts.UpdateLastLogin(ctx, account.ID, now); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update last login")
	}
	account.LastLoginAt = &now

	accessID := session.NewAccessID()
	token, err := pkgAuth.MintAccessToken(s.jwtCfg, now, pkgAuth.AccessTokenPayload{
		AccountID:      account.ID,
		IsAdmin:        account.IsAdmin,
		ImpersonatedBy: impersonatedBy,
		JTI:            accessID,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint jwt")
	}
	if err := s.session.Create(ctx, accessID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store session")
	}

	return &AuthResponse{
		AccessToken: token,
		Account:     summaryFromModel(account),
	}, nil
}

func (s *service) lookup(ctx context.Context, email string) (*models.Account, error) {
	normalized := normalizeEmail(email)
	if normalized == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}
	account, err := s.accounts.FindByEmail(ctx, normalized)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup account")
	}
	return account, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
