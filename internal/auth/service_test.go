package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/hollydays/wishlist-backend/internal/proxylists"
	pkgAuth "github.com/hollydays/wishlist-backend/pkg/auth"
	"github.com/hollydays/wishlist-backend/pkg/config"
	"github.com/hollydays/wishlist-backend/pkg/db/models"
	pkgerrors "github.com/hollydays/wishlist-backend/pkg/errors"
	"github.com/hollydays/wishlist-backend/pkg/security"
)

type stubAccountRepo struct {
	byEmail   map[string]*models.Account
	byID      map[uuid.UUID]*models.Account
	created   []*models.Account
	createErr error
	logins    []uuid.UUID
}

func newStubAccountRepo(accounts ...*models.Account) *stubAccountRepo {
	repo := &stubAccountRepo{
		byEmail: map[string]*models.Account{},
		byID:    map[uuid.UUID]*models.Account{},
	}
	for _, a := range accounts {
		repo.byEmail[a.Email] = a
		repo.byID[a.ID] = a
	}
	return repo
}

func (r *stubAccountRepo) Create(_ context.Context, account *models.Account) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.created = append(r.created, account)
	r.byEmail[account.Email] = account
	r.byID[account.ID] = account
	return nil
}

func (r *stubAccountRepo) FindByID(_ context.Context, id uuid.UUID) (*models.Account, error) {
	account, ok := r.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return account, nil
}

func (r *stubAccountRepo) FindByEmail(_ context.Context, email string) (*models.Account, error) {
	account, ok := r.byEmail[email]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return account, nil
}

func (r *stubAccountRepo) UpdateLastLogin(_ context.Context, id uuid.UUID, _ time.Time) error {
	r.logins = append(r.logins, id)
	return nil
}

type stubConverter struct {
	result    proxylists.ConversionResult
	converted []models.Account
}

func (c *stubConverter) ConvertForAccount(_ context.Context, account models.Account) (*proxylists.ConversionResult, error) {
	c.converted = append(c.converted, account)
	result := c.result
	return &result, nil
}

type stubSessions struct {
	created []string
	revoked []string
}

func (s *stubSessions) Create(_ context.Context, accessID string) error {
	s.created = append(s.created, accessID)
	return nil
}

func (s *stubSessions) Revoke(_ context.Context, accessID string) error {
	s.revoked = append(s.revoked, accessID)
	return nil
}

type stubMailer struct {
	sent chan string
}

func newStubMailer() *stubMailer {
	return &stubMailer{sent: make(chan string, 1)}
}

func (m *stubMailer) Send(_ context.Context, to, _, _ string) error {
	m.sent <- to
	return nil
}

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:                 "test-secret",
		Issuer:                 "wishlist-test",
		ExpirationMinutes:      15,
		MagicLinkExpiryMinutes: 30,
	}
}

func newTestService(t *testing.T, repo *stubAccountRepo) (Service, *stubConverter, *stubSessions, *stubMailer) {
	t.Helper()
	converter := &stubConverter{}
	sessions := &stubSessions{}
	mailer := newStubMailer()
	svc, err := NewService(ServiceParams{
		AccountRepo:    repo,
		Converter:      converter,
		SessionManager: sessions,
		Mailer:         mailer,
		JWTConfig:      testJWTConfig(),
		PasswordConfig: config.PasswordConfig{ArgonMemoryKB: 8192, ArgonTime: 1, ArgonParallelism: 1, ArgonSaltLen: 16, ArgonKeyLen: 32},
		BaseURL:        "https://wishlist.example.com/",
	})
	require.NoError(t, err)
	return svc, converter, sessions, mailer
}

func TestRegisterConvertsProxyListsAndMintsToken(t *testing.T) {
	repo := newStubAccountRepo()
	svc, converter, sessions, _ := newTestService(t, repo)

	converter.result = proxylists.ConversionResult{ConvertedLists: 1, MigratedItems: 3}

	resp, err := svc.Register(context.Background(), RegisterRequest{
		Email:    "  Jamie@Example.com ",
		Name:     "Jamie",
		Password: "correct horse",
	})
	require.NoError(t, err)
	require.NotEmpty(t, resp.AccessToken)
	require.Equal(t, "jamie@example.com", resp.Account.Email)
	require.Equal(t, 1, resp.ConvertedLists)

	require.Len(t, repo.created, 1)
	require.NotNil(t, repo.created[0].PasswordHash)
	require.Len(t, converter.converted, 1)
	require.Equal(t, "jamie@example.com", converter.converted[0].Email)
	require.Len(t, sessions.created, 1)

	claims, err := pkgAuth.ParseAccessToken(testJWTConfig(), resp.AccessToken)
	require.NoError(t, err)
	require.Equal(t, repo.created[0].ID, claims.AccountID)
	require.Equal(t, sessions.created[0], claims.ID)
	require.Nil(t, claims.ImpersonatedBy)
}

func TestRegisterWithoutPasswordIsAllowed(t *testing.T) {
	repo := newStubAccountRepo()
	svc, _, _, _ := newTestService(t, repo)

	resp, err := svc.Register(context.Background(), RegisterRequest{
		Email: "pat@example.com",
		Name:  "Pat",
	})
	require.NoError(t, err)
	require.NotEmpty(t, resp.AccessToken)
	require.Nil(t, repo.created[0].PasswordHash)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	repo := newStubAccountRepo()
	repo.createErr = errors.New(`pq: duplicate key value violates unique constraint "accounts_email_key" (SQLSTATE 23505)`)
	svc, _, _, _ := newTestService(t, repo)

	_, err := svc.Register(context.Background(), RegisterRequest{Email: "jamie@example.com", Name: "Jamie"})
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeConflict, typed.Code())
}

func TestLoginVerifiesPassword(t *testing.T) {
	hash, err := security.HashPassword("open sesame", config.PasswordConfig{ArgonMemoryKB: 8192, ArgonTime: 1, ArgonParallelism: 1, ArgonSaltLen: 16, ArgonKeyLen: 32})
	require.NoError(t, err)

	account := &models.Account{ID: uuid.New(), Email: "jamie@example.com", Name: "Jamie", PasswordHash: &hash}
	repo := newStubAccountRepo(account)
	svc, _, sessions, _ := newTestService(t, repo)

	resp, err := svc.Login(context.Background(), LoginRequest{Email: "jamie@example.com", Password: "open sesame"})
	require.NoError(t, err)
	require.NotEmpty(t, resp.AccessToken)
	require.Len(t, sessions.created, 1)
	require.Equal(t, []uuid.UUID{account.ID}, repo.logins)

	_, err = svc.Login(context.Background(), LoginRequest{Email: "jamie@example.com", Password: "wrong"})
	require.Error(t, err)
	require.Equal(t, invalidCredentialsMessage, pkgerrors.As(err).Message())
}

func TestLoginUnknownEmailAndPasswordlessAccountLookTheSame(t *testing.T) {
	passwordless := &models.Account{ID: uuid.New(), Email: "pat@example.com", Name: "Pat"}
	repo := newStubAccountRepo(passwordless)
	svc, _, _, _ := newTestService(t, repo)

	_, errUnknown := svc.Login(context.Background(), LoginRequest{Email: "nobody@example.com", Password: "x"})
	_, errNoHash := svc.Login(context.Background(), LoginRequest{Email: "pat@example.com", Password: "x"})

	require.Error(t, errUnknown)
	require.Error(t, errNoHash)
	require.Equal(t, pkgerrors.As(errUnknown).Message(), pkgerrors.As(errNoHash).Message())
}

func TestMagicLinkRoundTrip(t *testing.T) {
	account := &models.Account{ID: uuid.New(), Email: "jamie@example.com", Name: "Jamie"}
	repo := newStubAccountRepo(account)
	svc, _, sessions, mailer := newTestService(t, repo)

	require.NoError(t, svc.RequestMagicLink(context.Background(), "Jamie@Example.com"))

	select {
	case to := <-mailer.sent:
		require.Equal(t, "jamie@example.com", to)
	case <-time.After(2 * time.Second):
		t.Fatal("magic link email was never sent")
	}

	token, err := pkgAuth.MintMagicLinkToken(testJWTConfig(), time.Now().UTC(), account.Email)
	require.NoError(t, err)

	resp, err := svc.RedeemMagicLink(context.Background(), token)
	require.NoError(t, err)
	require.Equal(t, account.ID, resp.Account.ID)
	require.Len(t, sessions.created, 1)
}

func TestMagicLinkUnknownEmailIsSilent(t *testing.T) {
	repo := newStubAccountRepo()
	svc, _, _, mailer := newTestService(t, repo)

	require.NoError(t, svc.RequestMagicLink(context.Background(), "nobody@example.com"))

	select {
	case <-mailer.sent:
		t.Fatal("no email should be sent for an unknown address")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestRedeemMagicLinkRejectsAccessToken(t *testing.T) {
	account := &models.Account{ID: uuid.New(), Email: "jamie@example.com", Name: "Jamie"}
	repo := newStubAccountRepo(account)
	svc, _, _, _ := newTestService(t, repo)

	// An access token is signed with the same secret but lacks the magic
	// link purpose claim, so it must not open a session this way.
	token, err := pkgAuth.MintAccessToken(testJWTConfig(), time.Now().UTC(), pkgAuth.AccessTokenPayload{AccountID: account.ID})
	require.NoError(t, err)

	_, err = svc.RedeemMagicLink(context.Background(), token)
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeUnauthorized, pkgerrors.As(err).Code())
}

func TestLogoutRevokesSession(t *testing.T) {
	repo := newStubAccountRepo()
	svc, _, sessions, _ := newTestService(t, repo)

	require.NoError(t, svc.Logout(context.Background(), "jti-123"))
	require.Equal(t, []string{"jti-123"}, sessions.revoked)

	require.NoError(t, svc.Logout(context.Background(), ""))
	require.Len(t, sessions.revoked, 1)
}

func TestImpersonateRequiresAdmin(t *testing.T) {
	admin := &models.Account{ID: uuid.New(), Email: "admin@example.com", Name: "Admin", IsAdmin: true}
	target := &models.Account{ID: uuid.New(), Email: "jamie@example.com", Name: "Jamie"}
	regular := &models.Account{ID: uuid.New(), Email: "pat@example.com", Name: "Pat"}
	repo := newStubAccountRepo(admin, target, regular)
	svc, _, _, _ := newTestService(t, repo)

	resp, err := svc.Impersonate(context.Background(), admin.ID, target.ID)
	require.NoError(t, err)
	require.Equal(t, target.ID, resp.Account.ID)
	require.NotNil(t, resp.ImpersonatedBy)
	require.Equal(t, admin.ID, *resp.ImpersonatedBy)

	claims, err := pkgAuth.ParseAccessToken(testJWTConfig(), resp.AccessToken)
	require.NoError(t, err)
	require.Equal(t, target.ID, claims.AccountID)
	require.False(t, claims.IsAdmin)
	require.NotNil(t, claims.ImpersonatedBy)
	require.Equal(t, admin.ID, *claims.ImpersonatedBy)

	_, err = svc.Impersonate(context.Background(), regular.ID, target.ID)
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeForbidden, pkgerrors.As(err).Code())

	_, err = svc.Impersonate(context.Background(), admin.ID, uuid.New())
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
}
