package unit

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/kulltaa/masterCondo/internal/application"
	"github.com/kulltaa/masterCondo/internal/domain"
	"github.com/kulltaa/masterCondo/internal/ports"
)

func TestRegisterIssuesTokensAndQueuesVerificationMail(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()

	res, err := f.service.Register(ctx, application.RegisterRequest{
		Email:                "user@example.com",
		Username:             "someuser",
		Password:             "supersecret",
		PasswordConfirmation: "supersecret",
	})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if res.AccountID == 0 {
		t.Fatalf("register returned empty account id")
	}
	if len(res.AccessToken) != 64 {
		t.Fatalf("expected 64-char access token, got %d chars", len(res.AccessToken))
	}
	if res.ExpiresIn != int64(time.Hour.Seconds()) {
		t.Fatalf("unexpected expires_in: %d", res.ExpiresIn)
	}

	account, err := f.accounts.GetByEmail(ctx, "user@example.com")
	if err != nil {
		t.Fatalf("load account failed: %v", err)
	}
	if account.IsActive {
		t.Fatalf("new account should start unverified")
	}

	verification, err := f.verificationTokens.FindLatestByAccount(ctx, account.ID)
	if err != nil || verification == nil {
		t.Fatalf("expected persisted verification token, got %v/%v", verification, err)
	}

	if len(f.outbox.mails) != 1 {
		t.Fatalf("expected one queued mail, got %d", len(f.outbox.mails))
	}
	mail := f.outbox.mails[0]
	if mail.MailType != "account.verification_email" {
		t.Fatalf("unexpected mail type: %s", mail.MailType)
	}
	if mail.ToAddress != "user@example.com" {
		t.Fatalf("unexpected mail recipient: %s", mail.ToAddress)
	}
	if !strings.Contains(mail.HTMLBody, "/users/verify") || !strings.Contains(mail.HTMLBody, verification.Value) {
		t.Fatalf("verification mail should embed the verify link and token")
	}
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()

	if _, err := f.service.Register(ctx, validRegister("dup@example.com", "dupuser")); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if _, err := f.service.Register(ctx, validRegister("dup@example.com", "otheruser")); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected conflict on duplicate email, got %v", err)
	}
	if _, err := f.service.Register(ctx, validRegister("other@example.com", "dupuser")); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected conflict on duplicate username, got %v", err)
	}
}

func TestLoginBeforeVerificationIssuesDistinctToken(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()

	registerRes, err := f.service.Register(ctx, validRegister("fresh@example.com", "freshuser"))
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	loginRes, err := f.service.Login(ctx, application.LoginRequest{
		Email:    "fresh@example.com",
		Password: "supersecret",
	})
	if err != nil {
		t.Fatalf("login before verification should succeed: %v", err)
	}
	if loginRes.AccessToken == registerRes.AccessToken {
		t.Fatalf("each login must mint a fresh token")
	}

	for _, token := range []string{registerRes.AccessToken, loginRes.AccessToken} {
		if _, err := f.service.Authenticate(ctx, token); err != nil {
			t.Fatalf("token should authenticate: %v", err)
		}
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()

	if _, err := f.service.Register(ctx, validRegister("known@example.com", "knownuser")); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	if _, err := f.service.Login(ctx, application.LoginRequest{
		Email:    "known@example.com",
		Password: "wrong-password",
	}); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials, got %v", err)
	}

	if _, err := f.service.Login(ctx, application.LoginRequest{
		Email:    "nobody@example.com",
		Password: "supersecret",
	}); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found for unknown email, got %v", err)
	}

	if got := len(f.accessTokens.records); got != 1 {
		t.Fatalf("failed logins must not mint tokens, have %d", got)
	}
}

func TestVerifyEmailActivatesAndIsIdempotent(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()

	res, err := f.service.Register(ctx, validRegister("verify@example.com", "verifyuser"))
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	verification, err := f.verificationTokens.FindLatestByAccount(ctx, res.AccountID)
	if err != nil || verification == nil {
		t.Fatalf("expected verification token")
	}

	if err := f.service.VerifyEmail(ctx, application.VerifyRequest{
		Email: "verify@example.com",
		Token: verification.Value,
	}); err != nil {
		t.Fatalf("verify failed: %v", err)
	}

	account, err := f.accounts.GetByID(ctx, res.AccountID)
	if err != nil {
		t.Fatalf("load account failed: %v", err)
	}
	if !account.IsActive {
		t.Fatalf("account should be active after verification")
	}

	// The verification link may be clicked more than once.
	if err := f.service.VerifyEmail(ctx, application.VerifyRequest{
		Email: "verify@example.com",
		Token: verification.Value,
	}); err != nil {
		t.Fatalf("re-verify should be a no-op, got %v", err)
	}

	if err := f.service.VerifyEmail(ctx, application.VerifyRequest{
		Email: "other@example.com",
		Token: verification.Value,
	}); !errors.Is(err, domain.ErrTokenInvalid) {
		t.Fatalf("token bound to another email must be rejected, got %v", err)
	}
}

func TestLogoutRevokesAccessToken(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()

	res, err := f.service.Register(ctx, validRegister("logout@example.com", "logoutuser"))
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if _, err := f.service.Authenticate(ctx, res.AccessToken); err != nil {
		t.Fatalf("token should authenticate before logout: %v", err)
	}

	if err := f.service.Logout(ctx, res.AccessToken); err != nil {
		t.Fatalf("logout failed: %v", err)
	}
	if _, err := f.service.Authenticate(ctx, res.AccessToken); !errors.Is(err, domain.ErrTokenInvalid) {
		t.Fatalf("expected invalid token after logout, got %v", err)
	}
	if len(f.revocations.revoked) == 0 {
		t.Fatalf("logout should mark the token digest revoked")
	}
}

func TestRecoverFlowRotatesPasswordAndInvalidatesTokens(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()

	registerRes, err := f.service.Register(ctx, validRegister("recover@example.com", "recoveruser"))
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	if err := f.service.Forgot(ctx, "missing@example.com"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found for unregistered email, got %v", err)
	}
	if err := f.service.Forgot(ctx, "recover@example.com"); err != nil {
		t.Fatalf("forgot failed: %v", err)
	}

	var recoveryMail *ports.OutboxMail
	for i := range f.outbox.mails {
		if f.outbox.mails[i].MailType == "account.recovery_email" {
			recoveryMail = &f.outbox.mails[i]
		}
	}
	if recoveryMail == nil {
		t.Fatalf("expected queued recovery mail")
	}
	if !strings.Contains(recoveryMail.HTMLBody, "/users/recover") {
		t.Fatalf("recovery mail should embed the recover link")
	}

	recovery, err := f.recoveryTokens.FindLatestByAccount(ctx, registerRes.AccountID)
	if err != nil || recovery == nil {
		t.Fatalf("expected persisted recovery token")
	}
	if err := f.service.ValidateRecoveryToken(ctx, recovery.Value); err != nil {
		t.Fatalf("recovery token should validate: %v", err)
	}

	if err := f.service.Recover(ctx, application.RecoverRequest{
		Token:                recovery.Value,
		Password:             "brand-new-pass",
		PasswordConfirmation: "brand-new-pass",
	}); err != nil {
		t.Fatalf("recover failed: %v", err)
	}

	if _, err := f.service.Login(ctx, application.LoginRequest{
		Email:    "recover@example.com",
		Password: "supersecret",
	}); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("old password must stop working, got %v", err)
	}
	if _, err := f.service.Login(ctx, application.LoginRequest{
		Email:    "recover@example.com",
		Password: "brand-new-pass",
	}); err != nil {
		t.Fatalf("new password should work: %v", err)
	}

	if _, err := f.service.Authenticate(ctx, registerRes.AccessToken); !errors.Is(err, domain.ErrTokenInvalid) {
		t.Fatalf("recovery must invalidate outstanding access tokens, got %v", err)
	}
	if err := f.service.ValidateRecoveryToken(ctx, recovery.Value); !errors.Is(err, domain.ErrTokenInvalid) {
		t.Fatalf("recovery token must not be reusable, got %v", err)
	}
}

func TestExpiredTokenIsDistinguishedFromInvalid(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()

	res, err := f.service.Register(ctx, validRegister("expired@example.com", "expireduser"))
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	past := time.Now().UTC().Add(-time.Minute)
	f.accessTokens.insert(domain.TokenRecord{
		AccountID: res.AccountID,
		Value:     strings.Repeat("a", 64),
		ExpiresAt: past,
		IsActive:  true,
		CreatedAt: past.Add(-time.Hour),
	})
	f.recoveryTokens.insert(domain.TokenRecord{
		AccountID: res.AccountID,
		Value:     strings.Repeat("b", 64),
		ExpiresAt: past,
		IsActive:  true,
		CreatedAt: past.Add(-time.Hour),
	})

	if _, err := f.service.Authenticate(ctx, strings.Repeat("a", 64)); !errors.Is(err, domain.ErrTokenExpired) {
		t.Fatalf("expected expired access token, got %v", err)
	}
	if err := f.service.ValidateRecoveryToken(ctx, strings.Repeat("b", 64)); !errors.Is(err, domain.ErrTokenExpired) {
		t.Fatalf("expected expired recovery token, got %v", err)
	}
	if _, err := f.service.Authenticate(ctx, strings.Repeat("c", 64)); !errors.Is(err, domain.ErrTokenInvalid) {
		t.Fatalf("expected invalid for unknown token, got %v", err)
	}
}

func validRegister(email, username string) application.RegisterRequest {
	return application.RegisterRequest{
		Email:                email,
		Username:             username,
		Password:             "supersecret",
		PasswordConfirmation: "supersecret",
	}
}

func newFixture() *fixture {
	accounts := &fakeAccounts{
		byEmail:    map[string]domain.Account{},
		byUsername: map[string]domain.Account{},
		byID:       map[int64]domain.Account{},
	}
	accessTokens := &fakeAccessTokens{fakeTokens: fakeTokens{}, accounts: accounts}
	verificationTokens := &fakeTokens{noActiveFlag: true}
	recoveryTokens := &fakeTokens{}
	outbox := &fakeOutbox{}
	revocations := &fakeRevocations{revoked: map[string]bool{}}

	svc := application.NewService(application.Dependencies{
		Config: application.Config{
			BaseURL:              "http://localhost:8080",
			AccessTokenTTL:       time.Hour,
			VerificationTokenTTL: 24 * time.Hour,
			RecoveryTokenTTL:     time.Hour,
		},
		Accounts:           accounts,
		AccessTokens:       accessTokens,
		VerificationTokens: verificationTokens,
		RecoveryTokens:     recoveryTokens,
		Outbox:             outbox,
		Revocations:        revocations,
		Hasher:             &fakeHasher{},
	})

	return &fixture{
		service:            svc,
		accounts:           accounts,
		accessTokens:       accessTokens,
		verificationTokens: verificationTokens,
		recoveryTokens:     recoveryTokens,
		outbox:             outbox,
		revocations:        revocations,
	}
}

type fixture struct {
	service            *application.Service
	accounts           *fakeAccounts
	accessTokens       *fakeAccessTokens
	verificationTokens *fakeTokens
	recoveryTokens     *fakeTokens
	outbox             *fakeOutbox
	revocations        *fakeRevocations
}

type fakeAccounts struct {
	mu         sync.Mutex
	nextID     int64
	byEmail    map[string]domain.Account
	byUsername map[string]domain.Account
	byID       map[int64]domain.Account
}

func (f *fakeAccounts) Create(_ context.Context, params ports.CreateAccountParams) (domain.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byEmail[params.Email]; ok {
		return domain.Account{}, domain.ErrConflict
	}
	if _, ok := f.byUsername[params.Username]; ok {
		return domain.Account{}, domain.ErrConflict
	}
	f.nextID++
	a := domain.Account{
		ID:           f.nextID,
		Email:        params.Email,
		Username:     params.Username,
		PasswordHash: params.PasswordHash,
		CreatedAt:    params.CreatedAt,
		UpdatedAt:    params.CreatedAt,
	}
	f.store(a)
	return a, nil
}

func (f *fakeAccounts) store(a domain.Account) {
	f.byEmail[a.Email] = a
	f.byUsername[a.Username] = a
	f.byID[a.ID] = a
}

func (f *fakeAccounts) GetByEmail(_ context.Context, email string) (domain.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.byEmail[email]
	if !ok {
		return domain.Account{}, domain.ErrNotFound
	}
	return a, nil
}

func (f *fakeAccounts) GetByUsername(_ context.Context, username string) (domain.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.byUsername[username]
	if !ok {
		return domain.Account{}, domain.ErrNotFound
	}
	return a, nil
}

func (f *fakeAccounts) GetByID(_ context.Context, accountID int64) (domain.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.byID[accountID]
	if !ok {
		return domain.Account{}, domain.ErrNotFound
	}
	return a, nil
}

func (f *fakeAccounts) Activate(_ context.Context, accountID int64, activatedAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.byID[accountID]
	if !ok {
		return domain.ErrNotFound
	}
	a.IsActive = true
	a.UpdatedAt = activatedAt
	f.store(a)
	return nil
}

func (f *fakeAccounts) UpdatePassword(_ context.Context, accountID int64, passwordHash string, updatedAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.byID[accountID]
	if !ok {
		return domain.ErrNotFound
	}
	a.PasswordHash = passwordHash
	a.UpdatedAt = updatedAt
	f.store(a)
	return nil
}

type fakeTokens struct {
	mu           sync.Mutex
	nextID       int64
	records      []domain.TokenRecord
	noActiveFlag bool
}

func (f *fakeTokens) insert(rec domain.TokenRecord) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	rec.ID = f.nextID
	f.records = append(f.records, rec)
}

func (f *fakeTokens) Create(_ context.Context, params ports.TokenIssueParams) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	f.records = append(f.records, domain.TokenRecord{
		ID:        f.nextID,
		AccountID: params.AccountID,
		Value:     params.Value,
		ExpiresAt: params.ExpiresAt,
		IsActive:  true,
		CreatedAt: params.CreatedAt,
	})
	return nil
}

func (f *fakeTokens) FindByValue(_ context.Context, value string) (*domain.TokenRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.records {
		if f.records[i].Value == value {
			rec := f.records[i]
			return &rec, nil
		}
	}
	return nil, nil
}

func (f *fakeTokens) FindLatestByAccount(_ context.Context, accountID int64) (*domain.TokenRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.records) - 1; i >= 0; i-- {
		if f.records[i].AccountID == accountID {
			rec := f.records[i]
			return &rec, nil
		}
	}
	return nil, nil
}

func (f *fakeTokens) InvalidateByAccount(_ context.Context, accountID int64, _ time.Time) error {
	if f.noActiveFlag {
		return nil
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.records {
		if f.records[i].AccountID == accountID {
			f.records[i].IsActive = false
		}
	}
	return nil
}

func (f *fakeTokens) InvalidateByValue(_ context.Context, value string, _ time.Time) error {
	if f.noActiveFlag {
		return nil
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.records {
		if f.records[i].Value == value {
			f.records[i].IsActive = false
			return nil
		}
	}
	return domain.ErrNotFound
}

type fakeAccessTokens struct {
	fakeTokens
	accounts *fakeAccounts
}

func (f *fakeAccessTokens) FindByValueWithAccount(ctx context.Context, value string) (*domain.TokenRecord, *domain.Account, error) {
	rec, err := f.FindByValue(ctx, value)
	if err != nil || rec == nil {
		return nil, nil, err
	}
	account, err := f.accounts.GetByID(ctx, rec.AccountID)
	if err != nil {
		return nil, nil, err
	}
	return rec, &account, nil
}

type fakeOutbox struct {
	mu    sync.Mutex
	mails []ports.OutboxMail
}

func (f *fakeOutbox) Enqueue(_ context.Context, mail ports.OutboxMail) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.mails = append(f.mails, mail)
	return nil
}

func (f *fakeOutbox) ClaimUnsent(context.Context, int, string, time.Time) ([]ports.OutboxMailRecord, error) {
	return nil, nil
}

func (f *fakeOutbox) MarkSent(context.Context, uuid.UUID, string, time.Time) error { return nil }

func (f *fakeOutbox) MarkFailed(context.Context, uuid.UUID, string, string, time.Time) error {
	return nil
}

func (f *fakeOutbox) MarkDeadLettered(context.Context, uuid.UUID, string, string, time.Time) error {
	return nil
}

type fakeRevocations struct {
	mu      sync.Mutex
	revoked map[string]bool
}

func (f *fakeRevocations) MarkRevoked(_ context.Context, tokenDigest string, _ time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.revoked[tokenDigest] = true
	return nil
}

func (f *fakeRevocations) IsRevoked(_ context.Context, tokenDigest string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.revoked[tokenDigest], nil
}

type fakeHasher struct{}

func (f *fakeHasher) Hash(password string) (string, error) {
	return "hashed:" + password, nil
}

func (f *fakeHasher) Compare(hash, password string) error {
	if hash != "hashed:"+password {
		return fmt.Errorf("password mismatch")
	}
	return nil
}
