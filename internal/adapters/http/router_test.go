package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/forgecloud/identity-service/internal/adapters/security"
	"github.com/forgecloud/identity-service/internal/application"
	"github.com/forgecloud/identity-service/internal/domain"
	"github.com/forgecloud/identity-service/internal/ports"
)

func TestHealthEndpoints(t *testing.T) {
	t.Parallel()

	f := newHTTPFixture(t)
	res := f.do(t, http.MethodGet, "/healthz", "", "")
	if res.Code != http.StatusOK {
		t.Fatalf("healthz returned %d", res.Code)
	}
	env := decodeEnvelope(t, res)
	if !env.Success {
		t.Fatalf("expected success envelope: %+v", env)
	}
}

func TestSignupLoginFlowOverHTTP(t *testing.T) {
	t.Parallel()

	f := newHTTPFixture(t)

	res := f.do(t, http.MethodPost, "/auth/v1/signup",
		`{"email":"user@example.com","displayName":"Test User"}`, "")
	if res.Code != http.StatusCreated {
		t.Fatalf("signup returned %d: %s", res.Code, res.Body.String())
	}
	env := decodeEnvelope(t, res)
	userID, _ := env.Data["userId"].(string)
	if !env.Success || userID == "" || env.Data["email"] != "user@example.com" {
		t.Fatalf("unexpected signup envelope: %+v", env)
	}

	res = f.do(t, http.MethodPost, "/auth/v1/signup/verify-email",
		fmt.Sprintf(`{"email":"user@example.com","otp":%q}`, f.mailer.lastCode()), "")
	if res.Code != http.StatusOK {
		t.Fatalf("verify-email returned %d: %s", res.Code, res.Body.String())
	}

	res = f.do(t, http.MethodPost, "/auth/v1/signup/set-password",
		`{"email":"user@example.com","password":"SecurePass123!"}`, "")
	if res.Code != http.StatusOK {
		t.Fatalf("set-password returned %d: %s", res.Code, res.Body.String())
	}

	res = f.do(t, http.MethodPost, "/auth/v1/login",
		`{"email":"user@example.com","password":"SecurePass123!"}`, "")
	if res.Code != http.StatusOK {
		t.Fatalf("login returned %d: %s", res.Code, res.Body.String())
	}
	env = decodeEnvelope(t, res)
	if env.Data["requiresOTP"] != true {
		t.Fatalf("login should require the code: %+v", env)
	}

	res = f.do(t, http.MethodPost, "/auth/v1/login/verify-otp",
		fmt.Sprintf(`{"email":"user@example.com","otp":%q}`, f.mailer.lastCode()), "")
	if res.Code != http.StatusOK {
		t.Fatalf("verify-otp returned %d: %s", res.Code, res.Body.String())
	}
	env = decodeEnvelope(t, res)
	token, _ := env.Data["token"].(string)
	if token == "" {
		t.Fatalf("expected session token in envelope: %+v", env)
	}

	res = f.do(t, http.MethodGet, "/auth/v1/me", "", token)
	if res.Code != http.StatusOK {
		t.Fatalf("me returned %d: %s", res.Code, res.Body.String())
	}
	env = decodeEnvelope(t, res)
	user, _ := env.Data["user"].(map[string]any)
	if user["email"] != "user@example.com" {
		t.Fatalf("unexpected me payload: %+v", env)
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	t.Parallel()

	f := newHTTPFixture(t)
	for _, path := range []string{"/auth/v1/me", "/auth/v1/login-history"} {
		res := f.do(t, http.MethodGet, path, "", "")
		if res.Code != http.StatusUnauthorized {
			t.Fatalf("%s without token returned %d", path, res.Code)
		}
		if env := decodeEnvelope(t, res); env.Success || env.Error == "" {
			t.Fatalf("expected error envelope for %s: %+v", path, env)
		}
	}

	res := f.do(t, http.MethodGet, "/auth/v1/me", "", "not-a-real-token")
	if res.Code != http.StatusUnauthorized {
		t.Fatalf("garbage token returned %d", res.Code)
	}
}

func TestDuplicateSignupConflict(t *testing.T) {
	t.Parallel()

	f := newHTTPFixture(t)
	f.activateAccount(t, "dup@example.com", "SecurePass123!")

	res := f.do(t, http.MethodPost, "/auth/v1/signup", `{"email":"dup@example.com"}`, "")
	if res.Code != http.StatusConflict {
		t.Fatalf("duplicate signup returned %d", res.Code)
	}
}

func TestMalformedBodyRejected(t *testing.T) {
	t.Parallel()

	f := newHTTPFixture(t)
	for _, body := range []string{
		`{"email":`,
		`{"email":"a@b.com","unknownField":true}`,
		`{"email":"a@b.com"}{"email":"a@b.com"}`,
	} {
		res := f.do(t, http.MethodPost, "/auth/v1/signup", body, "")
		if res.Code != http.StatusBadRequest {
			t.Fatalf("body %q returned %d", body, res.Code)
		}
	}
}

func TestLockoutSurfacesAsLocked(t *testing.T) {
	t.Parallel()

	f := newHTTPFixture(t)
	f.activateAccount(t, "user@example.com", "SecurePass123!")

	for i := 0; i < 5; i++ {
		res := f.do(t, http.MethodPost, "/auth/v1/login",
			`{"email":"user@example.com","password":"wrong-pass"}`, "")
		if res.Code != http.StatusUnauthorized {
			t.Fatalf("failed login %d returned %d", i+1, res.Code)
		}
	}

	res := f.do(t, http.MethodPost, "/auth/v1/login",
		`{"email":"user@example.com","password":"SecurePass123!"}`, "")
	if res.Code != http.StatusLocked {
		t.Fatalf("expected 423 while locked, got %d: %s", res.Code, res.Body.String())
	}
}

func TestForgotPasswordIsUniform(t *testing.T) {
	t.Parallel()

	f := newHTTPFixture(t)
	f.activateAccount(t, "known@example.com", "SecurePass123!")

	resKnown := f.do(t, http.MethodPost, "/auth/v1/password/forgot", `{"email":"known@example.com"}`, "")
	resUnknown := f.do(t, http.MethodPost, "/auth/v1/password/forgot", `{"email":"unknown@example.com"}`, "")
	if resKnown.Code != http.StatusOK || resUnknown.Code != http.StatusOK {
		t.Fatalf("forgot password returned %d / %d", resKnown.Code, resUnknown.Code)
	}
	known := decodeEnvelope(t, resKnown)
	unknown := decodeEnvelope(t, resUnknown)
	if known.Data["message"] != unknown.Data["message"] {
		t.Fatalf("responses must not reveal account existence: %+v vs %+v", known, unknown)
	}
}

func TestPasswordResetOverHTTP(t *testing.T) {
	t.Parallel()

	f := newHTTPFixture(t)
	f.activateAccount(t, "user@example.com", "OldPass123!")

	res := f.do(t, http.MethodPost, "/auth/v1/password/forgot", `{"email":"user@example.com"}`, "")
	if res.Code != http.StatusOK {
		t.Fatalf("forgot returned %d", res.Code)
	}

	res = f.do(t, http.MethodPost, "/auth/v1/password/verify-otp",
		fmt.Sprintf(`{"email":"user@example.com","otp":%q}`, f.mailer.lastCode()), "")
	if res.Code != http.StatusOK {
		t.Fatalf("verify reset otp returned %d: %s", res.Code, res.Body.String())
	}
	env := decodeEnvelope(t, res)
	resetToken, _ := env.Data["resetToken"].(string)
	if resetToken == "" {
		t.Fatalf("expected reset token: %+v", env)
	}

	res = f.do(t, http.MethodPost, "/auth/v1/password/reset",
		fmt.Sprintf(`{"resetToken":%q,"newPassword":"NewPass456!"}`, resetToken), "")
	if res.Code != http.StatusOK {
		t.Fatalf("password reset returned %d: %s", res.Code, res.Body.String())
	}

	res = f.do(t, http.MethodPost, "/auth/v1/login",
		`{"email":"user@example.com","password":"NewPass456!"}`, "")
	if res.Code != http.StatusOK {
		t.Fatalf("login with new password returned %d", res.Code)
	}
}

func TestRoleAndPlanGates(t *testing.T) {
	t.Parallel()

	f := newHTTPFixture(t)
	account := f.activateAccount(t, "user@example.com", "SecurePass123!")
	token := f.sessionToken(t, account)

	// Free plan does not reach the developer-gated endpoint.
	res := f.do(t, http.MethodGet, "/auth/v1/login-history", "", token)
	if res.Code != http.StatusForbidden {
		t.Fatalf("free plan should be rejected, got %d", res.Code)
	}

	f.accounts.update(account.ID, func(a *domain.Account) { a.Plan = domain.PlanDeveloper })
	res = f.do(t, http.MethodGet, "/auth/v1/login-history", "", token)
	if res.Code != http.StatusOK {
		t.Fatalf("developer plan should pass, got %d: %s", res.Code, res.Body.String())
	}

	// Plain users do not reach the admin endpoint.
	adminPath := "/auth/v1/accounts/" + account.ID.String() + "/login-history"
	res = f.do(t, http.MethodGet, adminPath, "", token)
	if res.Code != http.StatusForbidden {
		t.Fatalf("user role should be rejected, got %d", res.Code)
	}

	f.accounts.update(account.ID, func(a *domain.Account) { a.Role = domain.RoleModerator })
	res = f.do(t, http.MethodGet, adminPath, "", token)
	if res.Code != http.StatusOK {
		t.Fatalf("moderator role should pass, got %d: %s", res.Code, res.Body.String())
	}

	res = f.do(t, http.MethodGet, "/auth/v1/accounts/not-a-uuid/login-history", "", token)
	if res.Code != http.StatusBadRequest {
		t.Fatalf("invalid account id should return 400, got %d", res.Code)
	}
}

func TestRequestQuotaExhaustion(t *testing.T) {
	t.Parallel()

	f := newHTTPFixture(t)
	account := f.activateAccount(t, "user@example.com", "SecurePass123!")
	token := f.sessionToken(t, account)

	f.accounts.update(account.ID, func(a *domain.Account) {
		a.APIRequestsLimit = 1
	})

	res := f.do(t, http.MethodGet, "/auth/v1/me", "", token)
	if res.Code != http.StatusOK {
		t.Fatalf("first request within quota returned %d", res.Code)
	}
	res = f.do(t, http.MethodGet, "/auth/v1/me", "", token)
	if res.Code != http.StatusTooManyRequests {
		t.Fatalf("request beyond quota returned %d", res.Code)
	}
}

func TestPlansPersonalization(t *testing.T) {
	t.Parallel()

	f := newHTTPFixture(t)

	res := f.do(t, http.MethodGet, "/auth/v1/plans", "", "")
	if res.Code != http.StatusOK {
		t.Fatalf("anonymous plans returned %d", res.Code)
	}
	env := decodeEnvelope(t, res)
	if _, ok := env.Data["currentPlan"]; ok {
		t.Fatalf("anonymous caller should not see a current plan: %+v", env)
	}

	account := f.activateAccount(t, "user@example.com", "SecurePass123!")
	token := f.sessionToken(t, account)
	res = f.do(t, http.MethodGet, "/auth/v1/plans", "", token)
	env = decodeEnvelope(t, res)
	if env.Data["currentPlan"] != string(domain.PlanFree) {
		t.Fatalf("signed-in caller should see their plan: %+v", env)
	}
}

func TestRequestIDPropagation(t *testing.T) {
	t.Parallel()

	f := newHTTPFixture(t)

	res := f.do(t, http.MethodGet, "/healthz", "", "")
	if res.Header().Get("X-Request-Id") == "" {
		t.Fatalf("expected generated request id header")
	}

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-Id", "fixed-id")
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	if rec.Header().Get("X-Request-Id") != "fixed-id" {
		t.Fatalf("expected caller request id to be echoed")
	}
}

// ---- fixture ----

type httpFixture struct {
	router   http.Handler
	accounts *memAccounts
	mailer   *memMailer
	tokens   *security.TokenIssuer
}

func newHTTPFixture(t *testing.T) *httpFixture {
	t.Helper()

	tokens, err := security.NewTokenIssuer("0123456789abcdef0123456789abcdef", time.Hour, 10*time.Minute)
	if err != nil {
		t.Fatalf("new token issuer failed: %v", err)
	}

	accounts := &memAccounts{byID: map[uuid.UUID]domain.Account{}}
	mailer := &memMailer{}
	svc := application.NewService(application.Dependencies{
		Config: application.Config{
			OTPTTL:           10 * time.Minute,
			LockoutThreshold: 5,
			LockoutDuration:  30 * time.Minute,
		},
		Accounts: accounts,
		Attempts: &memAttempts{},
		Mailer:   mailer,
		Hasher:   security.NewBcryptHasher(4),
		Tokens:   tokens,
	})

	return &httpFixture{
		router:   NewRouter(NewHandler(svc)),
		accounts: accounts,
		mailer:   mailer,
		tokens:   tokens,
	}
}

func (f *httpFixture) do(t *testing.T, method, path, body, token string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func (f *httpFixture) activateAccount(t *testing.T, email, password string) domain.Account {
	t.Helper()

	res := f.do(t, http.MethodPost, "/auth/v1/signup", fmt.Sprintf(`{"email":%q}`, email), "")
	if res.Code != http.StatusCreated {
		t.Fatalf("signup returned %d: %s", res.Code, res.Body.String())
	}
	res = f.do(t, http.MethodPost, "/auth/v1/signup/verify-email",
		fmt.Sprintf(`{"email":%q,"otp":%q}`, email, f.mailer.lastCode()), "")
	if res.Code != http.StatusOK {
		t.Fatalf("verify-email returned %d: %s", res.Code, res.Body.String())
	}
	res = f.do(t, http.MethodPost, "/auth/v1/signup/set-password",
		fmt.Sprintf(`{"email":%q,"password":%q}`, email, password), "")
	if res.Code != http.StatusOK {
		t.Fatalf("set-password returned %d: %s", res.Code, res.Body.String())
	}

	account, err := f.accounts.GetByEmail(context.Background(), email)
	if err != nil {
		t.Fatalf("account lookup failed: %v", err)
	}
	return account
}

func (f *httpFixture) sessionToken(t *testing.T, account domain.Account) string {
	t.Helper()
	token, err := f.tokens.IssueSession(account.ID, account.Email, account.Role, account.Plan)
	if err != nil {
		t.Fatalf("issue session failed: %v", err)
	}
	return token
}

type testEnvelope struct {
	Success bool           `json:"success"`
	Data    map[string]any `json:"data"`
	Error   string         `json:"error"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) testEnvelope {
	t.Helper()
	var env testEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope: %v (%s)", err, rec.Body.String())
	}
	return env
}

// ---- in-memory stores ----

type memAccounts struct {
	mu   sync.Mutex
	byID map[uuid.UUID]domain.Account
}

func (m *memAccounts) Create(_ context.Context, record *domain.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.byID {
		if existing.Email == record.Email {
			return domain.ErrConflict
		}
	}
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	m.byID[record.ID] = *record
	return nil
}

func (m *memAccounts) GetByID(_ context.Context, id uuid.UUID) (domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	account, ok := m.byID[id]
	if !ok {
		return domain.Account{}, domain.ErrNotFound
	}
	return account, nil
}

func (m *memAccounts) GetByEmail(_ context.Context, email string) (domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, account := range m.byID {
		if account.Email == email {
			return account, nil
		}
	}
	return domain.Account{}, domain.ErrNotFound
}

func (m *memAccounts) UpdateFields(_ context.Context, id uuid.UUID, fields map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	account, ok := m.byID[id]
	if !ok {
		return domain.ErrNotFound
	}
	for key, value := range fields {
		switch key {
		case "is_email_verified":
			account.IsEmailVerified = value.(bool)
		case "is_active":
			account.IsActive = value.(bool)
		case "password_hash":
			account.PasswordHash = value.(string)
		case "email_verification_otp":
			account.EmailVerificationOTP = value.(string)
		case "email_verification_otp_expiry":
			account.EmailVerificationOTPExpiry = memTimePtr(value)
		case "login_otp":
			account.LoginOTP = value.(string)
		case "login_otp_expiry":
			account.LoginOTPExpiry = memTimePtr(value)
		case "password_reset_otp":
			account.PasswordResetOTP = value.(string)
		case "password_reset_otp_expiry":
			account.PasswordResetOTPExpiry = memTimePtr(value)
		case "failed_login_attempts":
			account.FailedLoginAttempts = value.(int)
		case "last_failed_login_at":
			account.LastFailedLoginAt = memTimePtr(value)
		case "locked_until":
			account.LockedUntil = memTimePtr(value)
		case "last_login_at":
			account.LastLoginAt = memTimePtr(value)
		case "updated_at":
			account.UpdatedAt = value.(time.Time)
		default:
			return fmt.Errorf("unexpected column %q", key)
		}
	}
	m.byID[id] = account
	return nil
}

func (m *memAccounts) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.byID, id)
	return nil
}

func (m *memAccounts) Find(_ context.Context, _ ...ports.Constraint) ([]domain.Account, error) {
	return nil, nil
}

func (m *memAccounts) IncrementAPIRequests(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	account, ok := m.byID[id]
	if !ok {
		return domain.ErrNotFound
	}
	account.APIRequestsCount++
	m.byID[id] = account
	return nil
}

func (m *memAccounts) update(id uuid.UUID, mutate func(*domain.Account)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	account := m.byID[id]
	mutate(&account)
	m.byID[id] = account
}

func memTimePtr(value any) *time.Time {
	if value == nil {
		return nil
	}
	ts := value.(time.Time)
	return &ts
}

type memAttempts struct {
	mu       sync.Mutex
	attempts []domain.LoginAttempt
}

func (m *memAttempts) Insert(_ context.Context, attempt domain.LoginAttempt) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.attempts = append(m.attempts, attempt)
	return nil
}

func (m *memAttempts) ListByAccount(_ context.Context, accountID uuid.UUID, _, _ int, _ *time.Time) ([]domain.LoginAttempt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.LoginAttempt
	for _, attempt := range m.attempts {
		if attempt.AccountID != nil && *attempt.AccountID == accountID {
			out = append(out, attempt)
		}
	}
	return out, nil
}

type memMailer struct {
	mu    sync.Mutex
	codes []string
}

func (m *memMailer) Send(_ context.Context, _ string, _ ports.MailTemplate, data ports.MailData) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if data.Code != "" {
		m.codes = append(m.codes, data.Code)
	}
	return nil
}

func (m *memMailer) lastCode() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.codes) == 0 {
		return ""
	}
	return m.codes[len(m.codes)-1]
}
