package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/linkup-social/linkup/internal/common"
	"github.com/linkup-social/linkup/internal/logging"
	"github.com/linkup-social/linkup/internal/server/auth"
	"github.com/linkup-social/linkup/internal/server/config"
	"github.com/linkup-social/linkup/internal/server/models"
	"github.com/linkup-social/linkup/internal/server/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// --- fakes ---

type memRepo struct {
	mu      sync.Mutex
	byEmail map[string]*models.Account
	nextID  int
	failAll bool
}

func newMemRepo() *memRepo { return &memRepo{byEmail: map[string]*models.Account{}} }

func (r *memRepo) Create(ctx context.Context, a *models.Account) (*models.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failAll {
		return nil, errors.New("db down")
	}
	if _, ok := r.byEmail[a.Email]; ok {
		return nil, common.ErrAlreadyExists
	}
	r.nextID++
	a.ID = fmt.Sprintf("acc-%d", r.nextID)
	a.Revision = 1
	clone := *a
	r.byEmail[a.Email] = &clone
	return a, nil
}

func (r *memRepo) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failAll {
		return nil, errors.New("db down")
	}
	a, ok := r.byEmail[email]
	if !ok {
		return nil, common.ErrNotFound
	}
	clone := *a
	return &clone, nil
}

func (r *memRepo) GetByID(ctx context.Context, id string) (*models.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.byEmail {
		if a.ID == id {
			clone := *a
			return &clone, nil
		}
	}
	return nil, common.ErrNotFound
}

func (r *memRepo) GetByEmailAndOTP(ctx context.Context, email, code string) (*models.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.byEmail[email]
	if !ok || !a.OTPCode.Valid || a.OTPCode.String != code {
		return nil, common.ErrNotFound
	}
	clone := *a
	return &clone, nil
}

func (r *memRepo) Update(ctx context.Context, account *models.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for email, a := range r.byEmail {
		if a.ID == account.ID {
			if a.Revision != account.Revision {
				return common.ErrVersionConflict
			}
			account.Revision++
			clone := *account
			r.byEmail[email] = &clone
			return nil
		}
	}
	return common.ErrVersionConflict
}

type noopNotifier struct {
	err error
}

func (n *noopNotifier) Send(ctx context.Context, to, subject, body string) error { return n.err }

// --- helpers ---

type testEnv struct {
	server *Server
	router http.Handler
	repo   *memRepo
	notif  *noopNotifier
	issuer *auth.TokenIssuer
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	repo := newMemRepo()
	notif := &noopNotifier{}
	issuer := auth.NewTokenIssuer([]byte("test-secret"), time.Hour)
	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(io.Discard, nil)))
	cfg := &config.Config{OTPValidityDuration: 10 * time.Minute}

	authSvc := services.NewAuthService(repo, auth.NewHasher(bcrypt.MinCost), issuer, notif, logger, cfg)
	contactSvc := services.NewContactService(notif, "owner@x.com", logger)
	mediaSvc := services.NewMediaService(cfg)

	srv := NewServer(":0", logger, authSvc, contactSvc, mediaSvc, issuer)
	return &testEnv{server: srv, router: srv.Router(), repo: repo, notif: notif, issuer: issuer}
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	}

	req := httptest.NewRequest(method, path, rd)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decodeMap(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &m))
	return m
}

func (e *testEnv) otpFor(t *testing.T, email string) string {
	t.Helper()
	acc, err := e.repo.GetByEmail(context.Background(), email)
	require.NoError(t, err)
	require.True(t, acc.HasOTP())
	return acc.OTPCode.String
}

// --- tests ---

func TestRegisterEndpoint(t *testing.T) {
	e := newTestEnv(t)

	rec := e.do(t, http.MethodPost, "/api/register", "",
		map[string]string{"name": "Ann", "email": "ann@x.com", "password": "pw1"})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, decodeMap(t, rec)["message"], "verify your OTP")

	rec = e.do(t, http.MethodPost, "/api/register", "",
		map[string]string{"name": "Ann", "email": "ann@x.com", "password": "pw2"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "User already exists", decodeMap(t, rec)["message"])
}

func TestRegisterEndpoint_BadBody(t *testing.T) {
	e := newTestEnv(t)

	req := httptest.NewRequest(http.MethodPost, "/api/register", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestVerifyLoginProfileFlow(t *testing.T) {
	e := newTestEnv(t)

	rec := e.do(t, http.MethodPost, "/api/register", "",
		map[string]string{"name": "Ann", "email": "ann@x.com", "password": "pw1"})
	require.Equal(t, http.StatusOK, rec.Code)

	// wrong code first
	rec = e.do(t, http.MethodPost, "/api/verify-otp", "",
		map[string]string{"email": "ann@x.com", "otp": "000000"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid OTP", decodeMap(t, rec)["message"])

	rec = e.do(t, http.MethodPost, "/api/verify-otp", "",
		map[string]string{"email": "ann@x.com", "otp": e.otpFor(t, "ann@x.com")})
	require.Equal(t, http.StatusOK, rec.Code)
	token := decodeMap(t, rec)["token"].(string)
	require.NotEmpty(t, token)

	rec = e.do(t, http.MethodGet, "/api/user", token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Ann", decodeMap(t, rec)["name"])

	rec = e.do(t, http.MethodGet, "/api/profile", token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeMap(t, rec)
	assert.Equal(t, "ann@x.com", body["email"])
	_, leaked := body["passwordHash"]
	assert.False(t, leaked)
}

func TestLoginEndpoint(t *testing.T) {
	e := newTestEnv(t)

	rec := e.do(t, http.MethodPost, "/api/register", "",
		map[string]string{"name": "Ann", "email": "ann@x.com", "password": "pw1"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = e.do(t, http.MethodPost, "/api/login", "",
		map[string]string{"email": "nobody@x.com", "password": "pw1"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "User not found", decodeMap(t, rec)["message"])

	rec = e.do(t, http.MethodPost, "/api/login", "",
		map[string]string{"email": "ann@x.com", "password": "wrong"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid credentials", decodeMap(t, rec)["message"])

	rec = e.do(t, http.MethodPost, "/api/login", "",
		map[string]string{"email": "ann@x.com", "password": "pw1"})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, decodeMap(t, rec)["token"])
}

func TestPasswordRecoveryEndpoints(t *testing.T) {
	e := newTestEnv(t)

	rec := e.do(t, http.MethodPost, "/api/register", "",
		map[string]string{"name": "Ann", "email": "ann@x.com", "password": "pw1"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = e.do(t, http.MethodPost, "/api/forgot-password", "",
		map[string]string{"email": "nobody@x.com"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = e.do(t, http.MethodPost, "/api/forgot-password", "",
		map[string]string{"email": "ann@x.com"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OTP sent to email", decodeMap(t, rec)["message"])

	rec = e.do(t, http.MethodPost, "/api/reset-password", "",
		map[string]string{"email": "ann@x.com", "otp": "000000", "newPassword": "pw2"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid or expired OTP", decodeMap(t, rec)["message"])

	rec = e.do(t, http.MethodPost, "/api/reset-password", "",
		map[string]string{"email": "ann@x.com", "otp": e.otpFor(t, "ann@x.com"), "newPassword": "pw2"})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = e.do(t, http.MethodPost, "/api/login", "",
		map[string]string{"email": "ann@x.com", "password": "pw2"})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthenticateMiddleware(t *testing.T) {
	e := newTestEnv(t)

	// no token
	rec := e.do(t, http.MethodGet, "/api/profile", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// header present but empty scheme payload
	req := httptest.NewRequest(http.MethodGet, "/api/profile", nil)
	req.Header.Set("Authorization", "Bearer")
	recorder := httptest.NewRecorder()
	e.router.ServeHTTP(recorder, req)
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)

	// unverifiable token
	rec = e.do(t, http.MethodGet, "/api/profile", "garbage", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// token signed with another secret
	other := auth.NewTokenIssuer([]byte("other-secret"), time.Hour)
	tok, err := other.Issue("acc-1", "Ann")
	require.NoError(t, err)
	rec = e.do(t, http.MethodGet, "/api/profile", tok, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// valid token for a vanished account
	tok, err = e.issuer.Issue("acc-404", "Ghost")
	require.NoError(t, err)
	rec = e.do(t, http.MethodGet, "/api/profile", tok, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestInternalErrorsAreSanitized(t *testing.T) {
	e := newTestEnv(t)
	e.repo.failAll = true

	rec := e.do(t, http.MethodPost, "/api/login", "",
		map[string]string{"email": "ann@x.com", "password": "pw1"})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Internal server error", decodeMap(t, rec)["message"])
	assert.NotContains(t, rec.Body.String(), "db down")
}

func TestContactEndpoint(t *testing.T) {
	e := newTestEnv(t)

	rec := e.do(t, http.MethodPost, "/api/contact", "",
		map[string]string{"name": "Ann", "email": "ann@x.com", "message": "hi"})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Emails sent successfully!", decodeMap(t, rec)["message"])

	e.notif.err = errors.New("smtp down")
	rec = e.do(t, http.MethodPost, "/api/contact", "",
		map[string]string{"name": "Ann", "email": "ann@x.com", "message": "hi"})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
