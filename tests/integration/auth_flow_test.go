package integration

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testDB *TestDB

func TestMain(m *testing.M) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	db, err := SetupTestDatabase(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "integration setup failed: %v\n", err)
		os.Exit(1)
	}
	testDB = db

	code := m.Run()

	teardownCtx, teardownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer teardownCancel()
	_ = testDB.Teardown(teardownCtx)

	os.Exit(code)
}

// newServer gives each test a fresh server (and so a fresh login limiter)
// over clean tables.
func newServer(t *testing.T) *TestServer {
	t.Helper()
	require.NoError(t, testDB.CleanupTables(context.Background()))

	ts := NewTestServer(testDB.DB, "http://metadata.invalid")
	t.Cleanup(ts.Close)
	return ts
}

func TestSignupLoginMe(t *testing.T) {
	ts := newServer(t)
	email, password := TestUser("signup")

	resp, err := ts.Request(http.MethodPost, "/api/v1/auth/signup", map[string]string{
		"email":    email,
		"password": password,
		"name":     "New Viewer",
	}, nil)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	token, _, err := ts.Login(email, password)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	meResp, err := ts.RequestWithAuth(http.MethodGet, "/api/v1/users/me", token, nil)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, meResp.StatusCode)

	var profile struct {
		Email string `json:"email"`
		Name  string `json:"name"`
	}
	require.NoError(t, ParseJSONResponse(meResp, &profile))
	assert.Equal(t, email, profile.Email)
	assert.Equal(t, "New Viewer", profile.Name)
}

func TestSignup_DuplicateEmail(t *testing.T) {
	ts := newServer(t)
	email, password := TestUser("dup")

	body := map[string]string{"email": email, "password": password, "name": "First"}
	resp, err := ts.Request(http.MethodPost, "/api/v1/auth/signup", body, nil)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, err = ts.Request(http.MethodPost, "/api/v1/auth/signup", body, nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestLogin_LockoutAfterFiveFailures(t *testing.T) {
	ts := newServer(t)
	email, password := TestUser("lockout")

	_, err := SeedUser(context.Background(), testDB.Pool, email, password)
	require.NoError(t, err)

	// Four failures stay 401
	for i := 0; i < 4; i++ {
		_, resp, err := ts.Login(email, "wrong-password")
		require.NoError(t, err)
		resp.Body.Close()
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode, "attempt %d", i+1)
	}

	// Fifth failure trips the lock
	_, resp, err := ts.Login(email, "wrong-password")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusLocked, resp.StatusCode)

	// Correct password is rejected while locked
	_, resp, err = ts.Login(email, password)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusLocked, resp.StatusCode)
}

func TestLogin_RateLimitPerIP(t *testing.T) {
	ts := newServer(t)
	email, _ := TestUser("ratelimit")

	// The limiter allows 10 attempts per window regardless of outcome
	for i := 0; i < 10; i++ {
		_, resp, err := ts.Login(email, "whatever")
		require.NoError(t, err)
		resp.Body.Close()
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode, "attempt %d", i+1)
	}

	_, resp, err := ts.Login(email, "whatever")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
}

func TestLogout_RevokesSession(t *testing.T) {
	ts := newServer(t)
	email, password := TestUser("logout")

	_, err := SeedUser(context.Background(), testDB.Pool, email, password)
	require.NoError(t, err)

	token, _, err := ts.Login(email, password)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	resp, err := ts.RequestWithAuth(http.MethodPost, "/api/v1/auth/logout", token, nil)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, err = ts.RequestWithAuth(http.MethodGet, "/api/v1/users/me", token, nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestPasswordResetFlow(t *testing.T) {
	ts := newServer(t)
	email, password := TestUser("reset")

	_, err := SeedUser(context.Background(), testDB.Pool, email, password)
	require.NoError(t, err)

	resp, err := ts.Request(http.MethodPost, "/api/v1/auth/password-reset/request", map[string]string{
		"email": email,
	}, nil)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusAccepted, resp.StatusCode)

	sent := ts.Mailer.LastEmail()
	require.NotNil(t, sent, "reset email should have been sent")
	assert.Equal(t, email, sent.To)

	// A fresh token verifies without being consumed
	resp, err = ts.Request(http.MethodGet, "/api/v1/auth/password-reset/verify?token="+sent.Token, nil, nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	newPassword := "BrandNewPassword456!"
	resp, err = ts.Request(http.MethodPost, "/api/v1/auth/password-reset/confirm", map[string]string{
		"token":        sent.Token,
		"new_password": newPassword,
	}, nil)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// Once spent, the same token no longer verifies
	resp, err = ts.Request(http.MethodGet, "/api/v1/auth/password-reset/verify?token="+sent.Token, nil, nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// Old password no longer works, new one does
	_, resp, err = ts.Login(email, password)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	token, _, err := ts.Login(email, newPassword)
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	// The token is single use
	resp, err = ts.Request(http.MethodPost, "/api/v1/auth/password-reset/confirm", map[string]string{
		"token":        sent.Token,
		"new_password": "AnotherPassword789!",
	}, nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestPasswordResetRequest_UnknownEmailSilent(t *testing.T) {
	ts := newServer(t)

	resp, err := ts.Request(http.MethodPost, "/api/v1/auth/password-reset/request", map[string]string{
		"email": "nobody@example.com",
	}, nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)
	assert.Nil(t, ts.Mailer.LastEmail())
}
