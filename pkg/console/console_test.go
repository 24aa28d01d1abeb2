package console

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"bank-admin/pkg/account"
	"bank-admin/pkg/admin"
	"bank-admin/pkg/client"
	"bank-admin/pkg/client/mock"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupConsole(t *testing.T) (*Server, *mock.Backend) {
	t.Helper()
	backend := mock.NewBackend()
	srv := httptest.NewServer(backend)
	t.Cleanup(srv.Close)

	c, err := client.New(client.Config{BaseURL: srv.URL + "/api/accounts"})
	require.NoError(t, err)

	s, err := New(Options{Service: admin.NewService(c, c.BaseURL(), nil)})
	require.NoError(t, err)
	return s, backend
}

func do(s http.Handler, method, target string, form url.Values, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	s.ServeHTTP(w, req)
	return w
}

// follow performs the redirect in w carrying its flash cookie.
func follow(t *testing.T, s http.Handler, w *httptest.ResponseRecorder) *httptest.ResponseRecorder {
	t.Helper()
	require.Equal(t, http.StatusSeeOther, w.Code)
	require.Equal(t, "/accounts", w.Header().Get("Location"))
	return do(s, http.MethodGet, "/accounts", nil, w.Result().Cookies()...)
}

func TestConsole_RootRedirects(t *testing.T) {
	s, _ := setupConsole(t)

	w := do(s, http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/accounts", w.Header().Get("Location"))
}

func TestConsole_List(t *testing.T) {
	s, backend := setupConsole(t)
	backend.Seed(account.Account{OwnerName: "Ada Lovelace", Email: "ada@example.com", Balance: decimal.RequireFromString("1000.50")})
	backend.Seed(account.Account{OwnerName: "Bob", Balance: decimal.RequireFromString("250")})

	w := do(s, http.MethodGet, "/accounts", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()

	assert.Contains(t, body, TitleAccounts)
	assert.Contains(t, body, admin.StatusReachable)
	assert.Contains(t, body, `<strong id="summary-count">2</strong>`)
	assert.Contains(t, body, `<strong id="summary-total">$1,250.50</strong>`)
	assert.Contains(t, body, "Ada Lovelace")
	assert.Contains(t, body, "<td>1000.5</td>")
	assert.Contains(t, body, `href="/accounts/2/delete"`)
	assert.NotContains(t, body, `id="notice"`)
	assert.NotContains(t, body, "No accounts found.")
}

func TestConsole_ListEmpty(t *testing.T) {
	s, _ := setupConsole(t)

	body := do(s, http.MethodGet, "/accounts", nil).Body.String()
	assert.Contains(t, body, "No accounts found.")
	assert.Contains(t, body, `<strong id="summary-total">$0.00</strong>`)
}

func TestConsole_BackendDown(t *testing.T) {
	api := &mock.API{PingFunc: func(ctx context.Context) error {
		return &client.TransportError{Op: client.OpPing, Err: errors.New("connection refused")}
	}}
	s, err := New(Options{Service: admin.NewService(api, "http://down.test/api/accounts", nil)})
	require.NoError(t, err)

	body := do(s, http.MethodGet, "/accounts", nil).Body.String()
	assert.Contains(t, body, admin.StatusUnreachable)
	assert.Contains(t, body, "Cannot reach backend at http://down.test/api/accounts.")
	assert.Contains(t, body, `action="/status/retry"`)
	assert.Contains(t, body, "No accounts found.")
	assert.Equal(t, 0, api.ListCalls())

	w := do(s, http.MethodPost, "/status/retry", nil)
	assert.Contains(t, follow(t, s, w).Body.String(), "Make sure the accounts service is running")
}

func TestConsole_ListFailure(t *testing.T) {
	api := &mock.API{ListFunc: func(ctx context.Context) ([]account.Account, error) {
		return nil, &client.APIError{Op: client.OpList, StatusCode: 500, Status: "500 Internal Server Error"}
	}}
	s, err := New(Options{Service: admin.NewService(api, "http://x.test", nil)})
	require.NoError(t, err)

	body := do(s, http.MethodGet, "/accounts", nil).Body.String()
	assert.Contains(t, body, admin.StatusLoadFailed)
	assert.Contains(t, body, "500 Internal Server Error")
}

func TestConsole_NonNumericIDs(t *testing.T) {
	s, _ := setupConsole(t)

	for _, target := range []string{"/accounts/abc", "/accounts/1x/edit", "/accounts/-1/delete", "/accounts/99999999999999999999"} {
		w := do(s, http.MethodGet, target, nil)
		assert.Equal(t, http.StatusNotFound, w.Code, target)
	}
}

func TestConsole_CreateFlow(t *testing.T) {
	s, backend := setupConsole(t)

	w := do(s, http.MethodGet, "/accounts/new", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), TitleCreate)
	assert.Contains(t, w.Body.String(), `name="initialDeposit"`)

	w = do(s, http.MethodPost, "/accounts", url.Values{
		"ownerName":      {"  Ada Lovelace "},
		"email":          {"ada@example.com"},
		"initialDeposit": {"100.00"},
	})
	assert.Equal(t, 1, backend.Len())

	page := follow(t, s, w)
	body := page.Body.String()
	assert.Contains(t, body, `class="notice notice-success"`)
	assert.Contains(t, body, "Account created: 1")
	assert.Contains(t, body, "Ada Lovelace")

	// The flash is shown once
	var cleared bool
	for _, c := range page.Result().Cookies() {
		if c.Name == flashCookie && c.MaxAge < 0 {
			cleared = true
		}
	}
	assert.True(t, cleared, "Expected flash cookie to be cleared")
}

func TestConsole_CreateFieldErrors(t *testing.T) {
	s, backend := setupConsole(t)

	w := do(s, http.MethodPost, "/accounts", url.Values{
		"ownerName":      {" "},
		"email":          {"not-an-email"},
		"initialDeposit": {"-5"},
	})

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, account.MsgOwnerRequired)
	assert.Contains(t, body, account.MsgEmailInvalid)
	assert.Contains(t, body, "Enter a valid amount ≥ 0")
	assert.Contains(t, body, `value="not-an-email"`)
	assert.Contains(t, body, `value="-5"`)
	assert.Equal(t, 0, backend.Requests())
}

func TestConsole_CreateBackendFailure(t *testing.T) {
	s, backend := setupConsole(t)
	backend.FailWith(http.StatusInternalServerError)

	w := do(s, http.MethodPost, "/accounts", url.Values{"ownerName": {"Ada"}, "initialDeposit": {"1"}})

	assert.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `class="notice notice-error"`)
	assert.Contains(t, body, "injected failure")
	assert.Contains(t, body, `value="Ada"`)
}

func TestConsole_UpdateBackendFailureKeepsForm(t *testing.T) {
	s, backend := setupConsole(t)
	backend.Seed(account.Account{OwnerName: "Ada", Balance: decimal.NewFromInt(1)})
	backend.FailWith(http.StatusInternalServerError)

	w := do(s, http.MethodPost, "/accounts/1/edit", url.Values{"ownerName": {"Ada King"}})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Location"))
	body := w.Body.String()
	assert.Contains(t, body, TitleEdit)
	assert.Contains(t, body, `class="notice notice-error"`)
	assert.Contains(t, body, `value="Ada King"`)
}

func TestConsole_ViewEditDelete(t *testing.T) {
	s, backend := setupConsole(t)
	seeded := backend.Seed(account.Account{OwnerName: "Ada", Email: "ada@example.com", Balance: decimal.NewFromInt(10)})

	body := do(s, http.MethodGet, "/accounts/1", nil).Body.String()
	assert.Contains(t, body, `<aside id="details">`)
	assert.Contains(t, body, seeded.AccountNumber)

	w := do(s, http.MethodGet, "/accounts/1/edit", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body = w.Body.String()
	assert.Contains(t, body, TitleEdit)
	assert.Contains(t, body, `value="Ada"`)
	assert.NotContains(t, body, `name="initialDeposit"`)

	w = do(s, http.MethodPost, "/accounts/1/edit", url.Values{"ownerName": {"Ada King"}, "email": {""}})
	assert.Contains(t, follow(t, s, w).Body.String(), "Account updated: 1")
	stored, _ := backend.Account(1)
	assert.Equal(t, "Ada King", stored.OwnerName)
	assert.Equal(t, "", stored.Email)

	w = do(s, http.MethodPost, "/accounts/1/edit", url.Values{"ownerName": {""}})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), account.MsgOwnerRequired)

	w = do(s, http.MethodGet, "/accounts/1/delete", nil)
	assert.Contains(t, w.Body.String(), "Delete account 1?")

	w = do(s, http.MethodPost, "/accounts/1/delete", nil)
	body = follow(t, s, w).Body.String()
	assert.Contains(t, body, "Account deleted: 1")
	assert.Contains(t, body, "No accounts found.")

	w = do(s, http.MethodPost, "/accounts/1/delete", nil)
	assert.Contains(t, follow(t, s, w).Body.String(), "Account not found: 1")
}

func TestConsole_ViewMissing(t *testing.T) {
	s, _ := setupConsole(t)

	body := do(s, http.MethodGet, "/accounts/7", nil).Body.String()
	assert.Contains(t, body, "404 Not Found")
	assert.NotContains(t, body, `<aside id="details">`)

	w := do(s, http.MethodGet, "/accounts/7/edit", nil)
	assert.Contains(t, follow(t, s, w).Body.String(), "404 Not Found")
}

func TestConsole_Retry(t *testing.T) {
	s, _ := setupConsole(t)

	w := do(s, http.MethodPost, "/status/retry", nil)
	assert.Contains(t, follow(t, s, w).Body.String(), admin.RetrySuccessText)
}

func TestConsole_Metrics(t *testing.T) {
	srv := httptest.NewServer(mock.NewBackend())
	t.Cleanup(srv.Close)
	c, err := client.New(client.Config{BaseURL: srv.URL + "/api/accounts"})
	require.NoError(t, err)

	registry := prometheus.NewRegistry()
	s, err := NewWithRegistry(Options{Service: admin.NewService(c, c.BaseURL(), nil)}, registry, "bank_admin")
	require.NoError(t, err)

	do(s, http.MethodGet, "/accounts", nil)
	do(s, http.MethodGet, "/accounts/3", nil)

	m := s.metrics
	assert.Equal(t, float64(1), testutil.ToFloat64(m.requests.WithLabelValues("GET", "/accounts", "200")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.requests.WithLabelValues("GET", "/accounts/{id:[0-9]+}", "200")))

	_, err = NewWithRegistry(Options{Service: admin.NewService(c, c.BaseURL(), nil)}, registry, "bank_admin")
	assert.Error(t, err, "Expected duplicate registration to fail")
}
