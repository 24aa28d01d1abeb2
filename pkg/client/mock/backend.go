// Package mock provides test doubles for the accounts API: an in-memory
// REST backend served over HTTP, and a hook-based AccountsAPI fake.
package mock

import (
	"encoding/json"
	"net/http"
	"net/mail"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"bank-admin/pkg/account"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
)

// Validation messages produced by the backend for bad request bodies.
const (
	MsgNotBlank = "must not be blank"
	MsgNotNull  = "must not be null"
	MsgEmail    = "must be a well-formed email address"

	// MsgNotFound is the "message" of a 404 body
	MsgNotFound = "Account not found"
)

// Backend is an in-memory accounts REST API with the same routes,
// status codes and error bodies as the real service. The zero value is
// not usable; call NewBackend.
type Backend struct {
	mu       sync.Mutex
	accounts map[int64]account.Account
	nextID   int64
	router   *mux.Router
	now      func() time.Time

	// failWith is the injected status; see FailWith
	failWith int32
	requests int64
}

// NewBackend creates an empty backend mounted at /api/accounts.
func NewBackend() *Backend {
	b := &Backend{
		accounts: make(map[int64]account.Account),
		nextID:   1,
		now:      time.Now,
	}

	r := mux.NewRouter()
	api := r.PathPrefix("/api/accounts").Subrouter()
	api.HandleFunc("", b.handleList).Methods(http.MethodGet)
	api.HandleFunc("", b.handleCreate).Methods(http.MethodPost)
	api.HandleFunc("/{id}", b.handleGet).Methods(http.MethodGet)
	api.HandleFunc("/{id}", b.handleUpdate).Methods(http.MethodPut)
	api.HandleFunc("/{id}", b.handleDelete).Methods(http.MethodDelete)
	b.router = r

	return b
}

// ServeHTTP implements http.Handler.
func (b *Backend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	atomic.AddInt64(&b.requests, 1)
	if code := int(atomic.LoadInt32(&b.failWith)); code != 0 {
		writeJSON(w, code, map[string]string{
			"error":   "InjectedFailure",
			"message": "injected failure",
			"trace":   "",
		})
		return
	}
	b.router.ServeHTTP(w, r)
}

// FailWith makes every request answer with status code. 0 restores
// normal behavior.
func (b *Backend) FailWith(code int) {
	atomic.StoreInt32(&b.failWith, int32(code))
}

// Requests returns the number of requests served (thread-safe).
func (b *Backend) Requests() int {
	return int(atomic.LoadInt64(&b.requests))
}

// Seed stores an account directly, assigning an id when a.ID is zero.
// It returns the stored record.
func (b *Backend) Seed(a account.Account) account.Account {
	b.mu.Lock()
	defer b.mu.Unlock()

	if a.ID == 0 {
		a.ID = b.nextID
	}
	if a.ID >= b.nextID {
		b.nextID = a.ID + 1
	}
	if a.AccountNumber == "" {
		a.AccountNumber = accountNumber()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = account.Timestamp{Time: b.now().UTC().Truncate(time.Second)}
		a.UpdatedAt = a.CreatedAt
	}
	b.accounts[a.ID] = a
	return a
}

// Account returns a stored account.
func (b *Backend) Account(id int64) (account.Account, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	a, ok := b.accounts[id]
	return a, ok
}

// Len returns the number of stored accounts.
func (b *Backend) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.accounts)
}

// wireBody accepts both create and update bodies. Pointers distinguish
// missing from empty.
type wireBody struct {
	OwnerName      *string          `json:"ownerName"`
	Email          *string          `json:"email"`
	InitialDeposit *decimal.Decimal `json:"initialDeposit"`
}

func (b *Backend) handleList(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	list := make([]account.Account, 0, len(b.accounts))
	for _, a := range b.accounts {
		list = append(list, a)
	}
	b.mu.Unlock()

	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	writeJSON(w, http.StatusOK, list)
}

func (b *Backend) handleCreate(w http.ResponseWriter, r *http.Request) {
	var body wireBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeServerError(w, "HttpMessageNotReadableException", err.Error())
		return
	}

	errs := validate(body)
	if body.InitialDeposit == nil {
		errs["initialDeposit"] = MsgNotNull
	}
	if len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{"errors": errs})
		return
	}

	a := b.Seed(account.Account{
		OwnerName: *body.OwnerName,
		Email:     deref(body.Email),
		Balance:   *body.InitialDeposit,
	})
	writeJSON(w, http.StatusCreated, a)
}

func (b *Backend) handleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	a, found := b.Account(id)
	if !found {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": MsgNotFound})
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (b *Backend) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var body wireBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeServerError(w, "HttpMessageNotReadableException", err.Error())
		return
	}
	if errs := validate(body); len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{"errors": errs})
		return
	}

	b.mu.Lock()
	a, found := b.accounts[id]
	if found {
		a.OwnerName = *body.OwnerName
		a.Email = deref(body.Email)
		a.UpdatedAt = account.Timestamp{Time: b.now().UTC().Truncate(time.Second)}
		b.accounts[id] = a
	}
	b.mu.Unlock()

	if !found {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": MsgNotFound})
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (b *Backend) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	b.mu.Lock()
	_, found := b.accounts[id]
	delete(b.accounts, id)
	b.mu.Unlock()

	if !found {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": MsgNotFound})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func validate(body wireBody) map[string]string {
	errs := make(map[string]string)
	if body.OwnerName == nil || strings.TrimSpace(*body.OwnerName) == "" {
		errs["ownerName"] = MsgNotBlank
	}
	if body.Email != nil && *body.Email != "" {
		if _, err := mail.ParseAddress(*body.Email); err != nil {
			errs["email"] = MsgEmail
		}
	}
	return errs
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeServerError(w, "MethodArgumentTypeMismatchException", "invalid id")
		return 0, false
	}
	return id, true
}

func writeServerError(w http.ResponseWriter, kind, message string) {
	writeJSON(w, http.StatusInternalServerError, map[string]string{
		"error":   kind,
		"message": message,
		"trace":   kind + ": " + message,
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func accountNumber() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:18])
}
