// Package admin is the workflow shared by the web console and the
// command line: check the backend, load the listing, validate and submit
// forms, and turn every API outcome into the notice shown to the operator.
package admin

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"bank-admin/pkg/account"
	"bank-admin/pkg/client"
	"bank-admin/pkg/logging"
	"bank-admin/pkg/metrics"

	"go.uber.org/zap"
)

// Form names used for validation-failure metrics.
const (
	FormCreate = "create"
	FormUpdate = "update"
)

// Service runs admin actions against an AccountsAPI.
type Service struct {
	api     client.AccountsAPI
	baseURL string
	metrics metrics.MetricsCollector
	logger  *logging.Logger
}

// NewService creates a service. baseURL is only used in messages.
func NewService(api client.AccountsAPI, baseURL string, metricsCollector metrics.MetricsCollector) *Service {
	if metricsCollector == nil {
		metricsCollector = metrics.NoOpCollector{}
	}
	return &Service{
		api:     api,
		baseURL: baseURL,
		metrics: metricsCollector,
		logger:  logging.Global().Named("admin"),
	}
}

// BaseURL returns the accounts endpoint the service talks to.
func (s *Service) BaseURL() string {
	return s.baseURL
}

// Check is the result of a backend reachability check.
type Check struct {
	Reachable bool
	Status    string
	// Notice is nil when reachable; the previous notice should be cleared
	Notice *Notice
}

// Listing is the result of fetching all accounts.
type Listing struct {
	Accounts []account.Account
	Summary  account.Summary
	Status   string
	Notice   *Notice
	// OK is false when the listing could not be fetched
	OK bool
}

// Outcome is the result of a form submission or a delete.
type Outcome struct {
	Notice *Notice
	// Status replaces the backend status text when non-empty
	Status string
	// FieldErrors holds client-side or backend messages per field
	FieldErrors account.FieldErrors
	// Refresh asks the front end to re-fetch the listing
	Refresh bool
	// Account is the record returned by the backend on success
	Account *account.Account
}

// OK reports whether the action succeeded.
func (o Outcome) OK() bool {
	return !o.Notice.IsError() && o.FieldErrors.Empty()
}

// CheckBackend reports whether the accounts API answers at all.
func (s *Service) CheckBackend(ctx context.Context) Check {
	if err := s.api.Ping(ctx); err != nil {
		s.logger.Warn("backend check failed", zap.String("api_base", s.baseURL), zap.Error(err))
		return Check{
			Status: StatusUnreachable,
			Notice: failure(fmt.Sprintf("Cannot reach backend at %s. Make sure the accounts service is running and reachable from this host.", s.baseURL)),
		}
	}
	return Check{Reachable: true, Status: StatusReachable}
}

// Load fetches every account and summarises the listing.
func (s *Service) Load(ctx context.Context) Listing {
	accounts, err := s.api.List(ctx)
	if err != nil {
		s.logger.Info("listing failed", zap.Error(err))
		return Listing{
			Accounts: []account.Account{},
			Status:   StatusLoadFailed,
			Notice:   failure(statusLine(err)),
		}
	}
	return Listing{
		Accounts: accounts,
		Summary:  account.Summarize(accounts),
		Status:   StatusReachable,
		OK:       true,
	}
}

// Create validates the form and submits it. Client-side errors stop
// before any API call.
func (s *Service) Create(ctx context.Context, form account.CreateForm) Outcome {
	req, fieldErrs := form.Validate()
	if !fieldErrs.Empty() {
		s.metrics.RecordValidationFailure(FormCreate)
		return Outcome{FieldErrors: fieldErrs}
	}

	created, err := s.api.Create(ctx, req)
	if err != nil {
		return s.submitFailure(err, "Validation failed (400)")
	}

	s.logger.Info("account created", zap.Int64("id", created.ID))
	return Outcome{
		Notice:  success("Account created: " + created.IDString()),
		Refresh: true,
		Account: created,
	}
}

// StartEdit fetches an account and returns its edit form.
func (s *Service) StartEdit(ctx context.Context, id int64) (account.UpdateForm, Outcome) {
	a, err := s.api.Get(ctx, id)
	if err != nil {
		return account.UpdateForm{}, s.readFailure(err)
	}
	return account.EditForm(*a), Outcome{Account: a}
}

// Update validates the form and submits it.
func (s *Service) Update(ctx context.Context, id int64, form account.UpdateForm) Outcome {
	req, fieldErrs := form.Validate()
	if !fieldErrs.Empty() {
		s.metrics.RecordValidationFailure(FormUpdate)
		return Outcome{FieldErrors: fieldErrs}
	}

	updated, err := s.api.Update(ctx, id, req)
	if err != nil {
		return s.submitFailure(err, "Validation failed")
	}

	s.logger.Info("account updated", zap.Int64("id", updated.ID))
	return Outcome{
		Notice:  success("Account updated: " + updated.IDString()),
		Refresh: true,
		Account: updated,
	}
}

// View fetches an account for the detail view.
func (s *Service) View(ctx context.Context, id int64) (*account.Account, Outcome) {
	a, err := s.api.Get(ctx, id)
	if err != nil {
		return nil, s.readFailure(err)
	}
	return a, Outcome{Account: a}
}

// ConfirmPrompt is the question asked before a delete.
func ConfirmPrompt(id int64) string {
	return "Delete account " + strconv.FormatInt(id, 10) + "?"
}

// Delete removes an account. A 404 still asks for a refresh.
func (s *Service) Delete(ctx context.Context, id int64) Outcome {
	idText := strconv.FormatInt(id, 10)

	err := s.api.Delete(ctx, id)
	switch {
	case err == nil:
		s.logger.Info("account deleted", zap.Int64("id", id))
		return Outcome{Notice: success("Account deleted: " + idText), Refresh: true}
	case client.IsNotFound(err):
		return Outcome{Notice: failure("Account not found: " + idText), Refresh: true}
	}
	return s.submitFailure(err, "")
}

// submitFailure maps a failed create, update or delete onto an outcome.
// validationFallback is shown for a 400 with neither field errors nor a
// message.
func (s *Service) submitFailure(err error, validationFallback string) Outcome {
	apiErr, ok := client.AsAPIError(err)
	if !ok {
		s.logger.Warn("submit failed", zap.Error(err))
		return Outcome{Notice: failure(networkError(err)), Status: StatusNetworkError}
	}

	if apiErr.StatusCode == http.StatusBadRequest && validationFallback != "" {
		switch {
		case !apiErr.Decoded:
			return Outcome{Notice: failure(validationFallback)}
		case apiErr.FieldErrors != nil:
			fieldErrs := account.FieldErrors{}
			fieldErrs.Merge(apiErr.FieldErrors)
			return Outcome{Notice: failure("Validation failed"), FieldErrors: fieldErrs}
		case apiErr.Message != "":
			return Outcome{Notice: failure(apiErr.Message)}
		}
		return Outcome{Notice: failure(validationFallback)}
	}

	if !apiErr.Decoded {
		return Outcome{Notice: failure(apiErr.StatusLine())}
	}
	if apiErr.Message != "" {
		return Outcome{Notice: failure(apiErr.Message)}
	}
	if text := apiErr.StatusText(); text != "" {
		return Outcome{Notice: failure(text)}
	}
	return Outcome{Notice: failure(apiErr.StatusLine())}
}

// readFailure maps a failed get onto an outcome.
func (s *Service) readFailure(err error) Outcome {
	if _, ok := client.AsAPIError(err); ok {
		return Outcome{Notice: failure(statusLine(err))}
	}
	return Outcome{Notice: failure(networkError(err)), Status: StatusNetworkError}
}

// statusLine renders "<code> <text>" for API errors and the network
// message otherwise.
func statusLine(err error) string {
	if apiErr, ok := client.AsAPIError(err); ok {
		return apiErr.StatusLine()
	}
	return networkError(err)
}

// networkError renders a failure that produced no usable response.
func networkError(err error) string {
	var te *client.TransportError
	if errors.As(err, &te) {
		return "Network error: " + te.Err.Error()
	}
	return "Network error: " + err.Error()
}
