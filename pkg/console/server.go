// Package console is the server-rendered web front end for account
// administration.
package console

import (
	"bytes"
	"embed"
	"errors"
	"html/template"
	"net/http"
	"strconv"

	"bank-admin/pkg/account"
	"bank-admin/pkg/admin"
	"bank-admin/pkg/logging"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

//go:embed templates/*.html
var templateFS embed.FS

// Page titles.
const (
	TitleAccounts = "Your Accounts"
	TitleCreate   = "Create Account"
	TitleEdit     = "Edit Account"
	TitleDelete   = "Delete Account"
)

// Options configures the console.
type Options struct {
	// Service runs every action; required
	Service *admin.Service
	// Currency is the ISO code used for the balance total
	Currency string
	// Metrics, when set, is wrapped around every route
	Metrics *HTTPMetrics
}

// Server renders the console pages.
type Server struct {
	svc       *admin.Service
	currency  string
	router    *mux.Router
	templates map[string]*template.Template
	metrics   *HTTPMetrics
	logger    *logging.Logger
}

// New builds the console router and parses the templates.
func New(opts Options) (*Server, error) {
	if opts.Service == nil {
		return nil, errors.New("console: service is required")
	}
	if opts.Currency == "" {
		opts.Currency = account.DefaultCurrency
	}

	s := &Server{
		svc:      opts.Service,
		currency: opts.Currency,
		metrics:  opts.Metrics,
		logger:   logging.Global().Named("console"),
	}

	if err := s.parseTemplates(); err != nil {
		return nil, err
	}

	r := mux.NewRouter()
	r.Use(requestLogger(s.logger))
	if s.metrics != nil {
		r.Use(s.metrics.middleware)
	}

	r.Handle("/", http.RedirectHandler("/accounts", http.StatusFound)).Methods(http.MethodGet)
	r.HandleFunc("/accounts", s.handleList).Methods(http.MethodGet)
	r.HandleFunc("/accounts", s.handleCreate).Methods(http.MethodPost)
	r.HandleFunc("/accounts/new", s.handleNew).Methods(http.MethodGet)
	r.HandleFunc("/accounts/{id:[0-9]+}", s.handleView).Methods(http.MethodGet)
	r.HandleFunc("/accounts/{id:[0-9]+}/edit", s.handleEdit).Methods(http.MethodGet)
	r.HandleFunc("/accounts/{id:[0-9]+}/edit", s.handleUpdate).Methods(http.MethodPost)
	r.HandleFunc("/accounts/{id:[0-9]+}/delete", s.handleConfirmDelete).Methods(http.MethodGet)
	r.HandleFunc("/accounts/{id:[0-9]+}/delete", s.handleDelete).Methods(http.MethodPost)
	r.HandleFunc("/status/retry", s.handleRetry).Methods(http.MethodPost)
	s.router = r

	return s, nil
}

// NewWithRegistry builds the console with request metrics registered in
// registry under namespace.
func NewWithRegistry(opts Options, registry prometheus.Registerer, namespace string) (*Server, error) {
	m := NewHTTPMetrics(namespace)
	if err := m.Register(registry); err != nil {
		return nil, err
	}
	opts.Metrics = m
	return New(opts)
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) parseTemplates() error {
	funcs := template.FuncMap{
		"money": func(d decimal.Decimal) string {
			return account.FormatMoney(d, s.currency)
		},
	}

	s.templates = make(map[string]*template.Template)
	for _, name := range []string{"accounts", "form", "confirm"} {
		t, err := template.New(name).Funcs(funcs).ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return err
		}
		s.templates[name] = t
	}
	return nil
}

// render executes a page into a buffer first so a template error never
// leaves a half-written response.
func (s *Server) render(w http.ResponseWriter, status int, name string, p *page) {
	t, ok := s.templates[name]
	if !ok {
		http.Error(w, "unknown page", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", p); err != nil {
		s.logger.Error("render failed", zap.String("page", name), zap.Error(err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

// redirect sends the browser back to the listing with a notice.
func (s *Server) redirect(w http.ResponseWriter, r *http.Request, n *admin.Notice) {
	setFlash(w, n)
	http.Redirect(w, r, "/accounts", http.StatusSeeOther)
}

// pathID reads the {id} route variable. The route pattern only admits
// digits; overflow is treated as not found.
func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		http.NotFound(w, r)
		return 0, false
	}
	return id, true
}
