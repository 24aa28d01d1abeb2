package console

import (
	"net/http"

	"bank-admin/pkg/account"
	"bank-admin/pkg/admin"
)

// page is the data behind every template.
type page struct {
	Title     string
	Status    string
	Reachable bool
	Notice    *admin.Notice

	Accounts []account.Account
	Summary  account.Summary
	Selected *account.Account

	Form *formView

	ConfirmID   int64
	ConfirmText string
}

// formView is the create/edit form as rendered.
type formView struct {
	Action         string
	Editing        bool
	OwnerName      string
	Email          string
	InitialDeposit string
	Errors         account.FieldErrors
}

// listPage checks the backend, then loads the listing when it answered.
// notice, when set, takes precedence over notices from the check or load.
func (s *Server) listPage(r *http.Request, notice *admin.Notice) *page {
	p := &page{Title: TitleAccounts, Accounts: []account.Account{}}

	check := s.svc.CheckBackend(r.Context())
	p.Status = check.Status
	p.Reachable = check.Reachable
	p.Notice = check.Notice

	if check.Reachable {
		listing := s.svc.Load(r.Context())
		p.Accounts = listing.Accounts
		p.Summary = listing.Summary
		p.Status = listing.Status
		p.Reachable = listing.OK
		if listing.Notice != nil {
			p.Notice = listing.Notice
		}
	}

	if notice != nil {
		p.Notice = notice
	}
	return p
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	s.render(w, http.StatusOK, "accounts", s.listPage(r, takeFlash(w, r)))
}

func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	p := s.listPage(r, takeFlash(w, r))
	a, out := s.svc.View(r.Context(), id)
	if out.Notice != nil {
		p.Notice = out.Notice
	}
	if out.Status != "" {
		p.Status = out.Status
		p.Reachable = false
	}
	p.Selected = a
	s.render(w, http.StatusOK, "accounts", p)
}

func (s *Server) handleNew(w http.ResponseWriter, r *http.Request) {
	s.render(w, http.StatusOK, "form", &page{
		Title:  TitleCreate,
		Notice: takeFlash(w, r),
		Form:   &formView{Action: "/accounts"},
	})
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	form := account.CreateForm{
		OwnerName:      r.PostForm.Get(account.FieldOwnerName),
		Email:          r.PostForm.Get(account.FieldEmail),
		InitialDeposit: r.PostForm.Get(account.FieldInitialDeposit),
	}

	out := s.svc.Create(r.Context(), form)
	if out.OK() {
		s.redirect(w, r, out.Notice)
		return
	}

	form = form.Normalize()
	s.renderForm(w, TitleCreate, out, &formView{
		Action:         "/accounts",
		OwnerName:      form.OwnerName,
		Email:          form.Email,
		InitialDeposit: form.InitialDeposit,
	})
}

func (s *Server) handleEdit(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	form, out := s.svc.StartEdit(r.Context(), id)
	if out.Notice != nil {
		s.redirect(w, r, out.Notice)
		return
	}

	s.render(w, http.StatusOK, "form", &page{
		Title: TitleEdit,
		Form: &formView{
			Action:    r.URL.Path,
			Editing:   true,
			OwnerName: form.OwnerName,
			Email:     form.Email,
		},
	})
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	form := account.UpdateForm{
		OwnerName: r.PostForm.Get(account.FieldOwnerName),
		Email:     r.PostForm.Get(account.FieldEmail),
	}

	out := s.svc.Update(r.Context(), id, form)
	if out.OK() {
		s.redirect(w, r, out.Notice)
		return
	}

	form = form.Normalize()
	s.renderForm(w, TitleEdit, out, &formView{
		Action:    r.URL.Path,
		Editing:   true,
		OwnerName: form.OwnerName,
		Email:     form.Email,
	})
}

// renderForm re-renders a rejected form with its values and errors.
// Field errors answer 422; other failures answer 200 with the notice.
func (s *Server) renderForm(w http.ResponseWriter, title string, out admin.Outcome, fv *formView) {
	fv.Errors = out.FieldErrors
	p := &page{Title: title, Notice: out.Notice, Status: out.Status, Form: fv}

	status := http.StatusOK
	if !out.FieldErrors.Empty() {
		status = http.StatusUnprocessableEntity
	}
	s.render(w, status, "form", p)
}

func (s *Server) handleConfirmDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	s.render(w, http.StatusOK, "confirm", &page{
		Title:       TitleDelete,
		ConfirmID:   id,
		ConfirmText: admin.ConfirmPrompt(id),
	})
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	out := s.svc.Delete(r.Context(), id)
	s.redirect(w, r, out.Notice)
}

func (s *Server) handleRetry(w http.ResponseWriter, r *http.Request) {
	check := s.svc.CheckBackend(r.Context())
	if !check.Reachable {
		s.redirect(w, r, check.Notice)
		return
	}
	s.redirect(w, r, &admin.Notice{Kind: admin.NoticeSuccess, Text: admin.RetrySuccessText})
}
