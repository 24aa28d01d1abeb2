package account

import (
	"regexp"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// Form field names. They match the JSON property names so that field
// errors returned by the backend land on the same inputs.
const (
	FieldOwnerName      = "ownerName"
	FieldEmail          = "email"
	FieldInitialDeposit = "initialDeposit"
)

// Messages shown next to a field when a client-side check fails.
const (
	MsgOwnerRequired   = "Owner name is required"
	MsgDepositRequired = "Initial deposit is required"
	MsgDepositInvalid  = "Enter a valid amount ≥ 0"
	MsgEmailInvalid    = "Enter a valid email"
)

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// fieldOrder is the order fields appear on the forms.
var fieldOrder = []string{FieldOwnerName, FieldEmail, FieldInitialDeposit}

// FieldErrors maps a form field to the message displayed beside it.
type FieldErrors map[string]string

// Set records msg for field, replacing any earlier message.
func (fe FieldErrors) Set(field, msg string) {
	fe[field] = msg
}

// Empty reports whether no field has an error.
func (fe FieldErrors) Empty() bool {
	return len(fe) == 0
}

// Get returns the message for field, or "".
func (fe FieldErrors) Get(field string) string {
	return fe[field]
}

// Merge copies every entry of other into fe.
func (fe FieldErrors) Merge(other map[string]string) {
	for f, msg := range other {
		fe[f] = msg
	}
}

// Fields returns the fields with errors, form fields first in form order,
// then any unknown fields sorted by name.
func (fe FieldErrors) Fields() []string {
	out := make([]string, 0, len(fe))
	known := make(map[string]bool, len(fieldOrder))
	for _, f := range fieldOrder {
		known[f] = true
		if _, ok := fe[f]; ok {
			out = append(out, f)
		}
	}
	var extra []string
	for f := range fe {
		if !known[f] {
			extra = append(extra, f)
		}
	}
	sort.Strings(extra)
	return append(out, extra...)
}

// Error implements error so that a failed check can travel as one.
func (fe FieldErrors) Error() string {
	parts := make([]string, 0, len(fe))
	for _, f := range fe.Fields() {
		parts = append(parts, f+": "+fe[f])
	}
	return strings.Join(parts, "; ")
}

// CreateForm is the raw input of the create screen.
type CreateForm struct {
	OwnerName      string
	Email          string
	InitialDeposit string
}

// Normalize trims every field.
func (f CreateForm) Normalize() CreateForm {
	return CreateForm{
		OwnerName:      strings.TrimSpace(f.OwnerName),
		Email:          strings.TrimSpace(f.Email),
		InitialDeposit: strings.TrimSpace(f.InitialDeposit),
	}
}

// Validate checks presence and format and, when nothing failed, returns
// the request to submit.
func (f CreateForm) Validate() (CreateRequest, FieldErrors) {
	f = f.Normalize()
	errs := FieldErrors{}

	if f.OwnerName == "" {
		errs.Set(FieldOwnerName, MsgOwnerRequired)
	}

	var deposit decimal.Decimal
	if f.InitialDeposit == "" {
		errs.Set(FieldInitialDeposit, MsgDepositRequired)
	} else if d, ok := parseDeposit(f.InitialDeposit); !ok {
		errs.Set(FieldInitialDeposit, MsgDepositInvalid)
	} else {
		deposit = d
	}

	if f.Email != "" && !emailPattern.MatchString(f.Email) {
		errs.Set(FieldEmail, MsgEmailInvalid)
	}

	if !errs.Empty() {
		return CreateRequest{}, errs
	}
	return CreateRequest{
		OwnerName:      f.OwnerName,
		Email:          f.Email,
		InitialDeposit: deposit,
	}, nil
}

// Deposit bounds. Outside them the decimal would expand to an absurd
// number of digits when encoded.
const (
	maxDepositLength   = 32
	maxDepositExponent = 20
)

// parseDeposit accepts a non-negative amount of reasonable size.
func parseDeposit(s string) (decimal.Decimal, bool) {
	if len(s) > maxDepositLength {
		return decimal.Decimal{}, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil || d.IsNegative() {
		return decimal.Decimal{}, false
	}
	if exp := d.Exponent(); exp > maxDepositExponent || exp < -maxDepositExponent {
		return decimal.Decimal{}, false
	}
	return d, true
}

// UpdateForm is the raw input of the edit screen.
type UpdateForm struct {
	OwnerName string
	Email     string
}

// EditForm prefills the edit screen from a fetched account.
func EditForm(a Account) UpdateForm {
	return UpdateForm{OwnerName: a.OwnerName, Email: a.Email}
}

// Normalize trims every field.
func (f UpdateForm) Normalize() UpdateForm {
	return UpdateForm{
		OwnerName: strings.TrimSpace(f.OwnerName),
		Email:     strings.TrimSpace(f.Email),
	}
}

// Validate checks presence and format and, when nothing failed, returns
// the request to submit.
func (f UpdateForm) Validate() (UpdateRequest, FieldErrors) {
	f = f.Normalize()
	errs := FieldErrors{}

	if f.OwnerName == "" {
		errs.Set(FieldOwnerName, MsgOwnerRequired)
	}
	if f.Email != "" && !emailPattern.MatchString(f.Email) {
		errs.Set(FieldEmail, MsgEmailInvalid)
	}

	if !errs.Empty() {
		return UpdateRequest{}, errs
	}
	return UpdateRequest{OwnerName: f.OwnerName, Email: f.Email}, nil
}
