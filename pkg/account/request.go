package account

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// CreateRequest is the body of POST /api/accounts.
type CreateRequest struct {
	OwnerName      string
	Email          string
	InitialDeposit decimal.Decimal
}

// UpdateRequest is the body of PUT /api/accounts/{id}. Only owner
// metadata can change; the balance is not editable through the API.
type UpdateRequest struct {
	OwnerName string
	Email     string
}

type createBody struct {
	OwnerName      string      `json:"ownerName"`
	Email          *string     `json:"email"`
	InitialDeposit json.Number `json:"initialDeposit"`
}

type updateBody struct {
	OwnerName string  `json:"ownerName"`
	Email     *string `json:"email"`
}

// MarshalJSON sends a blank email as null and the deposit as a JSON number.
func (r CreateRequest) MarshalJSON() ([]byte, error) {
	return json.Marshal(createBody{
		OwnerName:      r.OwnerName,
		Email:          optional(r.Email),
		InitialDeposit: json.Number(r.InitialDeposit.String()),
	})
}

// MarshalJSON sends a blank email as null.
func (r UpdateRequest) MarshalJSON() ([]byte, error) {
	return json.Marshal(updateBody{
		OwnerName: r.OwnerName,
		Email:     optional(r.Email),
	})
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
