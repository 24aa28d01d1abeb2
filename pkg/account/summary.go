package account

import (
	"strings"

	"github.com/shopspring/decimal"
)

// DefaultCurrency is the currency balances are displayed in.
const DefaultCurrency = "USD"

var currencySymbols = map[string]string{
	"USD": "$",
	"EUR": "€",
	"GBP": "£",
	"JPY": "¥",
}

// Summary is the dashboard figure computed over one listing.
type Summary struct {
	Count int
	Total decimal.Decimal
}

// Summarize counts accounts and adds up their balances. Accounts whose
// balance was absent in the response contribute zero.
func Summarize(accounts []Account) Summary {
	total := decimal.Zero
	for _, a := range accounts {
		total = total.Add(a.Balance)
	}
	return Summary{Count: len(accounts), Total: total}
}

// TotalDisplay formats the total in the given currency.
func (s Summary) TotalDisplay(currency string) string {
	return FormatMoney(s.Total, currency)
}

// FormatMoney renders d with two decimals, thousands separators and the
// currency symbol, e.g. "$1,234.56" or "-$5.00". Unknown codes are used
// verbatim as a prefix.
func FormatMoney(d decimal.Decimal, currency string) string {
	if currency == "" {
		currency = DefaultCurrency
	}
	symbol, ok := currencySymbols[strings.ToUpper(currency)]
	if !ok {
		symbol = strings.ToUpper(currency) + " "
	}

	d = d.Round(2)
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Neg()
	}

	fixed := d.StringFixed(2)
	whole, frac := fixed, ""
	if i := strings.IndexByte(fixed, '.'); i >= 0 {
		whole, frac = fixed[:i], fixed[i:]
	}
	return sign + symbol + groupThousands(whole) + frac
}

func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
