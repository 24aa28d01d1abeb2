// Package textui renders accounts, notices and prompts for the terminal.
package textui

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"bank-admin/pkg/account"
	"bank-admin/pkg/admin"
)

// NoAccounts is printed instead of an empty table.
const NoAccounts = "No accounts found."

// PrintTable writes accounts as aligned columns.
func PrintTable(w io.Writer, accounts []account.Account) error {
	if len(accounts) == 0 {
		_, err := fmt.Fprintln(w, NoAccounts)
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tACCOUNT NUMBER\tOWNER\tEMAIL\tBALANCE\tCREATED")
	for _, a := range accounts {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n",
			a.ID, a.AccountNumber, a.OwnerName, a.Email, a.Balance.String(), a.CreatedAt.Display())
	}
	return tw.Flush()
}

// SummaryLine renders the count and total, e.g.
// "Accounts: 2  Total balance: $1,250.00".
func SummaryLine(s account.Summary, currency string) string {
	return fmt.Sprintf("Accounts: %d  Total balance: %s", s.Count, s.TotalDisplay(currency))
}

// PrintDetail writes one account as a label/value block.
func PrintDetail(w io.Writer, a account.Account) error {
	tw := tabwriter.NewWriter(w, 0, 0, 1, ' ', 0)
	rows := [][2]string{
		{"ID", a.IDString()},
		{"Account number", a.AccountNumber},
		{"Owner", a.OwnerName},
		{"Email", a.Email},
		{"Balance", a.Balance.String()},
		{"Created", a.CreatedAt.Display()},
		{"Updated", a.UpdatedAt.Display()},
	}
	for _, row := range rows {
		fmt.Fprintf(tw, "%s:\t%s\n", row[0], row[1])
	}
	return tw.Flush()
}

// PrintFieldErrors writes one "field: message" line per error, in form order.
func PrintFieldErrors(w io.Writer, errs account.FieldErrors) {
	for _, f := range errs.Fields() {
		fmt.Fprintf(w, "%s: %s\n", f, errs.Get(f))
	}
}

// PrintNotice writes a success notice to stdout and an error notice to
// stderr prefixed "error:". It reports whether the notice was an error.
func PrintNotice(stdout, stderr io.Writer, n *admin.Notice) bool {
	if n == nil {
		return false
	}
	if n.IsError() {
		fmt.Fprintln(stderr, "error: "+n.Text)
		return true
	}
	fmt.Fprintln(stdout, n.Text)
	return false
}

// Confirm asks prompt followed by " [y/N] " and reads one line. Only "y"
// and "yes" (any case) confirm; end of input declines.
func Confirm(in io.Reader, out io.Writer, prompt string) (bool, error) {
	fmt.Fprint(out, prompt+" [y/N] ")

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return false, err
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}
