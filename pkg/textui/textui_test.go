package textui

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"bank-admin/pkg/account"
	"bank-admin/pkg/admin"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleAccounts() []account.Account {
	created := account.Timestamp{Time: time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)}
	return []account.Account{
		{ID: 1, AccountNumber: "A1B2C3", OwnerName: "Ada Lovelace", Email: "ada@example.com",
			Balance: decimal.RequireFromString("1000.50"), CreatedAt: created, UpdatedAt: created},
		{ID: 12, AccountNumber: "D4E5F6", OwnerName: "Bob", Balance: decimal.RequireFromString("249.5"), CreatedAt: created},
	}
}

func TestPrintTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, PrintTable(&buf, sampleAccounts()))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "ID  ACCOUNT NUMBER  OWNER"))
	assert.Contains(t, lines[1], "Ada Lovelace")
	assert.Contains(t, lines[1], "1000.5")
	assert.Contains(t, lines[1], "2024-03-01 09:30:00")
	assert.True(t, strings.HasPrefix(lines[2], "12  D4E5F6"))

	// Columns line up
	assert.Equal(t, strings.Index(lines[0], "OWNER"), strings.Index(lines[1], "Ada"))
}

func TestPrintTable_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, PrintTable(&buf, nil))
	assert.Equal(t, NoAccounts+"\n", buf.String())
}

func TestSummaryLine(t *testing.T) {
	s := account.Summarize(sampleAccounts())
	assert.Equal(t, "Accounts: 2  Total balance: $1,250.00", SummaryLine(s, "USD"))
	assert.Equal(t, "Accounts: 0  Total balance: $0.00", SummaryLine(account.Summarize(nil), ""))
}

func TestPrintDetail(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, PrintDetail(&buf, sampleAccounts()[0]))

	out := buf.String()
	assert.Contains(t, out, "ID:             1\n")
	assert.Contains(t, out, "Account number: A1B2C3\n")
	assert.Contains(t, out, "Email:          ada@example.com\n")
	assert.Contains(t, out, "Updated:        2024-03-01 09:30:00\n")
}

func TestPrintFieldErrors(t *testing.T) {
	errs := account.FieldErrors{}
	errs.Set(account.FieldInitialDeposit, account.MsgDepositRequired)
	errs.Set(account.FieldOwnerName, account.MsgOwnerRequired)

	var buf bytes.Buffer
	PrintFieldErrors(&buf, errs)
	assert.Equal(t, "ownerName: Owner name is required\ninitialDeposit: Initial deposit is required\n", buf.String())
}

func TestPrintNotice(t *testing.T) {
	var stdout, stderr bytes.Buffer

	assert.False(t, PrintNotice(&stdout, &stderr, &admin.Notice{Kind: admin.NoticeSuccess, Text: "Account created: 3"}))
	assert.True(t, PrintNotice(&stdout, &stderr, &admin.Notice{Kind: admin.NoticeError, Text: "Account not found: 9"}))
	assert.False(t, PrintNotice(&stdout, &stderr, nil))

	assert.Equal(t, "Account created: 3\n", stdout.String())
	assert.Equal(t, "error: Account not found: 9\n", stderr.String())
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("tty gone") }

func TestConfirm(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"YES\n", true},
		{"n\n", false},
		{"\n", false},
		{"", false},
		{"yes", true},
	}

	for _, tt := range tests {
		var out bytes.Buffer
		got, err := Confirm(strings.NewReader(tt.input), &out, admin.ConfirmPrompt(4))
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "input %q", tt.input)
		assert.Equal(t, "Delete account 4? [y/N] ", out.String())
	}

	_, err := Confirm(failingReader{}, &bytes.Buffer{}, "?")
	assert.Error(t, err)
}
