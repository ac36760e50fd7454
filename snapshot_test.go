package ledgerxgo_test

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arhyth/ledgerxgo"
)

func sameAccounts(tt *testing.T, want, got []ledgerxgo.Account) {
	reqrd := require.New(tt)
	reqrd.Len(got, len(want))
	for i := range want {
		reqrd.Equal(want[i].AcctID, got[i].AcctID)
		reqrd.Equal(want[i].Name, got[i].Name)
		reqrd.Equal(want[i].Balance.StringFixed(2), got[i].Balance.StringFixed(2))
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	t.Run("reproduces every id, name, and balance exactly", func(tt *testing.T) {
		reqrd := require.New(tt)
		ldgr := ledgerxgo.NewLedger(nil)
		alice, err := ldgr.CreateAccount(ledgerxgo.CreateAccountReq{
			Name:           "Alice",
			OpeningBalance: decimal.NewFromInt(200),
		})
		reqrd.Nil(err)
		bob, err := ldgr.CreateAccount(ledgerxgo.CreateAccountReq{Name: "Bob"})
		reqrd.Nil(err)
		err = ldgr.Transfer(ledgerxgo.TransferReq{
			SrcID:  alice.AcctID,
			DstID:  bob.AcctID,
			Amount: decimal.NewFromInt(75),
		})
		reqrd.Nil(err)

		var buf bytes.Buffer
		reqrd.Nil(ldgr.Snapshot(&buf))
		reloaded, err := ledgerxgo.ReadSnapshot(&buf, nil)
		reqrd.Nil(err)
		sameAccounts(tt, ldgr.Accounts(), reloaded.Accounts())
	})

	t.Run("round-trips names containing delimiters, quotes, and newlines", func(tt *testing.T) {
		reqrd := require.New(tt)
		ldgr := ledgerxgo.NewLedger(nil)
		for _, name := range []string{
			`Smith, John`,
			`the "Savings" account`,
			"line\nbreak",
			``,
		} {
			_, err := ldgr.CreateAccount(ledgerxgo.CreateAccountReq{
				Name:           name,
				OpeningBalance: decimal.RequireFromString("0.01"),
			})
			reqrd.Nil(err)
		}

		var buf bytes.Buffer
		reqrd.Nil(ldgr.Snapshot(&buf))
		reloaded, err := ledgerxgo.ReadSnapshot(&buf, nil)
		reqrd.Nil(err)
		sameAccounts(tt, ldgr.Accounts(), reloaded.Accounts())
	})

	t.Run("writes the header and 2-digit balances in order", func(tt *testing.T) {
		as := assert.New(tt)
		reqrd := require.New(tt)
		ldgr := ledgerxgo.NewLedger(nil)
		acct, err := ldgr.CreateAccount(ledgerxgo.CreateAccountReq{
			Name:           "Alice",
			OpeningBalance: decimal.NewFromInt(100),
		})
		reqrd.Nil(err)

		var buf bytes.Buffer
		reqrd.Nil(ldgr.Snapshot(&buf))
		lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
		reqrd.Len(lines, 2)
		as.Equal("id,name,balance", lines[0])
		as.Equal(acct.AcctID+",Alice,100.00", lines[1])
	})
}

func TestSaveLoad(t *testing.T) {
	t.Run("round-trips through a file", func(tt *testing.T) {
		reqrd := require.New(tt)
		path := filepath.Join(tt.TempDir(), "accounts.csv")

		ldgr := ledgerxgo.NewLedger(nil)
		_, err := ldgr.CreateAccount(ledgerxgo.CreateAccountReq{
			Name:           "Alice",
			OpeningBalance: decimal.RequireFromString("125.50"),
		})
		reqrd.Nil(err)
		reqrd.Nil(ldgr.Save(path))

		reloaded, err := ledgerxgo.Load(path, nil)
		reqrd.Nil(err)
		sameAccounts(tt, ldgr.Accounts(), reloaded.Accounts())
	})

	t.Run("overwrite replaces the previous snapshot wholesale", func(tt *testing.T) {
		reqrd := require.New(tt)
		path := filepath.Join(tt.TempDir(), "accounts.csv")

		first := ledgerxgo.NewLedger(nil)
		_, err := first.CreateAccount(ledgerxgo.CreateAccountReq{Name: "Old"})
		reqrd.Nil(err)
		reqrd.Nil(first.Save(path))

		second := ledgerxgo.NewLedger(nil)
		_, err = second.CreateAccount(ledgerxgo.CreateAccountReq{Name: "New"})
		reqrd.Nil(err)
		reqrd.Nil(second.Save(path))

		reloaded, err := ledgerxgo.Load(path, nil)
		reqrd.Nil(err)
		sameAccounts(tt, second.Accounts(), reloaded.Accounts())
	})

	t.Run("missing file yields an empty, usable ledger", func(tt *testing.T) {
		as := assert.New(tt)
		reqrd := require.New(tt)
		path := filepath.Join(tt.TempDir(), "nope.csv")

		ldgr, err := ledgerxgo.Load(path, nil)
		reqrd.Nil(err)
		as.Empty(ldgr.Accounts())

		acct, err := ldgr.CreateAccount(ledgerxgo.CreateAccountReq{
			Name:           "Fresh",
			OpeningBalance: decimal.NewFromInt(1),
		})
		reqrd.Nil(err)
		as.Equal("1.00", acct.Balance.StringFixed(2))
	})
}

func TestCorruptSnapshot(t *testing.T) {
	cases := []struct {
		name  string
		input string
	}{
		{"empty source", ""},
		{"wrong header", "acct,name,balance\n"},
		{"missing field", "id,name,balance\nabc,Alice\n"},
		{"extra field", "id,name,balance\nabc,Alice,1.00,x\n"},
		{"unparsable balance", "id,name,balance\nabc,Alice,lots\n"},
		{"loose precision", "id,name,balance\nabc,Alice,100.5\n"},
		{"scientific notation", "id,name,balance\nabc,Alice,1e2\n"},
		{"negative balance", "id,name,balance\nabc,Alice,-1.00\n"},
		{"empty id", "id,name,balance\n,Alice,1.00\n"},
		{"duplicate id", "id,name,balance\nabc,Alice,1.00\nabc,Bob,2.00\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(tt *testing.T) {
			as := assert.New(tt)
			ldgr, err := ledgerxgo.ReadSnapshot(strings.NewReader(tc.input), nil)
			as.ErrorAs(err, &ledgerxgo.ErrCorruptSnapshot{})
			as.Nil(ldgr)
		})
	}

	t.Run("header-only snapshot is a valid empty ledger", func(tt *testing.T) {
		as := assert.New(tt)
		reqrd := require.New(tt)
		ldgr, err := ledgerxgo.ReadSnapshot(strings.NewReader("id,name,balance\n"), nil)
		reqrd.Nil(err)
		as.Empty(ldgr.Accounts())
	})
}
