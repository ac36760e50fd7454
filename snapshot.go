package ledgerxgo

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// DefaultSnapshotPath is used by Save and Load when no path is supplied.
const DefaultSnapshotPath = "accounts.csv"

var snapshotHeader = []string{"id", "name", "balance"}

// Snapshot serializes every account as one CSV record of id, name, and
// balance, preceded by a header record. Balances are rendered with
// exactly 2 fractional digits; records come out sorted by id so saves
// are deterministic.
func (l *Ledger) Snapshot(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(snapshotHeader); err != nil {
		return err
	}
	for _, acct := range l.Accounts() {
		rec := []string{acct.AcctID, acct.Name, acct.Balance.StringFixed(2)}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Save writes the snapshot to path, or DefaultSnapshotPath when path is
// empty. The write goes to a temporary file first and replaces the
// target via rename, so an interrupted save never corrupts the
// previous snapshot.
func (l *Ledger) Save(path string) error {
	if path == "" {
		path = DefaultSnapshotPath
	}
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	if err = l.Snapshot(f); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err = f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}

// ReadSnapshot reconstructs a ledger from a snapshot source, ids
// verbatim. Any malformed record fails the whole load with
// ErrCorruptSnapshot; a partial ledger is never returned.
func ReadSnapshot(r io.Reader, log *zerolog.Logger) (*Ledger, error) {
	l := NewLedger(log)
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(snapshotHeader)

	hdr, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrCorruptSnapshot{Record: 1, Reason: "missing header"}
	}
	if err != nil {
		return nil, ErrCorruptSnapshot{Record: 1, Reason: err.Error()}
	}
	for i, name := range snapshotHeader {
		if hdr[i] != name {
			return nil, ErrCorruptSnapshot{
				Record: 1,
				Reason: fmt.Sprintf("header field %d is %q, want %q", i, hdr[i], name),
			}
		}
	}

	for n := 2; ; n++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, ErrCorruptSnapshot{Record: n, Reason: err.Error()}
		}
		acct, err := parseAccount(rec)
		if err != nil {
			return nil, ErrCorruptSnapshot{Record: n, Reason: err.Error()}
		}
		if _, dup := l.accts[acct.AcctID]; dup {
			return nil, ErrCorruptSnapshot{
				Record: n,
				Reason: fmt.Sprintf("duplicate id %q", acct.AcctID),
			}
		}
		l.accts[acct.AcctID] = acct
	}

	l.log.Info().Int("accounts", len(l.accts)).Msg("snapshot loaded")
	return l, nil
}

// Load reads the snapshot at path, or DefaultSnapshotPath when path is
// empty. A missing file is not an error: it yields an empty ledger.
func Load(path string, log *zerolog.Logger) (*Ledger, error) {
	if path == "" {
		path = DefaultSnapshotPath
	}
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return NewLedger(log), nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadSnapshot(f, log)
}

func parseAccount(rec []string) (*Account, error) {
	if rec[0] == "" {
		return nil, errors.New("empty id")
	}
	bal, err := decimal.NewFromString(rec[2])
	if err != nil {
		return nil, fmt.Errorf("unparsable balance %q", rec[2])
	}
	// a well-formed snapshot renders balances as -?\d+\.\d{2}
	if bal.StringFixed(2) != rec[2] {
		return nil, fmt.Errorf("balance %q is not a 2-digit fixed-point decimal", rec[2])
	}
	if bal.Sign() < 0 {
		return nil, fmt.Errorf("negative balance %q", rec[2])
	}
	return &Account{AcctID: rec[0], Name: rec[1], Balance: bal}, nil
}
