package domain

import "github.com/shopspring/decimal"

// ProjectedEntry pairs an entry with the account balance right after it.
type ProjectedEntry struct {
	Entry        *Entry
	BalanceAfter decimal.Decimal
}

// Project replays entries in ledger order starting from startingBalance and
// returns the balance after each one. The input slice is not modified.
func Project(entries []*Entry, startingBalance decimal.Decimal) ([]ProjectedEntry, error) {
	ordered := make([]*Entry, len(entries))
	copy(ordered, entries)
	SortEntries(ordered)

	out := make([]ProjectedEntry, 0, len(ordered))
	running := startingBalance
	for _, e := range ordered {
		signed, err := e.Signed()
		if err != nil {
			return nil, err
		}
		running = running.Add(signed)
		out = append(out, ProjectedEntry{Entry: e, BalanceAfter: running})
	}

	return out, nil
}

// SumSigned returns the signed total of entries.
func SumSigned(entries []*Entry) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, e := range entries {
		signed, err := e.Signed()
		if err != nil {
			return decimal.Zero, err
		}
		total = total.Add(signed)
	}
	return total, nil
}
