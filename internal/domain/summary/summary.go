// Package summary folds parsed transactions into immutable per-file
// summaries and merges them. Merge is associative and commutative over every
// total, so summaries may be combined in any order or in parallel.
package summary

import (
	"github.com/okian/kiosk-analytics/internal/domain/model"
	"github.com/shopspring/decimal"
)

// UserStat is a user's cumulative consumption.
type UserStat struct {
	Volume   decimal.Decimal
	Accesses int
}

// Totals is the mergeable aggregate shared by file summaries and folds.
// Invariant: Transactions == Pass + Fail.
type Totals struct {
	Volume       decimal.Decimal
	Transactions int
	Pass         int
	Fail         int
	Rejected     int
	Unattributed int
	Users        map[string]UserStat
	Clients      Counter
	Histogram    Histogram
}

// UniqueUsers returns the number of distinct user ids.
func (t Totals) UniqueUsers() int { return len(t.Users) }

// Empty reports whether no valid transaction contributed.
func (t Totals) Empty() bool { return t.Transactions == 0 }

// Merge returns the combination of t and o without modifying either.
func (t Totals) Merge(o Totals) Totals {
	users := make(map[string]UserStat, len(t.Users)+len(o.Users))
	for id, s := range t.Users {
		users[id] = s
	}
	for id, s := range o.Users {
		cur := users[id]
		users[id] = UserStat{Volume: cur.Volume.Add(s.Volume), Accesses: cur.Accesses + s.Accesses}
	}
	return Totals{
		Volume:       t.Volume.Add(o.Volume),
		Transactions: t.Transactions + o.Transactions,
		Pass:         t.Pass + o.Pass,
		Fail:         t.Fail + o.Fail,
		Rejected:     t.Rejected + o.Rejected,
		Unattributed: t.Unattributed + o.Unattributed,
		Users:        users,
		Clients:      t.Clients.Merge(o.Clients),
		Histogram:    t.Histogram.Merge(o.Histogram),
	}
}

// FileSummary is the fold of every valid transaction in one kiosk-day file.
type FileSummary struct {
	Key model.FileKey
	Totals
}

// Builder accumulates transactions for a single file.
type Builder struct {
	key    model.FileKey
	totals Totals
}

// NewBuilder starts a summary for key.
func NewBuilder(key model.FileKey) *Builder {
	return &Builder{key: key, totals: Totals{Users: make(map[string]UserStat)}}
}

// Add folds one valid transaction.
func (b *Builder) Add(tx model.Transaction) {
	t := &b.totals
	t.Volume = t.Volume.Add(tx.VolumeML)
	t.Transactions++
	if tx.Response.Passed() {
		t.Pass++
	} else {
		t.Fail++
	}

	u := t.Users[tx.UserID]
	t.Users[tx.UserID] = UserStat{Volume: u.Volume.Add(tx.VolumeML), Accesses: u.Accesses + 1}

	if tx.Attributed() {
		t.Clients.add(tx.ClientName, 1)
	} else {
		t.Unattributed++
	}
	t.Histogram[BinFor(tx.VolumeML)]++
}

// Reject counts a row that failed validation.
func (b *Builder) Reject() { b.totals.Rejected++ }

// Build returns the finished summary. The summary does not share state with
// the builder, which may keep accumulating.
func (b *Builder) Build() FileSummary {
	return FileSummary{Key: b.key, Totals: Totals{Users: map[string]UserStat{}}.Merge(b.totals)}
}

// Build folds txs into a summary for key.
func Build(key model.FileKey, txs []model.Transaction, rejected int) FileSummary {
	b := NewBuilder(key)
	for _, tx := range txs {
		b.Add(tx)
	}
	b.totals.Rejected = rejected
	return b.Build()
}
