package aggregate

import (
	"sort"

	"github.com/okian/kiosk-analytics/internal/domain/summary"
	"github.com/shopspring/decimal"
)

// Metric selects what a user ranking sorts by.
type Metric string

// Supported ranking metrics.
const (
	ByVolume    Metric = "volume"
	ByFrequency Metric = "frequency"
)

// UserRank is one row of a per-user ranking.
type UserRank struct {
	Rank     int
	UserID   string
	Volume   decimal.Decimal
	Accesses int
}

// TopUsers ranks users by metric, descending, breaking ties by ascending
// user id, and keeps at most n rows. n <= 0 selects DefaultTopN.
func TopUsers(t summary.Totals, metric Metric, n int) []UserRank {
	if n <= 0 {
		n = DefaultTopN
	}
	rows := make([]UserRank, 0, len(t.Users))
	for id, s := range t.Users {
		rows = append(rows, UserRank{UserID: id, Volume: s.Volume, Accesses: s.Accesses})
	}

	sort.Slice(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		switch metric {
		case ByFrequency:
			if a.Accesses != b.Accesses {
				return a.Accesses > b.Accesses
			}
		default:
			if c := a.Volume.Cmp(b.Volume); c != 0 {
				return c > 0
			}
		}
		return a.UserID < b.UserID
	})

	if len(rows) > n {
		rows = rows[:n]
	}
	for i := range rows {
		rows[i].Rank = i + 1
	}
	return rows
}
