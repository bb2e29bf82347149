// Package aggregate derives report views from file summaries.
package aggregate

import (
	"sort"
	"time"

	"cloud.google.com/go/civil"
	"github.com/okian/kiosk-analytics/internal/domain/model"
	"github.com/okian/kiosk-analytics/internal/domain/summary"
	"github.com/shopspring/decimal"
)

// DefaultTopN is the ranking length used when callers do not choose one.
const DefaultTopN = 20

const (
	percent   = 100
	precision = 2
)

// Fold merges every summary into one Totals value.
func Fold(summaries []summary.FileSummary) summary.Totals {
	acc := summary.Totals{Users: map[string]summary.UserStat{}}
	for _, s := range summaries {
		acc = acc.Merge(s.Totals)
	}
	return acc
}

// SuccessRate returns pass/total as a percentage rounded to two places, or
// zero when total is zero.
func SuccessRate(pass, total int) decimal.Decimal {
	if total <= 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(pass)).
		Mul(decimal.NewFromInt(percent)).
		Div(decimal.NewFromInt(int64(total))).
		Round(precision)
}

// AverageVolume is the mean volume per distinct user.
func AverageVolume(t summary.Totals) decimal.Decimal {
	if len(t.Users) == 0 {
		return decimal.Zero
	}
	sum := decimal.Zero
	for _, u := range t.Users {
		sum = sum.Add(u.Volume)
	}
	return sum.Div(decimal.NewFromInt(int64(len(t.Users)))).Round(precision)
}

// AverageAccesses is the mean number of transactions per distinct user.
func AverageAccesses(t summary.Totals) decimal.Decimal {
	if len(t.Users) == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(t.Transactions)).
		Div(decimal.NewFromInt(int64(len(t.Users)))).
		Round(precision)
}

// Bucket is one histogram bin.
type Bucket struct {
	Label string
	Count int
}

// Buckets lists every histogram bin in volume order, including empty ones.
func Buckets(h summary.Histogram) []Bucket {
	out := make([]Bucket, len(h))
	for i, c := range h {
		out[i] = Bucket{Label: summary.BinLabels[i], Count: c}
	}
	return out
}

// ClientCount is the number of transactions attributed to one client name.
type ClientCount struct {
	Name  string
	Count int
}

// KioskActivity ranks client names by transaction count, descending. Ties
// keep first-seen order.
func KioskActivity(t summary.Totals) []ClientCount {
	out := make([]ClientCount, 0, t.Clients.Len())
	for _, n := range t.Clients.Names() {
		out = append(out, ClientCount{Name: n, Count: t.Clients.Get(n)})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	return out
}

// DayPoint is one entry of a per-date series.
type DayPoint struct {
	Date         civil.Date
	Volume       decimal.Decimal
	Transactions int
	Pass         int
	Fail         int
	UniqueUsers  int
	Kiosks       int
}

// Daily groups summaries by date in ascending order. Users are counted once
// per day even when they dispensed at several kiosks.
func Daily(summaries []summary.FileSummary) []DayPoint {
	type day struct {
		totals summary.Totals
		kiosks map[string]struct{}
	}
	byDate := make(map[civil.Date]*day)
	for _, s := range summaries {
		d, ok := byDate[s.Key.Date]
		if !ok {
			d = &day{totals: summary.Totals{Users: map[string]summary.UserStat{}}, kiosks: map[string]struct{}{}}
			byDate[s.Key.Date] = d
		}
		d.totals = d.totals.Merge(s.Totals)
		d.kiosks[s.Key.KioskID] = struct{}{}
	}

	out := make([]DayPoint, 0, len(byDate))
	for date, d := range byDate {
		out = append(out, DayPoint{
			Date:         date,
			Volume:       d.totals.Volume,
			Transactions: d.totals.Transactions,
			Pass:         d.totals.Pass,
			Fail:         d.totals.Fail,
			UniqueUsers:  d.totals.UniqueUsers(),
			Kiosks:       len(d.kiosks),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

// weekOrder is Monday..Sunday.
var weekOrder = [...]time.Weekday{
	time.Monday, time.Tuesday, time.Wednesday, time.Thursday,
	time.Friday, time.Saturday, time.Sunday,
}

// WeekdayPoint is one entry of a per-weekday series.
type WeekdayPoint struct {
	Weekday      time.Weekday
	Volume       decimal.Decimal
	Transactions int
	Days         int // distinct dates that fell on this weekday
}

// Name returns the English weekday name.
func (w WeekdayPoint) Name() string { return w.Weekday.String() }

// AverageVolume is the volume per contributing date.
func (w WeekdayPoint) AverageVolume() decimal.Decimal {
	if w.Days == 0 {
		return decimal.Zero
	}
	return w.Volume.Div(decimal.NewFromInt(int64(w.Days))).Round(precision)
}

// Weekdays sums summaries per weekday, Monday first. Weekdays without any
// contributing date are omitted.
func Weekdays(summaries []summary.FileSummary) []WeekdayPoint {
	var (
		points [len(weekOrder)]WeekdayPoint
		seen   = make(map[civil.Date]struct{})
	)
	for i, wd := range weekOrder {
		points[i].Weekday = wd
	}
	for _, s := range summaries {
		p := &points[weekdayIndex(model.Weekday(s.Key.Date))]
		p.Volume = p.Volume.Add(s.Volume)
		p.Transactions += s.Transactions
		if _, ok := seen[s.Key.Date]; !ok {
			seen[s.Key.Date] = struct{}{}
			p.Days++
		}
	}

	out := make([]WeekdayPoint, 0, len(points))
	for _, p := range points {
		if p.Days > 0 {
			out = append(out, p)
		}
	}
	return out
}

// weekdayIndex maps Sunday-based time.Weekday onto Monday-based order.
func weekdayIndex(wd time.Weekday) int {
	return (int(wd) + len(weekOrder) - 1) % len(weekOrder)
}
