package service

import (
	"time"

	"cloud.google.com/go/civil"
	"github.com/okian/kiosk-analytics/internal/domain/aggregate"
	"github.com/okian/kiosk-analytics/internal/domain/model"
	"github.com/okian/kiosk-analytics/internal/domain/summary"
	"github.com/shopspring/decimal"
)

const roundPlaces = 2

// Summary is the headline block shared by every report.
type Summary struct {
	TotalTransactions        int     `json:"total_transactions"`
	UniqueUsers              int     `json:"unique_users"`
	TotalVolume              float64 `json:"total_volume"`
	SuccessRate              float64 `json:"success_rate"`
	PassCount                int     `json:"pass_count"`
	FailCount                int     `json:"fail_count"`
	RejectedRows             int     `json:"rejected_rows"`
	UnattributedTransactions int     `json:"unattributed_transactions"`
	AverageVolume            float64 `json:"average_volume"`
	AverageAccessCount       float64 `json:"average_access_count"`
}

// Series is a labelled chart series.
type Series struct {
	Labels []string  `json:"labels"`
	Data   []float64 `json:"data"`
}

// DayEntry is one date of a daily trend.
type DayEntry struct {
	Date         civil.Date `json:"date"`
	Volume       float64    `json:"volume"`
	Transactions int        `json:"transactions"`
	UniqueUsers  int        `json:"unique_users"`
	Kiosks       int        `json:"kiosks"`
	SuccessRate  float64    `json:"success_rate"`
}

// DailyTrend is a per-date series with its totals and averages.
type DailyTrend struct {
	Days                     []DayEntry `json:"days"`
	TotalVolume              float64    `json:"total_volume"`
	TotalTransactions        int        `json:"total_transactions"`
	AverageDailyVolume       float64    `json:"average_daily_volume"`
	AverageDailyTransactions float64    `json:"average_daily_transactions"`
}

// WeekdayEntry is one weekday of a weekday trend.
type WeekdayEntry struct {
	Day           string  `json:"day"`
	Volume        float64 `json:"volume"`
	Transactions  int     `json:"transactions"`
	Dates         int     `json:"dates"`
	AverageVolume float64 `json:"average_volume"`
}

// BucketEntry is one volume histogram bin.
type BucketEntry struct {
	Range string `json:"range"`
	Count int    `json:"count"`
}

// TransactionView is the wire shape of a parsed transaction.
type TransactionView struct {
	Timestamp  string  `json:"timestamp"`
	ClientName string  `json:"client_name"`
	UserID     string  `json:"user_id"`
	VolumeML   float64 `json:"volume_ml"`
	Response   string  `json:"response"`
}

// SkippedFile names a file that matched a query but did not contribute.
type SkippedFile struct {
	File   string `json:"file"`
	Reason string `json:"reason"`
}

// KioskDayReport answers a single kiosk, single date query.
type KioskDayReport struct {
	KioskID      string            `json:"kiosk_id"`
	Date         civil.Date        `json:"date"`
	File         string            `json:"file"`
	Summary      Summary           `json:"summary"`
	Distribution []BucketEntry     `json:"volume_distribution"`
	Transactions []TransactionView `json:"transactions"`
}

// KioskReport answers a single kiosk, all dates query.
type KioskReport struct {
	KioskID        string        `json:"kiosk_id"`
	Summary        Summary       `json:"summary"`
	Daily          DailyTrend    `json:"daily"`
	FilesProcessed []string      `json:"files_processed"`
	FilesSkipped   []SkippedFile `json:"files_skipped"`
}

// FleetReport answers the all kiosks, aggregated query.
type FleetReport struct {
	Kiosks       []string       `json:"kiosks"`
	Summary      Summary        `json:"summary"`
	Daily        DailyTrend     `json:"daily"`
	Weekdays     []WeekdayEntry `json:"weekdays"`
	FilesSkipped []SkippedFile  `json:"files_skipped"`
}

// AnalysisReport is the full dashboard analysis of a set of files.
type AnalysisReport struct {
	FilesProcessed      []string      `json:"files_processed"`
	FilesSkipped        []SkippedFile `json:"files_skipped"`
	Summary             Summary       `json:"summary"`
	TopUsersByVolume    Series        `json:"top_users_by_volume"`
	TopUsersByFrequency Series        `json:"top_users_by_frequency"`
	VolumeDistribution  []BucketEntry `json:"volume_distribution"`
	KioskActivity       Series        `json:"kiosk_activity"`
}

// FileEntry describes one discovered transaction file.
type FileEntry struct {
	Name     string     `json:"name"`
	Path     string     `json:"path"`
	KioskID  string     `json:"kiosk_id"`
	Date     civil.Date `json:"date"`
	Size     int64      `json:"size"`
	Modified time.Time  `json:"modified"`
}

// Health is the side-effect free probe result.
type Health struct {
	Status    string `json:"status"`
	Kiosks    int    `json:"kiosks"`
	Files     int    `json:"files"`
	Directory string `json:"directory"`
	Error     string `json:"error,omitempty"`
}

func toFloat(d decimal.Decimal) float64 {
	return d.Round(roundPlaces).InexactFloat64()
}

func newSummary(t summary.Totals) Summary {
	return Summary{
		TotalTransactions:        t.Transactions,
		UniqueUsers:              t.UniqueUsers(),
		TotalVolume:              toFloat(t.Volume),
		SuccessRate:              toFloat(aggregate.SuccessRate(t.Pass, t.Transactions)),
		PassCount:                t.Pass,
		FailCount:                t.Fail,
		RejectedRows:             t.Rejected,
		UnattributedTransactions: t.Unattributed,
		AverageVolume:            toFloat(aggregate.AverageVolume(t)),
		AverageAccessCount:       toFloat(aggregate.AverageAccesses(t)),
	}
}

func newDailyTrend(points []aggregate.DayPoint) DailyTrend {
	tr := DailyTrend{Days: make([]DayEntry, len(points))}
	vol := decimal.Zero
	for i, p := range points {
		tr.Days[i] = DayEntry{
			Date:         p.Date,
			Volume:       toFloat(p.Volume),
			Transactions: p.Transactions,
			UniqueUsers:  p.UniqueUsers,
			Kiosks:       p.Kiosks,
			SuccessRate:  toFloat(aggregate.SuccessRate(p.Pass, p.Transactions)),
		}
		vol = vol.Add(p.Volume)
		tr.TotalTransactions += p.Transactions
	}
	tr.TotalVolume = toFloat(vol)
	if n := len(points); n > 0 {
		days := decimal.NewFromInt(int64(n))
		tr.AverageDailyVolume = toFloat(vol.Div(days))
		tr.AverageDailyTransactions = toFloat(decimal.NewFromInt(int64(tr.TotalTransactions)).Div(days))
	}
	return tr
}

func newWeekdays(points []aggregate.WeekdayPoint) []WeekdayEntry {
	out := make([]WeekdayEntry, len(points))
	for i, p := range points {
		out[i] = WeekdayEntry{
			Day:           p.Name(),
			Volume:        toFloat(p.Volume),
			Transactions:  p.Transactions,
			Dates:         p.Days,
			AverageVolume: toFloat(p.AverageVolume()),
		}
	}
	return out
}

func newBuckets(h summary.Histogram) []BucketEntry {
	bs := aggregate.Buckets(h)
	out := make([]BucketEntry, len(bs))
	for i, b := range bs {
		out[i] = BucketEntry{Range: b.Label, Count: b.Count}
	}
	return out
}

func newUserSeries(rows []aggregate.UserRank, metric aggregate.Metric) Series {
	s := Series{Labels: make([]string, len(rows)), Data: make([]float64, len(rows))}
	for i, r := range rows {
		s.Labels[i] = r.UserID
		if metric == aggregate.ByFrequency {
			s.Data[i] = float64(r.Accesses)
		} else {
			s.Data[i] = toFloat(r.Volume)
		}
	}
	return s
}

func newActivitySeries(rows []aggregate.ClientCount) Series {
	s := Series{Labels: make([]string, len(rows)), Data: make([]float64, len(rows))}
	for i, r := range rows {
		s.Labels[i] = r.Name
		s.Data[i] = float64(r.Count)
	}
	return s
}

func newTransactionViews(txs []model.Transaction) []TransactionView {
	out := make([]TransactionView, len(txs))
	for i, tx := range txs {
		out[i] = TransactionView{
			Timestamp:  tx.Timestamp,
			ClientName: tx.ClientName,
			UserID:     tx.UserID,
			VolumeML:   tx.VolumeML.InexactFloat64(),
			Response:   string(tx.Response),
		}
	}
	return out
}
