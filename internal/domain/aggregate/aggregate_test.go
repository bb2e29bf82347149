package aggregate_test

import (
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/okian/kiosk-analytics/internal/domain/aggregate"
	"github.com/okian/kiosk-analytics/internal/domain/model"
	"github.com/okian/kiosk-analytics/internal/domain/summary"
	"github.com/shopspring/decimal"
	. "github.com/smartystreets/goconvey/convey"
)

var (
	thu = civil.Date{Year: 2025, Month: time.November, Day: 6}
	fri = civil.Date{Year: 2025, Month: time.November, Day: 7}
	nxt = civil.Date{Year: 2025, Month: time.November, Day: 13} // next Thursday
)

type row struct {
	user, client, volume string
	pass                 bool
}

func file(kiosk string, date civil.Date, rows ...row) summary.FileSummary {
	txs := make([]model.Transaction, 0, len(rows))
	for _, r := range rows {
		resp := model.ResponseFail
		if r.pass {
			resp = model.ResponsePass
		}
		txs = append(txs, model.Transaction{
			KioskID:    kiosk,
			UserID:     r.user,
			ClientName: r.client,
			VolumeML:   decimal.RequireFromString(r.volume),
			Response:   resp,
		})
	}
	return summary.Build(model.FileKey{KioskID: kiosk, Date: date}, txs, 0)
}

func TestSuccessRate(t *testing.T) {
	Convey("Given pass and total counts", t, func() {
		Convey("Then the rate should be a rounded percentage", func() {
			So(aggregate.SuccessRate(2, 3).String(), ShouldEqual, "66.67")
			So(aggregate.SuccessRate(1, 3).String(), ShouldEqual, "33.33")
			So(aggregate.SuccessRate(3, 3).String(), ShouldEqual, "100")
		})

		Convey("And an empty total should give zero", func() {
			So(aggregate.SuccessRate(0, 0).IsZero(), ShouldBeTrue)
		})
	})
}

func TestAverages(t *testing.T) {
	Convey("Given a fold of two users", t, func() {
		tot := aggregate.Fold([]summary.FileSummary{
			file("a", thu, row{"u1", "GymA", "100", true}, row{"u1", "GymA", "200", true}),
			file("b", thu, row{"u2", "GymA", "50", false}),
		})

		Convey("Then averages should be per distinct user", func() {
			So(aggregate.AverageVolume(tot).String(), ShouldEqual, "175")
			So(aggregate.AverageAccesses(tot).String(), ShouldEqual, "1.5")
		})
	})

	Convey("Given an empty fold", t, func() {
		tot := aggregate.Fold(nil)

		Convey("Then averages should be zero", func() {
			So(tot.Empty(), ShouldBeTrue)
			So(aggregate.AverageVolume(tot).IsZero(), ShouldBeTrue)
			So(aggregate.AverageAccesses(tot).IsZero(), ShouldBeTrue)
		})
	})
}

func TestBuckets(t *testing.T) {
	Convey("Given a fold with volumes on bin edges", t, func() {
		tot := aggregate.Fold([]summary.FileSummary{file("a", thu,
			row{"u1", "", "100", true},
			row{"u1", "", "1000", true},
			row{"u1", "", "1000.01", true},
		)})

		Convey("Then every bin should be listed in order", func() {
			b := aggregate.Buckets(tot.Histogram)
			So(b, ShouldHaveLength, summary.HistogramLen)
			So(b[0], ShouldResemble, aggregate.Bucket{Label: "0-100ml", Count: 1})
			So(b[9].Count, ShouldEqual, 1)
			So(b[10], ShouldResemble, aggregate.Bucket{Label: "1000ml+", Count: 1})
			So(b[5].Count, ShouldEqual, 0)
		})
	})
}

func TestKioskActivity(t *testing.T) {
	Convey("Given clients with tied counts", t, func() {
		tot := aggregate.Fold([]summary.FileSummary{file("a", thu,
			row{"u1", "GymB", "1", true},
			row{"u1", "GymA", "1", true},
			row{"u1", "GymC", "1", true},
			row{"u1", "GymC", "1", true},
			row{"u1", "", "1", true},
		)})

		Convey("Then counts should sort descending with ties in first-seen order", func() {
			So(aggregate.KioskActivity(tot), ShouldResemble, []aggregate.ClientCount{
				{Name: "GymC", Count: 2},
				{Name: "GymB", Count: 1},
				{Name: "GymA", Count: 1},
			})
		})
	})
}

func TestTopUsers(t *testing.T) {
	tot := aggregate.Fold([]summary.FileSummary{file("a", thu,
		row{"u2", "", "300", true},
		row{"u1", "", "300", true},
		row{"u3", "", "100", true},
		row{"u3", "", "100", true},
		row{"u4", "", "50", true},
	)})

	Convey("Given a volume ranking", t, func() {
		r := aggregate.TopUsers(tot, aggregate.ByVolume, 3)

		Convey("Then ties should break by ascending user id", func() {
			So(r, ShouldHaveLength, 3)
			So(r[0].UserID, ShouldEqual, "u1")
			So(r[1].UserID, ShouldEqual, "u2")
			So(r[2].UserID, ShouldEqual, "u3")
			So(r[2].Rank, ShouldEqual, 3)
			So(r[2].Volume.String(), ShouldEqual, "200")
		})
	})

	Convey("Given a frequency ranking", t, func() {
		r := aggregate.TopUsers(tot, aggregate.ByFrequency, 0)

		Convey("Then access counts should lead and every user fit the default length", func() {
			So(r, ShouldHaveLength, 4)
			So(r[0].UserID, ShouldEqual, "u3")
			So(r[0].Accesses, ShouldEqual, 2)
			So(r[1].UserID, ShouldEqual, "u1")
			So(r[3].UserID, ShouldEqual, "u4")
		})
	})
}

func TestDaily(t *testing.T) {
	Convey("Given the same user at two kiosks on one day", t, func() {
		points := aggregate.Daily([]summary.FileSummary{
			file("b", fri, row{"u9", "", "5", true}),
			file("a", thu, row{"u1", "", "100", true}, row{"u2", "", "50", false}),
			file("b", thu, row{"u1", "", "25.5", true}),
		})

		Convey("Then dates should ascend and users count once per day", func() {
			So(points, ShouldHaveLength, 2)
			So(points[0].Date, ShouldEqual, thu)
			So(points[0].Volume.String(), ShouldEqual, "175.5")
			So(points[0].Transactions, ShouldEqual, 3)
			So(points[0].Pass, ShouldEqual, 2)
			So(points[0].UniqueUsers, ShouldEqual, 2)
			So(points[0].Kiosks, ShouldEqual, 2)
			So(points[1].Date, ShouldEqual, fri)
			So(points[1].Kiosks, ShouldEqual, 1)
		})
	})
}

func TestWeekdays(t *testing.T) {
	Convey("Given files on two Thursdays and one Friday", t, func() {
		points := aggregate.Weekdays([]summary.FileSummary{
			file("a", fri, row{"u1", "", "10", true}),
			file("a", thu, row{"u1", "", "100", true}),
			file("b", thu, row{"u1", "", "100", true}),
			file("a", nxt, row{"u1", "", "100", true}),
		})

		Convey("Then only those weekdays should appear Monday-first", func() {
			So(points, ShouldHaveLength, 2)
			So(points[0].Name(), ShouldEqual, "Thursday")
			So(points[0].Days, ShouldEqual, 2)
			So(points[0].Transactions, ShouldEqual, 3)
			So(points[0].AverageVolume().String(), ShouldEqual, "150")
			So(points[1].Name(), ShouldEqual, "Friday")
			So(points[1].AverageVolume().String(), ShouldEqual, "10")
		})
	})

	Convey("Given a Sunday file", t, func() {
		sun := civil.Date{Year: 2025, Month: time.November, Day: 9}
		points := aggregate.Weekdays([]summary.FileSummary{
			file("a", sun, row{"u1", "", "1", true}),
			file("a", thu, row{"u1", "", "1", true}),
		})

		Convey("Then Sunday should sort last", func() {
			So(points[0].Weekday, ShouldEqual, time.Thursday)
			So(points[1].Weekday, ShouldEqual, time.Sunday)
		})
	})
}
