package model_test

import (
	"errors"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/okian/kiosk-analytics/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestParseFileName(t *testing.T) {
	Convey("Given a conventional transaction file name", t, func() {
		name := "transactions_0202_110625.csv"

		Convey("When parsing it", func() {
			key, err := model.ParseFileName(name)

			Convey("Then kiosk and date should be derived", func() {
				So(err, ShouldBeNil)
				So(key.KioskID, ShouldEqual, "0202")
				So(key.Date, ShouldEqual, civil.Date{Year: 2025, Month: time.November, Day: 6})
			})

			Convey("And rendering should reproduce the name", func() {
				So(key.Filename(), ShouldEqual, name)
				So(key.Path(), ShouldEqual, "kiosk_0202/"+name)
			})
		})
	})

	Convey("Given two-digit years", t, func() {
		Convey("Then every year should map to the 2000s", func() {
			for yy, want := range map[string]int{"00": 2000, "25": 2025, "69": 2069, "99": 2099} {
				key, err := model.ParseFileName("transactions_k_0101" + yy + ".csv")
				So(err, ShouldBeNil)
				So(key.Date.Year, ShouldEqual, want)
			}
		})
	})

	Convey("Given a kiosk id containing underscores", t, func() {
		key, err := model.ParseFileName("transactions_north_gate_2_010126.csv")

		Convey("Then the date should still be the last six digits", func() {
			So(err, ShouldBeNil)
			So(key.KioskID, ShouldEqual, "north_gate_2")
			So(key.Date, ShouldEqual, civil.Date{Year: 2026, Month: time.January, Day: 1})
			So(key.Filename(), ShouldEqual, "transactions_north_gate_2_010126.csv")
		})
	})

	Convey("Given names outside the convention", t, func() {
		Convey("Then each should be rejected", func() {
			for _, name := range []string{
				"transactions_0202_023025.csv", // February 30th
				"transactions_0202_130125.csv", // month 13
				"transactions_0202_000125.csv", // month 0
				"transactions_0202_110625.txt",
				"transactions_0202_1106.csv",
				"transactions__110625.csv",
				"summary_0202_110625.csv",
				"transactions_0202_110625.csv.bak",
			} {
				_, err := model.ParseFileName(name)
				So(errors.Is(err, model.ErrInvalidFileName), ShouldBeTrue)
			}
		})
	})
}

func TestFileKey(t *testing.T) {
	Convey("Given a file key", t, func() {
		key := model.FileKey{KioskID: "0303", Date: civil.Date{Year: 2024, Month: time.February, Day: 29}}

		Convey("Then it should render zero-padded fields", func() {
			So(key.Filename(), ShouldEqual, "transactions_0303_022924.csv")
			So(key.String(), ShouldEqual, "0303@2024-02-29")
			So(model.KioskDir("0303"), ShouldEqual, "kiosk_0303")
		})

		Convey("And its weekday should follow the calendar", func() {
			So(model.Weekday(key.Date), ShouldEqual, time.Thursday)
		})
	})
}

func TestFileKeyValid(t *testing.T) {
	Convey("Given keys across centuries", t, func() {
		in := model.FileKey{KioskID: "k1", Date: civil.Date{Year: 2025, Month: time.November, Day: 6}}

		Convey("Then only 2000-2099 dates should be expressible", func() {
			So(in.Valid(), ShouldBeTrue)
			for _, year := range []int{1925, 1999, 2100, 2125} {
				k := in
				k.Date.Year = year
				So(k.Valid(), ShouldBeFalse)
				So(model.InCentury(k.Date), ShouldBeFalse)
			}
			So(model.InCentury(civil.Date{Year: 2000, Month: time.January, Day: 1}), ShouldBeTrue)
			So(model.InCentury(civil.Date{Year: 2099, Month: time.December, Day: 31}), ShouldBeTrue)
		})

		Convey("And aliasing years should not share a file name with a valid key", func() {
			old := in
			old.Date.Year = 1925
			So(old.Filename(), ShouldEqual, in.Filename())
			back, err := model.ParseFileName(old.Filename())
			So(err, ShouldBeNil)
			So(back, ShouldNotResemble, old)
		})

		Convey("And an empty kiosk or impossible date should be invalid", func() {
			So(model.FileKey{Date: in.Date}.Valid(), ShouldBeFalse)
			So(model.FileKey{KioskID: "k1", Date: civil.Date{Year: 2025, Month: time.February, Day: 30}}.Valid(), ShouldBeFalse)
		})
	})
}

func TestTransaction(t *testing.T) {
	Convey("Given transactions", t, func() {
		Convey("Then only PASS should count as passed", func() {
			So(model.ResponsePass.Passed(), ShouldBeTrue)
			So(model.ResponseFail.Passed(), ShouldBeFalse)
			So(model.ResponseOther.Passed(), ShouldBeFalse)
		})

		Convey("And attribution should depend on the client name", func() {
			So(model.Transaction{ClientName: "GymA"}.Attributed(), ShouldBeTrue)
			So(model.Transaction{}.Attributed(), ShouldBeFalse)
		})
	})
}
