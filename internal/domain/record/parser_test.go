package record_test

import (
	"errors"
	"testing"

	"github.com/okian/kiosk-analytics/internal/domain/model"
	"github.com/okian/kiosk-analytics/internal/domain/record"
	"github.com/shopspring/decimal"
	. "github.com/smartystreets/goconvey/convey"
)

func validRow() record.Row {
	return record.Row{
		record.ColTimestamp:  "2025-11-06 08:00:00",
		record.ColClientName: " GymA ",
		record.ColUserID:     " u1 ",
		record.ColVolumeML:   " 250.5 ",
		record.ColResponse:   "pass",
	}
}

func TestParse(t *testing.T) {
	Convey("Given a valid row", t, func() {
		tx, err := record.Parse("0202", validRow())

		Convey("Then every field should be trimmed and normalized", func() {
			So(err, ShouldBeNil)
			So(tx.KioskID, ShouldEqual, "0202")
			So(tx.UserID, ShouldEqual, "u1")
			So(tx.ClientName, ShouldEqual, "GymA")
			So(tx.VolumeML.Equal(decimal.RequireFromString("250.5")), ShouldBeTrue)
			So(tx.Response, ShouldEqual, model.ResponsePass)
			So(tx.Timestamp, ShouldEqual, "2025-11-06 08:00:00")
		})
	})

	Convey("Given a row with zero volume and no client", t, func() {
		row := validRow()
		row[record.ColVolumeML] = "0"
		row[record.ColClientName] = ""
		tx, err := record.Parse("0202", row)

		Convey("Then it should be accepted as unattributed", func() {
			So(err, ShouldBeNil)
			So(tx.VolumeML.IsZero(), ShouldBeTrue)
			So(tx.Attributed(), ShouldBeFalse)
		})
	})

	Convey("Given malformed rows", t, func() {
		cases := map[string]func(record.Row){
			"empty user":        func(r record.Row) { r[record.ColUserID] = "   " },
			"missing user":      func(r record.Row) { delete(r, record.ColUserID) },
			"missing volume":    func(r record.Row) { delete(r, record.ColVolumeML) },
			"empty volume":      func(r record.Row) { r[record.ColVolumeML] = "" },
			"non-numeric":       func(r record.Row) { r[record.ColVolumeML] = "abc" },
			"negative volume":   func(r record.Row) { r[record.ColVolumeML] = "-5" },
			"not a number text": func(r record.Row) { r[record.ColVolumeML] = "NaN" },
			"infinite":          func(r record.Row) { r[record.ColVolumeML] = "Inf" },
		}
		for name, mutate := range cases {
			Convey("Then a row with "+name+" should be rejected", func() {
				row := validRow()
				mutate(row)
				_, err := record.Parse("0202", row)
				So(errors.Is(err, record.ErrMalformedRow), ShouldBeTrue)
			})
		}
	})
}

func TestNormalizeResponse(t *testing.T) {
	Convey("Given raw response tokens", t, func() {
		Convey("Then PASS and FAIL should be recognized case-insensitively", func() {
			So(record.NormalizeResponse(" Pass "), ShouldEqual, model.ResponsePass)
			So(record.NormalizeResponse("FAIL"), ShouldEqual, model.ResponseFail)
			So(record.NormalizeResponse("fail"), ShouldEqual, model.ResponseFail)
		})

		Convey("And anything else should be OTHER", func() {
			So(record.NormalizeResponse(""), ShouldEqual, model.ResponseOther)
			So(record.NormalizeResponse("TIMEOUT"), ShouldEqual, model.ResponseOther)
			So(record.NormalizeResponse("PASSED"), ShouldEqual, model.ResponseOther)
		})
	})
}
