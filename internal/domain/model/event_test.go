package model_test

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	model "github.com/okian/rollcall/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func TestDate(t *testing.T) {
	convey.Convey("Given calendar dates", t, func() {
		convey.Convey("When parsing the canonical layout", func() {
			d, err := model.ParseDate("2024-04-24")

			convey.So(err, convey.ShouldBeNil)
			convey.So(d.Year(), convey.ShouldEqual, 2024)
			convey.So(d.Month(), convey.ShouldEqual, time.April)
			convey.So(d.Day(), convey.ShouldEqual, 24)
			convey.So(d.String(), convey.ShouldEqual, "2024-04-24")
		})

		convey.Convey("When parsing with a time-of-day layout", func() {
			d, err := model.ParseDate("2024-04-24 23:59:10", model.DateLayout, "2006-01-02 15:04:05")

			convey.Convey("Then the time-of-day is truncated", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(d, convey.ShouldEqual, model.NewDate(2024, time.April, 24))
			})
		})

		convey.Convey("When parsing garbage or empty input", func() {
			_, err1 := model.ParseDate("24/04/2024")
			_, err2 := model.ParseDate("   ")

			convey.So(errors.Is(err1, model.ErrInvalidDate), convey.ShouldBeTrue)
			convey.So(errors.Is(err2, model.ErrInvalidDate), convey.ShouldBeTrue)
		})

		convey.Convey("When comparing and shifting", func() {
			a := model.MustParseDate("2024-04-30")
			b := a.AddDays(1)

			convey.So(b.String(), convey.ShouldEqual, "2024-05-01")
			convey.So(a.Before(b), convey.ShouldBeTrue)
			convey.So(b.After(a), convey.ShouldBeTrue)
			convey.So(a.Compare(a), convey.ShouldEqual, 0)
			convey.So(model.Date{}.IsZero(), convey.ShouldBeTrue)
		})

		convey.Convey("When round-tripping through JSON", func() {
			in := struct {
				D model.Date `json:"d"`
			}{D: model.MustParseDate("2024-04-25")}
			b, err := json.Marshal(in)
			convey.So(err, convey.ShouldBeNil)
			convey.So(string(b), convey.ShouldEqual, `{"d":"2024-04-25"}`)

			var out struct {
				D model.Date `json:"d"`
			}
			convey.So(json.Unmarshal(b, &out), convey.ShouldBeNil)
			convey.So(out.D, convey.ShouldEqual, in.D)
		})
	})
}

func TestEventLog(t *testing.T) {
	convey.Convey("Given an event log built from unsorted records", t, func() {
		d1 := model.MustParseDate("2024-04-24")
		d2 := model.MustParseDate("2024-04-25")
		log := model.NewEventLog([]model.Record{
			{Name: "bob", Date: d2},
			{Name: "alice", Date: d2, Rank: 1},
			{Name: "bob", Date: d1, Rank: 1},
			{Name: "carol", Date: d1, Rank: 2},
		})

		convey.Convey("Then records are in canonical order", func() {
			rs := log.Records()
			convey.So(rs, convey.ShouldHaveLength, 4)
			convey.So(rs[0], convey.ShouldResemble, model.Record{Name: "bob", Date: d1, Rank: 1})
			convey.So(rs[3], convey.ShouldResemble, model.Record{Name: "bob", Date: d2})
		})

		convey.Convey("Then bounds, dates and names are derived", func() {
			lo, ok := log.MinDate()
			convey.So(ok, convey.ShouldBeTrue)
			convey.So(lo, convey.ShouldEqual, d1)
			hi, _ := log.MaxDate()
			convey.So(hi, convey.ShouldEqual, d2)
			convey.So(log.Dates(), convey.ShouldResemble, []model.Date{d1, d2})
			convey.So(log.Names(), convey.ShouldResemble, []string{"alice", "bob", "carol"})
		})

		convey.Convey("Then a single day can be looked up", func() {
			day := log.On(d2)
			convey.So(day, convey.ShouldHaveLength, 2)
			convey.So(day[0].Name, convey.ShouldEqual, "alice")
			convey.So(log.On(d2.AddDays(5)), convey.ShouldBeEmpty)
		})

		convey.Convey("Then mutating a returned slice does not change the log", func() {
			rs := log.Records()
			rs[0].Name = "mallory"
			convey.So(log.Records()[0].Name, convey.ShouldEqual, "bob")
		})

		convey.Convey("Then raw rows keep date, name and rank", func() {
			rows := log.RawRows()
			convey.So(rows[0], convey.ShouldResemble, model.RawRow{Date: "2024-04-24", Name: "bob", Rank: "1"})
			convey.So(rows[3].Rank, convey.ShouldEqual, "")
		})
	})

	convey.Convey("Given a nil or empty log", t, func() {
		var nilLog *model.EventLog
		empty := model.NewEventLog(nil)

		convey.So(nilLog.Len(), convey.ShouldEqual, 0)
		convey.So(empty.Empty(), convey.ShouldBeTrue)
		_, ok := empty.MinDate()
		convey.So(ok, convey.ShouldBeFalse)
		convey.So(empty.Records(), convey.ShouldBeEmpty)
		convey.So(empty.Dates(), convey.ShouldBeEmpty)
		convey.So(nilLog.Select(func(model.Record) bool { return true }).Empty(), convey.ShouldBeTrue)
	})
}

func TestTimelineLookup(t *testing.T) {
	convey.Convey("Given a timeline", t, func() {
		tl := model.Timeline{
			Dates: []model.Date{model.MustParseDate("2024-04-24")},
			Rows:  []model.UserTimeline{{Name: "alice", Cells: []bool{true}, Attended: 1}},
		}

		cells, ok := tl.Get("alice")
		convey.So(ok, convey.ShouldBeTrue)
		convey.So(cells, convey.ShouldResemble, []bool{true})
		_, ok = tl.Get("nobody")
		convey.So(ok, convey.ShouldBeFalse)
		convey.So(tl.Rows[0].Bits(), convey.ShouldResemble, []int{1})
	})
}
