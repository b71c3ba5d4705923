package window_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/okian/rollcall/internal/domain/model"
	"github.com/okian/rollcall/internal/domain/window"
	. "github.com/smartystreets/goconvey/convey"
)

func d(s string) model.Date { return model.MustParseDate(s) }

func sampleLog() *model.EventLog {
	return model.NewEventLog([]model.Record{
		{Name: "alice", Date: d("2024-04-24"), Rank: 1},
		{Name: "bob", Date: d("2024-04-24"), Rank: 2},
		{Name: "alice", Date: d("2024-04-25"), Rank: 1},
		{Name: "carol", Date: d("2024-04-28")},
	})
}

func TestValidate(t *testing.T) {
	Convey("Given a log spanning 2024-04-24..2024-04-28", t, func() {
		log := sampleLog()

		Convey("When the range lies inside the log", func() {
			res := window.Validate(log, d("2024-04-24"), d("2024-04-28"))

			So(res.Status, ShouldEqual, window.StatusOK)
			So(res.Blocking(), ShouldBeFalse)
			So(res.Err(), ShouldBeNil)
			So(res.SingleDay, ShouldBeFalse)
			So(res.Earliest, ShouldEqual, d("2024-04-24"))
			So(res.Latest, ShouldEqual, d("2024-04-28"))
		})

		Convey("When the range is inverted", func() {
			res := window.Validate(log, d("2024-05-01"), d("2024-04-24"))

			Convey("Then start-after-end wins over every other rule", func() {
				So(res.Status, ShouldEqual, window.StatusStartAfterEnd)
				So(res.Blocking(), ShouldBeTrue)
				So(errors.Is(res.Err(), window.ErrStartAfterEnd), ShouldBeTrue)
				So(errors.Is(res.Err(), window.ErrInvalidRange), ShouldBeTrue)
			})
		})

		Convey("When start precedes the earliest event", func() {
			res := window.Validate(log, d("2024-04-01"), d("2024-04-25"))

			So(res.Status, ShouldEqual, window.StatusStartBeforeEarliest)
			So(errors.Is(res.Err(), window.ErrStartBeforeEarliest), ShouldBeTrue)
			So(res.Message(), ShouldContainSubstring, "earliest")
		})

		Convey("When start is after the latest event", func() {
			res := window.Validate(log, d("2024-05-01"), d("2024-05-02"))

			So(res.Status, ShouldEqual, window.StatusStartAfterLatest)
			So(errors.Is(res.Err(), window.ErrStartAfterLatest), ShouldBeTrue)
		})

		Convey("When end is after the latest event", func() {
			res := window.Validate(log, d("2024-04-25"), d("2024-06-01"))

			Convey("Then it is a warning carrying the latest date", func() {
				So(res.Status, ShouldEqual, window.StatusNoDataAfter)
				So(res.Blocking(), ShouldBeFalse)
				So(res.Status.Warning(), ShouldBeTrue)
				So(res.Err(), ShouldBeNil)
				So(res.Message(), ShouldEqual, "no data after 2024-04-28")
			})
		})

		Convey("When start equals end", func() {
			res := window.Validate(log, d("2024-04-25"), d("2024-04-25"))

			So(res.Status, ShouldEqual, window.StatusOK)
			So(res.SingleDay, ShouldBeTrue)
		})
	})

	Convey("Given an empty log", t, func() {
		empty := model.NewEventLog(nil)

		Convey("When validating an ordered range", func() {
			res := window.Validate(empty, d("2024-04-24"), d("2024-04-25"))
			So(res.Status, ShouldEqual, window.StatusEmptyLog)
			So(res.Blocking(), ShouldBeFalse)
		})

		Convey("When validating an inverted range", func() {
			res := window.Validate(empty, d("2024-04-25"), d("2024-04-24"))
			So(res.Status, ShouldEqual, window.StatusStartAfterEnd)
		})

		Convey("When the result is encoded", func() {
			body, err := json.Marshal(window.Validate(empty, d("2024-04-24"), d("2024-04-25")))

			Convey("Then the log bounds are present and blank", func() {
				So(err, ShouldBeNil)
				So(string(body), ShouldContainSubstring, `"earliest":""`)
				So(string(body), ShouldContainSubstring, `"latest":""`)
			})
		})
	})
}

func TestFilter(t *testing.T) {
	Convey("Given a log and an inclusive range", t, func() {
		log := sampleLog()
		start, end := d("2024-04-25"), d("2024-04-28")

		got := window.Filter(log, start, end)

		Convey("Then every kept record is inside and every excluded one outside", func() {
			So(got.Len(), ShouldEqual, 2)
			got.Each(func(r model.Record) {
				So(window.Contains(r.Date, start, end), ShouldBeTrue)
			})
			kept := map[model.Record]bool{}
			got.Each(func(r model.Record) { kept[r] = true })
			log.Each(func(r model.Record) {
				if !kept[r] {
					So(window.Contains(r.Date, start, end), ShouldBeFalse)
				}
			})
		})

		Convey("Then the source log is untouched", func() {
			So(log.Len(), ShouldEqual, 4)
		})

		Convey("Then a single-day range returns that day only", func() {
			day := window.Filter(log, d("2024-04-24"), d("2024-04-24"))
			So(day.Len(), ShouldEqual, 2)
			So(day.Records(), ShouldResemble, log.On(d("2024-04-24")))
		})

		Convey("Then filtering an empty log yields an empty log", func() {
			So(window.Filter(model.NewEventLog(nil), start, end).Empty(), ShouldBeTrue)
		})
	})
}
