package dedupe_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	dedupe "github.com/okian/rollcall/internal/domain/dedupe"
	"github.com/okian/rollcall/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func key(name, date string) dedupe.Key {
	return dedupe.Key{Name: name, Date: model.MustParseDate(date)}
}

func TestInMemoryDeduper(t *testing.T) {
	Convey("Given a new InMemoryDeduper", t, func() {
		d := dedupe.NewInMemoryDeduper(dedupe.WithSizeHint(16))
		ctx := context.Background()

		Convey("Then it starts empty", func() {
			So(d.Size(), ShouldEqual, 0)
		})

		Convey("When a key is recorded twice", func() {
			first := d.SeenAndRecord(ctx, key("alice", "2024-04-24"))
			second := d.SeenAndRecord(ctx, key("alice", "2024-04-24"))

			Convey("Then only the second call reports it as seen", func() {
				So(first, ShouldBeFalse)
				So(second, ShouldBeTrue)
				So(d.Size(), ShouldEqual, 1)
			})
		})

		Convey("When the same name appears on different days", func() {
			So(d.SeenAndRecord(ctx, key("alice", "2024-04-24")), ShouldBeFalse)
			So(d.SeenAndRecord(ctx, key("alice", "2024-04-25")), ShouldBeFalse)
			So(d.SeenAndRecord(ctx, key("bob", "2024-04-24")), ShouldBeFalse)

			Convey("Then they are distinct keys", func() {
				So(d.Size(), ShouldEqual, 3)
			})
		})

		Convey("When reset", func() {
			d.SeenAndRecord(ctx, key("alice", "2024-04-24"))
			d.Reset()

			Convey("Then previously seen keys are new again", func() {
				So(d.Size(), ShouldEqual, 0)
				So(d.SeenAndRecord(ctx, key("alice", "2024-04-24")), ShouldBeFalse)
			})
		})

		Convey("When using nil context", func() {
			So(func() { d.SeenAndRecord(nil, key("x", "2024-01-01")) }, ShouldNotPanic) //nolint:staticcheck // nil ctx is tolerated
		})
	})
}

func TestDedupeConcurrency(t *testing.T) {
	Convey("Given a deduper with concurrent access", t, func() {
		d := dedupe.NewInMemoryDeduper()
		const numGoroutines = 10
		const keysPerGoroutine = 100

		Convey("When goroutines record overlapping keys", func() {
			var wg sync.WaitGroup
			for i := 0; i < numGoroutines; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					for j := 0; j < keysPerGoroutine; j++ {
						d.SeenAndRecord(context.Background(), dedupe.Key{Name: fmt.Sprintf("user-%d", j)})
					}
				}()
			}
			wg.Wait()

			Convey("Then every key is recorded exactly once", func() {
				So(d.Size(), ShouldEqual, keysPerGoroutine)
			})
		})
	})
}

func TestApply(t *testing.T) {
	Convey("Given records with a duplicated (name, date)", t, func() {
		day := model.MustParseDate("2024-04-24")
		records := []model.Record{
			{Name: "alice", Date: day, Rank: 1},
			{Name: "bob", Date: day, Rank: 2},
			{Name: "alice", Date: day, Rank: 3},
		}

		Convey("When keeping the first", func() {
			kept, dropped := dedupe.Apply(context.Background(), dedupe.NewInMemoryDeduper(), dedupe.KeepFirst, records)

			Convey("Then the earliest row survives", func() {
				So(dropped, ShouldEqual, 1)
				So(kept, ShouldHaveLength, 2)
				So(kept[0], ShouldResemble, records[0])
				So(kept[1], ShouldResemble, records[1])
			})
		})

		Convey("When keeping the last", func() {
			kept, dropped := dedupe.Apply(context.Background(), dedupe.NewInMemoryDeduper(), dedupe.KeepLast, records)

			Convey("Then the latest row survives and input order is kept", func() {
				So(dropped, ShouldEqual, 1)
				So(kept, ShouldHaveLength, 2)
				So(kept[0], ShouldResemble, records[1])
				So(kept[1], ShouldResemble, records[2])
			})
		})

		Convey("When there is nothing to apply", func() {
			kept, dropped := dedupe.Apply(context.Background(), dedupe.NewInMemoryDeduper(), dedupe.KeepFirst, nil)
			So(kept, ShouldBeEmpty)
			So(dropped, ShouldEqual, 0)
		})
	})
}

func TestParsePolicy(t *testing.T) {
	Convey("Given policy strings", t, func() {
		p, err := dedupe.ParsePolicy("")
		So(err, ShouldBeNil)
		So(p, ShouldEqual, dedupe.KeepFirst)

		p, err = dedupe.ParsePolicy(" LAST ")
		So(err, ShouldBeNil)
		So(p, ShouldEqual, dedupe.KeepLast)

		_, err = dedupe.ParsePolicy("random")
		So(errors.Is(err, dedupe.ErrUnknownPolicy), ShouldBeTrue)
	})
}
