package source

import (
	"context"
	"strings"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	. "github.com/smartystreets/goconvey/convey"
)

func TestSQLSourceSQLite(t *testing.T) {
	ctx := context.Background()
	db, err := Connect(ctx, "sqlite3", "file:attendance?mode=memory&cache=shared")
	if err != nil && strings.Contains(err.Error(), "cgo") {
		t.Skip("sqlite3 driver needs cgo")
	}
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer db.Close()

	Convey("Given an in-memory sqlite attendance table", t, func() {
		db.MustExec(`CREATE TABLE IF NOT EXISTS attendance (date TEXT, name TEXT, idx INTEGER)`)
		db.MustExec(`DELETE FROM attendance`)
		db.MustExec(`INSERT INTO attendance (date, name, idx) VALUES
			('2024-04-24', 'Alice', 1), ('2024-04-24', 'Bob', 2), ('2024-04-25', 'Alice', NULL)`)

		rows, err := NewSQLSource(db, "SELECT date, name, idx FROM attendance ORDER BY date, name").Fetch(ctx)

		Convey("Then the rows come back as text", func() {
			So(err, ShouldBeNil)
			So(len(rows), ShouldEqual, 3)
			So(rows[0].Name, ShouldEqual, "Alice")
			So(rows[0].Rank, ShouldEqual, "1")
			So(rows[2].Rank, ShouldEqual, "")
		})
	})
}
