package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/okian/rollcall/internal/adapters/http/api"
	"github.com/okian/rollcall/internal/adapters/repository"
	"github.com/okian/rollcall/internal/adapters/source"
	service "github.com/okian/rollcall/internal/app"
	"github.com/okian/rollcall/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

var rows = []model.RawRow{
	{Date: "2024-04-24", Name: "Alice", Rank: "1"},
	{Date: "2024-04-24", Name: "Bob", Rank: "2"},
	{Date: "2024-04-25", Name: "Alice", Rank: "1"},
}

// brokenDeps fails every call with a fixed error.
type brokenDeps struct {
	err error
}

func (b *brokenDeps) Summary(context.Context, service.SummaryRequest) (service.Summary, error) {
	return service.Summary{}, b.err
}

func (b *brokenDeps) Records(context.Context, model.Date) (service.Summary, error) {
	return service.Summary{}, b.err
}

func (b *brokenDeps) Timeline(context.Context) (model.Timeline, error) {
	return model.Timeline{}, b.err
}

func (b *brokenDeps) Refresh(context.Context) (*repository.CachedLog, error) {
	return nil, b.err
}

type mockStatsProvider struct {
	stats map[string]interface{}
}

func (m *mockStatsProvider) GetStats() map[string]interface{} {
	return m.stats
}

func newMux(deps api.Dependencies, stats api.StatsProvider) *http.ServeMux {
	mux := http.NewServeMux()
	api.NewServer(deps, stats).Register(context.Background(), mux)
	return mux
}

func do(mux http.Handler, method, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

type errorBody struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	Validity *struct {
		Status string `json:"status"`
	} `json:"validity"`
}

func decodeError(w *httptest.ResponseRecorder) errorBody {
	var body errorBody
	So(json.Unmarshal(w.Body.Bytes(), &body), ShouldBeNil)
	return body
}

func TestServer_EmptyLog(t *testing.T) {
	Convey("Given an API server over a source with no rows", t, func() {
		svc := service.New(service.WithSource(&source.Static{Label: "empty"}))
		mux := newMux(svc, svc)

		Convey("When the summary is requested with only a start date", func() {
			w := do(mux, http.MethodGet, "/attendance/summary?start=2024-04-24")

			Convey("Then it answers with the empty-log warning", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var sum service.Summary
				So(json.Unmarshal(w.Body.Bytes(), &sum), ShouldBeNil)
				So(string(sum.Validity.Status), ShouldEqual, "empty-log")
				So(sum.TopAttendance, ShouldBeEmpty)
			})
		})
	})
}

func TestServer_Attendance(t *testing.T) {
	Convey("Given an API server over a loaded service", t, func() {
		svc := service.New(service.WithSource(&source.Static{Label: "sheet", Rows: rows}))
		mux := newMux(svc, svc)

		Convey("When the summary is requested without bounds", func() {
			w := do(mux, http.MethodGet, "/attendance/summary")

			Convey("Then the full range is aggregated", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Header().Get("Content-Type"), ShouldStartWith, "application/json")

				var sum service.Summary
				So(json.Unmarshal(w.Body.Bytes(), &sum), ShouldBeNil)
				So(sum.Start.String(), ShouldEqual, "2024-04-24")
				So(sum.End.String(), ShouldEqual, "2024-04-25")
				So(string(sum.Validity.Status), ShouldEqual, "ok")
				So(sum.TopAttendance, ShouldResemble, []model.NameCount{{Name: "Alice", Count: 2}, {Name: "Bob", Count: 1}})
				So(len(sum.Daily), ShouldEqual, 2)
			})
		})

		Convey("When a date cannot be parsed", func() {
			w := do(mux, http.MethodGet, "/attendance/summary?start=24/04/2024")

			Convey("Then it is a bad request", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(decodeError(w).Code, ShouldEqual, "bad_request")
			})
		})

		Convey("When the range is inverted", func() {
			w := do(mux, http.MethodGet, "/attendance/summary?start=2024-04-25&end=2024-04-24")

			Convey("Then the blocking status is returned as the code", func() {
				So(w.Code, ShouldEqual, http.StatusUnprocessableEntity)
				body := decodeError(w)
				So(body.Code, ShouldEqual, "start-after-end")
				So(body.Validity, ShouldNotBeNil)
				So(body.Validity.Status, ShouldEqual, "start-after-end")
			})
		})

		Convey("When the start precedes the log", func() {
			w := do(mux, http.MethodGet, "/attendance/summary?start=2024-01-01")
			So(w.Code, ShouldEqual, http.StatusUnprocessableEntity)
			So(decodeError(w).Code, ShouldEqual, "start-before-earliest")
		})

		Convey("When the end is past the latest record", func() {
			w := do(mux, http.MethodGet, "/attendance/summary?end=2024-05-01")

			Convey("Then it warns but still answers", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var sum service.Summary
				So(json.Unmarshal(w.Body.Bytes(), &sum), ShouldBeNil)
				So(string(sum.Validity.Status), ShouldEqual, "no-data-after")
				So(sum.Message, ShouldEqual, "no data after 2024-04-25")
			})
		})

		Convey("When one day's records are requested", func() {
			w := do(mux, http.MethodGet, "/attendance/records?date=2024-04-24")

			Convey("Then the records are listed", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var sum service.Summary
				So(json.Unmarshal(w.Body.Bytes(), &sum), ShouldBeNil)
				So(sum.SingleDay, ShouldBeTrue)
				So(len(sum.Records), ShouldEqual, 2)
				So(sum.Records[1].Name, ShouldEqual, "Bob")
				So(sum.Records[1].Rank, ShouldEqual, 2)
			})
		})

		Convey("When records are requested without a date", func() {
			w := do(mux, http.MethodGet, "/attendance/records")
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When the timeline is requested", func() {
			w := do(mux, http.MethodGet, "/attendance/timeline")

			Convey("Then every user has one cell per date", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var tl model.Timeline
				So(json.Unmarshal(w.Body.Bytes(), &tl), ShouldBeNil)
				So(len(tl.Dates), ShouldEqual, 2)
				So(len(tl.Rows), ShouldEqual, 2)
				So(tl.Rows[1].Name, ShouldEqual, "Bob")
				So(tl.Rows[1].Cells, ShouldResemble, []bool{true, false})
			})
		})

		Convey("When a refresh is forced", func() {
			w := do(mux, http.MethodPost, "/refresh")

			Convey("Then the report is returned", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var body map[string]interface{}
				So(json.Unmarshal(w.Body.Bytes(), &body), ShouldBeNil)
				So(body["status"], ShouldEqual, "refreshed")
				So(body["source"], ShouldEqual, "sheet")
				So(body["records"], ShouldEqual, float64(3))
			})
		})

		Convey("When refresh is called with GET", func() {
			w := do(mux, http.MethodGet, "/refresh")
			So(w.Code, ShouldEqual, http.StatusMethodNotAllowed)
		})

		Convey("When the summary is called with POST", func() {
			w := do(mux, http.MethodPost, "/attendance/summary")
			So(w.Code, ShouldEqual, http.StatusMethodNotAllowed)
		})

		Convey("When stats are posted to", func() {
			w := do(mux, http.MethodPost, "/stats")

			Convey("Then the method is refused with a JSON error", func() {
				So(w.Code, ShouldEqual, http.StatusMethodNotAllowed)
				So(decodeError(w).Code, ShouldEqual, "method_not_allowed")
			})
		})

		Convey("When stats and health are requested", func() {
			So(do(mux, http.MethodGet, "/attendance/summary").Code, ShouldEqual, http.StatusOK)
			stats := do(mux, http.MethodGet, "/stats")
			health := do(mux, http.MethodGet, "/healthz")

			Convey("Then both answer", func() {
				So(stats.Code, ShouldEqual, http.StatusOK)
				var body map[string]interface{}
				So(json.Unmarshal(stats.Body.Bytes(), &body), ShouldBeNil)
				So(body["records"], ShouldEqual, float64(3))

				So(health.Code, ShouldEqual, http.StatusOK)
				So(health.Body.String(), ShouldContainSubstring, "rollcall_attendance_http_requests_total")
			})
		})
	})
}

func TestServer_SourceFailures(t *testing.T) {
	Convey("Given a service whose source is down", t, func() {
		down := &source.Static{Err: errors.New("connection refused")}
		svc := service.New(service.WithSource(down))
		mux := newMux(svc, svc)

		Convey("Then queries answer 503 source_unavailable", func() {
			for _, target := range []string{"/attendance/summary", "/attendance/timeline", "/attendance/records?date=2024-04-24"} {
				w := do(mux, http.MethodGet, target)
				So(w.Code, ShouldEqual, http.StatusServiceUnavailable)
				So(decodeError(w).Code, ShouldEqual, "source_unavailable")
			}
			So(do(mux, http.MethodPost, "/refresh").Code, ShouldEqual, http.StatusServiceUnavailable)
		})
	})

	Convey("Given dependencies failing with an unexpected error", t, func() {
		mux := newMux(&brokenDeps{err: errors.New("boom")}, &mockStatsProvider{stats: map[string]interface{}{}})

		Convey("Then the API answers 500", func() {
			w := do(mux, http.MethodGet, "/attendance/summary")
			So(w.Code, ShouldEqual, http.StatusInternalServerError)
			body := decodeError(w)
			So(body.Code, ShouldEqual, "internal_error")
			So(body.Message, ShouldEqual, "boom")
		})
	})
}

func TestRequestIDMiddleware(t *testing.T) {
	Convey("Given a handler behind the request id middleware", t, func() {
		var seen string
		h := api.RequestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen = r.Header.Get(api.RequestIDHeader)
		}))

		Convey("When the client sends no id", func() {
			w := do(h, http.MethodGet, "/")

			Convey("Then one is generated and echoed", func() {
				So(seen, ShouldNotBeEmpty)
				So(len(seen), ShouldEqual, 36)
				So(w.Header().Get(api.RequestIDHeader), ShouldEqual, seen)
			})
		})

		Convey("When the client sends an id", func() {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set(api.RequestIDHeader, "abc-123")
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)

			Convey("Then it is kept", func() {
				So(seen, ShouldEqual, "abc-123")
				So(w.Header().Get(api.RequestIDHeader), ShouldEqual, "abc-123")
			})
		})
	})
}

func TestMetricsMiddleware(t *testing.T) {
	Convey("Given a handler that fails", t, func() {
		h := api.MetricsMiddleware(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnprocessableEntity)
		}, "test")

		Convey("Then the status passes through", func() {
			w := do(h, http.MethodGet, "/")
			So(w.Code, ShouldEqual, http.StatusUnprocessableEntity)
		})
	})
}
