package seed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/okian/rollcall/internal/domain/model"
)

// Mismatch describes one disagreement between expected and served summaries.
type Mismatch struct {
	Name     string
	Expected int
	Actual   int
}

func (m Mismatch) String() string {
	return fmt.Sprintf("%s: expected %d, got %d", m.Name, m.Expected, m.Actual)
}

// Report is the outcome of Verify.
type Report struct {
	Expected   []model.NameCount
	Actual     []model.NameCount
	Mismatches []Mismatch
}

// OK reports whether the served summary matched.
func (r Report) OK() bool { return len(r.Mismatches) == 0 }

type summaryResponse struct {
	TopAttendance []model.NameCount `json:"top_attendance"`
}

// Verify requests the summary over exp's range from baseURL and compares the
// top attendance entries by name.
func Verify(ctx context.Context, client *http.Client, baseURL string, exp ExpectedSummary) (Report, error) {
	if client == nil {
		client = &http.Client{Timeout: DefaultTimeout}
	}
	q := url.Values{}
	q.Set("start", exp.Start.String())
	q.Set("end", exp.End.String())
	target := strings.TrimRight(baseURL, "/") + "/attendance/summary?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, http.NoBody)
	if err != nil {
		return Report{}, fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return Report{}, fmt.Errorf("summary request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Report{}, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return Report{}, fmt.Errorf("summary returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	var sum summaryResponse
	if err := json.Unmarshal(body, &sum); err != nil {
		return Report{}, fmt.Errorf("failed to decode summary: %w", err)
	}

	return compare(exp.TopAttendance, sum.TopAttendance), nil
}

func compare(expected, actual []model.NameCount) Report {
	rep := Report{Expected: expected, Actual: actual}
	got := make(map[string]int, len(actual))
	for _, nc := range actual {
		got[nc.Name] = nc.Count
	}
	want := make(map[string]struct{}, len(expected))
	for _, nc := range expected {
		want[nc.Name] = struct{}{}
		if c, ok := got[nc.Name]; !ok || c != nc.Count {
			rep.Mismatches = append(rep.Mismatches, Mismatch{Name: nc.Name, Expected: nc.Count, Actual: c})
		}
	}
	for _, nc := range actual {
		if _, ok := want[nc.Name]; !ok {
			rep.Mismatches = append(rep.Mismatches, Mismatch{Name: nc.Name, Actual: nc.Count})
		}
	}
	return rep
}
