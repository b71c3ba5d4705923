package model

// NameCount is one row of a per-user count table.
type NameCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// DailyCount is the number of distinct attendees on one date.
type DailyCount struct {
	Date  Date `json:"date"`
	Users int  `json:"users"`
}

// UserTimeline is one user's attendance over the shared date axis.
type UserTimeline struct {
	Name     string `json:"name"`
	Cells    []bool `json:"cells"`
	Attended int    `json:"attended"`
}

// Timeline is a dense user x date attendance matrix.
// Every row's Cells is aligned to Dates.
type Timeline struct {
	Dates []Date         `json:"dates"`
	Rows  []UserTimeline `json:"rows"`
}

// Get returns the cells for name.
func (t Timeline) Get(name string) ([]bool, bool) {
	for _, row := range t.Rows {
		if row.Name == name {
			return row.Cells, true
		}
	}
	return nil, false
}

// Bits renders a row's cells as 0/1 ints for sparkline consumers.
func (u UserTimeline) Bits() []int {
	out := make([]int, len(u.Cells))
	for i, c := range u.Cells {
		if c {
			out[i] = 1
		}
	}
	return out
}
