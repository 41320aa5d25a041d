package calendar

import (
	"time"

	"reshape/internal/models"
)

const dateKeyLayout = "2006-01-02"

// Index resolves dates to date_id values.
type Index struct {
	ids map[string]int
}

// NewIndex indexes rows by calendar day.
func NewIndex(rows []models.DateRow) *Index {
	ids := make(map[string]int, len(rows))
	for _, r := range rows {
		ids[r.FullDate.Format(dateKeyLayout)] = r.DateID
	}

	return &Index{ids: ids}
}

// DateID returns the id of the day containing t. Days outside the indexed range get
// the YYYYMMDD integer instead, and ok is false.
func (ix *Index) DateID(t time.Time) (id int, ok bool) {
	if id, ok := ix.ids[t.Format(dateKeyLayout)]; ok {
		return id, true
	}

	return Fallback(t), false
}

// Len returns the number of indexed days.
func (ix *Index) Len() int {
	return len(ix.ids)
}

// Fallback encodes t as YYYYMMDD.
func Fallback(t time.Time) int {
	return t.Year()*10000 + int(t.Month())*100 + t.Day()
}
