// Package calendar builds the date dimension shared by the star and snowflake schemas.
package calendar

import (
	"errors"
	"fmt"
	"time"

	"reshape/internal/models"
)

// ErrInvalidRange is returned when the start year is after the end year.
var ErrInvalidRange = errors.New("calendar start year is after end year")

// Fiscal years start in October.
const fiscalStartMonth = 10

type monthDay struct {
	month time.Month
	day   int
}

// Builder generates calendar rows.
type Builder struct {
	holidays map[monthDay]string
}

// NewBuilder creates a builder with the fixed holiday list
// (New Year's Day, Independence Day, Christmas).
func NewBuilder() *Builder {
	return &Builder{
		holidays: map[monthDay]string{
			{time.January, 1}:   "New Year's Day",
			{time.July, 4}:      "Independence Day",
			{time.December, 25}: "Christmas Day",
		},
	}
}

// Build returns one row per day from startYear-01-01 through endYear-12-31, with
// date_id starting at 1 in chronological order.
func (b *Builder) Build(startYear, endYear int) ([]models.DateRow, error) {
	if startYear > endYear {
		return nil, fmt.Errorf("%w: %d > %d", ErrInvalidRange, startYear, endYear)
	}

	start := time.Date(startYear, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(endYear, time.December, 31, 0, 0, 0, 0, time.UTC)

	rows := make([]models.DateRow, 0, int(end.Sub(start).Hours()/24)+1)

	id := 1
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		rows = append(rows, b.row(id, d))
		id++
	}

	return rows, nil
}

func (b *Builder) row(id int, d time.Time) models.DateRow {
	month := int(d.Month())
	weekday := (int(d.Weekday()) + 6) % 7 // Monday = 0
	_, week := d.ISOWeek()
	holiday, isHoliday := b.holidays[monthDay{d.Month(), d.Day()}]

	fiscalYear := d.Year()
	if month >= fiscalStartMonth {
		fiscalYear++
	}

	return models.DateRow{
		DateID:        id,
		FullDate:      d,
		Year:          d.Year(),
		Quarter:       (month-1)/3 + 1,
		Month:         month,
		MonthName:     d.Month().String(),
		Day:           d.Day(),
		DayOfWeek:     weekday + 1,
		DayName:       d.Weekday().String(),
		WeekOfYear:    week,
		IsWeekend:     weekday >= 5,
		IsHoliday:     isHoliday,
		HolidayName:   holiday,
		FiscalYear:    fiscalYear,
		FiscalQuarter: FiscalQuarter(month),
	}
}

// FiscalQuarter maps a calendar month to its quarter in an October-start fiscal year.
func FiscalQuarter(month int) int {
	offset := ((month-fiscalStartMonth)%12 + 12) % 12

	return offset/3 + 1
}

// Span returns the smallest year range covering every date, or ok=false if dates is empty.
func Span(dates []time.Time) (start, end int, ok bool) {
	for i, d := range dates {
		y := d.Year()
		if i == 0 || y < start {
			start = y
		}

		if i == 0 || y > end {
			end = y
		}
	}

	return start, end, len(dates) > 0
}
