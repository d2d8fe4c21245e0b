package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
)

const dateLayout = "2006-01-02"

// ClockTime is a wall-clock time of day, in minutes since midnight
type ClockTime int

// EndOfDay is midnight at the end of the day, written "24:00"
const EndOfDay ClockTime = 24 * 60

// ParseClockTime parses "HH:MM" (24h). "24:00" is accepted as EndOfDay so a
// window can run until midnight.
func ParseClockTime(s string) (ClockTime, error) {
	s = strings.TrimSpace(s)
	if s == "24:00" {
		return EndOfDay, nil
	}
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, goerr.Wrap(err, "invalid clock time, expected HH:MM", goerr.V("value", s))
	}
	return ClockTime(t.Hour()*60 + t.Minute()), nil
}

func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", int(c)/60, int(c)%60)
}

func (c ClockTime) on(year int, month time.Month, day int, loc *time.Location) time.Time {
	return time.Date(year, month, day, int(c)/60, int(c)%60, 0, 0, loc)
}

// WorkingHours is the business calendar used to measure SLA time: the active
// weekdays, the daily [Start, End) window in Location, and holidays that are
// skipped entirely. It is immutable after construction.
type WorkingHours struct {
	weekdays [7]bool
	start    ClockTime
	end      ClockTime
	location *time.Location
	holidays map[string]struct{}
}

// NewWorkingHours builds a calendar. At least one weekday is required and end
// must be after start. A nil location means UTC.
func NewWorkingHours(weekdays []time.Weekday, start, end ClockTime, loc *time.Location, holidays ...time.Time) (*WorkingHours, error) {
	if len(weekdays) == 0 {
		return nil, goerr.New("at least one active weekday is required")
	}
	if start < 0 || end > EndOfDay || end <= start {
		return nil, goerr.New("daily window end must be after start",
			goerr.V("start", start.String()), goerr.V("end", end.String()))
	}
	if loc == nil {
		loc = time.UTC
	}

	w := &WorkingHours{
		start:    start,
		end:      end,
		location: loc,
		holidays: make(map[string]struct{}, len(holidays)),
	}
	for _, d := range weekdays {
		if d < time.Sunday || d > time.Saturday {
			return nil, goerr.New("invalid weekday", goerr.V("weekday", int(d)))
		}
		w.weekdays[d] = true
	}
	for _, h := range holidays {
		w.holidays[h.Format(dateLayout)] = struct{}{}
	}
	return w, nil
}

// DefaultWorkingHours is Monday to Friday, 08:00 to 18:00, with no holidays
func DefaultWorkingHours(loc *time.Location) *WorkingHours {
	w, _ := NewWorkingHours(
		[]time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday},
		8*60, 18*60, loc,
	)
	return w
}

// Location returns the calendar timezone
func (w *WorkingHours) Location() *time.Location {
	return w.location
}

// DailyHours returns the length of the daily active window
func (w *WorkingHours) DailyHours() time.Duration {
	return time.Duration(w.end-w.start) * time.Minute
}

func (w *WorkingHours) isActiveDay(day time.Time) bool {
	if !w.weekdays[day.Weekday()] {
		return false
	}
	_, holiday := w.holidays[day.Format(dateLayout)]
	return !holiday
}

// window returns the active window on the calendar day containing day
func (w *WorkingHours) window(day time.Time) (time.Time, time.Time) {
	y, m, d := day.Date()
	return w.start.on(y, m, d, w.location), w.end.on(y, m, d, w.location)
}

func midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// ElapsedBusiness returns the active time inside [from, to). Partial days are
// clipped to the daily window and inactive days contribute nothing.
func (w *WorkingHours) ElapsedBusiness(from, to time.Time) (time.Duration, error) {
	if from.After(to) {
		return 0, goerr.Wrap(ErrInvalidInterval, "from is after to",
			goerr.V("from", from), goerr.V("to", to))
	}

	from = from.In(w.location)
	to = to.In(w.location)

	var total time.Duration
	for day := midnight(from); day.Before(to); day = day.AddDate(0, 0, 1) {
		if !w.isActiveDay(day) {
			continue
		}
		winStart, winEnd := w.window(day)
		lo := maxTime(from, winStart)
		hi := minTime(to, winEnd)
		if hi.After(lo) {
			total += hi.Sub(lo)
		}
	}
	return total, nil
}

// ElapsedBusinessHours is ElapsedBusiness expressed in fractional hours
func (w *WorkingHours) ElapsedBusinessHours(from, to time.Time) (float64, error) {
	d, err := w.ElapsedBusiness(from, to)
	if err != nil {
		return 0, err
	}
	return d.Hours(), nil
}

// AddBusiness returns the instant at which d of business time has elapsed
// since from. It is the inverse of ElapsedBusiness.
func (w *WorkingHours) AddBusiness(from time.Time, d time.Duration) (time.Time, error) {
	if d < 0 {
		return time.Time{}, goerr.Wrap(ErrInvalidInterval, "negative duration", goerr.V("duration", d))
	}
	if d == 0 {
		return from, nil
	}

	cursor := from.In(w.location)
	// a calendar whose every weekday is a holiday would never terminate
	const maxDays = 366 * 10
	for i := 0; i < maxDays; i++ {
		day := midnight(cursor).AddDate(0, 0, i)
		if !w.isActiveDay(day) {
			continue
		}
		winStart, winEnd := w.window(day)
		lo := maxTime(cursor, winStart)
		if !winEnd.After(lo) {
			continue
		}
		available := winEnd.Sub(lo)
		if d <= available {
			return lo.Add(d), nil
		}
		d -= available
	}
	return time.Time{}, goerr.New("no active business time within ten years", goerr.V("from", from))
}

func maxTime(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}

func minTime(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}
