package config

import (
	"errors"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/esteira-credito/esteira/pkg/domain/model"
	"github.com/esteira-credito/esteira/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/urfave/cli/v3"
)

// Calendar holds CLI flags for the business calendar used by SLA accounting
type Calendar struct {
	path     string
	timezone string
}

// CalendarFile is the TOML layout of a working hours file:
//
//	timezone = "America/Sao_Paulo"
//	weekdays = ["mon", "tue", "wed", "thu", "fri"]
//	start    = "08:00"
//	end      = "18:00"
//	holidays = ["2026-12-25"]
type CalendarFile struct {
	Timezone string   `toml:"timezone"`
	Weekdays []string `toml:"weekdays"`
	Start    string   `toml:"start"`
	End      string   `toml:"end"`
	Holidays []string `toml:"holidays"`
}

// Flags returns CLI flags for calendar configuration
func (x *Calendar) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "calendar",
			Usage:       "Path to the working hours TOML file",
			Category:    "Calendar",
			Sources:     cli.EnvVars("ESTEIRA_CALENDAR"),
			Destination: &x.path,
		},
		&cli.StringFlag{
			Name:        "timezone",
			Usage:       "Timezone of the default calendar, and of a calendar file that sets none",
			Category:    "Calendar",
			Value:       "America/Sao_Paulo",
			Sources:     cli.EnvVars("ESTEIRA_TIMEZONE"),
			Destination: &x.timezone,
		},
	}
}

func (x Calendar) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("path", x.path),
		slog.String("timezone", x.timezone),
	)
}

// Configure returns the calendar from the file, or Monday to Friday
// 08:00-18:00 in the configured timezone when no file is set. A file without
// a timezone uses the configured one.
func (x *Calendar) Configure() (*model.WorkingHours, error) {
	loc, err := time.LoadLocation(x.timezone)
	if err != nil {
		return nil, goerr.Wrap(errors.Join(ErrInvalidConfig, err), "invalid timezone", goerr.V(ValueKey, x.timezone))
	}

	if x.path != "" {
		return LoadCalendar(x.path, loc)
	}

	logging.Default().Warn("No calendar file configured, using default working hours",
		"timezone", loc.String(), "weekdays", "mon-fri", "window", "08:00-18:00")
	return model.DefaultWorkingHours(loc), nil
}

// LoadCalendar reads and validates a working hours TOML file. fallback is
// the timezone used when the file sets none.
func LoadCalendar(path string, fallback *time.Location) (*model.WorkingHours, error) {
	// #nosec G304 - path is expected to be provided by CLI argument
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, goerr.Wrap(ErrConfigNotFound, "calendar file not found", goerr.V(ConfigPathKey, path))
		}
		return nil, goerr.Wrap(err, "failed to read calendar file", goerr.V(ConfigPathKey, path))
	}

	var file CalendarFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, goerr.Wrap(errors.Join(ErrInvalidConfig, err), "failed to parse calendar TOML", goerr.V(ConfigPathKey, path))
	}

	calendar, err := file.Build(fallback)
	if err != nil {
		return nil, goerr.Wrap(err, "calendar validation failed", goerr.V(ConfigPathKey, path))
	}
	return calendar, nil
}

var weekdayNames = map[string]time.Weekday{
	"sun": time.Sunday,
	"mon": time.Monday,
	"tue": time.Tuesday,
	"wed": time.Wednesday,
	"thu": time.Thursday,
	"fri": time.Friday,
	"sat": time.Saturday,
}

// parseWeekday accepts "mon" or "monday", in any case
func parseWeekday(name string) (time.Weekday, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	if len(name) < 3 {
		return 0, false
	}
	d, ok := weekdayNames[name[:3]]
	if !ok || (len(name) > 3 && name != strings.ToLower(d.String())) {
		return 0, false
	}
	return d, true
}

// Build converts the file into a calendar. Missing fields take the default
// calendar's values; a missing timezone takes fallback, or UTC when nil.
func (f *CalendarFile) Build(fallback *time.Location) (*model.WorkingHours, error) {
	loc := time.UTC
	if fallback != nil {
		loc = fallback
	}
	if f.Timezone != "" {
		l, err := time.LoadLocation(f.Timezone)
		if err != nil {
			return nil, goerr.Wrap(errors.Join(ErrInvalidConfig, err), "invalid timezone",
				goerr.V(FieldKey, "timezone"), goerr.V(ValueKey, f.Timezone))
		}
		loc = l
	}

	weekdays := []time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday}
	if f.Weekdays != nil {
		weekdays = weekdays[:0:0]
		for _, name := range f.Weekdays {
			d, ok := parseWeekday(name)
			if !ok {
				return nil, goerr.Wrap(ErrInvalidConfig, "invalid weekday",
					goerr.V(FieldKey, "weekdays"), goerr.V(ValueKey, name))
			}
			weekdays = append(weekdays, d)
		}
	}

	start, end := "08:00", "18:00"
	if f.Start != "" {
		start = f.Start
	}
	if f.End != "" {
		end = f.End
	}
	startAt, err := model.ParseClockTime(start)
	if err != nil {
		return nil, goerr.Wrap(errors.Join(ErrInvalidConfig, err), "invalid start", goerr.V(FieldKey, "start"))
	}
	endAt, err := model.ParseClockTime(end)
	if err != nil {
		return nil, goerr.Wrap(errors.Join(ErrInvalidConfig, err), "invalid end", goerr.V(FieldKey, "end"))
	}

	holidays := make([]time.Time, 0, len(f.Holidays))
	for _, h := range f.Holidays {
		d, err := time.ParseInLocation("2006-01-02", h, loc)
		if err != nil {
			return nil, goerr.Wrap(errors.Join(ErrInvalidConfig, err), "invalid holiday date",
				goerr.V(FieldKey, "holidays"), goerr.V(ValueKey, h))
		}
		holidays = append(holidays, d)
	}

	calendar, err := model.NewWorkingHours(weekdays, startAt, endAt, loc, holidays...)
	if err != nil {
		return nil, goerr.Wrap(errors.Join(ErrInvalidConfig, err), "invalid working hours")
	}
	return calendar, nil
}
