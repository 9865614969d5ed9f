package workbook

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

var textDateLayouts = []string{"2006-01-02", "02.01.2006"}

var textClockLayouts = []string{"15:04", "15:04:05"}

// Cell returns the trimmed value at idx, or "" when the row is shorter.
func Cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// Int parses a numeric cell rounded to the nearest integer. Blank or unparsable cells yield def.
func Int(value string, def int) int {
	value = strings.TrimSpace(value)
	if value == "" {
		return def
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return def
	}
	return int(math.Round(f))
}

// Date decodes a serial day count (1900 date system) into a UTC calendar day.
// ISO and dd.mm.yyyy text is accepted as well. ok is false for blank or invalid input.
func Date(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	if f, err := strconv.ParseFloat(value, 64); err == nil {
		if f < 1 || math.IsNaN(f) || math.IsInf(f, 0) {
			return time.Time{}, false
		}
		t, err := excelize.ExcelDateToTime(f, false)
		if err != nil {
			return time.Time{}, false
		}
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), true
	}
	for _, layout := range textDateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Clock decodes the time of day of a serial value (its fractional part) as an offset from midnight.
// "HH:MM" text is accepted as well.
func Clock(value string) (time.Duration, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, false
	}
	if f, err := strconv.ParseFloat(value, 64); err == nil {
		if f < 0 || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		_, frac := math.Modf(f)
		seconds := math.Round(frac * 24 * 60 * 60)
		return time.Duration(seconds) * time.Second % (24 * time.Hour), true
	}
	for _, layout := range textClockLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute +
				time.Duration(t.Second())*time.Second, true
		}
	}
	return 0, false
}
