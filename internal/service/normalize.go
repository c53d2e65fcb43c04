package service

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/xuri/excelize/v2"
)

// isoMillis matches the timestamp shape the UI contract expects,
// millisecond precision with an explicit zone.
const isoMillis = "2006-01-02T15:04:05.000Z07:00"

var nonNumeric = regexp.MustCompile(`[^0-9.-]`)

// parseNumeric reads a numeric-looking cell. Currency symbols, thousands
// separators and stray whitespace are stripped before parsing; anything
// left unparseable comes back nil.
func parseNumeric(value string) *float64 {
	cleaned := nonNumeric.ReplaceAllString(value, "")
	if cleaned == "" {
		return nil
	}
	parsed, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || math.IsNaN(parsed) || math.IsInf(parsed, 0) {
		return nil
	}
	return &parsed
}

// parseDateToISO reads a date cell that may hold a spreadsheet day
// serial or freeform text, depending on how the row was entered. Serials
// are decoded to a UTC calendar date (the time-of-day fraction is
// dropped); text goes through a generic date parser. Unrecoverable
// values come back nil.
func parseDateToISO(value string) *string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil
	}

	if serial, err := strconv.ParseFloat(trimmed, 64); err == nil {
		if serial <= 0 {
			return nil
		}
		decoded, err := excelize.ExcelDateToTime(serial, false)
		if err != nil {
			return nil
		}
		day := time.Date(decoded.Year(), decoded.Month(), decoded.Day(), 0, 0, 0, 0, time.UTC)
		iso := day.Format(isoMillis)
		return &iso
	}

	parsed, err := dateparse.ParseAny(trimmed)
	if err != nil {
		return nil
	}
	iso := parsed.UTC().Format(isoMillis)
	return &iso
}

// shortDateLabel renders an ISO timestamp as the compact display date
// used by the dashboard widgets, e.g. "Jan 15".
func shortDateLabel(iso *string) string {
	if iso == nil {
		return ""
	}
	parsed, err := time.Parse(time.RFC3339, *iso)
	if err != nil {
		return ""
	}
	return parsed.UTC().Format("Jan 2")
}

func isoOrEmpty(iso *string) string {
	if iso == nil {
		return ""
	}
	return *iso
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if value != "" {
			return value
		}
	}
	return ""
}
