package core

import (
	"fmt"
	"strings"
	"time"
)

// Locale selects the language of labels and rendered statements.
type Locale string

const (
	LocaleEN Locale = "en"
	LocaleES Locale = "es"
)

// ParseLocale maps a config value to a Locale, defaulting to Spanish.
func ParseLocale(s string) (Locale, bool) {
	switch Locale(strings.ToLower(strings.TrimSpace(s))) {
	case LocaleEN:
		return LocaleEN, true
	case LocaleES, "":
		return LocaleES, true
	default:
		return LocaleES, false
	}
}

// WeekdayOrder is the canonical Monday-first week used by every
// weekday grouping.
var WeekdayOrder = [7]time.Weekday{
	time.Monday,
	time.Tuesday,
	time.Wednesday,
	time.Thursday,
	time.Friday,
	time.Saturday,
	time.Sunday,
}

// MonthOrder is the canonical January-first year.
var MonthOrder = [12]time.Month{
	time.January, time.February, time.March, time.April,
	time.May, time.June, time.July, time.August,
	time.September, time.October, time.November, time.December,
}

var weekdayNames = map[Locale][7]string{
	LocaleEN: {"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"},
	LocaleES: {"Lunes", "Martes", "Miércoles", "Jueves", "Viernes", "Sábado", "Domingo"},
}

var monthNames = map[Locale][12]string{
	LocaleEN: {"January", "February", "March", "April", "May", "June",
		"July", "August", "September", "October", "November", "December"},
	LocaleES: {"Enero", "Febrero", "Marzo", "Abril", "Mayo", "Junio",
		"Julio", "Agosto", "Septiembre", "Octubre", "Noviembre", "Diciembre"},
}

var monthAbbrev = map[Locale][12]string{
	LocaleEN: {"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"},
	LocaleES: {"Ene", "Feb", "Mar", "Abr", "May", "Jun", "Jul", "Ago", "Sep", "Oct", "Nov", "Dic"},
}

// WeekdayIndex is the position of wd in WeekdayOrder (Monday = 0).
func WeekdayIndex(wd time.Weekday) int {
	return (int(wd) + 6) % 7
}

func WeekdayName(wd time.Weekday, locale Locale) string {
	names, ok := weekdayNames[locale]
	if !ok {
		names = weekdayNames[LocaleES]
	}
	return names[WeekdayIndex(wd)]
}

func MonthName(m time.Month, locale Locale) string {
	names, ok := monthNames[locale]
	if !ok {
		names = monthNames[LocaleES]
	}
	return names[int(m)-1]
}

func MonthAbbrev(m time.Month, locale Locale) string {
	names, ok := monthAbbrev[locale]
	if !ok {
		names = monthAbbrev[LocaleES]
	}
	return names[int(m)-1]
}

// MonthLabel renders "March 2024" / "Marzo 2024".
func MonthLabel(m time.Month, year int, locale Locale) string {
	return fmt.Sprintf("%s %d", MonthName(m, locale), year)
}

// MonthKeyLabel turns a "2006-01" key into its display label. Unknown
// keys are returned unchanged.
func MonthKeyLabel(key string, locale Locale) string {
	t, err := time.Parse("2006-01", key)
	if err != nil {
		return key
	}
	return MonthLabel(t.Month(), t.Year(), locale)
}
