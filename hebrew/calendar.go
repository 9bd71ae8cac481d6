/*
Package hebrew converts Gregorian dates to the Hebrew calendar.

PURPOSE:
  Hebrew-yearly recurrences (holidays, yahrzeits) are anchored to a Hebrew
  month and day. The engine only needs one pure function from a Gregorian
  day to (year, month, day) in the Hebrew calendar; this package provides
  it as a cashflow.SecondaryCalendar on top of hebcal's hdate.

MONTH NUMBERING:
  Months are numbered from Nisan, as in the Torah:
    1 Nisan   2 Iyyar   3 Sivan   4 Tammuz   5 Av       6 Elul
    7 Tishri  8 Heshvan 9 Kislev  10 Tevet   11 Shevat  12 Adar (Adar I)
    13 Adar II (leap years only)
  The year number changes on 1 Tishri, so Tishri (7) starts the year.
  hdate numbers months the same way, so values pass through unchanged.

EXAMPLE:
  hebrew.Calendar{}.FromGregorian(cashflow.NewDate(2024, time.October, 3))
  // => {Year: 5785, Month: 7, Day: 1}  (Rosh Hashanah)
*/
package hebrew

import (
	"github.com/hebcal/hdate"
	"github.com/warp/cashflow-engine/cashflow"
)

// Month numbers.
const (
	Nisan   = int(hdate.Nisan)
	Iyyar   = int(hdate.Iyyar)
	Sivan   = int(hdate.Sivan)
	Tammuz  = int(hdate.Tamuz)
	Av      = int(hdate.Av)
	Elul    = int(hdate.Elul)
	Tishri  = int(hdate.Tishrei)
	Heshvan = int(hdate.Cheshvan)
	Kislev  = int(hdate.Kislev)
	Tevet   = int(hdate.Tevet)
	Shevat  = int(hdate.Shvat)
	Adar    = int(hdate.Adar1)
	AdarII  = int(hdate.Adar2)
)

// Calendar implements cashflow.SecondaryCalendar.
type Calendar struct{}

// FromGregorian converts a Gregorian day.
func (Calendar) FromGregorian(d cashflow.Date) cashflow.CalendarDate {
	hd := hdate.FromGregorian(d.Year(), d.Month(), d.Day())
	return cashflow.CalendarDate{Year: hd.Year(), Month: int(hd.Month()), Day: hd.Day()}
}

// ToGregorian converts a Hebrew date back to a Gregorian day.
func ToGregorian(year, month, day int) cashflow.Date {
	t := hdate.New(year, hdate.HMonth(month), day).Gregorian()
	return cashflow.NewDate(t.Year(), t.Month(), t.Day())
}

// IsLeapYear reports whether year has a thirteenth month.
func IsLeapYear(year int) bool { return hdate.IsLeapYear(year) }

// MonthsInYear is 13 in leap years, 12 otherwise.
func MonthsInYear(year int) int { return hdate.MonthsInYear(year) }

// DaysInYear is 353-355 or 383-385.
func DaysInYear(year int) int { return hdate.DaysInYear(year) }

// DaysInMonth returns 29 or 30.
func DaysInMonth(year, month int) int { return hdate.DaysInMonth(hdate.HMonth(month), year) }
