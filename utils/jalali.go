package utils

import (
	"time"

	ptime "github.com/yaa110/go-persian-calendar"
)

// FormatJalaliDate renders a Gregorian time as a Jalali Y/m/d date for
// Persian-facing views.
func FormatJalaliDate(t time.Time) string {
	return ptime.New(t).Format("yyyy/MM/dd")
}

// FormatJalaliDateTime renders a Gregorian time as Jalali Y/m/d H:m:s.
func FormatJalaliDateTime(t time.Time) string {
	return ptime.New(t).Format("yyyy/MM/dd HH:mm:ss")
}
