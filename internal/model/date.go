// internal/model/date.go
package model

import "time"

const DateLayout = "2006-01-02"

// Date is a calendar date in YYYY-MM-DD form. Well-formed dates order
// correctly under plain string comparison.
type Date string

func DateOf(t time.Time) Date {
	return Date(t.UTC().Format(DateLayout))
}

func (d Date) Time() (time.Time, error) {
	return time.Parse(DateLayout, string(d))
}

func (d Date) Valid() bool {
	_, err := d.Time()
	return err == nil
}

// AddDays returns d shifted by n days. A malformed date is returned as is.
func (d Date) AddDays(n int) Date {
	t, err := d.Time()
	if err != nil {
		return d
	}
	return DateOf(t.AddDate(0, 0, n))
}

func (d Date) String() string { return string(d) }
