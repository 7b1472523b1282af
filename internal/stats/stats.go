// Package stats computes read-only figures over subscriber snapshots.
package stats

import (
	"strings"

	"talent-pipeline/internal/model"
)

const (
	// DefaultWindowDays is the recency window used by dashboards.
	DefaultWindowDays = 7
	NotSpecified      = "Not specified"
)

// Bucket is a field value and how many subscribers carry it.
type Bucket struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// None is returned by TopByFrequency when there is nothing to count.
var None = Bucket{Name: "none"}

func (b Bucket) IsNone() bool { return b == None }

// Selector yields the values a subscriber contributes to a frequency count.
type Selector func(model.Subscriber) []string

// FieldSelector yields one optional field of a subscriber.
type FieldSelector func(model.Subscriber) string

var (
	Departments Selector = func(s model.Subscriber) []string { return s.Departments }

	CurrentLocation Selector = func(s model.Subscriber) []string {
		return []string{orNotSpecified(s.CurrentLocation)}
	}

	PreferredLocation Selector = func(s model.Subscriber) []string {
		return []string{orNotSpecified(s.PreferredLocation)}
	}

	LinkedIn   FieldSelector = func(s model.Subscriber) string { return s.LinkedInURL }
	Motivation FieldSelector = func(s model.Subscriber) string { return s.Motivation }
)

func CountTotal(subs []model.Subscriber) int {
	return len(subs)
}

// CountRecent counts signups in the windowDays days ending on today, both ends
// inclusive. Malformed signup dates never count.
func CountRecent(subs []model.Subscriber, windowDays int, today model.Date) int {
	if windowDays <= 0 || !today.Valid() {
		return 0
	}
	from := today.AddDays(-(windowDays - 1))

	n := 0
	for _, s := range subs {
		if s.SignupDate.Valid() && s.SignupDate >= from && s.SignupDate <= today {
			n++
		}
	}
	return n
}

func CountWithField(subs []model.Subscriber, field FieldSelector) int {
	n := 0
	for _, s := range subs {
		if strings.TrimSpace(field(s)) != "" {
			n++
		}
	}
	return n
}

// TopByFrequency returns the most frequent value. A tie goes to the value
// seen first in input order.
func TopByFrequency(subs []model.Subscriber, sel Selector) Bucket {
	counts := make(map[string]int)
	var order []string
	for _, s := range subs {
		for _, v := range sel(s) {
			if _, seen := counts[v]; !seen {
				order = append(order, v)
			}
			counts[v]++
		}
	}

	top := None
	for _, v := range order {
		if counts[v] > top.Count {
			top = Bucket{Name: v, Count: counts[v]}
		}
	}
	return top
}

func orNotSpecified(v string) string {
	if strings.TrimSpace(v) == "" {
		return NotSpecified
	}
	return v
}
