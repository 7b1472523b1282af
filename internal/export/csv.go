// Package export renders directory snapshots as CSV.
package export

import (
	"encoding/csv"
	"strings"
)

// ListSeparator joins list-valued fields into a single cell.
const ListSeparator = "; "

func JoinList(values []string) string {
	return strings.Join(values, ListSeparator)
}

// ToCSV renders header and rows as comma-separated records joined by "\n",
// with no trailing newline. Fields holding a comma, quote, line break or
// leading space are quoted per RFC 4180; anything else is written verbatim.
func ToCSV(header []string, rows [][]string) string {
	var b strings.Builder
	w := csv.NewWriter(&b)

	// Writes into a strings.Builder cannot fail.
	_ = w.Write(header)
	_ = w.WriteAll(rows)

	return strings.TrimSuffix(b.String(), "\n")
}

// Filename builds a download name such as "Tech_Innovations_Inc._subscribers.csv".
func Filename(name, kind string) string {
	base := strings.Join(strings.Fields(name), "_")
	if base == "" {
		return kind + ".csv"
	}
	return base + "_" + kind + ".csv"
}
