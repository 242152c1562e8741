// Package textlist converts between comma-separated form input and lists.
package textlist

import "strings"

// Split turns "peanuts, shellfish" into ["peanuts", "shellfish"]. Blank
// entries are dropped and order is kept. Empty input yields an empty list.
func Split(s string) []string {
	out := []string{}
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// SplitOrNil is Split that reports "nothing entered" as nil.
func SplitOrNil(s string) []string {
	out := Split(s)
	if len(out) == 0 {
		return nil
	}
	return out
}

// Join renders a list back into its editable text form.
func Join(items []string) string {
	return strings.Join(items, ", ")
}
