// Package shellquote quotes strings for inclusion in remote shell commands.
// Document identifiers are UUIDs, but remote paths built from them still get
// quoted so a future caller can't smuggle shell syntax through.
package shellquote

import "strings"

// Quote wraps s in single quotes, escaping any internal single quotes.
func Quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
