package rdbms

import (
	"strings"
)

// SplitStatements splits a SQL script on semicolons that are outside quotes and comments.
// Empty statements are dropped and the trailing semicolon is removed.
func SplitStatements(script string) []string {
	var (
		out     []string
		b       strings.Builder
		inQuote rune
	)
	runes := []rune(script)
	flush := func() {
		if s := strings.TrimSpace(b.String()); s != "" {
			out = append(out, s)
		}
		b.Reset()
	}
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch {
		case inQuote != 0:
			if r == inQuote {
				inQuote = 0
			}
			b.WriteRune(r)
		case r == '\'' || r == '"':
			inQuote = r
			b.WriteRune(r)
		case r == '-' && i+1 < len(runes) && runes[i+1] == '-':
			for i < len(runes) && runes[i] != '\n' { // skip to end of line
				i++
			}
			b.WriteRune('\n')
		case r == '/' && i+1 < len(runes) && runes[i+1] == '*':
			i += 2
			for i+1 < len(runes) && !(runes[i] == '*' && runes[i+1] == '/') {
				i++
			}
			i++ // consume the closing slash
			b.WriteRune(' ')
		case r == ';':
			flush()
		default:
			b.WriteRune(r)
		}
	}
	flush()
	return out
}
