package argv

import "strings"

// Tokenize splits s on whitespace. Double-quoted segments may embed spaces;
// the quote characters themselves are dropped. There is no escape character.
// An unterminated quote extends to the end of input and "" produces an empty
// token.
func Tokenize(s string) []string {
	var (
		out     []string
		cur     strings.Builder
		inQuote bool
		started bool
	)
	for _, r := range s {
		switch {
		case r == '"':
			inQuote = !inQuote
			started = true
		case !inQuote && isSpace(r):
			if started {
				out = append(out, cur.String())
				cur.Reset()
				started = false
			}
		default:
			cur.WriteRune(r)
			started = true
		}
	}
	if started {
		out = append(out, cur.String())
	}
	return out
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r' || r == '\f' || r == '\v'
}

// SplitAssignments turns every "-name=value" token into "-name", "value".
// Tokens that do not start with '-' or carry no '=' pass through.
func SplitAssignments(tokens []string) []string {
	out := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if strings.HasPrefix(tok, "-") {
			if name, value, ok := strings.Cut(tok, "="); ok && len(name) > 1 {
				out = append(out, name, value)
				continue
			}
		}
		out = append(out, tok)
	}
	return out
}
