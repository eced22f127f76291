package render

import "strings"

var keywords = map[string]bool{
	"and": true, "or": true, "not": true, "is": true, "null": true,
	"like": true, "in": true, "between": true, "true": true, "false": true,
	"exists": true, "escape": true, "case": true, "when": true, "then": true,
	"else": true, "end": true,
}

// Qualify prefixes the bare column names of a SQL filter with the alias.
// Keywords, quoted literals and identifiers, function names and already
// qualified names are left alone.
func Qualify(filter, alias string) string {
	if filter == "" {
		return ""
	}
	var sb strings.Builder
	for i := 0; i < len(filter); {
		c := filter[i]
		switch {
		case c == '\'' || c == '"':
			end := quotedEnd(filter, i)
			sb.WriteString(filter[i:end])
			i = end
		case isIdentStart(c):
			j := i + 1
			for j < len(filter) && isIdentPart(filter[j]) {
				j++
			}
			word := filter[i:j]
			qualified := i > 0 && filter[i-1] == '.'
			call := j < len(filter) && (filter[j] == '(' || filter[j] == '.')
			if !qualified && !call && !keywords[strings.ToLower(word)] {
				sb.WriteString(alias)
				sb.WriteByte('.')
			}
			sb.WriteString(word)
			i = j
		case c >= '0' && c <= '9':
			j := i + 1
			for j < len(filter) && isIdentPart(filter[j]) {
				j++
			}
			sb.WriteString(filter[i:j])
			i = j
		default:
			sb.WriteByte(c)
			i++
		}
	}
	return sb.String()
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}

// quotedEnd returns the index just past the quoted span starting at i.
// A doubled quote character escapes itself. An unterminated span runs to
// the end of s.
func quotedEnd(s string, i int) int {
	q := s[i]
	for j := i + 1; j < len(s); j++ {
		if s[j] != q {
			continue
		}
		if j+1 < len(s) && s[j+1] == q {
			j++
			continue
		}
		return j + 1
	}
	return len(s)
}
