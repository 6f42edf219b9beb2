package csvio

import "strings"

// Field-level helpers shared by the two dialects. The formats quote the
// name field with double quotes and "" escapes; every other field is
// plain text, so rows are assembled and torn apart by hand rather than
// through encoding/csv (which cannot skip bad rows individually, nor
// force-quote a single column on output).

const bom = "\uFEFF"

// quoteField wraps s in double quotes, escaping embedded quotes.
func quoteField(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// unquoteField strips surrounding quotes and unescapes "" pairs. Values
// without surrounding quotes come back unchanged.
func unquoteField(s string) string {
	if len(s) >= 2 && strings.HasPrefix(s, `"`) && strings.HasSuffix(s, `"`) {
		return strings.ReplaceAll(s[1:len(s)-1], `""`, `"`)
	}
	return s
}

// splitName splits a row into its leading name field and the remainder
// after the separating comma. A leading double quote starts a quoted
// field (embedded commas allowed, "" escapes); otherwise the field runs
// to the first comma. ok is false when no such split exists.
func splitName(line string) (name, rest string, ok bool) {
	if strings.HasPrefix(line, `"`) {
		end := -1
		for i := 1; i < len(line); i++ {
			if line[i] != '"' {
				continue
			}
			if i+1 < len(line) && line[i+1] == '"' {
				i++ // escaped quote
				continue
			}
			end = i
			break
		}
		if end < 0 {
			return "", "", false
		}
		name = strings.ReplaceAll(line[1:end], `""`, `"`)
		if end+1 < len(line) && line[end+1] == ',' {
			rest = line[end+2:]
		}
		return name, rest, true
	}

	comma := strings.IndexByte(line, ',')
	if comma < 0 {
		return "", "", false
	}
	return line[:comma], line[comma+1:], true
}

// leadingInt parses the integer prefix of s, ignoring whatever trails it
// ("10 min" parses as 10). The import formats are tolerant of such
// suffixes, so plain strconv.Atoi is too strict here.
func leadingInt(s string) (int, bool) {
	s = strings.TrimSpace(s)
	i := 0
	neg := false
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		neg = s[i] == '-'
		i++
	}
	start := i
	n := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		n = n*10 + int(s[i]-'0')
		i++
	}
	if i == start {
		return 0, false
	}
	if neg {
		n = -n
	}
	return n, true
}

// splitLines breaks raw CSV text into trimmed, non-empty lines, dropping
// a leading byte-order marker.
func splitLines(text string) []string {
	text = strings.TrimPrefix(text, bom)
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(strings.TrimSuffix(line, "\r"))
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// stripQuotes removes every double quote; used only for header matching.
func stripQuotes(s string) string {
	return strings.ReplaceAll(s, `"`, "")
}
