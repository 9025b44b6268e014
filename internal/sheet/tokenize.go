package sheet

import "strings"

// Tokenize splits a single CSV line into trimmed fields. Commas inside double
// quotes are kept as data and a doubled quote inside a quoted section yields a
// literal quote. The final field is always emitted, even when empty.
func Tokenize(line string) []string {
	var (
		fields   []string
		current  strings.Builder
		inQuotes bool
	)

	for i := 0; i < len(line); i++ {
		ch := line[i]
		switch {
		case ch == '"':
			if inQuotes && i+1 < len(line) && line[i+1] == '"' {
				current.WriteByte('"')
				i++
				continue
			}
			inQuotes = !inQuotes
		case ch == ',' && !inQuotes:
			fields = append(fields, strings.TrimSpace(current.String()))
			current.Reset()
		default:
			current.WriteByte(ch)
		}
	}
	fields = append(fields, strings.TrimSpace(current.String()))

	return fields
}

// cleanCell strips one layer of surrounding quotes, unescapes doubled quotes
// and trims the result.
func cleanCell(value string) string {
	if len(value) >= 2 && value[0] == '"' && value[len(value)-1] == '"' {
		value = value[1 : len(value)-1]
	}
	value = strings.ReplaceAll(value, `""`, `"`)
	return strings.TrimSpace(value)
}
