package normalize

import "strings"

// ParseLine splits one CSV record into its fields, honoring RFC 4180
// quoting: commas and newlines inside quotes belong to the field, and a
// doubled quote inside a quoted field emits a literal quote. The same
// parser handles the header row and every data row.
func ParseLine(line string) []string {
	fields := make([]string, 0, 8)
	var buf strings.Builder
	inQuotes := false

	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case c == '"':
			if inQuotes && i+1 < len(line) && line[i+1] == '"' {
				buf.WriteByte('"')
				i++
			} else {
				inQuotes = !inQuotes
			}
		case c == ',' && !inQuotes:
			fields = append(fields, buf.String())
			buf.Reset()
		default:
			buf.WriteByte(c)
		}
	}
	// The final field has no trailing terminator.
	return append(fields, buf.String())
}

// SplitRecords breaks a CSV document into records at newlines that are not
// inside a quoted field. Trailing carriage returns are stripped and a final
// empty record (from a trailing newline) is dropped.
func SplitRecords(text string) []string {
	var records []string
	var buf strings.Builder
	inQuotes := false

	flush := func() {
		rec := strings.TrimSuffix(buf.String(), "\r")
		buf.Reset()
		if strings.TrimSpace(rec) != "" {
			records = append(records, rec)
		}
	}

	for i := 0; i < len(text); i++ {
		c := text[i]
		switch {
		case c == '"':
			// Track quoting only; ParseLine handles escaped quotes.
			if inQuotes && i+1 < len(text) && text[i+1] == '"' {
				buf.WriteByte(c)
				buf.WriteByte('"')
				i++
				continue
			}
			inQuotes = !inQuotes
			buf.WriteByte(c)
		case c == '\n' && !inQuotes:
			flush()
		default:
			buf.WriteByte(c)
		}
	}
	flush()
	return records
}

// WriteLine serializes fields into one RFC 4180 record. Fields containing a
// comma, quote or newline are quoted, with inner quotes doubled. It is the
// inverse of ParseLine.
func WriteLine(fields []string) string {
	quoted := make([]string, len(fields))
	for i, f := range fields {
		if strings.ContainsAny(f, ",\"\n\r") {
			quoted[i] = `"` + strings.ReplaceAll(f, `"`, `""`) + `"`
		} else {
			quoted[i] = f
		}
	}
	return strings.Join(quoted, ",")
}
