package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLine(t *testing.T) {
	tests := []struct {
		name     string
		line     string
		expected []string
	}{
		{
			name:     "plain fields",
			line:     "a,b,c",
			expected: []string{"a", "b", "c"},
		},
		{
			name:     "quoted field with comma",
			line:     `a,"b,c",d`,
			expected: []string{"a", "b,c", "d"},
		},
		{
			name:     "doubled quote inside quoted field",
			line:     `a,"d""e"`,
			expected: []string{"a", `d"e`},
		},
		{
			name:     "empty fields",
			line:     "a,,c,",
			expected: []string{"a", "", "c", ""},
		},
		{
			name:     "quoted field with newline",
			line:     "a,\"line1\nline2\",c",
			expected: []string{"a", "line1\nline2", "c"},
		},
		{
			name:     "single field",
			line:     "only",
			expected: []string{"only"},
		},
		{
			name:     "json payload field",
			line:     `r1,"{""surveyId"":""s1"",""answers"":{""q1"":""yes""}}"`,
			expected: []string{"r1", `{"surveyId":"s1","answers":{"q1":"yes"}}`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseLine(tt.line))
		})
	}
}

func TestSplitRecords(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected []string
	}{
		{
			name:     "simple lines",
			text:     "h1,h2\nr1,r2\n",
			expected: []string{"h1,h2", "r1,r2"},
		},
		{
			name:     "crlf line endings",
			text:     "h1,h2\r\nr1,r2\r\n",
			expected: []string{"h1,h2", "r1,r2"},
		},
		{
			name:     "newline inside quoted field stays in the record",
			text:     "id,data\nr1,\"line1\nline2\"\n",
			expected: []string{"id,data", "r1,\"line1\nline2\""},
		},
		{
			name:     "blank records dropped",
			text:     "h1\n\n\nr1\n",
			expected: []string{"h1", "r1"},
		},
		{
			name:     "no trailing newline",
			text:     "h1\nr1",
			expected: []string{"h1", "r1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SplitRecords(tt.text))
		})
	}
}

func TestWriteLine(t *testing.T) {
	tests := []struct {
		name     string
		fields   []string
		expected string
	}{
		{
			name:     "plain fields",
			fields:   []string{"a", "b"},
			expected: "a,b",
		},
		{
			name:     "comma forces quoting",
			fields:   []string{"a", "b,c"},
			expected: `a,"b,c"`,
		},
		{
			name:     "quotes are doubled",
			fields:   []string{`say "hi"`},
			expected: `"say ""hi"""`,
		},
		{
			name:     "newline forces quoting",
			fields:   []string{"line1\nline2"},
			expected: "\"line1\nline2\"",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, WriteLine(tt.fields))
		})
	}
}

func TestWriteLineParseLineRoundTrip(t *testing.T) {
	fields := []string{"r1", `{"surveyId":"s1","answers":{"q1":"a, b"}}`, "multi\nline", ""}
	assert.Equal(t, fields, ParseLine(WriteLine(fields)))
}
