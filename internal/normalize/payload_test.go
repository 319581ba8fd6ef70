package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnwrap(t *testing.T) {
	tests := []struct {
		name     string
		raw      any
		expected map[string]any
	}{
		{
			name:     "plain object passes through",
			raw:      map[string]any{"surveyId": "s1"},
			expected: map[string]any{"surveyId": "s1"},
		},
		{
			name:     "encoded object",
			raw:      `{"surveyId":"s1"}`,
			expected: map[string]any{"surveyId": "s1"},
		},
		{
			name:     "double-encoded object",
			raw:      `"{\"surveyId\":\"s1\"}"`,
			expected: map[string]any{"surveyId": "s1"},
		},
		{
			name:     "byte slice payload",
			raw:      []byte(`{"surveyId":"s2"}`),
			expected: map[string]any{"surveyId": "s2"},
		},
		{
			name:     "one level of data envelope",
			raw:      map[string]any{"data": map[string]any{"surveyId": "s1", "answers": map[string]any{"q1": "yes"}}},
			expected: map[string]any{"surveyId": "s1", "answers": map[string]any{"q1": "yes"}},
		},
		{
			name:     "encoded data envelope",
			raw:      map[string]any{"data": `{"surveyId":"s1"}`},
			expected: map[string]any{"surveyId": "s1"},
		},
		{
			name: "nested envelope unwraps one level only",
			raw:  map[string]any{"data": map[string]any{"data": map[string]any{"surveyId": "s1"}}},
			expected: map[string]any{
				"data": map[string]any{"surveyId": "s1"},
			},
		},
		{
			name:     "non-object data property keeps the outer object",
			raw:      map[string]any{"data": "not json", "surveyId": "s3"},
			expected: map[string]any{"data": "not json", "surveyId": "s3"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Unwrap(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestUnwrap_Malformed(t *testing.T) {
	tests := []struct {
		name string
		raw  any
	}{
		{"invalid json", "{not valid"},
		{"scalar payload", "42"},
		{"array payload", `[1,2,3]`},
		{"unsupported type", 12},
		{"double-encoded garbage", `"{broken"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Unwrap(tt.raw)
			assert.ErrorIs(t, err, ErrMalformedPayload)
		})
	}
}

func TestUnwrap_Idempotent(t *testing.T) {
	payload := map[string]any{"surveyId": "s1", "answers": map[string]any{"q1": "a"}}

	once, err := Unwrap(payload)
	require.NoError(t, err)
	twice, err := Unwrap(once)
	require.NoError(t, err)
	assert.Equal(t, once, twice)
}
