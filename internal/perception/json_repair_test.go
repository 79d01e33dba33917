package perception

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseJSONResponse_Table(t *testing.T) {
	t.Parallel()

	type payload struct {
		Status string   `json:"status"`
		Items  []string `json:"items"`
	}

	cases := []struct {
		name    string
		raw     string
		want    payload
		wantErr bool
	}{
		{
			name: "clean_json",
			raw:  `{"status":"ok","items":["a","b"]}`,
			want: payload{Status: "ok", Items: []string{"a", "b"}},
		},
		{
			name: "json_fence",
			raw:  "```json\n{\"status\":\"ok\",\"items\":[]}\n```",
			want: payload{Status: "ok", Items: []string{}},
		},
		{
			name: "bare_fence",
			raw:  "```\n{\"status\":\"ok\"}\n```",
			want: payload{Status: "ok"},
		},
		{
			name: "leading_prose",
			raw:  "Sure! Here is the analysis you asked for:\n{\"status\":\"ok\"}\nLet me know if you need more.",
			want: payload{Status: "ok"},
		},
		{
			name: "trailing_comma_object",
			raw:  `{"status":"ok","items":["a",],}`,
			want: payload{Status: "ok", Items: []string{"a"}},
		},
		{
			name: "brace_inside_string",
			raw:  `preamble {"status":"braces } inside { strings","items":[]} postamble`,
			want: payload{Status: "braces } inside { strings", Items: []string{}},
		},
		{
			name: "truncated_object",
			raw:  `{"status":"ok","items":["a"],"nested":{"k":1`,
			want: payload{Status: "ok", Items: []string{"a"}},
		},
		{
			name:    "no_json_at_all",
			raw:     "I could not identify any foods in this image.",
			wantErr: true,
		},
		{
			name:    "empty_response",
			raw:     "",
			wantErr: true,
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			var got payload
			err := ParseJSONResponse(tc.raw, &got)
			if tc.wantErr {
				require.Error(t, err)
				var parseErr *ParseError
				assert.True(t, errors.As(err, &parseErr))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestFindJSONCandidates_MultipleObjects(t *testing.T) {
	t.Parallel()

	candidates := findJSONCandidates(`first {"a":1} then {"b":2}`)
	require.Len(t, candidates, 2)
	assert.Equal(t, `{"a":1}`, candidates[0])
	assert.Equal(t, `{"b":2}`, candidates[1])
}

func TestParseJSONResponse_FirstValidCandidateWins(t *testing.T) {
	t.Parallel()

	var got map[string]int
	err := ParseJSONResponse(`{"a":1} noise {"a":2}`, &got)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"a": 1}, got)
}
