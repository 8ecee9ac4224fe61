package record

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{
			name: "array passes through",
			in:   `[{"a":1}]`,
			want: `[{"a":1}]`,
		},
		{
			name: "array whitespace is compacted",
			in:   "[\n  {\"a\": 1},\n  2\n]",
			want: `[{"a":1},2]`,
		},
		{
			name: "empty array",
			in:   `[]`,
			want: `[]`,
		},
		{
			name: "non-empty object is wrapped",
			in:   `{"a":1}`,
			want: `[{"a":1}]`,
		},
		{
			name: "empty object normalizes to empty array",
			in:   `{}`,
			want: `[]`,
		},
		{
			name: "null normalizes to empty array",
			in:   `null`,
			want: `[]`,
		},
		{
			name: "string normalizes to empty array",
			in:   `"hello"`,
			want: `[]`,
		},
		{
			name: "number normalizes to empty array",
			in:   `42`,
			want: `[]`,
		},
		{
			name: "boolean normalizes to empty array",
			in:   `true`,
			want: `[]`,
		},
		{
			name: "large numbers keep fidelity",
			in:   `[9007199254740993, 0.1]`,
			want: `[9007199254740993,0.1]`,
		},
		{
			name:    "empty input is rejected",
			in:      ``,
			wantErr: true,
		},
		{
			name:    "malformed json is rejected",
			in:      `{"a":`,
			wantErr: true,
		},
		{
			name:    "trailing garbage is rejected",
			in:      `[1] [2]`,
			wantErr: true,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			got, err := Normalize([]byte(test.in))
			if test.wantErr {
				require.ErrorIs(t, err, ErrNotJSON)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, test.want, string(got))
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	t.Parallel()

	inputs := []string{`[{"a":1}]`, `{"a":1}`, `null`, `[]`}
	for _, in := range inputs {
		once, err := Normalize([]byte(in))
		require.NoError(t, err)
		twice, err := Normalize(once)
		require.NoError(t, err)
		assert.Equal(t, string(once), string(twice), "input %q", in)
	}
}
