package units

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSize(t *testing.T) {
	testCases := []struct {
		name      string
		input     string
		expected  int64
		expectErr bool
	}{
		{name: "gigabytes", input: "10 GB", expected: 10_000_000_000},
		{name: "no space", input: "10GB", expected: 10_000_000_000},
		{name: "bytes", input: "512 B", expected: 512},
		{name: "kibibytes", input: "2 KiB", expected: 2048},
		{name: "lower case unit", input: "1 mib", expected: 1 << 20},
		{name: "fraction", input: "1.5 kB", expected: 1500},
		{name: "fractional bytes truncate", input: "1.5 B", expected: 1},
		{name: "truncation never rounds up", input: "1.9 B", expected: 1},
		{name: "tebibytes", input: "1 TiB", expected: 1 << 40},
		{name: "surrounding space", input: "  3 MB ", expected: 3_000_000},
		{name: "not a size", input: "abc", expectErr: true},
		{name: "missing unit", input: "1024", expectErr: true},
		{name: "unknown unit", input: "10 PB", expectErr: true},
		{name: "empty", input: "", expectErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseSize(tc.input)

			if tc.expectErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, got)
		})
	}
}
