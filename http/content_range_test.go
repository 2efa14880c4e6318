package http //nolint:revive // intentional naming for domain clarity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseContentRange(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{"bytes 0-0/1234", 1234, false},
		{" bytes 10-19/20 ", 20, false},
		{"bytes */0", 0, false},
		{"bytes 0-0/*", 0, true},
		{"items 0-0/10", 0, true},
		{"bytes 0-0", 0, true},
		{"bytes 0-0/-5", 0, true},
	}
	for _, tt := range tests {
		got, err := parseContentRange(tt.in)
		if tt.wantErr {
			require.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}
