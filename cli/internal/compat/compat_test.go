package compat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheck(t *testing.T) {
	tests := []struct {
		name      string
		server    string
		supported bool
	}{
		{"current release", "3.11.4", true},
		{"minimum", "3.6.0", true},
		{"pre-release of minimum", "3.6.0-rc.1", true},
		{"too old", "3.5.7", false},
		{"enterprise suffix", "3.10.2-enterprise", true},
		{"no version", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Check(tt.server)
			require.NoError(t, err)
			assert.Equal(t, tt.supported, result.Supported)
			if tt.supported {
				assert.Empty(t, result.Warning())
			} else {
				assert.Contains(t, result.Warning(), "older than 3.6.0")
			}
		})
	}
}

func TestCheckInvalidVersion(t *testing.T) {
	_, err := Check("not-a-version")
	assert.Error(t, err)
}
