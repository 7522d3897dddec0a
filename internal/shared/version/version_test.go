package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestString(t *testing.T) {
	tests := []struct {
		current     string
		want        string
		wantRelease bool
	}{
		{"dev", "dev", false},
		{"1.4", "v1.4.0", true},
		{"v2.0.1", "v2.0.1", true},
		{" 3.1.0 ", "v3.1.0", true},
	}

	orig := Current
	t.Cleanup(func() { Current = orig })

	for _, tt := range tests {
		Current = tt.current
		assert.Equal(t, tt.want, String(), tt.current)
		assert.Equal(t, tt.wantRelease, IsRelease(), tt.current)
	}
}
