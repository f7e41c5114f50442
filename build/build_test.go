package build

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVersion(t *testing.T) {
	assert.True(t, IsDev())
	assert.Equal(t, "0.0.0-dev", Version())
	assert.Equal(t, "apoxy-static@0.0.0-dev", Release())

	BuildVersion, CommitHash, BuildDate = "1.2.0", "abc1234", "2026-10-01"
	t.Cleanup(func() {
		BuildVersion, CommitHash, BuildDate = devBuildVersion, "n/a", "n/a"
	})

	assert.False(t, IsDev())
	assert.Equal(t, "1.2.0 (abc1234), built 2026-10-01", Version())
	assert.Equal(t, "apoxy-static@1.2.0+abc1234", Release())
}
