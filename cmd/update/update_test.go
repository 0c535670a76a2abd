package update

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShouldUpdate(t *testing.T) {
	tests := []struct {
		name    string
		current string
		latest  string
		want    bool
	}{
		{name: "newer available", current: "v1.2.3", latest: "v1.2.4", want: true},
		{name: "already latest", current: "v1.2.3", latest: "v1.2.3", want: false},
		{name: "running ahead of release", current: "v1.3.0", latest: "v1.2.9", want: false},
		{name: "version prefix stripped", current: "version v1.0.0", latest: "v1.0.1", want: true},
		{name: "dev build always updates", current: "development", latest: "v1.0.0", want: true},
		{name: "commit hash always updates", current: "build c8ab91c", latest: "v1.0.0", want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, shouldUpdate(tt.current, tt.latest))
		})
	}
}

func TestAssetKey(t *testing.T) {
	key, err := assetKey()
	assert.NoError(t, err)
	assert.Contains(t, key, "_")
}

func TestSafeOutPath_RejectsTraversal(t *testing.T) {
	dir := t.TempDir()

	_, err := safeOutPath(dir, "../escape")
	assert.ErrorContains(t, err, "forbidden path elements")

	_, err = safeOutPath(dir, "/abs/path")
	assert.ErrorContains(t, err, "forbidden path elements")

	out, err := safeOutPath(dir, "convey")
	assert.NoError(t, err)
	assert.Contains(t, out, dir)
}
