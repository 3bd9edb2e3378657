package assets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultScene(t *testing.T) {
	s, err := DefaultScene()
	require.NoError(t, err)
	assert.NotNil(t, s.Camera("main"))
	assert.NotNil(t, s.Camera("photo"))
	assert.Len(t, s.Meshes, 4)
}
