package model

import (
	"image"
	"sync"
)

// PreviewModel holds the latest captured color/depth pair until the preview
// presenter picks it up. The zero value is usable.
type PreviewModel struct {
	mu      sync.Mutex
	color   image.Image
	depth   image.Image
	version uint64
}

func NewPreviewModel() *PreviewModel { return &PreviewModel{} }

// Set stores a new pair.
func (m *PreviewModel) Set(color, depth image.Image) {
	if m == nil {
		return
	}
	m.mu.Lock()
	m.color, m.depth = color, depth
	m.version++
	m.mu.Unlock()
}

// Latest returns the stored pair and its version. Version 0 means empty.
func (m *PreviewModel) Latest() (color, depth image.Image, version uint64) {
	if m == nil {
		return nil, nil, 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.color, m.depth, m.version
}
