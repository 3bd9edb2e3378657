package capture

import (
	"bytes"
	"image"
	"image/png"
	"sync"
)

// PNGEncoder encodes lossless PNG. Output is deterministic for a given image
// and compression level.
type PNGEncoder struct {
	Level png.CompressionLevel

	once sync.Once
	enc  *png.Encoder
}

// NewPNGEncoder returns an encoder with the default compression level.
func NewPNGEncoder() *PNGEncoder { return &PNGEncoder{} }

func (e *PNGEncoder) encoder() *png.Encoder {
	e.once.Do(func() {
		e.enc = &png.Encoder{CompressionLevel: e.Level, BufferPool: &bufferPool{}}
	})
	return e.enc
}

// Encode returns the PNG bytes of img. The slice is freshly allocated and
// owned by the caller.
func (e *PNGEncoder) Encode(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if b := img.Bounds(); b.Dx() > 0 && b.Dy() > 0 {
		buf.Grow(b.Dx() * b.Dy())
	}
	if err := e.encoder().Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

type bufferPool struct{ p sync.Pool }

func (b *bufferPool) Get() *png.EncoderBuffer {
	if v, ok := b.p.Get().(*png.EncoderBuffer); ok {
		return v
	}
	return nil
}

func (b *bufferPool) Put(buf *png.EncoderBuffer) { b.p.Put(buf) }
