package encoder

import (
	"bytes"
	"image"
	"image/png"
	"sync"
)

// PNGEncoder writes the alpha-preserving container. It is lossless, so
// the quality argument is ignored. The zero value uses BestCompression.
type PNGEncoder struct {
	Level png.CompressionLevel

	once sync.Once
	enc  *png.Encoder
}

func (e *PNGEncoder) Format() string    { return "png" }
func (e *PNGEncoder) MIME() string      { return "image/png" }
func (e *PNGEncoder) Available() bool   { return true }

func (e *PNGEncoder) Encode(img image.Image, _ int) ([]byte, error) {
	if pixels(img) == 0 {
		return nil, errEmptyImage
	}
	e.once.Do(func() {
		level := e.Level
		if level == png.DefaultCompression {
			level = png.BestCompression
		}
		e.enc = &png.Encoder{CompressionLevel: level, BufferPool: &bufferPool{}}
	})

	var buf bytes.Buffer
	if err := e.enc.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// bufferPool lets concurrent encodes reuse the zlib and row buffers.
type bufferPool struct{ p sync.Pool }

func (b *bufferPool) Get() *png.EncoderBuffer {
	if v, ok := b.p.Get().(*png.EncoderBuffer); ok {
		return v
	}
	return nil
}

func (b *bufferPool) Put(buf *png.EncoderBuffer) { b.p.Put(buf) }
