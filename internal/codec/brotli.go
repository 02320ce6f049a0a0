package codec

import (
	"bytes"

	"github.com/andybalholm/brotli"
	"github.com/cockroachdb/errors"
)

const (
	// DefaultBrotliQuality совпадает с качеством по умолчанию у эталонного кодировщика brotli.
	DefaultBrotliQuality = brotli.BestCompression
	defaultBrotliLGWin   = 22
)

// BrotliCodec сжимает данные в формате brotli (RFC 7932).
type BrotliCodec struct {
	quality  int
	maxBytes int64
}

var _ Codec = (*BrotliCodec)(nil)

// NewBrotliCodec создаёт кодек с максимальным качеством сжатия.
func NewBrotliCodec() *BrotliCodec {
	return &BrotliCodec{quality: DefaultBrotliQuality}
}

// NewBrotliCodecWithQuality создаёт кодек с качеством от 0 до 11.
// maxBytes ограничивает размер распакованных данных, 0 — без ограничения.
func NewBrotliCodecWithQuality(quality int, maxBytes int64) (*BrotliCodec, error) {
	if quality < brotli.BestSpeed || quality > brotli.BestCompression {
		return nil, errors.Newf("invalid brotli quality %d", quality)
	}
	return &BrotliCodec{quality: quality, maxBytes: maxBytes}, nil
}

func (c *BrotliCodec) Name() string { return NameBrotli }

func (c *BrotliCodec) ContentEncoding() string { return "br" }

func (c *BrotliCodec) WithLimit(maxBytes int64) Codec {
	return &BrotliCodec{quality: c.quality, maxBytes: tighter(c.maxBytes, maxBytes)}
}

func (c *BrotliCodec) Compress(src []byte) ([]byte, error) {
	var buf bytes.Buffer

	writer := brotli.NewWriterOptions(&buf, brotli.WriterOptions{
		Quality: c.quality,
		LGWin:   defaultBrotliLGWin,
	})

	if _, err := writer.Write(src); err != nil {
		_ = writer.Close()
		return nil, errors.Wrap(err, "failed to compress brotli data")
	}

	if err := writer.Close(); err != nil {
		return nil, errors.Wrap(err, "failed to finalize brotli stream")
	}

	return buf.Bytes(), nil
}

func (c *BrotliCodec) Decompress(src []byte) ([]byte, error) {
	if len(src) == 0 {
		return nil, errors.New("brotli: empty input")
	}

	data, err := readAllLimited(brotli.NewReader(bytes.NewReader(src)), c.maxBytes)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read brotli data")
	}
	return data, nil
}
