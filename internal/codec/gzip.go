package codec

import (
	"bytes"

	"github.com/cockroachdb/errors"
	"github.com/klauspost/compress/gzip"
)

// GzipCodec сжимает данные в формате gzip (RFC 1952).
type GzipCodec struct {
	level    int
	maxBytes int64
}

// Проверка на этапе компиляции.
var _ Codec = (*GzipCodec)(nil)

// NewGzipCodec создаёт кодек с уровнем сжатия по умолчанию и без лимита на распаковку.
func NewGzipCodec() *GzipCodec {
	return &GzipCodec{level: gzip.DefaultCompression}
}

// NewGzipCodecWithLevel создаёт кодек с указанным уровнем сжатия.
// Допустимые значения — от gzip.HuffmanOnly до gzip.BestCompression.
// maxBytes ограничивает размер распакованных данных, 0 — без ограничения.
func NewGzipCodecWithLevel(level int, maxBytes int64) (*GzipCodec, error) {
	if level < gzip.HuffmanOnly || level > gzip.BestCompression {
		return nil, errors.Newf("invalid gzip level %d", level)
	}
	return &GzipCodec{level: level, maxBytes: maxBytes}, nil
}

func (c *GzipCodec) Name() string { return NameGzip }

func (c *GzipCodec) ContentEncoding() string { return "gzip" }

func (c *GzipCodec) WithLimit(maxBytes int64) Codec {
	return &GzipCodec{level: c.level, maxBytes: tighter(c.maxBytes, maxBytes)}
}

// Compress сжимает src в один gzip-член.
func (c *GzipCodec) Compress(src []byte) ([]byte, error) {
	var buf bytes.Buffer

	writer, err := gzip.NewWriterLevel(&buf, c.level)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create gzip writer")
	}

	if _, err := writer.Write(src); err != nil {
		_ = writer.Close()
		return nil, errors.Wrap(err, "failed to write gzip data")
	}

	if err := writer.Close(); err != nil {
		return nil, errors.Wrap(err, "failed to close gzip writer")
	}

	return buf.Bytes(), nil
}

// Decompress распаковывает gzip-поток, в том числе из нескольких членов подряд.
func (c *GzipCodec) Decompress(src []byte) ([]byte, error) {
	reader, err := gzip.NewReader(bytes.NewReader(src))
	if err != nil {
		return nil, errors.Wrap(err, "invalid gzip header")
	}
	defer reader.Close()

	data, err := readAllLimited(reader, c.maxBytes)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read gzip data")
	}
	return data, nil
}
