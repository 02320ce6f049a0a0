package testing

import (
	"github.com/MaxRadzey/codecgateway/internal/codec"
)

// FakeCodec — управляемый кодек для тестов.
// Если ошибка не задана, данные проходят без изменений.
type FakeCodec struct {
	CodecName     string
	CompressErr   error
	DecompressErr error
	// Output, если задан, возвращается из Decompress вместо входных данных.
	Output []byte
}

var _ codec.Codec = (*FakeCodec)(nil)

// NewFailingCodec создаёт кодек, который всегда завершается ошибкой err.
func NewFailingCodec(name string, err error) *FakeCodec {
	return &FakeCodec{CodecName: name, CompressErr: err, DecompressErr: err}
}

func (f *FakeCodec) Name() string { return f.CodecName }

func (f *FakeCodec) ContentEncoding() string { return "x-" + f.CodecName }

func (f *FakeCodec) Compress(src []byte) ([]byte, error) {
	if f.CompressErr != nil {
		return nil, f.CompressErr
	}
	return append([]byte(nil), src...), nil
}

func (f *FakeCodec) Decompress(src []byte) ([]byte, error) {
	if f.DecompressErr != nil {
		return nil, f.DecompressErr
	}
	if f.Output != nil {
		return f.Output, nil
	}
	return append([]byte(nil), src...), nil
}
