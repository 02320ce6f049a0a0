package service

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// Kind — вид ошибки операции. По нему обработчик выбирает HTTP-статус.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindUnknownCodec
	KindDecode
	KindCodec
	KindEncoding
	KindLimit
)

var kindNames = map[Kind]string{
	KindInternal:     "internal_error",
	KindValidation:   "validation_error",
	KindUnknownCodec: "unknown_codec",
	KindDecode:       "decode_error",
	KindCodec:        "codec_error",
	KindEncoding:     "encoding_error",
	KindLimit:        "limit_error",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Error — ошибка операции сжатия или распаковки.
type Error struct {
	Kind  Kind
	Op    string
	Codec string
	Err   error
}

func (e *Error) Error() string {
	if e.Codec == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Codec, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind Kind, op, codecName string, err error) *Error {
	return &Error{Kind: kind, Op: op, Codec: codecName, Err: err}
}

// KindOf возвращает вид ошибки. Ошибки не из этого пакета считаются внутренними.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}
