package service

import (
	"bytes"
	"time"

	"github.com/MaxRadzey/codecgateway/internal/codec"
	"github.com/MaxRadzey/codecgateway/internal/metrics"
	"github.com/MaxRadzey/codecgateway/internal/render"
	"github.com/MaxRadzey/codecgateway/internal/utils"
	"github.com/cockroachdb/errors"
	jsoniter "github.com/json-iterator/go"
)

var (
	ErrDataRequired = errors.New("field 'data' is required")
	ErrNotUTF8      = errors.New("decompressed data is not valid UTF-8")
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type Service struct {
	codecs *codec.Registry
	mode   render.Mode
}

func NewService(codecs *codec.Registry, mode render.Mode) *Service {
	return &Service{
		codecs: codecs,
		mode:   mode,
	}
}

// Codecs возвращает имена доступных кодеков.
func (s *Service) Codecs() []string {
	return s.codecs.Names()
}

// Compress строит каноническое представление data и сжимает его кодеком codecName.
func (s *Service) Compress(codecName string, data []byte) ([]byte, error) {
	const op = metrics.OperationCompress

	c, err := s.lookup(op, codecName)
	if err != nil {
		return nil, err
	}

	if isMissing(data) {
		return nil, s.fail(op, codecName, KindValidation, ErrDataRequired, len(data))
	}

	text, err := render.Render(s.mode, data)
	if err != nil {
		return nil, s.fail(op, codecName, KindValidation, err, len(data))
	}

	start := time.Now()
	compressed, err := c.Compress(text)
	if err != nil {
		return nil, s.fail(op, codecName, KindInternal, err, len(text))
	}
	metrics.Observe(codecName, op, metrics.OutcomeOK, len(text), len(compressed), time.Since(start))

	return compressed, nil
}

// Decompress распаковывает сырые байты и возвращает их как текст UTF-8.
func (s *Service) Decompress(codecName string, payload []byte) (string, error) {
	const op = metrics.OperationDecompress

	c, err := s.lookup(op, codecName)
	if err != nil {
		return "", err
	}

	start := time.Now()
	plain, err := c.Decompress(payload)
	if err != nil {
		kind := KindCodec
		if errors.Is(err, codec.ErrTooLarge) {
			kind = KindLimit
		}
		return "", s.fail(op, codecName, kind, err, len(payload))
	}

	if !utils.ValidUTF8(plain) {
		return "", s.fail(op, codecName, KindEncoding, ErrNotUTF8, len(payload))
	}
	metrics.Observe(codecName, op, metrics.OutcomeOK, len(payload), len(plain), time.Since(start))

	return string(plain), nil
}

// DecompressBase64 декодирует base64-строку и распаковывает результат.
func (s *Service) DecompressBase64(codecName, encoded string) (string, error) {
	const op = metrics.OperationDecompress

	if _, err := s.lookup(op, codecName); err != nil {
		return "", err
	}

	payload, err := utils.DecodeBase64(encoded)
	if err != nil {
		return "", s.fail(op, codecName, KindDecode, err, len(encoded))
	}
	return s.Decompress(codecName, payload)
}

// DecompressJSON принимает значение поля data: строку base64 или массив байт.
func (s *Service) DecompressJSON(codecName string, data []byte) (string, error) {
	const op = metrics.OperationDecompress

	if _, err := s.lookup(op, codecName); err != nil {
		return "", err
	}

	if isMissing(data) {
		return "", s.fail(op, codecName, KindValidation, ErrDataRequired, len(data))
	}

	switch json.Get(data).ValueType() {
	case jsoniter.StringValue:
		var encoded string
		if err := json.Unmarshal(data, &encoded); err != nil {
			return "", s.fail(op, codecName, KindValidation, err, len(data))
		}
		return s.DecompressBase64(codecName, encoded)
	case jsoniter.ArrayValue:
		payload, err := decodeByteArray(data)
		if err != nil {
			return "", s.fail(op, codecName, KindValidation, err, len(data))
		}
		return s.Decompress(codecName, payload)
	default:
		return "", s.fail(op, codecName, KindValidation,
			errors.New("field 'data' must be a base64 string or an array of bytes"), len(data))
	}
}

// DecompressBase64JSON принимает только строку base64 в поле data.
func (s *Service) DecompressBase64JSON(codecName string, data []byte) (string, error) {
	const op = metrics.OperationDecompress

	if _, err := s.lookup(op, codecName); err != nil {
		return "", err
	}

	if isMissing(data) {
		return "", s.fail(op, codecName, KindValidation, ErrDataRequired, len(data))
	}

	var encoded string
	if err := json.Unmarshal(data, &encoded); err != nil {
		return "", s.fail(op, codecName, KindValidation,
			errors.New("field 'data' must be a base64 string"), len(data))
	}
	return s.DecompressBase64(codecName, encoded)
}

func (s *Service) lookup(op, codecName string) (codec.Codec, error) {
	c, ok := s.codecs.Lookup(codecName)
	if !ok {
		return nil, newError(KindUnknownCodec, op, codecName, errors.Newf("unsupported codec %q", codecName))
	}
	return c, nil
}

func (s *Service) fail(op, codecName string, kind Kind, err error, in int) error {
	metrics.Observe(codecName, op, kind.String(), in, 0, 0)
	return newError(kind, op, codecName, err)
}

func decodeByteArray(data []byte) ([]byte, error) {
	var values []int
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, errors.Wrap(err, "field 'data' must contain integers")
	}

	payload := make([]byte, len(values))
	for i, v := range values {
		if v < 0 || v > 255 {
			return nil, errors.Newf("byte at index %d is out of range: %d", i, v)
		}
		payload[i] = byte(v)
	}
	return payload, nil
}

func isMissing(data []byte) bool {
	trimmed := bytes.TrimSpace(data)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}
