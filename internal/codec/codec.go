// Package codec содержит реализации кодеков сжатия, которыми пользуется шлюз.
package codec

import (
	"io"

	"github.com/cockroachdb/errors"
)

const (
	// NameGzip — имя кодека gzip в путях маршрутов.
	NameGzip = "gzip"
	// NameBrotli — имя кодека brotli в путях маршрутов.
	NameBrotli = "brotli"
)

// ErrTooLarge возвращается, когда распакованные данные превышают заданный лимит.
var ErrTooLarge = errors.New("decompressed data exceeds size limit")

// Codec описывает пару функций сжатия/распаковки для одного формата.
//
// Реализации не хранят состояния между вызовами: каждый вызов создаёт свой
// writer/reader, поэтому один экземпляр можно использовать из разных горутин.
type Codec interface {
	// Name возвращает имя кодека, под которым он зарегистрирован в маршрутах.
	Name() string

	// ContentEncoding возвращает значение HTTP-заголовка Content-Encoding.
	ContentEncoding() string

	// Compress сжимает src целиком и возвращает готовый поток.
	Compress(src []byte) ([]byte, error)

	// Decompress распаковывает src, который должен быть результатом Compress
	// (или любого совместимого кодировщика этого формата).
	Decompress(src []byte) ([]byte, error)
}

// Limiter реализуют кодеки, которые умеют ограничивать размер распакованных данных.
type Limiter interface {
	// WithLimit возвращает копию кодека с лимитом maxBytes на распаковку.
	// Более строгий из старого и нового лимитов сохраняется.
	WithLimit(maxBytes int64) Codec
}

// Limit возвращает c с лимитом maxBytes, если кодек это поддерживает.
func Limit(c Codec, maxBytes int64) Codec {
	if l, ok := c.(Limiter); ok && maxBytes > 0 {
		return l.WithLimit(maxBytes)
	}
	return c
}

func tighter(current, limit int64) int64 {
	if current <= 0 || (limit > 0 && limit < current) {
		return limit
	}
	return current
}

// readAllLimited читает r до конца, но не больше limit байт.
// limit <= 0 означает отсутствие ограничения.
func readAllLimited(r io.Reader, limit int64) ([]byte, error) {
	if limit <= 0 {
		return io.ReadAll(r)
	}

	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, errors.Wrapf(ErrTooLarge, "limit is %d bytes", limit)
	}
	return data, nil
}
