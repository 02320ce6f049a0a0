package utils

import (
	"encoding/base64"
	"strings"
	"unicode/utf8"

	"github.com/cockroachdb/errors"
)

// EncodeBase64 возвращает стандартное base64-представление (с выравниванием) переданных байт.
func EncodeBase64(data []byte) string {
	return base64.StdEncoding.EncodeToString(data)
}

// DecodeBase64 декодирует строку в стандартном алфавите base64 с выравниванием.
// Пробельные символы по краям отбрасываются, всё остальное должно быть корректным base64.
func DecodeBase64(s string) ([]byte, error) {
	data, err := base64.StdEncoding.DecodeString(strings.TrimSpace(s))
	if err != nil {
		return nil, errors.Wrap(err, "invalid base64 input")
	}
	return data, nil
}

// ValidUTF8 возвращает True, если data — корректный текст в UTF-8.
func ValidUTF8(data []byte) bool {
	return utf8.Valid(data)
}

// IsOctetStream проверяет, что Content-Type запроса обозначает сырые байты.
func IsOctetStream(contentType string) bool {
	mediaType, _, _ := strings.Cut(contentType, ";")
	return strings.EqualFold(strings.TrimSpace(mediaType), "application/octet-stream")
}
