package models

import "encoding/json"

// CompressRequest — тело запроса на сжатие. Data может быть любым JSON-значением.
type CompressRequest struct {
	Data json.RawMessage `json:"data"`
}

type CompressResponse struct {
	CompressedData string `json:"compressed_data"`
}

// DecompressRequest — тело запроса на распаковку.
// Data — строка base64 или массив байт (целые числа 0..255).
type DecompressRequest struct {
	Data json.RawMessage `json:"data"`
}

type DecompressResponse struct {
	DecompressedData string `json:"decompressed_data"`
}

// ErrorResponse — тело любого ответа с ошибкой.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

type CodecsResponse struct {
	Codecs []string `json:"codecs"`
}
