package middleware

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/MaxRadzey/codecgateway/internal/codec"
	"github.com/MaxRadzey/codecgateway/internal/logger"
	"github.com/MaxRadzey/codecgateway/internal/models"
	"github.com/cockroachdb/errors"
	"github.com/gin-gonic/gin"
	"github.com/klauspost/compress/gzip"
	"go.uber.org/zap"
)

type compressWriter struct {
	gin.ResponseWriter
	Writer *gzip.Writer
}

func (c *compressWriter) Write(data []byte) (int, error) {
	return c.Writer.Write(data)
}

func (c *compressWriter) Close() error {
	return c.Writer.Close()
}

func (c *compressWriter) WriteString(s string) (int, error) {
	return c.Writer.Write([]byte(s))
}

// ContentEncoding обрабатывает транспортное сжатие HTTP-сообщений.
//
// Тело запроса с Content-Encoding распаковывается подходящим кодеком из codecs
// (gzip или br). Ответ сжимается gzip, если клиент указал его в Accept-Encoding.
// Это не влияет на выбор кодека операции, который задаётся маршрутом.
// maxBody ограничивает размер тела уже после распаковки, 0 — без ограничения.
func ContentEncoding(codecs *codec.Registry, maxBody int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		contentEncoding := strings.ToLower(strings.TrimSpace(c.GetHeader("Content-Encoding")))
		if contentEncoding != "" && contentEncoding != "identity" {
			if !decodeRequestBody(c, codecs, contentEncoding, maxBody) {
				return
			}
		}

		if acceptsGzip(c.GetHeader("Accept-Encoding")) {
			gz := gzip.NewWriter(c.Writer)
			defer func() {
				if err := gz.Close(); err != nil {
					logger.Log.Warn("error closing gzip writer", zap.Error(err))
				}
			}()
			c.Writer = &compressWriter{Writer: gz, ResponseWriter: c.Writer}
			c.Header("Content-Encoding", "gzip")
			c.Header("Vary", "Accept-Encoding")
		}

		c.Next()
	}
}

// acceptsGzip разбирает Accept-Encoding с учётом q-значений.
// Явная запись gzip важнее "*", q=0 означает запрет.
func acceptsGzip(header string) bool {
	wildcard := false
	for _, part := range strings.Split(header, ",") {
		name, params, _ := strings.Cut(part, ";")
		name = strings.ToLower(strings.TrimSpace(name))
		if name != "gzip" && name != "*" {
			continue
		}

		allowed := qValue(params) > 0
		if name == "gzip" {
			return allowed
		}
		wildcard = allowed
	}
	return wildcard
}

func qValue(params string) float64 {
	for _, param := range strings.Split(params, ";") {
		key, value, ok := strings.Cut(strings.TrimSpace(param), "=")
		if !ok || !strings.EqualFold(strings.TrimSpace(key), "q") {
			continue
		}
		q, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return 0
		}
		return q
	}
	return 1
}

func decodeRequestBody(c *gin.Context, codecs *codec.Registry, encoding string, maxBody int64) bool {
	decoder, ok := codecs.ByContentEncoding(encoding)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnsupportedMediaType,
			models.ErrorResponse{Detail: "unsupported Content-Encoding: " + encoding})
		return false
	}

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		status := http.StatusBadRequest
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			status = http.StatusRequestEntityTooLarge
		}
		c.AbortWithStatusJSON(status, models.ErrorResponse{Detail: err.Error()})
		return false
	}

	plain, err := codec.Limit(decoder, maxBody).Decompress(body)
	if errors.Is(err, codec.ErrTooLarge) {
		c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge,
			models.ErrorResponse{Detail: fmt.Sprintf("decoded request body exceeds %d bytes", maxBody)})
		return false
	}
	if err != nil {
		logger.Log.Warn("failed to decode request body", zap.String("encoding", encoding), zap.Error(err))
		c.AbortWithStatusJSON(http.StatusBadRequest,
			models.ErrorResponse{Detail: "invalid " + encoding + " request body: " + err.Error()})
		return false
	}

	c.Request.Body = io.NopCloser(bytes.NewReader(plain))
	c.Request.ContentLength = int64(len(plain))
	c.Request.Header.Del("Content-Encoding")
	return true
}
