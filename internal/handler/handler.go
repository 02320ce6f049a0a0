package handler

import (
	"io"
	"net/http"

	"github.com/MaxRadzey/codecgateway/internal/contextkeys"
	"github.com/MaxRadzey/codecgateway/internal/logger"
	"github.com/MaxRadzey/codecgateway/internal/models"
	"github.com/MaxRadzey/codecgateway/internal/service"
	"github.com/MaxRadzey/codecgateway/internal/utils"
	"github.com/cockroachdb/errors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handler struct {
	Service *service.Service
	// LegacyErrors отвечает 500 на любую ошибку, как первая версия сервиса.
	LegacyErrors bool
}

// CompressBase64 хэндлер, принимает {"data": <json>}, сжимает каноническое представление data
// кодеком codecName и возвращает {"compressed_data": "<base64>"}.
func (h *Handler) CompressBase64(codecName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		compressed, ok := h.compress(c, codecName)
		if !ok {
			return
		}
		c.JSON(http.StatusOK, models.CompressResponse{CompressedData: utils.EncodeBase64(compressed)})
	}
}

// CompressRaw хэндлер, как CompressBase64, но отдаёт сжатые байты как есть (application/octet-stream).
func (h *Handler) CompressRaw(codecName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		compressed, ok := h.compress(c, codecName)
		if !ok {
			return
		}
		c.Data(http.StatusOK, "application/octet-stream", compressed)
	}
}

// Decompress хэндлер с автоопределением входа: тело application/octet-stream считается
// сырыми сжатыми байтами, иначе ожидается {"data": "<base64>"} или {"data": [байты]}.
func (h *Handler) Decompress(codecName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if utils.IsOctetStream(c.ContentType()) {
			h.decompressBody(c, codecName)
			return
		}

		var req models.DecompressRequest
		if !h.bind(c, &req) {
			return
		}

		text, err := h.Service.DecompressJSON(codecName, req.Data)
		if err != nil {
			h.writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.DecompressResponse{DecompressedData: text})
	}
}

// DecompressRaw хэндлер, тело запроса — сырые сжатые байты.
func (h *Handler) DecompressRaw(codecName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		h.decompressBody(c, codecName)
	}
}

// DecompressBase64 хэндлер, принимает только {"data": "<base64>"}.
func (h *Handler) DecompressBase64(codecName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.DecompressRequest
		if !h.bind(c, &req) {
			return
		}

		text, err := h.Service.DecompressBase64JSON(codecName, req.Data)
		if err != nil {
			h.writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.DecompressResponse{DecompressedData: text})
	}
}

// Codecs возвращает список поддерживаемых кодеков.
func (h *Handler) Codecs(c *gin.Context) {
	c.JSON(http.StatusOK, models.CodecsResponse{Codecs: h.Service.Codecs()})
}

// Ping проверяет, что сервис отвечает.
func (h *Handler) Ping(c *gin.Context) {
	c.String(http.StatusOK, "pong")
}

func (h *Handler) compress(c *gin.Context, codecName string) ([]byte, bool) {
	var req models.CompressRequest
	if !h.bind(c, &req) {
		return nil, false
	}

	compressed, err := h.Service.Compress(codecName, req.Data)
	if err != nil {
		h.writeError(c, err)
		return nil, false
	}
	return compressed, true
}

func (h *Handler) decompressBody(c *gin.Context, codecName string) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		h.writeBodyError(c, err)
		return
	}

	text, err := h.Service.Decompress(codecName, body)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.DecompressResponse{DecompressedData: text})
}

func (h *Handler) bind(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		h.writeBodyError(c, err)
		return false
	}
	return true
}

// writeBodyError отвечает на ошибку чтения или разбора тела запроса.
func (h *Handler) writeBodyError(c *gin.Context, err error) {
	var maxBytesErr *http.MaxBytesError
	switch {
	case errors.As(err, &maxBytesErr):
		h.respond(c, http.StatusRequestEntityTooLarge, errors.Newf("request body exceeds %d bytes", maxBytesErr.Limit))
	case h.LegacyErrors:
		// Старый сервис отдавал ошибки валидации тела фреймворком, с кодом 422.
		h.respond(c, http.StatusUnprocessableEntity, errors.Wrap(err, "invalid request body"))
	default:
		h.respond(c, http.StatusBadRequest, errors.Wrap(err, "invalid request body"))
	}
}

func (h *Handler) writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	if !h.LegacyErrors {
		status = StatusFor(service.KindOf(err))
	}
	h.respond(c, status, err)
}

func (h *Handler) respond(c *gin.Context, status int, err error) {
	fields := []zap.Field{
		zap.String("request_id", c.GetString(contextkeys.RequestIDKey)),
		zap.String("path", c.FullPath()),
		zap.Int("status", status),
		zap.Error(err),
	}
	if status >= http.StatusInternalServerError {
		logger.Log.Error("request failed", fields...)
	} else {
		logger.Log.Warn("request rejected", fields...)
	}

	c.AbortWithStatusJSON(status, models.ErrorResponse{Detail: err.Error()})
}

// StatusFor сопоставляет вид ошибки и HTTP-статус.
func StatusFor(kind service.Kind) int {
	switch kind {
	case service.KindValidation, service.KindDecode:
		return http.StatusBadRequest
	case service.KindUnknownCodec:
		return http.StatusNotFound
	case service.KindCodec, service.KindEncoding:
		return http.StatusUnprocessableEntity
	case service.KindLimit:
		return http.StatusRequestEntityTooLarge
	default:
		return http.StatusInternalServerError
	}
}
