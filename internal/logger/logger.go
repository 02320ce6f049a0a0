package logger

import (
	"time"

	"github.com/MaxRadzey/codecgateway/internal/contextkeys"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

var Log *zap.Logger = zap.NewNop()

// FileOptions описывает вывод журнала в файл с ротацией.
// Пустой Path означает вывод в stderr.
type FileOptions struct {
	Path       string
	MaxSizeMB  int
	MaxBackups int
}

type (
	responseData struct {
		status int
		size   int
	}

	loggingResponseWriter struct {
		gin.ResponseWriter
		responseData *responseData
	}
)

func (r *loggingResponseWriter) Write(b []byte) (int, error) {
	size, err := r.ResponseWriter.Write(b)
	r.responseData.size += size
	return size, err
}

func (r *loggingResponseWriter) WriteString(s string) (int, error) {
	size, err := r.ResponseWriter.WriteString(s)
	r.responseData.size += size
	return size, err
}

func (r *loggingResponseWriter) WriteHeader(statusCode int) {
	r.ResponseWriter.WriteHeader(statusCode)
	r.responseData.status = statusCode
}

// Initialize настраивает глобальный логгер.
func Initialize(level string, file FileOptions) error {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return err
	}

	if file.Path == "" {
		cfg := zap.NewDevelopmentConfig()
		cfg.Level = lvl

		zl, err := cfg.Build()
		if err != nil {
			return err
		}

		Log = zl
		return nil
	}

	writer := &lumberjack.Logger{
		Filename:   file.Path,
		MaxSize:    file.MaxSizeMB,
		MaxBackups: file.MaxBackups,
		Compress:   true,
	}
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewCore(zapcore.NewJSONEncoder(encoderCfg), zapcore.AddSync(writer), lvl)
	Log = zap.New(core, zap.AddCaller())
	return nil
}

func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start)
		Log.Info("got incoming HTTP request",
			zap.String("request_id", c.GetString(contextkeys.RequestIDKey)),
			zap.String("URI", c.Request.RequestURI),
			zap.String("method", c.Request.Method),
			zap.Duration("duration", duration),
		)
	}
}

func ResponseLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		responseData := &responseData{
			status: 0,
			size:   0,
		}

		lw := &loggingResponseWriter{
			ResponseWriter: c.Writer,
			responseData:   responseData,
		}
		c.Writer = lw
		c.Next()

		Log.Info("response",
			zap.String("request_id", c.GetString(contextkeys.RequestIDKey)),
			zap.Int("status", lw.Status()),
			zap.Int("size", lw.responseData.size),
		)
	}
}
