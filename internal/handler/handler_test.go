package handler_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/MaxRadzey/codecgateway/internal/codec"
	"github.com/MaxRadzey/codecgateway/internal/config"
	"github.com/MaxRadzey/codecgateway/internal/handler"
	"github.com/MaxRadzey/codecgateway/internal/models"
	"github.com/MaxRadzey/codecgateway/internal/render"
	"github.com/MaxRadzey/codecgateway/internal/router"
	"github.com/MaxRadzey/codecgateway/internal/service"
	"github.com/andybalholm/brotli"
	"github.com/gin-gonic/gin"
	"github.com/klauspost/compress/gzip"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testOptions struct {
	mode        render.Mode
	legacy      bool
	maxBodySize int64
	registry    *prometheus.Registry
}

// setupTestRouter создает роутер для тестов с настоящими кодеками.
func setupTestRouter(t *testing.T, opts testOptions) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := config.New()
	if opts.maxBodySize > 0 {
		cfg.MaxBodySize = opts.maxBodySize
	}
	if opts.mode == "" {
		opts.mode = render.ModeJSON
	}

	codecs := codec.NewRegistry(codec.NewGzipCodec(), codec.NewBrotliCodec())
	h := &handler.Handler{
		Service:      service.NewService(codecs, opts.mode),
		LegacyErrors: opts.legacy,
	}

	var gatherer prometheus.Gatherer
	if opts.registry != nil {
		gatherer = opts.registry
	}
	return router.SetupRouter(h, cfg, codecs, gatherer)
}

func postJSON(rt http.Handler, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	rt.ServeHTTP(rec, req)
	return rec
}

func postRaw(rt http.Handler, path string, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/octet-stream")
	rec := httptest.NewRecorder()
	rt.ServeHTTP(rec, req)
	return rec
}

func dataBody(value string) string {
	b, _ := json.Marshal(models.DecompressRequest{Data: json.RawMessage(fmt.Sprintf("%q", value))})
	return string(b)
}

func decodeCompressed(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var resp models.CompressResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.CompressedData)
	return resp.CompressedData
}

func decodeDecompressed(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var resp models.DecompressResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.DecompressedData
}

func decodeDetail(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var resp models.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), "Тело ошибки должно быть JSON: %s", rec.Body.String())
	return resp.Detail
}

func TestCompressDecompress_Scenario(t *testing.T) {
	tests := []struct {
		name  string
		mode  render.Mode
		codec string
		want  string
	}{
		{name: "Test #1 gzip json rendering", mode: render.ModeJSON, codec: "gzip", want: `{"a":1}`},
		{name: "Test #2 brotli json rendering", mode: render.ModeJSON, codec: "brotli", want: `{"a":1}`},
		{name: "Test #3 gzip repr rendering", mode: render.ModeRepr, codec: "gzip", want: `{'a': 1}`},
		{name: "Test #4 brotli repr rendering", mode: render.ModeRepr, codec: "brotli", want: `{'a': 1}`},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			rt := setupTestRouter(t, testOptions{mode: test.mode})

			rec := postJSON(rt, "/compress/"+test.codec+"/", `{"data": {"a": 1}}`)
			require.Equal(t, http.StatusOK, rec.Code, "Код ответа не совпадает с ожидаемым")
			assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")
			encoded := decodeCompressed(t, rec)

			rec = postJSON(rt, "/decompress/"+test.codec+"/", dataBody(encoded))
			require.Equal(t, http.StatusOK, rec.Code, "Код ответа не совпадает с ожидаемым")
			assert.Equal(t, test.want, decodeDecompressed(t, rec))
		})
	}
}

func TestCompressRoutes(t *testing.T) {
	rt := setupTestRouter(t, testOptions{})

	tests := []struct {
		name        string
		path        string
		contentType string
		raw         bool
	}{
		{name: "gzip default", path: "/compress/gzip/", contentType: "application/json"},
		{name: "gzip base64", path: "/compress/gzip/base64/", contentType: "application/json"},
		{name: "gzip raw", path: "/compress/gzip/raw/", contentType: "application/octet-stream", raw: true},
		{name: "brotli default", path: "/compress/brotli/", contentType: "application/json"},
		{name: "brotli base64", path: "/compress/brotli/base64/", contentType: "application/json"},
		{name: "brotli raw", path: "/compress/brotli/raw/", contentType: "application/octet-stream", raw: true},
		{name: "no trailing slash", path: "/compress/gzip", contentType: "application/json"},
		{name: "raw no trailing slash", path: "/compress/brotli/raw", contentType: "application/octet-stream", raw: true},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			rec := postJSON(rt, test.path, `{"data": {"list": [1, 2, 3], "nested": {"ok": true}}}`)
			require.Equal(t, http.StatusOK, rec.Code, "Код ответа не совпадает с ожидаемым")
			assert.Contains(t, rec.Header().Get("Content-Type"), test.contentType)
			if test.raw {
				assert.NotEmpty(t, rec.Body.Bytes())
				return
			}
			decodeCompressed(t, rec)
		})
	}
}

func TestCompressRaw_DecodableByStandardReaders(t *testing.T) {
	rt := setupTestRouter(t, testOptions{})
	want := `{"k":"v"}`

	rec := postJSON(rt, "/compress/gzip/raw/", `{"data": {"k": "v"}}`)
	require.Equal(t, http.StatusOK, rec.Code)
	zr, err := gzip.NewReader(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	plain, err := io.ReadAll(zr)
	require.NoError(t, err)
	assert.Equal(t, want, string(plain))

	rec = postJSON(rt, "/compress/brotli/raw/", `{"data": {"k": "v"}}`)
	require.Equal(t, http.StatusOK, rec.Code)
	plain, err = io.ReadAll(brotli.NewReader(bytes.NewReader(rec.Body.Bytes())))
	require.NoError(t, err)
	assert.Equal(t, want, string(plain))
}

func TestDecompressVariants(t *testing.T) {
	rt := setupTestRouter(t, testOptions{})

	for _, name := range []string{"gzip", "brotli"} {
		t.Run(name, func(t *testing.T) {
			rec := postJSON(rt, "/compress/"+name+"/raw/", `{"data": {"x": "y"}}`)
			require.Equal(t, http.StatusOK, rec.Code)
			compressed := rec.Body.Bytes()

			rec = postRaw(rt, "/decompress/"+name+"/raw/", compressed)
			require.Equal(t, http.StatusOK, rec.Code, "raw: %s", rec.Body.String())
			assert.Equal(t, `{"x":"y"}`, decodeDecompressed(t, rec))

			rec = postRaw(rt, "/decompress/"+name+"/", compressed)
			require.Equal(t, http.StatusOK, rec.Code, "auto octet-stream: %s", rec.Body.String())
			assert.Equal(t, `{"x":"y"}`, decodeDecompressed(t, rec))

			ints := make([]string, len(compressed))
			for i, b := range compressed {
				ints[i] = fmt.Sprint(b)
			}
			rec = postJSON(rt, "/decompress/"+name+"/", `{"data": [`+strings.Join(ints, ",")+`]}`)
			require.Equal(t, http.StatusOK, rec.Code, "auto byte array: %s", rec.Body.String())
			assert.Equal(t, `{"x":"y"}`, decodeDecompressed(t, rec))

			encoded := decodeCompressed(t, postJSON(rt, "/compress/"+name+"/base64/", `{"data": {"x": "y"}}`))
			rec = postJSON(rt, "/decompress/"+name+"/base64/", dataBody(encoded))
			require.Equal(t, http.StatusOK, rec.Code, "base64: %s", rec.Body.String())
			assert.Equal(t, `{"x":"y"}`, decodeDecompressed(t, rec))
		})
	}
}

func TestEmptyObject(t *testing.T) {
	rt := setupTestRouter(t, testOptions{mode: render.ModeRepr})

	for _, name := range []string{"gzip", "brotli"} {
		t.Run(name, func(t *testing.T) {
			rec := postJSON(rt, "/compress/"+name+"/", `{"data": {}}`)
			require.Equal(t, http.StatusOK, rec.Code)
			encoded := decodeCompressed(t, rec)

			rec = postJSON(rt, "/decompress/"+name+"/", dataBody(encoded))
			require.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, "{}", decodeDecompressed(t, rec))
		})
	}
}

func TestErrors(t *testing.T) {
	payload := `{"data": {"text": "` + strings.Repeat("codec isolation check ", 100) + `"}}`
	rt := setupTestRouter(t, testOptions{})
	gzipped := decodeCompressed(t, postJSON(rt, "/compress/gzip/", payload))
	brotlied := decodeCompressed(t, postJSON(rt, "/compress/brotli/", payload))

	type want struct {
		code       int
		legacyCode int
		detail     string
	}

	tests := []struct {
		name string
		path string
		body string
		want want
	}{
		{
			name: "Test #1 malformed base64",
			path: "/decompress/gzip/",
			body: `{"data": "!!!not-base64!!!"}`,
			want: want{code: http.StatusBadRequest, legacyCode: http.StatusInternalServerError, detail: "base64"},
		},
		{
			name: "Test #2 brotli data through gzip",
			path: "/decompress/gzip/",
			body: dataBody(brotlied),
			want: want{code: http.StatusUnprocessableEntity, legacyCode: http.StatusInternalServerError, detail: "gzip"},
		},
		{
			name: "Test #3 gzip data through brotli",
			path: "/decompress/brotli/",
			body: dataBody(gzipped),
			want: want{code: http.StatusUnprocessableEntity, legacyCode: http.StatusInternalServerError, detail: "brotli"},
		},
		{
			name: "Test #4 invalid json body",
			path: "/compress/gzip/",
			body: `{"data": `,
			want: want{code: http.StatusBadRequest, legacyCode: http.StatusUnprocessableEntity, detail: "invalid request body"},
		},
		{
			name: "Test #5 missing data",
			path: "/compress/brotli/",
			body: `{"other": 1}`,
			want: want{code: http.StatusBadRequest, legacyCode: http.StatusInternalServerError, detail: "data"},
		},
		{
			name: "Test #6 base64 route rejects byte array",
			path: "/decompress/gzip/base64/",
			body: `{"data": [1, 2, 3]}`,
			want: want{code: http.StatusBadRequest, legacyCode: http.StatusInternalServerError, detail: "base64 string"},
		},
		{
			name: "Test #7 valid base64 but not compressed",
			path: "/decompress/gzip/",
			body: dataBody("aGVsbG8="),
			want: want{code: http.StatusUnprocessableEntity, legacyCode: http.StatusInternalServerError, detail: "gzip"},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			rec := postJSON(rt, test.path, test.body)
			require.Equal(t, test.want.code, rec.Code, "Код ответа не совпадает с ожидаемым: %s", rec.Body.String())
			assert.Contains(t, decodeDetail(t, rec), test.want.detail)
		})

		t.Run(test.name+" legacy", func(t *testing.T) {
			legacy := setupTestRouter(t, testOptions{legacy: true})
			rec := postJSON(legacy, test.path, test.body)
			require.Equal(t, test.want.legacyCode, rec.Code, "Код ответа не совпадает с ожидаемым: %s", rec.Body.String())
			assert.NotEmpty(t, decodeDetail(t, rec))
		})
	}
}

func TestMethodNotAllowed(t *testing.T) {
	rt := setupTestRouter(t, testOptions{})

	req := httptest.NewRequest(http.MethodGet, "/compress/gzip/", nil)
	rec := httptest.NewRecorder()
	rt.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, "Method not allowed!", rec.Body.String())
}

func TestUnknownCodecRoute(t *testing.T) {
	rt := setupTestRouter(t, testOptions{})

	rec := postJSON(rt, "/compress/zstd/", `{"data": {}}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestBodyLimit(t *testing.T) {
	rt := setupTestRouter(t, testOptions{maxBodySize: 64})
	body := `{"data": {"text": "` + strings.Repeat("x", 200) + `"}}`

	rec := postJSON(rt, "/compress/gzip/", body)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)

	// Длина неизвестна заранее: ограничение срабатывает при чтении.
	req := httptest.NewRequest(http.MethodPost, "/decompress/gzip/raw/", io.NopCloser(strings.NewReader(body)))
	req.ContentLength = -1
	rec = httptest.NewRecorder()
	rt.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Contains(t, decodeDetail(t, rec), "64 bytes")

	// Лимит действует и на тело после транспортной распаковки.
	tests := []struct {
		name string
		body string
		want int
	}{
		{name: "gzip body over limit", body: `{"data": {"text": "` + strings.Repeat("x", 1000) + `"}}`, want: http.StatusRequestEntityTooLarge},
		{name: "gzip body under limit", body: `{"data": 1}`, want: http.StatusOK},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			var buf bytes.Buffer
			zw, err := gzip.NewWriterLevel(&buf, gzip.BestCompression)
			require.NoError(t, err)
			_, err = zw.Write([]byte(test.body))
			require.NoError(t, err)
			require.NoError(t, zw.Close())
			require.Less(t, buf.Len(), 64)

			req := httptest.NewRequest(http.MethodPost, "/compress/gzip/", &buf)
			req.Header.Set("Content-Type", "application/json")
			req.Header.Set("Content-Encoding", "gzip")
			rec := httptest.NewRecorder()
			rt.ServeHTTP(rec, req)

			assert.Equal(t, test.want, rec.Code)
		})
	}
}

func TestTransportContentEncoding(t *testing.T) {
	rt := setupTestRouter(t, testOptions{})

	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err := zw.Write([]byte(`{"data": {"a": 1}}`))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	req := httptest.NewRequest(http.MethodPost, "/compress/brotli/", &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Content-Encoding", "gzip")
	req.Header.Set("Accept-Encoding", "gzip")
	rec := httptest.NewRecorder()
	rt.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "gzip", rec.Header().Get("Content-Encoding"))

	zr, err := gzip.NewReader(rec.Body)
	require.NoError(t, err)
	body, err := io.ReadAll(zr)
	require.NoError(t, err)

	var resp models.CompressResponse
	require.NoError(t, json.Unmarshal(body, &resp))
	assert.NotEmpty(t, resp.CompressedData)

	req = httptest.NewRequest(http.MethodPost, "/compress/brotli/", strings.NewReader(`{}`))
	req.Header.Set("Content-Encoding", "deflate")
	rec = httptest.NewRecorder()
	rt.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
}

func TestServiceRoutes(t *testing.T) {
	reg := prometheus.NewRegistry()
	rt := setupTestRouter(t, testOptions{registry: reg})

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	rec := httptest.NewRecorder()
	rt.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "pong", rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	req = httptest.NewRequest(http.MethodGet, "/codecs", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rec = httptest.NewRecorder()
	rt.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"codecs":["brotli","gzip"]}`, rec.Body.String())
	assert.Equal(t, "abc-123", rec.Header().Get("X-Request-ID"))

	req = httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec = httptest.NewRecorder()
	rt.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		kind service.Kind
		want int
	}{
		{kind: service.KindValidation, want: http.StatusBadRequest},
		{kind: service.KindDecode, want: http.StatusBadRequest},
		{kind: service.KindUnknownCodec, want: http.StatusNotFound},
		{kind: service.KindCodec, want: http.StatusUnprocessableEntity},
		{kind: service.KindEncoding, want: http.StatusUnprocessableEntity},
		{kind: service.KindLimit, want: http.StatusRequestEntityTooLarge},
		{kind: service.KindInternal, want: http.StatusInternalServerError},
	}

	for _, test := range tests {
		t.Run(test.kind.String(), func(t *testing.T) {
			assert.Equal(t, test.want, handler.StatusFor(test.kind))
		})
	}
}
