package router

import (
	"net/http"
	"strings"

	"github.com/MaxRadzey/codecgateway/internal/codec"
	"github.com/MaxRadzey/codecgateway/internal/config"
	"github.com/MaxRadzey/codecgateway/internal/handler"
	"github.com/MaxRadzey/codecgateway/internal/logger"
	"github.com/MaxRadzey/codecgateway/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SetupRouter создает и настраивает HTTP роутер со всеми middleware и маршрутами.
// gatherer может быть nil, тогда /metrics не регистрируется.
func SetupRouter(h *handler.Handler, cfg *config.Config, codecs *codec.Registry, gatherer prometheus.Gatherer) *gin.Engine {
	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.RedirectTrailingSlash = false

	SetupMiddleware(r)

	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(logger.RequestLogger())
	r.Use(logger.ResponseLogger())

	r.GET("/ping", h.Ping)
	r.GET("/codecs", h.Codecs)
	if gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}

	// Маршруты кодеков: тело ограничено по размеру и может прийти сжатым.
	api := r.Group("")
	api.Use(middleware.BodyLimit(cfg.MaxBodySize))
	api.Use(middleware.ContentEncoding(codecs, cfg.MaxBodySize))

	for _, name := range codecs.Names() {
		post(api, "/compress/"+name, h.CompressBase64(name))
		post(api, "/compress/"+name+"/base64", h.CompressBase64(name))
		post(api, "/compress/"+name+"/raw", h.CompressRaw(name))

		post(api, "/decompress/"+name, h.Decompress(name))
		post(api, "/decompress/"+name+"/base64", h.DecompressBase64(name))
		post(api, "/decompress/"+name+"/raw", h.DecompressRaw(name))
	}

	return r
}

// post регистрирует маршрут со слэшем на конце и без него.
func post(g *gin.RouterGroup, path string, h gin.HandlerFunc) {
	path = strings.TrimSuffix(path, "/")
	g.POST(path+"/", h)
	g.POST(path, h)
}

// SetupMiddleware настраивает middleware для роутера.
func SetupMiddleware(router *gin.Engine) {
	router.NoMethod(func(c *gin.Context) {
		c.String(http.StatusMethodNotAllowed, "Method not allowed!")
	})
	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Not Found"})
	})
}
