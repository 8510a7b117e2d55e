package server

import (
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mark3labs/mcp-go/server"

	"github.com/NERVsystems/navermcp/pkg/metrics"
	"github.com/NERVsystems/navermcp/pkg/version"
)

var indexTemplate = template.Must(template.New("index").Parse(`<html>
  <head>
    <title>Naver Maps MCP Server</title>
    <style>
      body { font-family: system-ui, sans-serif; margin: 40px; line-height: 1.6; }
      .container { max-width: 800px; margin: 0 auto; }
      .info { background: #f5f5f5; padding: 20px; border-radius: 5px; }
      code { background: #eee; padding: 2px 5px; border-radius: 3px; }
    </style>
  </head>
  <body>
    <div class="container">
      <h1>Naver Maps MCP Server</h1>
      <div class="info">
        <p>This server provides Naver Maps API functionality through the Model Context Protocol (MCP).</p>
        <p>MCP Endpoint: <code>{{.Endpoint}}</code></p>
        <p>Version: <code>{{.Version}}</code></p>
      </div>
    </div>
  </body>
</html>
`))

func init() {
	gin.SetMode(gin.ReleaseMode)
}

// router builds the gin engine serving the SSE transport plus the info,
// health and metrics pages.
func (s *Server) router(sse *server.SSEServer) *gin.Engine {
	engine := gin.New()
	engine.SetHTMLTemplate(indexTemplate)
	engine.Use(gin.Recovery(), requestLogger(s.logger), allowCORS())

	engine.GET("/", s.handleIndex)
	engine.GET("/healthz", s.handleHealth)
	engine.GET("/metrics", gin.WrapH(metrics.Handler()))
	engine.GET(SSEEndpoint, gin.WrapH(sse.SSEHandler()))
	engine.POST(MessageEndpoint, gin.WrapH(sse.MessageHandler()))

	return engine
}

func (s *Server) handleIndex(c *gin.Context) {
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	c.HTML(http.StatusOK, "index", gin.H{
		"Endpoint": scheme + "://" + c.Request.Host + SSEEndpoint,
		"Version":  version.BuildVersion,
	})
}

func (s *Server) handleHealth(c *gin.Context) {
	credentials := "set"
	if !s.client.Config().HasCredentials() {
		credentials = "missing"
	}
	c.JSON(http.StatusOK, gin.H{
		"status":      "ok",
		"name":        ServerName,
		"build":       version.Info(),
		"tools":       len(s.dispatcher.Definitions()),
		"credentials": credentials,
	})
}

// allowCORS permits any origin, as browser-based MCP clients connect
// from arbitrary pages.
func allowCORS() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug("http request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start))
	}
}
