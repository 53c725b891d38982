package http

import (
	"context"
	"html/template"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/voicelink/internal/adapters/signal"
	"github.com/dkeye/voicelink/internal/app"
	"github.com/dkeye/voicelink/internal/config"
	"github.com/dkeye/voicelink/internal/domain"
)

func genClientToken() string {
	idStr := uuid.NewString()
	return idStr
}

func ClientTokenMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, _ := c.Cookie("ct")
		if token == "" {
			token = genClientToken()
			c.SetCookie("ct", token, 3600*24*7, "/", "", false, true)
		}
		c.Set("client_token", token)
		c.Next()
	}
}

// ServerInfo identifies this instance on the status endpoints.
type ServerInfo struct {
	Name    string
	Started time.Time
}

type health struct {
	Uptime          int64  `json:"uptime"`
	ConnectionCount int    `json:"connectionCount"`
	LobbiesCount    int    `json:"lobbiesCount"`
	Address         string `json:"address"`
	Name            string `json:"name"`
}

var statusPage = template.Must(template.New("status").Parse(`<!doctype html>
<html>
<head><meta charset="utf-8"><title>VoiceLink Server</title></head>
<body>
<p>VoiceLink Server is running! Number of connections: {{.Connections}}</p>
<p>Lobbies: {{.Lobbies}}</p>
<p>Please use the following URL in the app: <code>{{.Address}}</code></p>
</body>
</html>`))

func SetupRouter(ctx context.Context, cfg *config.Config, info ServerInfo, store *app.Store, ctl *signal.SignalWSController) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	sessionStore := cookie.NewStore([]byte(cfg.Secret))
	r.Use(sessions.Sessions("VoiceLinkSessions", sessionStore))
	r.Use(ClientTokenMiddleware())
	r.SetHTMLTemplate(statusPage)

	r.Static("/public", cfg.StaticPath)

	r.GET("/", func(c *gin.Context) {
		stats := store.Stats()
		c.HTML(http.StatusOK, "status", gin.H{
			"Connections": stats.Connections,
			"Lobbies":     stats.Lobbies,
			"Address":     address(c),
		})
	})

	r.GET("/health", func(c *gin.Context) {
		stats := store.Stats()
		c.JSON(http.StatusOK, health{
			Uptime:          int64(math.Round(time.Since(info.Started).Seconds())),
			ConnectionCount: stats.Connections,
			LobbiesCount:    stats.Lobbies,
			Address:         address(c),
			Name:            info.Name,
		})
	})

	r.GET("/lobbies", func(c *gin.Context) {
		lobbies := store.Stats().PublicLobbies
		if lobbies == nil {
			lobbies = []domain.PublicLobby{}
		}
		c.JSON(http.StatusOK, lobbies)
	})

	log.Info().Str("module", "adapters.http").Str("static", cfg.StaticPath).Msg("router setup")

	ws := func(c *gin.Context) {
		log.Debug().Str("module", "adapters.http").Str("client_token", c.GetString("client_token")).Msg("ws signal endpoint hit")
		ctl.HandleSignal(ctx, c)
	}
	r.GET("/ws", ws)
	r.Group("/api").GET("/ws/signal", ws)

	return r
}

// address is the URL clients should be configured with, without a port.
// Forwarded headers win over the request itself.
func address(c *gin.Context) string {
	scheme := firstValue(c.GetHeader("X-Forwarded-Proto"))
	if scheme == "" {
		scheme = "http"
		if c.Request.TLS != nil {
			scheme = "https"
		}
	}
	host := firstValue(c.GetHeader("X-Forwarded-Host"))
	if host == "" {
		host = c.Request.Host
	}
	return scheme + "://" + (&url.URL{Host: host}).Hostname()
}

func firstValue(header string) string {
	v, _, _ := strings.Cut(header, ",")
	return strings.TrimSpace(v)
}
