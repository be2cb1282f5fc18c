package middleware

import (
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/simp-lee/pension/internal/config"
)

var (
	defaultCORSMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	defaultCORSHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization", requestIDHeader}
)

const defaultCORSMaxAge = 12 * time.Hour

// CORS builds the gin-contrib/cors middleware from the server config.
//
// With no configured origins, debug and test mode allow every origin and
// release mode denies cross-origin requests; in that case ok is false and no
// middleware should be installed.
func CORS(cfg config.CORSConfig, mode string) (h gin.HandlerFunc, ok bool) {
	cc, ok := corsOptions(cfg, mode)
	if !ok {
		return nil, false
	}
	return cors.New(cc), true
}

func corsOptions(cfg config.CORSConfig, mode string) (cors.Config, bool) {
	cc := cors.Config{
		AllowMethods:     orDefault(cfg.AllowMethods, defaultCORSMethods),
		AllowHeaders:     orDefault(cfg.AllowHeaders, defaultCORSHeaders),
		ExposeHeaders:    []string{requestIDHeader},
		AllowCredentials: cfg.AllowCredentials,
		MaxAge:           config.Duration(cfg.MaxAge, defaultCORSMaxAge),
	}

	origins := make([]string, 0, len(cfg.AllowOrigins))
	for _, o := range cfg.AllowOrigins {
		o = strings.TrimSpace(o)
		if o == "" {
			continue
		}
		if o == "*" {
			cc.AllowAllOrigins = true
			return cc, true
		}
		origins = append(origins, o)
	}

	switch {
	case len(origins) > 0:
		cc.AllowOrigins = origins
	case mode == gin.ReleaseMode:
		return cors.Config{}, false
	default:
		cc.AllowAllOrigins = true
	}
	return cc, true
}

func orDefault(values, fallback []string) []string {
	if len(values) == 0 {
		return fallback
	}
	return values
}
