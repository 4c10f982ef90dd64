package router

import (
	"net/http"

	log "github.com/sirupsen/logrus"

	"github.com/vmetanov/castline/tools"
)

// Handles the CORS part
func accessControl(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.Header().Set("Access-Control-Max-Age", "3600")
			w.WriteHeader(http.StatusNoContent)
			return
		}

		h.ServeHTTP(w, r)
	})
}

// Caps the number of concurrent websocket connections per source IP.
func controlIPConn(maxPerIP int) func(http.Handler) http.Handler {
	return func(h http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {

			ip := tools.GetIP(r)
			if ip != "" && tools.IPCount.IPConns(ip) >= maxPerIP {
				log.Warnf("[MW-ipc] too many connections [%d] from %s", tools.IPCount.IPConns(ip), ip)
				http.Error(w, "Too many connections", http.StatusTooManyRequests)
				return
			}

			h.ServeHTTP(w, r)
		})
	}
}
