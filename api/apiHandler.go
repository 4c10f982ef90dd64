package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	log "github.com/sirupsen/logrus"

	"github.com/vmetanov/castline/configs/config"
	"github.com/vmetanov/castline/internal/services"
	"github.com/vmetanov/castline/tools"
)

type ApiHandler struct {
	session *services.Session
	cfg     *config.ServiceConfig
}

func NewApiHandler(session *services.Session, cfg *config.ServiceConfig) *ApiHandler {
	return &ApiHandler{session: session, cfg: cfg}
}

func (ah *ApiHandler) Router() chi.Router {
	rtr := chi.NewRouter()

	rtr.Route("/", func(r chi.Router) {
		r.Get("/", ah.welcome)
		r.Get("/health", ah.health)
		r.Get("/stats", ah.stats)
		r.Get("/leaderboard", ah.leaderboard)
		r.Get("/ipcount", ah.ipcount)
	})

	return rtr
}

func (ah *ApiHandler) welcome(w http.ResponseWriter, r *http.Request) {
	_, _ = w.Write([]byte(fmt.Sprintf("{\"success\":\"Welcome to %s api\"}", ah.cfg.GetName())))
}

func (ah *ApiHandler) health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte("{\"status\":\"ok\"}"))
}

// stats is the read-only snapshot of connection count, message count and
// the online identity list.
func (ah *ApiHandler) stats(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(ah.session.Stats()); err != nil {
		log.Errorf("[api-stats] encode: %v", err)
	}
}

// leaderboard lists the richest inventories, coins descending. `n` caps
// the page size at 100, default 10.
func (ah *ApiHandler) leaderboard(w http.ResponseWriter, r *http.Request) {
	n, err := strconv.Atoi(r.URL.Query().Get("n"))
	if err != nil || n < 1 || n > 100 {
		n = 10
	}

	board, err := ah.session.Leaderboard(r.Context(), n)
	if err != nil {
		log.Errorf("[api-leaderboard] %v", err)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("{\"error\":\"leaderboard is not available\"}"))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(board); err != nil {
		log.Errorf("[api-leaderboard] encode: %v", err)
	}
}

func (ah *ApiHandler) ipcount(w http.ResponseWriter, r *http.Request) {
	ipcount := tools.GetIPCount()
	ip, max := tools.IPCount.TopIP()
	_, _ = w.Write([]byte(fmt.Sprintf("{\"Active_IP_Connections\": %v,\"Max_connections_from_[%s]\": %v}", ipcount, ip, max)))
}
