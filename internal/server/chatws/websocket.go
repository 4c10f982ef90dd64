package chatws

import (
	"net"
	"net/http"
	"net/url"

	"github.com/go-chi/chi"
	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"github.com/vmetanov/castline/configs/config"
	"github.com/vmetanov/castline/internal/chat"
	"github.com/vmetanov/castline/internal/services"
	"github.com/vmetanov/castline/tools"
)

type WSHandler struct {
	lgr     *log.Logger
	cfg     *config.ServiceConfig
	session *services.Session
}

func NewWSHandler(session *services.Session, cfg *config.ServiceConfig) *WSHandler {
	return &WSHandler{
		lgr:     log.StandardLogger(),
		cfg:     cfg,
		session: session,
	}
}

func (h *WSHandler) Router() chi.Router {
	rtr := chi.NewRouter()

	rtr.Route("/", func(r chi.Router) {
		r.Get("/", h.connman)
	})

	return rtr
}

// trustedOrigin reports whether the handshake belongs to the configured
// trusted set. Hostnames are compared exactly after stripping scheme and
// port; the service's own chat_host is implicitly trusted.
func (h *WSHandler) trustedOrigin(org, hst string) bool {
	if org == "" && hst == "" {
		return false
	}

	trusted := append([]string(nil), h.cfg.GetTrustedOrigins()...)
	if h.cfg.ChatHost != "" {
		trusted = append(trusted, h.cfg.ChatHost)
	}

	if u, err := url.Parse(org); err == nil && u.Hostname() != "" && tools.Contains(trusted, u.Hostname()) {
		return true
	}

	host := hst
	if hp, _, err := net.SplitHostPort(hst); err == nil {
		host = hp
	}
	return host != "" && tools.Contains(trusted, host)
}

// connman takes care for the connection upgrade (incl handshake) and
// hands the accepted connection over to the chat session. Credentials in
// the request query trigger the connect-time authentication path.
func (h *WSHandler) connman(w http.ResponseWriter, r *http.Request) {

	org := r.Header.Get("Origin")
	hst := r.Host

	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			return h.trustedOrigin(org, hst)
		},
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.lgr.Errorf("[connman] error upgrading the connection to websocket protocol: %v", err)
		return
	}

	ip := tools.GetIP(r)

	var creds *chat.AuthPayload
	q := r.URL.Query()
	if q.Get("address") != "" || q.Get("username") != "" {
		creds = &chat.AuthPayload{Address: q.Get("address"), Username: q.Get("username")}
	}

	client := h.session.NewClient(conn, ip)
	h.session.Start(client, creds)
}
