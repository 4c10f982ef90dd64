package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"cloud.google.com/go/logging"
	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"github.com/vmetanov/castline/configs/config"
	"github.com/vmetanov/castline/internal/chat"
	"github.com/vmetanov/castline/internal/fishing"
	"github.com/vmetanov/castline/pkg/gopool"
	"github.com/vmetanov/castline/tools"
	"github.com/vmetanov/castline/tools/metrics"
)

// Session is the global chat object. It lives over the entire service
// life-cycle and owns the shared state every connection touches: the
// session ledger, the bounded message history and the rate limiter.
type Session struct {
	clients *ledger
	history *History
	limiter *RateLimiter
	game    *fishing.Game

	mu    sync.Mutex
	seq   uint
	conns map[*Client]struct{}

	cfg  *config.ServiceConfig
	pool *gopool.Pool
	slgr *log.Logger
	clgr *logging.Logger
}

// Stats is the read-only health snapshot exposed over the REST surface.
type Stats struct {
	Connections   int             `json:"connections"`
	Online        int             `json:"online"`
	Messages      int             `json:"messages"`
	MessagesTotal uint64          `json:"messagesTotal"`
	Users         []chat.Identity `json:"users"`
}

// NewSession creates the chat session at the time the websocket handler
// is created. clgr may be nil when cloud logging is disabled.
func NewSession(pool *gopool.Pool, cfg *config.ServiceConfig, clgr *logging.Logger) *Session {
	return &Session{
		clients: NewLedger(),
		history: NewHistory(cfg.GetHistoryLimit()),
		limiter: NewRateLimiter(cfg.GetRateLimitMax(), cfg.GetRateLimitWindow()),
		conns:   make(map[*Client]struct{}),
		cfg:     cfg,
		pool:    pool,
		slgr:    log.StandardLogger(),
		clgr:    clgr,
	}
}

// AttachGame wires the fishing collaborator and hands it the session as
// its inventoryUpdate notifier.
func (s *Session) AttachGame(g *fishing.Game) {
	s.game = g
	g.SetNotifier(s)
}

// Limiter exposes the rate limiter so the entrypoint can run its sweep.
func (s *Session) Limiter() *RateLimiter {
	return s.limiter
}

// NewClient wraps an upgraded websocket connection into an
// unauthenticated client and tracks it.
func (s *Session) NewClient(conn *websocket.Conn, ip string) *Client {
	tools.IPCount.Add(ip)

	s.mu.Lock()
	id := s.seq
	s.seq++
	s.mu.Unlock()

	c := &Client{
		session: s,
		conn:    conn,
		id:      id,
		IP:      ip,
		send:    make(chan []byte, sendQueueSize),
		lgr:     log.WithFields(log.Fields{"client": id, "ip": ip}),
	}

	s.mu.Lock()
	s.conns[c] = struct{}{}
	total := len(s.conns)
	s.mu.Unlock()

	c.lgr.Infof("[register] connection accepted, %d active", total)
	s.cloudLog(fmt.Sprintf(`{"client":%d, "IP":"%s", "active_connections":%d, "ts":%d}`, id, ip, total, time.Now().Unix()))

	if ip, max := tools.IPCount.TopIP(); ip != "" {
		metrics.ChTopDemandingIP <- map[string]int{ip: max}
	}

	return c
}

// Start tunes the connection, runs the connect-time credential path when
// present and schedules the client's pump goroutines on the pool.
func (s *Session) Start(c *Client, creds *chat.AuthPayload) {
	s.TuneClientConn(c)

	// Connect-time credentials run through the same idempotent
	// Authenticate before the read loop starts, so an explicit
	// authenticate frame arriving later cannot double-register.
	if creds != nil && (creds.Address != "" || creds.Username != "") {
		c.Authenticate(creds.Address, creds.Username)
	}

	go c.writeLoop()

	s.pool.Schedule(func() {
		defer s.Remove(c)
		if err := c.ReceiveMsg(); err != nil {
			s.slgr.Errorf("[session] client %d receive: %v", c.id, err)
		}
	})
}

// TuneClientConn sets the websocket keepalive parameters.
func (s *Session) TuneClientConn(c *Client) {
	if c.conn == nil {
		return
	}

	c.conn.SetReadLimit(16384)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
}

// registered finishes a successful authentication: the new client gets
// the history tail and the presence list, everyone else learns about the
// join.
func (s *Session) registered(c *Client, ident chat.Identity) {
	c.lgr.Infof("[authenticate] %s registered as %q", ident.Address, ident.Username)
	s.cloudLog(fmt.Sprintf(`{"event":"joined","address":"%s","username":"%s","online":%d,"ts":%d}`, ident.Address, ident.Username, s.clients.Len(), time.Now().Unix()))

	c.enqueue(chat.MustEncode(chat.FrameChatHistory, s.history.Tail(s.cfg.GetHistoryReplay())))
	c.enqueue(chat.MustEncode(chat.FrameOnlineUsers, s.clients.Active()))

	s.broadcastOthers(chat.MustEncode(chat.FrameUserJoined, ident), c)

	metrics.ChActiveClients <- s.clients.Len()
}

// Remove releases a client: transport closure is the only disconnect
// trigger. An authenticated client is unregistered and announced; a
// never-authenticated one goes silently. Safe to call more than once.
func (s *Session) Remove(c *Client) {
	if c == nil {
		return
	}

	c.mu.Lock()
	if c.state == stateClosed {
		c.mu.Unlock()
		return
	}
	c.state = stateClosed
	close(c.send)
	c.mu.Unlock()

	s.mu.Lock()
	delete(s.conns, c)
	total := len(s.conns)
	s.mu.Unlock()

	if c.conn != nil {
		_ = c.conn.Close()
	}
	tools.IPCount.Remove(c.IP)

	ident, wasRegistered := s.clients.Remove(c)
	if wasRegistered {
		s.broadcastOthers(chat.MustEncode(chat.FrameUserLeft, chat.UserLeftPayload{Address: ident.Address}), c)
		s.cloudLog(fmt.Sprintf(`{"event":"left","address":"%s","online":%d,"ts":%d}`, ident.Address, s.clients.Len(), time.Now().Unix()))
		metrics.ChActiveClients <- s.clients.Len()
	}

	c.lgr.Infof("[remove] connection released, %d active", total)
}

// BroadcastAll delivers a frame to every live connection, the sender
// included. Each delivery is fire-and-forget; a slow or dead peer is
// logged and skipped, never awaited.
func (s *Session) BroadcastAll(frame []byte) {
	delivered := 0
	for _, c := range s.connSnapshot() {
		if c.enqueue(frame) {
			delivered++
		}
	}
	metrics.ChMessageBroadcast <- delivered
}

// broadcastOthers delivers presence events (userJoined, userLeft) to the
// registered clients only; connections that never authenticated have no
// business seeing them.
func (s *Session) broadcastOthers(frame []byte, except *Client) {
	delivered := 0
	for _, c := range s.clients.Clients() {
		if c == except {
			continue
		}
		if c.enqueue(frame) {
			delivered++
		}
	}
	metrics.ChMessageBroadcast <- delivered
}

func (s *Session) connSnapshot() []*Client {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*Client, 0, len(s.conns))
	for c := range s.conns {
		out = append(out, c)
	}
	return out
}

// Notify implements fishing.Notifier: push a frame to the connection
// currently bound to the address, if any.
func (s *Session) Notify(address string, frame []byte) bool {
	c := s.clients.Get(address)
	if c == nil {
		return false
	}
	return c.enqueue(frame)
}

// Lookup answers whether the address is currently connected.
func (s *Session) Lookup(address string) bool {
	return s.clients.Get(address) != nil
}

// Leaderboard proxies the fishing leaderboard query for the REST surface.
func (s *Session) Leaderboard(ctx context.Context, n int) ([]fishing.Inventory, error) {
	if s.game == nil {
		return nil, fishing.ErrNoLeaderboard
	}
	return s.game.Richest(ctx, n)
}

func (s *Session) Stats() Stats {
	s.mu.Lock()
	conns := len(s.conns)
	s.mu.Unlock()

	return Stats{
		Connections:   conns,
		Online:        s.clients.Len(),
		Messages:      s.history.Len(),
		MessagesTotal: s.history.Total(),
		Users:         s.clients.Active(),
	}
}

func (s *Session) cloudLog(payload string) {
	if s.clgr == nil {
		return
	}
	s.clgr.Log(logging.Entry{Severity: logging.Notice, Payload: payload})
}
