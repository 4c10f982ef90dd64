package services

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"github.com/vmetanov/castline/internal/chat"
	"github.com/vmetanov/castline/internal/fishing"
)

type connState int

const (
	stateUnauthenticated connState = iota
	stateAuthenticated
	stateClosed
)

const (
	sendQueueSize = 32
	writeWait     = 10 * time.Second
	pongWait      = 60 * time.Second
	pingPeriod    = 54 * time.Second
)

// Client drives the protocol state machine of one websocket connection:
// Unauthenticated -> Authenticated -> Closed, no reverse transitions.
// A failed authenticate attempt stays Unauthenticated and may retry.
type Client struct {
	session  *Session
	conn     *websocket.Conn
	lgr      *log.Entry
	id       uint
	IP       string
	send     chan []byte
	mu       sync.Mutex
	state    connState
	identity chat.Identity
}

// Identity returns the bound identity when the client is authenticated.
func (c *Client) Identity() (chat.Identity, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.identity, c.state == stateAuthenticated
}

// Authenticate is the single idempotent authentication entry point. It is
// invoked either immediately at connect time (credentials in the request
// query) or on an explicit authenticate frame; when the client is already
// authenticated a repeated call is ignored instead of re-running the
// registration logic.
func (c *Client) Authenticate(address, username string) {
	c.mu.Lock()

	if c.state != stateUnauthenticated {
		c.mu.Unlock()
		c.lgr.Debugf("[authenticate] repeated attempt ignored, state=%d", c.state)
		return
	}

	if !chat.IsValidAddress(address) {
		c.mu.Unlock()
		c.sendError(chat.ErrInvalidAddress)
		return
	}
	if !chat.IsValidUsername(username) {
		c.mu.Unlock()
		c.sendError(chat.ErrInvalidUsername)
		return
	}

	ident := chat.Identity{
		Address:  address,
		Username: strings.TrimSpace(username),
		JoinedAt: time.Now().UTC(),
	}

	ok, _ := c.session.clients.Add(ident, c)
	if !ok {
		c.mu.Unlock()
		c.lgr.Warnf("[authenticate] duplicate session for %s rejected", address)
		c.sendError(chat.ErrDuplicateSession)
		return
	}

	c.identity = ident
	c.state = stateAuthenticated
	c.mu.Unlock()

	c.session.registered(c, ident)
}

// handleChat validates, rate-limits, stores and broadcasts one chat
// message. Dropped messages (invalid, rate-limited) are lost from the
// sender's perspective; the client has to resubmit.
func (c *Client) handleChat(p chat.MessagePayload) {
	ident, ok := c.Identity()
	if !ok {
		c.sendError(chat.ErrNotAuthenticated)
		return
	}

	text := chat.SanitizeMessage(p.Message)
	if text == "" {
		c.sendError(chat.ErrInvalidMessage)
		return
	}

	if !c.session.limiter.Allow(ident.Address) {
		c.lgr.Debugf("[chat] rate limited %s", ident.Address)
		c.sendError(chat.ErrRateLimitExceeded)
		return
	}

	// an incomplete reply quote downgrades to no reply, it is not an error
	var quote *chat.ReplyQuote
	if p.ReplyTo.Complete() {
		quote = &chat.ReplyQuote{
			ID:       strings.TrimSpace(p.ReplyTo.ID),
			Username: strings.TrimSpace(p.ReplyTo.Username),
			Message:  chat.SanitizeMessage(p.ReplyTo.Message),
		}
	}

	stored := c.session.history.Append(chat.ChatMessage{
		Address:  ident.Address,
		Username: ident.Username,
		Message:  text,
		ReplyTo:  quote,
	})

	c.session.BroadcastAll(chat.MustEncode(chat.FrameMessage, stored))
}

// handleFrame dispatches one decoded inbound frame.
func (c *Client) handleFrame(f *chat.Frame) {

	switch f.Type {
	case chat.FrameAuthenticate:
		var p chat.AuthPayload
		if err := json.Unmarshal(f.Data, &p); err != nil {
			c.sendErrorText("malformed authenticate payload")
			return
		}
		c.Authenticate(p.Address, p.Username)

	case chat.FrameMessage:
		var p chat.MessagePayload
		if err := json.Unmarshal(f.Data, &p); err != nil {
			c.sendErrorText("malformed message payload")
			return
		}
		c.handleChat(p)

	case chat.FrameGetInventory:
		c.withGame(func(ctx context.Context, g *fishing.Game, address string) {
			inv, err := g.Inventory(ctx, address)
			if err != nil {
				c.sendError(err)
				return
			}
			c.enqueue(chat.MustEncode(chat.FrameInventoryUpdate, inv))
		})

	case chat.FrameCatch:
		c.withGame(func(ctx context.Context, g *fishing.Game, address string) {
			res, err := g.Catch(ctx, address)
			if err != nil {
				c.sendError(err)
				return
			}
			c.enqueue(chat.MustEncode(chat.FrameCatchResult, res))
		})

	case chat.FrameSell:
		var p chat.SellPayload
		if err := json.Unmarshal(f.Data, &p); err != nil {
			c.sendErrorText("malformed sell payload")
			return
		}
		c.withGame(func(ctx context.Context, g *fishing.Game, address string) {
			res, err := g.Sell(ctx, address, p.ItemID, p.Quantity)
			if err != nil {
				c.sendError(err)
				return
			}
			c.enqueue(chat.MustEncode(chat.FrameSellResult, res))
		})

	case chat.FrameBuyBait:
		var p chat.BuyBaitPayload
		if err := json.Unmarshal(f.Data, &p); err != nil {
			c.sendErrorText("malformed buyBait payload")
			return
		}
		c.withGame(func(ctx context.Context, g *fishing.Game, address string) {
			res, err := g.BuyBait(ctx, address, p.Quantity)
			if err != nil {
				c.sendError(err)
				return
			}
			c.enqueue(chat.MustEncode(chat.FrameShopResult, res))
		})

	case chat.FrameBuyRod:
		c.withGame(func(ctx context.Context, g *fishing.Game, address string) {
			res, err := g.BuyRod(ctx, address)
			if err != nil {
				c.sendError(err)
				return
			}
			c.enqueue(chat.MustEncode(chat.FrameShopResult, res))
		})

	default:
		c.sendErrorText("unknown frame type: " + f.Type)
	}
}

// withGame runs a fishing operation for the authenticated identity.
func (c *Client) withGame(op func(ctx context.Context, g *fishing.Game, address string)) {
	ident, ok := c.Identity()
	if !ok {
		c.sendError(chat.ErrNotAuthenticated)
		return
	}
	g := c.session.game
	if g == nil {
		c.sendErrorText("fishing is not available")
		return
	}
	op(context.Background(), g, ident.Address)
}

// ReceiveMsg is the read loop. It returns when the transport closes; the
// caller is responsible for releasing the client via Session.Remove.
func (c *Client) ReceiveMsg() error {
	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err,
				websocket.CloseNormalClosure,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure) || errors.Is(err, io.EOF) {
				c.lgr.Debugf("[receive] connection closed: %v", err)
				return nil
			}
			return err
		}

		f, err := chat.Decode(raw)
		if err != nil {
			// a malformed frame never closes the connection
			c.lgr.Debugf("[receive] %v", err)
			c.sendErrorText("malformed frame")
			continue
		}

		c.handleFrame(f)
	}
}

// writeLoop drains the send queue onto the wire and keeps the connection
// alive with pings.
func (c *Client) writeLoop() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case frame, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				c.lgr.Debugf("[write] %v", err)
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.lgr.Debugf("[write] ping: %v", err)
				return
			}
		}
	}
}

// enqueue hands a frame to the write loop without ever blocking the
// caller. A full queue means a slow or dead peer; the frame is dropped
// and logged, never retried.
func (c *Client) enqueue(frame []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == stateClosed {
		return false
	}

	select {
	case c.send <- frame:
		return true
	default:
		c.lgr.Warnf("[enqueue] send queue full, dropping frame for %s", c.IP)
		return false
	}
}

func (c *Client) sendError(err error) {
	c.lgr.Debugf("[error-frame] %v", err)
	c.enqueue(chat.MustEncode(chat.FrameError, chat.ErrorPayload{Message: err.Error()}))
}

func (c *Client) sendErrorText(msg string) {
	c.sendError(errors.New(msg))
}
