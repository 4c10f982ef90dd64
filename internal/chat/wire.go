package chat

import (
	"encoding/json"
	"fmt"
)

// Frame types sent by clients.
const (
	FrameAuthenticate = "authenticate"
	FrameMessage      = "message"
	FrameGetInventory = "getInventory"
	FrameCatch        = "catch"
	FrameSell         = "sell"
	FrameBuyBait      = "buyBait"
	FrameBuyRod       = "buyRod"
)

// Frame types sent by the server.
const (
	FrameError           = "error"
	FrameChatHistory     = "chatHistory"
	FrameOnlineUsers     = "onlineUsers"
	FrameUserJoined      = "userJoined"
	FrameUserLeft        = "userLeft"
	FrameInventoryUpdate = "inventoryUpdate"
	FrameCatchResult     = "catchResult"
	FrameSellResult      = "sellResult"
	FrameShopResult      = "shopResult"
)

// Frame is the envelope of every message on the wire, both directions:
// {"type": "...", "data": {...}}.
type Frame struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// AuthPayload carries the credentials of an authenticate frame.
type AuthPayload struct {
	Address  string `json:"address"`
	Username string `json:"username"`
}

// MessagePayload carries an outgoing chat message with an optional quote.
type MessagePayload struct {
	Message string      `json:"message"`
	ReplyTo *ReplyQuote `json:"replyTo,omitempty"`
}

// SellPayload and BuyBaitPayload carry the shop operation arguments.
type SellPayload struct {
	ItemID   string `json:"itemId"`
	Quantity int    `json:"quantity"`
}

type BuyBaitPayload struct {
	Quantity int `json:"quantity"`
}

// ErrorPayload is delivered to the originating connection only.
type ErrorPayload struct {
	Message string `json:"message"`
}

// UserLeftPayload carries the address of a departed identity.
type UserLeftPayload struct {
	Address string `json:"address"`
}

// Encode marshals a complete wire frame. Marshal errors can only come
// from programmer mistakes in the payload types, so they surface as a
// frame-level error value instead of a panic.
func Encode(typ string, data interface{}) ([]byte, error) {
	var raw json.RawMessage
	if data != nil {
		b, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("encode %s frame: %w", typ, err)
		}
		raw = b
	}
	return json.Marshal(Frame{Type: typ, Data: raw})
}

// MustEncode is Encode for payloads known to be marshalable.
func MustEncode(typ string, data interface{}) []byte {
	b, err := Encode(typ, data)
	if err != nil {
		panic(err)
	}
	return b
}

// Decode parses a raw websocket text message into a Frame.
func Decode(raw []byte) (*Frame, error) {
	var f Frame
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("malformed frame: %w", err)
	}
	if f.Type == "" {
		return nil, fmt.Errorf("malformed frame: missing type")
	}
	return &f, nil
}
