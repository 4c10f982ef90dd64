// Package chat holds the domain objects of the castline chat protocol:
// identities, chat messages, reply quotes and the wire frames exchanged
// over the websocket connection.
package chat

import "time"

const (
	// MaxMessageLen is the cap applied to a chat message text after trimming.
	MaxMessageLen = 500

	// MaxHistory is the upper bound of messages kept in the in-process log.
	MaxHistory = 1000

	// HistoryReplay is how many messages a freshly authenticated client receives.
	HistoryReplay = 50
)

// Identity is one connected participant: a wallet-style address paired
// with a display username. At most one live connection per address.
type Identity struct {
	Address  string    `json:"address"`
	Username string    `json:"username"`
	JoinedAt time.Time `json:"joinedAt"`
}

// ReplyQuote is a client-supplied snapshot of an earlier message attached
// to a new message as a lightweight citation. The three fields are taken
// from the client as-is and re-sanitized; they are NOT re-fetched from
// the message log.
type ReplyQuote struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Message  string `json:"message"`
}

// Complete reports whether all three quote fields are present. Incomplete
// quotes are downgraded to "no reply" rather than rejected.
func (q *ReplyQuote) Complete() bool {
	return q != nil && q.ID != "" && q.Username != "" && q.Message != ""
}

// ChatMessage is immutable once stored.
type ChatMessage struct {
	ID        string      `json:"id"`
	Address   string      `json:"address"`
	Username  string      `json:"username"`
	Message   string      `json:"message"`
	Timestamp time.Time   `json:"timestamp"`
	ReplyTo   *ReplyQuote `json:"replyTo,omitempty"`
}
