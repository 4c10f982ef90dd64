package services

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vmetanov/castline/internal/chat"
	"github.com/vmetanov/castline/tools/metrics"
)

// History is the bounded, append-only chat log. When the cap is exceeded
// the oldest messages are silently dropped, not archived.
type History struct {
	mtx      sync.Mutex
	limit    int
	messages []chat.ChatMessage
	total    uint64
}

func NewHistory(limit int) *History {
	if limit < 1 {
		limit = chat.MaxHistory
	}
	return &History{limit: limit}
}

// Append assigns a fresh id and server timestamp, stores the message and
// returns the stored value. Messages are write-once; there is no edit or
// delete.
func (h *History) Append(m chat.ChatMessage) chat.ChatMessage {
	m.ID = uuid.NewString()
	m.Timestamp = time.Now().UTC()

	h.mtx.Lock()
	h.messages = append(h.messages, m)
	if over := len(h.messages) - h.limit; over > 0 {
		h.messages = append([]chat.ChatMessage(nil), h.messages[over:]...)
	}
	h.total++
	h.mtx.Unlock()

	metrics.ChMessageStored <- 1
	return m
}

// Tail returns the most recent n messages in chronological order.
func (h *History) Tail(n int) []chat.ChatMessage {
	h.mtx.Lock()
	defer h.mtx.Unlock()

	if n > len(h.messages) {
		n = len(h.messages)
	}
	if n < 1 {
		return []chat.ChatMessage{}
	}
	out := make([]chat.ChatMessage, n)
	copy(out, h.messages[len(h.messages)-n:])
	return out
}

func (h *History) Len() int {
	h.mtx.Lock()
	defer h.mtx.Unlock()
	return len(h.messages)
}

// Total is the number of messages appended since start, including the
// ones already trimmed from the log.
func (h *History) Total() uint64 {
	h.mtx.Lock()
	defer h.mtx.Unlock()
	return h.total
}
