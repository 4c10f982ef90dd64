package services

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vmetanov/castline/internal/chat"
)

func TestHistoryAppendAssignsIdentityFields(t *testing.T) {
	h := NewHistory(10)

	stored := h.Append(chat.ChatMessage{
		Address:  testAddr,
		Username: "alice",
		Message:  "hello",
	})

	require.NotEmpty(t, stored.ID)
	require.False(t, stored.Timestamp.IsZero())
	require.Equal(t, "hello", stored.Message)

	other := h.Append(chat.ChatMessage{Address: testAddr, Username: "alice", Message: "again"})
	require.NotEqual(t, stored.ID, other.ID)
}

func TestHistoryDropsOldestOverLimit(t *testing.T) {
	const limit = 50
	h := NewHistory(limit)

	for i := 0; i < limit+25; i++ {
		h.Append(chat.ChatMessage{Message: fmt.Sprintf("msg-%d", i)})
	}

	require.Equal(t, limit, h.Len())
	require.Equal(t, uint64(limit+25), h.Total())

	tail := h.Tail(limit)
	require.Len(t, tail, limit)
	require.Equal(t, "msg-25", tail[0].Message, "oldest surviving message")
	require.Equal(t, fmt.Sprintf("msg-%d", limit+24), tail[limit-1].Message)
}

func TestHistoryTailChronologicalOrder(t *testing.T) {
	h := NewHistory(100)
	for i := 0; i < 10; i++ {
		h.Append(chat.ChatMessage{Message: fmt.Sprintf("msg-%d", i)})
	}

	tail := h.Tail(4)
	require.Len(t, tail, 4)
	for i, m := range tail {
		require.Equal(t, fmt.Sprintf("msg-%d", 6+i), m.Message)
	}
}

func TestHistoryTailBounds(t *testing.T) {
	h := NewHistory(100)
	require.Empty(t, h.Tail(50), "empty log yields an empty, non-nil slice")
	require.NotNil(t, h.Tail(50))

	h.Append(chat.ChatMessage{Message: "only"})
	require.Len(t, h.Tail(50), 1)
	require.Empty(t, h.Tail(0))
	require.Empty(t, h.Tail(-3))
}

func TestHistoryPreservesReplyQuote(t *testing.T) {
	h := NewHistory(10)

	quoted := h.Append(chat.ChatMessage{Username: "alice", Message: "original"})
	reply := h.Append(chat.ChatMessage{
		Username: "bob",
		Message:  "agreed",
		ReplyTo: &chat.ReplyQuote{
			ID:       quoted.ID,
			Username: quoted.Username,
			Message:  quoted.Message,
		},
	})

	tail := h.Tail(1)
	require.NotNil(t, tail[0].ReplyTo)
	require.Equal(t, quoted.ID, tail[0].ReplyTo.ID)
	require.Equal(t, "original", tail[0].ReplyTo.Message)
	require.Equal(t, reply.ID, tail[0].ID)
}
