package services

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vmetanov/castline/internal/chat"
)

func TestLedgerAddRejectsDuplicateAddress(t *testing.T) {
	l := NewLedger()
	first := &Client{}
	second := &Client{}

	ok, _ := l.Add(chat.Identity{Address: testAddr, Username: "alice"}, first)
	require.True(t, ok)

	ok, holder := l.Add(chat.Identity{Address: testAddr, Username: "impostor"}, second)
	require.False(t, ok)
	require.Same(t, first, holder)
	require.Equal(t, 1, l.Len())
}

func TestLedgerAddressKeysAreExact(t *testing.T) {
	l := NewLedger()
	lower := "0x00000000000000000000000000000000000000ab"
	upper := "0x00000000000000000000000000000000000000AB"

	ok, _ := l.Add(chat.Identity{Address: lower, Username: "alice"}, &Client{})
	require.True(t, ok)

	// differently-cased hex is a distinct key, not a duplicate
	ok, _ = l.Add(chat.Identity{Address: upper, Username: "bob"}, &Client{})
	require.True(t, ok)
	require.Equal(t, 2, l.Len())
}

func TestLedgerRemoveFreesAddress(t *testing.T) {
	l := NewLedger()
	c := &Client{}

	l.Add(chat.Identity{Address: testAddr, Username: "alice"}, c)

	ident, ok := l.Remove(c)
	require.True(t, ok)
	require.Equal(t, "alice", ident.Username)
	require.Equal(t, testAddr, ident.Address)
	require.Equal(t, 0, l.Len())

	// address is reusable after removal
	ok, _ = l.Add(chat.Identity{Address: testAddr, Username: "alice"}, &Client{})
	require.True(t, ok)
}

func TestLedgerRemoveUnknownClient(t *testing.T) {
	l := NewLedger()

	_, ok := l.Remove(&Client{})
	require.False(t, ok)

	c := &Client{}
	l.Add(chat.Identity{Address: testAddr}, c)
	l.Remove(c)
	_, ok = l.Remove(c)
	require.False(t, ok, "second removal is a no-op")
}

func TestLedgerSnapshots(t *testing.T) {
	l := NewLedger()
	a := &Client{}
	b := &Client{}
	l.Add(chat.Identity{Address: testAddr, Username: "alice"}, a)
	l.Add(chat.Identity{Address: "0x00000000000000000000000000000000000000bb", Username: "bob"}, b)

	require.Same(t, a, l.Get(testAddr))
	require.Nil(t, l.Get("0x00000000000000000000000000000000000000cc"))

	idents := l.Active()
	require.Len(t, idents, 2)
	names := map[string]bool{}
	for _, id := range idents {
		names[id.Username] = true
	}
	require.True(t, names["alice"] && names["bob"])

	require.Len(t, l.Clients(), 2)
}
