package services

import (
	"sync"

	"github.com/vmetanov/castline/internal/chat"
)

type ledgerEntry struct {
	client   *Client
	identity chat.Identity
}

// ledger is the session registry: it binds each verified identity to
// exactly one live connection. The address->entry and client->address
// views are mutated together under one lock so they can never diverge.
type ledger struct {
	mtx       *sync.Mutex
	byAddress map[string]ledgerEntry
	byClient  map[*Client]string
}

func NewLedger() *ledger {
	return &ledger{
		mtx:       &sync.Mutex{},
		byAddress: make(map[string]ledgerEntry),
		byClient:  make(map[*Client]string),
	}
}

// Add registers the identity under its address key if there is no active
// session for that exact address string and returns true. Otherwise it
// returns false and the already registered client, and does nothing.
func (l *ledger) Add(ident chat.Identity, c *Client) (bool, *Client) {
	l.mtx.Lock()
	defer l.mtx.Unlock()

	if ec, ok := l.byAddress[ident.Address]; ok {
		return false, ec.client
	}

	l.byAddress[ident.Address] = ledgerEntry{client: c, identity: ident}
	l.byClient[c] = ident.Address
	return true, nil
}

// Remove unbinds the identity registered for this client. It is a no-op
// when the client was never registered.
func (l *ledger) Remove(c *Client) (chat.Identity, bool) {
	l.mtx.Lock()
	defer l.mtx.Unlock()

	address, ok := l.byClient[c]
	if !ok {
		return chat.Identity{}, false
	}
	e := l.byAddress[address]
	delete(l.byAddress, address)
	delete(l.byClient, c)
	return e.identity, true
}

// Get answers the collaborator lookup: the live client currently bound to
// the address, or nil.
func (l *ledger) Get(address string) *Client {
	l.mtx.Lock()
	defer l.mtx.Unlock()

	return l.byAddress[address].client
}

// Active returns a snapshot of the registered identities. Order is not
// preserved.
func (l *ledger) Active() []chat.Identity {
	l.mtx.Lock()
	defer l.mtx.Unlock()

	out := make([]chat.Identity, 0, len(l.byAddress))
	for _, e := range l.byAddress {
		out = append(out, e.identity)
	}
	return out
}

// Clients returns a snapshot of the registered clients for broadcasting.
func (l *ledger) Clients() []*Client {
	l.mtx.Lock()
	defer l.mtx.Unlock()

	out := make([]*Client, 0, len(l.byAddress))
	for _, e := range l.byAddress {
		out = append(out, e.client)
	}
	return out
}

func (l *ledger) Len() int {
	l.mtx.Lock()
	defer l.mtx.Unlock()
	return len(l.byAddress)
}
