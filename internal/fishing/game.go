// Package fishing is the game-economy collaborator of the chat core:
// simple resource trading (catch, sell, buy) against a per-address
// inventory. It has no protocol state of its own; every operation is a
// load-mutate-save round trip pushed back to the owning connection when
// that address is online.
package fishing

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vmetanov/castline/internal/chat"
)

var (
	ErrNoBait          = errors.New("no bait left, buy some first")
	ErrNotEnoughCoins  = errors.New("not enough coins")
	ErrUnknownSpecies  = errors.New("unknown item")
	ErrNotEnoughItems  = errors.New("not enough items to sell")
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
	ErrMaxRodTier      = errors.New("rod is already fully upgraded")
	ErrNoLeaderboard   = errors.New("leaderboard is not available")
)

// Notifier pushes a frame to the connection currently bound to the
// address, if any. Implemented by the chat session.
type Notifier interface {
	Notify(address string, frame []byte) bool
}

// CatchResult reports one fishing attempt.
type CatchResult struct {
	Species  Species `json:"species"`
	BaitLeft int     `json:"baitLeft"`
}

// SellResult reports a completed sale.
type SellResult struct {
	ItemID   string `json:"itemId"`
	Quantity int    `json:"quantity"`
	Earned   int    `json:"earned"`
	Coins    int    `json:"coins"`
}

// ShopResult reports a completed purchase.
type ShopResult struct {
	Item     string `json:"item"`
	Quantity int    `json:"quantity"`
	Cost     int    `json:"cost"`
	Coins    int    `json:"coins"`
}

// Game owns the inventory operations. A single mutex serializes the
// load-mutate-save cycles so two operations on one address cannot
// interleave.
type Game struct {
	mu       sync.Mutex
	repo     InventoryRepo
	notifier Notifier
	rng      *rand.Rand
	lgr      *log.Logger
}

func NewGame(repo InventoryRepo) *Game {
	return &Game{
		repo: repo,
		rng:  rand.New(rand.NewSource(time.Now().UnixNano())),
		lgr:  log.StandardLogger(),
	}
}

// SetNotifier wires the session lookup used for inventoryUpdate pushes.
func (g *Game) SetNotifier(n Notifier) {
	g.mu.Lock()
	g.notifier = n
	g.mu.Unlock()
}

// Inventory returns the address' inventory, creating a starter one on
// first sight.
func (g *Game) Inventory(ctx context.Context, address string) (*Inventory, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.load(ctx, address)
}

// Catch consumes one bait and draws a species, weighted by rarity and
// the rod tier.
func (g *Game) Catch(ctx context.Context, address string) (*CatchResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	inv, err := g.load(ctx, address)
	if err != nil {
		return nil, err
	}
	if inv.Bait < 1 {
		return nil, ErrNoBait
	}

	sp := g.draw(inv.RodTier)
	inv.Bait--
	inv.Items[sp.ID]++

	if err := g.save(ctx, inv); err != nil {
		return nil, err
	}
	g.lgr.Debugf("[catch] %s caught %s, %d bait left", address, sp.ID, inv.Bait)
	return &CatchResult{Species: sp, BaitLeft: inv.Bait}, nil
}

// Sell exchanges qty items of the species for coins.
func (g *Game) Sell(ctx context.Context, address, speciesID string, qty int) (*SellResult, error) {
	if qty < 1 {
		return nil, ErrInvalidQuantity
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	sp, ok := SpeciesByID(speciesID)
	if !ok {
		return nil, ErrUnknownSpecies
	}

	inv, err := g.load(ctx, address)
	if err != nil {
		return nil, err
	}
	if inv.Items[speciesID] < qty {
		return nil, ErrNotEnoughItems
	}

	inv.Items[speciesID] -= qty
	if inv.Items[speciesID] == 0 {
		delete(inv.Items, speciesID)
	}
	earned := sp.Value * qty
	inv.Coins += earned

	if err := g.save(ctx, inv); err != nil {
		return nil, err
	}
	return &SellResult{ItemID: speciesID, Quantity: qty, Earned: earned, Coins: inv.Coins}, nil
}

// BuyBait purchases qty bait at the fixed unit price.
func (g *Game) BuyBait(ctx context.Context, address string, qty int) (*ShopResult, error) {
	if qty < 1 {
		return nil, ErrInvalidQuantity
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	inv, err := g.load(ctx, address)
	if err != nil {
		return nil, err
	}

	cost := baitCost * qty
	if inv.Coins < cost {
		return nil, ErrNotEnoughCoins
	}
	inv.Coins -= cost
	inv.Bait += qty

	if err := g.save(ctx, inv); err != nil {
		return nil, err
	}
	return &ShopResult{Item: "bait", Quantity: qty, Cost: cost, Coins: inv.Coins}, nil
}

// BuyRod upgrades the rod one tier; the price scales with the current
// tier.
func (g *Game) BuyRod(ctx context.Context, address string) (*ShopResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	inv, err := g.load(ctx, address)
	if err != nil {
		return nil, err
	}
	if inv.RodTier >= maxRodTier {
		return nil, ErrMaxRodTier
	}

	cost := rodCostBase * inv.RodTier
	if inv.Coins < cost {
		return nil, ErrNotEnoughCoins
	}
	inv.Coins -= cost
	inv.RodTier++

	if err := g.save(ctx, inv); err != nil {
		return nil, err
	}
	return &ShopResult{Item: "rod", Quantity: 1, Cost: cost, Coins: inv.Coins}, nil
}

// Richest lists the top-n inventories by coins. Read-only; it bypasses
// the game mutex and relies on the repository's own locking.
func (g *Game) Richest(ctx context.Context, n int) ([]Inventory, error) {
	lb, ok := g.repo.(Leaderboard)
	if !ok {
		return nil, ErrNoLeaderboard
	}
	if n < 1 {
		n = 10
	}
	return lb.Richest(ctx, n)
}

func (g *Game) load(ctx context.Context, address string) (*Inventory, error) {
	inv, err := g.repo.Load(ctx, address)
	if errors.Is(err, ErrNotFound) {
		return newInventory(address), nil
	}
	if err != nil {
		return nil, fmt.Errorf("load inventory for %s: %w", address, err)
	}
	if inv.Items == nil {
		inv.Items = make(map[string]int)
	}
	return inv, nil
}

// save persists the inventory and pushes an inventoryUpdate to the
// owning connection when that address is currently registered.
func (g *Game) save(ctx context.Context, inv *Inventory) error {
	inv.UpdatedAt = time.Now().UTC()
	if err := g.repo.Save(ctx, inv); err != nil {
		return fmt.Errorf("save inventory for %s: %w", inv.Address, err)
	}

	if g.notifier != nil {
		frame, err := chat.Encode(chat.FrameInventoryUpdate, inv)
		if err != nil {
			g.lgr.Errorf("[inventory-push] encode failed for %s: %v", inv.Address, err)
			return nil
		}
		g.notifier.Notify(inv.Address, frame)
	}
	return nil
}

// draw picks one species with weights shifted by the rod tier.
func (g *Game) draw(rodTier int) Species {
	if rodTier < 1 {
		rodTier = 1
	}

	total := 0
	weights := make([]int, len(speciesTable))
	for i, s := range speciesTable {
		w := s.Weight + (rodTier-1)*s.TierWeight
		if w < 1 {
			w = 1
		}
		weights[i] = w
		total += w
	}

	n := g.rng.Intn(total)
	for i, w := range weights {
		if n < w {
			return speciesTable[i]
		}
		n -= w
	}
	return speciesTable[len(speciesTable)-1]
}
