package fishing

import (
	"context"
	"errors"
	"sort"
	"sync"
)

// ErrNotFound is returned by a repository when no inventory exists yet
// for the address. The game treats it as "create a starter inventory".
var ErrNotFound = errors.New("inventory not found")

// InventoryRepo persists per-address inventories.
type InventoryRepo interface {
	Load(ctx context.Context, address string) (*Inventory, error)
	Save(ctx context.Context, inv *Inventory) error
}

// Leaderboard is an optional repository capability: list the n richest
// inventories, coins descending. The firestore backend answers it with
// an ordered query, the memory backend sorts its snapshot.
type Leaderboard interface {
	Richest(ctx context.Context, n int) ([]Inventory, error)
}

// memoryRepo keeps inventories in-process. It is the default backend when
// no firestore project is configured and the backend the tests run on.
type memoryRepo struct {
	mu          sync.Mutex
	inventories map[string]Inventory
}

func NewMemoryRepo() InventoryRepo {
	return &memoryRepo{inventories: make(map[string]Inventory)}
}

func (r *memoryRepo) Load(_ context.Context, address string) (*Inventory, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	inv, ok := r.inventories[address]
	if !ok {
		return nil, ErrNotFound
	}
	cp := inv
	cp.Items = make(map[string]int, len(inv.Items))
	for k, v := range inv.Items {
		cp.Items[k] = v
	}
	return &cp, nil
}

func (r *memoryRepo) Save(_ context.Context, inv *Inventory) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cp := *inv
	cp.Items = make(map[string]int, len(inv.Items))
	for k, v := range inv.Items {
		cp.Items[k] = v
	}
	r.inventories[inv.Address] = cp
	return nil
}

func (r *memoryRepo) Richest(_ context.Context, n int) ([]Inventory, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Inventory, 0, len(r.inventories))
	for _, inv := range r.inventories {
		cp := inv
		cp.Items = make(map[string]int, len(inv.Items))
		for k, v := range inv.Items {
			cp.Items[k] = v
		}
		out = append(out, cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Coins > out[j].Coins })
	if n < len(out) {
		out = out[:n]
	}
	return out, nil
}
