// Package firestoredb implements the fishing inventory repository on top
// of Google Cloud Firestore. Each inventory is one document keyed by the
// owner address, exactly as submitted (no case normalization).
package firestoredb

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/vmetanov/castline/internal/fishing"
)

type inventoryRepo struct {
	client     *firestore.Client
	collection string
}

// NewInventoryRepository creates the firestore-backed inventory repo.
func NewInventoryRepository(client *firestore.Client, collection string) (fishing.InventoryRepo, error) {
	if client == nil {
		return nil, fmt.Errorf("firestore client must not be nil")
	}
	if collection == "" {
		return nil, fmt.Errorf("inventory collection name must not be empty")
	}
	return &inventoryRepo{client: client, collection: collection}, nil
}

func (r *inventoryRepo) Load(ctx context.Context, address string) (*fishing.Inventory, error) {

	doc, err := r.client.Collection(r.collection).Doc(address).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, fishing.ErrNotFound
		}
		return nil, fmt.Errorf("unable to get inventory from repository. error: %v", err)
	}

	var inv fishing.Inventory
	if err := doc.DataTo(&inv); err != nil {
		return nil, fmt.Errorf("unable to decode inventory document. error: %v", err)
	}
	if inv.Items == nil {
		inv.Items = make(map[string]int)
	}
	return &inv, nil
}

func (r *inventoryRepo) Save(ctx context.Context, inv *fishing.Inventory) error {

	if _, err := r.client.Collection(r.collection).Doc(inv.Address).Set(ctx, inv); err != nil {
		return fmt.Errorf("unable to save inventory in repository. error: %v", err)
	}
	return nil
}

// Richest returns up to n inventories ordered by coins, for the
// leaderboard surface.
func (r *inventoryRepo) Richest(ctx context.Context, n int) ([]fishing.Inventory, error) {

	q := r.client.Collection(r.collection).OrderBy("coins", firestore.Desc).Limit(n)
	it := q.Documents(ctx)

	var out []fishing.Inventory
	for {
		doc, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("unable to list inventories. error: %v", err)
		}
		var inv fishing.Inventory
		if err := doc.DataTo(&inv); err != nil {
			return nil, fmt.Errorf("unable to decode inventory document. error: %v", err)
		}
		out = append(out, inv)
	}
	return out, nil
}
