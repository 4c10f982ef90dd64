package fishing

import "time"

// Species is one catchable item kind. Weight drives the random draw;
// TierWeight is added per rod tier above the first, so better rods shift
// the odds toward the rarer species.
type Species struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Value      int    `json:"value"`
	Weight     int    `json:"-"`
	TierWeight int    `json:"-"`
}

var speciesTable = []Species{
	{ID: "boot", Name: "Old Boot", Value: 1, Weight: 240, TierWeight: -30},
	{ID: "anchovy", Name: "Anchovy", Value: 3, Weight: 300, TierWeight: 0},
	{ID: "herring", Name: "Herring", Value: 5, Weight: 220, TierWeight: 5},
	{ID: "mackerel", Name: "Mackerel", Value: 9, Weight: 120, TierWeight: 15},
	{ID: "seabass", Name: "Sea Bass", Value: 18, Weight: 70, TierWeight: 25},
	{ID: "tuna", Name: "Bluefin Tuna", Value: 45, Weight: 30, TierWeight: 30},
	{ID: "marlin", Name: "Blue Marlin", Value: 110, Weight: 8, TierWeight: 20},
	{ID: "kraken", Name: "Baby Kraken", Value: 400, Weight: 1, TierWeight: 5},
}

// SpeciesByID looks up a species from the table.
func SpeciesByID(id string) (Species, bool) {
	for _, s := range speciesTable {
		if s.ID == id {
			return s, true
		}
	}
	return Species{}, false
}

// Inventory is the per-address game state. Items stacks caught species
// by id.
type Inventory struct {
	Address   string         `json:"address" firestore:"address"`
	Coins     int            `json:"coins" firestore:"coins"`
	Bait      int            `json:"bait" firestore:"bait"`
	RodTier   int            `json:"rodTier" firestore:"rod_tier"`
	Items     map[string]int `json:"items" firestore:"items"`
	UpdatedAt time.Time      `json:"updatedAt" firestore:"updated_at"`
}

// Economy constants. Tuning these is out of scope, they only need to be
// consistent.
const (
	startCoins  = 100
	startBait   = 5
	baitCost    = 2
	rodCostBase = 50
	maxRodTier  = 5
)

func newInventory(address string) *Inventory {
	return &Inventory{
		Address: address,
		Coins:   startCoins,
		Bait:    startBait,
		RodTier: 1,
		Items:   make(map[string]int),
	}
}
