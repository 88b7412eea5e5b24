package ledger

import (
	"github.com/google/uuid"

	"github.com/yashchitneni/shipfast-sub003/internal/catalog"
)

// Asset status values.
const (
	AssetActive      = "active"
	AssetUnderRepair = "under_repair"
)

// PurchaseAsset buys an asset from a catalog definition and places it.
// Cash decreases by the definition cost and an expense entry is journaled;
// a short balance rejects the purchase with nothing mutated.
func (l *Ledger) PurchaseAsset(def *catalog.AssetDefinition, pos catalog.Position, rotation float64) (*PlacedAsset, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if def == nil {
		return nil, &ValidationError{Field: "definition", Msg: "unknown asset definition"}
	}
	if def.Cost > l.cash {
		return nil, &InsufficientFundsError{Required: def.Cost, Available: l.cash, Reason: "asset purchase"}
	}

	asset := &PlacedAsset{
		ID:           uuid.New(),
		DefinitionID: def.ID,
		OwnerID:      l.playerID,
		Position:     pos,
		Rotation:     rotation,
		Status:       AssetActive,
		Health:       1.0,
	}

	if _, err := l.recordLocked(Expense, "asset_purchase", def.Cost, "purchased "+def.Name, nowFn()); err != nil {
		return nil, err
	}
	l.assets[asset.ID] = asset
	l.assetValue += def.Cost

	return asset, nil
}

// SellAsset destroys a placed asset and credits the sale price back. The
// resale value is a fraction of the original cost.
const assetResaleFraction = 0.6

func (l *Ledger) SellAsset(assetID uuid.UUID, def *catalog.AssetDefinition) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	asset, ok := l.assets[assetID]
	if !ok {
		return &ValidationError{Field: "asset", Msg: "no placed asset with id " + assetID.String()}
	}
	if def == nil || def.ID != asset.DefinitionID {
		return &ValidationError{Field: "definition", Msg: "definition does not match placed asset"}
	}

	sale := def.Cost * assetResaleFraction
	if _, err := l.recordLocked(Income, "asset_sale", sale, "sold "+def.Name, nowFn()); err != nil {
		return err
	}
	delete(l.assets, assetID)
	l.assetValue -= def.Cost
	if l.assetValue < 0 {
		l.assetValue = 0
	}
	return nil
}

// Assets returns copies of the player's placed assets.
func (l *Ledger) Assets() []PlacedAsset {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]PlacedAsset, 0, len(l.assets))
	for _, a := range l.assets {
		out = append(out, *a)
	}
	return out
}

// AssetByID returns a copy of one placed asset.
func (l *Ledger) AssetByID(id uuid.UUID) (PlacedAsset, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	a, ok := l.assets[id]
	if !ok {
		return PlacedAsset{}, false
	}
	return *a, true
}
