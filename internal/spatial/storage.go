package spatial

import "github.com/yashchitneni/shipfast-sub003/internal/catalog"

// Storage network bonus parameters. Both terms are capped independently and
// then summed, so a sprawling network of small depots and a compact network
// of huge ones top out at the same 0.30.
const (
	networkSizeBonusPerExtra = 0.02
	networkSizeBonusCap      = 0.20

	capacityBonusScale   = 0.75
	capacityBonusDivisor = 750_000.0
	capacityBonusCap     = 0.10
)

// StorageNetworkBonus returns the efficiency bonus a player's warehouse
// network grants: a "network size" term growing with each warehouse beyond
// the first, plus a "total capacity" term.
func StorageNetworkBonus(warehouses []Source, defs map[string]catalog.AssetDefinition) float64 {
	count := 0
	totalCapacity := 0.0
	for _, w := range warehouses {
		def, ok := defs[w.DefinitionID]
		if !ok {
			continue
		}
		count++
		totalCapacity += def.Capacity
	}
	if count == 0 {
		return 0
	}

	sizeBonus := float64(count-1) * networkSizeBonusPerExtra
	if sizeBonus > networkSizeBonusCap {
		sizeBonus = networkSizeBonusCap
	}

	capacityBonus := totalCapacity / capacityBonusDivisor * capacityBonusScale
	if capacityBonus > capacityBonusCap {
		capacityBonus = capacityBonusCap
	}

	return sizeBonus + capacityBonus
}

// UtilizationPenalty returns the congestion penalty for a location's
// utilization ratio. Tiers, not a curve: congestion costs nothing until a
// location runs hot.
func UtilizationPenalty(utilization float64) float64 {
	switch {
	case utilization >= 0.95:
		return 0.20
	case utilization >= 0.90:
		return 0.10
	case utilization >= 0.80:
		return 0.05
	default:
		return 0
	}
}

// Cargo types recognized by storage capability checks.
const (
	CargoGeneral               = "general"
	CargoStandard              = "standard"
	CargoPerishable            = "perishable"
	CargoTemperatureControlled = "temperature_controlled"
	CargoHazardous             = "hazardous"
	CargoOversized             = "oversized"
)

// storageWhitelist maps a storage subtype to the cargo types it accepts.
// Hazardous and oversized cargo have no home in either subtype.
var storageWhitelist = map[string]map[string]bool{
	catalog.StorageSpecialized: {
		CargoPerishable:            true,
		CargoTemperatureControlled: true,
	},
	catalog.StorageStandard: {
		CargoGeneral:  true,
		CargoStandard: true,
	},
}

// CanStoreCargoType reports whether a warehouse definition accepts a cargo
// type, by its storage subtype.
func CanStoreCargoType(def *catalog.AssetDefinition, cargoType string) bool {
	if def == nil {
		return false
	}
	return storageWhitelist[def.StorageType][cargoType]
}
