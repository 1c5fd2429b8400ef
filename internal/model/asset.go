package model

// AssetKind distinguishes the two kinds of maintainable assets.
type AssetKind string

const (
	AssetKindEquipment  AssetKind = "equipment"
	AssetKindPeripheral AssetKind = "peripheral"
)

// Valid reports whether k is a known asset kind.
func (k AssetKind) Valid() bool {
	return k == AssetKindEquipment || k == AssetKindPeripheral
}

// AssetStatus is the lifecycle status shared by equipment and peripherals.
type AssetStatus string

const (
	StatusActive    AssetStatus = "active"
	StatusInRepair  AssetStatus = "in_repair"
	StatusInStorage AssetStatus = "in_storage"
	StatusRetired   AssetStatus = "retired"
)

// AssetStatuses lists every status in display order.
var AssetStatuses = []AssetStatus{StatusActive, StatusInRepair, StatusInStorage, StatusRetired}

// Valid reports whether s is a known asset status.
func (s AssetStatus) Valid() bool {
	for _, known := range AssetStatuses {
		if s == known {
			return true
		}
	}
	return false
}
