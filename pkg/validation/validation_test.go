package validation

import (
	"strings"
	"testing"
	"time"

	"maintenance-tracker-api/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestValidateMAC(t *testing.T) {
	tests := []struct {
		name        string
		mac         string
		expectError bool
		expected    string
	}{
		{
			name:        "Valid MAC with colons",
			mac:         "AA:BB:CC:DD:EE:FF",
			expectError: false,
			expected:    "AA:BB:CC:DD:EE:FF",
		},
		{
			name:        "Valid MAC with hyphens",
			mac:         "AA-BB-CC-DD-EE-FF",
			expectError: false,
			expected:    "AA:BB:CC:DD:EE:FF",
		},
		{
			name:        "Valid MAC lowercase",
			mac:         "aa:bb:cc:dd:ee:ff",
			expectError: false,
			expected:    "AA:BB:CC:DD:EE:FF",
		},
		{
			name:        "Invalid MAC too short",
			mac:         "AA:BB:CC:DD:EE",
			expectError: true,
		},
		{
			name:        "Invalid MAC too long",
			mac:         "AA:BB:CC:DD:EE:FF:GG",
			expectError: true,
		},
		{
			name:        "Invalid MAC characters",
			mac:         "ZZ:BB:CC:DD:EE:FF",
			expectError: true,
		},
		{
			name:        "Invalid MAC format",
			mac:         "invalid-mac",
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := ValidateMAC(tt.mac)

			if tt.expectError {
				if err == nil {
					t.Errorf("Expected error for MAC %s, but got none", tt.mac)
				}
			} else {
				if err != nil {
					t.Errorf("Unexpected error for MAC %s: %v", tt.mac, err)
				}
				if result != tt.expected {
					t.Errorf("Expected normalized MAC %s, got %s", tt.expected, result)
				}
			}
		})
	}
}

func TestValidateIP(t *testing.T) {
	tests := []struct {
		name        string
		ip          string
		expectError bool
	}{
		{
			name:        "Valid IPv4",
			ip:          "192.168.1.1",
			expectError: false,
		},
		{
			name:        "Valid IPv6",
			ip:          "2001:0db8:85a3:0000:0000:8a2e:0370:7334",
			expectError: false,
		},
		{
			name:        "Invalid IP",
			ip:          "256.256.256.256",
			expectError: true,
		},
		{
			name:        "Invalid IP format",
			ip:          "not-an-ip",
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateIP(tt.ip)

			if tt.expectError {
				if err == nil {
					t.Errorf("Expected error for IP %s, but got none", tt.ip)
				}
			} else {
				if err != nil {
					t.Errorf("Unexpected error for IP %s: %v", tt.ip, err)
				}
			}
		})
	}
}

func TestValidatePersonName(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		expectError bool
	}{
		{name: "Simple name", input: "Dana Ruiz", expectError: false},
		{name: "Apostrophe and hyphen", input: "Ciarán O'Neil-Smith", expectError: false},
		{name: "Too short", input: "A", expectError: true},
		{name: "Too long", input: strings.Repeat("a", 101), expectError: true},
		{name: "Invalid characters", input: "root; DROP TABLE", expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePersonName("technician", tt.input)
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateAssetTag(t *testing.T) {
	assert.NoError(t, ValidateAssetTag("IT-2024/0017"))
	assert.Error(t, ValidateAssetTag(""))
	assert.Error(t, ValidateAssetTag("-leading"))
	assert.Error(t, ValidateAssetTag("has space"))
	assert.Error(t, ValidateAssetTag(strings.Repeat("A", MaxAssetTagLength+1)))
}

func TestValidateEquipmentInput(t *testing.T) {
	purchase := time.Date(2023, 1, 10, 0, 0, 0, 0, time.UTC)
	before := purchase.AddDate(0, -1, 0)

	tests := []struct {
		name           string
		equipment      model.Equipment
		expectedFields []string
	}{
		{
			name: "Valid equipment",
			equipment: model.Equipment{
				Name:       "WS-FIN-01",
				AssetTag:   "IT-0001",
				MACAddress: "aa-bb-cc-dd-ee-ff",
				IPAddress:  "10.0.0.12",
				AssignedTo: "Dana Ruiz",
				Status:     model.StatusActive,
			},
		},
		{
			name: "Valid equipment without network fields",
			equipment: model.Equipment{
				Name:     "WS-FIN-02",
				AssetTag: "IT-0002",
			},
		},
		{
			name: "Multiple validation errors",
			equipment: model.Equipment{
				MACAddress:              "invalid-mac",
				IPAddress:               "invalid-ip",
				Status:                  "broken",
				RAMGB:                   -1,
				MaintenanceIntervalDays: -5,
				PurchaseDate:            &purchase,
				WarrantyExpiry:          &before,
			},
			expectedFields: []string{"name", "asset_tag", "mac_address", "ip_address", "status", "ram_gb", "maintenance_interval_days", "warranty_expiry"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := ValidateEquipmentInput(&tt.equipment)

			assert.Len(t, errs, len(tt.expectedFields), "errors: %v", errs)
			for _, field := range tt.expectedFields {
				assert.Contains(t, errs, field)
			}
		})
	}
}

func TestValidateEquipmentInput_NormalizesMAC(t *testing.T) {
	e := model.Equipment{Name: "WS-01", AssetTag: "IT-1", MACAddress: "aa-bb-cc-dd-ee-ff"}

	errs := ValidateEquipmentInput(&e)

	assert.Empty(t, errs)
	assert.Equal(t, "AA:BB:CC:DD:EE:FF", e.MACAddress)
}

func TestValidatePeripheralInput(t *testing.T) {
	valid := model.Peripheral{Name: "Front desk printer", AssetTag: "PR-001", Type: model.PeripheralPrinter}
	assert.Empty(t, ValidatePeripheralInput(&valid))

	invalid := model.Peripheral{Type: "fax", Status: "lost"}
	errs := ValidatePeripheralInput(&invalid)
	assert.Contains(t, errs, "name")
	assert.Contains(t, errs, "asset_tag")
	assert.Contains(t, errs, "type")
	assert.Contains(t, errs, "status")
}

func TestValidateMaintenanceInput(t *testing.T) {
	valid := model.MaintenanceRecord{
		AssetKind:   model.AssetKindEquipment,
		AssetID:     uuid.New(),
		Kind:        model.MaintenancePreventive,
		PerformedAt: time.Now(),
		Technician:  "Lee Park",
		Description: "Cleaned fans and applied OS updates",
	}
	assert.Empty(t, ValidateMaintenanceInput(&valid))

	errs := ValidateMaintenanceInput(&model.MaintenanceRecord{DurationMinutes: -1})
	for _, field := range []string{"asset_kind", "asset_id", "kind", "performed_at", "technician", "description", "duration_minutes"} {
		assert.Contains(t, errs, field)
	}
}

func TestValidateTicketInput(t *testing.T) {
	assetID := uuid.New()

	tests := []struct {
		name           string
		ticket         model.Ticket
		expectedFields []string
	}{
		{
			name:   "Valid ticket without asset",
			ticket: model.Ticket{Title: "VPN drops every hour", Priority: model.PriorityHigh},
		},
		{
			name:   "Valid ticket with asset",
			ticket: model.Ticket{Title: "Paper jam", AssetKind: model.AssetKindPeripheral, AssetID: &assetID},
		},
		{
			name:           "Asset id without kind",
			ticket:         model.Ticket{Title: "No boot", AssetID: &assetID},
			expectedFields: []string{"asset_kind"},
		},
		{
			name:           "Asset kind without id",
			ticket:         model.Ticket{Title: "No boot", AssetKind: model.AssetKindEquipment},
			expectedFields: []string{"asset_id"},
		},
		{
			name:           "Missing title and bad priority",
			ticket:         model.Ticket{Priority: "urgent", AssignedEngineer: "x"},
			expectedFields: []string{"title", "priority", "assigned_engineer"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := ValidateTicketInput(&tt.ticket)

			assert.Len(t, errs, len(tt.expectedFields), "errors: %v", errs)
			for _, field := range tt.expectedFields {
				assert.Contains(t, errs, field)
			}
		})
	}
}
