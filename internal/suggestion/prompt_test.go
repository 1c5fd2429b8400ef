package suggestion

import (
	"testing"
	"time"

	"maintenance-tracker-api/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func date(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func TestBuildPrompt_Equipment(t *testing.T) {
	h := &History{
		Kind: model.AssetKindEquipment,
		Equipment: &model.Equipment{
			ID:                      uuid.New(),
			Name:                    "Reception Desktop",
			AssetTag:                "PC-0001",
			Manufacturer:            "Dell",
			Model:                   "OptiPlex 7090",
			OperatingSystem:         "Windows",
			OSVersion:               "11 Pro",
			RAMGB:                   16,
			Status:                  model.StatusActive,
			PurchaseDate:            date(2022, 3, 14),
			WarrantyExpiry:          date(2025, 3, 14),
			LastMaintenance:         date(2024, 12, 3),
			NextMaintenance:         date(2025, 6, 1),
			MaintenanceIntervalDays: 180,
		},
		Maintenance: []model.MaintenanceRecord{{
			Kind:            model.MaintenancePreventive,
			PerformedAt:     *date(2024, 12, 3),
			Technician:      "Sam Okafor",
			Description:     "Cleaned fans\nand updated drivers",
			DurationMinutes: 45,
		}},
		MaintenanceTotal: 3,
		Tickets: []model.Ticket{{
			Title:      "Slow boot",
			Priority:   model.PriorityHigh,
			Status:     model.TicketResolved,
			Resolution: "Disabled startup apps",
		}},
		CollectedAt: time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC),
	}

	prompt := BuildPrompt(h, 5)

	assert.Contains(t, prompt, "- Name: Reception Desktop\n")
	assert.Contains(t, prompt, "- Manufacturer: Dell OptiPlex 7090\n")
	assert.Contains(t, prompt, "- Operating system: Windows 11 Pro\n")
	assert.Contains(t, prompt, "- RAM: 16 GB\n")
	assert.NotContains(t, prompt, "- Storage:")
	assert.Contains(t, prompt, "- Age: 3 years 3 months (purchased 2022-03-14)\n")
	assert.Contains(t, prompt, "- Warranty: expired 2025-03-14\n")
	assert.Contains(t, prompt, "- Next maintenance: 2025-06-01 (overdue by 14 days)\n")
	assert.Contains(t, prompt, "(newest first, 1 of 3 shown)")
	assert.Contains(t, prompt, "- 2024-12-03 preventive by Sam Okafor (45 min): Cleaned fans and updated drivers\n")
	assert.Contains(t, prompt, "- [high, resolved] Slow boot (resolved: Disabled startup apps)\n")
	assert.Contains(t, prompt, "at most 5 short")

	assert.Equal(t, prompt, BuildPrompt(h, 5))
}

func TestBuildPrompt_PeripheralWithoutHistory(t *testing.T) {
	h := &History{
		Kind: model.AssetKindPeripheral,
		Peripheral: &model.Peripheral{
			Name:     "Front Office Printer",
			Type:     model.PeripheralPrinter,
			AssetTag: "PR-0011",
			Status:   model.StatusActive,
		},
		CollectedAt: time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC),
	}

	prompt := BuildPrompt(h, 3)

	assert.Contains(t, prompt, "- Kind: printer\n")
	assert.Contains(t, prompt, "- Last maintenance: never\n")
	assert.Contains(t, prompt, "- none recorded\n")
	assert.Contains(t, prompt, "Support tickets\n- none\n")
	assert.NotContains(t, prompt, "Next maintenance")
}

func TestAge(t *testing.T) {
	now := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		from time.Time
		want string
	}{
		{time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), "less than a month"},
		{time.Date(2025, 5, 15, 0, 0, 0, 0, time.UTC), "1 month"},
		{time.Date(2025, 5, 16, 0, 0, 0, 0, time.UTC), "less than a month"},
		{time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC), "1 year"},
		{time.Date(2021, 2, 10, 0, 0, 0, 0, time.UTC), "4 years 4 months"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, age(tt.from, now), tt.from.String())
	}
}
