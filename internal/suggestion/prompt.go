package suggestion

import (
	"fmt"
	"strings"
	"time"

	"maintenance-tracker-api/internal/model"
)

const dateLayout = "2006-01-02"

// BuildPrompt renders the asset history as a plain-text request for at most
// maxItems recommendations. Output depends only on h, so identical histories
// produce identical prompts.
func BuildPrompt(h *History, maxItems int) string {
	var b strings.Builder

	b.WriteString("You are assisting an IT maintenance team. Recommend the next maintenance actions for the asset below.\n\n")

	b.WriteString("Asset\n")
	switch {
	case h.Equipment != nil:
		writeEquipment(&b, h.Equipment, h.CollectedAt)
	case h.Peripheral != nil:
		writePeripheral(&b, h.Peripheral, h.CollectedAt)
	}

	fmt.Fprintf(&b, "\nMaintenance history (newest first, %d of %d shown)\n", len(h.Maintenance), h.MaintenanceTotal)
	if len(h.Maintenance) == 0 {
		b.WriteString("- none recorded\n")
	}
	for _, m := range h.Maintenance {
		fmt.Fprintf(&b, "- %s %s by %s", m.PerformedAt.Format(dateLayout), m.Kind, m.Technician)
		if m.DurationMinutes > 0 {
			fmt.Fprintf(&b, " (%d min)", m.DurationMinutes)
		}
		fmt.Fprintf(&b, ": %s\n", oneLine(m.Description))
	}

	b.WriteString("\nSupport tickets\n")
	if len(h.Tickets) == 0 {
		b.WriteString("- none\n")
	}
	for _, t := range h.Tickets {
		fmt.Fprintf(&b, "- [%s, %s] %s", t.Priority, t.Status, oneLine(t.Title))
		if t.Resolution != "" {
			fmt.Fprintf(&b, " (resolved: %s)", oneLine(t.Resolution))
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "\nAnswer with a bulleted list of at most %d short, concrete recommendations. "+
		"Start each line with \"- \". Do not add headings or explanations.\n", maxItems)

	return b.String()
}

func writeEquipment(b *strings.Builder, e *model.Equipment, now time.Time) {
	field(b, "Kind", "computer")
	field(b, "Name", e.Name)
	field(b, "Asset tag", e.AssetTag)
	field(b, "Manufacturer", strings.TrimSpace(e.Manufacturer+" "+e.Model))
	field(b, "Operating system", strings.TrimSpace(e.OperatingSystem+" "+e.OSVersion))
	field(b, "CPU", e.CPU)
	if e.RAMGB > 0 {
		field(b, "RAM", fmt.Sprintf("%d GB", e.RAMGB))
	}
	if e.StorageGB > 0 {
		field(b, "Storage", fmt.Sprintf("%d GB", e.StorageGB))
	}
	field(b, "Location", e.Location)
	field(b, "Status", string(e.Status))
	if e.PurchaseDate != nil {
		field(b, "Age", fmt.Sprintf("%s (purchased %s)", age(*e.PurchaseDate, now), e.PurchaseDate.Format(dateLayout)))
	}
	if e.WarrantyExpiry != nil {
		if e.WarrantyExpiry.Before(now) {
			field(b, "Warranty", "expired "+e.WarrantyExpiry.Format(dateLayout))
		} else {
			field(b, "Warranty", "valid until "+e.WarrantyExpiry.Format(dateLayout))
		}
	}
	writeSchedule(b, e.LastMaintenance, e.NextMaintenance, e.MaintenanceIntervalDays, now)
	field(b, "Notes", oneLine(e.Notes))
}

func writePeripheral(b *strings.Builder, p *model.Peripheral, now time.Time) {
	field(b, "Kind", string(p.Type))
	field(b, "Name", p.Name)
	field(b, "Asset tag", p.AssetTag)
	field(b, "Manufacturer", strings.TrimSpace(p.Manufacturer+" "+p.Model))
	field(b, "Location", p.Location)
	field(b, "Status", string(p.Status))
	writeSchedule(b, p.LastMaintenance, p.NextMaintenance, p.MaintenanceIntervalDays, now)
	field(b, "Notes", oneLine(p.Notes))
}

func writeSchedule(b *strings.Builder, last, next *time.Time, interval int, now time.Time) {
	if last != nil {
		field(b, "Last maintenance", last.Format(dateLayout))
	} else {
		field(b, "Last maintenance", "never")
	}
	if next != nil {
		value := next.Format(dateLayout)
		if next.Before(now) {
			value += fmt.Sprintf(" (overdue by %d days)", int(now.Sub(*next).Hours()/24))
		}
		field(b, "Next maintenance", value)
	}
	if interval > 0 {
		field(b, "Maintenance interval", fmt.Sprintf("%d days", interval))
	}
}

// field writes one "- Label: value" line; empty values are omitted.
func field(b *strings.Builder, label, value string) {
	if value == "" {
		return
	}
	fmt.Fprintf(b, "- %s: %s\n", label, value)
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// age renders the whole years and months between from and now.
func age(from, now time.Time) string {
	months := (now.Year()-from.Year())*12 + int(now.Month()-from.Month())
	if now.Day() < from.Day() {
		months--
	}
	if months < 1 {
		return "less than a month"
	}
	years, months := months/12, months%12
	switch {
	case years == 0:
		return plural(months, "month")
	case months == 0:
		return plural(years, "year")
	default:
		return plural(years, "year") + " " + plural(months, "month")
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return "1 " + unit
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
