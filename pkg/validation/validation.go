package validation

import (
	"fmt"
	"net"
	"regexp"
	"strings"
	"unicode/utf8"

	"maintenance-tracker-api/internal/model"

	"github.com/google/uuid"
)

// Field length limits
const (
	MaxNameLength        = 255
	MaxAssetTagLength    = 64
	MaxShortFieldLength  = 128
	MaxTitleLength       = 200
	MaxDescriptionLength = 5000
	MinPersonNameLength  = 2
	MaxPersonNameLength  = 100
	MaxIntervalDays      = 3650
	MaxDurationMinutes   = 7 * 24 * 60
)

var (
	macRegex        = regexp.MustCompile(`^([0-9A-F]{2}:){5}([0-9A-F]{2})$`)
	personNameRegex = regexp.MustCompile(`^[\p{L}\p{N} .'\-]+$`)
	assetTagRegex   = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_\-./]*$`)
)

// ValidateMAC validates a MAC address format and returns normalized version
func ValidateMAC(mac string) (string, error) {
	normalized := strings.ToUpper(strings.ReplaceAll(mac, " ", ""))
	normalized = strings.ReplaceAll(normalized, "-", ":")

	if !macRegex.MatchString(normalized) {
		return "", fmt.Errorf("invalid MAC address format: %s", mac)
	}
	return normalized, nil
}

// ValidateIP validates an IP address format (IPv4 or IPv6)
func ValidateIP(ip string) error {
	if net.ParseIP(ip) == nil {
		return fmt.Errorf("invalid IP address format: %s", ip)
	}
	return nil
}

// ValidateRequired checks if a string field is not empty
func ValidateRequired(fieldName, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s is required", fieldName)
	}
	return nil
}

// ValidateMaxLength checks a string does not exceed max characters
func ValidateMaxLength(fieldName, value string, max int) error {
	if utf8.RuneCountInString(value) > max {
		return fmt.Errorf("%s cannot exceed %d characters", fieldName, max)
	}
	return nil
}

// ValidatePersonName validates names of engineers, technicians and assignees.
func ValidatePersonName(fieldName, name string) error {
	n := utf8.RuneCountInString(strings.TrimSpace(name))
	if n < MinPersonNameLength || n > MaxPersonNameLength {
		return fmt.Errorf("%s must be between %d and %d characters", fieldName, MinPersonNameLength, MaxPersonNameLength)
	}
	if !personNameRegex.MatchString(name) {
		return fmt.Errorf("%s contains invalid characters", fieldName)
	}
	return nil
}

// ValidateAssetTag validates an inventory tag
func ValidateAssetTag(tag string) error {
	if err := ValidateRequired("asset tag", tag); err != nil {
		return err
	}
	if err := ValidateMaxLength("asset tag", tag, MaxAssetTagLength); err != nil {
		return err
	}
	if !assetTagRegex.MatchString(tag) {
		return fmt.Errorf("asset tag can only contain letters, digits and _-./")
	}
	return nil
}

func validateInterval(errs map[string]string, days int) {
	if days < 0 || days > MaxIntervalDays {
		errs["maintenance_interval_days"] = fmt.Sprintf("maintenance interval must be between 0 and %d days", MaxIntervalDays)
	}
}

func checkLength(errs map[string]string, field, label, value string, max int) {
	if err := ValidateMaxLength(label, value, max); err != nil {
		errs[field] = err.Error()
	}
}

// ValidateEquipmentInput validates a computer record and normalizes its MAC address.
func ValidateEquipmentInput(e *model.Equipment) map[string]string {
	errs := make(map[string]string)

	if err := ValidateRequired("name", e.Name); err != nil {
		errs["name"] = err.Error()
	} else {
		checkLength(errs, "name", "name", e.Name, MaxNameLength)
	}
	if err := ValidateAssetTag(e.AssetTag); err != nil {
		errs["asset_tag"] = err.Error()
	}

	if e.MACAddress != "" {
		normalized, err := ValidateMAC(e.MACAddress)
		if err != nil {
			errs["mac_address"] = err.Error()
		} else {
			e.MACAddress = normalized
		}
	}
	if e.IPAddress != "" {
		if err := ValidateIP(e.IPAddress); err != nil {
			errs["ip_address"] = err.Error()
		}
	}
	if e.AssignedTo != "" {
		if err := ValidatePersonName("assigned to", e.AssignedTo); err != nil {
			errs["assigned_to"] = err.Error()
		}
	}
	if e.Status != "" && !e.Status.Valid() {
		errs["status"] = fmt.Sprintf("invalid status: %s", e.Status)
	}
	if e.RAMGB < 0 {
		errs["ram_gb"] = "RAM cannot be negative"
	}
	if e.StorageGB < 0 {
		errs["storage_gb"] = "storage cannot be negative"
	}
	if e.PurchaseDate != nil && e.WarrantyExpiry != nil && e.WarrantyExpiry.Before(*e.PurchaseDate) {
		errs["warranty_expiry"] = "warranty expiry cannot be before purchase date"
	}
	validateInterval(errs, e.MaintenanceIntervalDays)

	checkLength(errs, "serial_number", "serial number", e.SerialNumber, MaxShortFieldLength)
	checkLength(errs, "manufacturer", "manufacturer", e.Manufacturer, MaxShortFieldLength)
	checkLength(errs, "model", "model", e.Model, MaxShortFieldLength)
	checkLength(errs, "operating_system", "operating system", e.OperatingSystem, MaxShortFieldLength)
	checkLength(errs, "location", "location", e.Location, MaxNameLength)
	checkLength(errs, "notes", "notes", e.Notes, MaxDescriptionLength)

	return errs
}

// ValidatePeripheralInput validates a peripheral record.
func ValidatePeripheralInput(p *model.Peripheral) map[string]string {
	errs := make(map[string]string)

	if err := ValidateRequired("name", p.Name); err != nil {
		errs["name"] = err.Error()
	} else {
		checkLength(errs, "name", "name", p.Name, MaxNameLength)
	}
	if err := ValidateAssetTag(p.AssetTag); err != nil {
		errs["asset_tag"] = err.Error()
	}
	if !p.Type.Valid() {
		errs["type"] = fmt.Sprintf("invalid peripheral type: %q", p.Type)
	}
	if p.Status != "" && !p.Status.Valid() {
		errs["status"] = fmt.Sprintf("invalid status: %s", p.Status)
	}
	validateInterval(errs, p.MaintenanceIntervalDays)

	checkLength(errs, "serial_number", "serial number", p.SerialNumber, MaxShortFieldLength)
	checkLength(errs, "manufacturer", "manufacturer", p.Manufacturer, MaxShortFieldLength)
	checkLength(errs, "model", "model", p.Model, MaxShortFieldLength)
	checkLength(errs, "location", "location", p.Location, MaxNameLength)
	checkLength(errs, "notes", "notes", p.Notes, MaxDescriptionLength)

	return errs
}

// ValidateMaintenanceInput validates a maintenance log entry.
func ValidateMaintenanceInput(m *model.MaintenanceRecord) map[string]string {
	errs := make(map[string]string)

	if !m.AssetKind.Valid() {
		errs["asset_kind"] = fmt.Sprintf("invalid asset kind: %q", m.AssetKind)
	}
	if m.AssetID == uuid.Nil {
		errs["asset_id"] = "asset id is required"
	}
	if !m.Kind.Valid() {
		errs["kind"] = fmt.Sprintf("invalid maintenance kind: %q", m.Kind)
	}
	if m.PerformedAt.IsZero() {
		errs["performed_at"] = "performed at is required"
	}
	if err := ValidatePersonName("technician", m.Technician); err != nil {
		errs["technician"] = err.Error()
	}
	if err := ValidateRequired("description", m.Description); err != nil {
		errs["description"] = err.Error()
	} else {
		checkLength(errs, "description", "description", m.Description, MaxDescriptionLength)
	}
	if m.DurationMinutes < 0 || m.DurationMinutes > MaxDurationMinutes {
		errs["duration_minutes"] = fmt.Sprintf("duration must be between 0 and %d minutes", MaxDurationMinutes)
	}

	return errs
}

// ValidateTicketInput validates the user-editable fields of a ticket.
func ValidateTicketInput(t *model.Ticket) map[string]string {
	errs := make(map[string]string)

	if err := ValidateRequired("title", t.Title); err != nil {
		errs["title"] = err.Error()
	} else {
		checkLength(errs, "title", "title", t.Title, MaxTitleLength)
	}
	checkLength(errs, "description", "description", t.Description, MaxDescriptionLength)

	if t.Priority != "" && !t.Priority.Valid() {
		errs["priority"] = fmt.Sprintf("invalid priority: %s", t.Priority)
	}
	if t.AssetID != nil && !t.AssetKind.Valid() {
		errs["asset_kind"] = "asset kind must be equipment or peripheral when asset id is set"
	}
	if t.AssetID == nil && t.AssetKind != "" {
		errs["asset_id"] = "asset id is required when asset kind is set"
	}
	if t.ReportedBy != "" {
		if err := ValidatePersonName("reported by", t.ReportedBy); err != nil {
			errs["reported_by"] = err.Error()
		}
	}
	if t.AssignedEngineer != "" {
		if err := ValidatePersonName("assigned engineer", t.AssignedEngineer); err != nil {
			errs["assigned_engineer"] = err.Error()
		}
	}

	return errs
}
