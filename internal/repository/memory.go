package repository

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"maintenance-tracker-api/internal/model"

	"github.com/google/uuid"
)

// NewMemoryStore returns a Store kept entirely in process memory.
// It is used for demos, local development and tests.
func NewMemoryStore() *Store {
	m := &memoryStore{
		equipment:   make(map[uuid.UUID]model.Equipment),
		peripherals: make(map[uuid.UUID]model.Peripheral),
		maintenance: make(map[uuid.UUID]model.MaintenanceRecord),
		tickets:     make(map[uuid.UUID]model.Ticket),
		now:         time.Now,
	}
	return &Store{
		Equipment:   &memoryEquipment{m},
		Peripherals: &memoryPeripherals{m},
		Maintenance: &memoryMaintenance{m},
		Tickets:     &memoryTickets{m},
	}
}

type memoryStore struct {
	mu          sync.RWMutex
	equipment   map[uuid.UUID]model.Equipment
	peripherals map[uuid.UUID]model.Peripheral
	maintenance map[uuid.UUID]model.MaintenanceRecord
	tickets     map[uuid.UUID]model.Ticket
	now         func() time.Time
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

func pageOf[T any](items []T, params PaginationParams) *PaginatedResult[T] {
	total := len(items)
	if params.Limit > 0 {
		start := min(max(params.Offset, 0), total)
		end := min(start+params.Limit, total)
		items = items[start:end]
	}
	out := make([]T, len(items))
	copy(out, items)
	return &PaginatedResult[T]{Items: out, TotalCount: total}
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}

func cloneUUID(id *uuid.UUID) *uuid.UUID {
	if id == nil {
		return nil
	}
	c := *id
	return &c
}

// Equipment

type memoryEquipment struct{ s *memoryStore }

func cloneEquipment(e model.Equipment) model.Equipment {
	e.PurchaseDate = cloneTime(e.PurchaseDate)
	e.WarrantyExpiry = cloneTime(e.WarrantyExpiry)
	e.LastMaintenance = cloneTime(e.LastMaintenance)
	e.NextMaintenance = cloneTime(e.NextMaintenance)
	return e
}

func (r *memoryEquipment) tagTaken(tag string, except uuid.UUID) bool {
	for id, e := range r.s.equipment {
		if id != except && e.AssetTag == tag {
			return true
		}
	}
	return false
}

func (r *memoryEquipment) CreateEquipment(_ context.Context, e model.Equipment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, exists := r.s.equipment[e.ID]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateID, e.ID)
	}
	if r.tagTaken(e.AssetTag, e.ID) {
		return fmt.Errorf("%w: %s", ErrDuplicateAssetTag, e.AssetTag)
	}
	now := r.s.now()
	e.CreatedAt, e.UpdatedAt = now, now
	r.s.equipment[e.ID] = cloneEquipment(e)
	return nil
}

func (r *memoryEquipment) GetEquipmentByID(_ context.Context, id uuid.UUID) (*model.Equipment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	e, ok := r.s.equipment[id]
	if !ok {
		return nil, ErrEquipmentNotFound
	}
	e = cloneEquipment(e)
	return &e, nil
}

func (r *memoryEquipment) ListEquipment(_ context.Context, f EquipmentFilter, params PaginationParams) (*PaginatedResult[model.Equipment], error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	items := []model.Equipment{}
	for _, e := range r.s.equipment {
		if f.Status != "" && e.Status != f.Status {
			continue
		}
		if f.Location != "" && !containsFold(e.Location, f.Location) {
			continue
		}
		if f.AssignedTo != "" && !strings.EqualFold(e.AssignedTo, f.AssignedTo) {
			continue
		}
		if f.Search != "" && !containsFold(e.Name, f.Search) && !containsFold(e.AssetTag, f.Search) && !containsFold(e.SerialNumber, f.Search) {
			continue
		}
		items = append(items, cloneEquipment(e))
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].Name != items[j].Name {
			return items[i].Name < items[j].Name
		}
		return items[i].AssetTag < items[j].AssetTag
	})
	return pageOf(items, params), nil
}

func (r *memoryEquipment) UpdateEquipment(_ context.Context, e model.Equipment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	existing, ok := r.s.equipment[e.ID]
	if !ok {
		return ErrEquipmentNotFound
	}
	if r.tagTaken(e.AssetTag, e.ID) {
		return fmt.Errorf("%w: %s", ErrDuplicateAssetTag, e.AssetTag)
	}
	e.CreatedAt = existing.CreatedAt
	e.UpdatedAt = r.s.now()
	r.s.equipment[e.ID] = cloneEquipment(e)
	return nil
}

func (r *memoryEquipment) DeleteEquipment(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.equipment[id]; !ok {
		return ErrEquipmentNotFound
	}
	delete(r.s.equipment, id)
	for pid, p := range r.s.peripherals {
		if p.EquipmentID != nil && *p.EquipmentID == id {
			p.EquipmentID = nil
			r.s.peripherals[pid] = p
		}
	}
	return nil
}

func (r *memoryEquipment) GetEquipmentDueForMaintenance(_ context.Context, before time.Time) ([]model.Equipment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	items := []model.Equipment{}
	for _, e := range r.s.equipment {
		if e.Status != model.StatusRetired && e.NextMaintenance != nil && e.NextMaintenance.Before(before) {
			items = append(items, cloneEquipment(e))
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].NextMaintenance.Before(*items[j].NextMaintenance) })
	return items, nil
}

func (r *memoryEquipment) CountEquipmentByStatus(_ context.Context) (map[model.AssetStatus]int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	counts := make(map[model.AssetStatus]int)
	for _, e := range r.s.equipment {
		counts[e.Status]++
	}
	return counts, nil
}

// Peripherals

type memoryPeripherals struct{ s *memoryStore }

func (r *memoryPeripherals) tagTaken(tag string, except uuid.UUID) bool {
	for id, p := range r.s.peripherals {
		if id != except && p.AssetTag == tag {
			return true
		}
	}
	return false
}

func clonePeripheral(p model.Peripheral) model.Peripheral {
	p.EquipmentID = cloneUUID(p.EquipmentID)
	p.LastMaintenance = cloneTime(p.LastMaintenance)
	p.NextMaintenance = cloneTime(p.NextMaintenance)
	return p
}

func (r *memoryPeripherals) CreatePeripheral(_ context.Context, p model.Peripheral) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, exists := r.s.peripherals[p.ID]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateID, p.ID)
	}
	if r.tagTaken(p.AssetTag, p.ID) {
		return fmt.Errorf("%w: %s", ErrDuplicateAssetTag, p.AssetTag)
	}
	now := r.s.now()
	p.CreatedAt, p.UpdatedAt = now, now
	r.s.peripherals[p.ID] = clonePeripheral(p)
	return nil
}

func (r *memoryPeripherals) GetPeripheralByID(_ context.Context, id uuid.UUID) (*model.Peripheral, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	p, ok := r.s.peripherals[id]
	if !ok {
		return nil, ErrPeripheralNotFound
	}
	p = clonePeripheral(p)
	return &p, nil
}

func (r *memoryPeripherals) ListPeripherals(_ context.Context, f PeripheralFilter, params PaginationParams) (*PaginatedResult[model.Peripheral], error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	items := []model.Peripheral{}
	for _, p := range r.s.peripherals {
		if f.Type != "" && p.Type != f.Type {
			continue
		}
		if f.Status != "" && p.Status != f.Status {
			continue
		}
		if f.EquipmentID != nil && (p.EquipmentID == nil || *p.EquipmentID != *f.EquipmentID) {
			continue
		}
		if f.Search != "" && !containsFold(p.Name, f.Search) && !containsFold(p.AssetTag, f.Search) && !containsFold(p.SerialNumber, f.Search) {
			continue
		}
		items = append(items, clonePeripheral(p))
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].Name != items[j].Name {
			return items[i].Name < items[j].Name
		}
		return items[i].AssetTag < items[j].AssetTag
	})
	return pageOf(items, params), nil
}

func (r *memoryPeripherals) UpdatePeripheral(_ context.Context, p model.Peripheral) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	existing, ok := r.s.peripherals[p.ID]
	if !ok {
		return ErrPeripheralNotFound
	}
	if r.tagTaken(p.AssetTag, p.ID) {
		return fmt.Errorf("%w: %s", ErrDuplicateAssetTag, p.AssetTag)
	}
	p.CreatedAt = existing.CreatedAt
	p.UpdatedAt = r.s.now()
	r.s.peripherals[p.ID] = clonePeripheral(p)
	return nil
}

func (r *memoryPeripherals) DeletePeripheral(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.peripherals[id]; !ok {
		return ErrPeripheralNotFound
	}
	delete(r.s.peripherals, id)
	return nil
}

func (r *memoryPeripherals) DetachPeripheralsFromEquipment(_ context.Context, equipmentID uuid.UUID) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var n int64
	now := r.s.now()
	for id, p := range r.s.peripherals {
		if p.EquipmentID != nil && *p.EquipmentID == equipmentID {
			p.EquipmentID = nil
			p.UpdatedAt = now
			r.s.peripherals[id] = p
			n++
		}
	}
	return n, nil
}

func (r *memoryPeripherals) GetPeripheralsDueForMaintenance(_ context.Context, before time.Time) ([]model.Peripheral, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	items := []model.Peripheral{}
	for _, p := range r.s.peripherals {
		if p.Status != model.StatusRetired && p.NextMaintenance != nil && p.NextMaintenance.Before(before) {
			items = append(items, clonePeripheral(p))
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].NextMaintenance.Before(*items[j].NextMaintenance) })
	return items, nil
}

func (r *memoryPeripherals) CountPeripheralsByStatus(_ context.Context) (map[model.AssetStatus]int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	counts := make(map[model.AssetStatus]int)
	for _, p := range r.s.peripherals {
		counts[p.Status]++
	}
	return counts, nil
}

// Maintenance

type memoryMaintenance struct{ s *memoryStore }

func cloneMaintenance(m model.MaintenanceRecord) model.MaintenanceRecord {
	m.TicketID = cloneUUID(m.TicketID)
	return m
}

func newerRecord(a, b model.MaintenanceRecord) bool {
	if !a.PerformedAt.Equal(b.PerformedAt) {
		return a.PerformedAt.After(b.PerformedAt)
	}
	return a.CreatedAt.After(b.CreatedAt)
}

func (r *memoryMaintenance) CreateMaintenanceRecord(_ context.Context, m model.MaintenanceRecord) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, exists := r.s.maintenance[m.ID]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateID, m.ID)
	}
	m.CreatedAt = r.s.now()
	r.s.maintenance[m.ID] = cloneMaintenance(m)
	return nil
}

func (r *memoryMaintenance) GetMaintenanceRecordByID(_ context.Context, id uuid.UUID) (*model.MaintenanceRecord, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	m, ok := r.s.maintenance[id]
	if !ok {
		return nil, ErrMaintenanceRecordNotFound
	}
	m = cloneMaintenance(m)
	return &m, nil
}

func (r *memoryMaintenance) ListMaintenanceRecords(_ context.Context, f MaintenanceFilter, params PaginationParams) (*PaginatedResult[model.MaintenanceRecord], error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	items := []model.MaintenanceRecord{}
	for _, m := range r.s.maintenance {
		if f.AssetKind != "" && m.AssetKind != f.AssetKind {
			continue
		}
		if f.AssetID != nil && m.AssetID != *f.AssetID {
			continue
		}
		if f.Kind != "" && m.Kind != f.Kind {
			continue
		}
		if f.Since != nil && m.PerformedAt.Before(*f.Since) {
			continue
		}
		if f.Until != nil && !m.PerformedAt.Before(*f.Until) {
			continue
		}
		items = append(items, cloneMaintenance(m))
	}
	sort.Slice(items, func(i, j int) bool { return newerRecord(items[i], items[j]) })
	return pageOf(items, params), nil
}

func (r *memoryMaintenance) DeleteMaintenanceRecord(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.maintenance[id]; !ok {
		return ErrMaintenanceRecordNotFound
	}
	delete(r.s.maintenance, id)
	return nil
}

func (r *memoryMaintenance) GetLatestMaintenanceForAsset(_ context.Context, kind model.AssetKind, assetID uuid.UUID) (*model.MaintenanceRecord, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var latest *model.MaintenanceRecord
	for _, m := range r.s.maintenance {
		if m.AssetKind != kind || m.AssetID != assetID {
			continue
		}
		if latest == nil || newerRecord(m, *latest) {
			latest = &m
		}
	}
	if latest == nil {
		return nil, ErrMaintenanceRecordNotFound
	}
	m := cloneMaintenance(*latest)
	return &m, nil
}

func (r *memoryMaintenance) DeleteMaintenanceForAsset(_ context.Context, kind model.AssetKind, assetID uuid.UUID) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var n int64
	for id, m := range r.s.maintenance {
		if m.AssetKind == kind && m.AssetID == assetID {
			delete(r.s.maintenance, id)
			n++
		}
	}
	return n, nil
}

// Tickets

type memoryTickets struct{ s *memoryStore }

func cloneTicket(t model.Ticket) model.Ticket {
	t.AssetID = cloneUUID(t.AssetID)
	t.ResolvedAt = cloneTime(t.ResolvedAt)
	return t
}

func (r *memoryTickets) CreateTicket(_ context.Context, t model.Ticket) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, exists := r.s.tickets[t.ID]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateID, t.ID)
	}
	now := r.s.now()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	t.UpdatedAt = now
	r.s.tickets[t.ID] = cloneTicket(t)
	return nil
}

func (r *memoryTickets) GetTicketByID(_ context.Context, id uuid.UUID) (*model.Ticket, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	t, ok := r.s.tickets[id]
	if !ok {
		return nil, ErrTicketNotFound
	}
	t = cloneTicket(t)
	return &t, nil
}

func (r *memoryTickets) ListTickets(_ context.Context, f TicketFilter, params PaginationParams) (*PaginatedResult[model.Ticket], error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	items := []model.Ticket{}
	for _, t := range r.s.tickets {
		if f.Status != "" && t.Status != f.Status {
			continue
		}
		if f.OpenOnly && !t.Status.IsActive() {
			continue
		}
		if f.Priority != "" && t.Priority != f.Priority {
			continue
		}
		if f.AssignedEngineer != "" && !strings.EqualFold(t.AssignedEngineer, f.AssignedEngineer) {
			continue
		}
		if f.AssetKind != "" && t.AssetKind != f.AssetKind {
			continue
		}
		if f.AssetID != nil && (t.AssetID == nil || *t.AssetID != *f.AssetID) {
			continue
		}
		items = append(items, cloneTicket(t))
	}
	sort.Slice(items, func(i, j int) bool {
		if !items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].CreatedAt.After(items[j].CreatedAt)
		}
		return items[i].ID.String() < items[j].ID.String()
	})
	return pageOf(items, params), nil
}

func (r *memoryTickets) UpdateTicket(_ context.Context, t model.Ticket) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	existing, ok := r.s.tickets[t.ID]
	if !ok {
		return ErrTicketNotFound
	}
	t.CreatedAt = existing.CreatedAt
	t.UpdatedAt = r.s.now()
	r.s.tickets[t.ID] = cloneTicket(t)
	return nil
}

func (r *memoryTickets) DeleteTicket(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.tickets[id]; !ok {
		return ErrTicketNotFound
	}
	delete(r.s.tickets, id)
	for mid, m := range r.s.maintenance {
		if m.TicketID != nil && *m.TicketID == id {
			m.TicketID = nil
			r.s.maintenance[mid] = m
		}
	}
	return nil
}

func (r *memoryTickets) CountOpenTicketsByPriority(_ context.Context) (map[model.TicketPriority]int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	counts := make(map[model.TicketPriority]int)
	for _, t := range r.s.tickets {
		if t.Status.IsActive() {
			counts[t.Priority]++
		}
	}
	return counts, nil
}
