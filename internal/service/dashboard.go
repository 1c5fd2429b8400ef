package service

import (
	"context"
	"time"

	"maintenance-tracker-api/internal/model"
	"maintenance-tracker-api/internal/repository"
	apperrors "maintenance-tracker-api/pkg/errors"

	"golang.org/x/sync/errgroup"
)

// DashboardService aggregates fleet health for the overview page
type DashboardService struct {
	store       *repository.Store
	maintenance *MaintenanceService
	window      time.Duration
}

// NewDashboardService creates a dashboard over store. Maintenance due within
// window counts as upcoming.
func NewDashboardService(store *repository.Store, maintenance *MaintenanceService, window time.Duration) *DashboardService {
	return &DashboardService{store: store, maintenance: maintenance, window: window}
}

// Summary collects asset counts, due maintenance and open tickets concurrently.
func (s *DashboardService) Summary(ctx context.Context) (*model.Dashboard, error) {
	now := s.maintenance.now()
	d := &model.Dashboard{
		EquipmentByStatus:  zeroStatusCounts(),
		PeripheralByStatus: zeroStatusCounts(),
		OpenTickets:        make(map[model.TicketPriority]int, len(model.TicketPriorities)),
		Overdue:            []model.DueItem{},
		Upcoming:           []model.DueItem{},
		GeneratedAt:        now.UTC(),
	}
	for _, p := range model.TicketPriorities {
		d.OpenTickets[p] = 0
	}

	var (
		equipment, peripherals map[model.AssetStatus]int
		tickets                map[model.TicketPriority]int
		due                    []model.DueItem
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		equipment, err = s.store.Equipment.CountEquipmentByStatus(gctx)
		return err
	})
	g.Go(func() (err error) {
		peripherals, err = s.store.Peripherals.CountPeripheralsByStatus(gctx)
		return err
	})
	g.Go(func() (err error) {
		tickets, err = s.store.Tickets.CountOpenTicketsByPriority(gctx)
		return err
	})
	g.Go(func() (err error) {
		due, err = s.maintenance.due(gctx, now.Add(s.window))
		return err
	})
	if err := g.Wait(); err != nil {
		if _, ok := apperrors.AsAppError(err); ok {
			return nil, err
		}
		return nil, repoError(err, "dashboard", "build dashboard")
	}

	for status, n := range equipment {
		d.EquipmentByStatus[status] = n
	}
	for status, n := range peripherals {
		d.PeripheralByStatus[status] = n
	}
	for priority, n := range tickets {
		d.OpenTickets[priority] = n
		d.OpenTicketTotal += n
	}
	for _, item := range due {
		if item.Overdue {
			d.Overdue = append(d.Overdue, item)
		} else {
			d.Upcoming = append(d.Upcoming, item)
		}
	}

	return d, nil
}

func zeroStatusCounts() map[model.AssetStatus]int {
	counts := make(map[model.AssetStatus]int, len(model.AssetStatuses))
	for _, s := range model.AssetStatuses {
		counts[s] = 0
	}
	return counts
}
