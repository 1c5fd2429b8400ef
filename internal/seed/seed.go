// Package seed loads the bundled sample inventory into a store.
package seed

import (
	"context"
	_ "embed"
	"errors"
	"fmt"

	"maintenance-tracker-api/internal/logging"
	"maintenance-tracker-api/internal/model"
	"maintenance-tracker-api/internal/repository"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

//go:embed fixtures.yaml
var fixturesYAML []byte

// Fixtures is the decoded sample data set.
type Fixtures struct {
	Equipment   []model.Equipment         `yaml:"equipment"`
	Peripherals []model.Peripheral        `yaml:"peripherals"`
	Maintenance []model.MaintenanceRecord `yaml:"maintenance"`
	Tickets     []model.Ticket            `yaml:"tickets"`
}

// Result counts what Load inserted and skipped.
type Result struct {
	Inserted int
	Skipped  int
}

// Parse decodes a fixtures document.
func Parse(data []byte) (*Fixtures, error) {
	var f Fixtures
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse fixtures: %w", err)
	}
	return &f, nil
}

// Default returns the embedded fixtures.
func Default() (*Fixtures, error) {
	return Parse(fixturesYAML)
}

// Load inserts the embedded fixtures into store. Records whose ID or asset
// tag already exists are skipped, so Load can run against a seeded store.
func Load(ctx context.Context, store *repository.Store, logger *zap.Logger) (Result, error) {
	f, err := Default()
	if err != nil {
		return Result{}, err
	}
	return f.Load(ctx, store, logger)
}

// Load inserts f into store. Tickets go in before maintenance records so
// linked ticket IDs resolve.
func (f *Fixtures) Load(ctx context.Context, store *repository.Store, logger *zap.Logger) (Result, error) {
	logger = logging.OrNop(logger).Named("seed")
	var res Result

	insert := func(kind, key string, err error) error {
		switch {
		case err == nil:
			res.Inserted++
			return nil
		case errors.Is(err, repository.ErrDuplicateID), errors.Is(err, repository.ErrDuplicateAssetTag):
			res.Skipped++
			logger.Debug("fixture already present", zap.String("kind", kind), zap.String("key", key))
			return nil
		default:
			return fmt.Errorf("failed to seed %s %s: %w", kind, key, err)
		}
	}

	for _, e := range f.Equipment {
		if err := insert("equipment", e.AssetTag, store.Equipment.CreateEquipment(ctx, e)); err != nil {
			return res, err
		}
	}
	for _, p := range f.Peripherals {
		if err := insert("peripheral", p.AssetTag, store.Peripherals.CreatePeripheral(ctx, p)); err != nil {
			return res, err
		}
	}
	for _, t := range f.Tickets {
		if err := insert("ticket", t.ID.String(), store.Tickets.CreateTicket(ctx, t)); err != nil {
			return res, err
		}
	}
	for _, m := range f.Maintenance {
		if err := insert("maintenance record", m.ID.String(), store.Maintenance.CreateMaintenanceRecord(ctx, m)); err != nil {
			return res, err
		}
	}

	logger.Info("fixtures loaded", zap.Int("inserted", res.Inserted), zap.Int("skipped", res.Skipped))
	return res, nil
}
