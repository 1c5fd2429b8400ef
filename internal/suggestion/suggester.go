package suggestion

import (
	"context"
	"errors"
	"time"

	"maintenance-tracker-api/internal/model"
	apperrors "maintenance-tracker-api/pkg/errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Options tune a Suggester.
type Options struct {
	Model          string
	MaxSuggestions int
	Timeout        time.Duration
}

// Suggester runs the collect, prompt, generate and parse round trip.
type Suggester struct {
	collector *HistoryCollector
	generator Generator
	opts      Options
	logger    *zap.Logger
	now       func() time.Time
}

// NewSuggester creates a suggester. A nil generator disables suggestions.
func NewSuggester(collector *HistoryCollector, generator Generator, opts Options, logger *zap.Logger) *Suggester {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.MaxSuggestions <= 0 {
		opts.MaxSuggestions = 8
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	return &Suggester{
		collector: collector,
		generator: generator,
		opts:      opts,
		logger:    logger.Named("suggestions"),
		now:       time.Now,
	}
}

// Enabled reports whether a generator is configured.
func (s *Suggester) Enabled() bool {
	return s != nil && s.generator != nil
}

// Suggest generates maintenance recommendations for one asset.
func (s *Suggester) Suggest(ctx context.Context, kind model.AssetKind, id uuid.UUID) (*model.Suggestion, error) {
	if !s.Enabled() {
		return nil, apperrors.ServiceUnavailableError("maintenance suggestions are disabled")
	}

	history, err := s.collector.Collect(ctx, kind, id)
	if err != nil {
		return nil, err
	}
	prompt := BuildPrompt(history, s.opts.MaxSuggestions)

	genCtx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
	defer cancel()

	start := s.now()
	text, err := s.generator.Generate(genCtx, prompt)
	if err != nil {
		s.logger.Warn("suggestion generation failed",
			zap.String("asset_kind", string(kind)),
			zap.Stringer("asset_id", id),
			zap.Error(err))
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, apperrors.TimeoutError("generate suggestions", err)
		}
		return nil, apperrors.ExternalServiceError("ai", err)
	}

	items := ParseSuggestions(text, s.opts.MaxSuggestions)
	if len(items) == 0 {
		s.logger.Warn("model response contained no suggestions", zap.Int("response_length", len(text)))
		return nil, apperrors.ExternalServiceError("ai", errors.New("model returned no usable suggestions"))
	}

	s.logger.Info("suggestions generated",
		zap.String("asset_kind", string(kind)),
		zap.Stringer("asset_id", id),
		zap.Int("count", len(items)),
		zap.Duration("duration", s.now().Sub(start)))

	return &model.Suggestion{
		AssetKind:   kind,
		AssetID:     history.AssetID(),
		AssetName:   history.Name(),
		Items:       items,
		Model:       s.opts.Model,
		GeneratedAt: s.now().UTC(),
	}, nil
}
