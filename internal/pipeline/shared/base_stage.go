// Package shared provides the embeddable plumbing common to pipeline stages.
package shared

import (
	"context"
	"log/slog"

	"github.com/lunnlew/m3u-filter/internal/pipeline/core"
)

// BaseStage carries the identity and logging plumbing every stage needs.
// Embed it and implement Execute.
type BaseStage struct {
	id     string
	name   string
	logger *slog.Logger
}

// NewBaseStage creates a new BaseStage.
func NewBaseStage(id, name string) BaseStage {
	return BaseStage{
		id:   id,
		name: name,
	}
}

// ID returns the stage identifier.
func (b *BaseStage) ID() string {
	return b.id
}

// Name returns the human-readable stage name.
func (b *BaseStage) Name() string {
	return b.name
}

// SetLogger attaches a logger tagged with the stage id. Stages without a
// logger stay silent; Log tolerates nil.
func (b *BaseStage) SetLogger(logger *slog.Logger) {
	if logger != nil {
		b.logger = logger.With(slog.String("stage", b.id))
	}
}

// Log writes through the attached logger, if any.
func (b *BaseStage) Log(ctx context.Context, level slog.Level, msg string, attrs ...any) {
	if b.logger != nil {
		b.logger.Log(ctx, level, msg, attrs...)
	}
}

// Cleanup provides a default no-op cleanup implementation.
func (b *BaseStage) Cleanup(ctx context.Context) error {
	return nil
}

// Cancelled reports whether the pipeline context is done. Stages check it
// per track so a cancelled generation stops mid-catalog instead of finishing
// the pass.
func Cancelled(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}

// NewResult creates a new StageResult.
func NewResult() *core.StageResult {
	return &core.StageResult{
		Artifacts: make([]core.Artifact, 0),
	}
}
