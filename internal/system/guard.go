package system

import (
	"go.uber.org/zap"
)

// safeStep isolates one entity's per-step update: a panic inside it is
// caught and logged at the entity granularity, leaving the entity in its
// last-known-good state for the step. Other entities are unaffected.
func safeStep(log *zap.Logger, entityID string, fn func()) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Error("entity update failed",
				zap.String("entity", entityID),
				zap.Any("panic", rec),
			)
		}
	}()
	fn()
}
