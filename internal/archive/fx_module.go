package archive

import (
	"go.uber.org/fx"

	"picsema/internal/logger"
)

// FXModule wires the image archive into an Fx application.
//
// The archive is optional: without object store credentials a nil *Archive
// is provided and callers must treat it as disabled. Bucket creation
// happens inside NewClient, so no lifecycle hooks are needed.
var FXModule = fx.Module("archive",
	fx.Provide(newArchiveForFx),
)

func newArchiveForFx(cfg Config, log *logger.Logger) (*Archive, error) {
	if !cfg.Enabled() {
		log.Info("image archive disabled, no object store configured", nil, nil)
		return nil, nil
	}
	return NewClient(cfg, log)
}
