package imagestore

import (
	"context"

	"github.com/rs/zerolog"
)

// Cleanup deletes ids on a best-effort basis. Failures are logged only.
func Cleanup(ctx context.Context, store Store, log *zerolog.Logger, ids ...string) {
	for _, id := range ids {
		if id == "" {
			continue
		}
		if err := store.Delete(context.WithoutCancel(ctx), id); err != nil {
			log.Warn().Err(err).Str("image_id", id).Msg("failed to clean up image")
		}
	}
}
