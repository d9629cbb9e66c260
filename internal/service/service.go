// Package service holds the marketplace's business rules. Handlers call it
// with validated principals; it talks to the store, the image store, the
// facet cache and the event publisher.
package service

import (
	"context"
	"errors"
	"time"

	"github.com/propsnap/propsnap/internal/apperr"
	"github.com/propsnap/propsnap/internal/cache"
	"github.com/propsnap/propsnap/internal/events"
	"github.com/propsnap/propsnap/internal/imagestore"
	"github.com/propsnap/propsnap/internal/logging"
	"github.com/propsnap/propsnap/internal/metrics"
	"github.com/propsnap/propsnap/internal/store"
)

// Deps are the collaborators shared by every service.
type Deps struct {
	Store   *store.Store
	Images  imagestore.Store
	Cache   cache.Cache
	Events  events.Publisher
	Metrics *metrics.Metrics

	CacheTTL  time.Duration
	MaxImages int
}

func (d *Deps) withDefaults() *Deps {
	out := *d
	if out.Cache == nil {
		out.Cache = cache.Noop{}
	}
	if out.Events == nil {
		out.Events = events.Noop{}
	}
	if out.CacheTTL <= 0 {
		out.CacheTTL = 30 * time.Second
	}
	if out.MaxImages <= 0 {
		out.MaxImages = 10
	}
	return &out
}

// Services bundles the per-area services built from one Deps.
type Services struct {
	Auth          *AuthService
	Properties    *PropertyService
	Query         *QueryService
	Favourites    *FavouriteService
	Enquiries     *EnquiryService
	Conversations *ConversationService
}

// New builds every service over a shared Deps.
func New(deps Deps, auth AuthOptions) *Services {
	d := deps.withDefaults()
	return &Services{
		Auth:          NewAuthService(d, auth),
		Properties:    NewPropertyService(d),
		Query:         NewQueryService(d),
		Favourites:    NewFavouriteService(d),
		Enquiries:     NewEnquiryService(d),
		Conversations: NewConversationService(d),
	}
}

// publish sends an event after a committed write. Failures are logged only.
func (d *Deps) publish(ctx context.Context, routingKey string, payload any) {
	if err := d.Events.Publish(context.WithoutCancel(ctx), routingKey, payload); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("routing_key", routingKey).Msg("failed to publish event")
		return
	}
	d.Metrics.DomainEvent(routingKey)
}

// invalidateFacets drops cached city facets after a listing write. Failures are
// logged only; entries then expire with CacheTTL.
func (d *Deps) invalidateFacets(ctx context.Context) {
	if err := d.Cache.DeletePrefix(context.WithoutCancel(ctx), facetCachePrefix+":"); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Msg("failed to evict city facets from cache")
	}
}

// notFound converts store.ErrNotFound into a NotFound error with msg.
func notFound(err error, msg string) error {
	if errors.Is(err, store.ErrNotFound) {
		return apperr.NotFound(msg)
	}
	return err
}
