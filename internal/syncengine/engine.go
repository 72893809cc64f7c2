// Package syncengine reconciles the local catalog with the per-owner
// remote store. The local state is always authoritative for the
// running process: remote writes are best-effort and never block or
// fail a user mutation.
package syncengine

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"agro-gps/field-backend/internal/fields"
)

// State of the engine with respect to the remote store
type State string

const (
	// StateLocalOnly means no remote is reachable or the remote is empty
	StateLocalOnly State = "LOCAL_ONLY"
	// StateSynced means the remote has data and is considered authoritative
	StateSynced State = "SYNCED"
)

// RemoteStore is the per-owner remote document store the engine syncs
// against. Every operation is independently fallible.
type RemoteStore interface {
	UpsertOwner(ctx context.Context, owner string) error
	UpsertArea(ctx context.Context, a fields.Area) error
	DeleteArea(ctx context.Context, id, owner string) error
	UpsertProduct(ctx context.Context, p fields.Product, owner string) error
	DeleteProduct(ctx context.Context, id, owner string) error
	ListAllOwners(ctx context.Context) ([]string, error)
	ListAreas(ctx context.Context, owner string) ([]fields.Area, error)
	ListProducts(ctx context.Context, owner string) ([]fields.Product, error)
}

// FailureHandler receives the outcome of a failed fire-and-forget
// write. Optional; failures are logged either way.
type FailureHandler func(op, id string, err error)

// Config tunes the engine
type Config struct {
	// Timeout bounds every remote operation
	Timeout time.Duration

	// OnFailure, when set, is invoked for every failed push
	OnFailure FailureHandler

	// Gate reports whether a signed-in identity is present. When it
	// returns false all remote operations are silently skipped.
	Gate func() bool
}

// DefaultConfig returns the default engine tuning
func DefaultConfig() Config {
	return Config{Timeout: 10 * time.Second}
}

// Engine reconciles the catalog with the remote store
type Engine struct {
	remote  RemoteStore // nil means local-only mode
	catalog *fields.Catalog
	store   fields.Store
	logger  *zap.Logger
	cfg     Config

	mu    sync.Mutex
	state State

	inflight sync.WaitGroup
}

// NewEngine creates a sync engine. A nil remote store puts the engine
// permanently in local-only mode.
func NewEngine(remote RemoteStore, catalog *fields.Catalog, store fields.Store, logger *zap.Logger, cfg Config) *Engine {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultConfig().Timeout
	}
	return &Engine{
		remote:  remote,
		catalog: catalog,
		store:   store,
		logger:  logger,
		cfg:     cfg,
		state:   StateLocalOnly,
	}
}

// State returns the current sync state
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

func (e *Engine) setState(s State) {
	e.mu.Lock()
	e.state = s
	e.mu.Unlock()
}

func (e *Engine) enabled() bool {
	if e.remote == nil {
		return false
	}
	if e.cfg.Gate != nil && !e.cfg.Gate() {
		return false
	}
	return true
}

// Wait blocks until all in-flight pushes have settled. Used on
// shutdown and by tests.
func (e *Engine) Wait() {
	e.inflight.Wait()
}

// PullOnStartup enumerates every owner partition, fetches each owner's
// areas and products concurrently and joins the results. A non-empty
// combined result fully replaces local state (remote wins); an empty
// remote leaves local state untouched. One owner's fetch failure
// contributes nothing but does not abort the others.
func (e *Engine) PullOnStartup(ctx context.Context) error {
	if !e.enabled() {
		e.setState(StateLocalOnly)
		return nil
	}

	listCtx, cancel := context.WithTimeout(ctx, e.cfg.Timeout)
	defer cancel()

	owners, err := e.remote.ListAllOwners(listCtx)
	if err != nil {
		e.setState(StateLocalOnly)
		return err
	}

	var (
		mu          sync.Mutex
		allAreas    []fields.Area
		allProducts []fields.Product
	)

	g, gctx := errgroup.WithContext(ctx)
	for _, owner := range owners {
		owner := owner
		g.Go(func() error {
			ownerCtx, cancel := context.WithTimeout(gctx, e.cfg.Timeout)
			defer cancel()

			areas, aerr := e.remote.ListAreas(ownerCtx, owner)
			if aerr != nil {
				e.logger.Warn("owner area fetch failed, contributing empty",
					zap.String("owner", owner), zap.Error(aerr))
				areas = nil
			}
			products, perr := e.remote.ListProducts(ownerCtx, owner)
			if perr != nil {
				e.logger.Warn("owner product fetch failed, contributing empty",
					zap.String("owner", owner), zap.Error(perr))
				products = nil
			}

			mu.Lock()
			allAreas = append(allAreas, areas...)
			allProducts = append(allProducts, products...)
			mu.Unlock()

			// Per-owner failures never abort the other fetches
			return nil
		})
	}
	g.Wait()

	if len(allAreas) == 0 && len(allProducts) == 0 {
		e.setState(StateLocalOnly)
		e.logger.Info("remote empty, retaining local state")
		return nil
	}

	e.catalog.ReplaceAll(allAreas, allProducts)
	if err := e.store.Save(allAreas, allProducts); err != nil {
		e.logger.Warn("failed to persist pulled state locally", zap.Error(err))
	}
	e.setState(StateSynced)

	e.logger.Info("local state replaced from remote",
		zap.Int("owners", len(owners)),
		zap.Int("areas", len(allAreas)),
		zap.Int("products", len(allProducts)))

	return nil
}

// fail logs a push failure and notifies the optional handler
func (e *Engine) fail(op, id string, err error) {
	e.logger.Warn("remote write failed",
		zap.String("op", op), zap.String("id", id), zap.Error(err))
	if e.cfg.OnFailure != nil {
		e.cfg.OnFailure(op, id, err)
	}
}

// push runs fn on a goroutine with the configured timeout. The caller
// is never blocked and never sees the error.
func (e *Engine) push(op, id string, fn func(ctx context.Context) error) {
	if !e.enabled() {
		return
	}

	e.inflight.Add(1)
	go func() {
		defer e.inflight.Done()

		ctx, cancel := context.WithTimeout(context.Background(), e.cfg.Timeout)
		defer cancel()

		if err := fn(ctx); err != nil {
			e.fail(op, id, err)
		}
	}()
}

// PushArea writes one changed area document, ensuring its owner
// partition marker exists first.
func (e *Engine) PushArea(a fields.Area) {
	e.push("upsert-area", a.ID, func(ctx context.Context) error {
		if err := e.remote.UpsertOwner(ctx, a.Owner); err != nil {
			return err
		}
		return e.remote.UpsertArea(ctx, a)
	})
}

// PushProduct writes one changed product document under the given
// owner partition. An empty owner means the parent area is gone; the
// write is skipped and logged.
func (e *Engine) PushProduct(p fields.Product, owner string) {
	if owner == "" {
		e.logger.Warn("skipping product push, owner unresolvable",
			zap.String("product_id", p.ID))
		return
	}
	e.push("upsert-product", p.ID, func(ctx context.Context) error {
		if err := e.remote.UpsertOwner(ctx, owner); err != nil {
			return err
		}
		return e.remote.UpsertProduct(ctx, p, owner)
	})
}

// PushDeleteArea deletes one area document
func (e *Engine) PushDeleteArea(id, owner string) {
	if owner == "" {
		e.logger.Warn("skipping area delete, owner unresolvable",
			zap.String("area_id", id))
		return
	}
	e.push("delete-area", id, func(ctx context.Context) error {
		return e.remote.DeleteArea(ctx, id, owner)
	})
}

// PushDeleteProduct deletes one product document. An unresolvable
// owner skips the delete, possibly leaving an orphan remote document;
// FullResync is the correction path.
func (e *Engine) PushDeleteProduct(id, owner string) {
	if owner == "" {
		e.logger.Warn("skipping product delete, owner unresolvable",
			zap.String("product_id", id))
		return
	}
	e.push("delete-product", id, func(ctx context.Context) error {
		return e.remote.DeleteProduct(ctx, id, owner)
	})
}

// FullResync writes every local document to its owner partition, then
// deletes every remote document whose id is absent locally. This is
// the only set-difference reconciliation path; it is meant for bulk
// correction, not per-edit use.
func (e *Engine) FullResync(ctx context.Context) error {
	if !e.enabled() {
		return nil
	}

	areas, products := e.catalog.Snapshot()

	type partition struct {
		areas    []fields.Area
		products []fields.Product
	}
	partitions := make(map[string]*partition)
	ownerByArea := make(map[string]string, len(areas))

	for _, a := range areas {
		if a.Owner == "" {
			continue
		}
		p := partitions[a.Owner]
		if p == nil {
			p = &partition{}
			partitions[a.Owner] = p
		}
		p.areas = append(p.areas, a)
		ownerByArea[a.ID] = a.Owner
	}
	for _, prod := range products {
		owner := ownerByArea[prod.AreaID]
		if owner == "" {
			// Orphan product; nothing to write it under
			continue
		}
		partitions[owner].products = append(partitions[owner].products, prod)
	}

	for owner, part := range partitions {
		if err := e.resyncOwner(ctx, owner, part.areas, part.products); err != nil {
			e.logger.Warn("owner resync failed", zap.String("owner", owner), zap.Error(err))
		}
	}
	return nil
}

func (e *Engine) resyncOwner(ctx context.Context, owner string, areas []fields.Area, products []fields.Product) error {
	opCtx, cancel := context.WithTimeout(ctx, e.cfg.Timeout)
	defer cancel()

	if err := e.remote.UpsertOwner(opCtx, owner); err != nil {
		return err
	}

	localAreaIDs := make(map[string]bool, len(areas))
	for _, a := range areas {
		localAreaIDs[a.ID] = true
		if err := e.remote.UpsertArea(opCtx, a); err != nil {
			e.fail("upsert-area", a.ID, err)
		}
	}
	localProductIDs := make(map[string]bool, len(products))
	for _, p := range products {
		localProductIDs[p.ID] = true
		if err := e.remote.UpsertProduct(opCtx, p, owner); err != nil {
			e.fail("upsert-product", p.ID, err)
		}
	}

	// Delete remote documents absent locally
	remoteAreas, err := e.remote.ListAreas(opCtx, owner)
	if err != nil {
		return err
	}
	for _, ra := range remoteAreas {
		if !localAreaIDs[ra.ID] {
			if derr := e.remote.DeleteArea(opCtx, ra.ID, owner); derr != nil {
				e.fail("delete-area", ra.ID, derr)
			}
		}
	}

	remoteProducts, err := e.remote.ListProducts(opCtx, owner)
	if err != nil {
		return err
	}
	for _, rp := range remoteProducts {
		if !localProductIDs[rp.ID] {
			if derr := e.remote.DeleteProduct(opCtx, rp.ID, owner); derr != nil {
				e.fail("delete-product", rp.ID, derr)
			}
		}
	}

	return nil
}
