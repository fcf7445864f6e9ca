// Package gateway implements the freshness orchestrator: the control flow
// that decides, per request, whether to serve from the durable store, the
// fast store, or a coalesced upstream fetch.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/courtside/scoregate/pkg/cache"
	"github.com/courtside/scoregate/pkg/coalesce"
	"github.com/courtside/scoregate/pkg/durable"
	"github.com/courtside/scoregate/pkg/policy"
	"github.com/courtside/scoregate/pkg/sports"
)

// Source labels where a response was served from.
type Source string

const (
	SourceDurable    Source = "durable"
	SourceIndex      Source = "index"
	SourceCache      Source = "cache"
	SourceCacheStale Source = "cache-stale"
	SourceNetwork    Source = "network"
)

// Provider is the upstream adapter consumed by the orchestrator. The
// orchestrator is its sole caller.
type Provider interface {
	FetchScoreboard(ctx context.Context, league sports.League, date string) (*sports.Scoreboard, error)
	FetchBoxScore(ctx context.Context, gameID string) (*sports.BoxScore, error)
	FetchStandings(ctx context.Context, league sports.League, season string) (*sports.Standings, error)
	Healthy() bool
}

// DurableStore is the permanent store consumed by the orchestrator.
type DurableStore interface {
	Get(ctx context.Context, key cache.Key) (*cache.Entry, error)
	Put(ctx context.Context, key cache.Key, entry *cache.Entry) error
	Invalidate(ctx context.Context, key cache.Key) error
	GetDateRecord(ctx context.Context, league sports.League, date string) (durable.DateRecord, bool, error)
	UpsertDateRecord(ctx context.Context, rec durable.DateRecord) error
	DeleteDateRecord(ctx context.Context, league sports.League, date string) error
	ListVerifiedDates(ctx context.Context, league sports.League) ([]string, error)
	Ping(ctx context.Context) error
}

// Orchestrator owns the freshness decision logic. Construct one at process
// start and pass it to request handlers; it holds no global state.
type Orchestrator struct {
	fast      cache.Store
	durable   DurableStore
	coalescer *coalesce.Coalescer
	provider  Provider
	policy    *policy.Policy
	logger    zerolog.Logger
	now       func() time.Time

	// refreshes tracks detached background refreshes so Close can drain
	// them on shutdown.
	refreshes sync.WaitGroup
}

// New creates an orchestrator.
func New(fast cache.Store, ds DurableStore, prov Provider, pol *policy.Policy) *Orchestrator {
	if fast == nil {
		fast = cache.NewNop()
	}
	if pol == nil {
		pol = policy.New(nil)
	}
	return &Orchestrator{
		fast:      fast,
		durable:   ds,
		coalescer: coalesce.New(),
		provider:  prov,
		policy:    pol,
		logger:    log.With().Str("component", "gateway").Logger(),
		now:       time.Now,
	}
}

// Close drains in-flight background refreshes.
func (o *Orchestrator) Close() {
	o.refreshes.Wait()
}

// Resolution is the outcome of resolving one entity request.
type Resolution struct {
	Entry  *cache.Entry
	Source Source
}

// CacheHit reports whether the response avoided an upstream call.
func (r *Resolution) CacheHit() bool {
	return r.Source != SourceNetwork
}

// StorageType maps the source onto the API's meta.storageType vocabulary.
func (r *Resolution) StorageType() string {
	switch r.Source {
	case SourceDurable:
		return "permanent"
	case SourceNetwork:
		return "api"
	default:
		return "cache"
	}
}

// fetched is one upstream fetch outcome, before classification.
type fetched struct {
	value any
	state policy.State

	// gate validates the entity's substructure before a durable write.
	// nil means the entity is never durable regardless of class.
	gate func() error

	// after runs inside the coalesced flight once stores are updated,
	// e.g. to refresh the scoreboard-date index.
	after func(ctx context.Context)
}

// request describes one resolvable entity.
type request struct {
	key    cache.Key
	entity sports.EntityType

	// shortcut, when set, is consulted after a durable miss. It returns a
	// synthesized value for date-scoped queries whose date index proves no
	// upstream call is needed.
	shortcut func(ctx context.Context) (*fetched, bool, error)

	fetch func(ctx context.Context) (*fetched, error)
}

// resolve runs the freshness state machine for one request.
func (o *Orchestrator) resolve(ctx context.Context, req request) (*Resolution, error) {
	keyStr := req.key.String()

	// Step 1: durable store.
	if o.durable != nil {
		entry, err := o.durable.Get(ctx, req.key)
		switch {
		case err == nil:
			servedTotal.WithLabelValues(string(SourceDurable)).Inc()
			return &Resolution{Entry: entry, Source: SourceDurable}, nil
		case !errors.Is(err, durable.ErrMiss):
			// Durable read failures degrade to the fast path.
			o.logger.Warn().Err(err).Str("key", keyStr).Msg("Durable store read failed")
		}
	}

	// Step 2: known-empty / out-of-season shortcut for date-scoped queries.
	if req.shortcut != nil {
		f, ok, err := req.shortcut(ctx)
		if err != nil {
			o.logger.Warn().Err(err).Str("key", keyStr).Msg("Date index lookup failed")
		} else if ok {
			entry, err := o.store(ctx, req, f)
			if err != nil {
				return nil, err
			}
			servedTotal.WithLabelValues(string(SourceIndex)).Inc()
			return &Resolution{Entry: entry, Source: SourceIndex}, nil
		}
	}

	// Step 3: fast store with read-time verdict.
	verdict := policy.VerdictMiss
	var cached *cache.Entry
	if entry, err := o.fast.Get(ctx, req.key); err == nil {
		cached = entry
		params := o.policy.Params(req.entity, entry.Class, entry.EndedAt, o.now())
		verdict = policy.Evaluate(params, entry.Age(o.now()))
	} else if !errors.Is(err, cache.ErrMiss) {
		// Unreadable entries are equivalent to a miss.
		o.logger.Warn().Err(err).Str("key", keyStr).Msg("Fast store read failed")
	}

	switch verdict {
	case policy.VerdictFresh:
		servedTotal.WithLabelValues(string(SourceCache)).Inc()
		return &Resolution{Entry: cached, Source: SourceCache}, nil

	case policy.VerdictStale:
		o.refreshInBackground(req)
		servedTotal.WithLabelValues(string(SourceCacheStale)).Inc()
		return &Resolution{Entry: cached, Source: SourceCacheStale}, nil
	}

	// Step 4: expired or miss - block on the coalesced fetch.
	entry, err := o.fetchCoalesced(ctx, req)
	if err != nil {
		servedTotal.WithLabelValues("error").Inc()
		return nil, err
	}
	servedTotal.WithLabelValues(string(SourceNetwork)).Inc()
	return &Resolution{Entry: entry, Source: SourceNetwork}, nil
}

// fetchCoalesced runs the upstream fetch through the coalescer: N
// concurrent callers for one key share a single upstream call and receive
// the same entry or the same error. Failures are never cached and never
// sticky.
func (o *Orchestrator) fetchCoalesced(ctx context.Context, req request) (*cache.Entry, error) {
	v, _, err := o.coalescer.Do(ctx, req.key.String(), func() (any, error) {
		// The flight runs on its own context so a disconnecting caller
		// cannot abort a fetch other callers are waiting on.
		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 45*time.Second)
		defer cancel()

		f, err := req.fetch(fctx)
		if err != nil {
			return nil, err
		}
		return o.store(fctx, req, f)
	})
	if err != nil {
		return nil, err
	}
	return v.(*cache.Entry), nil
}

// store classifies a fetch outcome and writes it back per policy: durable
// first when eligible and the gate passes, then always the fast store so a
// concurrent request arriving before the durable write lands still gets a
// fast path. Fast-store write failures are logged, never surfaced.
func (o *Orchestrator) store(ctx context.Context, req request, f *fetched) (*cache.Entry, error) {
	now := o.now()
	class := o.policy.Classify(req.entity, f.state)
	params := o.policy.Params(req.entity, class, f.state.EndedAt, now)

	entry, err := cache.NewEntry(f.value, class, f.state.EndedAt, now)
	if err != nil {
		return nil, fmt.Errorf("encode entry: %w", err)
	}

	if params.Durable && o.durable != nil {
		if f.gate == nil {
			o.logger.Error().Str("key", req.key.String()).
				Msg("Durable-classified entity has no validation gate, skipping durable write")
		} else if gateErr := f.gate(); gateErr != nil {
			// Final-flagged but incomplete upstream payload: cache it
			// briefly, never durably. The short TTL forces a re-fetch.
			durableRejectsTotal.Inc()
			o.logger.Warn().Err(gateErr).Str("key", req.key.String()).
				Msg("Durability gate rejected final entity")
			entry.Class = policy.ClassLive
		} else if putErr := o.durable.Put(ctx, req.key, entry); putErr != nil && !errors.Is(putErr, durable.ErrExists) {
			o.logger.Warn().Err(putErr).Str("key", req.key.String()).Msg("Durable store write failed")
		}
	}

	hardTTL := o.policy.Params(req.entity, entry.Class, entry.EndedAt, now).StaleDeadline()
	if err := o.fast.Set(ctx, req.key, entry, hardTTL); err != nil {
		o.logger.Warn().Err(err).Str("key", req.key.String()).Msg("Fast store write failed")
	}

	if f.after != nil {
		f.after(ctx)
	}

	return entry, nil
}

// refreshInBackground revalidates a stale entry without blocking the
// caller. Errors are logged and discarded; the stale value remains
// servable until the next attempt.
func (o *Orchestrator) refreshInBackground(req request) {
	o.refreshes.Add(1)
	refreshesTotal.Inc()
	go func() {
		defer o.refreshes.Done()
		defer func() {
			if r := recover(); r != nil {
				o.logger.Error().Interface("panic", r).
					Str("key", req.key.String()).
					Msg("Background refresh panicked")
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), 45*time.Second)
		defer cancel()

		if _, err := o.fetchCoalesced(ctx, req); err != nil {
			o.logger.Warn().Err(err).Str("key", req.key.String()).
				Msg("Background refresh failed")
		}
	}()
}

// Invalidate removes an entity from both stores and clears any in-flight
// coalescer slot. This is the sanctioned path to replace a durable entry
// after an upstream correction.
func (o *Orchestrator) Invalidate(ctx context.Context, key cache.Key) error {
	if o.durable != nil {
		if err := o.durable.Invalidate(ctx, key); err != nil {
			return fmt.Errorf("invalidate durable: %w", err)
		}
		// A scoreboard correction must also drop the date record, or a
		// gameCount == 0 index entry keeps answering for the date without
		// ever refetching.
		if key.Entity == sports.EntityScoreboard && key.Date != "" {
			if err := o.durable.DeleteDateRecord(ctx, key.League, key.Date); err != nil {
				return fmt.Errorf("invalidate date record: %w", err)
			}
		}
	}
	if err := o.fast.Evict(ctx, key); err != nil {
		return fmt.Errorf("evict fast: %w", err)
	}
	o.coalescer.Forget(key.String())
	o.logger.Info().Str("key", key.String()).Msg("Entity invalidated")
	return nil
}
