package repository

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"FareFlex/internal/domain/models"
	"FareFlex/internal/domain/repository"
	"FareFlex/pkg/cache"
)

const marketKeyPrefix = "market:fares"

// CachedMarketSnapshots keeps the latest competitor fare per (route, carrier)
// in the cache layer, one JSON entry per route with a TTL. Stale carriers age
// out on both read and write so a dead feed cannot pin old prices.
type CachedMarketSnapshots struct {
	mu     sync.Mutex
	cache  cache.Service
	ttl    time.Duration
	maxAge time.Duration
	now    func() time.Time
}

// NewCachedMarketSnapshots builds the snapshot store. ttl bounds the cache
// entry lifetime, maxAge bounds how old an individual fare may be before the
// competition factor stops seeing it.
func NewCachedMarketSnapshots(c cache.Service, ttl, maxAge time.Duration) *CachedMarketSnapshots {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	if maxAge <= 0 {
		maxAge = ttl
	}
	return &CachedMarketSnapshots{cache: c, ttl: ttl, maxAge: maxAge, now: time.Now}
}

// Entries are stored as JSON strings because the cache backends only
// round-trip strings losslessly.
func (m *CachedMarketSnapshots) load(ctx context.Context, key string) map[string]models.FareTick {
	var raw string
	if err := m.cache.Get(ctx, key, &raw); err != nil {
		return nil
	}
	var byCarrier map[string]models.FareTick
	if err := json.Unmarshal([]byte(raw), &byCarrier); err != nil {
		return nil
	}
	return byCarrier
}

// CompetitorPrices returns the fresh fares observed for the route. A cache
// miss or decode failure yields nil, which the competition factor treats as
// no signal.
func (m *CachedMarketSnapshots) CompetitorPrices(ctx context.Context, route string) []float64 {
	byCarrier := m.load(ctx, cache.GenerateKey(marketKeyPrefix, route))
	if len(byCarrier) == 0 {
		return nil
	}

	cutoff := m.now().Add(-m.maxAge).Unix()
	prices := make([]float64, 0, len(byCarrier))
	for _, tick := range byCarrier {
		if tick.Timestamp < cutoff {
			continue
		}
		prices = append(prices, tick.Price)
	}
	if len(prices) == 0 {
		return nil
	}
	return prices
}

// Record upserts one carrier's fare into the route snapshot.
func (m *CachedMarketSnapshots) Record(ctx context.Context, tick *models.FareTick) error {
	if tick == nil || tick.Route == "" {
		return errors.New("market snapshot: empty tick")
	}

	// Read-modify-write on the route entry. The lock only serializes writers
	// in this process; cross-process feeds partition routes per consumer group
	// so this is sufficient.
	m.mu.Lock()
	defer m.mu.Unlock()

	key := cache.GenerateKey(marketKeyPrefix, tick.Route)
	byCarrier := m.load(ctx, key)
	if byCarrier == nil {
		byCarrier = make(map[string]models.FareTick)
	}

	cutoff := m.now().Add(-m.maxAge).Unix()
	for carrier, old := range byCarrier {
		if old.Timestamp < cutoff {
			delete(byCarrier, carrier)
		}
	}
	byCarrier[tick.Carrier] = *tick

	raw, err := json.Marshal(byCarrier)
	if err != nil {
		return err
	}
	return m.cache.Set(ctx, key, string(raw), m.ttl)
}

var _ repository.MarketSnapshots = (*CachedMarketSnapshots)(nil)
