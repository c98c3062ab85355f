package zonal

import (
	"context"
	"sync"
	"time"
)

const defaultInventoryTTL = 5 * time.Minute

// inventoryCache memoizes the zone list. The TTL is advisory; stale reads
// are acceptable because zones change rarely and placements against a
// removed zone fail loudly at the backend.
type inventoryCache struct {
	mu        sync.Mutex
	ttl       time.Duration
	zones     []Zone
	fetchedAt time.Time
}

func newInventoryCache(ttl time.Duration) *inventoryCache {
	return &inventoryCache{ttl: ttl}
}

func (c *inventoryCache) get(now time.Time) ([]Zone, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.zones == nil || now.Sub(c.fetchedAt) > c.ttl {
		return nil, false
	}
	return c.zones, true
}

func (c *inventoryCache) put(zones []Zone, now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.zones = zones
	c.fetchedAt = now
}

// ListAvailableZones returns the network's zones, served from cache within
// the TTL window.
func (a *Adapter) ListAvailableZones(ctx context.Context) ([]Zone, error) {
	now := a.now()
	if zones, ok := a.inventory.get(now); ok {
		return zones, nil
	}

	if a.dryRun || a.client == nil {
		zones := []Zone{
			{ID: "zone-1", Name: "Homepage Leaderboard", Width: 728, Height: 90},
			{ID: "zone-2", Name: "Sidebar Medium Rectangle", Width: 300, Height: 250},
		}
		a.inventory.put(zones, now)
		return zones, nil
	}

	zones, err := a.client.ListZones(ctx)
	if err != nil {
		return nil, a.translateBackendError("list zones", err)
	}
	a.inventory.put(zones, now)

	a.logger.Info("zone inventory refreshed",
		"event", "zonal_inventory_refreshed",
		"module", "ad-sales/media-buy-service",
		"layer", "adapter",
		"zone_count", len(zones),
	)
	return zones, nil
}
