package zonal

import (
	"context"
	"testing"
	"time"

	memoryadapter "adbroker/contexts/ad-sales/media-buy-service/adapters/memory"
	"adbroker/contexts/ad-sales/media-buy-service/application/workflow"
	"adbroker/contexts/ad-sales/media-buy-service/domain/entities"
)

type countingZoneClient struct {
	*fakeClient
	listCalls int
}

func (c *countingZoneClient) ListZones(ctx context.Context) ([]Zone, error) {
	c.listCalls++
	return c.fakeClient.ListZones(ctx)
}

type movingClock struct {
	now time.Time
}

func (c *movingClock) Now() time.Time { return c.now }

func newInventoryAdapter(t *testing.T, client Client, clock *movingClock, ttl time.Duration) *Adapter {
	t.Helper()
	store := memoryadapter.NewStore()
	principal := entities.Principal{
		PrincipalID: "prin-1",
		Name:        "Acme",
		AdapterIDs:  map[string]string{BackendName: "adv-77"},
	}
	adapter, err := NewAdapter(Dependencies{
		Connection: ConnectionConfig{NetworkID: "net-1", APIKey: "key-1"},
		Principal:  principal,
		TenantID:   "tenant-1",
		Client:     client,
		Packages:   store,
		Workflows: workflow.Manager{
			Repo:      store,
			Tenants:   store,
			TenantID:  "tenant-1",
			Principal: principal,
			Clock:     clock,
		},
		Clock:        clock,
		InventoryTTL: ttl,
	})
	if err != nil {
		t.Fatalf("new adapter: %v", err)
	}
	return adapter
}

func TestListAvailableZonesServedFromCache(t *testing.T) {
	client := &countingZoneClient{fakeClient: newFakeClient()}
	client.zones = []Zone{{ID: "zone-1", Name: "Homepage", Width: 728, Height: 90}}
	clock := &movingClock{now: testClock.now}
	adapter := newInventoryAdapter(t, client, clock, 5*time.Minute)

	zones, err := adapter.ListAvailableZones(context.Background())
	if err != nil {
		t.Fatalf("first list: %v", err)
	}
	if len(zones) != 1 || zones[0].ID != "zone-1" {
		t.Fatalf("unexpected zones %+v", zones)
	}

	clock.now = clock.now.Add(time.Minute)
	if _, err := adapter.ListAvailableZones(context.Background()); err != nil {
		t.Fatalf("second list: %v", err)
	}
	if client.listCalls != 1 {
		t.Fatalf("expected cache hit within ttl, backend called %d times", client.listCalls)
	}
}

func TestListAvailableZonesRefreshesAfterTTL(t *testing.T) {
	client := &countingZoneClient{fakeClient: newFakeClient()}
	client.zones = []Zone{{ID: "zone-1", Name: "Homepage", Width: 728, Height: 90}}
	clock := &movingClock{now: testClock.now}
	adapter := newInventoryAdapter(t, client, clock, 5*time.Minute)

	if _, err := adapter.ListAvailableZones(context.Background()); err != nil {
		t.Fatalf("first list: %v", err)
	}

	clock.now = clock.now.Add(6 * time.Minute)
	if _, err := adapter.ListAvailableZones(context.Background()); err != nil {
		t.Fatalf("list after expiry: %v", err)
	}
	if client.listCalls != 2 {
		t.Fatalf("expected refresh after ttl, backend called %d times", client.listCalls)
	}
}

func TestListAvailableZonesDryRun(t *testing.T) {
	store := memoryadapter.NewStore()
	principal := entities.Principal{PrincipalID: "prin-1", Name: "Acme"}
	adapter, err := NewAdapter(Dependencies{
		Principal: principal,
		TenantID:  "tenant-1",
		DryRun:    true,
		Packages:  store,
		Workflows: workflow.Manager{
			Repo:      store,
			Tenants:   store,
			TenantID:  "tenant-1",
			Principal: principal,
			Clock:     testClock,
		},
		Clock: testClock,
	})
	if err != nil {
		t.Fatalf("new adapter: %v", err)
	}

	zones, err := adapter.ListAvailableZones(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(zones) == 0 {
		t.Fatal("expected canned zones in dry-run mode")
	}
}
