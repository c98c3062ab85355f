package mock

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	memoryadapter "adbroker/contexts/ad-sales/media-buy-service/adapters/memory"
	"adbroker/contexts/ad-sales/media-buy-service/application/workflow"
	"adbroker/contexts/ad-sales/media-buy-service/domain/entities"
	domainerrors "adbroker/contexts/ad-sales/media-buy-service/domain/errors"
	"adbroker/contexts/ad-sales/media-buy-service/ports"
)

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time { return c.now }

var testClock = fixedClock{now: time.Date(2026, time.March, 1, 9, 0, 0, 0, time.UTC)}

func newTestAdapter(t *testing.T, store *memoryadapter.Store) *Adapter {
	t.Helper()
	principal := entities.Principal{PrincipalID: "prin-1", Name: "Acme"}
	return NewAdapter(Dependencies{
		Principal: principal,
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
}

func implementation(t *testing.T, mode string) json.RawMessage {
	t.Helper()
	raw, err := json.Marshal(map[string]string{"automation_mode": mode})
	if err != nil {
		t.Fatalf("marshal implementation: %v", err)
	}
	return raw
}

func testPackages(t *testing.T, mode string) []entities.MediaPackage {
	t.Helper()
	return []entities.MediaPackage{{
		PackageID:      "pkg-1",
		ProductID:      "prod-1",
		BuyerRef:       "buyer-pkg-1",
		Implementation: implementation(t, mode),
	}}
}

func TestCreateMediaBuyManualOmitsLineItemIDs(t *testing.T) {
	store := memoryadapter.NewStore()
	adapter := newTestAdapter(t, store)

	result, err := adapter.CreateMediaBuy(context.Background(),
		ports.CreateMediaBuyRequest{BuyerRef: "buyer-1", PONumber: "PO-1001"},
		testPackages(t, "manual"),
		testClock.now, testClock.now.Add(14*24*time.Hour), nil)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if len(result.PlatformLineItemIDs) != 0 {
		t.Fatalf("expected no line item ids before creation approval, got %v", result.PlatformLineItemIDs)
	}
	if !strings.HasPrefix(result.WorkflowStepID, "c") {
		t.Fatalf("expected creation step with prefix c, got %q", result.WorkflowStepID)
	}
	for _, pkg := range result.Packages {
		if !pkg.Paused {
			t.Fatalf("expected manual packages paused, got %+v", pkg)
		}
	}
}

func TestCreateMediaBuyAutomaticReturnsLineItemIDs(t *testing.T) {
	store := memoryadapter.NewStore()
	adapter := newTestAdapter(t, store)

	result, err := adapter.CreateMediaBuy(context.Background(),
		ports.CreateMediaBuyRequest{BuyerRef: "buyer-1"},
		testPackages(t, "automatic"),
		testClock.now, testClock.now.Add(14*24*time.Hour), nil)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if result.PlatformLineItemIDs["pkg-1"] != "mock-li-pkg-1" {
		t.Fatalf("expected line item id for automatic buy, got %v", result.PlatformLineItemIDs)
	}
	if result.WorkflowStepID != "" {
		t.Fatalf("expected no workflow step for automatic buy, got %q", result.WorkflowStepID)
	}
}

func TestPauseUnknownBuyReturnsNoPackages(t *testing.T) {
	store := memoryadapter.NewStore()
	adapter := newTestAdapter(t, store)

	_, err := adapter.UpdateMediaBuy(context.Background(), ports.UpdateMediaBuyCommand{
		MediaBuyID: "mock_404",
		Action:     ports.ActionPauseMediaBuy,
	})
	adapterErr, ok := domainerrors.AsAdapterError(err)
	if !ok || adapterErr.Code != domainerrors.CodeNoPackagesFound {
		t.Fatalf("expected no_packages_found, got %v", err)
	}
}

func TestCheckMediaBuyStatusFollowsStoredState(t *testing.T) {
	store := memoryadapter.NewStore()
	err := store.SavePackages(context.Background(), []entities.MediaPackage{{
		PackageID:      "pkg-1",
		MediaBuyID:     "mock_abc",
		Implementation: implementation(t, "manual"),
		Config:         entities.PackageConfig{Paused: true},
		CreatedAt:      testClock.now,
	}})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	adapter := newTestAdapter(t, store)

	result, err := adapter.CheckMediaBuyStatus(context.Background(), "mock_abc", testClock.now)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if result.Status != entities.BuyStatusPendingManual {
		t.Fatalf("expected pending_manual before creation approval, got %q", result.Status)
	}

	if err := store.AttachPlatformBuyID(context.Background(), "mock_abc", "cmp-9"); err != nil {
		t.Fatalf("attach: %v", err)
	}
	if _, err := adapter.UpdateMediaBuy(context.Background(), ports.UpdateMediaBuyCommand{
		MediaBuyID: "mock_abc",
		Action:     ports.ActionResumeMediaBuy,
		Today:      testClock.now,
	}); err != nil {
		t.Fatalf("resume: %v", err)
	}

	result, err = adapter.CheckMediaBuyStatus(context.Background(), "mock_abc", testClock.now)
	if err != nil {
		t.Fatalf("status after resume: %v", err)
	}
	if result.Status != entities.BuyStatusActive {
		t.Fatalf("expected active after resume, got %q", result.Status)
	}
}
