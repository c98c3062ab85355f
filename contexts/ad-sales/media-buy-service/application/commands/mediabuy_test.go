package commands

import (
	"context"
	"errors"
	"testing"
	"time"

	memoryadapter "adbroker/contexts/ad-sales/media-buy-service/adapters/memory"
	"adbroker/contexts/ad-sales/media-buy-service/domain/entities"
	domainerrors "adbroker/contexts/ad-sales/media-buy-service/domain/errors"
	"adbroker/contexts/ad-sales/media-buy-service/domain/targeting"
	"adbroker/contexts/ad-sales/media-buy-service/ports"
	"adbroker/internal/shared/events"
)

// fakeAdapter records calls so tests can assert validation ordering.
type fakeAdapter struct {
	caps        targeting.Capabilities
	pricing     map[entities.PricingModel]struct{}
	createCalls int
	updateCalls int
	result      ports.CreateMediaBuyResult
	createErr   error
}

func newFakeAdapter() *fakeAdapter {
	return &fakeAdapter{
		caps:    targeting.Capabilities{GeoCountries: true, NielsenDMA: true},
		pricing: map[entities.PricingModel]struct{}{entities.PricingCPM: {}},
		result: ports.CreateMediaBuyResult{
			BuyerRef:   "buy-1",
			MediaBuyID: entities.BuyID{Backend: "mock", NativeID: "123"},
			Packages: []ports.PackageResult{
				{PackageID: "pkg-1", BuyerRef: "buy-1", Paused: true},
			},
			PlatformLineItemIDs: map[string]string{"pkg-1": "123"},
		},
	}
}

func (f *fakeAdapter) CreateMediaBuy(_ context.Context, _ ports.CreateMediaBuyRequest, _ []entities.MediaPackage, _, _ time.Time, _ map[string]ports.PackagePricing) (ports.CreateMediaBuyResult, error) {
	f.createCalls++
	if f.createErr != nil {
		return ports.CreateMediaBuyResult{}, f.createErr
	}
	return f.result, nil
}

func (f *fakeAdapter) AddCreativeAssets(context.Context, string, []ports.CreativeAsset, time.Time) ([]entities.AssetStatus, error) {
	return nil, nil
}

func (f *fakeAdapter) AssociateCreatives(context.Context, []string, []string) []entities.AssociationResult {
	return nil
}

func (f *fakeAdapter) CheckMediaBuyStatus(context.Context, string, time.Time) (ports.MediaBuyStatusResult, error) {
	return ports.MediaBuyStatusResult{}, nil
}

func (f *fakeAdapter) GetMediaBuyDelivery(context.Context, string, entities.ReportingPeriod, time.Time) (entities.DeliveryReport, error) {
	return entities.DeliveryReport{}, nil
}

func (f *fakeAdapter) UpdateMediaBuyPerformanceIndex(context.Context, string, []entities.PackagePerformance) (bool, error) {
	return true, nil
}

func (f *fakeAdapter) UpdateMediaBuy(_ context.Context, cmd ports.UpdateMediaBuyCommand) (ports.UpdateMediaBuyResult, error) {
	f.updateCalls++
	return ports.UpdateMediaBuyResult{MediaBuyID: cmd.MediaBuyID}, nil
}

func (f *fakeAdapter) SupportedPricingModels() map[entities.PricingModel]struct{} {
	return f.pricing
}

func (f *fakeAdapter) TargetingCapabilities() targeting.Capabilities {
	return f.caps
}

func (f *fakeAdapter) Capabilities() ports.AdapterCapabilities {
	return ports.AdapterCapabilities{}
}

type capturingPublisher struct {
	published []events.Envelope
	topics    []string
	err       error
}

func (p *capturingPublisher) Publish(_ context.Context, topic string, event events.Envelope) error {
	if p.err != nil {
		return p.err
	}
	p.topics = append(p.topics, topic)
	p.published = append(p.published, event)
	return nil
}

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time { return c.now }

var testClock = fixedClock{now: time.Date(2026, time.March, 1, 9, 0, 0, 0, time.UTC)}

func createCommand() CreateMediaBuyCommand {
	start := time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC)
	return CreateMediaBuyCommand{
		Request: ports.CreateMediaBuyRequest{BuyerRef: "buy-1", PONumber: "PO-1"},
		Packages: []entities.MediaPackage{
			{PackageID: "pkg-1", Name: "Homepage"},
		},
		Start: start,
		End:   start.AddDate(0, 1, 0),
		Pricing: map[string]ports.PackagePricing{
			"pkg-1": {Model: entities.PricingCPM, Rate: 10, Currency: "USD"},
		},
	}
}

func TestCreateMediaBuyValidatesTargetingBeforeAdapterCall(t *testing.T) {
	adapter := newFakeAdapter()
	store := memoryadapter.NewStore()
	uc := MediaBuyUseCase{Adapter: adapter, Packages: store, Clock: testClock}

	cmd := createCommand()
	cmd.Request.Targeting = targeting.Spec{
		GeoPostalAreas: []targeting.GeoItem{{System: "us_zip", Values: []string{"10001"}}},
	}

	result, err := uc.CreateMediaBuy(context.Background(), cmd)
	if !errors.Is(err, domainerrors.ErrTargetingRejected) {
		t.Fatalf("expected targeting rejection, got %v", err)
	}
	if len(result.Violations) != 1 {
		t.Fatalf("expected one violation, got %v", result.Violations)
	}
	if adapter.createCalls != 0 {
		t.Fatal("expected no adapter call on targeting rejection")
	}
	pkgs, _ := store.ListPackagesByBuy(context.Background(), "mock_123")
	if len(pkgs) != 0 {
		t.Fatal("expected nothing persisted on targeting rejection")
	}
}

func TestCreateMediaBuyRejectsUnsupportedPricingModel(t *testing.T) {
	adapter := newFakeAdapter()
	uc := MediaBuyUseCase{Adapter: adapter, Packages: memoryadapter.NewStore(), Clock: testClock}

	cmd := createCommand()
	cmd.Pricing["pkg-1"] = ports.PackagePricing{Model: entities.PricingCPCV}

	_, err := uc.CreateMediaBuy(context.Background(), cmd)
	if !errors.Is(err, domainerrors.ErrInvalidRequest) {
		t.Fatalf("expected invalid request, got %v", err)
	}
	if adapter.createCalls != 0 {
		t.Fatal("expected no adapter call for an unsupported pricing model")
	}
}

func TestCreateMediaBuyRejectsInvertedFlight(t *testing.T) {
	uc := MediaBuyUseCase{Adapter: newFakeAdapter(), Packages: memoryadapter.NewStore(), Clock: testClock}

	cmd := createCommand()
	cmd.End = cmd.Start
	if _, err := uc.CreateMediaBuy(context.Background(), cmd); !errors.Is(err, domainerrors.ErrInvalidRequest) {
		t.Fatalf("expected invalid request for zero-length flight, got %v", err)
	}
}

func TestCreateMediaBuyPersistsAdapterState(t *testing.T) {
	adapter := newFakeAdapter()
	store := memoryadapter.NewStore()
	publisher := &capturingPublisher{}
	uc := MediaBuyUseCase{Adapter: adapter, Packages: store, Events: publisher, Clock: testClock}

	result, err := uc.CreateMediaBuy(context.Background(), createCommand())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if result.Result.MediaBuyID.Encode() != "mock_123" {
		t.Fatalf("unexpected buy id %q", result.Result.MediaBuyID.Encode())
	}

	pkgs, err := store.ListPackagesByBuy(context.Background(), "mock_123")
	if err != nil {
		t.Fatalf("list packages: %v", err)
	}
	if len(pkgs) != 1 {
		t.Fatalf("expected one stored package, got %d", len(pkgs))
	}
	if !pkgs[0].Config.Paused {
		t.Fatal("expected pause state from adapter result persisted")
	}
	if pkgs[0].Config.PlatformLineItemID != "123" {
		t.Fatalf("expected platform line item id persisted, got %q", pkgs[0].Config.PlatformLineItemID)
	}
	if !pkgs[0].CreatedAt.Equal(testClock.now) {
		t.Fatalf("expected clock-driven created_at, got %v", pkgs[0].CreatedAt)
	}

	if len(publisher.published) != 1 {
		t.Fatalf("expected one lifecycle event, got %d", len(publisher.published))
	}
	if publisher.topics[0] != "ad-sales.media-buy" || publisher.published[0].EventType != "media_buy.created" {
		t.Fatalf("unexpected event %q on topic %q", publisher.published[0].EventType, publisher.topics[0])
	}
}

func TestCreateMediaBuyEventPublishFailureIsSwallowed(t *testing.T) {
	adapter := newFakeAdapter()
	publisher := &capturingPublisher{err: errors.New("broker down")}
	uc := MediaBuyUseCase{Adapter: adapter, Packages: memoryadapter.NewStore(), Events: publisher, Clock: testClock}

	if _, err := uc.CreateMediaBuy(context.Background(), createCommand()); err != nil {
		t.Fatalf("expected publish failure to be swallowed, got %v", err)
	}
}

func TestUpdateMediaBuyDefaultsToday(t *testing.T) {
	adapter := newFakeAdapter()
	uc := MediaBuyUseCase{Adapter: adapter, Packages: memoryadapter.NewStore(), Clock: testClock}

	_, err := uc.UpdateMediaBuy(context.Background(), UpdateMediaBuyCommand{
		Command: ports.UpdateMediaBuyCommand{MediaBuyID: "mock_123", Action: ports.ActionPauseMediaBuy},
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if adapter.updateCalls != 1 {
		t.Fatalf("expected one adapter call, got %d", adapter.updateCalls)
	}
}

func TestResolveStepRejectsAndCompletes(t *testing.T) {
	store := memoryadapter.NewStore()
	now := testClock.now
	seed := func(stepID string, stepType entities.StepType, requestData map[string]any) {
		err := store.CreateWorkflowTriple(context.Background(), ports.WorkflowTriple{
			Context: entities.WorkflowContext{ContextID: "ctx_" + stepID, TenantID: "tenant-1", CreatedAt: now},
			Step: entities.WorkflowStep{
				StepID:      stepID,
				ContextID:   "ctx_" + stepID,
				Type:        stepType,
				Status:      entities.StepStatusApproval,
				RequestData: requestData,
				CreatedAt:   now,
			},
			Mapping: entities.ObjectWorkflowMapping{ObjectType: "media_buy", ObjectID: "zonal_PO-1", StepID: stepID, CreatedAt: now},
		})
		if err != nil {
			t.Fatalf("seed step %s: %v", stepID, err)
		}
	}
	seed("a1111", entities.StepTypeApproval, nil)
	uc := WorkflowStepUseCase{Workflows: store, Packages: store, Clock: testClock}

	result, err := uc.ResolveStep(context.Background(), ResolveWorkflowStepCommand{StepID: "a1111", Approve: false})
	if err != nil {
		t.Fatalf("reject: %v", err)
	}
	if result.Step.Status != entities.StepStatusRejected {
		t.Fatalf("expected rejected, got %q", result.Step.Status)
	}

	// Terminal steps are never revisited.
	if _, err := uc.ResolveStep(context.Background(), ResolveWorkflowStepCommand{StepID: "a1111", Approve: true}); !errors.Is(err, domainerrors.ErrStepTerminal) {
		t.Fatalf("expected step terminal, got %v", err)
	}
}

func TestResolveCreationStepAttachesPlatformID(t *testing.T) {
	store := memoryadapter.NewStore()
	if err := store.SavePackages(context.Background(), []entities.MediaPackage{{
		PackageID:  "pkg-1",
		MediaBuyID: "zonal_PO-1",
		CreatedAt:  testClock.now,
	}}); err != nil {
		t.Fatalf("seed package: %v", err)
	}
	if err := store.CreateWorkflowTriple(context.Background(), ports.WorkflowTriple{
		Context: entities.WorkflowContext{ContextID: "ctx_c", TenantID: "tenant-1", CreatedAt: testClock.now},
		Step: entities.WorkflowStep{
			StepID:      "c2222",
			ContextID:   "ctx_c",
			Type:        entities.StepTypeCreation,
			Status:      entities.StepStatusApproval,
			RequestData: map[string]any{"media_buy_id": "zonal_PO-1"},
			CreatedAt:   testClock.now,
		},
		Mapping: entities.ObjectWorkflowMapping{ObjectType: "media_buy", ObjectID: "zonal_PO-1", StepID: "c2222", CreatedAt: testClock.now},
	}); err != nil {
		t.Fatalf("seed step: %v", err)
	}
	uc := WorkflowStepUseCase{Workflows: store, Packages: store, Clock: testClock}

	// Approving a creation step without the backend id is invalid.
	if _, err := uc.ResolveStep(context.Background(), ResolveWorkflowStepCommand{StepID: "c2222", Approve: true}); !errors.Is(err, domainerrors.ErrInvalidRequest) {
		t.Fatalf("expected invalid request without platform id, got %v", err)
	}

	result, err := uc.ResolveStep(context.Background(), ResolveWorkflowStepCommand{
		StepID:        "c2222",
		Approve:       true,
		PlatformBuyID: "camp-900",
		ResolvedBy:    "ops@example.com",
	})
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if result.Step.Status != entities.StepStatusCompleted {
		t.Fatalf("expected completed, got %q", result.Step.Status)
	}

	// Rows are annotated, never re-keyed.
	pkg, err := store.GetPackage(context.Background(), "zonal_PO-1", "pkg-1")
	if err != nil {
		t.Fatalf("expected package still keyed by placeholder id, got %v", err)
	}
	if pkg.Config.PlatformLineItemID != "camp-900" {
		t.Fatalf("expected platform id attached, got %q", pkg.Config.PlatformLineItemID)
	}
}
