package workflow

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	memoryadapter "adbroker/contexts/ad-sales/media-buy-service/adapters/memory"
	"adbroker/contexts/ad-sales/media-buy-service/domain/entities"
	"adbroker/contexts/ad-sales/media-buy-service/ports"
)

type recordingNotifier struct {
	sent []ports.Notification
	urls []string
	err  error
}

func (n *recordingNotifier) Send(_ context.Context, webhookURL string, note ports.Notification) error {
	if n.err != nil {
		return n.err
	}
	n.sent = append(n.sent, note)
	n.urls = append(n.urls, webhookURL)
	return nil
}

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time { return c.now }

func testManager(store *memoryadapter.Store, notifier ports.NotificationSender) Manager {
	return Manager{
		Repo:      store,
		Tenants:   store,
		Notifier:  notifier,
		TenantID:  "tenant-1",
		Principal: entities.Principal{PrincipalID: "prin-1", Name: "Acme"},
		Clock:     fixedClock{now: time.Date(2026, time.March, 1, 9, 0, 0, 0, time.UTC)},

		PlatformName: "Zonal",
	}
}

func TestCreateWorkflowStepPersistsTriple(t *testing.T) {
	store := memoryadapter.NewStore()
	manager := testManager(store, nil)

	stepID := manager.CreateWorkflowStep(context.Background(), CreateStepInput{
		StepType:     entities.StepTypeApproval,
		ToolName:     "activate_media_buy",
		ObjectType:   "media_buy",
		ObjectID:     "zonal_1",
		ObjectAction: entities.ObjectActionActivate,
		StepPrefix:   "a",
	})
	if stepID == "" {
		t.Fatal("expected a step id")
	}
	if !strings.HasPrefix(stepID, "a") || len(stepID) != 6 {
		t.Fatalf("expected prefix + 5 char suffix, got %q", stepID)
	}

	contexts, steps, mappings := store.CountWorkflowRows()
	if contexts != 1 || steps != 1 || mappings != 1 {
		t.Fatalf("expected one row per table, got contexts=%d steps=%d mappings=%d", contexts, steps, mappings)
	}

	step, err := store.GetWorkflowStep(context.Background(), stepID)
	if err != nil {
		t.Fatalf("get step: %v", err)
	}
	if step.Status != entities.StepStatusApproval {
		t.Fatalf("expected default approval status, got %q", step.Status)
	}
	if step.Owner != entities.OwnerPublisher {
		t.Fatalf("expected default publisher owner, got %q", step.Owner)
	}
}

func TestCreateWorkflowStepReturnsEmptyOnPersistenceFailure(t *testing.T) {
	store := memoryadapter.NewStore()
	manager := testManager(store, nil)

	store.FailNextWrite(errors.New("database down"))
	stepID := manager.CreateWorkflowStep(context.Background(), CreateStepInput{
		StepType:   entities.StepTypeCreation,
		ToolName:   "create_media_buy",
		ObjectType: "media_buy",
		ObjectID:   "zonal_1",
		StepPrefix: "c",
	})
	if stepID != "" {
		t.Fatalf("expected empty step id on failure, got %q", stepID)
	}
	contexts, steps, mappings := store.CountWorkflowRows()
	if contexts != 0 || steps != 0 || mappings != 0 {
		t.Fatalf("expected no partial rows, got contexts=%d steps=%d mappings=%d", contexts, steps, mappings)
	}
}

func TestCreateWorkflowStepRollsBackPartialTriple(t *testing.T) {
	store := memoryadapter.NewStore()
	manager := testManager(store, nil)

	store.FailTripleAfterContextWrite(errors.New("connection reset"))
	stepID := manager.CreateWorkflowStep(context.Background(), CreateStepInput{
		StepType:   entities.StepTypeCreation,
		ToolName:   "create_media_buy",
		ObjectType: "media_buy",
		ObjectID:   "zonal_1",
		StepPrefix: "c",
	})
	if stepID != "" {
		t.Fatalf("expected empty step id on mid-write failure, got %q", stepID)
	}
	contexts, steps, mappings := store.CountWorkflowRows()
	if contexts != 0 || steps != 0 || mappings != 0 {
		t.Fatalf("expected the staged context to roll back, got contexts=%d steps=%d mappings=%d", contexts, steps, mappings)
	}
}

func TestNotificationFailureDoesNotUndoStep(t *testing.T) {
	store := memoryadapter.NewStore()
	store.SetNotificationWebhook("tenant-1", "https://hooks.example/T1")
	notifier := &recordingNotifier{err: errors.New("webhook 500")}
	manager := testManager(store, notifier)

	var observedErr error
	manager.OnNotifyResult = func(_ string, err error) { observedErr = err }

	stepID := manager.CreateWorkflowStep(context.Background(), CreateStepInput{
		StepType:   entities.StepTypeApproval,
		ToolName:   "activate_media_buy",
		ObjectType: "media_buy",
		ObjectID:   "zonal_1",
	})
	if stepID == "" {
		t.Fatal("expected step to be recorded despite notification failure")
	}
	if observedErr == nil {
		t.Fatal("expected notify failure to be observable")
	}
	if _, err := store.GetWorkflowStep(context.Background(), stepID); err != nil {
		t.Fatalf("expected step to survive, got %v", err)
	}
}

func TestNotificationSkippedWhenNoWebhookConfigured(t *testing.T) {
	store := memoryadapter.NewStore()
	notifier := &recordingNotifier{}
	manager := testManager(store, notifier)

	called := false
	manager.OnNotifyResult = func(string, error) { called = true }

	manager.CreateWorkflowStep(context.Background(), CreateStepInput{
		StepType:   entities.StepTypeApproval,
		ToolName:   "activate_media_buy",
		ObjectType: "media_buy",
		ObjectID:   "zonal_1",
	})
	if len(notifier.sent) != 0 {
		t.Fatalf("expected no notification without a webhook, got %d", len(notifier.sent))
	}
	if called {
		t.Fatal("expected no notify result for a skipped notification")
	}
}

func TestNotificationCarriesStepFields(t *testing.T) {
	store := memoryadapter.NewStore()
	store.SetNotificationWebhook("tenant-1", "https://hooks.example/T1")
	notifier := &recordingNotifier{}
	manager := testManager(store, notifier)

	stepID := manager.CreateWorkflowStep(context.Background(), CreateStepInput{
		StepType: entities.StepTypeApproval,
		ToolName: "activate_media_buy",
		ActionDetails: map[string]any{
			"action_type":     "activate_campaign",
			"automation_mode": "confirmation_required",
			"instructions":    []string{"Activate the campaign in the zonal console"},
		},
		ObjectType: "media_buy",
		ObjectID:   "zonal_1",
	})
	if len(notifier.sent) != 1 {
		t.Fatalf("expected one notification, got %d", len(notifier.sent))
	}
	note := notifier.sent[0]
	if notifier.urls[0] != "https://hooks.example/T1" {
		t.Fatalf("unexpected webhook url %q", notifier.urls[0])
	}
	if !strings.Contains(note.Title, "Zonal") {
		t.Fatalf("expected platform in title, got %q", note.Title)
	}
	var foundStep, foundAction bool
	for _, field := range note.Fields {
		if field.Title == "Step ID" && field.Value == stepID {
			foundStep = true
		}
		if field.Title == "Action Required" && field.Value == "Activate the campaign in the zonal console" {
			foundAction = true
		}
	}
	if !foundStep || !foundAction {
		t.Fatalf("expected step id and first instruction in fields, got %+v", note.Fields)
	}
}

func TestNotificationStyleByActionType(t *testing.T) {
	cases := []struct {
		name    string
		details map[string]any
		color   string
	}{
		{
			name:    "creative approval",
			details: map[string]any{"action_type": "approve_creatives"},
			color:   "#9B59B6",
		},
		{
			name:    "manual creation",
			details: map[string]any{"action_type": "create_campaign", "automation_mode": "manual"},
			color:   "#FF9500",
		},
		{
			name:    "activation approval",
			details: map[string]any{"action_type": "activate_campaign", "automation_mode": "confirmation_required"},
			color:   "#FFD700",
		},
		{
			name:    "fallback",
			details: map[string]any{},
			color:   "#36A2EB",
		},
	}
	for _, tc := range cases {
		_, _, color := notificationStyle("Zonal", "a1234", tc.details)
		if color != tc.color {
			t.Fatalf("%s: expected color %s, got %s", tc.name, tc.color, color)
		}
	}
}
