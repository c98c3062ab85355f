// Package memoryadapter provides in-memory implementations of the service
// ports for tests and local runs.
package memoryadapter

import (
	"context"
	"sort"
	"strings"
	"sync"

	"adbroker/contexts/ad-sales/media-buy-service/domain/entities"
	domainerrors "adbroker/contexts/ad-sales/media-buy-service/domain/errors"
	"adbroker/contexts/ad-sales/media-buy-service/ports"
)

// Store holds packages, workflow rows and tenant settings behind one mutex.
type Store struct {
	mu        sync.Mutex
	packages  map[string]entities.MediaPackage
	contexts  map[string]entities.WorkflowContext
	steps     map[string]entities.WorkflowStep
	mappings  map[string]entities.ObjectWorkflowMapping
	webhooks  map[string]string
	failWrite error
	failMid   error
}

func NewStore() *Store {
	return &Store{
		packages: make(map[string]entities.MediaPackage),
		contexts: make(map[string]entities.WorkflowContext),
		steps:    make(map[string]entities.WorkflowStep),
		mappings: make(map[string]entities.ObjectWorkflowMapping),
		webhooks: make(map[string]string),
	}
}

// FailNextWrite makes the next mutating call return err. Tests use it to
// exercise persistence failure paths.
func (s *Store) FailNextWrite(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failWrite = err
}

func (s *Store) takeFailure() error {
	err := s.failWrite
	s.failWrite = nil
	return err
}

// FailTripleAfterContextWrite makes the next CreateWorkflowTriple fail after
// the context row has been staged, so tests can prove the triple rolls back
// instead of leaving an orphaned context.
func (s *Store) FailTripleAfterContextWrite(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failMid = err
}

func (s *Store) takeMidFailure() error {
	err := s.failMid
	s.failMid = nil
	return err
}

// SetNotificationWebhook configures the tenant webhook returned by
// NotificationWebhook.
func (s *Store) SetNotificationWebhook(tenantID string, webhookURL string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.webhooks[tenantID] = webhookURL
}

func (s *Store) ListPackagesByBuy(_ context.Context, mediaBuyID string) ([]entities.MediaPackage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	mediaBuyID = strings.TrimSpace(mediaBuyID)
	items := make([]entities.MediaPackage, 0)
	for _, pkg := range s.packages {
		if pkg.MediaBuyID == mediaBuyID {
			items = append(items, clonePackage(pkg))
		}
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].PackageID < items[j].PackageID
		}
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
	return items, nil
}

func (s *Store) GetPackage(_ context.Context, mediaBuyID string, packageID string) (entities.MediaPackage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pkg, ok := s.packages[strings.TrimSpace(packageID)]
	if !ok || pkg.MediaBuyID != strings.TrimSpace(mediaBuyID) {
		return entities.MediaPackage{}, domainerrors.ErrPackageNotFound
	}
	return clonePackage(pkg), nil
}

func (s *Store) SavePackages(_ context.Context, packages []entities.MediaPackage) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.takeFailure(); err != nil {
		return err
	}
	for _, pkg := range packages {
		s.packages[strings.TrimSpace(pkg.PackageID)] = clonePackage(pkg)
	}
	return nil
}

func (s *Store) SavePackageConfig(_ context.Context, mediaBuyID string, packageID string, config entities.PackageConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.takeFailure(); err != nil {
		return err
	}
	pkg, ok := s.packages[strings.TrimSpace(packageID)]
	if !ok || pkg.MediaBuyID != strings.TrimSpace(mediaBuyID) {
		return domainerrors.ErrPackageNotFound
	}
	pkg.Config = cloneConfig(config)
	s.packages[pkg.PackageID] = pkg
	return nil
}

func (s *Store) AttachPlatformBuyID(_ context.Context, mediaBuyID string, platformID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.takeFailure(); err != nil {
		return err
	}
	mediaBuyID = strings.TrimSpace(mediaBuyID)
	found := false
	for id, pkg := range s.packages {
		if pkg.MediaBuyID != mediaBuyID {
			continue
		}
		pkg.Config.PlatformLineItemID = strings.TrimSpace(platformID)
		s.packages[id] = pkg
		found = true
	}
	if !found {
		return domainerrors.ErrNoPackagesFound
	}
	return nil
}

// CreateWorkflowTriple stores all three rows or none. A mid-write failure
// removes the already staged context row before returning, so the store
// never exposes a partial triple.
func (s *Store) CreateWorkflowTriple(_ context.Context, triple ports.WorkflowTriple) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.takeFailure(); err != nil {
		return err
	}
	if _, ok := s.steps[triple.Step.StepID]; ok {
		return domainerrors.ErrInvalidRequest
	}
	s.contexts[triple.Context.ContextID] = triple.Context
	if err := s.takeMidFailure(); err != nil {
		delete(s.contexts, triple.Context.ContextID)
		return err
	}
	s.steps[triple.Step.StepID] = cloneStep(triple.Step)
	s.mappings[triple.Mapping.StepID] = triple.Mapping
	return nil
}

func (s *Store) GetWorkflowStep(_ context.Context, stepID string) (entities.WorkflowStep, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	step, ok := s.steps[strings.TrimSpace(stepID)]
	if !ok {
		return entities.WorkflowStep{}, domainerrors.ErrWorkflowStepNotFound
	}
	return cloneStep(step), nil
}

func (s *Store) PendingStepsForObject(_ context.Context, objectType string, objectID string) ([]entities.WorkflowStep, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := make([]entities.WorkflowStep, 0)
	for _, mapping := range s.mappings {
		if mapping.ObjectType != strings.TrimSpace(objectType) || mapping.ObjectID != strings.TrimSpace(objectID) {
			continue
		}
		step, ok := s.steps[mapping.StepID]
		if !ok || step.Status.IsTerminal() {
			continue
		}
		items = append(items, cloneStep(step))
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].StepID < items[j].StepID
		}
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
	return items, nil
}

func (s *Store) UpdateWorkflowStepStatus(_ context.Context, stepID string, status entities.StepStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.takeFailure(); err != nil {
		return err
	}
	step, ok := s.steps[strings.TrimSpace(stepID)]
	if !ok {
		return domainerrors.ErrWorkflowStepNotFound
	}
	if step.Status.IsTerminal() {
		return domainerrors.ErrStepTerminal
	}
	step.Status = status
	s.steps[step.StepID] = step
	return nil
}

func (s *Store) NotificationWebhook(_ context.Context, tenantID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.webhooks[strings.TrimSpace(tenantID)], nil
}

// CountWorkflowRows reports stored row counts for atomicity assertions.
func (s *Store) CountWorkflowRows() (contexts int, steps int, mappings int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.contexts), len(s.steps), len(s.mappings)
}

func clonePackage(pkg entities.MediaPackage) entities.MediaPackage {
	pkg.Implementation = append([]byte(nil), pkg.Implementation...)
	pkg.Config = cloneConfig(pkg.Config)
	return pkg
}

func cloneConfig(config entities.PackageConfig) entities.PackageConfig {
	config.AdvertisementIDs = append([]string(nil), config.AdvertisementIDs...)
	return config
}

func cloneStep(step entities.WorkflowStep) entities.WorkflowStep {
	requestData := make(map[string]any, len(step.RequestData))
	for key, value := range step.RequestData {
		requestData[key] = value
	}
	transactionDetails := make(map[string]any, len(step.TransactionDetails))
	for key, value := range step.TransactionDetails {
		transactionDetails[key] = value
	}
	step.RequestData = requestData
	step.TransactionDetails = transactionDetails
	return step
}

var (
	_ ports.PackageRepository  = (*Store)(nil)
	_ ports.WorkflowRepository = (*Store)(nil)
	_ ports.TenantConfig       = (*Store)(nil)
)
