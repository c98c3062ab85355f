package postgresadapter

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"adbroker/contexts/ad-sales/media-buy-service/domain/entities"
	domainerrors "adbroker/contexts/ad-sales/media-buy-service/domain/errors"
	"adbroker/contexts/ad-sales/media-buy-service/ports"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRepository(db *gorm.DB, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{
		db:     db,
		logger: logger,
	}
}

func (r *Repository) ListPackagesByBuy(ctx context.Context, mediaBuyID string) ([]entities.MediaPackage, error) {
	var rows []packageModel
	if err := r.db.WithContext(ctx).
		Where("media_buy_id = ?", strings.TrimSpace(mediaBuyID)).
		Order("created_at ASC").
		Find(&rows).
		Error; err != nil {
		return nil, err
	}

	items := make([]entities.MediaPackage, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) GetPackage(ctx context.Context, mediaBuyID string, packageID string) (entities.MediaPackage, error) {
	var row packageModel
	err := r.db.WithContext(ctx).
		Where("media_buy_id = ? AND package_id = ?", strings.TrimSpace(mediaBuyID), strings.TrimSpace(packageID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.MediaPackage{}, domainerrors.ErrPackageNotFound
		}
		return entities.MediaPackage{}, err
	}
	return row.toEntity(), nil
}

func (r *Repository) SavePackages(ctx context.Context, packages []entities.MediaPackage) error {
	if len(packages) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, pkg := range packages {
			row := packageModelFromEntity(pkg)
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "package_id"}},
				UpdateAll: true,
			}).Create(&row).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *Repository) SavePackageConfig(ctx context.Context, mediaBuyID string, packageID string, config entities.PackageConfig) error {
	payload, err := json.Marshal(config)
	if err != nil {
		return err
	}
	result := r.db.WithContext(ctx).
		Model(&packageModel{}).
		Where("media_buy_id = ? AND package_id = ?", strings.TrimSpace(mediaBuyID), strings.TrimSpace(packageID)).
		Updates(map[string]any{
			"package_config": payload,
			"updated_at":     time.Now().UTC(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrPackageNotFound
	}
	return nil
}

// AttachPlatformBuyID annotates every package of a buy with the backend id
// supplied after out-of-band creation. Rows keep their original media_buy_id
// key; only the config gains the platform id.
func (r *Repository) AttachPlatformBuyID(ctx context.Context, mediaBuyID string, platformID string) error {
	platformID = strings.TrimSpace(platformID)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rows []packageModel
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("media_buy_id = ?", strings.TrimSpace(mediaBuyID)).
			Find(&rows).
			Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return domainerrors.ErrNoPackagesFound
		}

		for _, row := range rows {
			config := row.config()
			config.PlatformLineItemID = platformID
			payload, err := json.Marshal(config)
			if err != nil {
				return err
			}
			if err := tx.Model(&packageModel{}).
				Where("package_id = ?", row.PackageID).
				Updates(map[string]any{
					"package_config": payload,
					"updated_at":     time.Now().UTC(),
				}).
				Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// CreateWorkflowTriple inserts the context, step and mapping rows in one
// transaction. Either all three commit or none do.
func (r *Repository) CreateWorkflowTriple(ctx context.Context, triple ports.WorkflowTriple) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		contextRow := contextModelFromEntity(triple.Context)
		if err := tx.Create(&contextRow).Error; err != nil {
			return translateInsertError(err)
		}

		stepRow, err := stepModelFromEntity(triple.Step)
		if err != nil {
			return err
		}
		if err := tx.Create(&stepRow).Error; err != nil {
			return translateInsertError(err)
		}

		mappingRow := mappingModelFromEntity(triple.Mapping)
		if err := tx.Create(&mappingRow).Error; err != nil {
			return translateInsertError(err)
		}
		return nil
	})
}

func (r *Repository) GetWorkflowStep(ctx context.Context, stepID string) (entities.WorkflowStep, error) {
	var row workflowStepModel
	err := r.db.WithContext(ctx).
		Where("step_id = ?", strings.TrimSpace(stepID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.WorkflowStep{}, domainerrors.ErrWorkflowStepNotFound
		}
		return entities.WorkflowStep{}, err
	}
	return row.toEntity(), nil
}

func (r *Repository) PendingStepsForObject(ctx context.Context, objectType string, objectID string) ([]entities.WorkflowStep, error) {
	mappingQuery := r.db.
		Model(&mappingModel{}).
		Select("step_id").
		Where("object_type = ? AND object_id = ?", strings.TrimSpace(objectType), strings.TrimSpace(objectID))

	var rows []workflowStepModel
	if err := r.db.WithContext(ctx).
		Where("step_id IN (?)", mappingQuery).
		Where("status IN ?", []string{string(entities.StepStatusApproval), string(entities.StepStatusWorking)}).
		Order("created_at ASC").
		Find(&rows).
		Error; err != nil {
		return nil, err
	}

	items := make([]entities.WorkflowStep, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

// UpdateWorkflowStepStatus transitions a step. Terminal steps are frozen and
// reject further transitions.
func (r *Repository) UpdateWorkflowStepStatus(ctx context.Context, stepID string, status entities.StepStatus) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row workflowStepModel
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("step_id = ?", strings.TrimSpace(stepID)).
			First(&row).
			Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domainerrors.ErrWorkflowStepNotFound
			}
			return err
		}
		if entities.StepStatus(row.Status).IsTerminal() {
			return domainerrors.ErrStepTerminal
		}
		return tx.Model(&workflowStepModel{}).
			Where("step_id = ?", row.StepID).
			Updates(map[string]any{
				"status":     string(status),
				"updated_at": time.Now().UTC(),
			}).
			Error
	})
}

// NotificationWebhook resolves the tenant's webhook. A missing tenant or an
// empty column yields "" without error; notifications are optional.
func (r *Repository) NotificationWebhook(ctx context.Context, tenantID string) (string, error) {
	var row tenantModel
	err := r.db.WithContext(ctx).
		Where("tenant_id = ?", strings.TrimSpace(tenantID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil
		}
		return "", err
	}
	return strings.TrimSpace(row.NotificationWebhookURL), nil
}

type packageModel struct {
	PackageID      string    `gorm:"column:package_id;primaryKey"`
	MediaBuyID     string    `gorm:"column:media_buy_id"`
	ProductID      string    `gorm:"column:product_id"`
	Name           string    `gorm:"column:name"`
	BuyerRef       string    `gorm:"column:buyer_ref"`
	CPM            float64   `gorm:"column:cpm"`
	FlatRate       float64   `gorm:"column:flat_rate"`
	Impressions    int64     `gorm:"column:impressions"`
	Implementation []byte    `gorm:"column:implementation;type:jsonb"`
	PackageConfig  []byte    `gorm:"column:package_config;type:jsonb"`
	CreatedAt      time.Time `gorm:"column:created_at"`
	UpdatedAt      time.Time `gorm:"column:updated_at"`
}

func (packageModel) TableName() string {
	return "media_packages"
}

func packageModelFromEntity(item entities.MediaPackage) packageModel {
	configPayload, err := json.Marshal(item.Config)
	if err != nil {
		configPayload = []byte("{}")
	}
	return packageModel{
		PackageID:      strings.TrimSpace(item.PackageID),
		MediaBuyID:     strings.TrimSpace(item.MediaBuyID),
		ProductID:      strings.TrimSpace(item.ProductID),
		Name:           strings.TrimSpace(item.Name),
		BuyerRef:       strings.TrimSpace(item.BuyerRef),
		CPM:            item.CPM,
		FlatRate:       item.FlatRate,
		Impressions:    item.Impressions,
		Implementation: append([]byte(nil), item.Implementation...),
		PackageConfig:  configPayload,
		CreatedAt:      item.CreatedAt.UTC(),
		UpdatedAt:      item.UpdatedAt.UTC(),
	}
}

func (m packageModel) config() entities.PackageConfig {
	var config entities.PackageConfig
	if len(m.PackageConfig) > 0 {
		_ = json.Unmarshal(m.PackageConfig, &config)
	}
	return config
}

func (m packageModel) toEntity() entities.MediaPackage {
	return entities.MediaPackage{
		PackageID:      m.PackageID,
		MediaBuyID:     m.MediaBuyID,
		ProductID:      m.ProductID,
		Name:           m.Name,
		BuyerRef:       m.BuyerRef,
		CPM:            m.CPM,
		FlatRate:       m.FlatRate,
		Impressions:    m.Impressions,
		Implementation: append(json.RawMessage(nil), m.Implementation...),
		Config:         m.config(),
		CreatedAt:      m.CreatedAt.UTC(),
		UpdatedAt:      m.UpdatedAt.UTC(),
	}
}

type contextModel struct {
	ContextID   string    `gorm:"column:context_id;primaryKey"`
	TenantID    string    `gorm:"column:tenant_id"`
	PrincipalID string    `gorm:"column:principal_id"`
	CreatedAt   time.Time `gorm:"column:created_at"`
}

func (contextModel) TableName() string {
	return "workflow_contexts"
}

func contextModelFromEntity(item entities.WorkflowContext) contextModel {
	return contextModel{
		ContextID:   strings.TrimSpace(item.ContextID),
		TenantID:    strings.TrimSpace(item.TenantID),
		PrincipalID: strings.TrimSpace(item.PrincipalID),
		CreatedAt:   item.CreatedAt.UTC(),
	}
}

type workflowStepModel struct {
	StepID             string    `gorm:"column:step_id;primaryKey"`
	ContextID          string    `gorm:"column:context_id"`
	StepType           string    `gorm:"column:step_type"`
	ToolName           string    `gorm:"column:tool_name"`
	RequestData        []byte    `gorm:"column:request_data;type:jsonb"`
	Status             string    `gorm:"column:status"`
	Owner              string    `gorm:"column:owner"`
	AssignedTo         string    `gorm:"column:assigned_to"`
	TransactionDetails []byte    `gorm:"column:transaction_details;type:jsonb"`
	CreatedAt          time.Time `gorm:"column:created_at"`
	UpdatedAt          time.Time `gorm:"column:updated_at"`
}

func (workflowStepModel) TableName() string {
	return "workflow_steps"
}

func stepModelFromEntity(item entities.WorkflowStep) (workflowStepModel, error) {
	requestData, err := json.Marshal(item.RequestData)
	if err != nil {
		return workflowStepModel{}, err
	}
	transactionDetails, err := json.Marshal(item.TransactionDetails)
	if err != nil {
		return workflowStepModel{}, err
	}
	return workflowStepModel{
		StepID:             strings.TrimSpace(item.StepID),
		ContextID:          strings.TrimSpace(item.ContextID),
		StepType:           string(item.Type),
		ToolName:           strings.TrimSpace(item.ToolName),
		RequestData:        requestData,
		Status:             string(item.Status),
		Owner:              string(item.Owner),
		AssignedTo:         strings.TrimSpace(item.AssignedTo),
		TransactionDetails: transactionDetails,
		CreatedAt:          item.CreatedAt.UTC(),
		UpdatedAt:          item.UpdatedAt.UTC(),
	}, nil
}

func (m workflowStepModel) toEntity() entities.WorkflowStep {
	requestData := map[string]any{}
	if len(m.RequestData) > 0 {
		_ = json.Unmarshal(m.RequestData, &requestData)
	}
	transactionDetails := map[string]any{}
	if len(m.TransactionDetails) > 0 {
		_ = json.Unmarshal(m.TransactionDetails, &transactionDetails)
	}
	return entities.WorkflowStep{
		StepID:             m.StepID,
		ContextID:          m.ContextID,
		Type:               entities.StepType(m.StepType),
		ToolName:           m.ToolName,
		RequestData:        requestData,
		Status:             entities.StepStatus(m.Status),
		Owner:              entities.StepOwner(m.Owner),
		AssignedTo:         m.AssignedTo,
		TransactionDetails: transactionDetails,
		CreatedAt:          m.CreatedAt.UTC(),
		UpdatedAt:          m.UpdatedAt.UTC(),
	}
}

type mappingModel struct {
	StepID     string    `gorm:"column:step_id;primaryKey"`
	ObjectType string    `gorm:"column:object_type"`
	ObjectID   string    `gorm:"column:object_id"`
	Action     string    `gorm:"column:action"`
	CreatedAt  time.Time `gorm:"column:created_at"`
}

func (mappingModel) TableName() string {
	return "object_workflow_mappings"
}

func mappingModelFromEntity(item entities.ObjectWorkflowMapping) mappingModel {
	return mappingModel{
		StepID:     strings.TrimSpace(item.StepID),
		ObjectType: strings.TrimSpace(item.ObjectType),
		ObjectID:   strings.TrimSpace(item.ObjectID),
		Action:     string(item.Action),
		CreatedAt:  item.CreatedAt.UTC(),
	}
}

type tenantModel struct {
	TenantID               string `gorm:"column:tenant_id;primaryKey"`
	Name                   string `gorm:"column:name"`
	NotificationWebhookURL string `gorm:"column:notification_webhook_url"`
}

func (tenantModel) TableName() string {
	return "tenants"
}

func translateInsertError(err error) error {
	if isUniqueViolation(err) {
		return domainerrors.ErrInvalidRequest
	}
	return err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

var (
	_ ports.PackageRepository  = (*Repository)(nil)
	_ ports.WorkflowRepository = (*Repository)(nil)
	_ ports.TenantConfig       = (*Repository)(nil)
)
