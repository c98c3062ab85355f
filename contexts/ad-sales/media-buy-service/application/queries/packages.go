package queries

import (
	"context"
	"strings"

	"adbroker/contexts/ad-sales/media-buy-service/domain/entities"
	domainerrors "adbroker/contexts/ad-sales/media-buy-service/domain/errors"
	"adbroker/contexts/ad-sales/media-buy-service/ports"
)

// PackageQuery serves package read models.
type PackageQuery struct {
	Packages ports.PackageRepository
}

func (q PackageQuery) ListByBuy(ctx context.Context, mediaBuyID string) ([]entities.MediaPackage, error) {
	if strings.TrimSpace(mediaBuyID) == "" {
		return nil, domainerrors.ErrInvalidRequest
	}
	return q.Packages.ListPackagesByBuy(ctx, strings.TrimSpace(mediaBuyID))
}

func (q PackageQuery) Get(ctx context.Context, mediaBuyID string, packageID string) (entities.MediaPackage, error) {
	if strings.TrimSpace(mediaBuyID) == "" || strings.TrimSpace(packageID) == "" {
		return entities.MediaPackage{}, domainerrors.ErrInvalidRequest
	}
	return q.Packages.GetPackage(ctx, strings.TrimSpace(mediaBuyID), strings.TrimSpace(packageID))
}
