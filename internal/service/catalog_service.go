package service

import (
	"context"
	"fmt"

	"perdami-store/internal/models"
	"perdami-store/internal/util"

	"go.uber.org/zap"
)

// CatalogStore is the persistence surface the catalog service needs.
type CatalogStore interface {
	GetVisibleBundles(ctx context.Context) ([]models.ProductBundle, error)
	GetAllBundles(ctx context.Context) ([]models.ProductBundle, error)
	GetBundleByID(ctx context.Context, id int64) (*models.ProductBundle, error)
	UpdateBundleVisibility(ctx context.Context, id int64, isActive, showToCustomer bool) error
}

// CatalogCache caches the visible-bundle catalog.
// *redisclient.Client satisfies it.
type CatalogCache interface {
	GetCachedCatalog(ctx context.Context) ([]models.ProductBundle, error)
	SetCachedCatalog(ctx context.Context, bundles []models.ProductBundle) error
	InvalidateCatalog(ctx context.Context) error
}

// CatalogService serves the bundle catalog. The customer view is cached
// in redis; cache failures fall back to the database.
type CatalogService struct {
	store  CatalogStore
	cache  CatalogCache
	logger *zap.Logger
}

// NewCatalogService creates a new catalog service
func NewCatalogService(store CatalogStore, cache CatalogCache) *CatalogService {
	return &CatalogService{
		store:  store,
		cache:  cache,
		logger: util.GetLogger(),
	}
}

// GetVisibleBundles returns the bundles a customer may see
func (cs *CatalogService) GetVisibleBundles(ctx context.Context) ([]models.ProductBundle, error) {
	ctx, span := util.StartSpan(ctx, "CatalogService.GetVisibleBundles")
	defer span.End()

	if cs.cache != nil {
		cached, err := cs.cache.GetCachedCatalog(ctx)
		if err != nil {
			cs.logger.Warn("Catalog cache read failed, falling back to DB", zap.Error(err))
		} else if cached != nil {
			util.CatalogCacheHitsTotal.Inc()
			return cached, nil
		} else {
			util.CatalogCacheMissesTotal.Inc()
		}
	}

	bundles, err := cs.store.GetVisibleBundles(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load bundles: %w", err)
	}

	if cs.cache != nil {
		if err := cs.cache.SetCachedCatalog(ctx, bundles); err != nil {
			cs.logger.Warn("Catalog cache write failed", zap.Error(err))
		}
	}

	return bundles, nil
}

// GetVisibleBundle returns one bundle if a customer may see it
func (cs *CatalogService) GetVisibleBundle(ctx context.Context, id int64) (*models.ProductBundle, error) {
	bundle, err := cs.store.GetBundleByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !bundle.IsActive || !bundle.ShowToCustomer {
		return nil, fmt.Errorf("%w: %d", ErrBundleNotAvailable, id)
	}
	return bundle, nil
}

// GetAllBundles returns every bundle including hidden ones. Admin only.
func (cs *CatalogService) GetAllBundles(ctx context.Context) ([]models.ProductBundle, error) {
	return cs.store.GetAllBundles(ctx)
}

// SetBundleVisibility updates a bundle's flags and drops the cached
// catalog so customers see the change immediately.
func (cs *CatalogService) SetBundleVisibility(ctx context.Context, id int64, isActive, showToCustomer bool) error {
	if err := cs.store.UpdateBundleVisibility(ctx, id, isActive, showToCustomer); err != nil {
		return fmt.Errorf("failed to update bundle visibility: %w", err)
	}

	if cs.cache != nil {
		if err := cs.cache.InvalidateCatalog(ctx); err != nil {
			cs.logger.Warn("Catalog cache invalidation failed", zap.Error(err))
		}
	}

	cs.logger.Info("Bundle visibility updated",
		zap.Int64("bundle_id", id),
		zap.Bool("is_active", isActive),
		zap.Bool("show_to_customer", showToCustomer))
	return nil
}
