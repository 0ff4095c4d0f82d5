package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"perdami-store/internal/models"
)

// GetVisibleBundles retrieves bundles a customer may see: active and
// flagged show_to_customer.
func (s *Store) GetVisibleBundles(ctx context.Context) ([]models.ProductBundle, error) {
	var bundles []models.ProductBundle
	err := s.db.SelectContext(ctx, &bundles,
		"SELECT * FROM product_bundles WHERE is_active = true AND show_to_customer = true ORDER BY id")
	return bundles, err
}

// GetAllBundles retrieves every bundle, including hidden ones. Admin only.
func (s *Store) GetAllBundles(ctx context.Context) ([]models.ProductBundle, error) {
	var bundles []models.ProductBundle
	err := s.db.SelectContext(ctx, &bundles, "SELECT * FROM product_bundles ORDER BY id")
	return bundles, err
}

// GetBundleByID retrieves a bundle by ID
func (s *Store) GetBundleByID(ctx context.Context, id int64) (*models.ProductBundle, error) {
	var bundle models.ProductBundle
	err := s.db.GetContext(ctx, &bundle, "SELECT * FROM product_bundles WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("bundle not found: %d", id)
	}
	if err != nil {
		return nil, err
	}
	return &bundle, nil
}

// GetBundlesByIDs retrieves multiple bundles by IDs
func (s *Store) GetBundlesByIDs(ctx context.Context, ids []int64) ([]models.ProductBundle, error) {
	if len(ids) == 0 {
		return []models.ProductBundle{}, nil
	}

	query, args, err := sqlx.In("SELECT * FROM product_bundles WHERE id IN (?)", ids)
	if err != nil {
		return nil, err
	}
	query = s.db.Rebind(query)

	var bundles []models.ProductBundle
	err = s.db.SelectContext(ctx, &bundles, query, args...)
	return bundles, err
}

// UpdateBundleVisibility updates the active and show_to_customer flags
func (s *Store) UpdateBundleVisibility(ctx context.Context, id int64, isActive, showToCustomer bool) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE product_bundles SET is_active = $1, show_to_customer = $2, updated_at = NOW() WHERE id = $3",
		isActive, showToCustomer, id)
	return err
}
