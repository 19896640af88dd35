package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"stockroom.io/stockroom/internal/domain"
	apperrors "stockroom.io/stockroom/internal/pkg/errors"
)

const assetColumns = `id, tag, category_id, supplier_id, model, serial,
	purchase_date, warranty_expiry, assigned_user_id, status, image_name,
	created_at, updated_at`

func scanAsset(row pgx.Row) (*domain.Asset, error) {
	var a domain.Asset
	err := row.Scan(
		&a.ID, &a.Tag, &a.CategoryID, &a.SupplierID, &a.Model, &a.Serial,
		&a.PurchaseDate, &a.WarrantyExpiry, &a.AssignedUserID, &a.Status,
		&a.ImageName, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// CreateAsset inserts a new asset row. The id is assigned here when empty.
// A duplicate tag surfaces as ErrAlreadyExists.
func (s *Store) CreateAsset(ctx context.Context, a *domain.Asset) error {
	if a.ID == "" {
		a.ID = newID()
	}
	row := s.db.QueryRow(ctx, `
		INSERT INTO assets (id, tag, category_id, supplier_id, model, serial,
			purchase_date, warranty_expiry, assigned_user_id, status, image_name)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at, updated_at`,
		a.ID, a.Tag, a.CategoryID, a.SupplierID, a.Model, a.Serial,
		a.PurchaseDate, a.WarrantyExpiry, a.AssignedUserID, a.Status, a.ImageName,
	)
	if err := row.Scan(&a.CreatedAt, &a.UpdatedAt); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("insert asset tag %s: %w", a.Tag, apperrors.ErrAlreadyExists)
		}
		return fmt.Errorf("insert asset: %w", err)
	}
	return nil
}

// GetAsset fetches one asset by id.
func (s *Store) GetAsset(ctx context.Context, id string) (*domain.Asset, error) {
	a, err := scanAsset(s.db.QueryRow(ctx,
		`SELECT `+assetColumns+` FROM assets WHERE id = $1`, id))
	if err != nil {
		return nil, mapRowError(err, "get asset "+id)
	}
	return a, nil
}

// GetAssetsByIDs fetches the assets matching ids, ordered by tag. Missing
// ids are simply absent from the result; callers compare lengths.
func (s *Store) GetAssetsByIDs(ctx context.Context, ids []string) ([]domain.Asset, error) {
	rows, err := s.db.Query(ctx,
		`SELECT `+assetColumns+` FROM assets WHERE id = ANY($1) ORDER BY tag`, ids)
	if err != nil {
		return nil, fmt.Errorf("get assets by ids: %w", err)
	}
	defer rows.Close()

	var assets []domain.Asset
	for rows.Next() {
		a, err := scanAsset(rows)
		if err != nil {
			return nil, fmt.Errorf("scan asset: %w", err)
		}
		assets = append(assets, *a)
	}
	return assets, rows.Err()
}

// UpdateAsset replaces all mutable columns of the asset row.
func (s *Store) UpdateAsset(ctx context.Context, a *domain.Asset) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE assets
		SET tag = $2, category_id = $3, supplier_id = $4, model = $5,
			serial = $6, purchase_date = $7, warranty_expiry = $8,
			assigned_user_id = $9, status = $10, image_name = $11,
			updated_at = now()
		WHERE id = $1`,
		a.ID, a.Tag, a.CategoryID, a.SupplierID, a.Model, a.Serial,
		a.PurchaseDate, a.WarrantyExpiry, a.AssignedUserID, a.Status, a.ImageName,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("update asset tag %s: %w", a.Tag, apperrors.ErrAlreadyExists)
		}
		return fmt.Errorf("update asset %s: %w", a.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update asset %s: %w", a.ID, apperrors.ErrNotFound)
	}
	return nil
}

// DeleteAsset removes the asset row. Audit history is retained by design.
func (s *Store) DeleteAsset(ctx context.Context, id string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM assets WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete asset %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("delete asset %s: %w", id, apperrors.ErrNotFound)
	}
	return nil
}

// BulkDeleteAssets removes all rows matching ids and returns the count.
func (s *Store) BulkDeleteAssets(ctx context.Context, ids []string) (int64, error) {
	tag, err := s.db.Exec(ctx, `DELETE FROM assets WHERE id = ANY($1)`, ids)
	if err != nil {
		return 0, fmt.Errorf("bulk delete assets: %w", err)
	}
	return tag.RowsAffected(), nil
}

// BulkSetStatus moves all rows matching ids to status and clears their
// assignment in the same statement: an asset in repair or retired cannot
// remain assigned.
func (s *Store) BulkSetStatus(ctx context.Context, ids []string, status domain.Status) (int64, error) {
	tag, err := s.db.Exec(ctx, `
		UPDATE assets
		SET status = $2, assigned_user_id = NULL, updated_at = now()
		WHERE id = ANY($1)`,
		ids, status,
	)
	if err != nil {
		return 0, fmt.Errorf("bulk set status %s: %w", status, err)
	}
	return tag.RowsAffected(), nil
}

// CountAssetsByCategory returns how many assets reference the category.
func (s *Store) CountAssetsByCategory(ctx context.Context, categoryID string) (int64, error) {
	var n int64
	err := s.db.QueryRow(ctx,
		`SELECT count(*) FROM assets WHERE category_id = $1`, categoryID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count assets by category: %w", err)
	}
	return n, nil
}

// CountAssetsBySupplier returns how many assets reference the supplier.
func (s *Store) CountAssetsBySupplier(ctx context.Context, supplierID string) (int64, error) {
	var n int64
	err := s.db.QueryRow(ctx,
		`SELECT count(*) FROM assets WHERE supplier_id = $1`, supplierID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count assets by supplier: %w", err)
	}
	return n, nil
}
