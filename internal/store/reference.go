package store

import (
	"context"
	"fmt"

	"stockroom.io/stockroom/internal/domain"
	apperrors "stockroom.io/stockroom/internal/pkg/errors"
)

// CreateCategory inserts a category. Duplicate names surface as ErrAlreadyExists.
func (s *Store) CreateCategory(ctx context.Context, c *domain.Category) error {
	if c.ID == "" {
		c.ID = newID()
	}
	row := s.db.QueryRow(ctx, `
		INSERT INTO categories (id, name, description)
		VALUES ($1, $2, $3)
		RETURNING created_at`,
		c.ID, c.Name, c.Description,
	)
	if err := row.Scan(&c.CreatedAt); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("insert category %s: %w", c.Name, apperrors.ErrAlreadyExists)
		}
		return fmt.Errorf("insert category: %w", err)
	}
	return nil
}

// GetCategory fetches one category by id.
func (s *Store) GetCategory(ctx context.Context, id string) (*domain.Category, error) {
	var c domain.Category
	err := s.db.QueryRow(ctx,
		`SELECT id, name, description, created_at FROM categories WHERE id = $1`, id).
		Scan(&c.ID, &c.Name, &c.Description, &c.CreatedAt)
	if err != nil {
		return nil, mapRowError(err, "get category "+id)
	}
	return &c, nil
}

// UpdateCategory replaces the category's mutable columns.
func (s *Store) UpdateCategory(ctx context.Context, c *domain.Category) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE categories SET name = $2, description = $3 WHERE id = $1`,
		c.ID, c.Name, c.Description,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("update category %s: %w", c.Name, apperrors.ErrAlreadyExists)
		}
		return fmt.Errorf("update category %s: %w", c.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update category %s: %w", c.ID, apperrors.ErrNotFound)
	}
	return nil
}

// DeleteCategory removes the category row. Callers reject the delete first
// when assets still reference it; the FK violation mapping is the backstop.
func (s *Store) DeleteCategory(ctx context.Context, id string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("delete category %s: %w", id, apperrors.ErrConflict)
		}
		return fmt.Errorf("delete category %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("delete category %s: %w", id, apperrors.ErrNotFound)
	}
	return nil
}

// CreateSupplier inserts a supplier. Duplicate names surface as ErrAlreadyExists.
func (s *Store) CreateSupplier(ctx context.Context, sp *domain.Supplier) error {
	if sp.ID == "" {
		sp.ID = newID()
	}
	row := s.db.QueryRow(ctx, `
		INSERT INTO suppliers (id, name, contact, notes)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at`,
		sp.ID, sp.Name, sp.Contact, sp.Notes,
	)
	if err := row.Scan(&sp.CreatedAt); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("insert supplier %s: %w", sp.Name, apperrors.ErrAlreadyExists)
		}
		return fmt.Errorf("insert supplier: %w", err)
	}
	return nil
}

// GetSupplier fetches one supplier by id.
func (s *Store) GetSupplier(ctx context.Context, id string) (*domain.Supplier, error) {
	var sp domain.Supplier
	err := s.db.QueryRow(ctx,
		`SELECT id, name, contact, notes, created_at FROM suppliers WHERE id = $1`, id).
		Scan(&sp.ID, &sp.Name, &sp.Contact, &sp.Notes, &sp.CreatedAt)
	if err != nil {
		return nil, mapRowError(err, "get supplier "+id)
	}
	return &sp, nil
}

// UpdateSupplier replaces the supplier's mutable columns.
func (s *Store) UpdateSupplier(ctx context.Context, sp *domain.Supplier) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE suppliers SET name = $2, contact = $3, notes = $4 WHERE id = $1`,
		sp.ID, sp.Name, sp.Contact, sp.Notes,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("update supplier %s: %w", sp.Name, apperrors.ErrAlreadyExists)
		}
		return fmt.Errorf("update supplier %s: %w", sp.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update supplier %s: %w", sp.ID, apperrors.ErrNotFound)
	}
	return nil
}

// DeleteSupplier removes the supplier row.
func (s *Store) DeleteSupplier(ctx context.Context, id string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM suppliers WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("delete supplier %s: %w", id, apperrors.ErrConflict)
		}
		return fmt.Errorf("delete supplier %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("delete supplier %s: %w", id, apperrors.ErrNotFound)
	}
	return nil
}
