package store

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"stockroom.io/stockroom/internal/domain"
)

// Fixed page sizes per surface. List views page by 10, the audit trail
// view by 25.
const (
	ListPageSize  = 10
	AuditPageSize = 25
)

// AssetFilter is the loosely-typed filter bag for asset list queries.
// Zero values mean "no filter".
type AssetFilter struct {
	Search         string
	Status         domain.Status
	CategoryID     string
	SupplierID     string
	AssignedUserID string
	Page           int
}

// normalizePage clamps the requested page to a minimum of 1. Pages beyond
// the last are left alone: the query returns an empty row set with the
// correct total-page count and the caller compares for navigation.
func normalizePage(page int) int {
	if page < 1 {
		return 1
	}
	return page
}

func pageInfo(total int64, page, size int) domain.PageInfo {
	totalPages := int((total + int64(size) - 1) / int64(size))
	return domain.PageInfo{
		Page:       page,
		PageSize:   size,
		TotalRows:  total,
		TotalPages: totalPages,
	}
}

// escapeLike escapes LIKE metacharacters so a search term matches
// literally as a substring rather than altering match semantics.
func escapeLike(term string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(term)
}

// likePattern wraps a search term with wildcard-match semantics.
func likePattern(term string) string {
	return "%" + escapeLike(term) + "%"
}

// searchableAssetColumns is the fixed whitelist of columns free-text search
// matches against. Caller-supplied column names are never interpolated.
var searchableAssetColumns = []string{"a.tag", "a.model", "a.serial"}

// buildAssetWhere constructs the WHERE clause and bound args for a filter
// bag. Every value is a bound parameter.
func buildAssetWhere(f AssetFilter) (string, []any) {
	var conds []string
	var args []any

	add := func(cond string, val any) {
		args = append(args, val)
		conds = append(conds, strings.ReplaceAll(cond, "?", "$"+strconv.Itoa(len(args))))
	}

	if term := strings.TrimSpace(f.Search); term != "" {
		var ors []string
		args = append(args, likePattern(term))
		p := "$" + strconv.Itoa(len(args))
		for _, col := range searchableAssetColumns {
			ors = append(ors, col+` ILIKE `+p+` ESCAPE '\'`)
		}
		conds = append(conds, "("+strings.Join(ors, " OR ")+")")
	}
	if f.Status != "" {
		add("a.status = ?", f.Status)
	}
	if f.CategoryID != "" {
		add("a.category_id = ?", f.CategoryID)
	}
	if f.SupplierID != "" {
		add("a.supplier_id = ?", f.SupplierID)
	}
	if f.AssignedUserID != "" {
		add("a.assigned_user_id = ?", f.AssignedUserID)
	}

	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// ListAssets returns one page of assets matching the filter, joined with
// display labels and ordered by tag, together with the normalized page info.
func (s *Store) ListAssets(ctx context.Context, f AssetFilter) ([]domain.AssetListItem, domain.PageInfo, error) {
	page := normalizePage(f.Page)
	where, args := buildAssetWhere(f)

	var total int64
	err := s.db.QueryRow(ctx, `SELECT count(*) FROM assets a`+where, args...).Scan(&total)
	if err != nil {
		return nil, domain.PageInfo{}, fmt.Errorf("count assets: %w", err)
	}
	info := pageInfo(total, page, ListPageSize)

	limitArgs := append(args, ListPageSize, (page-1)*ListPageSize)
	query := `
		SELECT a.id, a.tag, a.category_id, a.supplier_id, a.model, a.serial,
			a.purchase_date, a.warranty_expiry, a.assigned_user_id, a.status,
			a.image_name, a.created_at, a.updated_at,
			coalesce(c.name, ''), coalesce(sp.name, ''), coalesce(u.display_name, '')
		FROM assets a
		LEFT JOIN categories c ON c.id = a.category_id
		LEFT JOIN suppliers sp ON sp.id = a.supplier_id
		LEFT JOIN users u ON u.id = a.assigned_user_id` +
		where + `
		ORDER BY a.tag
		LIMIT $` + strconv.Itoa(len(args)+1) + ` OFFSET $` + strconv.Itoa(len(args)+2)

	rows, err := s.db.Query(ctx, query, limitArgs...)
	if err != nil {
		return nil, domain.PageInfo{}, fmt.Errorf("list assets: %w", err)
	}
	defer rows.Close()

	var items []domain.AssetListItem
	for rows.Next() {
		var it domain.AssetListItem
		err := rows.Scan(
			&it.ID, &it.Tag, &it.CategoryID, &it.SupplierID, &it.Model,
			&it.Serial, &it.PurchaseDate, &it.WarrantyExpiry, &it.AssignedUserID,
			&it.Status, &it.ImageName, &it.CreatedAt, &it.UpdatedAt,
			&it.CategoryName, &it.SupplierName, &it.AssigneeName,
		)
		if err != nil {
			return nil, domain.PageInfo{}, fmt.Errorf("scan asset list item: %w", err)
		}
		items = append(items, it)
	}
	return items, info, rows.Err()
}

// RefFilter filters reference entity (category/supplier) list queries.
type RefFilter struct {
	Search string
	Page   int
}

// ListCategories returns one page of categories ordered by name.
func (s *Store) ListCategories(ctx context.Context, f RefFilter) ([]domain.Category, domain.PageInfo, error) {
	page := normalizePage(f.Page)

	where := ""
	var args []any
	if term := strings.TrimSpace(f.Search); term != "" {
		where = ` WHERE name ILIKE $1 ESCAPE '\'`
		args = append(args, likePattern(term))
	}

	var total int64
	if err := s.db.QueryRow(ctx, `SELECT count(*) FROM categories`+where, args...).Scan(&total); err != nil {
		return nil, domain.PageInfo{}, fmt.Errorf("count categories: %w", err)
	}
	info := pageInfo(total, page, ListPageSize)

	args = append(args, ListPageSize, (page-1)*ListPageSize)
	query := `SELECT id, name, description, created_at FROM categories` + where +
		` ORDER BY name LIMIT $` + strconv.Itoa(len(args)-1) + ` OFFSET $` + strconv.Itoa(len(args))

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, domain.PageInfo{}, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var items []domain.Category
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.CreatedAt); err != nil {
			return nil, domain.PageInfo{}, fmt.Errorf("scan category: %w", err)
		}
		items = append(items, c)
	}
	return items, info, rows.Err()
}

// ListSuppliers returns one page of suppliers ordered by name.
func (s *Store) ListSuppliers(ctx context.Context, f RefFilter) ([]domain.Supplier, domain.PageInfo, error) {
	page := normalizePage(f.Page)

	where := ""
	var args []any
	if term := strings.TrimSpace(f.Search); term != "" {
		where = ` WHERE name ILIKE $1 ESCAPE '\'`
		args = append(args, likePattern(term))
	}

	var total int64
	if err := s.db.QueryRow(ctx, `SELECT count(*) FROM suppliers`+where, args...).Scan(&total); err != nil {
		return nil, domain.PageInfo{}, fmt.Errorf("count suppliers: %w", err)
	}
	info := pageInfo(total, page, ListPageSize)

	args = append(args, ListPageSize, (page-1)*ListPageSize)
	query := `SELECT id, name, contact, notes, created_at FROM suppliers` + where +
		` ORDER BY name LIMIT $` + strconv.Itoa(len(args)-1) + ` OFFSET $` + strconv.Itoa(len(args))

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, domain.PageInfo{}, fmt.Errorf("list suppliers: %w", err)
	}
	defer rows.Close()

	var items []domain.Supplier
	for rows.Next() {
		var sp domain.Supplier
		if err := rows.Scan(&sp.ID, &sp.Name, &sp.Contact, &sp.Notes, &sp.CreatedAt); err != nil {
			return nil, domain.PageInfo{}, fmt.Errorf("scan supplier: %w", err)
		}
		items = append(items, sp)
	}
	return items, info, rows.Err()
}
