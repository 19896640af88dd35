package store

import (
	"context"
	"fmt"

	"stockroom.io/stockroom/internal/domain"
)

// InsertAssetEvent appends one asset history entry. The timestamp is
// server-assigned; entries are never updated or deleted afterwards.
func (s *Store) InsertAssetEvent(ctx context.Context, e *domain.AssetEvent) error {
	if e.ID == "" {
		e.ID = newID()
	}
	row := s.db.QueryRow(ctx, `
		INSERT INTO asset_events (id, asset_id, actor_id, action, detail)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at`,
		e.ID, e.AssetID, e.ActorID, e.Action, e.Detail,
	)
	if err := row.Scan(&e.CreatedAt); err != nil {
		return fmt.Errorf("insert asset event: %w", err)
	}
	return nil
}

// InsertSystemEvent appends one global administrative entry.
func (s *Store) InsertSystemEvent(ctx context.Context, e *domain.SystemEvent) error {
	if e.ID == "" {
		e.ID = newID()
	}
	row := s.db.QueryRow(ctx, `
		INSERT INTO system_events (id, actor_id, category, detail, origin_addr)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at`,
		e.ID, e.ActorID, e.Category, e.Detail, e.OriginAddr,
	)
	if err := row.Scan(&e.CreatedAt); err != nil {
		return fmt.Errorf("insert system event: %w", err)
	}
	return nil
}

// ListAssetEvents returns the asset's history, newest first. This is the
// read contract reporting components page through.
func (s *Store) ListAssetEvents(ctx context.Context, assetID string, page int) ([]domain.AssetEvent, domain.PageInfo, error) {
	page = normalizePage(page)

	var total int64
	err := s.db.QueryRow(ctx,
		`SELECT count(*) FROM asset_events WHERE asset_id = $1`, assetID).Scan(&total)
	if err != nil {
		return nil, domain.PageInfo{}, fmt.Errorf("count asset events: %w", err)
	}
	info := pageInfo(total, page, AuditPageSize)

	rows, err := s.db.Query(ctx, `
		SELECT id, asset_id, actor_id, action, detail, created_at
		FROM asset_events WHERE asset_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`,
		assetID, AuditPageSize, (page-1)*AuditPageSize)
	if err != nil {
		return nil, domain.PageInfo{}, fmt.Errorf("list asset events: %w", err)
	}
	defer rows.Close()

	var events []domain.AssetEvent
	for rows.Next() {
		var e domain.AssetEvent
		if err := rows.Scan(&e.ID, &e.AssetID, &e.ActorID, &e.Action, &e.Detail, &e.CreatedAt); err != nil {
			return nil, domain.PageInfo{}, fmt.Errorf("scan asset event: %w", err)
		}
		events = append(events, e)
	}
	return events, info, rows.Err()
}

// ListSystemEvents returns global entries, newest first.
func (s *Store) ListSystemEvents(ctx context.Context, page int) ([]domain.SystemEvent, domain.PageInfo, error) {
	page = normalizePage(page)

	var total int64
	if err := s.db.QueryRow(ctx, `SELECT count(*) FROM system_events`).Scan(&total); err != nil {
		return nil, domain.PageInfo{}, fmt.Errorf("count system events: %w", err)
	}
	info := pageInfo(total, page, AuditPageSize)

	rows, err := s.db.Query(ctx, `
		SELECT id, actor_id, category, detail, origin_addr, created_at
		FROM system_events
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`,
		AuditPageSize, (page-1)*AuditPageSize)
	if err != nil {
		return nil, domain.PageInfo{}, fmt.Errorf("list system events: %w", err)
	}
	defer rows.Close()

	var events []domain.SystemEvent
	for rows.Next() {
		var e domain.SystemEvent
		if err := rows.Scan(&e.ID, &e.ActorID, &e.Category, &e.Detail, &e.OriginAddr, &e.CreatedAt); err != nil {
			return nil, domain.PageInfo{}, fmt.Errorf("scan system event: %w", err)
		}
		events = append(events, e)
	}
	return events, info, rows.Err()
}
