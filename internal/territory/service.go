package territory

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"backend-landgrab/internal/db"
	"backend-landgrab/internal/shared/geo"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("territory not found")

type Service struct {
	db db.Querier
}

func NewService(db db.Querier) *Service {
	return &Service{db: db}
}

// Save persists a finalized claim. Territories are immutable after this
// point except for soft-deletion.
func (s *Service) Save(ctx context.Context, input Territory) (Territory, error) {
	input.ID = uuid.NewString()
	input.Active = true
	if input.CompletedAt.IsZero() {
		input.CompletedAt = time.Now()
	}
	input.Bounds = geo.BoundsOf(input.Polygon)
	input.PointCount = len(input.Polygon)

	polygonJSON, err := json.Marshal(input.Polygon)
	if err != nil {
		return Territory{}, err
	}

	row := s.db.QueryRow(ctx, `
		INSERT INTO territories (id, owner_id, polygon, area_sqm, min_lat, max_lat, min_lng, max_lng, point_count, started_at, completed_at, active)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
		RETURNING created_at
	`, input.ID, input.OwnerID, polygonJSON, input.AreaSqm,
		input.Bounds.MinLat, input.Bounds.MaxLat, input.Bounds.MinLng, input.Bounds.MaxLng,
		input.PointCount, input.StartedAt, input.CompletedAt, input.Active)
	if err := row.Scan(&input.CreatedAt); err != nil {
		return Territory{}, err
	}
	return input, nil
}

// Roster returns every active territory except those owned by excludeOwner.
// The collision detector treats the result as read-only and tolerates it
// being slightly stale.
func (s *Service) Roster(ctx context.Context, excludeOwner string) ([]Territory, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, owner_id, polygon, area_sqm, min_lat, max_lat, min_lng, max_lng, point_count, created_at
		FROM territories
		WHERE active = TRUE AND owner_id <> $1
	`, excludeOwner)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanTerritories(rows)
}

func (s *Service) ListByOwner(ctx context.Context, ownerID string) ([]Territory, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, owner_id, polygon, area_sqm, min_lat, max_lat, min_lng, max_lng, point_count, created_at
		FROM territories
		WHERE active = TRUE AND owner_id = $1
		ORDER BY created_at DESC
	`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanTerritories(rows)
}

// Deactivate soft-deletes a territory. Rows are never removed or mutated in
// place.
func (s *Service) Deactivate(ctx context.Context, id, ownerID string) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE territories SET active = FALSE WHERE id = $1 AND owner_id = $2 AND active = TRUE
	`, id, ownerID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

type scannableRows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanTerritories(rows scannableRows) ([]Territory, error) {
	var territories []Territory
	for rows.Next() {
		var t Territory
		var polygonJSON []byte
		if err := rows.Scan(&t.ID, &t.OwnerID, &polygonJSON, &t.AreaSqm,
			&t.Bounds.MinLat, &t.Bounds.MaxLat, &t.Bounds.MinLng, &t.Bounds.MaxLng,
			&t.PointCount, &t.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(polygonJSON, &t.Polygon); err != nil {
			return nil, err
		}
		t.Active = true
		territories = append(territories, t)
	}
	return territories, rows.Err()
}
