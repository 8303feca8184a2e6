package territory

import (
	"time"

	"backend-landgrab/internal/shared/geo"
)

type Territory struct {
	ID          string           `json:"id"`
	OwnerID     string           `json:"owner_id"`
	Polygon     []geo.Coordinate `json:"polygon"`
	AreaSqm     float64          `json:"area_sqm"`
	Bounds      geo.BoundingBox  `json:"bounds"`
	PointCount  int              `json:"point_count"`
	StartedAt   time.Time        `json:"started_at"`
	CompletedAt time.Time        `json:"completed_at"`
	Active      bool             `json:"active"`
	CreatedAt   time.Time        `json:"created_at"`
}
