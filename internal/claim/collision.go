package claim

import (
	"sync"

	"backend-landgrab/internal/shared/geo"
	"backend-landgrab/internal/territory"
)

// CollisionDetector checks a tracked path against the roster of territories
// claimed by other users. The roster is refreshed on a pull cadence and may
// be stale; this is a courtesy check, authoritative enforcement belongs to
// the persistence layer.
type CollisionDetector struct {
	mu     sync.RWMutex
	t      Thresholds
	roster []territory.Territory
}

func NewCollisionDetector(t Thresholds) *CollisionDetector {
	return &CollisionDetector{t: t}
}

func (d *CollisionDetector) SetRoster(roster []territory.Territory) {
	d.mu.Lock()
	d.roster = roster
	d.mu.Unlock()
}

func (d *CollisionDetector) RosterSize() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.roster)
}

// Check tests the path tip for foreign-territory membership, every path
// segment for boundary crossings, and maps the tip's distance to the nearest
// foreign vertex onto a warning band. Boundary crossings get no noise
// discount: crossing a claimed border is always significant.
func (d *CollisionDetector) Check(ownerID string, path []geo.Coordinate, tip geo.Coordinate) CollisionStatus {
	d.mu.RLock()
	roster := d.roster
	d.mu.RUnlock()

	var nearest *float64
	for _, foreign := range roster {
		if foreign.OwnerID == ownerID {
			continue
		}

		if geo.PointInPolygon(tip, foreign.Polygon) {
			return CollisionStatus{
				HasCollision: true,
				Type:         CollisionPointInTerritory,
				Level:        LevelViolation,
				NearestM:     nearest,
			}
		}

		edges := len(foreign.Polygon)
		for i := 0; i+1 < len(path); i++ {
			for e := 0; e < edges; e++ {
				q1 := foreign.Polygon[e]
				q2 := foreign.Polygon[(e+1)%edges]
				if geo.SegmentsIntersect(path[i], path[i+1], q1, q2) {
					return CollisionStatus{
						HasCollision: true,
						Type:         CollisionPathCrosses,
						Level:        LevelViolation,
						NearestM:     nearest,
					}
				}
			}
		}

		for _, vertex := range foreign.Polygon {
			dist := geo.DistanceM(tip, vertex)
			if nearest == nil || dist < *nearest {
				v := dist
				nearest = &v
			}
		}
	}

	return CollisionStatus{
		Level:    d.band(nearest),
		NearestM: nearest,
	}
}

func (d *CollisionDetector) band(nearest *float64) WarningLevel {
	if nearest == nil {
		return LevelSafe
	}
	switch {
	case *nearest > d.t.BandSafeM:
		return LevelSafe
	case *nearest > d.t.BandCautionM:
		return LevelCaution
	case *nearest > d.t.BandWarningM:
		return LevelWarning
	default:
		return LevelDanger
	}
}
