package claim

import (
	"backend-landgrab/internal/shared/geo"
)

// pathSampler is the distance-gated recorder that turns the fix stream into
// a sparse vertex sequence. The gate is independent of fix arrival rate and
// bounds the polygon size, which keeps the O(n^2) batch checks tractable.
type pathSampler struct {
	minDistanceM   float64
	path           []geo.Coordinate
	totalDistanceM float64
	revision       uint64
}

// record appends the coordinate as a new vertex when it is far enough from
// the last one. The first point is always recorded.
func (s *pathSampler) record(c geo.Coordinate) bool {
	if len(s.path) == 0 {
		s.path = append(s.path, c)
		s.revision++
		return true
	}

	d := geo.DistanceM(s.path[len(s.path)-1], c)
	if d < s.minDistanceM {
		return false
	}

	s.totalDistanceM += d
	s.path = append(s.path, c)
	s.revision++
	return true
}

func (s *pathSampler) clear() {
	s.path = nil
	s.totalDistanceM = 0
	s.revision++
}
