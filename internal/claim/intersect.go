package claim

import (
	"backend-landgrab/internal/shared/geo"
)

// liveIntersection tests only the newest segment against all prior segments
// except the trailing skipTail, to avoid flagging adjacent-segment numerical
// noise. Cheap enough to run on every new vertex; UI feedback only.
func liveIntersection(path []geo.Coordinate, skipTail int) bool {
	n := len(path)
	if n < 4 {
		return false
	}

	newest := n - 2
	for j := 0; j < newest-skipTail; j++ {
		if geo.SegmentsIntersect(path[newest], path[newest+1], path[j], path[j+1]) {
			return true
		}
	}
	return false
}

// batchIntersection is the authoritative pairwise check run at finalization.
// Head/tail segments are exempted from mutual comparison so a legitimate
// closing loop is not mistaken for a crossing, and detected intersections
// narrower than the noise threshold are discounted as GPS jitter.
func batchIntersection(path []geo.Coordinate, t Thresholds) bool {
	segments := len(path) - 1
	if segments < 2 {
		return false
	}

	for i := 0; i < segments; i++ {
		for j := i + t.IntersectMinGap; j < segments; j++ {
			if i < t.IntersectHeadSkip && j >= segments-t.IntersectTailSkip {
				continue
			}
			if !geo.SegmentsIntersect(path[i], path[i+1], path[j], path[j+1]) {
				continue
			}
			if geo.SegmentEndpointGapM(path[i], path[i+1], path[j], path[j+1]) < t.IntersectNoiseM {
				continue
			}
			return true
		}
	}
	return false
}
