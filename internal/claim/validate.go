package claim

import (
	"backend-landgrab/internal/shared/geo"
)

// validatePath runs the ordered, short-circuiting batch pipeline. Every
// outcome is a value; nothing here escalates beyond a reason code. The
// authoritative intersection and area checks only run on a closed loop:
// without that gate an open path would validate through the wrap-around edge.
func validatePath(path []geo.Coordinate, totalDistanceM float64, closed bool, t Thresholds) ValidationResult {
	if len(path) < t.MinPathPoints {
		return ValidationResult{FailureReason: ReasonInsufficientPoints}
	}
	if totalDistanceM < t.MinTotalDistanceM {
		return ValidationResult{FailureReason: ReasonInsufficientDistance}
	}
	if !closed {
		return ValidationResult{FailureReason: ReasonPathNotClosed}
	}
	if batchIntersection(path, t) {
		return ValidationResult{FailureReason: ReasonSelfIntersection}
	}

	area := geo.PolygonAreaSqm(path)
	if area < t.MinAreaSqm {
		return ValidationResult{FailureReason: ReasonInsufficientArea, AreaSqm: area}
	}
	return ValidationResult{IsValid: true, AreaSqm: area}
}
