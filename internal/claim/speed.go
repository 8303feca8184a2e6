package claim

import (
	"backend-landgrab/internal/shared/geo"
)

type speedClass int

const (
	speedNormal speedClass = iota
	// speedDrift is a single implausibly fast fix, treated as sensor noise
	// and discarded without touching the overspeed counter.
	speedDrift
	// speedOverspeed is a too-fast fix below the consecutive threshold. The
	// fix is rejected from sampling but no banner is raised yet.
	speedOverspeed
	speedWarning
	speedFatal
)

// speedFilter classifies fixes by implied speed against the previously
// accepted fix. Only sustained overspeed escalates; a lone glitch must never
// terminate a legitimate walking session.
type speedFilter struct {
	t           Thresholds
	consecutive int
}

func (f *speedFilter) classify(prev, next Fix) (speedClass, float64) {
	elapsed := next.RecordedAt.Sub(prev.RecordedAt).Seconds()
	if elapsed <= 0 {
		// Out-of-order or duplicated timestamp implies an unbounded speed.
		return speedDrift, 0
	}

	distanceM := geo.DistanceM(prev.Coordinate, next.Coordinate)
	kmh := distanceM / elapsed * 3.6

	switch {
	case kmh > f.t.GPSDriftKmh:
		return speedDrift, kmh
	case kmh > f.t.StopSpeedKmh:
		f.consecutive++
		if f.consecutive >= f.t.OverspeedStopCount {
			return speedFatal, kmh
		}
		return speedWarning, kmh
	case kmh > f.t.WarnSpeedKmh:
		f.consecutive++
		if f.consecutive >= f.t.OverspeedWarnCount {
			return speedWarning, kmh
		}
		return speedOverspeed, kmh
	default:
		f.consecutive = 0
		return speedNormal, kmh
	}
}

func (f *speedFilter) reset() {
	f.consecutive = 0
}
