package claim

import (
	"errors"
	"time"

	"backend-landgrab/internal/config"
	"backend-landgrab/internal/shared/geo"
)

var (
	ErrSessionActive = errors.New("an active claim session already exists")
	ErrNoSession     = errors.New("no active claim session")
	ErrNotTracking   = errors.New("session is not tracking")
)

// Fix is one raw positional sample from the device. It is owned transiently
// by the speed filter; only accepted fixes reach the path sampler.
type Fix struct {
	Coordinate geo.Coordinate `json:"coordinate"`
	RecordedAt time.Time      `json:"recorded_at"`
	AccuracyM  float64        `json:"accuracy_m,omitempty"`
}

type SessionState string

const (
	StateTracking   SessionState = "tracking"
	StateFinalizing SessionState = "finalizing"
	StateValid      SessionState = "valid"
	StateInvalid    SessionState = "invalid"
)

type ReasonCode string

const (
	ReasonInsufficientPoints   ReasonCode = "insufficient_points"
	ReasonInsufficientDistance ReasonCode = "insufficient_distance"
	ReasonPathNotClosed        ReasonCode = "path_not_closed"
	ReasonSelfIntersection     ReasonCode = "self_intersection"
	ReasonInsufficientArea     ReasonCode = "insufficient_area"
	ReasonPointInForeign       ReasonCode = "point_in_foreign_territory"
	ReasonPathCrossesForeign   ReasonCode = "path_crosses_foreign_territory"
)

// ValidationResult is produced once per finalize attempt and never mutated.
type ValidationResult struct {
	IsValid       bool       `json:"is_valid"`
	FailureReason ReasonCode `json:"failure_reason,omitempty"`
	AreaSqm       float64    `json:"area_sqm"`
}

// WarningLevel orders proximity severity; Violation always wins.
type WarningLevel int

const (
	LevelSafe WarningLevel = iota
	LevelCaution
	LevelWarning
	LevelDanger
	LevelViolation
)

func (l WarningLevel) String() string {
	switch l {
	case LevelCaution:
		return "caution"
	case LevelWarning:
		return "warning"
	case LevelDanger:
		return "danger"
	case LevelViolation:
		return "violation"
	default:
		return "safe"
	}
}

type CollisionType string

const (
	CollisionPointInTerritory CollisionType = "point_in_territory"
	CollisionPathCrosses      CollisionType = "path_crosses_territory"
)

type CollisionStatus struct {
	HasCollision bool          `json:"has_collision"`
	Type         CollisionType `json:"collision_type,omitempty"`
	Level        WarningLevel  `json:"-"`
	NearestM     *float64      `json:"nearest_distance_m,omitempty"`
}

// Snapshot is the read-only projection of a session that the presentation
// layer observes. It is rebuilt after every accepted fix and every tick.
type Snapshot struct {
	SessionID        string            `json:"session_id"`
	State            SessionState      `json:"state"`
	PointCount       int               `json:"point_count"`
	TotalDistanceM   float64           `json:"total_distance_m"`
	DurationSec      int64             `json:"duration_sec"`
	SpeedKmh         float64           `json:"speed_kmh"`
	Closed           bool              `json:"closed"`
	LiveIntersection bool              `json:"live_intersection"`
	SpeedWarning     bool              `json:"speed_warning"`
	ForcedStop       bool              `json:"forced_stop"`
	WarningLevel     string            `json:"warning_level"`
	NearestForeignM  *float64          `json:"nearest_foreign_m,omitempty"`
	Revision         uint64            `json:"revision"`
	Result           *ValidationResult `json:"result,omitempty"`
}

// Thresholds collects every tunable constant of the engine. The defaults
// come from field tuning against consumer GPS accuracy, not from a formal
// error model, which is why they are configuration rather than constants.
type Thresholds struct {
	GPSDriftKmh        float64
	StopSpeedKmh       float64
	WarnSpeedKmh       float64
	OverspeedStopCount int
	OverspeedWarnCount int

	MinPointDistanceM float64
	ClosureDistanceM  float64
	MinPathPoints     int
	MinTotalDistanceM float64
	MinAreaSqm        float64

	IntersectNoiseM   float64
	IntersectHeadSkip int
	IntersectTailSkip int
	IntersectMinGap   int
	LiveTailSkip      int

	BandSafeM    float64
	BandCautionM float64
	BandWarningM float64
}

func ThresholdsFromConfig(cfg config.Config) Thresholds {
	return Thresholds{
		GPSDriftKmh:        cfg.GPSDriftKmh,
		StopSpeedKmh:       cfg.StopSpeedKmh,
		WarnSpeedKmh:       cfg.WarnSpeedKmh,
		OverspeedStopCount: cfg.OverspeedStopCount,
		OverspeedWarnCount: cfg.OverspeedWarnCount,
		MinPointDistanceM:  cfg.MinPointDistanceM,
		ClosureDistanceM:   cfg.ClosureDistanceM,
		MinPathPoints:      cfg.MinPathPoints,
		MinTotalDistanceM:  cfg.MinTotalDistanceM,
		MinAreaSqm:         cfg.MinAreaSqm,
		IntersectNoiseM:    cfg.IntersectNoiseM,
		IntersectHeadSkip:  cfg.IntersectHeadSkip,
		IntersectTailSkip:  cfg.IntersectTailSkip,
		IntersectMinGap:    cfg.IntersectMinGap,
		LiveTailSkip:       cfg.LiveTailSkip,
		BandSafeM:          cfg.BandSafeM,
		BandCautionM:       cfg.BandCautionM,
		BandWarningM:       cfg.BandWarningM,
	}
}

func DefaultThresholds() Thresholds {
	return Thresholds{
		GPSDriftKmh:        50,
		StopSpeedKmh:       30,
		WarnSpeedKmh:       15,
		OverspeedStopCount: 2,
		OverspeedWarnCount: 2,
		MinPointDistanceM:  10,
		ClosureDistanceM:   30,
		MinPathPoints:      10,
		MinTotalDistanceM:  50,
		MinAreaSqm:         100,
		IntersectNoiseM:    10,
		IntersectHeadSkip:  4,
		IntersectTailSkip:  4,
		IntersectMinGap:    5,
		LiveTailSkip:       2,
		BandSafeM:          100,
		BandCautionM:       50,
		BandWarningM:       25,
	}
}
