package claim

import (
	"log"
	"sync"
	"time"

	"backend-landgrab/internal/shared/geo"
)

// Session is the single mutable tracking state for one user. The fix stream
// and the periodic tick both fire asynchronously; the mutex serializes them,
// since vertex ordering is geometry-significant.
type Session struct {
	mu sync.Mutex

	id        string
	ownerID   string
	state     SessionState
	startedAt time.Time

	filter  speedFilter
	sampler pathSampler

	lastFix       *Fix
	speedKmh      float64
	warningActive bool
	forcedStop    bool

	closed        bool
	liveIntersect bool
	collision     CollisionStatus
	result        *ValidationResult

	thresholds Thresholds
	detector   *CollisionDetector

	done chan struct{}
}

func newSession(id, ownerID string, t Thresholds, detector *CollisionDetector) *Session {
	return &Session{
		id:         id,
		ownerID:    ownerID,
		state:      StateTracking,
		startedAt:  time.Now(),
		filter:     speedFilter{t: t},
		sampler:    pathSampler{minDistanceM: t.MinPointDistanceM},
		thresholds: t,
		detector:   detector,
		done:       make(chan struct{}),
	}
}

// Ingest feeds one fix through the filter, sampler and live detectors. A
// session that failed validation resumes tracking on the next fix.
func (s *Session) Ingest(fix Fix) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateInvalid {
		s.state = StateTracking
		s.result = nil
	}
	if s.state != StateTracking {
		return s.snapshotLocked()
	}
	if fix.RecordedAt.IsZero() {
		fix.RecordedAt = time.Now()
	}

	if s.lastFix == nil {
		s.lastFix = &fix
		s.sampler.record(fix.Coordinate)
		s.afterRecordLocked(fix.Coordinate)
		return s.snapshotLocked()
	}

	class, kmh := s.filter.classify(*s.lastFix, fix)
	if class != speedDrift {
		s.speedKmh = kmh
	}

	switch class {
	case speedDrift:
		// Discarded: the baseline fix stays, the counter is untouched, and
		// the displayed speed keeps its last plausible value.
	case speedFatal:
		s.lastFix = &fix
		s.warningActive = true
		s.forcedStop = true
		s.finalizeLocked()
	case speedWarning:
		s.lastFix = &fix
		s.warningActive = true
	case speedOverspeed:
		s.lastFix = &fix
	default:
		s.lastFix = &fix
		s.warningActive = false
		if s.sampler.record(fix.Coordinate) {
			s.afterRecordLocked(fix.Coordinate)
		} else if s.detector != nil {
			// No new vertex, but the tip moved: refresh proximity banding.
			s.collision = s.detector.Check(s.ownerID, s.sampler.path, fix.Coordinate)
		}
	}

	return s.snapshotLocked()
}

// Tick re-evaluates the last known fix absent a new delivery, keeping
// duration and proximity banding live.
func (s *Session) Tick() (Snapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateTracking || s.lastFix == nil {
		return s.snapshotLocked(), false
	}
	if s.detector != nil {
		s.collision = s.detector.Check(s.ownerID, s.sampler.path, s.lastFix.Coordinate)
	}
	return s.snapshotLocked(), true
}

// Stop finalizes the session, re-running finalization for sessions already
// marked invalid so a user can retry after walking further.
func (s *Session) Stop() (ValidationResult, Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateTracking || s.state == StateInvalid {
		s.finalizeLocked()
	}

	var result ValidationResult
	if s.result != nil {
		result = *s.result
	}
	return result, s.snapshotLocked()
}

// Reset clears the path and every derived flag but keeps the session
// tracking.
func (s *Session) Reset() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sampler.clear()
	s.filter.reset()
	s.lastFix = nil
	s.speedKmh = 0
	s.warningActive = false
	s.forcedStop = false
	s.closed = false
	s.liveIntersect = false
	s.collision = CollisionStatus{}
	s.result = nil
	s.state = StateTracking
	s.startedAt = time.Now()
	return s.snapshotLocked()
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Path returns a copy of the sampled vertices.
func (s *Session) Path() []geo.Coordinate {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]geo.Coordinate{}, s.sampler.path...)
}

func (s *Session) StartedAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.startedAt
}

func (s *Session) afterRecordLocked(tip geo.Coordinate) {
	path := s.sampler.path

	// Closure is monotonic within a session: once closed, appending more
	// vertices never reopens the loop.
	if !s.closed && len(path) >= s.thresholds.MinPathPoints {
		if geo.DistanceM(path[0], path[len(path)-1]) <= s.thresholds.ClosureDistanceM {
			s.closed = true
			log.Printf("claim session %s: path closed after %d points", s.id, len(path))
		}
	}

	if !s.liveIntersect && liveIntersection(path, s.thresholds.LiveTailSkip) {
		s.liveIntersect = true
	}

	if s.detector != nil {
		s.collision = s.detector.Check(s.ownerID, path, tip)
	}
}

// finalizeLocked runs the batch pipeline. A proximity violation blocks the
// claim outright, independent of the geometry checks.
func (s *Session) finalizeLocked() {
	s.state = StateFinalizing

	if s.detector != nil && len(s.sampler.path) > 0 {
		tip := s.sampler.path[len(s.sampler.path)-1]
		if s.lastFix != nil {
			tip = s.lastFix.Coordinate
		}
		s.collision = s.detector.Check(s.ownerID, s.sampler.path, tip)
		if s.collision.Level == LevelViolation {
			reason := ReasonPathCrossesForeign
			if s.collision.Type == CollisionPointInTerritory {
				reason = ReasonPointInForeign
			}
			s.result = &ValidationResult{FailureReason: reason}
			s.state = StateInvalid
			return
		}
	}

	result := validatePath(s.sampler.path, s.sampler.totalDistanceM, s.closed, s.thresholds)
	s.result = &result
	if result.IsValid {
		s.state = StateValid
	} else {
		s.state = StateInvalid
	}
}

func (s *Session) snapshotLocked() Snapshot {
	return Snapshot{
		SessionID:        s.id,
		State:            s.state,
		PointCount:       len(s.sampler.path),
		TotalDistanceM:   s.sampler.totalDistanceM,
		DurationSec:      int64(time.Since(s.startedAt).Seconds()),
		SpeedKmh:         s.speedKmh,
		Closed:           s.closed,
		LiveIntersection: s.liveIntersect,
		SpeedWarning:     s.warningActive,
		ForcedStop:       s.forcedStop,
		WarningLevel:     s.collision.Level.String(),
		NearestForeignM:  s.collision.NearestM,
		Revision:         s.sampler.revision,
		Result:           s.result,
	}
}
