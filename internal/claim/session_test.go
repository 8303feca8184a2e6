package claim

import (
	"testing"
	"time"

	"backend-landgrab/internal/territory"
)

func walkSession(sess *Session, fixes []Fix) Snapshot {
	var snap Snapshot
	for _, fix := range fixes {
		snap = sess.Ingest(fix)
	}
	return snap
}

// lineFixes walks east with the given spacing, then appends one fix placed
// northM north of the start. The generous time gap keeps speeds well under
// the warning threshold.
func lineFixes(eastPoints int, spacingM, northM float64) []Fix {
	points := make([][2]float64, 0, eastPoints+1)
	for i := 0; i < eastPoints; i++ {
		points = append(points, [2]float64{float64(i) * spacingM, 0})
	}
	points = append(points, [2]float64{0, northM})
	return fixSeq(points, time.Minute)
}

func TestSessionEndToEndSquareLoop(t *testing.T) {
	sess := newSession("s1", "user-1", DefaultThresholds(), nil)

	snap := walkSession(sess, squareLoop())
	if snap.PointCount != 12 {
		t.Fatalf("expected 12 vertices, got %d", snap.PointCount)
	}
	if !snap.Closed {
		t.Fatalf("expected closed loop")
	}
	if snap.LiveIntersection {
		t.Fatalf("square loop must not flag live intersection")
	}
	if snap.TotalDistanceM < 150 || snap.TotalDistanceM > 210 {
		t.Fatalf("unexpected total distance %v", snap.TotalDistanceM)
	}

	result, final := sess.Stop()
	if !result.IsValid {
		t.Fatalf("expected valid claim, got %+v", result)
	}
	if result.AreaSqm < 2375 || result.AreaSqm > 2625 {
		t.Fatalf("expected ~2500 sqm, got %v", result.AreaSqm)
	}
	if final.State != StateValid {
		t.Fatalf("expected valid state, got %v", final.State)
	}
}

func TestClosureRequiresMinimumPoints(t *testing.T) {
	sess := newSession("s1", "user-1", DefaultThresholds(), nil)

	// 9 vertices with endpoints well inside the closure distance.
	snap := walkSession(sess, lineFixes(8, 12, 15))
	if snap.PointCount != 9 {
		t.Fatalf("expected 9 vertices, got %d", snap.PointCount)
	}
	if snap.Closed {
		t.Fatalf("a 9-vertex path never reports closed")
	}
}

func TestClosureDistanceBoundary(t *testing.T) {
	near := newSession("s1", "user-1", DefaultThresholds(), nil)
	snap := walkSession(near, lineFixes(9, 12, 29.9))
	if snap.PointCount != 10 {
		t.Fatalf("expected 10 vertices, got %d", snap.PointCount)
	}
	if !snap.Closed {
		t.Fatalf("endpoints 29.9 m apart must close")
	}

	far := newSession("s2", "user-1", DefaultThresholds(), nil)
	if snap := walkSession(far, lineFixes(9, 12, 30.1)); snap.Closed {
		t.Fatalf("endpoints 30.1 m apart must not close")
	}
}

func TestOpenPathDoesNotValidate(t *testing.T) {
	sess := newSession("s1", "user-1", DefaultThresholds(), nil)

	// Three sides of a 100 m square: plenty of points and distance, but the
	// endpoints stay 100 m apart.
	snap := walkSession(sess, fixSeq([][2]float64{
		{0, 0}, {33, 0}, {66, 0}, {100, 0},
		{100, 33}, {100, 66}, {100, 100},
		{66, 100}, {33, 100}, {0, 100},
	}, time.Minute))
	if snap.Closed {
		t.Fatalf("open path must not report closed")
	}

	result, final := sess.Stop()
	if result.IsValid {
		t.Fatalf("open path must not validate, got %+v", result)
	}
	if result.FailureReason != ReasonPathNotClosed {
		t.Fatalf("expected path-not-closed reason, got %v", result.FailureReason)
	}
	if final.State != StateInvalid {
		t.Fatalf("expected invalid state, got %v", final.State)
	}
}

func TestSessionDriftDiscarded(t *testing.T) {
	sess := newSession("s1", "user-1", DefaultThresholds(), nil)

	start := time.Now()
	sess.Ingest(Fix{Coordinate: testOrigin, RecordedAt: start})

	// 60 km/h implied: ~167 m in 10 s.
	snap := sess.Ingest(Fix{
		Coordinate: offset(testOrigin, 0, 167),
		RecordedAt: start.Add(10 * time.Second),
	})
	if snap.PointCount != 1 {
		t.Fatalf("drift fix must not be sampled")
	}
	if snap.SpeedWarning {
		t.Fatalf("drift must not raise a warning")
	}
	if snap.SpeedKmh != 0 {
		t.Fatalf("drift must not surface as the displayed speed, got %v", snap.SpeedKmh)
	}

	// The baseline is still the start fix, so a slow follow-up samples.
	snap = sess.Ingest(Fix{
		Coordinate: offset(testOrigin, 0, 12),
		RecordedAt: start.Add(30 * time.Second),
	})
	if snap.PointCount != 2 {
		t.Fatalf("expected follow-up fix to be sampled, got %d points", snap.PointCount)
	}
	if snap.SpeedKmh <= 0 || snap.SpeedKmh > 15 {
		t.Fatalf("expected walking speed after the accepted fix, got %v", snap.SpeedKmh)
	}
}

func TestSessionForcedStopOnSustainedOverspeed(t *testing.T) {
	sess := newSession("s1", "user-1", DefaultThresholds(), nil)

	start := time.Now()
	sess.Ingest(Fix{Coordinate: testOrigin, RecordedAt: start})

	// 35 km/h implied: ~97 m per 10 s.
	snap := sess.Ingest(Fix{
		Coordinate: offset(testOrigin, 0, 97),
		RecordedAt: start.Add(10 * time.Second),
	})
	if snap.State != StateTracking || !snap.SpeedWarning {
		t.Fatalf("first overspeed fix must warn, got %+v", snap)
	}

	snap = sess.Ingest(Fix{
		Coordinate: offset(testOrigin, 0, 194),
		RecordedAt: start.Add(20 * time.Second),
	})
	if !snap.ForcedStop {
		t.Fatalf("second consecutive overspeed fix must force-stop")
	}
	if snap.State != StateInvalid || snap.Result == nil {
		t.Fatalf("forced stop must finalize, got %+v", snap)
	}
	if snap.Result.FailureReason != ReasonInsufficientPoints {
		t.Fatalf("expected insufficient points, got %v", snap.Result.FailureReason)
	}
}

func TestSessionStopShortPath(t *testing.T) {
	sess := newSession("s1", "user-1", DefaultThresholds(), nil)
	walkSession(sess, fixSeq([][2]float64{{0, 0}, {20, 0}, {40, 0}}, 30*time.Second))

	result, snap := sess.Stop()
	if result.IsValid || result.FailureReason != ReasonInsufficientPoints {
		t.Fatalf("expected insufficient points, got %+v", result)
	}
	if snap.State != StateInvalid {
		t.Fatalf("expected invalid state")
	}
}

func TestSessionResumeAfterInvalid(t *testing.T) {
	sess := newSession("s1", "user-1", DefaultThresholds(), nil)
	walkSession(sess, fixSeq([][2]float64{{0, 0}, {20, 0}}, 30*time.Second))
	sess.Stop()

	snap := sess.Ingest(Fix{
		Coordinate: offset(testOrigin, 0, 60),
		RecordedAt: time.Now(),
	})
	if snap.State != StateTracking {
		t.Fatalf("ingest after invalid must resume tracking, got %v", snap.State)
	}
	if snap.Result != nil {
		t.Fatalf("resume must clear the stale result")
	}
}

func TestSessionReset(t *testing.T) {
	sess := newSession("s1", "user-1", DefaultThresholds(), nil)
	walkSession(sess, squareLoop())

	snap := sess.Reset()
	if snap.PointCount != 0 || snap.TotalDistanceM != 0 {
		t.Fatalf("reset must clear the path")
	}
	if snap.Closed || snap.LiveIntersection || snap.SpeedWarning || snap.ForcedStop {
		t.Fatalf("reset must clear derived flags")
	}
	if snap.State != StateTracking {
		t.Fatalf("reset session keeps tracking")
	}
}

func TestSessionViolationBlocksFinalize(t *testing.T) {
	detector := NewCollisionDetector(DefaultThresholds())
	detector.SetRoster([]territory.Territory{{
		ID:      "terr-2",
		OwnerID: "user-2",
		Polygon: coords([][2]float64{{-20, -20}, {80, -20}, {80, 80}, {-20, 80}}),
	}})

	sess := newSession("s1", "user-1", DefaultThresholds(), detector)
	snap := walkSession(sess, squareLoop())
	if snap.WarningLevel != "violation" {
		t.Fatalf("expected live violation, got %v", snap.WarningLevel)
	}

	result, final := sess.Stop()
	if result.IsValid {
		t.Fatalf("violation must block finalization")
	}
	if result.FailureReason != ReasonPointInForeign && result.FailureReason != ReasonPathCrossesForeign {
		t.Fatalf("expected collision reason, got %v", result.FailureReason)
	}
	if final.State != StateInvalid {
		t.Fatalf("expected invalid state")
	}
}

func TestSessionTickRefreshesBanding(t *testing.T) {
	detector := NewCollisionDetector(DefaultThresholds())
	sess := newSession("s1", "user-1", DefaultThresholds(), detector)

	if _, ok := sess.Tick(); ok {
		t.Fatalf("tick before any fix must be a no-op")
	}

	sess.Ingest(Fix{Coordinate: offset(testOrigin, 0, 180), RecordedAt: time.Now()})

	// The roster arrives after the fix; the tick picks it up.
	detector.SetRoster([]territory.Territory{foreignSquare()})
	snap, ok := sess.Tick()
	if !ok {
		t.Fatalf("expected tick to run")
	}
	if snap.WarningLevel != "caution" {
		t.Fatalf("expected caution at ~80 m, got %v", snap.WarningLevel)
	}
}
