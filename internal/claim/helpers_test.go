package claim

import (
	"math"
	"time"

	"backend-landgrab/internal/shared/geo"
)

var testOrigin = geo.Coordinate{Lat: -6.2, Lng: 106.816}

// offset shifts a coordinate by meters north and east.
func offset(origin geo.Coordinate, northM, eastM float64) geo.Coordinate {
	dLat := northM / 111320.0
	dLng := eastM / (111320.0 * math.Cos(origin.Lat*math.Pi/180))
	return geo.Coordinate{Lat: origin.Lat + dLat, Lng: origin.Lng + dLng}
}

// fixSeq turns (east, north) meter offsets into fixes spaced gap apart in
// time, walking pace unless the geometry says otherwise.
func fixSeq(points [][2]float64, gap time.Duration) []Fix {
	start := time.Now().Add(-time.Duration(len(points)) * gap)
	fixes := make([]Fix, 0, len(points))
	for i, p := range points {
		fixes = append(fixes, Fix{
			Coordinate: offset(testOrigin, p[1], p[0]),
			RecordedAt: start.Add(time.Duration(i) * gap),
		})
	}
	return fixes
}

// squareLoop is a 12-fix walk around a square with ~50 m sides: three fixes
// per side, ending one step short of the start so the closing gap is ~16.7 m.
func squareLoop() []Fix {
	const step = 50.0 / 3
	points := [][2]float64{
		{0, 0}, {step, 0}, {2 * step, 0},
		{50, 0}, {50, step}, {50, 2 * step},
		{50, 50}, {2 * step, 50}, {step, 50},
		{0, 50}, {0, 2 * step}, {0, step},
	}
	return fixSeq(points, 10*time.Second)
}

func coords(points [][2]float64) []geo.Coordinate {
	out := make([]geo.Coordinate, 0, len(points))
	for _, p := range points {
		out = append(out, offset(testOrigin, p[1], p[0]))
	}
	return out
}

// figureEight walks a rectangle with a lead-in tail, then cuts diagonally
// back across the bottom edge: segments 4 and 14 cross ~27 m from their
// nearest shared endpoints, well beyond the noise discount.
func figureEight() []geo.Coordinate {
	return coords([][2]float64{
		{-75, 0}, {-50, 0}, {-25, 0},
		{0, 0}, {25, 0}, {50, 0}, {75, 0}, {100, 0},
		{100, 25}, {100, 50},
		{75, 50}, {50, 50}, {25, 50}, {0, 50},
		{0, 25}, {60, -25},
	})
}
