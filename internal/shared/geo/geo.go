package geo

import "math"

const EarthRadiusM = 6371000.0

type Coordinate struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type BoundingBox struct {
	MinLat float64 `json:"min_lat"`
	MaxLat float64 `json:"max_lat"`
	MinLng float64 `json:"min_lng"`
	MaxLng float64 `json:"max_lng"`
}

func HaversineKm(lat1, lng1, lat2, lng2 float64) float64 {
	const r = EarthRadiusM / 1000.0

	dLat := toRadians(lat2 - lat1)
	dLng := toRadians(lng2 - lng1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(lat1))*math.Cos(toRadians(lat2))*
			math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * r * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

// DistanceM is the great-circle distance between two coordinates in meters.
func DistanceM(a, b Coordinate) float64 {
	return HaversineKm(a.Lat, a.Lng, b.Lat, b.Lng) * 1000
}

// CCW reports the orientation of the triangle (a, b, c): +1 counter-clockwise,
// -1 clockwise, 0 collinear. Longitude is x, latitude is y.
func CCW(a, b, c Coordinate) int {
	v := (c.Lat-a.Lat)*(b.Lng-a.Lng) - (b.Lat-a.Lat)*(c.Lng-a.Lng)
	if v > 0 {
		return 1
	}
	if v < 0 {
		return -1
	}
	return 0
}

// SegmentsIntersect reports whether segments (p1,p2) and (p3,p4) cross.
func SegmentsIntersect(p1, p2, p3, p4 Coordinate) bool {
	return CCW(p1, p3, p4) != CCW(p2, p3, p4) && CCW(p1, p2, p3) != CCW(p1, p2, p4)
}

// SegmentEndpointGapM is the minimum pairwise endpoint distance between two
// segments, in meters.
func SegmentEndpointGapM(p1, p2, p3, p4 Coordinate) float64 {
	gap := DistanceM(p1, p3)
	for _, d := range []float64{DistanceM(p1, p4), DistanceM(p2, p3), DistanceM(p2, p4)} {
		if d < gap {
			gap = d
		}
	}
	return gap
}

// PointInPolygon runs a ray-casting test: a horizontal ray from p crossing
// the polygon boundary an odd number of times means p is inside.
func PointInPolygon(p Coordinate, polygon []Coordinate) bool {
	if len(polygon) < 3 {
		return false
	}

	inside := false
	j := len(polygon) - 1
	for i := range polygon {
		pi, pj := polygon[i], polygon[j]
		if (pi.Lat > p.Lat) != (pj.Lat > p.Lat) &&
			p.Lng < (pj.Lng-pi.Lng)*(p.Lat-pi.Lat)/(pj.Lat-pi.Lat)+pi.Lng {
			inside = !inside
		}
		j = i
	}
	return inside
}

// PolygonAreaSqm computes the enclosed area of a closed vertex ring using a
// shoelace sum with a spherical correction term. The last vertex wraps to the
// first, and the result is independent of winding direction.
func PolygonAreaSqm(polygon []Coordinate) float64 {
	if len(polygon) < 3 {
		return 0
	}

	sum := 0.0
	for i := range polygon {
		a := polygon[i]
		b := polygon[(i+1)%len(polygon)]
		sum += toRadians(b.Lng-a.Lng) * (2 + math.Sin(toRadians(a.Lat)) + math.Sin(toRadians(b.Lat)))
	}
	return math.Abs(sum * EarthRadiusM * EarthRadiusM / 2)
}

func BoundsOf(polygon []Coordinate) BoundingBox {
	if len(polygon) == 0 {
		return BoundingBox{}
	}

	box := BoundingBox{
		MinLat: polygon[0].Lat, MaxLat: polygon[0].Lat,
		MinLng: polygon[0].Lng, MaxLng: polygon[0].Lng,
	}
	for _, p := range polygon[1:] {
		box.MinLat = math.Min(box.MinLat, p.Lat)
		box.MaxLat = math.Max(box.MaxLat, p.Lat)
		box.MinLng = math.Min(box.MinLng, p.Lng)
		box.MaxLng = math.Max(box.MaxLng, p.Lng)
	}
	return box
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
