package search

import "math"

// Haversine 두 좌표 사이 거리(meter)
func Haversine(lat1, lng1, lat2, lng2 float64) float64 {
	const R = 6371000.0 // 지구 반지름 (미터)

	dLat := toRadians(lat2 - lat1)
	dLng := toRadians(lng2 - lng1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(lat1))*math.Cos(toRadians(lat2))*
			math.Sin(dLng/2)*math.Sin(dLng/2)

	c := 2 * math.Asin(math.Sqrt(a))

	return R * c
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
