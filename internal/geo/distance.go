package geo

import "math"

// EarthRadiusKm - средний радиус Земли, используемый в формуле гаверсинусов
const EarthRadiusKm = 6371.0

// Distance возвращает расстояние по большому кругу между двумя точками в км
func Distance(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := toRadians(lat2 - lat1)
	dLon := toRadians(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(lat1))*math.Cos(toRadians(lat2))*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusKm * c
}

// DistanceBetween - то же, что Distance, но для необязательных координат.
// Если хотя бы одна координата отсутствует, расстояние считается бесконечным.
func DistanceBetween(lat1, lon1, lat2, lon2 *float64) float64 {
	if lat1 == nil || lon1 == nil || lat2 == nil || lon2 == nil {
		return math.Inf(1)
	}
	return Distance(*lat1, *lon1, *lat2, *lon2)
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
