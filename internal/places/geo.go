package places

import (
	"fmt"
	"math"
	"net/url"

	"github.com/example/rentalhub/internal/models"
)

const earthRadiusKm = 6371.0

// Distance returns the great-circle distance in kilometres (haversine).
func Distance(a, b models.GeoPoint) float64 {
	dLat := toRad(b.Lat - a.Lat)
	dLng := toRad(b.Lng - a.Lng)
	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(a.Lat))*math.Cos(toRad(b.Lat))*math.Sin(dLng/2)*math.Sin(dLng/2)
	return earthRadiusKm * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

func toRad(deg float64) float64 { return deg * math.Pi / 180 }

// StaticMapURL builds a 600x400 Google static map centered on p at zoom 15.
func StaticMapURL(p models.GeoPoint, apiKey string) string {
	center := fmt.Sprintf("%g,%g", p.Lat, p.Lng)
	q := url.Values{}
	q.Set("center", center)
	q.Set("zoom", "15")
	q.Set("size", "600x400")
	q.Set("markers", center)
	q.Set("key", apiKey)
	return "https://maps.googleapis.com/maps/api/staticmap?" + q.Encode()
}
