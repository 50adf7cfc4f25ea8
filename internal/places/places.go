package places

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"go.uber.org/zap"
	"googlemaps.github.io/maps"

	"github.com/example/rentalhub/internal/models"
)

// DefaultTypes are searched when the caller passes none.
var DefaultTypes = []string{"restaurant", "school", "hospital", "bus_station"}

// DefaultRadius is the search radius in metres.
const DefaultRadius = 1000

// maxPerType caps how many results of one type are kept.
const maxPerType = 5

// ErrNotConfigured is returned when no Maps API key is set.
var ErrNotConfigured = errors.New("places: google maps api key not configured")

// Client finds points of interest around a location.
type Client interface {
	Nearby(ctx context.Context, center models.GeoPoint, radiusMeters int, types []string) ([]models.Place, error)
	StaticMapURL(center models.GeoPoint) string
}

type nearbySearcher interface {
	NearbySearch(ctx context.Context, r *maps.NearbySearchRequest) (maps.PlacesSearchResponse, error)
}

// GoogleClient is a Client backed by the Places Nearby Search API.
type GoogleClient struct {
	search nearbySearcher
	apiKey string
	logger *zap.Logger
}

// NewGoogleClient builds a client. An empty apiKey yields a client whose Nearby returns
// ErrNotConfigured.
func NewGoogleClient(apiKey string, logger *zap.Logger) (*GoogleClient, error) {
	c := &GoogleClient{apiKey: apiKey, logger: logger}
	if apiKey == "" {
		logger.Warn("GOOGLE_MAPS_API_KEY not set; nearby places disabled")
		return c, nil
	}
	mc, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("maps.NewClient: %w", err)
	}
	c.search = mc
	return c, nil
}

// Nearby queries each type in turn and returns the merged results, closest first.
func (c *GoogleClient) Nearby(ctx context.Context, center models.GeoPoint, radiusMeters int, types []string) ([]models.Place, error) {
	if c.search == nil {
		return nil, ErrNotConfigured
	}
	if radiusMeters <= 0 {
		radiusMeters = DefaultRadius
	}
	if len(types) == 0 {
		types = DefaultTypes
	}

	places := []models.Place{}
	for _, t := range types {
		resp, err := c.search.NearbySearch(ctx, &maps.NearbySearchRequest{
			Location: &maps.LatLng{Lat: center.Lat, Lng: center.Lng},
			Radius:   uint(radiusMeters),
			Type:     maps.PlaceType(t),
		})
		if err != nil {
			return nil, fmt.Errorf("nearby search for %s: %w", t, err)
		}
		for i, r := range resp.Results {
			if i == maxPerType {
				break
			}
			loc := models.GeoPoint{Lat: r.Geometry.Location.Lat, Lng: r.Geometry.Location.Lng}
			places = append(places, models.Place{
				PlaceID:    r.PlaceID,
				Name:       r.Name,
				Type:       t,
				Vicinity:   r.Vicinity,
				Location:   loc,
				DistanceKm: Distance(center, loc),
			})
		}
	}

	sort.SliceStable(places, func(i, j int) bool { return places[i].DistanceKm < places[j].DistanceKm })
	return places, nil
}

func (c *GoogleClient) StaticMapURL(center models.GeoPoint) string {
	return StaticMapURL(center, c.apiKey)
}
