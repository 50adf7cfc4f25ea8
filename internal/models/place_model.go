package models

// Place is a point of interest near a listing.
type Place struct {
	PlaceID    string   `json:"placeId,omitempty"`
	Name       string   `json:"name"`
	Type       string   `json:"type"`
	Vicinity   string   `json:"vicinity,omitempty"`
	Location   GeoPoint `json:"location"`
	DistanceKm float64  `json:"distanceKm"`
}
