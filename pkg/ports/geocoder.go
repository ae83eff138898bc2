package ports

import "context"

// Geocoder resolves coordinates to a human-readable address. Implementations
// must honor ctx deadlines; the engine treats any error as "address unknown"
// and falls back to raw coordinates.
type Geocoder interface {
	ReverseGeocode(ctx context.Context, lat, lon float64) (string, error)
}
