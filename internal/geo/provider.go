package geo

import "context"

// Position is a device-reported location fix
type Position struct {
	Latitude  float64
	Longitude float64
}

// Address holds reverse-geocoded address components
type Address struct {
	Street  string
	City    string
	Region  string
	Country string
}

// Provider is the geolocation boundary. Implementations wrap whatever the
// hosting platform offers; every call is context-bound so callers can
// attach timeouts and cancellation.
type Provider interface {
	// RequestForegroundPermission returns true when location access is granted.
	RequestForegroundPermission(ctx context.Context) (bool, error)
	CurrentPosition(ctx context.Context) (Position, error)
	ReverseGeocode(ctx context.Context, lat, lon float64) (Address, error)
}

// NoopProvider is the server-side Provider: positions arrive from the
// client over the wire, so permission is always granted and there is no
// device fix to return.
type NoopProvider struct{}

func (NoopProvider) RequestForegroundPermission(ctx context.Context) (bool, error) {
	return true, nil
}

func (NoopProvider) CurrentPosition(ctx context.Context) (Position, error) {
	return Position{}, nil
}

func (NoopProvider) ReverseGeocode(ctx context.Context, lat, lon float64) (Address, error) {
	return Address{}, nil
}
