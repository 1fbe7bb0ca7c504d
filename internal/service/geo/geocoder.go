package geo

import (
	"context"
	"errors"
	"fmt"

	"googlemaps.github.io/maps"
)

// ErrNoResults is returned when the provider finds nothing for a query.
var ErrNoResults = errors.New("no geocoding results")

// Point is a geocoded coordinate with its formatted address.
type Point struct {
	Latitude  float64
	Longitude float64
	Address   string
}

// Geocoder resolves addresses to coordinates and back.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (*Point, error)
	ReverseGeocode(ctx context.Context, lat, lng float64) (*Point, error)
}

// GoogleGeocoder talks to the Google Maps geocoding API.
type GoogleGeocoder struct {
	client *maps.Client
	region string
}

// NewGoogleGeocoder creates a geocoder for an API key
func NewGoogleGeocoder(apiKey, region string) (*GoogleGeocoder, error) {
	client, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}
	return &GoogleGeocoder{client: client, region: region}, nil
}

// Geocode resolves a free-text address to a coordinate
func (g *GoogleGeocoder) Geocode(ctx context.Context, address string) (*Point, error) {
	results, err := g.client.Geocode(ctx, &maps.GeocodingRequest{
		Address: address,
		Region:  g.region,
	})
	if err != nil {
		return nil, fmt.Errorf("geocode %q: %w", address, err)
	}
	if len(results) == 0 {
		return nil, ErrNoResults
	}

	loc := results[0].Geometry.Location
	return &Point{
		Latitude:  loc.Lat,
		Longitude: loc.Lng,
		Address:   results[0].FormattedAddress,
	}, nil
}

// ReverseGeocode resolves a coordinate to its nearest formatted address
func (g *GoogleGeocoder) ReverseGeocode(ctx context.Context, lat, lng float64) (*Point, error) {
	results, err := g.client.ReverseGeocode(ctx, &maps.GeocodingRequest{
		LatLng: &maps.LatLng{Lat: lat, Lng: lng},
	})
	if err != nil {
		return nil, fmt.Errorf("reverse geocode %.5f,%.5f: %w", lat, lng, err)
	}
	if len(results) == 0 {
		return nil, ErrNoResults
	}

	return &Point{
		Latitude:  lat,
		Longitude: lng,
		Address:   results[0].FormattedAddress,
	}, nil
}

// Disabled is the geocoder used when no API key is configured. Lookups
// fail with ErrNoResults and callers degrade instead of erroring out.
type Disabled struct{}

func (Disabled) Geocode(ctx context.Context, address string) (*Point, error) {
	return nil, ErrNoResults
}

func (Disabled) ReverseGeocode(ctx context.Context, lat, lng float64) (*Point, error) {
	return nil, ErrNoResults
}
