package fare

import "math"

// Config holds fare configuration
type Config struct {
	Base    float64
	PerKM   float64
	Minimum float64
}

// Calculator computes fares from straight-line trip distance. Habal-habal
// fares are flag-down plus a per-kilometre rate; there is no time
// component because trips are short.
type Calculator struct {
	config Config
}

// NewCalculator creates a new fare calculator
func NewCalculator(config Config) *Calculator {
	return &Calculator{config: config}
}

// Estimate computes the fare for a trip between two coordinates. Pesos
// are rounded to whole units. With unknown coordinates (0,0 manual
// entries) the minimum fare applies.
func (c *Calculator) Estimate(pickupLat, pickupLng, dropoffLat, dropoffLng float64) float64 {
	distance := Distance(pickupLat, pickupLng, dropoffLat, dropoffLng)
	fare := c.config.Base + distance*c.config.PerKM
	fare = math.Round(fare)
	if fare < c.config.Minimum {
		return c.config.Minimum
	}
	return fare
}

// Distance calculates haversine distance in kilometres
func Distance(lat1, lon1, lat2, lon2 float64) float64 {
	const earthRadius = 6371 // kilometers

	dLat := toRadians(lat2 - lat1)
	dLon := toRadians(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(lat1))*math.Cos(toRadians(lat2))*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadius * c
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
