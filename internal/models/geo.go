// internal/models/geo.go
package models

import "math"

const earthRadiusKm = 6371.0

type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// DistanceKm is the haversine distance between p and q.
func (p GeoPoint) DistanceKm(q GeoPoint) float64 {
	lat1, lat2 := radians(p.Lat), radians(q.Lat)
	dLat := lat2 - lat1
	dLon := radians(q.Lon - p.Lon)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusKm * math.Asin(math.Min(1, math.Sqrt(a)))
}

// ApplyOrigin fills Distance for listings with a location and, when the
// filter has a radius, drops the ones outside it. Listings without a location
// are kept with an unknown distance.
func ApplyOrigin(listings []*Listing, filter PoolFilter) []*Listing {
	if filter.Origin == nil {
		return listings
	}
	out := listings[:0]
	for _, l := range listings {
		if l.Location != nil {
			d := filter.Origin.DistanceKm(*l.Location)
			if filter.RadiusKm > 0 && d > filter.RadiusKm {
				continue
			}
			l.Distance = &d
		}
		out = append(out, l)
	}
	return out
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}
