package models

import "strings"

// UnknownCity is reported when the upstream document has no city
const UnknownCity = "UnknownLocation"

// LocationInfo is the part of the upstream geolocation document we consume
type LocationInfo struct {
	City string // city name as reported upstream, or UnknownCity
}

// FormattedCity returns the city with every space replaced by '+'
func (l LocationInfo) FormattedCity() string {
	return strings.ReplaceAll(l.City, " ", "+")
}
