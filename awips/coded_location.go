package awips

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidCodedLocation is returned when a LAT...LON or TIME...MOT...LOC
// group cannot be decoded.
var ErrInvalidCodedLocation = errors.New("awips: invalid coded location")

// Coordinate is a point in decimal degrees, west longitude negative.
type Coordinate struct {
	Latitude  float64
	Longitude float64
}

// LocationFormat tells how the points of a LAT...LON group are coded.
type LocationFormat int

const (
	// LocationFormatWFO pairs are separate tokens: LLLL NNNNN.
	LocationFormatWFO LocationFormat = iota
	// LocationFormatNationalCenter pairs share one token: LLLLNNNN.
	LocationFormatNationalCenter
)

// guamOffice issues products east of 180 degrees; every other office codes
// west longitude.
const guamOffice = "PGUM"

// CodedLocation is the polygon of a LAT...LON group (NWSI 10-1701).
type CodedLocation struct {
	Format      LocationFormat
	Coordinates []Coordinate
}

// ParseCodedLocation decodes a LAT...LON group and its continuation lines.
// wfo is the ICAO of the issuing office.
func ParseCodedLocation(lines []string, wfo string) (*CodedLocation, error) {
	tokens := tokenize(lines)

	// at least three points follow the keyword
	if len(tokens) < 4 || tokens[0] != "LAT...LON" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidCodedLocation, strings.Join(lines, " "))
	}

	loc := &CodedLocation{Format: LocationFormatWFO}
	if len(tokens[1]) == 8 {
		loc.Format = LocationFormatNationalCenter
	}

	var err error
	switch loc.Format {
	case LocationFormatWFO:
		if len(tokens) < 7 || len(tokens)%2 != 1 {
			return nil, fmt.Errorf("%w: %d coordinate tokens", ErrInvalidCodedLocation, len(tokens)-1)
		}
		loc.Coordinates, err = parseCoordinatePairs(tokens[1:], wfo)
	case LocationFormatNationalCenter:
		loc.Coordinates, err = parseNationalCenterPoints(tokens[1:])
	}
	if err != nil {
		return nil, err
	}

	// a closed polygon repeats its first point
	if n := len(loc.Coordinates); n > 1 && loc.Coordinates[0] == loc.Coordinates[n-1] {
		loc.Coordinates = loc.Coordinates[:n-1]
	}
	return loc, nil
}

func tokenize(lines []string) []string {
	var tokens []string
	for _, line := range lines {
		tokens = append(tokens, strings.Fields(line)...)
	}
	return tokens
}

// parseCoordinatePairs decodes LLLL NNNNN token pairs in hundredths of a
// degree. Points past 180 degrees are coded as if they were west longitude.
func parseCoordinatePairs(tokens []string, wfo string) ([]Coordinate, error) {
	east := wfo == guamOffice
	sign := -1.0
	if east {
		sign = 1.0
	}

	straddlesDateLine := false
	coordinates := make([]Coordinate, 0, len(tokens)/2)
	for i := 0; i+1 < len(tokens); i += 2 {
		lat, err := strconv.ParseUint(tokens[i], 10, 16)
		if err != nil {
			return nil, fmt.Errorf("%w: latitude %q", ErrInvalidCodedLocation, tokens[i])
		}
		lon, err := strconv.ParseUint(tokens[i+1], 10, 16)
		if err != nil {
			return nil, fmt.Errorf("%w: longitude %q", ErrInvalidCodedLocation, tokens[i+1])
		}

		longitude := float64(lon) / 100
		if longitude > 180 {
			longitude -= 360
			straddlesDateLine = true
		}
		coordinates = append(coordinates, Coordinate{Latitude: float64(lat) / 100, Longitude: longitude * sign})
	}

	if east && straddlesDateLine {
		for i := range coordinates {
			coordinates[i].Longitude = -coordinates[i].Longitude
		}
	}
	return coordinates, nil
}

// parseNationalCenterPoints decodes LLLLNNNN tokens. The leading 1 of
// longitudes past 100 W is dropped, so anything east of 65 W (the easternmost
// point of the CONUS) gets 100 degrees added.
func parseNationalCenterPoints(tokens []string) ([]Coordinate, error) {
	coordinates := make([]Coordinate, 0, len(tokens))
	for _, token := range tokens {
		if len(token) != 8 {
			return nil, fmt.Errorf("%w: point %q", ErrInvalidCodedLocation, token)
		}
		lat, err1 := strconv.ParseUint(token[0:4], 10, 16)
		lon, err2 := strconv.ParseUint(token[4:8], 10, 16)
		if err1 != nil || err2 != nil {
			return nil, fmt.Errorf("%w: point %q", ErrInvalidCodedLocation, token)
		}

		longitude := -float64(lon) / 100
		if longitude > -65 {
			longitude -= 100
		}
		coordinates = append(coordinates, Coordinate{Latitude: float64(lat) / 100, Longitude: longitude})
	}
	return coordinates, nil
}
