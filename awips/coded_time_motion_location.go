package awips

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// CodedTimeMotionLocation is a TIME...MOT...LOC group: the time of the
// observation, the direction the storm is moving from and its position.
//
//	TIME...MOT...LOC hhmmZ dddDEG ssKT LLLL NNNNN ...
type CodedTimeMotionLocation struct {
	Time        time.Duration // since 00Z
	Direction   uint16        // degrees
	Speed       uint8         // knots
	Coordinates []Coordinate
}

// ParseCodedTimeMotionLocation decodes a TIME...MOT...LOC group and its
// continuation lines. wfo is the ICAO of the issuing office.
func ParseCodedTimeMotionLocation(lines []string, wfo string) (*CodedTimeMotionLocation, error) {
	tokens := tokenize(lines)

	// at least one point follows the time, direction and speed
	if len(tokens) < 6 || len(tokens)%2 != 0 || tokens[0] != "TIME...MOT...LOC" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidCodedLocation, strings.Join(lines, " "))
	}

	m := &CodedTimeMotionLocation{}

	t := tokens[1]
	if len(t) != 5 || t[4] != 'Z' {
		return nil, fmt.Errorf("%w: time %q", ErrInvalidCodedLocation, t)
	}
	hh, err1 := strconv.ParseUint(t[0:2], 10, 8)
	mm, err2 := strconv.ParseUint(t[2:4], 10, 8)
	if err1 != nil || err2 != nil || hh > 23 || mm > 59 {
		return nil, fmt.Errorf("%w: time %q", ErrInvalidCodedLocation, t)
	}
	m.Time = time.Duration(hh)*time.Hour + time.Duration(mm)*time.Minute

	direction := tokens[2]
	if len(direction) != 6 || !strings.HasSuffix(direction, "DEG") {
		return nil, fmt.Errorf("%w: direction %q", ErrInvalidCodedLocation, direction)
	}
	d, err := strconv.ParseUint(direction[:3], 10, 16)
	if err != nil {
		return nil, fmt.Errorf("%w: direction %q", ErrInvalidCodedLocation, direction)
	}
	m.Direction = uint16(d)

	speed := tokens[3]
	if len(speed) < 3 || len(speed) > 4 || !strings.HasSuffix(speed, "KT") {
		return nil, fmt.Errorf("%w: speed %q", ErrInvalidCodedLocation, speed)
	}
	s, err := strconv.ParseUint(speed[:len(speed)-2], 10, 8)
	if err != nil {
		return nil, fmt.Errorf("%w: speed %q", ErrInvalidCodedLocation, speed)
	}
	m.Speed = uint8(s)

	if m.Coordinates, err = parseCoordinatePairs(tokens[4:], wfo); err != nil {
		return nil, err
	}
	return m, nil
}
