package provider

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

const (
	dayLayout     = "2006/01/02/"
	level2Layout  = "20060102_150405"
	level3Layout  = "200601021504"
	level3NIDS    = "NIDS/"
	chunkStart    = "S"
	minLevel2Name = len("KLSX20060102_150405")
)

// ParseLevel2Name splits an archive volume name such as
// KOKX20210902_000428_V06 into its site and volume start time.
func ParseLevel2Name(name string) (string, time.Time, error) {
	if len(name) < minLevel2Name {
		return "", time.Time{}, fmt.Errorf("provider: invalid Level II name %q", name)
	}
	t, err := time.Parse(level2Layout, name[4:minLevel2Name])
	if err != nil {
		return "", time.Time{}, fmt.Errorf("provider: invalid Level II name %q: %w", name, err)
	}
	return name[:4], t, nil
}

// Level2Key is the archive bucket key of a volume: YYYY/MM/DD/SITE/NAME.
func Level2Key(name string) (string, error) {
	site, t, err := ParseLevel2Name(name)
	if err != nil {
		return "", err
	}
	return t.Format(dayLayout) + site + "/" + name, nil
}

// Level3Key is the bucket key of a product file.
func Level3Key(site, product, name string) string {
	return level3NIDS + site + "/" + product + "/" + name
}

// ParseLevel3Time finds the product time in a file name such as
// KLSX_SDUS53_N0QLSX_202112110215 or LSX_N0Q_20211211_0215.
func ParseLevel3Time(name string) (time.Time, error) {
	fields := strings.Split(name, "_")
	for i, f := range fields {
		if len(f) == len(level3Layout) {
			if t, err := time.Parse(level3Layout, f); err == nil {
				return t, nil
			}
		}
		if len(f) == 8 && i+1 < len(fields) && len(fields[i+1]) >= 4 {
			if t, err := time.Parse(level3Layout, f+fields[i+1][:4]); err == nil {
				return t, nil
			}
		}
	}
	return time.Time{}, fmt.Errorf("provider: no time in Level III name %q", name)
}

// Chunk is one object of a realtime Level II volume, named
// YYYYMMDD-HHMMSS-NNN-T where T is S(tart), I(ntermediate) or E(nd).
type Chunk struct {
	Name   string
	Number int
	Type   string
}

// ParseChunkName decodes a realtime chunk object name.
func ParseChunkName(name string) (Chunk, error) {
	parts := strings.Split(name, "-")
	if len(parts) != 4 {
		return Chunk{}, fmt.Errorf("provider: invalid chunk name %q", name)
	}
	n, err := strconv.Atoi(parts[2])
	if err != nil {
		return Chunk{}, fmt.Errorf("provider: invalid chunk name %q: %w", name, err)
	}
	return Chunk{Name: name, Number: n, Type: parts[3]}, nil
}

// sortChunks orders the chunks of a volume by number, dropping names that do
// not parse.
func sortChunks(names []string) []Chunk {
	chunks := make([]Chunk, 0, len(names))
	for _, n := range names {
		if c, err := ParseChunkName(n); err == nil {
			chunks = append(chunks, c)
		}
	}
	sort.Slice(chunks, func(i, j int) bool { return chunks[i].Number < chunks[j].Number })
	return chunks
}

// lastN returns at most the last n entries of s.
func lastN(s []string, n int) []string {
	if n > 0 && len(s) > n {
		return s[len(s)-n:]
	}
	return s
}
