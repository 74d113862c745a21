package main

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/jddeal/go-wxdata/archive2"
)

type level2Source interface {
	Sites(ctx context.Context) ([]string, error)
	Files(ctx context.Context, site string) ([]string, error)
	Volume(ctx context.Context, name string) (*archive2.File, error)
	Realtime(ctx context.Context, site string, volume int) (*archive2.File, error)
}

// volumeMeta describes a volume without its moment data.
type volumeMeta struct {
	Filename   string          `json:"filename"`
	Station    string          `json:"station"`
	Start      time.Time       `json:"start"`
	End        time.Time       `json:"end"`
	VCP        uint16          `json:"vcp,omitempty"`
	Build      float32         `json:"build,omitempty"`
	Messages   int             `json:"messages"`
	Elevations []elevationMeta `json:"elevations"`
}

type elevationMeta struct {
	Number  int      `json:"number"`
	Angle   float32  `json:"angle"`
	Radials int      `json:"radials"`
	Moments []string `json:"moments"`
}

// scanData is one moment of one elevation cut.
type scanData struct {
	Moment       string       `json:"moment"`
	Elevation    float32      `json:"elevation"`
	Cuts         []float32    `json:"cuts"`
	Range        float32      `json:"range_km"`
	GateInterval float32      `json:"gate_interval_km"`
	Radials      []radialData `json:"radials"`
}

type radialData struct {
	Azimuth float32   `json:"azimuth"`
	Gates   []float32 `json:"gates"`
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (s *server) siteListHandler(w http.ResponseWriter, req *http.Request) {
	ctx, cancel := s.context(req)
	defer cancel()

	sites, err := s.level2.Sites(ctx)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, sites)
}

func (s *server) listFilesHandler(w http.ResponseWriter, req *http.Request) {
	ctx, cancel := s.context(req)
	defer cancel()

	files, err := s.level2.Files(ctx, mux.Vars(req)["site"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, files)
}

func (s *server) metaHandler(w http.ResponseWriter, req *http.Request) {
	ctx, cancel := s.context(req)
	defer cancel()

	ar2, err := s.level2.Volume(ctx, mux.Vars(req)["fn"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, describeVolume(ar2))
}

func (s *server) scanHandler(w http.ResponseWriter, req *http.Request) {
	vars := mux.Vars(req)
	elv, err := strconv.ParseFloat(vars["elv"], 32)
	if err != nil {
		http.Error(w, "Invalid elv", http.StatusBadRequest)
		return
	}

	ctx, cancel := s.context(req)
	defer cancel()

	ar2, err := s.level2.Volume(ctx, vars["fn"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeScan(w, ar2, vars["product"], float32(elv))
}

func describeVolume(ar2 *archive2.File) volumeMeta {
	meta := volumeMeta{
		Filename:   ar2.VolumeHeader.Filename(),
		Station:    ar2.VolumeHeader.Station(),
		Start:      ar2.StartTime(),
		End:        ar2.EndTime(),
		Messages:   ar2.MessageCount(),
		Elevations: []elevationMeta{},
	}
	if vcp := ar2.VolumeCoveragePattern(); vcp != nil {
		meta.VCP = vcp.PatternNumber
	}
	if status := ar2.Status(); status != nil {
		meta.Build = status.BuildNumber()
	}

	data := ar2.RadarData()
	elevations := make([]int, 0, len(data))
	for e := range data {
		elevations = append(elevations, int(e))
	}
	sort.Ints(elevations)

	for _, e := range elevations {
		radials := data[uint16(e)].Radials()
		if len(radials) == 0 {
			continue
		}
		em := elevationMeta{Number: e + 1, Angle: radials[0].Header.ElevationAngle, Radials: len(radials)}
		for _, m := range archive2.MomentTypes {
			if radials[0].Moment(m) != nil {
				em.Moments = append(em.Moments, strings.TrimSpace(string(m)))
			}
		}
		meta.Elevations = append(meta.Elevations, em)
	}
	return meta
}

func writeScan(w http.ResponseWriter, ar2 *archive2.File, product string, elv float32) {
	moment := archive2.MomentType(strings.ToUpper(product))
	if len(moment) < 3 {
		moment += archive2.MomentType(strings.Repeat(" ", 3-len(moment)))
	}

	scan, cut, cuts := ar2.ElevationScan(moment, elv)
	if scan == nil {
		http.Error(w, "No such product", http.StatusNotFound)
		return
	}

	out := scanData{Moment: strings.TrimSpace(string(moment)), Elevation: cut, Cuts: cuts}
	for _, radial := range scan.Radials() {
		dm := radial.Moment(moment)
		if dm == nil {
			continue
		}
		if out.Radials == nil {
			out.Range, out.GateInterval = dm.Range(), dm.GateInterval()
		}
		out.Radials = append(out.Radials, radialData{Azimuth: radial.Header.AzimuthAngle, Gates: dm.ScaledData()})
	}
	writeJSON(w, out)
}
