package main

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/jddeal/go-wxdata/archive2"
	"github.com/jddeal/go-wxdata/internal/provider"
)

func (s *server) loadRealtime(w http.ResponseWriter, req *http.Request) (*archive2.File, bool) {
	vars := mux.Vars(req)
	volume, err := strconv.Atoi(vars["volume"])
	if err != nil {
		http.Error(w, "Invalid volume number", http.StatusBadRequest)
		return nil, false
	}

	ctx, cancel := s.context(req)
	defer cancel()

	ar2, err := s.level2.Realtime(ctx, vars["site"], volume)
	if errors.Is(err, provider.ErrNotFound) {
		http.Error(w, err.Error(), http.StatusNotFound)
		return nil, false
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return nil, false
	}
	return ar2, true
}

func (s *server) realtimeMetaHandler(w http.ResponseWriter, req *http.Request) {
	ar2, ok := s.loadRealtime(w, req)
	if !ok {
		return
	}
	writeJSON(w, describeVolume(ar2))
}

func (s *server) realtimeScanHandler(w http.ResponseWriter, req *http.Request) {
	elv, err := strconv.ParseFloat(mux.Vars(req)["elv"], 32)
	if err != nil {
		http.Error(w, "Invalid elv", http.StatusBadRequest)
		return
	}

	ar2, ok := s.loadRealtime(w, req)
	if !ok {
		return
	}
	writeScan(w, ar2, mux.Vars(req)["product"], float32(elv))
}
