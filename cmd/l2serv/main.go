package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/jddeal/go-wxdata/internal/config"
	"github.com/jddeal/go-wxdata/internal/observability"
	"github.com/jddeal/go-wxdata/internal/provider"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatal(err)
	}
	log := cfg.Logger()
	metrics := observability.NewMetrics()

	archive, err := provider.NewS3Store(cfg.AWSRegion, cfg.Level2Bucket)
	if err != nil {
		log.Fatal(err)
	}
	chunks, err := provider.NewS3Store(cfg.AWSRegion, cfg.Level2ChunkBucket)
	if err != nil {
		log.Fatal(err)
	}
	nids, err := provider.NewGCSStore(context.Background(), cfg.Level3Bucket, cfg.GCSCredentialsFile)
	if err != nil {
		log.Fatal(err)
	}
	defer nids.Close()

	s := &server{
		log:     log,
		timeout: cfg.FetchTimeout,
		level2: &provider.Level2{
			Archive: archive,
			Chunks:  chunks,
			Clock:   clockwork.NewRealClock(),
			Metrics: metrics,
			Log:     log.WithField("component", "level2"),
			Limit:   cfg.ListingLimit,
		},
		level3: &provider.Level3{
			Store:   nids,
			Metrics: metrics,
			Log:     log.WithField("component", "level3"),
			Limit:   cfg.ListingLimit,
		},
	}

	srv := &http.Server{
		Addr: cfg.HTTPAddr,
		// Good practice to set timeouts to avoid Slowloris attacks.
		WriteTimeout: cfg.FetchTimeout + 15*time.Second,
		ReadTimeout:  time.Second * 15,
		IdleTimeout:  time.Second * 60,
		Handler:      s.router(promhttp.Handler()),
	}

	go func() {
		log.Infof("Listening on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error(err)
	}
}

type server struct {
	log     logrus.Ext1FieldLogger
	timeout time.Duration
	level2  level2Source
	level3  level3Source
}

func (s *server) router(metrics http.Handler) *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/l2", s.siteListHandler)
	r.HandleFunc("/l2/{site}", s.listFilesHandler)
	r.HandleFunc("/l2/{site}/{fn}", s.metaHandler)
	r.HandleFunc("/l2/{site}/{fn}/{elv}/{product}", s.scanHandler)

	r.HandleFunc("/l2-realtime/{site}/{volume}.json", s.realtimeMetaHandler)
	r.HandleFunc("/l2-realtime/{site}/{volume}/{elv}/{product}", s.realtimeScanHandler)

	r.PathPrefix("/l3").Handler(s.level3Engine())
	r.Handle("/metrics", metrics)
	return r
}

func (s *server) context(req *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(req.Context(), s.timeout)
}
