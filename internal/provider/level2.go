package provider

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"

	"github.com/jddeal/go-wxdata/archive2"
	"github.com/jddeal/go-wxdata/internal/observability"
	"github.com/jddeal/go-wxdata/nexrad"
	"github.com/jddeal/go-wxdata/stream"
)

// chunkWorkers bounds the concurrent downloads of a realtime volume.
const chunkWorkers = 8

// Level2 serves archive volumes and realtime chunked volumes.
type Level2 struct {
	Archive ObjectStore
	Chunks  ObjectStore
	Clock   clockwork.Clock
	Metrics *observability.Metrics
	Log     logrus.Ext1FieldLogger
	Limit   int
}

// Sites lists the radars with data yesterday. Today's listing is incomplete
// until the first volume of every site has arrived.
func (p *Level2) Sites(ctx context.Context) ([]string, error) {
	day := p.Clock.Now().UTC().AddDate(0, 0, -1)
	_, sites, err := list(ctx, p.Archive, p.Metrics, day.Format(dayLayout))
	if err != nil {
		return nil, err
	}
	return sites, nil
}

// Files lists the most recent volumes of site, reaching back into yesterday
// when today has fewer than Limit.
func (p *Level2) Files(ctx context.Context, site string) ([]string, error) {
	now := p.Clock.Now().UTC()
	files, _, err := list(ctx, p.Archive, p.Metrics, now.Format(dayLayout)+site+"/")
	if err != nil {
		return nil, err
	}

	if len(files) < p.Limit {
		past, _, err := list(ctx, p.Archive, p.Metrics, now.AddDate(0, 0, -1).Format(dayLayout)+site+"/")
		if err != nil {
			return nil, err
		}
		files = append(past, files...)
	}
	return lastN(files, p.Limit), nil
}

// Volume fetches and decodes an archive volume by name, eg
// KOKX20210902_000428_V06.
func (p *Level2) Volume(ctx context.Context, name string) (*archive2.File, error) {
	key, err := Level2Key(name)
	if err != nil {
		return nil, err
	}
	data, err := fetch(ctx, p.Archive, p.Metrics, key)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	f, err := nexrad.LoadData(data, p.Log.WithField("file", name))
	if err == nil && f.Level2 == nil {
		err = fmt.Errorf("provider: %s is a %s file", name, f.Format)
	}
	if err != nil {
		p.Metrics.ObserveDecode("level2", 0, 0, err)
		return nil, err
	}
	p.Metrics.ObserveDecode("level2", f.MessageCount(), time.Since(start).Seconds(), nil)
	return f.Level2, nil
}

// Realtime assembles a volume that may still be in transmission from its
// chunks. Chunks that fail to download or decode are left out.
func (p *Level2) Realtime(ctx context.Context, site string, volume int) (*archive2.File, error) {
	prefix := fmt.Sprintf("%s/%d/", site, volume)
	names, _, err := list(ctx, p.Chunks, p.Metrics, prefix)
	if err != nil {
		return nil, err
	}
	chunks := sortChunks(names)
	if len(chunks) == 0 || chunks[0].Type != chunkStart {
		return nil, fmt.Errorf("%w: volume %d of %s", ErrNotFound, volume, site)
	}
	log := p.Log.WithField("volume", prefix)
	log.Debugf("Fetching %s chunks", color.CyanString("%d", len(chunks)))

	start := time.Now()
	data := p.fetchChunks(ctx, prefix, chunks, log)
	if data[0] == nil {
		return nil, fmt.Errorf("provider: volume %d of %s: start chunk unavailable", volume, site)
	}

	f := archive2.NewFile(log)
	if err := f.LoadData(data[0]); err != nil {
		p.Metrics.ObserveDecode("level2", 0, 0, err)
		return nil, err
	}
	for i, d := range data[1:] {
		if d == nil {
			continue
		}
		if err := f.LoadRecords(d); err != nil {
			log.Warnf("Chunk %s: %v", chunks[i+1].Name, err)
		}
	}
	p.Metrics.ObserveDecode("level2", f.MessageCount(), time.Since(start).Seconds(), nil)
	return f, nil
}

// fetchChunks downloads every chunk concurrently. The result is indexed like
// chunks; failed downloads are nil.
func (p *Level2) fetchChunks(ctx context.Context, prefix string, chunks []Chunk, log logrus.Ext1FieldLogger) []*stream.Buffer {
	data := make([]*stream.Buffer, len(chunks))
	sem := make(chan struct{}, chunkWorkers)
	wg := sync.WaitGroup{}
	for i, c := range chunks {
		wg.Add(1)
		go func(i int, c Chunk) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			d, err := fetch(ctx, p.Chunks, p.Metrics, prefix+c.Name)
			if err != nil {
				log.Warn(err)
				return
			}
			data[i] = d
		}(i, c)
	}
	wg.Wait()
	return data
}
