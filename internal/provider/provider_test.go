package provider

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jddeal/go-wxdata/internal/observability"
)

func TestParseLevel2Name(t *testing.T) {
	site, ts, err := ParseLevel2Name("KOKX20210902_000428_V06")
	require.NoError(t, err)
	assert.Equal(t, "KOKX", site)
	assert.Equal(t, time.Date(2021, 9, 2, 0, 4, 28, 0, time.UTC), ts)

	key, err := Level2Key("KOKX20210902_000428_V06")
	require.NoError(t, err)
	assert.Equal(t, "2021/09/02/KOKX/KOKX20210902_000428_V06", key)

	for _, name := range []string{"", "KOKX", "KOKX2021090X_000428_V06", "KOKX20211302_000428"} {
		_, err := Level2Key(name)
		assert.Error(t, err, name)
	}
}

func TestParseLevel3Time(t *testing.T) {
	want := time.Date(2021, 12, 11, 2, 15, 0, 0, time.UTC)
	for _, name := range []string{
		"KLSX_SDUS53_N0QLSX_202112110215",
		"LSX_N0Q_20211211_0215",
		"LSX_N0Q_20211211_021500",
	} {
		ts, err := ParseLevel3Time(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, ts, name)
	}

	_, err := ParseLevel3Time("KLSX_SDUS53_N0QLSX")
	assert.Error(t, err)
	assert.Equal(t, "NIDS/LSX/N0Q/f", Level3Key("LSX", "N0Q", "f"))
}

func TestParseChunkName(t *testing.T) {
	c, err := ParseChunkName("20210902-000428-012-I")
	require.NoError(t, err)
	assert.Equal(t, Chunk{Name: "20210902-000428-012-I", Number: 12, Type: "I"}, c)

	_, err = ParseChunkName("20210902-000428-S")
	assert.Error(t, err)
	_, err = ParseChunkName("20210902-000428-x-S")
	assert.Error(t, err)

	chunks := sortChunks([]string{"a-b-3-E", "a-b-1-S", "junk", "a-b-2-I"})
	require.Len(t, chunks, 3)
	assert.Equal(t, []int{1, 2, 3}, []int{chunks[0].Number, chunks[1].Number, chunks[2].Number})
}

func TestLastN(t *testing.T) {
	assert.Equal(t, []string{"b", "c"}, lastN([]string{"a", "b", "c"}, 2))
	assert.Equal(t, []string{"a"}, lastN([]string{"a"}, 2))
	assert.Equal(t, []string{"a", "b"}, lastN([]string{"a", "b"}, 0))
}

func newLevel2(store, chunks *memStore) *Level2 {
	return &Level2{
		Archive: store,
		Chunks:  chunks,
		Clock:   clockwork.NewFakeClockAt(time.Date(2021, 9, 2, 1, 0, 0, 0, time.UTC)),
		Metrics: observability.NewMetricsForTesting(),
		Log:     quietLogger(),
		Limit:   3,
	}
}

func TestLevel2_SitesAndFiles(t *testing.T) {
	store := newMemStore()
	for _, key := range []string{
		"2021/09/01/KLSX/KLSX20210901_235000_V06",
		"2021/09/01/KOKX/KOKX20210901_234000_V06",
		"2021/09/01/KOKX/KOKX20210901_235000_V06",
		"2021/09/02/KOKX/KOKX20210902_000428_V06",
		"2021/09/02/KOKX/KOKX20210902_001000_V06",
	} {
		store.objects[key] = nil
	}
	p := newLevel2(store, newMemStore())

	sites, err := p.Sites(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"KLSX", "KOKX"}, sites)

	// two today, so yesterday fills the rest
	files, err := p.Files(context.Background(), "KOKX")
	require.NoError(t, err)
	assert.Equal(t, []string{"KOKX20210901_235000_V06", "KOKX20210902_000428_V06", "KOKX20210902_001000_V06"}, files)

	assert.InDelta(t, 3, testutil.ToFloat64(p.Metrics.ListingRequests.WithLabelValues("mem", "success")), 1e-9)

	store.listErr = errors.New("denied")
	_, err = p.Files(context.Background(), "KOKX")
	assert.Error(t, err)
	assert.InDelta(t, 1, testutil.ToFloat64(p.Metrics.ListingRequests.WithLabelValues("mem", "error")), 1e-9)
}

func TestLevel2_Volume(t *testing.T) {
	store := newMemStore()
	volume := append(volumeHeader(t), ldmRecord(t, 2)...)
	store.objects["2021/09/02/KOKX/KOKX20210902_000428_V06"] = volume
	store.objects["2021/09/02/KOKX/KOKX20210902_001000_V06"] = level3Product(t)
	p := newLevel2(store, newMemStore())

	f, err := p.Volume(context.Background(), "KOKX20210902_000428_V06")
	require.NoError(t, err)
	assert.Equal(t, "KOKX", f.VolumeHeader.Station())
	assert.Equal(t, 2, f.MessageCount())
	assert.InDelta(t, float64(len(volume)), testutil.ToFloat64(p.Metrics.BytesFetched.WithLabelValues("mem")), 1e-9)
	assert.InDelta(t, 2, testutil.ToFloat64(p.Metrics.MessagesDecoded.WithLabelValues("level2")), 1e-9)

	_, err = p.Volume(context.Background(), "KOKX20210902_001000_V06")
	assert.Error(t, err)

	_, err = p.Volume(context.Background(), "KOKX20210902_002000_V06")
	assert.Error(t, err)

	_, err = p.Volume(context.Background(), "bogus")
	assert.Error(t, err)
}

func TestLevel2_Realtime(t *testing.T) {
	chunks := newMemStore()
	chunks.objects["KOKX/42/20210902-000428-001-S"] = append(volumeHeader(t), ldmRecord(t, 1)...)
	chunks.objects["KOKX/42/20210902-000428-002-I"] = ldmRecord(t, 2)
	chunks.objects["KOKX/42/20210902-000428-003-I"] = []byte{0xff, 0xff}
	chunks.objects["KOKX/42/20210902-000428-004-E"] = ldmRecord(t, 3)
	chunks.objects["KOKX/43/20210902-000928-002-I"] = ldmRecord(t, 1)
	p := newLevel2(newMemStore(), chunks)

	f, err := p.Realtime(context.Background(), "KOKX", 42)
	require.NoError(t, err)
	assert.Equal(t, 6, f.MessageCount())
	assert.Len(t, chunks.opened, 4)

	// start chunk not there yet
	_, err = p.Realtime(context.Background(), "KOKX", 43)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = p.Realtime(context.Background(), "KOKX", 44)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLevel3(t *testing.T) {
	store := newMemStore()
	store.objects["NIDS/LSX/N0Q/LSX_N0Q_20211211_0210"] = level3Product(t)
	store.objects["NIDS/LSX/N0Q/LSX_N0Q_20211211_0215"] = level3Product(t)
	store.objects["NIDS/LSX/N0U/LSX_N0U_20211211_0215"] = level3Product(t)
	store.objects["NIDS/OAX/N0Q/OAX_N0Q_20211211_0215"] = []byte("garbage")

	p := &Level3{Store: store, Metrics: observability.NewMetricsForTesting(), Log: quietLogger(), Limit: 1}
	ctx := context.Background()

	sites, err := p.Sites(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"LSX", "OAX"}, sites)

	products, err := p.Products(ctx, "LSX")
	require.NoError(t, err)
	assert.Equal(t, []string{"N0Q", "N0U"}, products)

	files, err := p.Files(ctx, "LSX", "N0Q")
	require.NoError(t, err)
	assert.Equal(t, []string{"LSX_N0Q_20211211_0215"}, files)

	f, err := p.Product(ctx, "LSX", "N0Q", files[0])
	require.NoError(t, err)
	assert.Equal(t, 1, f.MessageCount())
	assert.Equal(t, "KLSX", f.WmoHeader().ICAO)

	_, err = p.Product(ctx, "OAX", "N0Q", "OAX_N0Q_20211211_0215")
	assert.Error(t, err)
	assert.InDelta(t, 1, testutil.ToFloat64(p.Metrics.FilesDecoded.WithLabelValues("level3", "error")), 1e-9)
}
