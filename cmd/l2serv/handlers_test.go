package main

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jddeal/go-wxdata/archive2"
	"github.com/jddeal/go-wxdata/internal/provider"
	"github.com/jddeal/go-wxdata/level3"
)

type fakeLevel2 struct {
	volume *archive2.File
	err    error
	asked  []string
}

func (f *fakeLevel2) Sites(context.Context) ([]string, error) {
	return []string{"KLSX", "KOKX"}, f.err
}

func (f *fakeLevel2) Files(_ context.Context, site string) ([]string, error) {
	f.asked = append(f.asked, site)
	return []string{site + "20210902_000428_V06"}, f.err
}

func (f *fakeLevel2) Volume(_ context.Context, name string) (*archive2.File, error) {
	f.asked = append(f.asked, name)
	return f.volume, f.err
}

func (f *fakeLevel2) Realtime(_ context.Context, site string, volume int) (*archive2.File, error) {
	f.asked = append(f.asked, fmt.Sprintf("%s/%d", site, volume))
	if volume > 999 {
		return nil, provider.ErrNotFound
	}
	return f.volume, f.err
}

type fakeLevel3 struct {
	product *level3.File
	err     error
}

func (f *fakeLevel3) Sites(context.Context) ([]string, error) { return []string{"LSX"}, f.err }

func (f *fakeLevel3) Products(_ context.Context, site string) ([]string, error) {
	return []string{"N0Q", "N0U"}, f.err
}

func (f *fakeLevel3) Files(_ context.Context, site, product string) ([]string, error) {
	return []string{site + "_" + product + "_20211211_0215"}, f.err
}

func (f *fakeLevel3) Product(context.Context, string, string, string) (*level3.File, error) {
	return f.product, f.err
}

func testVolume(t *testing.T) *archive2.File {
	t.Helper()
	vh := archive2.VolumeHeaderRecord{ModifiedDate: 18872, ModifiedTime: 268000}
	copy(vh.TapeFilename[:], "AR2V0006.")
	copy(vh.ExtensionNumber[:], "001")
	copy(vh.ICAO[:], "KOKX")
	buf := &bytes.Buffer{}
	require.NoError(t, binary.Write(buf, binary.BigEndian, vh))

	log, _ := test.NewNullLogger()
	f := archive2.NewFile(log)
	require.NoError(t, f.LoadData(buf))
	return f
}

func testProduct(t *testing.T) *level3.File {
	t.Helper()
	body := []byte("free text message")
	buf := bytes.NewBufferString("SDUS53 KLSX 110215\r\r\nNXXLSX\r\r\n")
	require.NoError(t, binary.Write(buf, binary.BigEndian, level3.MessageHeader{
		Code:           1,
		Date:           18972,
		Time:           8280,
		Length:         uint32(level3.MessageHeaderLength + len(body)),
		SourceID:       1,
		NumberOfBlocks: 1,
	}))
	buf.Write(body)

	log, _ := test.NewNullLogger()
	f := level3.NewFile(log)
	require.NoError(t, f.LoadData(buf))
	return f
}

func newTestServer(t *testing.T) (*server, *fakeLevel2, *fakeLevel3) {
	log, _ := test.NewNullLogger()
	l2 := &fakeLevel2{volume: testVolume(t)}
	l3 := &fakeLevel3{product: testProduct(t)}
	return &server{log: log, timeout: time.Second, level2: l2, level3: l3}, l2, l3
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestLevel2Routes(t *testing.T) {
	s, l2, _ := newTestServer(t)
	r := s.router(http.NotFoundHandler())

	rec := get(t, r, "/l2")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `["KLSX","KOKX"]`, rec.Body.String())
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	rec = get(t, r, "/l2/KOKX")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `["KOKX20210902_000428_V06"]`, rec.Body.String())

	rec = get(t, r, "/l2/KOKX/KOKX20210902_000428_V06")
	require.Equal(t, http.StatusOK, rec.Code)
	var meta volumeMeta
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &meta))
	assert.Equal(t, "KOKX", meta.Station)
	assert.Equal(t, "AR2V0006.001", meta.Filename)
	assert.Empty(t, meta.Elevations)

	// no radials in the volume
	rec = get(t, r, "/l2/KOKX/KOKX20210902_000428_V06/0.5/ref")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = get(t, r, "/l2/KOKX/KOKX20210902_000428_V06/low/ref")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	assert.Equal(t, []string{"KOKX", "KOKX20210902_000428_V06", "KOKX20210902_000428_V06"}, l2.asked)

	l2.err = errors.New("bucket unavailable")
	rec = get(t, r, "/l2")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestRealtimeRoutes(t *testing.T) {
	s, l2, _ := newTestServer(t)
	r := s.router(http.NotFoundHandler())

	rec := get(t, r, "/l2-realtime/KOKX/42.json")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"station":"KOKX"`)

	rec = get(t, r, "/l2-realtime/KOKX/1000.json")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = get(t, r, "/l2-realtime/KOKX/next.json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = get(t, r, "/l2-realtime/KOKX/42/x/vel")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	assert.Equal(t, []string{"KOKX/42", "KOKX/1000"}, l2.asked)
}

func TestLevel3Routes(t *testing.T) {
	s, _, l3 := newTestServer(t)
	r := s.router(http.NotFoundHandler())

	rec := get(t, r, "/l3")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `["LSX"]`, rec.Body.String())

	rec = get(t, r, "/l3/LSX")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `["N0Q","N0U"]`, rec.Body.String())

	rec = get(t, r, "/l3/LSX/N0Q")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `["LSX_N0Q_20211211_0215"]`, rec.Body.String())

	rec = get(t, r, "/l3/LSX/N0Q/LSX_N0Q_20211211_0215")
	require.Equal(t, http.StatusOK, rec.Code)
	var meta productMeta
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &meta))
	assert.Equal(t, "NXXLSX", meta.AwipsID)
	require.Len(t, meta.Messages, 1)
	assert.Equal(t, int16(1), meta.Messages[0].Code)
	assert.Nil(t, meta.Messages[0].VolumeStart)

	l3.err = level3.ErrNoMessages
	rec = get(t, r, "/l3/LSX/N0Q/LSX_N0Q_20211211_0215")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	l3.err = errors.New("bucket unavailable")
	rec = get(t, r, "/l3")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestMetricsRoute(t *testing.T) {
	s, _, _ := newTestServer(t)
	r := s.router(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("metrics"))
	}))

	rec := get(t, r, "/metrics")
	assert.Equal(t, "metrics", rec.Body.String())
}
