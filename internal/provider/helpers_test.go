package provider

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"io"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/dsnet/compress/bzip2"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"

	"github.com/jddeal/go-wxdata/archive2"
	"github.com/jddeal/go-wxdata/level3"
)

func quietLogger() logrus.Ext1FieldLogger {
	log, _ := test.NewNullLogger()
	return log
}

// memStore is an ObjectStore over a map of keys.
type memStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	opened  []string
	listErr error
}

func newMemStore() *memStore {
	return &memStore{objects: make(map[string][]byte)}
}

func (s *memStore) Source() string { return "mem" }

func (s *memStore) List(_ context.Context, prefix string) ([]string, []string, error) {
	if s.listErr != nil {
		return nil, nil, s.listErr
	}
	var objects []string
	dirs := map[string]bool{}
	for key := range s.objects {
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		rest := key[len(prefix):]
		if i := strings.Index(rest, "/"); i >= 0 {
			dirs[rest[:i]] = true
		} else {
			objects = append(objects, rest)
		}
	}
	sort.Strings(objects)

	var names []string
	for d := range dirs {
		names = append(names, d)
	}
	sort.Strings(names)
	return objects, names, nil
}

func (s *memStore) Open(_ context.Context, name string) (io.ReadCloser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.opened = append(s.opened, name)
	data, ok := s.objects[name]
	if !ok {
		return nil, errors.New("no such key")
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func write(t *testing.T, w io.Writer, v interface{}) {
	t.Helper()
	require.NoError(t, binary.Write(w, binary.BigEndian, v))
}

func volumeHeader(t *testing.T) []byte {
	t.Helper()
	vh := archive2.VolumeHeaderRecord{ModifiedDate: 18872, ModifiedTime: 268000}
	copy(vh.TapeFilename[:], "AR2V0006.")
	copy(vh.ExtensionNumber[:], "001")
	copy(vh.ICAO[:], "KOKX")

	buf := &bytes.Buffer{}
	write(t, buf, vh)
	return buf.Bytes()
}

// ldmRecord frames n opaque messages of an unregistered type as one
// compressed record.
func ldmRecord(t *testing.T, n int) []byte {
	t.Helper()
	body := []byte("opaque")

	raw := &bytes.Buffer{}
	for i := 0; i < n; i++ {
		raw.Write(make([]byte, archive2.LegacyCTMHeaderLength))
		write(t, raw, archive2.MessageHeader{
			MessageSize:        uint16((archive2.MessageHeaderLength + len(body)) / 2),
			MessageType:        99,
			IDSequenceNumber:   uint16(i),
			JulianDate:         18872,
			MillisOfDay:        268000,
			NumMessageSegments: 1,
			MessageSegmentNum:  1,
		})
		raw.Write(body)
	}

	compressed := &bytes.Buffer{}
	bz, err := bzip2.NewWriter(compressed, &bzip2.WriterConfig{Level: bzip2.BestSpeed})
	require.NoError(t, err)
	_, err = bz.Write(raw.Bytes())
	require.NoError(t, err)
	require.NoError(t, bz.Close())

	out := &bytes.Buffer{}
	write(t, out, int32(-compressed.Len()))
	out.Write(compressed.Bytes())
	return out.Bytes()
}

func level3Product(t *testing.T) []byte {
	t.Helper()
	body := []byte("free text message")
	buf := bytes.NewBufferString("SDUS53 KLSX 110215\r\r\nNXXLSX\r\r\n")
	write(t, buf, level3.MessageHeader{
		Code:           1,
		Date:           18972,
		Time:           8280,
		Length:         uint32(level3.MessageHeaderLength + len(body)),
		SourceID:       1,
		NumberOfBlocks: 1,
	})
	buf.Write(body)
	return buf.Bytes()
}
