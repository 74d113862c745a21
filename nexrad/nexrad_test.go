package nexrad

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jddeal/go-wxdata/archive2"
	"github.com/jddeal/go-wxdata/level3"
)

func quietLogger() logrus.Ext1FieldLogger {
	log, _ := test.NewNullLogger()
	return log
}

func level2Volume(t *testing.T) []byte {
	t.Helper()
	vh := archive2.VolumeHeaderRecord{ModifiedDate: 18774, ModifiedTime: 64620000}
	copy(vh.TapeFilename[:], "AR2V0006.")
	copy(vh.ExtensionNumber[:], "001")
	copy(vh.ICAO[:], "KLSX")

	buf := &bytes.Buffer{}
	require.NoError(t, binary.Write(buf, binary.BigEndian, vh))
	return buf.Bytes()
}

func level3Product(t *testing.T) []byte {
	t.Helper()
	body := []byte("free text message")
	h := level3.MessageHeader{
		Code:           1,
		Date:           18972,
		Time:           8280,
		Length:         uint32(level3.MessageHeaderLength + len(body)),
		SourceID:       1,
		NumberOfBlocks: 1,
	}

	buf := bytes.NewBufferString("SDUS53 KLSX 110215\r\r\nNXXLSX\r\r\n")
	require.NoError(t, binary.Write(buf, binary.BigEndian, h))
	buf.Write(body)
	return buf.Bytes()
}

func gzipped(t *testing.T, data []byte) []byte {
	t.Helper()
	buf := &bytes.Buffer{}
	w := gzip.NewWriter(buf)
	_, err := w.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func TestDetect(t *testing.T) {
	tests := []struct {
		name  string
		data  string
		wants Format
	}{
		{"Level2", "AR2V0006.001", FormatLevel2},
		{"Level3", "SDUS53 KLSX", FormatLevel3},
		{"Short", "AR", FormatLevel3},
		{"Empty", "", FormatUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			br := bufio.NewReader(strings.NewReader(tt.data))
			assert.Equal(t, tt.wants, Detect(br))

			// nothing consumed
			rest, _ := br.Peek(len(tt.data))
			assert.Equal(t, tt.data, string(rest))
		})
	}
	assert.Equal(t, "Level II", FormatLevel2.String())
	assert.Equal(t, "Unknown", FormatUnknown.String())
}

func TestLoadData(t *testing.T) {
	l2, l3 := level2Volume(t), level3Product(t)

	tests := []struct {
		name   string
		data   []byte
		format Format
	}{
		{"Level2", l2, FormatLevel2},
		{"Level2Gzip", gzipped(t, l2), FormatLevel2},
		{"Level3", l3, FormatLevel3},
		{"Level3Gzip", gzipped(t, l3), FormatLevel3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := LoadData(bytes.NewReader(tt.data), quietLogger())
			require.NoError(t, err)
			assert.Equal(t, tt.format, f.Format)

			switch tt.format {
			case FormatLevel2:
				require.NotNil(t, f.Level2)
				assert.Nil(t, f.Level3)
				assert.Equal(t, "KLSX", f.Level2.VolumeHeader.Station())
				assert.Equal(t, 0, f.MessageCount())
			case FormatLevel3:
				require.NotNil(t, f.Level3)
				assert.Nil(t, f.Level2)
				assert.Equal(t, 1, f.MessageCount())
				assert.Equal(t, "NXXLSX", f.Level3.WmoHeader().AwipsID())
			}
		})
	}
}

func TestLoadData_Errors(t *testing.T) {
	_, err := LoadData(bytes.NewReader([]byte{0x1f, 0x8b, 0x00}), quietLogger())
	assert.Error(t, err)

	_, err = LoadData(bytes.NewReader(nil), quietLogger())
	assert.Error(t, err)

	_, err = LoadData(bytes.NewReader([]byte("AR2V0006")), nil)
	assert.Error(t, err)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing"), quietLogger())
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "KLSX_SDUS53_NXXLSX.gz")
	require.NoError(t, os.WriteFile(path, gzipped(t, level3Product(t)), 0o600))

	f, err := LoadFile(path, quietLogger())
	require.NoError(t, err)
	assert.Equal(t, FormatLevel3, f.Format)
	assert.Equal(t, 1, f.MessageCount())
}
