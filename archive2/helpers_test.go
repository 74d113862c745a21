package archive2

import (
	"bytes"
	"encoding/binary"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/dsnet/compress/bzip2"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
)

func quietLogger() logrus.Ext1FieldLogger {
	log, _ := test.NewNullLogger()
	return log
}

func write(t *testing.T, w io.Writer, v interface{}) {
	t.Helper()
	require.NoError(t, binary.Write(w, binary.BigEndian, v))
}

// frame prefixes body with a message header for messageType. The body is
// padded to a whole number of halfwords.
func frame(t *testing.T, messageType uint8, body []byte) []byte {
	t.Helper()
	return frameSegment(t, messageType, body, 1, 1)
}

func frameSegment(t *testing.T, messageType uint8, body []byte, segment, segments uint16) []byte {
	t.Helper()
	if len(body)%2 != 0 {
		body = append(body, 0)
	}

	buf := &bytes.Buffer{}
	write(t, buf, MessageHeader{
		MessageSize:        uint16((MessageHeaderLength + len(body)) / 2),
		MessageType:        messageType,
		IDSequenceNumber:   1,
		JulianDate:         18775,
		MillisOfDay:        64637000,
		NumMessageSegments: segments,
		MessageSegmentNum:  segment,
	})
	buf.Write(body)
	return buf.Bytes()
}

func vcpBody(t *testing.T, angles ...uint16) []byte {
	t.Helper()
	cuts := make([]ElevationCut, len(angles))
	for i, a := range angles {
		cuts[i] = ElevationCut{
			ElevationAngle:         a,
			Waveform:               WaveformContiguousSurveillance,
			SuperResolutionControl: 0x0b,
			AzimuthRate:            8192,
			ReflectivityThreshold:  16,
			SupplementalData:       0x0011,
		}
	}
	if len(cuts) > 1 {
		cuts[1].Waveform = WaveformContiguousDoppler
	}

	header := VCPHeader{
		PatternType:               2,
		PatternNumber:             212,
		NumberOfElevationCuts:     uint16(len(cuts)),
		Version:                   1,
		DopplerVelocityResolution: 2,
		PulseWidth:                2,
		VCPSequencing:             uint16(len(cuts)) | 0x2000,
		VCPSupplementalData:       0x0803,
	}
	header.MessageSize = uint16((binary.Size(header) + binary.Size(cuts)) / 2)

	buf := &bytes.Buffer{}
	write(t, buf, header)
	write(t, buf, cuts)
	return buf.Bytes()
}

type radialShape struct {
	elevation uint8
	azimuth   uint16
	angle     float32
	moments   []MomentType
}

// radialBody encodes a message 31 body with VOL, ELV and RAD blocks followed by
// the requested moments. REF is 8 bit, everything else 16 bit.
func radialBody(t *testing.T, shape radialShape) []byte {
	t.Helper()

	blocks := 3 + len(shape.moments)
	headerLen := binary.Size(RadialHeader{}) + 4*blocks

	data := &bytes.Buffer{}
	var pointers []uint32
	mark := func() { pointers = append(pointers, uint32(headerLen+data.Len())) }

	mark()
	write(t, data, DataBlock{DataBlockType: [1]byte{'R'}, DataName: [3]byte{'V', 'O', 'L'}})
	write(t, data, VolumeData{LRTUP: 44, VersionMajor: 1, Lat: 38.7, Long: -90.7, SiteHeight: 185, VolumeCoveragePatternNumber: 212})

	mark()
	write(t, data, DataBlock{DataBlockType: [1]byte{'R'}, DataName: [3]byte{'E', 'L', 'V'}})
	write(t, data, ElevationData{LRTUP: 12, ATMOS: -12, CalibConst: -44.5})

	mark()
	write(t, data, DataBlock{DataBlockType: [1]byte{'R'}, DataName: [3]byte{'R', 'A', 'D'}})
	write(t, data, RadialData{LRTUP: 28, UnambiguousRange: 4660, NyquistVelocity: 2860})

	for _, m := range shape.moments {
		mark()
		var name [3]byte
		copy(name[:], m)
		write(t, data, DataBlock{DataBlockType: [1]byte{'D'}, DataName: name})

		g := GenericDataMoment{
			NumberDataMomentGates:         4,
			DataMomentRange:               2125,
			DataMomentRangeSampleInterval: 250,
			SNRThreshold:                  20,
			Scale:                         2,
			Offset:                        66,
		}
		if m == MomentREF {
			g.DataWordSize = 8
			write(t, data, g)
			data.Write([]byte{0, 1, 66, 86})
		} else {
			g.DataWordSize = 16
			write(t, data, g)
			write(t, data, []uint16{0, 1, 66, 300})
		}
	}

	buf := &bytes.Buffer{}
	var icao [4]byte
	copy(icao[:], "KLSX")
	write(t, buf, RadialHeader{
		RadarIdentifier:              icao,
		CollectionTime:               64637000,
		CollectionDate:               18775,
		AzimuthNumber:                shape.azimuth,
		AzimuthAngle:                 float32(shape.azimuth-1) * 0.5,
		RadialLength:                 uint16(headerLen + data.Len()),
		AzimuthResolutionSpacingCode: 1,
		ElevationNumber:              shape.elevation,
		ElevationAngle:               shape.angle,
		DataBlockCount:               uint16(blocks),
	})
	write(t, buf, pointers)
	buf.Write(data.Bytes())
	return buf.Bytes()
}

// ldmRecord compresses the CTM prefixed messages into a control word framed
// bzip2 record.
func ldmRecord(t *testing.T, messages ...[]byte) []byte {
	t.Helper()

	raw := &bytes.Buffer{}
	for _, m := range messages {
		raw.Write(make([]byte, LegacyCTMHeaderLength))
		raw.Write(m)
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

func volumeHeader(t *testing.T) []byte {
	t.Helper()
	buf := &bytes.Buffer{}
	vh := VolumeHeaderRecord{ModifiedDate: 18775, ModifiedTime: 64637000}
	copy(vh.TapeFilename[:], "AR2V0006.")
	copy(vh.ExtensionNumber[:], "001")
	copy(vh.ICAO[:], "KLSX")
	write(t, buf, vh)
	return buf.Bytes()
}

// fixturePath locates a sample file in testdata or $WXDATA_TEST_DATA, skipping
// the test when it is not available.
func fixturePath(t *testing.T, name string) string {
	t.Helper()
	dirs := []string{"testdata", filepath.Join("..", "testdata")}
	if dir := os.Getenv("WXDATA_TEST_DATA"); dir != "" {
		dirs = append([]string{dir, filepath.Join(dir, "nexrad", "level2")}, dirs...)
	}
	for _, dir := range dirs {
		p := filepath.Join(dir, name)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	t.Skipf("fixture %s not available", name)
	return ""
}
