package level3

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/dsnet/compress/bzip2"
	"github.com/klauspost/compress/zlib"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
)

func quietLogger() logrus.Ext1FieldLogger {
	log, _ := test.NewNullLogger()
	return log
}

// build encodes each part big endian. Strings are written as raw bytes.
func build(t *testing.T, parts ...interface{}) []byte {
	t.Helper()
	buf := &bytes.Buffer{}
	for _, p := range parts {
		if s, ok := p.(string); ok {
			buf.WriteString(s)
			continue
		}
		require.NoError(t, binary.Write(buf, binary.BigEndian, p))
	}
	return buf.Bytes()
}

func u16(v ...uint16) []uint16 { return v }

func header(code int16, length int) MessageHeader {
	return MessageHeader{
		Code:           code,
		Date:           18972, // 11 December 2021
		Time:           8280,
		Length:         uint32(length),
		SourceID:       1,
		NumberOfBlocks: 3,
	}
}

func description(code int16) DescriptionBlock {
	return DescriptionBlock{
		Divider:               -1,
		Latitude:              38699,
		Longitude:             -90683,
		Height:                608,
		ProductCode:           code,
		OperationalMode:       2,
		VolumeCoveragePattern: 212,
		SequenceNumber:        1,
		VolumeScanNumber:      5,
		VolumeScanDate:        18972,
		VolumeScanStartTime:   8040,
		GenerationDate:        18972,
		GenerationTime:        8280,
	}
}

// message frames body with a message header.
func message(t *testing.T, code int16, body ...[]byte) []byte {
	t.Helper()
	joined := bytes.Join(body, nil)
	return build(t, header(code, MessageHeaderLength+len(joined)), joined)
}

// product frames a description block followed by blocks.
func product(t *testing.T, d DescriptionBlock, blocks ...[]byte) []byte {
	t.Helper()
	return message(t, d.ProductCode, append([][]byte{build(t, d)}, blocks...)...)
}

// halfwords converts a byte position in the message to a block offset.
func halfwords(pos int) uint32 { return uint32(pos / 2) }

// radialPacket is a two radial 0xAF1F packet.
func radialPacket(t *testing.T) []byte {
	return build(t, u16(0xAF1F, 0, 10, 0, 0, 999, 2),
		u16(2, 0, 10), []byte{0x53, 0x21, 0x22, 0x00},
		u16(1, 10, 10), []byte{0xA7, 0x00})
}

func textPacket(t *testing.T, text string) []byte {
	return build(t, u16(8, uint16(6+len(text)), 3, 10, 20), text)
}

func stormIDPacket(t *testing.T, ids ...string) []byte {
	body := &bytes.Buffer{}
	for i, id := range ids {
		body.Write(build(t, u16(uint16(10*i), uint16(20*i)), id))
	}
	return build(t, u16(15, uint16(body.Len())), body.Bytes())
}

func symbologyBlock(t *testing.T, packets ...[]byte) []byte {
	t.Helper()
	layer := bytes.Join(packets, nil)
	body := build(t, uint16(1), int16(-1), uint32(len(layer)), layer)
	return build(t, int16(-1), uint16(1), uint32(blockHeaderLength+len(body)), body)
}

func graphicBlock(t *testing.T, packets ...[]byte) []byte {
	t.Helper()
	page := bytes.Join(packets, nil)
	body := build(t, uint16(1), uint16(1), uint16(len(page)), page)
	return build(t, int16(-1), uint16(2), uint32(blockHeaderLength+len(body)), body)
}

// tabularPages encodes the pages of a tabular block from its second divider.
func tabularPages(t *testing.T, pages ...[]string) []byte {
	t.Helper()
	buf := &bytes.Buffer{}
	buf.Write(build(t, int16(-1), uint16(len(pages))))
	for _, page := range pages {
		for _, line := range page {
			buf.Write(build(t, uint16(len(line)), line))
		}
		buf.Write(build(t, uint16(endOfPage)))
	}
	return buf.Bytes()
}

func tabularBlock(t *testing.T, code int16, pages ...[]string) []byte {
	t.Helper()
	text := tabularPages(t, pages...)
	body := build(t, header(code, offsetBase+len(text)), description(code), text)
	return build(t, int16(-1), uint16(3), uint32(blockHeaderLength+len(body)), body)
}

func bzip2Bytes(t *testing.T, data []byte) []byte {
	t.Helper()
	buf := &bytes.Buffer{}
	w, err := bzip2.NewWriter(buf, &bzip2.WriterConfig{Level: bzip2.BestCompression})
	require.NoError(t, err)
	_, err = w.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func zlibBytes(t *testing.T, data []byte) []byte {
	t.Helper()
	buf := &bytes.Buffer{}
	w := zlib.NewWriter(buf)
	_, err := w.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

// graphicProduct is a base reflectivity style product with all three blocks.
func graphicProduct(t *testing.T, code int16) []byte {
	t.Helper()
	sym := symbologyBlock(t, radialPacket(t))
	gra := graphicBlock(t, textPacket(t, "OK"))
	tab := tabularBlock(t, code, []string{"  STORM ID  A0", "  AZ/RAN  236/ 18"}, []string{"PAGE 2"})

	d := description(code)
	d.OffsetToSymbology = halfwords(offsetBase)
	d.OffsetToGraphic = halfwords(offsetBase + len(sym))
	d.OffsetToTabular = halfwords(offsetBase + len(sym) + len(gra))
	return product(t, d, sym, gra, tab)
}

const wmoHeading = "SDUS53 KLSX 110215\r\r\nN0QLSX\r\r\n"

// fixturePath locates a sample file in testdata or $WXDATA_TEST_DATA, skipping
// the test when it is not available.
func fixturePath(t *testing.T, name string) string {
	t.Helper()
	dirs := []string{"testdata", filepath.Join("..", "testdata")}
	if dir := os.Getenv("WXDATA_TEST_DATA"); dir != "" {
		dirs = append([]string{dir, filepath.Join(dir, "nexrad", "level3")}, dirs...)
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
