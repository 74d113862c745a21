package awips

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jddeal/go-wxdata/stream"
)

func quietLogger() logrus.Ext1FieldLogger {
	log, _ := test.NewNullLogger()
	return log
}

// bulletin joins lines with the CR CR LF terminator used on the NWS feeds.
func bulletin(lines ...string) string {
	return strings.Join(lines, "\r\r\n") + "\r\r\n"
}

var tornadoWarning = bulletin(
	"\x01",
	"123 ",
	"WFUS53 KLSX 042100",
	"TORLSX",
	"MOC189-042145-",
	"/O.NEW.KLSX.TO.W.0032.210604T2100Z-210604T2145Z/",
	"",
	"BULLETIN - EAS ACTIVATION REQUESTED",
	"Tornado Warning",
	"National Weather Service Saint Louis MO",
	"400 PM CDT Fri Jun 4 2021",
	"",
	"The National Weather Service in St Louis has issued a",
	"",
	"* Tornado Warning for...",
	"  Central St. Louis County in east central Missouri...",
	"",
	"LAT...LON 3850 9020 3870 9000 3830 8990",
	"      3820 9015",
	"TIME...MOT...LOC 2100Z 240DEG 35KT 3848 9018",
	"",
	"TORNADO...RADAR INDICATED",
	"TORNADO DAMAGE THREAT...CONSIDERABLE",
	"HAIL...1.00IN",
	"",
	"$$",
	"",
	"JD",
	"\x03",
)

var severeWeatherStatement = bulletin(
	"\x01",
	"124 ",
	"WWUS53 KLSX 042110",
	"SVSLSX",
	"",
	"Severe Weather Statement",
	"National Weather Service Saint Louis MO",
	"410 PM CDT Fri Jun 4 2021",
	"",
	"MOC189-510-042145-",
	"/O.CON.KLSX.TO.W.0032.000000T0000Z-210604T2145Z/",
	"St. Louis MO-St. Louis City MO-",
	"410 PM CDT Fri Jun 4 2021",
	"",
	"...A TORNADO WARNING REMAINS IN EFFECT UNTIL 445 PM CDT...",
	"",
	"TORNADO...OBSERVED",
	"",
	"$$",
	"",
	"ILC163-042145-",
	"/O.EXP.KLSX.SV.W.0040.000000T0000Z-210604T2115Z/",
	"St. Clair IL-",
	"410 PM CDT Fri Jun 4 2021",
	"",
	"The warning has expired.",
	"",
	"$$",
	"\x03",
)

func parseBulletin(t *testing.T, text string) *TextProductMessage {
	t.Helper()
	m, err := ParseTextProductMessage(stream.NewLineReader(strings.NewReader(text)), quietLogger())
	require.NoError(t, err)
	return m
}

func TestParseTextProductMessage_SegmentFirst(t *testing.T) {
	m := parseBulletin(t, tornadoWarning)

	assert.Equal(t, "123", m.Header.SequenceNumber)
	assert.Equal(t, "KLSX", m.Header.ICAO)
	assert.Equal(t, "TORLSX", m.Header.AwipsID())
	assert.Equal(t, []string{
		"BULLETIN - EAS ACTIVATION REQUESTED",
		"Tornado Warning",
		"National Weather Service Saint Louis MO",
		"400 PM CDT Fri Jun 4 2021",
	}, m.MndHeader)
	assert.Empty(t, m.OverviewBlock)

	require.Len(t, m.Segments, 1)
	s := m.Segments[0]
	require.NotNil(t, s.Header)
	require.NotNil(t, s.Header.Ugc)
	assert.Equal(t, []string{"MOC189"}, s.Header.Ugc.FipsIDs())
	require.Len(t, s.Header.Vtec, 1)
	assert.Equal(t, New, s.Header.Vtec[0].PVtec.Action)
	assert.Equal(t, "KLSX.TO.W.0032", s.Header.Vtec[0].PVtec.Key())
	assert.Equal(t, 21, s.EventBegin().Hour())
	assert.Equal(t, 45, s.EventEnd().Minute())

	assert.Equal(t, "The National Weather Service in St Louis has issued a", s.ProductContent[0])
	assert.Equal(t, "HAIL...1.00IN", s.ProductContent[len(s.ProductContent)-1])

	require.NotNil(t, s.CodedLocation)
	assert.Len(t, s.CodedLocation.Coordinates, 4)
	require.NotNil(t, s.CodedMotion)
	assert.Equal(t, uint16(240), s.CodedMotion.Direction)
	assert.Equal(t, uint8(35), s.CodedMotion.Speed)

	assert.Equal(t, ThreatCategoryConsiderable, s.Impact.ThreatCategory)
	assert.Equal(t, "RADAR INDICATED", s.Impact.Tornado)
	assert.False(t, s.Impact.Observed)
}

func TestParseTextProductMessage_MultipleSegments(t *testing.T) {
	m := parseBulletin(t, severeWeatherStatement)

	assert.Equal(t, "SVSLSX", m.Header.AwipsID())
	assert.Len(t, m.MndHeader, 3)
	require.Len(t, m.Segments, 2)

	first := m.Segments[0]
	require.NotNil(t, first.Header)
	assert.Equal(t, []string{"MOC189", "MOC510"}, first.Header.Ugc.FipsIDs())
	assert.Equal(t, []string{"St. Louis MO-St. Louis City MO-"}, first.Header.UgcNames)
	assert.Equal(t, "410 PM CDT Fri Jun 4 2021", first.Header.IssuanceDateTime)
	assert.True(t, first.EventBegin().IsZero())
	assert.True(t, first.Impact.Observed)
	assert.Equal(t, ThreatCategoryBase, first.Impact.ThreatCategory)
	assert.Nil(t, first.CodedLocation)

	second := m.Segments[1]
	require.NotNil(t, second.Header)
	assert.Equal(t, Expired, second.Header.Vtec[0].PVtec.Action)
	assert.Equal(t, SevereThunderstorm, second.Header.Vtec[0].PVtec.Phenomenon)
	assert.Equal(t, []string{"The warning has expired."}, second.ProductContent)
}

func TestParseTextProductMessage_HVtecAndMultilineUgc(t *testing.T) {
	m := parseBulletin(t, bulletin(
		"\x01",
		"200 ",
		"WGUS43 KDVN 050300",
		"FLWDVN",
		"",
		"Flood Warning",
		"National Weather Service Quad Cities IA IL",
		"1000 PM CDT Fri Jun 4 2021",
		"",
		"IAC031-045-097-105-ILC015-085-161-195-",
		"050900-",
		"/O.NEW.KDVN.FL.W.0012.210605T0300Z-210607T1200Z/",
		"/CMOI2.2.ER.210605T0300Z.210605T1800Z.210606T1800Z.NO/",
		"1000 PM CDT Fri Jun 4 2021",
		"",
		"The river will crest tomorrow.",
		"\x03",
	))

	require.Len(t, m.Segments, 1)
	h := m.Segments[0].Header
	require.NotNil(t, h)
	assert.Len(t, h.UgcLines, 2)
	require.NotNil(t, h.Ugc)
	assert.Equal(t, []string{"IA", "IL"}, h.Ugc.States())
	assert.Len(t, h.Ugc.FipsIDs(), 8)
	assert.Equal(t, "050900", h.Ugc.ProductExpiration)
	require.Len(t, h.Vtec, 1)
	assert.Equal(t, "/CMOI2.2.ER.210605T0300Z.210605T1800Z.210606T1800Z.NO/", h.Vtec[0].HVtec)
	assert.Equal(t, FloodForecastPoints, h.Vtec[0].PVtec.Phenomenon)
}

func TestParseTextProductMessage_OverviewBlock(t *testing.T) {
	m := parseBulletin(t, bulletin(
		"\x01",
		"300 ",
		"WWUS83 KLSX 051200",
		"NPWLSX",
		"",
		"URGENT - WEATHER MESSAGE",
		"National Weather Service Saint Louis MO",
		"700 AM CDT Sat Jun 5 2021",
		"",
		"...HEAT ADVISORY IN EFFECT THIS AFTERNOON...",
		"",
		"MOZ063-052300-",
		"/O.NEW.KLSX.HT.Y.0003.210605T1700Z-210606T0000Z/",
		"St. Louis-",
		"700 AM CDT Sat Jun 5 2021",
		"",
		"Heat index values up to 105 expected.",
		"",
		"$$",
		"\x03",
	))

	assert.Equal(t, []string{"...HEAT ADVISORY IN EFFECT THIS AFTERNOON..."}, m.OverviewBlock)
	require.Len(t, m.Segments, 1)
	assert.Equal(t, Heat, m.Segments[0].Header.Vtec[0].PVtec.Phenomenon)
	assert.Equal(t, Advisory, m.Segments[0].Header.Vtec[0].PVtec.Significance)
}

func TestParseTextProductMessage_InvalidHeader(t *testing.T) {
	_, err := ParseTextProductMessage(stream.NewLineReader(strings.NewReader("not a bulletin\r\r\n")), quietLogger())
	assert.ErrorIs(t, err, ErrInvalidWmoHeader)
}

func TestParseWmoLines(t *testing.T) {
	h, err := ParseWmoLines("", "WFUS53 KLSX 042100 CCA", "TORLSX")
	require.NoError(t, err)
	assert.Equal(t, "WF", h.DataType)
	assert.Equal(t, "US", h.GeographicDesignator)
	assert.Equal(t, "53", h.BulletinID)
	assert.Equal(t, "CCA", h.BBBIndicator)
	assert.Equal(t, "TOR", h.ProductCategory)
	assert.Equal(t, "LSX", h.ProductDesignator)
	assert.Equal(t, "WFUS53 KLSX 042100 CCA TORLSX", h.String())

	h, err = ParseWmoLines("", "SDUS53 KLSX 281044", "N0RLSX")
	require.NoError(t, err)
	assert.Equal(t, "N0RLSX", h.AwipsID())

	for _, wmo := range []string{"WFUS53 KLSX", "WFUS5 KLSX 042100", "WFUS53 KLS 042100", "WFUS53 KLSX 04210", "WFUS53 KLSX 042100 CC"} {
		_, err := ParseWmoLines("", wmo, "TORLSX")
		assert.ErrorIs(t, err, ErrInvalidWmoHeader, wmo)
	}
	_, err = ParseWmoLines("", "WFUS53 KLSX 042100", "TO")
	assert.ErrorIs(t, err, ErrInvalidWmoHeader)
}

func TestTextProductFile_LoadData(t *testing.T) {
	// the second copy of the warning is a retransmission
	data := tornadoWarning + severeWeatherStatement + tornadoWarning + "\r\r\n"

	f := NewTextProductFile(quietLogger())
	require.NoError(t, f.LoadData(strings.NewReader(data)))
	require.Equal(t, 2, f.MessageCount())
	assert.Equal(t, "TORLSX", f.Message(0).Header.AwipsID())
	assert.Equal(t, "SVSLSX", f.Message(1).Header.AwipsID())
	assert.Nil(t, f.Message(2))
	assert.Len(t, f.Messages(), 2)

	// decoding is deterministic
	again := NewTextProductFile(quietLogger())
	require.NoError(t, again.LoadData(strings.NewReader(data)))
	assert.Equal(t, f.Messages(), again.Messages())
}

func TestTextProductFile_EndOfTextSharesLineWithStart(t *testing.T) {
	data := strings.TrimSuffix(tornadoWarning, "\x03\r\r\n") + "\x03" + strings.TrimPrefix(severeWeatherStatement, "\x01\r\r\n")
	data = strings.Replace(data, "\x03124 ", "\x03\x01\r\r\n124 ", 1)

	f := NewTextProductFile(quietLogger())
	require.NoError(t, f.LoadData(strings.NewReader(data)))
	assert.Equal(t, 2, f.MessageCount())
}

func TestTextProductFile_Empty(t *testing.T) {
	f := NewTextProductFile(quietLogger())
	assert.ErrorIs(t, f.LoadData(strings.NewReader("\r\r\n\r\r\n")), ErrNoMessages)
	assert.Error(t, f.LoadFile(filepath.Join(t.TempDir(), "missing.txt")))
}

func TestTextProductFile_Fixture(t *testing.T) {
	path := ""
	for _, dir := range []string{os.Getenv("WXDATA_TEST_DATA"), "testdata"} {
		if dir == "" {
			continue
		}
		p := filepath.Join(dir, "awips", "warnings", "warnings_20210604_21.txt")
		if _, err := os.Stat(p); err == nil {
			path = p
			break
		}
	}
	if path == "" {
		t.Skip("fixture warnings_20210604_21.txt not available")
	}

	f := NewTextProductFile(quietLogger())
	require.NoError(t, f.LoadFile(path))
	assert.Greater(t, f.MessageCount(), 0)
}
