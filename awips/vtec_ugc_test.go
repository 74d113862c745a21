package awips

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePVtec(t *testing.T) {
	tests := []struct {
		in         string
		action     Action
		office     string
		phenomenon Phenomenon
		number     int16
		begin      time.Time
		end        time.Time
		key        string
	}{
		{
			in:         "/O.EXT.KJAN.FF.W.0023.000000T0000Z-210606T1700Z/",
			action:     ExtendedInTime,
			office:     "KJAN",
			phenomenon: FlashFlood,
			number:     23,
			end:        time.Date(2021, 6, 6, 17, 0, 0, 0, time.UTC),
			key:        "KJAN.FF.W.0023",
		},
		{
			in:         "/O.NEW.KLIX.TO.W.0032.210606T1501Z-210606T1600Z/",
			action:     New,
			office:     "KLIX",
			phenomenon: Tornado,
			number:     32,
			begin:      time.Date(2021, 6, 6, 15, 1, 0, 0, time.UTC),
			end:        time.Date(2021, 6, 6, 16, 0, 0, 0, time.UTC),
			key:        "KLIX.TO.W.0032",
		},
		{
			in:         "/O.CON.KLIX.TO.W.0032.000000T0000Z-210606T1600Z/",
			action:     Continued,
			office:     "KLIX",
			phenomenon: Tornado,
			number:     32,
			end:        time.Date(2021, 6, 6, 16, 0, 0, 0, time.UTC),
			key:        "KLIX.TO.W.0032",
		},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			v, err := ParsePVtec(tt.in)
			require.NoError(t, err)
			assert.Equal(t, Operational, v.FixedIdentifier)
			assert.Equal(t, tt.action, v.Action)
			assert.Equal(t, tt.office, v.OfficeID)
			assert.Equal(t, tt.phenomenon, v.Phenomenon)
			assert.Equal(t, Warning, v.Significance)
			assert.Equal(t, tt.number, v.EventTrackingNumber)
			assert.True(t, tt.begin.Equal(v.EventBegin), "begin %v", v.EventBegin)
			assert.True(t, tt.end.Equal(v.EventEnd), "end %v", v.EventEnd)
			assert.Equal(t, tt.key, v.Key())
			assert.Equal(t, tt.in, v.String())
		})
	}
}

func TestParsePVtec_Invalid(t *testing.T) {
	for _, in := range []string{"", "/O.NEW.KLIX.TO.W.0032/", "O.NEW.KLIX.TO.W.0032.210606T1501Z-210606T1600Z//"} {
		_, err := ParsePVtec(in)
		assert.ErrorIs(t, err, ErrInvalidVtec, in)
	}
}

func TestPhenomenonAndSignificanceCodes(t *testing.T) {
	assert.Equal(t, Tornado, GetPhenomenon("TO"))
	assert.Equal(t, "TO", Tornado.Code())
	assert.Equal(t, "Tornado", Tornado.String())
	assert.Equal(t, FloodForecastPoints, GetPhenomenonFromText(FloodForecastPoints.String()))
	assert.Equal(t, PhenomenonUnknown, GetPhenomenon("QQ"))

	assert.Equal(t, Watch, GetSignificance("A"))
	assert.Equal(t, "Y", Advisory.Code())
	assert.Equal(t, SignificanceUnknown, GetSignificance("Q"))

	assert.Equal(t, "EXB", ExtendedInAreaAndTime.Code())
	assert.Equal(t, "X", OperationalWithExperimentalVtec.Code())
}

func TestParseUgc(t *testing.T) {
	t.Run("Range", func(t *testing.T) {
		u, err := ParseUgc([]string{"NDZ001>054-222115-"})
		require.NoError(t, err)
		assert.Equal(t, UgcFormatZones, u.Format)
		assert.Equal(t, "222115", u.ProductExpiration)
		ids := u.FipsIDs()
		require.Len(t, ids, 54)
		assert.Equal(t, "NDZ001", ids[0])
		assert.Equal(t, "NDZ054", ids[53])
	})

	t.Run("AllZones", func(t *testing.T) {
		u, err := ParseUgc([]string{"COZALL-220000-"})
		require.NoError(t, err)
		assert.Equal(t, []string{"COZ000"}, u.FipsIDs())

		u, err = ParseUgc([]string{"AKZALL-191846-"})
		require.NoError(t, err)
		assert.Equal(t, []string{"AKZ000"}, u.FipsIDs())
	})

	t.Run("AllCounties", func(t *testing.T) {
		u, err := ParseUgc([]string{"IAC000-060015-"})
		require.NoError(t, err)
		assert.Equal(t, UgcFormatCounties, u.Format)
		assert.Equal(t, []string{"IAC000"}, u.FipsIDs())
	})

	t.Run("MultipleStates", func(t *testing.T) {
		u, err := ParseUgc([]string{
			"DCZ001-MDZ003>007-009>011-013-014-016>018-501-502-VAZ021-025>031-",
			"036>040-042-050>057-501-502-WVZ050>055-501>504-182200-",
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"DC", "MD", "VA", "WV"}, u.States())

		ids := u.FipsIDs()
		require.Len(t, ids, 50)
		assert.Equal(t, "DCZ001", ids[0])
		assert.Equal(t, "MDZ502", ids[15])
		assert.Equal(t, "VAZ021", ids[16])
		assert.Equal(t, "VAZ025", ids[17])
		assert.Equal(t, "VAZ031", ids[23])
		assert.Equal(t, "VAZ502", ids[39])
		assert.Equal(t, "WVZ050", ids[40])
		assert.Equal(t, "WVZ055", ids[45])
		assert.Equal(t, "WVZ504", ids[49])
		assert.Equal(t, "182200", u.ProductExpiration)
	})

	t.Run("Marine", func(t *testing.T) {
		u, err := ParseUgc([]string{"LHZ349-363-202300-"})
		require.NoError(t, err)
		assert.Equal(t, []string{"LHZ349", "LHZ363"}, u.FipsIDs())
	})
}

func TestParseUgc_Invalid(t *testing.T) {
	tests := map[string][]string{
		"NoExpiration":  {"MOC189-"},
		"NoState":       {"189-042145-"},
		"MixedFormats":  {"MOC189-MOZ063-042145-"},
		"RangeOfAll":    {"MOZALL>003-042145-"},
		"RangeEndsZero": {"MOC001>000-042145-"},
		"Empty":         nil,
	}
	for name, lines := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ParseUgc(lines)
			assert.ErrorIs(t, err, ErrInvalidUgc)
		})
	}
}
