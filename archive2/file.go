package archive2

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"time"

	"github.com/dsnet/compress/bzip2"
	"github.com/fatih/color"
	"github.com/sirupsen/logrus"

	"github.com/jddeal/go-wxdata/stream"
	"github.com/jddeal/go-wxdata/wsr88d"
)

// ElevationScan holds the radials of one elevation cut keyed by azimuth index
// (azimuth number - 1).
type ElevationScan map[uint16]*DigitalRadarData

// Radials returns the scan's radials ordered by azimuth index.
func (s ElevationScan) Radials() []*DigitalRadarData {
	keys := make([]int, 0, len(s))
	for k := range s {
		keys = append(keys, int(k))
	}
	sort.Ints(keys)

	radials := make([]*DigitalRadarData, len(keys))
	for i, k := range keys {
		radials[i] = s[uint16(k)]
	}
	return radials
}

// File is a decoded Archive II volume.
//
// The gist of the file format is documented in RDA/RPG 7.3.6 but in short:
//   - 24 byte Volume Header
//   - 1 LDM Compressed Record - this is the metadata record
//   - N LDM Compressed Records - these are the data records
type File struct {
	VolumeHeader VolumeHeaderRecord

	log      logrus.Ext1FieldLogger
	messages []Message
	counts   map[uint8]int

	// the metadata record will contain a single Message Type 2 which comes in handy
	// in other parts of the decoding for version-specific handling.
	status    *RDAStatusData
	vcp       *VolumeCoveragePattern
	radarData map[uint16]ElevationScan // keyed by elevation index
	index     map[MomentType]map[uint16]ElevationScan
}

// NewFile returns an empty File that logs to log, or to the logrus standard
// logger when log is nil.
func NewFile(log logrus.Ext1FieldLogger) *File {
	if log == nil {
		log = logrus.StandardLogger().WithField("component", "archive2")
	}
	return &File{
		log:       log,
		counts:    make(map[uint8]int),
		radarData: make(map[uint16]ElevationScan),
		index:     make(map[MomentType]map[uint16]ElevationScan),
	}
}

// LoadFile opens and decodes filename.
func (f *File) LoadFile(filename string) error {
	f.log.Debugf("LoadFile: %s", filename)

	file, err := os.Open(filename)
	if err != nil {
		return err
	}
	defer file.Close()
	return f.LoadData(file)
}

// LoadData decodes an Archive II stream. Messages decoded before a framing
// problem are kept; only an unreadable volume header is an error.
func (f *File) LoadData(r io.Reader) error {
	if err := binary.Read(r, binary.BigEndian, &f.VolumeHeader); err != nil {
		return fmt.Errorf("archive2: could not read volume header: %w", err)
	}
	f.log.Debugf("%s %s %v", f.VolumeHeader.Filename(), f.VolumeHeader.Station(), f.VolumeHeader.Date())

	records, err := f.decompressLDMRecords(r)
	if err != nil {
		return err
	}
	f.log.Debugf("Decompressed %s LDM records, %s messages",
		color.CyanString("%d", records), color.CyanString("%d", len(f.messages)))

	f.indexFile()
	return nil
}

// LoadRecords decodes further LDM records into a file whose volume header was
// already read by LoadData. Volumes still being transmitted arrive this way,
// one record per chunk.
func (f *File) LoadRecords(r io.Reader) error {
	before := len(f.messages)
	records, err := f.decompressLDMRecords(r)
	if err != nil {
		return err
	}
	f.log.Debugf("Decompressed %s LDM records, %s new messages",
		color.CyanString("%d", records), color.CyanString("%d", len(f.messages)-before))

	f.indexFile()
	return nil
}

// decompressLDMRecords reads control word prefixed bzip2 records (RDA/RPG
// 7.3.4) until the stream ends. A zero control word means the rest of the
// file is not compressed.
func (f *File) decompressLDMRecords(r io.Reader) (int, error) {
	records := 0
	record := stream.NewBuffer(0)

	for {
		var controlWord int32
		if err := binary.Read(r, binary.BigEndian, &controlWord); err != nil {
			if err == io.EOF || err == io.ErrUnexpectedEOF {
				return records, nil
			}
			return records, err
		}

		// the size can be negative, but you just interpret it as positive (RDA/RPG 7.3.4)
		size := int64(controlWord)
		if size < 0 {
			size = -size
		}
		f.log.Tracef("LDM Compressed Record (%s bytes)", color.CyanString("%d", size))

		if size == 0 {
			f.log.Debug("Uncompressed volume")
			zero := make([]byte, 4)
			f.parseLDMRecord(bufio.NewReader(io.MultiReader(bytes.NewReader(zero), r)))
			return records, nil
		}

		limited := stream.NewBoundedReader(r, size)
		record.Reset()
		bz, err := bzip2.NewReader(limited, nil)
		if err == nil {
			_, err = record.ReadFrom(bz)
		}
		if err != nil {
			f.log.Warnf("Error decompressing record %d: %v", records, err)
			if _, derr := limited.Discard(); derr != nil {
				return records, nil
			}
			records++
			continue
		}
		// trailing bytes after the end of the bzip2 stream belong to this record
		if _, err := limited.Discard(); err != nil {
			f.log.Warnf("Record %d truncated", records)
		}

		if err := record.UpdateReadPointers(record.Len()); err != nil {
			return records, err
		}
		f.parseLDMRecord(bufio.NewReaderSize(record, 4096))
		records++
	}
}

// parseLDMRecord decodes the messages of one decompressed record.
func (f *File) parseLDMRecord(r *bufio.Reader) {
	ctx := NewContext(f.log)

	// the communications manager inserts an extra 12 bytes at the beginning
	// of each record
	if _, err := r.Discard(LegacyCTMHeaderLength); err != nil {
		return
	}

	for {
		// fixed length messages are padded with zeros, as are the legacy CTM
		// headers in front of each of them
		offset, err := skipPadding(r)
		if err != nil {
			return
		}
		if offset != 0 {
			f.log.Tracef("Next record offset by %d bytes", offset)
		}

		msg, err := ctx.CreateMessage(r)
		switch {
		case errors.Is(err, ErrInvalidMessage):
			f.log.Debug(err)
			continue
		case err != nil:
			// invalid header or end of data
			if err != io.EOF {
				f.log.Debug(err)
			}
			return
		case msg == nil:
			// segment buffered
			continue
		}

		f.messages = append(f.messages, msg)
		f.counts[msg.MessageHeader().MessageType]++
		f.handleMessage(msg)
	}
}

func skipPadding(r *bufio.Reader) (int, error) {
	offset := 0
	for {
		b, err := r.Peek(2)
		if err != nil {
			return offset, err
		}
		if b[0] != 0 || b[1] != 0 {
			return offset, nil
		}
		_, _ = r.Discard(2)
		offset += 2
	}
}

func (f *File) handleMessage(msg Message) {
	switch m := msg.(type) {
	case *RDAStatusData:
		// we'll keep the first one - it should be the metadata record's
		if f.status == nil {
			f.status = m
			if m.BuildNumber() < 18 {
				f.log.Warnf("This file is build %.2f. Only build 19.00 and later are well supported.", m.BuildNumber())
			}
		}
	case *VolumeCoveragePattern:
		f.vcp = m
	case *DigitalRadarData:
		elevationIndex := uint16(m.Header.ElevationNumber) - 1
		azimuthIndex := m.Header.AzimuthNumber - 1

		scan, ok := f.radarData[elevationIndex]
		if !ok {
			scan = make(ElevationScan)
			f.radarData[elevationIndex] = scan
		}
		scan[azimuthIndex] = m

		// instead of having every message dump data out, we'll just look at the 0-1 degree data
		if m.Header.AzimuthAngle < 1 {
			f.log.Trace(m.Header)
		}
	}
}

// indexFile builds the moment -> coded elevation angle -> scan index used by
// ElevationScan.
func (f *File) indexFile() {
	f.log.Debug("Indexing file")

	for elevationIndex, scan := range f.radarData {
		radial0, ok := scan[0]
		if !ok {
			f.log.Warnf("Empty radial data for elevation %d", elevationIndex+1)
			continue
		}

		var elevationAngle uint16
		waveform := WaveformUnknown
		if cut := f.vcpCut(int(elevationIndex)); cut != nil {
			elevationAngle = cut.ElevationAngle
			waveform = cut.Waveform
		} else {
			elevationAngle = radial0.ElevationAngleRaw()
		}

		for _, moment := range MomentTypes {
			// reflectivity data is contained within both surveillance and
			// doppler modes. Surveillance mode produces a better image.
			if moment == MomentREF && waveform == WaveformContiguousDoppler {
				continue
			}
			if radial0.Moment(moment) == nil {
				continue
			}

			if f.index[moment] == nil {
				f.index[moment] = make(map[uint16]ElevationScan)
			}
			f.index[moment][elevationAngle] = scan
		}
	}
}

func (f *File) vcpCut(e int) *ElevationCut {
	if f.vcp == nil {
		return nil
	}
	return f.vcp.Cut(e)
}

// MessageCount is the number of decoded messages.
func (f *File) MessageCount() int { return len(f.messages) }

// Message returns message i in stream order.
func (f *File) Message(i int) (Message, bool) {
	if i < 0 || i >= len(f.messages) {
		return nil, false
	}
	return f.messages[i], true
}

// Messages returns every decoded message in stream order.
func (f *File) Messages() []Message { return f.messages }

// MessageCounts returns the number of messages decoded per message type.
func (f *File) MessageCounts() map[uint8]int {
	counts := make(map[uint8]int, len(f.counts))
	for k, v := range f.counts {
		counts[k] = v
	}
	return counts
}

// Status is the first RDA status message, from the metadata record.
func (f *File) Status() *RDAStatusData { return f.status }

// VolumeCoveragePattern is the last VCP message seen, nil if there was none.
func (f *File) VolumeCoveragePattern() *VolumeCoveragePattern { return f.vcp }

// RadarData returns the radials keyed by elevation index.
func (f *File) RadarData() map[uint16]ElevationScan { return f.radarData }

// StartTime of the volume from the volume header.
func (f *File) StartTime() time.Time { return f.VolumeHeader.Date() }

// EndTime is the collection time of the last radial of the highest elevation.
func (f *File) EndTime() time.Time {
	var last *DigitalRadarData
	highest := -1
	for e, scan := range f.radarData {
		if int(e) <= highest {
			continue
		}
		radials := scan.Radials()
		if len(radials) == 0 {
			continue
		}
		highest = int(e)
		last = radials[len(radials)-1]
	}
	if last == nil {
		return time.Time{}
	}
	return wsr88d.TimePoint(uint32(last.Header.CollectionDate), last.Header.CollectionTime)
}

// ElevationScan finds the cut of moment closest to elevation degrees. It
// returns the scan, the angle of the chosen cut and every cut angle available
// for the moment in ascending order. The scan is nil when the moment is not
// present.
func (f *File) ElevationScan(moment MomentType, elevation float32) (ElevationScan, float32, []float32) {
	f.log.Debugf("ElevationScan: %s %.2f degrees", moment, elevation)

	scans, ok := f.index[moment]
	if !ok || len(scans) == 0 {
		return nil, 0, nil
	}

	const scaleFactor = 1 / AngleDataScale
	coded := int32(math.Round(float64(elevation) * scaleFactor))

	angles := make([]int, 0, len(scans))
	for a := range scans {
		angles = append(angles, int(a))
	}
	sort.Ints(angles)

	lower, upper := int32(angles[0]), int32(angles[len(angles)-1])
	cuts := make([]float32, len(angles))
	for i, a := range angles {
		a := int32(a)
		if a > lower && a <= coded {
			lower = a
		}
		if a < upper && a >= coded {
			upper = a
		}
		cuts[i] = float32(float64(a) / scaleFactor)
	}

	chosen := upper
	if abs32(coded-lower) < abs32(coded-upper) {
		chosen = lower
	}
	return scans[uint16(chosen)], float32(float64(chosen) / scaleFactor), cuts
}

func abs32(v int32) int32 {
	if v < 0 {
		return -v
	}
	return v
}
