// Package nexrad loads a radar file without knowing its format up front.
//
// Level II volumes start with an "AR2V" volume header. Anything else is
// treated as a Level III product. Either may arrive gzip compressed, as they
// do from most archive mirrors.
package nexrad

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/gzip"
	"github.com/sirupsen/logrus"

	"github.com/jddeal/go-wxdata/archive2"
	"github.com/jddeal/go-wxdata/level3"
)

// Format identifies the kind of a radar file.
type Format int

const (
	FormatUnknown Format = iota
	FormatLevel2
	FormatLevel3
)

func (f Format) String() string {
	switch f {
	case FormatLevel2:
		return "Level II"
	case FormatLevel3:
		return "Level III"
	}
	return "Unknown"
}

var (
	gzipMagic   = []byte{0x1f, 0x8b}
	level2Magic = []byte("AR2V")
)

// File is the result of LoadFile or LoadData. Exactly one of Level2 and
// Level3 is set.
type File struct {
	Format Format
	Level2 *archive2.File
	Level3 *level3.File
}

// MessageCount is the number of messages in whichever file was decoded.
func (f *File) MessageCount() int {
	switch {
	case f.Level2 != nil:
		return f.Level2.MessageCount()
	case f.Level3 != nil:
		return f.Level3.MessageCount()
	}
	return 0
}

// LoadFile opens filename and decodes it with LoadData.
func LoadFile(filename string, log logrus.Ext1FieldLogger) (*File, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return LoadData(file, log)
}

// LoadData detects the format of r and decodes it.
func LoadData(r io.Reader, log logrus.Ext1FieldLogger) (*File, error) {
	if log == nil {
		log = logrus.StandardLogger().WithField("component", "nexrad")
	}

	br := bufio.NewReader(r)
	if magic, err := br.Peek(len(gzipMagic)); err == nil && bytes.Equal(magic, gzipMagic) {
		log.Debug("Unwrapping gzip")
		zr, err := gzip.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("nexrad: gzip: %w", err)
		}
		defer zr.Close()
		br = bufio.NewReader(zr)
	}

	switch Detect(br) {
	case FormatLevel2:
		f := archive2.NewFile(log)
		if err := f.LoadData(br); err != nil {
			return nil, err
		}
		return &File{Format: FormatLevel2, Level2: f}, nil
	default:
		f := level3.NewFile(log)
		if err := f.LoadData(br); err != nil {
			return nil, err
		}
		return &File{Format: FormatLevel3, Level3: f}, nil
	}
}

// Detect peeks at the start of br without consuming anything. It returns
// FormatUnknown when br is empty.
func Detect(br *bufio.Reader) Format {
	magic, err := br.Peek(len(level2Magic))
	if err != nil && len(magic) == 0 {
		return FormatUnknown
	}
	if bytes.Equal(magic, level2Magic) {
		return FormatLevel2
	}
	return FormatLevel3
}
