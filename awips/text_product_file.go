package awips

import (
	"errors"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"

	"github.com/jddeal/go-wxdata/stream"
)

// ErrNoMessages is returned when a text product file holds no bulletin.
var ErrNoMessages = errors.New("awips: no text product messages")

// TextProductFile is a collection of bulletins, typically an hour of
// warnings concatenated by an LDM feed.
type TextProductFile struct {
	log      logrus.Ext1FieldLogger
	messages []*TextProductMessage
}

// NewTextProductFile returns an empty file. A nil logger uses the logrus
// standard logger.
func NewTextProductFile(log logrus.Ext1FieldLogger) *TextProductFile {
	if log == nil {
		log = logrus.StandardLogger().WithField("component", "awips")
	}
	return &TextProductFile{log: log}
}

// LoadFile parses the bulletins in the named file.
func (f *TextProductFile) LoadFile(filename string) error {
	f.log.Debugf("LoadFile(%s)", filename)
	file, err := os.Open(filename)
	if err != nil {
		return err
	}
	defer file.Close()
	return f.LoadData(file)
}

// LoadData parses bulletins from r until it is exhausted or a WMO header
// fails to decode. A bulletin whose WMO header equals one already loaded is a
// retransmission and is dropped.
func (f *TextProductFile) LoadData(r io.Reader) error {
	l := stream.NewLineReader(r)
	for !l.EOF() {
		m, err := ParseTextProductMessage(l, f.log)
		if err != nil {
			if !errors.Is(err, ErrInvalidWmoHeader) {
				return err
			}
			// trailing blank lines after the last bulletin are not an error
			if !l.EOF() {
				f.log.Warn(err)
			}
			break
		}
		if f.contains(m.Header) {
			f.log.Debugf("Dropping duplicate bulletin %s", m.Header)
			continue
		}
		f.messages = append(f.messages, m)
	}
	if err := l.Err(); err != nil {
		return err
	}

	f.log.Debugf("Loaded %s bulletins", color.CyanString("%d", len(f.messages)))
	if len(f.messages) == 0 {
		return ErrNoMessages
	}
	return nil
}

func (f *TextProductFile) contains(h WmoHeader) bool {
	for _, m := range f.messages {
		if m.Header == h {
			return true
		}
	}
	return false
}

// MessageCount is the number of distinct bulletins loaded.
func (f *TextProductFile) MessageCount() int {
	return len(f.messages)
}

// Message returns the i-th bulletin in file order.
func (f *TextProductFile) Message(i int) *TextProductMessage {
	if i < 0 || i >= len(f.messages) {
		return nil
	}
	return f.messages[i]
}

// Messages returns every bulletin in file order.
func (f *TextProductFile) Messages() []*TextProductMessage {
	return f.messages
}
