package level3

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/dsnet/compress/bzip2"
	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"golang.org/x/text/encoding/charmap"

	"github.com/jddeal/go-wxdata/level3/packet"
	"github.com/jddeal/go-wxdata/stream"
)

// Product is implemented by the messages that carry a product description
// block.
type Product interface {
	Message
	DescriptionBlock() *DescriptionBlock
}

// ProductBase is the description block shared by every product message.
type ProductBase struct {
	Base
	Description DescriptionBlock
}

// DescriptionBlock implements Product.
func (p *ProductBase) DescriptionBlock() *DescriptionBlock { return &p.Description }

func (p *ProductBase) readDescription(r io.Reader) error {
	if err := binary.Read(r, binary.BigEndian, &p.Description); err != nil {
		return err
	}
	return p.Description.Validate()
}

// readProductData buffers the rest of the message after the description
// block, decompressing it first when the description block says so.
func (p *ProductBase) readProductData(r io.Reader, log logrus.Ext1FieldLogger) (*stream.Buffer, error) {
	size := p.Size - DescriptionBlockLength
	if size < 0 {
		size = 0
	}
	data := stream.NewBuffer(size)

	src := r
	var limit int64
	if p.Description.Compressed() {
		bz, err := bzip2.NewReader(r, nil)
		if err != nil {
			return nil, err
		}
		defer bz.Close()

		// one byte past the declared size tells an oversized stream apart
		limit = int64(p.Description.UncompressedSize())
		if limit == 0 || limit > maxMessageLength {
			limit = maxMessageLength
		}
		src = io.LimitReader(bz, limit+1)
	}
	if _, err := data.ReadFrom(src); err != nil {
		return nil, fmt.Errorf("%w: product %d data: %v", ErrInvalidMessage, p.Description.ProductCode, err)
	}
	if limit > 0 && int64(data.Len()) > limit {
		return nil, fmt.Errorf("%w: product %d decompresses past %d bytes", ErrInvalidMessage, p.Description.ProductCode, limit)
	}
	if p.Description.Compressed() {
		log.Tracef("Decompressed data size = %s bytes", color.CyanString("%d", data.Len()))
	}
	return data, data.UpdateReadPointers(data.Len())
}

// seekBlock positions data on a block given its halfword offset from the
// start of the message. It reports false when the offset does not point past
// the description block.
func seekBlock(data *stream.Buffer, offset uint32) (bool, error) {
	pos := int64(offset) * 2
	if pos < offsetBase {
		return false, nil
	}
	if _, err := data.Seek(pos-offsetBase, io.SeekStart); err != nil {
		return false, fmt.Errorf("%w: block offset %d", ErrInvalidBlock, offset)
	}
	return true, nil
}

// GraphicProduct is a product carrying a symbology block and optional
// graphic and tabular alphanumeric blocks (RPG 3.3.1).
type GraphicProduct struct {
	ProductBase
	Symbology *SymbologyBlock
	Graphic   *GraphicBlock
	Tabular   *TabularBlock
}

func newGraphicProduct(base Base, r io.Reader, log logrus.Ext1FieldLogger) (Message, error) {
	m := &GraphicProduct{ProductBase: ProductBase{Base: base}}
	if err := m.decode(r, log); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *GraphicProduct) decode(r io.Reader, log logrus.Ext1FieldLogger) error {
	if err := m.readDescription(r); err != nil {
		return err
	}
	data, err := m.readProductData(r, log)
	if err != nil {
		return err
	}

	d := &m.Description
	if ok, err := seekBlock(data, d.OffsetToSymbology); err != nil {
		log.Warn(err)
	} else if ok {
		m.Symbology, err = readSymbologyBlock(data, log)
		logBlock(log, "Product symbology", err)
	}
	if ok, err := seekBlock(data, d.OffsetToGraphic); err != nil {
		log.Warn(err)
	} else if ok {
		m.Graphic, err = readGraphicBlock(data, log)
		logBlock(log, "Graphic alphanumeric", err)
	}
	if ok, err := seekBlock(data, d.OffsetToTabular); err != nil {
		log.Warn(err)
	} else if ok {
		m.Tabular, err = readTabularBlock(data, false, log)
		logBlock(log, "Tabular alphanumeric", err)
	}
	return nil
}

func logBlock(log logrus.Ext1FieldLogger, name string, err error) {
	if err != nil {
		log.Warnf("%s block: %v", name, err)
		return
	}
	log.Debugf("%s block valid", name)
}

// StormTrackingInformation is the graphic storm tracking product (58, 59).
type StormTrackingInformation struct {
	GraphicProduct
}

func newStormTrackingInformation(base Base, r io.Reader, log logrus.Ext1FieldLogger) (Message, error) {
	m := &StormTrackingInformation{GraphicProduct{ProductBase: ProductBase{Base: base}}}
	if err := m.decode(r, log); err != nil {
		return nil, err
	}
	return m, nil
}

// StormIDs returns the storm identifiers plotted by the symbology block in
// the order they appear.
func (m *StormTrackingInformation) StormIDs() []string {
	if m.Symbology == nil {
		return nil
	}
	var ids []string
	for _, p := range m.Symbology.Packets() {
		if s, ok := p.(*packet.StormID); ok {
			for _, symbol := range s.Symbols {
				ids = append(ids, symbol.StormID())
			}
		}
	}
	return ids
}

// TabularProduct is a stand-alone tabular product. These carry no symbology
// block; the symbology offset points at a tabular block without its prolog.
type TabularProduct struct {
	ProductBase
	Tabular *TabularBlock
}

func newTabularProduct(base Base, r io.Reader, log logrus.Ext1FieldLogger) (Message, error) {
	m := &TabularProduct{ProductBase: ProductBase{Base: base}}
	if err := m.readDescription(r); err != nil {
		return nil, err
	}
	data, err := m.readProductData(r, log)
	if err != nil {
		return nil, err
	}

	if ok, err := seekBlock(data, m.Description.OffsetToSymbology); err != nil {
		log.Warn(err)
	} else if ok {
		m.Tabular, err = readTabularBlock(data, true, log)
		logBlock(log, "Tabular alphanumeric", err)
	}
	return m, nil
}

// RadarCodedMessage is product 74. The coded text follows the identifiers.
type RadarCodedMessage struct {
	ProductBase
	PUPSiteIdentifier string
	ProductCategory   string
	RDASiteIdentifier string
	Text              string
}

func newRadarCodedMessage(base Base, r io.Reader, _ logrus.Ext1FieldLogger) (Message, error) {
	m := &RadarCodedMessage{ProductBase: ProductBase{Base: base}}
	if err := m.readDescription(r); err != nil {
		return nil, err
	}

	var ids struct {
		PUP      [4]byte
		_        byte
		Category [5]byte
		_        byte
		RDA      [4]byte
	}
	if err := binary.Read(r, binary.BigEndian, &ids); err != nil {
		return nil, err
	}
	m.PUPSiteIdentifier = string(ids.PUP[:])
	m.ProductCategory = string(ids.Category[:])
	m.RDASiteIdentifier = string(ids.RDA[:])

	text, err := io.ReadAll(charmap.ISO8859_1.NewDecoder().Reader(r))
	if err != nil {
		return nil, err
	}
	m.Text = string(bytes.TrimRight(text, "\x00"))
	return m, nil
}

// GeneralStatus is message 2, the RDA and RPG status report (RPG Table V).
type GeneralStatus struct {
	Base
	GeneralStatusData
}

// GeneralStatusData is the wire layout of the general status message.
type GeneralStatusData struct {
	Divider                                 int16
	LengthOfBlock                           uint16
	ModeOfOperation                         uint16
	RDAOperabilityStatus                    uint16
	VolumeCoveragePattern                   uint16
	NumberOfElevationCuts                   uint16
	Elevations                              [20]int16 // 0.1 degrees
	RDAStatus                               uint16
	RDAAlarms                               uint16
	DataTransmissionEnabled                 uint16
	RPGOperabilityStatus                    uint16
	RPGAlarms                               uint16
	RPGStatus                               uint16
	RPGNarrowbandStatus                     uint16
	HorizontalReflectivityCalibrationOffset int16 // 0.25 dB
	ProductAvailability                     uint16
	SuperResolutionElevationCuts            uint16
	ClutterMitigationDecisionStatus         uint16
	VerticalReflectivityCalibrationOffset   int16 // 0.25 dB
	RDABuildNumber                          uint16
	RDAChannelNumber                        uint16
	_                                       [4]byte
	BuildVersion                            uint16
	ExtraElevations                         [5]int16
	VCPSupplementalData                     uint16
	SupplementalCutMap                      uint32
	_                                       [80]byte
}

func newGeneralStatus(base Base, r io.Reader, _ logrus.Ext1FieldLogger) (Message, error) {
	m := &GeneralStatus{Base: base}
	if err := binary.Read(r, binary.BigEndian, &m.GeneralStatusData); err != nil {
		return nil, err
	}
	if m.Divider != -1 {
		return nil, fmt.Errorf("%w: general status divider %d", ErrInvalidMessage, m.Divider)
	}
	return m, nil
}

// ElevationAngles returns the elevation of each cut in degrees.
func (m *GeneralStatus) ElevationAngles() []float32 {
	n := int(m.NumberOfElevationCuts)
	if n > len(m.Elevations)+len(m.ExtraElevations) {
		n = len(m.Elevations) + len(m.ExtraElevations)
	}
	angles := make([]float32, n)
	for i := range angles {
		if i < len(m.Elevations) {
			angles[i] = float32(m.Elevations[i]) * 0.1
		} else {
			angles[i] = float32(m.ExtraElevations[i-len(m.Elevations)]) * 0.1
		}
	}
	return angles
}

// RDABuild is the RDA build number, coded as build*100 since build 10.
func (m *GeneralStatus) RDABuild() float32 {
	if m.RDABuildNumber > 1000 {
		return float32(m.RDABuildNumber) / 100
	}
	return float32(m.RDABuildNumber) / 10
}
