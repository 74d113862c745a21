package level3

import (
	"fmt"
	"time"

	"github.com/jddeal/go-wxdata/wsr88d"
)

// compressedProducts may carry bzip2 compressed blocks, signalled by product
// dependent parameter 8.
var compressedProducts = map[int16]bool{
	32: true, 94: true, 99: true, 134: true, 135: true, 138: true, 149: true, 152: true,
	153: true, 154: true, 155: true, 159: true, 161: true, 163: true, 165: true, 167: true,
	168: true, 170: true, 172: true, 173: true, 174: true, 175: true, 176: true, 177: true,
	178: true, 179: true, 180: true, 182: true, 186: true, 193: true, 195: true, 202: true,
}

// DescriptionBlock is the product description block (RPG Figure 3-6,
// halfwords 10-60).
type DescriptionBlock struct {
	Divider               int16
	Latitude              int32 // 0.001 degrees
	Longitude             int32 // 0.001 degrees
	Height                int16 // feet above mean sea level
	ProductCode           int16
	OperationalMode       uint16
	VolumeCoveragePattern uint16
	SequenceNumber        int16
	VolumeScanNumber      uint16
	VolumeScanDate        uint16
	VolumeScanStartTime   uint32 // seconds past midnight
	GenerationDate        uint16
	GenerationTime        uint32
	Parameters12          [2]uint16 // halfwords 27-28
	ElevationNumber       uint16
	Parameter3            uint16     // halfword 30
	DataLevels            [16]uint16 // halfwords 31-46, product dependent thresholds
	Parameters410         [7]uint16  // halfwords 47-53
	Version               uint8
	SpotBlank             uint8
	OffsetToSymbology     uint32 // halfwords from the start of the message
	OffsetToGraphic       uint32
	OffsetToTabular       uint32
}

// Validate checks the divider and product code.
func (d *DescriptionBlock) Validate() error {
	if d.Divider != -1 {
		return fmt.Errorf("%w: description block divider %d", ErrInvalidMessage, d.Divider)
	}
	if c := d.ProductCode; c < -299 || (c > -16 && c < 16) || c > 299 {
		return fmt.Errorf("%w: product code %d", ErrInvalidMessage, c)
	}
	return nil
}

// Parameter returns product dependent parameter n, 1 through 10.
func (d *DescriptionBlock) Parameter(n int) uint16 {
	switch {
	case n == 1 || n == 2:
		return d.Parameters12[n-1]
	case n == 3:
		return d.Parameter3
	case n >= 4 && n <= 10:
		return d.Parameters410[n-4]
	}
	return 0
}

// Compressed reports whether the blocks following the description block are
// bzip2 compressed.
func (d *DescriptionBlock) Compressed() bool {
	return compressedProducts[d.ProductCode] && d.Parameter(8) == 1
}

// UncompressedSize is the length of the product data once decompressed,
// carried in parameters 9 and 10 of compressed products.
func (d *DescriptionBlock) UncompressedSize() uint32 {
	return uint32(d.Parameter(9))<<16 | uint32(d.Parameter(10))
}

// LatitudeDegrees of the radar.
func (d *DescriptionBlock) LatitudeDegrees() float64 { return float64(d.Latitude) * 0.001 }

// LongitudeDegrees of the radar.
func (d *DescriptionBlock) LongitudeDegrees() float64 { return float64(d.Longitude) * 0.001 }

// VolumeScanStart is the start of the volume scan the product was built from.
func (d *DescriptionBlock) VolumeScanStart() time.Time {
	return wsr88d.SecondsPoint(uint32(d.VolumeScanDate), d.VolumeScanStartTime)
}

// GenerationTimeOfProduct is when the RPG produced the product.
func (d *DescriptionBlock) GenerationTimeOfProduct() time.Time {
	return wsr88d.SecondsPoint(uint32(d.GenerationDate), d.GenerationTime)
}

// Float32Threshold decodes the real*4 value starting at data level i.
func (d *DescriptionBlock) Float32Threshold(i int) float32 {
	if i < 0 || i+1 >= len(d.DataLevels) {
		return 0
	}
	return wsr88d.DecodeFloat32(d.DataLevels[i], d.DataLevels[i+1])
}

// Float16Threshold decodes the real*2 value at data level i.
func (d *DescriptionBlock) Float16Threshold(i int) float32 {
	if i < 0 || i >= len(d.DataLevels) {
		return 0
	}
	return wsr88d.DecodeFloat16(d.DataLevels[i])
}

// ScaleOffset returns the scale and offset used by the digital products that
// store them as real*4 pairs in halfwords 31-34, level = value*scale + offset.
func (d *DescriptionBlock) ScaleOffset() (scale, offset float32) {
	return d.Float32Threshold(0), d.Float32Threshold(2)
}

func (d *DescriptionBlock) String() string {
	return fmt.Sprintf("Product %d vcp=%d elevation=%d volume=%v",
		d.ProductCode, d.VolumeCoveragePattern, d.ElevationNumber, d.VolumeScanStart())
}
