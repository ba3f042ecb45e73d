package pkg

import "fmt"

// Android density bucket labels.
const (
	MDPI    = "mdpi"
	HDPI    = "hdpi"
	XHDPI   = "xhdpi"
	XXHDPI  = "xxhdpi"
	XXXHDPI = "xxxhdpi"
)

const OutputFormat = "png"

type ResultSize struct {
	Label  string `json:"label"`
	Path   string `json:"path"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// Density is a single size table entry: a bucket label and the exact pixel
// dimensions the source is resampled to.
type Density struct {
	Label  string `json:"label" yaml:"label" validate:"required,oneof=mdpi hdpi xhdpi xxhdpi xxxhdpi"`
	Width  int    `json:"width" yaml:"width" validate:"gt=0"`
	Height int    `json:"height" yaml:"height" validate:"gt=0"`
}

// FileName returns the output name for the entry, {label}_{width}x{height}.png.
func (d Density) FileName() string {
	return fmt.Sprintf("%s_%dx%d.%s", d.Label, d.Width, d.Height, OutputFormat)
}

func (d Density) String() string {
	return fmt.Sprintf("%s(%dx%d)", d.Label, d.Width, d.Height)
}

// SizeTable is an ordered list of densities. Outputs are produced in table order.
type SizeTable []Density

// DefaultSizeTable returns a fresh copy of the launcher icon table, largest first.
func DefaultSizeTable() SizeTable {
	return SizeTable{
		{Label: XXXHDPI, Width: 640, Height: 640},
		{Label: XXHDPI, Width: 480, Height: 480},
		{Label: XHDPI, Width: 320, Height: 320},
		{Label: HDPI, Width: 240, Height: 240},
		{Label: MDPI, Width: 160, Height: 160},
	}
}

// Clone returns a copy that shares nothing with t.
func (t SizeTable) Clone() SizeTable {
	if t == nil {
		return nil
	}
	c := make(SizeTable, len(t))
	copy(c, t)
	return c
}

type PublishOptions struct {
	BucketName string `json:"bucket_name" yaml:"bucket" validate:"required"`
	Region     string `json:"region" yaml:"region"` // empty uses the shared AWS config
	Prefix     string `json:"prefix" yaml:"prefix"`
}
