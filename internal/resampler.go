package internal

import (
	"fmt"
	"image"
	"sort"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/nfnt/resize"
	"golang.org/x/image/draw"
)

const DefaultFilter = "lanczos"

// Resampler scales img to exactly width x height. Aspect ratio is not kept.
type Resampler interface {
	Resample(img image.Image, width, height int) image.Image
}

type imagingResampler struct {
	filter imaging.ResampleFilter
}

func (r imagingResampler) Resample(img image.Image, width, height int) image.Image {
	return imaging.Resize(img, width, height, r.filter)
}

type nfntResampler struct {
	interpolation resize.InterpolationFunction
}

func (r nfntResampler) Resample(img image.Image, width, height int) image.Image {
	return resize.Resize(uint(width), uint(height), img, r.interpolation)
}

type drawResampler struct {
	scaler draw.Scaler
}

func (r drawResampler) Resample(img image.Image, width, height int) image.Image {
	dst := image.NewNRGBA(image.Rect(0, 0, width, height))
	r.scaler.Scale(dst, dst.Rect, img, img.Bounds(), draw.Src, nil)
	return dst
}

var filters = map[string]Resampler{
	DefaultFilter:   imagingResampler{filter: imaging.Lanczos},
	"nfnt-lanczos3": nfntResampler{interpolation: resize.Lanczos3},
	"catmullrom":    drawResampler{scaler: draw.CatmullRom},
}

// NewResampler returns the resampler registered under name. An empty name
// selects DefaultFilter.
func NewResampler(name string) (Resampler, error) {
	if name == "" {
		name = DefaultFilter
	}
	r, ok := filters[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("%q %w, use one of: %s", name, ErrUnknownFilter, strings.Join(FilterNames(), ", "))
	}
	return r, nil
}

func FilterNames() []string {
	names := make([]string, 0, len(filters))
	for name := range filters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
