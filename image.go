// Copyright 2026 Fabian Wenzelmann
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package photomosaic

import (
	"fmt"
	"image"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/nfnt/resize"
)

// SupportedImageFunc is a function that takes a file extension and decides if
// this file extension is supported. Usually our library should support jpg
// and png files, but this may change depending on what image protocols are
// loaded.
//
// The extension passed to this function could be for example ".txt" or ".jpg".
// JPGAndPNG is an implementation accepting jpg and png files.
type SupportedImageFunc func(ext string) bool

// JPGAndPNG is an implementation of SupportedImageFunc accepting jpg and png
// file extensions.
func JPGAndPNG(ext string) bool {
	ext = strings.ToLower(ext)
	switch ext {
	case ".jpg", ".jpeg", ".png":
		return true
	default:
		return false
	}
}

// ColorMode describes in which color space the source image and all tiles
// are processed and compared.
type ColorMode int

const (
	// ModeRGB compares images on three color channels.
	ModeRGB ColorMode = iota
	// ModeGray converts all images to grayscale and compares on a single
	// luminance channel.
	ModeGray
)

func (mode ColorMode) String() string {
	switch mode {
	case ModeRGB:
		return "RGB"
	case ModeGray:
		return "grayscale"
	default:
		return fmt.Sprintf("ColorMode(%d)", mode)
	}
}

// Channels returns the number of channels per pixel in comparison samples.
func (mode ColorMode) Channels() int {
	if mode == ModeGray {
		return 1
	}
	return 3
}

// Convert returns a copy of img in the color mode.
func (mode ColorMode) Convert(img image.Image) *image.NRGBA {
	if mode == ModeGray {
		return imaging.Grayscale(img)
	}
	return imaging.Clone(img)
}

// ImageResizer resizes an image to the given width and height.
type ImageResizer interface {
	Resize(width, height uint, img image.Image) image.Image
}

// NfntResizer uses the nfnt/resize package to resize an image.
type NfntResizer struct {
	// InterP is the interpolation function to use.
	InterP resize.InterpolationFunction
}

// NewNfntResizer returns a new resizer given the interpolation function.
func NewNfntResizer(interP resize.InterpolationFunction) NfntResizer {
	return NfntResizer{interP}
}

// GetInterP returns an interpolation function given a desired quality.
// The higher the quality the better the interpolation should be, but execution
// time is higher. Currently supported are values between 0 and 4, each
// selecting a different interpolation function. Values greater than 4 are
// treated as 4.
//
// This method assumes that the interpolation functions provided by nfnt/resize
// can be sorted according to their quality. This should be a reasonable
// assumption.
func GetInterP(quality uint) resize.InterpolationFunction {
	switch quality {
	case 0:
		return resize.NearestNeighbor
	case 1:
		return resize.Bilinear
	case 2:
		return resize.Bicubic
	case 3:
		return resize.MitchellNetravali
	case 4:
		return resize.Lanczos2
	default:
		return resize.Lanczos3
	}
}

const (
	// DefaultQuality is the interpolation quality used when nothing else is
	// configured, it selects the same function as DefaultResizer.
	DefaultQuality uint = 3
)

var (
	// DefaultResizer is the resizer that is used by default, if you're
	// looking for a resizer default argument this seems useful.
	DefaultResizer = NewNfntResizer(resize.MitchellNetravali)
)

// Resize calls nfnt/resize methods.
func (resizer NfntResizer) Resize(width, height uint, img image.Image) image.Image {
	return resize.Resize(width, height, img, resizer.InterP)
}

// AspectCropBox computes the largest crop box with the given width / height
// ratio inside an image of the given dimensions, anchored at the centerpoint.
// If the image is wider than the target ratio the left and right edges are
// cropped, otherwise the top and bottom.
//
// The centerpoint is clamped so that the box always lies inside the image;
// pass the image center for a symmetric crop (CenterAspectCrop does this).
func AspectCropBox(width, height int, targetAspect float64, centerpoint image.Point) image.Rectangle {
	aspect := float64(width) / float64(height)
	if aspect > targetAspect {
		newWidth := int(targetAspect * float64(height))
		half := newWidth / 2
		targetX := boundInt(half, width-half, centerpoint.X)
		return image.Rect(targetX-half, 0, targetX+half, height)
	}
	newHeight := int(float64(width) / targetAspect)
	half := newHeight / 2
	targetY := boundInt(half, height-half, centerpoint.Y)
	return image.Rect(0, targetY-half, width, targetY+half)
}

// CenterAspectCrop crops img to the given width / height ratio at the
// maximum possible extent, anchored at the image center.
func CenterAspectCrop(img image.Image, targetAspect float64) *image.NRGBA {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	box := AspectCropBox(width, height, targetAspect, image.Pt(width/2, height/2))
	return imaging.Crop(img, box)
}

func boundInt(low, high, value int) int {
	if value < low {
		return low
	}
	if value > high {
		return high
	}
	return value
}

// sampleArray converts an image to the flat float array used for block
// matching. Pixels are visited row-major; in RGB mode each pixel contributes
// its three color channels, in grayscale mode a single channel.
// The image must already be converted to the color mode.
func sampleArray(img *image.NRGBA, mode ColorMode) []float32 {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	res := make([]float32, 0, width*height*mode.Channels())
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			offset := img.PixOffset(x, y)
			if mode == ModeGray {
				// after grayscale conversion all channels are equal
				res = append(res, float32(img.Pix[offset]))
			} else {
				res = append(res,
					float32(img.Pix[offset]),
					float32(img.Pix[offset+1]),
					float32(img.Pix[offset+2]))
			}
		}
	}
	return res
}

// downsampleArray crops, downsamples and converts an image region to a
// comparison sample of the configured match resolution. A fast nearest
// neighbor filter is used: samples only steer the matching, they are never
// rendered.
func downsampleArray(img image.Image, config *Config) []float32 {
	matchWidth, matchHeight := config.MatchSize()
	small := imaging.Resize(img, matchWidth, matchHeight, imaging.NearestNeighbor)
	return sampleArray(small, config.Mode)
}
