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
	"image/draw"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
)

const (
	// DefaultJPGQuality is the jpeg quality used when saving images, between
	// 1 and 100. The higher the value the better the quality.
	DefaultJPGQuality = 100
)

// MosaicCanvas accumulates assigned tiles into the output raster. It starts
// as a copy of the processed source image, not as a blank canvas: cells
// that never get a tile (because the pool ran out or the run was canceled)
// simply keep the scaled source pixels.
type MosaicCanvas struct {
	img *image.NRGBA

	// JPGQuality is the quality used when saving as jpeg.
	JPGQuality int
}

// NewMosaicCanvas returns a canvas initialized with a copy of the source
// canvas raster.
func NewMosaicCanvas(source *SourceCanvas) *MosaicCanvas {
	bounds := source.Image().Bounds()
	img := image.NewNRGBA(bounds)
	draw.Draw(img, bounds, source.Image(), bounds.Min, draw.Src)
	return &MosaicCanvas{img: img, JPGQuality: DefaultJPGQuality}
}

// Image returns the current mosaic raster.
func (canvas *MosaicCanvas) Image() *image.NRGBA {
	return canvas.img
}

// PlaceTile pastes a tile image onto the canvas at the given cell box.
// The tile must have exactly the box dimensions; a SizeMismatchError is
// returned otherwise and nothing is drawn. A mismatch means the tile pool
// and the configuration disagree about the tile size, callers usually skip
// the cell and report the error instead of aborting the run.
func (canvas *MosaicCanvas) PlaceTile(tile image.Image, box image.Rectangle) error {
	tileBounds := tile.Bounds()
	if tileBounds.Dx() != box.Dx() || tileBounds.Dy() != box.Dy() {
		return &SizeMismatchError{Box: box, Width: tileBounds.Dx(), Height: tileBounds.Dy()}
	}
	draw.Draw(canvas.img, box, tile, tileBounds.Min, draw.Src)
	return nil
}

// Encode writes the raster to w in the given format ("png", "jpg" or
// "jpeg").
func (canvas *MosaicCanvas) Encode(w io.Writer, format string) error {
	return encodeImage(w, canvas.img, format, canvas.JPGQuality)
}

// Save encodes the raster to the given path, the format is derived from
// the file extension. Save may be called multiple times during a run, for
// example to persist partial progress after a cancellation.
func (canvas *MosaicCanvas) Save(path string) error {
	return saveImage(path, canvas.img, canvas.JPGQuality)
}

func encodeImage(w io.Writer, img image.Image, format string, jpgQuality int) error {
	switch strings.ToLower(format) {
	case "png":
		return png.Encode(w, img)
	case "jpg", "jpeg":
		return jpeg.Encode(w, img, &jpeg.Options{Quality: jpgQuality})
	default:
		return fmt.Errorf("unsupported image format %q", format)
	}
}

// saveImage writes an image to a file, the format is derived from the file
// extension (jpg and png are supported).
func saveImage(path string, img image.Image, jpgQuality int) error {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	f, openErr := os.Create(path)
	if openErr != nil {
		return openErr
	}
	defer f.Close()
	return encodeImage(f, img, ext, jpgQuality)
}
