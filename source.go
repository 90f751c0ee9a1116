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
	"image"

	"github.com/disintegration/imaging"
)

// SourceCanvas holds the processed source image of a mosaic: scaled by the
// configured enlargement and cropped so that a whole number of tiles fits
// in both directions. The grid dimensions are derived from the processed
// size and the tile size.
//
// The canvas is read-only after construction and safe to share between
// concurrent ranking computations.
type SourceCanvas struct {
	config *Config
	img    *image.NRGBA

	// XTileCount and YTileCount are the grid dimensions in cells.
	XTileCount, YTileCount int
}

// NewSourceCanvas processes the source image: it is scaled by the
// enlargement factor (dimensions truncated), cropped symmetrically so width
// and height become exact multiples of the tile width and height (the crop
// splits the remainder, an odd remainder loses the extra pixel on the right
// and bottom) and converted to the configured color mode.
// resizer may be nil, in which case DefaultResizer is used.
func NewSourceCanvas(img image.Image, config *Config, resizer ImageResizer) *SourceCanvas {
	if resizer == nil {
		resizer = DefaultResizer
	}
	bounds := img.Bounds()
	width := int(float64(bounds.Dx()) * config.Enlargement)
	height := int(float64(bounds.Dy()) * config.Enlargement)
	large := resizer.Resize(uint(width), uint(height), img)

	tileWidth, tileHeight := config.TileSize()
	wRem := width % tileWidth
	hRem := height % tileHeight
	if wRem != 0 || hRem != 0 {
		left := wRem / 2
		top := hRem / 2
		large = imaging.Crop(large, image.Rect(left, top, left+width-wRem, top+height-hRem))
	}

	canvas := &SourceCanvas{
		config: config,
		img:    config.Mode.Convert(large),
	}
	canvas.XTileCount = canvas.img.Bounds().Dx() / tileWidth
	canvas.YTileCount = canvas.img.Bounds().Dy() / tileHeight
	return canvas
}

// Image returns the processed source raster.
func (canvas *SourceCanvas) Image() *image.NRGBA {
	return canvas.img
}

// Config returns the configuration the canvas was built with.
func (canvas *SourceCanvas) Config() *Config {
	return canvas.config
}

// NumCells returns the total number of grid cells.
func (canvas *SourceCanvas) NumCells() int {
	return canvas.XTileCount * canvas.YTileCount
}

// CellBox returns the pixel bounding box of the grid cell at the given
// coordinates. x must be in [0, XTileCount), y in [0, YTileCount).
func (canvas *SourceCanvas) CellBox(x, y int) image.Rectangle {
	tileWidth, tileHeight := canvas.config.TileSize()
	return image.Rect(x*tileWidth, y*tileHeight, (x+1)*tileWidth, (y+1)*tileHeight)
}

// SampleBlock crops the canvas to the given cell box and downsamples it to
// a comparison sample of the pool's match resolution, suitable for
// TilePool.BestMatchRanking.
func (canvas *SourceCanvas) SampleBlock(box image.Rectangle) []float32 {
	return downsampleArray(imaging.Crop(canvas.img, box), canvas.config)
}
