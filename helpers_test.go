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
	"image/color"
	"testing"
)

// uniformImage returns a w x h image filled with the given color.
func uniformImage(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

// memTileSource is an in-memory TileSource for tests.
type memTileSource struct {
	label string
	img   image.Image
	err   error
}

func (source memTileSource) Label() string {
	return source.label
}

func (source memTileSource) Load() (image.Image, error) {
	return source.img, source.err
}

var (
	red   = color.NRGBA{R: 255, A: 255}
	green = color.NRGBA{G: 255, A: 255}
	blue  = color.NRGBA{B: 255, A: 255}
	white = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
)

// colorSources returns one uniform tile source per color, labeled by index.
func colorSources(size int, colors ...color.NRGBA) []TileSource {
	res := make([]TileSource, 0, len(colors))
	for i, c := range colors {
		res = append(res, memTileSource{
			label: string(rune('a' + i)),
			img:   uniformImage(size, size, c),
		})
	}
	return res
}

// testConfig returns a square-tile configuration suitable for small test
// grids.
func testConfig(t *testing.T, rotate bool) *Config {
	t.Helper()
	config, err := NewConfig(1.0, 10, 4, 1.0, ModeRGB, rotate)
	if err != nil {
		t.Fatalf("NewConfig failed: %v", err)
	}
	return config
}

// quadrantImage returns a 20x20 image whose four 10x10 quadrants are filled
// with the given colors (column-major: topLeft, bottomLeft, topRight,
// bottomRight).
func quadrantImage(topLeft, bottomLeft, topRight, bottomRight color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, 20, 20))
	for y := 0; y < 20; y++ {
		for x := 0; x < 20; x++ {
			var c color.NRGBA
			switch {
			case x < 10 && y < 10:
				c = topLeft
			case x < 10:
				c = bottomLeft
			case y < 10:
				c = topRight
			default:
				c = bottomRight
			}
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}
