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

import "math"

// Config bundles all geometry and color parameters of a mosaic. It is
// created once via NewConfig and never mutated afterwards; all components
// share the same instance by pointer.
type Config struct {
	// TileRatio is the width / height ratio of a tile. Must be > 0.
	TileRatio float64

	// TileWidth is the width of a tile in the output image in pixels.
	// Must be ≥ 1.
	TileWidth int

	// MatchWidth is the width in pixels at which tiles are compared to the
	// source image. Smaller values mean faster but rougher matching.
	// Must be ≥ 1.
	MatchWidth int

	// Enlargement is the scale factor of the output compared to the source
	// image. The mosaic will be Enlargement times wider and taller than the
	// source. Must be > 0.
	Enlargement float64

	// Mode is the color mode (RGB or grayscale) in which the source and all
	// tiles are processed.
	Mode ColorMode

	// Rotate controls whether each tile additionally enters the pool in its
	// 90, 180 and 270 degree rotated variants.
	Rotate bool
}

// NewConfig validates the parameters and returns a new Config.
// A ConfigError is returned if any parameter is out of range or if the
// derived tile height would be smaller than one pixel.
func NewConfig(tileRatio float64, tileWidth, matchWidth int, enlargement float64,
	mode ColorMode, rotate bool) (*Config, error) {
	switch {
	case tileRatio <= 0:
		return nil, NewConfigError("tile ratio", "must be > 0")
	case tileWidth < 1:
		return nil, NewConfigError("tile width", "must be ≥ 1")
	case matchWidth < 1:
		return nil, NewConfigError("match width", "must be ≥ 1")
	case enlargement <= 0:
		return nil, NewConfigError("enlargement", "must be > 0")
	}
	config := &Config{
		TileRatio:   tileRatio,
		TileWidth:   tileWidth,
		MatchWidth:  matchWidth,
		Enlargement: enlargement,
		Mode:        mode,
		Rotate:      rotate,
	}
	if config.TileHeight() < 1 {
		return nil, NewConfigError("tile ratio",
			"yields a tile height smaller than one pixel")
	}
	if config.MatchHeight() < 1 {
		return nil, NewConfigError("match width",
			"yields a match height smaller than one pixel")
	}
	return config, nil
}

// TileHeight returns the height of a tile in pixels, derived from the tile
// width and the tile ratio (truncated).
func (config *Config) TileHeight() int {
	return int(float64(config.TileWidth) / config.TileRatio)
}

// TileSize returns the width and height of a tile in pixels.
func (config *Config) TileSize() (int, int) {
	return config.TileWidth, config.TileHeight()
}

// MatchHeight returns the height in pixels of the comparison blocks,
// derived from the match width and the tile ratio (rounded).
func (config *Config) MatchHeight() int {
	return int(math.Round(float64(config.MatchWidth) / config.TileRatio))
}

// MatchSize returns the width and height of the comparison blocks.
func (config *Config) MatchSize() (int, int) {
	return config.MatchWidth, config.MatchHeight()
}
