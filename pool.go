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
	"sort"

	"github.com/disintegration/imaging"
	log "github.com/sirupsen/logrus"
)

// TileSource provides one candidate tile image. Sources are only loaded
// once, during pool construction. FSTileSource is an implementation backed
// by an image file.
type TileSource interface {
	// Label returns a short display name for the tile, used in build
	// instruction diagrams.
	Label() string

	// Load decodes the tile image.
	Load() (image.Image, error)
}

// Tile is one entry of a tile pool: a candidate image, cropped to the
// configured tile ratio at maximum extent, resized to the tile size and
// converted to the pool's color mode.
//
// With rotation enabled each source image produces four tiles (rotated by
// 0, 90, 180 and 270 degrees) that share a rotation group. The group is the
// atomic unit of consumption: an assignment engine that disallows reuse
// consumes all four variants as soon as one of them is placed.
type Tile struct {
	// Render is the full resolution image pasted into the mosaic.
	Render *image.NRGBA

	// Label is the display name, derived from the source image label; the
	// rotated variants carry a rotation suffix.
	Label string

	// Rotation is the counterclockwise rotation in degrees, one of
	// 0, 90, 180 and 270.
	Rotation int

	// Group identifies the rotation group the tile belongs to. Tiles from
	// the same source image share a group; without rotation every tile has
	// its own group.
	Group int

	// sample is the downsampled comparison array of the render.
	sample []float32
}

// rotationArrows are the label suffix arrows of the rotated variants, in
// the order 90, 180, 270 degrees. They match the arrows drawn in build
// instruction diagrams.
var rotationArrows = [3]string{"→", "↓", "←"}

// TilePool owns all candidate tiles of a mosaic: the full resolution render
// copies and the low resolution comparison samples. All tiles are created
// at construction time and never mutated afterwards, so a pool is safe to
// share between any number of concurrent ranking queries.
//
// The pool itself never tracks which tiles have been used; consumption is
// the assignment engine's job. This keeps rankings reusable across reuse
// and single-use modes.
type TilePool struct {
	config    *Config
	tiles     []Tile
	numGroups int
	sampleLen int
}

// NewTilePool builds a pool from the given sources. Every source is
// decoded, cropped to the configured tile ratio anchored at the image
// center, resized to the tile size with the given resizer and converted to
// the configured color mode. With rotation enabled each source additionally
// contributes its three rotated variants, directly following the base tile
// in pool order.
//
// Sources that fail to load are logged and skipped, they don't abort the
// pool build. numRoutines sources are processed concurrently. progress (may
// be nil) is called once per processed source.
//
// Returns ErrPoolEmpty if no sources are given or none of them could be
// loaded.
func NewTilePool(sources []TileSource, config *Config, resizer ImageResizer,
	numRoutines int, progress ProgressFunc) (*TilePool, error) {
	if len(sources) == 0 {
		return nil, ErrPoolEmpty
	}
	if resizer == nil {
		resizer = DefaultResizer
	}
	if numRoutines <= 0 {
		numRoutines = 1
	}
	if progress == nil {
		progress = ProgressIgnore
	}
	if config.Rotate && config.TileWidth != config.TileHeight() {
		log.WithFields(log.Fields{
			"tileWidth":  config.TileWidth,
			"tileHeight": config.TileHeight(),
		}).Warn("Rotation with non-square tiles: rotated variants won't fit the cells")
	}

	// per-source results, flattened afterwards to keep the pool order stable
	variants := make([][]Tile, len(sources))

	jobs := make(chan int, BufferSize)
	done := make(chan bool, BufferSize)

	for w := 0; w < numRoutines; w++ {
		go func() {
			for next := range jobs {
				tiles, tileErr := prepareTiles(sources[next], config, resizer)
				if tileErr != nil {
					log.WithFields(log.Fields{
						log.ErrorKey: tileErr,
						"tile":       sources[next].Label(),
					}).Error("Can't process tile image, skipping it")
				} else {
					variants[next] = tiles
				}
				done <- true
			}
		}()
	}
	go func() {
		for i := range sources {
			jobs <- i
		}
		close(jobs)
	}()
	for i := range sources {
		<-done
		progress(i + 1)
	}

	pool := &TilePool{
		config:    config,
		sampleLen: config.MatchWidth * config.MatchHeight() * config.Mode.Channels(),
	}
	for _, tiles := range variants {
		if tiles == nil {
			continue
		}
		group := pool.numGroups
		for _, tile := range tiles {
			tile.Group = group
			pool.tiles = append(pool.tiles, tile)
		}
		pool.numGroups++
	}
	if len(pool.tiles) == 0 {
		return nil, ErrPoolEmpty
	}
	return pool, nil
}

// prepareTiles creates the tile (or, with rotation, the four tile variants)
// for one source image. The group id is filled in by the caller.
func prepareTiles(source TileSource, config *Config, resizer ImageResizer) ([]Tile, error) {
	img, loadErr := source.Load()
	if loadErr != nil {
		return nil, loadErr
	}
	cropped := CenterAspectCrop(img, config.TileRatio)
	width, height := config.TileSize()
	base := config.Mode.Convert(resizer.Resize(uint(width), uint(height), cropped))
	label := source.Label()

	res := make([]Tile, 0, 4)
	res = append(res, Tile{
		Render: base,
		Label:  label,
		sample: downsampleArray(base, config),
	})
	if !config.Rotate {
		return res, nil
	}
	for i, arrow := range rotationArrows {
		degrees := 90 * (i + 1)
		var rotated *image.NRGBA
		switch degrees {
		case 90:
			rotated = imaging.Rotate90(base)
		case 180:
			rotated = imaging.Rotate180(base)
		default:
			rotated = imaging.Rotate270(base)
		}
		res = append(res, Tile{
			Render:   rotated,
			Label:    fmt.Sprintf("%s\nr%d%s", label, degrees, arrow),
			Rotation: degrees,
			sample:   downsampleArray(rotated, config),
		})
	}
	return res, nil
}

// Len returns the number of tiles in the pool (rotated variants count as
// separate tiles).
func (pool *TilePool) Len() int {
	return len(pool.tiles)
}

// NumGroups returns the number of rotation groups in the pool. Without
// rotation this equals Len.
func (pool *TilePool) NumGroups() int {
	return pool.numGroups
}

// Tile returns the tile with the given pool index.
func (pool *TilePool) Tile(index int) *Tile {
	return &pool.tiles[index]
}

// Config returns the configuration the pool was built with.
func (pool *TilePool) Config() *Config {
	return pool.config
}

// BestMatchRanking compares a sample block against every tile of the pool
// and returns all pool indices ordered by increasing distance, best match
// first. The distance is the mean squared difference over all sample
// elements; ties keep the pool order (stable sort).
//
// The block must be downsampled to the pool's match resolution and color
// mode, which is what SourceCanvas.SampleBlock produces. Rankings are
// always computed against the full pool, no matter how many tiles an
// assignment engine has consumed already: the same ranking stays valid in
// reuse and single-use modes and can be walked for fallback candidates.
func (pool *TilePool) BestMatchRanking(block []float32) ([]int, error) {
	if len(block) != pool.sampleLen {
		return nil, fmt.Errorf("invalid block size %d, pool samples have size %d",
			len(block), pool.sampleLen)
	}
	distances := make([]float64, len(pool.tiles))
	for i := range pool.tiles {
		sample := pool.tiles[i].sample
		var sum float64
		for k, v := range sample {
			diff := float64(v - block[k])
			sum += diff * diff
		}
		distances[i] = sum / float64(len(sample))
	}
	ranking := make([]int, len(pool.tiles))
	for i := range ranking {
		ranking[i] = i
	}
	sort.SliceStable(ranking, func(i, j int) bool {
		return distances[ranking[i]] < distances[ranking[j]]
	})
	return ranking, nil
}
