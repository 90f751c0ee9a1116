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
	"context"
	"image"
	"math/rand"

	log "github.com/sirupsen/logrus"
)

// Options bundles the runtime parameters of a mosaic generation, as opposed
// to the geometry and color parameters in Config.
type Options struct {
	// Reuse allows tiles to fill multiple cells, see AssignmentEngine.
	Reuse bool

	// ShufflePrefix is the number of leading cells of the traversal order
	// that are shuffled, see CoordsFromMiddle.
	ShufflePrefix int

	// NumRoutines is the number of goroutines used for pool building and
	// cell ranking. Values < 1 mean no concurrency.
	NumRoutines int

	// Resizer is the resize engine for all high quality resizes (tiles and
	// source enlargement), may be nil (DefaultResizer).
	Resizer ImageResizer

	// Progress (may be nil) is called once per assigned cell.
	Progress ProgressFunc

	// RandGen is used to shuffle the traversal prefix, may be nil.
	RandGen *rand.Rand
}

// Result is the outcome of a mosaic generation.
type Result struct {
	// Canvas holds the output raster, save it with Canvas.Save.
	Canvas *MosaicCanvas
	// Instructions are the (label, box) records in assignment order.
	Instructions *BuildInstructions
	// Assignment is the raw engine result including the stop reason.
	Assignment *AssignmentResult
	// SkippedCells counts cells whose tile did not fit its box and that
	// therefore kept the source pixels.
	SkippedCells int
}

// CreateMosaic generates a mosaic of the source image from the given tile
// sources. It builds the tile pool and the source canvas, assigns tiles to
// cells and composes the output raster.
//
// Pool exhaustion and cancellation via ctx are not errors: the returned
// result contains everything assigned up to that point and the canvas is
// still valid (unfilled cells keep the scaled source pixels). The caller
// decides where to save the raster and whether to render the instruction
// diagram.
func CreateMosaic(ctx context.Context, source image.Image, tiles []TileSource,
	config *Config, options Options) (*Result, error) {
	log.WithFields(log.Fields{
		"tiles": len(tiles),
		"mode":  config.Mode.String(),
	}).Info("Processing tile images")
	pool, poolErr := NewTilePool(tiles, config, options.Resizer, options.NumRoutines, nil)
	if poolErr != nil {
		return nil, poolErr
	}
	return CreateMosaicWithPool(ctx, source, pool, options)
}

// CreateMosaicWithPool is CreateMosaic for an already built pool. Pools are
// read-only during generation, so the same pool instance can be shared by
// any number of concurrent jobs (each job runs its own engine and thus its
// own consumption state).
func CreateMosaicWithPool(ctx context.Context, source image.Image, pool *TilePool,
	options Options) (*Result, error) {
	config := pool.Config()
	canvas := NewSourceCanvas(source, config, options.Resizer)
	log.WithFields(log.Fields{
		"xTiles": canvas.XTileCount,
		"yTiles": canvas.YTileCount,
		"total":  canvas.NumCells(),
	}).Info("Processed main image")

	engine := NewAssignmentEngine(pool, canvas, options.Reuse)
	engine.ShufflePrefix = options.ShufflePrefix
	engine.NumRoutines = options.NumRoutines
	engine.RandGen = options.RandGen
	engine.Progress = options.Progress
	assignment, runErr := engine.Run(ctx)
	if runErr != nil {
		return nil, runErr
	}

	res := &Result{
		Canvas:       NewMosaicCanvas(canvas),
		Instructions: NewBuildInstructions(),
		Assignment:   assignment,
	}
	for _, placement := range assignment.Placements {
		tile := pool.Tile(placement.TileIndex)
		if placeErr := res.Canvas.PlaceTile(tile.Render, placement.Box); placeErr != nil {
			log.WithFields(log.Fields{
				log.ErrorKey: placeErr,
				"tile":       placement.Label,
			}).Error("Tile does not fit its cell, keeping source pixels")
			res.SkippedCells++
		}
		res.Instructions.AddTile(placement.Label, placement.Box)
	}
	log.WithFields(log.Fields{
		"assigned": len(assignment.Placements),
		"skipped":  res.SkippedCells,
		"reason":   assignment.Reason.String(),
	}).Info("Assembled mosaic")
	return res, nil
}
