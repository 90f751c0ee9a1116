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
	"fmt"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// BatchJob is one source image to turn into a mosaic.
type BatchJob struct {
	// Source is the path of the source image.
	Source string `toml:"source"`
	// Target is the path the mosaic is saved to.
	Target string `toml:"target"`
	// Instructions is the path the instruction diagram is rendered to,
	// empty to skip the diagram.
	Instructions string `toml:"instructions"`
}

// Batch describes a set of mosaic jobs sharing one tile pool and one
// configuration. Batches can be written as TOML files and loaded with
// LoadBatchFile.
type Batch struct {
	// TileDir is the directory containing the tile images.
	TileDir string `toml:"tile_dir"`
	// Recursive controls whether TileDir is scanned recursively.
	Recursive bool `toml:"recursive"`

	// TargetDir, if set, fills empty job targets via ExpandJobTargets.
	TargetDir string `toml:"target_dir"`

	TileRatio   float64 `toml:"tile_ratio"`
	TileWidth   int     `toml:"tile_width"`
	MatchWidth  int     `toml:"match_width"`
	Enlargement float64 `toml:"enlargement"`
	Grayscale   bool    `toml:"grayscale"`
	Rotate      bool    `toml:"rotate"`

	// Quality selects the interpolation function for all high quality
	// resizes, see GetInterP. Defaults to DefaultQuality when loaded from a
	// file.
	Quality uint `toml:"quality"`

	Reuse         bool `toml:"reuse"`
	ShufflePrefix int  `toml:"shuffle_first"`

	// Workers is the number of jobs run concurrently. Jobs are independent
	// of each other: each runs its own engine against the shared read-only
	// pool. Values < 1 mean one job at a time.
	Workers int `toml:"workers"`

	// NumRoutines is the per-job ranking concurrency.
	NumRoutines int `toml:"routines"`

	Jobs []BatchJob `toml:"jobs"`
}

// LoadBatchFile reads a batch description from a TOML file. Keys missing
// from the file keep their zero value, except quality which defaults to
// DefaultQuality.
func LoadBatchFile(path string) (*Batch, error) {
	batch := Batch{Quality: DefaultQuality}
	if _, err := toml.DecodeFile(path, &batch); err != nil {
		return nil, err
	}
	if len(batch.Jobs) == 0 {
		return nil, fmt.Errorf("batch file %s contains no jobs", path)
	}
	return &batch, nil
}

// Config builds the mosaic configuration of the batch.
func (batch *Batch) Config() (*Config, error) {
	mode := ModeRGB
	if batch.Grayscale {
		mode = ModeGray
	}
	return NewConfig(batch.TileRatio, batch.TileWidth, batch.MatchWidth,
		batch.Enlargement, mode, batch.Rotate)
}

// Run executes all jobs of the batch, Workers jobs at a time. The tile pool
// is built once and shared read-only by all jobs; every job owns its
// engine and availability state, so single-use batches don't interfere with
// each other.
//
// A failing job aborts the batch. Cancellation via ctx stops new jobs from
// starting; running jobs finish their current cell, save their partial
// mosaic and return, and Run reports the context error.
func (batch *Batch) Run(ctx context.Context) error {
	config, configErr := batch.Config()
	if configErr != nil {
		return configErr
	}
	if batch.TargetDir != "" {
		batch.ExpandJobTargets(batch.TargetDir)
	}
	resizer := NewNfntResizer(GetInterP(batch.Quality))
	tiles, listErr := ListTileSources(batch.TileDir, batch.Recursive, nil)
	if listErr != nil {
		return listErr
	}
	log.WithFields(log.Fields{
		"tiles": len(tiles),
		"jobs":  len(batch.Jobs),
	}).Info("Building shared tile pool")
	pool, poolErr := NewTilePool(tiles, config, resizer, batch.NumRoutines, nil)
	if poolErr != nil {
		return poolErr
	}

	workers := batch.Workers
	if workers < 1 {
		workers = 1
	}
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(workers)
	for _, job := range batch.Jobs {
		job := job
		group.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}
			return runBatchJob(groupCtx, pool, batch, job, resizer)
		})
	}
	return group.Wait()
}

func runBatchJob(ctx context.Context, pool *TilePool, batch *Batch, job BatchJob,
	resizer ImageResizer) error {
	logger := log.WithFields(log.Fields{
		"job":    uuid.New().String(),
		"source": filepath.Base(job.Source),
	})
	logger.Info("Starting mosaic job")

	source, loadErr := LoadImageFile(job.Source)
	if loadErr != nil {
		return fmt.Errorf("can't load source image %s: %w", job.Source, loadErr)
	}
	res, mosaicErr := CreateMosaicWithPool(ctx, source, pool, Options{
		Reuse:         batch.Reuse,
		ShufflePrefix: batch.ShufflePrefix,
		NumRoutines:   batch.NumRoutines,
		Resizer:       resizer,
	})
	if mosaicErr != nil {
		return mosaicErr
	}
	// cancellation still saves whatever was assigned
	if saveErr := res.Canvas.Save(job.Target); saveErr != nil {
		return fmt.Errorf("can't save mosaic %s: %w", job.Target, saveErr)
	}
	if job.Instructions != "" && res.Instructions.Len() > 0 {
		if renderErr := res.Instructions.Render(job.Instructions, 1); renderErr != nil {
			return fmt.Errorf("can't render instructions %s: %w", job.Instructions, renderErr)
		}
	}
	logger.WithFields(log.Fields{
		"assigned": res.Instructions.Len(),
		"reason":   res.Assignment.Reason.String(),
	}).Info("Finished mosaic job")
	if res.Assignment.Reason == StopCanceled {
		return ctx.Err()
	}
	return nil
}

// ExpandJobTargets fills empty job targets by deriving them from the source
// name inside targetDir, keeping the source extension.
func (batch *Batch) ExpandJobTargets(targetDir string) {
	for i := range batch.Jobs {
		if batch.Jobs[i].Target != "" {
			continue
		}
		name := filepath.Base(batch.Jobs[i].Source)
		batch.Jobs[i].Target = filepath.Join(targetDir, name)
		if batch.Jobs[i].Instructions == "" {
			stem := strings.TrimSuffix(name, filepath.Ext(name))
			batch.Jobs[i].Instructions = filepath.Join(targetDir, stem+"-instructions.png")
		}
	}
}
