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

// Command mosaic generates photomosaics on the command line.
package main

import (
	"context"
	"errors"
	"fmt"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/FabianWe/photomosaic"

	homedir "github.com/mitchellh/go-homedir"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := rootCommand().ExecuteContext(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			os.Exit(130)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func defaultRoutines() int {
	// seems reasonable
	res := runtime.NumCPU() * 2
	if res <= 0 {
		// don't know if this can happen, better safe than sorry
		res = 4
	}
	return res
}

// expandPath expands a leading ~ in a path.
func expandPath(path string) (string, error) {
	return homedir.Expand(path)
}

func rootCommand() *cobra.Command {
	var verbose bool
	root := &cobra.Command{
		Use:           "mosaic",
		Short:         "Generate photomosaics from a directory of tile images",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				log.SetLevel(log.DebugLevel)
			}
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	root.AddCommand(createCommand(), batchCommand(), preprocessCommand())
	return root
}

type createFlags struct {
	tileDir       string
	recursive     bool
	tileRatio     float64
	tileWidth     int
	matchWidth    int
	enlargement   float64
	gray          bool
	rotate        bool
	reuse         bool
	shufflePrefix int
	routines      int
	quality       uint
	instructions  string
}

func createCommand() *cobra.Command {
	var flags createFlags
	cmd := &cobra.Command{
		Use:   "create SOURCE TARGET",
		Short: "Generate a single mosaic",
		Long: `Generate a mosaic of SOURCE and save it to TARGET (jpg or png).

The tile images are read from the directory given with --tiles. By default
tiles may be reused; pass --reuse=false to use every tile (including its
rotated variants with --rotate) at most once.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCreate(cmd.Context(), flags, args[0], args[1])
		},
	}
	cmd.Flags().StringVar(&flags.tileDir, "tiles", "", "directory containing the tile images (required)")
	cmd.Flags().BoolVar(&flags.recursive, "recursive", false, "scan the tile directory recursively")
	cmd.Flags().Float64Var(&flags.tileRatio, "tile-ratio", 1920.0/800.0, "width / height ratio of the tiles")
	cmd.Flags().IntVar(&flags.tileWidth, "tile-width", 75, "tile width in pixels")
	cmd.Flags().IntVar(&flags.matchWidth, "match-width", 20, "comparison resolution in pixels")
	cmd.Flags().Float64Var(&flags.enlargement, "enlargement", 8, "output scale compared to the source image")
	cmd.Flags().BoolVar(&flags.gray, "gray", false, "generate a grayscale mosaic")
	cmd.Flags().BoolVar(&flags.rotate, "rotate", false, "also try the rotated variants of every tile")
	cmd.Flags().BoolVar(&flags.reuse, "reuse", true, "allow tiles to appear multiple times")
	cmd.Flags().IntVar(&flags.shufflePrefix, "shuffle-first", 30, "shuffle the first N cells of the fill order")
	cmd.Flags().IntVar(&flags.routines, "routines", defaultRoutines(), "number of concurrent workers")
	cmd.Flags().UintVar(&flags.quality, "quality", photomosaic.DefaultQuality,
		"interpolation quality between 0 (fastest) and 5 (best)")
	cmd.Flags().StringVar(&flags.instructions, "instructions", "", "also render a build instruction diagram to this path")
	cmd.MarkFlagRequired("tiles")
	return cmd
}

func runCreate(ctx context.Context, flags createFlags, sourcePath, targetPath string) error {
	mode := photomosaic.ModeRGB
	if flags.gray {
		mode = photomosaic.ModeGray
	}
	config, configErr := photomosaic.NewConfig(flags.tileRatio, flags.tileWidth,
		flags.matchWidth, flags.enlargement, mode, flags.rotate)
	if configErr != nil {
		return configErr
	}

	tileDir, pathErr := expandPath(flags.tileDir)
	if pathErr != nil {
		return pathErr
	}
	sourcePath, pathErr = expandPath(sourcePath)
	if pathErr != nil {
		return pathErr
	}
	targetPath, pathErr = expandPath(targetPath)
	if pathErr != nil {
		return pathErr
	}

	tiles, listErr := photomosaic.ListTileSources(tileDir, flags.recursive, nil)
	if listErr != nil {
		return listErr
	}
	source, loadErr := photomosaic.LoadImageFile(sourcePath)
	if loadErr != nil {
		return fmt.Errorf("can't load source image %s: %w", sourcePath, loadErr)
	}

	res, mosaicErr := photomosaic.CreateMosaic(ctx, source, tiles, config, photomosaic.Options{
		Reuse:         flags.reuse,
		ShufflePrefix: flags.shufflePrefix,
		NumRoutines:   flags.routines,
		Resizer:       photomosaic.NewNfntResizer(photomosaic.GetInterP(flags.quality)),
		Progress:      photomosaic.LoggerProgressFunc("Assigning tiles", -1, 100),
	})
	if mosaicErr != nil {
		return mosaicErr
	}
	if saveErr := res.Canvas.Save(targetPath); saveErr != nil {
		return saveErr
	}
	log.WithField("target", targetPath).Info("Saved mosaic")
	if flags.instructions != "" && res.Instructions.Len() > 0 {
		instrPath, instrPathErr := expandPath(flags.instructions)
		if instrPathErr != nil {
			return instrPathErr
		}
		if renderErr := res.Instructions.Render(instrPath, 1); renderErr != nil {
			return renderErr
		}
		log.WithField("target", instrPath).Info("Saved build instructions")
	}
	if res.Assignment.Reason == photomosaic.StopCanceled {
		return context.Canceled
	}
	return nil
}

func batchCommand() *cobra.Command {
	var targetDir string
	cmd := &cobra.Command{
		Use:   "batch FILE",
		Short: "Run a batch of mosaic jobs described in a TOML file",
		Long: `Run all mosaic jobs of a TOML batch file, several at a time.

All jobs share one configuration and one tile pool. A batch file looks like
this:

  tile_dir = "~/Pictures/tiles"
  target_dir = "results"
  tile_ratio = 1.0
  tile_width = 50
  match_width = 20
  enlargement = 2.5
  rotate = true
  reuse = false
  shuffle_first = 30
  workers = 8

  [[jobs]]
  source = "input/city.jpg"
  target = "results/city.jpg"
  instructions = "results/city-instructions.png"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, pathErr := expandPath(args[0])
			if pathErr != nil {
				return pathErr
			}
			batch, loadErr := photomosaic.LoadBatchFile(path)
			if loadErr != nil {
				return loadErr
			}
			if batch.TileDir, pathErr = expandPath(batch.TileDir); pathErr != nil {
				return pathErr
			}
			if targetDir != "" {
				batch.TargetDir = targetDir
			}
			if batch.TargetDir != "" {
				if batch.TargetDir, pathErr = expandPath(batch.TargetDir); pathErr != nil {
					return pathErr
				}
			}
			if batch.NumRoutines == 0 {
				batch.NumRoutines = defaultRoutines()
			}
			return batch.Run(cmd.Context())
		},
	}
	cmd.Flags().StringVar(&targetDir, "target-dir", "",
		"derive missing job targets from the source names inside this directory")
	return cmd
}

func preprocessCommand() *cobra.Command {
	var (
		pixelBudget int
		routines    int
		quality     uint
	)
	cmd := &cobra.Command{
		Use:   "preprocess SOURCE_DIR TARGET_DIR",
		Short: "Resize all images of a directory to a fixed pixel budget",
		Long: `Resize every image in SOURCE_DIR to roughly the given number of
pixels, keeping aspect ratios, and save the results in TARGET_DIR. Useful to
bring large camera images down to a manageable size before generating
mosaics from them.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			sourceDir, pathErr := expandPath(args[0])
			if pathErr != nil {
				return pathErr
			}
			targetDir, pathErr := expandPath(args[1])
			if pathErr != nil {
				return pathErr
			}
			resizer := photomosaic.NewNfntResizer(photomosaic.GetInterP(quality))
			return photomosaic.PreprocessDirectory(sourceDir, targetDir, pixelBudget,
				resizer, routines, photomosaic.LoggerProgressFunc("Preprocessing", -1, 10))
		},
	}
	cmd.Flags().IntVar(&pixelBudget, "pixels", photomosaic.DefaultPixelBudget, "target pixel count per image")
	cmd.Flags().IntVar(&routines, "routines", defaultRoutines(), "number of concurrent workers")
	cmd.Flags().UintVar(&quality, "quality", photomosaic.DefaultQuality,
		"interpolation quality between 0 (fastest) and 5 (best)")
	return cmd
}
