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
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

const testBatchFile = `
tile_dir = "tiles"
recursive = true
tile_ratio = 2.4
tile_width = 75
match_width = 20
enlargement = 8.0
grayscale = false
rotate = true
reuse = false
shuffle_first = 30
workers = 2
routines = 4

[[jobs]]
source = "photo1.jpg"
target = "mosaic1.jpg"
instructions = "mosaic1-instructions.png"

[[jobs]]
source = "photo2.jpg"
`

func writeBatchFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "batch.toml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("can't write batch file: %v", err)
	}
	return path
}

func TestLoadBatchFile(t *testing.T) {
	batch, err := LoadBatchFile(writeBatchFile(t, testBatchFile))
	if err != nil {
		t.Fatalf("LoadBatchFile failed: %v", err)
	}
	if batch.TileDir != "tiles" || !batch.Recursive {
		t.Errorf("unexpected tile directory settings: %q, %v", batch.TileDir, batch.Recursive)
	}
	if batch.TileRatio != 2.4 || batch.TileWidth != 75 || batch.MatchWidth != 20 {
		t.Errorf("unexpected tile settings: %+v", batch)
	}
	if !batch.Rotate || batch.Reuse || batch.ShufflePrefix != 30 {
		t.Errorf("unexpected assignment settings: %+v", batch)
	}
	if batch.Workers != 2 || batch.NumRoutines != 4 {
		t.Errorf("unexpected concurrency settings: %+v", batch)
	}
	if batch.Quality != DefaultQuality {
		t.Errorf("expected default quality %d when unset, got %d", DefaultQuality, batch.Quality)
	}
	if batch.TargetDir != "" {
		t.Errorf("expected no target directory, got %q", batch.TargetDir)
	}
	if len(batch.Jobs) != 2 {
		t.Fatalf("expected 2 jobs, got %d", len(batch.Jobs))
	}
	if batch.Jobs[0].Source != "photo1.jpg" || batch.Jobs[0].Target != "mosaic1.jpg" {
		t.Errorf("unexpected first job: %+v", batch.Jobs[0])
	}
	if batch.Jobs[1].Target != "" || batch.Jobs[1].Instructions != "" {
		t.Errorf("expected empty target and instructions, got %+v", batch.Jobs[1])
	}
}

func TestLoadBatchFileQualityAndTargetDir(t *testing.T) {
	content := `
tile_dir = "tiles"
target_dir = "results"
quality = 1

[[jobs]]
source = "photo.jpg"
`
	batch, err := LoadBatchFile(writeBatchFile(t, content))
	if err != nil {
		t.Fatalf("LoadBatchFile failed: %v", err)
	}
	if batch.Quality != 1 {
		t.Errorf("expected quality 1, got %d", batch.Quality)
	}
	if batch.TargetDir != "results" {
		t.Errorf("expected target directory %q, got %q", "results", batch.TargetDir)
	}
}

func TestLoadBatchFileNoJobs(t *testing.T) {
	if _, err := LoadBatchFile(writeBatchFile(t, `tile_dir = "tiles"`)); err == nil {
		t.Error("expected an error for a batch file without jobs")
	}
}

func TestBatchConfig(t *testing.T) {
	batch := &Batch{
		TileRatio:   1.0,
		TileWidth:   10,
		MatchWidth:  4,
		Enlargement: 1.0,
		Grayscale:   true,
	}
	config, err := batch.Config()
	if err != nil {
		t.Fatalf("Config failed: %v", err)
	}
	if config.Mode != ModeGray {
		t.Errorf("expected gray mode, got %v", config.Mode)
	}
	batch.TileWidth = 0
	if _, err := batch.Config(); err == nil {
		t.Error("expected an error for an invalid tile width")
	}
}

func TestExpandJobTargets(t *testing.T) {
	batch := &Batch{
		Jobs: []BatchJob{
			{Source: "/photos/beach.jpg"},
			{Source: "/photos/city.png", Target: "/out/keep.png", Instructions: "/out/keep-inst.png"},
		},
	}
	batch.ExpandJobTargets("/out")
	if batch.Jobs[0].Target != filepath.Join("/out", "beach.jpg") {
		t.Errorf("unexpected derived target: %q", batch.Jobs[0].Target)
	}
	if batch.Jobs[0].Instructions != filepath.Join("/out", "beach-instructions.png") {
		t.Errorf("unexpected derived instructions path: %q", batch.Jobs[0].Instructions)
	}
	if batch.Jobs[1].Target != "/out/keep.png" || batch.Jobs[1].Instructions != "/out/keep-inst.png" {
		t.Errorf("explicit paths must be kept, got %+v", batch.Jobs[1])
	}
}

func TestBatchRun(t *testing.T) {
	dir := t.TempDir()
	tileDir := filepath.Join(dir, "tiles")
	if err := os.Mkdir(tileDir, 0755); err != nil {
		t.Fatalf("can't create tile directory: %v", err)
	}
	writeTestPNG(t, filepath.Join(tileDir, "0001.png"), red)
	writeTestPNG(t, filepath.Join(tileDir, "0002.png"), green)
	writeTestPNG(t, filepath.Join(tileDir, "0003.png"), blue)
	writeTestPNG(t, filepath.Join(tileDir, "0004.png"), white)

	sourcePath := filepath.Join(dir, "source.png")
	f, err := os.Create(sourcePath)
	if err != nil {
		t.Fatalf("can't create source image: %v", err)
	}
	encodeErr := png.Encode(f, quadrantImage(red, green, blue, white))
	f.Close()
	if encodeErr != nil {
		t.Fatalf("can't write source image: %v", encodeErr)
	}

	targetPath := filepath.Join(dir, "mosaic.png")
	instructionsPath := filepath.Join(dir, "instructions.png")
	batch := &Batch{
		TileDir:     tileDir,
		TileRatio:   1.0,
		TileWidth:   10,
		MatchWidth:  4,
		Enlargement: 1.0,
		Workers:     1,
		NumRoutines: 2,
		Jobs: []BatchJob{
			{Source: sourcePath, Target: targetPath, Instructions: instructionsPath},
		},
	}
	if err := batch.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	for _, path := range []string{targetPath, instructionsPath} {
		if _, err := os.Stat(path); err != nil {
			t.Errorf("expected output file %q: %v", path, err)
		}
	}
}

func TestBatchRunTargetDir(t *testing.T) {
	dir := t.TempDir()
	tileDir := filepath.Join(dir, "tiles")
	if err := os.Mkdir(tileDir, 0755); err != nil {
		t.Fatalf("can't create tile directory: %v", err)
	}
	writeTestPNG(t, filepath.Join(tileDir, "0001.png"), red)

	sourcePath := filepath.Join(dir, "photo.png")
	f, err := os.Create(sourcePath)
	if err != nil {
		t.Fatalf("can't create source image: %v", err)
	}
	encodeErr := png.Encode(f, uniformImage(20, 20, red))
	f.Close()
	if encodeErr != nil {
		t.Fatalf("can't write source image: %v", encodeErr)
	}

	targetDir := filepath.Join(dir, "results")
	if err := os.Mkdir(targetDir, 0755); err != nil {
		t.Fatalf("can't create target directory: %v", err)
	}
	batch := &Batch{
		TileDir:     tileDir,
		TargetDir:   targetDir,
		TileRatio:   1.0,
		TileWidth:   10,
		MatchWidth:  4,
		Enlargement: 1.0,
		Quality:     DefaultQuality,
		Reuse:       true,
		Jobs:        []BatchJob{{Source: sourcePath}},
	}
	if err := batch.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	// target and instruction paths are derived from the source name
	expected := []string{
		filepath.Join(targetDir, "photo.png"),
		filepath.Join(targetDir, "photo-instructions.png"),
	}
	for _, path := range expected {
		if _, err := os.Stat(path); err != nil {
			t.Errorf("expected derived output file %q: %v", path, err)
		}
	}
}
