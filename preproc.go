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
	"math"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"
)

const (
	// DefaultPixelBudget is the default target pixel count for preprocessed
	// images, roughly half a megapixel.
	DefaultPixelBudget = 500000
)

// PreprocessDirectory resizes every supported image in the root directory
// to roughly pixelBudget pixels, keeping the aspect ratio, and saves the
// results under the same names in targetDir (which is created if missing).
//
// Sources and mosaic inputs are often camera images of many megapixels;
// bringing them down to a fixed budget once makes repeated mosaic runs much
// cheaper. Images that fail to load are logged and skipped. numRoutines
// images are processed concurrently, progress (may be nil) is called once
// per processed image.
func PreprocessDirectory(root, targetDir string, pixelBudget int,
	resizer ImageResizer, numRoutines int, progress ProgressFunc) error {
	if pixelBudget <= 0 {
		pixelBudget = DefaultPixelBudget
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
	sources, listErr := ListTileSources(root, false, nil)
	if listErr != nil {
		return listErr
	}
	if mkdirErr := os.MkdirAll(targetDir, 0755); mkdirErr != nil {
		return mkdirErr
	}

	jobs := make(chan int, BufferSize)
	done := make(chan bool, BufferSize)

	for w := 0; w < numRoutines; w++ {
		go func() {
			for next := range jobs {
				source := sources[next].(FSTileSource)
				target := filepath.Join(targetDir, filepath.Base(source.Path))
				if err := preprocessImage(source, target, pixelBudget, resizer); err != nil {
					log.WithFields(log.Fields{
						log.ErrorKey: err,
						"image":      source.Path,
					}).Error("Can't preprocess image, skipping it")
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
	return nil
}

func preprocessImage(source FSTileSource, target string, pixelBudget int, resizer ImageResizer) error {
	img, loadErr := source.Load()
	if loadErr != nil {
		return loadErr
	}
	bounds := img.Bounds()
	pixels := bounds.Dx() * bounds.Dy()
	factor := math.Sqrt(float64(pixelBudget) / float64(pixels))
	width := int(float64(bounds.Dx()) * factor)
	height := int(float64(bounds.Dy()) * factor)
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	resized := resizer.Resize(uint(width), uint(height), img)
	return saveImage(target, resized, DefaultJPGQuality)
}
