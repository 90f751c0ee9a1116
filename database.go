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
	"os"
	"path/filepath"
	"strings"
)

// FSTileSource is a TileSource backed by an image file on the filesystem.
// The image is decoded on demand, not when the source is created.
type FSTileSource struct {
	// Path is the path of the image file.
	Path string
}

// NewFSTileSource returns a tile source for the given image file.
func NewFSTileSource(path string) FSTileSource {
	return FSTileSource{Path: path}
}

// Label returns the display label of the tile: the last four characters of
// the filename stem. Tile collections are conventionally numbered, so the
// trailing characters identify the physical tile in instruction diagrams.
func (source FSTileSource) Label() string {
	stem := filepath.Base(source.Path)
	if ext := filepath.Ext(stem); ext != "" {
		stem = strings.TrimSuffix(stem, ext)
	}
	// some collections carry a second extension in the stem
	if dot := strings.IndexByte(stem, '.'); dot >= 0 {
		stem = stem[:dot]
	}
	if len(stem) > 4 {
		stem = stem[len(stem)-4:]
	}
	return stem
}

// Load opens and decodes the image file.
func (source FSTileSource) Load() (image.Image, error) {
	r, openErr := os.Open(source.Path)
	if openErr != nil {
		return nil, openErr
	}
	defer r.Close()
	img, _, decodeErr := image.Decode(r)
	return img, decodeErr
}

// ListTileSources scans a directory for supported image files and returns
// them as tile sources, sorted by path. If recursive is true, the whole
// directory tree below root is scanned. filter decides which file
// extensions are supported; nil means JPGAndPNG.
func ListTileSources(root string, recursive bool, filter SupportedImageFunc) ([]TileSource, error) {
	root, absErr := filepath.Abs(root)
	if absErr != nil {
		return nil, absErr
	}
	if filter == nil {
		filter = JPGAndPNG
	}
	if recursive {
		return listTilesRecursive(root, filter)
	}
	return listTilesNonRecursive(root, filter)
}

func listTilesRecursive(root string, filter SupportedImageFunc) ([]TileSource, error) {
	var res []TileSource
	walkFunc := func(path string, info os.FileInfo, err error) error {
		switch {
		case err != nil:
			return err
		case !info.IsDir() && filter(filepath.Ext(path)):
			res = append(res, NewFSTileSource(path))
			return nil
		default:
			return nil
		}
	}
	if err := filepath.Walk(root, walkFunc); err != nil {
		return nil, err
	}
	return res, nil
}

func listTilesNonRecursive(root string, filter SupportedImageFunc) ([]TileSource, error) {
	files, err := os.ReadDir(root)
	if err != nil {
		return nil, err
	}
	var res []TileSource
	for _, file := range files {
		if !file.IsDir() && filter(filepath.Ext(file.Name())) {
			res = append(res, NewFSTileSource(filepath.Join(root, file.Name())))
		}
	}
	return res, nil
}

// LoadImageFile opens and decodes one image file, for example the source
// image of a mosaic.
func LoadImageFile(path string) (image.Image, error) {
	r, openErr := os.Open(path)
	if openErr != nil {
		return nil, openErr
	}
	defer r.Close()
	img, _, decodeErr := image.Decode(r)
	return img, decodeErr
}
