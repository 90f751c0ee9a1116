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
	"errors"
	"fmt"
	"image"
)

var (
	// ErrPoolEmpty is returned when a tile pool is created without any tile
	// sources. A mosaic can't be generated without tiles, so this error is
	// fatal for the whole job.
	ErrPoolEmpty = errors.New("no tile images supplied")
)

// ConfigError is returned when a Config is created with invalid parameters,
// for example a non-positive tile width. Nothing can proceed with an invalid
// configuration, so this error is fatal as well.
type ConfigError struct {
	// Field is the name of the offending parameter.
	Field string
	// Reason describes what is wrong with the value.
	Reason string
}

// NewConfigError returns a new ConfigError given the parameter name and a
// description of the violation.
func NewConfigError(field, reason string) *ConfigError {
	return &ConfigError{Field: field, Reason: reason}
}

func (err *ConfigError) Error() string {
	return fmt.Sprintf("invalid config: %s %s", err.Field, err.Reason)
}

// SizeMismatchError is reported when a tile image handed to a mosaic canvas
// does not exactly fit the cell it was assigned to. This indicates an
// inconsistency between the tile pool and the configuration; the affected
// cell is usually skipped (keeping the source pixels) instead of silently
// distorting the tile.
type SizeMismatchError struct {
	// Box is the cell the tile was assigned to.
	Box image.Rectangle
	// Width and Height are the dimensions of the tile image.
	Width, Height int
}

func (err *SizeMismatchError) Error() string {
	return fmt.Sprintf("tile size %dx%d does not match cell %v",
		err.Width, err.Height, err.Box)
}
