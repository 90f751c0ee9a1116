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
	"strings"

	"github.com/fogleman/gg"
	"golang.org/x/image/font/basicfont"
)

// InstructionEntry is one line of the build instructions: which tile goes
// into which cell.
type InstructionEntry struct {
	Label string
	Box   image.Rectangle
}

// BuildInstructions records which tile was placed in which cell, in
// assignment order. It is a pure accumulator meant for people physically
// building the mosaic (for example from wooden tiles): the Render method
// draws a diagram with the grid and the tile labels.
type BuildInstructions struct {
	entries []InstructionEntry
}

// NewBuildInstructions returns an empty instruction list.
func NewBuildInstructions() *BuildInstructions {
	return &BuildInstructions{}
}

// AddTile appends one (label, box) record.
func (instructions *BuildInstructions) AddTile(label string, box image.Rectangle) {
	instructions.entries = append(instructions.entries, InstructionEntry{Label: label, Box: box})
}

// Entries returns the recorded entries in assignment order.
func (instructions *BuildInstructions) Entries() []InstructionEntry {
	return instructions.entries
}

// Len returns the number of recorded entries.
func (instructions *BuildInstructions) Len() int {
	return len(instructions.entries)
}

// Render draws the instruction diagram and saves it as png: the outline of
// every recorded cell and the tile label centered inside it. scale divides
// the mosaic pixel coordinates, so a scale of 2 renders the diagram at half
// the mosaic size; values < 1 are treated as 1.
func (instructions *BuildInstructions) Render(path string, scale float64) error {
	if scale < 1 {
		scale = 1
	}
	// the diagram spans all recorded boxes
	var bounds image.Rectangle
	for _, entry := range instructions.entries {
		bounds = bounds.Union(entry.Box)
	}
	width := int(float64(bounds.Max.X) / scale)
	height := int(float64(bounds.Max.Y) / scale)
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}

	dc := gg.NewContext(width, height)
	dc.SetRGB(1, 1, 1)
	dc.Clear()
	dc.SetFontFace(basicfont.Face7x13)

	dc.SetRGB(1, 0, 0)
	dc.SetLineWidth(0.5)
	for _, entry := range instructions.entries {
		box := entry.Box
		dc.DrawRectangle(float64(box.Min.X)/scale, float64(box.Min.Y)/scale,
			float64(box.Dx())/scale, float64(box.Dy())/scale)
	}
	dc.Stroke()

	dc.SetRGB(0, 0, 0)
	for _, entry := range instructions.entries {
		box := entry.Box
		cx := (float64(box.Min.X) + float64(box.Dx())/2) / scale
		cy := (float64(box.Min.Y) + float64(box.Dy())/2) / scale
		lines := strings.Split(entry.Label, "\n")
		lineHeight := 13.0
		top := cy - lineHeight*float64(len(lines)-1)/2
		for i, line := range lines {
			dc.DrawStringAnchored(line, cx, top+float64(i)*lineHeight, 0.5, 0.5)
		}
	}
	return dc.SavePNG(path)
}
