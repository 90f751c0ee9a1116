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
	"math"
	"math/rand"
	"sort"
	"time"
)

// CoordsFromMiddle enumerates all cells of an xCount × yCount grid ordered
// by their distance from the grid center, closest first. The distance is
// |x - xCount/2| * yBias + |y - yCount/2| with the midpoints truncated;
// callers usually pass the tile ratio as yBias so that the order
// approximates physical distance on a grid of non-square tiles. Ties keep
// the enumeration order, which is column-major (x outer, y inner).
//
// The first shufflePrefix entries of the sorted order are then randomly
// shuffled. Filling proceeds center-outwards because tiles get consumed as
// the mosaic fills up: the center should get the good matches. Shuffling
// just the start of the order avoids lines of the same well-matching tile
// right in the middle without disturbing the overall fill direction.
//
// randGen may be nil, in which case a time-seeded generator is created.
// Note that rand.Rand instances are not safe for concurrent use.
//
// The result contains every cell of the grid exactly once.
func CoordsFromMiddle(xCount, yCount int, yBias float64, shufflePrefix int, randGen *rand.Rand) []image.Point {
	xMid, yMid := xCount/2, yCount/2
	coords := make([]image.Point, 0, xCount*yCount)
	for x := 0; x < xCount; x++ {
		for y := 0; y < yCount; y++ {
			coords = append(coords, image.Pt(x, y))
		}
	}
	key := func(p image.Point) float64 {
		return math.Abs(float64(p.X-xMid))*yBias + math.Abs(float64(p.Y-yMid))
	}
	sort.SliceStable(coords, func(i, j int) bool {
		return key(coords[i]) < key(coords[j])
	})
	shuffleFirst(coords, shufflePrefix, randGen)
	return coords
}

// shuffleFirst shuffles the first prefix entries of coords in place, the
// remaining entries keep their order.
func shuffleFirst(coords []image.Point, prefix int, randGen *rand.Rand) {
	if prefix <= 0 {
		return
	}
	if randGen == nil {
		randGen = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if prefix > len(coords) {
		prefix = len(coords)
	}
	randGen.Shuffle(prefix, func(i, j int) {
		coords[i], coords[j] = coords[j], coords[i]
	})
}
