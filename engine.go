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
	"image"
	"math/rand"

	log "github.com/sirupsen/logrus"
)

// Placement is one assignment record: the tile chosen for one grid cell.
// Both the mosaic canvas and the build instructions consume placements.
type Placement struct {
	// TileIndex is the pool index of the chosen tile.
	TileIndex int
	// Label is the display label of the chosen tile.
	Label string
	// Box is the pixel bounding box of the filled cell.
	Box image.Rectangle
}

// StopReason describes why an assignment run ended.
type StopReason int

const (
	// StopCompleted means every cell got a tile assigned.
	StopCompleted StopReason = iota
	// StopPoolExhausted means the pool ran out of tiles with cells still
	// unfilled. This is an expected terminal condition when reuse is
	// disabled and the pool is smaller than the grid, not an error.
	StopPoolExhausted
	// StopCanceled means the run was canceled externally. The placements
	// produced until then are valid and should still be rendered and saved.
	StopCanceled
)

func (reason StopReason) String() string {
	switch reason {
	case StopCompleted:
		return "completed"
	case StopPoolExhausted:
		return "pool exhausted"
	case StopCanceled:
		return "canceled"
	default:
		return fmt.Sprintf("StopReason(%d)", reason)
	}
}

// AssignmentResult is the outcome of an assignment run: the placement
// records in traversal order and the reason the run ended.
type AssignmentResult struct {
	Placements []Placement
	Reason     StopReason
}

// AssignmentEngine assigns pool tiles to the grid cells of a source canvas.
//
// A run has two phases. First the full best-match ranking of every cell is
// computed; this only reads the pool and runs concurrently across cells.
// Then cells are walked in center-outward traversal order and assigned
// tiles sequentially: with reuse enabled every cell simply gets its best
// match, otherwise each cell gets the best ranked tile whose rotation group
// has not been consumed yet and consumes that group. The second phase must
// stay sequential, the order of consumption decides which tiles remain for
// later cells.
//
// An engine owns its availability state exclusively; concurrent mosaic jobs
// sharing one pool must use one engine each.
type AssignmentEngine struct {
	Pool   *TilePool
	Source *SourceCanvas

	// Reuse allows tiles to fill multiple cells. With reuse enabled every
	// cell gets the globally best match, even if that repeats one tile all
	// over the mosaic; that is the documented meaning of the flag.
	Reuse bool

	// ShufflePrefix is the number of leading cells of the traversal order
	// that are shuffled, see CoordsFromMiddle.
	ShufflePrefix int

	// NumRoutines is the number of goroutines used for the ranking phase.
	NumRoutines int

	// RandGen is used to shuffle the traversal prefix, may be nil (a
	// time-seeded generator is created then).
	RandGen *rand.Rand

	// Progress (may be nil) is called once per assigned cell.
	Progress ProgressFunc
}

// NewAssignmentEngine returns an engine for the given pool and canvas with
// the given reuse policy. The remaining fields can be set on the result.
func NewAssignmentEngine(pool *TilePool, source *SourceCanvas, reuse bool) *AssignmentEngine {
	return &AssignmentEngine{
		Pool:   pool,
		Source: source,
		Reuse:  reuse,
	}
}

// cellRanking associates one grid cell with its match ranking.
type cellRanking struct {
	box     image.Rectangle
	ranking []int
}

// Run executes both phases and returns the placements in traversal order.
//
// ctx is checked between cells during assignment: when it is canceled the
// run stops and returns the placements produced so far with reason
// StopCanceled. Cancellation and pool exhaustion are normal termination
// paths, not errors; the caller is expected to compose and save whatever
// was assigned.
func (engine *AssignmentEngine) Run(ctx context.Context) (*AssignmentResult, error) {
	config := engine.Source.Config()
	coords := CoordsFromMiddle(engine.Source.XTileCount, engine.Source.YTileCount,
		config.TileRatio, engine.ShufflePrefix, engine.RandGen)

	rankings := engine.computeRankings(coords)
	return engine.assign(ctx, rankings), nil
}

// computeRankings is the first phase: the best-match ranking for every cell
// in traversal order. Rankings are independent of each other and of any
// consumption state, so they are computed concurrently.
func (engine *AssignmentEngine) computeRankings(coords []image.Point) []cellRanking {
	numRoutines := engine.NumRoutines
	if numRoutines <= 0 {
		numRoutines = 1
	}
	rankings := make([]cellRanking, len(coords))

	jobs := make(chan int, BufferSize)
	done := make(chan bool, BufferSize)

	for w := 0; w < numRoutines; w++ {
		go func() {
			for next := range jobs {
				box := engine.Source.CellBox(coords[next].X, coords[next].Y)
				block := engine.Source.SampleBlock(box)
				ranking, rankErr := engine.Pool.BestMatchRanking(block)
				if rankErr != nil {
					// leaves the ranking nil, the cell is skipped in phase 2
					log.WithFields(log.Fields{
						log.ErrorKey: rankErr,
						"cellX":      coords[next].X,
						"cellY":      coords[next].Y,
					}).Error("Can't rank cell, skipping it")
				}
				rankings[next] = cellRanking{box: box, ranking: ranking}
				done <- true
			}
		}()
	}
	go func() {
		for i := range coords {
			jobs <- i
		}
		close(jobs)
	}()
	for range coords {
		<-done
	}
	return rankings
}

// assign is the second phase: walk the rankings in traversal order and emit
// one placement per cell until all cells are filled, the pool is exhausted
// or ctx is canceled.
func (engine *AssignmentEngine) assign(ctx context.Context, rankings []cellRanking) *AssignmentResult {
	progress := engine.Progress
	if progress == nil {
		progress = ProgressIgnore
	}
	// all rotation groups are available initially; without rotation each
	// tile forms its own group
	available := make(map[int]struct{}, engine.Pool.NumGroups())
	for i := 0; i < engine.Pool.NumGroups(); i++ {
		available[i] = struct{}{}
	}

	res := &AssignmentResult{
		Placements: make([]Placement, 0, len(rankings)),
		Reason:     StopCompleted,
	}
	for i, cell := range rankings {
		select {
		case <-ctx.Done():
			log.Info("Assignment canceled, keeping partial result")
			res.Reason = StopCanceled
			return res
		default:
		}
		if len(available) == 0 {
			log.WithFields(log.Fields{
				"assigned":  len(res.Placements),
				"remaining": len(rankings) - i,
			}).Info("Ran out of tiles, leaving remaining cells unfilled")
			res.Reason = StopPoolExhausted
			return res
		}
		if cell.ranking == nil {
			continue
		}
		chosen := -1
		if engine.Reuse {
			// reuse mode ignores consumption entirely
			chosen = cell.ranking[0]
		} else {
			for _, candidate := range cell.ranking {
				if _, ok := available[engine.Pool.Tile(candidate).Group]; ok {
					chosen = candidate
					break
				}
			}
			// the availability set is non-empty, so some candidate was found
			delete(available, engine.Pool.Tile(chosen).Group)
		}
		res.Placements = append(res.Placements, Placement{
			TileIndex: chosen,
			Label:     engine.Pool.Tile(chosen).Label,
			Box:       cell.box,
		})
		progress(len(res.Placements))
	}
	return res
}
