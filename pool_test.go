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
	"strings"
	"testing"
)

func TestNewTilePoolEmpty(t *testing.T) {
	config := testConfig(t, false)
	_, err := NewTilePool(nil, config, nil, 1, nil)
	if !errors.Is(err, ErrPoolEmpty) {
		t.Errorf("expected ErrPoolEmpty for no sources, got %v", err)
	}
	// sources that all fail to load count as empty as well
	failing := []TileSource{
		memTileSource{label: "broken", err: errors.New("decode failed")},
	}
	_, err = NewTilePool(failing, config, nil, 1, nil)
	if !errors.Is(err, ErrPoolEmpty) {
		t.Errorf("expected ErrPoolEmpty for failing sources, got %v", err)
	}
}

func TestNewTilePoolSkipsFailingSources(t *testing.T) {
	config := testConfig(t, false)
	sources := colorSources(10, red, green)
	sources = append(sources, memTileSource{label: "broken", err: errors.New("decode failed")})
	pool, err := NewTilePool(sources, config, nil, 2, nil)
	if err != nil {
		t.Fatalf("NewTilePool failed: %v", err)
	}
	if pool.Len() != 2 {
		t.Errorf("expected 2 tiles, got %d", pool.Len())
	}
	if pool.NumGroups() != 2 {
		t.Errorf("expected 2 groups, got %d", pool.NumGroups())
	}
}

func TestNewTilePoolRotation(t *testing.T) {
	config := testConfig(t, true)
	pool, err := NewTilePool(colorSources(10, red, green, blue, white), config, nil, 4, nil)
	if err != nil {
		t.Fatalf("NewTilePool failed: %v", err)
	}
	if pool.Len() != 16 {
		t.Errorf("expected 16 tiles with rotation, got %d", pool.Len())
	}
	if pool.NumGroups() != 4 {
		t.Errorf("expected 4 groups, got %d", pool.NumGroups())
	}
	// variants directly follow their base tile and share its group
	for group := 0; group < 4; group++ {
		base := pool.Tile(group * 4)
		if base.Rotation != 0 {
			t.Errorf("group %d: first variant has rotation %d", group, base.Rotation)
		}
		for i := 0; i < 4; i++ {
			tile := pool.Tile(group*4 + i)
			if tile.Group != group {
				t.Errorf("tile %d: expected group %d, got %d", group*4+i, group, tile.Group)
			}
			if tile.Rotation != 90*i {
				t.Errorf("tile %d: expected rotation %d, got %d", group*4+i, 90*i, tile.Rotation)
			}
			if i == 0 {
				if tile.Label != base.Label {
					t.Errorf("base tile label changed: %q", tile.Label)
				}
			} else if !strings.HasPrefix(tile.Label, base.Label+"\nr") {
				t.Errorf("tile %d: unexpected label %q", group*4+i, tile.Label)
			}
		}
	}
	if got := pool.Tile(1).Label; got != "a\nr90→" {
		t.Errorf("expected label %q, got %q", "a\nr90→", got)
	}
}

func TestNewTilePoolTileDimensions(t *testing.T) {
	config := testConfig(t, false)
	// a non-square source must be cropped before resizing
	sources := []TileSource{
		memTileSource{label: "wide", img: uniformImage(40, 10, red)},
	}
	pool, err := NewTilePool(sources, config, nil, 1, nil)
	if err != nil {
		t.Fatalf("NewTilePool failed: %v", err)
	}
	bounds := pool.Tile(0).Render.Bounds()
	if bounds.Dx() != 10 || bounds.Dy() != 10 {
		t.Errorf("expected a 10x10 render, got %dx%d", bounds.Dx(), bounds.Dy())
	}
}

func TestBestMatchRanking(t *testing.T) {
	config := testConfig(t, false)
	pool, err := NewTilePool(colorSources(10, red, green, blue), config, nil, 1, nil)
	if err != nil {
		t.Fatalf("NewTilePool failed: %v", err)
	}
	width, height := config.MatchSize()
	block := downsampleArray(uniformImage(width, height, green), config)
	ranking, rankErr := pool.BestMatchRanking(block)
	if rankErr != nil {
		t.Fatalf("BestMatchRanking failed: %v", rankErr)
	}
	if len(ranking) != pool.Len() {
		t.Fatalf("expected %d entries, got %d", pool.Len(), len(ranking))
	}
	if pool.Tile(ranking[0]).Label != "b" {
		t.Errorf("expected the green tile first, got %q", pool.Tile(ranking[0]).Label)
	}
	// the ranking must be a permutation of all pool indices
	seen := make(map[int]bool, len(ranking))
	for _, index := range ranking {
		if index < 0 || index >= pool.Len() {
			t.Errorf("index %d out of range", index)
		}
		if seen[index] {
			t.Errorf("index %d appears twice", index)
		}
		seen[index] = true
	}
	// distances must be non-decreasing along the ranking
	distance := func(index int) float64 {
		sample := pool.tiles[index].sample
		var sum float64
		for k, v := range sample {
			diff := float64(v - block[k])
			sum += diff * diff
		}
		return sum / float64(len(sample))
	}
	for i := 1; i < len(ranking); i++ {
		if distance(ranking[i-1]) > distance(ranking[i]) {
			t.Errorf("ranking positions %d and %d are out of order (%v > %v)",
				i-1, i, distance(ranking[i-1]), distance(ranking[i]))
		}
	}
	// ranking the same block again must give the identical order
	again, againErr := pool.BestMatchRanking(block)
	if againErr != nil {
		t.Fatalf("second BestMatchRanking failed: %v", againErr)
	}
	for i := range ranking {
		if again[i] != ranking[i] {
			t.Errorf("position %d changed between identical queries: %d vs %d",
				i, ranking[i], again[i])
		}
	}
}

func TestBestMatchRankingBlockSize(t *testing.T) {
	config := testConfig(t, false)
	pool, err := NewTilePool(colorSources(10, red), config, nil, 1, nil)
	if err != nil {
		t.Fatalf("NewTilePool failed: %v", err)
	}
	if _, rankErr := pool.BestMatchRanking(make([]float32, 7)); rankErr == nil {
		t.Error("expected an error for a block of the wrong size")
	}
}
