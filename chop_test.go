package main

import (
	"context"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/require"
)

func choppedIndex(t *testing.T, cfg *PyramidConf) *GridIndex {
	t.Helper()
	idx, err := BuildGridIndex(cfg.Input, cfg.FixedBounds)
	require.NoError(t, err)
	require.NoError(t, cfg.resolve(idx.Bounds))
	return idx
}

func TestChopTileCounts(t *testing.T) {
	dir := t.TempDir()
	saveOpaqueBase(t, dir, "b_0_0.png", 64)
	cfg := testConf(t, dir)
	idx := choppedIndex(t, &cfg)

	// single cell: zooms 2 (finest, 4x4 per base) and 1 (2x2) are fine levels
	require.Equal(t, 2, cfg.ZoomOffset)
	require.Equal(t, 0, cfg.CoarseMaxZoom)

	require.NoError(t, ChopBases(context.Background(), idx, cfg, NewTileWriter(cfg), nil))

	require.Equal(t, 16, countFiles(t, filepath.Join(cfg.OutDir, "2", "*", "*.png")))
	require.Equal(t, 4, countFiles(t, filepath.Join(cfg.OutDir, "1", "*", "*.png")))
	require.Equal(t, 0, countFiles(t, filepath.Join(cfg.OutDir, "0", "*", "*.png")))

	tile, err := imaging.Open(filepath.Join(cfg.OutDir, "2", "3", "3.png"))
	require.NoError(t, err)
	require.Equal(t, cfg.TileSize, tile.Bounds().Dx())
}

func TestChopIdempotent(t *testing.T) {
	dir := t.TempDir()
	saveOpaqueBase(t, dir, "b_0_0.png", 64)
	cfg := testConf(t, dir)
	idx := choppedIndex(t, &cfg)
	w := NewTileWriter(cfg)

	require.NoError(t, ChopBases(context.Background(), idx, cfg, w, nil))

	mtimes := map[string]time.Time{}
	require.NoError(t, filepath.Walk(cfg.OutDir, func(path string, info os.FileInfo, err error) error {
		if err == nil && !info.IsDir() {
			mtimes[path] = info.ModTime()
		}
		return err
	}))
	require.NotEmpty(t, mtimes)

	// rerun over a complete tree performs zero writes
	require.NoError(t, ChopBases(context.Background(), idx, cfg, w, nil))
	for path, mt := range mtimes {
		info, err := os.Stat(path)
		require.NoError(t, err)
		require.Equal(t, mt, info.ModTime(), "rewritten: %s", path)
	}
}

func TestChopSkipsFullyTransparentBase(t *testing.T) {
	dir := t.TempDir()
	saveTransparentBase(t, dir, "b_0_0.png", 64)
	cfg := testConf(t, dir)
	idx := choppedIndex(t, &cfg)

	require.NoError(t, ChopBases(context.Background(), idx, cfg, NewTileWriter(cfg), nil))
	require.Equal(t, 0, countFiles(t, filepath.Join(cfg.OutDir, "*", "*", "*.png")))
}

func TestChopSkipsTransparentCrops(t *testing.T) {
	dir := t.TempDir()
	// top-left 32x32 quarter transparent, the rest opaque
	img := imaging.New(64, 64, color.NRGBA{})
	img = imaging.Paste(img, imaging.New(64, 32, red), image.Pt(0, 32))
	img = imaging.Paste(img, imaging.New(32, 32, red), image.Pt(32, 0))
	saveBase(t, dir, "b_0_0.png", img)

	cfg := testConf(t, dir)
	idx := choppedIndex(t, &cfg)
	require.NoError(t, ChopBases(context.Background(), idx, cfg, NewTileWriter(cfg), nil))

	// zoom 2: 16 candidates, 4 crops fully transparent
	require.Equal(t, 12, countFiles(t, filepath.Join(cfg.OutDir, "2", "*", "*.png")))
	// zoom 1: 4 candidates, the top-left one transparent
	require.Equal(t, 3, countFiles(t, filepath.Join(cfg.OutDir, "1", "*", "*.png")))
}

func TestChopDestinationFormula(t *testing.T) {
	dir := t.TempDir()
	saveOpaqueBase(t, dir, "b_2_3.png", 64)
	saveOpaqueBase(t, dir, "b_3_2.png", 64)
	saveOpaqueBase(t, dir, "b_2_2.png", 64)
	saveOpaqueBase(t, dir, "b_3_3.png", 64)
	cfg := testConf(t, dir)
	idx := choppedIndex(t, &cfg)

	require.NoError(t, ChopBases(context.Background(), idx, cfg, NewTileWriter(cfg), nil))

	// base (3,2) offset to grid cell (1,0): finest tiles dx 4..7, dy 0..3
	for dx := 4; dx <= 7; dx++ {
		for dy := 0; dy <= 3; dy++ {
			p := filepath.Join(cfg.OutDir, "3", strconv.Itoa(dx), strconv.Itoa(dy)+".png")
			_, err := os.Stat(p)
			require.NoError(t, err, "missing %s", p)
		}
	}
}
