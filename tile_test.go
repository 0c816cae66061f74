package main

import (
	"errors"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/paulmach/orb/maptile"
	"github.com/stretchr/testify/require"
)

func TestTileWriterPath(t *testing.T) {
	cfg := testConf(t, "")
	w := NewTileWriter(cfg)
	tile := maptile.Tile{X: 4, Y: 5, Z: 3}
	require.Equal(t, filepath.Join(cfg.OutDir, "3", "4", "5.png"), w.Path(tile))

	cfg.Format = AVIF
	require.Equal(t, filepath.Join(cfg.OutDir, "3", "4", "5.avif"), NewTileWriter(cfg).Path(tile))
}

func TestWriteTileCreatesDirsAndEncodes(t *testing.T) {
	cfg := testConf(t, "")
	w := NewTileWriter(cfg)
	tile := maptile.Tile{X: 2, Y: 3, Z: 1}

	require.False(t, w.Exists(tile))
	require.NoError(t, w.WriteTile(tile, imaging.New(16, 16, red)))
	require.True(t, w.Exists(tile))

	got, err := imaging.Open(w.Path(tile))
	require.NoError(t, err)
	require.Equal(t, 16, got.Bounds().Dx())
	require.EqualValues(t, 255, imaging.Clone(got).NRGBAAt(8, 8).A)
}

func TestWriteTileReplacesExistingAtomically(t *testing.T) {
	cfg := testConf(t, "")
	w := NewTileWriter(cfg)
	tile := maptile.Tile{X: 0, Y: 0, Z: 0}
	path := w.Path(tile)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("garbage"), 0o644))

	require.NoError(t, w.WriteTile(tile, imaging.New(16, 16, red)))

	// the destination is a complete encoded tile, never a partial mix
	_, err := imaging.Open(path)
	require.NoError(t, err)
}

func TestWriteTilePreservesAlpha(t *testing.T) {
	cfg := testConf(t, "")
	w := NewTileWriter(cfg)
	tile := maptile.Tile{X: 1, Y: 1, Z: 2}

	img := imaging.New(16, 16, color.NRGBA{})
	img = imaging.Paste(img, imaging.New(16, 8, red), image.Pt(0, 8))
	require.NoError(t, w.WriteTile(tile, img))

	got, err := imaging.Open(w.Path(tile))
	require.NoError(t, err)
	back := imaging.Clone(got)
	require.EqualValues(t, 0, back.NRGBAAt(8, 2).A)
	require.EqualValues(t, 255, back.NRGBAAt(8, 12).A)
}

func TestEncodeTileUnknownFormat(t *testing.T) {
	cfg := testConf(t, "")
	cfg.Format = "bmp"
	_, err := encodeTile(imaging.New(16, 16, red), cfg)
	require.True(t, errors.Is(err, ErrBadConfig))
}

func TestEncodeTileJPEG(t *testing.T) {
	cfg := testConf(t, "")
	cfg.Format = JPG
	buf, err := encodeTile(imaging.New(16, 16, red), cfg)
	require.NoError(t, err)
	require.NotEmpty(t, buf)
}
