package main

import (
	"bytes"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strconv"

	"github.com/disintegration/imaging"
	"github.com/gen2brain/avif"
	"github.com/google/renameio/v2"
	"github.com/paulmach/orb/maptile"
)

// Constants representing TileFormat types
const (
	AVIF string = "avif"
	PNG         = "png"
	JPG         = "jpg"
)

// Tile 自定义瓦片存储
type Tile struct {
	T maptile.Tile
	C []byte
}

// TileWriter 唯一的落盘出口. 路径确定且互不冲突, 并发写无需加锁;
// 先写临时文件再原子重命名, 任何失败都不会在目标路径留下残缺文件
type TileWriter struct {
	cfg PyramidConf
}

func NewTileWriter(cfg PyramidConf) *TileWriter {
	return &TileWriter{cfg: cfg}
}

// Path 瓦片的确定性输出路径 out/<z>/<x>/<y>.<format>
func (w *TileWriter) Path(t maptile.Tile) string {
	dir := filepath.Join(w.cfg.OutDir, strconv.Itoa(int(t.Z)), strconv.FormatUint(uint64(t.X), 10))
	return filepath.Join(dir, fmt.Sprintf(`%d.%s`, t.Y, w.cfg.Format))
}

// Exists 目标文件在即视为已完成, 不设额外清单
func (w *TileWriter) Exists(t maptile.Tile) bool {
	_, err := os.Stat(w.Path(t))
	return err == nil
}

// WriteTile 编码并原子写入一块瓦片
func (w *TileWriter) WriteTile(t maptile.Tile, img image.Image) error {
	td := Tile{T: t}
	var err error
	if td.C, err = encodeTile(img, w.cfg); err != nil {
		return fmt.Errorf("encode tile %d/%d/%d: %w", t.Z, t.X, t.Y, err)
	}
	path := w.Path(t)
	if err := os.MkdirAll(filepath.Dir(path), os.ModePerm); err != nil {
		return fmt.Errorf("create tile directory for %s: %w", path, err)
	}
	if err := renameio.WriteFile(path, td.C, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func encodeTile(img image.Image, cfg PyramidConf) ([]byte, error) {
	var buf bytes.Buffer
	switch cfg.Format {
	case AVIF:
		if err := avif.Encode(&buf, img, avif.Options{
			Quality:      cfg.Quality,
			QualityAlpha: cfg.Quality,
			Speed:        cfg.Speed,
		}); err != nil {
			return nil, err
		}
	case JPG:
		if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(cfg.Quality)); err != nil {
			return nil, err
		}
	case PNG:
		if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: unknown tile format %q", ErrBadConfig, cfg.Format)
	}
	return buf.Bytes(), nil
}
