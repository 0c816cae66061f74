package main

import (
	"context"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
	"github.com/paulmach/orb/maptile"
	"golang.org/x/sync/errgroup"
	pb "gopkg.in/cheggaaa/pb.v1"
)

// ChopBases 把每张底图直接切进细层级, 不依赖合成底板.
// 以底图为并行单位, 单张底图内各深度/子瓦片顺序处理
func ChopBases(ctx context.Context, idx *GridIndex, cfg PyramidConf, w *TileWriter, bar *pb.ProgressBar) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Workers)
	for _, xy := range shuffledBases(idx) {
		// 固定边界模式下, 框外底图不参与
		if !idx.Bounds.Contains(xy) {
			continue
		}
		xy := xy
		g.Go(func() error {
			defer tick(bar)
			if err := ctx.Err(); err != nil {
				return err
			}
			return chopBase(xy, idx, cfg, w)
		})
	}
	return g.Wait()
}

func chopBase(xy GridXY, idx *GridIndex, cfg PyramidConf, w *TileWriter) error {
	path := idx.Bases[xy]
	decoded, err := imaging.Open(path)
	if err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	img := imaging.Clone(decoded)
	if fullyTransparent(img) {
		log.Debugf("base %d,%d fully transparent, no fine tiles", xy.X, xy.Y)
		return nil
	}
	log.Infof("loaded %s", path)

	gx := xy.X - idx.Bounds.MinX
	gy := xy.Y - idx.Bounds.MinY
	for depth := 0; ; depth++ {
		mult := 1 << depth
		if mult > cfg.tilesPerBase() || cfg.zoomOf(depth) <= cfg.CoarseMaxZoom {
			break
		}
		sub := cfg.tilesPerBase() / mult
		cropStep := cfg.TileSize * mult
		zoom := cfg.zoomOf(depth)
		for ty := 0; ty < sub; ty++ {
			for tx := 0; tx < sub; tx++ {
				dst := maptile.Tile{
					X: uint32(gx*int64(sub) + int64(tx)),
					Y: uint32(gy*int64(sub) + int64(ty)),
					Z: maptile.Zoom(zoom),
				}
				// 目标已存在则跳过, 文件本身就是完成标记
				if w.Exists(dst) {
					continue
				}
				crop := imaging.Crop(img, image.Rect(tx*cropStep, ty*cropStep, (tx+1)*cropStep, (ty+1)*cropStep))
				if fullyTransparent(crop) {
					continue
				}
				tile := imaging.Resize(crop, cfg.TileSize, cfg.TileSize, imaging.Lanczos)
				if err := w.WriteTile(dst, tile); err != nil {
					return err
				}
				log.Debugf("saved %dx%d in %d,%d as %d/%d/%d", tx, ty, xy.X, xy.Y, zoom, dst.X, dst.Y)
			}
		}
	}
	return nil
}
