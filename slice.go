package main

import (
	"context"
	"image"

	"github.com/disintegration/imaging"
	"github.com/paulmach/orb/maptile"
	"golang.org/x/sync/errgroup"
	pb "gopkg.in/cheggaaa/pb.v1"
)

// SliceComposite 把合成底板按层四分切出粗层级 0..=CoarseMaxZoom.
// 层级 z 切 2^z × 2^z 个象限, 每次运行整体重切, 不做存在性跳过
func SliceComposite(ctx context.Context, canvas *image.NRGBA, cfg PyramidConf, w *TileWriter, bar *pb.ProgressBar) error {
	side := canvas.Bounds().Dx()

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Workers)
	for z := 0; z <= cfg.CoarseMaxZoom; z++ {
		zoom := cfg.zoomOf(cfg.ZoomOffset - z) // 粗层级即绝对层级
		parts := 1 << z
		quad := side / parts
		for qx := 0; qx < parts; qx++ {
			for qy := 0; qy < parts; qy++ {
				qx, qy := qx, qy
				g.Go(func() error {
					defer tick(bar)
					if err := ctx.Err(); err != nil {
						return err
					}
					crop := imaging.Crop(canvas, image.Rect(qx*quad, qy*quad, (qx+1)*quad, (qy+1)*quad))
					t := imaging.Resize(crop, cfg.TileSize, cfg.TileSize, imaging.Lanczos)
					return w.WriteTile(maptile.Tile{X: uint32(qx), Y: uint32(qy), Z: maptile.Zoom(zoom)}, t)
				})
			}
		}
	}
	return g.Wait()
}

// coarseTileCount 粗切阶段的瓦片总数
func coarseTileCount(cfg PyramidConf) int {
	n := 0
	for z := 0; z <= cfg.CoarseMaxZoom; z++ {
		n += 1 << (2 * z)
	}
	return n
}
