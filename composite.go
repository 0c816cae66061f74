package main

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"sync"

	"github.com/disintegration/imaging"
	"golang.org/x/sync/errgroup"
	pb "gopkg.in/cheggaaa/pb.v1"
)

// BuildComposite 为包围盒内每个已占用格子生成缩略图并拼成一张方形底板.
// 全透明缩略图按空格处理. 结果按坐标合并, 与完成顺序无关
func BuildComposite(ctx context.Context, idx *GridIndex, cfg PyramidConf, bar *pb.ProgressBar) (*image.NRGBA, error) {
	b := idx.Bounds
	// 画布分配前先验方形
	if b.Width() != b.Height() {
		return nil, fmt.Errorf("%w: %dx%d", ErrNonSquareGrid, b.Width(), b.Height())
	}

	var mu sync.Mutex
	thumbs := make(map[GridXY]*image.NRGBA)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Workers)
	for _, xy := range shuffledCells(b) {
		xy := xy
		g.Go(func() error {
			defer tick(bar)
			if err := ctx.Err(); err != nil {
				return err
			}
			path, ok := idx.Bases[xy]
			if !ok {
				return nil
			}
			img, err := imaging.Open(path)
			if err != nil {
				return fmt.Errorf("decode %s: %w", path, err)
			}
			thumb := imaging.Resize(img, cfg.ThumbSize, cfg.ThumbSize, imaging.Lanczos)
			if fullyTransparent(thumb) {
				log.Debugf("cell %d,%d fully transparent, dropped from composite", xy.X, xy.Y)
				return nil
			}
			mu.Lock()
			thumbs[xy] = thumb
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	side := int(b.Width()) * cfg.ThumbSize
	canvas := imaging.New(side, side, color.NRGBA{})
	for xy, thumb := range thumbs {
		x := int(xy.X-b.MinX) * cfg.ThumbSize
		y := int(xy.Y-b.MinY) * cfg.ThumbSize
		// 直接绘入同一张画布, 不做整幅复制
		draw.Draw(canvas, image.Rect(x, y, x+cfg.ThumbSize, y+cfg.ThumbSize), thumb, image.Point{}, draw.Src)
	}
	return canvas, nil
}
