package main

import (
	"image"
	"math/rand"

	pb "gopkg.in/cheggaaa/pb.v1"
)

// shuffledCells 包围盒内全部格子(含空格), 显式乱序后再派发,
// 避免同代价的解码任务扎堆
func shuffledCells(b Bounds) []GridXY {
	cells := make([]GridXY, 0, b.Width()*b.Height())
	for x := b.MinX; x <= b.MaxX; x++ {
		for y := b.MinY; y <= b.MaxY; y++ {
			cells = append(cells, GridXY{x, y})
		}
	}
	rand.Shuffle(len(cells), func(i, j int) { cells[i], cells[j] = cells[j], cells[i] })
	return cells
}

// shuffledBases 已占用格子乱序列表
func shuffledBases(idx *GridIndex) []GridXY {
	cells := make([]GridXY, 0, len(idx.Bases))
	for xy := range idx.Bases {
		cells = append(cells, xy)
	}
	rand.Shuffle(len(cells), func(i, j int) { cells[i], cells[j] = cells[j], cells[i] })
	return cells
}

// fullyTransparent 全图 alpha 为零, 只针对 8-bit NRGBA
func fullyTransparent(img *image.NRGBA) bool {
	w := img.Rect.Dx() * 4
	for y := 0; y < img.Rect.Dy(); y++ {
		row := img.Pix[y*img.Stride : y*img.Stride+w]
		for i := 3; i < len(row); i += 4 {
			if row[i] != 0 {
				return false
			}
		}
	}
	return true
}

func tick(bar *pb.ProgressBar) {
	if bar != nil {
		bar.Increment()
	}
}
