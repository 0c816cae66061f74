package main

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"unicode/utf8"
)

// 底图文件名约定: <anything>_<x>_<y>.<ext>, 只取末尾两组带符号整数
var basePattern = regexp.MustCompile(`^.*_(-?\d+)_(-?\d+)\.\w+$`)

// GridXY 底图在马赛克中的网格坐标
type GridXY struct {
	X, Y int64
}

// Bounds 网格包围盒, 闭区间
type Bounds struct {
	MinX, MinY, MaxX, MaxY int64
}

func (b Bounds) Width() int64  { return b.MaxX - b.MinX + 1 }
func (b Bounds) Height() int64 { return b.MaxY - b.MinY + 1 }

func (b Bounds) Contains(xy GridXY) bool {
	return xy.X >= b.MinX && xy.X <= b.MaxX && xy.Y >= b.MinY && xy.Y <= b.MaxY
}

// GridIndex 坐标到底图路径的只读索引, 构建完成后并发读取不加锁
type GridIndex struct {
	Bases  map[GridXY]string
	Bounds Bounds
}

// BuildGridIndex 扫描目录建立索引. fixed 非空时采用固定边界,
// 否则按已发现坐标的最值推导, 此时目录中无匹配文件视为错误
func BuildGridIndex(dir string, fixed *Bounds) (*GridIndex, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read input directory %s: %w", dir, err)
	}

	idx := &GridIndex{Bases: make(map[GridXY]string)}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if !utf8.ValidString(name) {
			return nil, fmt.Errorf("%w: %q", ErrNameEncoding, name)
		}
		m := basePattern.FindStringSubmatch(name)
		if m == nil {
			continue
		}
		x, err := strconv.ParseInt(m[1], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrPatternParse, name, err)
		}
		y, err := strconv.ParseInt(m[2], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrPatternParse, name, err)
		}
		// 同坐标后到者覆盖先到者, os.ReadDir 按名字排序, 结果确定
		idx.Bases[GridXY{x, y}] = filepath.Join(dir, name)
	}

	if fixed != nil {
		idx.Bounds = *fixed
		return idx, nil
	}
	if len(idx.Bases) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyInput, dir)
	}

	first := true
	for xy := range idx.Bases {
		if first {
			idx.Bounds = Bounds{xy.X, xy.Y, xy.X, xy.Y}
			first = false
			continue
		}
		if xy.X < idx.Bounds.MinX {
			idx.Bounds.MinX = xy.X
		}
		if xy.Y < idx.Bounds.MinY {
			idx.Bounds.MinY = xy.Y
		}
		if xy.X > idx.Bounds.MaxX {
			idx.Bounds.MaxX = xy.X
		}
		if xy.Y > idx.Bounds.MaxY {
			idx.Bounds.MaxY = xy.Y
		}
	}
	return idx, nil
}
