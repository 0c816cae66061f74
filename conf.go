package main

import (
	"fmt"
	"math/bits"
	"os"
	"runtime"

	"github.com/spf13/viper"
)

var conf *Conf

type Conf struct {
	App struct {
		Version string `toml:"version"`
		Title   string `toml:"title"`
	} `toml:"app"`
	Output struct {
		Directory      string `toml:"directory"`
		Format         string `toml:"format"`
		LogDir         string `toml:"logDir"`
		OutputTerminal bool   `toml:"outputTerminal"`
	} `toml:"output"`
	Task struct {
		Workers  int  `toml:"workers"`
		Progress bool `toml:"progress"`
	} `toml:"task"`
	Pyramid struct {
		Input         string `toml:"input"`
		BaseSize      int    `toml:"baseSize"`
		TileSize      int    `toml:"tileSize"`
		ThumbSize     int    `toml:"thumbSize"`
		Quality       int    `toml:"quality"`
		Speed         int    `toml:"speed"`
		CoarseMaxZoom int    `toml:"coarseMaxZoom"`
		ZoomOffset    int    `toml:"zoomOffset"`
	} `toml:"pyramid"`
	Bounds struct {
		Mode string `toml:"mode"`
		MinX int64  `toml:"minX"`
		MinY int64  `toml:"minY"`
		MaxX int64  `toml:"maxX"`
		MaxY int64  `toml:"maxY"`
	} `toml:"bounds"`
}

// InitConf 初始化配置
func InitConf(cfgFile string) {
	if cfgFile == "" {
		cfgFile = "conf.toml"
	}
	viper.SetConfigType("toml")
	viper.SetConfigFile(cfgFile)
	viper.AutomaticEnv() // read in environment variables that match
	if _, err := os.Stat(cfgFile); err == nil {
		if err := viper.ReadInConfig(); err != nil {
			log.Warnf("read config file(%s) error, details: %s", viper.ConfigFileUsed(), err)
		}
	} else {
		log.Debugf("config file(%s) not found, using defaults", cfgFile)
	}
	// 设置默认值
	viper.SetDefault("app.version", "v 0.1.0")
	viper.SetDefault("app.title", "Grid Pyramider")
	viper.SetDefault("output.directory", "out")
	viper.SetDefault("output.format", "avif")
	viper.SetDefault("output.outputTerminal", true)
	viper.SetDefault("task.workers", runtime.NumCPU())
	viper.SetDefault("task.progress", true)
	viper.SetDefault("pyramid.baseSize", 4096)
	viper.SetDefault("pyramid.tileSize", 256)
	viper.SetDefault("pyramid.thumbSize", 256)
	viper.SetDefault("pyramid.quality", 70)
	viper.SetDefault("pyramid.speed", 10)
	viper.SetDefault("pyramid.coarseMaxZoom", -1)
	viper.SetDefault("pyramid.zoomOffset", -1)
	viper.SetDefault("bounds.mode", "auto")

	if err := viper.Unmarshal(&conf); err != nil {
		panic("配置文件解析失败")
	}
}

// PyramidConf 金字塔任务配置, 各组件显式传参, 不读全局
type PyramidConf struct {
	Input     string
	OutDir    string
	Format    string
	BaseSize  int
	TileSize  int
	ThumbSize int
	Quality   int
	Speed     int
	Workers   int
	Progress  bool
	// CoarseMaxZoom 粗切最高层级, -1 表示按网格宽度自动推导
	CoarseMaxZoom int
	// ZoomOffset 细切深度到绝对层级的偏移, -1 表示自动推导
	ZoomOffset  int
	FixedBounds *Bounds
}

// PyramidConfFromConf 从全局配置导出任务配置
func PyramidConfFromConf() PyramidConf {
	cfg := PyramidConf{
		Input:         conf.Pyramid.Input,
		OutDir:        conf.Output.Directory,
		Format:        conf.Output.Format,
		BaseSize:      conf.Pyramid.BaseSize,
		TileSize:      conf.Pyramid.TileSize,
		ThumbSize:     conf.Pyramid.ThumbSize,
		Quality:       conf.Pyramid.Quality,
		Speed:         conf.Pyramid.Speed,
		Workers:       conf.Task.Workers,
		Progress:      conf.Task.Progress,
		CoarseMaxZoom: conf.Pyramid.CoarseMaxZoom,
		ZoomOffset:    conf.Pyramid.ZoomOffset,
	}
	if inputDir != "" {
		cfg.Input = inputDir
	}
	if conf.Bounds.Mode == "fixed" {
		cfg.FixedBounds = &Bounds{
			MinX: conf.Bounds.MinX,
			MinY: conf.Bounds.MinY,
			MaxX: conf.Bounds.MaxX,
			MaxY: conf.Bounds.MaxY,
		}
	}
	return cfg
}

// tilesPerBase 一张底图在最细层级切出的瓦片边数
func (c PyramidConf) tilesPerBase() int { return c.BaseSize / c.TileSize }

// zoomOf 细切深度到绝对层级的映射, depth 0 为最细
func (c PyramidConf) zoomOf(depth int) int { return c.ZoomOffset - depth }

// resolve 校验配置并按网格边界推导自动项
func (c *PyramidConf) resolve(b Bounds) error {
	// 固定边界可能倒置, 必须先于一切推导拒绝
	if b.Width() <= 0 || b.Height() <= 0 {
		return fmt.Errorf("%w: inverted bounds %+v", ErrBadConfig, b)
	}
	if b.Width() != b.Height() {
		return fmt.Errorf("%w: %dx%d", ErrNonSquareGrid, b.Width(), b.Height())
	}
	if c.TileSize <= 0 || c.BaseSize <= 0 || c.BaseSize%c.TileSize != 0 {
		return fmt.Errorf("%w: baseSize %d not divisible by tileSize %d", ErrBadConfig, c.BaseSize, c.TileSize)
	}
	// 细切深度折半要求每边瓦片数是 2 的幂
	if tpb := c.tilesPerBase(); tpb&(tpb-1) != 0 {
		return fmt.Errorf("%w: tilesPerBase %d is not a power of two", ErrBadConfig, tpb)
	}
	if c.ThumbSize <= 0 {
		return fmt.Errorf("%w: thumbSize %d", ErrBadConfig, c.ThumbSize)
	}
	if c.Quality < 0 || c.Quality > 100 {
		return fmt.Errorf("%w: quality %d out of 0..100", ErrBadConfig, c.Quality)
	}
	if c.Speed < 0 || c.Speed > 10 {
		return fmt.Errorf("%w: speed %d out of 0..10", ErrBadConfig, c.Speed)
	}
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
	w := uint(b.Width())
	if c.CoarseMaxZoom < 0 {
		c.CoarseMaxZoom = bits.Len(w - 1)
	}
	if c.ZoomOffset < 0 {
		c.ZoomOffset = bits.Len(uint(b.Width())*uint(c.tilesPerBase()) - 1)
	}
	if c.ZoomOffset < c.CoarseMaxZoom {
		return fmt.Errorf("%w: zoomOffset %d below coarseMaxZoom %d", ErrBadConfig, c.ZoomOffset, c.CoarseMaxZoom)
	}
	return nil
}
