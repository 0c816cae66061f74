package main

import (
	"context"
	"fmt"
	"time"

	"github.com/teris-io/shortid"
	pb "gopkg.in/cheggaaa/pb.v1"
)

func InitTask() {
	start := time.Now()

	cfg := PyramidConfFromConf()
	task, err := NewPyramid(cfg)
	if err != nil {
		log.Fatalf("pyramid setup failed: %s", err)
	}
	// 注册安全退出
	SafeExitInst.Register(task.Abort)

	if err := task.Run(); err != nil {
		log.Fatalf("pyramid build failed: %s", err)
	}

	secs := time.Since(start).Seconds()
	log.Printf("\n%.3fs finished...", secs)
}

// Pyramid 一次金字塔构建任务
type Pyramid struct {
	ID     string
	cfg    PyramidConf
	idx    *GridIndex
	writer *TileWriter
	ctx    context.Context
	cancel context.CancelFunc
}

// NewPyramid 建立索引, 推导配置, 准备运行
func NewPyramid(cfg PyramidConf) (*Pyramid, error) {
	id, _ := shortid.Generate()

	idx, err := BuildGridIndex(cfg.Input, cfg.FixedBounds)
	if err != nil {
		return nil, err
	}
	if err := cfg.resolve(idx.Bounds); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Pyramid{
		ID:     id,
		cfg:    cfg,
		idx:    idx,
		writer: NewTileWriter(cfg),
		ctx:    ctx,
		cancel: cancel,
	}, nil
}

// Abort 取消运行, 在途单元经由 errgroup 短路收尾
func (p *Pyramid) Abort() {
	log.Infof("Task %s got canceled.", p.ID)
	p.cancel()
}

// Run 依次执行: 合成底板 → (屏障) → 粗切 → 细切.
// 细切不依赖底板, 作为第二批运行只是为了进度展示更清晰
func (p *Pyramid) Run() error {
	b := p.idx.Bounds
	log.Infof("Task %s: %d bases, grid %dx%d, zoom 0..%d, format %s",
		p.ID, len(p.idx.Bases), b.Width(), b.Height(), p.cfg.ZoomOffset, p.cfg.Format)

	bar := p.newBar(int(b.Width()*b.Height()), "Composite")
	canvas, err := BuildComposite(p.ctx, p.idx, p.cfg, bar)
	if err != nil {
		return err
	}
	p.finishBar(bar, fmt.Sprintf("Task %s composite %dx%d ready ~", p.ID, canvas.Bounds().Dx(), canvas.Bounds().Dy()))

	// 粗切必须等所有格子的缩略图去留定论之后才能开始
	bar = p.newBar(coarseTileCount(p.cfg), "Coarse")
	if err := SliceComposite(p.ctx, canvas, p.cfg, p.writer, bar); err != nil {
		return err
	}
	p.finishBar(bar, fmt.Sprintf("Task %s coarse levels 0..%d finished ~", p.ID, p.cfg.CoarseMaxZoom))

	bar = p.newBar(len(p.idx.Bases), "Fine")
	if err := ChopBases(p.ctx, p.idx, p.cfg, p.writer, bar); err != nil {
		return err
	}
	p.finishBar(bar, fmt.Sprintf("Task %s fine levels %d..%d finished ~", p.ID, p.cfg.CoarseMaxZoom+1, p.cfg.ZoomOffset))
	return nil
}

func (p *Pyramid) newBar(total int, phase string) *pb.ProgressBar {
	if !p.cfg.Progress {
		return nil
	}
	bar := pb.New(total).Prefix(fmt.Sprintf("%s : ", phase))
	bar.SetRefreshRate(time.Second)
	bar.Start()
	return bar
}

func (p *Pyramid) finishBar(bar *pb.ProgressBar, msg string) {
	if bar == nil {
		log.Infoln(msg)
		return
	}
	bar.FinishPrint(msg)
}
