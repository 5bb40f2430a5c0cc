package render

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"sync"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"
	"github.com/golang/glog"
	"github.com/hoshinonyaruko/snake-autopilot/memimg"
	"github.com/hoshinonyaruko/snake-autopilot/session"
	"github.com/hoshinonyaruko/snake-autopilot/structs"
)

// 格子没有贴图时的颜色
var cellColors = map[structs.CellStatus][3]float64{
	structs.CellBody: {0.2, 0.6, 0.2},
	structs.CellHead: {0.1, 0.3, 0.1},
	structs.CellFood: {0.8, 0.1, 0.1},
}

// 全局缓存：网格底图按尺寸复用
var gridCache sync.Map

// PNG writes board images into Dir. As a session sink it follows the board
// tick by tick and writes the final frames when the game ends.
type PNG struct {
	Dir       string
	BlockSize int

	mu    sync.Mutex
	board *Board
}

// NewPNG returns a PNG renderer writing into dir.
func NewPNG(dir string, blockSize int) *PNG {
	return &PNG{Dir: dir, BlockSize: blockSize}
}

func (p *PNG) Start(snap session.Snapshot) {
	p.mu.Lock()
	p.board = BoardOf(snap)
	p.mu.Unlock()
}

func (p *PNG) Frame(id string, f structs.Frame) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.board != nil && p.board.ID == id {
		p.board.Apply(f)
	}
}

// GameOver writes <id>.png, a blurred <id>_over.png with the result on it
// and a small <id>_thumb.png.
func (p *PNG) GameOver(id string, r structs.Report) {
	p.mu.Lock()
	b := p.board
	p.mu.Unlock()
	if b == nil || b.ID != id {
		return
	}
	b.Report = r
	if err := p.saveGameOver(b); err != nil {
		glog.Errorf("rendering game over of %s: %v", id, err)
	}
}

// Render draws a snapshot to <Dir>/<id>.png and returns the file name.
func (p *PNG) Render(snap session.Snapshot) (string, error) {
	return p.save(BoardOf(snap))
}

func (p *PNG) save(b *Board) (string, error) {
	dc := p.draw(b)
	name := b.ID + ".png"
	if err := os.MkdirAll(p.Dir, os.ModePerm); err != nil {
		return "", err
	}
	return name, dc.SavePNG(filepath.Join(p.Dir, name))
}

func (p *PNG) saveGameOver(b *Board) error {
	if err := os.MkdirAll(p.Dir, os.ModePerm); err != nil {
		return err
	}
	board := p.draw(b).Image()
	if err := imaging.Save(board, filepath.Join(p.Dir, b.ID+".png")); err != nil {
		return err
	}

	// 模糊后写上结果
	dc := gg.NewContextForImage(imaging.Blur(board, 3.5))
	w, h := float64(dc.Width()), float64(dc.Height())
	dc.SetRGB(0.8, 0, 0)
	dc.DrawStringAnchored("GAME OVER", w/2, h/2, 0.5, 0.5)
	dc.SetRGB(0, 0, 0)
	dc.DrawStringAnchored(b.Report.String(), w/2, h/2+20, 0.5, 0.5)
	if err := dc.SavePNG(filepath.Join(p.Dir, b.ID+"_over.png")); err != nil {
		return err
	}

	thumb := imaging.Resize(dc.Image(), 200, 0, imaging.Lanczos)
	return imaging.Save(thumb, filepath.Join(p.Dir, b.ID+"_thumb.png"))
}

// draw renders the board: background, grid lines, then one block per cell.
func (p *PNG) draw(b *Board) *gg.Context {
	bs := p.BlockSize
	width, height := b.Width*bs, b.Height*bs

	dc := gg.NewContext(width, height)
	dc.DrawImage(gridImage(width, height, bs), 0, 0)

	for y := 0; y < b.Height; y++ {
		for x := 0; x < b.Width; x++ {
			status := b.At(x, y)
			if img, found := memimg.GetTile(status); found {
				dc.DrawImage(img, x*bs, y*bs)
				continue
			}
			c, ok := cellColors[status]
			if !ok {
				continue
			}
			dc.SetRGB(c[0], c[1], c[2])
			dc.DrawRectangle(float64(x*bs), float64(y*bs), float64(bs), float64(bs))
			dc.Fill()
		}
	}
	return dc
}

func gridImage(width, height, blockSize int) image.Image {
	key := fmt.Sprintf("%d_%d_%d", width, height, blockSize)
	if img, ok := gridCache.Load(key); ok {
		return img.(image.Image)
	}
	dc := gg.NewContext(width, height)
	dc.SetRGB(1, 1, 1)
	dc.Clear()
	renderGrid(dc, width, height, blockSize)
	img := dc.Image()
	gridCache.Store(key, img)
	return img
}

func renderGrid(dc *gg.Context, width, height, blockSize int) {
	dc.SetRGB(0.9, 0.9, 0.9)
	for x := 0; x <= width; x += blockSize {
		dc.DrawLine(float64(x), 0, float64(x), float64(height))
		dc.Stroke()
	}
	for y := 0; y <= height; y += blockSize {
		dc.DrawLine(0, float64(y), float64(width), float64(y))
		dc.Stroke()
	}
}
