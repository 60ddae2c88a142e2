// Package pixel renders kanji and monster sprites as terminal block art
// using half-block characters.
package pixel

import (
	"image"
	"image/color"
	"image/draw"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// fontPaths are searched in order for a face with Japanese coverage.
var fontPaths = []string{
	// macOS
	"/System/Library/Fonts/ヒラギノ角ゴシック W6.ttc",
	"/System/Library/Fonts/Hiragino Sans GB.ttc",
	"/System/Library/Fonts/PingFang.ttc",
	"/Library/Fonts/Arial Unicode.ttf",
	// Linux
	"/usr/share/fonts/opentype/noto/NotoSansCJK-Bold.ttc",
	"/usr/share/fonts/opentype/noto/NotoSansCJK-Regular.ttc",
	"/usr/share/fonts/noto-cjk/NotoSansCJK-Regular.ttc",
	"/usr/share/fonts/truetype/noto/NotoSansCJK-Regular.ttc",
	"/usr/share/fonts/opentype/ipafont-gothic/ipagp.ttf",
	"/usr/share/fonts/truetype/droid/DroidSansFallbackFull.ttf",
	// Windows
	"C:\\Windows\\Fonts\\YuGothB.ttc",
	"C:\\Windows\\Fonts\\msgothic.ttc",
}

var (
	faceOnce sync.Once
	face     font.Face
	faceMu   sync.Mutex // font.Face is not safe for concurrent use
)

func loadFace() font.Face {
	faceOnce.Do(func() {
		for _, path := range fontPaths {
			data, err := os.ReadFile(path)
			if err != nil {
				continue
			}
			if f := parseFace(data); f != nil {
				face = f
				return
			}
		}
	})
	return face
}

func parseFace(data []byte) font.Face {
	opts := &opentype.FaceOptions{Size: 64, DPI: 72}

	// Try parsing as font collection first
	if coll, err := opentype.ParseCollection(data); err == nil && coll.NumFonts() > 0 {
		if fnt, err := coll.Font(0); err == nil {
			if f, err := opentype.NewFace(fnt, opts); err == nil {
				return f
			}
		}
	}

	if fnt, err := opentype.Parse(data); err == nil {
		if f, err := opentype.NewFace(fnt, opts); err == nil {
			return f
		}
	}
	return nil
}

// Available reports whether a CJK font was found.
func Available() bool {
	return loadFace() != nil
}

// RenderText draws text with the system CJK font and returns it as block
// art cols cells wide and rows cells tall. It returns "" without a font.
func RenderText(text string, cols, rows int) string {
	f := loadFace()
	if text == "" || f == nil || cols <= 0 || rows <= 0 {
		return ""
	}

	faceMu.Lock()
	defer faceMu.Unlock()

	bounds, advance := font.BoundString(f, text)
	width := advance.Ceil()
	height := (bounds.Max.Y - bounds.Min.Y).Ceil()

	padding := 4
	srcWidth := max(width+padding*2, 64)
	srcHeight := max(height+padding*2, 64)

	src := image.NewGray(image.Rect(0, 0, srcWidth, srcHeight))
	draw.Draw(src, src.Bounds(), &image.Uniform{color.Black}, image.Point{}, draw.Src)

	d := &font.Drawer{
		Dst:  src,
		Src:  image.White,
		Face: f,
		Dot:  fixed.P((srcWidth-width)/2, srcHeight-padding-bounds.Max.Y.Ceil()),
	}
	d.DrawString(text)

	return halfBlocks(scaleDown(src, cols, rows*2), cols, rows)
}

var (
	cacheMu sync.Mutex
	cache   = make(map[cacheKey]string)
)

type cacheKey struct {
	text       string
	cols, rows int
}

// Cached returns RenderText output, rendering each size once.
func Cached(text string, cols, rows int) string {
	if !Available() {
		return ""
	}

	key := cacheKey{text, cols, rows}
	cacheMu.Lock()
	if cached, ok := cache[key]; ok {
		cacheMu.Unlock()
		return cached
	}
	cacheMu.Unlock()

	rendered := RenderText(text, cols, rows)

	cacheMu.Lock()
	cache[key] = rendered
	cacheMu.Unlock()
	return rendered
}

// scaleDown scales a grayscale image using area averaging
func scaleDown(src *image.Gray, dstWidth, dstHeight int) *image.Gray {
	srcWidth := src.Bounds().Max.X
	srcHeight := src.Bounds().Max.Y

	dst := image.NewGray(image.Rect(0, 0, dstWidth, dstHeight))

	xRatio := float64(srcWidth) / float64(dstWidth)
	yRatio := float64(srcHeight) / float64(dstHeight)

	for dy := 0; dy < dstHeight; dy++ {
		for dx := 0; dx < dstWidth; dx++ {
			sx1 := int(float64(dx) * xRatio)
			sy1 := int(float64(dy) * yRatio)
			sx2 := min(int(float64(dx+1)*xRatio), srcWidth)
			sy2 := min(int(float64(dy+1)*yRatio), srcHeight)

			var sum, count int
			for sy := sy1; sy < sy2; sy++ {
				for sx := sx1; sx < sx2; sx++ {
					sum += int(src.GrayAt(sx, sy).Y)
					count++
				}
			}

			if count > 0 {
				dst.SetGray(dx, dy, color.Gray{Y: uint8(sum / count)})
			}
		}
	}

	return dst
}

// threshold is the brightness above which a pixel counts as lit.
const threshold = 40

// halfBlocks converts a grayscale image to half-block art
func halfBlocks(img *image.Gray, cols, rows int) string {
	var sb strings.Builder

	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			// Each cell covers two vertical pixels
			topOn := brightness(img, col, row*2) > threshold
			bottomOn := brightness(img, col, row*2+1) > threshold

			switch {
			case topOn && bottomOn:
				sb.WriteRune('█')
			case topOn:
				sb.WriteRune('▀')
			case bottomOn:
				sb.WriteRune('▄')
			default:
				sb.WriteRune(' ')
			}
		}
		if row < rows-1 {
			sb.WriteRune('\n')
		}
	}

	return sb.String()
}

func brightness(img *image.Gray, x, y int) uint8 {
	if x < 0 || y < 0 || x >= img.Bounds().Max.X || y >= img.Bounds().Max.Y {
		return 0
	}
	return img.GrayAt(x, y).Y
}

// Palette maps sprite values 0-3 to terminal colors.
type Palette [4]lipgloss.TerminalColor

// Render draws g with two pixels per cell: the top pixel as the foreground
// of '▀' and the bottom pixel as its background.
func (g Grid) Render(p Palette) string {
	var sb strings.Builder
	for row := 0; row < len(g); row += 2 {
		for col := range g[row] {
			top := g[row][col]
			bottom := uint8(0)
			if row+1 < len(g) {
				bottom = g[row+1][col]
			}
			cell := lipgloss.NewStyle().Foreground(p[top&3]).Background(p[bottom&3])
			sb.WriteString(cell.Render("▀"))
		}
		if row+2 < len(g) {
			sb.WriteRune('\n')
		}
	}
	return sb.String()
}
