// Package preview renders large score digits and image thumbnails as
// half-block terminal art.
package preview

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"os"
	"strings"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// fontPaths are tried in order; the first parseable font wins.
var fontPaths = []string{
	// macOS
	"/System/Library/Fonts/Helvetica.ttc",
	"/System/Library/Fonts/SFNS.ttf",
	"/Library/Fonts/Arial.ttf",
	// Linux
	"/usr/share/fonts/truetype/dejavu/DejaVuSans-Bold.ttf",
	"/usr/share/fonts/TTF/DejaVuSans-Bold.ttf",
	"/usr/share/fonts/dejavu/DejaVuSans-Bold.ttf",
	"/usr/share/fonts/truetype/liberation/LiberationSans-Bold.ttf",
	"/usr/share/fonts/opentype/noto/NotoSans-Bold.ttf",
	// Windows
	"C:\\Windows\\Fonts\\arialbd.ttf",
	"C:\\Windows\\Fonts\\segoeuib.ttf",
}

var (
	faceOnce   sync.Once
	loadedFace font.Face

	cacheMu sync.Mutex
	cache   = make(map[string]string)
)

func face() font.Face {
	faceOnce.Do(func() {
		for _, path := range fontPaths {
			data, err := os.ReadFile(path)
			if err != nil {
				continue
			}
			if f := parseFace(data); f != nil {
				loadedFace = f
				return
			}
		}
	})
	return loadedFace
}

func parseFace(data []byte) font.Face {
	opts := &opentype.FaceOptions{Size: 64, DPI: 72}

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

// Available reports whether a font was found for big digits.
func Available() bool {
	return face() != nil
}

// Score renders a 0..100 score as block art, cols by rows cells per
// digit. It returns "" when no font is available, so callers can fall
// back to plain text.
func Score(score, cols, rows int) string {
	f := face()
	if f == nil || cols <= 0 || rows <= 0 {
		return ""
	}

	text := fmt.Sprintf("%d", score)
	key := fmt.Sprintf("%s/%d/%d", text, cols, rows)

	cacheMu.Lock()
	defer cacheMu.Unlock()
	if s, ok := cache[key]; ok {
		return s
	}

	glyphs := make([][]string, 0, len(text))
	for _, r := range text {
		glyphs = append(glyphs, strings.Split(renderGlyph(f, r, cols, rows), "\n"))
	}
	out := joinColumns(glyphs, rows)
	cache[key] = out
	return out
}

func renderGlyph(f font.Face, r rune, cols, rows int) string {
	bounds, _, ok := f.GlyphBounds(r)
	if !ok {
		return blank(cols, rows)
	}
	glyphWidth := (bounds.Max.X - bounds.Min.X).Ceil()
	glyphHeight := (bounds.Max.Y - bounds.Min.Y).Ceil()

	const padding = 4
	srcWidth := max(glyphWidth+padding*2, 32)
	srcHeight := max(glyphHeight+padding*2, 64)

	src := image.NewGray(image.Rect(0, 0, srcWidth, srcHeight))
	draw.Draw(src, src.Bounds(), &image.Uniform{color.Black}, image.Point{}, draw.Src)

	d := &font.Drawer{
		Dst:  src,
		Src:  image.White,
		Face: f,
		Dot:  fixed.P((srcWidth-glyphWidth)/2-bounds.Min.X.Floor(), srcHeight-padding-bounds.Max.Y.Ceil()),
	}
	d.DrawString(string(r))

	return Blocks(scaleDown(src, cols, rows*2), cols, rows)
}

func joinColumns(glyphs [][]string, rows int) string {
	var b strings.Builder
	for row := 0; row < rows; row++ {
		for i, g := range glyphs {
			if i > 0 {
				b.WriteByte(' ')
			}
			if row < len(g) {
				b.WriteString(g[row])
			}
		}
		if row < rows-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func blank(cols, rows int) string {
	line := strings.Repeat(" ", cols)
	lines := make([]string, rows)
	for i := range lines {
		lines[i] = line
	}
	return strings.Join(lines, "\n")
}

// scaleDown shrinks a grayscale image by area averaging.
func scaleDown(src *image.Gray, dstWidth, dstHeight int) *image.Gray {
	srcWidth := src.Bounds().Dx()
	srcHeight := src.Bounds().Dy()
	dst := image.NewGray(image.Rect(0, 0, dstWidth, dstHeight))

	xRatio := float64(srcWidth) / float64(dstWidth)
	yRatio := float64(srcHeight) / float64(dstHeight)

	for dy := 0; dy < dstHeight; dy++ {
		for dx := 0; dx < dstWidth; dx++ {
			sx1, sy1 := int(float64(dx)*xRatio), int(float64(dy)*yRatio)
			sx2 := min(int(float64(dx+1)*xRatio), srcWidth)
			sy2 := min(int(float64(dy+1)*yRatio), srcHeight)

			var sum, count int
			for sy := sy1; sy < sy2; sy++ {
				for sx := sx1; sx < sx2; sx++ {
					sum += int(src.GrayAt(src.Bounds().Min.X+sx, src.Bounds().Min.Y+sy).Y)
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

// threshold is the brightness above which a half cell is drawn.
const threshold = 40

// Blocks converts a grayscale image to monochrome half-block art. Each
// cell covers two vertical pixels.
func Blocks(img *image.Gray, cols, rows int) string {
	var b strings.Builder
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			top := brightness(img, col, row*2) > threshold
			bottom := brightness(img, col, row*2+1) > threshold

			switch {
			case top && bottom:
				b.WriteRune('█')
			case top:
				b.WriteRune('▀')
			case bottom:
				b.WriteRune('▄')
			default:
				b.WriteRune(' ')
			}
		}
		if row < rows-1 {
			b.WriteRune('\n')
		}
	}
	return b.String()
}

func brightness(img *image.Gray, x, y int) uint8 {
	b := img.Bounds()
	if x < 0 || y < 0 || x >= b.Dx() || y >= b.Dy() {
		return 0
	}
	return img.GrayAt(b.Min.X+x, b.Min.Y+y).Y
}
