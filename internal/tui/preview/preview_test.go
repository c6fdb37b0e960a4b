package preview

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBlocks(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 4, 2))
	// column 0: both lit, 1: top only, 2: bottom only, 3: dark
	img.SetGray(0, 0, color.Gray{Y: 255})
	img.SetGray(0, 1, color.Gray{Y: 255})
	img.SetGray(1, 0, color.Gray{Y: 255})
	img.SetGray(2, 1, color.Gray{Y: 255})

	assert.Equal(t, "█▀▄ ", Blocks(img, 4, 1))
}

func TestBlocksOutOfRangeIsDark(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 1, 1))
	img.SetGray(0, 0, color.Gray{Y: 255})

	assert.Equal(t, "▀ \n  ", Blocks(img, 2, 2))
}

func TestScaleDownAverages(t *testing.T) {
	src := image.NewGray(image.Rect(0, 0, 4, 4))
	for x := 0; x < 2; x++ {
		for y := 0; y < 4; y++ {
			src.SetGray(x, y, color.Gray{Y: 200})
		}
	}

	dst := scaleDown(src, 2, 2)
	assert.Equal(t, uint8(200), dst.GrayAt(0, 0).Y)
	assert.Equal(t, uint8(0), dst.GrayAt(1, 1).Y)
}

func TestFit(t *testing.T) {
	tests := []struct {
		w, h, maxW, maxH int
		wantW, wantH     int
	}{
		{100, 100, 20, 20, 20, 20},
		{200, 100, 20, 20, 20, 10},
		{100, 400, 20, 20, 5, 20},
		{1000, 1, 20, 20, 20, 1},
		{0, 10, 20, 20, 0, 0},
	}
	for _, tt := range tests {
		w, h := Fit(tt.w, tt.h, tt.maxW, tt.maxH)
		assert.Equal(t, tt.wantW, w)
		assert.Equal(t, tt.wantH, h)
	}
}

func TestRenderCellCount(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 40, 40))
	out := Render(img, 10, 5)

	lines := strings.Split(out, "\n")
	assert.Len(t, lines, 5)
	assert.Equal(t, 50, strings.Count(out, "▀"))
	assert.Empty(t, Render(img, 0, 5))
}

func TestThumbnail(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sky.png")
	f, err := os.Create(path)
	require.NoError(t, err)
	img := image.NewRGBA(image.Rect(0, 0, 8, 4))
	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())

	out, err := Thumbnail(path, 8, 8)
	require.NoError(t, err)
	assert.Equal(t, 8*2, strings.Count(out, "▀"))

	_, err = Thumbnail(filepath.Join(t.TempDir(), "missing.png"), 8, 8)
	assert.Error(t, err)
}

func TestScoreWithoutFont(t *testing.T) {
	if Available() {
		out := Score(75, 6, 4)
		assert.Len(t, strings.Split(out, "\n"), 4)
		return
	}
	assert.Empty(t, Score(75, 6, 4))
}
