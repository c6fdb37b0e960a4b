package collector

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/f3rmion/moodlog/internal/journal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"
)

func writePNG(t *testing.T, dir string, w, h int) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})

	path := filepath.Join(dir, "sunset.png")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
	return path
}

func TestCanSubmitTracksActiveMode(t *testing.T) {
	c := New()
	assert.Equal(t, journal.ModeText, c.Mode())
	assert.False(t, c.CanSubmit())

	c.SetText("   \n\t")
	assert.False(t, c.CanSubmit())

	c.SetText("today felt lighter")
	assert.True(t, c.CanSubmit())

	c.SetMode(journal.ModeImage)
	assert.False(t, c.CanSubmit(), "text draft must not enable image mode")

	_, err := c.SelectImage(writePNG(t, t.TempDir(), 4, 3))
	require.NoError(t, err)
	assert.True(t, c.CanSubmit())

	c.SetMode(journal.ModeSocial)
	assert.False(t, c.CanSubmit())
	c.SetURL("  ")
	assert.False(t, c.CanSubmit())
	c.SetURL("not a url")
	assert.True(t, c.CanSubmit(), "validation is advisory")
}

func TestTopicPerMode(t *testing.T) {
	c := New()
	c.SetText("  grateful for rain  ")
	assert.Equal(t, "grateful for rain", c.Topic())

	c.SetMode(journal.ModeImage)
	assert.Equal(t, "Image analysis", c.Topic())

	c.SetMode(journal.ModeSocial)
	c.SetURL(" https://www.instagram.com/p/abc/ ")
	assert.Equal(t, "Instagram post: https://www.instagram.com/p/abc/", c.Topic())
}

func TestTopicTruncated(t *testing.T) {
	c := New()
	c.SetText(strings.Repeat("é", 250))
	assert.Equal(t, journal.MaxTopicLength, len([]rune(c.Topic())))
}

func TestRequest(t *testing.T) {
	c := New()
	_, err := c.Request(5, nil)
	assert.ErrorIs(t, err, ErrNothingToSubmit)

	c.SetMode(journal.ModeSocial)
	c.SetURL("https://instagram.com/reel/xyz")
	req, err := c.Request(3, []journal.Platform{journal.PlatformInstagram})
	require.NoError(t, err)
	assert.Equal(t, "Instagram post: https://instagram.com/reel/xyz", req.Topic)
	assert.Equal(t, 3, req.ArticleCount)
	require.NotNil(t, req.Attachment)
	assert.Equal(t, "https://instagram.com/reel/xyz", req.Attachment.URL)
}

func TestSelectImage(t *testing.T) {
	c := New()
	path := writePNG(t, t.TempDir(), 16, 9)

	att, err := c.SelectImage(path)
	require.NoError(t, err)
	assert.Equal(t, "sunset.png", att.ImageName)
	assert.Equal(t, 16, att.Width)
	assert.Equal(t, 9, att.Height)
	assert.Same(t, att, c.Image())

	c.ClearImage()
	assert.Nil(t, c.Image())
}

func TestSelectImageRejectsInvalidFile(t *testing.T) {
	dir := t.TempDir()
	good := writePNG(t, dir, 2, 2)
	bad := filepath.Join(dir, "notes.png")
	require.NoError(t, os.WriteFile(bad, []byte("not an image"), 0644))

	c := New()
	_, err := c.SelectImage(good)
	require.NoError(t, err)

	_, err = c.SelectImage(bad)
	require.Error(t, err)
	assert.Equal(t, "sunset.png", c.Image().ImageName, "previous selection kept")
}

func TestInspectImageSizeLimit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "huge.png")
	require.NoError(t, os.WriteFile(path, make([]byte, MaxImageSize+1), 0644))

	_, err := InspectImage(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "10 MB")
}

func TestInspectImageBMP(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scan.bmp")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, bmp.Encode(f, image.NewGray(image.Rect(0, 0, 5, 7))))
	require.NoError(t, f.Close())

	att, err := InspectImage(path)
	require.NoError(t, err)
	assert.Equal(t, 5, att.Width)
	assert.Equal(t, 7, att.Height)
}

func TestIsImageFile(t *testing.T) {
	assert.True(t, IsImageFile("a.PNG"))
	assert.True(t, IsImageFile("b.webp"))
	assert.False(t, IsImageFile("deck.apkg"))
}

func TestCounts(t *testing.T) {
	c := New()
	c.SetText("  one two\tthree\n ")
	assert.Equal(t, 3, c.WordCount())
	assert.Equal(t, 17, c.CharCount())

	c.SetText("")
	assert.Equal(t, 0, c.WordCount())
}

func TestReset(t *testing.T) {
	c := New()
	c.SetText("draft")
	c.SetURL("https://instagram.com/p/x")
	c.SetMode(journal.ModeSocial)

	c.Reset()
	assert.Equal(t, journal.ModeText, c.Mode())
	assert.Empty(t, c.Text())
	assert.Empty(t, c.URL())
	assert.False(t, c.CanSubmit())
}

func TestExcerpt(t *testing.T) {
	assert.Equal(t, "a b c", Excerpt(" a\n b  c ", 120))
	got := Excerpt(strings.Repeat("word ", 40), 20)
	assert.True(t, strings.HasSuffix(got, "..."))
	assert.LessOrEqual(t, len([]rune(got)), 20)
}

func TestFormatSize(t *testing.T) {
	assert.Equal(t, "1.50 MB", FormatSize(3*1024*1024/2))
}
