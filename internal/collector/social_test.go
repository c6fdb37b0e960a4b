package collector

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateSocialURL(t *testing.T) {
	valid := []string{
		"",
		"   ",
		"https://www.instagram.com/p/ABC123xyz/",
		"http://instagram.com/p/a-b_c",
		"https://www.instagram.com/reel/XYZ789abc/",
		"https://instagram.com/some.user/p/Cx_1-2/",
		"https://www.instagram.com/p/ABC123/?utm_source=ig_web_copy_link",
	}
	for _, u := range valid {
		assert.True(t, ValidateSocialURL(u), u)
	}

	invalid := []string{
		"instagram.com/p/ABC",
		"https://www.instagram.com/",
		"https://www.instagram.com/someuser",
		"https://instagram.com/notapost",
		"https://www.tiktok.com/@user/video/123",
		"ftp://instagram.com/p/abc",
		"https://evil.com/instagram.com/p/abc",
	}
	for _, u := range invalid {
		assert.False(t, ValidateSocialURL(u), u)
	}
}

func TestExampleURLsAreValid(t *testing.T) {
	for _, u := range ExampleURLs {
		assert.True(t, ValidateSocialURL(u), u)
	}
}
