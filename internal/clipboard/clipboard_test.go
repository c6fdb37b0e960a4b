package clipboard

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func withTools(t *testing.T, tools ...string) {
	t.Helper()
	prev := lookPath
	t.Cleanup(func() { lookPath = prev })

	lookPath = func(name string) (string, error) {
		for _, tool := range tools {
			if tool == name {
				return "/usr/bin/" + name, nil
			}
		}
		return "", errors.New("not found")
	}
}

func TestCommandLinuxPreference(t *testing.T) {
	withTools(t, "xsel", "xclip")
	assert.Equal(t, []string{"xclip", "-selection", "clipboard"}, command("linux"))

	withTools(t, "xsel")
	assert.Equal(t, []string{"xsel", "--clipboard", "--input"}, command("linux"))

	withTools(t, "wl-copy", "xclip")
	assert.Equal(t, []string{"wl-copy"}, command("linux"))
}

func TestCommandNoTools(t *testing.T) {
	withTools(t)
	assert.Nil(t, command("linux"))
	assert.Nil(t, command("darwin"))
	assert.Equal(t, []string{"cmd", "/c", "clip"}, command("windows"))
}
