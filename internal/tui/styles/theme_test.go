package styles

import (
	"image/color"
	"testing"

	"github.com/charmbracelet/lipgloss/v2"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func hex(t *testing.T, c color.Color) string {
	t.Helper()
	cc, ok := colorful.MakeColor(c)
	require.True(t, ok)
	return cc.Hex()
}

func TestBlend(t *testing.T) {
	t.Parallel()

	black := lipgloss.Color("#000000")
	white := lipgloss.Color("#ffffff")

	t.Run("ends are the inputs", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "#000000", hex(t, Blend(black, white, 0)))
		assert.Equal(t, "#ffffff", hex(t, Blend(black, white, 1)))
	})

	t.Run("factor is clamped", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "#ffffff", hex(t, Blend(black, white, 3)))
		assert.Equal(t, "#000000", hex(t, Blend(black, white, -1)))
	})

	t.Run("midpoint lies between", func(t *testing.T) {
		t.Parallel()
		mid := hex(t, Blend(black, white, 0.5))
		assert.NotEqual(t, "#000000", mid)
		assert.NotEqual(t, "#ffffff", mid)
	})

	t.Run("transparent input is returned as is", func(t *testing.T) {
		t.Parallel()
		transparent := color.RGBA{}
		assert.Equal(t, transparent, Blend(transparent, white, 0.5))
	})
}

func TestThemeStyles(t *testing.T) {
	t.Parallel()

	th := townTheme()
	s := th.S()
	assert.Same(t, s, th.S())
	require.NotNil(t, s.Selected.GetBackground())
	assert.NotEqual(t, hex(t, th.Secondary), hex(t, s.Selected.GetBackground()))
}
