package entity

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTitleFromPrompt(t *testing.T) {
	t.Run("short prompt is used verbatim", func(t *testing.T) {
		assert.Equal(t, "Build a todo app", TitleFromPrompt("Build a todo app"))
	})

	t.Run("prompt of exactly fifty runes is not truncated", func(t *testing.T) {
		p := strings.Repeat("a", 50)
		got := TitleFromPrompt(p)
		assert.Equal(t, p, got)
		assert.Equal(t, 50, utf8.RuneCountInString(got))
	})

	t.Run("longer prompt is cut to fifty runes plus ellipsis", func(t *testing.T) {
		p := strings.Repeat("a", 51)
		got := TitleFromPrompt(p)
		require.Equal(t, 51, utf8.RuneCountInString(got))
		assert.Equal(t, strings.Repeat("a", 50)+"…", got)
	})

	t.Run("truncation counts runes not bytes", func(t *testing.T) {
		p := strings.Repeat("é", 80)
		got := TitleFromPrompt(p)
		require.Equal(t, 51, utf8.RuneCountInString(got))
		assert.Equal(t, strings.Repeat("é", 50)+"…", got)
	})

	t.Run("truncated title always ends with ellipsis", func(t *testing.T) {
		p := "Build me a restaurant website with menus, online ordering and a reservations page"
		got := TitleFromPrompt(p)
		assert.True(t, strings.HasSuffix(got, "…"))
		assert.Equal(t, 51, utf8.RuneCountInString(got))
	})
}

func TestProjectStatusValid(t *testing.T) {
	assert.True(t, StatusCreating.Valid())
	assert.True(t, StatusCompleted.Valid())
	assert.True(t, StatusFailed.Valid())
	assert.False(t, ProjectStatus("archived").Valid())
	assert.False(t, ProjectStatus("").Valid())
}
