package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderMarkdownTables(t *testing.T) {
	src := "| A | B |\n|---|---|\n| 1 | 2 |\n"

	html, err := RenderMarkdown([]byte(src))
	require.NoError(t, err)
	assert.Contains(t, string(html), "<table>")
	assert.Contains(t, string(html), "<td>1</td>")
}

func TestRenderMarkdownHeadings(t *testing.T) {
	html, err := RenderMarkdown([]byte("## Weekly Summary\n"))
	require.NoError(t, err)
	assert.Contains(t, string(html), `<h2 id="weekly-summary">Weekly Summary</h2>`)
}
