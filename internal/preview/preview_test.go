package preview

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender(t *testing.T) {
	md := "# Report\n\n| a | b |\n|---|---|\n| 1 | 2 |\n\n> quoted\n\n![image page 1 #0](data:image/png;base64,QUFB)\n"

	out, err := Render(md)
	require.NoError(t, err)

	html := string(out)
	assert.Contains(t, html, `<h1 id="report">Report</h1>`)
	assert.Contains(t, html, "<table>")
	assert.Contains(t, html, "<blockquote>")
	assert.Contains(t, html, `<img src="data:image/png;base64,QUFB" alt="image page 1 #0">`)
}

func TestPage(t *testing.T) {
	out, err := Page("Q&A <draft>", "hello")
	require.NoError(t, err)

	html := string(out)
	assert.True(t, strings.HasPrefix(html, "<!DOCTYPE html>"))
	assert.Contains(t, html, "<title>Q&amp;A &lt;draft&gt;</title>")
	assert.Contains(t, html, "<p>hello</p>")
}
