package webhook

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderEmailHTML(t *testing.T) {
	html, err := RenderEmailHTML("## New Case Assignment\n\nA **high** urgency case was matched.")

	require.NoError(t, err)
	assert.Contains(t, html, "<h2>New Case Assignment</h2>")
	assert.Contains(t, html, "<strong>high</strong>")
}

func TestRenderEmailHTML_DropsRawHTML(t *testing.T) {
	html, err := RenderEmailHTML("hello <script>alert(1)</script>")

	require.NoError(t, err)
	assert.NotContains(t, html, "<script>")
}
