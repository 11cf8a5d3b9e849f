package markdown

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToHTMLStripsScripts(t *testing.T) {
	r := NewRenderer()

	out, err := r.ToHTML("**alice**: hello <script>alert(1)</script>")
	require.NoError(t, err)

	assert.Contains(t, out, "<strong>alice</strong>")
	assert.NotContains(t, out, "<script>")
}

func TestDocumentEscapesTitle(t *testing.T) {
	r := NewRenderer()

	out, err := r.Document("<Lobby> repair", "# Ticket")
	require.NoError(t, err)

	assert.Contains(t, out, "<title>&lt;Lobby&gt; repair</title>")
	assert.Contains(t, out, "<h1>Ticket</h1>")
}
