package htmltext

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const page = `<html><head><title> Acme Industrial
 Software </title><style>body{}</style></head>
<body><nav>Home | About</nav>
<article><h1>About Acme</h1>
<p>Acme builds   scheduling software for mid-sized manufacturers across Europe. The company was founded in 2009
and serves more than four hundred plants in twelve countries, with a focus on discrete manufacturing.</p>
<p>Its flagship product plans production runs, tracks machine utilisation and forecasts material demand.</p>
<script>var x = 1;</script>
</article></body></html>`

func TestExtract(t *testing.T) {
	text, err := Extract(page)
	require.NoError(t, err)
	assert.Contains(t, text, "Acme builds scheduling software for mid-sized manufacturers")
	assert.NotContains(t, text, "var x")
	assert.NotContains(t, text, "\n")
}

func TestTitle(t *testing.T) {
	assert.Equal(t, "Acme Industrial Software", Title(page))
	assert.Equal(t, "", Title("<p>no title</p>"))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", Truncate("abcdef", 3))
	assert.Equal(t, "abc", Truncate("abc", 10))
	assert.Equal(t, "abc", Truncate("abc", 0))
	// "é" is two bytes; cutting inside it backs off to the rune start.
	assert.Equal(t, "caf", Truncate("café", 4))
}
