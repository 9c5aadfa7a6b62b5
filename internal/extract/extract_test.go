package extract

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTextPlainPassthrough(t *testing.T) {
	for _, name := range []string{"pitch.txt", "pitch.md", "pitch"} {
		text, err := Text(name, []byte("Introduce yourself. Explain the product."))
		require.NoError(t, err)
		require.Equal(t, "Introduce yourself. Explain the product.", text)
	}
}

func TestTextBrokenPDF(t *testing.T) {
	_, err := Text("pitch.pdf", []byte("not a pdf at all"))
	require.Error(t, err)
}
