package token_test

import (
	"testing"

	"github.com/mna/ember/lang/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeywords(t *testing.T) {
	for word, want := range token.Keywords {
		t.Run(word, func(t *testing.T) {
			assert.NotEqual(t, token.IDENT, want)
		})
	}
	require.Len(t, token.Keywords, 16)
}

func TestGoString(t *testing.T) {
	assert.Equal(t, "'+'", token.PLUS.GoString())
	assert.Equal(t, "identifier", token.IDENT.GoString())
}

func TestPosUnknown(t *testing.T) {
	assert.True(t, token.NoPos.Unknown())
	assert.False(t, token.Pos(1).Unknown())
}
