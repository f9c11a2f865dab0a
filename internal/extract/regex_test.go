package extract_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TheMichaelB/seedrecover/internal/extract"
	"github.com/TheMichaelB/seedrecover/internal/models"
)

func TestPortJSRegex(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "wallet seed literal",
			in:   `/{"wallet-seed":"([^"}]*)"/`,
			want: `\{"wallet-seed":"([^"}]*)"`,
		},
		{
			name: "keyring controller literal",
			in:   `/"KeyringController":{"vault":"{[^{}]*}"/`,
			want: `"KeyringController":\{"vault":"\{[^\{}]*}"`,
		},
		{
			name: "flags are dropped",
			in:   `/Keyring[0-9][^\}]*(\{[^\{\}]*\\"\})/gu`,
			want: `Keyring[0-9][^\}]*(\{[^\{\}]*\\"\})`,
		},
		{
			name: "quantifiers are kept",
			in:   `/\\"iv.{1,4}[^A-Za-z0-9+\/]{1,10}([A-Za-z0-9+\/]{10,40}=*)/u`,
			want: `\\"iv.{1,4}[^A-Za-z0-9+\/]{1,10}([A-Za-z0-9+\/]{10,40}=*)`,
		},
		{
			name: "open ended quantifier",
			in:   `/a{2,}/`,
			want: `a{2,}`,
		},
		{
			name: "brace without count",
			in:   `/a{,5}/`,
			want: `a\{,5}`,
		},
		{
			name: "no delimiters",
			in:   `abc{`,
			want: `abc\{`,
		},
		{
			name: "escaped backslash before brace",
			in:   `/\\{/`,
			want: `\\\{`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extract.PortJSRegex(tt.in))
		})
	}
}

func TestCompilePatterns(t *testing.T) {
	t.Run("vault patterns", func(t *testing.T) {
		compiled, err := extract.CompilePatterns(extract.JSPatterns)
		require.NoError(t, err)
		assert.Len(t, compiled, len(extract.JSPatterns))
	})

	t.Run("invalid pattern is fatal", func(t *testing.T) {
		_, err := extract.CompilePatterns(map[string]string{"broken": `/(unclosed/`})
		require.Error(t, err)
		assert.Equal(t, models.KindFatal, models.KindOf(err))
		assert.ErrorIs(t, err, models.ErrFatal)
	})
}
