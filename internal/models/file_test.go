package models_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TheMichaelB/seedrecover/internal/models"
)

func TestCandidate_NormalizedPath(t *testing.T) {
	tests := []struct {
		name string
		path string
		want string
	}{
		{
			name: "unix path",
			path: "Default/Local Extension Settings/nkbihfbeogaeaoehlefnkodbefgpgknn/000003.log",
			want: "Default/Local Extension Settings/nkbihfbeogaeaoehlefnkodbefgpgknn/000003.log",
		},
		{
			name: "windows path",
			path: "Default\\Local Extension Settings\\000003.log",
			want: "Default/Local Extension Settings/000003.log",
		},
		{
			name: "path with dot segments",
			path: "profile/../Default/./000005.ldb",
			want: "Default/000005.ldb",
		},
		{
			name: "bare file",
			path: "000003.log",
			want: "000003.log",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &models.Candidate{Path: tt.path}
			assert.Equal(t, tt.want, c.NormalizedPath())
		})
	}
}

func TestCandidate_JSON(t *testing.T) {
	c := models.Candidate{
		Path:    "/tmp/000003.log",
		Size:    42,
		Browser: "chrome",
		Format:  models.FormatLevelDB,
	}

	raw, err := json.Marshal(c)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"format":"leveldb"`)
	assert.Contains(t, string(raw), `"browser":"chrome"`)
	assert.NotContains(t, string(raw), "extension_id")
}
