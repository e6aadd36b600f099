// pkg/registry/registry_test.go
package registry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	stderrors "adgen-orchestrator/internal/common/errors"
)

func writeCatalog(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "templates.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadRegistry(t *testing.T) {
	path := writeCatalog(t, `{
		"templates": [
			{"id": "tpl-1", "name": "Bold Claim", "kind": "static_ad", "promptSlots": 3},
			{"id": "tpl-2", "name": "Story Opener", "kind": "prelander"},
			{"id": "tpl-3", "name": "Before After", "kind": "static_ad"}
		]
	}`)

	reg, err := LoadRegistry(path)
	require.NoError(t, err)
	require.Len(t, reg.Templates, 3)

	tpl, err := reg.Get("tpl-1")
	require.NoError(t, err)
	assert.Equal(t, "Bold Claim", tpl.Name)
	assert.Equal(t, 3, tpl.PromptSlots)

	staticAds := reg.ByKind("static_ad")
	require.Len(t, staticAds, 2)
	assert.Equal(t, "tpl-1", staticAds[0].ID)
	assert.Equal(t, "tpl-3", staticAds[1].ID)
}

func TestLoadRegistry_RejectsInvalidEntry(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			"missing id",
			`{"templates": [{"name": "No ID", "kind": "static_ad"}]}`,
		},
		{
			"unknown kind",
			`{"templates": [{"id": "tpl-1", "name": "Bad Kind", "kind": "billboard"}]}`,
		},
		{
			"empty name",
			`{"templates": [{"id": "tpl-1", "name": "", "kind": "static_ad"}]}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeCatalog(t, tt.content)
			_, err := LoadRegistry(path)
			assert.Error(t, err, "one bad entry fails the whole load")
		})
	}
}

func TestLoadRegistry_MalformedJSON(t *testing.T) {
	path := writeCatalog(t, `{"templates": [`)
	_, err := LoadRegistry(path)
	assert.Error(t, err)
}

func TestLoadRegistry_MissingFile(t *testing.T) {
	_, err := LoadRegistry(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}

func TestRegistryGet_NotFound(t *testing.T) {
	path := writeCatalog(t, `{"templates": [{"id": "tpl-1", "name": "Only", "kind": "static_ad"}]}`)
	reg, err := LoadRegistry(path)
	require.NoError(t, err)

	_, err = reg.Get("tpl-404")
	require.Error(t, err)

	var stdErr *stderrors.StandardError
	require.ErrorAs(t, err, &stdErr)
	assert.Equal(t, stderrors.ErrCodeTemplateNotFound, stdErr.Code)
}
