package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func writeDoc(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "vars.yaml")
	assert.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	path := writeDoc(t, `
variables:
  env: prod
  retries: 3
extensions:
  - "score(1,MAX)"
  - "pair(2,2)"
`)
	doc, err := Load(path)
	assert.NoError(t, err)
	assert.Equal(t, "prod", doc.Variables["env"])
	assert.Equal(t, 3, doc.Variables["retries"])

	arities, err := doc.Arities()
	assert.NoError(t, err)
	if assert.Len(t, arities, 2) {
		assert.Equal(t, ExtensionArity{Name: "score", Min: 1, Max: -1}, arities[0])
		assert.Equal(t, ExtensionArity{Name: "pair", Min: 2, Max: 2}, arities[1])
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestArities_InvalidDeclaration(t *testing.T) {
	doc := &Document{Extensions: []string{"score(1"}}
	_, err := doc.Arities()
	assert.Error(t, err)
}

func TestArities_MaxBelowMin(t *testing.T) {
	doc := &Document{Extensions: []string{"score(3,1)"}}
	_, err := doc.Arities()
	assert.Error(t, err)
}
