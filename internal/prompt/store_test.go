package prompt

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `{
  "email_classification": {"v1": "Classify the email.", "v2": "Label it."},
  "response_generation": {"v1": "Write a reply."}
}`

func TestSelect(t *testing.T) {
	s, err := Parse([]byte(sample))
	require.NoError(t, err)

	tpl, err := s.Select("v2", "v1")
	require.NoError(t, err)
	assert.Equal(t, "Label it.", tpl.Classification)
	assert.Equal(t, "Write a reply.", tpl.Response)
}

func TestSelect_UnknownVariant(t *testing.T) {
	s, err := Parse([]byte(sample))
	require.NoError(t, err)

	_, err = s.Select("v9", "v1")
	assert.ErrorIs(t, err, ErrUnknownVariant)
	assert.Contains(t, err.Error(), "v1, v2")

	_, err = s.Select("v1", "missing")
	assert.ErrorIs(t, err, ErrUnknownVariant)
}

func TestParse_LegacyGenerationKey(t *testing.T) {
	s, err := Parse([]byte(`{
		"email_classification": {"base": "c"},
		"reponse_generation": {"base": "legacy", "extra": "x"},
		"response_generation": {"base": "current"}
	}`))
	require.NoError(t, err)

	tpl, err := s.Select("base", "base")
	require.NoError(t, err)
	assert.Equal(t, "current", tpl.Response)

	tpl, err = s.Select("base", "extra")
	require.NoError(t, err)
	assert.Equal(t, "x", tpl.Response)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prompts.json")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o644))

	s, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, s.Classification, 2)

	_, err = Load(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}

func TestLoad_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prompts.json")
	require.NoError(t, os.WriteFile(path, []byte("{"), 0o644))

	_, err := Load(path)
	assert.ErrorContains(t, err, "parse prompts")
}
