package util

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type doc struct {
	Name  string `yaml:"name"`
	Width int    `yaml:"width"`
}

func TestYaml(t *testing.T) {

	path := filepath.Join(t.TempDir(), "doc.yaml")

	err := WriteYaml(doc{Name: "amount", Width: 8}, path, 0o644)
	require.NoError(t, err)

	loaded := doc{}
	err = LoadYaml(&loaded, path)
	require.NoError(t, err)
	assert.Equal(t, doc{Name: "amount", Width: 8}, loaded)

	err = LoadYaml(&loaded, filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorContains(t, err, "failed to read")

	require.NoError(t, os.WriteFile(path, []byte("name: [unclosed"), 0o644))
	err = LoadYaml(&loaded, path)
	assert.ErrorContains(t, err, "failed to unmarshal")
}

func TestWriteSample(t *testing.T) {

	path := filepath.Join(t.TempDir(), "sample.yaml")

	wrote, err := WriteSample([]byte("name: first\n"), path, 0o644)
	require.NoError(t, err)
	assert.True(t, wrote)

	wrote, err = WriteSample([]byte("name: second\n"), path, 0o644)
	require.NoError(t, err)
	assert.False(t, wrote)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "name: first\n", string(data))
}

func TestOpenLog(t *testing.T) {

	path := filepath.Join(t.TempDir(), "test.log")

	file := OpenLog(path, 0o644)
	_, err := io.WriteString(file, "hello\n")
	require.NoError(t, err)
	CloseLog(file)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "hello\n", string(data))

	file = OpenLog(filepath.Join(t.TempDir(), "missing", "test.log"), 0o644)
	assert.Equal(t, io.Discard, file)
	CloseLog(file)
}
