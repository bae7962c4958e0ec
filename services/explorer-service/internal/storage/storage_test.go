package storage

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorage_SaveOpenDelete(t *testing.T) {
	s := NewLocalStorage(t.TempDir())

	name, size, err := s.Save(strings.NewReader("a,b\n1,2\n"), ".csv")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(name, ".csv"))
	assert.Equal(t, int64(8), size)

	rc, err := s.Open(name)
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	rc.Close()
	assert.Equal(t, "a,b\n1,2\n", string(data))

	require.NoError(t, s.Delete(name))
	_, err = s.Open(name)
	assert.ErrorContains(t, err, "file not found")
	assert.NoError(t, s.Delete(name))
}

func TestLocalStorage_RejectsTraversal(t *testing.T) {
	s := NewLocalStorage(t.TempDir())

	for _, name := range []string{"../secret", "a/b.csv", "", ".hidden"} {
		_, err := s.Open(name)
		assert.ErrorContains(t, err, "invalid file name", name)
	}
}

func TestGenerateFileName(t *testing.T) {
	tests := []struct {
		name      string
		extension string
		suffix    string
	}{
		{name: "with dot", extension: ".xlsx", suffix: ".xlsx"},
		{name: "without dot", extension: "csv", suffix: ".csv"},
		{name: "empty", extension: "", suffix: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := GenerateFileName(tt.extension)
			assert.True(t, strings.HasSuffix(got, tt.suffix))
			assert.Len(t, got, 36+len(tt.suffix))
		})
	}
}
