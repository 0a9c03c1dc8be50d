package media

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Run("creates user content directory", func(t *testing.T) {
		root := t.TempDir()
		store, err := New(root)
		require.NoError(t, err)
		assert.NotNil(t, store)

		_, err = os.Stat(filepath.Join(root, "user_content"))
		assert.NoError(t, err)
	})

	t.Run("cleans root path", func(t *testing.T) {
		root := t.TempDir()
		store, err := New(filepath.Join(root, "data", "..", "data"))
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(root, "data"), store.rootPath)
	})
}

func TestCreate(t *testing.T) {
	t.Run("creates guild directory and unique files", func(t *testing.T) {
		store, err := New(t.TempDir())
		require.NoError(t, err)

		name1, f1, err := store.Create("123", "cat.png")
		require.NoError(t, err)
		require.NoError(t, f1.Close())

		name2, f2, err := store.Create("123", "cat.png")
		require.NoError(t, err)
		require.NoError(t, f2.Close())

		assert.NotEqual(t, name1, name2)
		_, err = os.Stat(store.Path("123", name1))
		assert.NoError(t, err)
		_, err = os.Stat(store.Path("123", name2))
		assert.NoError(t, err)
	})

	t.Run("preserves extension", func(t *testing.T) {
		store, err := New(t.TempDir())
		require.NoError(t, err)

		testCases := []struct {
			filename string
			ext      string
		}{
			{"image.jpg", ".jpg"},
			{"anim.gif", ".gif"},
			{"archive.tar.gz", ".gz"},
			{"../../etc/passwd.png", ".png"},
		}

		for _, tc := range testCases {
			t.Run(tc.filename, func(t *testing.T) {
				name, f, err := store.Create("1", tc.filename)
				require.NoError(t, err)
				f.Close()
				assert.True(t, strings.HasSuffix(name, tc.ext))
				assert.NotContains(t, name, "..")
			})
		}
	})

	t.Run("handles names without extension", func(t *testing.T) {
		store, err := New(t.TempDir())
		require.NoError(t, err)

		name, f, err := store.Create("1", "noextension")
		require.NoError(t, err)
		f.Close()
		assert.NotContains(t, name, ".")
	})
}

func TestReadRemove(t *testing.T) {
	store, err := New(t.TempDir())
	require.NoError(t, err)

	name, f, err := store.Create("42", "x.txt")
	require.NoError(t, err)
	_, err = f.WriteString("hello")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	data, err := store.Read("42", name)
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), data)

	require.NoError(t, store.Remove("42", name))
	_, err = store.Read("42", name)
	assert.ErrorIs(t, err, os.ErrNotExist)

	// removing twice is fine
	assert.NoError(t, store.Remove("42", name))
}

func TestGuildsAndList(t *testing.T) {
	store, err := New(t.TempDir())
	require.NoError(t, err)

	guilds, err := store.Guilds()
	require.NoError(t, err)
	assert.Empty(t, guilds)

	files, err := store.List("missing")
	require.NoError(t, err)
	assert.Empty(t, files)

	name, f, err := store.Create("7", "a.png")
	require.NoError(t, err)
	f.Close()

	guilds, err = store.Guilds()
	require.NoError(t, err)
	assert.Equal(t, []string{"7"}, guilds)

	files, err = store.List("7")
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, name, files[0].Name)
	assert.False(t, files[0].ModTime.IsZero())
}
