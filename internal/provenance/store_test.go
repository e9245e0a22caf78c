package provenance

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_PutGet(t *testing.T) {
	root := t.TempDir()
	s, err := Open(root)
	require.NoError(t, err)

	gen := filepath.Join(root, "src", "Expr.jj")
	_, ok, err := s.Get(gen)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Put(Record{Path: gen, Derived: true, Origin: "src/Expr.jjt"}))
	rec, ok, err := s.Get(gen)
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, rec.Derived)
	assert.Equal(t, "src/Expr.jjt", rec.Origin)
	assert.Equal(t, filepath.Join(root, "src", "Expr.jjt"), s.Resolve(rec.Origin))

	require.NoError(t, s.Put(Record{Path: gen, Derived: true, Origin: "other.jjt"}))
	rec, _, _ = s.Get(gen)
	assert.Equal(t, "other.jjt", rec.Origin)
}

func TestStore_ListDelete(t *testing.T) {
	root := t.TempDir()
	s, err := Open(root)
	require.NoError(t, err)
	b := filepath.Join(root, "b.java")
	a := filepath.Join(root, "a.java")
	require.NoError(t, s.Put(Record{Path: b, Derived: true, Origin: "g.jj"}))
	require.NoError(t, s.Put(Record{Path: a, Derived: true, Origin: "g.jj"}))
	require.NoError(t, os.WriteFile(filepath.Join(s.dir, "junk.mp"), []byte{0xc1}, 0o644))

	recs, err := s.List()
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, a, recs[0].Path)
	assert.Equal(t, b, recs[1].Path)

	require.NoError(t, s.Delete(a))
	require.NoError(t, s.Delete(a))
	recs, _ = s.List()
	assert.Len(t, recs, 1)

	require.NoError(t, s.DropAll())
	recs, err = s.List()
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestStore_Rel(t *testing.T) {
	root := t.TempDir()
	s, err := Open(root)
	require.NoError(t, err)
	assert.Equal(t, "x/y.jj", s.Rel(filepath.Join(root, "x", "y.jj")))
	outside := filepath.Join(filepath.Dir(root), "elsewhere.jj")
	assert.Equal(t, filepath.ToSlash(outside), s.Rel(outside))
}
