package countsio

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dmsprefs-core/counts"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func TestReadTable(t *testing.T) {
	p := writeFile(t, t.TempDir(), "pre.tsv", `# pre-selection counts
site	wildtype	A	C
10	A	5	1
2	C	0	9
`)
	tb, err := ReadTable(p)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "C"}, tb.Chars)
	// natural site order, not file order
	assert.Equal(t, []string{"2", "10"}, tb.Sites())
	assert.Equal(t, 5, tb.Rows[1].Counts["A"])
	assert.Equal(t, "C", tb.Rows[0].Wildtype)
}

func TestReadTableErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := ReadTable(filepath.Join(dir, "missing.tsv"))
	assert.Error(t, err)

	bad := writeFile(t, dir, "bad_header.tsv", "position	wt	A	C\n1	A	1	2\n")
	_, err = ReadTable(bad)
	assert.Error(t, err)

	short := writeFile(t, dir, "short_row.tsv", "site	wildtype	A	C\n1	A	1\n")
	_, err = ReadTable(short)
	assert.Error(t, err)

	nonint := writeFile(t, dir, "nonint.tsv", "site	wildtype	A	C\n1	A	1	x\n")
	_, err = ReadTable(nonint)
	assert.Error(t, err)

	dup := writeFile(t, dir, "dup.tsv", "site	wildtype	A	C\n1	A	1	2\n1	A	1	2\n")
	_, err = ReadTable(dup)
	assert.Error(t, err)

	empty := writeFile(t, dir, "empty.tsv", "# nothing\n")
	_, err = ReadTable(empty)
	assert.Error(t, err)
}

func TestDetectErrorModel(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "err.tsv", "site	wildtype	A	C\n1	A	9	1\n")
	b := writeFile(t, dir, "err2.tsv", "site	wildtype	A	C\n1	A	9	1\n")

	m, err := DetectErrorModel("", "")
	require.NoError(t, err)
	assert.Equal(t, counts.ModelNone, m)

	m, err = DetectErrorModel(a, a)
	require.NoError(t, err)
	assert.Equal(t, counts.ModelSame, m)

	m, err = DetectErrorModel(a, b)
	require.NoError(t, err)
	assert.Equal(t, counts.ModelDifferent, m)

	_, err = DetectErrorModel(a, "")
	assert.Error(t, err)

	// distinct paths to the same file still mean `same`
	link := filepath.Join(dir, "err_link.tsv")
	if err := os.Symlink(a, link); err == nil {
		m, err = DetectErrorModel(a, link)
		require.NoError(t, err)
		assert.Equal(t, counts.ModelSame, m)
	}
}
