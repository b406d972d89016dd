package tilecrate

import (
	"io"
	"log"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCrate(t *testing.T) (*TileCrate, *Archive) {
	t.Helper()

	archive := newTestArchive(t)
	return New(archive, log.New(io.Discard, "", 0)), archive
}

func writeTile(t *testing.T, root, rel string, data []byte) {
	t.Helper()

	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, data, 0o644))
}

func TestImportPyramid(t *testing.T) {
	tc, archive := newTestCrate(t)

	dir := t.TempDir()
	writeTile(t, dir, "0/0/0.png", []byte("z0"))
	writeTile(t, dir, "1/0/0.png", []byte("nw"))
	writeTile(t, dir, "1/0/1.png", []byte("sw"))
	writeTile(t, dir, "1/1/0.png", []byte("ne"))
	writeTile(t, dir, "1/1/1.png", []byte("se"))

	res, err := tc.Import(dir)
	require.NoError(t, err)

	assert.Equal(t, 5, res.Tiles)
	assert.Equal(t, 0, res.MinZoom)
	assert.Equal(t, 1, res.MaxZoom)
	assert.Empty(t, res.Skipped)

	// Source rows count from the top, archive rows from the bottom.
	for _, tt := range []struct {
		zoom, column, row uint32
		data              string
	}{
		{0, 0, 0, "z0"},
		{1, 0, 1, "nw"},
		{1, 0, 0, "sw"},
		{1, 1, 1, "ne"},
		{1, 1, 0, "se"},
	} {
		data, err := archive.TileData(tt.zoom, tt.column, tt.row)
		require.NoError(t, err)
		assert.Equal(t, []byte(tt.data), data, "%d/%d/%d", tt.zoom, tt.column, tt.row)
	}

	stats, err := archive.Stats()
	require.NoError(t, err)
	assert.EqualValues(t, 5, stats.Tiles)
}

func TestImportEmptyDir(t *testing.T) {
	tc, archive := newTestCrate(t)

	res, err := tc.Import(t.TempDir())
	require.NoError(t, err)
	assert.Zero(t, res.Tiles)
	assert.Empty(t, res.Skipped)

	stats, err := archive.Stats()
	require.NoError(t, err)
	assert.Zero(t, stats.Tiles)
}

func TestImportMissingDir(t *testing.T) {
	tc, _ := newTestCrate(t)

	_, err := tc.Import(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

func TestImportSkipsMalformed(t *testing.T) {
	tc, archive := newTestCrate(t)

	dir := t.TempDir()
	writeTile(t, dir, "0/0/0.png", []byte("good"))
	writeTile(t, dir, "1/a/0.png", []byte("bad column"))
	writeTile(t, dir, "orphan.png", []byte("wrong depth"))
	writeTile(t, dir, "1/2/0.png", []byte("column out of range"))

	res, err := tc.Import(dir)
	require.NoError(t, err)

	assert.Equal(t, 1, res.Tiles)
	assert.Len(t, res.Skipped, 3)

	stats, err := archive.Stats()
	require.NoError(t, err)
	assert.EqualValues(t, 1, stats.Tiles)
}

func TestImportIgnoresNonRasterAndHidden(t *testing.T) {
	tc, _ := newTestCrate(t)

	dir := t.TempDir()
	writeTile(t, dir, "0/0/0.png", []byte("good"))
	writeTile(t, dir, "0/0/readme.txt", []byte("notes"))
	writeTile(t, dir, ".cache/5/0/0.png", []byte("hidden dir"))
	writeTile(t, dir, "0/0/.0.png", []byte("hidden file"))

	res, err := tc.Import(dir)
	require.NoError(t, err)

	assert.Equal(t, 1, res.Tiles)
	assert.Empty(t, res.Skipped)
}

func TestImportUppercaseExtension(t *testing.T) {
	tc, archive := newTestCrate(t)

	dir := t.TempDir()
	writeTile(t, dir, "2/1/3.PNG", []byte("shouty"))

	res, err := tc.Import(dir)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Tiles)

	data, err := archive.TileData(2, 1, 0)
	require.NoError(t, err)
	assert.Equal(t, []byte("shouty"), data)
}

func TestImportSkipsUnreadable(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("file permissions are not enforced for root")
	}

	tc, _ := newTestCrate(t)

	dir := t.TempDir()
	writeTile(t, dir, "0/0/0.png", []byte("good"))
	writeTile(t, dir, "1/0/0.png", []byte("secret"))
	require.NoError(t, os.Chmod(filepath.Join(dir, "1", "0", "0.png"), 0o000))

	res, err := tc.Import(dir)
	require.NoError(t, err)

	assert.Equal(t, 1, res.Tiles)
	require.Len(t, res.Skipped, 1)
	assert.Contains(t, res.Skipped[0].Path, filepath.Join("1", "0", "0.png"))
}

func TestImportDuplicateCoordinates(t *testing.T) {
	tc, archive := newTestCrate(t)

	dir := t.TempDir()
	writeTile(t, dir, "1/0/1.jpg", []byte("jpg"))
	writeTile(t, dir, "1/0/1.png", []byte("png"))

	res, err := tc.Import(dir)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Tiles)

	// The walk visits entries in lexical order, so the .png lands last
	// and replaces the .jpg under the shared coordinates.
	data, err := archive.TileData(1, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, []byte("png"), data)

	stats, err := archive.Stats()
	require.NoError(t, err)
	assert.EqualValues(t, 1, stats.Tiles)
}

func TestImportCoverageBound(t *testing.T) {
	tc, _ := newTestCrate(t)

	dir := t.TempDir()
	writeTile(t, dir, "0/0/0.png", []byte("world"))

	res, err := tc.Import(dir)
	require.NoError(t, err)

	assert.InDelta(t, -180, res.Bound.Min.Lon(), 1e-6)
	assert.InDelta(t, 180, res.Bound.Max.Lon(), 1e-6)
	assert.InDelta(t, -85.0512, res.Bound.Min.Lat(), 1e-3)
	assert.InDelta(t, 85.0512, res.Bound.Max.Lat(), 1e-3)
}
