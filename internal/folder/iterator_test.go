package folder

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lehigh-university-libraries/captioner/internal/images"
)

func writePNG(t *testing.T, path string, shade uint8) {
	t.Helper()
	src := image.NewGray(image.Rect(0, 0, 2, 2))
	for i := range src.Pix {
		src.Pix[i] = shade
	}
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, src))
}

func makeFolder(t *testing.T, pngs []string, others []string) string {
	t.Helper()
	dir := t.TempDir()
	for i, name := range pngs {
		writePNG(t, filepath.Join(dir, name), uint8(i*10))
	}
	for _, name := range others {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644))
	}
	return dir
}

func TestListFiltersAndSorts(t *testing.T) {
	dir := makeFolder(t,
		[]string{"c.png", "A.PNG", "b.png"},
		[]string{"notes.txt", "data.json", "thumbs.db"},
	)

	listing := List(dir)
	assert.Equal(t, []string{"A.PNG", "b.png", "c.png"}, listing)
}

func TestListMissingOrFile(t *testing.T) {
	assert.Empty(t, List(filepath.Join(t.TempDir(), "missing")))

	file := filepath.Join(t.TempDir(), "plain.png")
	writePNG(t, file, 0)
	assert.Empty(t, List(file))

	assert.Empty(t, List(""))
}

func TestNextCyclesInSortedOrder(t *testing.T) {
	dir := makeFolder(t, []string{"b.png", "a.png", "c.png"}, []string{"readme.md"})
	it := NewIterator()

	var names []string
	for i := 0; i < 7; i++ {
		img, name := it.Next(dir)
		require.NoError(t, img.Validate())
		names = append(names, name)
	}

	assert.Equal(t, []string{"a", "b", "c", "a", "b", "c", "a"}, names)
	assert.Equal(t, uint64(7), it.Cursor())
}

func TestNextVisitsEachImageEvenly(t *testing.T) {
	dir := makeFolder(t, []string{"1.png", "2.png", "3.png", "4.png"}, nil)
	it := NewIterator()

	const calls = 10
	counts := map[string]int{}
	for i := 0; i < calls; i++ {
		_, name := it.Next(dir)
		counts[name]++
	}

	for name, n := range counts {
		if n != calls/4 && n != calls/4+1 {
			t.Errorf("image %s visited %d times", name, n)
		}
	}
	assert.Len(t, counts, 4)
}

func TestNextResetsOnPathChange(t *testing.T) {
	first := makeFolder(t, []string{"a.png", "b.png"}, nil)
	second := makeFolder(t, []string{"a.png", "b.png"}, nil)
	it := NewIterator()

	_, name := it.Next(first)
	assert.Equal(t, "a", name)
	_, name = it.Next(first)
	assert.Equal(t, "b", name)

	_, name = it.Next(second)
	assert.Equal(t, "a", name, "identical content under a new path starts over")
	assert.Equal(t, second, it.Path())
	assert.Equal(t, uint64(1), it.Cursor())
}

func TestNextEmptyFolder(t *testing.T) {
	tests := []struct {
		name string
		path string
	}{
		{"empty directory", t.TempDir()},
		{"only unrecognized files", makeFolder(t, nil, []string{"a.txt"})},
		{"missing directory", filepath.Join(t.TempDir(), "nope")},
		{"empty path", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			it := NewIterator()
			for i := 0; i < 3; i++ {
				img, name := it.Next(tt.path)
				assert.Equal(t, NameEmpty, name)
				assert.Equal(t, images.Blank(images.PlaceholderSize), img)
			}
			assert.Equal(t, uint64(0), it.Cursor())
		})
	}
}

func TestNextBrokenFileIsRetried(t *testing.T) {
	dir := makeFolder(t, []string{"b.png"}, []string{"a.jpg"})
	it := NewIterator()

	for i := 0; i < 3; i++ {
		img, name := it.Next(dir)
		assert.Equal(t, NameError, name)
		assert.Equal(t, images.PlaceholderSize, img.Width)
	}
	assert.Equal(t, uint64(0), it.Cursor())
}

func TestListingIsCachedForSamePath(t *testing.T) {
	dir := makeFolder(t, []string{"a.png"}, nil)
	it := NewIterator()

	_, name := it.Next(dir)
	assert.Equal(t, "a", name)

	writePNG(t, filepath.Join(dir, "0.png"), 200)
	assert.Equal(t, []string{"a.png"}, it.Listing())

	_, name = it.Next(dir)
	assert.Equal(t, "a", name)

	it.Reset()
	_, name = it.Next(dir)
	assert.Equal(t, "0", name)
}

func TestNextConvertsGrayToRGB(t *testing.T) {
	dir := t.TempDir()
	src := image.NewGray(image.Rect(0, 0, 1, 1))
	src.SetGray(0, 0, color.Gray{Y: 255})
	f, err := os.Create(filepath.Join(dir, "white.png"))
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, src))
	require.NoError(t, f.Close())

	img, name := NewIterator().Next(dir)
	assert.Equal(t, "white", name)
	r, g, b := img.At(0, 0)
	assert.Equal(t, []float32{1, 1, 1}, []float32{r, g, b})
}
