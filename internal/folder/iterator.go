package folder

import (
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/lehigh-university-libraries/captioner/internal/images"
)

const (
	// NameEmpty is returned when the folder holds no recognized images.
	NameEmpty = "None"
	// NameError is returned when the selected file could not be loaded.
	NameError = "Error"
)

// Iterator hands out the images of a directory one per call, cycling in
// sorted filename order. The listing is cached until a different path is
// requested, so files added or removed under the same path are not seen.
//
// An Iterator is not safe for concurrent use; callers must serialize Next.
type Iterator struct {
	path    string
	listing []string
	cursor  uint64
}

// NewIterator returns an iterator with no folder selected.
func NewIterator() *Iterator {
	return &Iterator{}
}

// Next returns the image under the cursor and its filename without
// extension, then advances the cursor. Empty folders yield the blank
// placeholder named NameEmpty; unreadable files yield the placeholder named
// NameError. Neither advances the cursor.
func (it *Iterator) Next(path string) (images.Image, string) {
	if path != it.path {
		it.path = path
		it.cursor = 0
		it.listing = List(path)
		slog.Debug("Rebuilt folder listing", "path", path, "images", len(it.listing))
	}

	if len(it.listing) == 0 {
		return images.Blank(images.PlaceholderSize), NameEmpty
	}

	filename := it.listing[it.cursor%uint64(len(it.listing))]
	fullPath := filepath.Join(it.path, filename)

	img, err := images.Load(fullPath)
	if err != nil {
		slog.Error("Error loading image", "path", fullPath, "err", err)
		return images.Blank(images.PlaceholderSize), NameError
	}

	it.cursor++
	return img, strings.TrimSuffix(filename, filepath.Ext(filename))
}

// Path returns the folder the listing was built from.
func (it *Iterator) Path() string {
	return it.path
}

// Listing returns a copy of the cached filenames.
func (it *Iterator) Listing() []string {
	return append([]string(nil), it.listing...)
}

// Cursor returns the number of images handed out since the last path change.
func (it *Iterator) Cursor() uint64 {
	return it.cursor
}

// Reset forgets the cached folder so the next call rebuilds the listing.
func (it *Iterator) Reset() {
	it.path = ""
	it.listing = nil
	it.cursor = 0
}

// List returns the sorted names of the recognized image files in dir. A
// missing path or a path that is not a directory yields an empty listing.
func List(dir string) []string {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		slog.Warn("Unable to read folder", "path", dir, "err", err)
		return nil
	}

	var names []string
	for _, entry := range entries {
		if images.IsSupported(entry.Name()) {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)
	return names
}
