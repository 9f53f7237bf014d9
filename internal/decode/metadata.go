package decode

import (
	"io"
	"path/filepath"
	"strings"

	"github.com/dhowden/tag"

	"github.com/oneamp/oneamp/api"
)

const unknownField = "Unknown"

// readTags extracts title/artist/album from the file's tags. Files
// without tags fall back to the file name as the title.
func readTags(r io.ReadSeeker, path string) api.TrackMetadata {
	meta := api.TrackMetadata{
		Path:   path,
		Title:  strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
		Artist: unknownField,
		Album:  unknownField,
	}

	m, err := tag.ReadFrom(r)
	if err != nil {
		return meta
	}
	if t := m.Title(); t != "" {
		meta.Title = t
	}
	if a := m.Artist(); a != "" {
		meta.Artist = a
	}
	if a := m.Album(); a != "" {
		meta.Album = a
	}
	return meta
}
