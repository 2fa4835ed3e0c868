// Package catalog models the device-sync catalog: object rows, the static
// column tables, and the sources that produce raw rows.
package catalog

// ObjectType is the kind of catalog object a row describes.
type ObjectType int

const (
	ObjectUnknown ObjectType = iota
	ObjectPlaylist
	ObjectFile
	ObjectSpecialPlaylist
	ObjectArtist
)

func (t ObjectType) String() string {
	switch t {
	case ObjectPlaylist:
		return "playlist"
	case ObjectFile:
		return "file"
	case ObjectSpecialPlaylist:
		return "special playlist"
	case ObjectArtist:
		return "artist"
	default:
		return "unknown"
	}
}

// RawRecord is one catalog row keyed by column code.
// Values are whatever the driver produced: nil, string, []byte or int64.
type RawRecord map[string]any

// Record is a catalog row with its columns resolved to semantic fields.
// Nullable columns stay nil; placeholders are applied by consumers.
type Record struct {
	Type          ObjectType
	Title         string
	Artist        *string
	CoverArtPath  *string
	Album         *string
	ContainerType string
	Codec         string
	SourcePath    *string
}

// IsFile reports whether the record is eligible for transfer.
func (r Record) IsFile() bool {
	return r.Type == ObjectFile
}

// ArtistOr returns the artist, or fallback when the column was null.
func (r Record) ArtistOr(fallback string) string {
	return deref(r.Artist, fallback)
}

// AlbumOr returns the album, or fallback when the column was null.
func (r Record) AlbumOr(fallback string) string {
	return deref(r.Album, fallback)
}

// Source returns the source path, or "" when the column was null.
func (r Record) Source() string {
	return deref(r.SourcePath, "")
}

// CoverArt returns the cover art path, or "" when the column was null.
func (r Record) CoverArt() string {
	return deref(r.CoverArtPath, "")
}

func deref(s *string, fallback string) string {
	if s == nil {
		return fallback
	}
	return *s
}
