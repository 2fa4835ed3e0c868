package catalog

import (
	"fmt"
	"strconv"
	"strings"
)

// Resolve maps a raw row onto a Record using the static field mapping.
// Unmapped columns are ignored. Absent and NULL columns resolve to nil
// (nullable fields) or "" (plain strings).
func Resolve(raw RawRecord) Record {
	var rec Record
	for column, value := range raw {
		field, ok := FieldFor(column)
		if !ok {
			continue
		}
		s, ok := stringValue(value)
		if !ok {
			continue
		}
		switch field {
		case FieldObjectType:
			rec.Type = ParseObjectType(strings.TrimSpace(s))
		case FieldTitle:
			rec.Title = s
		case FieldArtist:
			rec.Artist = &s
		case FieldCoverArtPath:
			rec.CoverArtPath = &s
		case FieldAlbum:
			rec.Album = &s
		case FieldContainerType:
			rec.ContainerType = s
		case FieldCodec:
			rec.Codec = s
		case FieldFilename:
			rec.SourcePath = &s
		}
	}
	return rec
}

// stringValue converts a driver value to a string.
// The second result is false for NULL.
func stringValue(v any) (string, bool) {
	switch val := v.(type) {
	case nil:
		return "", false
	case string:
		return val, true
	case []byte:
		if val == nil {
			return "", false
		}
		return string(val), true
	case int64:
		return strconv.FormatInt(val, 10), true
	case int:
		return strconv.Itoa(val), true
	case *string:
		if val == nil {
			return "", false
		}
		return *val, true
	default:
		return fmt.Sprint(val), true
	}
}
