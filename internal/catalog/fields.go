package catalog

// Field is the semantic name of a catalog column.
type Field string

const (
	FieldObjectType    Field = "Object Type"
	FieldTitle         Field = "Title"
	FieldArtist        Field = "Artist"
	FieldCoverArtPath  Field = "Coverart Path"
	FieldAlbum         Field = "Album"
	FieldContainerType Field = "Container Type"
	FieldCodec         Field = "Codec"
	FieldFilename      Field = "Filename"
)

// Column codes used by the t_object table.
const (
	ColumnObjectType    = "ObjectSpecId"
	ColumnName          = "ObjectName"
	ColumnArtist        = "[201]"
	ColumnCoverArtPath  = "[202]"
	ColumnAlbum         = "[206]"
	ColumnContainerType = "[207]"
	ColumnCodec         = "[208]"
	ColumnFilename      = "[500]"
)

// Codec names as they appear in the catalog.
const (
	CodecAACLC = "AACLC"
	CodecFLAC  = "FLAC"
)

// columns is the query order of the mapped columns.
var columns = []string{
	ColumnObjectType,
	ColumnName,
	ColumnArtist,
	ColumnCoverArtPath,
	ColumnAlbum,
	ColumnContainerType,
	ColumnCodec,
	ColumnFilename,
}

var fieldMapping = map[string]Field{
	ColumnObjectType:    FieldObjectType,
	ColumnName:          FieldTitle,
	ColumnArtist:        FieldArtist,
	ColumnCoverArtPath:  FieldCoverArtPath,
	ColumnAlbum:         FieldAlbum,
	ColumnContainerType: FieldContainerType,
	ColumnCodec:         FieldCodec,
	ColumnFilename:      FieldFilename,
}

var objectTypes = map[string]ObjectType{
	"1": ObjectPlaylist,
	"2": ObjectFile,
	"6": ObjectSpecialPlaylist,
	"8": ObjectArtist,
}

// conversionContainers wrap AAC-LC in MP4/3GP and are transcoded on extraction.
var conversionContainers = map[string]bool{
	"MP4": true,
	"mp4": true,
	"3GP": true,
	"3gp": true,
}

var containerExtensions = map[string]string{
	"WAV":  "wav",
	"MP3":  "mp3",
	"FLAC": "flac",
}

var codecExtensions = map[string]string{
	CodecAACLC:            "aac",
	"MPEG-1 Audio Layer3": "mp3",
	"MPEG-2 Audio Layer3": "mp3",
	CodecFLAC:             "flac",
}

var drmContainers = map[string][]string{
	"OpenMG Audio": {"oma", "omg"},
}

// Columns returns the mapped column codes in query order.
func Columns() []string {
	out := make([]string, len(columns))
	copy(out, columns)
	return out
}

// FieldFor returns the semantic field for a column code.
func FieldFor(column string) (Field, bool) {
	f, ok := fieldMapping[column]
	return f, ok
}

// ParseObjectType resolves an object type code.
// Undocumented codes resolve to ObjectUnknown.
func ParseObjectType(code string) ObjectType {
	if t, ok := objectTypes[code]; ok {
		return t
	}
	return ObjectUnknown
}

// NeedsConversion reports whether files in this container are transcoded.
// The match is exact; only the listed case variants qualify.
func NeedsConversion(container string) bool {
	return conversionContainers[container]
}

// IsDRMContainer reports whether the container is a DRM wrapper that
// cannot be played outside the originating software.
func IsDRMContainer(container string) bool {
	_, ok := drmContainers[container]
	return ok
}

// ContainerExtension returns the file extension for a container type.
func ContainerExtension(container string) (string, bool) {
	ext, ok := containerExtensions[container]
	return ext, ok
}

// CodecExtension returns the file extension for a raw codec stream.
func CodecExtension(codec string) (string, bool) {
	ext, ok := codecExtensions[codec]
	return ext, ok
}
