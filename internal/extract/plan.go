package extract

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/vmunix/xappli/internal/catalog"
	"github.com/vmunix/xappli/internal/convert"
)

// Placeholders used for path construction when a column is null.
const (
	UnknownArtist = "Unknown Artist"
	UnknownAlbum  = "Unknown Album"
)

// Skip reasons.
const (
	ReasonMissingSource     = "missing source"
	ReasonDestinationExists = "destination exists"
	ReasonOutsideRoot       = "path escapes output root"
)

// Action is what the executor does with a planned record.
type Action int

const (
	ActionCopy Action = iota
	ActionConvert
	ActionSkip
)

func (a Action) String() string {
	switch a {
	case ActionCopy:
		return "copy"
	case ActionConvert:
		return "convert"
	default:
		return "skip"
	}
}

// ConvertMode selects how conversion-set containers are handled.
type ConvertMode string

const (
	// ModeFLAC transcodes to FLAC.
	ModeFLAC ConvertMode = "flac"
	// ModeRename copies the file with the codec's extension (e.g. .aac).
	ModeRename ConvertMode = "rename"
	// ModeOff copies the file unchanged.
	ModeOff ConvertMode = "off"
)

// ParseConvertMode parses a conversion mode name. Empty means ModeFLAC.
func ParseConvertMode(s string) (ConvertMode, error) {
	switch m := ConvertMode(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return ModeFLAC, nil
	case ModeFLAC, ModeRename, ModeOff:
		return m, nil
	default:
		return "", fmt.Errorf("invalid convert mode %q: must be flac, rename or off", s)
	}
}

// Plan is the placement decision for one record.
type Plan struct {
	Dir      string
	Filename string
	Action   Action
	// Reason explains a skip.
	Reason string
}

// DestPath returns the full destination path.
func (p Plan) DestPath() string {
	return filepath.Join(p.Dir, p.Filename)
}

// Missing reports whether the plan skips a record without a source.
func (p Plan) Missing() bool {
	return p.Action == ActionSkip && p.Reason == ReasonMissingSource
}

// Planner computes destinations under an output root. It never touches
// the filesystem.
type Planner struct {
	root string
	mode ConvertMode
}

// NewPlanner creates a planner. An empty mode means ModeFLAC.
func NewPlanner(root string, mode ConvertMode) *Planner {
	if mode == "" {
		mode = ModeFLAC
	}
	return &Planner{root: root, mode: mode}
}

// Root returns the output root.
func (p *Planner) Root() string {
	return p.root
}

// Dir returns root/artist/album for a record. Null columns, names that
// sanitize to nothing and "." all take the placeholder, so the tree always
// keeps both levels.
func (p *Planner) Dir(rec catalog.Record) string {
	artist := segment(rec.ArtistOr(""), UnknownArtist)
	album := segment(rec.AlbumOr(""), UnknownAlbum)
	return filepath.Join(p.root, artist, album)
}

// Plan computes the placement for a file record.
func (p *Planner) Plan(rec catalog.Record) Plan {
	plan := Plan{Dir: p.Dir(rec)}

	src := rec.Source()
	if rec.SourcePath == nil || strings.TrimSpace(src) == "" {
		plan.Action = ActionSkip
		plan.Reason = ReasonMissingSource
		return plan
	}

	if err := ValidatePath(plan.Dir, p.root); err != nil || plan.Dir == filepath.Clean(p.root) {
		plan.Action = ActionSkip
		plan.Reason = ReasonOutsideRoot
		return plan
	}

	name := sourceBase(src)
	if filepath.Ext(name) == "" {
		if ext, ok := catalog.ContainerExtension(rec.ContainerType); ok {
			name += "." + ext
		}
	}
	plan.Filename = name
	plan.Action = ActionCopy

	if !catalog.NeedsConversion(rec.ContainerType) {
		return plan
	}

	switch p.mode {
	case ModeFLAC:
		plan.Action = ActionConvert
		plan.Filename = replaceExt(name, convert.CodecFLAC.Extension())
	case ModeRename:
		if ext, ok := catalog.CodecExtension(rec.Codec); ok {
			plan.Filename = replaceExt(name, ext)
		}
	}
	return plan
}

func segment(value, placeholder string) string {
	s := SanitizeSegment(value)
	if strings.TrimSpace(s) == "" || s == "." {
		return placeholder
	}
	return s
}
