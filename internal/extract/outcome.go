package extract

import "github.com/vmunix/xappli/internal/catalog"

// Outcome is the per-record result kind.
type Outcome int

const (
	OutcomeTransferred Outcome = iota
	OutcomeConverted
	OutcomeSkipped
	OutcomeMissingSource
	OutcomeConversionFailed
	OutcomeFailed
)

// Outcomes lists every outcome in report order.
var Outcomes = []Outcome{
	OutcomeTransferred,
	OutcomeConverted,
	OutcomeSkipped,
	OutcomeMissingSource,
	OutcomeConversionFailed,
	OutcomeFailed,
}

func (o Outcome) String() string {
	switch o {
	case OutcomeTransferred:
		return "transferred"
	case OutcomeConverted:
		return "converted"
	case OutcomeSkipped:
		return "skipped"
	case OutcomeMissingSource:
		return "missing_source"
	case OutcomeConversionFailed:
		return "conversion_failed"
	default:
		return "failed"
	}
}

// NeedsFollowUp reports whether the outcome is listed for manual follow-up.
func (o Outcome) NeedsFollowUp() bool {
	return o == OutcomeMissingSource || o == OutcomeConversionFailed
}

// CoverStatus records what happened to a record's cover art.
type CoverStatus int

const (
	CoverNone CoverStatus = iota
	CoverCopied
	CoverPresent
	CoverUnavailable
	CoverFailed
)

func (c CoverStatus) String() string {
	switch c {
	case CoverCopied:
		return "copied"
	case CoverPresent:
		return "present"
	case CoverUnavailable:
		return "unavailable"
	case CoverFailed:
		return "failed"
	default:
		return "none"
	}
}

// Result is the outcome of processing one file record.
type Result struct {
	// Index is the record's position in the catalog snapshot.
	Index    int
	Record   catalog.Record
	Plan     Plan
	Outcome  Outcome
	Reason   string
	DestPath string
	// StagedPath is the staged copy kept after a failed conversion.
	StagedPath string
	SizeBytes  int64
	CoverArt   CoverStatus
	Err        error
}

// Report collects the results of a run in catalog order.
type Report struct {
	Results []Result
	// Ignored counts rows that were not file objects.
	Ignored int
	// Dirs counts distinct destination directories ensured.
	Dirs          int
	IgnoreMissing bool
}

// Count returns the number of results with outcome o.
func (r *Report) Count(o Outcome) int {
	n := 0
	for _, res := range r.Results {
		if res.Outcome == o {
			n++
		}
	}
	return n
}

// Counts returns the number of results per outcome.
func (r *Report) Counts() map[Outcome]int {
	counts := make(map[Outcome]int, len(Outcomes))
	for _, res := range r.Results {
		counts[res.Outcome]++
	}
	return counts
}

// FollowUps returns missing-source and conversion-failure results in
// catalog order. Missing sources are left out when IgnoreMissing is set.
func (r *Report) FollowUps() []Result {
	var out []Result
	for _, res := range r.Results {
		if !res.Outcome.NeedsFollowUp() {
			continue
		}
		if res.Outcome == OutcomeMissingSource && r.IgnoreMissing {
			continue
		}
		out = append(out, res)
	}
	return out
}

// BytesWritten returns the total size of files placed in the library.
func (r *Report) BytesWritten() int64 {
	var total int64
	for _, res := range r.Results {
		if res.Outcome == OutcomeTransferred || res.Outcome == OutcomeConverted {
			total += res.SizeBytes
		}
	}
	return total
}

// CoverCount returns the number of results with cover status c.
func (r *Report) CoverCount(c CoverStatus) int {
	n := 0
	for _, res := range r.Results {
		if res.CoverArt == c {
			n++
		}
	}
	return n
}
