package export

import (
	"context"
	"time"

	"github.com/Rokon-556/recipe-gen/pkg/errutils"
)

// ImageReference points at one remote image of a recipe.
type ImageReference struct {
	SourceLocator    string `json:"image_url" yaml:"image_url"`
	SequencePosition int    `json:"step_number" yaml:"step_number"`
}

// Request describes one batch export. It is not modified by the exporter.
type Request struct {
	CollectionName string           `json:"recipe_name" yaml:"recipe_name"`
	BrandName      string           `json:"brand_name" yaml:"brand_name"`
	Items          []ImageReference `json:"images" yaml:"images"`
}

// Outcome is the result of fetching one item of a batch. Exactly one of Data
// and Err is set.
type Outcome struct {
	SequencePosition int
	Data             []byte
	Err              error
}

// Succeeded reports whether the item was fetched.
func (o Outcome) Succeeded() bool {
	return o.Err == nil
}

// ItemResult describes a single saved image.
type ItemResult struct {
	Name     string
	Location string
	MIMEType string
	Size     int
}

// BatchResult describes a saved archive.
type BatchResult struct {
	ExportID    string
	ArchiveName string
	Location    string
	Size        int
	Saved       []string // entry names inside the archive
	Failures    errutils.FailureReport
}

// Options control batch execution.
type Options struct {
	MaxConcurrent int           // 0 means unbounded
	BatchTimeout  time.Duration // 0 means no deadline
	ArchiveFolder bool          // place entries under a folder named after the recipe
}

// Event represents a simple progress notification.
type Event struct {
	Phase string // fetching|packaging|saving|done|error
	ID    string // export ID
	Step  int    // sequence position, 0 for batch-level events
	Msg   string
}

// Hooks carries callbacks for progress events. OnEvent may be called from
// several goroutines during a batch.
type Hooks struct {
	OnEvent func(Event)

	// BeforeBatch runs once per non-empty batch before any image is fetched.
	// An error aborts the batch.
	BeforeBatch func(ctx context.Context, exportID string, req Request) error

	// AfterBatch runs after the archive was saved. Its error is logged only.
	AfterBatch func(ctx context.Context, req Request, res BatchResult) error
}

// Event phases.
const (
	PhaseFetching  = "fetching"
	PhasePackaging = "packaging"
	PhaseSaving    = "saving"
	PhaseDone      = "done"
	PhaseError     = "error"
)

// MissingLocatorReason is reported for items without an image URL.
const MissingLocatorReason = "missing image URL"
