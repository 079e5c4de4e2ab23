// Package export downloads recipe images and saves them either one at a time
// or packaged into a single archive.
package export

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/Rokon-556/recipe-gen/internal/logger"
	"github.com/Rokon-556/recipe-gen/pkg/archive"
	"github.com/Rokon-556/recipe-gen/pkg/download"
	"github.com/Rokon-556/recipe-gen/pkg/encode"
	"github.com/Rokon-556/recipe-gen/pkg/errutils"
	"github.com/Rokon-556/recipe-gen/pkg/naming"
	"github.com/Rokon-556/recipe-gen/pkg/save"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

var errMissingLocator = errors.New(MissingLocatorReason)

// Exporter ties a fetcher and a save target together.
type Exporter struct {
	Fetcher download.Fetcher
	Saver   save.Saver
	Options Options
	Hooks   Hooks // Hooks for progress and event notifications

	newID func() string
}

// New creates an exporter.
func New(fetcher download.Fetcher, saver save.Saver, opts Options) *Exporter {
	return &Exporter{
		Fetcher: fetcher,
		Saver:   saver,
		Options: opts,
		newID:   uuid.NewString,
	}
}

func emit(h Hooks, e Event) {
	if h.OnEvent != nil {
		h.OnEvent(e)
	}
}

func (e *Exporter) exportID() string {
	if e.newID == nil {
		return uuid.NewString()
	}
	return e.newID()
}

func (e *Exporter) check() error {
	if e.Fetcher == nil {
		return fmt.Errorf("fetcher is not configured")
	}
	if e.Saver == nil {
		return fmt.Errorf("save target is not configured")
	}
	return nil
}

// Fetch downloads and validates one image without saving it.
func (e *Exporter) Fetch(ctx context.Context, ref ImageReference) (encode.Encoded, error) {
	if strings.TrimSpace(ref.SourceLocator) == "" {
		return encode.Encoded{}, errutils.NewValidationError("image_url", MissingLocatorReason)
	}
	if e.Fetcher == nil {
		return encode.Encoded{}, fmt.Errorf("fetcher is not configured")
	}
	data, err := e.Fetcher.Fetch(ctx, ref.SourceLocator)
	if err != nil {
		return encode.Encoded{}, &errutils.ExportError{SequencePosition: ref.SequencePosition, Cause: err}
	}
	enc, err := encode.Encode(data)
	if err != nil {
		return encode.Encoded{}, &errutils.ExportError{SequencePosition: ref.SequencePosition, Cause: err}
	}
	return enc, nil
}

// ExportOne fetches a single image and saves it under its own file name.
func (e *Exporter) ExportOne(ctx context.Context, ref ImageReference, brandName, collectionName string) (ItemResult, error) {
	if err := e.check(); err != nil {
		return ItemResult{}, err
	}
	id := e.exportID()
	log := logger.With(logger.Fields{"export_id": id, "recipe": collectionName, "step": ref.SequencePosition})

	emit(e.Hooks, Event{Phase: PhaseFetching, ID: id, Step: ref.SequencePosition, Msg: ref.SourceLocator})
	enc, err := e.Fetch(ctx, ref)
	if err != nil {
		emit(e.Hooks, Event{Phase: PhaseError, ID: id, Step: ref.SequencePosition, Msg: err.Error()})
		log.Error("Image export failed", "error", err)
		return ItemResult{}, err
	}

	blob := save.Blob{
		Name:        naming.SingleExportFileName(collectionName, ref.SequencePosition, brandName),
		ContentType: enc.MIMEType,
		Data:        enc.Data,
	}
	emit(e.Hooks, Event{Phase: PhaseSaving, ID: id, Step: ref.SequencePosition, Msg: blob.Name})
	location, err := e.Saver.Save(ctx, blob)
	if err != nil {
		emit(e.Hooks, Event{Phase: PhaseError, ID: id, Step: ref.SequencePosition, Msg: err.Error()})
		return ItemResult{}, err
	}

	emit(e.Hooks, Event{Phase: PhaseDone, ID: id, Step: ref.SequencePosition, Msg: location})
	log.Info("Image exported", "location", location, "bytes", len(enc.Data))
	return ItemResult{
		Name:     blob.Name,
		Location: location,
		MIMEType: enc.MIMEType,
		Size:     len(enc.Data),
	}, nil
}

// ExportAll fetches every item of req concurrently and saves the successful
// ones as a single archive. Failed items are listed in the result's failure
// report and never abort the batch. A batch with no successful item returns
// *errutils.AllFailedError and saves nothing.
func (e *Exporter) ExportAll(ctx context.Context, req Request) (BatchResult, error) {
	if err := e.check(); err != nil {
		return BatchResult{}, err
	}
	result := BatchResult{ExportID: e.exportID()}
	log := logger.With(logger.Fields{"export_id": result.ExportID, "recipe": req.CollectionName})

	if len(req.Items) == 0 {
		emit(e.Hooks, Event{Phase: PhaseError, ID: result.ExportID, Msg: errutils.ErrEmptyExport.Error()})
		return result, errutils.Wrapf(errutils.ErrEmptyExport, "recipe %q", req.CollectionName)
	}

	if e.Hooks.BeforeBatch != nil {
		if err := e.Hooks.BeforeBatch(ctx, result.ExportID, req); err != nil {
			emit(e.Hooks, Event{Phase: PhaseError, ID: result.ExportID, Msg: err.Error()})
			return result, err
		}
	}

	// The batch timeout bounds fetching only. Packaging and saving run on ctx
	// so items fetched before the deadline still reach the archive.
	fetchCtx := ctx
	if e.Options.BatchTimeout > 0 {
		var cancel context.CancelFunc
		fetchCtx, cancel = context.WithTimeout(ctx, e.Options.BatchTimeout)
		defer cancel()
	}

	outcomes := e.fetchAll(fetchCtx, result.ExportID, req.Items)

	folder := ""
	if e.Options.ArchiveFolder {
		folder = naming.FolderName(req.CollectionName)
	}
	builder := archive.NewBuilder(folder)
	for _, o := range outcomes {
		if !o.Succeeded() {
			result.Failures = append(result.Failures, errutils.Failure{SequencePosition: o.SequencePosition, Reason: o.Err.Error()})
			continue
		}
		if err := builder.Add(naming.ItemFileName(req.BrandName, o.SequencePosition), o.Data); err != nil {
			result.Failures = append(result.Failures, errutils.Failure{SequencePosition: o.SequencePosition, Reason: err.Error()})
		}
	}
	sort.SliceStable(result.Failures, func(i, j int) bool {
		return result.Failures[i].SequencePosition < result.Failures[j].SequencePosition
	})

	if builder.Len() == 0 {
		nothingFetched := true
		for _, o := range outcomes {
			if !errors.Is(o.Err, errMissingLocator) {
				nothingFetched = false
				break
			}
		}
		err := &errutils.AllFailedError{Report: result.Failures, NothingFetched: nothingFetched}
		emit(e.Hooks, Event{Phase: PhaseError, ID: result.ExportID, Msg: err.Error()})
		log.Error("No images could be exported", "failed", len(result.Failures))
		return result, err
	}

	result.Saved = builder.Names()
	emit(e.Hooks, Event{Phase: PhasePackaging, ID: result.ExportID, Msg: fmt.Sprintf("%d image(s)", len(result.Saved))})
	data, err := builder.Finalize(ctx)
	if err != nil {
		emit(e.Hooks, Event{Phase: PhaseError, ID: result.ExportID, Msg: err.Error()})
		return result, err
	}

	result.ArchiveName = naming.ArchiveFileName(req.CollectionName)
	result.Size = len(data)
	emit(e.Hooks, Event{Phase: PhaseSaving, ID: result.ExportID, Msg: result.ArchiveName})
	location, err := e.Saver.Save(ctx, save.Blob{Name: result.ArchiveName, ContentType: archive.ContentType, Data: data})
	if err != nil {
		emit(e.Hooks, Event{Phase: PhaseError, ID: result.ExportID, Msg: err.Error()})
		return result, err
	}
	result.Location = location

	if len(result.Failures) > 0 {
		log.Warn("Some images failed to download", "failed", len(result.Failures), "saved", len(result.Saved))
	}
	log.Info("Archive exported", "location", location, "images", len(result.Saved), "bytes", len(data))
	emit(e.Hooks, Event{Phase: PhaseDone, ID: result.ExportID, Msg: location})

	if e.Hooks.AfterBatch != nil {
		if err := e.Hooks.AfterBatch(ctx, req, result); err != nil {
			log.Warn("Post-export hook failed", "error", err)
		}
	}
	return result, nil
}

// fetchAll returns one outcome per item, in input order. Items never cancel
// each other.
func (e *Exporter) fetchAll(ctx context.Context, id string, items []ImageReference) []Outcome {
	outcomes := make([]Outcome, len(items))

	var g errgroup.Group
	if e.Options.MaxConcurrent > 0 {
		g.SetLimit(e.Options.MaxConcurrent)
	}
	for i, item := range items {
		outcomes[i].SequencePosition = item.SequencePosition
		if strings.TrimSpace(item.SourceLocator) == "" {
			outcomes[i].Err = errMissingLocator
			continue
		}
		g.Go(func() error {
			emit(e.Hooks, Event{Phase: PhaseFetching, ID: id, Step: item.SequencePosition, Msg: item.SourceLocator})
			data, err := e.Fetcher.Fetch(ctx, item.SourceLocator)
			if err == nil {
				_, err = encode.Encode(data)
			}
			if err != nil {
				logger.Debug("Image fetch failed", logger.Fields{"export_id": id, "step": item.SequencePosition, "error": err.Error()})
				outcomes[i].Err = err
				return nil
			}
			outcomes[i].Data = data
			return nil
		})
	}
	_ = g.Wait()
	return outcomes
}
