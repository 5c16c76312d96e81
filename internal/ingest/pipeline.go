package ingest

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"picsema/internal/caption"
	"picsema/internal/embedding"
	"picsema/internal/history"
	"picsema/internal/imagemeta"
	"picsema/internal/model"
)

// IngestFile runs the full pipeline for a single image and returns the
// stored record. Each ingestion produces a fresh image id, so re-ingesting
// the same file yields a new record rather than overwriting the old one.
func (s *Service) IngestFile(ctx context.Context, path string, source model.SourceType) (*model.ImageRecord, error) {
	ctx, end := s.stageSpan(ctx, "ingest.image")
	record, err := s.ingestFile(ctx, path, source)
	end(err)
	return record, err
}

func (s *Service) ingestFile(ctx context.Context, path string, source model.SourceType) (*model.ImageRecord, error) {
	start := time.Now()

	canonical, err := s.authorizer.Authorize(path)
	if err != nil {
		return nil, s.fail(ctx, "", path, StageAuthorize, err)
	}
	if !imagemeta.IsSupported(canonical) {
		return nil, s.fail(ctx, "", path, StageMetadata, ErrUnsupportedFormat)
	}

	attrs, gps, err := imagemeta.Extract(canonical)
	if err != nil {
		return nil, s.fail(ctx, "", path, StageMetadata, err)
	}
	data, err := os.ReadFile(canonical)
	if err != nil {
		return nil, s.fail(ctx, "", path, StageMetadata, err)
	}

	imageID := model.NewImageID()

	captionCtx, endCaption := s.stageSpan(ctx, "ingest.caption")
	analysis, degraded, err := s.captionImage(captionCtx, data)
	endCaption(err)
	if err != nil {
		return nil, s.fail(ctx, imageID, path, StageCaption, err)
	}

	embedCtx, endEmbed := s.stageSpan(ctx, "ingest.embed")
	vector, err := s.embedImage(embedCtx, data)
	endEmbed(err)
	if err != nil {
		return nil, s.fail(ctx, imageID, path, StageEmbed, err)
	}

	record := &model.ImageRecord{
		ImageID:             imageID,
		FilePath:            canonical,
		FileName:            attrs.FileName,
		FileSize:            attrs.FileSize,
		Width:               attrs.Width,
		Height:              attrs.Height,
		Format:              attrs.Format,
		AITags:              analysis.Tags,
		AIDescription:       analysis.Description,
		ModelUsed:           analysis.Model,
		Embedding:           vector,
		EmbeddingDim:        len(vector),
		ProcessingTimestamp: time.Now().UTC(),
		SourceType:          source,
	}
	if gps != nil {
		record.GPS = &model.GPSCoordinates{Latitude: gps.Latitude, Longitude: gps.Longitude}
		record.LocationName = s.lookupLocation(ctx, gps.Latitude, gps.Longitude)
	}

	storeCtx, endStore := s.stageSpan(ctx, "ingest.store")
	err = s.store.Upsert(storeCtx, record)
	endStore(err)
	if err != nil {
		return nil, s.fail(ctx, imageID, path, StageStore, err)
	}

	s.enrich(ctx, record, data)

	status := history.StatusSuccess
	if degraded {
		status = history.StatusDegraded
	}
	s.recordOutcome(ctx, history.IngestEntry{
		ImageID:   record.ImageID,
		FilePath:  record.FilePath,
		Status:    status,
		ModelUsed: record.ModelUsed,
	})
	if s.metrics != nil {
		s.metrics.IncrementIngested(string(status))
		s.metrics.RecordIngestDuration(start, "total")
	}

	s.logger.Info("image ingested", nil, map[string]interface{}{
		"image_id": record.ImageID,
		"file":     record.FileName,
		"tags":     len(record.AITags),
		"degraded": degraded,
	})
	return record, nil
}

// captionImage retries transient captioning failures and degrades to an
// empty caption when the model's output cannot be parsed. The image is
// still stored in that case, marked so a later pass can re-caption it.
func (s *Service) captionImage(ctx context.Context, data []byte) (caption.Analysis, bool, error) {
	var analysis caption.Analysis
	err := s.withRetry(ctx, caption.IsUnavailable, func() error {
		var cerr error
		analysis, cerr = s.captioner.Analyze(ctx, data)
		return cerr
	})
	if err == nil {
		return analysis, false, nil
	}
	if caption.IsParseError(err) {
		s.logger.Warn("caption output unparsable, storing without caption", err, nil)
		return caption.Analysis{Model: model.CaptionDegradedModel}, true, nil
	}
	return caption.Analysis{}, false, err
}

func (s *Service) embedImage(ctx context.Context, data []byte) ([]float32, error) {
	var vector []float32
	err := s.withRetry(ctx, func(err error) bool {
		return errors.Is(err, embedding.ErrServiceUnavailable)
	}, func() error {
		var eerr error
		vector, eerr = s.embedder.EmbedImage(ctx, data)
		return eerr
	})
	return vector, err
}

func (s *Service) lookupLocation(ctx context.Context, lat, lon float64) string {
	if s.geocoder == nil {
		return ""
	}
	name, err := s.geocoder.ReverseLookup(ctx, lat, lon)
	if err != nil {
		s.logger.Warn("reverse geocoding failed", err, nil)
		return ""
	}
	return name
}

// enrich runs the best-effort integrations after the record is stored.
// Their failures are logged and counted, never propagated.
func (s *Service) enrich(ctx context.Context, record *model.ImageRecord, data []byte) {
	if s.archive != nil {
		ext := filepath.Ext(record.FileName)
		if err := s.archive.Store(ctx, record.ImageID, ext, data, contentTypeFor(record.Format)); err != nil {
			s.logger.Warn("failed to archive original", err, map[string]interface{}{
				"image_id": record.ImageID,
			})
			if s.metrics != nil {
				s.metrics.IncrementStageFailure(StageArchive)
			}
		}
	}
	if s.events != nil {
		if err := s.events.PublishIngested(ctx, record); err != nil {
			s.logger.Warn("failed to publish ingestion event", err, map[string]interface{}{
				"image_id": record.ImageID,
			})
		}
	}
}

// stageSpan opens a tracing span for one pipeline stage. The returned end
// function records err on the span when non-nil; it must always be called.
func (s *Service) stageSpan(ctx context.Context, name string) (context.Context, func(error)) {
	if s.tracer == nil {
		return ctx, func(error) {}
	}
	ctx, span := s.tracer.StartSpan(ctx, name)
	return ctx, func(err error) {
		if err != nil {
			s.tracer.RecordErrorOnSpan(span, err)
		}
		span.End()
	}
}

// withRetry runs op, retrying with a doubling backoff while retryable
// reports the failure as transient. Context cancellation stops the retries.
func (s *Service) withRetry(ctx context.Context, retryable func(error) bool, op func() error) error {
	err := op()
	backoff := s.cfg.RetryBackoff
	for attempt := 0; attempt < s.cfg.RetryAttempts && err != nil && retryable(err); attempt++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
		err = op()
	}
	return err
}

func (s *Service) fail(ctx context.Context, imageID, path, stage string, err error) error {
	wrapped := stageErr(stage, err)
	s.logger.Error("ingestion failed", err, map[string]interface{}{
		"file":  path,
		"stage": stage,
	})
	if s.metrics != nil {
		s.metrics.IncrementStageFailure(stage)
		s.metrics.IncrementIngested(string(history.StatusFailed))
	}
	s.recordOutcome(ctx, history.IngestEntry{
		ImageID:      imageID,
		FilePath:     path,
		Status:       history.StatusFailed,
		FailureStage: stage,
		FailureCause: err.Error(),
	})
	return wrapped
}

func (s *Service) recordOutcome(ctx context.Context, entry history.IngestEntry) {
	if s.ledger == nil {
		return
	}
	if err := s.ledger.RecordIngest(ctx, entry); err != nil {
		s.logger.Warn("failed to record ingestion in ledger", err, nil)
	}
}

// IngestDirectory processes every supported image under dir, recursing into
// subdirectories, with a bounded worker pool. Individual failures are
// collected into the report instead of aborting the run. Cancellation stops
// new images from starting; images already in flight run to completion so
// their records are either fully stored or fully reconciled.
func (s *Service) IngestDirectory(ctx context.Context, dir string) (*model.BatchReport, error) {
	canonical, err := s.authorizer.Authorize(dir)
	if err != nil {
		return nil, err
	}
	paths, err := s.collectImages(canonical)
	if err != nil {
		return nil, err
	}

	report := &model.BatchReport{Started: time.Now().UTC()}
	var mu sync.Mutex

	// In-flight pipelines must not be torn down mid-write; a cancelled
	// batch context only gates submissions, never a running pipeline.
	itemCtx := context.WithoutCancel(ctx)

	var g errgroup.Group
	g.SetLimit(s.cfg.Workers)

	for _, path := range paths {
		if ctx.Err() != nil {
			break
		}

		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			record, err := s.IngestFile(itemCtx, path, model.SourceBulk)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				report.Failed = append(report.Failed, model.BatchFailure{
					Path:   path,
					Stage:  FailureStage(err),
					Reason: err.Error(),
				})
				return nil
			}
			report.Succeeded = append(report.Succeeded, record.ImageID)
			return nil
		})
	}

	_ = g.Wait()
	report.Finished = time.Now().UTC()
	report.Sort()

	if s.ledger != nil {
		if err := s.ledger.RecordBatch(itemCtx, canonical, report); err != nil {
			s.logger.Warn("failed to record batch in ledger", err, nil)
		}
	}

	s.logger.Info("directory ingestion finished", nil, map[string]interface{}{
		"directory": canonical,
		"succeeded": len(report.Succeeded),
		"failed":    len(report.Failed),
	})
	return report, ctx.Err()
}

// collectImages walks dir recursively and returns the supported image files
// in lexical order, capped at MaxImages when configured.
func (s *Service) collectImages(dir string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !imagemeta.IsSupported(path) {
			return nil
		}
		if s.cfg.MaxImages > 0 && len(paths) >= s.cfg.MaxImages {
			return fs.SkipAll
		}
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return paths, nil
}

func contentTypeFor(format string) string {
	switch strings.ToUpper(format) {
	case "JPEG", "JPG":
		return "image/jpeg"
	case "PNG":
		return "image/png"
	case "GIF":
		return "image/gif"
	case "BMP":
		return "image/bmp"
	case "TIFF":
		return "image/tiff"
	case "WEBP":
		return "image/webp"
	default:
		return "application/octet-stream"
	}
}
