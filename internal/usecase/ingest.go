package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"mantis/internal/adapter/analyzer"
	"mantis/internal/domain"
	"mantis/internal/port"
)

// IngestUseCase turns a folder of manuals into a knowledge base.
type IngestUseCase struct {
	walker    port.FileWalker
	extractor port.TextExtractor
	chunker   port.Chunker
	store     port.KnowledgeBaseStore
	workers   int
	log       *logrus.Entry

	// OnFile, if set, is called once per file as extraction finishes. It may be
	// called from several goroutines.
	OnFile func(file port.FileInfo, pages int, err error)
}

func NewIngestUseCase(
	walker port.FileWalker,
	extractor port.TextExtractor,
	chunker port.Chunker,
	store port.KnowledgeBaseStore,
	workers int,
	log *logrus.Entry,
) *IngestUseCase {
	if workers < 1 {
		workers = 1
	}
	if log == nil {
		log = logrus.WithField("component", "ingest")
	}
	return &IngestUseCase{
		walker:    walker,
		extractor: extractor,
		chunker:   chunker,
		store:     store,
		workers:   workers,
		log:       log,
	}
}

// IngestResult summarises one ingestion run.
type IngestResult struct {
	Files     []port.FileInfo
	Documents []domain.Document
	Chunks    []domain.Chunk
	Failed    map[string]error
	Stats     domain.Stats
	Duration  time.Duration
}

type extracted struct {
	doc    domain.Document
	chunks []domain.Chunk
	err    error
}

// Discover lists the manuals Ingest would process.
func (u *IngestUseCase) Discover(root string) ([]port.FileInfo, error) {
	files, err := u.walker.Walk(root)
	if err != nil {
		return nil, fmt.Errorf("failed to walk manuals folder: %w", err)
	}
	return files, nil
}

// Ingest extracts every manual under root, numbers the pages across the whole
// corpus in file order, and saves the result. A file that fails to extract is
// skipped and reported in Failed; a missing extractor aborts the run. When no
// page yields text nothing is saved and ErrEmptyKnowledgeBase is returned.
func (u *IngestUseCase) Ingest(ctx context.Context, root string) (*IngestResult, error) {
	start := time.Now()

	files, err := u.Discover(root)
	if err != nil {
		return nil, err
	}
	u.log.WithField("files", len(files)).Info("discovered manuals")

	results := make([]extracted, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(u.workers)
	for i, file := range files {
		g.Go(func() error {
			doc := domain.Document{
				ID:       file.RelPath,
				Path:     file.Path,
				Name:     file.Name,
				Platform: analyzer.DetectPlatform(file.Name),
				ModTime:  time.Unix(file.ModTime, 0),
			}

			chunks, err := u.extractFile(gctx, doc)
			if u.OnFile != nil {
				u.OnFile(file, len(chunks), err)
			}
			if errors.Is(err, domain.ErrExtractorUnavailable) {
				return err
			}
			results[i] = extracted{doc: doc, chunks: chunks, err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	res := &IngestResult{
		Files:  files,
		Failed: make(map[string]error),
	}

	counter := 0
	for _, r := range results {
		if r.err != nil {
			res.Failed[r.doc.Name] = r.err
			u.log.WithError(r.err).WithField("file", r.doc.Name).Warn("failed to process manual")
			continue
		}
		res.Documents = append(res.Documents, r.doc)
		for _, c := range r.chunks {
			counter++
			c.ID = fmt.Sprintf("doc%d_p%d", counter, c.Page)
			res.Chunks = append(res.Chunks, c)
		}
		u.log.WithFields(logrus.Fields{
			"file":     r.doc.Name,
			"platform": r.doc.Platform,
			"pages":    len(r.chunks),
		}).Debug("processed manual")
	}

	res.Stats = domain.ComputeStats(res.Chunks)
	res.Duration = time.Since(start)

	if len(res.Chunks) == 0 {
		return res, domain.ErrEmptyKnowledgeBase
	}

	if err := u.store.Save(res.Chunks); err != nil {
		return res, fmt.Errorf("save knowledge base: %w", err)
	}
	u.log.WithFields(logrus.Fields{
		"chunks": len(res.Chunks),
		"path":   u.store.Path(),
	}).Info("saved knowledge base")
	return res, nil
}

func (u *IngestUseCase) extractFile(ctx context.Context, doc domain.Document) ([]domain.Chunk, error) {
	content, err := u.extractor.Extract(ctx, doc.Path)
	if err != nil {
		return nil, err
	}
	return u.chunker.Chunk(doc, content)
}
