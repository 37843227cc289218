package generator

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/stablecanvas/aesthetic/v1/embeddingstore"
	"github.com/stablecanvas/aesthetic/v1/encoder"
	"github.com/stablecanvas/aesthetic/v1/logger"
	"github.com/stablecanvas/aesthetic/v1/metrics"
	"github.com/stablecanvas/aesthetic/v1/tracer"
	"github.com/stablecanvas/aesthetic/v1/vecmath"
)

// imageExtensions are the file suffixes recognized as reference images.
var imageExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".tiff": true,
	".webp": true,
}

// Generator turns a folder of images into one averaged, named embedding.
type Generator struct {
	cfg      Config
	provider *encoder.Provider
	store    embeddingstore.Store
	log      *logger.LoggerClient
	metrics  *metrics.Metrics
}

// NewGenerator builds a Generator. The metrics instance may be nil.
func NewGenerator(cfg Config, provider *encoder.Provider, store embeddingstore.Store, log *logger.LoggerClient, m *metrics.Metrics) *Generator {
	return &Generator{
		cfg:      cfg,
		provider: provider,
		store:    store,
		log:      log,
		metrics:  m,
	}
}

// Generate embeds every recognized image under folder, averages the feature
// vectors, and persists the mean under name (overwriting silently). Returns
// a human-readable completion message.
//
// A batchSize < 1 falls back to the configured default. The interrupt flag
// is polled before each batch; see the package documentation for partial
// results.
func (g *Generator) Generate(ctx context.Context, name, folder string, batchSize int, flag InterruptFlag) (msg string, err error) {
	ctx, span := otel.Tracer("aesthetic/generator").Start(ctx, "Generate")
	defer span.End()
	defer func() { tracer.RecordErrorOnSpan(span, err) }()
	span.SetAttributes(
		attribute.String("embedding.name", name),
		attribute.Int("batch.size", batchSize),
	)

	if batchSize < 1 {
		batchSize = g.cfg.DefaultBatchSize
	}
	if flag == nil {
		flag = NeverInterrupted{}
	}

	paths, err := listImages(folder)
	if err != nil {
		g.countRun("failed")
		return "", err
	}
	if len(paths) == 0 {
		g.countRun("failed")
		return "", fmt.Errorf("no image files in %s: %w", folder, ErrEmptyInput)
	}

	vision, err := g.provider.Acquire(ctx, g.cfg.ModelID)
	if err != nil {
		g.countRun("failed")
		return "", err
	}

	g.log.Info("generating aesthetic embedding", nil, map[string]interface{}{
		"name":       name,
		"folder":     folder,
		"images":     len(paths),
		"batch_size": batchSize,
	})

	var rows vecmath.Batch
	interrupted := false
	for start := 0; start < len(paths); start += batchSize {
		if flag.Interrupted() {
			interrupted = true
			break
		}
		end := start + batchSize
		if end > len(paths) {
			end = len(paths)
		}

		payloads := make([][]byte, 0, end-start)
		for _, p := range paths[start:end] {
			data, err := os.ReadFile(p)
			if err != nil {
				g.countRun("failed")
				return "", fmt.Errorf("generator: reading %s: %w", p, err)
			}
			payloads = append(payloads, data)
		}

		batch, err := vision.EncodeImages(ctx, payloads)
		if err != nil {
			g.countRun("failed")
			return "", fmt.Errorf("generator: encoding batch at %s: %w", paths[start], err)
		}
		rows = append(rows, batch...)
		g.metrics.CountImagesEmbedded(len(batch))
		g.log.Debug("batch embedded", nil, map[string]interface{}{
			"name":      name,
			"processed": len(rows),
			"total":     len(paths),
		})
	}

	if len(rows) == 0 {
		// Interrupted before the first batch finished; no partial exists.
		g.countRun("interrupted")
		return "", fmt.Errorf("interrupted before any batch completed: %w", ErrEmptyInput)
	}

	// Raw (unnormalized) mean, matching the persisted format; consumers
	// normalize at load time.
	mean, err := vecmath.Mean(rows)
	if err != nil {
		g.countRun("failed")
		return "", fmt.Errorf("generator: averaging %d vectors: %w", len(rows), err)
	}

	location, err := g.store.Register(ctx, name, mean)
	if err != nil {
		g.countRun("failed")
		return "", err
	}

	status := "completed"
	note := ""
	if interrupted {
		status = "interrupted"
		note = fmt.Sprintf(" (interrupted after %d of %d images)", len(rows), len(paths))
	}
	g.countRun(status)
	g.log.Info("aesthetic embedding generated", nil, map[string]interface{}{
		"name":     name,
		"images":   len(rows),
		"location": location,
		"status":   status,
	})

	return fmt.Sprintf("Done generating embedding for %s from %d images%s.\nAesthetic embedding saved to %s", name, len(rows), note, location), nil
}

func (g *Generator) countRun(status string) {
	g.metrics.CountEmbeddingGenerated(status)
}

// listImages returns the recognized image files of folder in directory
// order. Subdirectories are not descended into.
func listImages(folder string) ([]string, error) {
	entries, err := os.ReadDir(folder)
	if err != nil {
		return nil, fmt.Errorf("generator: listing %s: %w", folder, err)
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if imageExtensions[strings.ToLower(filepath.Ext(e.Name()))] {
			paths = append(paths, filepath.Join(folder, e.Name()))
		}
	}
	return paths, nil
}
