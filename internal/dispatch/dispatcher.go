// Package dispatch classifies document references and fans work out to the
// OCR provider: a URL or single file yields one outcome record, a directory
// yields one record per supported child file with per-file failure
// isolation.
package dispatch

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/jackzampolin/docr/internal/docref"
	"github.com/jackzampolin/docr/internal/inspect"
	"github.com/jackzampolin/docr/internal/ocrerr"
	"github.com/jackzampolin/docr/internal/providers"
)

// Record pairs a human-readable source label (URL, original path, or file
// basename) with the provider's opaque response.
type Record struct {
	File     string          `json:"file"`
	Response json.RawMessage `json:"response"`
}

// Failure identifies an input that failed during directory or batch
// processing, by label and error kind.
type Failure struct {
	File    string      `json:"file"`
	Kind    ocrerr.Kind `json:"kind"`
	Message string      `json:"message"`
}

// Result aggregates the outcome of one dispatch call. Records holds the
// successes; Failures holds per-item failures from the directory branch.
// For URL and single-file inputs Failures is always empty: their errors
// propagate to the caller instead.
type Result struct {
	Records  []Record  `json:"records"`
	Failures []Failure `json:"failures,omitempty"`
}

// Config holds dispatcher configuration.
type Config struct {
	Provider   providers.OCRProvider
	Extensions docref.ExtensionSet
	Logger     *slog.Logger

	// Workers bounds concurrent provider calls in the directory branch.
	// Values <= 1 mean sequential processing. Record order is directory
	// listing order when sequential and unspecified otherwise.
	Workers int
}

// Dispatcher routes document references to the OCR provider.
type Dispatcher struct {
	provider   providers.OCRProvider
	extensions docref.ExtensionSet
	logger     *slog.Logger
	workers    int
}

// New creates a dispatcher.
func New(cfg Config) *Dispatcher {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if len(cfg.Extensions.List()) == 0 {
		cfg.Extensions = docref.DefaultExtensions()
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	return &Dispatcher{
		provider:   cfg.Provider,
		extensions: cfg.Extensions,
		logger:     cfg.Logger,
		workers:    cfg.Workers,
	}
}

// Process classifies input and dispatches it. URL and single-file failures
// propagate; directory processing isolates per-file failures and never
// aborts remaining files.
func (d *Dispatcher) Process(ctx context.Context, input string) (*Result, error) {
	switch Classify(input) {
	case KindURL:
		d.logger.Info("processing URL", "url", input)
		return d.processSingle(ctx, input, input)
	case KindFile:
		d.logger.Info("processing file", "file", input)
		return d.processSingle(ctx, input, input)
	case KindDirectory:
		d.logger.Info("processing directory", "dir", input)
		return d.processDirectory(ctx, input)
	default:
		return nil, ocrerr.Newf(ocrerr.KindInvalidInput,
			"invalid input: %s (must be a file, directory, or URL)", input)
	}
}

// processSingle runs one provider call and wraps it as a one-record result
// labeled with the original reference.
func (d *Dispatcher) processSingle(ctx context.Context, ref, label string) (*Result, error) {
	d.inspectLocal(ref)

	res, err := d.provider.ProcessDocument(ctx, ref)
	if err != nil {
		return nil, err
	}
	return &Result{Records: []Record{{File: label, Response: res.Raw}}}, nil
}

// processDirectory enumerates direct children, filters to supported
// extensions, and folds provider calls into (successes, failures).
func (d *Dispatcher) processDirectory(ctx context.Context, dir string) (*Result, error) {
	supported, err := d.listSupported(dir)
	if err != nil {
		return nil, err
	}
	if len(supported) == 0 {
		d.logger.Warn("no supported files found in directory", "dir", dir)
		return &Result{Records: []Record{}}, nil
	}

	if d.workers > 1 {
		return d.processFiles(ctx, supported), nil
	}

	result := &Result{}
	for _, path := range supported {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		d.processInto(ctx, path, result, nil)
	}
	return result, nil
}

// processFiles fans file processing out over a bounded worker pool.
func (d *Dispatcher) processFiles(ctx context.Context, paths []string) *Result {
	result := &Result{}
	var mu sync.Mutex
	var wg sync.WaitGroup
	sem := make(chan struct{}, d.workers)

	for _, path := range paths {
		wg.Add(1)
		sem <- struct{}{}
		go func(p string) {
			defer wg.Done()
			defer func() { <-sem }()
			d.processInto(ctx, p, result, &mu)
		}(path)
	}
	wg.Wait()
	return result
}

// processInto processes one file and appends the outcome to result.
// Failures are recorded and logged, never propagated: one bad file must not
// abort the batch.
func (d *Dispatcher) processInto(ctx context.Context, path string, result *Result, mu *sync.Mutex) {
	label := filepath.Base(path)
	d.logger.Info("processing file", "file", path)
	d.inspectLocal(path)

	res, err := d.provider.ProcessDocument(ctx, path)

	if mu != nil {
		mu.Lock()
		defer mu.Unlock()
	}
	if err != nil {
		d.logger.Error("error processing file", "file", path, "error", err)
		result.Failures = append(result.Failures, Failure{
			File:    label,
			Kind:    ocrerr.KindOf(err),
			Message: err.Error(),
		})
		return
	}
	result.Records = append(result.Records, Record{File: label, Response: res.Raw})
}

// listSupported returns the directory's direct regular-file children whose
// lowercase suffix is in the supported set, in listing order.
func (d *Dispatcher) listSupported(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, ocrerr.Wrap(ocrerr.KindFileAccess, err, "error listing directory").WithPath(dir)
	}

	var supported []string
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		name := entry.Name()
		if !d.extensions.Contains(name) {
			d.logger.Debug("skipping unsupported file", "file", name)
			continue
		}
		supported = append(supported, filepath.Join(dir, name))
	}
	return supported, nil
}

// inspectLocal runs the local pre-flight on PDF files: validation and page
// count, logged at debug level. Inspection problems are reported by the
// provider call itself, so they are not treated as failures here.
func (d *Dispatcher) inspectLocal(ref string) {
	if docref.IsURL(ref) || strings.ToLower(filepath.Ext(ref)) != ".pdf" {
		return
	}
	info, err := inspect.PDF(ref)
	if err != nil {
		d.logger.Debug("pdf pre-flight failed", "file", ref, "error", err)
		return
	}
	d.logger.Debug("pdf pre-flight", "file", ref, "pages", info.PageCount)
}
