package internal

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"time"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"

	"github.com/nocturnecity/density-resizer/pkg"
)

const outputDirPerm = 0o755

type HandlerOption func(rh *ResizeHandler)

func WithMetrics(m *Metrics) HandlerOption {
	return func(rh *ResizeHandler) { rh.metrics = m }
}

func WithSourceLoader(sl *SourceLoader) HandlerOption {
	return func(rh *ResizeHandler) { rh.source = sl }
}

func WithPublisher(p *Publisher) HandlerOption {
	return func(rh *ResizeHandler) { rh.publisher = p }
}

func NewResizeHandler(request pkg.Request, stdLog *StdLog, opts ...HandlerOption) *ResizeHandler {
	rh := &ResizeHandler{
		Request: request,
		runID:   uuid.NewString(),
	}
	for _, opt := range opts {
		opt(rh)
	}
	rh.log = stdLog.With("run", rh.runID)
	if rh.source == nil {
		var srcOpts []SourceOption
		if request.Publish != nil {
			srcOpts = append(srcOpts, WithSourceRegion(request.Publish.Region))
		}
		rh.source = NewSourceLoader(rh.log, srcOpts...)
	}
	if rh.publisher == nil && request.Publish != nil {
		rh.publisher = NewPublisher(*request.Publish, rh.log, nil)
	}
	if rh.metrics == nil {
		rh.metrics = NewMetrics()
	}
	return rh
}

// ResizeHandler derives one PNG per size table entry from a single source
// image. A run is fail-fast: the first error stops it, and outputs already
// written are left in place.
type ResizeHandler struct {
	Request   pkg.Request
	log       *StdLog
	runID     string
	resampler Resampler
	source    *SourceLoader
	publisher *Publisher
	metrics   *Metrics
}

func (rh *ResizeHandler) ProcessRequest(ctx context.Context) (*pkg.Response, error) {
	rh.metrics.RunStarted()
	res, err := rh.process(ctx)
	if err != nil {
		rh.metrics.RunFailed(err)
		return nil, fmt.Errorf("process request error: %w", err)
	}
	return res, nil
}

func (rh *ResizeHandler) process(ctx context.Context) (*pkg.Response, error) {
	defer rh.source.Cleanup()
	rh.log.Debug("Processing request %+v", rh.Request)

	if err := rh.Request.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	resampler, err := NewResampler(rh.Request.Filter)
	if err != nil {
		return nil, err
	}
	rh.resampler = resampler
	// the size table is only read from here on
	sizes := rh.Request.Sizes.Clone()

	src, err := rh.source.Load(ctx, rh.Request.SourcePath)
	if err != nil {
		return nil, err
	}

	if rh.Request.OutputDir != "" {
		if err := os.MkdirAll(rh.Request.OutputDir, outputDirPerm); err != nil {
			return nil, fmt.Errorf("%w: create output directory: %v", ErrEncode, err)
		}
	}

	var results []pkg.ResultSize
	if rh.Request.Workers > 1 && len(sizes) > 1 {
		results, err = rh.processParallel(ctx, src, sizes)
	} else {
		results, err = rh.processSequential(ctx, src, sizes)
	}
	if err != nil {
		return nil, err
	}
	return &pkg.Response{RunID: rh.runID, Sizes: results}, nil
}

func (rh *ResizeHandler) processSequential(ctx context.Context, src image.Image, sizes pkg.SizeTable) ([]pkg.ResultSize, error) {
	results := make([]pkg.ResultSize, 0, len(sizes))
	for _, size := range sizes {
		result, err := rh.processSize(ctx, src, size)
		if err != nil {
			return nil, err
		}
		results = append(results, result)
	}
	return results, nil
}

func (rh *ResizeHandler) processParallel(ctx context.Context, src image.Image, sizes pkg.SizeTable) ([]pkg.ResultSize, error) {
	workers := rh.Request.Workers
	if workers > len(sizes) {
		workers = len(sizes)
	}
	pool := NewPool(rh.log, workers)
	pool.Run()
	defer pool.ShutDown()

	channels := make([]chan jobResult, len(sizes))
	for i, size := range sizes {
		channels[i] = make(chan jobResult, 1)
		pool.Dispatch(job{
			d: size,
			run: func(d pkg.Density) (pkg.ResultSize, error) {
				return rh.processSize(ctx, src, d)
			},
			c: channels[i],
		})
	}

	// every job is awaited so no worker outlives the run
	results := make([]pkg.ResultSize, 0, len(sizes))
	var firstErr error
	for _, c := range channels {
		res := <-c
		if res.err != nil {
			if firstErr == nil {
				firstErr = res.err
			}
			continue
		}
		results = append(results, res.result)
	}
	if firstErr != nil {
		return nil, firstErr
	}
	return results, nil
}

func (rh *ResizeHandler) processSize(ctx context.Context, src image.Image, size pkg.Density) (pkg.ResultSize, error) {
	// queued jobs stop here once the run is interrupted
	if err := ctx.Err(); err != nil {
		return pkg.ResultSize{}, err
	}
	start := time.Now()
	resized := rh.resampler.Resample(src, size.Width, size.Height)
	if b := resized.Bounds(); b.Dx() != size.Width || b.Dy() != size.Height {
		return pkg.ResultSize{}, fmt.Errorf("%w: %s: resampled to %dx%d", ErrEncode, size, b.Dx(), b.Dy())
	}

	path := filepath.Join(rh.Request.OutputDir, size.FileName())
	if err := rh.writePNG(path, resized); err != nil {
		return pkg.ResultSize{}, err
	}
	rh.metrics.OutputWritten(size.Label, time.Since(start))
	rh.log.Info("Saved: %s", path)

	if rh.publisher != nil {
		key, err := rh.publisher.Publish(ctx, path, size)
		if err != nil {
			return pkg.ResultSize{}, err
		}
		rh.log.Info("Published: %s", key)
	}

	return pkg.ResultSize{
		Label:  size.Label,
		Path:   path,
		Width:  size.Width,
		Height: size.Height,
	}, nil
}

// writePNG encodes img next to path under a random name and renames it into
// place, so a failed write never leaves a truncated PNG behind.
func (rh *ResizeHandler) writePNG(path string, img image.Image) (err error) {
	tmpName := filepath.Join(filepath.Dir(path), fmt.Sprintf(".%s.%s.tmp", uuid.New(), pkg.OutputFormat))
	file, err := os.Create(tmpName)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrEncode, path, err)
	}
	defer func() {
		if err != nil {
			if rmErr := os.Remove(tmpName); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
				rh.log.Error("error clean up file delete: %v", rmErr)
			}
		}
	}()

	encErr := imaging.Encode(file, img, imaging.PNG, imaging.PNGCompressionLevel(png.DefaultCompression))
	closeErr := file.Close()
	if encErr != nil {
		return fmt.Errorf("%w: %s: %v", ErrEncode, path, encErr)
	}
	if closeErr != nil {
		return fmt.Errorf("%w: %s: %v", ErrEncode, path, closeErr)
	}
	if err = os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrEncode, path, err)
	}
	return nil
}
