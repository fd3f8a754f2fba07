package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/okian/swatch/internal/domain/analysis"
	"github.com/okian/swatch/internal/domain/calibration"
	"github.com/okian/swatch/internal/domain/garment"
	"github.com/okian/swatch/pkg/logger"
)

// Run classifies every file and writes one JSON document per file to w, in
// input order. It returns the number of files that failed.
func Run(ctx context.Context, cfg Config, w io.Writer) (int, error) {
	cal := calibration.Default()
	an, err := analysis.New(cal)
	if err != nil {
		return 0, fmt.Errorf("build analyzer: %w", err)
	}
	scorer := garment.New(cal.Garment, cal.Attributes)

	workers := cfg.Workers
	if workers <= 0 {
		workers = 1
	}

	results := make([]Result, len(cfg.Files))
	jobs := make(chan int)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				results[idx] = classifyFile(ctx, an, scorer, cfg, cfg.Files[idx])
			}
		}()
	}
	for i := range cfg.Files {
		select {
		case jobs <- i:
		case <-ctx.Done():
		}
		if ctx.Err() != nil {
			break
		}
	}
	close(jobs)
	wg.Wait()

	enc := json.NewEncoder(w)
	if cfg.Pretty {
		enc.SetIndent("", "  ")
	}
	failed := 0
	for i, res := range results {
		if res.File == "" {
			res = failure(cfg.Files[i], ctx.Err())
		}
		if res.Error != nil {
			failed++
		}
		if err := enc.Encode(res); err != nil {
			return failed, fmt.Errorf("write result: %w", err)
		}
	}
	return failed, nil
}

func classifyFile(ctx context.Context, an *analysis.Analyzer, scorer *garment.Scorer, cfg Config, path string) Result {
	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return failure(path, fmt.Errorf("%w: %v", analysis.ErrBadRequest, err))
	}
	res, err := an.Analyze(ctx, analysis.Request{Image: data, Crop: cfg.Crop, FaceBox: cfg.FaceBox})
	if err != nil {
		logger.Get().Debug(ctx, "classification failed", logger.String("file", path), logger.Error(err))
		return failure(path, err)
	}

	out := Result{File: path, Classification: &res}
	for i := range cfg.Garments {
		sc := scorer.Score(garment.Request{
			Color:    &cfg.Garments[i],
			Season:   res.Season,
			NearFace: cfg.NearFace,
			Profile: garment.Profile{
				Undertone: res.Attributes.Undertone,
				Depth:     res.Attributes.Depth,
				Clarity:   res.Attributes.Clarity,
			},
		})
		out.Garments = append(out.Garments, sc.Rounded())
	}
	return out
}

func failure(path string, err error) Result {
	if err == nil {
		err = context.Canceled
	}
	return Result{File: path, Error: &ResultError{Code: string(analysis.CodeOf(err)), Message: err.Error()}}
}
