// Package analysis runs the classification pipeline: decode, locate, sample,
// normalize, summarize, classify and decide.
//
// An Analyzer holds only the read-only calibration and the stage objects
// built from it, so one instance serves any number of concurrent requests.
package analysis

import (
	"context"
	"fmt"

	"github.com/okian/swatch/internal/domain/attributes"
	"github.com/okian/swatch/internal/domain/calibration"
	"github.com/okian/swatch/internal/domain/illumination"
	"github.com/okian/swatch/internal/domain/model"
	"github.com/okian/swatch/internal/domain/region"
	"github.com/okian/swatch/internal/domain/robust"
	"github.com/okian/swatch/internal/domain/sampler"
	"github.com/okian/swatch/internal/domain/season"
	"github.com/okian/swatch/internal/domain/skin"
)

// Fetcher loads image bytes by URL. Implementations wrap transient failures
// in ErrFetchFailed.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Request is one classification request. Exactly one of Image and ImageURL is set.
type Request struct {
	Image    []byte
	ImageURL string
	Crop     *model.Region
	FaceBox  *model.NormalizedBox
}

// Analyzer runs the pipeline.
type Analyzer struct {
	cal        calibration.Set
	fetcher    Fetcher
	locator    *region.Locator
	sampler    *sampler.Sampler
	normalizer *illumination.Normalizer
	estimator  *robust.Estimator
	classifier *attributes.Classifier
	decider    *season.Decider
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithFetcher enables image-by-URL requests.
func WithFetcher(f Fetcher) Option {
	return func(a *Analyzer) {
		a.fetcher = f
	}
}

// New builds an Analyzer for cal.
func New(cal calibration.Set, opts ...Option) (*Analyzer, error) {
	if err := cal.Validate(); err != nil {
		return nil, err
	}
	filter := skin.NewFilter(cal.Skin)
	a := &Analyzer{
		cal:        cal,
		locator:    region.NewLocator(cal.Region, filter),
		sampler:    sampler.New(cal.Sampler, filter),
		normalizer: illumination.New(cal.Illumination),
		estimator:  robust.New(cal.Stats),
		classifier: attributes.New(cal.Attributes),
		decider:    season.New(cal.Season, cal.Attributes),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// Calibration returns the threshold set in use.
func (a *Analyzer) Calibration() calibration.Set {
	return a.cal
}

// Analyze classifies one photo. Errors are the stage sentinels; once
// sampling succeeds the result is always a season, flagged when weak.
func (a *Analyzer) Analyze(ctx context.Context, req Request) (Classification, error) {
	data, err := a.load(ctx, req)
	if err != nil {
		return Classification{}, err
	}
	if err := ctx.Err(); err != nil {
		return Classification{}, err
	}

	img, orientation, err := region.Decode(data, a.cal.Region.MaxPixels)
	if err != nil {
		return Classification{}, err
	}
	loc, err := a.locator.Locate(img, region.Request{Crop: req.Crop, FaceBox: req.FaceBox})
	if err != nil {
		return Classification{}, err
	}
	set, err := a.sampler.Sample(img, loc.Region)
	if err != nil {
		return Classification{}, err
	}

	corrected, gains := a.normalizer.Normalize(set.Samples)
	stats := a.estimator.Compute(set.Samples, corrected)
	profile := a.classifier.Classify(stats, loc.LightingBias)
	decision := a.decider.Decide(profile, season.Quality{Noisy: stats.Noisy, Clamped: gains.Clamped})

	return Classification{
		Attributes:        profile,
		Season:            decision.Season,
		Alternate:         decision.Alternate,
		Candidates:        decision.Candidates,
		Confidence:        decision.Confidence,
		NeedsConfirmation: decision.NeedsConfirmation,
		Branch:            decision.Branch,
		Penalties:         decision.Penalties,
		Diagnostics: Diagnostics{
			Region:             loc.Region,
			RegionMethod:       string(loc.Method),
			Orientation:        int(orientation),
			SampleCandidates:   set.Candidates,
			SampleCount:        set.Accepted,
			Rejections:         set.Rejections,
			Gains:              gains,
			Noisy:              stats.Noisy,
			LightingBias:       loc.LightingBias,
			MedianLab:          stats.MedianLab,
			RawMedianLab:       stats.RawMedianLab,
			MADLab:             stats.MADLab,
			MedianChroma:       stats.MedianChroma,
			PercentileChroma:   stats.PercentileChroma,
			CalibrationVersion: a.cal.Version,
		},
	}.Rounded(), nil
}

func (a *Analyzer) load(ctx context.Context, req Request) ([]byte, error) {
	switch {
	case len(req.Image) > 0 && req.ImageURL != "":
		return nil, fmt.Errorf("%w: give either image bytes or an image url, not both", ErrBadRequest)
	case len(req.Image) > 0:
		return req.Image, nil
	case req.ImageURL == "":
		return nil, fmt.Errorf("%w: no image supplied", ErrBadRequest)
	case a.fetcher == nil:
		return nil, fmt.Errorf("%w: image urls are not enabled", ErrBadRequest)
	}
	return a.fetcher.Fetch(ctx, req.ImageURL)
}
