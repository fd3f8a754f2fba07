// Package cache stores classification results keyed by request content so
// repeated photos skip the pipeline.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash"

	"github.com/okian/swatch/internal/domain/analysis"
)

// Cache is a classification result store. Lookups never fail: backend
// errors are logged and treated as misses.
type Cache interface {
	Get(ctx context.Context, key string) (analysis.Classification, bool)
	Set(ctx context.Context, key string, c analysis.Classification)

	// Backend names the implementation for metrics and stats.
	Backend() string
}

// Key derives the cache key for req under a calibration version. Image
// bytes are hashed; URL requests are keyed by the URL itself.
func Key(req analysis.Request, version string) string {
	h := sha256.New()
	writeField(h, "v", version)
	if len(req.Image) > 0 {
		writeField(h, "img", string(req.Image))
	} else {
		writeField(h, "url", req.ImageURL)
	}
	if c := req.Crop; c != nil {
		writeField(h, "crop", fmt.Sprintf("%d,%d,%d,%d", c.X, c.Y, c.Width, c.Height))
	}
	if b := req.FaceBox; b != nil {
		writeField(h, "face", fmt.Sprintf("%g,%g,%g,%g", b.X, b.Y, b.Width, b.Height))
	}
	return hex.EncodeToString(h.Sum(nil))
}

// writeField writes a length-prefixed field so adjacent values cannot collide.
func writeField(h hash.Hash, name, val string) {
	_, _ = fmt.Fprintf(h, "%s:%d:", name, len(val))
	_, _ = h.Write([]byte(val))
}

// nop is the disabled cache.
type nop struct{}

// NewNop returns a Cache that stores nothing.
func NewNop() Cache { return nop{} }

func (nop) Get(context.Context, string) (analysis.Classification, bool) {
	return analysis.Classification{}, false
}

func (nop) Set(context.Context, string, analysis.Classification) {}

func (nop) Backend() string { return "none" }
