package ingest

import (
	"strings"

	"github.com/okian/rollcall/internal/domain/dedupe"
	"github.com/okian/rollcall/pkg/logger"
)

// Option applies a configuration option to the Normalizer.
type Option func(*Normalizer)

// WithDateLayouts replaces the accepted date layouts (tried in order).
func WithDateLayouts(layouts []string) Option {
	return func(n *Normalizer) {
		var clean []string
		for _, l := range layouts {
			if l = strings.TrimSpace(l); l != "" {
				clean = append(clean, l)
			}
		}
		if len(clean) > 0 {
			n.layouts = clean
		}
	}
}

// WithFirstPlaceLabels replaces the labels meaning rank 1 (case-insensitive).
func WithFirstPlaceLabels(labels []string) Option {
	return func(n *Normalizer) {
		n.firstLabels = make(map[string]struct{}, len(labels))
		for _, l := range labels {
			if l = strings.ToLower(strings.TrimSpace(l)); l != "" {
				n.firstLabels[l] = struct{}{}
			}
		}
	}
}

// WithPolicy sets which duplicate survives.
func WithPolicy(p dedupe.Policy) Option {
	return func(n *Normalizer) {
		if p == dedupe.KeepFirst || p == dedupe.KeepLast {
			n.policy = p
		}
	}
}

// WithLogger sets the logger used for per-row debug output.
func WithLogger(l logger.Logger) Option {
	return func(n *Normalizer) {
		if l != nil {
			n.logger = l
		}
	}
}
