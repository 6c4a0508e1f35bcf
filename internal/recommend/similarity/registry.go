// Simrec - Item Similarity and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/simrec

package similarity

import (
	"cmp"
	"errors"
	"fmt"
)

// Metric names a similarity measure in configuration.
type Metric string

// Supported metrics.
const (
	MetricCosine    Metric = "cosine"
	MetricSorensen  Metric = "sorensen"
	MetricEuclidean Metric = "euclidean"
	MetricPearson   Metric = "pearson"
	MetricDot       Metric = "dot"
)

// ErrUnknownMetric is returned by Lookup for names it does not recognize.
var ErrUnknownMetric = errors.New("unknown similarity metric")

// Metrics lists every supported metric name.
func Metrics() []Metric {
	return []Metric{MetricCosine, MetricSorensen, MetricEuclidean, MetricPearson, MetricDot}
}

// Lookup resolves a metric name to its Func.
func Lookup[K cmp.Ordered](m Metric) (Func[K], error) {
	switch m {
	case MetricCosine:
		return Cosine[K], nil
	case MetricSorensen:
		return Sorensen[K], nil
	case MetricEuclidean:
		return Euclidean[K], nil
	case MetricPearson:
		return Pearson[K], nil
	case MetricDot:
		return Dot[K], nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMetric, string(m))
	}
}
