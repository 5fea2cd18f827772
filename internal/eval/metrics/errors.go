package metrics

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownMetric is returned when a scorer is configured with a metric
// that is not in the allow-list.
var ErrUnknownMetric = errors.New("unknown scoring function")

// UnknownMetricError lists the rejected metric names.
//
// errors.Is(err, ErrUnknownMetric) reports true for it.
type UnknownMetricError struct {
	Names []string
}

func (e *UnknownMetricError) Error() string {
	return fmt.Sprintf("%s: %s (supported: %s)", ErrUnknownMetric, strings.Join(e.Names, ", "), strings.Join(MetricNames(), ", "))
}

func (e *UnknownMetricError) Unwrap() error { return ErrUnknownMetric }
