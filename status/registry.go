package status

import (
	"fmt"
	"io"
	"sync/atomic"
)

// Registry is the central metrics facade
// Components cache pointers at construction; hot paths write directly to atomics
type Registry struct {
	Bools   *MetricMap[atomic.Bool]
	Ints    *MetricMap[atomic.Int64]
	Floats  *MetricMap[AtomicFloat]
	Strings *MetricMap[AtomicString]
}

// NewRegistry creates an initialized Registry
func NewRegistry() *Registry {
	return &Registry{
		Bools:   NewMetricMap[atomic.Bool](),
		Ints:    NewMetricMap[atomic.Int64](),
		Floats:  NewMetricMap[AtomicFloat](),
		Strings: NewMetricMap[AtomicString](),
	}
}

// TotalCount returns total metrics across all types
func (r *Registry) TotalCount() int {
	return r.Bools.Count() + r.Ints.Count() + r.Floats.Count() + r.Strings.Count()
}

// Dump writes every metric as "key=value" lines, grouped by type in sorted key order
func (r *Registry) Dump(w io.Writer) error {
	var err error
	write := func(key string, val any) {
		if err == nil {
			_, err = fmt.Fprintf(w, "%s=%v\n", key, val)
		}
	}

	r.Bools.Range(func(key string, ptr *atomic.Bool) { write(key, ptr.Load()) })
	r.Ints.Range(func(key string, ptr *atomic.Int64) { write(key, ptr.Load()) })
	r.Floats.Range(func(key string, ptr *AtomicFloat) { write(key, fmt.Sprintf("%.3f", ptr.Get())) })
	r.Strings.Range(func(key string, ptr *AtomicString) { write(key, ptr.Load()) })
	return err
}
