// Package factory constructs fresh model instances for evaluation. In place
// of loading architecture code from arbitrary source files, architectures are
// registered by name; a Spec resolves against that registry.
package factory

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/go-logr/logr"

	"nexevo/internal/model"
)

var (
	ErrArchitectureExists   = errors.New("architecture already registered")
	ErrArchitectureNotFound = errors.New("architecture not found")
)

// Builder constructs one independent model instance. Instances returned from
// successive calls must share no mutable state.
type Builder func(spec Spec) (model.ParamModel, error)

// Spec fully describes one model construction request.
type Spec struct {
	Architecture string
	Args         map[string]any
	Device       string
	// PriorState optionally seeds the instance from a serialized state
	// blob. Loading is best-effort unless Strict is set.
	PriorState []byte
	Strict     bool
}

var archRegistry = struct {
	mu sync.RWMutex
	m  map[string]Builder
}{
	m: make(map[string]Builder),
}

func Register(name string, builder Builder) error {
	if name == "" || builder == nil {
		return errors.New("architecture name and builder are required")
	}
	archRegistry.mu.Lock()
	defer archRegistry.mu.Unlock()
	if _, exists := archRegistry.m[name]; exists {
		return fmt.Errorf("%w: %s", ErrArchitectureExists, name)
	}
	archRegistry.m[name] = builder
	return nil
}

func List() []string {
	archRegistry.mu.RLock()
	defer archRegistry.mu.RUnlock()
	names := make([]string, 0, len(archRegistry.m))
	for name := range archRegistry.m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

type Factory struct {
	Log logr.Logger
}

// Resolve turns an architecture identifier into a reusable builder handle.
// Callers evaluating a population resolve once and instantiate per
// individual.
func (f *Factory) Resolve(architecture string) (Builder, error) {
	archRegistry.mu.RLock()
	builder, ok := archRegistry.m[architecture]
	archRegistry.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrArchitectureNotFound, architecture)
	}
	return builder, nil
}

// Instantiate constructs one fresh instance and applies the prior-state blob
// when present. A missing or incompatible blob degrades to the architecture's
// default initialization unless Strict is set.
func (f *Factory) Instantiate(builder Builder, spec Spec) (model.ParamModel, error) {
	m, err := builder(spec)
	if err != nil {
		return nil, fmt.Errorf("construct %s: %w", spec.Architecture, err)
	}
	if len(spec.PriorState) == 0 {
		return m, nil
	}
	if err := ApplyState(m, spec.PriorState); err != nil {
		if spec.Strict {
			return nil, fmt.Errorf("load prior state for %s: %w", spec.Architecture, err)
		}
		f.Log.Info("prior state load failed, keeping default initialization",
			"architecture", spec.Architecture, "reason", err.Error())
	}
	return m, nil
}

// New resolves and instantiates in one step.
func (f *Factory) New(spec Spec) (model.ParamModel, error) {
	builder, err := f.Resolve(spec.Architecture)
	if err != nil {
		return nil, err
	}
	return f.Instantiate(builder, spec)
}
