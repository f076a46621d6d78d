// Package mctsparams holds the search's named, clamped numeric tunables
// (spec.md §4.B). A Config is read-only once a search starts; the protocol
// layer (cmd/engine) mutates it between searches via Set/SetAll.
package mctsparams

import (
	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
)

// Config holds the recognized tunables, each with a clamped range.
type Config struct {
	CPUCT                    float32
	RootCPUCT                float32
	CPUCTVarScale            float32
	CPUCTVarWeight           float32
	FPU                      float32
	PolicySoftmaxTemperature float32

	// DirichletAlpha/DirichletWeight shape the optional root exploration
	// noise (SPEC_FULL.md §3); zero weight disables it entirely.
	DirichletAlpha  float32
	DirichletWeight float32
}

// Default returns the recommended defaults, matching spec.md §4.B.
func Default() Config {
	return Config{
		CPUCT:                    1.4,
		RootCPUCT:                1.4,
		CPUCTVarScale:            0.1,
		CPUCTVarWeight:           0.0,
		FPU:                      0.0,
		PolicySoftmaxTemperature: 1.0,
		DirichletAlpha:           0.3,
		DirichletWeight:          0.0,
	}
}

type tunable struct {
	min, max float32
	field    *float32
}

// table returns the name -> tunable mapping for this Config instance. Built
// fresh per call since it closes over &c.Field pointers.
func (c *Config) table() map[string]tunable {
	return map[string]tunable{
		"cpuct":                      {0.1, 5.0, &c.CPUCT},
		"root_cpuct":                 {0.1, 5.0, &c.RootCPUCT},
		"cpuct_var_scale":            {0.01, 5.0, &c.CPUCTVarScale},
		"cpuct_var_weight":           {0.0, 5.0, &c.CPUCTVarWeight},
		"fpu":                        {0.0, 1.0, &c.FPU},
		"policy_softmax_temperature": {0.01, 10.0, &c.PolicySoftmaxTemperature},
		"dirichlet_alpha":            {0.0, 10.0, &c.DirichletAlpha},
		"dirichlet_weight":           {0.0, 1.0, &c.DirichletWeight},
	}
}

// ErrUnknownParameter is returned by Set for a name outside the recognized
// set. Per spec.md §7 this is reported, not fatal: the protocol layer
// ignores it for a single Set call, and SetAll aggregates every such
// report across a batch into one multierror.
var ErrUnknownParameter = errors.New("mctsparams: unknown parameter")

// Set clamps value into name's declared range and stores it. Returns
// ErrUnknownParameter (wrapped with name) if name isn't recognized; the
// Config is left unchanged in that case.
func (c *Config) Set(name string, value float32) error {
	t, ok := c.table()[name]
	if !ok {
		return errors.Wrap(ErrUnknownParameter, name)
	}
	if value < t.min {
		value = t.min
	}
	if value > t.max {
		value = t.max
	}
	*t.field = value
	return nil
}

// SetAll applies every entry in values, clamping each recognized name and
// collecting every unrecognized one into a single multierror rather than
// stopping at the first (spec.md §7: unknown names are reported, not
// fatal, so a caller can surface the full list at once).
func (c *Config) SetAll(values map[string]float32) error {
	var errs error
	for name, value := range values {
		if err := c.Set(name, value); err != nil {
			errs = multierror.Append(errs, err)
		}
	}
	return errs
}

// IsValid reports whether every field is within its declared range. A
// freshly-constructed Config built only through Set/SetAll is always
// valid; this guards hand-built Config literals (e.g. in tests).
func (c Config) IsValid() bool {
	cc := c
	for _, t := range cc.table() {
		if *t.field < t.min || *t.field > t.max {
			return false
		}
	}
	return true
}
