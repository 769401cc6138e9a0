// Package profile injects timing as a small interface rather than a
// compile-time conditional: a no-op default, and an optional, heavier
// implementation that captures a real CPU profile via runtime/pprof and
// summarizes it with google/pprof/profile.
package profile

import (
	"bytes"
	"runtime/pprof"
	"time"

	gpprof "github.com/google/pprof/profile"

	"github.com/nume-crypto/zk-keccak-addr/internal/glog"
)

// Timer is returned by Profiler.Start and stopped once the timed section
// completes.
type Timer interface {
	Stop()
}

// Profiler starts a named timed section. Gadget and constraint-system code
// call it around expensive phases (witness generation, constraint
// synthesis, satisfiability checking) purely for diagnostics; it never
// affects constraint generation or witness values.
type Profiler interface {
	Start(label string) Timer
}

// Nop is the default Profiler: it does nothing and costs nothing.
var Nop Profiler = nopProfiler{}

type nopProfiler struct{}

func (nopProfiler) Start(string) Timer { return nopTimer{} }

type nopTimer struct{}

func (nopTimer) Stop() {}

// CPU is a Profiler that wraps runtime/pprof.StartCPUProfile, parses the
// resulting profile with google/pprof/profile once the section ends, and
// logs the wall-clock duration and captured sample count. Only one CPU
// profile can be active process-wide at a time (a runtime/pprof
// restriction); callers embedding CPU profiling in nested gadget calls
// should use Nop for the inner sections.
var CPU Profiler = cpuProfiler{}

type cpuProfiler struct{}

func (cpuProfiler) Start(label string) Timer {
	buf := &bytes.Buffer{}
	started := time.Now()
	if err := pprof.StartCPUProfile(buf); err != nil {
		glog.Logger().Warn().Err(err).Str("label", label).Msg("profile: could not start cpu profile")
		return nopTimer{}
	}
	return &cpuTimer{label: label, buf: buf, started: started}
}

type cpuTimer struct {
	label   string
	buf     *bytes.Buffer
	started time.Time
}

func (t *cpuTimer) Stop() {
	pprof.StopCPUProfile()
	elapsed := time.Since(t.started)

	ev := glog.Logger().Debug().Str("label", t.label).Dur("elapsed", elapsed)
	prof, err := gpprof.Parse(t.buf)
	if err != nil {
		ev.Err(err).Msg("profile: section complete (profile unparsable)")
		return
	}
	ev.Int("samples", len(prof.Sample)).Msg("profile: section complete")
}
