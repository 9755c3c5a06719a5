package resolver

import (
	"errors"
)

// ErrSweepInFlight is returned by BeginSweep while another sweep holds the
// resolver. Resolution is cooperative and strictly sequential: rules learned
// from artifact N must be visible to artifact N+1, so overlapping sweeps
// against the same state are rejected rather than interleaved.
var ErrSweepInFlight = errors.New("resolver: a resolution sweep is already in flight")

// Sweep scopes one batch of resolutions. It carries the per-batch
// prompt-decline flag as explicit state threaded through Resolve calls, so a
// decline in one batch cannot leak into an unrelated one.
type Sweep struct {
	declined bool
	resolver *Resolver
}

// Declined reports whether the operator declined a prompt during this sweep.
func (s *Sweep) Declined() bool { return s.declined }

// BeginSweep acquires the resolver for one batch of resolutions. The caller
// must End the sweep, including on cancellation; state already learned
// remains valid either way.
func (r *Resolver) BeginSweep() (*Sweep, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sweepActive {
		return nil, ErrSweepInFlight
	}
	r.sweepActive = true
	return &Sweep{resolver: r}, nil
}

// End releases the resolver. Safe to call once per sweep.
func (s *Sweep) End() {
	if s == nil || s.resolver == nil {
		return
	}
	s.resolver.mu.Lock()
	s.resolver.sweepActive = false
	s.resolver.mu.Unlock()
	s.resolver = nil
}
