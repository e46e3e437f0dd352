package runtimeenv

// StoppingCriteria bounds a run's iteration count and total derived-fact
// volume (spec §6/§7's "limit-reached" halt class: graceful, not an
// error). Zero means unbounded for that dimension, matching
// internal/config's EngineConfig.IterationLimit == 0 default.
type StoppingCriteria struct {
	MaxRounds int
	MaxFacts  int
}

// ShouldStop reports whether the driver loop must halt before starting
// another round, given the round index just completed and the running
// total of facts derived so far.
func (s StoppingCriteria) ShouldStop(round, totalFacts int) bool {
	if s.MaxRounds > 0 && round >= s.MaxRounds {
		return true
	}
	if s.MaxFacts > 0 && totalFacts >= s.MaxFacts {
		return true
	}
	return false
}
