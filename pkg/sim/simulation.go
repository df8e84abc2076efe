package sim

// Simulation is the top-level unit Run executes: a named set of
// weighted scenarios sharing one simulation-wide context and pair of
// hooks (spec.md §4.8's "simulation" input).
type Simulation struct {
	Name      string
	Scenarios []Scenario
	Context   Context
}

func (s *Simulation) prepare() {
	seen := make(map[string]int, len(s.Scenarios))
	for i := range s.Scenarios {
		s.Scenarios[i].id = slugify(s.Scenarios[i].Name, seen)
	}
}
