package sim

// validate checks simulation and options against the schema rules of
// spec.md §7 ("validation error... surfaced to the caller as a
// configuration failure before any workers start"). It returns a
// *ValidationError joining every violation found, so a caller sees all
// problems in one report rather than fixing them one at a time.
func validate(sim *Simulation, opts Options) error {
	var errs []error

	if sim == nil {
		return errValidation("simulation must not be nil")
	}
	if len(sim.Scenarios) == 0 {
		errs = append(errs, errValidation("simulation must declare at least one scenario"))
	}
	for i := range sim.Scenarios {
		sc := &sim.Scenarios[i]
		if sc.Name == "" {
			errs = append(errs, errValidation("scenario %d: name must not be empty", i))
		}
		if len(sc.Steps) == 0 && sc.StepSource == nil {
			errs = append(errs, errValidation("scenario %q: must declare at least one step or a StepSource", sc.Name))
		}
		for j, st := range sc.Steps {
			if st.Name == "" {
				errs = append(errs, errValidation("scenario %q: step %d: name must not be empty", sc.Name, j))
			}
			if st.Request == nil {
				errs = append(errs, errValidation("scenario %q: step %q: Request must not be nil", sc.Name, st.Name))
			}
		}
	}

	if len(opts.Users) == 0 && opts.Concurrency <= 0 {
		errs = append(errs, errValidation("options must set Users or a positive Concurrency"))
	}
	if _, err := selectRunner(opts, len(opts.userIDs())); err != nil {
		errs = append(errs, err)
	}

	if len(errs) == 0 {
		return nil
	}
	return joinValidation(errs...)
}
