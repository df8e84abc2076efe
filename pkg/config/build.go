package config

import (
	"fmt"

	"github.com/throng/throng/pkg/httpstep"
	"github.com/throng/throng/pkg/sim"
)

// Build turns a parsed File into a ready-to-run sim.Simulation and
// sim.Options, wiring every step through pkg/httpstep's HTTP adapter.
func Build(file *File) (*sim.Simulation, sim.Options, error) {
	timeout, err := parseDuration(file.Settings.Timeout)
	if err != nil {
		return nil, sim.Options{}, err
	}
	duration, err := parseDuration(file.Settings.Duration)
	if err != nil {
		return nil, sim.Options{}, err
	}
	rampUp, err := parseDuration(file.Settings.RampUp)
	if err != nil {
		return nil, sim.Options{}, err
	}

	client := httpstep.NewClient(httpstep.ClientOptions{
		Insecure:          file.Settings.Insecure,
		DisableKeepAlives: file.Settings.DisableKeepAlive,
		MaxConnsPerHost:   file.Settings.MaxConnections,
		HTTP2:             file.Settings.HTTP2,
		Timeout:           timeout,
	})

	scenarios := make([]sim.Scenario, len(file.Scenarios))
	for i, sc := range file.Scenarios {
		steps := make([]sim.Step, len(sc.Steps))
		for j, st := range sc.Steps {
			spec, err := toStepSpec(st)
			if err != nil {
				return nil, sim.Options{}, fmt.Errorf("scenario %q: %w", sc.Name, err)
			}
			steps[j] = httpstep.Build(spec, client, file.BaseURL)
		}
		scenarios[i] = sim.Scenario{
			Name:                  sc.Name,
			Weight:                sc.Weight,
			Rate:                  sc.Rate,
			SkipNextAfterFailure:  sc.SkipNextAfterFailure,
			AllowEarlyTermination: sc.AllowEarlyTermination,
			Steps:                 steps,
		}
	}

	simulation := &sim.Simulation{
		Name:      file.Name,
		Scenarios: scenarios,
	}

	ctx := sim.Context{}
	for k, v := range file.Variables {
		ctx[k] = v
	}

	opts := sim.Options{
		Concurrency:  file.Settings.ConcurrentUsers,
		Rate:         file.Settings.Rate,
		Context:      ctx,
		Timeout:      timeout,
		Duration:     duration,
		RequestCount: file.Settings.RequestCount,
		FixedRuns:    file.Settings.FixedRuns,
		RampUp:       rampUp,
	}

	return simulation, opts, nil
}

func toStepSpec(st StepConfig) (httpstep.StepSpec, error) {
	body, err := readBody(st)
	if err != nil {
		return httpstep.StepSpec{}, err
	}
	delay, err := parseDuration(st.Delay)
	if err != nil {
		return httpstep.StepSpec{}, err
	}

	return httpstep.StepSpec{
		Name:     st.Name,
		URL:      st.URL,
		Method:   st.Method,
		Headers:  st.Headers,
		Body:     body,
		Extract:  st.Extract,
		Validate: toValidation(st.Validate),
		Delay:    delay,
	}, nil
}

func toValidation(v *ValidateConfig) *httpstep.Validation {
	if v == nil {
		return nil
	}
	out := &httpstep.Validation{
		Status:          v.Status,
		BodyContains:    v.BodyContains,
		BodyNotContains: v.BodyNotContains,
		JSONPath:        v.JSONPath,
		Headers:         v.Headers,
	}
	if v.StatusRange != nil {
		out.StatusRange = &httpstep.StatusRange{Min: v.StatusRange.Min, Max: v.StatusRange.Max}
	}
	if d, err := parseDuration(v.ResponseTime); err == nil {
		out.MaxResponseTime = d
	}
	return out
}
