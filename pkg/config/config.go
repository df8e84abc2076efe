// Package config loads a simulation definition from a YAML document
// into the types pkg/sim and pkg/httpstep need to run it.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// File is the root of a simulation definition file.
type File struct {
	Name           string            `yaml:"name"`
	BaseURL        string            `yaml:"baseUrl,omitempty"`
	Variables      map[string]string `yaml:"variables,omitempty"`
	DefaultHeaders map[string]string `yaml:"defaultHeaders,omitempty"`
	Settings       Settings          `yaml:"settings"`
	Scenarios      []ScenarioConfig  `yaml:"scenarios"`
}

// Settings are the run-wide options: how many users, how the run
// terminates, and the shared request timeout.
type Settings struct {
	ConcurrentUsers int     `yaml:"concurrentUsers,omitempty"`
	Rate            float64 `yaml:"rate,omitempty"`
	Duration        string  `yaml:"duration,omitempty"`
	RequestCount    int     `yaml:"requestCount,omitempty"`
	FixedRuns       int     `yaml:"fixedRuns,omitempty"`
	Timeout         string  `yaml:"timeout,omitempty"`
	RampUp          string  `yaml:"rampUp,omitempty"`
	Insecure        bool    `yaml:"insecure,omitempty"`
	DisableKeepAlive bool   `yaml:"disableKeepAlive,omitempty"`
	MaxConnections  int     `yaml:"maxConnections,omitempty"`
	HTTP2           bool    `yaml:"http2,omitempty"`
}

// ScenarioConfig is one weighted scenario: a named sequence of steps.
type ScenarioConfig struct {
	Name                  string       `yaml:"name"`
	Weight                int          `yaml:"weight,omitempty"`
	Rate                  float64      `yaml:"rate,omitempty"`
	SkipNextAfterFailure  *bool        `yaml:"skipNextAfterFailure,omitempty"`
	AllowEarlyTermination bool         `yaml:"allowEarlyTermination,omitempty"`
	Steps                 []StepConfig `yaml:"steps"`
}

// StepConfig is a single HTTP call within a scenario.
type StepConfig struct {
	Name     string            `yaml:"name"`
	URL      string            `yaml:"url"`
	Method   string            `yaml:"method,omitempty"`
	Headers  map[string]string `yaml:"headers,omitempty"`
	Body     any               `yaml:"body,omitempty"`
	BodyFile string            `yaml:"bodyFile,omitempty"`
	Extract  map[string]string `yaml:"extract,omitempty"`
	Validate *ValidateConfig   `yaml:"validate,omitempty"`
	Delay    string            `yaml:"delay,omitempty"`
}

// ValidateConfig is the assertion set applied to a step's response.
type ValidateConfig struct {
	Status          any                `yaml:"status,omitempty"`
	StatusRange     *StatusRangeConfig `yaml:"statusRange,omitempty"`
	BodyContains    string             `yaml:"bodyContains,omitempty"`
	BodyNotContains string             `yaml:"bodyNotContains,omitempty"`
	JSONPath        map[string]any     `yaml:"jsonPath,omitempty"`
	Headers         map[string]string  `yaml:"headers,omitempty"`
	ResponseTime    string             `yaml:"responseTime,omitempty"`
}

// StatusRangeConfig is an inclusive status-code band.
type StatusRangeConfig struct {
	Min int `yaml:"min"`
	Max int `yaml:"max"`
}

// Load reads and parses a simulation definition file, applying
// defaults the same way a hand-edited file that omits optional
// sections still runs.
func Load(filename string) (*File, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	file.setDefaults()

	return &file, nil
}

func (f *File) setDefaults() {
	if f.Settings.ConcurrentUsers == 0 && f.Settings.Rate == 0 {
		f.Settings.ConcurrentUsers = 10
	}
	if f.Settings.Timeout == "" {
		f.Settings.Timeout = "30s"
	}
	if f.Variables == nil {
		f.Variables = make(map[string]string)
	}
	if f.BaseURL != "" {
		f.Variables["baseUrl"] = f.BaseURL
	}

	for i := range f.Scenarios {
		if f.Scenarios[i].Weight == 0 {
			f.Scenarios[i].Weight = 1
		}
		for j := range f.Scenarios[i].Steps {
			if f.Scenarios[i].Steps[j].Method == "" {
				f.Scenarios[i].Steps[j].Method = "GET"
			}
			if f.Scenarios[i].Steps[j].Name == "" {
				f.Scenarios[i].Steps[j].Name = fmt.Sprintf("step-%d", j+1)
			}
		}
	}
}

// parseDuration parses s, returning 0 for an empty string (meaning
// "unset") rather than an error.
func parseDuration(s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q: %w", s, err)
	}
	return d, nil
}

// readBody resolves a step's body: BodyFile takes precedence over an
// inline Body when both are set.
func readBody(step StepConfig) (any, error) {
	if step.BodyFile == "" {
		return step.Body, nil
	}
	data, err := os.ReadFile(step.BodyFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read body file %q: %w", step.BodyFile, err)
	}
	return string(data), nil
}
