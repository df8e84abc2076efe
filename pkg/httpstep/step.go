package httpstep

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/throng/throng/pkg/sim"
)

// StepSpec describes one HTTP call in a scenario, the shape a config
// loader builds from a simulation definition file.
type StepSpec struct {
	Name    string
	URL     string
	Method  string
	Headers map[string]string
	Body    any

	Extract  map[string]string
	Validate *Validation
	Delay    time.Duration
}

// vars reads the string-keyed variable bag a step's context carries
// forward. Entries that aren't strings are ignored by templating but
// still available to later RequestFuncs via the context map itself.
func vars(ctx sim.Context) map[string]string {
	out := make(map[string]string, len(ctx))
	for k, v := range ctx {
		if s, ok := v.(string); ok {
			out[k] = s
		}
	}
	return out
}

// Build turns spec into a sim.Step whose RequestFunc issues the HTTP
// call against client, resolving {{variable}} placeholders (including
// the dynamic {{$uuid}}/{{$randomInt}}/{{$timestamp}}/{{$iteration}}/
// {{$regex:...}} functions) from the step's accumulated context, then
// validates and extracts per spec.Validate/spec.Extract.
func Build(spec StepSpec, client *http.Client, baseURL string) sim.Step {
	method := spec.Method
	if method == "" {
		method = http.MethodGet
	}

	var sleepBefore sim.SleepBeforeFunc
	if spec.Delay > 0 {
		delayMs := spec.Delay.Milliseconds()
		sleepBefore = func(sim.Context) int64 { return delayMs }
	}

	return sim.Step{
		Name:        spec.Name,
		SleepBefore: sleepBefore,
		Request: func(ctx sim.Context) (any, error) {
			variables := vars(ctx)
			url := resolveVariables(joinURL(baseURL, spec.URL), variables)

			body, err := prepareBody(spec.Body, variables)
			if err != nil {
				return nil, err
			}

			var bodyReader io.Reader
			if body != "" {
				bodyReader = bytes.NewBufferString(body)
			}
			req, err := http.NewRequestWithContext(context.Background(), method, url, bodyReader)
			if err != nil {
				return nil, err
			}
			applyHeaders(req, spec.Headers, variables, body)

			start := time.Now()
			resp, err := client.Do(req)
			if err != nil {
				return nil, fmt.Errorf("%s", categorizeError(err))
			}
			defer resp.Body.Close()
			responseTime := time.Since(start)

			respBody, err := io.ReadAll(resp.Body)
			if err != nil {
				return nil, err
			}
			respBodyStr := string(respBody)

			newCtx := sim.Context{}
			for name, path := range spec.Extract {
				if value := extractValue(respBodyStr, path, resp.Header); value != "" {
					newCtx[name] = value
				}
			}

			if spec.Validate != nil {
				if errs := validate(resp, respBodyStr, spec.Validate, responseTime); len(errs) > 0 {
					return sim.WithContext{
						Value:   fmt.Errorf("validation failed: %s", strings.Join(errs, "; ")),
						Context: sim.Merge(ctx, newCtx),
					}, nil
				}
			}

			ok := resp.StatusCode >= 200 && resp.StatusCode < 300
			return sim.WithContext{Value: ok, Context: sim.Merge(ctx, newCtx)}, nil
		},
	}
}

func applyHeaders(req *http.Request, headers map[string]string, variables map[string]string, body string) {
	for key, value := range headers {
		req.Header.Set(key, resolveVariables(value, variables))
	}
	if body != "" && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", "throng/1.0")
	}
}

func prepareBody(body any, variables map[string]string) (string, error) {
	if body == nil {
		return "", nil
	}
	switch v := body.(type) {
	case string:
		return resolveVariables(v, variables), nil
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return "", fmt.Errorf("failed to marshal body: %w", err)
		}
		return resolveVariables(string(data), variables), nil
	}
}

func joinURL(baseURL, path string) string {
	if baseURL == "" || strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	return strings.TrimSuffix(baseURL, "/") + "/" + strings.TrimPrefix(path, "/")
}
