package httpstep

import (
	"math/rand"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/lucasjones/reggen"
)

// iterationCounter is shared by every {{$iteration}} placeholder
// across the whole run, giving each occurrence a globally unique,
// monotonically increasing value.
var iterationCounter int64

// resolveVariables replaces {{name}} placeholders with values from
// vars, after first expanding the dynamic functions ({{$uuid}},
// {{$randomInt}}, {{$timestamp}}, {{$iteration}}, {{$regex:...}}).
func resolveVariables(input string, vars map[string]string) string {
	result := resolveDynamicFunctions(input)
	for key, value := range vars {
		result = strings.ReplaceAll(result, "{{"+key+"}}", value)
	}
	return result
}

// resolveDynamicFunctions expands the built-in generator placeholders.
// {{$regex:pattern}} is generated once per occurrence via reggen, so
// two occurrences of the same pattern in one string need not match
// each other.
func resolveDynamicFunctions(input string) string {
	result := input

	for strings.Contains(result, "{{$uuid}}") {
		result = strings.Replace(result, "{{$uuid}}", uuid.NewString(), 1)
	}
	for strings.Contains(result, "{{$randomInt}}") {
		result = strings.Replace(result, "{{$randomInt}}", strconv.Itoa(rand.Intn(1_000_000)), 1)
	}
	for strings.Contains(result, "{{$timestamp}}") {
		result = strings.Replace(result, "{{$timestamp}}", strconv.FormatInt(time.Now().UnixMilli(), 10), 1)
	}
	for strings.Contains(result, "{{$iteration}}") {
		n := atomic.AddInt64(&iterationCounter, 1)
		result = strings.Replace(result, "{{$iteration}}", strconv.FormatInt(n, 10), 1)
	}

	for {
		start := strings.Index(result, "{{$regex:")
		if start == -1 {
			break
		}
		end := strings.Index(result[start:], "}}")
		if end == -1 {
			break
		}
		// A pattern ending in a quantifier such as {5} puts extra braces
		// before the closing pair; the placeholder ends at the last one.
		for start+end+2 < len(result) && result[start+end+2] == '}' {
			end++
		}
		placeholder := result[start : start+end+2]
		pattern := strings.TrimSuffix(strings.TrimPrefix(placeholder, "{{$regex:"), "}}")
		generated, err := reggen.Generate(pattern, 8)
		if err != nil {
			generated = ""
		}
		result = strings.Replace(result, placeholder, generated, 1)
	}

	return result
}
