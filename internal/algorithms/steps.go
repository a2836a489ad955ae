package algorithms

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"gocv.io/x/gocv"
)

// Step is one named operation together with its parameters.
type Step struct {
	Name   string
	Params map[string]interface{}
}

// NewStep builds a Step, starting from the operation's defaults.
func NewStep(name string, params map[string]interface{}) Step {
	merged := make(map[string]interface{})
	if algorithm, ok := Get(name); ok {
		for k, v := range algorithm.GetDefaultParams() {
			merged[k] = v
		}
	}
	for k, v := range params {
		merged[k] = v
	}
	return Step{Name: name, Params: merged}
}

// Apply runs the step on input.
func (s Step) Apply(input gocv.Mat) (gocv.Mat, error) {
	return Apply(s.Name, input, s.Params)
}

// Validate checks the step parameters against the strict ranges.
func (s Step) Validate() error {
	return ValidateParameters(s.Name, s.Params)
}

func (s Step) String() string {
	if len(s.Params) == 0 {
		return s.Name
	}
	keys := make([]string, 0, len(s.Params))
	for k := range s.Params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, s.Params[k]))
	}
	return s.Name + "(" + strings.Join(parts, ", ") + ")"
}

// ParseStep parses "name" or "name=v1[:v2]". Positional values bind to the
// operation's parameters in GetParameterInfo order.
func ParseStep(text string) (Step, error) {
	text = strings.TrimSpace(text)
	name, args, hasArgs := strings.Cut(text, "=")
	name = strings.TrimSpace(name)

	algorithm, ok := Get(name)
	if !ok {
		return Step{}, fmt.Errorf("unknown operation %q", name)
	}

	params := make(map[string]interface{})
	if hasArgs {
		info := algorithm.GetParameterInfo()
		values := strings.Split(args, ":")
		if len(values) > len(info) {
			return Step{}, fmt.Errorf("operation %s takes %d parameter(s), got %d", name, len(info), len(values))
		}
		for i, raw := range values {
			raw = strings.TrimSpace(raw)
			p := info[i]
			if p.Type == "enum" {
				if _, isString := p.Default.(string); isString {
					params[p.Name] = raw
					continue
				}
			}
			v, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return Step{}, fmt.Errorf("operation %s: parameter %s: %w", name, p.Name, err)
			}
			params[p.Name] = v
		}
	}

	return NewStep(name, params), nil
}

// ParseSteps parses a comma-separated list of steps.
func ParseSteps(text string) ([]Step, error) {
	var steps []Step
	for _, part := range strings.Split(text, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		step, err := ParseStep(part)
		if err != nil {
			return nil, err
		}
		steps = append(steps, step)
	}
	return steps, nil
}
