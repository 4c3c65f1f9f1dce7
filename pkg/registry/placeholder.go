package registry

import "context"

// Placeholder is an executor for environments where a real runtime is not
// installed. The zero value echoes its input, turning any unit into an
// identity stage; with Output set it returns that fixed string instead.
// Useful in tests and in dev setups that want pipelines to flow end to end
// before the actual interpreters are wired up.
type Placeholder struct {
	Output string
}

// Execute ignores source entirely.
func (p Placeholder) Execute(ctx context.Context, source, input string) (string, error) {
	if p.Output != "" {
		return p.Output, nil
	}
	return input, nil
}
