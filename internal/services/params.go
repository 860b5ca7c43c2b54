package services

// Generation defaults applied when the configuration leaves an option unset.
const (
	DefaultTemperature float32 = 0.7
	DefaultMaxTokens           = 1024
)

// GenParams holds the generation options passed to the completion backend on every request.
// Temperature controls output randomness and is kept within [0, 2]; MaxTokens is a hard cap on
// generated length.
type GenParams struct {
	Temperature float32
	MaxTokens   int
}

// Normalize returns a copy of p with out-of-range values replaced. A zero temperature falls back
// to the default rather than greedy sampling, matching the operator-facing contract where omitting
// the option means "use the default".
func (p GenParams) Normalize() GenParams {
	switch {
	case p.Temperature <= 0:
		p.Temperature = DefaultTemperature
	case p.Temperature > 2:
		p.Temperature = 2
	}
	if p.MaxTokens <= 0 {
		p.MaxTokens = DefaultMaxTokens
	}
	return p
}
