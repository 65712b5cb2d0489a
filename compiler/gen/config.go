package gen

// Target identifies one of the two emitted languages.
type Target string

// The two supported targets.
const (
	TypeScript Target = "typescript"
	CSharp     Target = "csharp"
)

// Valid reports if the target is one of the supported languages.
func (t Target) Valid() bool {
	return t == TypeScript || t == CSharp
}

// Config is the generation configuration shared by the graph and the writer.
type Config struct {
	// Target is the output directory of the generated projects.
	Target string
	// Targets holds the languages to emit. Empty means both.
	Targets []Target
	// Force regenerates the output even when the stored snapshot
	// digest matches the current schema.
	Force bool
}

// targets returns the configured targets, defaulting to both languages
// in a fixed order so emission is deterministic.
func (c *Config) targets() ([]Target, error) {
	if c == nil || len(c.Targets) == 0 {
		return []Target{TypeScript, CSharp}, nil
	}
	seen := make(map[Target]struct{}, len(c.Targets))
	ts := make([]Target, 0, len(c.Targets))
	for _, t := range c.Targets {
		if !t.Valid() {
			return nil, NewConfigError("Targets", t, "unknown target language")
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		ts = append(ts, t)
	}
	return ts, nil
}
