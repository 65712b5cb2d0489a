package gen

// Option configures code generation.
type Option func(*Config) error

// WithTarget sets the output directory.
// The directory where the generated projects will be written.
func WithTarget(dir string) Option {
	return func(c *Config) error {
		if dir == "" {
			return NewConfigError("Target", nil, "target directory cannot be empty")
		}
		c.Target = dir
		return nil
	}
}

// WithLanguages selects the target languages to emit.
// Supported languages: "typescript", "csharp". The default is both.
func WithLanguages(languages ...string) Option {
	return func(c *Config) error {
		for _, l := range languages {
			t := Target(l)
			if !t.Valid() {
				return NewConfigError("Targets", l, "unsupported language; use typescript or csharp")
			}
			c.Targets = append(c.Targets, t)
		}
		return nil
	}
}

// WithForce regenerates the output even when the stored snapshot
// matches the current schema.
func WithForce() Option {
	return func(c *Config) error {
		c.Force = true
		return nil
	}
}
