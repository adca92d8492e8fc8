package config

// Overrides are per-build adjustments applied on top of the loaded configuration.
type Overrides struct {
	PrettyURLs    *bool
	WarningsFatal *bool
	OutputDir     string
	Disable       []Feature
}

// IsZero reports whether no override is set.
func (o Overrides) IsZero() bool {
	return o.PrettyURLs == nil && o.WarningsFatal == nil && o.OutputDir == "" && len(o.Disable) == 0
}

// WithOverrides returns a copy of the configuration with the overrides applied.
// The receiver is left untouched.
func (c *Config) WithOverrides(o Overrides) *Config {
	clone := *c
	if o.PrettyURLs != nil {
		clone.PrettyURLs = *o.PrettyURLs
	}
	if o.WarningsFatal != nil {
		clone.Build.WarningsFatal = *o.WarningsFatal
	}
	if o.OutputDir != "" {
		clone.Paths.Output = o.OutputDir
	}
	for _, f := range o.Disable {
		clone.Features.set(f, false)
	}
	return &clone
}
