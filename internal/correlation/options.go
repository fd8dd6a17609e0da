package correlation

import (
	"fmt"
	"regexp"
	"strings"
)

// Defaults applied by Resolve.
const (
	DefaultHeader = "X-Correlation-ID"
	DefaultMode   = ModeAll
)

var headerPattern = regexp.MustCompile(`^X-[A-Za-z0-9-]+$`)

// Options are the raw plugin options. A nil pointer or empty string means
// "use the default".
type Options struct {
	Correlate *bool
	Mode      string
	Header    string
	Strict    *bool
}

// Bool returns a pointer to b, for filling Options.
func Bool(b bool) *bool { return &b }

// Config is the resolved, immutable plugin configuration.
type Config struct {
	correlate bool
	mode      Mode
	header    string
	strict    bool
}

// Correlate reports whether the handlers act at all.
func (c Config) Correlate() bool { return c.correlate }

// Mode returns the propagation mode.
func (c Config) Mode() Mode { return c.mode }

// Header returns the lower-cased header name.
func (c Config) Header() string { return c.header }

// Strict reports whether malformed inbound ids are rejected.
func (c Config) Strict() bool { return c.strict }

// ConfigError reports an invalid plugin option.
type ConfigError struct {
	Field  string
	Value  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid plugin options: %s %q %s", e.Field, e.Value, e.Reason)
}

// Resolve validates opts and applies defaults. The header is checked against
// ^X-[A-Za-z0-9-]+$ before being lower-cased.
func Resolve(opts Options) (Config, error) {
	cfg := Config{
		correlate: true,
		mode:      DefaultMode,
		header:    strings.ToLower(DefaultHeader),
		strict:    true,
	}

	if opts.Correlate != nil {
		cfg.correlate = *opts.Correlate
	}
	if opts.Strict != nil {
		cfg.strict = *opts.Strict
	}

	if opts.Mode != "" {
		mode, err := ParseMode(opts.Mode)
		if err != nil {
			return Config{}, &ConfigError{
				Field:  "mode",
				Value:  opts.Mode,
				Reason: "must be one of request-only, response-only, proxy, all",
			}
		}
		cfg.mode = mode
	}

	if opts.Header != "" {
		if !headerPattern.MatchString(opts.Header) {
			return Config{}, &ConfigError{
				Field:  "header",
				Value:  opts.Header,
				Reason: "must match " + headerPattern.String(),
			}
		}
		cfg.header = strings.ToLower(opts.Header)
	}

	return cfg, nil
}
