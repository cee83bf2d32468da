package dseframe

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Column names every results file must carry besides the two objectives.
const (
	MethodColumn    = "Method"
	IterationColumn = "Iteration"
)

// RecordPolicy decides what happens to a data row that does not match the
// header.
type RecordPolicy int

const (
	PolicyAbort            RecordPolicy = iota // Stop ingestion at the bad row
	PolicySkipOne                              // Drop the bad row, keep going
	PolicySkipAllRemaining                     // Drop this and every later bad row silently
)

var policyNames = map[RecordPolicy]string{
	PolicyAbort:            "abort",
	PolicySkipOne:          "skip-one",
	PolicySkipAllRemaining: "skip-all",
}

func (p RecordPolicy) String() string {
	if s, ok := policyNames[p]; ok {
		return s
	}
	return fmt.Sprintf("RecordPolicy(%d)", int(p))
}

// ParseRecordPolicy parses "abort", "skip-one" or "skip-all".
func ParseRecordPolicy(s string) (RecordPolicy, error) {
	for p, name := range policyNames {
		if name == s {
			return p, nil
		}
	}
	return PolicyAbort, fmt.Errorf("%w: unknown record policy %q (want abort, skip-one or skip-all)", ErrInvalidConfig, s)
}

// MarshalText implements encoding.TextMarshaler.
func (p RecordPolicy) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *RecordPolicy) UnmarshalText(b []byte) error {
	parsed, err := ParseRecordPolicy(string(b))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// Set implements pflag.Value so the policy can be a CLI flag.
func (p *RecordPolicy) Set(s string) error {
	return p.UnmarshalText([]byte(s))
}

// Type implements pflag.Value.
func (p *RecordPolicy) Type() string {
	return "policy"
}

// Config selects the two objectives and the malformed-record policy.
//
// Frontier membership depends on which columns are active, so changing XVar or
// YVar requires a full reset and re-ingestion (see Session.Reconfigure).
type Config struct {
	XVar         string       `yaml:"x_var" json:"x_var"`                 // Objective on the X axis
	YVar         string       `yaml:"y_var" json:"y_var"`                 // Objective on the Y axis
	RecordPolicy RecordPolicy `yaml:"record_policy" json:"record_policy"` // Malformed-row handling
}

// DefaultConfig returns latency against area, aborting on malformed rows.
func DefaultConfig() Config {
	return Config{
		XVar:         "Latency",
		YVar:         "AREA",
		RecordPolicy: PolicyAbort,
	}
}

// Validate checks the objective selection.
func (c Config) Validate() error {
	var errs []error
	if c.XVar == "" {
		errs = append(errs, errors.New("x_var is empty"))
	}
	if c.YVar == "" {
		errs = append(errs, errors.New("y_var is empty"))
	}
	if c.XVar != "" && c.XVar == c.YVar {
		errs = append(errs, fmt.Errorf("x_var and y_var are both %q", c.XVar))
	}
	for _, v := range []string{c.XVar, c.YVar} {
		if v == MethodColumn || v == IterationColumn {
			errs = append(errs, fmt.Errorf("%q is not an objective column", v))
		}
	}
	if _, ok := policyNames[c.RecordPolicy]; !ok {
		errs = append(errs, fmt.Errorf("unknown record policy %d", int(c.RecordPolicy)))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}

// Environment variables that override file configuration.
const (
	EnvXVar         = "DSEFRAME_X_VAR"
	EnvYVar         = "DSEFRAME_Y_VAR"
	EnvRecordPolicy = "DSEFRAME_RECORD_POLICY"
)

// LoadConfig builds a Config from defaults, then the YAML file at path (a
// missing file or empty path is not an error), then environment overrides,
// and validates the result.
func LoadConfig(path string) (Config, error) {
	return LoadConfigOnto(DefaultConfig(), path)
}

// LoadConfigOnto is LoadConfig starting from base instead of the defaults.
// Keys absent from the file and environment keep base's values.
func LoadConfigOnto(base Config, path string) (Config, error) {
	cfg := base

	if path != "" {
		if err := loadConfigFile(path, &cfg); err != nil {
			return cfg, fmt.Errorf("load config %s: %w", path, err)
		}
	}

	if err := loadConfigFromEnv(&cfg); err != nil {
		return cfg, err
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func loadConfigFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

func loadConfigFromEnv(cfg *Config) error {
	if v := os.Getenv(EnvXVar); v != "" {
		cfg.XVar = v
	}
	if v := os.Getenv(EnvYVar); v != "" {
		cfg.YVar = v
	}
	if v := os.Getenv(EnvRecordPolicy); v != "" {
		p, err := ParseRecordPolicy(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvRecordPolicy, err)
		}
		cfg.RecordPolicy = p
	}
	return nil
}
