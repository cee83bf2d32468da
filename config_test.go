package dseframe

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"gopkg.in/yaml.v3"
)

func TestConfig_DefaultIsValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("DefaultConfig invalid: %v", err)
	}
	if cfg.XVar != "Latency" || cfg.YVar != "AREA" || cfg.RecordPolicy != PolicyAbort {
		t.Errorf("Unexpected defaults: %+v", cfg)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		ok   bool
	}{
		{"defaults", DefaultConfig(), true},
		{"other objectives", Config{XVar: "Latency", YVar: "DSP"}, true},
		{"empty x", Config{YVar: "AREA"}, false},
		{"empty y", Config{XVar: "Latency"}, false},
		{"same column", Config{XVar: "AREA", YVar: "AREA"}, false},
		{"method as objective", Config{XVar: MethodColumn, YVar: "AREA"}, false},
		{"iteration as objective", Config{XVar: "Latency", YVar: IterationColumn}, false},
		{"unknown policy", Config{XVar: "Latency", YVar: "AREA", RecordPolicy: 9}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.ok && err != nil {
				t.Errorf("Validate() = %v, want nil", err)
			}
			if !tt.ok && !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("Validate() = %v, want ErrInvalidConfig", err)
			}
		})
	}
}

func TestRecordPolicy_ParseAndText(t *testing.T) {
	for _, p := range []RecordPolicy{PolicyAbort, PolicySkipOne, PolicySkipAllRemaining} {
		got, err := ParseRecordPolicy(p.String())
		if err != nil || got != p {
			t.Errorf("ParseRecordPolicy(%q) = %v, %v", p.String(), got, err)
		}
	}

	if _, err := ParseRecordPolicy("retry"); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("ParseRecordPolicy(retry) error = %v, want ErrInvalidConfig", err)
	}

	var p RecordPolicy
	if err := p.Set("skip-all"); err != nil || p != PolicySkipAllRemaining {
		t.Errorf("Set(skip-all) = %v, policy %s", err, p)
	}
	if got := RecordPolicy(7).String(); got != "RecordPolicy(7)" {
		t.Errorf("String() = %q", got)
	}
}

func TestConfig_YAML(t *testing.T) {
	cfg := Config{XVar: "Latency", YVar: "DSP", RecordPolicy: PolicySkipOne}

	out, err := yaml.Marshal(cfg)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var back Config
	if err := yaml.Unmarshal(out, &back); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if diff := cmp.Diff(cfg, back); diff != "" {
		t.Errorf("YAML round trip mismatch (-want +got):\n%s", diff)
	}
	t.Logf("✓ YAML:\n%s", out)
}

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if diff := cmp.Diff(DefaultConfig(), cfg); diff != "" {
		t.Errorf("Config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadConfig_FileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dseframe.yaml")
	body := "x_var: Latency\ny_var: DSP\nrecord_policy: skip-one\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	want := Config{XVar: "Latency", YVar: "DSP", RecordPolicy: PolicySkipOne}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("File config mismatch (-want +got):\n%s", diff)
	}

	t.Setenv(EnvYVar, "LUT")
	t.Setenv(EnvRecordPolicy, "skip-all")

	cfg, err = LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	want = Config{XVar: "Latency", YVar: "LUT", RecordPolicy: PolicySkipAllRemaining}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("Env override mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadConfig_Errors(t *testing.T) {
	dir := t.TempDir()

	bad := filepath.Join(dir, "bad.yaml")
	os.WriteFile(bad, []byte("record_policy: sometimes\n"), 0o644)
	if _, err := LoadConfig(bad); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("Unknown policy in file: error = %v, want ErrInvalidConfig", err)
	}

	same := filepath.Join(dir, "same.yaml")
	os.WriteFile(same, []byte("x_var: AREA\n"), 0o644)
	if _, err := LoadConfig(same); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("Identical objectives: error = %v, want ErrInvalidConfig", err)
	}

	t.Setenv(EnvRecordPolicy, "never")
	if _, err := LoadConfig(""); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("Bad env policy: error = %v, want ErrInvalidConfig", err)
	}
}

func TestLoadConfigOnto_KeepsBaseForAbsentKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dseframe.yaml")
	if err := os.WriteFile(path, []byte("record_policy: skip-all\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	base := Config{XVar: "DSP", YVar: "LUT", RecordPolicy: PolicyAbort}
	cfg, err := LoadConfigOnto(base, path)
	if err != nil {
		t.Fatalf("LoadConfigOnto: %v", err)
	}

	want := Config{XVar: "DSP", YVar: "LUT", RecordPolicy: PolicySkipAllRemaining}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("Config mismatch (-want +got):\n%s", diff)
	}
}
