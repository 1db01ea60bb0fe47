package config

import (
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Layout describes where the conventional artifact trees live inside the
// scanned repository. Zero values fall back to the standard layout.
type Layout struct {
	Root string `yaml:"root"`

	Dirs struct {
		Plan      string `yaml:"plan"`
		Contracts string `yaml:"contracts"`
		Telemetry string `yaml:"telemetry"`
		Database  string `yaml:"database"`
		Trains    string `yaml:"trains"` // train infrastructure code
	} `yaml:"dirs"`
}

// Default returns the conventional layout rooted at root.
func Default(root string) *Layout {
	l := &Layout{Root: root}
	l.fillDefaults()
	return l
}

func (l *Layout) fillDefaults() {
	if l.Root == "" {
		l.Root = "."
	}
	if l.Dirs.Plan == "" {
		l.Dirs.Plan = "plan"
	}
	if l.Dirs.Contracts == "" {
		l.Dirs.Contracts = "contracts"
	}
	if l.Dirs.Telemetry == "" {
		l.Dirs.Telemetry = "telemetry"
	}
	if l.Dirs.Database == "" {
		l.Dirs.Database = "supabase"
	}
	if l.Dirs.Trains == "" {
		l.Dirs.Trains = filepath.Join("python", "trains")
	}
}

// PlanDir returns the absolute plan directory.
func (l *Layout) PlanDir() string { return filepath.Join(l.Root, l.Dirs.Plan) }

// ContractsDir returns the absolute contracts directory.
func (l *Layout) ContractsDir() string { return filepath.Join(l.Root, l.Dirs.Contracts) }

// TelemetryDir returns the absolute telemetry directory.
func (l *Layout) TelemetryDir() string { return filepath.Join(l.Root, l.Dirs.Telemetry) }

// DatabaseDir returns the absolute database directory (migrations, DDL).
func (l *Layout) DatabaseDir() string { return filepath.Join(l.Root, l.Dirs.Database) }

// MigrationsDir returns the migrations subdirectory of the database dir.
func (l *Layout) MigrationsDir() string { return filepath.Join(l.DatabaseDir(), "migrations") }

// TrainsDir returns the train infrastructure code directory.
func (l *Layout) TrainsDir() string { return filepath.Join(l.Root, l.Dirs.Trains) }

// TrainSpecsDir returns the train definition directory under plan.
func (l *Layout) TrainSpecsDir() string { return filepath.Join(l.PlanDir(), "_trains") }

// Load reads an optional urntrace.yaml, applying .env and environment
// variable overrides on top. A missing file yields the default layout.
func Load(path string) (*Layout, error) {
	_ = godotenv.Load()

	l := &Layout{}
	data, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(data, l); err != nil {
			return nil, err
		}
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	if root := os.Getenv("URNTRACE_ROOT"); root != "" {
		l.Root = root
	}
	if plan := os.Getenv("URNTRACE_PLAN_DIR"); plan != "" {
		l.Dirs.Plan = plan
	}
	if contracts := os.Getenv("URNTRACE_CONTRACTS_DIR"); contracts != "" {
		l.Dirs.Contracts = contracts
	}
	if telemetry := os.Getenv("URNTRACE_TELEMETRY_DIR"); telemetry != "" {
		l.Dirs.Telemetry = telemetry
	}
	if database := os.Getenv("URNTRACE_DATABASE_DIR"); database != "" {
		l.Dirs.Database = database
	}

	l.fillDefaults()
	return l, nil
}
