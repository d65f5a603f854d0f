// =============================================================================
// Fixed Assets Register - Configuration Module
// =============================================================================
//
// This module loads and saves the register settings.
//
// SOURCES (later wins):
//   1. Built-in defaults (applyDefaults)
//   2. Settings file (register.yaml, or --config / REGISTER_CONFIG)
//   3. .env in the working directory, for REGISTER_CONFIG and REGISTER_* paths
//
// PERSISTENCE:
//   The settings file is only written once the register has been
//   configured (the `config` command sets Configured). Until then every run
//   uses the defaults and nothing is written back.
//
// =============================================================================

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"reflect"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/ginjaninja78/fixed-assets-register/internal/document"
	"github.com/ginjaninja78/fixed-assets-register/internal/xlsxparser"
)

// DefaultPath is the settings file used when no other is named.
const DefaultPath = "register.yaml"

// EnvConfigPath names the environment variable that overrides DefaultPath.
const EnvConfigPath = "REGISTER_CONFIG"

// =============================================================================
// SETTINGS STRUCTURE
// =============================================================================

// Settings holds the register configuration.
type Settings struct {
	// =========================================================================
	// FILE LOCATIONS
	// =========================================================================

	// DataDir is the root for every relative default below.
	// Default: "./data"
	DataDir string `yaml:"data_dir"`

	// Workbook is the ledger workbook (.xlsx) or a CSV export of its sheet.
	Workbook string `yaml:"workbook"`

	// Template is the document template workbook.
	Template string `yaml:"template"`

	// DocumentsDir receives generated documents, error logs and summaries.
	// Default: "<data_dir>/documents"
	DocumentsDir string `yaml:"documents_dir"`

	// Database is the SQLite file holding the accepted documents.
	// Default: "<data_dir>/register.db"
	Database string `yaml:"database"`

	// ArchiveDir receives a copy of every ledger imported successfully.
	// Empty disables archiving.
	ArchiveDir string `yaml:"archive_dir"`

	// =========================================================================
	// LEDGER LAYOUT
	// =========================================================================

	// Sheet is the ledger sheet. Empty means the active sheet.
	Sheet string `yaml:"sheet"`

	// LastColumn is the 1-based last data column. Zero means detect it from
	// the header row on every import.
	LastColumn int `yaml:"last_column"`

	// Columns moves ledger fields to other columns ("value": "J").
	Columns map[string]string `yaml:"columns,omitempty"`

	// CSVDelimiter separates fields when the ledger is a CSV export.
	// Default: ","
	CSVDelimiter string `yaml:"csv_delimiter"`

	// Cells moves record fields to other template cells ("date": "E3").
	Cells map[string]string `yaml:"cells,omitempty"`

	// =========================================================================
	// LOGGING AND PROCESSING
	// =========================================================================

	// LogLevel: "debug", "info", "warn", "error". Default: "info"
	LogLevel string `yaml:"log_level"`

	// LogFormat: "text" or "json". Default: "text"
	LogFormat string `yaml:"log_format"`

	// LogFile receives log lines instead of stderr when set.
	LogFile string `yaml:"log_file"`

	// MaxConcurrency bounds parallel document generation. Default: 4
	MaxConcurrency int `yaml:"max_concurrency"`

	// Configured is set by the `config` command. Settings are only saved
	// when it is true.
	Configured bool `yaml:"configured"`

	// fileValues holds what the settings file itself set and loadedValues
	// the settings as Load returned them. Save uses both to leave
	// environment overrides and defaults out of the file.
	fileValues   map[string]any
	loadedValues map[string]any
}

// =============================================================================
// LOADING
// =============================================================================

// ResolvePath returns the settings file to use: flagPath when set, else
// REGISTER_CONFIG, else DefaultPath. A .env file in the working directory
// is loaded first so it can supply REGISTER_CONFIG.
func ResolvePath(flagPath string) string {
	// A missing .env is the normal case.
	_ = godotenv.Load()

	if flagPath != "" {
		return flagPath
	}
	if p := os.Getenv(EnvConfigPath); p != "" {
		return p
	}
	return DefaultPath
}

// Load reads the settings file at path. A missing file yields the defaults.
//
// RETURNS:
//   - The settings with defaults applied.
//   - An error if the file cannot be parsed or holds invalid values.
func Load(path string) (*Settings, error) {
	var s Settings

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("failed to read settings file: %w", err)
	default:
		if err := yaml.Unmarshal(data, &s); err != nil {
			return nil, fmt.Errorf("failed to parse settings file: %w", err)
		}
		if err := yaml.Unmarshal(data, &s.fileValues); err != nil {
			return nil, fmt.Errorf("failed to parse settings file: %w", err)
		}
	}

	s.applyEnv()
	s.applyDefaults()

	if err := s.validate(); err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}

	loaded, err := s.values()
	if err != nil {
		return nil, err
	}
	s.loadedValues = loaded
	return &s, nil
}

// applyEnv lets the environment (or .env) point the register at other
// files without editing the settings.
func (s *Settings) applyEnv() {
	overrides := map[string]*string{
		"REGISTER_DATA_DIR":      &s.DataDir,
		"REGISTER_WORKBOOK":      &s.Workbook,
		"REGISTER_TEMPLATE":      &s.Template,
		"REGISTER_DOCUMENTS_DIR": &s.DocumentsDir,
		"REGISTER_DATABASE":      &s.Database,
		"REGISTER_LOG_LEVEL":     &s.LogLevel,
	}
	for key, field := range overrides {
		if v := os.Getenv(key); v != "" {
			*field = v
		}
	}
	if v := os.Getenv("REGISTER_MAX_CONCURRENCY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			s.MaxConcurrency = n
		}
	}
}

// applyDefaults sets default values for any unset option.
func (s *Settings) applyDefaults() {
	if s.DataDir == "" {
		s.DataDir = "./data"
	}
	if s.DocumentsDir == "" {
		s.DocumentsDir = filepath.Join(s.DataDir, "documents")
	}
	if s.Database == "" {
		s.Database = filepath.Join(s.DataDir, "register.db")
	}
	if s.CSVDelimiter == "" {
		s.CSVDelimiter = ","
	}
	if s.LogLevel == "" {
		s.LogLevel = "info"
	}
	if s.LogFormat == "" {
		s.LogFormat = "text"
	}
	if s.MaxConcurrency == 0 {
		s.MaxConcurrency = 4
	}
}

// validate checks the values that would otherwise fail deep inside a run.
func (s *Settings) validate() error {
	if s.MaxConcurrency < 1 {
		return fmt.Errorf("max_concurrency must be at least 1, got %d", s.MaxConcurrency)
	}
	if s.LastColumn < 0 {
		return fmt.Errorf("last_column cannot be negative, got %d", s.LastColumn)
	}
	switch s.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("log_format must be text or json, got %q", s.LogFormat)
	}
	if _, err := s.ColumnLayout(); err != nil {
		return err
	}
	if _, err := s.TemplateCells(); err != nil {
		return err
	}
	return nil
}

// =============================================================================
// DERIVED VALUES
// =============================================================================

// ColumnLayout returns the ledger column layout with Columns applied.
func (s *Settings) ColumnLayout() (xlsxparser.ColumnLayout, error) {
	return xlsxparser.LayoutWithOverrides(s.Columns)
}

// TemplateCells returns the template cell layout with Cells applied.
func (s *Settings) TemplateCells() (document.Cells, error) {
	return document.DefaultCells().WithOverrides(s.Cells)
}

// =============================================================================
// SAVING
// =============================================================================

// Save writes the settings to path, but only once Configured is set.
//
// The file keeps what it held when loaded plus every option changed since.
// Values that came from the environment or from the defaults are not
// written, so they stay overridable.
//
// RETURNS:
//   - Whether the file was written.
//   - An error if writing fails.
func (s *Settings) Save(path string) (bool, error) {
	if !s.Configured {
		return false, nil
	}

	current, err := s.values()
	if err != nil {
		return false, err
	}
	out := make(map[string]any, len(current))
	maps.Copy(out, s.fileValues)
	for key, value := range current {
		if loaded, ok := s.loadedValues[key]; !ok || !reflect.DeepEqual(value, loaded) {
			out[key] = value
		}
	}

	data, err := yaml.Marshal(out)
	if err != nil {
		return false, fmt.Errorf("failed to encode settings: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return false, fmt.Errorf("failed to create settings directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return false, fmt.Errorf("failed to write settings file: %w", err)
	}
	return true, nil
}

// values returns the settings as the generic map the file format decodes to.
func (s *Settings) values() (map[string]any, error) {
	data, err := yaml.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("failed to encode settings: %w", err)
	}
	var m map[string]any
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to decode settings: %w", err)
	}
	return m, nil
}
