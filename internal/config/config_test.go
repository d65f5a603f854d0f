package config

import (
	"os"
	"path/filepath"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/ginjaninja78/fixed-assets-register/internal/types"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	s, err := Load(filepath.Join(t.TempDir(), "register.yaml"))
	if err != nil {
		t.Fatal(err)
	}

	if s.DataDir != "./data" || s.DocumentsDir != filepath.Join("./data", "documents") {
		t.Fatalf("dirs = %q, %q", s.DataDir, s.DocumentsDir)
	}
	if s.Database != filepath.Join("./data", "register.db") {
		t.Fatalf("database = %q", s.Database)
	}
	if s.MaxConcurrency != 4 || s.LogLevel != "info" || s.LogFormat != "text" || s.CSVDelimiter != "," {
		t.Fatalf("settings = %+v", s)
	}
	if s.Configured {
		t.Fatal("defaults should not be configured")
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "register.yaml")
	content := `data_dir: /srv/register
workbook: /srv/register/ledger.xlsx
sheet: Rejestr
last_column: 16
max_concurrency: 8
log_format: json
columns:
  value: J
cells:
  date: E3
configured: true
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	s, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if s.Sheet != "Rejestr" || s.LastColumn != 16 || s.MaxConcurrency != 8 || !s.Configured {
		t.Fatalf("settings = %+v", s)
	}
	if s.Database != filepath.Join("/srv/register", "register.db") {
		t.Fatalf("database = %q", s.Database)
	}

	layout, err := s.ColumnLayout()
	if err != nil || layout[types.FieldValue] != 9 {
		t.Fatalf("layout = %v, %v", layout, err)
	}
	cells, err := s.TemplateCells()
	if err != nil || cells[types.FieldDate] != "E3" {
		t.Fatalf("cells = %v, %v", cells, err)
	}
}

func TestLoadInvalid(t *testing.T) {
	tests := map[string]string{
		"bad yaml":         "data_dir: [\n",
		"negative workers": "max_concurrency: -1\n",
		"negative column":  "last_column: -2\n",
		"unknown format":   "log_format: xml\n",
		"unknown column":   "columns:\n  colour: A\n",
		"invalid cell":     "cells:\n  date: 3D\n",
	}

	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "register.yaml")
			if err := os.WriteFile(path, []byte(content), 0644); err != nil {
				t.Fatal(err)
			}
			if _, err := Load(path); err == nil {
				t.Fatal("expected an error")
			}
		})
	}
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	t.Setenv("REGISTER_WORKBOOK", "/tmp/ledger.xlsx")
	t.Setenv("REGISTER_MAX_CONCURRENCY", "2")

	s, err := Load(filepath.Join(t.TempDir(), "register.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if s.Workbook != "/tmp/ledger.xlsx" || s.MaxConcurrency != 2 {
		t.Fatalf("settings = %+v", s)
	}
}

func TestResolvePath(t *testing.T) {
	chdir(t, t.TempDir())

	t.Setenv(EnvConfigPath, "")
	if got := ResolvePath(""); got != DefaultPath {
		t.Fatalf("ResolvePath(\"\") = %q", got)
	}
	if got := ResolvePath("custom.yaml"); got != "custom.yaml" {
		t.Fatalf("ResolvePath(flag) = %q", got)
	}

	t.Setenv(EnvConfigPath, "from-env.yaml")
	if got := ResolvePath(""); got != "from-env.yaml" {
		t.Fatalf("ResolvePath with env = %q", got)
	}
}

func TestResolvePathReadsDotEnv(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	t.Setenv(EnvConfigPath, "")
	os.Unsetenv(EnvConfigPath)

	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte(EnvConfigPath+"=dotenv.yaml\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if got := ResolvePath(""); got != "dotenv.yaml" {
		t.Fatalf("ResolvePath = %q, want the .env value", got)
	}
}

func TestSaveOnlyWhenConfigured(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf", "register.yaml")

	s, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	written, err := s.Save(path)
	if err != nil || written {
		t.Fatalf("Save before configuring = %v, %v", written, err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatal("settings file written before configuring")
	}

	s.Configured = true
	s.Workbook = "ledger.xlsx"
	s.Sheet = "Rejestr"
	if written, err = s.Save(path); err != nil || !written {
		t.Fatalf("Save = %v, %v", written, err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Workbook != "ledger.xlsx" || loaded.Sheet != "Rejestr" || !loaded.Configured {
		t.Fatalf("loaded = %+v", loaded)
	}
}

func TestSaveLeavesOverridesAndDefaultsOut(t *testing.T) {
	path := filepath.Join(t.TempDir(), "register.yaml")
	if err := os.WriteFile(path, []byte("sheet: Rejestr\nmax_concurrency: 8\n"), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("REGISTER_DATABASE", "/tmp/elsewhere.db")

	s, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if s.Database != "/tmp/elsewhere.db" {
		t.Fatalf("database = %q", s.Database)
	}

	s.Configured = true
	s.Workbook = "ledger.xlsx"
	if _, err := s.Save(path); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var written map[string]any
	if err := yaml.Unmarshal(data, &written); err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"database", "documents_dir", "data_dir", "log_level"} {
		if _, ok := written[key]; ok {
			t.Errorf("%s written to the settings file:\n%s", key, data)
		}
	}
	if written["sheet"] != "Rejestr" || written["max_concurrency"] != 8 || written["workbook"] != "ledger.xlsx" || written["configured"] != true {
		t.Fatalf("written settings:\n%s", data)
	}

	os.Unsetenv("REGISTER_DATABASE")
	reloaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if reloaded.Database != filepath.Join("./data", "register.db") {
		t.Fatalf("database after the override is gone = %q", reloaded.Database)
	}
}

// chdir changes the working directory for the duration of the test
// (equivalent of testing.T.Chdir, which requires Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(old); err != nil {
			t.Fatal(err)
		}
	})
}
