package options

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/bisegni/rowfdw/pkg/cell"
)

const (
	// EnvConfigPath names an explicit options file.
	EnvConfigPath = "ROWFDW_CONFIG"
	// ConfigFileName is looked up in the working directory.
	ConfigFileName = "rowfdw.yaml"
)

// File is an options file: one server scope plus foreign table definitions.
type File struct {
	Server Options                `yaml:"server"`
	Tables map[string]TableConfig `yaml:"tables"`
}

// TableConfig describes one foreign table.
type TableConfig struct {
	Options Options        `yaml:"options"`
	Columns []ColumnConfig `yaml:"columns"`
}

// ColumnConfig is a column declaration, e.g. {name: id, type: bigint}.
type ColumnConfig struct {
	Name string    `yaml:"name"`
	Type cell.Type `yaml:"type"`
}

// Parse decodes an options file from YAML (or JSON) text.
func Parse(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse options: %w", err)
	}
	if err := f.validate(); err != nil {
		return nil, err
	}
	if f.Server == nil {
		f.Server = Options{}
	}
	if f.Tables == nil {
		f.Tables = map[string]TableConfig{}
	}
	return &f, nil
}

// LoadFile reads and parses the options file at path.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read options: %w", err)
	}
	return Parse(data)
}

// Find returns the first options file that exists:
//  1. $ROWFDW_CONFIG
//  2. ./rowfdw.yaml
//  3. ~/.config/rowfdw/config.yaml
//
// It returns "" when none is found.
func Find() string {
	if path := os.Getenv(EnvConfigPath); path != "" && fileExists(path) {
		return path
	}
	if fileExists(ConfigFileName) {
		return ConfigFileName
	}
	if home, err := os.UserHomeDir(); err == nil {
		path := filepath.Join(home, ".config", "rowfdw", "config.yaml")
		if fileExists(path) {
			return path
		}
	}
	return ""
}

// Table returns the definition of a named table.
func (f *File) Table(name string) (TableConfig, error) {
	t, ok := f.Tables[name]
	if !ok {
		return TableConfig{}, fmt.Errorf("table '%s' not defined", name)
	}
	return t, nil
}

func (f *File) validate() error {
	for name, t := range f.Tables {
		seen := make(map[string]bool, len(t.Columns))
		for i, c := range t.Columns {
			if c.Name == "" {
				return fmt.Errorf("table '%s': column %d has no name", name, i)
			}
			if seen[c.Name] {
				return fmt.Errorf("table '%s': duplicate column '%s'", name, c.Name)
			}
			seen[c.Name] = true
		}
	}
	return nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
