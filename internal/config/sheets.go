package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// SheetEntry is one tab listed in a sheets file.
type SheetEntry struct {
	Name string `yaml:"name" toml:"name"`
	GID  string `yaml:"gid" toml:"gid"`
}

type sheetsFile struct {
	Sheets []SheetEntry `yaml:"sheets" toml:"sheets"`
}

// LoadSheets reads a sheets file. Files ending in .toml are TOML:
//
//	[[sheets]]
//	name = "Interdisipliner"
//	gid = "923191782"
//
// anything else is YAML:
//
//	sheets:
//	  - name: Interdisipliner
//	    gid: "923191782"
//	  - name: Kluster Medika
//	    gid: "1930446062"
//
// Order in the file is tab order. An empty path returns nil.
func LoadSheets(path string) ([]SheetEntry, error) {
	if path == "" {
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read sheets file: %w", err)
	}
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return ParseSheetsTOML(data)
	}
	return ParseSheets(data)
}

// ParseSheets decodes the YAML sheets document in data.
func ParseSheets(data []byte) ([]SheetEntry, error) {
	return parseSheets(data, yaml.Unmarshal)
}

// ParseSheetsTOML decodes the TOML sheets document in data.
func ParseSheetsTOML(data []byte) ([]SheetEntry, error) {
	return parseSheets(data, toml.Unmarshal)
}

func parseSheets(data []byte, unmarshal func([]byte, any) error) ([]SheetEntry, error) {
	var f sheetsFile
	if err := unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse sheets file: %w", err)
	}
	if len(f.Sheets) == 0 {
		return nil, fmt.Errorf("parse sheets file: no sheets listed")
	}

	for i, s := range f.Sheets {
		f.Sheets[i].Name = strings.TrimSpace(s.Name)
		f.Sheets[i].GID = strings.TrimSpace(s.GID)
		if f.Sheets[i].Name == "" {
			return nil, fmt.Errorf("parse sheets file: sheet %d has no name", i+1)
		}
	}
	return f.Sheets, nil
}
