package pipeline

import (
	"fmt"

	"github.com/angulpilot/assessment-pipeline/internal/config"
	"github.com/angulpilot/assessment-pipeline/internal/source"
)

// inputs holds the four raw row matrices the run consumes.
type inputs struct {
	schools [][]string
	keys    [][]string
	grade5  [][]string
	grade8  [][]string
}

// loadInputs reads the four tabular sources. With a combined path, all
// four are sheets of one workbook (or files of one CSV directory);
// otherwise each source is its own file and its first sheet is used.
func loadInputs(cfg config.InputConfig) (*inputs, error) {
	if cfg.CombinedPath != "" {
		return loadCombined(cfg)
	}
	return loadSeparate(cfg)
}

func loadCombined(cfg config.InputConfig) (*inputs, error) {
	wb, err := source.Open(cfg.CombinedPath)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", cfg.CombinedPath, err)
	}
	defer wb.Close()

	in := &inputs{}
	for _, s := range []struct {
		sheet string
		dst   *[][]string
	}{
		{cfg.SchoolsSheet, &in.schools},
		{cfg.KeysSheet, &in.keys},
		{cfg.Grade5Sheet, &in.grade5},
		{cfg.Grade8Sheet, &in.grade8},
	} {
		rows, err := wb.Sheet(s.sheet)
		if err != nil {
			return nil, fmt.Errorf("read sheet %q: %w", s.sheet, err)
		}
		*s.dst = rows
	}
	return in, nil
}

func loadSeparate(cfg config.InputConfig) (*inputs, error) {
	in := &inputs{}
	for _, s := range []struct {
		name string
		path string
		dst  *[][]string
	}{
		{"schools", cfg.SchoolsPath, &in.schools},
		{"answer keys", cfg.KeysPath, &in.keys},
		{"grade 5 responses", cfg.Grade5Path, &in.grade5},
		{"grade 8 responses", cfg.Grade8Path, &in.grade8},
	} {
		rows, err := source.ReadMatrix(s.path)
		if err != nil {
			return nil, fmt.Errorf("read %s from %s: %w", s.name, s.path, err)
		}
		*s.dst = rows
	}
	return in, nil
}
