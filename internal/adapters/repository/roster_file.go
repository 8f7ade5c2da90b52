package repository

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/okian/taskmatch/internal/domain/model"
)

//go:embed sample_roster.yaml
var sampleRosterYAML []byte

type rosterFile struct {
	Employees []model.Employee `yaml:"employees"`
}

// ParseRoster decodes a YAML roster document. Unknown fields are rejected.
func ParseRoster(data []byte) ([]model.Employee, error) {
	var f rosterFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: decode yaml: %w", ErrInvalidRoster, err)
	}
	return f.Employees, nil
}

// LoadRosterFile reads and decodes a YAML roster from disk.
func LoadRosterFile(path string) ([]model.Employee, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", ErrInvalidRoster, path, err)
	}
	return ParseRoster(data)
}

// SampleRoster returns the built-in demo team.
func SampleRoster() []model.Employee {
	employees, err := ParseRoster(sampleRosterYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded sample roster: %v", err))
	}
	return employees
}
