package questions

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed seed.yaml
var seedYAML []byte

type bankFile struct {
	Questions []Question `yaml:"questions"`
}

// Parse decodes a bank document. Both a top-level "questions" list and a
// bare list are accepted; JSON input works since it is valid YAML.
func Parse(data []byte) ([]Question, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, nil
	}

	if data[0] == '[' || data[0] == '-' {
		var qs []Question
		if err := yaml.Unmarshal(data, &qs); err != nil {
			return nil, fmt.Errorf("parse question list: %w", err)
		}
		return qs, nil
	}

	var f bankFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse question bank: %w", err)
	}
	return f.Questions, nil
}

// LoadFile reads and parses a bank file.
func LoadFile(path string) ([]Question, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return Parse(data)
}

// SeedQuestions returns the built-in bank.
func SeedQuestions() ([]Question, error) {
	return Parse(seedYAML)
}

// Seed imports the built-in bank. Existing questions are left alone.
func Seed(ctx context.Context, b *Bank) (ImportStats, error) {
	qs, err := SeedQuestions()
	if err != nil {
		return ImportStats{}, err
	}
	for i := range qs {
		if qs[i].Source == "" {
			qs[i].Source = "seed"
		}
	}
	return b.Import(ctx, qs)
}
