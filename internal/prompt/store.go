package prompt

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
)

var ErrUnknownVariant = errors.New("unknown prompt variant")

// Templates are the two system instructions used for one run.
type Templates struct {
	Classification string
	Response       string
}

// Store maps named variants to instruction text per use case.
type Store struct {
	Classification map[string]string `json:"email_classification"`
	Generation     map[string]string `json:"response_generation"`
	// legacy files spell the generation section "reponse_generation"
	LegacyGeneration map[string]string `json:"reponse_generation,omitempty"`
}

func Load(path string) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read prompts %s: %w", path, err)
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse prompts %s: %w", path, err)
	}
	return s, nil
}

func Parse(data []byte) (*Store, error) {
	var s Store
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	if s.Generation == nil {
		s.Generation = make(map[string]string, len(s.LegacyGeneration))
	}
	for name, text := range s.LegacyGeneration {
		if _, ok := s.Generation[name]; !ok {
			s.Generation[name] = text
		}
	}
	s.LegacyGeneration = nil
	return &s, nil
}

// Select returns the classification and response instructions for the
// named variants.
func (s *Store) Select(classificationVariant, generationVariant string) (Templates, error) {
	classification, err := lookup("email_classification", s.Classification, classificationVariant)
	if err != nil {
		return Templates{}, err
	}
	response, err := lookup("response_generation", s.Generation, generationVariant)
	if err != nil {
		return Templates{}, err
	}
	return Templates{Classification: classification, Response: response}, nil
}

func lookup(section string, variants map[string]string, name string) (string, error) {
	text, ok := variants[name]
	if !ok || strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%w: %s/%q (have %s)", ErrUnknownVariant, section, name, strings.Join(names(variants), ", "))
	}
	return text, nil
}

func names(variants map[string]string) []string {
	out := make([]string, 0, len(variants))
	for name := range variants {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
