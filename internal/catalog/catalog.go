// Package catalog reads the question and invite code catalog from YAML.
package catalog

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
	"invite-quiz-service/internal/domain"
)

type Catalog struct {
	Questions   []domain.Question `yaml:"questions"`
	InviteCodes []string          `yaml:"invite_codes"`
}

// Load reads a catalog file and validates it.
func Load(path string) (Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Catalog{}, err
	}
	return Parse(data)
}

func Parse(data []byte) (Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return Catalog{}, fmt.Errorf("parse catalog: %w", err)
	}
	for i, code := range c.InviteCodes {
		c.InviteCodes[i] = strings.ToUpper(strings.TrimSpace(code))
	}
	if err := c.Validate(); err != nil {
		return Catalog{}, err
	}
	return c, nil
}

// Validate checks every question is answerable and ids and codes are unique.
func (c Catalog) Validate() error {
	ids := make(map[string]struct{}, len(c.Questions))
	for _, q := range c.Questions {
		if q.ID == "" {
			return fmt.Errorf("question %q: missing id", q.Text)
		}
		if _, dup := ids[q.ID]; dup {
			return fmt.Errorf("question %s: duplicate id", q.ID)
		}
		ids[q.ID] = struct{}{}
		if !q.Difficulty.Valid() {
			return fmt.Errorf("question %s: unknown difficulty %q", q.ID, q.Difficulty)
		}
		if !contains(q.Options, q.CorrectAnswer) {
			return fmt.Errorf("question %s: correct answer is not an option", q.ID)
		}
	}

	codes := make(map[string]struct{}, len(c.InviteCodes))
	for _, code := range c.InviteCodes {
		if code == "" {
			return fmt.Errorf("empty invite code")
		}
		if _, dup := codes[code]; dup {
			return fmt.Errorf("invite code %s: duplicate", code)
		}
		codes[code] = struct{}{}
	}
	return nil
}

func contains(options []string, answer string) bool {
	for _, o := range options {
		if o == answer {
			return true
		}
	}
	return false
}
