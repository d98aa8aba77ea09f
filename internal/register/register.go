package register

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Register maps electoral district codes to their official names. Uploaded
// documents frequently omit the district name; the register fills it in so
// observers never see a bare code.
type Register struct {
	names map[string]string
}

type registerFile struct {
	Districts []struct {
		Code string `yaml:"code"`
		Name string `yaml:"name"`
	} `yaml:"districts"`
}

// Load reads a district register from a YAML file.
func Load(path string) (*Register, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read district register: %w", err)
	}

	var f registerFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("failed to parse district register: %w", err)
	}

	r := Empty()
	for i, d := range f.Districts {
		code := strings.TrimSpace(d.Code)
		if code == "" {
			return nil, fmt.Errorf("district register entry %d has no code", i)
		}
		r.names[code] = strings.TrimSpace(d.Name)
	}
	return r, nil
}

// Empty returns a register with no entries. Lookups return "".
func Empty() *Register {
	return &Register{names: make(map[string]string)}
}

// Name returns the registered name for a district code, or "" when unknown.
func (r *Register) Name(code string) string {
	return r.names[code]
}

// Len reports the number of registered districts.
func (r *Register) Len() int {
	return len(r.names)
}
