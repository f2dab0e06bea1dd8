// pkg/registry/registry.go
package registry

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	apperrors "activity-signup/internal/common/errors"
	"activity-signup/internal/common/validation"
)

//go:embed seed/schema.json
var schemaJSON []byte

//go:embed seed/activities.json
var defaultSeedJSON []byte

var seedSchema = validation.MustCompile(schemaJSON)

// LoadRegistry reads and validates a seed document from disk.
func LoadRegistry(path string) (*ActivityRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseRegistry(data)
}

// ParseRegistry validates data against the seed schema before decoding it.
func ParseRegistry(data []byte) (*ActivityRegistry, error) {
	result, err := seedSchema.ValidateBytes(data)
	if err != nil {
		return nil, apperrors.NewSeedInvalidError(err.Error())
	}
	if !result.Valid {
		return nil, apperrors.NewSeedInvalidError(result.Error())
	}

	var reg ActivityRegistry
	if err := json.Unmarshal(data, &reg); err != nil {
		return nil, apperrors.NewSeedInvalidError(err.Error())
	}
	if err := reg.Validate(); err != nil {
		return nil, err
	}
	return &reg, nil
}

// Default returns the built-in seed.
func Default() *ActivityRegistry {
	reg, err := ParseRegistry(defaultSeedJSON)
	if err != nil {
		panic(fmt.Sprintf("built-in activity seed is invalid: %v", err))
	}
	return reg
}

// Validate checks the rules the schema cannot express.
func (r *ActivityRegistry) Validate() error {
	if len(r.Activities) == 0 {
		return apperrors.NewSeedInvalidError("registry contains no activities")
	}

	names := make(map[string]bool, len(r.Activities))
	for _, activity := range r.Activities {
		if activity.Name == "" {
			return apperrors.NewSeedInvalidError("activity missing required field: name")
		}
		if names[activity.Name] {
			return apperrors.NewSeedInvalidError(fmt.Sprintf("duplicate activity name: %s", activity.Name))
		}
		names[activity.Name] = true

		seen := make(map[string]bool, len(activity.Participants))
		for _, email := range activity.Participants {
			if seen[email] {
				return apperrors.NewSeedInvalidError(
					fmt.Sprintf("activity %s lists participant %s twice", activity.Name, email))
			}
			seen[email] = true
		}
	}
	return nil
}

// Find returns the activity with the given name.
func (r *ActivityRegistry) Find(name string) (*Activity, bool) {
	for i := range r.Activities {
		if r.Activities[i].Name == name {
			return &r.Activities[i], true
		}
	}
	return nil, false
}

// Save writes the document as indented JSON after validating it.
func (r *ActivityRegistry) Save(path string) error {
	for i := range r.Activities {
		if r.Activities[i].Participants == nil {
			r.Activities[i].Participants = []string{}
		}
	}
	if err := r.Validate(); err != nil {
		return err
	}
	result, err := seedSchema.ValidateValue(r)
	if err != nil {
		return apperrors.NewSeedInvalidError(err.Error())
	}
	if !result.Valid {
		return apperrors.NewSeedInvalidError(result.Error())
	}

	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal registry: %w", err)
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}
