package instructions

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// UserMode names an additional dictation mode backed by a template file
// outside the embedded set, letting a user add a mode (e.g. a
// house-style "commit-message" mode) without rebuilding the binary.
type UserMode struct {
	Name         string `yaml:"name"`
	TemplatePath string `yaml:"template_path"`
}

// LoadUserModes reads a YAML manifest (a list of UserMode entries) from
// manifestPath. A missing file is not an error: it just means no user
// modes are configured.
func LoadUserModes(manifestPath string) ([]UserMode, error) {
	raw, err := os.ReadFile(manifestPath)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("instructions: read user mode manifest: %w", err)
	}

	var modes []UserMode
	if err := yaml.Unmarshal(raw, &modes); err != nil {
		return nil, fmt.Errorf("instructions: parse user mode manifest: %w", err)
	}
	return modes, nil
}

// RegisterUserModes adds externally defined modes to c, reading each
// one's template content from disk up front so a later Compose call
// never touches the filesystem again.
func (c *Composer) RegisterUserModes(modes []UserMode) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, err := c.availableModesLocked(); err != nil {
		return err
	}

	for _, m := range modes {
		if m.Name == "" || m.TemplatePath == "" {
			continue
		}
		content, err := os.ReadFile(m.TemplatePath)
		if err != nil {
			return fmt.Errorf("instructions: load user mode %q: %w", m.Name, err)
		}
		key := userModeCacheKey(m.Name)
		c.cache[key] = string(content)
		c.userModes = append(c.userModes, m.Name)
		c.modes = append(c.modes, m.Name)
	}
	return nil
}

func userModeCacheKey(name string) string {
	return "usermode:" + name
}
