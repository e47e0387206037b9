// Package instructions composes the per-turn system prompt from
// modular Markdown templates: a required core template, a required
// mode template, and optional provider-specific addenda, stitched
// together the way original_source/instruction_composer.py combines
// core + mode + provider files, adapted to Go's embed.FS instead of
// importlib.resources.
package instructions

import (
	"embed"
	"errors"
	"fmt"
	"path"
	"regexp"
	"sort"
	"strings"
	"sync"
)

//go:embed templates
var templateFS embed.FS

const templatesRoot = "templates"

var (
	// ErrCoreMissing indicates templates/core.md could not be loaded;
	// this is a packaging bug, not a runtime condition.
	ErrCoreMissing = errors.New("instructions: core template missing")

	// ErrModeNotFound indicates templates/modes/<mode>.md does not exist.
	ErrModeNotFound = errors.New("instructions: unknown mode")
)

var importPattern = regexp.MustCompile(`(?m)^@(.+)$`)

// Composer composes system prompts from the embedded template set. Create
// one with New: the zero value has no cache map and is not usable.
// Template content is immutable (compiled in), so results are cached
// unconditionally after first load.
type Composer struct {
	mu        sync.Mutex
	cache     map[string]string
	modes     []string
	userModes []string
}

// New returns a ready Composer.
func New() *Composer {
	return &Composer{cache: make(map[string]string)}
}

// AvailableModes returns the sorted mode names discovered under
// templates/modes/, followed by any modes added with RegisterUserModes in
// the order they were registered.
func (c *Composer) AvailableModes() ([]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.availableModesLocked()
}

func (c *Composer) availableModesLocked() ([]string, error) {
	if c.modes != nil {
		return c.modes, nil
	}

	entries, err := templateFS.ReadDir(path.Join(templatesRoot, "modes"))
	if err != nil {
		return nil, fmt.Errorf("instructions: read modes directory: %w", err)
	}

	var modes []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".md") {
			continue
		}
		modes = append(modes, strings.TrimSuffix(e.Name(), ".md"))
	}
	sort.Strings(modes)
	c.modes = modes
	return modes, nil
}

// Compose builds the full system prompt for mode, optionally appending
// a provider-specific addendum when one exists for provider.
func (c *Composer) Compose(mode, provider string) (string, error) {
	core, err := c.load("core.md")
	if err != nil {
		return "", ErrCoreMissing
	}

	allModes, err := c.AvailableModes()
	if err != nil {
		return "", err
	}
	var others []string
	for _, m := range allModes {
		if m != mode {
			others = append(others, m)
		}
	}
	core = strings.ReplaceAll(core, "{{CURRENT_MODE}}", mode)
	core = strings.ReplaceAll(core, "{{AVAILABLE_MODES}}", strings.Join(others, "|"))

	modeContent, err := c.loadMode(mode)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrModeNotFound, mode)
	}

	parts := []string{core, modeContent}

	if provider != "" {
		if providerContent, err := c.load(path.Join("providers", provider+".md")); err == nil {
			parts = append(parts, providerContent)
		}
	}

	return strings.Join(parts, "\n\n"), nil
}

// loadMode returns a mode's template content, checking user-registered
// modes (already cached in full by RegisterUserModes) before falling
// back to the embedded templates/modes/ set.
func (c *Composer) loadMode(mode string) (string, error) {
	c.mu.Lock()
	if content, ok := c.cache[userModeCacheKey(mode)]; ok {
		c.mu.Unlock()
		return content, nil
	}
	c.mu.Unlock()
	return c.load(path.Join("modes", mode+".md"))
}

// load reads and caches a template by its path relative to templates/,
// resolving @import lines recursively.
func (c *Composer) load(relPath string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loadLocked(relPath)
}

func (c *Composer) loadLocked(relPath string) (string, error) {
	if cached, ok := c.cache[relPath]; ok {
		return cached, nil
	}

	raw, err := templateFS.ReadFile(path.Join(templatesRoot, relPath))
	if err != nil {
		return "", fmt.Errorf("instructions: read %s: %w", relPath, err)
	}

	resolved, err := c.resolveImports(string(raw), path.Dir(relPath))
	if err != nil {
		return "", err
	}

	c.cache[relPath] = resolved
	return resolved, nil
}

// resolveImports replaces each "@path" line with the resolved content
// of the file it names, relative to dir (the importing file's
// directory), recursing into the imported file's own imports.
func (c *Composer) resolveImports(content, dir string) (string, error) {
	var resolveErr error
	result := importPattern.ReplaceAllStringFunc(content, func(line string) string {
		if resolveErr != nil {
			return line
		}
		importPath := strings.TrimPrefix(line, "@")
		resolved := path.Clean(path.Join(dir, importPath))
		if strings.HasPrefix(importPath, "/") {
			resolved = path.Clean(strings.TrimPrefix(importPath, "/"))
		}

		nested, err := c.loadLocked(resolved)
		if err != nil {
			resolveErr = fmt.Errorf("instructions: import %q: %w", importPath, err)
			return line
		}
		return nested
	})
	if resolveErr != nil {
		return "", resolveErr
	}
	return result, nil
}
