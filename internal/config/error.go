package config

import (
	"fmt"
	"strings"
)

// ConfigError reports every problem found in one configuration file, so
// a user fixing it sees the whole list at once.
type ConfigError struct {
	Path    string
	Missing []string // unresolved ${VAR} references, as "NAME" or "NAME: message"
	Errors  []string // validation failures, as "section.key: problem"
}

func (e *ConfigError) Error() string {
	n := len(e.Missing) + len(e.Errors)
	if n == 0 {
		return ""
	}

	var b strings.Builder
	if e.Path != "" {
		b.WriteString(e.Path + ": ")
	}
	if n == 1 {
		b.WriteString("1 configuration problem")
	} else {
		fmt.Fprintf(&b, "%d configuration problems", n)
	}
	for _, m := range e.Missing {
		fmt.Fprintf(&b, "\n  - environment variable not set: %s", m)
	}
	for _, err := range e.Errors {
		fmt.Fprintf(&b, "\n  - %s", err)
	}
	return b.String()
}

// HasErrors reports whether any problem was recorded.
func (e *ConfigError) HasErrors() bool {
	return len(e.Missing) > 0 || len(e.Errors) > 0
}

// Sections returns the config sections named by validation errors, in
// order of first appearance.
func (e *ConfigError) Sections() []string {
	var sections []string
	seen := make(map[string]bool)
	for _, err := range e.Errors {
		section, _, ok := strings.Cut(err, ".")
		if !ok || seen[section] {
			continue
		}
		seen[section] = true
		sections = append(sections, section)
	}
	return sections
}
