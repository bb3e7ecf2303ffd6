package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// SourceEmbedded names the built-in default course.
const SourceEmbedded = "embedded"

// Parse decodes a course, fills defaults and validates it.
func Parse(data []byte) (Course, error) {
	var c Course
	if err := yaml.Unmarshal(data, &c); err != nil {
		return c, fmt.Errorf("failed to parse course: %w", err)
	}
	applyDefaults(&c)
	if err := c.Validate(); err != nil {
		return c, fmt.Errorf("invalid course: %w", err)
	}
	return c, nil
}

// LoadCourse loads a course and reports where it came from.
// Search order: customPath -> ~/.drivetest/courses/default.yaml -> ./courses/default.yaml -> embedded default
func LoadCourse(customPath string) (Course, string, error) {
	// Try custom path first
	if customPath != "" {
		data, err := os.ReadFile(customPath)
		if err != nil {
			return Course{}, customPath, fmt.Errorf("failed to read course %s: %w", customPath, err)
		}
		c, err := Parse(data)
		if err != nil {
			return c, customPath, fmt.Errorf("%s: %w", customPath, err)
		}
		return c, customPath, nil
	}

	// Try user config directory
	if userPath := UserPath("courses", "default.yaml"); userPath != "" {
		if data, err := os.ReadFile(userPath); err == nil {
			if c, err := Parse(data); err == nil {
				return c, userPath, nil
			}
		}
	}

	// Try local courses directory
	localPath := filepath.Join("courses", "default.yaml")
	if data, err := os.ReadFile(localPath); err == nil {
		if c, err := Parse(data); err == nil {
			return c, localPath, nil
		}
	}

	// Use embedded default YAML
	c, err := Parse(defaultCourseYAML)
	if err != nil {
		return c, SourceEmbedded, fmt.Errorf("embedded course: %w", err)
	}
	return c, SourceEmbedded, nil
}

// UserPath returns a path under ~/.drivetest, or empty if home is unavailable.
func UserPath(elem ...string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(append([]string{home, ".drivetest"}, elem...)...)
}
