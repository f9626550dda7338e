package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Validate ensures the configuration is usable. A missing recognition
// credential is not a validation failure; see RecognitionConfigured.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateRecognition(); err != nil {
		return err
	}
	if err := c.validateHistory(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		return errors.New("paths.state_dir must be set")
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		return errors.New("paths.log_dir must be set")
	}
	return nil
}

func (c *Config) validateRecognition() error {
	parsed, err := url.Parse(c.Recognition.BaseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("recognition.base_url must be an absolute URL, got %q", c.Recognition.BaseURL)
	}
	if c.Recognition.TimeoutSeconds <= 0 {
		return errors.New("recognition.timeout_seconds must be positive")
	}
	if c.Recognition.MaxImageBytes <= 0 {
		return errors.New("recognition.max_image_bytes must be positive")
	}
	return nil
}

func (c *Config) validateHistory() error {
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Location resolves the timezone used to stamp saved records.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.History.Timezone)
	if err != nil {
		return nil, fmt.Errorf("history.timezone: %w", err)
	}
	return loc, nil
}
