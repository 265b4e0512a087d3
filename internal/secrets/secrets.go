// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads API keys and credentials from a directory of plain-text files.
// Each file in the directory represents one secret: the filename is the key name and the
// file contents (trimmed) are the value.
//
// Recognized key files: gemini-api-key, anthropic-api-key, wikijs-api-token.
package secrets

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Key file names under the secrets directory.
const (
	GeminiAPIKey    = "gemini-api-key"
	AnthropicAPIKey = "anthropic-api-key"
	WikiAPIToken    = "wikijs-api-token"
)

// Load reads all files in dir and returns a map of filename to trimmed contents.
// A missing directory or missing files are not errors; Load returns an empty map.
// Unreadable files produce a warning on stderr but do not abort.
func Load(dir string) (map[string]string, error) {
	return LoadWithWarnings(dir, os.Stderr)
}

// LoadWithWarnings is Load with warnings written to w.
func LoadWithWarnings(dir string, w io.Writer) (map[string]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	secrets := make(map[string]string)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			fmt.Fprintf(w, "warning: could not read secret %s: %v\n", name, err)
			continue
		}

		value := strings.TrimSpace(string(data))
		if value != "" {
			secrets[name] = value
		}
	}

	return secrets, nil
}

// Pick returns explicit if it is set, otherwise the secret stored under key.
func Pick(secrets map[string]string, key, explicit string) string {
	if explicit != "" {
		return explicit
	}
	return secrets[key]
}
