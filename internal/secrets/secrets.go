// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads session credentials from a directory of plain-text files.
// Each file in the directory represents one secret: the filename is the key name and the
// file contents (trimmed) are the value.
//
// Supported key files: goodreads-cookie, imdb-cookie, browser-ua, accept-language.
// Each key also has an environment variable fallback for CI and one-off runs.
package secrets

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Secret file names and their environment fallbacks. The env names
// match what the browser-automation tooling around this pipeline
// already uses, so one .env file serves both.
const (
	GoodreadsCookie = "goodreads-cookie"
	IMDbCookie      = "imdb-cookie"
	BrowserUA       = "browser-ua"
	AcceptLanguage  = "accept-language"
)

var envFallbacks = map[string]string{
	GoodreadsCookie: "GOODREADS_COOKIE",
	IMDbCookie:      "IMDB_COOKIE",
	BrowserUA:       "BROWSER_UA",
	AcceptLanguage:  "ACCEPT_LANGUAGE",
}

// Load reads all files in dir and returns a map of filename to trimmed contents.
// A missing directory or missing files are not errors; Load returns an empty map.
// Unreadable files produce a warning on stderr but do not abort.
func Load(dir string) (map[string]string, error) {
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
			fmt.Fprintf(os.Stderr, "warning: could not read secret %s: %v\n", name, err)
			continue
		}

		value := strings.TrimSpace(string(data))
		if value != "" {
			secrets[name] = value
		}
	}

	return secrets, nil
}

// Get returns the value for key: the secrets-directory file wins, then
// the key's environment variable, then empty.
func Get(secrets map[string]string, key string) string {
	if v := secrets[key]; v != "" {
		return v
	}
	if env, ok := envFallbacks[key]; ok {
		return strings.TrimSpace(os.Getenv(env))
	}
	return ""
}
