package config

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
)

// tokenEnvVar is checked before any file.
const tokenEnvVar = "BOT_TOKEN"

// tokenFiles are searched in order when the environment is not set. Both
// plain KEY=VALUE lines and a bare token on the first line are accepted.
var tokenFiles = []string{".env", "token.env"}

// ErrNoToken means no bot token could be found anywhere.
var ErrNoToken = errors.New("bot token not found: set BOT_TOKEN or provide .env/token.env")

// ResolveToken returns the bot token from, in order: the explicit value,
// the BOT_TOKEN environment variable, then the token files in dir.
func ResolveToken(explicit, dir string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	if tok := strings.TrimSpace(os.Getenv(tokenEnvVar)); tok != "" {
		return tok, nil
	}
	for _, name := range tokenFiles {
		path := name
		if dir != "" {
			path = dir + string(os.PathSeparator) + name
		}
		tok, err := tokenFromFile(path)
		if err == nil && tok != "" {
			return tok, nil
		}
	}
	return "", ErrNoToken
}

// tokenFromFile reads a token from an env-style file. A BOT_TOKEN= line
// wins; otherwise the first non-empty non-comment line is taken verbatim.
func tokenFromFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	var fallback string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if key, value, ok := strings.Cut(line, "="); ok {
			if strings.TrimSpace(key) == tokenEnvVar {
				return strings.Trim(strings.TrimSpace(value), `"'`), nil
			}
			continue
		}
		if fallback == "" {
			fallback = line
		}
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return fallback, nil
}
