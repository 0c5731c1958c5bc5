// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package config

import (
	"fmt"
	"regexp"
	"strings"
)

var tomlSectionHeader = regexp.MustCompile(`^\s*\[`)

// updateLogSettingsInTOML rewrites logPath/logMaxSize/logMaxBackups/logLevel
// in content, updating a commented-out or existing key in place rather than
// appending a new section. A key with no existing line (commented or not)
// is inserted just before the first [section] header, preserving the
// convention that top-level scalar settings precede any table.
func updateLogSettingsInTOML(content, logLevel, logPath string, logMaxSize, logMaxBackups int) string {
	settings := []struct {
		key   string
		value string
	}{
		{"logPath", fmt.Sprintf("%q", logPath)},
		{"logMaxSize", fmt.Sprintf("%d", logMaxSize)},
		{"logMaxBackups", fmt.Sprintf("%d", logMaxBackups)},
		{"logLevel", fmt.Sprintf("%q", logLevel)},
	}

	lines := strings.Split(content, "\n")
	remaining := make(map[string]string, len(settings))
	for _, s := range settings {
		remaining[s.key] = s.value
	}

	for i, line := range lines {
		key := keyOf(line)
		if key == "" {
			continue
		}
		if value, ok := remaining[key]; ok {
			lines[i] = fmt.Sprintf("%s = %s", key, value)
			delete(remaining, key)
		}
	}

	if len(remaining) == 0 {
		return strings.Join(lines, "\n")
	}

	insertAt := len(lines)
	for i, line := range lines {
		if tomlSectionHeader.MatchString(line) {
			insertAt = i
			break
		}
	}

	var toInsert []string
	for _, s := range settings {
		if value, ok := remaining[s.key]; ok {
			toInsert = append(toInsert, fmt.Sprintf("%s = %s", s.key, value))
		}
	}

	out := make([]string, 0, len(lines)+len(toInsert))
	out = append(out, lines[:insertAt]...)
	out = append(out, toInsert...)
	out = append(out, lines[insertAt:]...)
	return strings.Join(out, "\n")
}

// keyOf extracts the bare key name from a TOML scalar assignment line,
// tolerating a single leading "#" comment marker, or "" if line isn't one.
func keyOf(line string) string {
	trimmed := strings.TrimSpace(line)
	trimmed = strings.TrimPrefix(trimmed, "#")
	trimmed = strings.TrimSpace(trimmed)
	eq := strings.Index(trimmed, "=")
	if eq <= 0 {
		return ""
	}
	key := strings.TrimSpace(trimmed[:eq])
	if key == "" || strings.ContainsAny(key, " \t[]") {
		return ""
	}
	return key
}
