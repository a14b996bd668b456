// Copyright (c) 2024 The BitFS developers
// Use of this source code is governed by the Open BSV License v5
// that can be found in the LICENSE file.

// Package config loads and saves the note wallet configuration file.
//
// The file is a plain list of "key = value" lines; '#' starts a comment and
// unknown keys are ignored so older builds can read newer files.
package config

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/bitfsorg/notepicker-go/notepicker"
)

const (
	configFileName = "config"
	storeFileName  = "notes.db"

	// DefaultMaxInputNotes is the input note count of a payment proof.
	DefaultMaxInputNotes = notepicker.DefaultMaxNotes
)

// Config holds the note wallet settings.
type Config struct {
	DataDir  string // Root directory for the note database
	Network  string // "mainnet", "testnet", or "regtest"
	LogLevel string // "trace", "debug", "info", "warn", or "error"
	LogFile  string // Empty logs to stdout

	// MaxInputNotes caps how many notes a balance query assumes one
	// transaction can spend.
	MaxInputNotes int

	// ExcludePendingNotes makes every query ignore unsettled notes, even
	// chainable ones.
	ExcludePendingNotes bool
}

// DefaultDataDir returns ~/.notepicker, or ".notepicker" if the home
// directory cannot be determined.
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".notepicker"
	}
	return filepath.Join(home, ".notepicker")
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() Config {
	return Config{
		DataDir:       DefaultDataDir(),
		Network:       "mainnet",
		LogLevel:      "info",
		MaxInputNotes: DefaultMaxInputNotes,
	}
}

// ConfigPath returns the config file location inside dataDir.
func ConfigPath(dataDir string) string {
	return filepath.Join(dataDir, configFileName)
}

// StorePath returns the note database location for cfg's network.
func StorePath(cfg Config) string {
	return filepath.Join(cfg.DataDir, cfg.Network, storeFileName)
}

// LoadConfig reads the config file at path. Keys missing from the file keep
// their DefaultConfig values.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return cfg, fmt.Errorf("config: open %s: %w", path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, err := parseKeyValue(line)
		if err != nil {
			return cfg, fmt.Errorf("%w: line %d: %q", ErrInvalidConfigLine, lineNo, line)
		}
		if err := cfg.set(key, value); err != nil {
			return cfg, fmt.Errorf("%w: line %d: %w", ErrInvalidConfigLine, lineNo, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	}

	return cfg, nil
}

// parseKeyValue splits a line on its first '='.
func parseKeyValue(line string) (string, string, error) {
	key, value, ok := strings.Cut(line, "=")
	if !ok {
		return "", "", ErrInvalidConfigLine
	}
	key = strings.ToLower(strings.TrimSpace(key))
	if key == "" {
		return "", "", ErrInvalidConfigLine
	}
	return key, strings.TrimSpace(value), nil
}

func (c *Config) set(key, value string) error {
	switch key {
	case "datadir":
		c.DataDir = value
	case "network":
		c.Network = value
	case "loglevel":
		c.LogLevel = value
	case "logfile":
		c.LogFile = value
	case "maxinputnotes":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("maxinputnotes: %w", err)
		}
		c.MaxInputNotes = n
	case "excludepending":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("excludepending: %w", err)
		}
		c.ExcludePendingNotes = b
	}
	return nil
}

// SaveConfig writes cfg to path, creating parent directories as needed.
func SaveConfig(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("config: create directory: %w", err)
	}

	var b strings.Builder
	b.WriteString("# Note wallet configuration\n\n")
	fmt.Fprintf(&b, "datadir = %s\n", cfg.DataDir)
	fmt.Fprintf(&b, "network = %s\n", cfg.Network)
	fmt.Fprintf(&b, "loglevel = %s\n", cfg.LogLevel)
	fmt.Fprintf(&b, "logfile = %s\n", cfg.LogFile)
	fmt.Fprintf(&b, "maxinputnotes = %d\n", cfg.MaxInputNotes)
	fmt.Fprintf(&b, "excludepending = %t\n", cfg.ExcludePendingNotes)

	if err := os.WriteFile(path, []byte(b.String()), 0600); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}
	return nil
}
