package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/aether-player/aether/filesystem"
	"github.com/aether-player/aether/icon"
	"github.com/aether-player/aether/key"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

var (
	// ErrUnknownKey is returned for keys that are not registered in Default.
	ErrUnknownKey = errors.New("unknown key")

	// ErrInvalidValue is returned when a value does not fit its key.
	ErrInvalidValue = errors.New("invalid value")
)

// Parse converts raw command line values into the type of the key's default.
func Parse(name string, raw []string) (any, error) {
	field, ok := Default[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownKey, name)
	}

	if _, ok := field.Value.([]string); ok {
		return lo.Map(raw, func(s string, _ int) string { return strings.TrimSpace(s) }), nil
	}
	if len(raw) != 1 {
		return nil, fmt.Errorf("%w: %s takes exactly one value", ErrInvalidValue, name)
	}

	switch field.Value.(type) {
	case int:
		n, err := strconv.Atoi(raw[0])
		if err != nil {
			return nil, fmt.Errorf("%w: %s expects an integer, got %q", ErrInvalidValue, name, raw[0])
		}
		return n, nil
	case bool:
		b, err := strconv.ParseBool(raw[0])
		if err != nil {
			return nil, fmt.Errorf("%w: %s expects true or false, got %q", ErrInvalidValue, name, raw[0])
		}
		return b, nil
	default:
		return raw[0], nil
	}
}

// Validate checks a parsed value against what the player accepts for the key.
func Validate(name string, v any) error {
	invalid := func(format string, a ...any) error {
		return fmt.Errorf("%w: %s %s", ErrInvalidValue, name, fmt.Sprintf(format, a...))
	}

	switch name {
	case key.PlayerStartupVolumeCap, key.PlayerDefaultVolume:
		if n := v.(int); n < 0 || n > 100 {
			return invalid("must be between 0 and 100, got %d", n)
		}
	case key.EngineSoftvolMax:
		if n := v.(int); n <= 0 {
			return invalid("must be positive, got %d", n)
		}
	case key.EngineBinary, key.EngineProbeBinary:
		if v.(string) == "" {
			return invalid("must not be empty")
		}
	case key.EngineAudioPriority:
		if lo.Contains(v.([]string), "") {
			return invalid("must not contain empty patterns")
		}
	case key.MediaRoot:
		dir, err := filesystem.API().IsDir(v.(string))
		if err != nil || !dir {
			return invalid("%q is not a directory", v)
		}
	case key.LogsLevel:
		if _, err := logrus.ParseLevel(v.(string)); err != nil {
			return invalid("%q is not a log level", v)
		}
	case key.IconsVariant:
		if !lo.Contains(icon.AvailableVariants(), v.(string)) {
			return invalid("must be one of %s", strings.Join(icon.AvailableVariants(), ", "))
		}
	}
	return nil
}

// NeedsRestart reports whether a change to the key only reaches a running engine at its next start.
func NeedsRestart(name string) bool {
	return strings.HasPrefix(name, "engine.")
}

// Set validates and stores a value, then writes the configuration file.
func Set(name string, v any) error {
	if err := Validate(name, v); err != nil {
		return err
	}
	viper.Set(name, v)
	return Write()
}

// Restore restores the given keys, or every key when none are given, and writes the configuration file.
func Restore(names ...string) error {
	if len(names) == 0 {
		names = lo.Keys(Default)
	}
	for _, name := range names {
		field, ok := Default[name]
		if !ok {
			return fmt.Errorf("%w: %s", ErrUnknownKey, name)
		}
		viper.Set(name, field.Value)
	}
	return Write()
}

// Write persists the in-memory configuration, creating the file on first use.
func Write() error {
	err := viper.WriteConfigAs(File())
	if err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
