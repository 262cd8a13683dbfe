package kcompat

import (
	"bufio"
	"compress/gzip"
	"io"
	"os"
	"strings"
)

// ConfigValue represents a build configuration option's state.
type ConfigValue int

const (
	// ConfigNotSet means the option is not set or not found.
	ConfigNotSet ConfigValue = iota
	// ConfigModule means the option is set to =m (module).
	ConfigModule
	// ConfigBuiltin means the option is set to =y (built-in).
	ConfigBuiltin
)

// IsEnabled returns true if the config option is set (either =m or =y).
func (v ConfigValue) IsEnabled() bool {
	return v == ConfigModule || v == ConfigBuiltin
}

// IsBuiltin returns true if the config option is built-in (=y).
func (v ConfigValue) IsBuiltin() bool {
	return v == ConfigBuiltin
}

func (v ConfigValue) String() string {
	switch v {
	case ConfigNotSet:
		return "not set"
	case ConfigModule:
		return "m"
	case ConfigBuiltin:
		return "y"
	default:
		return "ConfigValue(?)"
	}
}

// BuildConfig holds the coarse feature flags parsed from the scanned
// tree's .config. Catalog groups are gated on these, never on anything
// probed from the running host.
type BuildConfig struct {
	// raw stores all parsed config values for ad-hoc lookups.
	raw map[string]ConfigValue

	// Convenience fields for the flags catalog groups gate on.
	NetDevlink   ConfigValue // CONFIG_NET_DEVLINK
	PTP1588Clock ConfigValue // CONFIG_PTP_1588_CLOCK
}

// Get returns the ConfigValue for a config key.
// The key should not include the CONFIG_ prefix.
func (bc *BuildConfig) Get(key string) ConfigValue {
	if bc == nil || bc.raw == nil {
		return ConfigNotSet
	}
	return bc.raw[key]
}

// IsSet returns true if the config option is enabled (=m or =y).
func (bc *BuildConfig) IsSet(key string) bool {
	return bc.Get(key).IsEnabled()
}

// NewBuildConfig creates a BuildConfig from a raw config map.
// The map is copied to ensure immutability after construction.
func NewBuildConfig(raw map[string]ConfigValue) *BuildConfig {
	copied := make(map[string]ConfigValue, len(raw))
	for k, v := range raw {
		copied[k] = v
	}
	return &BuildConfig{
		raw:          copied,
		NetDevlink:   copied["NET_DEVLINK"],
		PTP1588Clock: copied["PTP_1588_CLOCK"],
	}
}

// ReadBuildConfig reads and parses the build configuration at path.
// Paths ending in .gz are decompressed transparently, since kernel
// trees ship the config as a gzipped artifact in some packagings.
// Existence is the caller's concern; a missing file surfaces as the
// open error.
func ReadBuildConfig(path string) (*BuildConfig, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var reader io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gr, err := gzip.NewReader(f)
		if err != nil {
			return nil, err
		}
		defer gr.Close()
		reader = gr
	}

	return parseBuildConfig(reader)
}

// parseBuildConfig parses build configuration from a reader.
// It extracts CONFIG_* entries with =y (builtin) or =m (module) values.
func parseBuildConfig(r io.Reader) (*BuildConfig, error) {
	raw := make(map[string]ConfigValue)
	scanner := bufio.NewScanner(r)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		// Skip comments and empty lines.
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Parse CONFIG_FOO=value.
		if !strings.HasPrefix(line, "CONFIG_") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}

		key := strings.TrimPrefix(parts[0], "CONFIG_")
		value := parts[1]

		switch value {
		case "y":
			raw[key] = ConfigBuiltin
		case "m":
			raw[key] = ConfigModule
			// Other values (strings, numbers) are ignored.
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return NewBuildConfig(raw), nil
}
