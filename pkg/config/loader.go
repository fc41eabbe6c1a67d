package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/smolitux/fedlink/pkg/federation"
	"github.com/smolitux/fedlink/pkg/transport"
)

// Common errors for configuration loading.
var (
	ErrFileNotFound     = errors.New("configuration file not found")
	ErrPermissionDenied = errors.New("permission denied")
	ErrInvalidJSON      = errors.New("invalid JSON syntax")
	ErrInvalidYAML      = errors.New("invalid YAML syntax")
	ErrInvalidTOML      = errors.New("invalid TOML syntax")
	ErrEmptyFile        = errors.New("configuration file is empty")
)

// Format is a configuration file syntax.
type Format string

// Supported formats.
const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// DetectFormat picks a format from a file extension. Unknown extensions are
// treated as JSON.
func DetectFormat(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	case ".toml":
		return FormatTOML
	default:
		return FormatJSON
	}
}

var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(?::-([^}]*))?\}`)

// ExpandEnvVars expands ${NAME} and ${NAME:-default} references.
func ExpandEnvVars(input string) string {
	return envVarPattern.ReplaceAllStringFunc(input, func(match string) string {
		sub := envVarPattern.FindStringSubmatch(match)
		if val := os.Getenv(sub[1]); val != "" {
			return val
		}
		return sub[2]
	})
}

// LoadFromFile reads and validates a configuration file.
func LoadFromFile(path string) (*Config, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		if os.IsPermission(err) {
			return nil, fmt.Errorf("%w: %s", ErrPermissionDenied, path)
		}
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("path is a directory, not a file: %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsPermission(err) {
			return nil, fmt.Errorf("%w: %s", ErrPermissionDenied, path)
		}
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyFile, path)
	}

	cfg, err := Parse(data, DetectFormat(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes, validates and returns a configuration.
func Parse(data []byte, format Format) (*Config, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, ErrEmptyFile
	}
	text := ExpandEnvVars(string(data))

	var raw any
	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal([]byte(text), &raw); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidYAML, err)
		}
	case FormatTOML:
		var m map[string]any
		if _, err := toml.Decode(text, &m); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidTOML, err)
		}
		raw = m
	default:
		if !json.Valid([]byte(text)) {
			return nil, ErrInvalidJSON
		}
		raw = json.RawMessage(text)
	}

	// Normalize every format to JSON so the schema and the decoder see the
	// same document.
	normalized, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("unsupported value in %s document: %w", format, err)
	}
	doc, err := decodeGeneric(normalized)
	if err != nil {
		return nil, err
	}
	if err := validateDocument(doc); err != nil {
		return nil, err
	}

	var cfg Config
	if err := json.Unmarshal(normalized, &cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Transport == "" {
		cfg.Transport = transport.KindCoder
	}
	return &cfg, nil
}

func decodeGeneric(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}
	return doc, nil
}

// Validate checks the rules the schema cannot express.
func (c *Config) Validate() error {
	result := &ValidationError{}
	seen := make(map[federation.ProtocolName]bool, len(c.Protocols))
	for i, d := range c.Protocols {
		path := fmt.Sprintf("protocols.%d", i)
		if seen[d.Name] {
			result.add(path+".name", fmt.Sprintf("duplicate protocol %q", d.Name))
		}
		seen[d.Name] = true
	}
	if _, err := federation.CompileFilter(c.Filter); err != nil {
		result.add("filter", err.Error())
	}
	if len(result.Problems) > 0 {
		return result
	}
	return nil
}
