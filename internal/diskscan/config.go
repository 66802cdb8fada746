package diskscan

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
	sigsyaml "sigs.k8s.io/yaml"
)

// configSchema validates a scan configuration file before it is applied.
// It rejects unknown fields (additionalProperties false) so a typo in a
// config file fails fast instead of being silently ignored, the same
// contract the teacher's template-manifest validation gave its YAML configs.
const configSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "additionalProperties": false,
  "properties": {
    "fastMode": {"type": "integer", "minimum": 0, "maximum": 2},
    "architecture": {"type": "string", "enum": ["none", "i386", "gpt", "mac", "sun", "xbox", "humax"]},
    "extendedMode": {"type": "string", "enum": ["min", "max"]},
    "geometry": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "cylinders": {"type": "integer", "minimum": 0},
        "headsPerCylinder": {"type": "integer", "minimum": 1},
        "sectorsPerHead": {"type": "integer", "minimum": 1}
      }
    },
    "sectorSize": {"type": "integer", "minimum": 512}
  }
}`

// Config is the user-facing scan configuration, loaded from YAML and
// validated against configSchema before being translated into ScanOptions/
// Architecture/ExtendedMode (ambient config stack, SPEC_FULL §AMBIENT STACK).
type Config struct {
	FastMode     int          `yaml:"fastMode" json:"fastMode"`
	Architecture string       `yaml:"architecture" json:"architecture"`
	ExtendedMode string       `yaml:"extendedMode" json:"extendedMode"`
	Geometry     *ConfigGeom  `yaml:"geometry,omitempty" json:"geometry,omitempty"`
	SectorSize   int          `yaml:"sectorSize,omitempty" json:"sectorSize,omitempty"`
}

// ConfigGeom overrides the disk geometry the scanner infers, per §4.8's
// geometry-override scenario.
type ConfigGeom struct {
	Cylinders        uint64 `yaml:"cylinders" json:"cylinders"`
	HeadsPerCylinder uint32 `yaml:"headsPerCylinder" json:"headsPerCylinder"`
	SectorsPerHead   uint32 `yaml:"sectorsPerHead" json:"sectorsPerHead"`
}

// LoadConfig reads and validates a scan configuration file at path.
func LoadConfig(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	jsonBytes, err := sigsyaml.YAMLToJSON(raw)
	if err != nil {
		return nil, fmt.Errorf("convert config %s to json for validation: %w", path, err)
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("config.json", bytes.NewReader([]byte(configSchema))); err != nil {
		return nil, fmt.Errorf("load config schema: %w", err)
	}
	schema, err := compiler.Compile("config.json")
	if err != nil {
		return nil, fmt.Errorf("compile config schema: %w", err)
	}

	var doc interface{}
	if err := json.Unmarshal(jsonBytes, &doc); err != nil {
		return nil, fmt.Errorf("decode config %s for validation: %w", path, err)
	}
	if err := schema.Validate(doc); err != nil {
		return nil, fmt.Errorf("config %s failed validation: %w", path, err)
	}

	return &cfg, nil
}

// ArchitectureValue parses the config's architecture string into an
// Architecture, defaulting to ArchNone.
func (c *Config) ArchitectureValue() Architecture {
	switch c.Architecture {
	case "i386":
		return ArchI386
	case "gpt":
		return ArchGPT
	case "mac":
		return ArchMac
	case "sun":
		return ArchSun
	case "xbox":
		return ArchXbox
	case "humax":
		return ArchHumax
	default:
		return ArchNone
	}
}

// ExtendedModeValue parses the config's extendedMode string, defaulting to
// ExtendedMin.
func (c *Config) ExtendedModeValue() ExtendedMode {
	if c.ExtendedMode == "max" {
		return ExtendedMax
	}
	return ExtendedMin
}
