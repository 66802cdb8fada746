package diskscan

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTempConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scan.yml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write temp config: %v", err)
	}
	return path
}

func TestLoadConfigValid(t *testing.T) {
	path := writeTempConfig(t, `
fastMode: 1
architecture: i386
extendedMode: max
geometry:
  cylinders: 130
  headsPerCylinder: 16
  sectorsPerHead: 63
sectorSize: 512
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.ArchitectureValue() != ArchI386 {
		t.Errorf("architecture = %v, want i386", cfg.ArchitectureValue())
	}
	if cfg.ExtendedModeValue() != ExtendedMax {
		t.Errorf("extendedMode = %v, want max", cfg.ExtendedModeValue())
	}
	if cfg.Geometry == nil || cfg.Geometry.HeadsPerCylinder != 16 {
		t.Errorf("geometry not parsed correctly: %+v", cfg.Geometry)
	}
}

func TestLoadConfigRejectsUnknownField(t *testing.T) {
	path := writeTempConfig(t, `
fastMode: 1
bogusField: true
`)

	if _, err := LoadConfig(path); err == nil {
		t.Error("expected validation error for unknown config field")
	}
}

func TestLoadConfigRejectsOutOfRangeFastMode(t *testing.T) {
	path := writeTempConfig(t, `
fastMode: 5
`)

	if _, err := LoadConfig(path); err == nil {
		t.Error("expected validation error for fastMode out of [0,2] range")
	}
}

func TestConfigDefaults(t *testing.T) {
	path := writeTempConfig(t, `fastMode: 0`)
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.ArchitectureValue() != ArchNone {
		t.Errorf("default architecture should be none, got %v", cfg.ArchitectureValue())
	}
	if cfg.ExtendedModeValue() != ExtendedMin {
		t.Errorf("default extendedMode should be min, got %v", cfg.ExtendedModeValue())
	}
}
