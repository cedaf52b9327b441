package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_ValidTOML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "matchcore.toml")
	toml := `
instrument = "BTC-USD"
order_book_type = "transparent"
tick_size = "0.01"
lot_size = "0.001"

[algorithm]
kind = "pro_rata"
min_quantity = "0"
`
	if err := os.WriteFile(path, []byte(toml), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Instrument != "BTC-USD" {
		t.Fatalf("unexpected instrument %q", cfg.Instrument)
	}
	if cfg.TickSize == nil || cfg.TickSize.String() != "0.010000000" {
		t.Fatalf("unexpected tick size %v", cfg.TickSize)
	}
}

func TestLoad_UnknownAlgorithmRejected(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "matchcore.toml")
	toml := `
instrument = "BTC-USD"

[algorithm]
kind = "not_a_real_algorithm"
`
	if err := os.WriteFile(path, []byte(toml), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for unknown algorithm kind")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
