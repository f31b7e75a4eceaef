package parserstub

import "testing"

func TestParseDependencyEntry(t *testing.T) {
	entry, err := ParseDependencyEntry(`credits: "1.2.0" @ testnet3 #a1b2c3`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if entry.Program != "credits" {
		t.Errorf("Program = %q, want %q", entry.Program, "credits")
	}
	if entry.Version != "1.2.0" {
		t.Errorf("Version = %q, want %q", entry.Version, "1.2.0")
	}
	if entry.Network != "testnet3" {
		t.Errorf("Network = %q, want %q", entry.Network, "testnet3")
	}
	if entry.Hash != "a1b2c3" {
		t.Errorf("Hash = %q, want %q", entry.Hash, "a1b2c3")
	}
}

func TestParseDependencyEntryRejectsMalformed(t *testing.T) {
	if _, err := ParseDependencyEntry(`credits "1.2.0"`); err == nil {
		t.Fatal("expected an error for a missing colon, got nil")
	}
}

func TestParseNetworkSelector(t *testing.T) {
	sel, err := ParseNetworkSelector("testnet3:https://api.explorer.provable.com/v1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sel.Network != "testnet3" {
		t.Errorf("Network = %q, want %q", sel.Network, "testnet3")
	}
	if sel.Endpoint != "https://api.explorer.provable.com/v1" {
		t.Errorf("Endpoint = %q, want %q", sel.Endpoint, "https://api.explorer.provable.com/v1")
	}
}

func TestParseNetworkSelectorRejectsMissingColon(t *testing.T) {
	if _, err := ParseNetworkSelector("testnet3"); err == nil {
		t.Fatal("expected an error for a selector with no endpoint, got nil")
	}
}
