package scanner

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// =============================================================================
// Config Tests
// =============================================================================

func TestDefaultConfig(t *testing.T) {
	c := DefaultConfig()

	if c.Host != "localhost" {
		t.Errorf("Host = %q, want localhost", c.Host)
	}
	if !c.SafeMode {
		t.Error("SafeMode must default to on")
	}
	if c.Port != 0 {
		t.Error("Port has no default; the operator must name the target")
	}
}

func TestConfig_Validate(t *testing.T) {
	c := DefaultConfig()
	if err := c.Validate(); err == nil {
		t.Error("Validate() without a port should fail")
	}

	c.Port = 3000
	if err := c.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}

	c.Port = 70000
	if err := c.Validate(); err == nil {
		t.Error("Validate() should reject out-of-range ports")
	}

	c.Port = 3000
	c.APIPort = -1
	if err := c.Validate(); err == nil {
		t.Error("Validate() should reject invalid API ports")
	}
}

func TestConfig_URLs(t *testing.T) {
	c := DefaultConfig()
	c.Port = 3000

	if got := c.BaseURL(); got != "http://localhost:3000" {
		t.Errorf("BaseURL() = %q", got)
	}
	if got := c.APIURL(); got != "" {
		t.Errorf("APIURL() without api port = %q, want empty", got)
	}

	c.APIPort = 8080
	if got := c.APIURL(); got != "http://localhost:8080" {
		t.Errorf("APIURL() = %q", got)
	}
}

func TestConfig_IsLocal(t *testing.T) {
	c := DefaultConfig()
	if !c.IsLocal() {
		t.Error("localhost should be local")
	}

	c.Host = "127.0.0.1"
	if !c.IsLocal() {
		t.Error("127.0.0.1 should be local")
	}

	c.Host = "staging.example.com"
	if c.IsLocal() {
		t.Error("remote host reported as local")
	}
}

func TestLoadFromFile_YAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scan.yaml")
	data := `host: localhost
port: 3000
api_port: 8080
safe_mode: false
token: abc123
`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	c, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile() error = %v", err)
	}
	if c.Port != 3000 || c.APIPort != 8080 || c.Token != "abc123" {
		t.Errorf("config = %+v", c)
	}
	if c.SafeMode {
		t.Error("safe_mode: false not honored")
	}
	// Fields absent from the file keep their defaults.
	if c.RequestsPerSecond != 50 {
		t.Errorf("RequestsPerSecond = %v, want default 50", c.RequestsPerSecond)
	}
}

func TestLoadFromFile_JSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scan.json")
	data := `{"host": "localhost", "port": 4000}`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	c, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile() error = %v", err)
	}
	if c.Port != 4000 {
		t.Errorf("Port = %d, want 4000", c.Port)
	}
}

func TestLoadFromFile_Garbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scan.yaml")
	if err := os.WriteFile(path, []byte(":::not config:::"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadFromFile(path); err == nil {
		t.Error("LoadFromFile() should reject unparseable files")
	}
}

func TestConfig_SaveAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scan.yaml")

	c := DefaultConfig()
	c.Port = 3000
	c.Timeout = 5 * time.Second

	if err := c.SaveToFile(path); err != nil {
		t.Fatalf("SaveToFile() error = %v", err)
	}

	loaded, err := LoadFromFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Port != 3000 || loaded.Timeout != 5*time.Second {
		t.Errorf("round-trip mismatch: %+v", loaded)
	}
}
