package topology

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const exampleTOML = `
port = 8888

[meta_server]
connect_timeout_ms = 500
write_timeout_ms = 200
read_timeout_ms = 200

[[meta_server.sharding]]
index = 0
[[meta_server.sharding.server]]
ip = "10.0.0.1"
port = 9000
[[meta_server.sharding.server]]
ip = "10.0.0.2"
port = 9000

[store_server]
connect_timeout_ms = 1000
write_timeout_ms = 300
read_timeout_ms = 400

[[store_server.sharding]]
index = 1
[[store_server.sharding.server]]
ip = "10.0.1.2"
port = 9100

[[store_server.sharding]]
index = 0
[[store_server.sharding.server]]
ip = "10.0.1.1"
port = 9100
`

func TestParseExampleTopology(t *testing.T) {
	cfg, err := LoadReader(strings.NewReader(exampleTOML), "toml")
	if err != nil {
		t.Fatalf("LoadReader failed: %v", err)
	}

	if cfg.Port != 8888 {
		t.Errorf("Expected port 8888, got %d", cfg.Port)
	}

	// metadata pool
	if len(cfg.MetaShards) != 1 {
		t.Fatalf("Expected 1 meta shard, got %d", len(cfg.MetaShards))
	}
	expectedMeta := []Endpoint{{Host: "10.0.0.1", Port: 9000}, {Host: "10.0.0.2", Port: 9000}}
	if got := cfg.MetaShards[0].Endpoints(); !equalEndpoints(got, expectedMeta) {
		t.Errorf("Expected meta endpoints %v, got %v", expectedMeta, got)
	}
	expectedMetaOpts := ClientOptions{ConnectTimeout: 500 * time.Millisecond, WriteTimeout: 200 * time.Millisecond, ReadTimeout: 200 * time.Millisecond}
	if cfg.MetaOptions != expectedMetaOpts {
		t.Errorf("Expected meta options %v, got %v", expectedMetaOpts, cfg.MetaOptions)
	}

	// store pool
	if len(cfg.StoreShards) != 2 {
		t.Fatalf("Expected 2 store shards, got %d", len(cfg.StoreShards))
	}
	for index, host := range map[ShardIndex]string{0: "10.0.1.1", 1: "10.0.1.2"} {
		shard, ok := cfg.StoreShards[index]
		if !ok {
			t.Errorf("Store shard %d missing", index)
			continue
		}
		if shard.Index() != index {
			t.Errorf("Store shard stored under %d reports index %d", index, shard.Index())
		}
		expected := []Endpoint{{Host: host, Port: 9100}}
		if got := shard.Endpoints(); !equalEndpoints(got, expected) {
			t.Errorf("Store shard %d: expected %v, got %v", index, expected, got)
		}
	}
	expectedStoreOpts := ClientOptions{ConnectTimeout: time.Second, WriteTimeout: 300 * time.Millisecond, ReadTimeout: 400 * time.Millisecond}
	if cfg.StoreOptions != expectedStoreOpts {
		t.Errorf("Expected store options %v, got %v", expectedStoreOpts, cfg.StoreOptions)
	}

	if indices := cfg.StoreIndices(); len(indices) != 2 || indices[0] != 0 || indices[1] != 1 {
		t.Errorf("Expected sorted store indices [0 1], got %v", indices)
	}
}

func TestParseOtherFormats(t *testing.T) {
	yamlConfig := `
port: 8888
meta_server:
  connect_timeout_ms: 500
  write_timeout_ms: 200
  read_timeout_ms: 200
  sharding:
    - index: 0
      server:
        - ip: 10.0.0.1
          port: 9000
store_server:
  connect_timeout_ms: 0
  write_timeout_ms: 0
  read_timeout_ms: 0
  sharding:
    - index: 5
      server:
        - ip: 10.0.1.1
          port: 9100
`
	jsonConfig := `{
  "port": 8888,
  "meta_server": {
    "connect_timeout_ms": 500, "write_timeout_ms": 200, "read_timeout_ms": 200,
    "sharding": [{"index": 0, "server": [{"ip": "10.0.0.1", "port": 9000}]}]
  },
  "store_server": {
    "connect_timeout_ms": 0, "write_timeout_ms": 0, "read_timeout_ms": 0,
    "sharding": [{"index": 5, "server": [{"ip": "10.0.1.1", "port": 9100}]}]
  }
}`

	for _, tc := range []struct {
		format string
		input  string
	}{
		{"yaml", yamlConfig},
		{"json", jsonConfig},
	} {
		t.Run(tc.format, func(t *testing.T) {
			cfg, err := LoadReader(strings.NewReader(tc.input), tc.format)
			if err != nil {
				t.Fatalf("LoadReader failed: %v", err)
			}
			if cfg.Port != 8888 || len(cfg.MetaShards) != 1 {
				t.Errorf("Unexpected topology: %s", cfg)
			}
			shard, ok := cfg.StoreShards[5]
			if !ok {
				t.Fatalf("Store shard 5 missing")
			}
			if got := shard.Endpoints(); len(got) != 1 || got[0] != (Endpoint{Host: "10.0.1.1", Port: 9100}) {
				t.Errorf("Unexpected store endpoints %v", got)
			}
			if cfg.StoreOptions != (ClientOptions{}) {
				t.Errorf("Expected zero store options, got %v", cfg.StoreOptions)
			}
			if cfg.MetaOptions.ConnectTimeout != 500*time.Millisecond {
				t.Errorf("Expected meta connect timeout 500ms, got %s", cfg.MetaOptions.ConnectTimeout)
			}
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "proxy.toml")
	if err := os.WriteFile(path, []byte(exampleTOML), 0o600); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(cfg.StoreShards) != 2 {
		t.Errorf("Expected 2 store shards, got %d", len(cfg.StoreShards))
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Error("Expected error for missing file")
	}
}

func TestDuplicateStoreIndex(t *testing.T) {
	// both store shards declare index 3
	input := strings.NewReplacer(
		"[[store_server.sharding]]\nindex = 0", "[[store_server.sharding]]\nindex = 3",
		"[[store_server.sharding]]\nindex = 1", "[[store_server.sharding]]\nindex = 3",
	).Replace(exampleTOML)

	_, err := LoadReader(strings.NewReader(input), "toml")

	var dupErr *DuplicateShardIndexError
	if !errors.As(err, &dupErr) {
		t.Fatalf("Expected *DuplicateShardIndexError, got %v", err)
	}
	if dupErr.Pool != PoolStore || dupErr.Index != 3 || dupErr.First != 0 || dupErr.Second != 1 {
		t.Errorf("Unexpected duplicate error %+v", dupErr)
	}
}

// The metadata pool is addressed by position, so duplicate indices are accepted
// there while the same declaration is rejected for the store pool.
func TestDuplicateMetaIndexIsTolerated(t *testing.T) {
	input := strings.Replace(exampleTOML, `[store_server]`, `[[meta_server.sharding]]
index = 0
[[meta_server.sharding.server]]
ip = "10.0.0.3"
port = 9000

[store_server]`, 1)

	cfg, err := LoadReader(strings.NewReader(input), "toml")
	if err != nil {
		t.Fatalf("Duplicate meta index should be accepted, got %v", err)
	}
	if len(cfg.MetaShards) != 2 {
		t.Fatalf("Expected 2 meta shards, got %d", len(cfg.MetaShards))
	}
	if cfg.MetaShards[0].Index() != 0 || cfg.MetaShards[1].Index() != 0 {
		t.Errorf("Expected both meta shards to keep index 0")
	}
	if host := cfg.MetaShards[1].Endpoints()[0].Host; host != "10.0.0.3" {
		t.Errorf("Expected declaration order to be kept, second shard has host %s", host)
	}
}

func TestMalformedConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(string) string
		field  string
	}{
		{
			name:   "missing proxy port",
			mutate: func(s string) string { return strings.Replace(s, "port = 8888\n", "", 1) },
			field:  "port",
		},
		{
			name:   "missing meta pool",
			mutate: func(s string) string { return strings.Split(s, "[meta_server]")[0] + "[store_server]" + strings.Split(s, "[store_server]")[1] },
			field:  "meta_server",
		},
		{
			name:   "string timeout",
			mutate: func(s string) string { return strings.Replace(s, "read_timeout_ms = 400", `read_timeout_ms = "400"`, 1) },
			field:  "store_server.read_timeout_ms",
		},
		{
			name:   "fractional timeout",
			mutate: func(s string) string { return strings.Replace(s, "write_timeout_ms = 300", "write_timeout_ms = 1.5", 1) },
			field:  "store_server.write_timeout_ms",
		},
		{
			name:   "whole float timeout",
			mutate: func(s string) string { return strings.Replace(s, "connect_timeout_ms = 500", "connect_timeout_ms = 500.0", 1) },
			field:  "meta_server.connect_timeout_ms",
		},
		{
			name:   "whole float index",
			mutate: func(s string) string { return strings.Replace(s, "index = 1", "index = 1.0", 1) },
			field:  "store_server.sharding[0].index",
		},
		{
			name:   "whole float endpoint port",
			mutate: func(s string) string { return strings.Replace(s, "port = 9000", "port = 9000.0", 1) },
			field:  "meta_server.sharding[0].server[0].port",
		},
		{
			name:   "negative timeout",
			mutate: func(s string) string { return strings.Replace(s, "connect_timeout_ms = 500", "connect_timeout_ms = -1", 1) },
			field:  "meta_server.connect_timeout_ms",
		},
		{
			name:   "missing timeout",
			mutate: func(s string) string { return strings.Replace(s, "read_timeout_ms = 200\n", "", 1) },
			field:  "meta_server.read_timeout_ms",
		},
		{
			name:   "negative index",
			mutate: func(s string) string { return strings.Replace(s, "index = 1", "index = -1", 1) },
			field:  "store_server.sharding[0].index",
		},
		{
			name:   "missing ip",
			mutate: func(s string) string { return strings.Replace(s, `ip = "10.0.1.1"`, "", 1) },
			field:  "store_server.sharding[1].server[0].ip",
		},
		{
			name:   "empty ip",
			mutate: func(s string) string { return strings.Replace(s, `ip = "10.0.0.2"`, `ip = ""`, 1) },
			field:  "meta_server.sharding[0].server[1].ip",
		},
		{
			name:   "endpoint port out of range",
			mutate: func(s string) string { return strings.Replace(s, "port = 9100", "port = 70000", 1) },
			field:  "store_server.sharding[0].server[0].port",
		},
		{
			name:   "endpoint port zero",
			mutate: func(s string) string { return strings.Replace(s, "port = 9000", "port = 0", 1) },
			field:  "meta_server.sharding[0].server[0].port",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := LoadReader(strings.NewReader(tc.mutate(exampleTOML)), "toml")

			var malformedErr *MalformedConfigError
			if !errors.As(err, &malformedErr) {
				t.Fatalf("Expected *MalformedConfigError, got %v", err)
			}
			if malformedErr.Field != tc.field {
				t.Errorf("Expected field %q, got %q (%s)", tc.field, malformedErr.Field, malformedErr.Reason)
			}
		})
	}
}

func TestWholeFloatsOnlyInJSON(t *testing.T) {
	yamlConfig := `
port: 8888
meta_server:
  connect_timeout_ms: 0
  write_timeout_ms: 0
  read_timeout_ms: 0
  sharding:
    - index: 0
      server:
        - ip: 10.0.0.1
          port: 9000
store_server:
  connect_timeout_ms: 0
  write_timeout_ms: 0
  read_timeout_ms: 0
  sharding:
    - index: 5.0
      server:
        - ip: 10.0.1.1
          port: 9100
`
	_, err := LoadReader(strings.NewReader(yamlConfig), "yaml")
	var malformedErr *MalformedConfigError
	if !errors.As(err, &malformedErr) {
		t.Fatalf("Expected *MalformedConfigError for yaml float index, got %v", err)
	}
	if malformedErr.Field != "store_server.sharding[0].index" {
		t.Errorf("Expected field store_server.sharding[0].index, got %q", malformedErr.Field)
	}

	jsonConfig := `{
  "port": 8888.0,
  "meta_server": {
    "connect_timeout_ms": 500.0, "write_timeout_ms": 0, "read_timeout_ms": 0,
    "sharding": [{"index": 0, "server": [{"ip": "10.0.0.1", "port": 9000.0}]}]
  },
  "store_server": {
    "connect_timeout_ms": 0, "write_timeout_ms": 0, "read_timeout_ms": 0,
    "sharding": [{"index": 5.0, "server": [{"ip": "10.0.1.1", "port": 9100}]}]
  }
}`
	cfg, err := LoadReader(strings.NewReader(jsonConfig), "json")
	if err != nil {
		t.Fatalf("Expected whole json numbers to be accepted, got %v", err)
	}
	if _, ok := cfg.StoreShards[5]; !ok {
		t.Errorf("Store shard 5 missing")
	}
	if cfg.MetaOptions.ConnectTimeout != 500*time.Millisecond {
		t.Errorf("Expected meta connect timeout 500ms, got %s", cfg.MetaOptions.ConnectTimeout)
	}

	_, err = LoadReader(strings.NewReader(strings.Replace(jsonConfig, `"index": 5.0`, `"index": 5.5`, 1)), "json")
	if !errors.As(err, &malformedErr) {
		t.Errorf("Expected *MalformedConfigError for fractional json index, got %v", err)
	}
}

func TestEmptyEndpointList(t *testing.T) {
	input := `{
  "port": 8888,
  "meta_server": {
    "connect_timeout_ms": 0, "write_timeout_ms": 0, "read_timeout_ms": 0,
    "sharding": [{"index": 0, "server": [{"ip": "10.0.0.1", "port": 9000}]}]
  },
  "store_server": {
    "connect_timeout_ms": 0, "write_timeout_ms": 0, "read_timeout_ms": 0,
    "sharding": [{"index": 0, "server": []}]
  }
}`

	_, err := LoadReader(strings.NewReader(input), "json")

	var malformedErr *MalformedConfigError
	if !errors.As(err, &malformedErr) {
		t.Fatalf("Expected *MalformedConfigError, got %v", err)
	}
	if malformedErr.Field != "store_server.sharding[0].server" {
		t.Errorf("Unexpected field %q", malformedErr.Field)
	}
}

func TestEmptyShardingList(t *testing.T) {
	input := `{
  "port": 8888,
  "meta_server": {
    "connect_timeout_ms": 0, "write_timeout_ms": 0, "read_timeout_ms": 0,
    "sharding": []
  },
  "store_server": {
    "connect_timeout_ms": 0, "write_timeout_ms": 0, "read_timeout_ms": 0,
    "sharding": [{"index": 0, "server": [{"ip": "10.0.1.1", "port": 9100}]}]
  }
}`

	_, err := LoadReader(strings.NewReader(input), "json")

	var malformedErr *MalformedConfigError
	if !errors.As(err, &malformedErr) || malformedErr.Field != "meta_server.sharding" {
		t.Fatalf("Expected malformed meta_server.sharding, got %v", err)
	}
}

func TestTopologyString(t *testing.T) {
	cfg, err := LoadReader(strings.NewReader(exampleTOML), "toml")
	if err != nil {
		t.Fatalf("LoadReader failed: %v", err)
	}

	out := cfg.String()
	for _, want := range []string{"META SERVER", "STORE SERVER", "10.0.0.1:9000, 10.0.0.2:9000", "500ms"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected %q in output:\n%s", want, out)
		}
	}
	if strings.Index(out, "10.0.1.1:9100") > strings.Index(out, "10.0.1.2:9100") {
		t.Errorf("Expected store shards in index order:\n%s", out)
	}
}

func equalEndpoints(a, b []Endpoint) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
