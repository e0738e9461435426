package gqlcore

import "testing"

func TestDefaultConfigHasUsableDefaults(t *testing.T) {
	c := DefaultConfig()
	if c.RootKey != "ROOT_QUERY" {
		t.Errorf("DefaultConfig().RootKey = %q, want ROOT_QUERY", c.RootKey)
	}
	if c.BatchInterval <= 0 {
		t.Errorf("DefaultConfig().BatchInterval = %v, want positive", c.BatchInterval)
	}
	if c.Logf == nil {
		t.Error("DefaultConfig().Logf = nil, want a no-op default")
	}
}

func TestValidateRequiresStoreRootKeyAndNetwork(t *testing.T) {
	cases := []struct {
		name string
		cfg  *Config
	}{
		{"missing store", &Config{RootKey: "ROOT_QUERY", NetworkInterface: &fakeNetwork{}}},
		{"missing root key", &Config{Store: &fakeStore{}, NetworkInterface: &fakeNetwork{}}},
		{"missing network", &Config{Store: &fakeStore{}, RootKey: "ROOT_QUERY"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.cfg.Validate(); err == nil {
				t.Errorf("Validate() = nil, want error for %s", tc.name)
			}
		})
	}
}

func TestValidateAcceptsCompleteConfig(t *testing.T) {
	cfg := &Config{Store: &fakeStore{}, RootKey: "ROOT_QUERY", NetworkInterface: &fakeNetwork{}}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() = %v, want nil", err)
	}
}

func TestConfigLogfToleratesNilHook(t *testing.T) {
	cfg := &Config{}
	cfg.logf("message %d", 1) // must not panic
}
