package config

import (
	"testing"

	"github.com/spf13/afero"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name    string
		files   map[string]string
		path    string
		want    func(t *testing.T, cfg Config)
		wantErr bool
	}{
		{
			name: "missing default file",
			want: func(t *testing.T, cfg Config) {
				if cfg.Log.Level != "warn" || cfg.Output != OutputText || !cfg.ShowBanner() {
					t.Errorf("Load() = %+v, want defaults", cfg)
				}
			},
		},
		{
			name:    "missing explicit file",
			path:    "other.yaml",
			wantErr: true,
		},
		{
			name:  "default file",
			files: map[string]string{DefaultPath: "image: disk.img\npartition: 2\n"},
			want: func(t *testing.T, cfg Config) {
				if cfg.Image != "disk.img" || cfg.Partition != 2 {
					t.Errorf("Load() image/partition = %q/%d", cfg.Image, cfg.Partition)
				}
				if cfg.Shell.Prompt != "> " {
					t.Errorf("Load() prompt = %q, want the default", cfg.Shell.Prompt)
				}
			},
		},
		{
			name: "explicit file overrides defaults",
			files: map[string]string{"conf/fatnav.yaml": `
offset: 1048576
max_decompressed_size: 4096
log:
  level: debug
  format: json
shell:
  prompt: "fat> "
  banner: false
output: yaml
`},
			path: "conf/fatnav.yaml",
			want: func(t *testing.T, cfg Config) {
				if cfg.Offset != 1<<20 || cfg.MaxDecompressedSize != 4096 {
					t.Errorf("Load() offset/limit = %d/%d", cfg.Offset, cfg.MaxDecompressedSize)
				}
				if cfg.Log.Level != "debug" || cfg.Log.Format != "json" {
					t.Errorf("Load() log = %+v", cfg.Log)
				}
				if cfg.Shell.Prompt != "fat> " || cfg.ShowBanner() {
					t.Errorf("Load() shell = %q banner %v", cfg.Shell.Prompt, cfg.ShowBanner())
				}
				if cfg.Output != OutputYAML {
					t.Errorf("Load() output = %q", cfg.Output)
				}
			},
		},
		{
			name:  "empty file",
			files: map[string]string{DefaultPath: ""},
			want: func(t *testing.T, cfg Config) {
				if cfg.MaxDecompressedSize != DefaultMaxDecompressedSize {
					t.Errorf("Load() limit = %d", cfg.MaxDecompressedSize)
				}
			},
		},
		{
			name:    "unknown key",
			files:   map[string]string{DefaultPath: "imgae: disk.img\n"},
			wantErr: true,
		},
		{
			name:    "malformed yaml",
			files:   map[string]string{DefaultPath: "image: [\n"},
			wantErr: true,
		},
		{
			name:    "invalid value",
			files:   map[string]string{DefaultPath: "output: xml\n"},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := afero.NewMemMapFs()
			for name, content := range tt.files {
				if err := afero.WriteFile(fs, name, []byte(content), 0o644); err != nil {
					t.Fatal(err)
				}
			}

			cfg, err := Load(fs, tt.path)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Load() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil {
				tt.want(t, cfg)
			}
		})
	}
}

func TestConfig_Merge(t *testing.T) {
	off := false
	cfg := Config{Image: "a.img", Shell: ShellConfig{Banner: &off}}.Merge(DefaultConfig())

	if cfg.Image != "a.img" {
		t.Errorf("Merge() image = %q", cfg.Image)
	}
	if cfg.ShowBanner() {
		t.Errorf("Merge() replaced an explicit banner setting")
	}
	if cfg.Log.Format != "console" || cfg.Shell.Prompt != "> " {
		t.Errorf("Merge() did not fill defaults: %+v", cfg)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(c *Config)
		wantErr bool
	}{
		{name: "defaults", modify: func(c *Config) {}},
		{name: "negative partition", modify: func(c *Config) { c.Partition = -1 }, wantErr: true},
		{name: "negative offset", modify: func(c *Config) { c.Offset = -512 }, wantErr: true},
		{name: "zero limit", modify: func(c *Config) { c.MaxDecompressedSize = 0 }, wantErr: true},
		{name: "bad level", modify: func(c *Config) { c.Log.Level = "verbose" }, wantErr: true},
		{name: "bad format", modify: func(c *Config) { c.Log.Format = "logfmt" }, wantErr: true},
		{name: "json output", modify: func(c *Config) { c.Output = OutputJSON }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(&cfg)
			if err := cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Config.Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
