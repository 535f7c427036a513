package config

import (
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfigMissingFile(t *testing.T) {
	t.Setenv(EnvAPIKey, "")
	t.Setenv(EnvBaseURL, "")

	c, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	want := BootstrapConfig()
	if c.Models.LLM != want.Models.LLM || c.Video.MaxWait != 300*time.Second || c.API.BaseURL != want.API.BaseURL {
		t.Fatalf("got %+v", c)
	}
}

func TestLoadConfigOverlay(t *testing.T) {
	t.Setenv(EnvAPIKey, "")
	t.Setenv(EnvBaseURL, "")

	path := writeConfig(t, `
api:
  api_key: file-key
models:
  llm: glm-4.5-air
video:
  poll_interval: 2s
  with_audio: false
samples:
  images: ["https://example.com/a.png"]
`)
	c, err := LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		got  any
		want any
	}{
		{"api key", c.API.ApiKey, "file-key"},
		{"llm overridden", c.Models.LLM, "glm-4.5-air"},
		{"vlm kept", c.Models.VLM, "glm-4.6v"},
		{"poll interval", c.Video.PollInterval, 2 * time.Second},
		{"max wait kept", c.Video.MaxWait, 300 * time.Second},
		{"with audio disabled", c.VideoWithAudio(), false},
		{"tool stream default", c.ToolStream(), true},
		{"images replaced", len(c.Samples.Images), 1},
		{"prompt kept", c.Prompts.Coding, BootstrapConfig().Prompts.Coding},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %v, want %v", tt.got, tt.want)
			}
		})
	}
}

func TestLoadConfigEnvWins(t *testing.T) {
	t.Setenv(EnvAPIKey, "env-key")
	t.Setenv(EnvBaseURL, "http://localhost:9999/")
	t.Setenv(EnvBraveAPIKey, "brave")

	c, err := LoadConfig(writeConfig(t, "api:\n  api_key: file-key\n"))
	if err != nil {
		t.Fatal(err)
	}
	if c.API.ApiKey != "env-key" || c.API.BaseURL != "http://localhost:9999/" || c.Search.BraveApiKey != "brave" {
		t.Fatalf("got %+v", c.API)
	}
}

func TestLoadConfigInvalidYAML(t *testing.T) {
	if _, err := LoadConfig(writeConfig(t, "api: [")); err == nil {
		t.Fatal("want error")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	t.Setenv(EnvAPIKey, "")
	t.Setenv(EnvBaseURL, "")

	path := filepath.Join(t.TempDir(), "config.yaml")
	c := BootstrapConfig()
	c.API.ApiKey = "saved"
	if err := Save(c, path); err != nil {
		t.Fatal(err)
	}
	got, err := LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if got.API.ApiKey != "saved" || got.Video.PollInterval != 10*time.Second {
		t.Fatalf("got %+v", got)
	}
}

func TestValidate(t *testing.T) {
	c := BootstrapConfig()
	if err := c.Validate(); err == nil {
		t.Error("want missing key error")
	}
	c.API.ApiKey = "k"
	if err := c.Validate(); err != nil {
		t.Error(err)
	}
}

func TestRecordedJobs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ws", "jobs.txt")

	ids, err := RecordedJobs(path)
	if err != nil || ids != nil {
		t.Fatalf("missing file = %v, %v", ids, err)
	}

	for _, id := range []string{"a", "b", "a"} {
		if err := RecordJob(path, id); err != nil {
			t.Fatal(err)
		}
	}
	ids, err = RecordedJobs(path)
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(ids, []string{"a", "b"}) {
		t.Errorf("ids = %v", ids)
	}
}
