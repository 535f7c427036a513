package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/jinzhu/copier"
	"gopkg.in/yaml.v3"
)

const (
	EnvAPIKey       = "Z_AI_API_KEY"
	EnvBaseURL      = "ZAIKIT_BASE_URL"
	EnvBraveAPIKey  = "BRAVE_API_KEY"
	EnvOTLPEndpoint = "OTEL_EXPORTER_OTLP_ENDPOINT"
)

type APIConfig struct {
	ApiKey           string        `yaml:"api_key"`
	BaseURL          string        `yaml:"base_url"`
	CodingBaseURL    string        `yaml:"coding_base_url"`
	AnthropicBaseURL string        `yaml:"anthropic_base_url"`
	Compatibility    string        `yaml:"compatibility"`
	Timeout          time.Duration `yaml:"timeout"`
}

type ModelsConfig struct {
	LLM      string `yaml:"llm"`
	LLMFlash string `yaml:"llm_flash"`
	LLMAir   string `yaml:"llm_air"`
	VLM      string `yaml:"vlm"`
	VLMFlash string `yaml:"vlm_flash"`
	ImageGen string `yaml:"image_gen"`
	VideoGen string `yaml:"video_gen"`
	AudioASR string `yaml:"audio_asr"`
}

// DefaultsConfig holds sampling and token defaults. Set either temperature
// or top_p on a request, not both.
type DefaultsConfig struct {
	Temperature   float64 `yaml:"temperature"`
	TopP          float64 `yaml:"top_p"`
	MaxTokens     int64   `yaml:"max_tokens"`
	MaxTokensLong int64   `yaml:"max_tokens_long"`
	MaxTokensMax  int64   `yaml:"max_tokens_max"`
	ContextWindow int     `yaml:"context_window"`
	ToolStream    *bool   `yaml:"tool_stream"`
}

type VideoConfig struct {
	PollInterval time.Duration `yaml:"poll_interval"`
	MaxWait      time.Duration `yaml:"max_wait"`
	Quality      string        `yaml:"quality"`
	Size         string        `yaml:"size"`
	FPS          int           `yaml:"fps"`
	WithAudio    *bool         `yaml:"with_audio"`
}

type SearchConfig struct {
	Backend     string `yaml:"backend"`
	Engine      string `yaml:"engine"`
	BraveApiKey string `yaml:"brave_api_key"`
}

type SamplesConfig struct {
	Images     []string `yaml:"images"`
	Video      string   `yaml:"video"`
	FirstFrame string   `yaml:"first_frame"`
	LastFrame  string   `yaml:"last_frame"`
}

type PromptsConfig struct {
	Chat      string `yaml:"chat"`
	Coding    string `yaml:"coding"`
	ImageGen  string `yaml:"image_gen"`
	VideoGen  string `yaml:"video_gen"`
	Vision    string `yaml:"vision"`
	Detection string `yaml:"detection"`
}

// EndpointsConfig holds paths relative to api.base_url.
type EndpointsConfig struct {
	Chat        string `yaml:"chat"`
	Images      string `yaml:"images"`
	Videos      string `yaml:"videos"`
	AsyncResult string `yaml:"async_result"`
	Audio       string `yaml:"audio"`
	WebSearch   string `yaml:"web_search"`
}

type TraceConfig struct {
	Endpoint string `yaml:"endpoint"`
	URLPath  string `yaml:"url_path"`
	ApiKey   string `yaml:"api_key"`
}

// The configuration for zaikit.
type Config struct {
	API       APIConfig       `yaml:"api"`
	Models    ModelsConfig    `yaml:"models"`
	Defaults  DefaultsConfig  `yaml:"defaults"`
	Video     VideoConfig     `yaml:"video"`
	Search    SearchConfig    `yaml:"search"`
	Samples   SamplesConfig   `yaml:"samples"`
	Prompts   PromptsConfig   `yaml:"prompts"`
	Endpoints EndpointsConfig `yaml:"endpoints"`
	Trace     TraceConfig     `yaml:"trace"`
}

func (c *Config) ToolStream() bool {
	return c.Defaults.ToolStream == nil || *c.Defaults.ToolStream
}

func (c *Config) VideoWithAudio() bool {
	return c.Video.WithAudio == nil || *c.Video.WithAudio
}

func boolPtr(b bool) *bool { return &b }

func BootstrapConfig() Config {
	return Config{
		API: APIConfig{
			BaseURL:          "https://api.z.ai/api/paas/v4/",
			CodingBaseURL:    "https://api.z.ai/api/coding/paas/v4",
			AnthropicBaseURL: "https://api.z.ai/api/anthropic",
			Compatibility:    "openai",
			Timeout:          120 * time.Second,
		},
		Models: ModelsConfig{
			LLM:      "glm-4.7",
			LLMFlash: "glm-4.5-flash",
			LLMAir:   "glm-4.5-air",
			VLM:      "glm-4.6v",
			VLMFlash: "glm-4.6v-flash",
			ImageGen: "cogView-4-250304",
			VideoGen: "cogvideox-3",
			AudioASR: "glm-asr-2512",
		},
		Defaults: DefaultsConfig{
			Temperature:   1.0,
			TopP:          0.95,
			MaxTokens:     4096,
			MaxTokensLong: 8192,
			MaxTokensMax:  128000,
			ContextWindow: 200000,
			ToolStream:    boolPtr(true),
		},
		Video: VideoConfig{
			PollInterval: 10 * time.Second,
			MaxWait:      300 * time.Second,
			Quality:      "quality",
			Size:         "1920x1080",
			FPS:          30,
			WithAudio:    boolPtr(true),
		},
		Search: SearchConfig{
			Backend: "zai",
			Engine:  "search-prime",
		},
		Samples: SamplesConfig{
			Images: []string{
				"https://aigc-files.bigmodel.cn/api/cogview/20250723213827da171a419b9b4906_0.png",
				"https://cloudcovert-1305175928.cos.ap-guangzhou.myqcloud.com/%E5%9B%BE%E7%89%87grounding.PNG",
			},
			Video:      "https://cloud.video.taobao.com/play/u/null/p/1/e/6/t/1/d/ud/50782830612.mp4",
			FirstFrame: "https://gd-hbimg.huaban.com/ccee58d77afe8f5e17a572246b1994f7e027657fe9e6-qD66In_fw1200webp",
			LastFrame:  "https://gd-hbimg.huaban.com/cc2601d568a72d18d90b2cc7f1065b16b2d693f7fa3f7-hDAwNq_fw1200webp",
		},
		Prompts: PromptsConfig{
			Chat:      "Explain quantum computing in simple terms, as if teaching a curious teenager.",
			Coding:    "Write a Python function that checks if a number is prime.",
			ImageGen:  "A serene Japanese garden at sunset with cherry blossoms, a wooden bridge over a koi pond, and Mount Fuji in the background. Photorealistic, 8K quality.",
			VideoGen:  "A butterfly gently lands on a vibrant sunflower, its wings slowly opening and closing in the warm summer breeze.",
			Vision:    "Describe this image in detail, including any text, objects, and their spatial relationships.",
			Detection: "Identify all objects in this image and return their bounding boxes in JSON format.",
		},
		Endpoints: EndpointsConfig{
			Chat:        "chat/completions",
			Images:      "images/generations",
			Videos:      "videos/generations",
			AsyncResult: "async-result",
			Audio:       "audio/transcriptions",
			WebSearch:   "web_search",
		},
	}
}

// LoadConfig reads the yaml file at path (the workspace config when path
// is empty) and overlays it onto the bootstrap defaults. A missing file is
// not an error. Environment variables win over the file.
func LoadConfig(path string) (c Config, err error) {
	c = BootstrapConfig()
	if path == "" {
		path, err = GetWorkspaceConfigPath()
		if err != nil {
			err = fmt.Errorf("failed to get config path: %w", err)
			return
		}
	}

	content, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		err = nil
	case err != nil:
		err = fmt.Errorf("failed to read config file: %w", err)
		return
	default:
		if err = overlay(&c, content); err != nil {
			return
		}
	}

	applyEnv(&c)
	return
}

func overlay(c *Config, content []byte) error {
	var file Config
	if err := yaml.Unmarshal(content, &file); err != nil {
		return fmt.Errorf("failed to unmarshal config file: %w", err)
	}

	if err := copier.CopyWithOption(c, &file, copier.Option{IgnoreEmpty: true, DeepCopy: true}); err != nil {
		return fmt.Errorf("failed to merge config: %w", err)
	}
	// lists replace, never merge element wise
	if len(file.Samples.Images) > 0 {
		c.Samples.Images = file.Samples.Images
	}
	return nil
}

func applyEnv(c *Config) {
	if v := os.Getenv(EnvAPIKey); v != "" {
		c.API.ApiKey = v
	}
	if v := os.Getenv(EnvBaseURL); v != "" {
		c.API.BaseURL = v
	}
	if v := os.Getenv(EnvBraveAPIKey); v != "" {
		c.Search.BraveApiKey = v
	}
	if v := os.Getenv(EnvOTLPEndpoint); v != "" {
		c.Trace.Endpoint = v
	}
}

// Validate reports settings every command needs.
func (c *Config) Validate() error {
	if c.API.ApiKey == "" {
		return fmt.Errorf("%s not set: export it or run `zaikit onboard`", EnvAPIKey)
	}
	if c.Video.PollInterval <= 0 {
		return fmt.Errorf("video.poll_interval must be positive")
	}
	return nil
}

// Save writes c as yaml.
func Save(c Config, path string) error {
	output, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, output, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}
