package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

type Config struct {
	// MediaRoot is the absolute directory to index.
	MediaRoot string `yaml:"media_root"`

	// IndexFile is where the JSON index snapshot is persisted.
	IndexFile string `yaml:"index_file"`

	// CacheRoot is the directory under which derivative artifacts
	// (resized images, video thumbnails, HLS playlists/segments) are
	// written.
	CacheRoot string `yaml:"cache_root"`

	// QueueDBFile is where the media-processing queue's job ledger is
	// persisted.
	QueueDBFile string `yaml:"queue_db_file"`

	// Watch enables the live filesystem watcher after the initial scan.
	Watch bool `yaml:"watch"`

	// AwaitWriteFinish enables write-stabilization before a watcher
	// add/change event is processed.
	AwaitWriteFinish bool `yaml:"await_write_finish"`

	// CORSOrigin and CORSAllowCredentials configure the transport
	// adapter's CORS headers.
	CORSOrigin           string `yaml:"cors_origin"`
	CORSAllowCredentials bool   `yaml:"cors_allow_credentials"`

	// UploadPrefix is the path prefix for static uploads. It is read
	// from the config file but no handler serves files under it.
	UploadPrefix string `yaml:"upload_prefix"`

	// FFprobePath is the path to the ffprobe binary (default "ffprobe").
	FFprobePath string `yaml:"ffprobe_path"`

	// FFmpegPath is the path to the ffmpeg binary (default "ffmpeg"),
	// used by the derivative cache for thumbnails and HLS transcodes.
	FFmpegPath string `yaml:"ffmpeg_path"`

	// ProcessingWorkers bounds the indexer's metadata-extraction
	// parallelism (default 20).
	ProcessingWorkers int `yaml:"processing_workers"`

	// QueueWorkers bounds the derivative processing queue's concurrency
	// (default 2).
	QueueWorkers int `yaml:"queue_workers"`

	// CacheMaxBytes caps the on-disk size of the derivative cache; the
	// least-recently-used entries are evicted once it is exceeded. Zero
	// means unbounded.
	CacheMaxBytes int64 `yaml:"cache_max_bytes"`

	// LogLevel controls logging verbosity: debug, info, warn, error
	// (default: info).
	LogLevel string `yaml:"log_level"`
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		MediaRoot:         "/media",
		IndexFile:         "/config/index.json",
		CacheRoot:         "/config/cache",
		QueueDBFile:       "/config/queue.db",
		Watch:             true,
		AwaitWriteFinish:  true,
		UploadPrefix:      "/uploads",
		FFprobePath:       "ffprobe",
		FFmpegPath:        "ffmpeg",
		ProcessingWorkers: 20,
		QueueWorkers:      2,
		CacheMaxBytes:     0,
		LogLevel:          "info",
	}
}

// Load reads config from a YAML file, applying defaults for missing
// values. If the file does not exist, a default config is written and
// returned.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			if saveErr := cfg.Save(path); saveErr != nil {
				fmt.Printf("Warning: Could not create config file: %v\n", saveErr)
			}
			return cfg, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	if cfg.FFprobePath == "" {
		cfg.FFprobePath = "ffprobe"
	}
	if cfg.FFmpegPath == "" {
		cfg.FFmpegPath = "ffmpeg"
	}
	if cfg.ProcessingWorkers < 1 {
		cfg.ProcessingWorkers = 20
	}
	if cfg.QueueWorkers < 1 {
		cfg.QueueWorkers = 2
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}

	return cfg, nil
}

// Save writes the config to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}
