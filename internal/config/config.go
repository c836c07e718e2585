package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration. Each section maps to a
// fixed struct, so the section registry is resolved at compile time.
type Config struct {
	Store    StoreConfig    `yaml:"store" mapstructure:"store"`
	Browser  BrowserConfig  `yaml:"browser" mapstructure:"browser"`
	Crawl    CrawlConfig    `yaml:"crawl" mapstructure:"crawl"`
	Download DownloadConfig `yaml:"download" mapstructure:"download"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	MaxConns    int32  `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns    int32  `yaml:"min_conns" mapstructure:"min_conns"`
}

// BrowserConfig configures the browsing session handed to the crawler.
type BrowserConfig struct {
	Headless       bool   `yaml:"headless" mapstructure:"headless"`
	UserAgent      string `yaml:"user_agent" mapstructure:"user_agent"`
	Locale         string `yaml:"locale" mapstructure:"locale"`
	Timezone       string `yaml:"timezone" mapstructure:"timezone"`
	ViewportWidth  int    `yaml:"viewport_width" mapstructure:"viewport_width"`
	ViewportHeight int    `yaml:"viewport_height" mapstructure:"viewport_height"`
}

// CrawlConfig configures the four extraction phases.
type CrawlConfig struct {
	BaseURL          string `yaml:"base_url" mapstructure:"base_url"`
	WaitTimeoutSecs  int    `yaml:"wait_timeout_secs" mapstructure:"wait_timeout_secs"`
	EntryTimeoutSecs int    `yaml:"entry_timeout_secs" mapstructure:"entry_timeout_secs"`
	SettleMillis     int    `yaml:"settle_millis" mapstructure:"settle_millis"`
	ReviewLimit      int    `yaml:"review_limit" mapstructure:"review_limit"`
	PhotoMinSize     int    `yaml:"photo_min_size" mapstructure:"photo_min_size"`
	PhotoKeep        int    `yaml:"photo_keep" mapstructure:"photo_keep"`
	MaxScrollStalls  int    `yaml:"max_scroll_stalls" mapstructure:"max_scroll_stalls"`
}

// DownloadConfig configures the image download side effects.
type DownloadConfig struct {
	BlogDir     string  `yaml:"blog_dir" mapstructure:"blog_dir"`
	PhotoDir    string  `yaml:"photo_dir" mapstructure:"photo_dir"`
	BlogSample  int     `yaml:"blog_sample" mapstructure:"blog_sample"`
	TimeoutSecs int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	RatePerSec  float64 `yaml:"rate_per_sec" mapstructure:"rate_per_sec"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Validate checks that the configuration is usable for a crawl run.
func (c *Config) Validate() error {
	var problems []string
	if c.Store.DatabaseURL == "" {
		problems = append(problems, "store.database_url is required")
	}
	if c.Crawl.ReviewLimit < 1 {
		problems = append(problems, "crawl.review_limit must be >= 1")
	}
	if c.Crawl.PhotoKeep < 1 {
		problems = append(problems, "crawl.photo_keep must be >= 1")
	}
	if c.Crawl.PhotoMinSize < 0 {
		problems = append(problems, "crawl.photo_min_size must be >= 0")
	}
	if c.Download.BlogSample < 0 {
		problems = append(problems, "download.blog_sample must be >= 0")
	}
	if len(problems) > 0 {
		return eris.New("config: " + strings.Join(problems, "; "))
	}
	return nil
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("PLACEMETA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.max_conns", 10)
	v.SetDefault("store.min_conns", 2)
	v.SetDefault("browser.headless", true)
	v.SetDefault("browser.user_agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/121.0.0.0 Safari/537.36")
	v.SetDefault("browser.locale", "ko-KR")
	v.SetDefault("browser.timezone", "Asia/Seoul")
	v.SetDefault("browser.viewport_width", 1920)
	v.SetDefault("browser.viewport_height", 1080)
	v.SetDefault("crawl.base_url", "https://map.naver.com/v5/")
	v.SetDefault("crawl.wait_timeout_secs", 5)
	v.SetDefault("crawl.entry_timeout_secs", 10)
	v.SetDefault("crawl.settle_millis", 2000)
	v.SetDefault("crawl.review_limit", 4)
	v.SetDefault("crawl.photo_min_size", 300)
	v.SetDefault("crawl.photo_keep", 3)
	v.SetDefault("crawl.max_scroll_stalls", 3)
	v.SetDefault("download.blog_dir", "BLOG_IMG_DOWNLOAD")
	v.SetDefault("download.photo_dir", "TAB_PHOTO_IMG_DOWNLOAD")
	v.SetDefault("download.blog_sample", 2)
	v.SetDefault("download.timeout_secs", 30)
	v.SetDefault("download.rate_per_sec", 4)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
