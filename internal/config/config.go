package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server struct {
		Port string
	}
	Database struct {
		URL string
	}
	Redis struct {
		URL string
	}
	Brave struct {
		APIKey  string
		BaseURL string
	}
	Pipeline struct {
		WebRequestTimeout time.Duration
		MaxContentURLs    int
		MaxParagraphs     int
	}
}

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()

	var config Config

	// Set defaults
	viper.SetDefault("server.port", "8080")
	viper.SetDefault("database.url", "data/qa_cache.db")
	viper.SetDefault("redis.url", "")
	viper.SetDefault("brave.base_url", "https://api.search.brave.com/res/v1/web/search")
	viper.SetDefault("pipeline.web_request_timeout", "10s")
	viper.SetDefault("pipeline.max_content_urls", 3)
	viper.SetDefault("pipeline.max_paragraphs", 5)

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	config.Server.Port = viper.GetString("server.port")
	config.Database.URL = viper.GetString("database.url")
	config.Redis.URL = viper.GetString("redis.url")
	config.Brave.BaseURL = viper.GetString("brave.base_url")
	config.Brave.APIKey = os.Getenv("BRAVE_SEARCH_API_KEY")
	config.Pipeline.WebRequestTimeout = viper.GetDuration("pipeline.web_request_timeout")
	config.Pipeline.MaxContentURLs = viper.GetInt("pipeline.max_content_urls")
	config.Pipeline.MaxParagraphs = viper.GetInt("pipeline.max_paragraphs")

	return &config, nil
}

func (c *Config) ValidateBrave() error {
	if c.Brave.APIKey == "" {
		return fmt.Errorf("BRAVE_SEARCH_API_KEY is required")
	}
	if c.Brave.BaseURL == "" {
		return fmt.Errorf("brave.base_url is required")
	}
	return nil
}
