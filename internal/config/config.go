package config

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Config holds application level configuration aggregated from env/config files.
type Config struct {
	Server struct {
		Addr string
	}
	Database struct {
		Path string
	}
	Swarm struct {
		DataDir             string
		ReadyTimeoutSeconds int
		ListingTimeoutSecs  int
		ProbeTimeoutSecs    int
	}
	Metadata struct {
		BaseURL        string
		UserAgent      string
		TimeoutSeconds int
	}
	CoverArt struct {
		BaseURL        string
		TimeoutSeconds int
	}
	Indexer struct {
		BaseURL        string
		APIKey         string
		TimeoutSeconds int
	}
	Resolver struct {
		TimeoutSeconds int
	}
	Ranking struct {
		SizePenaltyMB int
	}
	Preload struct {
		TopN            int
		CacheTTLMinutes int
	}
	Jobs struct {
		RetentionMinutes int
	}
	SearchCache struct {
		TTLMinutes int
	}
	Export struct {
		Bucket    string
		KeyPrefix string
		Region    string
		Endpoint  string
	}
	AWS struct {
		Profile string
	}
}

// Load reads configuration from environment variables and optional config files.
func Load() (Config, error) {
	loadDotEnv()

	v := viper.New()
	v.SetEnvPrefix("TUNESTREAM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("server.addr", "0.0.0.0:8080")
	v.SetDefault("database.path", "data/tunestream.db")
	v.SetDefault("swarm.datadir", "data/swarm")
	v.SetDefault("swarm.readytimeoutseconds", 45)
	v.SetDefault("swarm.listingtimeoutsecs", 30)
	v.SetDefault("swarm.probetimeoutsecs", 5)
	v.SetDefault("metadata.baseurl", "https://musicbrainz.org/ws/2")
	v.SetDefault("metadata.useragent", "tunestream/1.0")
	v.SetDefault("metadata.timeoutseconds", 15)
	v.SetDefault("coverart.baseurl", "https://coverartarchive.org")
	v.SetDefault("coverart.timeoutseconds", 15)
	v.SetDefault("indexer.baseurl", "http://localhost:9117")
	v.SetDefault("indexer.apikey", "")
	v.SetDefault("indexer.timeoutseconds", 15)
	v.SetDefault("resolver.timeoutseconds", 10)
	v.SetDefault("ranking.sizepenaltymb", 500)
	v.SetDefault("preload.topn", 20)
	v.SetDefault("preload.cachettlminutes", 360)
	v.SetDefault("jobs.retentionminutes", 5)
	v.SetDefault("searchcache.ttlminutes", 60)
	v.SetDefault("export.bucket", "")
	v.SetDefault("export.keyprefix", "tracks")
	v.SetDefault("export.region", "us-east-1")
	v.SetDefault("export.endpoint", "")
	v.SetDefault("aws.profile", "")

	v.SetConfigName("config")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // optional file

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return cfg, nil
}

func loadDotEnv() {
	file, err := os.Open(".env")
	if err != nil {
		return
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		partsIndex := strings.Index(line, "=")
		if partsIndex <= 0 {
			continue
		}

		key := strings.TrimSpace(line[:partsIndex])
		value := strings.TrimSpace(line[partsIndex+1:])
		value = strings.Trim(value, `"'`)
		if key == "" {
			continue
		}

		if _, exists := os.LookupEnv(key); !exists {
			_ = os.Setenv(key, value)
		}
	}
}
