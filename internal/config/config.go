package config

import (
	"github.com/caarlos0/env/v11"

	"log"
)

type Config struct {
	Telegram Telegram
	Download Download
	Storage  Storage
}

type Telegram struct {
	Token           string `env:"BOT_TOKEN"`
	PollIntervalSec int    `env:"POLL_INTERVAL_SEC" envDefault:"2"`
	LongPollSec     int    `env:"LONG_POLL_SEC" envDefault:"10"`
}

type Download struct {
	FetchBin        string `env:"FETCH_BIN" envDefault:"yt-dlp"`
	MaxFileSizeMB   int    `env:"MAX_FILE_SIZE_MB" envDefault:"50"`
	TimeoutSec      int    `env:"DOWNLOAD_TIMEOUT_SEC" envDefault:"300"`
	QualityCeiling  int    `env:"QUALITY_CEILING" envDefault:"720"`
	RateLimitHourly int    `env:"RATE_LIMIT_HOURLY" envDefault:"10"`
	RetentionDays   int    `env:"RETENTION_DAYS" envDefault:"3"`
}

type Storage struct {
	DBPath      string `env:"DB_PATH" envDefault:"fetchbot.db"`
	DownloadDir string `env:"DOWNLOAD_DIR" envDefault:"downloads"`
}

func Load() *Config {
	var c Config
	if err := env.Parse(&c); err != nil {
		log.Fatal(err)
	}

	return &c
}
