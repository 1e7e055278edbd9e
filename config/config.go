package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	InputPath  string
	OutputPath string
	ChartsDir  string

	PreviewRows  int
	RenderCharts bool
	Debug        bool
}

// Load reads the .env file and returns a populated Config struct.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}

	return &Config{
		InputPath:  getEnv("INPUT_PATH", "./data/ecommerce_grey_market_data.csv"),
		OutputPath: getEnv("OUTPUT_PATH", "./output/processed_data.csv"),
		ChartsDir:  getEnv("CHARTS_DIR", "./visualizations"),

		PreviewRows:  getEnvInt("PREVIEW_ROWS", 5),
		RenderCharts: getEnvBool("RENDER_CHARTS", true),
		Debug:        getEnvBool("DEBUG", false),
	}
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		n, err := strconv.Atoi(val)
		if err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		b, err := strconv.ParseBool(val)
		if err == nil {
			return b
		}
	}
	return fallback
}
