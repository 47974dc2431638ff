package config

import (
	"fmt"
	"math"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/ScottSyms/densitytiles/internal/index"
	"github.com/ScottSyms/densitytiles/internal/spatial"
)

// Config 应用配置
type Config struct {
	Port    string
	GinMode string

	// Data sources
	DataDir       string
	DBPath        string // Optional SQLite point table, empty to disable
	DBReadOnly    bool   // Open DBPath with mode=ro and skip migrations
	IngestWorkers int

	// Tiles
	MaxZoom        uint8
	TileSize       int
	ColorScale     string
	Normalization  string
	Saturation     uint32 // 0 = densest pixel of each tile
	PNGCompression string
	CacheMaxAge    time.Duration

	// Index
	RTreeMinChildren int
	RTreeMaxChildren int

	// HTTP backpressure
	RateLimit            int // Requests per window per IP, 0 disables
	RateWindow           time.Duration
	MaxConcurrentRenders int // 0 disables
	StaticDir            string

	// Logging
	LogLevel  string
	LogFormat string
	Debug     bool
}

// Load 加载配置. A .env file in the working directory is applied first
// without overriding variables that are already set.
func Load() *Config {
	_ = godotenv.Load(".env")
	return FromEnv()
}

// FromEnv reads the configuration from the process environment
func FromEnv() *Config {
	port := getEnv("PORT", ":8080")
	if !strings.Contains(port, ":") {
		port = ":" + port
	}

	return &Config{
		Port:    port,
		GinMode: getEnv("GIN_MODE", "release"),

		DataDir:       getEnv("DATA_DIR", "partition"),
		DBPath:        os.Getenv("DB_PATH"),
		DBReadOnly:    os.Getenv("DB_READONLY") == "1",
		IngestWorkers: getEnvInt("INGEST_WORKERS", runtime.NumCPU()),

		MaxZoom:        uint8(min(getEnvInt("MAX_ZOOM", 19), 255)),
		TileSize:       getEnvInt("TILE_SIZE", 256),
		ColorScale:     getEnv("COLOR_SCALE", "redblue"),
		Normalization:  getEnv("NORMALIZATION", "log"),
		Saturation:     uint32(min(getEnvInt("SATURATION", 0), math.MaxUint32)),
		PNGCompression: getEnv("PNG_COMPRESSION", "speed"),
		CacheMaxAge:    getEnvDuration("CACHE_MAX_AGE", time.Hour),

		RTreeMinChildren: getEnvInt("RTREE_MIN_CHILDREN", index.DefaultMinChildren),
		RTreeMaxChildren: getEnvInt("RTREE_MAX_CHILDREN", index.DefaultMaxChildren),

		RateLimit:            getEnvInt("RATE_LIMIT", 0),
		RateWindow:           getEnvDuration("RATE_WINDOW", time.Minute),
		MaxConcurrentRenders: getEnvInt("MAX_CONCURRENT_RENDERS", 4*runtime.NumCPU()),
		StaticDir:            os.Getenv("STATIC_DIR"),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),
		Debug:     os.Getenv("DEBUG") == "1",
	}
}

// Validate checks values that would otherwise fail at request time
func (c *Config) Validate() error {
	if c.MaxZoom > spatial.MaxSupportedZoom {
		return fmt.Errorf("MAX_ZOOM %d exceeds %d", c.MaxZoom, spatial.MaxSupportedZoom)
	}
	if c.TileSize < 1 || c.TileSize > 4096 {
		return fmt.Errorf("TILE_SIZE %d must be between 1 and 4096", c.TileSize)
	}
	if c.IngestWorkers < 1 {
		return fmt.Errorf("INGEST_WORKERS %d must be positive", c.IngestWorkers)
	}
	if c.RTreeMinChildren < 1 || c.RTreeMaxChildren < 2*c.RTreeMinChildren {
		return fmt.Errorf("RTREE_MAX_CHILDREN (%d) must be at least twice RTREE_MIN_CHILDREN (%d)",
			c.RTreeMaxChildren, c.RTreeMinChildren)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}

// getEnvDuration accepts Go durations ("90s") or plain seconds ("90")
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil && n >= 0 {
		return time.Duration(n) * time.Second
	}
	return fallback
}
