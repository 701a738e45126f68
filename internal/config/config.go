package config

import (
	"flag"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const (
	defaultForecastAPIURL = "https://api.darksky.net/forecast"
	defaultUnits          = "si"
	defaultLatitude       = 45.3167088
	defaultLongitude      = -75.83175890000001
)

var once sync.Once
var logger *zap.SugaredLogger
var loggerOnce sync.Once

// isTestRun returns true if the current process is a Go test binary.
func isTestRun() bool {
	return flag.Lookup("test.v") != nil || filepath.Ext(os.Args[0]) == ".test"
}

func initConfig() {
	once.Do(func() {
		viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
		viper.AutomaticEnv()

		root, err := getProjectRoot()
		if err != nil {
			GetLogger().Errorw("Error finding project root", "error", err)
			return
		}
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
		viper.AddConfigPath(root)
		if err = viper.ReadInConfig(); err != nil {
			GetLogger().Errorw("Error reading config file", "error", err)
		}

		if isTestRun() {
			viper.SetConfigName("config_test")
			if err = viper.MergeInConfig(); err != nil {
				GetLogger().Errorw("Error merging test config file", "error", err)
			}
		}
	})
}

func getProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", os.ErrNotExist
}

// GetForecastApiUrl returns the forecast endpoint base, without key or coordinates.
func GetForecastApiUrl() string {
	initConfig()
	u := viper.GetString("forecast.api_url")
	if u == "" {
		return defaultForecastAPIURL
	}
	return strings.TrimRight(u, "/")
}

func GetForecastAPIKey() string {
	_ = godotenv.Load()
	return os.Getenv("DARKSKY_API_KEY")
}

// GetForecastUnits returns the unit system sent with every request.
func GetForecastUnits() string {
	initConfig()
	units := viper.GetString("forecast.units")
	if units == "" {
		return defaultUnits
	}
	return units
}

// GetForecastTimeout bounds a single forecast request. Defaults to 10s.
func GetForecastTimeout() time.Duration {
	return getDuration("forecast.timeout", 10*time.Second)
}

// GetLocation returns the fixed coordinates the screen reports on.
func GetLocation() (latitude, longitude float64) {
	initConfig()
	if !viper.IsSet("location.latitude") || !viper.IsSet("location.longitude") {
		return defaultLatitude, defaultLongitude
	}
	return viper.GetFloat64("location.latitude"), viper.GetFloat64("location.longitude")
}

func GetRedisAddr() string {
	initConfig()
	return viper.GetString("redis.addr")
}

func GetServerPort() string {
	initConfig()
	serverPort := viper.GetString("server.port")
	if serverPort == "" {
		return "8080"
	}
	return serverPort
}

func GetServerTimeout(key string) time.Duration {
	return getDuration("server."+key, 15*time.Second)
}

// AssumeOnline reports whether the connectivity check is bypassed.
func AssumeOnline() bool {
	initConfig()
	return viper.GetBool("network.assume_online")
}

// ReloadConfigForTest resets the config singleton and reloads Viper config. Use only in tests.
func ReloadConfigForTest() {
	viper.Reset()
	once = sync.Once{}
	initConfig()
}

func GetLogger() *zap.SugaredLogger {
	loggerOnce.Do(func() {
		l, err := zap.NewDevelopment()
		if err != nil {
			panic(err)
		}
		logger = l.Sugar()
	})
	return logger
}

// GetRateLimiterCleanupTimeout returns the rate limiter cleanup timeout as a time.Duration.
// Defaults to 3m if not set or invalid.
func GetRateLimiterCleanupTimeout() time.Duration {
	return getDuration("rate_limiter.cleanup_timeout", 3*time.Minute)
}

// GetGlobalRateLimiterConfig returns requests per minute and burst for the per-IP limiter.
func GetGlobalRateLimiterConfig() (rate float64, burst int) {
	return getRateLimit("rate_limiter.global", 10, 10)
}

// GetRouteRateLimiterConfig returns requests per minute and burst for the per-IP, per-route limiter.
func GetRouteRateLimiterConfig() (rate float64, burst int) {
	return getRateLimit("rate_limiter.route", 2, 2)
}

func getRateLimit(prefix string, defRate float64, defBurst int) (rate float64, burst int) {
	initConfig()
	rate = viper.GetFloat64(prefix + ".rate")
	if rate == 0 {
		rate = defRate
	}
	burst = viper.GetInt(prefix + ".burst")
	if burst == 0 {
		burst = defBurst
	}
	return
}

func getDuration(key string, def time.Duration) time.Duration {
	initConfig()
	durStr := viper.GetString(key)
	if durStr == "" {
		return def
	}
	dur, err := time.ParseDuration(durStr)
	if err != nil {
		GetLogger().Warnw("Invalid duration in config, using default", "key", key, "value", durStr, "default", def)
		return def
	}
	return dur
}
