package env

import (
	"errors"
	"io/fs"
	"log"
	"os"
	"path"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// actual environment variables
var DEPLOYMENT string
var LOG_LEVEL string
var JWT_SECRET []byte
var PREFORK bool
var DRAIN_MODE bool

var STORE_DRIVER string
var MONGO_URI string
var MONGO_DATABASE string

var RELAY_DRIVER string
var REDIS_ADDR string
var REDIS_PASSWORD string
var REDIS_DB int
var MQTT_BROKER string
var MQTT_CLIENT_ID string

var GITHUB_TOKEN string
var GITHUB_API_URL string
var PUBLIC_WEBHOOK_URL string

var STREAM_HEARTBEAT time.Duration
var STREAM_BUFFER int

var CI_CHECK_ENABLED bool
var CI_CHECK_DELAY time.Duration

// this is required
var VERSION string

func init() {
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("STORE_DRIVER", "mongo")
	viper.SetDefault("MONGO_URI", "mongodb://127.0.0.1:27017")
	viper.SetDefault("MONGO_DATABASE", "commitsonic")
	viper.SetDefault("RELAY_DRIVER", "none")
	viper.SetDefault("REDIS_ADDR", "127.0.0.1:6379")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("MQTT_BROKER", "127.0.0.1:1883")
	viper.SetDefault("MQTT_CLIENT_ID", "commitsonic")
	viper.SetDefault("GITHUB_API_URL", "https://api.github.com/")
	viper.SetDefault("STREAM_HEARTBEAT", "15s")
	viper.SetDefault("STREAM_BUFFER", 16)
	viper.SetDefault("CI_CHECK_ENABLED", false)
	viper.SetDefault("CI_CHECK_DELAY", "30s")
	viper.SetDefault("POSTGRES_HOST", "127.0.0.1")
	viper.SetDefault("POSTGRES_PORT", "5432")
}

func Init(deployment string, envRoot string, appVersion string) {
	loadEnv(deployment, envRoot)
	loadVersion(appVersion)

	viper.AutomaticEnv()

	DEPLOYMENT = deployment
	LOG_LEVEL = viper.GetString("LOG_LEVEL")
	PREFORK = viper.GetBool("PREFORK")
	DRAIN_MODE = viper.GetBool("DRAIN_MODE")
	JWT_SECRET = []byte(viper.GetString("JWT_SECRET"))

	STORE_DRIVER = strings.ToLower(strings.TrimSpace(viper.GetString("STORE_DRIVER")))
	MONGO_URI = viper.GetString("MONGO_URI")
	MONGO_DATABASE = viper.GetString("MONGO_DATABASE")

	RELAY_DRIVER = strings.ToLower(strings.TrimSpace(viper.GetString("RELAY_DRIVER")))
	REDIS_ADDR = viper.GetString("REDIS_ADDR")
	REDIS_PASSWORD = viper.GetString("REDIS_PASSWORD")
	REDIS_DB = viper.GetInt("REDIS_DB")
	MQTT_BROKER = viper.GetString("MQTT_BROKER")
	MQTT_CLIENT_ID = viper.GetString("MQTT_CLIENT_ID")

	GITHUB_TOKEN = strings.TrimSpace(viper.GetString("GITHUB_TOKEN"))
	GITHUB_API_URL = viper.GetString("GITHUB_API_URL")
	PUBLIC_WEBHOOK_URL = strings.TrimRight(viper.GetString("PUBLIC_WEBHOOK_URL"), "/")

	STREAM_HEARTBEAT = viper.GetDuration("STREAM_HEARTBEAT")
	STREAM_BUFFER = viper.GetInt("STREAM_BUFFER")

	CI_CHECK_ENABLED = viper.GetBool("CI_CHECK_ENABLED")
	CI_CHECK_DELAY = viper.GetDuration("CI_CHECK_DELAY")
}

// loadEnv overlays <envRoot>/.env onto the process environment. The file is
// optional everywhere except prod.
func loadEnv(deployment string, envRoot string) {
	if envRoot == "" {
		envRoot = repoRoot()
	}

	path := path.Join(envRoot, ".env")
	if err := godotenv.Overload(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) && deployment != "prod" {
			return
		}
		log.Fatalf("failed to load env file %s: %v", path, err)
	}
}

func loadVersion(appVersion string) {
	if appVersion != "" {
		VERSION = appVersion
		return
	}

	data, err := os.ReadFile(filepath.Join(repoRoot(), "VERSION"))
	if err != nil {
		VERSION = "unknown"
		return
	}

	trimmed := strings.TrimSpace(string(data))
	if trimmed != "" {
		VERSION = trimmed
	} else {
		VERSION = "unknown"
	}
}

func repoRoot() string {
	_, b, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(b), "../..")
}
