package stratbench

import (
	"os"
	"strconv"

	"github.com/raykavin/stratbench/pkg/logger"
	"github.com/raykavin/stratbench/pkg/logger/logrus"
	"github.com/raykavin/stratbench/pkg/logger/zerolog"
)

const (
	defaultLogLevel      = "info"
	defaultLogTimeFormat = "2006-01-02 15:04:05"
	defaultLogColored    = "true"
	defaultLogJSON       = "false"
	defaultLogBackend    = "zerolog"
)

// Environment variable names
const (
	envLogLevel      = "STRATBENCH_LOG_LEVEL"
	envLogTimeFormat = "STRATBENCH_LOG_TIME_FORMAT"
	envLogColor      = "STRATBENCH_LOG_COLOR"
	envLogJSON       = "STRATBENCH_LOG_JSON"
	envLogBackend    = "STRATBENCH_LOG_BACKEND"
)

func init() {
	log, err := loggerFromEnv()
	if err != nil {
		panic(err)
	}
	DefaultLog = log
}

// LogSettings selects and configures a logger backend
type LogSettings struct {
	Backend    string // zerolog or logrus
	Level      string
	TimeFormat string
	Colored    bool
	JSON       bool
}

// NewLogger builds a logger from settings
func NewLogger(settings LogSettings) (logger.Logger, error) {
	if settings.Backend == "logrus" {
		return logrus.New(settings.Level, os.Stdout, settings.JSON)
	}

	log, err := zerolog.New(zerolog.Options{
		Level:      settings.Level,
		TimeLayout: settings.TimeFormat,
		Colored:    settings.Colored,
		JSON:       settings.JSON,
	})
	if err != nil {
		return nil, err
	}
	return zerolog.NewAdapter(log), nil
}

// loggerFromEnv creates the default logger configured from environment variables
func loggerFromEnv() (logger.Logger, error) {
	colored, err := parseBoolEnv(envLogColor, defaultLogColored)
	if err != nil {
		return nil, err
	}

	jsonFormat, err := parseBoolEnv(envLogJSON, defaultLogJSON)
	if err != nil {
		return nil, err
	}

	return NewLogger(LogSettings{
		Backend:    getEnvWithDefault(envLogBackend, defaultLogBackend),
		Level:      getEnvWithDefault(envLogLevel, defaultLogLevel),
		TimeFormat: getEnvWithDefault(envLogTimeFormat, defaultLogTimeFormat),
		Colored:    colored,
		JSON:       jsonFormat,
	})
}

// getEnvWithDefault returns the value of the environment variable or the default if not set
func getEnvWithDefault(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// parseBoolEnv gets a boolean environment variable with a default value
func parseBoolEnv(key, defaultValue string) (bool, error) {
	return strconv.ParseBool(getEnvWithDefault(key, defaultValue))
}
