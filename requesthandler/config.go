// requesthandler/config.go
package requesthandler

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/sessionkit/go-token-session/logger"
	"github.com/sessionkit/go-token-session/version"
)

const (
	DefaultLogLevel            = logger.LogLevelInfo
	DefaultLogLevelString      = "LogLevelInfo"
	DefaultLogOutputFormat     = "console"
	DefaultLogConsoleSeparator = ", "
	DefaultTimeout             = 10 * time.Second
	DefaultMaxRedirects        = 5
)

// ClientConfig holds configuration options for the request dispatcher.
type ClientConfig struct {
	ClientOptions ClientOptions `json:"ClientOptions,omitempty"`
}

// ClientOptions holds optional configuration options for the request dispatcher.
type ClientOptions struct {
	LogLevel            string        `json:"LogLevel,omitempty" validate:"omitempty,oneof=LogLevelDebug LogLevelInfo LogLevelWarn LogLevelError LogLevelDPanic LogLevelPanic LogLevelFatal"` // Field for defining tiered logging level.
	LogOutputFormat     string        `json:"LogOutputFormat,omitempty" validate:"omitempty,oneof=json console"`                                                                              // Field for defining the output format of the logs.
	LogConsoleSeparator string        `json:"LogConsoleSeparator,omitempty"`                                                                                                                  // Field for defining the separator in console output format.
	HideSensitiveData   bool          `json:"HideSensitiveData,omitempty"`                                                                                                                    // Field for defining whether sensitive fields should be hidden in logs.
	UserAgent           string        `json:"UserAgent,omitempty"`                                                                                                                            // User-Agent sent with every dispatched request.
	EnableCookieJar     bool          `json:"EnableCookieJar,omitempty"`                                                                                                                      // Field to enable or disable cookie jar on the default sender.
	EnableReactiveRetry bool          `json:"EnableReactiveRetry,omitempty"`                                                                                                                  // Enables the refresh-and-retry-once path on a 401 response.
	ProxyURL            string        `json:"ProxyURL,omitempty" validate:"omitempty,url"`                                                                                                    // Optional proxy the default sender routes traffic through.
	FollowRedirects     bool          `json:"FollowRedirects,omitempty"`                                                                                                                      // Flag to enable following redirects on the default sender.
	MaxRedirects        int           `json:"MaxRedirects,omitempty" validate:"min=0"`                                                                                                        // Redirect cap applied when FollowRedirects is enabled.
	CustomTimeout       time.Duration `json:"CustomTimeout,omitempty" validate:"min=0"`                                                                                                       // Timeout applied to the default HTTP sender.
}

var validate = validator.New()

// Validate checks the configuration against its declared constraints.
func (config *ClientConfig) Validate() error {
	return validate.Struct(config)
}

// SetClientConfiguration initializes the dispatcher configuration from the environment and,
// when the environment leaves it incomplete, from the provided JSON file. A .env file in
// the working directory is honored when present. Default values are applied for any option
// still unset, and the final configuration is validated before being returned.
func SetClientConfiguration(configFilePath string) (*ClientConfig, error) {
	config := &ClientConfig{}

	// Optional .env support; a missing file is not an error.
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded environment overrides from .env file")
	}

	loadConfigFromEnv(config)

	if !validateConfigCompletion(config) {
		if configFilePath != "" {
			if err := config.loadConfigFromFile(configFilePath); err != nil {
				return nil, err
			}
		}
	}

	setDefaultValues(config)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid client configuration: %w", err)
	}

	return config, nil
}

// loadConfigFromEnv populates the ClientConfig structure with values from environment
// variables. For each option, if the variable is set its value is used; otherwise the
// existing value in the structure is retained.
func loadConfigFromEnv(config *ClientConfig) {
	config.ClientOptions.LogLevel = getEnvOrDefault("LOG_LEVEL", config.ClientOptions.LogLevel)
	config.ClientOptions.LogOutputFormat = getEnvOrDefault("LOG_OUTPUT_FORMAT", config.ClientOptions.LogOutputFormat)
	config.ClientOptions.LogConsoleSeparator = getEnvOrDefault("LOG_CONSOLE_SEPARATOR", config.ClientOptions.LogConsoleSeparator)
	config.ClientOptions.HideSensitiveData = parseBool(getEnvOrDefault("HIDE_SENSITIVE_DATA", strconv.FormatBool(config.ClientOptions.HideSensitiveData)))
	config.ClientOptions.UserAgent = getEnvOrDefault("USER_AGENT", config.ClientOptions.UserAgent)
	config.ClientOptions.EnableCookieJar = parseBool(getEnvOrDefault("ENABLE_COOKIE_JAR", strconv.FormatBool(config.ClientOptions.EnableCookieJar)))
	config.ClientOptions.EnableReactiveRetry = parseBool(getEnvOrDefault("ENABLE_REACTIVE_RETRY", strconv.FormatBool(config.ClientOptions.EnableReactiveRetry)))
	config.ClientOptions.ProxyURL = getEnvOrDefault("PROXY_URL", config.ClientOptions.ProxyURL)
	config.ClientOptions.FollowRedirects = parseBool(getEnvOrDefault("FOLLOW_REDIRECTS", strconv.FormatBool(config.ClientOptions.FollowRedirects)))
	config.ClientOptions.MaxRedirects = parseInt(getEnvOrDefault("MAX_REDIRECTS", strconv.Itoa(config.ClientOptions.MaxRedirects)), 0)
	config.ClientOptions.CustomTimeout = parseDuration(getEnvOrDefault("CUSTOM_TIMEOUT", config.ClientOptions.CustomTimeout.String()), DefaultTimeout)
}

// Helper function to get environment variable or default value
func getEnvOrDefault(envKey string, defaultValue string) string {
	if value, exists := os.LookupEnv(envKey); exists {
		return value
	}
	return defaultValue
}

// Helper function to parse boolean from environment variable
func parseBool(value string) bool {
	result, err := strconv.ParseBool(value)
	if err != nil {
		return false
	}
	return result
}

// Helper function to parse integer from environment variable
func parseInt(value string, defaultVal int) int {
	result, err := strconv.Atoi(value)
	if err != nil {
		return defaultVal
	}
	return result
}

// Helper function to parse duration from environment variable
func parseDuration(value string, defaultVal time.Duration) time.Duration {
	result, err := time.ParseDuration(value)
	if err != nil {
		return defaultVal
	}
	return result
}

// validateConfigCompletion checks if the essential logging fields are populated, indicating
// whether the configuration may still need to be loaded from a file.
func validateConfigCompletion(config *ClientConfig) bool {
	return config.ClientOptions.LogLevel != "" &&
		config.ClientOptions.LogOutputFormat != "" &&
		config.ClientOptions.LogConsoleSeparator != ""
}

// setDefaultValues fills in defaults for any option not supplied by the environment or
// configuration file. It uses the standard log package since the zap logger is not yet
// initialized when this function runs.
func setDefaultValues(config *ClientConfig) {
	if config.ClientOptions.LogLevel == "" {
		config.ClientOptions.LogLevel = DefaultLogLevelString
		log.Printf("LogLevel not set, set to default value: %s", DefaultLogLevelString)
	}

	if config.ClientOptions.LogOutputFormat == "" {
		config.ClientOptions.LogOutputFormat = DefaultLogOutputFormat
		log.Printf("LogOutputFormat not set, set to default value: %s", DefaultLogOutputFormat)
	}

	if config.ClientOptions.LogConsoleSeparator == "" {
		config.ClientOptions.LogConsoleSeparator = DefaultLogConsoleSeparator
		log.Println("LogConsoleSeparator not set, set to default value: \", \"")
	}

	if config.ClientOptions.UserAgent == "" {
		config.ClientOptions.UserAgent = version.GetUserAgentHeader()
		log.Printf("UserAgent not set, set to default value: %s", config.ClientOptions.UserAgent)
	}

	if config.ClientOptions.FollowRedirects && config.ClientOptions.MaxRedirects < 1 {
		config.ClientOptions.MaxRedirects = DefaultMaxRedirects
		log.Printf("MaxRedirects not set, set to default value: %d", DefaultMaxRedirects)
	}

	if config.ClientOptions.CustomTimeout <= 0 {
		config.ClientOptions.CustomTimeout = DefaultTimeout
		log.Printf("CustomTimeout not set, set to default value: %s", DefaultTimeout)
	}
}

// loadConfigFromFile loads configuration values from a JSON file into the ClientConfig struct.
func (config *ClientConfig) loadConfigFromFile(filePath string) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		log.Printf("Failed to read the configuration file: %s, error: %v", filePath, err)
		return err
	}

	if err := json.Unmarshal(data, config); err != nil {
		log.Printf("Failed to unmarshal the configuration file: %s, error: %v", filePath, err)
		return err
	}

	log.Printf("Configuration successfully loaded from file: %s", filePath)
	return nil
}
