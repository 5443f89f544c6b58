package config

import (
	"errors"
	"fmt"
	"reflect"
	"time"

	"github.com/spf13/viper"
)

// AppConfig holds the configuration for the application.
// Tags used:
// - mapstructure: used by viper to unmarshal
// - default: default value to set if missing
// - required: if "true", error if missing
type AppConfig struct {
	// Environment specifies the runtime environment (e.g., development, production).
	Environment string `mapstructure:"APP_ENV" default:"development"`
	// LogLevel defines the logging verbosity (e.g., debug, info, error).
	LogLevel string `mapstructure:"LOG_LEVEL" default:"info"`
	// ServerPort is the port where the server will listen.
	ServerPort int `mapstructure:"SERVER_PORT" default:"8080"`
	// RequestTimeoutSeconds bounds the total time spent serving one API request.
	RequestTimeoutSeconds int `mapstructure:"REQUEST_TIMEOUT" default:"30"`

	// Shiprocket holds the Shiprocket API configuration.
	Shiprocket ShiprocketConfig `mapstructure:",squash"`

	// Razorpay holds the Razorpay API configuration.
	Razorpay RazorpayConfig `mapstructure:",squash"`

	// WooCommerce holds the WooCommerce API configuration.
	WooCommerce WooCommerceConfig `mapstructure:",squash"`

	// CredentialStore selects and configures the token persistence backend.
	CredentialStore CredentialStoreConfig `mapstructure:",squash"`

	// Aggregation tunes the merged order feed.
	Aggregation AggregationConfig `mapstructure:",squash"`

	// Proxy holds the optional outbound proxy for provider calls.
	Proxy ProxyConfig `mapstructure:",squash"`
}

// ShiprocketConfig holds the login credentials for the Shiprocket API.
type ShiprocketConfig struct {
	// BaseURL is the Shiprocket API root.
	BaseURL string `mapstructure:"SHIPROCKET_BASE_URL" default:"https://apiv2.shiprocket.in"`
	// Email is the API user's login email.
	Email string `mapstructure:"SHIPROCKET_API_EMAIL" required:"true"`
	// Password is the API user's password.
	Password string `mapstructure:"SHIPROCKET_API_PASSWORD" required:"true"`
	// TokenTTLHours is how long an issued token is reused before logging in again.
	TokenTTLHours int `mapstructure:"SHIPROCKET_TOKEN_TTL_HOURS" default:"240"`
	// PickupLocation is the pickup location name used for new shipments.
	PickupLocation string `mapstructure:"SHIPROCKET_PICKUP_LOCATION" default:"Primary"`
}

// TokenTTL returns the fixed validity window of a Shiprocket token.
func (c ShiprocketConfig) TokenTTL() time.Duration {
	return time.Duration(c.TokenTTLHours) * time.Hour
}

// RazorpayConfig holds the key pair for the Razorpay orders API.
type RazorpayConfig struct {
	// BaseURL is the Razorpay API root.
	BaseURL string `mapstructure:"RAZORPAY_BASE_URL" default:"https://api.razorpay.com"`
	// KeyID is the public key id.
	KeyID string `mapstructure:"RAZORPAY_KEY_ID"`
	// KeySecret is the secret paired with KeyID.
	KeySecret string `mapstructure:"RAZORPAY_KEY_SECRET"`
}

// Enabled reports whether Razorpay credentials are configured.
func (c RazorpayConfig) Enabled() bool {
	return c.KeyID != "" && c.KeySecret != ""
}

// WooCommerceConfig holds the credentials for the WooCommerce Store.
type WooCommerceConfig struct {
	// URL is the base URL of the WooCommerce store.
	URL string `mapstructure:"WC_URL"`
	// ConsumerKey is the public key for API access.
	ConsumerKey string `mapstructure:"WC_CONSUMER_KEY"`
	// ConsumerSecret is the secret key for API access.
	ConsumerSecret string `mapstructure:"WC_CONSUMER_SECRET"`
}

// Enabled reports whether a WooCommerce store is configured.
func (c WooCommerceConfig) Enabled() bool {
	return c.URL != "" && c.ConsumerKey != "" && c.ConsumerSecret != ""
}

// CredentialStoreConfig selects where provider tokens are persisted.
type CredentialStoreConfig struct {
	// Backend is one of memory, redis or postgres.
	Backend string `mapstructure:"CREDENTIAL_STORE" default:"memory"`
	// Namespace groups the stored credential documents.
	Namespace string `mapstructure:"CREDENTIAL_NAMESPACE" default:"app_secrets"`
	// RedisURL is used by the redis backend.
	RedisURL string `mapstructure:"REDIS_URL" default:"redis://localhost:6379/0"`
	// DatabaseURL is used by the postgres backend.
	DatabaseURL string `mapstructure:"DATABASE_URL"`
}

// AggregationConfig tunes the merged order feed.
type AggregationConfig struct {
	// FetchSize is the batch requested from every provider before merging.
	FetchSize int `mapstructure:"AGGREGATION_FETCH_SIZE" default:"50"`
	// ProviderTimeoutSeconds bounds a single provider call.
	ProviderTimeoutSeconds int `mapstructure:"PROVIDER_TIMEOUT" default:"10"`
	// MaxPageSize caps the limit a caller may request.
	MaxPageSize int `mapstructure:"MAX_PAGE_SIZE" default:"100"`
	// ProviderRateLimit caps outbound calls per provider, in requests per second. 0 disables it.
	ProviderRateLimit float64 `mapstructure:"PROVIDER_RATE_LIMIT" default:"5"`
	// ProviderBurst is the number of calls allowed above the rate in a burst.
	ProviderBurst int `mapstructure:"PROVIDER_BURST" default:"10"`
}

// ProviderTimeout returns the per-provider timeout as a duration.
func (c AggregationConfig) ProviderTimeout() time.Duration {
	return time.Duration(c.ProviderTimeoutSeconds) * time.Second
}

// ProxyConfig holds the outbound proxy settings.
type ProxyConfig struct {
	Enabled  bool   `mapstructure:"PROXY_ENABLED"`
	Hostname string `mapstructure:"PROXY_HOSTNAME"`
	Port     int    `mapstructure:"PROXY_PORT"`
	Username string `mapstructure:"PROXY_USERNAME"`
	Password string `mapstructure:"PROXY_PASSWORD"`
}

// Load loads configuration from .env files and environment variables.
func Load(path string) (*AppConfig, error) {
	v := viper.New()

	v.AutomaticEnv()

	v.AddConfigPath(path)
	v.SetConfigName(".env")
	v.SetConfigType("env")

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config AppConfig

	if err := processTags(v, &config); err != nil {
		return nil, err
	}

	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}

	if err := validateRequired(&config); err != nil {
		return nil, err
	}

	if err := validateBackend(config.CredentialStore); err != nil {
		return nil, err
	}

	return &config, nil
}

// processTags iterates over the struct fields, binds env keys and sets default values in Viper.
func processTags(v *viper.Viper, config interface{}) error {
	val := reflect.ValueOf(config)
	if val.Kind() == reflect.Ptr {
		val = val.Elem()
	}

	t := val.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)

		if field.Type.Kind() == reflect.Struct {
			if err := processTags(v, val.Field(i).Addr().Interface()); err != nil {
				return err
			}
			continue
		}

		key := field.Tag.Get("mapstructure")
		defaultValue := field.Tag.Get("default")

		if key != "" {
			if err := v.BindEnv(key); err != nil {
				return fmt.Errorf("failed to bind %s: %w", key, err)
			}
		}

		if key != "" && defaultValue != "" {
			v.SetDefault(key, defaultValue)
		}
	}
	return nil
}

// validateRequired checks if fields marked as required have non-zero values.
func validateRequired(config interface{}) error {
	val := reflect.ValueOf(config)
	if val.Kind() == reflect.Ptr {
		val = val.Elem()
	}

	t := val.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)

		if field.Type.Kind() == reflect.Struct {
			if err := validateRequired(val.Field(i).Addr().Interface()); err != nil {
				return err
			}
			continue
		}

		required := field.Tag.Get("required")
		if required == "true" {
			value := val.Field(i)
			if isZero(value) {
				key := field.Tag.Get("mapstructure")
				return fmt.Errorf("missing required configuration: %s", key)
			}
		}
	}
	return nil
}

func validateBackend(c CredentialStoreConfig) error {
	switch c.Backend {
	case "memory", "redis":
		return nil
	case "postgres":
		if c.DatabaseURL == "" {
			return fmt.Errorf("missing required configuration: DATABASE_URL")
		}
		return nil
	default:
		return fmt.Errorf("unsupported CREDENTIAL_STORE: %q", c.Backend)
	}
}

// isZero checks if a reflect.Value is the zero value for its type.
func isZero(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.String:
		return v.String() == ""
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int() == 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return v.Uint() == 0
	case reflect.Float32, reflect.Float64:
		return v.Float() == 0
	case reflect.Bool:
		return !v.Bool()
	case reflect.Slice, reflect.Map:
		return v.Len() == 0
	default:
		return v.IsZero()
	}
}
