// config/config.go
package config

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Configuration stores all the configurations
type Configuration struct {
	Server        ServerConfiguration
	Postgres      DatabaseConfiguration
	Redis         RedisConfiguration
	Elasticsearch ElasticsearchConfiguration
	Auth          AuthConfiguration
	Throttle      ThrottleConfiguration
	Media         MediaConfiguration
}

// ServerConfiguration stores the port and other web server settings
type ServerConfiguration struct {
	Port string
}

// DatabaseConfiguration stores data for database connection
type DatabaseConfiguration struct {
	URL string
}

// RedisConfiguration stores data for Redis connection
type RedisConfiguration struct {
	Addr            string
	DefaultCacheTTL string
}

// ElasticsearchConfiguration stores data for Elasticsearch connection
type ElasticsearchConfiguration struct {
	URL string
}

// AuthConfiguration stores token signing settings
type AuthConfiguration struct {
	JWTSecret string
	TokenTTL  string
}

// ThrottleConfiguration stores per-scope request limits
type ThrottleConfiguration struct {
	Customer int
	Seller   int
	Admin    int
	Anon     int
	Window   string
}

// MediaConfiguration stores file storage settings
type MediaConfiguration struct {
	Root string
}

var config *Configuration

func InitConfig() error {
	// .env is optional; environment variables win either way
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found. Using config file and environment variables.")
	}

	viper.AddConfigPath("config") // path to look for the config file in
	viper.SetConfigName("config") // name of the config file (without extension)
	viper.SetConfigType("yaml")

	viper.AutomaticEnv() // read in environment variables that match

	// Set default configurations
	viper.SetDefault("server.port", "8080")
	viper.SetDefault("postgres.url", "postgres://localhost:5432/recipehub?sslmode=disable")
	viper.SetDefault("redis.addr", "localhost:6379")
	viper.SetDefault("redis.defaultCacheTTL", "15m")
	viper.SetDefault("elasticsearch.url", "http://localhost:9200")
	viper.SetDefault("auth.tokenTTL", "24h")
	viper.SetDefault("throttle.customer", 60)
	viper.SetDefault("throttle.seller", 120)
	viper.SetDefault("throttle.admin", 300)
	viper.SetDefault("throttle.anon", 20)
	viper.SetDefault("throttle.window", "1m")
	viper.SetDefault("media.root", "media")
	viper.SetDefault("exports.retentionDays", 28)
	viper.SetDefault("worker.imageQueueSize", 256)
	viper.SetDefault("worker.imageWorkers", 2)
	viper.SetDefault("log.dir", "logging")

	// Attempt to read the config file
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			log.Println("No config file found. Using default settings and environment variables.")
		} else {
			return err
		}
	}

	// Unmarshal the configuration into the Configuration struct
	err := viper.Unmarshal(&config)
	if err != nil {
		return err
	}

	return nil
}

// GetConfig returns the loaded configuration
func GetConfig() *Configuration {
	return config
}

// GetString retrieves a string value from the configuration
func GetString(key string) string {
	return viper.GetString(key)
}

// GetInt retrieves an integer value from the configuration
func GetInt(key string) int {
	return viper.GetInt(key)
}

// GetBool retrieves a boolean value from the configuration
func GetBool(key string) bool {
	return viper.GetBool(key)
}

// GetDuration retrieves a duration value from the configuration
func GetDuration(key string) time.Duration {
	return viper.GetDuration(key)
}
