package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds the application's configuration values.
type Config struct {
	GridSize          int     // Side of the explorer's initial square map
	ExecutorHost      string  // Hostname or IP address the driver dials for the executor
	ExecutorPort      int     // Port the executor listens on
	DriverHost        string  // Hostname or IP address the explorer dials for the driver
	DriverPort        int     // Port the driver listens on
	DialRetries       int     // Connection attempts made while the topology is being set up
	HostIP            string  // Host IP for the REST server
	RESTPort          int     // Port for the REST API
	RunID             string  // Identifier shared by the roles of one run; generated when empty
	MaxRounds         int     // Upper bound on exploration rounds
	MaxRoutes         int     // Upper bound on routes enumerated per round, 0 for no limit
	WorldFile         string  // YAML lake layout for the executor; generated when empty
	WorldGenerator    string  // Generator used when no world file is set: random or maze
	FrozenProbability float64 // Probability of a frozen tile in a random world
	ExpandProbability float64 // Probability that a random world is one larger than GridSize
	WorldSeed         int64   // Seed for world generation, 0 for a time based seed
	ResultsStore      string  // Run results backend: file, mongo or sqlite
	ResultsDir        string  // Directory of the file backend
	SQLitePath        string  // Database path of the sqlite backend
	DBHost            string  // Hostname or IP address for the database
	DBPort            int     // Port number for the database
	DBUser            string  // Username for the database
	DBPassword        string  // Password for the database
	DBName            string  // Name of the database
	RedisAddr         string  // Address of the leaderboard redis, empty to disable it
	RedisPassword     string  // Password for redis
	GinMode           string  // Mode for the Gin framework (e.g., release, debug, test)
	JWTSecret         string  // Secret key for JWT signing
	JWTIssuer         string  // Issuer claim for JWTs
	LogDebug          bool    // Emit debug lines such as per scan map dumps
}

// Envs holds the application's configuration loaded from environment variables.
var Envs = initConfig()

// initConfig initializes and returns the application configuration.
// It loads environment variables from a .env file.
func initConfig() Config {
	// Load .env file if available
	if err := godotenv.Load(); err != nil {
		log.Printf("[APP] [INFO] .env file not found or could not be loaded: %v", err)
	}

	return Config{
		GridSize:          getEnvAsIntWithDefault("GRID_SIZE", 4),
		ExecutorHost:      getEnvWithDefault("EXECUTOR_HOST", "127.0.0.1"),
		ExecutorPort:      getEnvAsIntWithDefault("EXECUTOR_PORT", 6000),
		DriverHost:        getEnvWithDefault("DRIVER_HOST", "127.0.0.1"),
		DriverPort:        getEnvAsIntWithDefault("DRIVER_PORT", 6001),
		DialRetries:       getEnvAsIntWithDefault("DIAL_RETRIES", 20),
		HostIP:            getEnvWithDefault("HOST_IP", "0.0.0.0"),
		RESTPort:          getEnvAsIntWithDefault("REST_PORT", 8080),
		RunID:             getEnvWithDefault("RUN_ID", ""),
		MaxRounds:         getEnvAsIntWithDefault("MAX_ROUNDS", 1000),
		MaxRoutes:         getEnvAsIntWithDefault("MAX_ROUTES", 0),
		WorldFile:         getEnvWithDefault("WORLD_FILE", ""),
		WorldGenerator:    getEnvWithDefault("WORLD_GENERATOR", "random"),
		FrozenProbability: getEnvAsFloatWithDefault("FROZEN_PROBABILITY", 0.7),
		ExpandProbability: getEnvAsFloatWithDefault("EXPAND_PROBABILITY", 0),
		WorldSeed:         int64(getEnvAsIntWithDefault("WORLD_SEED", 0)),
		ResultsStore:      getEnvWithDefault("RESULTS_STORE", "file"),
		ResultsDir:        getEnvWithDefault("RESULTS_DIR", "results"),
		SQLitePath:        getEnvWithDefault("SQLITE_PATH", "results.db"),
		DBHost:            getEnvWithDefault("DB_HOST", "localhost"),
		DBPort:            getEnvAsIntWithDefault("DB_PORT", 27017),
		DBUser:            getEnvWithDefault("DB_USER", ""),
		DBPassword:        getEnvWithDefault("DB_PASS", ""),
		DBName:            getEnvWithDefault("DB_NAME", "pathfinder"),
		RedisAddr:         getEnvWithDefault("REDIS_ADDR", ""),
		RedisPassword:     getEnvWithDefault("REDIS_PASSWORD", ""),
		GinMode:           getEnvWithDefault("GIN_MODE", "release"),
		JWTSecret:         getEnvWithDefault("JWT_SECRET", ""),
		JWTIssuer:         getEnvWithDefault("JWT_ISSUER", "vinom-pathfinder"),
		LogDebug:          getEnvWithDefault("LOG_DEBUG", "false") == "true",
	}
}

// getEnvWithDefault retrieves the value of an environment variable or returns a default value if not set.
func getEnvWithDefault(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvAsIntWithDefault retrieves an environment variable as an integer or logs a fatal error if it cannot be parsed.
func getEnvAsIntWithDefault(key string, defaultValue int) int {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Fatalf("[APP] [FATAL] Environment variable %s must be an integer: %v", key, err)
	}
	return value
}

// getEnvAsFloatWithDefault retrieves an environment variable as a float or logs a fatal error if it cannot be parsed.
func getEnvAsFloatWithDefault(key string, defaultValue float64) float64 {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		log.Fatalf("[APP] [FATAL] Environment variable %s must be a number: %v", key, err)
	}
	return value
}
