package config

import (
	"errors"
	"os"
	"strconv"

	"github.com/rs/zerolog/log"
)

// AppConfig holds all application configuration loaded from environment
// variables. These are populated at startup by the LoadConfig function.
var (
	// Owner is the address allowed to call administrative operations.
	Owner string
	// FeeCollector receives the platform fee cut of every deposit.
	FeeCollector string
	// Asset is the settlement token denom the engine accepts.
	Asset string
	// HomeNetworkID is the logical network this instance runs on.
	HomeNetworkID uint64
)

// LoadConfig loads configuration from environment variables and sets the
// global config vars. All environment variables are required and must be set.
func LoadConfig() error {
	log.Info().Msg("Loading application configuration from environment variables...")

	var err error

	Owner, err = getEnv("YFO_OWNER")
	if err != nil {
		return err
	}

	FeeCollector, err = getEnv("YFO_FEE_COLLECTOR")
	if err != nil {
		return err
	}

	Asset, err = getEnv("YFO_ASSET")
	if err != nil {
		return err
	}

	HomeNetworkID, err = getEnvAsUint64("YFO_HOME_NETWORK_ID")
	if err != nil {
		return err
	}

	log.Debug().
		Str("Owner", Owner).
		Str("Asset", Asset).
		Uint64("HomeNetworkID", HomeNetworkID).
		Msg("Configuration loaded successfully.")

	return nil
}

// getEnv retrieves a string environment variable. Returns error if not set.
func getEnv(key string) (string, error) {
	if value, exists := os.LookupEnv(key); exists {
		return value, nil
	}
	return "", errors.New("environment variable " + key + " is required but not set")
}

// getEnvAsUint64 retrieves an environment variable as a uint64. Returns error if not set or invalid.
func getEnvAsUint64(key string) (uint64, error) {
	valueStr, err := getEnv(key)
	if err != nil {
		return 0, err
	}
	value, err := strconv.ParseUint(valueStr, 10, 64)
	if err != nil {
		return 0, errors.New("environment variable " + key + " must be a valid uint64, got: " + valueStr)
	}
	return value, nil
}
