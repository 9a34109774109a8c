package main

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/elys-network/yfo/internal/config"
	"github.com/elys-network/yfo/internal/engine"
	"github.com/elys-network/yfo/internal/logger"
	"github.com/elys-network/yfo/internal/simulations"
	"github.com/elys-network/yfo/internal/state"
	"github.com/elys-network/yfo/internal/transfer"
	"github.com/elys-network/yfo/internal/types"
	"github.com/elys-network/yfo/internal/web"
)

const (
	SNAPSHOT_INTERVAL = 10 * time.Minute
)

// main is the entry point for the YFO system.
func main() {
	// --- 1. Initialization Phase ---
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg("Warning: .env file not found. Relying on OS environment variables.")
	}

	// Load configuration from environment variables
	if err := config.LoadConfig(); err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logger.Initialize(os.Getenv("LOG_LEVEL"))
	log.Info().Msg("YFO Allocation Engine Starting...")

	// Initialize Database Connection
	dbCfg := state.DBConfig{
		Host: os.Getenv("DB_HOST"), Port: mustAtoi(os.Getenv("DB_PORT"), 5432),
		User: os.Getenv("DB_USER"), Password: os.Getenv("DB_PASSWORD"),
		DBName: os.Getenv("DB_NAME"), SSLMode: os.Getenv("DB_SSLMODE"),
	}
	if err := state.InitDB(dbCfg); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer state.CloseDB()
	if err := state.EnsureSchema(); err != nil {
		log.Fatal().Err(err).Msg("Failed to ensure database schema")
	}

	// Load Engine Parameters
	engineParams, err := state.LoadActiveEngineParameters(engine.DEFAULT_PARAMETER_CONFIG_NAME)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to load active engine parameters, using defaults and saving.")
		defaultParams := config.DefaultEngineParameters
		if _, err := state.SaveEngineParameters(defaultParams, engine.DEFAULT_PARAMETER_CONFIG_NAME, engine.DEFAULT_PARAMETER_CONFIG_VERSION, true); err != nil {
			log.Fatal().Err(err).Msg("Failed to save initial default engine parameters.")
		}
		engineParams = &defaultParams
	}
	log.Info().Msg("Engine parameters loaded successfully.")

	// --- 2. Engine Initialization (with Safety Switch) ---
	yfoMode := os.Getenv("YFO_MODE")

	if yfoMode == "sim" {
		log.Info().Msg("Running deterministic scenario (YFO_MODE=sim).")
		snapshot, err := simulations.RunScenario()
		if err != nil {
			log.Fatal().Err(err).Msg("Scenario failed")
		}
		if _, err := state.SavePortfolioSnapshot(snapshot); err != nil {
			log.Error().Err(err).Msg("Failed to persist scenario snapshot")
		}
		return
	}
	if yfoMode != "serve" {
		log.Fatal().Msg("YFO_MODE is not set to 'serve' or 'sim'. Halting to prevent accidental execution.")
	}

	// The in-memory bank is the settlement backend. Swapping in a real
	// settlement client is a matter of providing another TokenTransfer.
	bank := transfer.NewBank()

	engCfg := engine.Config{
		Owner:         config.Owner,
		FeeCollector:  config.FeeCollector,
		Asset:         config.Asset,
		HomeNetworkID: types.NetworkID(config.HomeNetworkID),
		Params:        *engineParams,
		Transfer:      bank,
		Recorder:      state.EventRecorder{},
	}

	eng, err := engine.New(engCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create engine instance")
	}
	log.Info().Msg("Engine instance created successfully")

	// --- 3. Start Web Server ---
	webPort := os.Getenv("WEB_PORT")
	if webPort == "" {
		webPort = "8080"
	}

	webServer := web.NewWebServer(eng, webPort)
	go func() {
		log.Info().Str("port", webPort).Str("url", "http://localhost:"+webPort).Msg("Starting YFO web API")
		if err := webServer.Start(); err != nil {
			log.Error().Err(err).Msg("Web server failed to start")
		}
	}()

	// --- 4. Periodic Snapshot Loop ---
	log.Info().Str("interval", SNAPSHOT_INTERVAL.String()).Msg("Starting snapshot loop")
	ticker := time.NewTicker(SNAPSHOT_INTERVAL)
	defer ticker.Stop()

	for range ticker.C {
		snapshot := eng.Snapshot()
		operationNumber, err := state.IncrementOperationNumber()
		if err != nil {
			log.Error().Err(err).Msg("Failed to increment operation counter")
			continue
		}
		snapshot.OperationNumber = operationNumber
		if _, err := state.SavePortfolioSnapshot(snapshot); err != nil {
			log.Error().Err(err).Msg("Failed to persist portfolio snapshot")
		}
	}
}

// Helper to convert string to int with a default value
func mustAtoi(s string, defaultValue int) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		return defaultValue
	}
	return i
}
