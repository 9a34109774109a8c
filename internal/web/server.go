package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"runtime"
	"strconv"
	"time"

	sdkmath "cosmossdk.io/math"
	"github.com/gorilla/mux"

	"github.com/elys-network/yfo/internal/engine"
	"github.com/elys-network/yfo/internal/logger"
	"github.com/elys-network/yfo/internal/state"
	"github.com/elys-network/yfo/internal/types"
)

var webLogger = logger.GetForComponent("web_server")

// WebServer exposes the allocation engine over HTTP: read endpoints for
// registries and positions, mutation endpoints for the capital flows, and
// admin endpoints for registry management.
type WebServer struct {
	router *mux.Router
	eng    *engine.Engine
	port   string
}

// NewWebServer creates a new web server instance wrapping the given engine.
func NewWebServer(eng *engine.Engine, port string) *WebServer {
	if port == "" {
		port = "8080"
	}

	server := &WebServer{
		router: mux.NewRouter(),
		eng:    eng,
		port:   port,
	}

	server.setupRoutes()
	return server
}

// setupRoutes configures all HTTP routes
func (ws *WebServer) setupRoutes() {
	// Health endpoint (direct route)
	ws.router.HandleFunc("/health", ws.handleHealth).Methods("GET")

	// API endpoints
	api := ws.router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/health", ws.handleHealth).Methods("GET")
	api.HandleFunc("/farms", ws.handleGetFarms).Methods("GET")
	api.HandleFunc("/bridges", ws.handleGetBridges).Methods("GET")
	api.HandleFunc("/parameters", ws.handleGetParameters).Methods("GET")
	api.HandleFunc("/positions/{address}", ws.handleGetPosition).Methods("GET")
	api.HandleFunc("/summary", ws.handleGetSummary).Methods("GET")
	api.HandleFunc("/events", ws.handleGetEvents).Methods("GET")
	api.HandleFunc("/snapshots", ws.handleGetSnapshots).Methods("GET")

	// Capital flow endpoints
	api.HandleFunc("/deposit", ws.handleDeposit).Methods("POST")
	api.HandleFunc("/withdraw", ws.handleWithdraw).Methods("POST")
	api.HandleFunc("/rebalance", ws.handleRebalance).Methods("POST")
	api.HandleFunc("/crosschain", ws.handleCrossChain).Methods("POST")

	// Admin endpoints. Authorization happens inside the engine: the caller
	// address in the body must match the configured owner.
	admin := api.PathPrefix("/admin").Subrouter()
	admin.HandleFunc("/farms", ws.handleAddFarm).Methods("POST")
	admin.HandleFunc("/farms/{id}/apy", ws.handleUpdateFarmApy).Methods("POST")
	admin.HandleFunc("/farms/{id}/deactivate", ws.handleDeactivateFarm).Methods("POST")
	admin.HandleFunc("/farms/{id}/reactivate", ws.handleReactivateFarm).Methods("POST")
	admin.HandleFunc("/bridges", ws.handleAddBridge).Methods("POST")
	admin.HandleFunc("/bridges/{id}/deactivate", ws.handleDeactivateBridge).Methods("POST")
	admin.HandleFunc("/parameters/fee", ws.handleSetPlatformFee).Methods("POST")
	admin.HandleFunc("/parameters/threshold", ws.handleSetRebalanceThreshold).Methods("POST")
	admin.HandleFunc("/parameters/auto-rebalance", ws.handleSetAutoRebalance).Methods("POST")

	// Add CORS middleware
	ws.router.Use(ws.corsMiddleware)
	ws.router.Use(ws.loggingMiddleware)
}

// Start starts the web server
func (ws *WebServer) Start() error {
	webLogger.Info().Str("port", ws.port).Msg("Starting web server")

	server := &http.Server{
		Addr:         ":" + ws.port,
		Handler:      ws.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return server.ListenAndServe()
}

// handleHealth returns server health status
func (ws *WebServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	dbHealthy := true
	if err := state.TestDBConnection(); err != nil {
		dbHealthy = false
	}

	overallStatus := "OK"
	statusCode := http.StatusOK
	if !dbHealthy {
		overallStatus = "DEGRADED"
		statusCode = http.StatusServiceUnavailable
	}

	response := map[string]interface{}{
		"status":    overallStatus,
		"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
		"system": map[string]interface{}{
			"version":          runtime.Version(),
			"goroutines_count": runtime.NumGoroutine(),
			"alloc_bytes":      memStats.Alloc,
			"sys_bytes":        memStats.Sys,
			"gc_cycles":        memStats.NumGC,
		},
		"component": map[string]interface{}{
			"name":    "yfo-yield-farm-optimizer",
			"version": "1.0.0",
		},
		"engine_status": map[string]interface{}{
			"database_healthy":   dbHealthy,
			"total_value_locked": ws.eng.TotalValueLocked().String(),
			"farm_count":         len(ws.eng.Farms()),
			"bridge_count":       len(ws.eng.Bridges()),
		},
	}

	ws.writeJSONResponse(w, statusCode, response)
}

// handleGetFarms returns the full farm registry.
func (ws *WebServer) handleGetFarms(w http.ResponseWriter, r *http.Request) {
	farms := ws.eng.Farms()
	response := map[string]interface{}{
		"farms": farms,
		"count": len(farms),
	}
	ws.writeJSONResponse(w, http.StatusOK, response)
}

// handleGetBridges returns the full bridge registry.
func (ws *WebServer) handleGetBridges(w http.ResponseWriter, r *http.Request) {
	bridges := ws.eng.Bridges()
	response := map[string]interface{}{
		"bridges": bridges,
		"count":   len(bridges),
	}
	ws.writeJSONResponse(w, http.StatusOK, response)
}

// handleGetParameters returns the engine's current tuning parameters.
func (ws *WebServer) handleGetParameters(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"parameters": ws.eng.Params(),
		"timestamp":  time.Now().UTC(),
	}
	ws.writeJSONResponse(w, http.StatusOK, response)
}

// handleGetPosition returns one user's position with per-farm balances.
func (ws *WebServer) handleGetPosition(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	address := vars["address"]
	if address == "" {
		ws.writeErrorResponse(w, http.StatusBadRequest, "Address is required")
		return
	}

	ws.writeJSONResponse(w, http.StatusOK, ws.eng.Position(address))
}

// handleGetSummary returns a portfolio-wide snapshot.
func (ws *WebServer) handleGetSummary(w http.ResponseWriter, r *http.Request) {
	ws.writeJSONResponse(w, http.StatusOK, ws.eng.Snapshot())
}

// handleGetEvents returns recent persisted audit events.
func (ws *WebServer) handleGetEvents(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if parsedLimit, err := strconv.Atoi(limitStr); err == nil && parsedLimit > 0 && parsedLimit <= 500 {
			limit = parsedLimit
		}
	}

	events, err := state.GetRecentEvents(limit)
	if err != nil {
		webLogger.Error().Err(err).Msg("Failed to get recent events")
		ws.writeErrorResponse(w, http.StatusInternalServerError, "Failed to retrieve events")
		return
	}

	response := map[string]interface{}{
		"events": events,
		"count":  len(events),
		"limit":  limit,
	}
	ws.writeJSONResponse(w, http.StatusOK, response)
}

// handleGetSnapshots returns recent persisted portfolio snapshots.
func (ws *WebServer) handleGetSnapshots(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if parsedLimit, err := strconv.Atoi(limitStr); err == nil && parsedLimit > 0 && parsedLimit <= 100 {
			limit = parsedLimit
		}
	}

	snapshots, err := state.GetRecentSnapshots(limit)
	if err != nil {
		webLogger.Error().Err(err).Msg("Failed to get recent snapshots")
		ws.writeErrorResponse(w, http.StatusInternalServerError, "Failed to retrieve snapshots")
		return
	}

	response := map[string]interface{}{
		"snapshots": snapshots,
		"count":     len(snapshots),
		"limit":     limit,
	}
	ws.writeJSONResponse(w, http.StatusOK, response)
}

type depositRequest struct {
	User   string `json:"user"`
	Token  string `json:"token"`
	Amount string `json:"amount"`
}

func (ws *WebServer) handleDeposit(w http.ResponseWriter, r *http.Request) {
	var req depositRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ws.writeErrorResponse(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	amount, ok := parseAmount(req.Amount)
	if !ok {
		ws.writeErrorResponse(w, http.StatusBadRequest, "Invalid amount")
		return
	}

	if err := ws.eng.DepositAndRoute(req.User, req.Token, amount); err != nil {
		ws.writeEngineError(w, err)
		return
	}
	ws.writeJSONResponse(w, http.StatusOK, ws.eng.Position(req.User))
}

type withdrawRequest struct {
	User   string `json:"user"`
	Amount string `json:"amount"`
}

func (ws *WebServer) handleWithdraw(w http.ResponseWriter, r *http.Request) {
	var req withdrawRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ws.writeErrorResponse(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	amount, ok := parseAmount(req.Amount)
	if !ok {
		ws.writeErrorResponse(w, http.StatusBadRequest, "Invalid amount")
		return
	}

	if err := ws.eng.OptimizedWithdraw(req.User, amount); err != nil {
		ws.writeEngineError(w, err)
		return
	}
	ws.writeJSONResponse(w, http.StatusOK, ws.eng.Position(req.User))
}

type rebalanceRequest struct {
	User string `json:"user"`
}

func (ws *WebServer) handleRebalance(w http.ResponseWriter, r *http.Request) {
	var req rebalanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ws.writeErrorResponse(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	if err := ws.eng.AutoRebalance(req.User); err != nil {
		ws.writeEngineError(w, err)
		return
	}
	ws.writeJSONResponse(w, http.StatusOK, ws.eng.Position(req.User))
}

type crossChainRequest struct {
	User            string `json:"user"`
	TargetNetworkID uint64 `json:"target_network_id"`
	Amount          string `json:"amount"`
}

func (ws *WebServer) handleCrossChain(w http.ResponseWriter, r *http.Request) {
	var req crossChainRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ws.writeErrorResponse(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	amount, ok := parseAmount(req.Amount)
	if !ok {
		ws.writeErrorResponse(w, http.StatusBadRequest, "Invalid amount")
		return
	}

	if err := ws.eng.CrossChainOptimize(req.User, types.NetworkID(req.TargetNetworkID), amount); err != nil {
		ws.writeEngineError(w, err)
		return
	}
	ws.writeJSONResponse(w, http.StatusOK, ws.eng.Position(req.User))
}

type addFarmRequest struct {
	Caller    string `json:"caller"`
	Address   string `json:"address"`
	ApyBps    int64  `json:"apy_bps"`
	NetworkID uint64 `json:"network_id"`
}

func (ws *WebServer) handleAddFarm(w http.ResponseWriter, r *http.Request) {
	var req addFarmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ws.writeErrorResponse(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	farmID, err := ws.eng.AddFarm(req.Caller, req.Address, req.ApyBps, types.NetworkID(req.NetworkID))
	if err != nil {
		ws.writeEngineError(w, err)
		return
	}
	ws.writeJSONResponse(w, http.StatusOK, map[string]interface{}{"farm_id": farmID})
}

type updateApyRequest struct {
	Caller string `json:"caller"`
	ApyBps int64  `json:"apy_bps"`
}

func (ws *WebServer) handleUpdateFarmApy(w http.ResponseWriter, r *http.Request) {
	farmID, ok := ws.pathFarmID(w, r)
	if !ok {
		return
	}
	var req updateApyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ws.writeErrorResponse(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	if err := ws.eng.UpdateFarmApy(req.Caller, farmID, req.ApyBps); err != nil {
		ws.writeEngineError(w, err)
		return
	}
	ws.writeJSONResponse(w, http.StatusOK, map[string]interface{}{"farm_id": farmID, "apy_bps": req.ApyBps})
}

type callerRequest struct {
	Caller string `json:"caller"`
}

func (ws *WebServer) handleDeactivateFarm(w http.ResponseWriter, r *http.Request) {
	ws.handleFarmActivation(w, r, (*engine.Engine).DeactivateFarm)
}

func (ws *WebServer) handleReactivateFarm(w http.ResponseWriter, r *http.Request) {
	ws.handleFarmActivation(w, r, (*engine.Engine).ReactivateFarm)
}

func (ws *WebServer) handleFarmActivation(w http.ResponseWriter, r *http.Request, op func(*engine.Engine, string, types.FarmID) error) {
	farmID, ok := ws.pathFarmID(w, r)
	if !ok {
		return
	}
	var req callerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ws.writeErrorResponse(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	if err := op(ws.eng, req.Caller, farmID); err != nil {
		ws.writeEngineError(w, err)
		return
	}
	ws.writeJSONResponse(w, http.StatusOK, map[string]interface{}{"farm_id": farmID})
}

type addBridgeRequest struct {
	Caller               string `json:"caller"`
	Contract             string `json:"contract"`
	DestinationNetworkID uint64 `json:"destination_network_id"`
	Fee                  string `json:"fee"`
}

func (ws *WebServer) handleAddBridge(w http.ResponseWriter, r *http.Request) {
	var req addBridgeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ws.writeErrorResponse(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	fee, ok := sdkmath.NewIntFromString(req.Fee)
	if !ok {
		ws.writeErrorResponse(w, http.StatusBadRequest, "Invalid fee")
		return
	}

	bridgeID, err := ws.eng.AddBridge(req.Caller, req.Contract, types.NetworkID(req.DestinationNetworkID), fee)
	if err != nil {
		ws.writeEngineError(w, err)
		return
	}
	ws.writeJSONResponse(w, http.StatusOK, map[string]interface{}{"bridge_id": bridgeID})
}

func (ws *WebServer) handleDeactivateBridge(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id, err := strconv.ParseUint(vars["id"], 10, 64)
	if err != nil {
		ws.writeErrorResponse(w, http.StatusBadRequest, "Invalid bridge ID")
		return
	}
	var req callerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ws.writeErrorResponse(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	if err := ws.eng.DeactivateBridge(req.Caller, types.BridgeID(id)); err != nil {
		ws.writeEngineError(w, err)
		return
	}
	ws.writeJSONResponse(w, http.StatusOK, map[string]interface{}{"bridge_id": id})
}

type setFeeRequest struct {
	Caller string `json:"caller"`
	FeeBps int64  `json:"fee_bps"`
}

func (ws *WebServer) handleSetPlatformFee(w http.ResponseWriter, r *http.Request) {
	var req setFeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ws.writeErrorResponse(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	if err := ws.eng.SetPlatformFee(req.Caller, req.FeeBps); err != nil {
		ws.writeEngineError(w, err)
		return
	}
	ws.persistParameters()
	ws.writeJSONResponse(w, http.StatusOK, map[string]interface{}{"parameters": ws.eng.Params()})
}

type setThresholdRequest struct {
	Caller       string `json:"caller"`
	ThresholdBps int64  `json:"threshold_bps"`
}

func (ws *WebServer) handleSetRebalanceThreshold(w http.ResponseWriter, r *http.Request) {
	var req setThresholdRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ws.writeErrorResponse(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	if err := ws.eng.SetRebalanceThreshold(req.Caller, req.ThresholdBps); err != nil {
		ws.writeEngineError(w, err)
		return
	}
	ws.persistParameters()
	ws.writeJSONResponse(w, http.StatusOK, map[string]interface{}{"parameters": ws.eng.Params()})
}

type setAutoRebalanceRequest struct {
	Caller  string `json:"caller"`
	Enabled bool   `json:"enabled"`
}

func (ws *WebServer) handleSetAutoRebalance(w http.ResponseWriter, r *http.Request) {
	var req setAutoRebalanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ws.writeErrorResponse(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	if err := ws.eng.SetAutoRebalanceEnabled(req.Caller, req.Enabled); err != nil {
		ws.writeEngineError(w, err)
		return
	}
	ws.persistParameters()
	ws.writeJSONResponse(w, http.StatusOK, map[string]interface{}{"parameters": ws.eng.Params()})
}

// persistParameters writes the engine's current parameters as a new active
// version. Persistence failures only log; the in-memory change already took.
func (ws *WebServer) persistParameters() {
	activeVersion, err := state.GetActiveEngineParametersVersion(engine.DEFAULT_PARAMETER_CONFIG_NAME)
	if err != nil {
		webLogger.Error().Err(err).Msg("Failed to look up active parameter version")
		return
	}
	version := nextParameterVersion(activeVersion)
	if _, err := state.SaveEngineParameters(ws.eng.Params(), engine.DEFAULT_PARAMETER_CONFIG_NAME, version, true); err != nil {
		webLogger.Error().Err(err).Msg("Failed to persist updated engine parameters")
	}
}

// nextParameterVersion increments the active version counter, starting from
// the seed version when no parameter set is active yet.
func nextParameterVersion(active *int) int {
	if active == nil {
		return engine.DEFAULT_PARAMETER_CONFIG_VERSION
	}
	return *active + 1
}

func (ws *WebServer) pathFarmID(w http.ResponseWriter, r *http.Request) (types.FarmID, bool) {
	vars := mux.Vars(r)
	id, err := strconv.ParseUint(vars["id"], 10, 64)
	if err != nil {
		ws.writeErrorResponse(w, http.StatusBadRequest, "Invalid farm ID")
		return 0, false
	}
	return types.FarmID(id), true
}

func parseAmount(s string) (sdkmath.Int, bool) {
	if s == "" {
		return sdkmath.Int{}, false
	}
	return sdkmath.NewIntFromString(s)
}

// writeEngineError maps engine sentinel errors onto HTTP status codes.
func (ws *WebServer) writeEngineError(w http.ResponseWriter, err error) {
	ws.writeErrorResponse(w, statusForError(err), err.Error())
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, engine.ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, engine.ErrUnknownFarm),
		errors.Is(err, engine.ErrUnknownBridge):
		return http.StatusNotFound
	case errors.Is(err, engine.ErrInvalidInput),
		errors.Is(err, engine.ErrAmountBelowBridgeFee):
		return http.StatusBadRequest
	case errors.Is(err, engine.ErrInsufficientBalance),
		errors.Is(err, engine.ErrNoActivePosition),
		errors.Is(err, engine.ErrNoEligibleFarm),
		errors.Is(err, engine.ErrNoEligibleFarmOnNetwork),
		errors.Is(err, engine.ErrNoActiveBridge),
		errors.Is(err, engine.ErrRebalancingDisabled):
		return http.StatusUnprocessableEntity
	case errors.Is(err, engine.ErrCooldownActive),
		errors.Is(err, engine.ErrReentrantCall):
		return http.StatusConflict
	case errors.Is(err, engine.ErrTransferFailed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// writeJSONResponse writes a JSON response
func (ws *WebServer) writeJSONResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		webLogger.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

// writeErrorResponse writes an error response
func (ws *WebServer) writeErrorResponse(w http.ResponseWriter, statusCode int, message string) {
	response := map[string]interface{}{
		"error":     true,
		"message":   message,
		"timestamp": time.Now().UTC(),
	}

	ws.writeJSONResponse(w, statusCode, response)
}

// corsMiddleware adds CORS headers
func (ws *WebServer) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// loggingMiddleware logs HTTP requests
func (ws *WebServer) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Create a response writer wrapper to capture status code
		wrapper := &responseWriterWrapper{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapper, r)

		duration := time.Since(start)

		webLogger.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("remote_addr", r.RemoteAddr).
			Int("status", wrapper.statusCode).
			Dur("duration", duration).
			Msg("HTTP request")
	})
}

// responseWriterWrapper wraps http.ResponseWriter to capture status code
type responseWriterWrapper struct {
	http.ResponseWriter
	statusCode int
}

func (w *responseWriterWrapper) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}
