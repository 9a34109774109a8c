package engine

import (
	"fmt"
	"sync"
	"time"

	sdkmath "cosmossdk.io/math"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/elys-network/yfo/internal/logger"
	"github.com/elys-network/yfo/internal/transfer"
	"github.com/elys-network/yfo/internal/types"
)

const (
	// Export constants for use in main.go
	DEFAULT_PARAMETER_CONFIG_NAME    = "default_yfo_parameters"
	DEFAULT_PARAMETER_CONFIG_VERSION = 1

	// basisPointDenom is the basis-point denominator: 10000 bp = 100%.
	basisPointDenom = 10_000

	// maxPlatformFeeBps caps the deposit fee at 10%.
	maxPlatformFeeBps = 1_000
)

// Recorder receives the audit events emitted by engine operations.
type Recorder interface {
	Record(event types.Event)
}

type nopRecorder struct{}

func (nopRecorder) Record(types.Event) {}

// Config holds the dependencies for creating a new Engine instance.
type Config struct {
	// Owner is the only address allowed to call administrative operations.
	Owner string
	// FeeCollector receives the platform fee cut of every deposit.
	FeeCollector string
	// Asset is the single settlement token the engine accepts.
	Asset string
	// HomeNetworkID is the logical network this engine instance runs on.
	HomeNetworkID types.NetworkID
	// Params is the initial tuning parameter set.
	Params types.EngineParameters
	// Transfer is the external settlement capability.
	Transfer transfer.TokenTransfer
	// Recorder receives audit events. Optional; a no-op sink is used when nil.
	Recorder Recorder
}

// Engine is the allocation and rebalancing core: the farm and bridge
// registries, the per-user position ledger, and the flows that move capital
// between them. It is a single owned aggregate; every public operation runs
// to completion with exclusive access before the next one starts, and an
// overlapping invocation fails fast instead of queueing.
type Engine struct {
	mu     sync.Mutex
	logger zerolog.Logger

	owner         string
	feeCollector  string
	asset         string
	homeNetworkID types.NetworkID
	params        types.EngineParameters
	transfer      transfer.TokenTransfer
	recorder      Recorder
	clock         func() time.Time

	farms   []types.Farm
	bridges []types.Bridge

	positions      map[string]*types.UserPosition
	balances       map[string]map[types.FarmID]sdkmath.Int
	activeFarms    map[string][]types.FarmID
	activeFarmSeen map[string]map[types.FarmID]bool

	// Global accumulator, maintained incrementally and never recomputed
	// from the farm table.
	totalValueLocked sdkmath.Int
}

// New creates an Engine with dependency injection.
func New(cfg Config) (*Engine, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("engine configuration validation failed: %w", err)
	}

	recorder := cfg.Recorder
	if recorder == nil {
		recorder = nopRecorder{}
	}

	eng := &Engine{
		logger:           logger.GetForComponent("engine_core"),
		owner:            cfg.Owner,
		feeCollector:     cfg.FeeCollector,
		asset:            cfg.Asset,
		homeNetworkID:    cfg.HomeNetworkID,
		params:           cfg.Params,
		transfer:         cfg.Transfer,
		recorder:         recorder,
		clock:            time.Now,
		positions:        make(map[string]*types.UserPosition),
		balances:         make(map[string]map[types.FarmID]sdkmath.Int),
		activeFarms:      make(map[string][]types.FarmID),
		activeFarmSeen:   make(map[string]map[types.FarmID]bool),
		totalValueLocked: sdkmath.ZeroInt(),
	}

	eng.logger.Info().
		Str("owner", eng.owner).
		Str("asset", eng.asset).
		Uint64("homeNetworkID", uint64(eng.homeNetworkID)).
		Int64("platformFeeBps", eng.params.PlatformFeeBps).
		Msg("Engine instance created")

	return eng, nil
}

func validateConfig(cfg Config) error {
	if cfg.Owner == "" {
		return fmt.Errorf("owner cannot be empty")
	}
	if cfg.FeeCollector == "" {
		return fmt.Errorf("fee collector cannot be empty")
	}
	if cfg.Asset == "" {
		return fmt.Errorf("settlement asset cannot be empty")
	}
	if cfg.Transfer == nil {
		return fmt.Errorf("token transfer capability cannot be nil")
	}
	if cfg.Params.PlatformFeeBps < 0 || cfg.Params.PlatformFeeBps > maxPlatformFeeBps {
		return fmt.Errorf("platform fee must be between 0 and %d bps", maxPlatformFeeBps)
	}
	if cfg.Params.RebalanceThresholdBps < 0 {
		return fmt.Errorf("rebalance threshold cannot be negative")
	}
	if cfg.Params.CooldownSeconds <= 0 {
		return fmt.Errorf("cooldown must be positive")
	}
	return nil
}

// WithClock overrides the engine clock for deterministic tests and
// simulation runs.
func (e *Engine) WithClock(clock func() time.Time) {
	if clock == nil {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.clock = clock
}

// begin acquires the single-entry guard. A call that arrives while another
// public operation holds the engine fails fast with ErrReentrantCall rather
// than queueing; the environment is expected to serialize legitimate
// callers.
func (e *Engine) begin() error {
	if !e.mu.TryLock() {
		return ErrReentrantCall
	}
	return nil
}

func (e *Engine) end() {
	e.mu.Unlock()
}

// emit stamps and forwards an audit event.
func (e *Engine) emit(operationID string, event types.Event) {
	event.OperationID = operationID
	event.Timestamp = e.clock()
	e.recorder.Record(event)
}

func newOperationID() string {
	return uuid.New().String()
}

// --- Read-only accessors ---

// Farms returns a copy of the farm registry.
func (e *Engine) Farms() []types.Farm {
	e.mu.Lock()
	defer e.mu.Unlock()
	farms := make([]types.Farm, len(e.farms))
	copy(farms, e.farms)
	return farms
}

// Bridges returns a copy of the bridge registry.
func (e *Engine) Bridges() []types.Bridge {
	e.mu.Lock()
	defer e.mu.Unlock()
	bridges := make([]types.Bridge, len(e.bridges))
	copy(bridges, e.bridges)
	return bridges
}

// Params returns the current tuning parameters.
func (e *Engine) Params() types.EngineParameters {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.params
}

// TotalValueLocked returns the global TVL accumulator.
func (e *Engine) TotalValueLocked() sdkmath.Int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.totalValueLocked
}

// Position returns a snapshot of one user's position, including zero-balance
// entries for every farm the user has ever deposited into.
func (e *Engine) Position(user string) types.PositionSnapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	snapshot := types.PositionSnapshot{
		Address:           user,
		TotalDeposited:    sdkmath.ZeroInt(),
		TotalEarned:       sdkmath.ZeroInt(),
		EstimatedEarnings: sdkmath.ZeroInt(),
	}
	pos, ok := e.positions[user]
	if !ok {
		return snapshot
	}
	snapshot.TotalDeposited = pos.TotalDeposited
	snapshot.TotalEarned = pos.TotalEarned
	snapshot.LastRebalanceTime = pos.LastRebalanceTime
	snapshot.EstimatedEarnings = e.estimateEarnings(user)

	for _, farmID := range e.activeFarms[user] {
		snapshot.FarmBalances = append(snapshot.FarmBalances, types.FarmBalance{
			FarmID:  farmID,
			ApyBps:  e.farms[farmID].ApyBps,
			Balance: e.balance(user, farmID),
		})
	}
	return snapshot
}

// Snapshot captures the whole portfolio for persistence and the dashboard.
func (e *Engine) Snapshot() types.PortfolioSnapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	farms := make([]types.Farm, len(e.farms))
	copy(farms, e.farms)

	return types.PortfolioSnapshot{
		Timestamp:        e.clock(),
		TotalValueLocked: e.totalValueLocked,
		FarmCount:        len(e.farms),
		BridgeCount:      len(e.bridges),
		Farms:            farms,
	}
}
