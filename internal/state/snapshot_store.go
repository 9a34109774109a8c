// ./internal/state/snapshot_store.go
package state

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/elys-network/yfo/internal/types"
	"github.com/rs/zerolog/log"
)

// SavePortfolioSnapshot saves a point-in-time view of the engine's registries
// and tracked TVL.
func SavePortfolioSnapshot(snapshot types.PortfolioSnapshot) (int64, error) {
	if DB == nil {
		return 0, fmt.Errorf("database not initialized")
	}

	farmsJSON, err := json.Marshal(snapshot.Farms)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal farms: %w", err)
	}

	query := `
		INSERT INTO portfolio_snapshots (
			operation_number, snapshot_timestamp,
			total_value_locked, farm_count, bridge_count, farms
		) VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING snapshot_id;
	`

	var snapshotID int64
	err = DB.QueryRow(
		query,
		snapshot.OperationNumber, snapshot.Timestamp,
		snapshot.TotalValueLocked.String(), snapshot.FarmCount, snapshot.BridgeCount, farmsJSON,
	).Scan(&snapshotID)

	if err != nil {
		return 0, fmt.Errorf("failed to save portfolio snapshot: %w", err)
	}

	log.Info().
		Int64("snapshot_id", snapshotID).
		Int("operation_number", snapshot.OperationNumber).
		Str("total_value_locked", snapshot.TotalValueLocked.String()).
		Msg("Portfolio snapshot saved to database")

	return snapshotID, nil
}

// GetRecentSnapshots returns the most recent portfolio snapshots, newest first.
func GetRecentSnapshots(limit int) ([]types.PortfolioSnapshot, error) {
	if DB == nil {
		return nil, fmt.Errorf("database not initialized")
	}
	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT operation_number, snapshot_timestamp, total_value_locked::TEXT, farm_count, bridge_count, farms
		FROM portfolio_snapshots
		ORDER BY snapshot_timestamp DESC
		LIMIT $1;
	`

	rows, err := DB.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query portfolio snapshots: %w", err)
	}
	defer rows.Close()

	var snapshots []types.PortfolioSnapshot
	for rows.Next() {
		var (
			snap      types.PortfolioSnapshot
			tvl       string
			farmsJSON []byte
		)
		err = rows.Scan(&snap.OperationNumber, &snap.Timestamp, &tvl, &snap.FarmCount, &snap.BridgeCount, &farmsJSON)
		if err != nil {
			return nil, fmt.Errorf("failed to scan portfolio snapshot row: %w", err)
		}
		snap.TotalValueLocked = mustParseInt(tvl)
		if len(farmsJSON) > 0 {
			if err := json.Unmarshal(farmsJSON, &snap.Farms); err != nil {
				return nil, fmt.Errorf("failed to unmarshal farms for snapshot: %w", err)
			}
		}
		snapshots = append(snapshots, snap)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating portfolio snapshot rows: %w", err)
	}
	return snapshots, nil
}

// GetCurrentOperationNumber retrieves the current operation number from the database
func GetCurrentOperationNumber() (int, error) {
	if DB == nil {
		return 0, fmt.Errorf("database not initialized")
	}

	query := `SELECT current_operation FROM operation_counter WHERE id = 1;`

	var currentOperation int
	row := DB.QueryRow(query)
	err := row.Scan(&currentOperation)

	if err != nil {
		if err == sql.ErrNoRows {
			// This should not happen due to the INSERT in EnsureSchema
			log.Warn().Msg("No operation counter row found, initializing to 0")
			return 0, nil
		}
		return 0, fmt.Errorf("failed to get current operation number: %w", err)
	}

	return currentOperation, nil
}

// IncrementOperationNumber increments the operation counter and returns the new value
func IncrementOperationNumber() (int, error) {
	if DB == nil {
		return 0, fmt.Errorf("database not initialized")
	}

	updateQuery := `
		UPDATE operation_counter
		SET current_operation = current_operation + 1,
		    updated_at = CURRENT_TIMESTAMP
		WHERE id = 1
		RETURNING current_operation;`

	var newOperation int
	row := DB.QueryRow(updateQuery)
	err := row.Scan(&newOperation)

	if err != nil {
		return 0, fmt.Errorf("failed to increment operation number: %w", err)
	}

	log.Debug().Int("newOperation", newOperation).Msg("Incremented operation counter")
	return newOperation, nil
}
