// ./internal/state/events_store.go
package state

import (
	"database/sql"
	"fmt"

	sdkmath "cosmossdk.io/math"
	"github.com/elys-network/yfo/internal/logger"
	"github.com/elys-network/yfo/internal/types"
)

var eventsLogger = logger.GetForComponent("events_store")

// EventRecorder persists engine audit events to the database. It satisfies
// the engine's Recorder interface so it can be handed to engine.New directly.
type EventRecorder struct{}

// Record writes the event. Persistence failures are logged, never propagated:
// the engine operation that produced the event has already committed.
func (EventRecorder) Record(event types.Event) {
	if err := SaveEvent(event); err != nil {
		eventsLogger.Error().Err(err).
			Str("operation_id", event.OperationID).
			Str("event_type", string(event.Type)).
			Msg("Failed to persist engine event")
	}
}

// SaveEvent inserts a single engine event. Amounts travel as strings so the
// NUMERIC(40, 0) columns keep full integer precision.
func SaveEvent(event types.Event) error {
	if DB == nil {
		return fmt.Errorf("database not initialized")
	}

	stmt := `
        INSERT INTO engine_events (
            operation_id, event_type, user_address,
            farm_id, source_farm_id, network_id, source_network_id,
            amount, fee, shortfall, event_timestamp
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);`

	_, err := DB.Exec(
		stmt,
		event.OperationID, string(event.Type), nullableString(event.User),
		int64(event.FarmID), int64(event.SourceFarmID), int64(event.NetworkID), int64(event.SourceNetworkID),
		nullableInt(event.Amount), nullableInt(event.Fee), nullableInt(event.Shortfall),
		event.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("failed to insert engine event: %w", err)
	}
	return nil
}

// GetRecentEvents returns the most recent events, newest first.
func GetRecentEvents(limit int) ([]types.Event, error) {
	if DB == nil {
		return nil, fmt.Errorf("database not initialized")
	}
	if limit <= 0 {
		limit = 50
	}

	query := `
        SELECT operation_id, event_type, COALESCE(user_address, ''),
               farm_id, source_farm_id, network_id, source_network_id,
               COALESCE(amount::TEXT, '0'), COALESCE(fee::TEXT, '0'), COALESCE(shortfall::TEXT, '0'),
               event_timestamp
        FROM engine_events
        ORDER BY event_timestamp DESC, event_id DESC
        LIMIT $1;`

	rows, err := DB.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query engine events: %w", err)
	}
	defer rows.Close()

	var events []types.Event
	for rows.Next() {
		var (
			ev                       types.Event
			eventType                string
			farmID, sourceFarmID     int64
			networkID, sourceNetwork int64
			amount, fee, shortfall   string
		)
		err = rows.Scan(
			&ev.OperationID, &eventType, &ev.User,
			&farmID, &sourceFarmID, &networkID, &sourceNetwork,
			&amount, &fee, &shortfall,
			&ev.Timestamp,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan engine event row: %w", err)
		}
		ev.Type = types.EventType(eventType)
		ev.FarmID = types.FarmID(farmID)
		ev.SourceFarmID = types.FarmID(sourceFarmID)
		ev.NetworkID = types.NetworkID(networkID)
		ev.SourceNetworkID = types.NetworkID(sourceNetwork)
		ev.Amount = mustParseInt(amount)
		ev.Fee = mustParseInt(fee)
		ev.Shortfall = mustParseInt(shortfall)
		events = append(events, ev)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating engine event rows: %w", err)
	}
	return events, nil
}

func nullableString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullableInt(v sdkmath.Int) sql.NullString {
	if v.IsNil() {
		return sql.NullString{}
	}
	return sql.NullString{String: v.String(), Valid: true}
}

func mustParseInt(s string) sdkmath.Int {
	v, ok := sdkmath.NewIntFromString(s)
	if !ok {
		eventsLogger.Error().Str("value", s).Msg("Unparseable numeric value in engine_events row")
		return sdkmath.ZeroInt()
	}
	return v
}
