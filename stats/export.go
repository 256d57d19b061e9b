package stats

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/parquet-go/parquet-go"
	"github.com/parquet-go/parquet-go/compress/zstd"

	"github.com/wricardo/mcp-training/arcade/game/engine"
)

// ResultRow is the parquet layout of a stored result
type ResultRow struct {
	ID              string `parquet:"id"`
	PlayerID        string `parquet:"player_id,dict"`
	Game            string `parquet:"game,dict"`
	Score           int64  `parquet:"score"`
	DurationSeconds int32  `parquet:"duration_seconds"`
	CreatedAtMs     int64  `parquet:"created_at_ms"`
	CountersJSON    []byte `parquet:"counters_json,optional,zstd"`
}

// ExportParquet writes every result for game (all games when empty)
// recorded since the given time to outPath, atomically.
func (s *Store) ExportParquet(ctx context.Context, outPath string, game engine.GameID, since time.Time) (int, error) {
	records, err := s.Results(ctx, game, since)
	if err != nil {
		return 0, fmt.Errorf("load results: %w", err)
	}

	rows := make([]ResultRow, 0, len(records))
	for _, r := range records {
		counters, err := json.Marshal(r.Counters)
		if err != nil {
			return 0, err
		}
		rows = append(rows, ResultRow{
			ID:              r.ID.String(),
			PlayerID:        r.PlayerID,
			Game:            string(r.Game),
			Score:           int64(r.Score),
			DurationSeconds: int32(r.DurationSeconds),
			CreatedAtMs:     r.CreatedAt.UnixMilli(),
			CountersJSON:    counters,
		})
	}

	if err := WriteResultsParquet(outPath, rows); err != nil {
		return 0, err
	}
	return len(rows), nil
}

// WriteResultsParquet writes rows to a temp file and renames it into place
func WriteResultsParquet(outPath string, rows []ResultRow) error {
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	tmpPath := outPath + ".tmp"
	_ = os.Remove(tmpPath)

	if err := parquet.WriteFile(tmpPath, rows,
		parquet.Compression(&zstd.Codec{Level: zstd.SpeedBetterCompression}),
		parquet.KeyValueMetadata("schema", "game_result_v1"),
	); err != nil {
		return fmt.Errorf("write parquet: %w", err)
	}

	if err := os.Rename(tmpPath, outPath); err != nil {
		return fmt.Errorf("rename parquet: %w", err)
	}
	return nil
}
