package store

import (
	"context"
	"database/sql"
	"time"
)

// StartRun records a new phase_runs row and returns its run id, used by
// phase.Runner to tag every log line and the eventual report (§4.5, §5).
func (s *Store) StartRun(ctx context.Context, phase, config string) (int64, error) {
	res, err := s.exec(ctx, `
		INSERT INTO phase_runs (phase, status, started_at, config)
		VALUES (?,?,?,?)`, phase, RunStarted, time.Now().UTC(), config)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// FinishRun marks a run completed, failed or interrupted and records the
// final processed/failed counters (§5: a SIGINT drains in-flight work,
// commits what finished, then marks the run interrupted rather than failed).
func (s *Store) FinishRun(ctx context.Context, runID int64, status string, processed, failed int, errText string) error {
	_, err := s.exec(ctx, `
		UPDATE phase_runs SET status = ?, images_processed = ?, images_failed = ?, completed_at = ?, error_text = ?
		WHERE run_id = ?`, status, processed, failed, time.Now().UTC(), errText, runID)
	return err
}

func (s *Store) GetRun(ctx context.Context, runID int64) (PhaseRun, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT run_id, phase, status, images_processed, images_failed, started_at, completed_at, COALESCE(error_text,''), COALESCE(config,'')
		FROM phase_runs WHERE run_id = ?`, runID)

	var r PhaseRun
	err := row.Scan(&r.RunID, &r.Phase, &r.Status, &r.ImagesProcessed, &r.ImagesFailed, &r.StartedAt, &r.CompletedAt, &r.ErrorText, &r.Config)
	if err == sql.ErrNoRows {
		return PhaseRun{}, ErrNotFound
	}
	return r, err
}

// LastRunForPhase returns the most recent run of phase, used to report
// whether the previous invocation finished cleanly before starting a new
// one with the same phase name.
func (s *Store) LastRunForPhase(ctx context.Context, phase string) (PhaseRun, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT run_id, phase, status, images_processed, images_failed, started_at, completed_at, COALESCE(error_text,''), COALESCE(config,'')
		FROM phase_runs WHERE phase = ? ORDER BY run_id DESC LIMIT 1`, phase)

	var r PhaseRun
	err := row.Scan(&r.RunID, &r.Phase, &r.Status, &r.ImagesProcessed, &r.ImagesFailed, &r.StartedAt, &r.CompletedAt, &r.ErrorText, &r.Config)
	if err == sql.ErrNoRows {
		return PhaseRun{}, ErrNotFound
	}
	return r, err
}
