package store

import (
	"context"
	"time"
)

// RecordUpload logs one successful remote transfer (§4.9 upload phase).
// Safe to call twice for the same remote_path; the second call just
// refreshes the timestamp and verified flag, matching upload's own
// idempotent retry-on-resume behaviour.
func (s *Store) RecordUpload(ctx context.Context, u Upload) error {
	_, err := s.exec(ctx, `
		INSERT INTO uploads (local_path, remote_path, size_bytes, uploaded_at, verified)
		VALUES (?,?,?,?,?)
		ON CONFLICT(remote_path) DO UPDATE SET
			local_path = excluded.local_path,
			size_bytes = excluded.size_bytes,
			uploaded_at = excluded.uploaded_at,
			verified = excluded.verified`,
		u.LocalPath, u.RemotePath, u.SizeBytes, time.Now().UTC(), boolToInt(u.Verified))
	return err
}

func (s *Store) IsUploaded(ctx context.Context, remotePath string) (bool, error) {
	var verified int
	err := s.db.QueryRowContext(ctx, `SELECT verified FROM uploads WHERE remote_path = ?`, remotePath).Scan(&verified)
	if err != nil {
		return false, nil
	}
	return verified != 0, nil
}
