package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"folio/internal/errs"
)

// PutContent, GetContent and DeleteContent back the layout handlers' content.

func (s Store) PutContent(ctx context.Context, viewID string, data []byte) error {
	db, err := s.openSQLite(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	if data == nil {
		data = []byte{}
	}
	if _, err := db.ExecContext(ctx, `INSERT OR REPLACE INTO contents(view_id, data, updated_at_unixms) VALUES(?, ?, ?)`,
		viewID, data, time.Now().UTC().UnixMilli()); err != nil {
		return fmt.Errorf("put content: %w", err)
	}
	return nil
}

func (s Store) GetContent(ctx context.Context, viewID string) ([]byte, error) {
	db, err := s.openSQLite(ctx)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	var data []byte
	err = db.QueryRowContext(ctx, `SELECT data FROM contents WHERE view_id = ?`, viewID).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errs.NotFound("content", viewID)
	}
	if err != nil {
		return nil, fmt.Errorf("get content: %w", err)
	}
	return data, nil
}

func (s Store) DeleteContent(ctx context.Context, viewID string) error {
	db, err := s.openSQLite(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	_, err = db.ExecContext(ctx, `DELETE FROM contents WHERE view_id = ?`, viewID)
	return err
}

// ContentIDs lists every view id with stored content.
func (s Store) ContentIDs(ctx context.Context) ([]string, error) {
	db, err := s.openSQLite(ctx)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, `SELECT view_id FROM contents ORDER BY view_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}
