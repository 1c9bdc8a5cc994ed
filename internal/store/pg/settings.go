package pg

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dropDatabas3/ajustes/internal/domain/repository"
)

type settingsRepo struct {
	pool *pgxpool.Pool
}

func (r *settingsRepo) Get(ctx context.Context, uid string) (*repository.SettingsDocument, error) {
	const q = `
		SELECT uid, profile, notifications, appearance, updated_at
		FROM admin_settings WHERE uid = $1
	`
	var (
		doc     repository.SettingsDocument
		profile []byte
		notifs  []byte
		appear  []byte
	)
	err := r.pool.QueryRow(ctx, q, uid).Scan(&doc.UID, &profile, &notifs, &appear, &doc.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	if err := json.Unmarshal(profile, &doc.Profile); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(notifs, &doc.Notifications); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(appear, &doc.Appearance); err != nil {
		return nil, err
	}
	return &doc, nil
}

func (r *settingsRepo) Put(ctx context.Context, doc *repository.SettingsDocument) error {
	profile, err := json.Marshal(doc.Profile)
	if err != nil {
		return err
	}
	notifs, err := json.Marshal(doc.Notifications)
	if err != nil {
		return err
	}
	appear, err := json.Marshal(doc.Appearance)
	if err != nil {
		return err
	}

	if doc.UpdatedAt.IsZero() {
		doc.UpdatedAt = time.Now().UTC()
	}

	const q = `
		INSERT INTO admin_settings (uid, profile, notifications, appearance, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (uid) DO UPDATE SET
			profile = EXCLUDED.profile,
			notifications = EXCLUDED.notifications,
			appearance = EXCLUDED.appearance,
			updated_at = EXCLUDED.updated_at
	`
	_, err = r.pool.Exec(ctx, q, doc.UID, profile, notifs, appear, doc.UpdatedAt)
	return err
}
