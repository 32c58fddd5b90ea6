package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/trackflow-app/trackflow/internal/domain"
)

type InviteStore struct {
	db *pgxpool.Pool
}

func NewInviteStore(db *pgxpool.Pool) *InviteStore {
	return &InviteStore{db: db}
}

func (s *InviteStore) Create(ctx context.Context, inv *domain.Invite) error {
	return s.db.QueryRow(ctx,
		`INSERT INTO invites (email, business_id, invited_by, token_hash, expires_at)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at`,
		inv.Email, inv.BusinessID, inv.InvitedBy, inv.TokenHash, inv.ExpiresAt,
	).Scan(&inv.ID, &inv.CreatedAt)
}

func (s *InviteStore) GetByTokenHash(ctx context.Context, tokenHash string) (*domain.Invite, error) {
	inv := &domain.Invite{}
	err := s.db.QueryRow(ctx,
		`SELECT id, email, business_id, invited_by, token_hash, expires_at, accepted_at, created_at
		 FROM invites WHERE token_hash = $1`,
		tokenHash,
	).Scan(&inv.ID, &inv.Email, &inv.BusinessID, &inv.InvitedBy, &inv.TokenHash, &inv.ExpiresAt, &inv.AcceptedAt, &inv.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return inv, nil
}

func (s *InviteStore) Accept(ctx context.Context, inviteID uuid.UUID, u *domain.User, e *domain.Employee) error {
	return pgx.BeginFunc(ctx, s.db, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx,
			`UPDATE invites SET accepted_at = NOW()
			 WHERE id = $1 AND accepted_at IS NULL AND expires_at > NOW()`,
			inviteID,
		)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrGone
		}

		if err := insertUser(ctx, tx, u); err != nil {
			return err
		}

		e.UserID = u.ID
		return insertEmployee(ctx, tx, e)
	})
}

// DeleteExpired removes unaccepted invites that expired before the cutoff.
func (s *InviteStore) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	tag, err := s.db.Exec(ctx,
		`DELETE FROM invites WHERE accepted_at IS NULL AND expires_at < $1`,
		before,
	)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
