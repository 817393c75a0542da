package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/rmaia/bolao/internal/apperror"
	"github.com/rmaia/bolao/internal/model"
	"github.com/rmaia/bolao/internal/repository"
)

// Compile-time check that *DB implements repository.PoolRepository.
var _ repository.PoolRepository = (*DB)(nil)

// CreatePool inserts an ownerless pool.
//
// The only UNIQUE constraint this INSERT can trip is pools.code (the id
// is a fresh xid), so a violation here always means a join-code
// collision. We return CodeTaken and let the service retry with a new
// code — the generator has no registry, collision handling is the
// caller's job.
func (db *DB) CreatePool(ctx context.Context, pool *model.Pool) error {
	pool.ID = xid.New().String()
	pool.CreatedAt = time.Now()
	pool.OwnerID = nil

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO pools (id, title, code, owner_id, created_at)
		 VALUES (?, ?, ?, NULL, ?)`,
		pool.ID, pool.Title, pool.Code, pool.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.CodeTaken(pool.Code)
		}
		return fmt.Errorf("sqlite: creating pool: %w", err)
	}

	return nil
}

// CreatePoolWithOwner inserts the pool with ownerID as owner and creates
// the owner's membership in the same transaction. Pool creation, owner
// assignment, and initial membership succeed or fail together.
func (db *DB) CreatePoolWithOwner(ctx context.Context, pool *model.Pool, ownerID string) error {
	pool.ID = xid.New().String()
	pool.CreatedAt = time.Now()
	pool.OwnerID = &ownerID

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning transaction: %w", err)
	}
	// Rollback after a successful Commit is a no-op, so this is safe to
	// defer unconditionally.
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO pools (id, title, code, owner_id, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		pool.ID, pool.Title, pool.Code, ownerID, pool.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.CodeTaken(pool.Code)
		}
		return fmt.Errorf("sqlite: creating pool: %w", err)
	}

	if err := insertParticipant(ctx, tx, ownerID, pool.ID); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing pool creation: %w", err)
	}
	return nil
}

// GetPoolByCode looks a pool up by its join code. Codes are stored
// exactly as issued (uppercase), so the caller normalises input first.
func (db *DB) GetPoolByCode(ctx context.Context, code string) (*model.Pool, error) {
	var (
		pool    model.Pool
		ownerID sql.NullString
	)

	err := db.conn.QueryRowContext(ctx,
		`SELECT id, title, code, owner_id, created_at
		 FROM pools WHERE code = ?`,
		code,
	).Scan(&pool.ID, &pool.Title, &pool.Code, &ownerID, &pool.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("pool", code)
		}
		return nil, fmt.Errorf("sqlite: getting pool by code %s: %w", code, err)
	}

	if ownerID.Valid {
		pool.OwnerID = &ownerID.String
	}
	return &pool, nil
}

// AddParticipant joins userID to the pool.
//
// OWNERSHIP CLAIM:
// If the pool has no owner, this join assigns the caller as owner. The
// claim is a conditional UPDATE (... WHERE owner_id IS NULL) in the same
// transaction as the membership INSERT, never a read-then-write pair:
//   - two first-joins racing for an ownerless pool serialise on the row;
//     the loser's UPDATE matches zero rows and ownership stays with the
//     winner, while both memberships are still created
//   - if the membership INSERT fails (duplicate member), the rollback
//     also undoes any ownership claim
func (db *DB) AddParticipant(ctx context.Context, poolID, userID string) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`UPDATE pools SET owner_id = ? WHERE id = ? AND owner_id IS NULL`,
		userID, poolID,
	); err != nil {
		return fmt.Errorf("sqlite: claiming pool ownership: %w", err)
	}

	if err := insertParticipant(ctx, tx, userID, poolID); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing join: %w", err)
	}
	return nil
}

// insertParticipant inserts a membership row inside tx. A UNIQUE
// violation on (user_id, pool_id) is the membership invariant firing and
// comes back as AlreadyMember.
func insertParticipant(ctx context.Context, tx *sql.Tx, userID, poolID string) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO participants (id, user_id, pool_id, created_at)
		 VALUES (?, ?, ?, ?)`,
		xid.New().String(), userID, poolID, time.Now(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.AlreadyMember()
		}
		return fmt.Errorf("sqlite: creating participant: %w", err)
	}
	return nil
}

// GetParticipant returns the membership record for (userID, poolID).
func (db *DB) GetParticipant(ctx context.Context, userID, poolID string) (*model.Participant, error) {
	var p model.Participant

	err := db.conn.QueryRowContext(ctx,
		`SELECT id, user_id, pool_id, created_at
		 FROM participants WHERE user_id = ? AND pool_id = ?`,
		userID, poolID,
	).Scan(&p.ID, &p.UserID, &p.PoolID, &p.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("participant", userID+"/"+poolID)
		}
		return nil, fmt.Errorf("sqlite: getting participant: %w", err)
	}

	return &p, nil
}

// GetPoolSummary returns the read projection for one pool: owner preview,
// member count, and up to four member avatars in join order.
func (db *DB) GetPoolSummary(ctx context.Context, id string) (*model.PoolSummary, error) {
	var (
		s         model.PoolSummary
		ownerID   sql.NullString
		ownerName sql.NullString
	)

	err := db.conn.QueryRowContext(ctx,
		`SELECT p.id, p.title, p.code, p.created_at, p.owner_id, u.name
		 FROM pools p
		 LEFT JOIN users u ON u.id = p.owner_id
		 WHERE p.id = ?`,
		id,
	).Scan(&s.ID, &s.Title, &s.Code, &s.CreatedAt, &ownerID, &ownerName)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("pool", id)
		}
		return nil, fmt.Errorf("sqlite: getting pool %s: %w", id, err)
	}

	if ownerID.Valid {
		s.Owner = &model.OwnerPreview{ID: ownerID.String, Name: ownerName.String}
	}

	if err := db.fillParticipants(ctx, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// ListPoolSummaries returns the projection for every pool userID belongs
// to, newest pool first (id as tiebreak so the order is stable).
func (db *DB) ListPoolSummaries(ctx context.Context, userID string) ([]model.PoolSummary, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT p.id, p.title, p.code, p.created_at, p.owner_id, u.name
		 FROM pools p
		 JOIN participants me ON me.pool_id = p.id AND me.user_id = ?
		 LEFT JOIN users u ON u.id = p.owner_id
		 ORDER BY p.created_at DESC, p.id DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing pools for user %s: %w", userID, err)
	}
	defer rows.Close()

	var summaries []model.PoolSummary
	for rows.Next() {
		var (
			s         model.PoolSummary
			ownerID   sql.NullString
			ownerName sql.NullString
		)
		if err := rows.Scan(&s.ID, &s.Title, &s.Code, &s.CreatedAt, &ownerID, &ownerName); err != nil {
			return nil, fmt.Errorf("sqlite: scanning pool row: %w", err)
		}
		if ownerID.Valid {
			s.Owner = &model.OwnerPreview{ID: ownerID.String, Name: ownerName.String}
		}
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating pools: %w", err)
	}

	// Enrich each pool after the first result set is fully drained —
	// fillParticipants runs its own queries and SQLite dislikes nested
	// active statements on one connection.
	for i := range summaries {
		if err := db.fillParticipants(ctx, &summaries[i]); err != nil {
			return nil, err
		}
	}

	if summaries == nil {
		summaries = []model.PoolSummary{}
	}
	return summaries, nil
}

// fillParticipants populates the member count and the 4-avatar preview
// strip on a summary. rowid preserves insertion order, which for
// participants is join order.
func (db *DB) fillParticipants(ctx context.Context, s *model.PoolSummary) error {
	err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM participants WHERE pool_id = ?`, s.ID,
	).Scan(&s.Count)
	if err != nil {
		return fmt.Errorf("sqlite: counting participants for pool %s: %w", s.ID, err)
	}

	rows, err := db.conn.QueryContext(ctx,
		`SELECT pa.id, u.avatar_url
		 FROM participants pa
		 JOIN users u ON u.id = pa.user_id
		 WHERE pa.pool_id = ?
		 ORDER BY pa.rowid
		 LIMIT 4`,
		s.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: listing participant previews for pool %s: %w", s.ID, err)
	}
	defer rows.Close()

	s.Participants = make([]model.ParticipantPreview, 0, 4)
	for rows.Next() {
		var p model.ParticipantPreview
		if err := rows.Scan(&p.ID, &p.AvatarURL); err != nil {
			return fmt.Errorf("sqlite: scanning participant preview: %w", err)
		}
		s.Participants = append(s.Participants, p)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("sqlite: iterating participant previews: %w", err)
	}

	return nil
}

// CountPools returns the total number of pools.
func (db *DB) CountPools(ctx context.Context) (int64, error) {
	var n int64
	if err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM pools`).Scan(&n); err != nil {
		return 0, fmt.Errorf("sqlite: counting pools: %w", err)
	}
	return n, nil
}
