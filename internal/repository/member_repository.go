package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/brigadehq/roster/internal/models"
)

type MemberRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

func NewMemberRepository(db *sqlx.DB, logger *zap.Logger) *MemberRepository {
	return &MemberRepository{db: db, logger: logger}
}

func (r *MemberRepository) Create(ctx context.Context, member *models.Member) error {
	query := `
		INSERT INTO members (id, brigade_id, name, email, role, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	if member.ID == uuid.Nil {
		member.ID = uuid.New()
	}
	if member.Role == "" {
		member.Role = models.RoleMember
	}
	if member.CreatedAt.IsZero() {
		member.CreatedAt = time.Now()
	}

	_, err := r.db.ExecContext(ctx, query,
		member.ID,
		member.BrigadeID,
		member.Name,
		member.Email,
		member.Role,
		member.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("error creating member: %w", err)
	}
	return nil
}

func (r *MemberRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Member, error) {
	query := `SELECT id, brigade_id, name, email, role, created_at FROM members WHERE id = $1`

	var member models.Member
	err := r.db.GetContext(ctx, &member, query, id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error getting member: %w", err)
	}
	return &member, nil
}

func (r *MemberRepository) GetByEmail(ctx context.Context, email string) (*models.Member, error) {
	query := `SELECT id, brigade_id, name, email, role, created_at FROM members WHERE email = $1`

	var member models.Member
	err := r.db.GetContext(ctx, &member, query, email)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error getting member by email: %w", err)
	}
	return &member, nil
}
