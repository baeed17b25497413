package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Tenancy-api/internal/domain"
	"github.com/jhoicas/Tenancy-api/internal/domain/entity"
	"github.com/jhoicas/Tenancy-api/internal/domain/repository"
)

var _ repository.SubscriptionRepository = (*SubscriptionRepo)(nil)

// SubscriptionRepo suscripciones sobre PostgreSQL.
// El índice único parcial ux_subscriptions_active_user garantiza una sola activa por usuario.
type SubscriptionRepo struct {
	q Querier
}

// NewSubscriptionRepository construye el adaptador.
func NewSubscriptionRepository(q Querier) *SubscriptionRepo {
	return &SubscriptionRepo{q: q}
}

const subscriptionColumns = `id, user_id, plan_id, status, start_at, end_at, reason`

func (r *SubscriptionRepo) Create(ctx context.Context, s *entity.Subscription) error {
	query := `INSERT INTO subscriptions (` + subscriptionColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(ctx, query, s.ID, s.UserID, s.PlanID, string(s.Status), s.StartAt, s.EndAt, s.Reason)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrConflict
		}
		if isForeignKeyViolation(err) {
			if constraintName(err) == "subscriptions_plan_id_fkey" {
				return domain.ErrPlanNotFound
			}
			return domain.ErrUserNotFound
		}
		return fmt.Errorf("insert subscription: %w", err)
	}
	return nil
}

// Update persiste estado y fecha de fin.
func (r *SubscriptionRepo) Update(ctx context.Context, s *entity.Subscription) error {
	cmd, err := r.q.Exec(ctx, `UPDATE subscriptions SET status = $2, end_at = $3 WHERE id = $1`,
		s.ID, string(s.Status), s.EndAt)
	if err != nil {
		return fmt.Errorf("update subscription: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrSubscriptionNotFound
	}
	return nil
}

func (r *SubscriptionRepo) GetActiveByUser(ctx context.Context, userID string) (*entity.Subscription, error) {
	query := `
		SELECT ` + subscriptionColumns + ` FROM subscriptions
		WHERE user_id = $1 AND status = 'active'
		ORDER BY start_at DESC, created_seq DESC LIMIT 1`
	s, err := scanSubscription(r.q.QueryRow(ctx, query, userID))
	if err != nil {
		if noRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get active subscription: %w", err)
	}
	return s, nil
}

// ListByUser historial, más reciente primero.
func (r *SubscriptionRepo) ListByUser(ctx context.Context, userID string) ([]*entity.Subscription, error) {
	query := `
		SELECT ` + subscriptionColumns + ` FROM subscriptions
		WHERE user_id = $1
		ORDER BY start_at DESC, created_seq DESC`
	rows, err := r.q.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list subscriptions: %w", err)
	}
	defer rows.Close()
	list := []*entity.Subscription{}
	for rows.Next() {
		s, err := scanSubscription(rows)
		if err != nil {
			return nil, fmt.Errorf("scan subscription: %w", err)
		}
		list = append(list, s)
	}
	return list, rows.Err()
}

func scanSubscription(row pgx.Row) (*entity.Subscription, error) {
	var (
		s      entity.Subscription
		status string
	)
	if err := row.Scan(&s.ID, &s.UserID, &s.PlanID, &status, &s.StartAt, &s.EndAt, &s.Reason); err != nil {
		return nil, err
	}
	s.Status = entity.SubscriptionStatus(status)
	return &s, nil
}
