package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/aditya/go-freight/internal/models"
)

// ErrDuplicateIdempotencyKey is returned by Create when another freight
// already holds the idempotency key.
var ErrDuplicateIdempotencyKey = errors.New("duplicate idempotency key")

const defaultListLimit = 20

type FreightRepository interface {
	Create(ctx context.Context, freight *models.Freight) error
	GetByID(ctx context.Context, id string) (*models.Freight, error)
	GetByIdempotencyKey(ctx context.Context, key string) (*models.Freight, error)
	List(ctx context.Context, filter models.FreightFilter) ([]*models.Freight, error)
	// AssignTransporter only succeeds while the freight is still pending.
	AssignTransporter(ctx context.Context, id, transporterID string) (bool, error)
	// UpdateStatus, Unassign and Cancel only write while the freight is still
	// in the expected status; false means another request moved it first.
	UpdateStatus(ctx context.Context, id, expected, status string) (bool, error)
	Unassign(ctx context.Context, id string) (bool, error)
	Cancel(ctx context.Context, id, expected, reason string) (bool, error)
}

type freightRepository struct {
	db *sqlx.DB
}

func NewFreightRepository(db *sqlx.DB) FreightRepository {
	return &freightRepository{db: db}
}

func (r *freightRepository) Create(ctx context.Context, freight *models.Freight) error {
	if freight.ID == "" {
		freight.ID = uuid.New().String()
	}
	now := time.Now()
	freight.CreatedAt = now
	freight.UpdatedAt = now
	freight.Status = models.FreightStatusPending
	if freight.AdditionalFees == nil {
		freight.AdditionalFees = pq.StringArray{}
	}

	query := `
		INSERT INTO freights (id, shipper_id, origin, destination, distance_km, distance_source,
			vehicle_type, weight_kg, additional_fees, empty_return, price, price_breakdown,
			quote_id, status, pickup_date, description, idempotency_key, created_at, updated_at)
		VALUES (:id, :shipper_id, :origin, :destination, :distance_km, :distance_source,
			:vehicle_type, :weight_kg, :additional_fees, :empty_return, :price, :price_breakdown,
			:quote_id, :status, :pickup_date, :description, :idempotency_key, :created_at, :updated_at)
	`
	_, err := r.db.NamedExecContext(ctx, query, freight)
	if isUniqueViolation(err, "freights_idempotency_key_key") {
		return ErrDuplicateIdempotencyKey
	}
	return err
}

func (r *freightRepository) GetByID(ctx context.Context, id string) (*models.Freight, error) {
	var freight models.Freight
	query := `SELECT * FROM freights WHERE id = $1`
	err := r.db.GetContext(ctx, &freight, query, id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &freight, nil
}

func (r *freightRepository) GetByIdempotencyKey(ctx context.Context, key string) (*models.Freight, error) {
	var freight models.Freight
	query := `SELECT * FROM freights WHERE idempotency_key = $1`
	err := r.db.GetContext(ctx, &freight, query, key)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &freight, nil
}

func (r *freightRepository) List(ctx context.Context, filter models.FreightFilter) ([]*models.Freight, error) {
	query, args := buildListQuery(filter)

	freights := []*models.Freight{}
	if err := r.db.SelectContext(ctx, &freights, query, args...); err != nil {
		return nil, err
	}
	return freights, nil
}

func buildListQuery(filter models.FreightFilter) (string, []interface{}) {
	var (
		conds []string
		args  []interface{}
	)
	add := func(cond string, v interface{}) {
		args = append(args, v)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if filter.ShipperID != "" {
		add("shipper_id = $%d", filter.ShipperID)
	}
	if filter.TransporterID != "" {
		add("transporter_id = $%d", filter.TransporterID)
	}
	if filter.Status != "" {
		add("status = $%d", filter.Status)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}

	query := "SELECT * FROM freights"
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	args = append(args, limit, filter.Offset)
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	return query, args
}

func (r *freightRepository) AssignTransporter(ctx context.Context, id, transporterID string) (bool, error) {
	query := `
		UPDATE freights
		SET transporter_id = $1, status = $2, updated_at = $3
		WHERE id = $4 AND status = $5
	`
	return execOne(r.db.ExecContext(ctx, query,
		transporterID, models.FreightStatusAssigned, time.Now(), id, models.FreightStatusPending))
}

func (r *freightRepository) UpdateStatus(ctx context.Context, id, expected, status string) (bool, error) {
	query := `UPDATE freights SET status = $1, updated_at = $2 WHERE id = $3 AND status = $4`
	return execOne(r.db.ExecContext(ctx, query, status, time.Now(), id, expected))
}

func (r *freightRepository) Unassign(ctx context.Context, id string) (bool, error) {
	query := `
		UPDATE freights
		SET transporter_id = NULL, status = $1, updated_at = $2
		WHERE id = $3 AND status = $4
	`
	return execOne(r.db.ExecContext(ctx, query,
		models.FreightStatusPending, time.Now(), id, models.FreightStatusAssigned))
}

func (r *freightRepository) Cancel(ctx context.Context, id, expected, reason string) (bool, error) {
	query := `
		UPDATE freights
		SET status = $1, cancellation_reason = $2, updated_at = $3
		WHERE id = $4 AND status = $5
	`
	var reasonPtr *string
	if reason != "" {
		reasonPtr = &reason
	}
	return execOne(r.db.ExecContext(ctx, query,
		models.FreightStatusCancelled, reasonPtr, time.Now(), id, expected))
}

// execOne reports whether a guarded UPDATE touched exactly one row.
func execOne(result sql.Result, err error) (bool, error) {
	if err != nil {
		return false, err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows == 1, nil
}

func isUniqueViolation(err error, constraint string) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505" && pqErr.Constraint == constraint
	}
	return false
}
