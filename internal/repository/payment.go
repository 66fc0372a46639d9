package repository

import (
	"context"
	"time"

	"github.com/rookgm/streetmart/internal/models"
	"github.com/rookgm/streetmart/internal/repository/postgres"
)

const (
	paymentColumns = `id, order_id, payer_id, method, amount, status, transaction_id, card_last_four, created_at, updated_at`

	insertPaymentQuery = `
						INSERT INTO payments (id, order_id, payer_id, method, amount, status, transaction_id, card_last_four,
						                      created_at, updated_at)
						VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
`
	selectPaymentQuery = `
						SELECT ` + paymentColumns + ` FROM payments
						WHERE id = $1
`
	selectPaymentsByOrderQuery = `
						SELECT ` + paymentColumns + ` FROM payments
						WHERE order_id = $1
						ORDER BY created_at DESC
`
	updatePaymentStatusQuery = `
						UPDATE payments
						SET status = $1, updated_at = $2
						WHERE id = $3 AND status = $4
`
)

// PaymentRepository implements PaymentRepository interface
type PaymentRepository struct {
	db *postgres.DB
}

// NewPaymentRepository creates new PaymentRepository instance
func NewPaymentRepository(db *postgres.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

func scanPayment(row interface{ Scan(dest ...any) error }, p *models.Payment) error {
	var method, status string
	err := row.Scan(&p.ID, &p.OrderID, &p.PayerID, &method, &p.Amount, &status, &p.TransactionID, &p.CardLastFour,
		&p.CreatedAt, &p.UpdatedAt)
	p.Method = models.PaymentMethod(method)
	p.Status = models.PaymentStatus(status)
	return err
}

// CreatePayment inserts new payment
func (pr *PaymentRepository) CreatePayment(ctx context.Context, p *models.Payment) error {
	_, err := pr.db.Exec(ctx, insertPaymentQuery, p.ID, p.OrderID, p.PayerID, string(p.Method), p.Amount,
		string(p.Status), p.TransactionID, p.CardLastFour, p.CreatedAt, p.UpdatedAt)
	return translate(pr.db, "create payment", err)
}

// GetPayment returns payment by id
func (pr *PaymentRepository) GetPayment(ctx context.Context, id string) (*models.Payment, error) {
	p := models.Payment{}
	if err := scanPayment(pr.db.QueryRow(ctx, selectPaymentQuery, id), &p); err != nil {
		return nil, translate(pr.db, "get payment", err)
	}
	return &p, nil
}

// ListPaymentsByOrder returns order payments newest first
func (pr *PaymentRepository) ListPaymentsByOrder(ctx context.Context, orderID string) ([]models.Payment, error) {
	rows, err := pr.db.Query(ctx, selectPaymentsByOrderQuery, orderID)
	if err != nil {
		return nil, translate(pr.db, "list payments", err)
	}
	defer rows.Close()

	payments := []models.Payment{}

	for rows.Next() {
		p := models.Payment{}
		if err := scanPayment(rows, &p); err != nil {
			return nil, translate(pr.db, "scan payment", err)
		}
		payments = append(payments, p)
	}

	if err := rows.Err(); err != nil {
		return nil, translate(pr.db, "list payments", err)
	}

	return payments, nil
}

// UpdatePaymentStatus moves payment from status to status, ErrConflictData if it already moved
func (pr *PaymentRepository) UpdatePaymentStatus(ctx context.Context, id string, from, to models.PaymentStatus, at time.Time) error {
	cmd, err := pr.db.Exec(ctx, updatePaymentStatusQuery, string(to), at, id, string(from))
	if err != nil {
		return translate(pr.db, "update payment status", err)
	}

	if cmd.RowsAffected() == 0 {
		return models.ErrConflictData
	}

	return nil
}
