package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/fooddelivery/ms-go-checkout/app/entity"
)

var ErrPaymentRecordAlreadyExists = errors.New("payment record already exists")

type PaymentRecordRepository struct {
	db DBTX
}

func NewPaymentRecordRepository(db DBTX) *PaymentRecordRepository {
	return &PaymentRecordRepository{db: db}
}

func (r *PaymentRecordRepository) conn(ctx context.Context) DBTX {
	if tx, ok := txFromContext(ctx); ok {
		return tx
	}
	return r.db
}

// Create appends one verification outcome to the ledger. The unique key on
// (gateway_order_id, gateway_payment_id) turns a duplicate callback delivery
// into ErrPaymentRecordAlreadyExists.
func (r *PaymentRecordRepository) Create(ctx context.Context, record *entity.PaymentRecord) error {
	query := `
		INSERT INTO payment_records (
			gateway_order_id, gateway_payment_id, signature, status,
			amount_paise, currency, payer_email, created_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.conn(ctx).ExecContext(ctx, query,
		record.GatewayOrderID,
		record.GatewayPaymentID,
		record.Signature,
		record.Status,
		record.AmountPaise,
		record.Currency,
		record.PayerEmail,
		record.CreatedAt,
	)
	if err != nil {
		if isDuplicateEntryError(err) {
			return ErrPaymentRecordAlreadyExists
		}
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	record.ID = uint64(id)
	return nil
}

func (r *PaymentRecordRepository) FindByGatewayIDs(ctx context.Context, gatewayOrderID, gatewayPaymentID string) (*entity.PaymentRecord, error) {
	query := `
		SELECT id, gateway_order_id, gateway_payment_id, signature, status,
			amount_paise, currency, payer_email, created_at
		FROM payment_records
		WHERE gateway_order_id = ? AND gateway_payment_id = ?
		LIMIT 1
	`

	record := &entity.PaymentRecord{}
	err := scanPaymentRecord(r.conn(ctx).QueryRowContext(ctx, query, gatewayOrderID, gatewayPaymentID), record)
	if err == sql.ErrNoRows {
		return nil, nil
	} else if err != nil {
		return nil, err
	}

	return record, nil
}

func (r *PaymentRecordRepository) ListByPayerEmail(ctx context.Context, payerEmail string) ([]*entity.PaymentRecord, error) {
	query := `
		SELECT id, gateway_order_id, gateway_payment_id, signature, status,
			amount_paise, currency, payer_email, created_at
		FROM payment_records
		WHERE payer_email = ?
		ORDER BY id DESC
	`

	rows, err := r.conn(ctx).QueryContext(ctx, query, payerEmail)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]*entity.PaymentRecord, 0)
	for rows.Next() {
		record := &entity.PaymentRecord{}
		if err := scanPaymentRecord(rows, record); err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return records, nil
}

func scanPaymentRecord(scan rowScanner, record *entity.PaymentRecord) error {
	return scan.Scan(
		&record.ID,
		&record.GatewayOrderID,
		&record.GatewayPaymentID,
		&record.Signature,
		&record.Status,
		&record.AmountPaise,
		&record.Currency,
		&record.PayerEmail,
		&record.CreatedAt,
	)
}
