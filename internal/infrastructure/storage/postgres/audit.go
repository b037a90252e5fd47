package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/klauspost/compress/zstd"

	appctx "ladle/internal/core/context"
	"ladle/internal/core/id"
	"ladle/internal/domain/ledger"
)

// CompressionAlgo specifies the compression algorithm used.
type CompressionAlgo string

const (
	CompressionNone CompressionAlgo = "none"
	CompressionZstd CompressionAlgo = "zstd"
)

const auditTable = "stock_audit"

// AuditRecord is one persisted ledger mutation.
type AuditRecord struct {
	ID                id.ID           `db:"id"`
	TenantID          string          `db:"tenant_id"`
	IngredientID      id.ID           `db:"ingredient_id"`
	Reason            string          `db:"reason"`
	UserID            string          `db:"user_id"`
	Payload           json.RawMessage `db:"payload"`
	PayloadCompressed []byte          `db:"payload_compressed"`
	CompressionAlgo   CompressionAlgo `db:"compression_algo"`
	CreatedAt         time.Time       `db:"created_at"`
}

// AuditTrail persists every applied ledger mutation. It implements
// ledger.AuditSink; the ledger treats it as best-effort and only logs
// sink failures. Large payloads are stored zstd-compressed.
type AuditTrail struct {
	txManager         *TxManager
	encoder           *zstd.Encoder
	decoder           *zstd.Decoder
	compressThreshold int
}

var _ ledger.AuditSink = (*AuditTrail)(nil)

// NewAuditTrail creates the audit trail store.
func NewAuditTrail(txManager *TxManager) (*AuditTrail, error) {
	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}

	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}

	return &AuditTrail{
		txManager:         txManager,
		encoder:           encoder,
		decoder:           decoder,
		compressThreshold: 10 * 1024,
	}, nil
}

// auditPayload is the serialized quantity snapshot of one adjustment.
type auditPayload struct {
	OldQuantity string `json:"oldQuantity"`
	NewQuantity string `json:"newQuantity"`
	Applied     string `json:"applied"`
}

// RecordAdjustment implements ledger.AuditSink. It writes through the
// caller's transaction so the trail never records a rolled-back change,
// but inside its own savepoint: a failed INSERT would otherwise abort
// the surrounding transaction (SQLSTATE 25P02 on every later statement)
// and the ledger's best-effort contract could not hold.
func (s *AuditTrail) RecordAdjustment(ctx context.Context, entry ledger.AuditEntry) error {
	payload, err := json.Marshal(auditPayload{
		OldQuantity: entry.OldQuantity.String(),
		NewQuantity: entry.NewQuantity.String(),
		Applied:     entry.Applied.String(),
	})
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	rec := AuditRecord{
		ID:              id.New(),
		TenantID:        appctx.GetTenantID(ctx),
		IngredientID:    entry.IngredientID,
		Reason:          entry.Reason,
		UserID:          appctx.GetUserID(ctx),
		Payload:         payload,
		CompressionAlgo: CompressionNone,
		CreatedAt:       entry.At,
	}
	if len(rec.Payload) > s.compressThreshold {
		rec.PayloadCompressed = s.encoder.EncodeAll(rec.Payload, nil)
		rec.Payload = nil
		rec.CompressionAlgo = CompressionZstd
	}

	sql := `
		INSERT INTO stock_audit (
			id, tenant_id, ingredient_id, reason, user_id,
			payload, payload_compressed, compression_algo, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	return s.txManager.RunInSavepoint(ctx, func(ctx context.Context) error {
		_, err := s.txManager.GetQuerier(ctx).Exec(ctx, sql,
			rec.ID, rec.TenantID, rec.IngredientID, rec.Reason, rec.UserID,
			rec.Payload, rec.PayloadCompressed, rec.CompressionAlgo, rec.CreatedAt,
		)
		return err
	})
}

// History retrieves the audit trail of one ingredient, newest first.
func (s *AuditTrail) History(ctx context.Context, ingredientID id.ID, limit int) ([]AuditRecord, error) {
	sql := `
		SELECT id, tenant_id, ingredient_id, reason, user_id,
			   payload, payload_compressed, compression_algo, created_at
		FROM stock_audit
		WHERE tenant_id = $1 AND ingredient_id = $2
		ORDER BY created_at DESC
		LIMIT $3
	`

	rows, err := s.txManager.GetQuerier(ctx).Query(ctx, sql, appctx.GetTenantID(ctx), ingredientID, limit)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var records []AuditRecord
	for rows.Next() {
		var r AuditRecord
		err := rows.Scan(
			&r.ID, &r.TenantID, &r.IngredientID, &r.Reason, &r.UserID,
			&r.Payload, &r.PayloadCompressed, &r.CompressionAlgo, &r.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}

		if r.CompressionAlgo == CompressionZstd && len(r.PayloadCompressed) > 0 {
			decompressed, err := s.decoder.DecodeAll(r.PayloadCompressed, nil)
			if err != nil {
				return nil, fmt.Errorf("decompress payload: %w", err)
			}
			r.Payload = decompressed
			r.PayloadCompressed = nil
		}
		records = append(records, r)
	}
	return records, rows.Err()
}
