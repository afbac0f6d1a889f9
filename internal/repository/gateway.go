package repository

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

// LedgerGateway settles outbound transfers by writing an instruction row
// for the external settlement rail and confirming synchronously. A transfer
// that cannot be written fails the whole call, so no state change ever
// records a payout the rail never saw.
type LedgerGateway struct {
	db *sqlx.DB
}

func NewLedgerGateway(db *sqlx.DB) *LedgerGateway {
	return &LedgerGateway{db: db}
}

func (g *LedgerGateway) Transfer(ctx context.Context, kind, destination string, amount decimal.Decimal) error {
	query := `
		INSERT INTO transfer_instructions (id, kind, destination, amount, status, created_at)
		VALUES ($1, $2, $3, $4, 'accepted', $5)
	`

	_, err := g.db.ExecContext(ctx, query, uuid.New(), kind, destination, amount, time.Now().UTC())
	if err != nil {
		log.Printf("transfer instruction rejected: kind=%s destination=%s amount=%s: %v", kind, destination, amount, err)
		return err
	}
	return nil
}
