package domain

import "context"

// Tx exposes repositories bound to a single database transaction.
type Tx interface {
	Reservations() ReservationRepository
	Tables() TableRepository
	Shifts() ShiftRepository
	Audit() AuditRepository
}

// Transactor runs fn inside a transaction. The transaction commits when fn
// returns nil and rolls back otherwise, including on panic.
type Transactor interface {
	InTx(ctx context.Context, fn func(tx Tx) error) error
}
