package pgsql

import (
	portsrepo "github.com/SscSPs/hostel_billing_app/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		TxManager:    &BaseRepository{Pool: dbPool},
		StudentRepo:  newPgxStudentRepository(dbPool),
		FeeRepo:      newPgxFeeScheduleRepository(dbPool),
		InvoiceRepo:  newPgxInvoiceRepository(dbPool),
		PaymentRepo:  newPgxPaymentRepository(dbPool),
		LedgerRepo:   newPgxLedgerRepository(dbPool),
		DiscountRepo: newPgxDiscountRepository(dbPool),
		BookingRepo:  newPgxBookingRepository(dbPool),
	}
}
