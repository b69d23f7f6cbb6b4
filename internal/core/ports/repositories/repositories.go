package repositories

// RepositoryProvider holds all repository interfaces needed by services.
// This makes passing dependencies to the service container constructor cleaner.
type RepositoryProvider struct {
	TxManager    TransactionManager
	StudentRepo  StudentRepositoryFacade
	FeeRepo      FeeScheduleRepositoryFacade
	InvoiceRepo  InvoiceRepositoryFacade
	PaymentRepo  PaymentRepositoryFacade
	LedgerRepo   LedgerRepositoryFacade
	DiscountRepo DiscountRepositoryFacade
	BookingRepo  BookingRepositoryFacade
}
