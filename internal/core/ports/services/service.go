package services

// ServiceContainer holds instances of all the application services.
// This is the main entry point for accessing service functionality and
// is used throughout the application, particularly in the handlers.
type ServiceContainer struct {
	Student  StudentSvcFacade
	Booking  BookingSvcFacade
	Invoice  InvoiceSvcFacade
	Payment  PaymentSvcFacade
	Discount DiscountSvcFacade
	Ledger   LedgerSvcFacade
	Checkout CheckoutSvcFacade
}
