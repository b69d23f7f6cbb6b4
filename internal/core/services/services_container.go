package services

import (
	portsrepo "github.com/SscSPs/hostel_billing_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/hostel_billing_app/internal/core/ports/services"
	"github.com/SscSPs/hostel_billing_app/internal/notification"
	"github.com/SscSPs/hostel_billing_app/internal/platform/config"
)

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider, notifier notification.Notifier, opts ...Option) *portssvc.ServiceContainer {
	opts = append([]Option{WithNotifier(notifier)}, opts...)

	// Booking approval generates the first invoice inside its own transaction, so it
	// shares the concrete invoice service.
	invoices := newInvoiceService(cfg, repos, opts...)

	return &portssvc.ServiceContainer{
		Student:  NewStudentService(repos, opts...),
		Booking:  newBookingService(repos, invoices, opts...),
		Invoice:  invoices,
		Payment:  NewPaymentService(repos, opts...),
		Discount: NewDiscountService(repos, opts...),
		Ledger:   NewLedgerService(repos, opts...),
		Checkout: NewCheckoutService(repos, opts...),
	}
}

// Helper to check interface implementations at compile time
var (
	_ portssvc.StudentSvcFacade  = (*studentService)(nil)
	_ portssvc.BookingSvcFacade  = (*bookingService)(nil)
	_ portssvc.InvoiceSvcFacade  = (*invoiceService)(nil)
	_ portssvc.PaymentSvcFacade  = (*paymentService)(nil)
	_ portssvc.DiscountSvcFacade = (*discountService)(nil)
	_ portssvc.LedgerSvcFacade   = (*ledgerService)(nil)
	_ portssvc.CheckoutSvcFacade = (*checkoutService)(nil)
)
