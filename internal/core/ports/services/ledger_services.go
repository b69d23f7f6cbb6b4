package services

import (
	"context"

	"github.com/SscSPs/hostel_billing_app/internal/core/domain"
	"github.com/SscSPs/hostel_billing_app/internal/dto"
)

// LedgerReaderSvc defines read operations for the ledger
type LedgerReaderSvc interface {
	GetStudentLedger(ctx context.Context, studentID string, params dto.ListLedgerParams) (*dto.LedgerResponse, error)
	GetStudentBalance(ctx context.Context, studentID string) (*domain.StudentBalance, error)
}

// LedgerWriterSvc defines write operations for the ledger
type LedgerWriterSvc interface {
	ReverseEntry(ctx context.Context, entryID string, reason string, actorID string) (*domain.LedgerEntry, error)
	RecalculateStudentBalance(ctx context.Context, studentID string, actorID string) (*domain.BalanceReconciliation, error)
}

// LedgerSvcFacade combines all ledger service interfaces
type LedgerSvcFacade interface {
	LedgerReaderSvc
	LedgerWriterSvc
}
