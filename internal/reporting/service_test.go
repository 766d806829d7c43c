package reporting

import (
	"context"
	"testing"

	"github.com/nexum-core/ledger/internal/audit"
	"github.com/nexum-core/ledger/internal/ledger"
	"github.com/nexum-core/ledger/internal/money"
	"github.com/nexum-core/ledger/internal/storage/memory"
)

func newTestLedger(t *testing.T) *ledger.Service {
	t.Helper()
	store := memory.New()
	auditSvc := audit.NewService(store)
	return ledger.NewService(store, auditSvc)
}

func mustLine(t *testing.T, l *ledger.Service, accountID, description, debit, credit string) ledger.Line {
	t.Helper()
	_ = l
	debitM, err := money.NewFromString(debit, "USD")
	if err != nil {
		t.Fatalf("debit: %v", err)
	}
	creditM, err := money.NewFromString(credit, "USD")
	if err != nil {
		t.Fatalf("credit: %v", err)
	}
	line, err := ledger.NewLine(accountID, description, debitM, creditM)
	if err != nil {
		t.Fatalf("NewLine: %v", err)
	}
	return line
}

func TestGenerateTrialBalanceRejectsEmptyRequest(t *testing.T) {
	svc := NewService(newTestLedger(t))
	if _, err := svc.GenerateTrialBalance(context.Background(), TrialBalanceRequest{}); err != ErrInvalidRequest {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
}

func TestGenerateTrialBalanceBalancesAcrossAccounts(t *testing.T) {
	l := newTestLedger(t)
	ctx := context.Background()

	entry, err := l.CreateJournalEntry(ctx, "TB001", "deposit", []ledger.Line{
		mustLine(t, l, "CASH", "cash in", "1000", "0"),
		mustLine(t, l, "CUSTOMER_DEPOSITS", "deposit liability", "0", "1000"),
	}, "")
	if err != nil {
		t.Fatalf("CreateJournalEntry: %v", err)
	}
	if _, err := l.PostJournalEntry(ctx, entry.ID); err != nil {
		t.Fatalf("PostJournalEntry: %v", err)
	}

	svc := NewService(l)
	report, err := svc.GenerateTrialBalance(ctx, TrialBalanceRequest{
		AccountTypes: map[string]ledger.AccountType{
			"CASH":              ledger.AccountAsset,
			"CUSTOMER_DEPOSITS": ledger.AccountLiability,
		},
		CurrencyCode: "USD",
	})
	if err != nil {
		t.Fatalf("GenerateTrialBalance: %v", err)
	}
	if !report.Balanced {
		t.Fatalf("expected a balanced trial balance, got debit=%s credit=%s", report.DebitTotal, report.CreditTotal)
	}
	if len(report.Lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(report.Lines))
	}
}

func TestGenerateAccountActivitySummarizesEntries(t *testing.T) {
	l := newTestLedger(t)
	ctx := context.Background()

	entry, err := l.CreateJournalEntry(ctx, "ACT001", "deposit", []ledger.Line{
		mustLine(t, l, "CASH", "cash in", "200", "0"),
		mustLine(t, l, "REVENUE", "revenue", "0", "200"),
	}, "")
	if err != nil {
		t.Fatalf("CreateJournalEntry: %v", err)
	}
	if _, err := l.PostJournalEntry(ctx, entry.ID); err != nil {
		t.Fatalf("PostJournalEntry: %v", err)
	}

	if _, err := l.CreateJournalEntry(ctx, "ACT002", "pending deposit", []ledger.Line{
		mustLine(t, l, "CASH", "cash in", "50", "0"),
		mustLine(t, l, "REVENUE", "revenue", "0", "50"),
	}, ""); err != nil {
		t.Fatalf("CreateJournalEntry: %v", err)
	}

	svc := NewService(l)
	summary, err := svc.GenerateAccountActivity(ctx, AccountActivityRequest{
		AccountID:    "CASH",
		AccountType:  ledger.AccountAsset,
		CurrencyCode: "USD",
	})
	if err != nil {
		t.Fatalf("GenerateAccountActivity: %v", err)
	}
	if summary.EntryCount != 2 || summary.PostedCount != 1 || summary.PendingCount != 1 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
}
