package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/nexum-core/ledger/internal/audit"
	"github.com/nexum-core/ledger/internal/coreerr"
	"github.com/nexum-core/ledger/internal/money"
	"github.com/nexum-core/ledger/internal/storage/memory"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	store := memory.New()
	auditSvc := audit.NewService(store)
	return NewService(store, auditSvc)
}

func mustMoney(t *testing.T, amount, currency string) money.Money {
	t.Helper()
	m, err := money.NewFromString(amount, currency)
	if err != nil {
		t.Fatalf("money.NewFromString(%q, %q): %v", amount, currency, err)
	}
	return m
}

func mustLine(t *testing.T, accountID, description, debit, credit string) Line {
	t.Helper()
	l, err := NewLine(accountID, description, mustMoney(t, debit, "USD"), mustMoney(t, credit, "USD"))
	if err != nil {
		t.Fatalf("NewLine: %v", err)
	}
	return l
}

func TestCreateJournalEntry(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	lines := []Line{
		mustLine(t, "CASH001", "Cash deposit", "1000.00", "0.00"),
		mustLine(t, "REVENUE001", "Deposit revenue", "0.00", "1000.00"),
	}

	entry, err := svc.CreateJournalEntry(ctx, "DEP001", "Customer deposit", lines, "")
	if err != nil {
		t.Fatalf("CreateJournalEntry: %v", err)
	}
	if entry.Reference != "DEP001" || entry.State != StatePending || len(entry.Lines) != 2 {
		t.Fatalf("unexpected entry: %+v", entry)
	}

	retrieved, err := svc.GetJournalEntry(ctx, entry.ID)
	if err != nil || retrieved == nil || retrieved.Reference != "DEP001" {
		t.Fatalf("GetJournalEntry: %+v, %v", retrieved, err)
	}
}

func TestCreateJournalEntryIdempotent(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	lines := []Line{
		mustLine(t, "CASH001", "Cash deposit", "50.00", "0.00"),
		mustLine(t, "REVENUE001", "Deposit revenue", "0.00", "50.00"),
	}

	first, err := svc.CreateJournalEntry(ctx, "DEP002", "Customer deposit", lines, "idem-1")
	if err != nil {
		t.Fatalf("CreateJournalEntry: %v", err)
	}
	second, err := svc.CreateJournalEntry(ctx, "DEP002", "Customer deposit", lines, "idem-1")
	if err != nil {
		t.Fatalf("CreateJournalEntry (replay): %v", err)
	}
	if first.ID != second.ID {
		t.Fatalf("expected replayed entry to return the original ID, got %s and %s", first.ID, second.ID)
	}
}

func TestPostJournalEntry(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	lines := []Line{
		mustLine(t, "CASH001", "Cash withdrawal", "0.00", "500.00"),
		mustLine(t, "CUSTOMER001", "Customer account debit", "500.00", "0.00"),
	}
	entry, err := svc.CreateJournalEntry(ctx, "WITH001", "Customer withdrawal", lines, "")
	if err != nil {
		t.Fatalf("CreateJournalEntry: %v", err)
	}

	posted, err := svc.PostJournalEntry(ctx, entry.ID)
	if err != nil {
		t.Fatalf("PostJournalEntry: %v", err)
	}
	if posted.State != StatePosted || posted.PostedAt == nil {
		t.Fatalf("unexpected posted entry: %+v", posted)
	}

	if _, err := svc.PostJournalEntry(ctx, entry.ID); !coreerr.Is(err, coreerr.KindValidation) {
		t.Fatalf("expected validation error re-posting, got %v", err)
	}
}

func TestReverseJournalEntry(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	lines := []Line{
		mustLine(t, "CASH001", "Cash deposit", "100.00", "0.00"),
		mustLine(t, "CUSTOMER001", "Customer credit", "0.00", "100.00"),
	}
	original, err := svc.CreateJournalEntry(ctx, "ORIG001", "Original transaction", lines, "")
	if err != nil {
		t.Fatalf("CreateJournalEntry: %v", err)
	}
	postedOriginal, err := svc.PostJournalEntry(ctx, original.ID)
	if err != nil {
		t.Fatalf("PostJournalEntry: %v", err)
	}

	reversal, err := svc.ReverseJournalEntry(ctx, postedOriginal.ID, "Customer requested reversal")
	if err != nil {
		t.Fatalf("ReverseJournalEntry: %v", err)
	}

	if reversal.State != StatePosted {
		t.Fatalf("expected reversal to be posted, got %s", reversal.State)
	}
	if reversal.Reference != "REV-ORIG001" {
		t.Fatalf("expected reference REV-ORIG001, got %s", reversal.Reference)
	}
	if reversal.Reverses != postedOriginal.ID {
		t.Fatalf("expected reversal.Reverses == original ID")
	}
	if len(reversal.Lines) != 2 {
		t.Fatalf("expected 2 reversal lines, got %d", len(reversal.Lines))
	}

	if reversal.Lines[0].AccountID != "CASH001" || !reversal.Lines[0].IsCredit() {
		t.Fatalf("expected CASH001 line to be a credit in the reversal: %+v", reversal.Lines[0])
	}
	if reversal.Lines[1].AccountID != "CUSTOMER001" || !reversal.Lines[1].IsDebit() {
		t.Fatalf("expected CUSTOMER001 line to be a debit in the reversal: %+v", reversal.Lines[1])
	}

	updatedOriginal, err := svc.GetJournalEntry(ctx, postedOriginal.ID)
	if err != nil || updatedOriginal == nil {
		t.Fatalf("GetJournalEntry(original): %v", err)
	}
	if updatedOriginal.State != StateReversed || updatedOriginal.ReversedBy != reversal.ID {
		t.Fatalf("unexpected original after reversal: %+v", updatedOriginal)
	}
}

func TestReverseJournalEntryRequiresPosted(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	lines := []Line{
		mustLine(t, "CASH001", "Cash deposit", "10.00", "0.00"),
		mustLine(t, "CUSTOMER001", "Customer credit", "0.00", "10.00"),
	}
	entry, err := svc.CreateJournalEntry(ctx, "ORIG002", "Original transaction", lines, "")
	if err != nil {
		t.Fatalf("CreateJournalEntry: %v", err)
	}

	if _, err := svc.ReverseJournalEntry(ctx, entry.ID, "too early"); !coreerr.Is(err, coreerr.KindValidation) {
		t.Fatalf("expected validation error reversing a pending entry, got %v", err)
	}
}

func TestCalculateAccountBalanceAsset(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	entries := [][]Line{
		{
			mustLine(t, "CASH001", "Initial deposit", "1000.00", "0.00"),
			mustLine(t, "REVENUE001", "Revenue recognition", "0.00", "1000.00"),
		},
		{
			mustLine(t, "CASH001", "Withdrawal", "0.00", "300.00"),
			mustLine(t, "CUSTOMER001", "Customer account", "300.00", "0.00"),
		},
		{
			mustLine(t, "CASH001", "Another deposit", "200.00", "0.00"),
			mustLine(t, "REVENUE001", "More revenue", "0.00", "200.00"),
		},
	}
	for i, lines := range entries {
		entry, err := svc.CreateJournalEntry(ctx, "ENT00"+string(rune('1'+i)), "entry", lines, "")
		if err != nil {
			t.Fatalf("CreateJournalEntry: %v", err)
		}
		if _, err := svc.PostJournalEntry(ctx, entry.ID); err != nil {
			t.Fatalf("PostJournalEntry: %v", err)
		}
	}

	balance, err := svc.CalculateAccountBalance(ctx, "CASH001", AccountAsset, "USD")
	if err != nil {
		t.Fatalf("CalculateAccountBalance: %v", err)
	}
	want := mustMoney(t, "900.00", "USD")
	if eq, _ := balance.Cmp(want); eq != 0 {
		t.Fatalf("expected balance 900.00, got %s", balance)
	}
}

func TestCalculateAccountBalanceLiability(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	entries := [][]Line{
		{
			mustLine(t, "CASH001", "Cash received", "500.00", "0.00"),
			mustLine(t, "CUSTOMER_DEPOSITS", "Customer deposit liability", "0.00", "500.00"),
		},
		{
			mustLine(t, "CUSTOMER_DEPOSITS", "Withdrawal reduces liability", "100.00", "0.00"),
			mustLine(t, "CASH001", "Cash paid out", "0.00", "100.00"),
		},
	}
	for i, lines := range entries {
		entry, err := svc.CreateJournalEntry(ctx, "LIA00"+string(rune('1'+i)), "entry", lines, "")
		if err != nil {
			t.Fatalf("CreateJournalEntry: %v", err)
		}
		if _, err := svc.PostJournalEntry(ctx, entry.ID); err != nil {
			t.Fatalf("PostJournalEntry: %v", err)
		}
	}

	balance, err := svc.CalculateAccountBalance(ctx, "CUSTOMER_DEPOSITS", AccountLiability, "USD")
	if err != nil {
		t.Fatalf("CalculateAccountBalance: %v", err)
	}
	want := mustMoney(t, "400.00", "USD")
	if eq, _ := balance.Cmp(want); eq != 0 {
		t.Fatalf("expected balance 400.00, got %s", balance)
	}
}

func TestGetEntriesForAccount(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	entry1, err := svc.CreateJournalEntry(ctx, "GET001", "Get test 1", []Line{
		mustLine(t, "CASH001", "Deposit", "100.00", "0.00"),
		mustLine(t, "REV001", "Revenue", "0.00", "100.00"),
	}, "")
	if err != nil {
		t.Fatalf("CreateJournalEntry: %v", err)
	}
	entry2, err := svc.CreateJournalEntry(ctx, "GET002", "Get test 2", []Line{
		mustLine(t, "CASH001", "Withdrawal", "0.00", "50.00"),
		mustLine(t, "CUST001", "Customer account", "50.00", "0.00"),
	}, "")
	if err != nil {
		t.Fatalf("CreateJournalEntry: %v", err)
	}
	entry3, err := svc.CreateJournalEntry(ctx, "GET003", "Get test 3", []Line{
		mustLine(t, "OTHER001", "Other debit", "25.00", "0.00"),
		mustLine(t, "OTHER002", "Other credit", "0.00", "25.00"),
	}, "")
	if err != nil {
		t.Fatalf("CreateJournalEntry: %v", err)
	}

	for _, id := range []string{entry1.ID, entry2.ID, entry3.ID} {
		if _, err := svc.PostJournalEntry(ctx, id); err != nil {
			t.Fatalf("PostJournalEntry: %v", err)
		}
	}

	cashEntries, err := svc.GetEntriesForAccount(ctx, "CASH001", AccountEntryFilter{})
	if err != nil {
		t.Fatalf("GetEntriesForAccount: %v", err)
	}
	if len(cashEntries) != 2 {
		t.Fatalf("expected 2 entries for CASH001, got %d", len(cashEntries))
	}
	ids := map[string]bool{cashEntries[0].ID: true, cashEntries[1].ID: true}
	if !ids[entry1.ID] || !ids[entry2.ID] || ids[entry3.ID] {
		t.Fatalf("unexpected entries returned: %v", cashEntries)
	}
}

func TestGetEntriesForAccountWithStateFilter(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	lines := []Line{
		mustLine(t, "TEST001", "Test entry", "100.00", "0.00"),
		mustLine(t, "TEST002", "Test entry", "0.00", "100.00"),
	}

	entry1, err := svc.CreateJournalEntry(ctx, "FILT001", "Filter test 1", lines, "")
	if err != nil {
		t.Fatalf("CreateJournalEntry: %v", err)
	}
	postedEntry, err := svc.PostJournalEntry(ctx, entry1.ID)
	if err != nil {
		t.Fatalf("PostJournalEntry: %v", err)
	}

	entry2, err := svc.CreateJournalEntry(ctx, "FILT002", "Filter test 2", lines, "")
	if err != nil {
		t.Fatalf("CreateJournalEntry: %v", err)
	}

	posted := StatePosted
	postedEntries, err := svc.GetEntriesForAccount(ctx, "TEST001", AccountEntryFilter{StateFilter: &posted})
	if err != nil {
		t.Fatalf("GetEntriesForAccount: %v", err)
	}
	if len(postedEntries) != 1 || postedEntries[0].ID != postedEntry.ID {
		t.Fatalf("expected only the posted entry, got %+v", postedEntries)
	}

	pending := StatePending
	pendingEntries, err := svc.GetEntriesForAccount(ctx, "TEST001", AccountEntryFilter{StateFilter: &pending})
	if err != nil {
		t.Fatalf("GetEntriesForAccount: %v", err)
	}
	if len(pendingEntries) != 1 || pendingEntries[0].ID != entry2.ID {
		t.Fatalf("expected only the pending entry, got %+v", pendingEntries)
	}

	future := time.Now().UTC().Add(time.Hour)
	noEntries, err := svc.GetEntriesForAccount(ctx, "TEST001", AccountEntryFilter{StartDate: &future})
	if err != nil {
		t.Fatalf("GetEntriesForAccount: %v", err)
	}
	if len(noEntries) != 0 {
		t.Fatalf("expected no entries after a future start_date, got %d", len(noEntries))
	}
}

func TestTrialBalance(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	txns := [][]Line{
		{
			mustLine(t, "CASH", "Cash received", "1000", "0"),
			mustLine(t, "CUSTOMER_DEPOSITS", "Customer deposit", "0", "1000"),
		},
		{
			mustLine(t, "CUSTOMER_CHECKING", "Loan disbursement", "500", "0"),
			mustLine(t, "LOANS_PAYABLE", "Loan liability", "0", "500"),
		},
		{
			mustLine(t, "CASH", "Interest collected", "50", "0"),
			mustLine(t, "INTEREST_INCOME", "Interest earned", "0", "50"),
		},
	}
	for i, lines := range txns {
		entry, err := svc.CreateJournalEntry(ctx, "TB00"+string(rune('1'+i)), "trial balance test", lines, "")
		if err != nil {
			t.Fatalf("CreateJournalEntry: %v", err)
		}
		if _, err := svc.PostJournalEntry(ctx, entry.ID); err != nil {
			t.Fatalf("PostJournalEntry: %v", err)
		}
	}

	accountTypes := map[string]AccountType{
		"CASH":               AccountAsset,
		"CUSTOMER_CHECKING":  AccountAsset,
		"CUSTOMER_DEPOSITS":  AccountLiability,
		"LOANS_PAYABLE":      AccountLiability,
		"INTEREST_INCOME":    AccountRevenue,
	}

	trialBalance, err := svc.GetTrialBalance(ctx, accountTypes, "USD")
	if err != nil {
		t.Fatalf("GetTrialBalance: %v", err)
	}

	expect := map[string]string{
		"CASH":              "1050",
		"CUSTOMER_CHECKING": "500",
		"CUSTOMER_DEPOSITS": "1000",
		"LOANS_PAYABLE":     "500",
		"INTEREST_INCOME":   "50",
	}
	for account, wantStr := range expect {
		want := mustMoney(t, wantStr, "USD")
		got, ok := trialBalance[account]
		if !ok {
			t.Fatalf("missing trial balance entry for %s", account)
		}
		if eq, _ := got.Cmp(want); eq != 0 {
			t.Fatalf("%s: expected %s, got %s", account, want, got)
		}
	}
}

func TestBalanceCalculationIgnoresPendingEntries(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	posted, err := svc.CreateJournalEntry(ctx, "POST001", "Posted entry", []Line{
		mustLine(t, "TEST_ACCOUNT", "Posted entry", "100", "0"),
		mustLine(t, "OTHER_ACCOUNT", "Posted entry", "0", "100"),
	}, "")
	if err != nil {
		t.Fatalf("CreateJournalEntry: %v", err)
	}
	if _, err := svc.PostJournalEntry(ctx, posted.ID); err != nil {
		t.Fatalf("PostJournalEntry: %v", err)
	}

	if _, err := svc.CreateJournalEntry(ctx, "PEND001", "Pending entry", []Line{
		mustLine(t, "TEST_ACCOUNT", "Pending entry", "50", "0"),
		mustLine(t, "OTHER_ACCOUNT", "Pending entry", "0", "50"),
	}, ""); err != nil {
		t.Fatalf("CreateJournalEntry: %v", err)
	}

	balance, err := svc.CalculateAccountBalance(ctx, "TEST_ACCOUNT", AccountAsset, "USD")
	if err != nil {
		t.Fatalf("CalculateAccountBalance: %v", err)
	}
	want := mustMoney(t, "100", "USD")
	if eq, _ := balance.Cmp(want); eq != 0 {
		t.Fatalf("expected balance 100 (pending entry excluded), got %s", balance)
	}
}
