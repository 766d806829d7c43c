package ledger

// AccountType determines an account's normal balance side. Asset and
// expense accounts grow with debits; liability, equity and revenue
// accounts grow with credits.
type AccountType string

const (
	AccountAsset     AccountType = "asset"
	AccountLiability AccountType = "liability"
	AccountEquity    AccountType = "equity"
	AccountRevenue   AccountType = "revenue"
	AccountExpense   AccountType = "expense"
)

// normalSideIsDebit reports whether accountType's normal balance grows
// with debits (true) or credits (false).
func normalSideIsDebit(accountType AccountType) bool {
	switch accountType {
	case AccountAsset, AccountExpense:
		return true
	default:
		return false
	}
}
