package audit

// EventType is the closed set of audit events the platform can emit. The
// ledger module only emits the journal-entry subset; the rest of the enum
// is carried so every other subsystem logs through the same vocabulary.
type EventType string

const (
	EventCustomerCreated   EventType = "customer_created"
	EventCustomerUpdated   EventType = "customer_updated"
	EventKYCStatusChanged  EventType = "kyc_status_changed"

	EventAccountCreated  EventType = "account_created"
	EventAccountUpdated  EventType = "account_updated"
	EventAccountFrozen   EventType = "account_frozen"
	EventAccountUnfrozen EventType = "account_unfrozen"
	EventAccountClosed   EventType = "account_closed"

	EventTransactionCreated  EventType = "transaction_created"
	EventTransactionPosted   EventType = "transaction_posted"
	EventTransactionFailed   EventType = "transaction_failed"
	EventTransactionReversed EventType = "transaction_reversed"

	EventJournalEntryCreated  EventType = "journal_entry_created"
	EventJournalEntryPosted   EventType = "journal_entry_posted"
	EventJournalEntryReversed EventType = "journal_entry_reversed"

	EventCreditLineCreated       EventType = "credit_line_created"
	EventCreditLineLimitChanged  EventType = "credit_line_limit_changed"
	EventCreditStatementGenerated EventType = "credit_statement_generated"
	EventCreditPaymentMade       EventType = "credit_payment_made"

	EventProductCreated   EventType = "product_created"
	EventProductUpdated   EventType = "product_updated"
	EventProductSuspended EventType = "product_suspended"
	EventProductRetired   EventType = "product_retired"

	EventLoanOriginated EventType = "loan_originated"
	EventLoanDisbursed  EventType = "loan_disbursed"
	EventLoanPaymentMade EventType = "loan_payment_made"
	EventLoanPaidOff    EventType = "loan_paid_off"

	EventInterestAccrued EventType = "interest_accrued"
	EventInterestPosted  EventType = "interest_posted"

	EventAccountHoldPlaced          EventType = "account_hold_placed"
	EventAccountHoldReleased        EventType = "account_hold_released"
	EventSuspiciousActivityFlagged  EventType = "suspicious_activity_flagged"
	EventLargeTransactionReported   EventType = "large_transaction_reported"

	EventWorkflowDefinitionCreated EventType = "workflow_definition_created"
	EventWorkflowDefinitionUpdated EventType = "workflow_definition_updated"
	EventWorkflowInstanceCreated   EventType = "workflow_instance_created"
	EventWorkflowInstanceUpdated   EventType = "workflow_instance_updated"

	EventCustomFieldCreated  EventType = "custom_field_created"
	EventCustomFieldUpdated  EventType = "custom_field_updated"
	EventCustomFieldValueSet EventType = "custom_field_value_set"
	EventComplianceCheck     EventType = "compliance_check"

	EventUserCreated    EventType = "user_created"
	EventUserUpdated    EventType = "user_updated"
	EventUserLocked     EventType = "user_locked"
	EventUserUnlocked   EventType = "user_unlocked"
	EventRoleCreated    EventType = "role_created"
	EventRoleUpdated    EventType = "role_updated"
	EventLoginSuccess   EventType = "login_success"
	EventLoginFailed    EventType = "login_failed"
	EventPasswordChanged EventType = "password_changed"

	EventSystemStart          EventType = "system_start"
	EventSystemStop           EventType = "system_stop"
	EventBackupCreated        EventType = "backup_created"
	EventAuditIntegrityCheck  EventType = "audit_integrity_check"
)
