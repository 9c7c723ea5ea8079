package client

// Error codes raised by the client process rules
const (
	CodeRequestPending      = "SOLICITUD_PENDIENTE"
	CodeProcessClosed       = "PROCESS_CLOSED"
	CodeClientInactive      = "CLIENT_INACTIVE"
	CodeStepNotApplicable   = "STEP_NOT_APPLICABLE"
	CodeStepOrder           = "STEP_ORDER"
	CodePaymentDrivenStep   = "PAYMENT_DRIVEN_STEP"
	CodeMissingEvidence     = "MISSING_EVIDENCE"
	CodeActiveDisbursement  = "ACTIVE_DISBURSEMENT"
	CodeFinancingMismatch   = "FINANCING_MISMATCH"
	CodeRenunciationPending = "RENUNCIATION_PENDING"
	CodeDuplicateDocument   = "DUPLICATE_DOCUMENT"
)
