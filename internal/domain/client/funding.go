package client

// FundingSource is one of the ways a house purchase is financed
type FundingSource string

const (
	SourceDownPayment         FundingSource = "cuotaInicial"
	SourceCredit              FundingSource = "credito"
	SourceHousingSubsidy      FundingSource = "subsidioVivienda"
	SourceCompensationSubsidy FundingSource = "subsidioCaja"
)

// AllFundingSources lists sources in display order
func AllFundingSources() []FundingSource {
	return []FundingSource{SourceDownPayment, SourceCredit, SourceHousingSubsidy, SourceCompensationSubsidy}
}

// IsValid checks if the source is known
func (s FundingSource) IsValid() bool {
	switch s {
	case SourceDownPayment, SourceCredit, SourceHousingSubsidy, SourceCompensationSubsidy:
		return true
	}
	return false
}

// String returns the stored representation
func (s FundingSource) String() string {
	return string(s)
}

// Label returns the human-facing name of the source
func (s FundingSource) Label() string {
	switch s {
	case SourceDownPayment:
		return "Cuota inicial"
	case SourceCredit:
		return "Crédito hipotecario"
	case SourceHousingSubsidy:
		return "Subsidio de vivienda"
	case SourceCompensationSubsidy:
		return "Subsidio caja de compensación"
	}
	return string(s)
}

// IsSingularDisbursement reports whether the source pays out once.
// Credit and subsidies are disbursed in a single payment.
func (s FundingSource) IsSingularDisbursement() bool {
	return s == SourceCredit || s == SourceHousingSubsidy || s == SourceCompensationSubsidy
}

// DisbursementMapping links a funding source to the process steps it drives
type DisbursementMapping struct {
	RequestStep      StepKey
	DisbursementStep StepKey
	EvidenceSlot     string
}

var disbursementMap = map[FundingSource]DisbursementMapping{
	SourceCredit: {
		RequestStep:      StepCreditDisbursementRequest,
		DisbursementStep: StepCreditDisbursement,
		EvidenceSlot:     "desembolsoCreditoSoporte",
	},
	SourceHousingSubsidy: {
		RequestStep:      StepHousingSubsidyRequest,
		DisbursementStep: StepHousingSubsidyDisbursement,
		EvidenceSlot:     "desembolsoVISSoporte",
	},
	SourceCompensationSubsidy: {
		RequestStep:      StepCompensationSubsidyRequest,
		DisbursementStep: StepCompensationSubsidyDisbursement,
		EvidenceSlot:     "desembolsoCajaSoporte",
	},
}

// DisbursementStepsFor returns the process steps driven by a source.
// cuotaInicial has no mapping.
func DisbursementStepsFor(source FundingSource) (DisbursementMapping, bool) {
	m, ok := disbursementMap[source]
	return m, ok
}

// SourceForDisbursementStep returns the source whose payments complete step
func SourceForDisbursementStep(step StepKey) (FundingSource, bool) {
	for source, m := range disbursementMap {
		if m.DisbursementStep == step {
			return source, true
		}
	}
	return "", false
}
