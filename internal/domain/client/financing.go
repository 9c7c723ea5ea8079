package client

import (
	"fmt"

	"github.com/constructora/backend/internal/domain/shared"
	"github.com/constructora/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// SourceTerms is the agreement for a single funding source
type SourceTerms struct {
	Applies bool            `json:"aplica"`
	Amount  decimal.Decimal `json:"monto"`
	// Entity is the bank or compensation fund, when relevant
	Entity string `json:"entidad,omitempty"`
}

// Financing holds the agreed ("pactado") amount per funding source
type Financing struct {
	DownPayment         SourceTerms `json:"cuotaInicial"`
	Credit              SourceTerms `json:"credito"`
	HousingSubsidy      SourceTerms `json:"subsidioVivienda"`
	CompensationSubsidy SourceTerms `json:"subsidioCaja"`
}

// Terms returns the terms for source
func (f Financing) Terms(source FundingSource) SourceTerms {
	switch source {
	case SourceDownPayment:
		return f.DownPayment
	case SourceCredit:
		return f.Credit
	case SourceHousingSubsidy:
		return f.HousingSubsidy
	case SourceCompensationSubsidy:
		return f.CompensationSubsidy
	}
	return SourceTerms{}
}

// Applies reports whether the source is part of the agreement
func (f Financing) Applies(source FundingSource) bool {
	return f.Terms(source).Applies
}

// Agreed returns the pactado amount for source, zero when it does not apply
func (f Financing) Agreed(source FundingSource) decimal.Decimal {
	t := f.Terms(source)
	if !t.Applies {
		return decimal.Zero
	}
	return t.Amount
}

// Total sums the agreed amounts of all applicable sources
func (f Financing) Total() decimal.Decimal {
	total := decimal.Zero
	for _, s := range AllFundingSources() {
		total = total.Add(f.Agreed(s))
	}
	return total
}

// Normalized returns a copy with amounts rounded and non-applicable amounts cleared
func (f Financing) Normalized() Financing {
	norm := func(t SourceTerms) SourceTerms {
		if !t.Applies {
			return SourceTerms{}
		}
		t.Amount = t.Amount.Round(valueobject.AmountPlaces)
		return t
	}
	return Financing{
		DownPayment:         norm(f.DownPayment),
		Credit:              norm(f.Credit),
		HousingSubsidy:      norm(f.HousingSubsidy),
		CompensationSubsidy: norm(f.CompensationSubsidy),
	}
}

// Validate checks that applicable sources carry a positive amount
func (f Financing) Validate() error {
	applies := false
	for _, s := range AllFundingSources() {
		t := f.Terms(s)
		if !t.Applies {
			continue
		}
		applies = true
		if !t.Amount.IsPositive() {
			return shared.NewDomainError(shared.CodeInvalidInput,
				fmt.Sprintf("agreed amount for %s must be positive", s.Label()))
		}
	}
	if !applies {
		return shared.NewDomainError(shared.CodeInvalidInput, "at least one funding source must apply")
	}
	return nil
}
