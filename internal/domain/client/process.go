package client

import (
	"encoding/json"
	"fmt"
	"time"
)

// StepKey identifies a milestone of the client process
type StepKey string

const (
	StepPromiseSent                     StepKey = "promesaEnviada"
	StepPromiseReceived                 StepKey = "promesaRecibida"
	StepAppraisalDocsSent               StepKey = "envioDocumentacionAvaluo"
	StepAppraisalDone                   StepKey = "avaluoRealizado"
	StepDeedSent                        StepKey = "escrituraEnviada"
	StepDeedReceived                    StepKey = "escrituraRecibida"
	StepRatificationLetter              StepKey = "cartaRatificacion"
	StepRegistrationSlip                StepKey = "boletaRegistro"
	StepCreditDisbursementRequest       StepKey = "solicitudDesembolsoCredito"
	StepCreditDisbursement              StepKey = "desembolsoCredito"
	StepHousingSubsidyRequest           StepKey = "solicitudDesembolsoVIS"
	StepHousingSubsidyDisbursement      StepKey = "desembolsoSubsidioVivienda"
	StepCompensationSubsidyRequest      StepKey = "solicitudDesembolsoCaja"
	StepCompensationSubsidyDisbursement StepKey = "desembolsoSubsidioCaja"
	StepSalesInvoice                    StepKey = "facturaVenta"
)

// EvidenceSlot is a document a step asks for
type EvidenceSlot struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// StepDefinition describes one row of the process table
type StepDefinition struct {
	Key   StepKey
	Label string
	Style string
	// Track is set for steps that belong to a source's disbursement pair
	Track         FundingSource
	PaymentDriven bool
	Terminal      bool
	Evidence      []EvidenceSlot
	appliesTo     func(Financing) bool
}

// AppliesTo reports whether the step is part of a process with financing f
func (d StepDefinition) AppliesTo(f Financing) bool {
	if d.appliesTo == nil {
		return true
	}
	return d.appliesTo(f)
}

func requires(source FundingSource) func(Financing) bool {
	return func(f Financing) bool { return f.Applies(source) }
}

var processDefinition = []StepDefinition{
	{Key: StepPromiseSent, Label: "Promesa enviada", Style: "info",
		Evidence: []EvidenceSlot{{ID: "promesaEnviadaDoc", Label: "Promesa de compraventa"}}},
	{Key: StepPromiseReceived, Label: "Promesa firmada recibida", Style: "info",
		Evidence: []EvidenceSlot{{ID: "promesaRecibidaDoc", Label: "Promesa firmada"}}},
	{Key: StepAppraisalDocsSent, Label: "Documentación enviada para avalúo", Style: "info", appliesTo: requires(SourceCredit),
		Evidence: []EvidenceSlot{{ID: "docsAvaluo", Label: "Soporte de envío"}}},
	{Key: StepAppraisalDone, Label: "Avalúo realizado", Style: "info", appliesTo: requires(SourceCredit),
		Evidence: []EvidenceSlot{{ID: "informeAvaluo", Label: "Informe de avalúo"}}},
	{Key: StepDeedSent, Label: "Minuta de escritura enviada", Style: "primary",
		Evidence: []EvidenceSlot{{ID: "escrituraBorrador", Label: "Minuta"}}},
	{Key: StepDeedReceived, Label: "Escritura firmada", Style: "primary",
		Evidence: []EvidenceSlot{{ID: "escrituraFirmada", Label: "Escritura firmada"}}},
	{Key: StepRatificationLetter, Label: "Carta de ratificación recibida", Style: "primary", appliesTo: requires(SourceCredit),
		Evidence: []EvidenceSlot{{ID: "cartaRatificacionDoc", Label: "Carta de ratificación"}}},
	{Key: StepRegistrationSlip, Label: "Boleta de registro", Style: "primary",
		Evidence: []EvidenceSlot{{ID: "boletaRegistroDoc", Label: "Boleta de registro"}}},
	{Key: StepCreditDisbursementRequest, Label: "Desembolso de crédito solicitado", Style: "warning",
		Track: SourceCredit, appliesTo: requires(SourceCredit),
		Evidence: []EvidenceSlot{{ID: "solicitudCreditoDoc", Label: "Solicitud de desembolso"}}},
	{Key: StepCreditDisbursement, Label: "Crédito desembolsado", Style: "success",
		Track: SourceCredit, PaymentDriven: true, appliesTo: requires(SourceCredit),
		Evidence: []EvidenceSlot{{ID: "desembolsoCreditoSoporte", Label: "Soporte de desembolso"}}},
	{Key: StepHousingSubsidyRequest, Label: "Desembolso subsidio VIS solicitado", Style: "warning",
		Track: SourceHousingSubsidy, appliesTo: requires(SourceHousingSubsidy),
		Evidence: []EvidenceSlot{{ID: "solicitudVISDoc", Label: "Solicitud de desembolso"}}},
	{Key: StepHousingSubsidyDisbursement, Label: "Subsidio de vivienda desembolsado", Style: "success",
		Track: SourceHousingSubsidy, PaymentDriven: true, appliesTo: requires(SourceHousingSubsidy),
		Evidence: []EvidenceSlot{{ID: "desembolsoVISSoporte", Label: "Soporte de desembolso"}}},
	{Key: StepCompensationSubsidyRequest, Label: "Desembolso subsidio caja solicitado", Style: "warning",
		Track: SourceCompensationSubsidy, appliesTo: requires(SourceCompensationSubsidy),
		Evidence: []EvidenceSlot{{ID: "solicitudCajaDoc", Label: "Solicitud de desembolso"}}},
	{Key: StepCompensationSubsidyDisbursement, Label: "Subsidio de caja desembolsado", Style: "success",
		Track: SourceCompensationSubsidy, PaymentDriven: true, appliesTo: requires(SourceCompensationSubsidy),
		Evidence: []EvidenceSlot{{ID: "desembolsoCajaSoporte", Label: "Soporte de desembolso"}}},
	{Key: StepSalesInvoice, Label: "Factura de venta emitida", Style: "success", Terminal: true,
		Evidence: []EvidenceSlot{{ID: "facturaVentaDoc", Label: "Factura de venta"}}},
}

var stepIndex = func() map[StepKey]int {
	idx := make(map[StepKey]int, len(processDefinition))
	for i, d := range processDefinition {
		idx[d.Key] = i
	}
	return idx
}()

// ProcessDefinition returns the ordered process table
func ProcessDefinition() []StepDefinition {
	out := make([]StepDefinition, len(processDefinition))
	copy(out, processDefinition)
	return out
}

// LookupStep returns the definition of key
func LookupStep(key StepKey) (StepDefinition, bool) {
	i, ok := stepIndex[key]
	if !ok {
		return StepDefinition{}, false
	}
	return processDefinition[i], true
}

// IsValid checks that the key belongs to the process table
func (k StepKey) IsValid() bool {
	_, ok := stepIndex[k]
	return ok
}

// String returns the stored representation
func (k StepKey) String() string {
	return string(k)
}

// Label returns the display label of the step
func (k StepKey) Label() string {
	if d, ok := LookupStep(k); ok {
		return d.Label
	}
	return string(k)
}

// EvidenceStatus tracks an evidence document
type EvidenceStatus string

const (
	EvidencePending  EvidenceStatus = "pendiente"
	EvidenceUploaded EvidenceStatus = "subido"
)

// Evidence is a document attached to a step
type Evidence struct {
	URL    string         `json:"url"`
	Status EvidenceStatus `json:"estado"`
}

// ActivityEntry is one line of a step's history
type ActivityEntry struct {
	Message  string    `json:"mensaje"`
	UserName string    `json:"userName"`
	Date     time.Time `json:"fecha"`
}

// StepState is the state of one step for a client
type StepState struct {
	Completed bool                `json:"completado"`
	Date      *time.Time          `json:"fecha"`
	Evidence  map[string]Evidence `json:"evidencias"`
	Activity  []ActivityEntry     `json:"actividad"`
}

func newStepState(def StepDefinition) *StepState {
	s := &StepState{
		Evidence: make(map[string]Evidence, len(def.Evidence)),
		Activity: []ActivityEntry{},
	}
	for _, slot := range def.Evidence {
		s.Evidence[slot.ID] = Evidence{Status: EvidencePending}
	}
	return s
}

func (s *StepState) log(message, user string, at time.Time) {
	s.Activity = append(s.Activity, ActivityEntry{Message: message, UserName: user, Date: at})
}

func (s *StepState) complete(date time.Time, message, user string) {
	s.Completed = true
	d := date
	s.Date = &d
	s.log(message, user, time.Now())
}

// reopen keeps evidence as audit trail
func (s *StepState) reopen(message, user string) {
	s.Completed = false
	s.Date = nil
	s.log(message, user, time.Now())
}

func (s *StepState) attach(slot, url string) {
	if s.Evidence == nil {
		s.Evidence = make(map[string]Evidence)
	}
	s.Evidence[slot] = Evidence{URL: url, Status: EvidenceUploaded}
}

// touched reports whether anything was ever recorded on the step
func (s *StepState) touched() bool {
	if s.Completed || len(s.Activity) > 0 {
		return true
	}
	for _, e := range s.Evidence {
		if e.URL != "" {
			return true
		}
	}
	return false
}

// Process maps each applicable step to its state
type Process map[StepKey]*StepState

// NewProcess builds the empty process for financing f
func NewProcess(f Financing) Process {
	p := make(Process)
	for _, def := range processDefinition {
		if def.AppliesTo(f) {
			p[def.Key] = newStepState(def)
		}
	}
	return p
}

// IsCompleted is nil-safe
func (p Process) IsCompleted(key StepKey) bool {
	if p == nil {
		return false
	}
	s, ok := p[key]
	return ok && s != nil && s.Completed
}

// Step returns the state of key, if present
func (p Process) Step(key StepKey) (*StepState, bool) {
	if p == nil {
		return nil, false
	}
	s, ok := p[key]
	return s, ok && s != nil
}

// ensure returns the state of key, creating it when missing
func (p Process) ensure(key StepKey) *StepState {
	if s, ok := p[key]; ok && s != nil {
		return s
	}
	def, _ := LookupStep(key)
	s := newStepState(def)
	p[key] = s
	return s
}

// Sync adds steps that became applicable and drops untouched steps that no
// longer apply. Touched steps are kept as history.
func (p Process) Sync(f Financing) (added, removed []StepKey) {
	for _, def := range processDefinition {
		s, present := p[def.Key]
		applies := def.AppliesTo(f)
		switch {
		case applies && !present:
			p[def.Key] = newStepState(def)
			added = append(added, def.Key)
		case !applies && present && (s == nil || !s.touched()):
			delete(p, def.Key)
			removed = append(removed, def.Key)
		}
	}
	return added, removed
}

// UnmarshalJSON rejects step keys outside the process table
func (p *Process) UnmarshalJSON(data []byte) error {
	var raw map[string]*StepState
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(Process, len(raw))
	for k, v := range raw {
		key := StepKey(k)
		if !key.IsValid() {
			return fmt.Errorf("unknown process step %q", k)
		}
		if v != nil && v.Evidence == nil {
			v.Evidence = make(map[string]Evidence)
		}
		out[key] = v
	}
	*p = out
	return nil
}
