package audit

import (
	"context"
	"fmt"
	"strings"

	"github.com/constructora/backend/internal/domain/audit"
	"github.com/constructora/backend/internal/domain/client"
	"github.com/constructora/backend/internal/domain/housing"
	"github.com/constructora/backend/internal/domain/ledger"
	"github.com/constructora/backend/internal/domain/shared"
	"github.com/constructora/backend/internal/domain/shared/valueobject"
	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// EventHandler turns committed domain events into audit records and
// notifications. Sink failures are logged and never returned, so a failing
// sink cannot affect the operation that raised the event.
type EventHandler struct {
	sink   audit.Sink
	logger *zap.Logger
}

// NewEventHandler creates an EventHandler writing to sink
func NewEventHandler(sink audit.Sink, logger *zap.Logger) *EventHandler {
	return &EventHandler{sink: sink, logger: logger}
}

// EventTypes returns the audited event types
func (h *EventHandler) EventTypes() []string {
	types := ledger.PaymentEventTypes()
	return append(types,
		client.EventClientOnboarded,
		client.EventStepCompleted,
		client.EventStepReopened,
		client.EventFinancingChanged,
		client.EventRenunciationCreated,
		client.EventRenunciationClosed,
		housing.EventBalanceMismatch,
	)
}

// entry is what one event writes to the sink
type entry struct {
	message      string
	details      map[string]any
	notification audit.NotificationType
	notice       string
	link         string
}

// Handle writes the audit record and notification for event
func (h *EventHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	e, ok := h.describe(event)
	if !ok {
		return nil
	}
	if err := h.sink.CreateAuditLog(ctx, e.message, e.details, event.Actor(), event.EventType()); err != nil {
		h.logger.Error("Failed to write audit log",
			zap.String("event_type", event.EventType()),
			zap.String("event_id", event.EventID().String()),
			zap.Error(err),
		)
	}
	if e.notification == "" {
		return nil
	}
	notice := e.notice
	if notice == "" {
		notice = e.message
	}
	if err := h.sink.CreateNotification(ctx, e.notification, notice, e.link); err != nil {
		h.logger.Error("Failed to write notification",
			zap.String("event_type", event.EventType()),
			zap.String("event_id", event.EventID().String()),
			zap.Error(err),
		)
	}
	return nil
}

// name title-cases a person's name. Casers are stateful, so one is built per call.
func (h *EventHandler) name(s string) string {
	return cases.Title(language.Spanish).String(strings.ToLower(strings.TrimSpace(s)))
}

func (h *EventHandler) describe(event shared.DomainEvent) (entry, bool) {
	switch e := event.(type) {
	case *ledger.PaymentEvent:
		return h.describePayment(e), true
	case *client.ClientOnboardedEvent:
		return entry{
			message:      fmt.Sprintf("Cliente %s creado y asignado a %s", h.name(e.ClientName), e.HouseLabel),
			details:      map[string]any{"clienteId": e.AggregateID().String(), "vivienda": e.HouseLabel},
			notification: audit.NotificationClient,
			link:         clientLink(e.AggregateID().String()),
		}, true
	case *client.StepChangedEvent:
		verb := "completado"
		if e.EventType() == client.EventStepReopened {
			verb = "reabierto"
		}
		msg := fmt.Sprintf("Paso \"%s\" %s para %s", e.StepLabel, verb, h.name(e.ClientName))
		if e.Reason != "" {
			msg += ". Motivo: " + e.Reason
		}
		return entry{
			message: msg,
			details: map[string]any{"clienteId": e.AggregateID().String(), "paso": string(e.Step)},
		}, true
	case *client.FinancingChangedEvent:
		return entry{
			message: fmt.Sprintf("Financiación de %s actualizada", h.name(e.ClientName)),
			details: map[string]any{
				"clienteId":       e.AggregateID().String(),
				"pasosAgregados":  stepKeys(e.Added),
				"pasosEliminados": stepKeys(e.Removed),
			},
		}, true
	case *client.RenunciationEvent:
		details := map[string]any{
			"renunciaId":     e.AggregateID().String(),
			"clienteId":      e.ClientID.String(),
			"vivienda":       e.HouseLabel,
			"totalAbonado":   e.TotalPaid.String(),
			"penalidad":      e.Penalty.String(),
			"totalADevolver": e.Refund.String(),
		}
		if e.EventType() == client.EventRenunciationClosed {
			return entry{
				message:      fmt.Sprintf("Renuncia de %s cerrada; devolución de %s", h.name(e.ClientName), valueobject.FormatCOP(e.Refund)),
				details:      details,
				notification: audit.NotificationRenunciation,
				link:         "/renuncias/" + e.AggregateID().String(),
			}, true
		}
		return entry{
			message: fmt.Sprintf("Renuncia registrada para %s (%s), total abonado %s",
				h.name(e.ClientName), e.HouseLabel, valueobject.FormatCOP(e.TotalPaid)),
			details:      details,
			notification: audit.NotificationRenunciation,
			link:         "/renuncias/" + e.AggregateID().String(),
		}, true
	case *housing.BalanceMismatchEvent:
		return entry{
			message: fmt.Sprintf("Saldo de %s no coincide con los abonos: guardado %s, abonos %s",
				e.HouseLabel, valueobject.FormatCOP(e.StoredPaid), valueobject.FormatCOP(e.LedgerPaid)),
			details: map[string]any{
				"viviendaId":    e.AggregateID().String(),
				"totalGuardado": e.StoredPaid.String(),
				"totalAbonos":   e.LedgerPaid.String(),
			},
			notification: audit.NotificationAlert,
			link:         "/viviendas/" + e.AggregateID().String(),
		}, true
	}
	return entry{}, false
}

func (h *EventHandler) describePayment(e *ledger.PaymentEvent) entry {
	who := h.name(e.ClientName)
	amount := valueobject.FormatCOP(e.Amount)
	details := map[string]any{
		"abonoId":        e.PaymentID.String(),
		"consecutivo":    e.Sequence,
		"clienteId":      e.ClientID.String(),
		"viviendaId":     e.HouseID.String(),
		"fuente":         string(e.Source),
		"monto":          e.Amount.String(),
		"totalAbonado":   e.HouseTotalPaid.String(),
		"saldoPendiente": e.HouseBalance.String(),
	}
	if e.ProjectName != "" {
		details["proyecto"] = e.ProjectName
	}
	en := entry{details: details, link: clientLink(e.ClientID.String())}

	switch e.EventType() {
	case ledger.EventPaymentRegistered:
		en.message = fmt.Sprintf("Abono #%d de %s (%s) registrado para %s en %s",
			e.Sequence, amount, e.Source.Label(), who, e.HouseLabel)
		en.notification = audit.NotificationPayment
		if e.Step != "" {
			en.notification = audit.NotificationDisbursement
			en.message += fmt.Sprintf(". Paso \"%s\" completado", e.Step.Label())
		}
		if e.SourceFullyPaid {
			en.notice = fmt.Sprintf("%s completó la %s con el abono #%d", who, strings.ToLower(e.Source.Label()), e.Sequence)
		}
	case ledger.EventCreditDisbursed:
		en.message = fmt.Sprintf("Desembolso de crédito #%d por %s registrado para %s en %s",
			e.Sequence, amount, who, e.HouseLabel)
		en.notification = audit.NotificationDisbursement
	case ledger.EventPaymentUpdated:
		details["montoAnterior"] = e.PreviousAmount.String()
		en.message = fmt.Sprintf("Abono #%d de %s editado: %s a %s",
			e.Sequence, who, valueobject.FormatCOP(e.PreviousAmount), amount)
	case ledger.EventPaymentVoided:
		details["motivo"] = e.Reason
		en.message = fmt.Sprintf("Abono #%d de %s por %s anulado. Motivo: %s", e.Sequence, who, amount, e.Reason)
		if e.Step != "" {
			en.message += fmt.Sprintf(". Paso \"%s\" reabierto", e.Step.Label())
		}
		en.notification = audit.NotificationVoid
	case ledger.EventPaymentVoidReverted:
		en.message = fmt.Sprintf("Anulación del abono #%d de %s por %s revertida", e.Sequence, who, amount)
		en.notification = audit.NotificationVoid
	case ledger.EventBalanceCondoned:
		en.message = fmt.Sprintf("Saldo de %s condonado a %s en %s", amount, who, e.HouseLabel)
		en.notification = audit.NotificationPayment
	default:
		en.message = fmt.Sprintf("Abono #%d de %s modificado", e.Sequence, who)
	}
	return en
}

func clientLink(id string) string {
	return "/clientes/" + id
}

func stepKeys(keys []client.StepKey) []string {
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = string(k)
	}
	return out
}

var _ shared.EventHandler = (*EventHandler)(nil)
