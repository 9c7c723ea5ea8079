package client

// Status is the lifecycle state of a client
type Status string

const (
	StatusActive    Status = "activo"
	StatusRenounced Status = "renunciado"
	StatusInactive  Status = "inactivo"
)

// IsValid checks if the status is known
func (s Status) IsValid() bool {
	switch s {
	case StatusActive, StatusRenounced, StatusInactive:
		return true
	}
	return false
}

// String returns the stored representation
func (s Status) String() string {
	return string(s)
}

// StatusView is the label shown for a client's progress
type StatusView struct {
	Label string  `json:"label"`
	Style string  `json:"style"`
	Step  StepKey `json:"step,omitempty"`
}

var (
	statusGathering           = StatusView{Label: "Recopilando documentación", Style: "secondary"}
	statusPendingRenunciation = StatusView{Label: "Renuncia pendiente", Style: "warning"}
	statusRenounced           = StatusView{Label: "Renunció", Style: "dark"}
)

// DeriveStatus maps a process to a single status. It never panics; a nil or
// empty process counts as nothing completed.
func DeriveStatus(status Status, process Process, pendingRenunciation bool) StatusView {
	if status == StatusRenounced {
		return statusRenounced
	}
	if pendingRenunciation {
		return statusPendingRenunciation
	}
	for i := len(processDefinition) - 1; i >= 0; i-- {
		def := processDefinition[i]
		if process.IsCompleted(def.Key) {
			return StatusView{Label: def.Label, Style: def.Style, Step: def.Key}
		}
	}
	return statusGathering
}

// DeriveClientStatus is DeriveStatus for a client, nil-safe
func DeriveClientStatus(c *Client) StatusView {
	if c == nil {
		return statusGathering
	}
	return DeriveStatus(c.Status, c.Process, c.PendingRenunciationID != nil)
}
