package results

// ResultDetail statuses in canonical forward order. INTERNAL_ANALYSIS and
// SENT_EXTERNAL/RECEIVED_EXTERNAL are alternative branches between sample
// reception and completion.
const (
	DetailPendingSample    = "pending_sample"
	DetailSampleReceived   = "sample_received"
	DetailInternalAnalysis = "internal_analysis"
	DetailSentExternal     = "sent_external"
	DetailReceivedExternal = "received_external"
	DetailCompleted        = "completed"
	DetailValidated        = "validated"
	DetailDelivered        = "delivered"
)

// Result roll-up statuses.
const (
	StatusPending         = "pending"
	StatusInProgress      = "in_progress"
	StatusPartialResults  = "partial_results"
	StatusCompleted       = "completed"
	StatusPartialDelivery = "partial_delivery"
	StatusDelivered       = "delivered"
)

var detailLabels = map[string]string{
	DetailPendingSample:    "Pendiente de muestra",
	DetailSampleReceived:   "Muestra recibida",
	DetailInternalAnalysis: "En análisis interno",
	DetailSentExternal:     "Enviado a laboratorio externo",
	DetailReceivedExternal: "Recibido de laboratorio externo",
	DetailCompleted:        "Completado",
	DetailValidated:        "Validado",
	DetailDelivered:        "Entregado",
}

var resultLabels = map[string]string{
	StatusPending:         "Pendiente",
	StatusInProgress:      "En progreso",
	StatusPartialResults:  "Resultados parciales",
	StatusCompleted:       "Completado",
	StatusPartialDelivery: "Entrega parcial",
	StatusDelivered:       "Entregado",
}

// DetailLabel returns the display label for a detail status, falling back to
// the raw value.
func DetailLabel(status string) string {
	if l, ok := detailLabels[status]; ok {
		return l
	}
	return status
}

// ResultLabel returns the display label for a roll-up status.
func ResultLabel(status string) string {
	if l, ok := resultLabels[status]; ok {
		return l
	}
	return status
}

// allowedTransitions maps a detail status to its reachable targets, current
// status included. The external branch must pass through SENT_EXTERNAL before
// RECEIVED_EXTERNAL becomes reachable; terminal statuses only move forward.
var allowedTransitions = map[string][]string{
	DetailPendingSample: {
		DetailPendingSample, DetailSampleReceived, DetailInternalAnalysis,
		DetailSentExternal, DetailReceivedExternal, DetailCompleted,
		DetailValidated, DetailDelivered,
	},
	DetailSampleReceived: {
		DetailSampleReceived, DetailInternalAnalysis, DetailSentExternal,
		DetailCompleted, DetailValidated, DetailDelivered,
	},
	DetailInternalAnalysis: {
		DetailInternalAnalysis, DetailCompleted, DetailValidated, DetailDelivered,
	},
	DetailSentExternal: {
		DetailSentExternal, DetailReceivedExternal, DetailCompleted,
		DetailValidated, DetailDelivered,
	},
	DetailReceivedExternal: {
		DetailReceivedExternal, DetailCompleted, DetailValidated, DetailDelivered,
	},
	DetailCompleted: {DetailCompleted, DetailValidated, DetailDelivered},
	DetailValidated: {DetailValidated, DetailDelivered},
	DetailDelivered: {DetailDelivered},
}

// Transition is a reachable status with its display label.
type Transition struct {
	Status string `json:"status"`
	Label  string `json:"label"`
}

// AllowedTransitions returns the ordered reachable statuses for the current
// one. An unrecognized status can only remain itself.
func AllowedTransitions(current string) []Transition {
	targets, ok := allowedTransitions[current]
	if !ok {
		targets = []string{current}
	}
	out := make([]Transition, len(targets))
	for i, s := range targets {
		out[i] = Transition{Status: s, Label: DetailLabel(s)}
	}
	return out
}

// CanTransition reports whether moving from current to target is allowed.
func CanTransition(current, target string) bool {
	targets, ok := allowedTransitions[current]
	if !ok {
		return target == current
	}
	for _, s := range targets {
		if s == target {
			return true
		}
	}
	return false
}

var inProgressStatuses = map[string]bool{
	DetailSampleReceived:   true,
	DetailInternalAnalysis: true,
	DetailSentExternal:     true,
	DetailReceivedExternal: true,
}

// ComputeRollup derives a Result's aggregate status from its detail statuses.
// Rule order is load-bearing: earlier rules win even when later conditions
// also hold. An empty detail set leaves the status unchanged (ok=false).
func ComputeRollup(details []string) (status string, ok bool) {
	if len(details) == 0 {
		return "", false
	}

	allDelivered := true
	anyDelivered := false
	allCompleted := true
	anyCompleted := false
	anyInProgress := false
	allPending := true
	for _, d := range details {
		if d == DetailDelivered {
			anyDelivered = true
		} else {
			allDelivered = false
		}
		if d == DetailCompleted || d == DetailValidated {
			anyCompleted = true
		} else {
			allCompleted = false
		}
		if inProgressStatuses[d] {
			anyInProgress = true
		}
		if d != DetailPendingSample {
			allPending = false
		}
	}

	switch {
	case allDelivered:
		return StatusDelivered, true
	case anyDelivered:
		return StatusPartialDelivery, true
	case allCompleted:
		return StatusCompleted, true
	case anyCompleted:
		return StatusPartialResults, true
	case anyInProgress:
		return StatusInProgress, true
	case allPending:
		return StatusPending, true
	}
	return "", false
}

// StatusGroups maps list-filter group names to the roll-up statuses they cover.
var StatusGroups = map[string][]string{
	"pendiente":   {StatusPending},
	"en_progreso": {StatusInProgress, StatusPartialResults, StatusCompleted, StatusPartialDelivery},
	"entregado":   {StatusDelivered},
}
