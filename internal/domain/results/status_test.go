package results

import "testing"

func targets(current string) map[string]bool {
	out := make(map[string]bool)
	for _, tr := range AllowedTransitions(current) {
		out[tr.Status] = true
	}
	return out
}

func TestAllowedTransitionsPendingSample(t *testing.T) {
	got := targets(DetailPendingSample)
	if len(got) != 8 {
		t.Errorf("expected full skip-ahead from pending_sample, got %d targets", len(got))
	}
}

func TestAllowedTransitionsSampleReceived(t *testing.T) {
	got := targets(DetailSampleReceived)
	if got[DetailReceivedExternal] {
		t.Error("sample_received must not jump to received_external")
	}
	for _, want := range []string{DetailInternalAnalysis, DetailSentExternal, DetailCompleted, DetailValidated, DetailDelivered} {
		if !got[want] {
			t.Errorf("sample_received should allow %s", want)
		}
	}
}

func TestAllowedTransitionsSentExternal(t *testing.T) {
	got := targets(DetailSentExternal)
	if !got[DetailDelivered] {
		t.Error("sent_external should allow delivered")
	}
	if !got[DetailReceivedExternal] {
		t.Error("sent_external should allow received_external")
	}
	if got[DetailSampleReceived] || got[DetailInternalAnalysis] {
		t.Error("sent_external must not go back to sample_received or cross to internal_analysis")
	}
}

func TestAllowedTransitionsTerminalForwardOnly(t *testing.T) {
	if got := targets(DetailDelivered); len(got) != 1 || !got[DetailDelivered] {
		t.Errorf("delivered should only remain delivered, got %v", got)
	}
	got := targets(DetailValidated)
	if got[DetailCompleted] {
		t.Error("validated must not move back to completed")
	}
	if !got[DetailDelivered] {
		t.Error("validated should allow delivered")
	}
}

func TestAllowedTransitionsUnknownStatus(t *testing.T) {
	got := AllowedTransitions("mystery")
	if len(got) != 1 || got[0].Status != "mystery" {
		t.Errorf("unknown status should only allow itself, got %v", got)
	}
}

func TestAllowedTransitionsCarryLabels(t *testing.T) {
	for _, tr := range AllowedTransitions(DetailPendingSample) {
		if tr.Label == "" {
			t.Errorf("missing label for %s", tr.Status)
		}
	}
}

func TestComputeRollup(t *testing.T) {
	cases := []struct {
		name    string
		details []string
		want    string
		ok      bool
	}{
		{"all delivered", []string{DetailDelivered, DetailDelivered}, StatusDelivered, true},
		{"some delivered beats completed", []string{DetailDelivered, DetailDelivered, DetailCompleted}, StatusPartialDelivery, true},
		{"all completed or validated", []string{DetailCompleted, DetailValidated}, StatusCompleted, true},
		{"some completed", []string{DetailCompleted, DetailPendingSample}, StatusPartialResults, true},
		{"any in progress", []string{DetailSampleReceived, DetailPendingSample}, StatusInProgress, true},
		{"external branch in progress", []string{DetailSentExternal, DetailPendingSample}, StatusInProgress, true},
		{"all pending", []string{DetailPendingSample, DetailPendingSample}, StatusPending, true},
		{"single delivered", []string{DetailDelivered}, StatusDelivered, true},
		{"empty leaves unchanged", nil, "", false},
	}
	for _, tc := range cases {
		got, ok := ComputeRollup(tc.details)
		if ok != tc.ok || got != tc.want {
			t.Errorf("%s: expected (%q, %v), got (%q, %v)", tc.name, tc.want, tc.ok, got, ok)
		}
	}
}

func TestStatusGroups(t *testing.T) {
	if got := StatusGroups["pendiente"]; len(got) != 1 || got[0] != StatusPending {
		t.Errorf("pendiente group: %v", got)
	}
	inProgress := map[string]bool{}
	for _, s := range StatusGroups["en_progreso"] {
		inProgress[s] = true
	}
	for _, want := range []string{StatusInProgress, StatusPartialResults, StatusCompleted, StatusPartialDelivery} {
		if !inProgress[want] {
			t.Errorf("en_progreso group missing %s", want)
		}
	}
	if got := StatusGroups["entregado"]; len(got) != 1 || got[0] != StatusDelivered {
		t.Errorf("entregado group: %v", got)
	}
}
