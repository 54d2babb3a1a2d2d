package domain

import "testing"

func TestParseTransactionDirection(t *testing.T) {
	tests := []struct {
		input   string
		want    TransactionDirection
		wantErr bool
	}{
		{"send", DirectionSend, false},
		{"receive", DirectionReceive, false},
		{"Send", "", true},
		{"", "", true},
		{"sideways", "", true},
	}

	for _, tt := range tests {
		got, err := ParseTransactionDirection(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseTransactionDirection(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseTransactionDirection(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestParseTransactionStatus(t *testing.T) {
	for _, valid := range []string{"new", "done", "partially_done", "error"} {
		if _, err := ParseTransactionStatus(valid); err != nil {
			t.Errorf("ParseTransactionStatus(%q) unexpected error: %v", valid, err)
		}
	}
	for _, invalid := range []string{"", "pending", "DONE"} {
		if _, err := ParseTransactionStatus(invalid); err == nil {
			t.Errorf("ParseTransactionStatus(%q) expected error", invalid)
		}
	}
}

func TestParseEventStatus(t *testing.T) {
	for _, valid := range []string{"new", "notified", "error"} {
		if _, err := ParseEventStatus(valid); err != nil {
			t.Errorf("ParseEventStatus(%q) unexpected error: %v", valid, err)
		}
	}
	for _, invalid := range []string{"", "delivered", "New"} {
		if _, err := ParseEventStatus(invalid); err == nil {
			t.Errorf("ParseEventStatus(%q) expected error", invalid)
		}
	}
}
