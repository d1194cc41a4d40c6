package cache

import (
	"testing"

	"caja/src/shared/infrastructure/logger"
)

func TestDisplayNameDefaults(t *testing.T) {
	c := NewPaymentMethodCache(logger.Discard())

	tests := map[string]string{
		"CASH":    "Efectivo",
		"digital": "Yape",
		"MIXED":   "Mixto",
		"CARD":    "CARD",
	}
	for code, want := range tests {
		if got := c.DisplayName(code); got != want {
			t.Errorf("DisplayName(%q) = %q, want %q", code, got, want)
		}
	}
}
