package format

import (
	"math"
	"testing"
)

func TestFloat(t *testing.T) {
	tests := []struct {
		name      string
		f         float64
		magnitude int
		precision int
		want      string
	}{
		{"zero", 0.0, 6, 3, "0"},
		{"negative zero", math.Copysign(0, -1), 6, 3, "0"},
		{"simple", 123.45, 6, 3, "123.45"},
		{"round up", 123.456789, 6, 3, "123.457"},
		{"round down", 123.456749, 6, 4, "123.4567"},
		{"magnitude at limit", 123.4, 3, 8, "123.4"},
		{"big", 123456789.123456, 6, 3, "1.235e8"},
		{"big negative", -123456789.123456, 6, 3, "-1.235e8"},
		{"big negative wide budget", -123456789.123456, 10, 3, "-123456789.123"},
		{"tiny", 0.000000123456, 6, 3, "1.235e-7"},
		{"tiny few digits", 1e-25, 6, 3, "1e-25"},
		{"large few digits", 93000000000.0, 8, 6, "9.3e10"},
		{"small fraction goes exponential", 0.00005, 3, 3, "5e-5"},
		{"small negative fraction goes exponential", -0.000059, 5, 3, "-5.9e-5"},
		{"small fraction fits", 0.00005, 5, 5, "0.00005"},
		{"integer with zero precision", 100, 6, 0, "100"},
		{"defaults", 2.5, DefaultMagnitude, DefaultPrecision, "2.5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Float(tt.f, tt.magnitude, tt.precision)
			if got != tt.want {
				t.Errorf("Float(%v, %d, %d) = %q, want %q", tt.f, tt.magnitude, tt.precision, got, tt.want)
			}
		})
	}
}

func TestFloatNonFinite(t *testing.T) {
	if got := Float(math.Inf(1), 12, 6); got != "+Inf" {
		t.Errorf("got %q, want +Inf", got)
	}
	if got := Float(math.NaN(), 12, 6); got != "NaN" {
		t.Errorf("got %q, want NaN", got)
	}
}

func TestDigitMagnitude(t *testing.T) {
	tests := []struct {
		name string
		f    float64
		want int
	}{
		{"zero", 0.0, 1},
		{"one", 1.0, 1},
		{"two digits", 11.7, 2},
		{"hundred", 100.0, 3},
		{"thousand", 1000.0, 4},
		{"thousandth", 0.001, 3},
		{"many digits", 123456789.345678, 9},
		{"max", math.MaxFloat64, 309},
		{"point one", 0.1, 1},
		{"three zeros after point", 0.0009, 4},
		{"five", 0.00005, 5},
		{"many zeros after point", 0.00000000001, 11},
		{"negative many zeros after point", -0.00000000001, 12},
		{"smallest normal", 2.2250738585072014e-308, 308},
		{"smallest subnormal", math.SmallestNonzeroFloat64, 324},
		{"min", -math.MaxFloat64, 310},
		{"negative smallest subnormal", -math.SmallestNonzeroFloat64, 325},
		{"minus one", -1.0, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := digitMagnitude(tt.f); got != tt.want {
				t.Errorf("digitMagnitude(%v) = %d, want %d", tt.f, got, tt.want)
			}
		})
	}
}
