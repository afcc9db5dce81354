package service

import (
	"testing"

	"pondwatch"
)

func TestStatusOf_DisplayBands(t *testing.T) {
	t.Parallel()

	bands := DefaultBands()

	cases := []struct {
		name   string
		metric pondwatch.Metric
		value  float64
		want   pondwatch.MetricStatus
	}{
		{"temperature below display low", pondwatch.MetricTemperature, 23.9, pondwatch.StatusLow},
		{"temperature at display low", pondwatch.MetricTemperature, 24, pondwatch.StatusNormal},
		{"temperature mid band", pondwatch.MetricTemperature, 27, pondwatch.StatusNormal},
		{"temperature at display high", pondwatch.MetricTemperature, 31, pondwatch.StatusNormal},
		{"temperature above display high", pondwatch.MetricTemperature, 31.1, pondwatch.StatusHigh},
		{"ph below display low", pondwatch.MetricPH, 5.9, pondwatch.StatusLow},
		{"ph inside band", pondwatch.MetricPH, 7, pondwatch.StatusNormal},
		{"ph above display high", pondwatch.MetricPH, 8.2, pondwatch.StatusHigh},
		{"water below display low", pondwatch.MetricWaterLevel, 4.5, pondwatch.StatusLow},
		{"water inside band", pondwatch.MetricWaterLevel, 15, pondwatch.StatusNormal},
		{"water above display high", pondwatch.MetricWaterLevel, 31, pondwatch.StatusHigh},
		{"unknown metric reads normal", pondwatch.Metric("salinity"), 999, pondwatch.StatusNormal},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := bands.StatusOf(tc.metric, tc.value); got != tc.want {
				t.Errorf("StatusOf(%s, %v): want %q, got %q", tc.metric, tc.value, tc.want, got)
			}
		})
	}
}

func TestAggregateCondition_TwoTiers(t *testing.T) {
	t.Parallel()

	bands := DefaultBands()

	cases := []struct {
		name             string
		temp, ph, water float64
		want             pondwatch.Condition
	}{
		{"all mid-band", 27, 7, 15, pondwatch.ConditionNormal},
		{"all at display edges", 24, 6, 5, pondwatch.ConditionNormal},
		{"temp outside display, inside safety", 33, 7, 15, pondwatch.ConditionWarning},
		{"ph outside display, inside safety", 27, 8.3, 15, pondwatch.ConditionWarning},
		{"water outside display, inside safety", 27, 7, 40, pondwatch.ConditionWarning},
		{"temp beyond safety high", 40, 7, 15, pondwatch.ConditionDanger},
		{"temp beyond safety low", 14, 7, 15, pondwatch.ConditionDanger},
		{"ph beyond safety", 27, 5.4, 15, pondwatch.ConditionDanger},
		{"water beyond safety", 27, 7, 56, pondwatch.ConditionDanger},
		{"danger dominates warnings elsewhere", 33, 8.4, 56, pondwatch.ConditionDanger},
		{"danger regardless of other metrics", 40, 6.5, 999, pondwatch.ConditionDanger},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := bands.AggregateCondition(tc.temp, tc.ph, tc.water); got != tc.want {
				t.Errorf("AggregateCondition(%v, %v, %v): want %q, got %q",
					tc.temp, tc.ph, tc.water, tc.want, got)
			}
		})
	}
}

func TestAggregateCondition_SafetyViolationAlwaysDanger(t *testing.T) {
	t.Parallel()

	bands := DefaultBands()

	// Sweep one metric across its safety boundary while the others stay
	// anywhere; the aggregate must be danger whenever any safety band is
	// broken.
	for _, temp := range []float64{10, 14.9, 35.1, 50} {
		for _, ph := range []float64{5, 7, 9} {
			if got := bands.AggregateCondition(temp, ph, 15); got != pondwatch.ConditionDanger {
				t.Errorf("temp %v out of safety: want danger, got %q", temp, got)
			}
		}
	}
}

func TestBandContains_Inclusive(t *testing.T) {
	t.Parallel()

	b := Band{Min: 5, Max: 30}
	for v, want := range map[float64]bool{4.99: false, 5: true, 17: true, 30: true, 30.01: false} {
		if got := b.Contains(v); got != want {
			t.Errorf("Contains(%v): want %v, got %v", v, want, got)
		}
	}
}
