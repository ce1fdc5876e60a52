package domain

import "testing"

func TestVolume_Adjust(t *testing.T) {
	tests := []struct {
		name  string
		start Volume
		steps int
		want  Volume
	}{
		{
			name:  "single step up",
			start: 1.0,
			steps: 1,
			want:  1.1,
		},
		{
			name:  "single step down",
			start: 1.0,
			steps: -1,
			want:  0.9,
		},
		{
			name:  "clamps at maximum",
			start: 1.9,
			steps: 5,
			want:  VolumeMax,
		},
		{
			name:  "clamps at minimum",
			start: 0.2,
			steps: -5,
			want:  VolumeMin,
		},
		{
			name:  "zero steps keeps value",
			start: 1.3,
			steps: 0,
			want:  1.3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.start.Adjust(tt.steps); got != tt.want {
				t.Errorf("Adjust(%d) = %v, want %v", tt.steps, got, tt.want)
			}
		})
	}
}

func TestVolume_RepeatedStepsHaveNoDrift(t *testing.T) {
	v := VolumeDefault
	for i := 0; i < 5; i++ {
		v = v.Up()
	}
	if v != 1.5 {
		t.Errorf("five ups from default = %v, want exactly 1.5", v)
	}

	v = VolumeDefault
	for i := 0; i < 15; i++ {
		v = v.Up()
	}
	if v != VolumeMax {
		t.Errorf("fifteen ups from default = %v, want clamp at %v", v, VolumeMax)
	}
}

func TestClamp(t *testing.T) {
	if got := Clamp(5.0); got != VolumeMax {
		t.Errorf("Clamp(5.0) = %v, want %v", got, VolumeMax)
	}
	if got := Clamp(0.0); got != VolumeMin {
		t.Errorf("Clamp(0.0) = %v, want %v", got, VolumeMin)
	}
	if got := Clamp(1.2); got != 1.2 {
		t.Errorf("Clamp(1.2) = %v, want 1.2", got)
	}
}

func TestVolume_String(t *testing.T) {
	if got := Volume(1.5).String(); got != "1.5x" {
		t.Errorf("String() = %q, want %q", got, "1.5x")
	}
}
