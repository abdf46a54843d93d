package stream

import (
	"errors"
	"testing"
)

func TestParseRational(t *testing.T) {
	tests := []struct {
		input    string
		expected Rational
		wantErr  bool
	}{
		{"24", Rational{24, 1}, false},
		{"24000/1001", Rational{24000, 1001}, false},
		{"60/2", Rational{30, 1}, false},
		{"29.97", Rational{2997, 100}, false},
		{" 25 ", Rational{25, 1}, false},
		{"1/0", Rational{}, true},
		{"59.94", Rational{2997, 50}, false},
		{"0.00000000000000000001", Rational{}, true},
		{"99999999999999999999", Rational{}, true},
		{"abc", Rational{}, true},
		{"", Rational{}, true},
	}

	for _, tt := range tests {
		got, err := ParseRational(tt.input)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseRational(%q) expected error", tt.input)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseRational(%q) unexpected error: %v", tt.input, err)
			continue
		}
		if got != tt.expected {
			t.Errorf("ParseRational(%q) = %v, want %v", tt.input, got, tt.expected)
		}
	}
}

func TestRational_Inverse(t *testing.T) {
	r := Rational{Num: 30000, Den: 1001}.Inverse()
	if r != (Rational{Num: 1001, Den: 30000}) {
		t.Errorf("Inverse = %v, want 1001/30000", r)
	}
	if r := (Rational{Num: 50, Den: 2}).Inverse(); r != (Rational{Num: 1, Den: 25}) {
		t.Errorf("Inverse = %v, want 1/25", r)
	}
}

func TestRational_Reduce(t *testing.T) {
	r := Rational{Num: 12288, Den: -512}.Reduce()
	if r.Num != -24 || r.Den != 1 {
		t.Errorf("Reduce = %v, want -24/1", r)
	}
	if r.Valid() {
		t.Error("negative rational should not be valid")
	}
	if NewRational(30000, 1001).String() != "30000/1001" {
		t.Errorf("String = %q", NewRational(30000, 1001).String())
	}
}

func TestVariant_RoundTrip(t *testing.T) {
	for v := VariantHap; v <= VariantHapR; v++ {
		parsed, err := ParseVariant(v.FourCC())
		if err != nil {
			t.Fatalf("ParseVariant(%q): %v", v.FourCC(), err)
		}
		if parsed != v {
			t.Errorf("ParseVariant(%q) = %v, want %v", v.FourCC(), parsed, v)
		}
		byName, err := ParseVariantName(v.String())
		if err != nil || byName != v {
			t.Errorf("ParseVariantName(%q) = %v, %v", v.String(), byName, err)
		}
	}

	if _, err := ParseVariant("avc1"); err == nil {
		t.Error("expected avc1 to be rejected")
	}
}

func TestTextureFormat_PlaneSize(t *testing.T) {
	tests := []struct {
		format TextureFormat
		w, h   int
		want   int
	}{
		{FormatDXT1, 256, 256, 64 * 64 * 8},
		{FormatDXT5, 256, 256, 64 * 64 * 16},
		{FormatBC4, 10, 10, 3 * 3 * 8},
		{FormatYCoCgDXT5, 1, 1, 16},
		{FormatDXT1, 0, 4, 0},
	}

	for _, tt := range tests {
		if got := tt.format.PlaneSize(tt.w, tt.h); got != tt.want {
			t.Errorf("%v.PlaneSize(%d, %d) = %d, want %d", tt.format, tt.w, tt.h, got, tt.want)
		}
	}
}

func validDescriptor() *Descriptor {
	return &Descriptor{
		Duration:  Rational{3, 1},
		FrameRate: Rational{24, 1},
		Timescale: 12288,
		Width:     16,
		Height:    16,
		Variant:   VariantHap,
		FileSize:  1000,
		Frames: []FrameDescriptor{
			{Index: 0, Offset: 100, Size: 50},
			{Index: 1, Offset: 150, Size: 50},
			{Index: 2, Offset: 200, Size: 50},
		},
	}
}

func TestDescriptor_Validate(t *testing.T) {
	if err := validDescriptor().Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(d *Descriptor)
	}{
		{"zero denominator", func(d *Descriptor) { d.FrameRate = Rational{24, 0} }},
		{"zero duration", func(d *Descriptor) { d.Duration = Rational{0, 1} }},
		{"no frames", func(d *Descriptor) { d.Frames = nil }},
		{"no width", func(d *Descriptor) { d.Width = 0 }},
		{"overlap", func(d *Descriptor) { d.Frames[1].Offset = 120 }},
		{"beyond file", func(d *Descriptor) { d.Frames[2].Size = 900 }},
		{"bad index", func(d *Descriptor) { d.Frames[2].Index = 7 }},
		{"empty frame", func(d *Descriptor) { d.Frames[0].Size = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := validDescriptor()
			tt.mutate(d)
			err := d.Validate()
			if !errors.Is(err, ErrInvalid) {
				t.Errorf("Validate() = %v, want ErrInvalid", err)
			}
		})
	}
}

func TestDescriptor_Accessors(t *testing.T) {
	d := validDescriptor()
	d.Frames[1].Size = 70
	d.Frames[2].Offset = 220
	if d.FrameCount() != 3 {
		t.Errorf("FrameCount = %d", d.FrameCount())
	}
	if d.MaxFrameSize() != 70 {
		t.Errorf("MaxFrameSize = %d", d.MaxFrameSize())
	}
	if d.DurationSeconds() != 3 {
		t.Errorf("DurationSeconds = %f", d.DurationSeconds())
	}

	var nilDesc *Descriptor
	if nilDesc.FrameCount() != 0 {
		t.Error("nil descriptor should report zero frames")
	}
}
