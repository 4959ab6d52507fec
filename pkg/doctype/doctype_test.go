package doctype

import (
	"testing"
)

func TestInferFromFilename(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		want     string
	}{
		{
			name:     "contract keyword",
			filename: "General_Contract_2024.pdf",
			want:     Contract,
		},
		{
			name:     "spec keyword",
			filename: "electrical-spec-rev3.docx",
			want:     Specification,
		},
		{
			name:     "full specification word",
			filename: "Technical Specifications.pdf",
			want:     Specification,
		},
		{
			name:     "rfi keyword uppercase",
			filename: "RFI-2024-001.pdf",
			want:     RFI,
		},
		{
			name:     "submittal keyword",
			filename: "steel_submittal_package.pdf",
			want:     Submittal,
		},
		{
			name:     "drawing keyword",
			filename: "floor-plan-drawing.pdf",
			want:     Drawing,
		},
		{
			name:     "dwg extension",
			filename: "site_layout.dwg",
			want:     Drawing,
		},
		{
			name:     "no keyword",
			filename: "meeting_minutes_jan.pdf",
			want:     Unknown,
		},
		{
			name:     "contract wins over spec",
			filename: "contract_spec_addendum.pdf",
			want:     Contract,
		},
		{
			name:     "empty filename",
			filename: "",
			want:     Unknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := InferFromFilename(tt.filename); got != tt.want {
				t.Errorf("InferFromFilename(%q) = %q, want %q", tt.filename, got, tt.want)
			}
		})
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"contract", Contract},
		{"CONTRACT", Contract},
		{"  rfi  ", RFI},
		{"blueprint", Unknown},
		{"", Unknown},
	}

	for _, tt := range tests {
		if got := Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
