package utils

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
)

func TestParseID(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		want   string
		wantOK bool
	}{
		{"Canonical", "6f1c2c1e-4a0b-4c55-9a37-0f7c2d8e9b11", "6f1c2c1e-4a0b-4c55-9a37-0f7c2d8e9b11", true},
		{"Upper case", "6F1C2C1E-4A0B-4C55-9A37-0F7C2D8E9B11", "6f1c2c1e-4a0b-4c55-9a37-0f7c2d8e9b11", true},
		{"Surrounding spaces", " 6f1c2c1e-4a0b-4c55-9a37-0f7c2d8e9b11 ", "6f1c2c1e-4a0b-4c55-9a37-0f7c2d8e9b11", true},
		{"Garbage", "freight-42", "", false},
		{"Empty", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseID(tt.raw)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("ParseID(%q) = %q, %v, want %q, %v", tt.raw, got, ok, tt.want, tt.wantOK)
			}
		})
	}

	if _, ok := ParseID(GenerateID()); !ok {
		t.Error("GenerateID() did not produce a parsable UUID")
	}
}

func TestValidationFailed(t *testing.T) {
	type payload struct {
		VehicleType string  `validate:"required,oneof=car van"`
		WeightKg    float64 `validate:"gte=0"`
	}

	err := validator.New().Struct(payload{VehicleType: "boat", WeightKg: -1})
	if err == nil {
		t.Fatal("expected validation error")
	}

	rec := httptest.NewRecorder()
	ValidationFailed(rec, err)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["error"] != "validation_failed" {
		t.Errorf("error = %q, want validation_failed", body["error"])
	}
	for _, field := range []string{"payload.VehicleType", "payload.WeightKg"} {
		if !strings.Contains(body["message"], field) {
			t.Errorf("message %q does not mention %s", body["message"], field)
		}
	}
}
