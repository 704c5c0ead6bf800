// Rewind - Media Server Watch History Statistics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rewind

package validation

import (
	"strings"
	"testing"
)

// ===================================================================================================
// Singleton Validator Tests
// ===================================================================================================

func TestGetValidator_Singleton(t *testing.T) {
	v1 := GetValidator()
	v2 := GetValidator()

	if v1 == nil {
		t.Fatal("GetValidator() should not return nil")
	}
	if v1 != v2 {
		t.Error("GetValidator() should return the same singleton instance")
	}
}

// ===================================================================================================
// ValidateStruct Tests
// ===================================================================================================

type queryStruct struct {
	Window    string `query:"window" validate:"omitempty,oneof=week month year allTime"`
	Limit     int    `query:"limit" validate:"gte=0,lte=1000"`
	RatingKey string `query:"rating_key" validate:"omitempty,ratingkey"`
	Year      int    `query:"year" validate:"omitempty,min=1970,max=9999"`
	Internal  string `validate:"omitempty,max=3"`
}

func TestValidateStruct_Valid(t *testing.T) {
	tests := []struct {
		name  string
		input queryStruct
	}{
		{"zero value", queryStruct{}},
		{"all fields", queryStruct{Window: "week", Limit: 10, RatingKey: "12345", Year: 2025}},
		{"limit upper bound", queryStruct{Limit: 1000}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := ValidateStruct(&tt.input); err != nil {
				t.Errorf("ValidateStruct() unexpected error: %v", err)
			}
		})
	}
}

func TestValidateStruct_Invalid(t *testing.T) {
	tests := []struct {
		name      string
		input     queryStruct
		wantField string
		wantTag   string
		wantMsg   string
	}{
		{"unknown window", queryStruct{Window: "decade"}, "window", "oneof", "window must be one of: week month year allTime"},
		{"negative limit", queryStruct{Limit: -1}, "limit", "gte", "limit must be greater than or equal to 0"},
		{"limit too large", queryStruct{Limit: 1001}, "limit", "lte", "limit must be less than or equal to 1000"},
		{"non numeric rating key", queryStruct{RatingKey: "abc"}, "rating_key", "ratingkey", "rating_key must be a numeric rating key"},
		{"rating key too long", queryStruct{RatingKey: strings.Repeat("1", 21)}, "rating_key", "ratingkey", "rating_key must be a numeric rating key"},
		{"year too small", queryStruct{Year: 1900}, "year", "min", "year must be at least 1970"},
		{"untagged field uses struct name", queryStruct{Internal: "toolong"}, "Internal", "max", "Internal must be at most 3 characters"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStruct(&tt.input)
			if err == nil {
				t.Fatal("ValidateStruct() expected error, got nil")
			}
			errs := err.Errors()
			if len(errs) != 1 {
				t.Fatalf("expected 1 error, got %d: %v", len(errs), err)
			}
			if errs[0].Field() != tt.wantField {
				t.Errorf("Field() = %q, want %q", errs[0].Field(), tt.wantField)
			}
			if errs[0].Tag() != tt.wantTag {
				t.Errorf("Tag() = %q, want %q", errs[0].Tag(), tt.wantTag)
			}
			if errs[0].Error() != tt.wantMsg {
				t.Errorf("Error() = %q, want %q", errs[0].Error(), tt.wantMsg)
			}
		})
	}
}

// ===================================================================================================
// ToAPIError Tests
// ===================================================================================================

func TestToAPIError_SingleError(t *testing.T) {
	err := ValidateStruct(&queryStruct{Limit: 5000})
	if err == nil {
		t.Fatal("expected validation error")
	}

	apiErr := err.ToAPIError()
	if apiErr.Code != ErrorCode {
		t.Errorf("Code = %q, want %q", apiErr.Code, ErrorCode)
	}
	if apiErr.Details["field"] != "limit" {
		t.Errorf("Details[field] = %v, want limit", apiErr.Details["field"])
	}
	if apiErr.Details["value"] != 5000 {
		t.Errorf("Details[value] = %v, want 5000", apiErr.Details["value"])
	}
}

func TestToAPIError_MultipleErrors(t *testing.T) {
	err := ValidateStruct(&queryStruct{Window: "x", Limit: -5})
	if err == nil {
		t.Fatal("expected validation error")
	}

	apiErr := err.ToAPIError()
	fields, ok := apiErr.Details["fields"].([]map[string]interface{})
	if !ok {
		t.Fatalf("Details[fields] has type %T", apiErr.Details["fields"])
	}
	if len(fields) != 2 {
		t.Fatalf("expected 2 field errors, got %d", len(fields))
	}
	if !strings.Contains(apiErr.Message, "window") || !strings.Contains(apiErr.Message, "limit") {
		t.Errorf("Message %q should mention both fields", apiErr.Message)
	}
}

func TestToAPIError_Empty(t *testing.T) {
	apiErr := (&RequestValidationError{}).ToAPIError()
	if apiErr.Code != ErrorCode || apiErr.Message != "Validation failed" {
		t.Errorf("unexpected empty error: %+v", apiErr)
	}
}
