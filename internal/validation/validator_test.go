// Factorserve - Collaborative Filtering Model Serving
// Copyright 2026 Factorserve Authors
// SPDX-License-Identifier: Apache-2.0
// https://github.com/factorserve/factorserve

package validation

import (
	"strings"
	"testing"
)

type predictRequest struct {
	UserID string `json:"user_id" validate:"required"`
	ItemID string `json:"item_id" validate:"required"`
}

type recommendRequest struct {
	UserID string `json:"user_id" validate:"required"`
	TopN   int    `json:"top_n" validate:"omitempty,min=1,max=100"`
}

func TestValidateStructPasses(t *testing.T) {
	t.Parallel()

	req := predictRequest{UserID: "U1", ItemID: "I1"}
	if verr := ValidateStruct(&req); verr != nil {
		t.Fatalf("expected valid struct, got %v", verr)
	}
}

func TestValidateStructMissingField(t *testing.T) {
	t.Parallel()

	req := predictRequest{UserID: "U1"}
	verr := ValidateStruct(&req)
	if verr == nil {
		t.Fatal("expected validation error for missing item_id")
	}

	apiErr := verr.ToAPIError()
	if apiErr.Code != "INVALID_REQUEST" {
		t.Errorf("Code = %q, want INVALID_REQUEST", apiErr.Code)
	}
	if !strings.Contains(apiErr.Message, "itemid is required") {
		t.Errorf("unexpected message %q", apiErr.Message)
	}
}

func TestValidateStructMultipleFailures(t *testing.T) {
	t.Parallel()

	req := predictRequest{}
	verr := ValidateStruct(&req)
	if verr == nil {
		t.Fatal("expected validation errors")
	}
	if len(verr.Errors()) != 2 {
		t.Fatalf("expected 2 field errors, got %d", len(verr.Errors()))
	}

	apiErr := verr.ToAPIError()
	fields, ok := apiErr.Details["fields"].([]string)
	if !ok || len(fields) != 2 {
		t.Errorf("expected 2 fields in details, got %v", apiErr.Details)
	}
}

func TestValidateStructRangeTags(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		req     recommendRequest
		wantErr bool
	}{
		{name: "zero_top_n_allowed", req: recommendRequest{UserID: "U1"}, wantErr: false},
		{name: "in_range", req: recommendRequest{UserID: "U1", TopN: 10}, wantErr: false},
		{name: "too_large", req: recommendRequest{UserID: "U1", TopN: 500}, wantErr: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			verr := ValidateStruct(&tt.req)
			if (verr != nil) != tt.wantErr {
				t.Errorf("ValidateStruct() error = %v, wantErr %v", verr, tt.wantErr)
			}
		})
	}
}
