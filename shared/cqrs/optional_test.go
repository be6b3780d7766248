package cqrs

import (
	"encoding/json"
	"testing"
)

type patch struct {
	Title       Optional[string] `json:"title"`
	Description Optional[string] `json:"description"`
	Status      Optional[string] `json:"status"`
}

func TestOptionalUnmarshal(t *testing.T) {
	var p patch
	if err := json.Unmarshal([]byte(`{"status":"Completed","description":null}`), &p); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	if p.Title.Present {
		t.Error("title was absent and must not be present")
	}
	if !p.Status.Present || p.Status.Null || p.Status.Value != "Completed" {
		t.Errorf("unexpected status: %+v", p.Status)
	}
	if !p.Description.Present || !p.Description.Null {
		t.Errorf("description should be present and null: %+v", p.Description)
	}
}

func TestOptionalUnmarshalEmptyString(t *testing.T) {
	var p patch
	if err := json.Unmarshal([]byte(`{"description":""}`), &p); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if !p.Description.Present || p.Description.Null || p.Description.Value != "" {
		t.Errorf("empty string is a present value: %+v", p.Description)
	}
}

func TestOptionalUnmarshalWrongType(t *testing.T) {
	var p patch
	if err := json.Unmarshal([]byte(`{"title":42}`), &p); err == nil {
		t.Error("expected a type error for a numeric title")
	}
}

func TestSome(t *testing.T) {
	o := Some("Buy milk")
	if !o.Present || o.Null || o.Value != "Buy milk" {
		t.Errorf("unexpected optional: %+v", o)
	}
}
