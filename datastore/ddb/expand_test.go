/*
 * Copyright © 2025 Lakefront Software Inc., All rights reserved.
 */

package ddb

import (
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

func TestExpandMacros(t *testing.T) {
	indexMap := map[string]string{
		"PK":     "CUSTOMER#{ID}",
		"SK":     "CUSTOMER#{ID}",
		"GSI1PK": "EMAIL#{Email}",
		"Static": "FIXED",
	}

	expanded, err := expandMacros(indexMap, testCustomer{ID: "c-1", Email: "a@example.com"})
	if err != nil {
		t.Fatalf("expandMacros: %v", err)
	}

	want := map[string]string{
		"PK":     "CUSTOMER#c-1",
		"SK":     "CUSTOMER#c-1",
		"GSI1PK": "EMAIL#a@example.com",
		"Static": "FIXED",
	}
	for field, expect := range want {
		if expanded[field] != expect {
			t.Errorf("%s: expected %q, got %q", field, expect, expanded[field])
		}
	}
}

func TestExpandMacros_MissingFieldExpandsEmpty(t *testing.T) {
	indexMap := map[string]string{"PK": "X#{Nope}"}

	expanded, err := expandMacros(indexMap, testCustomer{ID: "c-1"})
	if err != nil {
		t.Fatalf("expandMacros: %v", err)
	}
	if expanded["PK"] != "X#" {
		t.Errorf("unresolvable macro should expand empty, got %q", expanded["PK"])
	}
}

func TestExpandMacros_NumericField(t *testing.T) {
	indexMap := map[string]string{"PK": "CREDITS#{Credits}"}

	expanded, err := expandMacros(indexMap, testCustomer{ID: "c-1", Credits: 42})
	if err != nil {
		t.Fatalf("expandMacros: %v", err)
	}
	if expanded["PK"] != "CREDITS#42" {
		t.Errorf("numeric macro: got %q", expanded["PK"])
	}
}

func TestAttributeToString(t *testing.T) {
	if got := attributeToString(&types.AttributeValueMemberS{Value: "s"}); got != "s" {
		t.Errorf("S: got %q", got)
	}
	if got := attributeToString(&types.AttributeValueMemberN{Value: "7"}); got != "7" {
		t.Errorf("N: got %q", got)
	}
	if got := attributeToString(&types.AttributeValueMemberBOOL{Value: true}); got != "true" {
		t.Errorf("BOOL: got %q", got)
	}
	if got := attributeToString(&types.AttributeValueMemberL{}); got != "" {
		t.Errorf("L has no key form, got %q", got)
	}
}

func TestExpandStringKey(t *testing.T) {
	indexMap := map[string]string{
		"PK": "CUSTOMER#{ID}",
		"SK": "CUSTOMER#{ID}",
	}

	expanded := expandStringKey(indexMap, "c-1")
	if expanded["PK"] != "CUSTOMER#c-1" || expanded["SK"] != "CUSTOMER#c-1" {
		t.Errorf("unexpected expansion: %v", expanded)
	}

	keyMap, err := buildKeyFromExpanded(expanded)
	if err != nil {
		t.Fatalf("buildKeyFromExpanded: %v", err)
	}
	if sig, ok := itemSignature(keyMap); !ok || sig != "CUSTOMER#c-1|CUSTOMER#c-1" {
		t.Errorf("unexpected key map: %q", sig)
	}
}

func TestBuildKeyFromExpanded_MissingParts(t *testing.T) {
	if _, err := buildKeyFromExpanded(map[string]string{"PK": "X#1"}); err == nil {
		t.Error("missing SK should fail")
	}
	if _, err := buildKeyFromExpanded(map[string]string{"PK": "", "SK": "X#1"}); err == nil {
		t.Error("empty PK should fail")
	}
}
