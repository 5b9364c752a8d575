package transport

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/google/uuid"
)

// FieldValue is a transition field as sent by the client. Set records
// whether the key was present at all, so a blank value can clear a stored
// one. Numbers are accepted and kept in their textual form.
type FieldValue struct {
	Value string
	Set   bool
}

func (f FieldValue) IsZero() bool {
	return !f.Set
}

func (f *FieldValue) UnmarshalJSON(data []byte) error {
	f.Set = true
	trimmed := bytes.TrimSpace(data)
	if string(trimmed) == "null" {
		f.Value = ""
		return nil
	}

	var raw string
	if err := json.Unmarshal(trimmed, &raw); err == nil {
		f.Value = raw
		return nil
	}

	var num json.Number
	if err := json.Unmarshal(trimmed, &num); err != nil {
		return err
	}
	f.Value = strings.TrimSpace(num.String())
	return nil
}

type OptionalUUID struct {
	Value *uuid.UUID
	Set   bool
}

func (o OptionalUUID) IsZero() bool {
	return !o.Set
}

func (o *OptionalUUID) UnmarshalJSON(data []byte) error {
	o.Set = true
	if string(data) == "null" {
		o.Value = nil
		return nil
	}

	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == "" {
		o.Value = nil
		return nil
	}

	parsed, err := uuid.Parse(raw)
	if err != nil {
		return err
	}
	o.Value = &parsed
	return nil
}
