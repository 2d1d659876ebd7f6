package core

import (
	"fmt"
	"strings"
)

// validateCreate checks required fields and length limits on a create input.
// EID and all three descriptive fields are required; remarks is optional.
func validateCreate(in CreateInput) error {
	if err := requireField("eid", in.EID, MaxEIDLen); err != nil {
		return err
	}
	if err := requireField("name", in.Name, MaxNameLen); err != nil {
		return err
	}
	if err := requireField("rights", in.Rights, MaxRightsLen); err != nil {
		return err
	}
	if err := requireField("status", in.Status, MaxStatusLen); err != nil {
		return err
	}
	if len(in.Remarks) > MaxRemarksLen {
		return tooLong("remarks", MaxRemarksLen)
	}
	return nil
}

// validateUpdate checks only the fields the patch actually supplies.
func validateUpdate(in UpdateInput) error {
	if in.EID != nil {
		if err := requireField("eid", *in.EID, MaxEIDLen); err != nil {
			return err
		}
	}
	if in.Name != nil {
		if err := requireField("name", *in.Name, MaxNameLen); err != nil {
			return err
		}
	}
	if in.Rights != nil {
		if err := requireField("rights", *in.Rights, MaxRightsLen); err != nil {
			return err
		}
	}
	if in.Status != nil {
		if err := requireField("status", *in.Status, MaxStatusLen); err != nil {
			return err
		}
	}
	if in.Remarks != nil && len(*in.Remarks) > MaxRemarksLen {
		return tooLong("remarks", MaxRemarksLen)
	}
	return nil
}

func requireField(name, value string, maxLen int) error {
	if strings.TrimSpace(value) == "" {
		return &ValidationError{Field: name, Reason: "must not be empty"}
	}
	if len(value) > maxLen {
		return tooLong(name, maxLen)
	}
	return nil
}

func tooLong(name string, maxLen int) error {
	return &ValidationError{Field: name, Reason: fmt.Sprintf("exceeds maximum length of %d", maxLen)}
}
