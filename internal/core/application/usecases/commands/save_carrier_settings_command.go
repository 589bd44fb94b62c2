package commands

import (
	"errors"
	"fmt"
	"strings"

	"shipping/internal/core/domain/model/carrier"
	"shipping/internal/pkg/errs"
	"shipping/internal/pkg/guard"
)

var (
	ErrSaveCarrierSettingsCommandIsNotConstructed = errors.New(
		"SaveCarrierSettingsCommand must be created via NewSaveCarrierSettingsCommand constructor",
	)
	ErrPatchCarrierSettingsCommandIsNotConstructed = errors.New(
		"PatchCarrierSettingsCommand must be created via NewPatchCarrierSettingsCommand constructor",
	)
)

// CarrierSettingsEntry is one carrier of a bulk settings save.
type CarrierSettingsEntry struct {
	CarrierID string
	Input     carrier.Input
}

// SaveCarrierSettingsCommand replaces the configuration of the listed
// carriers. Unusable numbers fall back to the carrier defaults.
type SaveCarrierSettingsCommand struct {
	entries []CarrierSettingsEntry
	actor   string

	guard guard.ConstructorGuard
}

func NewSaveCarrierSettingsCommand(entries []CarrierSettingsEntry, actor string) (SaveCarrierSettingsCommand, error) {
	if len(entries) == 0 {
		return SaveCarrierSettingsCommand{}, errs.NewValueIsRequiredError("carriers")
	}

	seen := make(map[string]struct{}, len(entries))
	var problems []error
	for i, e := range entries {
		id := strings.ToLower(strings.TrimSpace(e.CarrierID))
		if id == "" {
			problems = append(problems, errs.NewValueIsRequiredError(fmt.Sprintf("carriers[%d].id", i)))
			continue
		}
		if _, dup := seen[id]; dup {
			problems = append(problems, errs.NewValueIsInvalidErrorWithCause(
				fmt.Sprintf("carriers[%d].id", i), fmt.Errorf("%q is listed twice", id)))
		}
		seen[id] = struct{}{}
		entries[i].CarrierID = id
	}
	if err := errors.Join(problems...); err != nil {
		return SaveCarrierSettingsCommand{}, err
	}

	return SaveCarrierSettingsCommand{
		entries: entries,
		actor:   actor,
		guard:   guard.NewConstructorGuard(),
	}, nil
}

func (c SaveCarrierSettingsCommand) Validate() error {
	return c.guard.Validate(ErrSaveCarrierSettingsCommandIsNotConstructed)
}

func (c SaveCarrierSettingsCommand) Entries() []CarrierSettingsEntry { return c.entries }
func (c SaveCarrierSettingsCommand) Actor() string                   { return c.actor }

// PatchCarrierSettingsCommand changes selected fields of one carrier.
type PatchCarrierSettingsCommand struct {
	carrierID string
	input     carrier.Input
	actor     string

	guard guard.ConstructorGuard
}

func NewPatchCarrierSettingsCommand(carrierID string, input carrier.Input, actor string) (PatchCarrierSettingsCommand, error) {
	carrierID = strings.ToLower(strings.TrimSpace(carrierID))
	if carrierID == "" {
		return PatchCarrierSettingsCommand{}, errs.NewValueIsRequiredError("carrier id")
	}
	return PatchCarrierSettingsCommand{
		carrierID: carrierID,
		input:     input,
		actor:     actor,
		guard:     guard.NewConstructorGuard(),
	}, nil
}

func (c PatchCarrierSettingsCommand) Validate() error {
	return c.guard.Validate(ErrPatchCarrierSettingsCommandIsNotConstructed)
}

func (c PatchCarrierSettingsCommand) CarrierID() string    { return c.carrierID }
func (c PatchCarrierSettingsCommand) Input() carrier.Input { return c.input }
func (c PatchCarrierSettingsCommand) Actor() string        { return c.actor }
