package invoke

import (
	clierr "github.com/augmented-finance/augmented-cli/internal/errors"
)

// Params controls how a single contract function is invoked.
type Params struct {
	// Static forces an eth_call. view and pure functions are always static.
	Static bool
	// Compatible escalates through a temporary admin grant instead of callWithRoles.
	Compatible bool
	// Encode returns the call data instead of executing anything.
	Encode   bool
	Args     []any
	WaitTx   bool
	GasLimit uint64
}

// Validate rejects flag combinations that cannot be honored and returns
// warnings for the ones that are ignored.
func (p Params) Validate() ([]string, error) {
	if p.Encode && p.Compatible {
		return nil, clierr.New(clierr.CodeUnsupportedMode, "flag --compatible is not supported with the flag --encode")
	}
	var warnings []string
	if p.Encode && p.Static {
		warnings = append(warnings, "flag --static is ignored with the flag --encode")
	}
	return warnings, nil
}

type Mode string

const (
	ModeDirect     Mode = "direct"
	ModeCompatible Mode = "compatible"
	ModeRoles      Mode = "roles"
)

type StepStatus string

const (
	StepStatusEncoded   StepStatus = "encoded"
	StepStatusCalled    StepStatus = "called"
	StepStatusSubmitted StepStatus = "submitted"
	StepStatusConfirmed StepStatus = "confirmed"
	StepStatusFailed    StepStatus = "failed"
)

// Step is one ledger interaction performed during an invocation.
type Step struct {
	Name    string     `json:"name"`
	Target  string     `json:"target"`
	Status  StepStatus `json:"status"`
	TxHash  string     `json:"tx_hash,omitempty"`
	GasUsed uint64     `json:"gas_used,omitempty"`
	Error   string     `json:"error,omitempty"`
}

// EncodedCall is an unsigned call for offline signing.
type EncodedCall struct {
	To   string `json:"to"`
	Data string `json:"data"`
}

// Outcome describes what an invocation did. It is returned on failure too,
// with the steps performed up to the failure.
type Outcome struct {
	Mode       Mode         `json:"mode"`
	Static     bool         `json:"static"`
	Target     string       `json:"target"`
	TargetType string       `json:"target_type"`
	Function   string       `json:"function"`
	Roles      []string     `json:"roles,omitempty"`
	Args       []any        `json:"args"`
	Values     []any        `json:"values,omitempty"`
	TxHash     string       `json:"tx_hash,omitempty"`
	GasUsed    uint64       `json:"gas_used,omitempty"`
	Encoded    *EncodedCall `json:"encoded,omitempty"`
	Steps      []Step       `json:"steps"`
	Warnings   []string     `json:"warnings,omitempty"`
}
