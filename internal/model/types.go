package model

import "time"

const EnvelopeVersion = "v1"

type Envelope struct {
	Version  string       `json:"version"`
	Success  bool         `json:"success"`
	Data     any          `json:"data,omitempty"`
	Error    *ErrorBody   `json:"error"`
	Warnings []string     `json:"warnings,omitempty"`
	Meta     EnvelopeMeta `json:"meta"`
}

type ErrorBody struct {
	Code    int    `json:"code"`
	Type    string `json:"type"`
	Message string `json:"message"`
}

type EnvelopeMeta struct {
	RequestID string    `json:"request_id"`
	Timestamp time.Time `json:"timestamp"`
	Command   string    `json:"command"`
	Network   string    `json:"network,omitempty"`
	JournalID string    `json:"journal_id,omitempty"`
	// Partial is set when a command failed after some of its steps ran.
	Partial bool `json:"partial"`
}

type RoleInfo struct {
	Name string `json:"name"`
	Flag string `json:"flag"`
	Bit  int    `json:"bit"`
}

type DeploymentRecord struct {
	Network  string `json:"network"`
	Key      string `json:"key"`
	Address  string `json:"address"`
	Deployer string `json:"deployer,omitempty"`
}

type ImportSummary struct {
	Network   string `json:"network"`
	Source    string `json:"source"`
	Records   int    `json:"records"`
	Externals int    `json:"externals"`
	Instances int    `json:"instances"`
}

type NetworkInfo struct {
	Name    string `json:"name"`
	ChainID int64  `json:"chain_id"`
	RPCURL  string `json:"rpc_url,omitempty"`
}

type CommandInfo struct {
	Name string `json:"name"`
	Kind string `json:"kind"`
	// Target is the qualified function of a direct alias.
	Target string `json:"target,omitempty"`
	Role   string `json:"role,omitempty"`
}
