package commands

import (
	"context"
	"strings"

	"github.com/augmented-finance/augmented-cli/internal/access"
	clierr "github.com/augmented-finance/augmented-cli/internal/errors"
	"github.com/augmented-finance/augmented-cli/internal/invoke"
	"github.com/augmented-finance/augmented-cli/internal/prepare"
	"github.com/augmented-finance/augmented-cli/internal/registry"
	"github.com/augmented-finance/augmented-cli/internal/resolve"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
)

// Deps wires a dispatcher to one access controller.
type Deps struct {
	Controller *access.Controller
	Resolver   *resolve.Resolver
	Engine     *invoke.Engine
	// Caller serves the read-only lookups done while preparing arguments.
	Caller prepare.Caller
	Logger *zap.Logger
}

type Dispatcher struct {
	deps Deps
	log  *zap.Logger
}

func NewDispatcher(deps Deps) *Dispatcher {
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Dispatcher{deps: deps, log: log}
}

// Request is one command invocation. Params.Args is ignored; arguments come
// from Args.
type Request struct {
	Command string
	Roles   []string
	Args    []string
	Params  invoke.Params
}

// Result collects every invocation a command made, including the failed one.
type Result struct {
	Command  string           `json:"command"`
	Outcomes []invoke.Outcome `json:"outcomes"`
	Warnings []string         `json:"warnings,omitempty"`
}

// Run dispatches a qualified Object.function command or an alias. Token and
// pool lookups are cached for the duration of one Run only.
func (d *Dispatcher) Run(ctx context.Context, req Request) (Result, error) {
	s := &Session{
		d:        d,
		params:   req.Params,
		tokens:   prepare.NewTokenResolver(d.deps.Controller, d.deps.Caller, d.log),
		pools:    prepare.NewPoolResolver(d.deps.Controller, d.deps.Caller, d.log),
		outcomes: []invoke.Outcome{},
	}
	err := d.run(ctx, s, req)
	return s.result(req.Command), err
}

func (d *Dispatcher) run(ctx context.Context, s *Session, req Request) error {
	if _, err := req.Params.Validate(); err != nil {
		return err
	}
	command := strings.TrimSpace(req.Command)
	if command == "" {
		return clierr.New(clierr.CodeUsage, "command is required")
	}

	if strings.Contains(command, ".") {
		roles, err := access.ResolveRoles(req.Roles...)
		if err != nil {
			return err
		}
		return s.invokeQualified(ctx, command, stringArgs(req.Args), roles)
	}

	entry, ok := Lookup(command)
	if !ok {
		return clierr.New(clierr.CodeUsage, "unknown command: "+command)
	}
	if len(req.Roles) > 0 {
		s.warn("flag --roles is ignored for command aliases")
	}
	switch a := entry.(type) {
	case DirectCall:
		return s.Call(ctx, a.QualifiedName, stringArgs(req.Args), a.Role)
	case Custom:
		return a.Run(ctx, s, req.Args)
	default:
		return clierr.New(clierr.CodeInternal, "unsupported alias for "+command)
	}
}

// Session carries per-command state: the invocation flags, the argument
// caches and everything invoked so far.
type Session struct {
	d        *Dispatcher
	params   invoke.Params
	tokens   *prepare.TokenResolver
	pools    *prepare.PoolResolver
	outcomes []invoke.Outcome
	warnings []string
}

func (s *Session) Tokens() *prepare.TokenResolver { return s.tokens }

func (s *Session) Pools() *prepare.PoolResolver { return s.pools }

// Call resolves qualified ("Object.function") and invokes it with roles.
func (s *Session) Call(ctx context.Context, qualified string, args []any, roles access.Flags) error {
	s.log().Info("call alias", zap.String("cmd", qualified), zap.Any("args", args))
	return s.invokeQualified(ctx, qualified, args, roles)
}

func (s *Session) invokeQualified(ctx context.Context, qualified string, args []any, roles access.Flags) error {
	object, fn, ok := strings.Cut(qualified, ".")
	if !ok || object == "" || fn == "" {
		return clierr.New(clierr.CodeUsage, "expected Object.function, got "+qualified)
	}
	handle, err := s.d.deps.Resolver.Resolve(ctx, object)
	if err != nil {
		return err
	}
	return s.CallHandle(ctx, roles, handle, fn, args)
}

// CallHandle invokes fn on an already bound contract.
func (s *Session) CallHandle(ctx context.Context, roles access.Flags, handle registry.Handle, fn string, args []any) error {
	params := s.params
	params.Args = args
	outcome, err := s.d.deps.Engine.Invoke(ctx, roles, handle, fn, params)
	s.outcomes = append(s.outcomes, outcome)
	return err
}

func (s *Session) controller() *access.Controller { return s.d.deps.Controller }

func (s *Session) log() *zap.Logger { return s.d.log }

func (s *Session) warn(msg string) {
	s.log().Warn(msg)
	s.warnings = append(s.warnings, msg)
}

func (s *Session) namedPoolHandle(ctx context.Context, typeName, name string) (registry.Handle, error) {
	addr, err := s.pools.NamedPool(ctx, name)
	if err != nil {
		return registry.Handle{}, err
	}
	return typeHandle(typeName, addr)
}

// readAddress performs a plain eth_call of a no-argument getter returning an
// address, outside of the invocation engine.
func (s *Session) readAddress(ctx context.Context, typeName string, addr common.Address, fn string) (common.Address, error) {
	handle, err := typeHandle(typeName, addr)
	if err != nil {
		return common.Address{}, err
	}
	data, err := handle.ABI.Pack(fn)
	if err != nil {
		return common.Address{}, clierr.Wrap(clierr.CodeInternal, "pack "+fn+" calldata", err)
	}
	raw, err := s.d.deps.Caller.Call(ctx, addr, data)
	if err != nil {
		return common.Address{}, err
	}
	values, err := handle.ABI.Unpack(fn, raw)
	if err != nil || len(values) == 0 {
		return common.Address{}, clierr.Wrap(clierr.CodeUnavailable, "decode "+fn+" result", err)
	}
	out, ok := values[0].(common.Address)
	if !ok {
		return common.Address{}, clierr.New(clierr.CodeUnavailable, "decode "+fn+" result: not an address")
	}
	return out, nil
}

func (s *Session) result(command string) Result {
	all := append([]string{}, s.warnings...)
	for _, o := range s.outcomes {
		all = append(all, o.Warnings...)
	}
	all = append(all, s.tokens.Warnings()...)
	all = append(all, s.pools.Warnings()...)

	var warnings []string
	seen := map[string]bool{}
	for _, w := range all {
		if !seen[w] {
			seen[w] = true
			warnings = append(warnings, w)
		}
	}
	return Result{Command: command, Outcomes: s.outcomes, Warnings: warnings}
}

func stringArgs(args []string) []any {
	out := make([]any, len(args))
	for i, a := range args {
		out[i] = a
	}
	return out
}
