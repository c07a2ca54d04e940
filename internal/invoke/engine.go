package invoke

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/augmented-finance/augmented-cli/internal/access"
	clierr "github.com/augmented-finance/augmented-cli/internal/errors"
	"github.com/augmented-finance/augmented-cli/internal/registry"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"
)

const (
	DefaultTempAdminBlocks = 10
	defaultRenounceTimeout = 2 * time.Minute
)

// Backend is the ledger the engine talks to.
type Backend interface {
	From() common.Address
	Call(ctx context.Context, to common.Address, data []byte) ([]byte, error)
	Send(ctx context.Context, to common.Address, data []byte, gasLimit uint64) (common.Hash, error)
	WaitMined(ctx context.Context, hash common.Hash) (*types.Receipt, error)
}

type Options struct {
	// TempAdminBlocks is how long a compatible-mode temporary admin grant lasts.
	TempAdminBlocks uint64
	// RenounceTimeout bounds the renounce step once the caller's context is gone.
	RenounceTimeout time.Duration
	Logger          *zap.Logger
}

// Engine invokes contract functions, acquiring roles through the access
// controller when the call requires them.
//
// Concurrent engines driving the same controller from one signer are not
// coordinated: temporary admin grants from one may be renounced by another.
type Engine struct {
	controller *access.Controller
	backend    Backend
	opts       Options
	log        *zap.Logger
}

func NewEngine(controller *access.Controller, backend Backend, opts Options) *Engine {
	if opts.TempAdminBlocks == 0 {
		opts.TempAdminBlocks = DefaultTempAdminBlocks
	}
	if opts.RenounceTimeout <= 0 {
		opts.RenounceTimeout = defaultRenounceTimeout
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{controller: controller, backend: backend, opts: opts, log: log}
}

// Invoke calls fn on handle. With roles == 0 the call goes straight to the
// target. Otherwise it is wrapped in callWithRoles, or in compatible mode the
// signer is made a temporary admin, granted roles, and renounces afterwards.
func (e *Engine) Invoke(ctx context.Context, roles access.Flags, handle registry.Handle, fn string, params Params) (outcome Outcome, err error) {
	outcome = Outcome{
		Target:     handle.Address.Hex(),
		TargetType: handle.Type,
		Function:   fn,
		Steps:      []Step{},
	}
	warnings, err := params.Validate()
	if err != nil {
		return outcome, err
	}
	outcome.Warnings = warnings
	for _, w := range warnings {
		e.log.Warn(w)
	}

	method, ok := handle.Method(fn)
	if !ok {
		return outcome, clierr.New(clierr.CodeResolution, fmt.Sprintf("unknown function %s on %s", fn, handle.Type))
	}
	outcome.Function = method.Name
	args, err := CoerceArgs(method.Inputs, params.Args)
	if err != nil {
		return outcome, err
	}
	outcome.Args = displayValues(args)
	data, err := handle.ABI.Pack(method.Name, args...)
	if err != nil {
		return outcome, clierr.Wrap(clierr.CodeUsage, "encode "+method.Name+" call", err)
	}
	outcome.Static = !params.Encode && (params.Static || method.IsConstant())
	if roles != 0 {
		outcome.Roles = roles.Names()
	}

	e.log.Info("call",
		zap.String("kind", callKind(outcome.Static)),
		zap.String("target", handle.Address.Hex()),
		zap.String("function", method.Name),
		zap.Any("args", outcome.Args))

	switch {
	case roles == 0:
		outcome.Mode = ModeDirect
		err = e.direct(ctx, &outcome, method, handle.Address, data, params)
	case params.Compatible:
		outcome.Mode = ModeCompatible
		err = e.compatible(ctx, &outcome, roles, method, handle.Address, data, params)
	default:
		outcome.Mode = ModeRoles
		err = e.withRoles(ctx, &outcome, roles, method, handle.Address, data, params)
	}
	return outcome, err
}

func (e *Engine) direct(ctx context.Context, outcome *Outcome, method abi.Method, target common.Address, data []byte, params Params) error {
	if params.Encode {
		outcome.Encoded = &EncodedCall{To: target.Hex(), Data: hexutil.Encode(data)}
		outcome.Steps = append(outcome.Steps, Step{Name: method.Name, Target: target.Hex(), Status: StepStatusEncoded})
		return nil
	}
	if outcome.Static {
		raw, err := e.call(ctx, outcome, method.Name, target, data)
		if err != nil {
			return err
		}
		return e.decode(outcome, method, raw)
	}
	step, err := e.transact(ctx, outcome, method.Name, target, data, params.GasLimit, params.WaitTx)
	outcome.TxHash, outcome.GasUsed = step.TxHash, step.GasUsed
	return err
}

func (e *Engine) compatible(ctx context.Context, outcome *Outcome, roles access.Flags, method abi.Method, target common.Address, data []byte, params Params) (err error) {
	user := e.backend.From()
	if user == (common.Address{}) {
		return clierr.New(clierr.CodeSigner, "compatible mode requires a signer")
	}

	e.log.Info("grant temporary admin", zap.String("admin", user.Hex()), zap.Uint64("blocks", e.opts.TempAdminBlocks))
	grantAdmin, err := e.controller.PackSetTemporaryAdmin(user, e.opts.TempAdminBlocks)
	if err != nil {
		return err
	}
	if _, err := e.transact(ctx, outcome, "setTemporaryAdmin", e.controller.Address(), grantAdmin, 0, true); err != nil {
		return err
	}

	defer func() {
		if renounceErr := e.renounce(ctx, outcome); renounceErr != nil {
			err = errors.Join(err, renounceErr)
		}
	}()

	e.log.Info("grant roles", zap.Strings("roles", roles.Names()))
	grant, err := e.controller.PackGrantRoles(user, roles)
	if err != nil {
		return err
	}
	if _, err := e.transact(ctx, outcome, "grantRoles", e.controller.Address(), grant, 0, true); err != nil {
		return err
	}
	return e.direct(ctx, outcome, method, target, data, Params{WaitTx: params.WaitTx})
}

// renounce runs on a context detached from cancellation so an interrupted
// command still gives up its temporary admin.
func (e *Engine) renounce(ctx context.Context, outcome *Outcome) error {
	renounceCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), e.opts.RenounceTimeout)
	defer cancel()

	e.log.Info("renounce temporary admin")
	data, err := e.controller.PackRenounceTemporaryAdmin()
	if err != nil {
		return err
	}
	if _, err := e.transact(renounceCtx, outcome, "renounceTemporaryAdmin", e.controller.Address(), data, 0, true); err != nil {
		e.log.Error("renounce temporary admin failed", zap.Error(err))
		return err
	}
	return nil
}

func (e *Engine) withRoles(ctx context.Context, outcome *Outcome, roles access.Flags, method abi.Method, target common.Address, data []byte, params Params) error {
	wrapped, err := e.controller.PackCallWithRoles([]access.RoleCall{{
		AccessFlags: roles.Big(),
		CallFlag:    new(big.Int),
		CallAddr:    target,
		CallData:    data,
	}})
	if err != nil {
		return err
	}
	controller := e.controller.Address()

	if params.Encode {
		outcome.Encoded = &EncodedCall{To: controller.Hex(), Data: hexutil.Encode(wrapped)}
		outcome.Steps = append(outcome.Steps, Step{Name: "callWithRoles", Target: controller.Hex(), Status: StepStatusEncoded})
		return nil
	}
	if outcome.Static {
		raw, err := e.call(ctx, outcome, "callWithRoles", controller, wrapped)
		if err != nil {
			return err
		}
		results, err := e.controller.UnpackCallWithRoles(raw)
		if err != nil {
			return err
		}
		if len(results) == 0 {
			return clierr.New(clierr.CodeUnavailable, "callWithRoles returned no results")
		}
		return e.decode(outcome, method, results[0])
	}
	step, err := e.transact(ctx, outcome, "callWithRoles", controller, wrapped, params.GasLimit, params.WaitTx)
	outcome.TxHash, outcome.GasUsed = step.TxHash, step.GasUsed
	return err
}

func (e *Engine) call(ctx context.Context, outcome *Outcome, name string, to common.Address, data []byte) ([]byte, error) {
	step := Step{Name: name, Target: to.Hex(), Status: StepStatusCalled}
	raw, err := e.backend.Call(ctx, to, data)
	if err != nil {
		step.Status, step.Error = StepStatusFailed, err.Error()
	}
	outcome.Steps = append(outcome.Steps, step)
	return raw, err
}

func (e *Engine) transact(ctx context.Context, outcome *Outcome, name string, to common.Address, data []byte, gasLimit uint64, wait bool) (Step, error) {
	step := Step{Name: name, Target: to.Hex()}
	defer func() { outcome.Steps = append(outcome.Steps, step) }()

	hash, err := e.backend.Send(ctx, to, data, gasLimit)
	if err != nil {
		step.Status, step.Error = StepStatusFailed, err.Error()
		return step, err
	}
	step.Status, step.TxHash = StepStatusSubmitted, hash.Hex()
	if !wait {
		return step, nil
	}
	receipt, err := e.backend.WaitMined(ctx, hash)
	if receipt != nil {
		step.GasUsed = receipt.GasUsed
	}
	if err != nil {
		step.Status, step.Error = StepStatusFailed, err.Error()
		return step, err
	}
	step.Status = StepStatusConfirmed
	e.log.Info("gas used", zap.String("step", name), zap.Uint64("gas", step.GasUsed))
	return step, nil
}

func (e *Engine) decode(outcome *Outcome, method abi.Method, raw []byte) error {
	values, err := method.Outputs.Unpack(raw)
	if err != nil {
		return clierr.Wrap(clierr.CodeUnavailable, "decode "+method.Name+" result", err)
	}
	outcome.Values = displayValues(values)
	e.log.Info("result", zap.String("function", method.Name), zap.Any("values", outcome.Values))
	return nil
}

func callKind(static bool) string {
	if static {
		return "static"
	}
	return "mutable"
}
