package app

import (
	"context"
	"strings"

	"github.com/augmented-finance/augmented-cli/internal/access"
	"github.com/augmented-finance/augmented-cli/internal/chain"
	"github.com/augmented-finance/augmented-cli/internal/chain/signer"
	"github.com/augmented-finance/augmented-cli/internal/commands"
	clierr "github.com/augmented-finance/augmented-cli/internal/errors"
	"github.com/augmented-finance/augmented-cli/internal/invoke"
	"github.com/augmented-finance/augmented-cli/internal/journal"
	"github.com/augmented-finance/augmented-cli/internal/policy"
	"github.com/augmented-finance/augmented-cli/internal/registry"
	"github.com/augmented-finance/augmented-cli/internal/resolve"
	"github.com/augmented-finance/augmented-cli/internal/schema"
	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type callFlags struct {
	controller string
	command    string
	roles      string
	static     bool
	compatible bool
	encode     bool
	waitTx     bool
	gasLimit   uint64
	privateKey string
}

func (s *runtimeState) newCallCommand() *cobra.Command {
	var f callFlags
	cmd := &cobra.Command{
		Use:   "call [args...]",
		Short: "Invoke a command alias or a qualified Object.function",
		Long: `Invoke a command alias (see "commands list") or a qualified function such as
OracleRouter@PRICE_ORACLE.getAssetPrice. Qualified functions take --roles; aliases
carry their own role.`,
		Args:        cobra.ArbitraryArgs,
		Annotations: map[string]string{schema.AnnotationCommands: strings.Join(commands.Names(), ",")},
		RunE: func(cmd *cobra.Command, args []string) error {
			return s.runCall(cmd.Context(), f, args)
		},
	}
	cmd.Flags().StringVar(&f.controller, "ctl", "", "Address of the market access controller")
	cmd.Flags().StringVar(&f.command, "cmd", "", "Command alias or Object.function")
	cmd.Flags().StringVar(&f.roles, "roles", "", "Roles required by a qualified function (comma-separated names or numbers)")
	cmd.Flags().BoolVar(&f.static, "static", false, "Make the call static")
	cmd.Flags().BoolVar(&f.compatible, "compatible", false, "Escalate through a temporary admin instead of callWithRoles")
	cmd.Flags().BoolVar(&f.encode, "encode", false, "Print the encoded call instead of executing it")
	cmd.Flags().BoolVar(&f.waitTx, "wait-tx", false, "Wait for mutable transactions to be mined")
	cmd.Flags().Uint64Var(&f.gasLimit, "gas-limit", 0, "Gas limit for the transaction (estimated when 0)")
	cmd.Flags().StringVar(&f.privateKey, "private-key", "", "Private key hex override (otherwise read from --key-source)")
	_ = cmd.MarkFlagRequired("cmd")
	return cmd
}

func (s *runtimeState) runCall(ctx context.Context, f callFlags, args []string) error {
	command := strings.TrimSpace(f.command)
	if err := policy.CheckCommandAllowed(s.settings.EnableCommands, "call "+command); err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, s.settings.Timeout)
	defer cancel()

	ctlValue := strings.TrimSpace(f.controller)
	if ctlValue == "" {
		ctlValue = s.settings.Controller
	}
	var ctl common.Address
	if ctlValue != "" {
		if !common.IsHexAddress(ctlValue) {
			return clierr.New(clierr.CodeUsage, "invalid controller address: "+ctlValue)
		}
		ctl = common.HexToAddress(ctlValue)
	}
	if ctl == (common.Address{}) {
		return clierr.New(clierr.CodeUsage, "unknown access controller")
	}

	rpcURL, err := registry.ResolveRPCURL(s.settings.RPCURL, s.settings.Network)
	if err != nil {
		return clierr.Wrap(clierr.CodeUsage, "resolve rpc url", err)
	}
	opts := chain.DefaultOptions()
	opts.Logger = s.log
	var txSigner signer.Signer
	if local, err := signer.FromEnv(s.settings.KeySource, f.privateKey); err == nil {
		txSigner = local
	} else {
		opts.SignerErr = err
		s.log.Debug("no signer loaded", zap.Error(err))
	}
	client, err := chain.Dial(ctx, rpcURL, txSigner, opts)
	if err != nil {
		return err
	}
	defer client.Close()

	store, err := s.openDeployments()
	if err != nil {
		return err
	}
	controller, err := access.NewController(ctl, client)
	if err != nil {
		return err
	}
	var fallbackRegistry common.Address
	if v := s.settings.ProviderRegistry(s.settings.Network); common.IsHexAddress(v) {
		fallbackRegistry = common.HexToAddress(v)
	}
	dispatcher := commands.NewDispatcher(commands.Deps{
		Controller: controller,
		Resolver:   resolve.New(controller, store.Network(s.settings.Network), fallbackRegistry),
		Engine: invoke.NewEngine(controller, client, invoke.Options{
			TempAdminBlocks: s.settings.TempAdminBlocks,
			Logger:          s.log,
		}),
		Caller: client,
		Logger: s.log,
	})

	req := commands.Request{
		Command: command,
		Roles:   splitCSV(f.roles),
		Args:    args,
		Params: invoke.Params{
			Static:     f.static,
			Compatible: f.compatible,
			Encode:     f.encode,
			WaitTx:     f.waitTx,
			GasLimit:   f.gasLimit,
		},
	}

	entry := journal.NewEntry(command, s.settings.Network, ctl.Hex(), req.Roles, args)
	s.recordJournal(entry)

	result, runErr := dispatcher.Run(ctx, req)

	entry.Outcomes = result.Outcomes
	entry.Warnings = result.Warnings
	entry.Finish(runErr)
	s.recordJournal(entry)

	if runErr != nil {
		s.captureCommandDiagnostics(result, result.Warnings, executedAny(result.Outcomes))
		return runErr
	}
	return s.emitSuccess("call "+command, result, result.Warnings)
}

// recordJournal never fails the command; journal problems are logged.
func (s *runtimeState) recordJournal(entry journal.Entry) {
	if !s.settings.JournalEnabled {
		return
	}
	store, err := s.openJournal()
	if err == nil {
		err = store.Save(context.Background(), entry)
	}
	if err != nil {
		s.log.Warn("journal write failed", zap.Error(err))
		return
	}
	s.lastJournalID = entry.ID
}

func executedAny(outcomes []invoke.Outcome) bool {
	for _, o := range outcomes {
		for _, step := range o.Steps {
			if step.Status != invoke.StepStatusEncoded {
				return true
			}
		}
	}
	return false
}

func splitCSV(v string) []string {
	if strings.TrimSpace(v) == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
