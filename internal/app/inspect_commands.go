package app

import (
	"fmt"
	"math/bits"
	"os"
	"strings"

	"github.com/augmented-finance/augmented-cli/internal/access"
	"github.com/augmented-finance/augmented-cli/internal/commands"
	clierr "github.com/augmented-finance/augmented-cli/internal/errors"
	"github.com/augmented-finance/augmented-cli/internal/model"
	"github.com/augmented-finance/augmented-cli/internal/registry"
	"github.com/spf13/cobra"
)

func (s *runtimeState) newDeploymentsCommand() *cobra.Command {
	root := &cobra.Command{Use: "deployments", Short: "Deployment record commands"}

	importCmd := &cobra.Command{
		Use:   "import <deployed-contracts.json>",
		Short: "Replace the records of --network with a hardhat JSON deployment DB",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return clierr.Wrap(clierr.CodeUsage, "open deployment db", err)
			}
			defer f.Close()
			store, err := s.openDeployments()
			if err != nil {
				return err
			}
			counts, err := store.Import(cmd.Context(), f, s.settings.Network)
			if err != nil {
				return clierr.Wrap(clierr.CodeUsage, "import deployment db", err)
			}
			return s.emitSuccess(trimRootPath(cmd.CommandPath()), model.ImportSummary{
				Network:   counts.Network,
				Source:    args[0],
				Records:   counts.Records,
				Externals: counts.Externals,
				Instances: counts.Instances,
			}, nil)
		},
	}

	getCmd := &cobra.Command{
		Use:   "get <key>",
		Short: "Show one deployment record of --network",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := s.openDeployments()
			if err != nil {
				return err
			}
			view := store.Network(s.settings.Network)
			rec, ok, err := view.LookupByKey(cmd.Context(), args[0])
			if err != nil {
				return clierr.Wrap(clierr.CodeInternal, "read deployment record", err)
			}
			if !ok {
				return clierr.New(clierr.CodeResolution, fmt.Sprintf("unknown deployment key %s on %s", args[0], s.settings.Network))
			}
			return s.emitSuccess(trimRootPath(cmd.CommandPath()), model.DeploymentRecord{
				Network:  strings.ToLower(s.settings.Network),
				Key:      rec.Key,
				Address:  rec.Address.Hex(),
				Deployer: rec.Deployer.Hex(),
			}, nil)
		},
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List deployment records of --network",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := s.openDeployments()
			if err != nil {
				return err
			}
			records, err := store.Network(s.settings.Network).ListRecords(cmd.Context())
			if err != nil {
				return clierr.Wrap(clierr.CodeInternal, "list deployment records", err)
			}
			items := make([]model.DeploymentRecord, 0, len(records))
			for _, rec := range records {
				items = append(items, model.DeploymentRecord{
					Network:  strings.ToLower(s.settings.Network),
					Key:      rec.Key,
					Address:  rec.Address.Hex(),
					Deployer: rec.Deployer.Hex(),
				})
			}
			return s.emitSuccess(trimRootPath(cmd.CommandPath()), items, nil)
		},
	}

	root.AddCommand(importCmd, getCmd, listCmd)
	return root
}

func (s *runtimeState) newRolesCommand() *cobra.Command {
	root := &cobra.Command{Use: "roles", Short: "Access role commands"}
	list := &cobra.Command{
		Use:   "list",
		Short: "List named access roles and their flags",
		RunE: func(cmd *cobra.Command, args []string) error {
			table := access.Table()
			items := make([]model.RoleInfo, 0, len(table))
			for _, role := range table {
				items = append(items, model.RoleInfo{
					Name: role.Name,
					Flag: fmt.Sprintf("0x%x", uint64(role.Flag)),
					Bit:  bits.TrailingZeros64(uint64(role.Flag)),
				})
			}
			return s.emitSuccess(trimRootPath(cmd.CommandPath()), items, nil)
		},
	}
	root.AddCommand(list)
	return root
}

func (s *runtimeState) newNetworksCommand() *cobra.Command {
	root := &cobra.Command{Use: "networks", Short: "Network commands"}
	list := &cobra.Command{
		Use:   "list",
		Short: "List known networks and default RPC endpoints",
		RunE: func(cmd *cobra.Command, args []string) error {
			names := registry.NetworkNames()
			items := make([]model.NetworkInfo, 0, len(names))
			for _, name := range names {
				n, _ := registry.LookupNetwork(name)
				items = append(items, model.NetworkInfo{Name: n.Name, ChainID: n.ChainID, RPCURL: n.RPCURL})
			}
			return s.emitSuccess(trimRootPath(cmd.CommandPath()), items, nil)
		},
	}
	root.AddCommand(list)
	return root
}

func (s *runtimeState) newTypesCommand() *cobra.Command {
	root := &cobra.Command{Use: "types", Short: "Contract type commands"}
	list := &cobra.Command{
		Use:   "list",
		Short: "List contract type names accepted in TYPE@ADDRESS references",
		RunE: func(cmd *cobra.Command, args []string) error {
			return s.emitSuccess(trimRootPath(cmd.CommandPath()), registry.TypeNames(), nil)
		},
	}
	root.AddCommand(list)
	return root
}

func (s *runtimeState) newCommandsCommand() *cobra.Command {
	root := &cobra.Command{Use: "commands", Short: "Command alias commands"}
	list := &cobra.Command{
		Use:   "list",
		Short: "List command aliases accepted by call --cmd",
		RunE: func(cmd *cobra.Command, args []string) error {
			names := commands.Names()
			items := make([]model.CommandInfo, 0, len(names))
			for _, name := range names {
				alias, _ := commands.Lookup(name)
				info := model.CommandInfo{Name: name, Kind: "custom"}
				if direct, ok := alias.(commands.DirectCall); ok {
					info.Kind = "direct"
					info.Target = direct.QualifiedName
					info.Role = direct.Role.String()
				}
				items = append(items, info)
			}
			return s.emitSuccess(trimRootPath(cmd.CommandPath()), items, nil)
		},
	}
	root.AddCommand(list)
	return root
}

func (s *runtimeState) newHistoryCommand() *cobra.Command {
	root := &cobra.Command{Use: "history", Short: "Invocation journal commands"}

	var status string
	var limit int
	list := &cobra.Command{
		Use:   "list",
		Short: "List recent invocations",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := s.openJournal()
			if err != nil {
				return err
			}
			entries, err := store.List(cmd.Context(), status, limit)
			if err != nil {
				return clierr.Wrap(clierr.CodeInternal, "list journal", err)
			}
			return s.emitSuccess(trimRootPath(cmd.CommandPath()), entries, nil)
		},
	}
	list.Flags().StringVar(&status, "status", "", "Filter by status (running|completed|failed)")
	list.Flags().IntVar(&limit, "limit", 20, "Maximum entries to return")

	show := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one invocation with its steps",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := s.openJournal()
			if err != nil {
				return err
			}
			entry, err := store.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return s.emitSuccess(trimRootPath(cmd.CommandPath()), entry, entry.Warnings)
		},
	}

	root.AddCommand(list, show)
	return root
}
