package resolve

import (
	"context"
	"fmt"
	"strings"

	"github.com/augmented-finance/augmented-cli/internal/access"
	"github.com/augmented-finance/augmented-cli/internal/deployments"
	clierr "github.com/augmented-finance/augmented-cli/internal/errors"
	"github.com/augmented-finance/augmented-cli/internal/registry"
	"github.com/ethereum/go-ethereum/common"
)

const registryType = "AddressesProviderRegistry"

// Controller is the part of the access controller the resolver needs.
type Controller interface {
	Handle() registry.Handle
	GetAddress(ctx context.Context, flag access.Flags) (common.Address, error)
}

// Resolver turns object references into contract handles.
//
// Accepted forms:
//
//	AC, ACCESS_CONTROLLER   the access controller itself
//	REGISTRY                the addresses provider registry
//	KEY                     a deployment record key or an external id
//	TYPE@0xADDR             TYPE bound to a literal address
//	TYPE@ROLE               TYPE bound to the controller's address for ROLE
type Resolver struct {
	controller       Controller
	records          deployments.Accessor
	fallbackRegistry common.Address
}

func New(controller Controller, records deployments.Accessor, fallbackRegistry common.Address) *Resolver {
	return &Resolver{controller: controller, records: records, fallbackRegistry: fallbackRegistry}
}

func (r *Resolver) Resolve(ctx context.Context, ref string) (registry.Handle, error) {
	ref = strings.TrimSpace(ref)
	switch ref {
	case "":
		return registry.Handle{}, resolutionError("empty object name")
	case "AC", "ACCESS_CONTROLLER":
		return r.controller.Handle(), nil
	case "REGISTRY":
		return r.registry(ctx)
	}

	typeName, target, qualified := strings.Cut(ref, "@")
	if !qualified {
		return r.byKey(ctx, ref)
	}

	var addr common.Address
	if strings.HasPrefix(target, "0x") {
		if !common.IsHexAddress(target) {
			return registry.Handle{}, resolutionError("invalid address: " + target)
		}
		addr = common.HexToAddress(target)
	} else {
		flag, ok := access.FlagByName(target)
		if !ok {
			return registry.Handle{}, resolutionError("unknown role: " + target)
		}
		var err error
		addr, err = r.controller.GetAddress(ctx, flag)
		if err != nil {
			return registry.Handle{}, err
		}
	}
	if addr == (common.Address{}) {
		return registry.Handle{}, resolutionError("invalid address: " + target)
	}
	return bind(typeName, addr, "unknown type name: ")
}

func (r *Resolver) registry(ctx context.Context) (registry.Handle, error) {
	if r.records != nil {
		rec, ok, err := r.records.LookupByKey(ctx, registryType)
		if err != nil {
			return registry.Handle{}, clierr.Wrap(clierr.CodeResolution, "read deployment records", err)
		}
		if ok && rec.Address != (common.Address{}) {
			return bind(registryType, rec.Address, "unsupported type name: ")
		}
	}
	if r.fallbackRegistry == (common.Address{}) {
		return registry.Handle{}, resolutionError("registry was not found")
	}
	return bind(registryType, r.fallbackRegistry, "unsupported type name: ")
}

func (r *Resolver) byKey(ctx context.Context, key string) (registry.Handle, error) {
	if r.records == nil {
		return registry.Handle{}, resolutionError("unknown object name: " + key)
	}
	rec, ok, err := r.records.LookupByKey(ctx, key)
	if err != nil {
		return registry.Handle{}, clierr.Wrap(clierr.CodeResolution, "read deployment records", err)
	}
	if ok {
		return bind(key, rec.Address, "unsupported type name: ")
	}

	externals, err := r.records.ListExternals(ctx)
	if err != nil {
		return registry.Handle{}, clierr.Wrap(clierr.CodeResolution, "read deployment externals", err)
	}
	var found []deployments.External
	for _, ext := range externals {
		if ext.ID == key && ext.VerifyImpl != (common.Address{}) {
			found = append(found, ext)
		}
	}
	switch {
	case len(found) == 0:
		return registry.Handle{}, resolutionError("unknown object name: " + key)
	case len(found) > 1:
		matches := make([]string, 0, len(found))
		for _, ext := range found {
			matches = append(matches, fmt.Sprintf("%s (impl %s)", ext.Address.Hex(), ext.VerifyImpl.Hex()))
		}
		return registry.Handle{}, resolutionError(fmt.Sprintf("ambiguous object name: %s, %s", key, strings.Join(matches, ", ")))
	}

	ext := found[0]
	inst, ok, err := r.records.LookupInstance(ctx, ext.VerifyImpl)
	if err != nil {
		return registry.Handle{}, clierr.Wrap(clierr.CodeResolution, "read deployment instances", err)
	}
	if !ok {
		return registry.Handle{}, resolutionError("unknown impl address: " + key)
	}
	return bind(inst.ID, ext.Address, "unsupported type name: ")
}

// bind rejects a zero address whichever path produced it.
func bind(typeName string, addr common.Address, unknownPrefix string) (registry.Handle, error) {
	if addr == (common.Address{}) {
		return registry.Handle{}, resolutionError("invalid address: " + typeName)
	}
	handle, ok, err := registry.NewHandle(typeName, addr)
	if err != nil {
		return registry.Handle{}, clierr.Wrap(clierr.CodeInternal, "bind "+typeName, err)
	}
	if !ok {
		return registry.Handle{}, resolutionError(unknownPrefix + typeName)
	}
	return handle, nil
}

func resolutionError(msg string) error {
	return clierr.New(clierr.CodeResolution, msg)
}
