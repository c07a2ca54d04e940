package prepare

import (
	"fmt"
	"math"
	"math/big"
	"regexp"
	"strconv"
	"strings"

	clierr "github.com/augmented-finance/augmented-cli/internal/errors"
)

var decimalPattern = regexp.MustCompile(`^[0-9]+(\.[0-9]+)?$`)

// parseUnits scales a non-negative decimal string by 10^decimals. More
// fraction digits than decimals is an error.
func parseUnits(value string, decimals int) (*big.Int, error) {
	value = strings.TrimSpace(value)
	if !decimalPattern.MatchString(value) {
		return nil, clierr.New(clierr.CodeUsage, fmt.Sprintf("invalid decimal value %q", value))
	}
	intPart, fracPart, _ := strings.Cut(value, ".")
	if len(fracPart) > decimals {
		return nil, clierr.New(clierr.CodeUsage, fmt.Sprintf("%q has more than %d fraction digits", value, decimals))
	}
	combined := intPart + fracPart + strings.Repeat("0", decimals-len(fracPart))
	out, ok := new(big.Int).SetString(combined, 10)
	if !ok {
		return nil, clierr.New(clierr.CodeUsage, fmt.Sprintf("invalid decimal value %q", value))
	}
	return out, nil
}

// ParsePercentage converts "5.25%" into basis points of a percent (525).
// Without a % suffix the value must be a plain integer, or is rejected
// outright when strict.
func ParsePercentage(value string, strict bool) (uint32, error) {
	value = strings.TrimSpace(value)
	if pos := strings.IndexByte(value, '%'); pos > 0 {
		if pos != len(value)-1 {
			return 0, clierr.New(clierr.CodeUsage, "not a percentage: "+value)
		}
		scaled, err := parseUnits(value[:pos], 2)
		if err != nil {
			return 0, err
		}
		if !scaled.IsUint64() || scaled.Uint64() > math.MaxUint32 {
			return 0, clierr.New(clierr.CodeUsage, "percentage out of range: "+value)
		}
		return uint32(scaled.Uint64()), nil
	}
	if strict {
		return 0, clierr.New(clierr.CodeUsage, "not a percentage: "+value)
	}
	parsed, err := strconv.ParseUint(value, 10, 32)
	if err != nil {
		return 0, clierr.Wrap(clierr.CodeUsage, "not a percentage: "+value, err)
	}
	return uint32(parsed), nil
}

// ParseMintRate passes 0x-prefixed values through and scales decimals by 1e18.
func ParseMintRate(value string) (string, error) {
	value = strings.TrimSpace(value)
	if strings.HasPrefix(value, "0x") || strings.HasPrefix(value, "0X") {
		return value, nil
	}
	scaled, err := parseUnits(value, 18)
	if err != nil {
		return "", err
	}
	return scaled.String(), nil
}
