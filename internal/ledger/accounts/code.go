package accounts

import (
	"regexp"
	"sort"
	"strings"

	"github.com/openledger/openledger/internal/ledger/shared"
)

// codePattern matches codes like 1, 1.2, 1.2.3, 1.2.3.04 and 1.2.3.04.0005.
// The first three segments are single digits 1-9, the fourth two digits, the
// fifth four digits.
var codePattern = regexp.MustCompile(`^[1-9](\.[1-9](\.[1-9](\.[0-9]{2}(\.[0-9]{4})?)?)?)?$`)

// ValidateCode checks the account code format.
func ValidateCode(code string) error {
	if !codePattern.MatchString(code) {
		return shared.ErrInvalidAccountCode
	}
	return nil
}

// CodeDepth returns the depth implied by a code, with single-segment codes at
// depth zero. Malformed codes still get a best-effort answer.
func CodeDepth(code string) int {
	if code == "" {
		return 0
	}
	return strings.Count(code, ".")
}

// SortByCode orders accounts by their code string, the tree's natural order.
func SortByCode(list []Account) {
	sort.Slice(list, func(i, j int) bool {
		return list[i].Code < list[j].Code
	})
}
