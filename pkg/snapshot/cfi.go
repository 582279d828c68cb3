package snapshot

import (
	"strings"

	"gitlab.heather.loc/helios/venuelink/pkg/trading"
)

// SecurityTypeFromCfi decodes the category letters of an ISO 10962 CFI code
func SecurityTypeFromCfi(cfi string) (trading.SecurityType, bool) {
	cfi = strings.ToUpper(cfi)
	if len(cfi) < 2 {
		return 0, false
	}

	switch cfi[0] {
	case 'E':
		if cfi[1] == 'U' {
			return trading.SecurityTypeFund, true
		}
		return trading.SecurityTypeStock, true
	case 'C':
		return trading.SecurityTypeFund, true
	case 'D':
		return trading.SecurityTypeBond, true
	case 'O':
		return trading.SecurityTypeOption, true
	case 'F':
		return trading.SecurityTypeFuture, true
	case 'J':
		return trading.SecurityTypeForward, true
	case 'S':
		return trading.SecurityTypeSwap, true
	case 'R':
		if cfi[1] == 'W' {
			return trading.SecurityTypeWarrant, true
		}
	case 'T':
		return referentialType(cfi[1])
	case 'M':
		// legacy "MR" referential instruments
		if cfi[1] == 'R' && len(cfi) > 2 {
			return referentialType(cfi[2])
		}
	}
	return 0, false
}

func referentialType(group byte) (trading.SecurityType, bool) {
	switch group {
	case 'C':
		return trading.SecurityTypeCurrency, true
	case 'I':
		return trading.SecurityTypeIndex, true
	case 'T':
		return trading.SecurityTypeCommodity, true
	}
	return 0, false
}

// OptionTypeFromCfi reads the call/put letter of an option CFI code
func OptionTypeFromCfi(cfi string) (trading.OptionType, bool) {
	cfi = strings.ToUpper(cfi)
	if len(cfi) < 2 || cfi[0] != 'O' {
		return 0, false
	}
	switch cfi[1] {
	case 'C':
		return trading.OptionTypeCall, true
	case 'P':
		return trading.OptionTypePut, true
	}
	return 0, false
}
