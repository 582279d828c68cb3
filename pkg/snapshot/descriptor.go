package snapshot

import (
	"strings"

	"github.com/shopspring/decimal"
	"gitlab.heather.loc/helios/venuelink/pkg/trading"
)

// mergeValue copies a present value into target. Without isOverride a
// populated target is kept.
func mergeValue[T any](target **T, value *T, isOverride bool) {
	if value == nil {
		return
	}
	if isOverride || *target == nil {
		v := *value
		*target = &v
	}
}

func mergeString(target *string, value string, isOverride bool) {
	if value == "" {
		return
	}
	if isOverride || *target == "" {
		*target = value
	}
}

// DecimalsOf is the number of fractional digits of a price step
func DecimalsOf(step decimal.Decimal) int {
	text := step.Abs().String()
	if idx := strings.IndexByte(text, '.'); idx >= 0 {
		return len(text) - idx - 1
	}
	return 0
}

// PriceStepOf is the smallest price step with the given decimals
func PriceStepOf(decimals int) decimal.Decimal {
	return decimal.New(1, -int32(decimals))
}

// ApplySecurity merges an instrument descriptor into sec. With isOverride
// every present field wins, otherwise only empty fields of sec are filled.
// Price step and decimals derive each other when only one of them arrives
// and the other is still unset.
func ApplySecurity(sec *Security, msg *trading.SecurityMessage, boards BoardProvider, isOverride bool) error {
	if sec == nil {
		return invalidArgument("security is nil")
	}
	if msg == nil {
		return invalidArgument("security message is nil")
	}
	if boards == nil {
		return invalidArgument("board provider is nil")
	}

	secID := msg.SecurityID
	mergeString(&sec.Code, secID.Code, isOverride)
	if secID.Board != "" && (isOverride || sec.Board == nil) {
		sec.Board = boards.GetOrCreateBoard(secID.Board)
	}

	mergeValue(&sec.Currency, msg.Currency, isOverride)
	mergeValue(&sec.ExpiryDate, msg.ExpiryDate, isOverride)
	mergeValue(&sec.VolumeStep, msg.VolumeStep, isOverride)
	mergeValue(&sec.MinVolume, msg.MinVolume, isOverride)
	mergeValue(&sec.MaxVolume, msg.MaxVolume, isOverride)
	mergeValue(&sec.Multiplier, msg.Multiplier, isOverride)

	if msg.PriceStep != nil {
		mergeValue(&sec.PriceStep, msg.PriceStep, isOverride)
		if msg.Decimals == nil && sec.Decimals == nil {
			decimals := DecimalsOf(*msg.PriceStep)
			sec.Decimals = &decimals
		}
	}
	if msg.Decimals != nil {
		mergeValue(&sec.Decimals, msg.Decimals, isOverride)
		if msg.PriceStep == nil && sec.PriceStep == nil {
			step := PriceStepOf(*msg.Decimals)
			sec.PriceStep = &step
		}
	}

	mergeString(&sec.Name, msg.Name, isOverride)
	mergeString(&sec.Class, msg.Class, isOverride)
	mergeValue(&sec.OptionType, msg.OptionType, isOverride)
	mergeValue(&sec.Strike, msg.Strike, isOverride)
	mergeString(&sec.BinaryOptionType, msg.BinaryOptionType, isOverride)
	mergeValue(&sec.SettlementDate, msg.SettlementDate, isOverride)
	mergeString(&sec.ShortName, msg.ShortName, isOverride)
	mergeValue(&sec.Type, msg.SecurityType, isOverride)
	mergeValue(&sec.Shortable, msg.Shortable, isOverride)

	if msg.CfiCode != "" {
		mergeString(&sec.CfiCode, msg.CfiCode, isOverride)

		if sec.Type == nil {
			if secType, ok := SecurityTypeFromCfi(sec.CfiCode); ok {
				sec.Type = &secType
			}
		}
		if sec.Type != nil && *sec.Type == trading.SecurityTypeOption && sec.OptionType == nil {
			if optionType, ok := OptionTypeFromCfi(sec.CfiCode); ok {
				sec.OptionType = &optionType
			}
		}
	}

	if msg.UnderlyingSecurityCode != "" && (isOverride || sec.UnderlyingSecurityID == "") {
		sec.UnderlyingSecurityID = msg.UnderlyingSecurityCode + "@" + secID.Board
	}
	mergeString(&sec.ExternalID, msg.ExternalID, isOverride)
	mergeValue(&sec.IssueDate, msg.IssueDate, isOverride)
	mergeValue(&sec.IssueSize, msg.IssueSize, isOverride)
	mergeValue(&sec.UnderlyingSecurityType, msg.UnderlyingSecurityType, isOverride)
	mergeValue(&sec.UnderlyingSecurityMinVolume, msg.UnderlyingSecurityMinVolume, isOverride)
	mergeString(&sec.BasketCode, msg.BasketCode, isOverride)
	mergeString(&sec.BasketExpression, msg.BasketExpression, isOverride)
	mergeValue(&sec.FaceValue, msg.FaceValue, isOverride)
	mergeValue(&sec.OptionStyle, msg.OptionStyle, isOverride)
	mergeValue(&sec.SettlementType, msg.SettlementType, isOverride)

	if !msg.PrimaryID.IsEmpty() {
		mergeString(&sec.PrimaryID, msg.PrimaryID.String(), isOverride)
	}
	return nil
}
