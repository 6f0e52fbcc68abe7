package wish

import (
	"errors"
	"fmt"
)

var ErrNotFound = errors.New("wish not found")
var ErrForbidden = errors.New("forbidden")
var ErrUnauthorized = errors.New("unauthorized")

// ValidationError is a malformed-input rejection (missing or oversized fields).
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// RedeemType tags a pledge mutation: REDEEM increases the caller's share,
// REMOVE withdraws part of it.
type RedeemType string

const (
	Redeem RedeemType = "REDEEM"
	Remove RedeemType = "REMOVE"
)

func ParseRedeemType(s string) (RedeemType, bool) {
	switch RedeemType(s) {
	case Redeem, Remove:
		return RedeemType(s), true
	}
	return "", false
}

const giftedAmountThreshold = "gifted_amount_threshold"

// InvalidContributionError rejects a pledge that would break the 0-100
// allocation invariant. MaxAllowed is the largest amount the caller could
// have used instead; the message carries it verbatim.
type InvalidContributionError struct {
	Code       string
	MaxAllowed int
	message    string
}

func (e *InvalidContributionError) Error() string { return e.message }

func overRedeemed(max int) error {
	return &InvalidContributionError{
		Code:       giftedAmountThreshold,
		MaxAllowed: max,
		message:    fmt.Sprintf("can't redeem more than %d%% of the wish", max),
	}
}

func overRemoved(max int) error {
	return &InvalidContributionError{
		Code:       giftedAmountThreshold,
		MaxAllowed: max,
		message:    fmt.Sprintf("can't remove more than %d%% of the wish", max),
	}
}

// ValidatePledge decides whether a pledge may be applied against a wish whose
// contributors currently hold total percent in aggregate, of which the caller
// holds personal. It never mutates anything; callers apply the delta only on
// a nil return, inside the same transaction that produced total and personal.
func ValidatePledge(typ RedeemType, amount, total, personal int) error {
	if amount < 0 || amount > 100 {
		return &ValidationError{Field: "amount", Reason: "must be between 0 and 100"}
	}

	switch typ {
	case Redeem:
		if total+amount > 100 {
			return overRedeemed(100 - total)
		}
	case Remove:
		if amount > personal {
			return overRemoved(personal)
		}
		if total-amount < 0 {
			return overRemoved(total)
		}
	default:
		return &ValidationError{Field: "type", Reason: "must be REDEEM or REMOVE"}
	}
	return nil
}
