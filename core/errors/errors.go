package errors

import (
	stderrors "errors"
	"fmt"
)

// Kind classifies failures into caller mistakes and state conflicts.
type Kind uint8

const (
	KindValidation Kind = iota + 1
	KindStateConflict
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "Validation"
	case KindStateConflict:
		return "StateConflict"
	default:
		return "Unknown"
	}
}

// Reason is the stable, caller-visible failure code.
type Reason string

const (
	ReasonNoSuchItem              Reason = "NoSuchItem"
	ReasonAuctionClosed           Reason = "AuctionClosed"
	ReasonBidTooSmall             Reason = "BidTooSmall"
	ReasonBidNotUnitAligned       Reason = "BidNotUnitAligned"
	ReasonTopBidderCannotWithdraw Reason = "TopBidderCannotWithdraw"
	ReasonNothingToWithdraw       Reason = "NothingToWithdraw"
	ReasonNotSeller               Reason = "NotSeller"
	ReasonTooEarly                Reason = "TooEarly"
	ReasonPriceMustBePositive     Reason = "PriceMustBePositive"
	ReasonAlreadySold             Reason = "AlreadySold"
	ReasonInsufficientPayment     Reason = "InsufficientPayment"
	ReasonNotAuthorized           Reason = "NotAuthorized"
	ReasonNotPrivileged           Reason = "NotPrivileged"
	ReasonInvalidAmount           Reason = "InvalidAmount"
	ReasonOverflow                Reason = "Overflow"
	ReasonInvalidFeeRate          Reason = "InvalidFeeRate"
	ReasonInvalidEndTime          Reason = "InvalidEndTime"
	ReasonInsufficientBalance     Reason = "InsufficientBalance"
	ReasonModulePaused            Reason = "ModulePaused"
	ReasonQuotaExceeded           Reason = "QuotaExceeded"
	ReasonNotOwner                Reason = "NotOwner"
	ReasonNoSuchAsset             Reason = "NoSuchAsset"
)

// Error is a classified engine failure. Sentinel values are compared by
// identity, so wrapping with fmt.Errorf("...: %w", ErrX) keeps errors.Is
// working while adding context.
type Error struct {
	Kind    Kind
	Reason  Reason
	Message string
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Message == "" {
		return string(e.Reason)
	}
	return fmt.Sprintf("%s: %s", e.Reason, e.Message)
}

func newError(kind Kind, reason Reason, msg string) *Error {
	return &Error{Kind: kind, Reason: reason, Message: msg}
}

var (
	ErrNoSuchItem              = newError(KindValidation, ReasonNoSuchItem, "item does not exist")
	ErrAuctionClosed           = newError(KindStateConflict, ReasonAuctionClosed, "auction is ended or cancelled")
	ErrBidTooSmall             = newError(KindValidation, ReasonBidTooSmall, "bid must exceed the top bid by the minimum increment")
	ErrBidNotUnitAligned       = newError(KindValidation, ReasonBidNotUnitAligned, "bid must be a multiple of the minimum bid unit")
	ErrTopBidderCannotWithdraw = newError(KindStateConflict, ReasonTopBidderCannotWithdraw, "top bidder cannot withdraw")
	ErrNothingToWithdraw       = newError(KindStateConflict, ReasonNothingToWithdraw, "nothing to withdraw")
	ErrNotSeller               = newError(KindValidation, ReasonNotSeller, "only the seller may do this")
	ErrTooEarly                = newError(KindStateConflict, ReasonTooEarly, "auction end time not reached")
	ErrPriceMustBePositive     = newError(KindValidation, ReasonPriceMustBePositive, "price must be greater than zero")
	ErrAlreadySold             = newError(KindStateConflict, ReasonAlreadySold, "item already sold")
	ErrInsufficientPayment     = newError(KindValidation, ReasonInsufficientPayment, "payment does not cover price and fee")
	ErrNotAuthorized           = newError(KindValidation, ReasonNotAuthorized, "engine is not authorized to transfer the asset")
	ErrNotPrivileged           = newError(KindValidation, ReasonNotPrivileged, "caller is not privileged")
	ErrInvalidAmount           = newError(KindValidation, ReasonInvalidAmount, "amount must be non-negative")
	ErrOverflow                = newError(KindValidation, ReasonOverflow, "arithmetic overflow")
	ErrInvalidFeeRate          = newError(KindValidation, ReasonInvalidFeeRate, "fee rate out of range")
	ErrInvalidEndTime          = newError(KindValidation, ReasonInvalidEndTime, "end time must be in the future")
	ErrInsufficientBalance     = newError(KindValidation, ReasonInsufficientBalance, "insufficient balance")
	ErrModulePaused            = newError(KindStateConflict, ReasonModulePaused, "module paused")
	ErrQuotaExceeded           = newError(KindStateConflict, ReasonQuotaExceeded, "quota exceeded")
	ErrNotOwner                = newError(KindValidation, ReasonNotOwner, "account does not hold the asset")
	ErrNoSuchAsset             = newError(KindValidation, ReasonNoSuchAsset, "asset does not exist")
)

// As extracts the classified error from err, if any.
func As(err error) (*Error, bool) {
	var target *Error
	if stderrors.As(err, &target) && target != nil {
		return target, true
	}
	return nil, false
}

// ReasonOf returns the stable reason code carried by err.
func ReasonOf(err error) (Reason, bool) {
	classified, ok := As(err)
	if !ok {
		return "", false
	}
	return classified.Reason, true
}

// KindOf returns the classification of err.
func KindOf(err error) (Kind, bool) {
	classified, ok := As(err)
	if !ok {
		return 0, false
	}
	return classified.Kind, true
}
