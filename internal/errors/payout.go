package errors

var (
	ErrPayoutNotFound = &DomainError{
		Code:    "PAYOUT_NOT_FOUND",
		Message: "payout request not found",
	}
	ErrInvalidStateTransition = &DomainError{
		Code:    "INVALID_STATE_TRANSITION",
		Message: "payout request is not in a state that allows this transition",
	}
	ErrPayoutBelowMinimum = &DomainError{
		Code:    "PAYOUT_BELOW_MINIMUM",
		Message: "requested amount is below the minimum payout",
	}
)
