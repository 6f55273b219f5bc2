package errors

import (
	"errors"
	"fmt"
)

// Domain errors
var (
	ErrCustomerNotFound        = errors.New("customer not found")
	ErrInvalidPeriod           = errors.New("as-of month precedes the customer's join month")
	ErrMissingTariffHistory    = errors.New("customer has no tariff assignment")
	ErrMalformedPaymentData    = errors.New("payment has malformed month data")
	ErrPaymentNotFound         = errors.New("payment not found")
	ErrPaymentAlreadyCancelled = errors.New("payment is already cancelled")
	ErrPaymentAlreadyDeposited = errors.New("payment has been deposited and is locked")
	ErrDepositNotFound         = errors.New("deposit not found")
	ErrDepositAlreadyCancelled = errors.New("deposit is already cancelled")
	ErrDepositEmptyPeriod      = errors.New("no depositable cash payments in period")
	ErrInvalidDepositPeriod    = errors.New("deposit period end precedes period start")
	ErrCustomerInactive        = errors.New("customer is not active")
	ErrInvalidMonthFormat      = errors.New("month must be formatted YYYY-MM")
	ErrInvalidPaymentAmount    = errors.New("invalid payment amount")
)

// BusinessError represents a business logic error
type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

// NewBusinessError creates a new business error
func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Error codes
const (
	ErrCodeCustomerNotFound        = "CUSTOMER_NOT_FOUND"
	ErrCodeInvalidPeriod           = "INVALID_PERIOD"
	ErrCodeMissingTariffHistory    = "MISSING_TARIFF_HISTORY"
	ErrCodeMalformedPaymentData    = "MALFORMED_PAYMENT_DATA"
	ErrCodePaymentNotFound         = "PAYMENT_NOT_FOUND"
	ErrCodePaymentAlreadyCancelled = "PAYMENT_ALREADY_CANCELLED"
	ErrCodePaymentAlreadyDeposited = "PAYMENT_ALREADY_DEPOSITED"
	ErrCodeDepositNotFound         = "DEPOSIT_NOT_FOUND"
	ErrCodeDepositAlreadyCancelled = "DEPOSIT_ALREADY_CANCELLED"
	ErrCodeDepositEmptyPeriod      = "DEPOSIT_EMPTY_PERIOD"
	ErrCodeInvalidDepositPeriod    = "INVALID_DEPOSIT_PERIOD"
	ErrCodeCustomerInactive        = "CUSTOMER_INACTIVE"
	ErrCodeInvalidMonthFormat      = "INVALID_MONTH_FORMAT"
	ErrCodeInvalidPaymentAmount    = "INVALID_PAYMENT_AMOUNT"
	ErrCodeDatabaseError           = "DATABASE_ERROR"
	ErrCodeCacheError              = "CACHE_ERROR"
)

// Wrap common errors with business context
func WrapCustomerNotFound(customerNumber string) *BusinessError {
	return NewBusinessError(
		ErrCodeCustomerNotFound,
		fmt.Sprintf("Customer %s not found", customerNumber),
		ErrCustomerNotFound,
	)
}

func WrapInvalidPeriod(asOf, joinMonth string) *BusinessError {
	return NewBusinessError(
		ErrCodeInvalidPeriod,
		fmt.Sprintf("As-of month %s precedes join month %s", asOf, joinMonth),
		ErrInvalidPeriod,
	)
}

func WrapMissingTariffHistory(customerNumber string) *BusinessError {
	return NewBusinessError(
		ErrCodeMissingTariffHistory,
		fmt.Sprintf("Customer %s has no tariff assignment", customerNumber),
		ErrMissingTariffHistory,
	)
}

func WrapMalformedPaymentData(paymentID string, err error) *BusinessError {
	return NewBusinessError(
		ErrCodeMalformedPaymentData,
		fmt.Sprintf("Payment %s has malformed month data", paymentID),
		fmt.Errorf("%w: %w", ErrMalformedPaymentData, err),
	)
}

func WrapPaymentNotFound(paymentID string) *BusinessError {
	return NewBusinessError(
		ErrCodePaymentNotFound,
		fmt.Sprintf("Payment %s not found", paymentID),
		ErrPaymentNotFound,
	)
}

func WrapPaymentAlreadyCancelled(paymentID string) *BusinessError {
	return NewBusinessError(
		ErrCodePaymentAlreadyCancelled,
		fmt.Sprintf("Payment %s is already cancelled", paymentID),
		ErrPaymentAlreadyCancelled,
	)
}

func WrapPaymentAlreadyDeposited(paymentID string) *BusinessError {
	return NewBusinessError(
		ErrCodePaymentAlreadyDeposited,
		fmt.Sprintf("Payment %s is part of a deposit and cannot be cancelled", paymentID),
		ErrPaymentAlreadyDeposited,
	)
}

func WrapDepositNotFound(depositID string) *BusinessError {
	return NewBusinessError(
		ErrCodeDepositNotFound,
		fmt.Sprintf("Deposit %s not found", depositID),
		ErrDepositNotFound,
	)
}

func WrapDepositAlreadyCancelled(depositID string) *BusinessError {
	return NewBusinessError(
		ErrCodeDepositAlreadyCancelled,
		fmt.Sprintf("Deposit %s is already cancelled", depositID),
		ErrDepositAlreadyCancelled,
	)
}

func WrapDepositEmptyPeriod(start, end string) *BusinessError {
	return NewBusinessError(
		ErrCodeDepositEmptyPeriod,
		fmt.Sprintf("No depositable cash payments between %s and %s", start, end),
		ErrDepositEmptyPeriod,
	)
}

func WrapInvalidMonthFormat(value string) *BusinessError {
	return NewBusinessError(
		ErrCodeInvalidMonthFormat,
		fmt.Sprintf("%q is not a valid YYYY-MM month", value),
		ErrInvalidMonthFormat,
	)
}

func WrapDatabaseError(err error) *BusinessError {
	return NewBusinessError(
		ErrCodeDatabaseError,
		"database operation failed",
		err,
	)
}

func WrapCacheError(err error) *BusinessError {
	return NewBusinessError(
		ErrCodeCacheError,
		"Cache operation failed",
		err,
	)
}
