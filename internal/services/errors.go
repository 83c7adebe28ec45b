package services

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a ServiceError so transports can pick a status code.
type ErrorKind int

const (
	KindInvalid ErrorKind = iota
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindUpstream
	KindPersistence
)

// Machine-readable error codes returned to API callers.
const (
	CodeInvalidPayload       = "invalid_payload"
	CodeStoreClosed          = "store_closed"
	CodeInvalidVariant       = "invalid_variant"
	CodeInvalidPrice         = "invalid_price"
	CodeSizeMismatch         = "size_mismatch"
	CodeColorMismatch        = "color_mismatch"
	CodeMinimumTotalNotMet   = "minimum_total_not_met"
	CodeSettingsFetchFailed  = "settings_fetch_failed"
	CodeVariantFetchFailed   = "variant_fetch_failed"
	CodeProductFetchFailed   = "product_fetch_failed"
	CodeSessionCreateFailed  = "session_create_failed"
	CodeInvalidSignature     = "invalid_signature"
	CodeLineItemsFetchFailed = "line_items_fetch_failed"
	CodeOrderInsertFailed    = "order_insert_failed"
	CodeMissingSessionID     = "missing_session_id"
	CodeSessionNotPaid       = "session_not_paid"
	CodeBackfillFailed       = "backfill_failed"
	CodeMissingOrderID       = "missing_order_id"
	CodeOrderLookupFailed    = "order_lookup_failed"
	CodeOrderNotFound        = "order_not_found"
	CodeOrderNotPaid         = "order_not_paid"
	CodeMissingChargeID      = "missing_charge_id"
	CodeRefundFailed         = "refund_failed"
	CodeOrderUpdateFailed    = "order_update_failed"
	CodeInvalidStatus        = "invalid_status"
	CodeDuplicateVariant     = "duplicate_variant"
)

// ServiceError is a failure with a machine-readable code and optional detail.
type ServiceError struct {
	Code   string
	Detail string
	Kind   ErrorKind
	Err    error
}

func (e *ServiceError) Error() string {
	if e.Detail == "" {
		return e.Code
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Detail)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

func newError(kind ErrorKind, code, detail string) *ServiceError {
	return &ServiceError{Code: code, Detail: detail, Kind: kind}
}

func wrapError(kind ErrorKind, code string, err error) *ServiceError {
	return &ServiceError{Code: code, Detail: err.Error(), Kind: kind, Err: err}
}

// AsServiceError extracts a ServiceError from err's chain.
func AsServiceError(err error) (*ServiceError, bool) {
	var se *ServiceError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}

// ErrorCode returns the code of a ServiceError, or "" for other errors.
func ErrorCode(err error) string {
	if se, ok := AsServiceError(err); ok {
		return se.Code
	}
	return ""
}
