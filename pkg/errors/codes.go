package errors

// ErrorCode is the typed identifier for a failure category.  Codes are
// grouped by prefix: COMMON_* for cross-cutting conditions, TPL_* for the
// template store, CLS_* for the classification pipeline, and CONTRACT_* for
// contract lifecycle management.
type ErrorCode string

// ─────────────────────────────────────────────────────────────────────────────
// Common codes
// ─────────────────────────────────────────────────────────────────────────────

const (
	ErrCodeInternal           ErrorCode = "COMMON_001"
	ErrCodeBadRequest         ErrorCode = "COMMON_002"
	ErrCodeNotFound           ErrorCode = "COMMON_003"
	ErrCodeConflict           ErrorCode = "COMMON_004"
	ErrCodeTimeout            ErrorCode = "COMMON_005"
	ErrCodeValidation         ErrorCode = "COMMON_006"
	ErrCodeSerialization      ErrorCode = "COMMON_007"
	ErrCodeDatabaseError      ErrorCode = "COMMON_008"
	ErrCodeCacheError         ErrorCode = "COMMON_009"
	ErrCodeExternalService    ErrorCode = "COMMON_010"
	ErrCodeServiceUnavailable ErrorCode = "COMMON_011"
	ErrCodeNotImplemented     ErrorCode = "COMMON_012"
)

// ─────────────────────────────────────────────────────────────────────────────
// Template store codes
// ─────────────────────────────────────────────────────────────────────────────

const (
	// ErrCodeTemplateNotFound marks a missing (jurisdiction, attribute) key in
	// the template catalog.  This is a configuration fault: callers must fail
	// the containing run loudly rather than classify against nothing.
	ErrCodeTemplateNotFound ErrorCode = "TPL_001"

	// ErrCodeJurisdictionUnsupported marks a jurisdiction code outside the
	// configured template sets.
	ErrCodeJurisdictionUnsupported ErrorCode = "TPL_002"

	// ErrCodeAttributeUnknown marks an attribute name that is not one of the
	// five tracked provisions.
	ErrCodeAttributeUnknown ErrorCode = "TPL_003"
)

// ─────────────────────────────────────────────────────────────────────────────
// Classification codes
// ─────────────────────────────────────────────────────────────────────────────

const (
	// ErrCodeCascadeDefect marks the structurally-impossible case of no cascade
	// rule firing.  It is a programming defect, never a business outcome.
	ErrCodeCascadeDefect ErrorCode = "CLS_001"

	// ErrCodeEncoderUnavailable marks a failed embedding-encoder call.
	ErrCodeEncoderUnavailable ErrorCode = "CLS_002"

	// ErrCodeEntailmentUnavailable marks a failed entailment-scorer call.
	ErrCodeEntailmentUnavailable ErrorCode = "CLS_003"

	// ErrCodeThresholdInvalid marks cascade threshold configuration that
	// violates the band constraints (e.g. ambiguous band above the Standard
	// semantic threshold).
	ErrCodeThresholdInvalid ErrorCode = "CLS_004"
)

// ─────────────────────────────────────────────────────────────────────────────
// Contract lifecycle codes
// ─────────────────────────────────────────────────────────────────────────────

const (
	ErrCodeContractNotFound     ErrorCode = "CONTRACT_001"
	ErrCodeContractInvalidState ErrorCode = "CONTRACT_002"
	ErrCodeContractEmpty        ErrorCode = "CONTRACT_003"
	ErrCodeDocumentUnavailable  ErrorCode = "CONTRACT_004"
)

// Aliases used pervasively at call sites.
const (
	CodeOK      = ErrorCode("OK")
	CodeUnknown = ErrorCode("UNKNOWN")
)

// String returns the code's literal value.
func (c ErrorCode) String() string { return string(c) }

// httpStatusByCode maps error codes to the HTTP status the interfaces layer
// should respond with.  Codes absent from the map default to 500.
var httpStatusByCode = map[ErrorCode]int{
	ErrCodeBadRequest:              400,
	ErrCodeValidation:              400,
	ErrCodeNotFound:                404,
	ErrCodeContractNotFound:        404,
	ErrCodeConflict:                409,
	ErrCodeContractInvalidState:    409,
	ErrCodeTimeout:                 504,
	ErrCodeServiceUnavailable:      503,
	ErrCodeEncoderUnavailable:      503,
	ErrCodeEntailmentUnavailable:   503,
	ErrCodeTemplateNotFound:        500,
	ErrCodeJurisdictionUnsupported: 400,
	ErrCodeAttributeUnknown:        400,
}

// HTTPStatus returns the HTTP status code associated with c.
func (c ErrorCode) HTTPStatus() int {
	if s, ok := httpStatusByCode[c]; ok {
		return s
	}
	return 500
}
