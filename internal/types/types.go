// Package types provides domain models shared across formkeeper components.
//
// The package has no dependencies on storage or transport: values, value
// types, validation rule sets, identifiers and sentinel errors live here so
// that internal/condition and internal/validation stay pure.
package types

// FormID represents a UUIDv7 form identifier.
type FormID string

// StepID represents a UUIDv7 step identifier.
type StepID string

// FieldID represents a UUIDv7 field identifier.
type FieldID string

// OptionID represents a UUIDv7 field option identifier.
type OptionID string

// SubmissionID represents a UUIDv7 submission identifier.
type SubmissionID string

// Metadata represents request metadata recorded alongside a submission
// (remote address, user agent, request id).
type Metadata map[string]string

// Resource limits enforced at the request boundary.
const (
	// MaxSubmissionFields limits the number of keys accepted in one submission.
	MaxSubmissionFields = 512

	// MaxFieldValueLength caps a single text value (or array element).
	MaxFieldValueLength = 64 * 1024

	// MaxArrayValues caps the number of elements in a multi-value field.
	MaxArrayValues = 256

	// MaxSubmissionSize caps the raw request body of a submission.
	MaxSubmissionSize = 10 * 1024 * 1024

	// MaxMultipartMemory is the in-memory budget for multipart parsing.
	MaxMultipartMemory = 8 * 1024 * 1024

	// MaxConditionDepth bounds nesting of stored condition trees.
	MaxConditionDepth = 32

	// MaxInOperatorValues limits the list size of an in comparison.
	MaxInOperatorValues = 256
)
