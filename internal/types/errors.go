package types

import "errors"

// Sentinel errors for formkeeper operations.
var (
	// ErrFormNotFound indicates no form exists for the given id or slug.
	ErrFormNotFound = errors.New("form not found")

	// ErrStepNotFound indicates the form has no step with the given id.
	ErrStepNotFound = errors.New("step not found")

	// ErrFieldNotFound indicates the form has no field with the given name.
	ErrFieldNotFound = errors.New("field not found")

	// ErrSubmissionNotFound indicates no submission exists for the given id.
	ErrSubmissionNotFound = errors.New("submission not found")

	// ErrFormDeleted indicates the form exists but was soft-deleted.
	ErrFormDeleted = errors.New("form has been deleted")

	// ErrDuplicateSlug indicates another form already uses the slug.
	ErrDuplicateSlug = errors.New("form slug already exists")

	// ErrInvalidCondition indicates a malformed condition tree.
	ErrInvalidCondition = errors.New("invalid condition")

	// ErrUnknownOperator indicates an operator string outside the known set.
	ErrUnknownOperator = errors.New("unknown condition operator")

	// ErrConditionTooDeep indicates a condition tree exceeds MaxConditionDepth.
	ErrConditionTooDeep = errors.New("condition exceeds maximum depth")

	// ErrTooManyInValues indicates an in comparison exceeds MaxInOperatorValues.
	ErrTooManyInValues = errors.New("in operator has too many values")

	// ErrUnknownValueType indicates a field type string outside the known set.
	ErrUnknownValueType = errors.New("unknown field type")

	// ErrInvalidDefinition indicates a form definition failed validation.
	ErrInvalidDefinition = errors.New("invalid form definition")

	// ErrInvalidData indicates submitted data could not be decoded.
	ErrInvalidData = errors.New("invalid submission data")

	// ErrSubmissionTooLarge indicates a submission exceeds a resource limit.
	ErrSubmissionTooLarge = errors.New("submission exceeds maximum size")

	// ErrFileUpload indicates a multipart file part could not be read.
	ErrFileUpload = errors.New("file upload failed")
)
