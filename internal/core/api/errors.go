package api

import (
	"context"
	"errors"
	"net/http"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/solatis/formkeeper/internal/types"
)

// ErrorCode is the stable, client-facing identifier of a failure.
type ErrorCode string

const (
	CodeFormNotFound       ErrorCode = "FORM_NOT_FOUND"
	CodeStepNotFound       ErrorCode = "STEP_NOT_FOUND"
	CodeFieldNotFound      ErrorCode = "FIELD_NOT_FOUND"
	CodeSubmissionNotFound ErrorCode = "SUBMISSION_NOT_FOUND"
	CodeValidationFailed   ErrorCode = "VALIDATION_FAILED"
	CodeDatabase           ErrorCode = "DATABASE_ERROR"
	CodeInvalidFieldType   ErrorCode = "INVALID_FIELD_TYPE"
	CodeCondition          ErrorCode = "CONDITION_ERROR"
	CodeFileUpload         ErrorCode = "FILE_UPLOAD_ERROR"
	CodeInvalidData        ErrorCode = "INVALID_DATA"
	CodeInvalidDefinition  ErrorCode = "INVALID_DEFINITION"
	CodeFormDeleted        ErrorCode = "FORM_DELETED"
	CodeDuplicateSlug      ErrorCode = "DUPLICATE_SLUG"
	CodePayloadTooLarge    ErrorCode = "PAYLOAD_TOO_LARGE"
	CodeTimeout            ErrorCode = "TIMEOUT"
)

// ErrorInfo describes how an error is reported over HTTP and gRPC.
type ErrorInfo struct {
	Code       ErrorCode
	HTTPStatus int
	GRPCCode   codes.Code
	Message    string
}

type errorMapping struct {
	target error
	code   ErrorCode
	http   int
	grpc   codes.Code
}

// Checked in order; the first match wins.
var errorMappings = []errorMapping{
	{types.ErrFormNotFound, CodeFormNotFound, http.StatusNotFound, codes.NotFound},
	{types.ErrStepNotFound, CodeStepNotFound, http.StatusNotFound, codes.NotFound},
	{types.ErrFieldNotFound, CodeFieldNotFound, http.StatusNotFound, codes.NotFound},
	{types.ErrSubmissionNotFound, CodeSubmissionNotFound, http.StatusNotFound, codes.NotFound},
	{types.ErrFormDeleted, CodeFormDeleted, http.StatusGone, codes.FailedPrecondition},
	{types.ErrDuplicateSlug, CodeDuplicateSlug, http.StatusConflict, codes.AlreadyExists},
	{types.ErrUnknownValueType, CodeInvalidFieldType, http.StatusBadRequest, codes.InvalidArgument},
	{types.ErrInvalidCondition, CodeCondition, http.StatusBadRequest, codes.InvalidArgument},
	{types.ErrUnknownOperator, CodeCondition, http.StatusBadRequest, codes.InvalidArgument},
	{types.ErrConditionTooDeep, CodeCondition, http.StatusBadRequest, codes.InvalidArgument},
	{types.ErrTooManyInValues, CodeCondition, http.StatusBadRequest, codes.InvalidArgument},
	{types.ErrInvalidDefinition, CodeInvalidDefinition, http.StatusBadRequest, codes.InvalidArgument},
	{types.ErrSubmissionTooLarge, CodePayloadTooLarge, http.StatusRequestEntityTooLarge, codes.ResourceExhausted},
	{types.ErrFileUpload, CodeFileUpload, http.StatusBadRequest, codes.InvalidArgument},
	{types.ErrInvalidData, CodeInvalidData, http.StatusBadRequest, codes.InvalidArgument},
	{context.DeadlineExceeded, CodeTimeout, http.StatusGatewayTimeout, codes.DeadlineExceeded},
}

// Classify maps err to its code and transport statuses. Unrecognised
// errors are treated as storage failures and their text is not exposed.
func Classify(err error) ErrorInfo {
	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			return ErrorInfo{Code: m.code, HTTPStatus: m.http, GRPCCode: m.grpc, Message: err.Error()}
		}
	}
	return ErrorInfo{
		Code:       CodeDatabase,
		HTTPStatus: http.StatusInternalServerError,
		GRPCCode:   codes.Unavailable,
		Message:    "internal error",
	}
}

// GRPCError converts err to a gRPC status error.
func GRPCError(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}
	info := Classify(err)
	return status.Error(info.GRPCCode, info.Message)
}
