package bedrock

import (
	"errors"
	"net/http"
	"testing"

	"github.com/aws/smithy-go"
	smithyhttp "github.com/aws/smithy-go/transport/http"
)

func TestToBedrockError_PlainError(t *testing.T) {
	be := toBedrockError(errors.New("connection reset"))

	if be.Message != "connection reset" {
		t.Errorf("Message = %q, want %q", be.Message, "connection reset")
	}
	if be.StatusCode != 0 {
		t.Errorf("StatusCode = %d, want 0 for a non-HTTP error", be.StatusCode)
	}
}

func TestToBedrockError_APIErrorWithStatusCode(t *testing.T) {
	apiErr := &smithy.GenericAPIError{
		Code:    "ThrottlingException",
		Message: "Rate exceeded",
		Fault:   smithy.FaultServer,
	}
	respErr := &smithyhttp.ResponseError{
		Response: &smithyhttp.Response{
			Response: &http.Response{StatusCode: http.StatusTooManyRequests},
		},
		Err: apiErr,
	}

	be := toBedrockError(respErr)

	if be.StatusCode != http.StatusTooManyRequests {
		t.Errorf("StatusCode = %d, want %d", be.StatusCode, http.StatusTooManyRequests)
	}
	if be.Code != "ThrottlingException" {
		t.Errorf("Code = %q, want ThrottlingException", be.Code)
	}
	if be.Message != "Rate exceeded" {
		t.Errorf("Message = %q, want %q", be.Message, "Rate exceeded")
	}
	if !be.Retryable {
		t.Error("a server-fault API error should be marked retryable")
	}
}

func TestToBedrockError_ClientFaultNotRetryable(t *testing.T) {
	apiErr := &smithy.GenericAPIError{
		Code:    "ValidationException",
		Message: "bad input",
		Fault:   smithy.FaultClient,
	}

	be := toBedrockError(apiErr)

	if be.Retryable {
		t.Error("a client-fault API error should not be marked retryable")
	}
}
