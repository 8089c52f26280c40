package model

import (
	"encoding/json"
	"net/http"

	"github.com/m-mizutani/goerr/v2"
)

// ResponseShape identifies which historical success indicator a generation
// response uses.
type ResponseShape string

const (
	ResponseShapeUnknown ResponseShape = "unknown"
	// ResponseShapeFlag signals success with a boolean "success" field
	ResponseShapeFlag ResponseShape = "flag"
	// ResponseShapeCode signals success with a numeric "code" field
	ResponseShapeCode ResponseShape = "code"
)

// GenerationResponse is the closed union of the known generation response
// shapes. Absent fields stay nil so that shapes can be told apart.
type GenerationResponse struct {
	Success  *bool   `json:"success,omitempty"`
	Code     *int    `json:"code,omitempty"`
	Data     *string `json:"data,omitempty"`
	Response *string `json:"response,omitempty"`
	Error    *string `json:"error,omitempty"`
}

// Shape reports the success indicator in use. A boolean flag takes
// precedence when both are present.
func (r *GenerationResponse) Shape() ResponseShape {
	switch {
	case r.Success != nil:
		return ResponseShapeFlag
	case r.Code != nil:
		return ResponseShapeCode
	default:
		return ResponseShapeUnknown
	}
}

// Succeeded reports whether either success indicator says so
func (r *GenerationResponse) Succeeded() bool {
	return (r.Success != nil && *r.Success) || (r.Code != nil && *r.Code == http.StatusOK)
}

// Text normalizes the response to the generated text. "data" is checked
// before "response".
func (r *GenerationResponse) Text() (string, error) {
	if r.Shape() == ResponseShapeUnknown {
		return "", goerr.Wrap(ErrMalformedResponse, "response carries neither success nor code")
	}
	if !r.Succeeded() {
		return "", backendFailure(r.Error)
	}

	switch {
	case r.Data != nil:
		return *r.Data, nil
	case r.Response != nil:
		return *r.Response, nil
	default:
		return "", goerr.Wrap(ErrMalformedResponse, "successful response carries neither data nor response")
	}
}

// ParseGenerationResponse decodes and normalizes a generation response body
func ParseGenerationResponse(body []byte) (string, error) {
	var resp GenerationResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", goerr.Wrap(ErrMalformedResponse, "failed to decode generation response", goerr.V("cause", err.Error()))
	}
	return resp.Text()
}

// SummaryRequest is the summarization backend request
type SummaryRequest struct {
	FileNames    []string `json:"file_names"`
	FileContents []string `json:"file_contents,omitempty"`
	Identity     string   `json:"identity"`
}

// SummaryResponse is the summarization backend response
type SummaryResponse struct {
	Success *bool   `json:"success,omitempty"`
	Summary *string `json:"summary,omitempty"`
	Error   *string `json:"error,omitempty"`
}

// Result returns the summary or the normalized failure
func (r *SummaryResponse) Result() (string, error) {
	if err := checkSuccess(r.Success, r.Error); err != nil {
		return "", err
	}
	if r.Summary == nil {
		return "", nil
	}
	return *r.Summary, nil
}

// VerdictRequest is the verdict backend request
type VerdictRequest struct {
	CaseDescription string     `json:"case_description"`
	Messages        Transcript `json:"messages"`
	Identity        string     `json:"identity"`
}

// VerdictResponse is the verdict backend response
type VerdictResponse struct {
	Success *bool   `json:"success,omitempty"`
	Verdict *string `json:"verdict,omitempty"`
	Review  *string `json:"review,omitempty"`
	Error   *string `json:"error,omitempty"`
}

// Verdict is the judgment document and an optional review of the user's
// performance.
type Verdict struct {
	Verdict string `json:"verdict"`
	Review  string `json:"review"`
}

// Result returns the verdict or the normalized failure
func (r *VerdictResponse) Result() (*Verdict, error) {
	if err := checkSuccess(r.Success, r.Error); err != nil {
		return nil, err
	}
	v := &Verdict{}
	if r.Verdict != nil {
		v.Verdict = *r.Verdict
	}
	if r.Review != nil {
		v.Review = *r.Review
	}
	return v, nil
}

// ModelStatus is the backend's model loading status. Its fields are owned by
// the backend and passed through untouched.
type ModelStatus = json.RawMessage

func checkSuccess(success *bool, errText *string) error {
	if success == nil {
		return goerr.Wrap(ErrMalformedResponse, "response carries no success flag")
	}
	if !*success {
		return backendFailure(errText)
	}
	return nil
}

func backendFailure(errText *string) error {
	if errText == nil || *errText == "" {
		return goerr.Wrap(ErrBackendError, "backend reported failure")
	}
	return goerr.Wrap(ErrBackendError, *errText, goerr.V(UpstreamErrorKey, *errText))
}
