package carbone

import (
	"bytes"
	"encoding/json"
	"errors"
)

// Envelope is the JSON wrapper the Service uses for every non-binary response:
//
//	{"success":true,"data":{"templateId":"..."}}
//	{"success":false,"error":"...","code":"..."}
type Envelope struct {
	Success bool          `json:"success"`
	Data    *EnvelopeData `json:"data,omitempty"`
	Error   string        `json:"error,omitempty"`
	Code    string        `json:"code,omitempty"`
}

// EnvelopeData holds the identifiers returned by upload and render calls.
type EnvelopeData struct {
	TemplateID            string `json:"templateId,omitempty"`
	RenderID              string `json:"renderId,omitempty"`
	TemplateFileExtension string `json:"templateFileExtension,omitempty"`
}

// DecodeEnvelope parses raw as an Envelope.
func DecodeEnvelope(raw []byte) (*Envelope, error) {
	if len(bytes.TrimSpace(raw)) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return nil, &DecodeError{Err: errors.New("empty response body")}
	}
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, &DecodeError{Err: err}
	}
	return &env, nil
}

// TemplateID returns data.templateId. A missing field is an error even when
// the envelope reports success.
func (e *Envelope) TemplateID() (TemplateID, error) {
	if e.Data == nil {
		return TemplateID{}, &EmptyValueError{Kind: kindTemplateID}
	}
	return NewTemplateID(e.Data.TemplateID)
}

// RenderID returns data.renderId.
func (e *Envelope) RenderID() (RenderID, error) {
	if e.Data == nil {
		return RenderID{}, &EmptyValueError{Kind: kindRenderID}
	}
	return NewRenderID(e.Data.RenderID)
}

// ErrorMessage returns the error field, or "" when there is none.
func (e *Envelope) ErrorMessage() string {
	return e.Error
}

// Err converts a failure envelope into a *RejectedError.
func (e *Envelope) Err(op string, status int) error {
	if e.Success {
		return nil
	}
	return &RejectedError{
		Op:         op,
		StatusCode: status,
		Message:    e.Error,
		Code:       e.Code,
	}
}
