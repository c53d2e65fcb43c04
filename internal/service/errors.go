package service

import "errors"

// ErrSourceUnavailable marks a failed fetch of a remote source document:
// transport error or non-success status. Handlers surface it as 502.
var ErrSourceUnavailable = errors.New("source document unavailable")

// MalformedDocumentError marks a payload that fetched fine but could not
// be parsed at the document level. Row-level problems never raise it;
// they degrade field by field instead.
type MalformedDocumentError struct {
	Details string
}

func (e *MalformedDocumentError) Error() string {
	return "malformed source document: " + e.Details
}
