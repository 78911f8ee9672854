// api/errors/credential_errors.go
package errors

import "errors"

var (
	ErrCredentialNotFound    = errors.New("credential not found")
	ErrInvalidCredentialData = errors.New("invalid credential data")

	ErrTemplateNotFound     = errors.New("policy template not found")
	ErrTemplateIncompatible = errors.New("template does not apply to this credential type")
)
