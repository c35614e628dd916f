package worker

import "errors"

var (
	// ErrAdminCredentialMissing drains the run: without the administrative
	// credential no admin-scoped job can ever succeed.
	ErrAdminCredentialMissing = errors.New("worker: administrative credential missing")
)
