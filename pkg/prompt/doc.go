// Package prompt drives the schema builder and attestation workflow from an
// interactive terminal. The Driver interface keeps flows testable without a
// TTY; NewSurveyDriver provides the survey-backed implementation.
package prompt
