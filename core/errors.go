package core

import (
	"errors"
	"fmt"
)

// Code classifies a processing failure. The set mirrors the full error
// taxonomy of the bounty protocol; every failure surfaced by Process
// carries exactly one of these.
type Code uint8

const (
	// CodeMalformedInstruction means the instruction payload could not be
	// decoded, or a required account handle is missing from the list.
	CodeMalformedInstruction Code = iota + 1

	// CodeMissingSignature means the account required to sign did not.
	CodeMissingSignature

	// CodeNotAuthorized means a claimed role does not match the supplied
	// record, e.g. the caller is not the content author or not the
	// identity on the depositor record.
	CodeNotAuthorized

	// CodeNotAdmin means the caller is not the DAO admin.
	CodeNotAdmin

	// CodeInvalidParameter covers out-of-range percentages and account
	// handles that do not match the expected identity at a position.
	CodeInvalidParameter

	// CodeTimeLimitNotReached means a claim was attempted before the
	// countdown expired.
	CodeTimeLimitNotReached

	// CodeInvalidContent means the content is not the last submission.
	CodeInvalidContent

	// CodeInvalidProposal covers proposal id mismatches, votes cast after
	// close, and voting periods below the minimum.
	CodeInvalidProposal

	// CodeInvalidDistribution means weights do not sum to 100 or the
	// creator and weight lists differ in length.
	CodeInvalidDistribution

	// CodeInvalidAccountData means a record slot holds data that does not
	// decode, or is occupied by a record belonging to another identity.
	CodeInvalidAccountData

	// CodeExternalFailure means the ledger collaborator refused an
	// operation (transfer, account creation, storage access). The whole
	// invocation must be rolled back by the host.
	CodeExternalFailure
)

func (c Code) String() string {
	switch c {
	case CodeMalformedInstruction:
		return "malformed instruction"
	case CodeMissingSignature:
		return "missing signature"
	case CodeNotAuthorized:
		return "not authorized"
	case CodeNotAdmin:
		return "not admin"
	case CodeInvalidParameter:
		return "invalid parameter"
	case CodeTimeLimitNotReached:
		return "time limit not reached"
	case CodeInvalidContent:
		return "invalid content"
	case CodeInvalidProposal:
		return "invalid proposal"
	case CodeInvalidDistribution:
		return "invalid distribution"
	case CodeInvalidAccountData:
		return "invalid account data"
	case CodeExternalFailure:
		return "external operation failed"
	default:
		return "unknown"
	}
}

// Error is the typed failure returned by Process.
type Error struct {
	Code  Code
	msg   string
	cause error
}

func (e *Error) Error() string {
	if e.msg == "" {
		return e.Code.String()
	}
	return fmt.Sprintf("%s: %s", e.Code, e.msg)
}

func (e *Error) Unwrap() error {
	return e.cause
}

func newError(code Code, format string, args ...any) *Error {
	return &Error{Code: code, msg: fmt.Sprintf(format, args...)}
}

// wrapExternal tags a collaborator failure so it is distinguishable from
// business-rule validation.
func wrapExternal(err error, op string) *Error {
	return &Error{Code: CodeExternalFailure, msg: op, cause: err}
}

// CodeOf extracts the failure code from any error returned by Process,
// zero if err is not a processing error.
func CodeOf(err error) Code {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Code
	}
	return 0
}
