// Package workflow holds the per-session state of the schema and attestation
// page: the field builder, the value form for a fetched schema, and the
// bookkeeping for the three outbound service calls.
//
// Every call is tagged with a per-action sequence number. Only the response
// to the most recently issued call of an action may update state; earlier
// responses are discarded when they settle. Each action reports busy while any
// of its calls is in flight. With WithDoubleSubmitGuard a second call for a
// busy action is refused with ErrBusy instead of being issued.
//
// Service failures never leak details to the page: each action maps any
// failure to one static message.
package workflow
