// Package passwordless implements an email one-time-code authentication
// protocol plus the identity anonymization pipeline that backs it.
//
// Challenge protocol:
//   - A host event dispatcher drives a multi-round exchange. Each invocation
//     hands the full round history to Decider.Decide, which answers with a
//     Decision: open a new challenge, issue tokens, or fail permanently once
//     the retry budget is exhausted. The decider holds no state of its own,
//     so concurrent sessions for different users need no coordination.
//   - Opening a round generates a fresh 6-digit code, binds it as a private
//     challenge parameter, and emails it to the user. Delivery failures are
//     logged and tolerated; the round stays valid so the login flow never
//     blocks on the mail channel.
//
// Identity anonymization:
//   - Sign-ups arriving from the configured external provider are mapped to a
//     stable pseudonymous account handle (a salted hash of the provider
//     subject) before any record exists. The raw subject is never persisted.
//   - Before token issuance, ClaimsRedactor strips every personally
//     identifying claim and injects a random session identifier, so issued
//     tokens carry only the (possibly synthetic) email.
//
// Activity sinks:
//   - ActivitySink receives best-effort audit events for round lifecycle,
//     anomalous histories, anonymized sign-ups, and group grants. Sink errors
//     are logged, never propagated.
package passwordless
