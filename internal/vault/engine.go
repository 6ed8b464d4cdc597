package vault

import "time"

// Reason classifies why an object is unavailable. Reasons are internal
// bookkeeping only; callers see a single uniform unavailable outcome.
type Reason string

const (
	ReasonNone    Reason = ""        // available
	ReasonMissing Reason = "missing" // no record could be loaded
	ReasonExpired Reason = "expired" // valid_until has passed
	ReasonOver    Reason = "over"    // countdown reached zero
	ReasonGone    Reason = "gone"    // record exists but payload bytes are absent
	ReasonDestroy Reason = "destroy" // self-destruct triggered by a wrong password
)

// Verdict is the outcome class of an access evaluation.
type Verdict int

const (
	// VerdictServe means the payload may be returned; the caller must then
	// record the access.
	VerdictServe Verdict = iota
	// VerdictChallenge means the object is guarded and no valid credential
	// was presented; prompt for a password without consuming any budget.
	VerdictChallenge
	// VerdictDeny means the object is unavailable; the caller must destroy
	// it under Decision.Reason unless nothing remains to destroy.
	VerdictDeny
)

// Decision is the engine's answer for one requested access.
type Decision struct {
	Verdict Verdict
	Reason  Reason // set only when Verdict == VerdictDeny
}

// AccessRequest carries the credential state of one inbound access.
// Submitted distinguishes an explicit credential submission from a plain
// read: only a submission can ever trigger self-destruct, so page reloads
// with a wrong or absent password never consume anything.
type AccessRequest struct {
	Password  string
	Submitted bool
}

// Availability computes why the object cannot be served, or ReasonNone.
// It is a pure function of the record snapshot, payload existence and the
// clock; it is re-evaluated on every access and never cached.
//
// Precedence is fixed: missing, expired, over, gone. A record already
// stamped as removed reports its recorded removal reason so that an
// interrupted destruction converges under the sweep.
func Availability(o *Object, payloadExists bool, now time.Time) Reason {
	switch {
	case o == nil:
		return ReasonMissing
	case o.Removed() && o.RemovedBecause != ReasonNone:
		return o.RemovedBecause
	case o.Expired(now):
		return ReasonExpired
	case o.Exhausted():
		return ReasonOver
	case !payloadExists:
		return ReasonGone
	default:
		return ReasonNone
	}
}

// Evaluate decides how one requested access must be handled. It mutates
// nothing: recording a successful access and destroying an expired object
// are separate steps applied by the caller after acting on the decision.
func Evaluate(o *Object, payloadExists bool, req AccessRequest, now time.Time) Decision {
	if reason := Availability(o, payloadExists, now); reason != ReasonNone {
		return Decision{Verdict: VerdictDeny, Reason: reason}
	}

	if !o.HasPassword() || o.PasswordMatches(req.Password) {
		return Decision{Verdict: VerdictServe}
	}

	// Wrong or absent credential on a guarded object.
	if req.Submitted && o.SelfDestruct {
		return Decision{Verdict: VerdictDeny, Reason: ReasonDestroy}
	}
	return Decision{Verdict: VerdictChallenge}
}
