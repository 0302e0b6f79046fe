package internaldefs

import (
	"github.com/sochq/gatekeep"
)

// CounterDef pairs a core metric ID with its exported name and help text.
type CounterDef struct {
	ID   gatekeep.MetricID
	Name string
	Help string
}

// HistogramDef pairs a core histogram ID with its exported name and help text.
type HistogramDef struct {
	ID   gatekeep.MetricID
	Name string
	Help string
}

// CounterDefs lists every exported counter in a stable order.
var CounterDefs = []CounterDef{
	{ID: gatekeep.MetricSignupSuccess, Name: "gatekeep_signup_success_total", Help: "Accepted signups awaiting review."},
	{ID: gatekeep.MetricSignupInvalid, Name: "gatekeep_signup_invalid_total", Help: "Signups rejected by validation."},
	{ID: gatekeep.MetricSignupDuplicate, Name: "gatekeep_signup_duplicate_total", Help: "Signups rejected as duplicate email or phone."},
	{ID: gatekeep.MetricLoginSuccess, Name: "gatekeep_login_success_total", Help: "Successful logins."},
	{ID: gatekeep.MetricLoginFailure, Name: "gatekeep_login_failure_total", Help: "Logins failed on credentials."},
	{ID: gatekeep.MetricLoginPending, Name: "gatekeep_login_pending_total", Help: "Logins blocked on pending approval."},
	{ID: gatekeep.MetricLoginRejected, Name: "gatekeep_login_rejected_total", Help: "Logins blocked on a rejected account."},
	{ID: gatekeep.MetricLoginExpired, Name: "gatekeep_login_expired_total", Help: "Logins blocked on an expired account."},
	{ID: gatekeep.MetricLoginThrottled, Name: "gatekeep_login_throttled_total", Help: "Logins denied by the attempt throttle."},
	{ID: gatekeep.MetricReviewApproved, Name: "gatekeep_review_approved_total", Help: "Admin approvals."},
	{ID: gatekeep.MetricReviewRejected, Name: "gatekeep_review_rejected_total", Help: "Admin rejections."},
	{ID: gatekeep.MetricRenewal, Name: "gatekeep_renewal_total", Help: "Account expiry renewals."},
	{ID: gatekeep.MetricSessionIssued, Name: "gatekeep_session_issued_total", Help: "Session tokens issued."},
	{ID: gatekeep.MetricSessionStale, Name: "gatekeep_session_stale_total", Help: "Session tokens rejected as stale."},
	{ID: gatekeep.MetricLogout, Name: "gatekeep_logout_total", Help: "Logout operations."},
	{ID: gatekeep.MetricNotifyFailure, Name: "gatekeep_notify_failure_total", Help: "Failed approver notifications."},
}

// HistogramDefs lists every exported histogram in a stable order.
var HistogramDefs = []HistogramDef{
	{ID: gatekeep.MetricLoginLatency, Name: "gatekeep_login_latency_seconds", Help: "Login latency histogram."},
}

// HistogramBounds holds the upper bucket bounds, in seconds, as Prometheus
// "le" label values.
var HistogramBounds = []string{
	"0.005",
	"0.01",
	"0.025",
	"0.05",
	"0.1",
	"0.25",
	"0.5",
	"+Inf",
}

// HistogramBoundSuffix holds the same bounds as instrument-name-safe suffixes.
var HistogramBoundSuffix = []string{
	"0_005",
	"0_01",
	"0_025",
	"0_05",
	"0_1",
	"0_25",
	"0_5",
	"inf",
}

// NormalizeBuckets copies raw into a fixed-size bucket array, truncating or
// zero-padding as needed.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets converts per-bucket counts to cumulative counts, the
// form Prometheus histograms expect.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
