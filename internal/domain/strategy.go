package domain

import "strings"

// FailureKind classifies why a single extraction attempt failed
type FailureKind string

const (
	FailureNetwork           FailureKind = "network_error"
	FailureAuthRequired      FailureKind = "auth_required"
	FailureGeoBlocked        FailureKind = "geo_blocked"
	FailureFormatUnavailable FailureKind = "format_unavailable"
	FailureNotFound          FailureKind = "not_found"
	FailureCancelled         FailureKind = "cancelled"
	FailurePostProcess       FailureKind = "post_process"
	FailureUnknown           FailureKind = "unknown"
)

// Terminal reports whether the failure halts the chain. Content that does
// not exist cannot be recovered by auth or geo escalation, and cancellation
// must stop further attempts immediately.
func (k FailureKind) Terminal() bool {
	return k == FailureNotFound || k == FailureCancelled
}

// StrategyKind names the escalation variant a strategy represents
type StrategyKind string

const (
	KindUnauthenticated StrategyKind = "unauthenticated"
	KindCookieAuth      StrategyKind = "cookie_auth"
	KindMobileRewrite   StrategyKind = "mobile_rewrite"
	KindNoWatermark     StrategyKind = "no_watermark"
	KindGenericFallback StrategyKind = "generic_fallback"
)

// CookieMode selects how the extraction tool sources session state
type CookieMode string

const (
	CookiesNone    CookieMode = "none"
	CookiesFile    CookieMode = "file"
	CookiesBrowser CookieMode = "browser"
)

// Strategy is one declarative attempt configuration. Strategies are static
// data per platform; the chain runner is the only behavior around them.
type Strategy struct {
	ID   string       `json:"id"`
	Kind StrategyKind `json:"kind"`

	// Format overrides the request's quality-derived selector when set.
	Format string `json:"format,omitempty"`

	CookieMode CookieMode `json:"cookie_mode,omitempty"`

	// MobileHost rewrites the URL host before invoking the extraction tool.
	MobileHost string `json:"mobile_host,omitempty"`

	GeoBypass          bool   `json:"geo_bypass,omitempty"`
	UserAgent          string `json:"user_agent,omitempty"`
	Referer            string `json:"referer,omitempty"`
	NoCheckCertificate bool   `json:"no_check_certificate,omitempty"`

	// UseAltBackend routes the attempt through the secondary extraction
	// binary when one is configured.
	UseAltBackend bool `json:"use_alt_backend,omitempty"`

	// NeedsCrop marks strategies whose output keeps the platform watermark,
	// to be excised by the post-processor.
	NeedsCrop bool `json:"needs_crop,omitempty"`

	// RecoversFrom lists the failure kinds this strategy is expected to
	// recover from when an earlier attempt reported them.
	RecoversFrom []FailureKind `json:"recovers_from,omitempty"`
}

// Fingerprint identifies the effective invocation parameters of a strategy.
// The chain runner never re-runs a fingerprint it has already attempted.
func (s Strategy) Fingerprint() string {
	parts := []string{
		s.Format,
		string(s.CookieMode),
		s.MobileHost,
		s.UserAgent,
	}
	if s.GeoBypass {
		parts = append(parts, "geo")
	}
	if s.NoCheckCertificate {
		parts = append(parts, "nocert")
	}
	if s.UseAltBackend {
		parts = append(parts, "alt")
	}
	return strings.Join(parts, "|")
}

// AttemptResult records the outcome of running one strategy
type AttemptResult struct {
	StrategyID  string      `json:"strategy_id"`
	Success     bool        `json:"success"`
	Files       []string    `json:"files,omitempty"`
	FailureKind FailureKind `json:"failure_kind,omitempty"`
	Diagnostic  string      `json:"diagnostic,omitempty"`
}

// DownloadOutcome is the terminal value of one download request: the final
// file (or absence thereof), the metadata used for naming, the winning
// strategy and the full ordered attempt trail.
type DownloadOutcome struct {
	URL             string          `json:"url"`
	Platform        Platform        `json:"platform"`
	FinalPath       string          `json:"final_path,omitempty"`
	Metadata        Metadata        `json:"metadata"`
	WinningStrategy string          `json:"winning_strategy,omitempty"`
	Attempts        []AttemptResult `json:"attempts"`

	// PostProcessNote records a degraded post-processing step (failed mux or
	// crop) that fell back to the raw download.
	PostProcessNote string `json:"post_process_note,omitempty"`

	// Working-location state consumed by the post-processor; not part of
	// the reported outcome.
	RawFiles []string `json:"-"`
	WorkDir  string   `json:"-"`
}

// Succeeded reports whether a final file was produced
func (o *DownloadOutcome) Succeeded() bool {
	return o.FinalPath != ""
}

// LastFailure returns the failure kind of the last recorded attempt
func (o *DownloadOutcome) LastFailure() FailureKind {
	for i := len(o.Attempts) - 1; i >= 0; i-- {
		if !o.Attempts[i].Success {
			return o.Attempts[i].FailureKind
		}
	}
	return ""
}
