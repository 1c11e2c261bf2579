package domain

// User agents presented by rewrite strategies. TikTok serves different
// stream manifests to mobile Safari than to desktop Chrome.
const (
	desktopUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"
	mobileUserAgent  = "Mozilla/5.0 (iPhone; CPU iPhone OS 14_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/14.0 Mobile/15E148 Safari/604.1"

	tiktokReferer = "https://www.tiktok.com/"
)

// youtubeHQFormat requests the highest quality video and audio streams
// separately; the post-processor muxes them when the extraction tool
// leaves them unmerged.
const youtubeHQFormat = "bestvideo[ext=mp4]+bestaudio[ext=m4a]/bestvideo+bestaudio/best"

// chains holds the declared escalation order per platform. The chain runner
// is a single algorithm over this data; platform differences live here, not
// in code.
var chains = map[Platform][]Strategy{
	PlatformYouTube: {
		{
			ID:     "yt_hq_merge",
			Kind:   KindUnauthenticated,
			Format: youtubeHQFormat,
		},
		{
			ID:           "yt_best_single",
			Kind:         KindGenericFallback,
			Format:       "best",
			RecoversFrom: []FailureKind{FailureFormatUnavailable},
		},
		{
			ID:            "yt_alt_backend",
			Kind:          KindGenericFallback,
			UseAltBackend: true,
			RecoversFrom:  []FailureKind{FailureNetwork, FailureUnknown},
		},
	},
	PlatformFacebook: {
		{
			ID:        "fb_public",
			Kind:      KindUnauthenticated,
			GeoBypass: true,
		},
		{
			ID:           "fb_browser_cookies",
			Kind:         KindCookieAuth,
			CookieMode:   CookiesBrowser,
			GeoBypass:    true,
			RecoversFrom: []FailureKind{FailureAuthRequired},
		},
		{
			ID:                 "fb_mobile",
			Kind:               KindMobileRewrite,
			MobileHost:         "m.facebook.com",
			Format:             "best",
			GeoBypass:          true,
			NoCheckCertificate: true,
			RecoversFrom:       []FailureKind{FailureGeoBlocked, FailureUnknown},
		},
	},
	PlatformTikTok: {
		{
			ID:        "tt_no_watermark",
			Kind:      KindNoWatermark,
			UserAgent: desktopUserAgent,
			Referer:   tiktokReferer,
		},
		{
			ID:           "tt_api_crop",
			Kind:         KindUnauthenticated,
			Format:       "best",
			NeedsCrop:    true,
			RecoversFrom: []FailureKind{FailureFormatUnavailable, FailureUnknown},
		},
		{
			ID:                 "tt_mobile",
			Kind:               KindMobileRewrite,
			MobileHost:         "m.tiktok.com",
			Format:             "best",
			UserAgent:          mobileUserAgent,
			Referer:            tiktokReferer,
			NoCheckCertificate: true,
			RecoversFrom:       []FailureKind{FailureNetwork, FailureUnknown},
		},
		{
			// Last resort; the watermark may remain.
			ID:                 "tt_generic",
			Kind:               KindGenericFallback,
			Format:             "b",
			NoCheckCertificate: true,
			NeedsCrop:          true,
			RecoversFrom:       []FailureKind{FailureFormatUnavailable, FailureUnknown},
		},
	},
	// Twitter and Instagram rarely gate public content by cookie state; a
	// chain of length one is the expected instantiation, not a special case.
	PlatformTwitter: {
		{ID: "tw_best", Kind: KindUnauthenticated},
	},
	PlatformInstagram: {
		{ID: "ig_best", Kind: KindUnauthenticated},
	},
}

// ChainFor returns the declared strategy chain for a platform. The returned
// slice is a copy; callers may not mutate the declared order.
func ChainFor(platform Platform) []Strategy {
	declared := chains[platform]
	out := make([]Strategy, len(declared))
	copy(out, declared)
	return out
}
