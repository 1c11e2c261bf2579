package domain

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

// Platform represents the source platform for downloads
type Platform string

const (
	PlatformYouTube   Platform = "youtube"
	PlatformTwitter   Platform = "twitter"
	PlatformInstagram Platform = "instagram"
	PlatformFacebook  Platform = "facebook"
	PlatformTikTok    Platform = "tiktok"
)

// SupportedPlatforms returns all platforms in a stable order
func SupportedPlatforms() []Platform {
	return []Platform{
		PlatformYouTube,
		PlatformTwitter,
		PlatformInstagram,
		PlatformFacebook,
		PlatformTikTok,
	}
}

// Quality represents the requested media quality. Besides the three named
// levels, any yt-dlp format token (e.g. "137+140") is accepted verbatim.
type Quality string

const (
	QualityBest   Quality = "best"
	QualityMedium Quality = "medium"
	QualityWorst  Quality = "worst"
)

// urlPatterns holds the accepted URL shapes per platform. Shortened and
// mobile forms are accepted because the extraction tool follows redirects.
var urlPatterns = map[Platform][]*regexp.Regexp{
	PlatformYouTube: {
		regexp.MustCompile(`^https?://(www\.|m\.)?youtube\.com/(watch\?v=|shorts/)[\w-]+`),
		regexp.MustCompile(`^https?://youtu\.be/[\w-]+`),
	},
	PlatformTwitter: {
		regexp.MustCompile(`^https?://(www\.)?(x|twitter)\.com/[^/]+/status/\d+`),
	},
	PlatformInstagram: {
		regexp.MustCompile(`^https?://(www\.)?instagram\.com/(p|reel|reels|tv)/[\w-]+`),
	},
	PlatformFacebook: {
		regexp.MustCompile(`^https?://(www\.|m\.|web\.)?facebook\.com/[^/]+/videos/`),
		regexp.MustCompile(`^https?://(www\.|m\.|web\.)?facebook\.com/watch/?\?v=\d+`),
		regexp.MustCompile(`^https?://(www\.|m\.|web\.)?facebook\.com/reel/\d+`),
		regexp.MustCompile(`^https?://(www\.|m\.|web\.)?facebook\.com/story\.php\?story_fbid=\d+`),
		regexp.MustCompile(`^https?://(www\.|m\.|web\.)?fb\.watch/[\w-]+`),
	},
	PlatformTikTok: {
		regexp.MustCompile(`^https?://(www\.)?tiktok\.com/@[^/]+/video/\d+`),
		regexp.MustCompile(`^https?://(www\.)?tiktok\.com/t/[A-Za-z0-9]+`),
		regexp.MustCompile(`^https?://vm\.tiktok\.com/[A-Za-z0-9]+`),
		regexp.MustCompile(`^https?://m\.tiktok\.com/v/\d+`),
	},
}

// ValidatePlatform checks if a platform is supported
func ValidatePlatform(platform Platform) bool {
	_, ok := urlPatterns[platform]
	return ok
}

// ValidateURL checks a URL against the platform's accepted shapes
func ValidateURL(platform Platform, url string) error {
	patterns, ok := urlPatterns[platform]
	if !ok {
		return fmt.Errorf("unsupported platform: %s", platform)
	}
	for _, p := range patterns {
		if p.MatchString(url) {
			return nil
		}
	}
	return fmt.Errorf("invalid %s URL: %s", platform, url)
}

// DetectPlatform detects the platform from a URL, or "" if none matches
func DetectPlatform(url string) Platform {
	for platform, patterns := range urlPatterns {
		for _, p := range patterns {
			if p.MatchString(url) {
				return platform
			}
		}
	}
	return ""
}

// DirName returns the per-platform output directory name, e.g. "TikTok_Videos"
func (p Platform) DirName() string {
	switch p {
	case PlatformYouTube:
		return "YouTube_Videos"
	case PlatformTwitter:
		return "Twitter_Videos"
	case PlatformInstagram:
		return "Instagram_Videos"
	case PlatformFacebook:
		return "Facebook_Videos"
	case PlatformTikTok:
		return "TikTok_Videos"
	default:
		return "Other_Videos"
	}
}

// FormatSelector maps a quality preference to a yt-dlp format string.
// Unknown values are treated as explicit format tokens and passed through.
func (q Quality) FormatSelector() string {
	switch q {
	case QualityBest, "":
		return "bestvideo+bestaudio/best"
	case QualityMedium:
		return "bestvideo[height<=720]+bestaudio/best[height<=720]"
	case QualityWorst:
		return "worstvideo+worstaudio/worst"
	default:
		return string(q)
	}
}

// DownloadRequest is the immutable per-invocation value the pipeline runs on.
// The URL has already been validated against the platform's URL shapes.
type DownloadRequest struct {
	URL       string
	Platform  Platform
	Quality   Quality
	OutputDir string
}

// NewDownloadRequest validates and builds a DownloadRequest. An empty
// outputDir defaults to the platform directory under downloadsRoot.
func NewDownloadRequest(url string, platform Platform, quality Quality, downloadsRoot, outputDir string) (DownloadRequest, error) {
	url = strings.TrimSpace(url)
	if err := ValidateURL(platform, url); err != nil {
		return DownloadRequest{}, err
	}
	if quality == "" {
		quality = QualityBest
	}
	if outputDir == "" {
		outputDir = filepath.Join(downloadsRoot, platform.DirName())
	}
	return DownloadRequest{
		URL:       url,
		Platform:  platform,
		Quality:   quality,
		OutputDir: outputDir,
	}, nil
}
