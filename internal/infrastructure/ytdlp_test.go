package infrastructure

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/yourusername/mediagrab-go/internal/domain"
)

func testExtractor(t *testing.T, config *domain.ToolsConfig) *YTDLPExtractor {
	t.Helper()
	if config == nil {
		config = &domain.ToolsConfig{
			YTDLPBinary:    "yt-dlp",
			FFmpegBinary:   "/usr/bin/ffmpeg",
			CookieBrowser:  "chrome",
			AttemptTimeout: time.Minute,
		}
	}
	return NewYTDLPExtractor(config, t.TempDir(), zap.NewNop())
}

func testFetchRequest(t *testing.T, platform domain.Platform, url string, quality domain.Quality) domain.DownloadRequest {
	t.Helper()
	req, err := domain.NewDownloadRequest(url, platform, quality, t.TempDir(), "")
	require.NoError(t, err)
	return req
}

func TestBuildArgs_Defaults(t *testing.T) {
	e := testExtractor(t, nil)
	req := testFetchRequest(t, domain.PlatformYouTube, "https://youtu.be/abc123", domain.QualityBest)

	args := e.buildArgs(req, domain.Strategy{ID: "yt_hq_merge"}, "/work", req.URL)

	assert.Contains(t, args, "--no-warnings")
	assert.Contains(t, args, "--no-playlist")
	assert.Contains(t, args, "--restrict-filenames")
	assert.Contains(t, args, "bestvideo+bestaudio/best")
	assert.Contains(t, args, "--merge-output-format")
	assert.Contains(t, args, "/work")
	assert.Equal(t, req.URL, args[len(args)-1])
}

func TestBuildArgs_StrategyFormatOverridesQuality(t *testing.T) {
	e := testExtractor(t, nil)
	req := testFetchRequest(t, domain.PlatformYouTube, "https://youtu.be/abc123", domain.QualityMedium)

	args := e.buildArgs(req, domain.Strategy{ID: "yt_best_single", Format: "best"}, "/work", req.URL)

	assert.Contains(t, args, "best")
	assert.NotContains(t, args, domain.QualityMedium.FormatSelector())
}

func TestBuildArgs_StrategyFlags(t *testing.T) {
	e := testExtractor(t, nil)
	req := testFetchRequest(t, domain.PlatformFacebook, "https://www.facebook.com/watch?v=123456", domain.QualityBest)

	strategy := domain.Strategy{
		ID:                 "fb_mobile",
		GeoBypass:          true,
		NoCheckCertificate: true,
		UserAgent:          "TestAgent/1.0",
		Referer:            "https://www.facebook.com/",
	}
	args := e.buildArgs(req, strategy, "/work", req.URL)

	assert.Contains(t, args, "--geo-bypass")
	assert.Contains(t, args, "--no-check-certificate")
	assert.Contains(t, args, "--user-agent")
	assert.Contains(t, args, "TestAgent/1.0")
	assert.Contains(t, args, "--add-header")
	assert.Contains(t, args, "Referer:https://www.facebook.com/")
}

func TestBuildArgs_BrowserCookies(t *testing.T) {
	e := testExtractor(t, nil)
	req := testFetchRequest(t, domain.PlatformFacebook, "https://www.facebook.com/watch?v=123456", domain.QualityBest)

	args := e.buildArgs(req, domain.Strategy{ID: "fb_browser_cookies", CookieMode: domain.CookiesBrowser}, "/work", req.URL)

	assert.Contains(t, args, "--cookies-from-browser")
	assert.Contains(t, args, "chrome")
}

func TestBuildArgs_FileCookiesSkippedWhenMissing(t *testing.T) {
	e := testExtractor(t, &domain.ToolsConfig{
		YTDLPBinary: "yt-dlp",
		CookieFile:  "/nonexistent/cookies.txt",
	})
	req := testFetchRequest(t, domain.PlatformFacebook, "https://www.facebook.com/watch?v=123456", domain.QualityBest)

	args := e.buildArgs(req, domain.Strategy{ID: "fb_cookies", CookieMode: domain.CookiesFile}, "/work", req.URL)

	assert.NotContains(t, args, "--cookies")
}

func TestBuildArgs_FileCookiesUsedWhenPresent(t *testing.T) {
	cookiePath := filepath.Join(t.TempDir(), "cookies.txt")
	require.NoError(t, os.WriteFile(cookiePath, []byte("# Netscape HTTP Cookie File"), 0600))

	e := testExtractor(t, &domain.ToolsConfig{
		YTDLPBinary: "yt-dlp",
		CookieFile:  cookiePath,
	})
	req := testFetchRequest(t, domain.PlatformFacebook, "https://www.facebook.com/watch?v=123456", domain.QualityBest)

	args := e.buildArgs(req, domain.Strategy{ID: "fb_cookies", CookieMode: domain.CookiesFile}, "/work", req.URL)

	assert.Contains(t, args, "--cookies")
	assert.Contains(t, args, cookiePath)
}

func TestClassifyOutput(t *testing.T) {
	tests := []struct {
		name   string
		output string
		want   domain.FailureKind
	}{
		{"geo blocked", "ERROR: The uploader has blocked it in your country", domain.FailureGeoBlocked},
		{"geo restricted", "ERROR: This video is geo-restricted", domain.FailureGeoBlocked},
		{"auth login", "ERROR: Login required to access this content", domain.FailureAuthRequired},
		{"auth cookies", "ERROR: Sign in to confirm you're not a bot. Use --cookies", domain.FailureAuthRequired},
		{"private", "ERROR: Private video", domain.FailureAuthRequired},
		{"not found 404", "ERROR: Unable to download webpage: HTTP Error 404: Not Found", domain.FailureNotFound},
		{"removed", "ERROR: This video has been removed by the uploader", domain.FailureNotFound},
		{"unavailable", "ERROR: Video unavailable", domain.FailureNotFound},
		{"format", "ERROR: Requested format is not available", domain.FailureFormatUnavailable},
		{"network timeout", "ERROR: Unable to download video data: timed out", domain.FailureNetwork},
		{"connection reset", "ERROR: Connection reset by peer", domain.FailureNetwork},
		{"server error", "ERROR: HTTP Error 503: Service Unavailable", domain.FailureNetwork},
		{"garbage", "ERROR: Something inexplicable happened", domain.FailureUnknown},
		{"empty", "", domain.FailureUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyOutput(tt.output))
		})
	}
}

func TestRewriteHost(t *testing.T) {
	assert.Equal(t,
		"https://m.facebook.com/watch?v=123456",
		rewriteHost("https://www.facebook.com/watch?v=123456", "m.facebook.com"))

	assert.Equal(t,
		"https://m.tiktok.com/@user/video/123",
		rewriteHost("https://www.tiktok.com/@user/video/123", "m.tiktok.com"))

	// Unparseable URLs pass through
	assert.Equal(t, "://bad", rewriteHost("://bad", "m.example.com"))
}

func TestFindMediaFiles_LargestFirst(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "raw_abc.m4a"), []byte("audio"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "raw_abc.mp4"), []byte("a much larger video stream"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "raw_abc.info.json"), []byte("{}"), 0644))

	files, err := findMediaFiles(dir)
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, "raw_abc.mp4", filepath.Base(files[0]))
	assert.Equal(t, "raw_abc.m4a", filepath.Base(files[1]))
}

func TestIsMediaFile(t *testing.T) {
	assert.True(t, isMediaFile("raw_abc.mp4"))
	assert.True(t, isMediaFile("raw_abc.WEBM"))
	assert.True(t, isMediaFile("raw_abc.m4a"))
	assert.False(t, isMediaFile("raw_abc.info.json"))
	assert.False(t, isMediaFile("raw_abc.part"))
	assert.False(t, isMediaFile("raw_abc"))
}

func TestFirstErrorLine(t *testing.T) {
	output := "[youtube] Extracting URL\nWARNING: something minor\nERROR: Video unavailable\nmore noise"
	assert.Equal(t, "ERROR: Video unavailable", firstErrorLine(output))

	assert.Equal(t, "[youtube] Extracting URL", firstErrorLine("[youtube] Extracting URL\nno error here"))
	assert.Equal(t, "", firstErrorLine("\n\n"))
}
