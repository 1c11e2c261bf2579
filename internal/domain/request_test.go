package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidatePlatform(t *testing.T) {
	assert.True(t, ValidatePlatform(PlatformYouTube))
	assert.True(t, ValidatePlatform(PlatformTwitter))
	assert.True(t, ValidatePlatform(PlatformInstagram))
	assert.True(t, ValidatePlatform(PlatformFacebook))
	assert.True(t, ValidatePlatform(PlatformTikTok))
	assert.False(t, ValidatePlatform("vimeo"))
	assert.False(t, ValidatePlatform(""))
}

func TestValidateURL(t *testing.T) {
	tests := []struct {
		name     string
		platform Platform
		url      string
		wantErr  bool
	}{
		{"youtube watch", PlatformYouTube, "https://www.youtube.com/watch?v=dQw4w9WgXcQ", false},
		{"youtube shorts", PlatformYouTube, "https://youtube.com/shorts/abc123", false},
		{"youtube short link", PlatformYouTube, "https://youtu.be/dQw4w9WgXcQ", false},
		{"youtube wrong shape", PlatformYouTube, "https://www.youtube.com/channel/UC123", true},
		{"twitter status", PlatformTwitter, "https://twitter.com/user/status/123456", false},
		{"x status", PlatformTwitter, "https://x.com/user/status/123456", false},
		{"twitter profile", PlatformTwitter, "https://x.com/user", true},
		{"instagram post", PlatformInstagram, "https://www.instagram.com/p/Cabc123/", false},
		{"instagram reel", PlatformInstagram, "https://instagram.com/reel/Cabc123", false},
		{"facebook video", PlatformFacebook, "https://www.facebook.com/someone/videos/123456/", false},
		{"facebook watch", PlatformFacebook, "https://www.facebook.com/watch?v=123456", false},
		{"facebook reel", PlatformFacebook, "https://www.facebook.com/reel/123456", false},
		{"fb.watch short", PlatformFacebook, "https://fb.watch/abc123", false},
		{"tiktok video", PlatformTikTok, "https://www.tiktok.com/@user/video/123456", false},
		{"tiktok vm short", PlatformTikTok, "https://vm.tiktok.com/ZMabc", false},
		{"tiktok mobile", PlatformTikTok, "https://m.tiktok.com/v/123456", false},
		{"cross platform", PlatformYouTube, "https://www.tiktok.com/@user/video/123456", true},
		{"not a url", PlatformTwitter, "hello world", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateURL(tt.platform, tt.url)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestDetectPlatform(t *testing.T) {
	assert.Equal(t, PlatformYouTube, DetectPlatform("https://youtu.be/dQw4w9WgXcQ"))
	assert.Equal(t, PlatformTwitter, DetectPlatform("https://x.com/user/status/123"))
	assert.Equal(t, PlatformInstagram, DetectPlatform("https://www.instagram.com/reel/Cabc/"))
	assert.Equal(t, PlatformFacebook, DetectPlatform("https://fb.watch/xyz"))
	assert.Equal(t, PlatformTikTok, DetectPlatform("https://vm.tiktok.com/ZMabc"))
	assert.Equal(t, Platform(""), DetectPlatform("https://vimeo.com/123456"))
}

func TestPlatform_DirName(t *testing.T) {
	assert.Equal(t, "YouTube_Videos", PlatformYouTube.DirName())
	assert.Equal(t, "TikTok_Videos", PlatformTikTok.DirName())
	assert.Equal(t, "Other_Videos", Platform("vimeo").DirName())
}

func TestQuality_FormatSelector(t *testing.T) {
	assert.Equal(t, "bestvideo+bestaudio/best", QualityBest.FormatSelector())
	assert.Equal(t, "bestvideo+bestaudio/best", Quality("").FormatSelector())
	assert.Equal(t, "bestvideo[height<=720]+bestaudio/best[height<=720]", QualityMedium.FormatSelector())
	assert.Equal(t, "worstvideo+worstaudio/worst", QualityWorst.FormatSelector())

	// Explicit format tokens pass through verbatim
	assert.Equal(t, "137+140", Quality("137+140").FormatSelector())
}

func TestNewDownloadRequest(t *testing.T) {
	req, err := NewDownloadRequest("  https://youtu.be/abc123 ", PlatformYouTube, "", "/downloads", "")
	assert.NoError(t, err)
	assert.Equal(t, "https://youtu.be/abc123", req.URL)
	assert.Equal(t, QualityBest, req.Quality)
	assert.Equal(t, "/downloads/YouTube_Videos", req.OutputDir)
}

func TestNewDownloadRequest_InvalidURL(t *testing.T) {
	_, err := NewDownloadRequest("https://vimeo.com/123", PlatformYouTube, QualityBest, "/downloads", "")
	assert.Error(t, err)
}

func TestNewDownloadRequest_ExplicitOutputDir(t *testing.T) {
	req, err := NewDownloadRequest("https://youtu.be/abc123", PlatformYouTube, QualityBest, "/downloads", "/custom")
	assert.NoError(t, err)
	assert.Equal(t, "/custom", req.OutputDir)
}
