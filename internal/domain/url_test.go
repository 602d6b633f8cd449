package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBaseDomain(t *testing.T) {
	tests := []struct {
		name   string
		url    string
		want   string
		wantOK bool
	}{
		{"strips www", "https://www.example.com/x", "example.com", true},
		{"keeps last two labels", "https://a.b.example.com", "example.com", true},
		{"bare domain", "http://example.com", "example.com", true},
		{"single label host", "http://localhost:8080/admin", "localhost", true},
		{"port is ignored", "https://www.example.com:8443/path?q=1", "example.com", true},
		{"host is lowercased", "https://WWW.Example.COM", "example.com", true},
		{"multi-part suffix is not special", "https://news.bbc.co.uk", "co.uk", true},
		{"not a url", "not a url", "", false},
		{"empty", "", "", false},
		{"no host", "http://", "", false},
		{"bad escape", "http://exa mple.com/%zz", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := BaseDomain(tt.url)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIsTrackable(t *testing.T) {
	assert.True(t, IsTrackable("http://example.com"))
	assert.True(t, IsTrackable("https://example.com"))
	assert.False(t, IsTrackable("about:blank"))
	assert.False(t, IsTrackable("moz-extension://abc/popup.html"))
	assert.False(t, IsTrackable("ftp://example.com"))
	assert.False(t, IsTrackable(""))
}
