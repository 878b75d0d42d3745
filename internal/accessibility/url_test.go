package accessibility

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{
			name: "lowercases scheme and host",
			in:   "HTTPS://Example.COM/Path",
			want: "https://example.com/Path",
		},
		{
			name: "strips default https port",
			in:   "https://example.com:443/page",
			want: "https://example.com/page",
		},
		{
			name: "strips default http port",
			in:   "http://example.com:80/page",
			want: "http://example.com/page",
		},
		{
			name: "keeps non-default port",
			in:   "https://example.com:8443/page",
			want: "https://example.com:8443/page",
		},
		{
			name: "removes fragment",
			in:   "https://example.com/page#section",
			want: "https://example.com/page",
		},
		{
			name: "sorts query parameters",
			in:   "https://example.com/search?z=1&a=2",
			want: "https://example.com/search?a=2&z=1",
		},
		{
			name: "adds https scheme when missing",
			in:   "example.com/page",
			want: "https://example.com/page",
		},
		{
			name: "adds root path",
			in:   "https://example.com",
			want: "https://example.com/",
		},
		{
			name:    "rejects empty input",
			in:      "   ",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := NormalizeURL(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				require.True(t, errors.Is(err, ErrInvalidURL))
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeURLIdempotent(t *testing.T) {
	t.Parallel()

	first, err := NormalizeURL("HTTP://Example.com:80/a?b=1&a=2#frag")
	require.NoError(t, err)
	second, err := NormalizeURL(first)
	require.NoError(t, err)
	require.Equal(t, first, second)
}

func TestTargetValidator(t *testing.T) {
	t.Parallel()

	v := NewTargetValidator([]string{"blocked.example", "*.internal.corp"}, false)

	tests := []struct {
		name    string
		url     string
		wantErr bool
	}{
		{name: "public https", url: "https://example.com/"},
		{name: "public http", url: "http://example.com/"},
		{name: "ftp scheme", url: "ftp://example.com/", wantErr: true},
		{name: "file scheme", url: "file:///etc/passwd", wantErr: true},
		{name: "loopback ip", url: "https://127.0.0.1/", wantErr: true},
		{name: "localhost", url: "https://localhost/", wantErr: true},
		{name: "localhost subdomain", url: "https://admin.localhost/", wantErr: true},
		{name: "rfc1918", url: "https://10.0.0.8/", wantErr: true},
		{name: "link local", url: "https://169.254.169.254/", wantErr: true},
		{name: "blocked exact", url: "https://blocked.example/", wantErr: true},
		{name: "blocked suffix", url: "https://db.internal.corp/", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := v.Validate(tt.url)
			if tt.wantErr {
				require.Error(t, err)
				require.True(t, errors.Is(err, ErrInvalidURL))
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestTargetValidatorAllowPrivate(t *testing.T) {
	t.Parallel()

	v := NewTargetValidator(nil, true)
	require.NoError(t, v.Validate("https://localhost:3000/"))
	require.NoError(t, v.Validate("https://127.0.0.1/"))
}
