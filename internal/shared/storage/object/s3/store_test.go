package s3

import "testing"

func TestApplyPrefix(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		prefix string
		key    string
		want   string
	}{
		{name: "no prefix", prefix: "", key: "signatures/doc/owner.png", want: "signatures/doc/owner.png"},
		{name: "simple prefix", prefix: "root", key: "signatures/doc/owner.png", want: "root/signatures/doc/owner.png"},
		{name: "prefix trailing slash", prefix: "root/", key: "signatures/doc/owner.png", want: "root/signatures/doc/owner.png"},
		{name: "prefix and key slashes", prefix: "/root/", key: "/signatures/doc/owner.png", want: "root/signatures/doc/owner.png"},
		{name: "empty key", prefix: "root", key: "", want: "root"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := applyPrefix(tt.prefix, tt.key); got != tt.want {
				t.Fatalf("applyPrefix(%q, %q) = %q, want %q", tt.prefix, tt.key, got, tt.want)
			}
		})
	}
}

func TestNormalizePrefix(t *testing.T) {
	if got := normalizePrefix("  /signing/prod/ "); got != "signing/prod" {
		t.Fatalf("unexpected prefix %q", got)
	}
}
