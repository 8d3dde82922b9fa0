package cli

import "testing"

func TestComponentFromURL(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://example.com/Vault-1.7.3.jar", "Vault-1.7.3"},
		{"https://example.com/plugins/Essentials.jar", "Essentials"},
		{"https://example.com/download?id=42", ""},
		{"https://example.com/", ""},
		{"https://example.com/readme.txt", ""},
		{"://bad url", ""},
	}

	for _, tt := range tests {
		if got := componentFromURL(tt.url); got != tt.want {
			t.Errorf("componentFromURL(%q) = %q, want %q", tt.url, got, tt.want)
		}
	}
}
