package cli

import (
	"reflect"
	"testing"
)

func TestSelectSoft(t *testing.T) {
	soft := []string{"DiscordSRV", "PlaceholderAPI", "Vault"}

	tests := []struct {
		name    string
		args    []string
		want    []string
		wantErr bool
	}{
		{"all", []string{"all"}, soft, false},
		{"by name", []string{"Vault"}, []string{"Vault"}, false},
		{"name case-insensitive", []string{"placeholderapi"}, []string{"PlaceholderAPI"}, false},
		{"by index", []string{"1", "3"}, []string{"DiscordSRV", "Vault"}, false},
		{"mixed", []string{"2", "Vault"}, []string{"PlaceholderAPI", "Vault"}, false},
		{"index out of range", []string{"4"}, nil, true},
		{"index zero", []string{"0"}, nil, true},
		{"unknown name", []string{"Essentials"}, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := selectSoft(soft, tt.args)
			if (err != nil) != tt.wantErr {
				t.Fatalf("selectSoft(%v) error = %v, wantErr %v", tt.args, err, tt.wantErr)
			}
			if err == nil && !reflect.DeepEqual(got, tt.want) {
				t.Errorf("selectSoft(%v) = %v, want %v", tt.args, got, tt.want)
			}
		})
	}
}

func TestWithoutKeyFold(t *testing.T) {
	in := map[string]string{"Vault": ">=1.7", "Shop": "^2.0"}
	got := withoutKeyFold(in, "vault")
	if _, ok := got["Vault"]; ok {
		t.Error("key not removed case-insensitively")
	}
	if got["Shop"] != "^2.0" {
		t.Error("unrelated key lost")
	}
	if _, ok := in["Vault"]; !ok {
		t.Error("source map was mutated")
	}
}

func TestWithKey(t *testing.T) {
	in := map[string]string{"Vault": "https://a.example/Vault.jar"}
	got := withKey(in, "Shop", "https://a.example/Shop.jar")
	if got["Shop"] != "https://a.example/Shop.jar" || got["Vault"] != in["Vault"] {
		t.Errorf("withKey = %v", got)
	}
	if _, ok := in["Shop"]; ok {
		t.Error("source map was mutated")
	}
}
