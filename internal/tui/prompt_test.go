package tui

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestIsInteractive(t *testing.T) {
	// Depends on how tests are run; just ensure it doesn't panic
	_ = IsInteractive()
}

func TestIsTerminal(t *testing.T) {
	if IsTerminal(strings.NewReader("answers")) {
		t.Error("IsTerminal() = true for an in-memory reader")
	}

	f, err := os.Create(filepath.Join(t.TempDir(), "stdin"))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if IsTerminal(f) {
		t.Error("IsTerminal() = true for a regular file")
	}
}

func TestShouldPromptDisabledInCI(t *testing.T) {
	tests := []struct {
		name   string
		envVar string
		value  string
	}{
		{"GitHub Actions", "GITHUB_ACTIONS", "true"},
		{"GitLab CI", "GITLAB_CI", "true"},
		{"Jenkins", "JENKINS_URL", "http://jenkins.local"},
		{"Generic CI", "CI", "true"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.envVar, tt.value)
			if ShouldPrompt() {
				t.Errorf("ShouldPrompt() = true with %s set", tt.envVar)
			}
		})
	}
}

func TestCredentialFields(t *testing.T) {
	tests := []struct {
		name     string
		creds    Credentials
		register bool
		want     int
	}{
		{"login empty", Credentials{}, false, 2},
		{"login with email", Credentials{Email: "a@b.com"}, false, 1},
		{"login complete", Credentials{Email: "a@b.com", Password: "x"}, false, 0},
		{"register empty", Credentials{}, true, 3},
		{"register with name", Credentials{Name: "Ada"}, true, 2},
		{"login ignores name", Credentials{Password: "x"}, false, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := tt.creds
			if got := len(credentialFields(&c, tt.register)); got != tt.want {
				t.Errorf("credentialFields() = %d fields, want %d", got, tt.want)
			}
		})
	}
}

func TestPromptCredentialsSkipsWhenComplete(t *testing.T) {
	in := Credentials{Email: "a@b.com", Password: "x"}
	got, err := PromptCredentials(in, false)
	if err != nil {
		t.Fatalf("PromptCredentials() error = %v", err)
	}
	if got != in {
		t.Errorf("PromptCredentials() = %+v, want %+v", got, in)
	}
}

func TestRequiredValidator(t *testing.T) {
	v := required("name")
	if v("  ") == nil {
		t.Error("blank value should fail")
	}
	if v("Ada") != nil {
		t.Error("non-blank value should pass")
	}
}
