package main

import (
	"strings"
	"testing"

	"github.com/lyceum-academy/lyceum/internal/auth"
	"github.com/spf13/cobra"
)

func TestPasswordFlagsResolve(t *testing.T) {
	t.Parallel()

	cmd := &cobra.Command{}

	tests := []struct {
		name    string
		flags   passwordFlags
		stdin   string
		want    string
		wantGen bool
		wantErr string
	}{
		{name: "explicit", flags: passwordFlags{password: "s3cret-pass"}, want: "s3cret-pass"},
		{name: "stdin", flags: passwordFlags{stdin: true}, stdin: "from-pipe\r\n", want: "from-pipe"},
		{name: "stdin empty", flags: passwordFlags{stdin: true}, stdin: "\n", wantErr: "password is empty"},
		{name: "stdin and password", flags: passwordFlags{stdin: true, password: "x"}, wantErr: "mutually exclusive"},
		{name: "generate and password", flags: passwordFlags{generate: true, password: "x"}, wantErr: "mutually exclusive"},
		{name: "generate", flags: passwordFlags{generate: true}, wantGen: true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got, generated, err := tc.flags.resolve(cmd, strings.NewReader(tc.stdin))
			if tc.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
					t.Fatalf("resolve() error = %v, want %q", err, tc.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("resolve() error = %v", err)
			}
			if generated != tc.wantGen {
				t.Fatalf("generated = %v, want %v", generated, tc.wantGen)
			}
			if tc.wantGen {
				if len(got) != generatedPasswordLength {
					t.Fatalf("generated length = %d, want %d", len(got), generatedPasswordLength)
				}
				return
			}
			if got != tc.want {
				t.Fatalf("resolve() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestRequireEmail(t *testing.T) {
	t.Parallel()

	if _, err := requireEmail("   "); err == nil {
		t.Fatal("expected error for blank email")
	}
	got, err := requireEmail("  Tia@Lyceum.COM ")
	if err != nil || got != "tia@lyceum.com" {
		t.Fatalf("requireEmail() = %q, %v", got, err)
	}
}

func TestDevAdminPasswordVerifies(t *testing.T) {
	t.Parallel()

	hash, err := auth.HashPassword(devAdminPassword)
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	ok, err := auth.ComparePassword(devAdminPassword, hash)
	if err != nil || !ok {
		t.Fatalf("ComparePassword() = %v, %v", ok, err)
	}
}
