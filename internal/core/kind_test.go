package core

import "testing"

func TestExecPtyKeepsCommand(t *testing.T) {
	k := ExecPty("uptime", "xterm-256color", PtySize{Width: 80, Height: 24})

	if !k.HasPty() {
		t.Fatalf("ExecPty should report HasPty")
	}
	if k.Command != "uptime" {
		t.Fatalf("ExecPty discarded the command: got %q", k.Command)
	}
	if k.Term != "xterm-256color" {
		t.Fatalf("ExecPty discarded the terminal name: got %q", k.Term)
	}
}

func TestKindIsInteractive(t *testing.T) {
	cases := []struct {
		name string
		kind SessionKind
		want bool
	}{
		{"pty", Pty("xterm", PtySize{}), true},
		{"shell", Shell(), true},
		{"exec", Exec("ls"), false},
		{"exec_pty", ExecPty("ls", "xterm", PtySize{}), false},
		{"subsystem", SubsystemKind("sftp"), false},
	}
	for _, c := range cases {
		if got := c.kind.IsInteractive(); got != c.want {
			t.Errorf("%s: IsInteractive() = %v, want %v", c.name, got, c.want)
		}
	}
}

func TestSignalString(t *testing.T) {
	if SignalINT.String() != "INT" {
		t.Fatalf("got %q, want INT", SignalINT.String())
	}

	custom := NewSignal("WINCH")
	if custom.IsKnown() {
		t.Fatalf("WINCH should not be a known signal constant")
	}
	if custom.String() != "WINCH" {
		t.Fatalf("got %q, want WINCH", custom.String())
	}
}
