package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubExec records which commands the REPL dispatched.
type stubExec struct {
	loggedIn bool
	calls    []string
}

func (s *stubExec) record(name string) error {
	s.calls = append(s.calls, name)
	return nil
}

func (s *stubExec) isLoggedIn() bool                        { return s.loggedIn }
func (s *stubExec) Register(ctx context.Context) error      { return s.record("register") }
func (s *stubExec) Login(ctx context.Context) error         { return s.record("login") }
func (s *stubExec) Logout(ctx context.Context) error        { return s.record("logout") }
func (s *stubExec) Forgot(ctx context.Context) error        { return s.record("forgot") }
func (s *stubExec) WhoAmI(ctx context.Context) error        { return s.record("whoami") }
func (s *stubExec) Passwd(ctx context.Context) error        { return s.record("passwd") }
func (s *stubExec) Verify(ctx context.Context) error        { return s.record("verify") }
func (s *stubExec) Notifications(ctx context.Context) error { return s.record("notifications") }
func (s *stubExec) MarkRead(ctx context.Context) error      { return s.record("read") }
func (s *stubExec) Clear(ctx context.Context) error         { return s.record("clear") }
func (s *stubExec) Status(ctx context.Context) error        { return s.record("status") }

func captureOutput(t *testing.T) *[]string {
	t.Helper()
	orig := printlnFn
	t.Cleanup(func() { printlnFn = orig })

	var lines []string
	printlnFn = func(args ...any) (int, error) {
		lines = append(lines, fmt.Sprintln(args...))
		return 0, nil
	}
	return &lines
}

func runWithInput(t *testing.T, a execIface, input string) {
	t.Helper()
	runREPL(context.Background(), a, func() string { return "(test)" }, bufio.NewScanner(strings.NewReader(input)))
}

func TestREPL_DispatchesCommands(t *testing.T) {
	out := captureOutput(t)
	s := &stubExec{loggedIn: true}

	runWithInput(t, s, "whoami\nnotifications\nread\nclear\nstatus\npasswd\nverify\nlogout\nexit\n")

	assert.Equal(t, []string{"whoami", "notifications", "read", "clear", "status", "passwd", "verify", "logout"}, s.calls)
	require.NotEmpty(t, *out)
	assert.Contains(t, (*out)[len(*out)-1], "Bye!")
}

func TestREPL_ShortNotificationAlias(t *testing.T) {
	captureOutput(t)
	s := &stubExec{loggedIn: true}

	runWithInput(t, s, "n\nexit\n")

	assert.Equal(t, []string{"notifications"}, s.calls)
}

func TestREPL_SignedOutCommands(t *testing.T) {
	captureOutput(t)
	s := &stubExec{}

	runWithInput(t, s, "register\nlogin\nforgot\nexit\n")

	assert.Equal(t, []string{"register", "login", "forgot"}, s.calls)
}

func TestREPL_UnknownCommand(t *testing.T) {
	out := captureOutput(t)
	s := &stubExec{}

	runWithInput(t, s, "frobnicate\nexit\n")

	assert.Empty(t, s.calls)
	joined := strings.Join(*out, "")
	assert.Contains(t, joined, "Unknown command: frobnicate")
}

func TestREPL_HelpReflectsAuthState(t *testing.T) {
	out := captureOutput(t)
	runWithInput(t, &stubExec{}, "help\nexit\n")
	assert.Contains(t, strings.Join(*out, ""), "register, login")

	out = captureOutput(t)
	runWithInput(t, &stubExec{loggedIn: true}, "help\nexit\n")
	assert.Contains(t, strings.Join(*out, ""), "whoami")
}

func TestREPL_EmptyLinesAndEOF(t *testing.T) {
	captureOutput(t)
	s := &stubExec{}

	// blank lines are skipped; EOF without "exit" ends the loop
	runWithInput(t, s, "\n\n\nstatus\n")

	assert.Equal(t, []string{"status"}, s.calls)
}
