package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output.
var printlnFn = fmt.Println

// execIface is the minimal command surface the REPL needs. App satisfies it;
// tests provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Forgot(ctx context.Context) error
	WhoAmI(ctx context.Context) error
	Passwd(ctx context.Context) error
	Verify(ctx context.Context) error
	Notifications(ctx context.Context) error
	MarkRead(ctx context.Context) error
	Clear(ctx context.Context) error
	Status(ctx context.Context) error
}

// runREPL reads a line from scanner, parses the first token as the command,
// and dispatches to methods on a. Unknown commands are reported back. The
// loop exits on scanner EOF or when the user types "exit" or "quit".
//
// Command handlers log their own errors; the loop ignores returned errors to
// stay resilient and focused on I/O.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("top %s > ", statusFn()))
		if !scanner.Scan() {
			return
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}

		switch cmd := parts[0]; cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: whoami, (n)otifications, read, clear, status, passwd, verify, logout, exit")
			} else {
				printlnFn("Available commands: register, login, forgot, status, exit")
			}

		case "register":
			_ = a.Register(ctx)

		case "login":
			_ = a.Login(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "forgot":
			_ = a.Forgot(ctx)

		case "whoami":
			_ = a.WhoAmI(ctx)

		case "passwd":
			_ = a.Passwd(ctx)

		case "verify":
			_ = a.Verify(ctx)

		case "n", "notifications":
			_ = a.Notifications(ctx)

		case "read":
			_ = a.MarkRead(ctx)

		case "clear":
			_ = a.Clear(ctx)

		case "status":
			_ = a.Status(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
