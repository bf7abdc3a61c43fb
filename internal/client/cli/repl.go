package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	WhoAmI(ctx context.Context) error
	Renew(ctx context.Context) error
	Verify(ctx context.Context, link string) error
	Status(ctx context.Context) error
}

// runREPL starts a simple read–eval–print loop for the session CLI.
//
// It reads a line from the provided scanner, parses the first token as the
// command, and dispatches to methods on 'a'. Unknown commands are reported
// back to the user. The loop exits on scanner EOF, on context cancellation
// or when the user types "exit" or "quit".
//
//	Always:
//	  - help               show available commands
//	  - status             print the current session state
//	  - verify <link>      verify an email with a link or bare token
//	  - exit | quit        leave the program
//
//	Not logged in:
//	  - register           create an account
//	  - login              authenticate
//
//	Logged in:
//	  - whoami             refetch the current user
//	  - renew              trade the refresh token for a new pair
//	  - logout             end the session
//
// Errors returned by command handlers are ignored here; handlers print their
// own outcome.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		if ctx.Err() != nil {
			return
		}
		printlnFn(fmt.Sprintf("gs %s> ", statusFn()))
		if !scanner.Scan() {
			return
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: whoami, renew, logout, status, verify <link>, exit")
			} else {
				printlnFn("Available commands: register, login, status, verify <link>, exit")
			}

		case "register":
			_ = a.Register(ctx)

		case "login":
			_ = a.Login(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "whoami", "me":
			_ = a.WhoAmI(ctx)

		case "renew":
			_ = a.Renew(ctx)

		case "verify":
			link := ""
			if len(args) > 0 {
				link = args[0]
			}
			_ = a.Verify(ctx, link)

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
