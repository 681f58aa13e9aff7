// Command amqp-sasl-demo runs a complete AMQP SASL handshake between an
// in-memory client and server and prints the result.
//
// Password can be provided via:
//   - -pass flag (least secure, visible in process list)
//   - AMQP_SASL_PASSWORD environment variable (recommended)
//   - stdin prompt (if neither flag nor env var is set)
//
// Usage:
//
//	amqp-sasl-demo [-user <username>] [-mechs <allow-list>] [-trace]
//
// Examples:
//
//	# Anonymous handshake
//	amqp-sasl-demo
//
//	# Force-anonymous client short-circuit
//	amqp-sasl-demo -mechs ANONYMOUS
//
//	# PLAIN with a prompt
//	amqp-sasl-demo -user guest
//	Password: ********
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/smnsjas/go-amqp-sasl/driver"
	intlog "github.com/smnsjas/go-amqp-sasl/internal/log"
	"github.com/smnsjas/go-amqp-sasl/sasl"
	"github.com/smnsjas/go-amqp-sasl/transport"
	"golang.org/x/term"
)

func main() {
	user := flag.String("user", "", "username for PLAIN authentication")
	pass := flag.String("pass", "", "password for PLAIN authentication (prefer AMQP_SASL_PASSWORD or the prompt)")
	mechs := flag.String("mechs", "", "space-separated mechanism allow-list")
	trace := flag.Bool("trace", false, "enable frame tracing")
	verbose := flag.Bool("v", false, "verbose logging")
	flag.Parse()

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	handler := intlog.NewRedactingHandler(
		slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	logger := slog.New(handler)

	password := *pass
	if *user != "" && password == "" {
		password = os.Getenv("AMQP_SASL_PASSWORD")
	}
	if *user != "" && password == "" {
		p, err := promptPassword()
		if err != nil {
			fmt.Fprintln(os.Stderr, "reading password:", err)
			os.Exit(1)
		}
		password = p
	}

	client := driver.New(driver.Config{
		Logger:       logger.With("role", "client"),
		TraceFrames:  *trace,
		Username:     *user,
		Password:     password,
		AllowedMechs: *mechs,
	})
	server := driver.New(driver.Config{
		Server:      true,
		Logger:      logger.With("role", "server"),
		TraceFrames: *trace,
		VerifyPlain: func(u, p string) bool {
			// The demo server accepts whatever the demo client offers.
			return u == *user && p == password
		},
	})

	if err := driver.Pump(client, server); err != nil {
		fmt.Fprintln(os.Stderr, "handshake failed:", err)
		os.Exit(1)
	}
	client.Dispatch(func(e transport.Event) {
		logger.Debug("client event", "type", e.Type.String())
	})
	server.Dispatch(func(e transport.Event) {
		logger.Debug("server event", "type", e.Type.String())
	})

	fmt.Printf("mechanism:     %s\n", server.SASL().Mech())
	fmt.Printf("outcome:       %s\n", client.SASL().Outcome())
	fmt.Printf("authenticated: %v\n", client.Transport().Authenticated())
	if u := server.SASL().User(); u != "" {
		fmt.Printf("user:          %s\n", u)
	}
	if client.SASL().Outcome() != sasl.OutcomeOK {
		os.Exit(1)
	}
}

// promptPassword reads a password from the terminal without echo, falling
// back to an error when stdin is not a terminal.
func promptPassword() (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", fmt.Errorf("stdin is not a terminal; use -pass or AMQP_SASL_PASSWORD")
	}
	fmt.Fprint(os.Stderr, "Password: ")
	b, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
