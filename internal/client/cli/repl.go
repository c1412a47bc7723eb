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
	Send(ctx context.Context) error
	Recv(ctx context.Context) error
	BeamSend(ctx context.Context) error
	BeamRecv(ctx context.Context) error
	Chirp(ctx context.Context) error
	Listen(ctx context.Context) error
	History(ctx context.Context) error
	Vibes(ctx context.Context) error
}

// runREPL starts a simple read-eval-print loop for the Aether CLI.
//
// It reads a line from the provided scanner, parses the first token as the
// command, and dispatches to methods on 'a'. Unknown commands are reported
// back to the user. The loop exits on scanner EOF or when the user types
// "exit" or "quit".
//
// Commands:
//
//   - help             — show available commands
//   - send             — pack a file into an inline locator
//   - recv             — open a locator (beam locators start a beam receive)
//   - beam-send        — stream a file to a peer through the relay
//   - beam-recv        — receive a beam transfer by locator
//   - chirp            — announce a file name as an audio chirp (WAV)
//   - listen           — decode a chirp announcement from a WAV file
//   - (h)istory        — list recent transfers
//   - vibes            — list available locator themes
//   - exit | quit      — leave the program
//
// Any errors returned by command handlers are reported and the loop keeps
// going; a failed transfer must not take the whole REPL down.
func runREPL(ctx context.Context, a execIface, scanner *bufio.Scanner) {
	for {
		printlnFn("aether> ")
		if !scanner.Scan() {
			return
		}
		line := scanner.Text()
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]

		var err error
		switch cmd {
		case "help":
			printlnFn("Available commands: send, recv, beam-send, beam-recv, chirp, listen, (h)istory, vibes, exit")

		case "send":
			err = a.Send(ctx)

		case "recv":
			err = a.Recv(ctx)

		case "beam-send":
			err = a.BeamSend(ctx)

		case "beam-recv":
			err = a.BeamRecv(ctx)

		case "chirp":
			err = a.Chirp(ctx)

		case "listen":
			err = a.Listen(ctx)

		case "h", "history":
			err = a.History(ctx)

		case "vibes":
			err = a.Vibes(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if err != nil {
			printlnFn("Error:", err.Error())
		}
	}
}
