package cli

import (
	"bufio"
	"context"
	"os"
)

// Root greets the user and runs the REPL until EOF or exit.
func (a *App) Root(ctx context.Context) {

	printlnFn("Welcome to Aether CLI (type 'help' for commands)")
	scanner := bufio.NewScanner(os.Stdin)

	runREPL(ctx, a, scanner)
}
