// Package cli implements the interactive question loop.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/tjfontaine/searchbot/internal/storage"
)

const (
	Prompt    = "You: "
	BotPrefix = "Bot: "
)

// Asker answers a question.
type Asker interface {
	Ask(ctx context.Context, source storage.Source, input string) (string, error)
}

// REPL reads questions line by line and prints the answers.
type REPL struct {
	bot Asker
	in  io.Reader
	out io.Writer
}

func New(bot Asker, in io.Reader, out io.Writer) *REPL {
	return &REPL{bot: bot, in: in, out: out}
}

// Run loops until exit or quit is entered, the input ends, or ctx is
// cancelled. A failed question is reported and the loop continues.
func (r *REPL) Run(ctx context.Context) error {
	scanner := bufio.NewScanner(r.in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		fmt.Fprint(r.out, Prompt)
		if !scanner.Scan() {
			fmt.Fprintln(r.out)
			return scanner.Err()
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if isExit(line) {
			return nil
		}

		answer, err := r.bot.Ask(ctx, storage.SourceCLI, line)
		if err != nil {
			fmt.Fprintf(r.out, "Error: %v\n", err)
			continue
		}
		fmt.Fprintln(r.out, BotPrefix+answer)
	}
}

func isExit(line string) bool {
	return strings.EqualFold(line, "exit") || strings.EqualFold(line, "quit")
}
