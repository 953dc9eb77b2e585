package cli

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/tjfontaine/searchbot/internal/storage"
)

type fakeAsker struct {
	answers map[string]string
	errs    map[string]error
	calls   []string
}

func (f *fakeAsker) Ask(ctx context.Context, source storage.Source, input string) (string, error) {
	f.calls = append(f.calls, input)
	if source != storage.SourceCLI {
		return "", errors.New("unexpected source " + string(source))
	}
	if err := f.errs[input]; err != nil {
		return "", err
	}
	return f.answers[input], nil
}

func TestREPL_Run(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantCalls []string
		wantOut   []string
	}{
		{
			name:      "answers then exits",
			input:     "hello\nexit\nnever\n",
			wantCalls: []string{"hello"},
			wantOut:   []string{"You: ", "Bot: hi there"},
		},
		{
			name:      "quit any case with whitespace",
			input:     "  QuIt  \n",
			wantCalls: nil,
		},
		{
			name:      "exit uppercase",
			input:     "EXIT\n",
			wantCalls: nil,
		},
		{
			name:      "blank lines skipped",
			input:     "\n   \nhello\n",
			wantCalls: []string{"hello"},
			wantOut:   []string{"Bot: hi there"},
		},
		{
			name:      "eof ends loop",
			input:     "hello",
			wantCalls: []string{"hello"},
		},
		{
			name:      "error reported and loop continues",
			input:     "boom\nhello\nquit\n",
			wantCalls: []string{"boom", "hello"},
			wantOut:   []string{"Error: search failed", "Bot: hi there"},
		},
		{
			name:      "exit inside a sentence is a question",
			input:     "how do I exit vim\n",
			wantCalls: []string{"how do I exit vim"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bot := &fakeAsker{
				answers: map[string]string{"hello": "hi there"},
				errs:    map[string]error{"boom": errors.New("search failed")},
			}
			var out strings.Builder

			err := New(bot, strings.NewReader(tt.input), &out).Run(context.Background())
			if err != nil {
				t.Fatalf("Run() error = %v", err)
			}

			if strings.Join(bot.calls, "|") != strings.Join(tt.wantCalls, "|") {
				t.Errorf("calls = %q, want %q", bot.calls, tt.wantCalls)
			}
			for _, want := range tt.wantOut {
				if !strings.Contains(out.String(), want) {
					t.Errorf("output missing %q:\n%s", want, out.String())
				}
			}
		})
	}
}

func TestREPL_Run_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	bot := &fakeAsker{}
	err := New(bot, strings.NewReader("hello\n"), &strings.Builder{}).Run(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Run() error = %v, want context.Canceled", err)
	}
	if len(bot.calls) != 0 {
		t.Errorf("calls = %v, want none", bot.calls)
	}
}
