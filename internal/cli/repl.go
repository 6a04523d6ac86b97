package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/raphaelgruber/chatline/internal/models"
	"github.com/raphaelgruber/chatline/internal/session"
)

// repl drives a controller from lines of text. It expects a controller built
// with session.SyncRunner so every intent has settled when it returns.
type repl struct {
	ctrl    *session.Controller
	out     io.Writer
	printed int // timeline entries already written to out
}

// RunREPL reads lines from in until EOF or /quit. Plain lines are sent as
// messages; replies are written to out.
func RunREPL(ctrl *session.Controller, in io.Reader, out io.Writer) error {
	r := &repl{ctrl: ctrl, out: out}
	ctrl.Start()

	fmt.Fprintln(out, "Type a message, or /list, /open <id>, /new, /quit.")

	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		quit, err := r.handle(strings.TrimSpace(scanner.Text()))
		if err != nil {
			fmt.Fprintf(out, "! %v\n", err)
		}
		if quit {
			return nil
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	return nil
}

// handle processes one line and reports whether the session should end.
func (r *repl) handle(line string) (bool, error) {
	if line == "" {
		return false, nil
	}

	if !strings.HasPrefix(line, "/") {
		if err := r.ctrl.Send(line); err != nil {
			return false, err
		}
		r.printNew(false)
		return false, nil
	}

	cmd, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)

	switch cmd {
	case "/quit", "/exit":
		return true, nil

	case "/new":
		r.ctrl.NewConversation()
		r.printed = 0
		fmt.Fprintln(r.out, "Started a new conversation.")

	case "/list":
		r.ctrl.RefreshDirectory()
		return false, writeConversations(r.out, formatText, r.ctrl.Snapshot().Conversations)

	case "/open":
		if arg == "" {
			return false, fmt.Errorf("usage: /open <id>")
		}
		if err := r.ctrl.Select(models.ID(arg)); err != nil {
			return false, err
		}
		r.printed = 0
		fmt.Fprintf(r.out, "Conversation %s:\n", arg)
		r.printNew(true)

	default:
		return false, fmt.Errorf("unknown command %s", cmd)
	}

	return false, nil
}

// printNew writes timeline entries not printed yet. User entries are skipped
// unless withUser is set, since the user just typed them.
func (r *repl) printNew(withUser bool) {
	msgs := r.ctrl.Snapshot().Messages
	if r.printed > len(msgs) {
		r.printed = 0
	}
	for _, m := range msgs[r.printed:] {
		if m.IsLoading {
			continue
		}
		if m.Sender == models.SenderUser && !withUser {
			continue
		}
		fmt.Fprintln(r.out, formatMessageLine(m))
	}
	r.printed = len(msgs)
}
