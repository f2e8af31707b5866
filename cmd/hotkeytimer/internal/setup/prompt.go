package setup

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/huh"
)

// Form prompts with huh forms. It needs exclusive use of the terminal, so it is
// only used before the console loop starts reading stdin.
type Form struct {
	Accessible bool
}

func (f Form) Ask(ctx context.Context, q Question) (string, error) {
	v := q.Default
	in := huh.NewInput().
		Title(q.Title).
		Description(q.Help).
		Placeholder(q.Default).
		Value(&v)
	if q.Validate != nil {
		in = in.Validate(q.Validate)
	}

	if err := f.run(ctx, in); err != nil {
		return "", err
	}
	return strings.TrimSpace(v), nil
}

func (f Form) Confirm(ctx context.Context, title string, def bool) (bool, error) {
	v := def
	c := huh.NewConfirm().
		Title(title).
		Affirmative("Yes").
		Negative("No").
		Value(&v)

	if err := f.run(ctx, c); err != nil {
		return def, err
	}
	return v, nil
}

func (f Form) run(ctx context.Context, field huh.Field) error {
	err := huh.NewForm(huh.NewGroup(field)).
		WithAccessible(f.Accessible).
		WithShowHelp(false).
		RunWithContext(ctx)
	if errors.Is(err, huh.ErrUserAborted) {
		return ErrCancelled
	}
	return err
}

// CancelWord aborts a Lines prompt.
const CancelWord = "/cancel"

// Lines prompts over a stream of input lines owned by someone else, re-asking until
// the answer validates.
type Lines struct {
	In  <-chan string
	Out io.Writer
}

func (l Lines) Ask(ctx context.Context, q Question) (string, error) {
	for {
		if q.Help != "" {
			fmt.Fprintf(l.Out, "%s\n", q.Help)
		}
		if q.Default != "" {
			fmt.Fprintf(l.Out, "%s [%s]: ", q.Title, q.Default)
		} else {
			fmt.Fprintf(l.Out, "%s: ", q.Title)
		}

		line, err := l.next(ctx)
		if err != nil {
			return "", err
		}
		if line == "" {
			line = q.Default
		}
		if q.Validate != nil {
			if err := q.Validate(line); err != nil {
				fmt.Fprintf(l.Out, "  %v\n", err)
				continue
			}
		}
		return line, nil
	}
}

func (l Lines) Confirm(ctx context.Context, title string, def bool) (bool, error) {
	hint := "y/N"
	if def {
		hint = "Y/n"
	}
	for {
		fmt.Fprintf(l.Out, "%s [%s]: ", title, hint)
		line, err := l.next(ctx)
		if err != nil {
			return def, err
		}
		switch strings.ToLower(line) {
		case "":
			return def, nil
		case "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		}
		fmt.Fprintln(l.Out, "  answer y or n")
	}
}

func (l Lines) next(ctx context.Context) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case line, ok := <-l.In:
		if !ok {
			return "", ErrCancelled
		}
		line = strings.TrimSpace(line)
		if strings.EqualFold(line, CancelWord) {
			return "", ErrCancelled
		}
		return line, nil
	}
}
