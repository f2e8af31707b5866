package setup

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func feed(lines ...string) <-chan string {
	ch := make(chan string, len(lines))
	for _, l := range lines {
		ch <- l
	}
	close(ch)
	return ch
}

func TestLinesAsk(t *testing.T) {
	var out bytes.Buffer
	l := Lines{In: feed("abc", " 42 "), Out: &out}

	got, err := l.Ask(context.Background(), Question{
		Title:    "Countdown seconds",
		Default:  "130",
		Validate: func(s string) error { _, err := ParseCountdown(s); return err },
	})
	require.NoError(t, err)
	assert.Equal(t, "42", got)
	assert.Contains(t, out.String(), "Countdown seconds [130]: ")
	assert.Contains(t, out.String(), "not a whole number")
}

func TestLinesAskDefault(t *testing.T) {
	l := Lines{In: feed(""), Out: &bytes.Buffer{}}
	got, err := l.Ask(context.Background(), Question{Title: "Choice", Default: "3"})
	require.NoError(t, err)
	assert.Equal(t, "3", got)
}

func TestLinesCancel(t *testing.T) {
	l := Lines{In: feed("/CANCEL"), Out: &bytes.Buffer{}}
	_, err := l.Ask(context.Background(), Question{Title: "Trigger key"})
	assert.ErrorIs(t, err, ErrCancelled)

	l = Lines{In: feed(), Out: &bytes.Buffer{}}
	_, err = l.Ask(context.Background(), Question{Title: "Trigger key"})
	assert.ErrorIs(t, err, ErrCancelled)
}

func TestLinesContextDone(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	l := Lines{In: make(chan string), Out: &bytes.Buffer{}}
	_, err := l.Ask(ctx, Question{Title: "Trigger key"})
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestLinesConfirm(t *testing.T) {
	var out bytes.Buffer
	l := Lines{In: feed("maybe", "Y"), Out: &out}
	ok, err := l.Confirm(context.Background(), "Reconfigure?", false)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Contains(t, out.String(), "[y/N]")

	l = Lines{In: feed(""), Out: &bytes.Buffer{}}
	ok, err = l.Confirm(context.Background(), "Reconfigure?", true)
	require.NoError(t, err)
	assert.True(t, ok)
}
