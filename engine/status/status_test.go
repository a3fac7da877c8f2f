package status

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRecorder(t *testing.T) {
	t.Parallel()

	r := NewRecorder()
	r.Show(Success, "Calibrated!")
	r.Show(Failure, "Motion access denied. Please try again.")

	assert.Equal(t, []Message{
		{Kind: Success, Text: "Calibrated!"},
		{Kind: Failure, Text: "Motion access denied. Please try again."},
	}, r.Messages())
	assert.Equal(t, []string{"Calibrated!", "Motion access denied. Please try again."}, r.Texts())

	msgs := r.Messages()
	msgs[0].Text = "changed"
	assert.Equal(t, "Calibrated!", r.Texts()[0], "Messages returns a copy")
}

func TestConsoleWritesPlainTextToNonTerminal(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	c := NewConsole(&buf)
	c.Show(Success, "Calibrated!")
	c.Show(Info, "Switched to Touch Control")

	assert.Equal(t, "Calibrated!\nSwitched to Touch Control\n", buf.String())
}

func TestKindString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "info", Info.String())
	assert.Equal(t, "success", Success.String())
	assert.Equal(t, "failure", Failure.String())
}
