package console

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/compozy/prflow/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConsole_ReadLine(t *testing.T) {
	t.Run("Should strip unix and windows line endings", func(t *testing.T) {
		c := New(strings.NewReader("first\nsecond\r\n"), &bytes.Buffer{})
		line, err := c.ReadLine()
		require.NoError(t, err)
		assert.Equal(t, "first", line)
		line, err = c.ReadLine()
		require.NoError(t, err)
		assert.Equal(t, "second", line)
	})
	t.Run("Should return a final line without newline", func(t *testing.T) {
		c := New(strings.NewReader("last"), &bytes.Buffer{})
		line, err := c.ReadLine()
		require.NoError(t, err)
		assert.Equal(t, "last", line)
		_, err = c.ReadLine()
		assert.ErrorIs(t, err, domain.ErrInputClosed)
	})
	t.Run("Should keep empty lines", func(t *testing.T) {
		c := New(strings.NewReader("\n"), &bytes.Buffer{})
		line, err := c.ReadLine()
		require.NoError(t, err)
		assert.Equal(t, "", line)
	})
	t.Run("Should report closed input on empty reader", func(t *testing.T) {
		c := New(strings.NewReader(""), &bytes.Buffer{})
		_, err := c.ReadLine()
		assert.ErrorIs(t, err, domain.ErrInputClosed)
	})
	t.Run("Should wrap read failures", func(t *testing.T) {
		c := New(iotest.ErrReader(errors.New("tty gone")), &bytes.Buffer{})
		_, err := c.ReadLine()
		require.Error(t, err)
		assert.NotErrorIs(t, err, domain.ErrInputClosed)
		assert.Contains(t, err.Error(), "tty gone")
	})
}

func TestConsole_Output(t *testing.T) {
	t.Run("Should print the prompt label before reading", func(t *testing.T) {
		out := &bytes.Buffer{}
		c := New(strings.NewReader("answer\n"), out)
		answer, err := c.Prompt("Question: ")
		require.NoError(t, err)
		assert.Equal(t, "answer", answer)
		assert.Equal(t, "Question: ", out.String())
	})
	t.Run("Should render status lines as plain text off a terminal", func(t *testing.T) {
		out := &bytes.Buffer{}
		c := New(strings.NewReader(""), out)
		c.Success("done")
		c.Warn("careful")
		c.Printf("%d items\n", 2)
		c.Println("bye")
		assert.Contains(t, out.String(), "done\n")
		assert.Contains(t, out.String(), "careful\n")
		assert.Contains(t, out.String(), "2 items\nbye\n")
	})
}
