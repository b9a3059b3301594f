package exit

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		err     error
		code    int
		message string
	}{
		{name: "nil", err: nil, code: CodeSuccess},
		{name: "false", err: fmt.Errorf("check: %w", ErrFalse), code: CodeFalse},
		{name: "usage", err: Usagef("unknown format %q", "xml"), code: CodeUsage, message: "Error: usage error: unknown format \"xml\"\n"},
		{name: "failure", err: errors.New("boom"), code: CodeFailure, message: "Error: boom\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			r := FromError(&buf, tt.err)
			r.Print()
			assert.Equal(t, tt.code, r.ExitCode)
			assert.Equal(t, tt.message, buf.String())
		})
	}
}

func TestSuccessAndErrorf(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	Success(&buf, "ok\n").Print()
	Errorf(&buf, "failed %d\n", 2).Print()
	assert.Equal(t, "ok\nfailed 2\n", buf.String())
}
