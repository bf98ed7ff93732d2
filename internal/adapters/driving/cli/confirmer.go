package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/custodia-labs/repodoc-cli/internal/core/domain"
	"github.com/custodia-labs/repodoc-cli/internal/core/ports/driven"
)

// Ensure TerminalConfirmer implements the interface.
var _ driven.Confirmer = (*TerminalConfirmer)(nil)

// TerminalConfirmer asks a yes/no question per repository.
type TerminalConfirmer struct {
	reader *bufio.Reader
	out    io.Writer
}

// newTerminalConfirmer returns a confirmer when in is an interactive terminal.
func newTerminalConfirmer(in io.Reader, out io.Writer) (*TerminalConfirmer, bool) {
	f, ok := in.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return nil, false
	}
	return &TerminalConfirmer{reader: bufio.NewReader(in), out: out}, true
}

// Confirm prints the repository and reads the answer. Anything but y or yes declines.
func (c *TerminalConfirmer) Confirm(ctx context.Context, repo domain.RepositoryDescriptor) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	label := repo.FullName
	if repo.Description != "" {
		label += " - " + repo.Description
	}
	fmt.Fprintf(c.out, "Document %s? [y/N]: ", label)

	input, err := c.reader.ReadString('\n')
	if err != nil && input == "" {
		fmt.Fprintln(c.out)
		return false, err
	}

	switch strings.ToLower(strings.TrimSpace(input)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}
