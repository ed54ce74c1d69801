package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/klauern/agentsync/internal/sync"
	"github.com/klauern/agentsync/internal/ui/tui"
)

// Confirmer asks the user before writes and deletions.
type Confirmer interface {
	// Confirm asks a yes/no question. Anything but yes is no.
	Confirm(question string, dangerous bool) (bool, error)

	// SelectDeletions returns the ids of the candidates the user agreed to delete.
	SelectDeletions(items []sync.Item) ([]string, error)
}

// Prompter is the terminal Confirmer. On a terminal it uses the bubbletea
// components, otherwise it reads a line from in.
type Prompter struct {
	in          io.Reader
	reader      *bufio.Reader
	out         io.Writer
	interactive bool
}

// NewPrompter creates a prompter on the given files.
func NewPrompter(in, out *os.File) *Prompter {
	p := NewLinePrompter(in, out)
	p.interactive = term.IsTerminal(int(in.Fd())) && term.IsTerminal(int(out.Fd()))
	return p
}

// NewLinePrompter creates a prompter that always reads answers line by line.
func NewLinePrompter(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{
		in:     in,
		reader: bufio.NewReader(in),
		out:    out,
	}
}

// Confirm implements Confirmer.
func (p *Prompter) Confirm(question string, dangerous bool) (bool, error) {
	if p.interactive {
		return tui.RunConfirm(question, dangerous, p.in, p.out)
	}

	fmt.Fprintf(p.out, "%s [y/N]: ", question)
	line, err := p.reader.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, fmt.Errorf("failed to read input: %w", err)
	}

	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

// SelectDeletions implements Confirmer.
func (p *Prompter) SelectDeletions(items []sync.Item) ([]string, error) {
	if len(items) == 0 {
		return nil, nil
	}

	if p.interactive {
		res, err := tui.RunDeleteList(items)
		if err != nil {
			return nil, fmt.Errorf("deletion picker failed: %w", err)
		}
		if res.Action != tui.DeleteActionDelete {
			return nil, nil
		}
		return res.IDs(), nil
	}

	ok, err := p.Confirm(fmt.Sprintf("Delete %d artifact(s) from the store? This cannot be undone.", len(items)), true)
	if err != nil || !ok {
		return nil, err
	}
	ids := make([]string, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ID)
	}
	return ids, nil
}
