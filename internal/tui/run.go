package tui

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
)

// Run shows m full screen until the user quits or ctx is canceled. b must
// be the consumer the session reports to; it is started and closed here.
func Run(ctx context.Context, m Model, b *Binding, opts ...tea.ProgramOption) error {
	base := []tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}
	p := tea.NewProgram(m, append(base, opts...)...)

	b.Start(p.Send)
	defer b.Close()

	if _, err := p.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("running browser: %w", err)
	}
	return nil
}
