package dispatch

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/peterh/liner"
	"github.com/rs/zerolog/log"
)

// Run drives the interactive read loop until /exit or end-of-input.
// One pending operation at a time: a chat turn blocks the loop until
// the remote call returns or fails through the fallback.
func (d *Dispatcher) Run(ctx context.Context) error {
	rl := liner.NewLiner()
	defer rl.Close()
	rl.SetCtrlCAborts(true)

	for {
		line, err := rl.Prompt(d.ui.Prompt(d.sess.Active))
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) {
				continue
			}
			if !errors.Is(err, io.EOF) {
				log.Error().Err(err).Msg("Read loop failed")
			}
			d.Shutdown()
			return nil
		}

		if strings.TrimSpace(line) != "" {
			rl.AppendHistory(line)
		}

		if d.Dispatch(ctx, line) {
			d.Shutdown()
			return nil
		}
	}
}
