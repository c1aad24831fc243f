package sse

import (
	"bytes"
	"context"
	"log/slog"

	"github.com/mcoot/hptracker/internal/model"
	"github.com/mcoot/hptracker/internal/web/templates/components"
	"github.com/mcoot/hptracker/internal/web/templates/pages"
)

// RosterRenderer renders each snapshot twice: with DM controls and as the
// read-only party view
func RosterRenderer(logger *slog.Logger) RenderFunc {
	return func(ctx context.Context, snap model.Snapshot) [][]byte {
		var messages [][]byte
		for _, v := range []struct {
			event    string
			controls bool
		}{
			{pages.EventRosterDM, true},
			{pages.EventRosterParty, false},
		} {
			var buf bytes.Buffer
			if err := components.Roster(snap, v.controls).Render(ctx, &buf); err != nil {
				logger.Error("sse failed to render roster",
					slog.String("room", string(snap.RoomCode)),
					slog.Any("error", err))
				continue
			}
			messages = append(messages, formatSSEMessage(v.event, buf.String()))
		}
		return messages
	}
}
