package components_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/a-h/templ"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/hptracker/internal/model"
	"github.com/mcoot/hptracker/internal/web/templates/components"
)

func render(t *testing.T, c templ.Component) (string, *goquery.Document) {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, c.Render(context.Background(), &buf))
	html := buf.String()
	doc, err := goquery.NewDocumentFromReader(bytes.NewBufferString(html))
	require.NoError(t, err)
	return html, doc
}

func TestRosterEscapesNames(t *testing.T) {
	snap := model.Snapshot{
		RoomCode: "ABC",
		Entries: []model.RosterEntry{{
			PlayerName:    `"><img src=x onerror=alert(1)>`,
			CharacterName: "<script>alert(1)</script>",
			MaxHP:         20,
			CurrentHP:     4,
		}},
		Players: 1,
	}

	html, doc := render(t, components.Roster(snap, true))

	assert.NotContains(t, html, "<script>")
	assert.Equal(t, 0, doc.Find("script").Length())
	assert.Equal(t, 0, doc.Find("img").Length())
	assert.Equal(t, "<script>alert(1)</script>", doc.Find("td.character-name").Text())

	row := doc.Find("tr.roster-entry")
	player, _ := row.Attr("data-player")
	assert.Equal(t, `"><img src=x onerror=alert(1)>`, player)
	hidden, _ := row.Find("input[name='player']").Attr("value")
	assert.Equal(t, `"><img src=x onerror=alert(1)>`, hidden)
}

func TestRosterWithoutControls(t *testing.T) {
	snap := model.Snapshot{
		Entries: []model.RosterEntry{{PlayerName: "alice", CharacterName: "Thorin", MaxHP: 20, CurrentHP: 20}},
		Players: 3,
	}

	_, doc := render(t, components.Roster(snap, false))

	assert.Equal(t, 0, doc.Find("form.adjust").Length())
	assert.Equal(t, 0, doc.Find("th:contains('Adjust')").Length())
	assert.Equal(t, "2 players have not named a character yet.", doc.Find("p.waiting").Text())
}

func TestRosterEmpty(t *testing.T) {
	_, doc := render(t, components.Roster(model.Snapshot{Players: 1}, true))

	assert.Equal(t, "No characters yet.", doc.Find("p.empty-roster").Text())
	assert.Equal(t, "1 player has not named a character yet.", doc.Find("p.waiting").Text())
}

func TestHealthBarWidthAndBand(t *testing.T) {
	_, doc := render(t, components.HealthBar(4, 20))

	bar := doc.Find("div.hp-bar")
	assert.True(t, bar.HasClass("hp-critical"))
	now, _ := bar.Attr("aria-valuenow")
	assert.Equal(t, "20", now)
	style, _ := doc.Find("div.hp-fill").Attr("style")
	assert.Equal(t, "width: 20%;", style)
}

func TestHealthText(t *testing.T) {
	_, doc := render(t, components.HealthText(20, 20))

	span := doc.Find("span.hp-text")
	assert.True(t, span.HasClass("hp-text-healthy"))
	assert.Equal(t, "20 / 20", span.Text())
}

func TestAdjustButtonLabels(t *testing.T) {
	_, doc := render(t, components.AdjustButtons("/player/adjust", "", []int{-5, 1}))

	action, _ := doc.Find("form").Attr("action")
	assert.Equal(t, "/player/adjust", action)
	assert.Equal(t, 0, doc.Find("input[name='player']").Length())

	labels := doc.Find("button").Map(func(_ int, s *goquery.Selection) string { return s.Text() })
	assert.Equal(t, []string{"-5", "+1"}, labels)
}
