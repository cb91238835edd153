package mailgen

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/meetmail/internal/domain/extract"
)

func TestComposeFormalClientSummary(t *testing.T) {
	ex := extract.Extraction{
		Summary:   "Reviewed the Q3 roadmap.",
		Decisions: []string{"Ship on schedule"},
		Actions:   []extract.ActionItem{{Owner: "Anna", Task: "Anna to draft comms", Due: "Fri"}},
		Questions: []string{"Budget sign-off pending?"},
	}
	draft := Compose(ex, Options{
		Title:    "Q3 Sync",
		Date:     "2025-08-01",
		Audience: AudienceClient,
		Tone:     ToneFormal,
		Type:     TypeSummary,
	})

	require.Equal(t, "Q3 Sync — summary", draft.Subject)

	lines := strings.Split(draft.Body, "\n")
	require.Equal(t, "Hi team,", lines[0])
	require.Equal(t, "Please find below a summary of Q3 Sync held on 1 Aug 2025.", lines[1])
	require.Equal(t, "Attendees: —", lines[2])

	require.Contains(t, draft.Body, "Summary\nReviewed the Q3 roadmap.")
	require.Contains(t, draft.Body, "Decisions\n- Ship on schedule")
	require.Contains(t, draft.Body, "Action Items\n- Anna — Anna to draft comms — Fri")
	require.Contains(t, draft.Body, "Open Questions\n- Budget sign-off pending?")
	require.Contains(t, draft.Body, "Best regards,")
	require.True(t, strings.HasSuffix(draft.Body, "[Your name]"))
}

func TestComposeEmptyExtractionStillProducesBody(t *testing.T) {
	draft := Compose(extract.Extraction{}, Options{})

	require.Equal(t, "Meeting — follow-up", draft.Subject)
	require.NotEmpty(t, draft.Body)

	lines := strings.Split(draft.Body, "\n")
	require.Equal(t, "Hi all,", lines[0])
	require.Equal(t, "Quick recap of the meeting today.", lines[1])
	require.Equal(t, "Attendees: —", lines[2])
	require.NotContains(t, draft.Body, "Action Items")
	require.Contains(t, draft.Body, "Thanks!")
}

func TestComposeActionOnlySuppressesOtherSections(t *testing.T) {
	ex := extract.Extraction{
		Summary:   "Recap of planning.",
		Decisions: []string{"Chose vendor A"},
		Actions:   []extract.ActionItem{{Owner: "Bo", Task: "Bo to book the room"}},
		Questions: []string{"Venue confirmed?"},
	}
	draft := Compose(ex, Options{Type: TypeActionOnly})

	require.Equal(t, "Meeting — action items", draft.Subject)
	require.NotContains(t, draft.Body, "Summary")
	require.NotContains(t, draft.Body, "Decisions")
	require.NotContains(t, draft.Body, "Open Questions")
	require.Contains(t, draft.Body, "Action Items\n- Bo — Bo to book the room")
}

func TestComposeOmitsEmptySections(t *testing.T) {
	ex := extract.Extraction{
		Actions: []extract.ActionItem{{Owner: "Mia", Task: "Mia to send invites"}},
	}
	draft := Compose(ex, Options{Type: TypeFollowUp})

	require.NotContains(t, draft.Body, "Summary")
	require.NotContains(t, draft.Body, "Decisions")
	require.NotContains(t, draft.Body, "Open Questions")
	require.Contains(t, draft.Body, "Action Items")
}

func TestComposeActionLineCarriesTaskVerbatim(t *testing.T) {
	ex := extract.Extraction{
		Actions: []extract.ActionItem{
			{Owner: "Anna", Task: "Anna to draft comms by Fri"},
			{Owner: "", Task: "circulate the deck", Due: "Mon"},
		},
	}
	draft := Compose(ex, Options{})

	require.Contains(t, draft.Body, "- Anna — Anna to draft comms by Fri\n")
	require.Contains(t, draft.Body, "- TBD — circulate the deck — Mon")
}

func TestComposeSubjectCappedAtSeventyRunes(t *testing.T) {
	draft := Compose(extract.Extraction{}, Options{Title: strings.Repeat("ä", 100)})
	require.Equal(t, 70, utf8.RuneCountInString(draft.Subject))
}

func TestComposeDatePassesThroughUnparseableInput(t *testing.T) {
	draft := Compose(extract.Extraction{}, Options{Tone: ToneCasual, Date: "next Tuesday-ish"})
	require.Contains(t, draft.Body, "Here's the rundown from the meeting on next Tuesday-ish.")
}

func TestComposeGreetingsAndSignOffs(t *testing.T) {
	cases := []struct {
		audience Audience
		tone     Tone
		greeting string
		signOff  string
	}{
		{AudienceClient, ToneFormal, "Hi team,", "Best regards,"},
		{AudienceStakeholder, ToneFriendly, "Hello,", "Thanks so much,"},
		{AudienceInternal, TonePersuasive, "Hi all,", "Thanks in advance,"},
		{AudienceInternal, ToneCasual, "Hi all,", "Cheers,"},
		{AudienceInternal, ToneConcise, "Hi all,", "Thanks!"},
	}
	for _, tc := range cases {
		draft := Compose(extract.Extraction{}, Options{Audience: tc.audience, Tone: tc.tone})
		require.True(t, strings.HasPrefix(draft.Body, tc.greeting), "audience %q", tc.audience)
		require.Contains(t, draft.Body, tc.signOff, "tone %q", tc.tone)
	}
}

func TestComposeIsDeterministic(t *testing.T) {
	ex := extract.Extraction{
		Summary: "Recap.",
		Actions: []extract.ActionItem{{Owner: "Sam", Task: "Sam to follow up"}},
	}
	opts := Options{Title: "Weekly", Tone: ToneFriendly, Audience: AudienceStakeholder}

	first := Compose(ex, opts)
	second := Compose(ex, opts)
	require.Equal(t, first, second)
}
