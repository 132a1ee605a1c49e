// Package openai turns the dashboard's market snapshots into a short
// AI-written desk note.
package openai

import (
	"context"
	"fmt"
	"sort"
	"strings"

	oa "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"ratesdash/internal/marketdata"
)

type DeskNote struct {
	cli oa.Client
}

func NewDeskNote(apiKey string) *DeskNote {
	client := oa.NewClient(option.WithAPIKey(apiKey))
	return &DeskNote{cli: client}
}

// Commentary renders the current rates, macro and FedWatch snapshots
// into a prompt and asks for a compact market commentary. macro and
// fedwatch may be nil when their feeds are unavailable.
func (d *DeskNote) Commentary(ctx context.Context, rates *marketdata.RatesData, macro marketdata.MacroData, fedwatch *marketdata.FedWatchData) (string, error) {
	systemPrompt := `You are a rates strategist writing a compact morning desk note. You will receive current US Treasury yields, curve analysis, macro indicator readings, and Fed rate-decision probabilities.

Your response must follow this exact structure:

**Curve:**
[One or two sentences on curve level and shape]

**Macro:**
[One or two sentences on the latest indicator prints]

**Fed:**
[One sentence on the priced-in decision odds]

**Positioning:**
[One actionable curve trade idea with the risk to it]

Guidelines:
- Be specific with numbers from the data provided
- No disclaimers, no preamble
- Keep the whole note under 150 words`

	resp, err := d.cli.Chat.Completions.New(ctx, oa.ChatCompletionNewParams{
		Model: "gpt-4",
		Messages: []oa.ChatCompletionMessageParamUnion{
			oa.SystemMessage(systemPrompt),
			oa.UserMessage("Write the desk note for this data:\n" + renderSnapshot(rates, macro, fedwatch)),
		},
		MaxTokens: oa.Int(400),
	})
	if err != nil {
		return "", fmt.Errorf("OpenAI API error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty completion")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// renderSnapshot flattens the payloads into prompt text, keeping it
// small: latest readings only, no history.
func renderSnapshot(rates *marketdata.RatesData, macro marketdata.MacroData, fedwatch *marketdata.FedWatchData) string {
	var b strings.Builder

	b.WriteString("Treasury yields:\n")
	for _, p := range rates.YieldCurve {
		fmt.Fprintf(&b, "  %s: %.2f%%\n", p.Maturity, p.Yield)
	}
	fmt.Fprintf(&b, "2s10s: %.2f, 5s30s: %.2f, shape: %s\n",
		rates.Analysis.Spread2s10s, rates.Analysis.Spread5s30s, rates.Analysis.CurveShape)

	if len(macro) > 0 {
		b.WriteString("Macro (latest, change vs prior):\n")
		names := make([]string, 0, len(macro))
		for name := range macro {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			ind := macro[name]
			fmt.Fprintf(&b, "  %s: %.2f (%+.2f%%) as of %s\n", name, ind.Current, ind.Change, ind.LatestDate)
		}
	}

	if fedwatch != nil {
		fmt.Fprintf(&b, "Fed: next meeting %s, most likely target %s bps at %.1f%% (%s)\n",
			fedwatch.NextMeetingDate, fedwatch.MostLikelyChange, fedwatch.MostLikelyProbability, fedwatch.Source)
	}
	return b.String()
}
