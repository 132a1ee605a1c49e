package telegram

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"ratesdash/internal/marketdata"
	"ratesdash/internal/risk"
)

var (
	reRates    = regexp.MustCompile(`^/rates(?:@[\w_]+)?$`)
	reMacro    = regexp.MustCompile(`^/macro(?:@[\w_]+)?$`)
	reFedwatch = regexp.MustCompile(`^/fedwatch(?:@[\w_]+)?$`)
	// /pnl MATURITY NOTIONAL_MM BPS, e.g. "/pnl 10Y 10 25" = $10M 10Y, +25bp
	rePNL  = regexp.MustCompile(`^/pnl(?:@[\w_]+)?\s+(\S+)\s+(\d+(?:\.\d+)?)\s+(-?\d+(?:\.\d+)?)$`)
	reHelp = regexp.MustCompile(`^/(help|start)(?:@[\w_]+)?$`)
)

type Handlers struct {
	api *tgbotapi.BotAPI
	svc *marketdata.Service
}

func NewHandlers(api *tgbotapi.BotAPI, svc *marketdata.Service) *Handlers {
	return &Handlers{api: api, svc: svc}
}

func (h *Handlers) HandleMessage(m *tgbotapi.Message) {
	txt := strings.TrimSpace(m.Text)
	switch {
	case reRates.MatchString(txt):
		h.handleRates(m.Chat.ID)
	case reMacro.MatchString(txt):
		h.handleMacro(m.Chat.ID)
	case reFedwatch.MatchString(txt):
		h.handleFedWatch(m.Chat.ID)
	case rePNL.MatchString(txt):
		g := rePNL.FindStringSubmatch(txt)
		h.handlePNL(m.Chat.ID, g[1], g[2], g[3])
	case reHelp.MatchString(txt):
		h.handleHelp(m.Chat.ID)
	}
}

func (h *Handlers) handleRates(chatID int64) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	data, err := h.svc.Rates(ctx)
	if err != nil {
		h.reply(chatID, "Could not fetch rates: "+err.Error())
		return
	}
	var b strings.Builder
	b.WriteString("US Treasury yields\n")
	for _, p := range data.YieldCurve {
		fmt.Fprintf(&b, "%s  %.2f%%\n", p.Maturity, p.Yield)
	}
	fmt.Fprintf(&b, "\n2s10s %.2f | 5s30s %.2f | %s\n%s",
		data.Analysis.Spread2s10s, data.Analysis.Spread5s30s, data.Analysis.CurveShape, data.Analysis.TradePitch)
	h.reply(chatID, b.String())
}

func (h *Handlers) handleMacro(chatID int64) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	data, err := h.svc.Macro(ctx)
	if err != nil {
		h.reply(chatID, "Could not fetch macro data: "+err.Error())
		return
	}
	names := make([]string, 0, len(data))
	for name := range data {
		names = append(names, name)
	}
	sort.Strings(names)
	var b strings.Builder
	b.WriteString("Macro indicators\n")
	for _, name := range names {
		ind := data[name]
		fmt.Fprintf(&b, "%s: %.2f (%+.2f%%) as of %s\n", name, ind.Current, ind.Change, ind.LatestDate)
	}
	h.reply(chatID, b.String())
}

func (h *Handlers) handleFedWatch(chatID int64) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	data, err := h.svc.FedWatch(ctx)
	if err != nil {
		h.reply(chatID, "Could not fetch FedWatch data: "+err.Error())
		return
	}
	ranges := make([]string, 0, len(data.TargetRateProbabilities))
	for r := range data.TargetRateProbabilities {
		ranges = append(ranges, r)
	}
	sort.Strings(ranges)
	var b strings.Builder
	fmt.Fprintf(&b, "FOMC %s (%s)\n", data.NextMeetingDate, data.Source)
	for _, r := range ranges {
		fmt.Fprintf(&b, "%s bps: %.1f%%\n", r, data.TargetRateProbabilities[r])
	}
	fmt.Fprintf(&b, "Most likely: %s (%.1f%%)", data.MostLikelyChange, data.MostLikelyProbability)
	h.reply(chatID, b.String())
}

// handlePNL prices a what-if move off the live curve: notional in $MM,
// move in basis points.
func (h *Handlers) handlePNL(chatID int64, maturity, notionalMM, bps string) {
	maturity = strings.ToUpper(maturity)
	mm, err := strconv.ParseFloat(notionalMM, 64)
	if err != nil || mm <= 0 {
		h.reply(chatID, "Usage: /pnl MATURITY NOTIONAL_MM BPS (e.g. /pnl 10Y 10 25)")
		return
	}
	move, err := strconv.ParseFloat(bps, 64)
	if err != nil {
		h.reply(chatID, "Usage: /pnl MATURITY NOTIONAL_MM BPS (e.g. /pnl 10Y 10 25)")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	data, err := h.svc.Rates(ctx)
	if err != nil {
		h.reply(chatID, "Could not fetch the curve: "+err.Error())
		return
	}

	notional := mm * 1_000_000
	overlay := risk.NewOverlay(data.YieldCurve)
	y0, ok := data.YieldCurve.Yield(maturity)
	if !ok {
		h.reply(chatID, fmt.Sprintf("No %s point on the curve right now.", maturity))
		return
	}
	if !risk.ValidYield(y0 + move/100) {
		h.reply(chatID, "That move takes the yield out of range.")
		return
	}
	overlay.Set(maturity, y0+move/100)
	pnl := risk.PositionPNL(data.YieldCurve, overlay, maturity, notional)

	h.reply(chatID, fmt.Sprintf("$%sM long %s, %+.0f bps: PNL %s",
		humanize.Commaf(mm), maturity, move, formatSignedDollars(pnl)))
}

func (h *Handlers) handleHelp(chatID int64) {
	h.reply(chatID, strings.Join([]string{
		"/rates - Treasury yield curve and spreads",
		"/macro - latest macro indicator prints",
		"/fedwatch - FOMC decision probabilities",
		"/pnl MATURITY NOTIONAL_MM BPS - what-if PNL (e.g. /pnl 10Y 10 25)",
	}, "\n"))
}

func (h *Handlers) reply(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := h.api.Send(msg); err != nil {
		log.Println("telegram: send error:", err)
	}
}

func formatSignedDollars(x float64) string {
	if x < 0 {
		return "-$" + humanize.FormatFloat("#,###.##", -x)
	}
	return "+$" + humanize.FormatFloat("#,###.##", x)
}
