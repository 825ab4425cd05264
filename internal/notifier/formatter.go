package notifier

import (
	"fmt"
	"strings"
	"time"

	"github.com/Cedric-Liu/3bros/internal/model"
	"github.com/Cedric-Liu/3bros/internal/signal"
)

// IndexSnapshot is one market index row in the daily report.
type IndexSnapshot struct {
	Name      string
	Price     float64
	ChangePct float64
}

// WatchSignal is one watchlist entry whose analysis produced an
// actionable recommendation.
type WatchSignal struct {
	Code     string
	Name     string
	Price    float64
	Action   model.Action
	Patterns []string
}

// ScanRank is one hot-stock scan hit ranked by its net factor score.
type ScanRank struct {
	Code  string
	Name  string
	Price float64
	Score int
}

// FormatDailyReport builds the Markdown body of the daily push:
// index overview, watchlist signals, then the Top5 hot-stock scan.
// It returns the push title and the body.
func FormatDailyReport(indices []IndexSnapshot, buys, sells []WatchSignal, topBuy, topSell []ScanRank) (string, string) {
	var b strings.Builder

	b.WriteString("## 📊 大盘概况\n\n")
	for _, idx := range indices {
		emoji := "🟢"
		if idx.ChangePct >= 0 {
			emoji = "🔴"
		}
		b.WriteString(fmt.Sprintf("%s **%s** %.2f (%+.2f%%)\n", emoji, idx.Name, idx.Price, idx.ChangePct))
	}
	b.WriteString("\n")

	b.WriteString("## 🔔 自选股信号\n\n")
	if len(buys) == 0 && len(sells) == 0 {
		b.WriteString("今日自选股无明显信号\n")
	} else {
		writeWatchSignals(&b, "**买入/加仓信号:**", "🟢", buys)
		writeWatchSignals(&b, "**卖出/减仓信号:**", "🔴", sells)
	}
	b.WriteString("\n")

	b.WriteString("## 🔥 热门股信号 (Top5)\n\n")
	if len(topBuy) == 0 && len(topSell) == 0 {
		b.WriteString("今日热门股无明显信号\n")
	} else {
		writeScanRanks(&b, "**买入信号 Top5:**", "🟢", topBuy)
		writeScanRanks(&b, "**卖出信号 Top5:**", "🔴", topSell)
	}

	b.WriteString(fmt.Sprintf("\n---\n*推送时间: %s*", time.Now().Format("2006-01-02 15:04")))

	title := fmt.Sprintf("反转三兄弟 - %s 每日信号", time.Now().Format("01/02"))
	return title, b.String()
}

func writeWatchSignals(b *strings.Builder, header, emoji string, signals []WatchSignal) {
	if len(signals) == 0 {
		return
	}
	b.WriteString(header + "\n")
	for _, s := range signals {
		patterns := ""
		if len(s.Patterns) > 0 {
			patterns = " | " + strings.Join(s.Patterns, ", ")
		}
		b.WriteString(fmt.Sprintf("- %s %s %s ¥%.2f - %s%s\n", emoji, s.Code, s.Name, s.Price, s.Action.Label(), patterns))
	}
	b.WriteString("\n")
}

func writeScanRanks(b *strings.Builder, header, emoji string, ranks []ScanRank) {
	if len(ranks) == 0 {
		return
	}
	if len(ranks) > 5 {
		ranks = ranks[:5]
	}
	b.WriteString(header + "\n")
	for i, s := range ranks {
		b.WriteString(fmt.Sprintf("%d. %s %s %s ¥%.2f (+%d分)\n", i+1, emoji, s.Code, s.Name, s.Price, s.Score))
	}
	b.WriteString("\n")
}

// FormatSignalPush builds a push for a batch of detected pattern
// signals, grouped into bullish and bearish sections.
func FormatSignalPush(signals []signal.Signal) (string, string) {
	var bulls, bears []signal.Signal
	for _, s := range signals {
		switch s.Polarity {
		case model.PolarityBullish:
			bulls = append(bulls, s)
		case model.PolarityBearish:
			bears = append(bears, s)
		}
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("**检测时间**: %s\n\n", time.Now().Format("2006-01-02 15:04")))
	writeSignalSection(&b, "## 🟢 买入信号\n\n", bulls)
	writeSignalSection(&b, "## 🔴 卖出信号\n\n", bears)

	title := fmt.Sprintf("反转三兄弟信号 - %d买入/%d卖出", len(bulls), len(bears))
	return title, b.String()
}

func writeSignalSection(b *strings.Builder, header string, signals []signal.Signal) {
	if len(signals) == 0 {
		return
	}
	b.WriteString(header)
	for _, s := range signals {
		b.WriteString(fmt.Sprintf("- **%s %s** | %s | 强度 %.0f%%\n", s.Code, s.Name, s.PatternName, s.Strength*100))
		if len(s.Confirmations) > 0 {
			b.WriteString(fmt.Sprintf("  - 确认: %s\n", strings.Join(s.Confirmations, ", ")))
		}
		b.WriteString(fmt.Sprintf("  - 价格: %.2f\n\n", s.Price))
	}
}
