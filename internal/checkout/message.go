package checkout

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/Roshan7869/Didi-ki-rasoi/internal/cart"
	"github.com/Roshan7869/Didi-ki-rasoi/internal/config"
)

const timestampLayout = "02 Jan 2006, 03:04 PM"

// Composer renders a cart as the plain-text order message and wraps it in the messaging deep link.
type Composer struct {
	cfg config.OrderConfig
	loc *time.Location
}

// NewComposer formats timestamps in loc; a nil loc means UTC.
func NewComposer(cfg config.OrderConfig, loc *time.Location) *Composer {
	if loc == nil {
		loc = time.UTC
	}
	return &Composer{cfg: cfg, loc: loc}
}

func (c *Composer) Message(summary cart.Summary, at time.Time) string {
	var b strings.Builder

	fmt.Fprintf(&b, "🍽️ *%s*\n\n", c.cfg.Title)
	for _, line := range summary.Lines {
		fmt.Fprintf(&b, "%s x%d - %s%d\n", line.DisplayName(), line.Quantity, c.cfg.Currency, line.Total())
	}
	fmt.Fprintf(&b, "\n*Total: %s%d*\n", c.cfg.Currency, summary.TotalPrice)
	fmt.Fprintf(&b, "Estimated time: %d minutes\n", summary.EstimatedMinutes)
	fmt.Fprintf(&b, "Ordered at: %s\n", at.In(c.loc).Format(timestampLayout))
	fmt.Fprintf(&b, "Deliver to: %s\n", c.cfg.Location)
	b.WriteString("\nPlease confirm my order. Thank you!")

	return b.String()
}

// Link returns <base>/<phone>?text=<message>, percent-encoding spaces as %20.
func (c *Composer) Link(message string) string {
	text := strings.ReplaceAll(url.QueryEscape(message), "+", "%20")
	return fmt.Sprintf("%s/%s?text=%s", strings.TrimSuffix(c.cfg.MessagingBaseURL, "/"), c.cfg.Phone, text)
}
