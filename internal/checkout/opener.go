package checkout

import (
	"context"

	"github.com/rs/zerolog/log"
)

// Opener hands the order link to the messaging app. There is no confirmation that the
// message was actually sent.
type Opener interface {
	Open(ctx context.Context, link string) error
}

// LogOpener only records the link. The HTTP client receives it in the receipt and opens it itself.
type LogOpener struct{}

func (LogOpener) Open(ctx context.Context, link string) error {
	log.Info().Str("link", link).Msg("order link ready for hand-off")
	return nil
}
