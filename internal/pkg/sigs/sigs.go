package sigs

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
)

// InitSignals returns a context cancelled on SIGTERM or SIGINT so a scan
// stops cleanly between journal files.
func InitSignals() context.Context {
	return handleKill(context.Background(), syscall.SIGTERM, syscall.SIGINT)
}

func handleKill(ctx context.Context, sigs ...os.Signal) context.Context {
	ctx, cfunc := context.WithCancel(ctx)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, sigs...)

	go func() {
		defer signal.Stop(sigCh)

		select {
		case s := <-sigCh:
			log.Info().
				Str("signal", s.String()).
				Msg("Signal received")
			cfunc()
		case <-ctx.Done():
			log.Info().
				Err(ctx.Err()).
				Msg("Exit signal handler on ctx.Done()")
		}
	}()

	return ctx
}
