package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/quicpoll/quicpoll/adapter"
	"github.com/quicpoll/quicpoll/config"
	"github.com/quicpoll/quicpoll/poll"
	"github.com/quicpoll/quicpoll/transport"
	quictransport "github.com/quicpoll/quicpoll/transport/quic"
	"github.com/quicpoll/quicpoll/utils/certs"
)

var (
	serveAddr   string
	metricsAddr string
	certDir     string

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Run a poll-driven echo server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}
)

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "127.0.0.1:8448", "QUIC listen address")
	serveCmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Prometheus endpoint address (disabled when empty)")
	serveCmd.Flags().StringVar(&certDir, "cert-dir", "", "Directory for the self-signed certificate (in-memory when empty)")
}

func runServe(ctx context.Context) error {
	cm := certs.NewSelfSignedCertManager("quicpoll", certDir)
	tlsConf, err := cm.GetTLSConfig()
	if err != nil {
		return fmt.Errorf("could not build TLS config: %w", err)
	}
	if hash, err := cm.GetCertHash(); err == nil {
		log.Info().Msgf("serving with cert hash: %X", hash)
	}

	ln, err := quictransport.Listen(&config.Server{Address: serveAddr, TLSConfig: tlsConf})
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	metrics := adapter.NewMetrics(reg)

	var g errgroup.Group

	if metricsAddr != "" {
		srv := &http.Server{Addr: metricsAddr, Handler: promhttp.HandlerFor(reg, promhttp.HandlerOpts{})}
		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, stop := context.WithTimeout(context.Background(), config.ShutdownTimeout)
			defer stop()
			return srv.Shutdown(shutdownCtx)
		})
		g.Go(func() error {
			log.Info().Str("addr", metricsAddr).Msg("metrics endpoint started")
			if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
	}

	g.Go(func() error {
		<-ctx.Done()
		log.Info().Msg("shutting down listener")
		return ln.Close()
	})

	g.Go(func() error {
		for {
			conn, err := ln.Accept(ctx)
			if err != nil {
				if quictransport.IsClosedError(err) {
					log.Info().Msg("listener closed")
					return nil
				}
				log.Error().Err(err).Msg("failed to accept connection")
				continue
			}
			go handleConn(ctx, conn, metrics)
		}
	})

	return g.Wait()
}

func handleConn(ctx context.Context, conn *quictransport.Conn, m *adapter.Metrics) {
	ac := adapter.NewConnection(conn, adapter.WithMetrics(m))
	defer ac.Close(transport.NoError, "server closing down")

	for {
		stream, err := poll.Wait(ctx, ac.PollAcceptBidiStream)
		if err != nil {
			if errors.Is(err, io.EOF) || quictransport.IsClosedError(err) {
				log.Info().Msg("connection closed")
			} else {
				log.Error().Err(err).Msg("failed to accept stream")
			}
			return
		}
		go echo(ctx, stream)
	}
}

// echo drives a single stream: every chunk read in cursor order is written
// straight back, then the send half is finished.
func echo(ctx context.Context, stream *adapter.BidiStream) {
	send, recv := stream.Split()

	for {
		data, err := poll.Wait(ctx, recv.PollData)
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			log.Error().Err(err).Msg("stream read failed")
			send.Reset(transport.ErrorCode(1))
			return
		}
		if len(data) == 0 {
			continue
		}

		if err := send.SendData(data); err != nil {
			log.Error().Err(err).Msg("could not queue echo")
			return
		}
		if err := poll.WaitReady(ctx, send.PollReady); err != nil {
			log.Error().Err(err).Msg("stream write failed")
			return
		}
	}

	if err := poll.WaitReady(ctx, send.PollFinish); err != nil {
		log.Debug().Err(err).Msg("stream finish failed")
	}
}
