package main

import (
	"context"
	"errors"
	"io"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/quicpoll/quicpoll/adapter"
	"github.com/quicpoll/quicpoll/config"
	"github.com/quicpoll/quicpoll/poll"
	"github.com/quicpoll/quicpoll/transport"
	quictransport "github.com/quicpoll/quicpoll/transport/quic"
)

var (
	dialAddr   string
	serverName string
	caFile     string
	insecure   bool
	message    string

	dialCmd = &cobra.Command{
		Use:   "dial",
		Short: "Send a message to an echo server and print the reply",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDial(cmd.Context())
		},
	}
)

func init() {
	dialCmd.Flags().StringVar(&dialAddr, "addr", "127.0.0.1:8448", "server address")
	dialCmd.Flags().StringVar(&serverName, "server-name", "quicpoll", "TLS server name")
	dialCmd.Flags().StringVar(&caFile, "ca-file", "", "PEM file with the server certificate authority")
	dialCmd.Flags().BoolVar(&insecure, "insecure", false, "skip server certificate verification")
	dialCmd.Flags().StringVar(&message, "message", "ping", "message to send")
}

func runDial(ctx context.Context) error {
	conn, err := quictransport.Dial(ctx, &config.Dialer{
		Address: dialAddr,
		TLSConfig: config.TLSConfig{
			ServerName:         serverName,
			CertFile:           caFile,
			InsecureSkipVerify: insecure,
		},
	})
	if err != nil {
		return err
	}

	ac := adapter.NewConnection(conn)
	defer ac.Close(transport.NoError, "client closing down")

	stream, err := poll.Wait(ctx, ac.PollOpenBidiStream)
	if err != nil {
		return err
	}
	send, recv := stream.Split()

	if err := send.SendData([]byte(message)); err != nil {
		return err
	}
	if err := poll.WaitReady(ctx, send.PollReady); err != nil {
		return err
	}
	if err := poll.WaitReady(ctx, send.PollFinish); err != nil {
		return err
	}

	var reply []byte
	for {
		data, err := poll.Wait(ctx, recv.PollData)
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return err
		}
		reply = append(reply, data...)
	}

	log.Info().Str("reply", string(reply)).Msg("echo received")
	return nil
}
