package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mailfred-go/mailfred"
	"github.com/mailfred-go/mailfred/transports/imap"
	"github.com/mailfred-go/mailfred/transports/smtp"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Watch the inbox and answer requests over email",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !viper.InConfig("imap") || !viper.InConfig("smtp") {
			return fmt.Errorf(`configuration missing or incomplete

config.yaml must be present in the current directory and contain an
"imap:" section (server, port, username, password, folder) and an
"smtp:" section (server, port, username, password, security)`)
		}

		connector := mailfred.Pair{In: imapTransport(), Out: smtpTransport()}

		slog.Info("starting serve")
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return mailfred.Serve(ctx, connector, demoState{}, demoRouter())
	},
}

func imapTransport() imap.Imap {
	return imap.Imap{
		Domain:   viper.GetString("imap.server"),
		Port:     viper.GetInt("imap.port"),
		User:     viper.GetString("imap.username"),
		Password: viper.GetString("imap.password"),
		Folder:   viper.GetString("imap.folder"),
	}
}

func smtpTransport() smtp.Smtp {
	sec := smtp.StartTLS
	switch viper.GetString("smtp.security") {
	case "ssl":
		sec = smtp.SSL
	case "insecure":
		sec = smtp.Insecure
	}

	return smtp.Smtp{
		Server:   viper.GetString("smtp.server"),
		Port:     viper.GetInt("smtp.port"),
		User:     viper.GetString("smtp.username"),
		Password: viper.GetString("smtp.password"),
		Security: sec,
	}
}

// demoState is the shared state handed to every route. The CLI's built-in
// routes don't need anything from it; it exists to show callers embedding
// this module how Service[S] threads their own dependencies through.
type demoState struct{}

// demoRouter wires the two example routes the CLI ships: "count" replies
// with the number of words in the request body, "echo" mirrors it back.
// Real deployments are expected to build their own Router against the
// mailfred library directly rather than extend this one.
func demoRouter() *mailfred.Router[demoState] {
	r := mailfred.NewRouter[demoState]()
	r.Layer(mailfred.LowercaseHeader{})
	r.Layer(mailfred.ErrorHeader{Header: "ERROR"})
	r.Route(mailfred.Exact("count"), mailfred.Handle(countWords))
	r.Route(mailfred.Exact("echo"), mailfred.Handle(echoBack))
	r.Route(mailfred.AnyFilter{}, mailfred.Handle(unknownCommand))
	return r
}

func countWords(_ context.Context, _ demoState, req mailfred.Request) (any, error) {
	n := 0
	for _, part := range req.Body {
		if part.Kind == mailfred.Text {
			n += len(strings.Fields(string(part.Content)))
		}
	}
	return fmt.Sprintf("%d", n), nil
}

func echoBack(_ context.Context, _ demoState, req mailfred.Request) (any, error) {
	return mailfred.ResponseBody(req.Body), nil
}

func unknownCommand(_ context.Context, _ demoState, req mailfred.Request) (any, error) {
	return nil, mailfred.UserErrorFrom(fmt.Errorf("unknown command %q", req.Header))
}
