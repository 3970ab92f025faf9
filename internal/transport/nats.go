package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/avvvet/companion/internal/handlers"
	"github.com/avvvet/companion/internal/models"
	"github.com/avvvet/companion/internal/prompts"
	"github.com/nats-io/nats.go"
	log "github.com/sirupsen/logrus"
)

// ChatHandler answers one inbound chat message.
type ChatHandler interface {
	HandleChat(ctx context.Context, req *models.ChatRequest) (*models.ChatResponse, error)
}

// Options configure the NATS request/reply transport.
type Options struct {
	URL     string
	Name    string
	Subject string
	// Timeout bounds connecting and each handled request.
	Timeout time.Duration
}

type NATSTransport struct {
	conn    *nats.Conn
	sub     *nats.Subscription
	opts    Options
	handler ChatHandler
}

// errorResponse is sent when a request cannot be parsed or validated.
type errorResponse struct {
	UserID string `json:"user_id,omitempty"`
	Reply  string `json:"reply"`
	Error  string `json:"error"`
}

func NewNATSTransport(opts Options, handler ChatHandler) (*NATSTransport, error) {
	conn, err := nats.Connect(opts.URL,
		nats.Name(opts.Name),
		nats.Timeout(opts.Timeout),
		nats.ReconnectWait(2*time.Second),
		nats.MaxReconnects(-1), // Infinite reconnects
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				log.WithError(err).Warn("NATS disconnected")
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			log.Infof("NATS reconnected to %s", c.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	log.Infof("📡 Connected to NATS server: %s", opts.URL)

	return &NATSTransport{
		conn:    conn,
		opts:    opts,
		handler: handler,
	}, nil
}

func (nt *NATSTransport) Start() error {
	sub, err := nt.conn.Subscribe(nt.opts.Subject, nt.handleChatRequest)
	if err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", nt.opts.Subject, err)
	}
	nt.sub = sub

	log.Infof("👂 Subscribed to subject: %s", nt.opts.Subject)
	return nil
}

func (nt *NATSTransport) handleChatRequest(msg *nats.Msg) {
	ctx, cancel := context.WithTimeout(context.Background(), nt.opts.Timeout)
	defer cancel()

	if err := msg.Respond(handleMessage(ctx, nt.handler, msg.Data)); err != nil {
		log.WithError(err).Error("failed to send response")
	}
}

// handleMessage decodes one request payload, dispatches it and encodes the
// reply. It always returns a payload to respond with.
func handleMessage(ctx context.Context, handler ChatHandler, data []byte) []byte {
	var request models.ChatRequest
	if err := json.Unmarshal(data, &request); err != nil {
		log.WithError(err).Warn("error parsing chat request")
		return encodeError(&request, "invalid request format")
	}

	log.WithField("user_id", request.UserID).Debug("processing chat request")

	response, err := handler.HandleChat(handlers.WithTransport(ctx, "nats"), &request)
	if err != nil {
		log.WithError(err).WithField("user_id", request.UserID).Warn("rejected chat request")
		return encodeError(&request, err.Error())
	}

	payload, err := json.Marshal(response)
	if err != nil {
		log.WithError(err).Error("failed to marshal response")
		return encodeError(&request, "internal error")
	}
	return payload
}

func encodeError(request *models.ChatRequest, message string) []byte {
	payload, _ := json.Marshal(errorResponse{
		UserID: request.UserID,
		Reply:  prompts.ErrorReply,
		Error:  message,
	})
	return payload
}

func (nt *NATSTransport) Close() error {
	if nt.sub != nil {
		if err := nt.sub.Drain(); err != nil {
			log.WithError(err).Warn("failed to drain subscription")
		}
	}
	if nt.conn != nil {
		nt.conn.Close()
		log.Info("NATS connection closed")
	}
	return nil
}
