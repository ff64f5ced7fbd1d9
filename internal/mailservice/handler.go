package mailservice

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sushihentaime/blogsite/internal/commentservice"
	"github.com/sushihentaime/blogsite/internal/common"
	"golang.org/x/exp/rand"
)

const (
	commentNotificationTemplate = "comment_notification.html"

	maxRetries       = 5
	defaultBaseDelay = 500 * time.Millisecond
)

func NewMailService(mb common.MessageConsumer, host, username, password, sender string, port int, logger *slog.Logger) (*MailService, error) {
	tp, err := NewTemplate()
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &MailService{
		mb:        mb,
		m:         NewMailer(host, port, username, password, sender, tp),
		logger:    logger,
		ctx:       ctx,
		cancel:    cancel,
		baseDelay: defaultBaseDelay,
	}, nil
}

// SendCommentNotifications consumes comment.created events and emails the
// owner of the commented blog. It returns once the consumer is running.
func (s *MailService) SendCommentNotifications() {
	msgs, err := s.mb.Consume(common.CommentCreatedKey, common.BlogExchange, common.CommentCreatedQueue)
	if err != nil {
		s.logger.Error("could not consume message", slog.String("error", err.Error()))
		return
	}

	go func() {
		for {
			select {
			case msg, ok := <-msgs:
				if !ok {
					return
				}

				s.handleCommentCreated(msg)

			case <-s.ctx.Done():
				s.logger.Info("stopping SendCommentNotifications due to context cancellation")
				return
			}
		}
	}()
}

func (s *MailService) handleCommentCreated(msg amqp.Delivery) {
	var event commentservice.CommentCreated

	err := json.Unmarshal(msg.Body, &event)
	if err != nil {
		s.logger.Error("could not unmarshal message", slog.String("error", err.Error()))
		msg.Ack(false)
		return
	}

	body, _ := event.Comment.String("comment")

	payload := struct {
		BlogID    string
		BlogTitle string
		CommentID string
		Comment   string
	}{
		BlogID:    event.BlogID,
		BlogTitle: event.BlogTitle,
		CommentID: event.CommentID,
		Comment:   body,
	}

	// exponential backoff with jitter
	for attempt := 0; attempt < maxRetries; attempt++ {
		err = s.m.send(event.OwnerEmail, payload, commentNotificationTemplate)
		if err == nil {
			s.logger.Info("comment notification sent", slog.String("email", event.OwnerEmail))
			msg.Ack(false)
			return
		}

		delay := time.Duration(rand.Int63n(int64(s.baseDelay) << uint(attempt)))
		s.logger.Info("delaying comment notification", slog.String("email", event.OwnerEmail), slog.Int("attempt", attempt), slog.Duration("delay", delay))

		select {
		case <-time.After(delay):
		case <-s.ctx.Done():
			return
		}
	}

	s.logger.Error("could not send comment notification", slog.String("email", event.OwnerEmail), slog.String("error", err.Error()))
	msg.Ack(false)
}

func (s *MailService) Close() {
	s.cancel()
}
