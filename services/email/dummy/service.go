package dummymail

import (
	"log"

	"github.com/esirbde/skisatiresa/core"
)

// Service records rendered messages instead of delivering them; tests assert
// on SentMessages.
type Service struct {
	SentMessages []core.EmailMessage
}

var _ core.EmailService = (*Service)(nil)

func NewService() *Service {
	return &Service{SentMessages: make([]core.EmailMessage, 0)}
}

func (svc *Service) SendMessages(messages ...*core.EmailMessage) {
	for _, msg := range messages {
		if err := msg.Render(); err != nil {
			log.Printf("rendering email: %v", err)
			continue
		}
		if msg.HasRecipients() {
			svc.SentMessages = append(svc.SentMessages, *msg)
		}
	}
}

func (svc *Service) Reset() {
	svc.SentMessages = svc.SentMessages[:0]
}
