package email

import (
	"fmt"
	"net/smtp"

	"github.com/example/marketplace/internal/domain/order"
)

// Service handles email sending via SMTP.
type Service struct {
	host string
	port string
	from string
}

func NewService(host, port, from string) *Service {
	return &Service{
		host: host,
		port: port,
		from: from,
	}
}

// SendOrderConfirmation sends an order confirmation email after checkout.
func (s *Service) SendOrderConfirmation(to string, orderID string, totalAmount float64, items []order.OrderItem) error {
	subject := fmt.Sprintf("Order confirmation %s", shortOrderID(orderID))
	body := BuildOrderConfirmationBody(orderID, totalAmount, items)
	return s.send(to, subject, body)
}

// SendStatusUpdate notifies the buyer that their order moved to a new
// status.
func (s *Service) SendStatusUpdate(to string, orderID string, status order.Status) error {
	subject := fmt.Sprintf("Order %s update: %s", shortOrderID(orderID), status)
	body := BuildStatusUpdateBody(orderID, status)
	return s.send(to, subject, body)
}

func (s *Service) send(to, subject, body string) error {
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=UTF-8\r\n\r\n%s",
		s.from, to, subject, body)
	addr := fmt.Sprintf("%s:%s", s.host, s.port)
	return smtp.SendMail(addr, nil, s.from, []string{to}, []byte(msg))
}

func shortOrderID(orderID string) string {
	if len(orderID) > 8 {
		return orderID[:8]
	}
	return orderID
}
