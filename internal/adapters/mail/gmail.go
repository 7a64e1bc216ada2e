// Package mail delivers layout workbooks to treasury through the Gmail API.
package mail

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	portssvc "github.com/mbco-platform/netcash-backend/internal/core/ports/services"
)

// GmailMailer sends mail as a fixed sender account using OAuth user
// credentials obtained out of band.
type GmailMailer struct {
	service *gmail.Service
	sender  string
}

// NewGmailMailer builds the Gmail client from the OAuth client credentials
// and a previously authorized user token, both as raw JSON.
func NewGmailMailer(ctx context.Context, credentialsJSON, tokenJSON []byte, sender string) (*GmailMailer, error) {
	oauthCfg, err := google.ConfigFromJSON(credentialsJSON, gmail.GmailSendScope)
	if err != nil {
		return nil, fmt.Errorf("failed to parse gmail credentials: %w", err)
	}

	if len(tokenJSON) == 0 {
		return nil, fmt.Errorf("gmail token is empty; run the authorization flow first")
	}
	token := &oauth2.Token{}
	if err := json.Unmarshal(tokenJSON, token); err != nil {
		return nil, fmt.Errorf("failed to parse gmail token: %w", err)
	}

	service, err := gmail.NewService(ctx, option.WithHTTPClient(oauthCfg.Client(ctx, token)))
	if err != nil {
		return nil, fmt.Errorf("failed to build gmail service: %w", err)
	}
	return &GmailMailer{service: service, sender: sender}, nil
}

var _ portssvc.Mailer = (*GmailMailer)(nil)

func (m *GmailMailer) SendWithAttachment(ctx context.Context, to, subject, body, attachmentName string, attachment []byte) error {
	raw := buildMIMEMessage(m.sender, to, subject, body, attachmentName, attachment)
	msg := &gmail.Message{Raw: base64.URLEncoding.EncodeToString([]byte(raw))}

	if _, err := m.service.Users.Messages.Send("me", msg).Context(ctx).Do(); err != nil {
		return fmt.Errorf("gmail send failed: %w", err)
	}
	return nil
}

// buildMIMEMessage assembles a multipart/mixed RFC 2822 message with a single
// base64 attachment.
func buildMIMEMessage(from, to, subject, body, attachmentName string, attachment []byte) string {
	const boundary = "netcash-layout-boundary"

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&b, "Content-Type: multipart/mixed; boundary=%q\r\n\r\n", boundary)

	fmt.Fprintf(&b, "--%s\r\n", boundary)
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n\r\n")
	b.WriteString(body)
	b.WriteString("\r\n\r\n")

	fmt.Fprintf(&b, "--%s\r\n", boundary)
	b.WriteString("Content-Type: application/vnd.openxmlformats-officedocument.spreadsheetml.sheet\r\n")
	b.WriteString("Content-Transfer-Encoding: base64\r\n")
	fmt.Fprintf(&b, "Content-Disposition: attachment; filename=%q\r\n\r\n", attachmentName)

	encoded := base64.StdEncoding.EncodeToString(attachment)
	for len(encoded) > 76 {
		b.WriteString(encoded[:76])
		b.WriteString("\r\n")
		encoded = encoded[76:]
	}
	b.WriteString(encoded)
	fmt.Fprintf(&b, "\r\n--%s--\r\n", boundary)

	return b.String()
}
