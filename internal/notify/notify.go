/*
Package notify reports the run's open tenders on the console and, when SMTP
settings are complete, emails a plain-text digest.
*/
package notify

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	gomail "gopkg.in/mail.v2"

	"github.com/jcondori/convoscraper/internal/types"
)

type EmailConfig struct {
	SMTPServer string
	SMTPPort   int
	SMTPUser   string
	SMTPPass   string
	FromEmail  string
	ToEmail    string
	Enabled    bool
}

// Report prints an end-of-run summary of the snapshot.
func Report(snap types.Snapshot, outputPath string) {
	fmt.Println("\n===========================================")
	fmt.Printf("%d CONVOCATORIAS VIGENTES\n", snap.Metadata.Total)
	fmt.Println("===========================================")

	for i, ann := range snap.Announcements {
		fmt.Printf("\n--- #%d ---\n", i+1)
		fmt.Print(formatAnnouncement(ann))
	}

	fmt.Println("\n===========================================")
	fmt.Printf("Snapshot written to %s.\n", outputPath)
	fmt.Println("===========================================")
}

// EmailDigest sends the whole snapshot as one message.
func EmailDigest(snap types.Snapshot, cfg EmailConfig, log *zap.SugaredLogger) {
	if !cfg.Enabled {
		return
	}
	log.Infow("emailing digest", "smtp", fmt.Sprintf("%s:%d", cfg.SMTPServer, cfg.SMTPPort), "to", cfg.ToEmail)

	var body strings.Builder
	body.WriteString(fmt.Sprintf("Convocatorias vigentes: %d\nFuente: %s\nGenerado: %s\n",
		snap.Metadata.Total, snap.Metadata.Source, snap.Metadata.ScrapedAtUTC))
	for i, ann := range snap.Announcements {
		body.WriteString(fmt.Sprintf("\n--- #%d ---\n", i+1))
		body.WriteString(formatAnnouncement(ann))
	}

	message := gomail.NewMessage()
	message.SetHeader("From", cfg.FromEmail)
	message.SetHeader("To", cfg.ToEmail)
	message.SetHeader("Subject", fmt.Sprintf("Convocatorias vigentes: %d abiertas", snap.Metadata.Total))
	message.SetBody("text/plain", body.String())

	dialer := gomail.NewDialer(cfg.SMTPServer, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass)
	dialer.Timeout = 10 * time.Second

	if err := dialer.DialAndSend(message); err != nil {
		log.Errorw("failed to send digest email", "to", cfg.ToEmail, "error", err)
	} else {
		log.Infow("digest email sent", "to", cfg.ToEmail)
	}
}

func formatAnnouncement(ann types.Announcement) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Numero:      %s\n", ann.ReferenceID))
	sb.WriteString(fmt.Sprintf("Descripcion: %s\n", ann.Description))
	sb.WriteString(fmt.Sprintf("Tipo:        %s\n", ann.Category))
	sb.WriteString(fmt.Sprintf("Publicado:   %s\n", ann.PublishedOn))
	deadline := ann.DeadlineDate
	if ann.DeadlineTime != "" {
		deadline += " " + ann.DeadlineTime
	}
	sb.WriteString(fmt.Sprintf("Plazo:       %s\n", deadline))
	if ann.Attachment != nil {
		sb.WriteString(fmt.Sprintf("TDR:         %s\n", ann.Attachment.SourceURL))
		if ann.Attachment.TechnicalBlock != "" {
			sb.WriteString(fmt.Sprintf("Caracteristicas tecnicas (OCR: %t):\n\t%s\n",
				ann.Attachment.UsedOCR, firstLines(ann.Attachment.TechnicalBlock, 5)))
		}
		if ann.Attachment.Summary != nil {
			sb.WriteString("Resumen:\n")
			for _, p := range ann.Attachment.Summary.Points {
				sb.WriteString(fmt.Sprintf("\t- %s\n", p))
			}
		}
	}
	return sb.String()
}

func firstLines(s string, n int) string {
	lines := strings.Split(s, "\n")
	if len(lines) > n {
		lines = append(lines[:n], "...")
	}
	return strings.Join(lines, "\n\t")
}
