package controllers

import (
	"fmt"
	"io"
	"os"

	"github.com/go-gomail/gomail"
)

// SendEmail sends a plain-text email with an optional attachment.
func SendEmail(msg, subject, email, attachmentName string, attachmentData []byte) error {
	senderEmail := os.Getenv("Email")
	senderPassword := os.Getenv("Password")

	m := gomail.NewMessage()
	m.SetHeader("From", senderEmail)
	m.SetHeader("To", email)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", msg)

	if attachmentName != "" && attachmentData != nil {
		m.Attach(attachmentName, gomail.SetCopyFunc(func(w io.Writer) error {
			_, err := w.Write(attachmentData)
			return err
		}))
	}

	d := gomail.NewDialer("smtp.gmail.com", 587, senderEmail, senderPassword)
	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("error sending email: %v", err)
	}

	return nil
}
