package authentication

import (
	"fmt"
	"os"

	"github.com/go-gomail/gomail"
)

// EmailSender delivers passcodes over SMTP.
type EmailSender struct{}

// SendCode emails the verification code to the given address.
func (EmailSender) SendCode(email, code string) error {
	senderEmail := os.Getenv("Email")
	senderPassword := os.Getenv("Password")

	m := gomail.NewMessage()
	m.SetHeader("From", senderEmail)
	m.SetHeader("To", email)
	m.SetHeader("Subject", "BloodSetu - Email Verification Code")
	m.SetBody("text/plain", fmt.Sprintf("Your verification code is %s. It will expire in 60 seconds.", code))

	d := gomail.NewDialer("smtp.gmail.com", 587, senderEmail, senderPassword)
	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("error sending email: %v", err)
	}

	return nil
}
