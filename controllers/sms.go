package controllers

import (
	"fmt"
	"os"

	"github.com/twilio/twilio-go"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"
)

// SendSMS delivers a short text to the given phone number via Twilio.
// Used for urgent blood request notifications.
func SendSMS(phone, message string) error {
	accountSID := os.Getenv("TWILIO_ACCOUNT_SID")
	authToken := os.Getenv("TWILIO_AUTHTOKEN")
	from := os.Getenv("TWILIO_PHONENUMBER")

	if accountSID == "" || authToken == "" || from == "" {
		return fmt.Errorf("twilio configuration missing")
	}

	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})

	params := &openapi.CreateMessageParams{}
	params.SetTo(phone)
	params.SetFrom(from)
	params.SetBody(message)

	_, err := client.Api.CreateMessage(params)
	return err
}
