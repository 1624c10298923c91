package cli

import (
	"github.com/AlecAivazis/survey/v2"

	"github.com/dyike/quantdesk/internal/api"
)

// promptLogin fills in whichever credentials were not supplied as
// flags.
func promptLogin(username, password string) (string, string, error) {
	if username == "" {
		prompt := &survey.Input{Message: "Username:"}
		if err := survey.AskOne(prompt, &username, survey.WithValidator(survey.Required)); err != nil {
			return "", "", err
		}
	}
	if password == "" {
		prompt := &survey.Password{Message: "Password:"}
		if err := survey.AskOne(prompt, &password, survey.WithValidator(survey.Required)); err != nil {
			return "", "", err
		}
	}
	return username, password, nil
}

func userMessage(err error) string {
	if msg := api.UserMessage(err); msg != "" {
		return msg
	}
	return err.Error()
}
