package common

import (
	"errors"
	"fmt"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"

	"yinbot/service"
)

// BotError represents a structured error with user-facing and internal messages
type BotError struct {
	UserMessage string      // Message shown to Discord user
	LogMessage  string      // Internal message for logging
	Ephemeral   bool        // Whether the error message should be ephemeral
	Err         error       // Underlying error
	Context     interface{} // Additional context for logging
}

// Error implements the error interface
func (e *BotError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.LogMessage, e.Err)
	}
	return e.LogMessage
}

// Unwrap returns the underlying error
func (e *BotError) Unwrap() error {
	return e.Err
}

// InternalErrorMessage is shown for every failure the user cannot fix
const InternalErrorMessage = "Internal error, please contact support."

// NewUserError creates an error for user-caused issues (unknown index, bad input, etc)
func NewUserError(userMessage string, logMessage string) *BotError {
	return &BotError{
		UserMessage: userMessage,
		LogMessage:  logMessage,
		Ephemeral:   true,
	}
}

// NewSystemError creates an error for system issues (database, unexpected state, etc)
func NewSystemError(err error, logMessage string) *BotError {
	return &BotError{
		UserMessage: InternalErrorMessage,
		LogMessage:  logMessage,
		Ephemeral:   true,
		Err:         err,
	}
}

// FromServiceError classifies a service error. Not found and invalid input
// are shown to the user as is, everything else becomes a system error.
func FromServiceError(err error, userMessage, logMessage string) *BotError {
	if errors.Is(err, service.ErrNotFound) || errors.Is(err, service.ErrInvalidArgument) {
		botErr := NewUserError(userMessage, logMessage)
		botErr.Err = err
		return botErr
	}
	return NewSystemError(err, logMessage)
}

// RespondWithError sends an error message as an interaction response
func RespondWithError(s *discordgo.Session, i *discordgo.InteractionCreate, message string) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: fmt.Sprintf("❌ %s", message),
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		log.Errorf("Error sending error response: %v", err)
	}
}

// HandleError logs err and answers the interaction with its user message
func HandleError(s *discordgo.Session, i *discordgo.InteractionCreate, err error) {
	var botErr *BotError
	if !errors.As(err, &botErr) {
		botErr = NewSystemError(err, "unclassified error")
	}

	entry := log.WithFields(log.Fields{
		"guild_id": i.GuildID,
		"context":  botErr.Context,
	})
	if botErr.Err != nil {
		entry = entry.WithError(botErr.Err)
	}
	if botErr.UserMessage == InternalErrorMessage {
		entry.Error(botErr.LogMessage)
	} else {
		entry.Debug(botErr.LogMessage)
	}

	RespondWithError(s, i, botErr.UserMessage)
}
