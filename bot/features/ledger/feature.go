package ledger

import (
	"fmt"

	"github.com/bwmarrin/discordgo"

	"yinbot/bot/common"
	"yinbot/models"
	"yinbot/service"
)

// Feature serves the commands of one ledger: /warn and /warnings for the
// warning ledger, /modaction and /modlog for the moderation ledger
type Feature struct {
	ledger service.LedgerService
	cache  *service.SettingsCache
}

// NewFeature creates a ledger feature bound to one ledger service
func NewFeature(ledger service.LedgerService, cache *service.SettingsCache) *Feature {
	return &Feature{ledger: ledger, cache: cache}
}

// noun is the singular display name of an entry
func (f *Feature) noun() string {
	if f.ledger.Kind() == models.LedgerModeration {
		return "moderation entry"
	}
	return "warning"
}

// HandleCommand routes the mutating subcommands (minor, major, record, edit, remove)
func (f *Feature) HandleCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if err := f.handle(s, i); err != nil {
		common.HandleError(s, i, err)
	}
}

// HandleList answers the listing command for a member
func (f *Feature) HandleList(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if err := f.handleList(s, i); err != nil {
		common.HandleError(s, i, err)
	}
}

func (f *Feature) handle(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	inv, err := common.ParseInvocation(i)
	if err != nil {
		return err
	}
	if err := common.RequireAdmin(s, i); err != nil {
		return err
	}

	sub, opts := common.SubcommandOptions(i)
	userID, err := common.OptionID(opts["user"])
	if err != nil {
		return err
	}

	switch sub {
	case "minor", "major", "record":
		payload, err := PayloadFromOptions(f.ledger.Kind(), sub, opts)
		if err != nil {
			return err
		}
		return f.handleAppend(s, i, inv, userID, payload)

	case "edit":
		payload, err := PayloadFromOptions(f.ledger.Kind(), sub, opts)
		if err != nil {
			return err
		}
		return f.handleEdit(s, i, inv, userID, int(opts["index"].IntValue()), payload)

	case "remove":
		return f.handleRemove(s, i, inv, userID, int(opts["index"].IntValue()))
	}

	return nil
}

// PayloadFromOptions builds the entry payload for a subcommand. minor and major
// fix the warning severity; record and edit read the action or severity option.
func PayloadFromOptions(kind models.LedgerKind, sub string, opts map[string]*discordgo.ApplicationCommandInteractionDataOption) (models.LedgerPayload, error) {
	payload := models.LedgerPayload{Reason: common.OptionString(opts["reason"])}

	if kind == models.LedgerModeration {
		action, err := models.ParseModerationAction(common.OptionString(opts["action"]))
		if err != nil {
			return payload, common.NewUserError("Unknown action, use kick, ban, unban or misc.", err.Error())
		}
		payload.Action = action
		return payload, nil
	}

	switch sub {
	case "major":
		payload.Major = true
	case "edit":
		payload.Major = common.OptionString(opts["severity"]) == "major"
	}
	return payload, nil
}

func plural(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
