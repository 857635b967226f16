package roles

import (
	"github.com/bwmarrin/discordgo"

	"yinbot/bot/common"
	"yinbot/service"
)

// Feature handles voice roles, role sets, self-assignment and role greetings
type Feature struct {
	roleAssociations service.RoleAssociationService
	roleSets         service.RoleSetService
}

// NewFeature creates a new roles feature instance
func NewFeature(roleAssociations service.RoleAssociationService, roleSets service.RoleSetService) *Feature {
	return &Feature{
		roleAssociations: roleAssociations,
		roleSets:         roleSets,
	}
}

// HandleVoiceRoles routes /voiceroles subcommands
func (f *Feature) HandleVoiceRoles(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if err := f.adminOnly(s, i, f.handleVoiceRoles); err != nil {
		common.HandleError(s, i, err)
	}
}

// HandleRoles routes /roles subcommands
func (f *Feature) HandleRoles(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if err := f.adminOnly(s, i, f.handleRoles); err != nil {
		common.HandleError(s, i, err)
	}
}

// HandleGreeting routes /greeting subcommands
func (f *Feature) HandleGreeting(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if err := f.adminOnly(s, i, f.handleGreeting); err != nil {
		common.HandleError(s, i, err)
	}
}

// HandleIAm lets a member toggle an assignable role on themselves
func (f *Feature) HandleIAm(s *discordgo.Session, i *discordgo.InteractionCreate) {
	inv, err := common.ParseInvocation(i)
	if err == nil {
		err = f.handleIAm(s, i, inv)
	}
	if err != nil {
		common.HandleError(s, i, err)
	}
}

func (f *Feature) adminOnly(s *discordgo.Session, i *discordgo.InteractionCreate, fn func(*discordgo.Session, *discordgo.InteractionCreate, common.Invocation) error) error {
	inv, err := common.ParseInvocation(i)
	if err != nil {
		return err
	}
	if err := common.RequireAdmin(s, i); err != nil {
		return err
	}
	return fn(s, i, inv)
}
