package bot

import "github.com/bwmarrin/discordgo"

// The render logic targets one builder interface; these two adapters map it
// onto discordgo's separate payload types for new channel messages and
// interaction responses.

// MessageBuilder accumulates a payload for a new channel message.
type MessageBuilder struct {
	msg discordgo.MessageSend
}

func (b *MessageBuilder) SetPlainText(content string) {
	b.msg.Content = content
}

func (b *MessageBuilder) SetStructuredEmbed(e *discordgo.MessageEmbed) {
	b.msg.Embeds = []*discordgo.MessageEmbed{e}
}

func (b *MessageBuilder) Payload() *discordgo.MessageSend {
	return &b.msg
}

// InteractionBuilder accumulates a payload for an interaction response.
type InteractionBuilder struct {
	data discordgo.InteractionResponseData
}

func (b *InteractionBuilder) SetPlainText(content string) {
	b.data.Content = content
}

func (b *InteractionBuilder) SetStructuredEmbed(e *discordgo.MessageEmbed) {
	b.data.Embeds = []*discordgo.MessageEmbed{e}
}

func (b *InteractionBuilder) Response() *discordgo.InteractionResponse {
	return &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &b.data,
	}
}
