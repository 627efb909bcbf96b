// Package bot adapts the extraction-and-rendering pipeline to Discord:
// slash-command registration, option parsing, the implicit auto-embed
// message mode and response delivery.
package bot

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"
	"github.com/liss-h/embedbot/config"
	"github.com/liss-h/embedbot/embed"
	"github.com/liss-h/embedbot/logger"
	"github.com/liss-h/embedbot/scraper"
)

const commandName = "embed"

// Bot owns the scraper registry and the configured embed behaviours and
// handles Discord events. Every event handler runs in its own goroutine
// (discordgo's default dispatch), sharing only immutable state.
type Bot struct {
	registry   *scraper.Registry
	behaviours config.EmbedBehaviours
}

func New(registry *scraper.Registry, behaviours config.EmbedBehaviours) *Bot {
	return &Bot{registry: registry, behaviours: behaviours}
}

// Attach registers the bot's event handlers on the session.
func (b *Bot) Attach(session *discordgo.Session) {
	session.AddHandler(b.onReady)
	session.AddHandler(b.onInteractionCreate)
	session.AddHandler(b.onMessageCreate)
}

func (b *Bot) onReady(s *discordgo.Session, _ *discordgo.Ready) {
	no := false
	cmd := &discordgo.ApplicationCommand{
		Name:        commandName,
		Description: "embed a post",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "url",
				Description: "url of the post",
				Required:    true,
			},
			{
				Type:        discordgo.ApplicationCommandOptionBoolean,
				Name:        "embed-nsfw",
				Description: "embed post fully even if it is flagged as nsfw",
				Required:    no,
			},
			{
				Type:        discordgo.ApplicationCommandOptionBoolean,
				Name:        "embed-spoiler",
				Description: "embed post fully even if it is flagged as spoiler",
				Required:    no,
			},
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "comment",
				Description: "a personal comment to include",
				Required:    no,
			},
		},
	}

	if _, err := s.ApplicationCommandCreate(s.State.User.ID, "", cmd); err != nil {
		logger.Log.Errorf("unable to set up commands: %v", err)
		return
	}
	logger.Log.Info("logged in")
}

func (b *Bot) onInteractionCreate(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}
	data := i.ApplicationCommandData()
	if data.Name != commandName {
		return
	}

	params, err := parseCommandOptions(data.Options)
	if err != nil {
		b.respondError(s, i, fmt.Sprintf("Invalid input: %v", err))
		return
	}

	u, err := url.Parse(params.url)
	if err != nil || !u.IsAbs() {
		b.respondError(s, i, fmt.Sprintf("Could not parse url: %s", params.url))
		return
	}

	requestID := uuid.NewString()
	viewer := interactionViewer(i)

	opts := embed.Options{
		Comment:      params.comment,
		EmbedNSFW:    embed.ResolveBehaviour(b.behaviours.NSFW, params.embedNSFW),
		EmbedSpoiler: embed.ResolveBehaviour(b.behaviours.Spoiler, params.embedSpoiler),
	}

	post, err := b.registry.Scrape(context.Background(), u)
	if err != nil {
		logger.ErrorWithFields("scrape failed", logger.Fields{
			"request_id": requestID,
			"url":        u.String(),
			"error":      err.Error(),
		})
		b.respondError(s, i, err.Error())
		return
	}

	var builder InteractionBuilder
	embed.Render(post, viewer, opts, &builder)

	if err := s.InteractionRespond(i.Interaction, builder.Response()); err != nil {
		logger.Log.Errorf("unable to send response: %v", err)
		return
	}

	logger.InfoWithFields("embedded post", logger.Fields{
		"request_id": requestID,
		"url":        u.String(),
		"origin":     post.Common.Origin,
	})
}

// onMessageCreate is the implicit auto-embed mode: the first URL found on
// any line of a user message is embedded, all other non-empty lines become
// the comment, and the original message is deleted on success. Scrape
// failures stay out of the channel here; they are only logged.
func (b *Bot) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot {
		return
	}

	rawURL, comment := splitFreeformMessage(m.Content)
	if rawURL == "" {
		return
	}
	u, _ := url.Parse(rawURL)

	opts := embed.Options{
		Comment:      comment,
		EmbedNSFW:    b.behaviours.NSFW.Default,
		EmbedSpoiler: b.behaviours.Spoiler.Default,
	}

	post, err := b.registry.Scrape(context.Background(), u)
	switch {
	case errors.Is(err, scraper.ErrNoScraperAvailable):
		logger.Log.Infof("not embedding %s: no scraper available", u)
		return
	case err != nil:
		logger.Log.Errorf("error while trying to embed %s: %v", u, err)
		return
	}

	var builder MessageBuilder
	embed.Render(post, messageViewer(m), opts, &builder)

	if _, err := s.ChannelMessageSendComplex(m.ChannelID, builder.Payload()); err != nil {
		logger.Log.Errorf("unable to send message: %v", err)
		return
	}
	if err := s.ChannelMessageDelete(m.ChannelID, m.ID); err != nil {
		logger.Log.Errorf("unable to delete user message: %v", err)
	}
}

func (b *Bot) respondError(s *discordgo.Session, i *discordgo.InteractionCreate, msg string) {
	var builder InteractionBuilder
	embed.Error(msg, &builder)
	if err := s.InteractionRespond(i.Interaction, builder.Response()); err != nil {
		logger.Log.Errorf("unable to send error response: %v", err)
	}
}

// commandParams are the raw slash-command inputs. The bool overrides stay
// nil when the caller did not supply them so behaviour resolution can tell
// "not given" from "given false".
type commandParams struct {
	url          string
	comment      string
	embedNSFW    *bool
	embedSpoiler *bool
}

func parseCommandOptions(options []*discordgo.ApplicationCommandInteractionDataOption) (*commandParams, error) {
	var params commandParams
	for _, opt := range options {
		switch opt.Name {
		case "url":
			if opt.Type != discordgo.ApplicationCommandOptionString {
				return nil, fmt.Errorf("invalid type for parameter url, expected string")
			}
			params.url = opt.StringValue()
		case "comment":
			if opt.Type != discordgo.ApplicationCommandOptionString {
				return nil, fmt.Errorf("invalid type for parameter comment, expected string")
			}
			params.comment = opt.StringValue()
		case "embed-nsfw":
			v, err := boolOption(opt)
			if err != nil {
				return nil, err
			}
			params.embedNSFW = v
		case "embed-spoiler":
			v, err := boolOption(opt)
			if err != nil {
				return nil, err
			}
			params.embedSpoiler = v
		}
	}

	if params.url == "" {
		return nil, fmt.Errorf("parameter url must be present")
	}
	return &params, nil
}

func boolOption(opt *discordgo.ApplicationCommandInteractionDataOption) (*bool, error) {
	if opt.Type != discordgo.ApplicationCommandOptionBoolean {
		return nil, fmt.Errorf("invalid type for parameter %s, expected bool", opt.Name)
	}
	v := opt.BoolValue()
	return &v, nil
}

// splitFreeformMessage finds the first line that parses as an absolute URL
// and joins every other non-empty line into the comment.
func splitFreeformMessage(content string) (rawURL, comment string) {
	var comments []string
	for _, line := range strings.Split(content, "\n") {
		if line == "" {
			continue
		}
		if rawURL == "" && isAbsoluteURL(line) {
			rawURL = line
			continue
		}
		comments = append(comments, line)
	}
	return rawURL, strings.Join(comments, "\n")
}

func isAbsoluteURL(s string) bool {
	u, err := url.Parse(s)
	return err == nil && u.IsAbs() && u.Host != ""
}

func interactionViewer(i *discordgo.InteractionCreate) string {
	var user *discordgo.User
	if i.Member != nil {
		user = i.Member.User
	} else {
		user = i.User
	}
	return displayName(user)
}

func messageViewer(m *discordgo.MessageCreate) string {
	return displayName(m.Author)
}

func displayName(u *discordgo.User) string {
	if u == nil {
		return ""
	}
	if u.GlobalName != "" {
		return u.GlobalName
	}
	return u.Username
}
