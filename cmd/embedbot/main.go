package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/liss-h/embedbot/bot"
	"github.com/liss-h/embedbot/config"
	"github.com/liss-h/embedbot/embed"
	"github.com/liss-h/embedbot/logger"
	"github.com/liss-h/embedbot/scraper"
	"github.com/spf13/cobra"
)

var configPath string

func main() {
	root := &cobra.Command{
		Use:           "embedbot",
		Short:         "re-embeds social media posts as proper Discord embeds",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to config.yaml (default: search upward from cwd)")

	root.AddCommand(runCmd(), scrapeCmd())

	if err := root.Execute(); err != nil {
		logger.Log.Errorf("%v", err)
		os.Exit(1)
	}
}

func loadSettings() (*config.Settings, error) {
	settings, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	logger.Init(settings.Logging.Level)
	return settings, nil
}

// buildRegistry registers one scraper per configured module. Registration
// order is dispatch priority.
func buildRegistry(settings *config.Settings) *scraper.Registry {
	client := scraper.NewHTTPClient(time.Duration(settings.FetchTimeoutSeconds) * time.Second)

	registry := scraper.NewRegistry()
	if m := settings.Modules.Reddit; m != nil {
		registry.Register(scraper.NewReddit(m, client))
	}
	if m := settings.Modules.NineGag; m != nil {
		registry.Register(scraper.NewNineGag(m, client))
	}
	if m := settings.Modules.Twitter; m != nil {
		registry.Register(scraper.NewTwitter(m, nil))
	}
	if m := settings.Modules.Imgur; m != nil {
		registry.Register(scraper.NewImgur(m, client))
	}
	return registry
}

func runCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "connect to Discord and serve embed requests",
		RunE: func(cmd *cobra.Command, _ []string) error {
			settings, err := loadSettings()
			if err != nil {
				return err
			}
			if settings.DiscordToken() == "" {
				return fmt.Errorf("missing %s in environment", config.TokenEnvKey)
			}

			session, err := discordgo.New("Bot " + settings.DiscordToken())
			if err != nil {
				return fmt.Errorf("create discord session: %w", err)
			}
			session.Identify.Intents = discordgo.IntentsGuildMessages | discordgo.IntentMessageContent

			b := bot.New(buildRegistry(settings), settings.EmbedBehaviours)
			b.Attach(session)

			if err := session.Open(); err != nil {
				return fmt.Errorf("open discord session: %w", err)
			}
			defer session.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			<-ctx.Done()

			logger.Log.Info("shutting down")
			return nil
		},
	}
}

// scrapeCmd runs the pipeline once without a Discord session and prints the
// payload, for poking at a URL from a shell.
func scrapeCmd() *cobra.Command {
	var (
		comment      string
		embedNSFW    bool
		embedSpoiler bool
	)

	cmd := &cobra.Command{
		Use:   "scrape <url>",
		Short: "scrape a single post and print the rendered payload",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := loadSettings()
			if err != nil {
				return err
			}

			u, err := url.Parse(args[0])
			if err != nil || !u.IsAbs() {
				return fmt.Errorf("could not parse url: %s", args[0])
			}

			var nsfwFlag, spoilerFlag *bool
			if cmd.Flags().Changed("embed-nsfw") {
				nsfwFlag = &embedNSFW
			}
			if cmd.Flags().Changed("embed-spoiler") {
				spoilerFlag = &embedSpoiler
			}

			opts := embed.Options{
				Comment:      comment,
				EmbedNSFW:    embed.ResolveBehaviour(settings.EmbedBehaviours.NSFW, nsfwFlag),
				EmbedSpoiler: embed.ResolveBehaviour(settings.EmbedBehaviours.Spoiler, spoilerFlag),
			}

			post, err := buildRegistry(settings).Scrape(context.Background(), u)
			if err != nil {
				return err
			}

			var builder stdoutBuilder
			embed.Render(post, "operator", opts, &builder)
			return builder.print(cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&comment, "comment", "", "a personal comment to include")
	cmd.Flags().BoolVar(&embedNSFW, "embed-nsfw", false, "embed post fully even if it is flagged as nsfw")
	cmd.Flags().BoolVar(&embedSpoiler, "embed-spoiler", false, "embed post fully even if it is flagged as spoiler")
	return cmd
}

// stdoutBuilder captures either payload form for printing.
type stdoutBuilder struct {
	content string
	embed   any
}

func (b *stdoutBuilder) SetPlainText(content string) {
	b.content = content
}

func (b *stdoutBuilder) SetStructuredEmbed(e *discordgo.MessageEmbed) {
	b.embed = e
}

func (b *stdoutBuilder) print(w io.Writer) error {
	if b.embed != nil {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(b.embed)
	}
	_, err := fmt.Fprintln(w, b.content)
	return err
}
