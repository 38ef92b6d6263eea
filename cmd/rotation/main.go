package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/arnavshah/rotation-api-go/internal/config"
	"github.com/arnavshah/rotation-api-go/pkg/models"
	"github.com/arnavshah/rotation-api-go/pkg/notify"
	"github.com/arnavshah/rotation-api-go/pkg/rotationfile"
	"github.com/arnavshah/rotation-api-go/pkg/scheduler"
)

// channelList collects repeated -slack-channel flags
type channelList []string

func (c *channelList) String() string { return strings.Join(*c, ",") }

func (c *channelList) Set(v string) error {
	for _, ch := range strings.Split(v, ",") {
		if ch = strings.TrimSpace(ch); ch != "" {
			*c = append(*c, ch)
		}
	}
	return nil
}

func main() {
	var (
		configPath = flag.String("config", "rotation.yaml", "rotation file (.yaml, .yml, .toml or .json)")
		weeks      = flag.Int("weeks", 0, "number of weeks to generate (default: the file's weeks, or 27)")
		channels   channelList
	)
	flag.Var(&channels, "slack-channel", "Slack channel to post the current week to (repeatable)")
	flag.Parse()

	config.LoadEnv()
	cfg := config.Load()
	logger := config.NewLogger(cfg.LogLevel)

	in, err := rotationfile.Load(*configPath)
	if err != nil {
		log.Fatalf("could not load rotation: %v", err)
	}
	if *weeks > 0 {
		in.Weeks = *weeks
	}

	s, err := scheduler.FromInput(in, scheduler.WithLogger(logger))
	if err != nil {
		log.Fatalf("invalid rotation: %v", err)
	}

	tl := s.Timeline()
	generated := tl.Take(in.Weeks)

	fmt.Println(renderTable(s.Tasks(), generated))
	fmt.Print(summary(in.Weeks, generated, tl.FairnessScore(), tl.Err()))

	if len(channels) == 0 {
		return
	}
	if cfg.SlackBotToken == "" {
		log.Fatalf("SLACK_BOT_TOKEN is required to post to Slack")
	}

	today := models.WeekOf(time.Now())
	wa, ok := currentWeek(generated, today)
	if !ok {
		log.Printf("week %s is not part of the generated schedule, nothing posted", today.ID())
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	n := notify.New(cfg.SlackBotToken, logger)
	if err := n.PostWeek(ctx, channels, wa.Week, s.Tasks(), wa.Assignment); err != nil {
		log.Fatalf("could not post to Slack: %v", err)
	}
}
