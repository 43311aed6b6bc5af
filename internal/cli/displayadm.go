package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lherron/queuebot/internal/cli/appctx"
	"github.com/lherron/queuebot/internal/domain"
	"github.com/lherron/queuebot/internal/registrar"
)

var displayAdmCmd = &cobra.Command{
	Use:   "display",
	Short: "Manage queue display channels",
}

var displayAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Post a queue display to a channel and record it",
	RunE:  appctx.WithApp(appctx.DefaultOptions(), runDisplayAdd),
}

var displayRmCmd = &cobra.Command{
	Use:   "rm",
	Short: "Remove queue display records",
	Long: `Removes the display records of a queue, either for one channel (--channel)
or for every channel. The posted messages are deleted too unless
--keep-message is given.`,
	RunE: appctx.WithApp(appctx.DefaultOptions(), runDisplayRm),
}

var (
	displayQueueID     int64
	displayChannelID   string
	displayKeepMessage bool
)

func init() {
	rootAdmCmd.AddCommand(displayAdmCmd)
	displayAdmCmd.AddCommand(displayAddCmd)
	displayAdmCmd.AddCommand(displayRmCmd)

	for _, c := range []*cobra.Command{displayAddCmd, displayRmCmd} {
		c.Flags().Int64Var(&displayQueueID, "queue", 0, "Queue ID (required)")
		c.MarkFlagRequired("queue")
	}
	displayAddCmd.Flags().StringVar(&displayChannelID, "channel", "", "Display channel ID (required)")
	displayAddCmd.MarkFlagRequired("channel")
	displayRmCmd.Flags().StringVar(&displayChannelID, "channel", "", "Only remove the display in this channel")
	displayRmCmd.Flags().BoolVar(&displayKeepMessage, "keep-message", false, "Leave the posted messages in place")
}

// openRegistrar connects to Discord and returns an initialized registrar
// plus a func that flushes guild activity and disconnects.
func openRegistrar(app *appctx.App, cmd *cobra.Command) (*registrar.Registrar, func(), error) {
	platform, closePlatform, err := connectPlatform(app.Config.DiscordToken)
	if err != nil {
		return nil, nil, exitError(1, err)
	}
	reg := registrar.New(app.Store, platform, app.Log)
	if err := reg.Init(cmd.Context()); err != nil {
		closePlatform()
		return nil, nil, exitError(1, err)
	}
	done := func() {
		if err := app.Store.Pending.Flush(cmd.Context()); err != nil {
			app.Log.WithError(err).Warn("failed to flush guild activity")
		}
		closePlatform()
	}
	return reg, done, nil
}

func runDisplayAdd(app *appctx.App, cmd *cobra.Command, args []string) error {
	q, err := app.Store.Queues.Get(cmd.Context(), displayQueueID)
	if errors.Is(err, domain.ErrNotFound) {
		return exitError(1, fmt.Errorf("queue %d not found", displayQueueID))
	}
	if err != nil {
		return exitError(1, err)
	}

	reg, done, err := openRegistrar(app, cmd)
	if err != nil {
		return err
	}
	defer done()

	d, err := reg.Store(cmd.Context(), q, displayChannelID)
	if err != nil {
		return exitError(1, err)
	}
	if d == nil {
		return exitError(1, fmt.Errorf("could not post display for queue %q in channel %s", q.Name, displayChannelID))
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Displaying queue %q in channel %s (message %s)\n", q.Name, d.DisplayChannelID, *d.LastMessageID)
	return nil
}

func runDisplayRm(app *appctx.App, cmd *cobra.Command, args []string) error {
	reg, done, err := openRegistrar(app, cmd)
	if err != nil {
		return err
	}
	defer done()

	n, err := reg.Unstore(cmd.Context(), displayQueueID, registrar.UnstoreOptions{
		DisplayChannelID: displayChannelID,
		KeepMessage:      displayKeepMessage,
	})
	if err != nil {
		return exitError(1, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Removed %d display(s) of queue %d\n", n, displayQueueID)
	return nil
}
