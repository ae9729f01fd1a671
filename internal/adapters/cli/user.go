package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/andrescamacho/warera-economy-go/internal/application/mediator"
	playgroundQueries "github.com/andrescamacho/warera-economy-go/internal/application/playground/queries"
)

// NewUserCommand creates the user command with subcommands
func NewUserCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Look up WarEra players",
	}

	cmd.AddCommand(newUserResolveCommand())

	return cmd
}

func newUserResolveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <username>",
		Short: "Find a player's user id by username",
		Long: `Find a player's user id by username (case-insensitive).

The WarEra API has no username lookup, so the resolver walks the public
rankings. The first lookup for a name can take a while. Results are
cached, and stored in the database when storage.type is database.

Example:
  warera user resolve SomePlayer`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := openApp()
			if err != nil {
				return err
			}
			defer app.Close()

			return runUserResolve(cmd.Context(), cmd.OutOrStdout(), app.Mediator, args[0])
		},
	}
}

func runUserResolve(ctx context.Context, out io.Writer, m mediator.Mediator, username string) error {
	resp, err := mediator.Send[*playgroundQueries.ResolveUsernameResponse](ctx, m, &playgroundQueries.ResolveUsernameQuery{
		Username: username,
	})
	if err != nil {
		return err
	}

	if outputFormat == formatJSON {
		return printJSON(out, resp)
	}

	if !resp.Found {
		return fmt.Errorf("user %q not found", username)
	}
	fmt.Fprintf(out, "%s: %s\n", resp.Username, resp.UserID)
	return nil
}
