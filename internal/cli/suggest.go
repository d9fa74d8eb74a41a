package cli

import (
	"context"
	"math/rand/v2"

	"github.com/spf13/cobra"

	"github.com/xyz-asif/promptshare/internal/config"
	"github.com/xyz-asif/promptshare/internal/database"
	"github.com/xyz-asif/promptshare/internal/features/auth"
	"github.com/xyz-asif/promptshare/internal/pkg/username"
)

type suggestOptions struct {
	seed  uint64
	check bool
}

// Suggestion is one generated username.
type Suggestion struct {
	DisplayName string `json:"displayName"`
	Base        string `json:"base"`
	Username    string `json:"username"`
}

// NewSuggestCommand creates the suggest command.
func NewSuggestCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &suggestOptions{}

	cmd := &cobra.Command{
		Use:   "suggest NAME...",
		Short: "Print the username each display name would receive",
		Long: `Run display names through transliteration, normalization, length
enforcement and collision resolution.

Without --check, names generated earlier in the same run count as taken.
With --check, the users collection in MONGO_URI/MONGO_DB is the oracle.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var opt []username.Option
			if cmd.Flags().Changed("seed") {
				opt = append(opt, username.WithRand(rand.New(rand.NewPCG(opts.seed, opts.seed))))
			}
			gen := username.NewGenerator(opt...)

			var oracle username.Oracle = newRunOracle()
			if opts.check {
				cfg := config.Load()
				db, err := database.Connect(cfg.MongoURI, cfg.MongoDB)
				if err != nil {
					return &ExitError{Code: ExitCommandError, Message: "connect to MongoDB", Err: err}
				}
				defer db.Disconnect(context.Background())
				oracle = auth.NewRepository(db.Database)
			}

			return runSuggest(cmd.Context(), rootOpts, cmd, gen, oracle, args)
		},
	}

	cmd.Flags().Uint64Var(&opts.seed, "seed", 0, "seed for the random padding (reproducible output)")
	cmd.Flags().BoolVar(&opts.check, "check", false, "resolve collisions against MongoDB")

	return cmd
}

func runSuggest(ctx context.Context, rootOpts *RootOptions, cmd *cobra.Command, gen *username.Generator, oracle username.Oracle, names []string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	out := &outputFormatter{format: rootOpts.Format, w: cmd.OutOrStdout()}
	local, _ := oracle.(*runOracle)

	suggestions := make([]Suggestion, 0, len(names))
	for _, name := range names {
		base := gen.Base(name)
		got, err := gen.Resolve(ctx, base, oracle)
		if err != nil {
			return &ExitError{Code: ExitFailure, Message: "generate username for " + name, Err: err}
		}
		if local != nil {
			local.taken[got] = struct{}{}
		}
		suggestions = append(suggestions, Suggestion{DisplayName: name, Base: base, Username: got})
	}

	if rootOpts.Format == "json" {
		return out.json(suggestions)
	}
	for _, s := range suggestions {
		out.line("%-30q %s", s.DisplayName, s.Username)
	}
	return nil
}

// runOracle treats usernames handed out earlier in this run as taken.
type runOracle struct {
	taken map[string]struct{}
}

func newRunOracle() *runOracle {
	return &runOracle{taken: make(map[string]struct{})}
}

func (o *runOracle) UsernameExists(_ context.Context, candidate string) (bool, error) {
	_, ok := o.taken[candidate]
	return ok, nil
}
