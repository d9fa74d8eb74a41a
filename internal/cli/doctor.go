package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/xyz-asif/promptshare/internal/config"
	"github.com/xyz-asif/promptshare/internal/database"
	"github.com/xyz-asif/promptshare/internal/features/auth"
	"github.com/xyz-asif/promptshare/internal/pkg/cloudinary"
)

const doctorTimeout = 15 * time.Second

// CheckResult is the outcome of one dependency check.
type CheckResult struct {
	Name    string `json:"name"`
	OK      bool   `json:"ok"`
	Skipped bool   `json:"skipped,omitempty"`
	Detail  string `json:"detail,omitempty"`
}

// check probes one dependency. skip reports that it is not configured.
type check struct {
	name string
	run  func(ctx context.Context, cfg *config.Config) (detail string, skip bool, err error)
}

func defaultChecks() []check {
	return []check{
		{name: "mongodb", run: checkMongo},
		{name: "firebase", run: checkFirebase},
		{name: "cloudinary", run: checkCloudinary},
	}
}

// NewDoctorCommand creates the doctor command.
func NewDoctorCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check MongoDB, Firebase and Cloudinary connectivity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDoctor(cmd, rootOpts, config.Load(), defaultChecks())
		},
	}
}

func runDoctor(cmd *cobra.Command, rootOpts *RootOptions, cfg *config.Config, checks []check) error {
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithTimeout(parent, doctorTimeout)
	defer cancel()

	out := &outputFormatter{format: rootOpts.Format, w: cmd.OutOrStdout()}

	failed := 0
	results := make([]CheckResult, 0, len(checks))
	for _, c := range checks {
		detail, skip, err := c.run(ctx, cfg)
		res := CheckResult{Name: c.name, OK: err == nil, Skipped: skip, Detail: detail}
		if err != nil {
			res.Detail = err.Error()
			failed++
		}
		results = append(results, res)
	}

	if rootOpts.Format == "json" {
		if err := out.json(results); err != nil {
			return err
		}
	} else {
		for _, r := range results {
			status := "ok"
			switch {
			case !r.OK:
				status = "FAIL"
			case r.Skipped:
				status = "skip"
			}
			out.line("%-12s %-5s %s", r.Name, status, r.Detail)
		}
	}

	if failed > 0 {
		return &ExitError{Code: ExitFailure, Message: "dependency checks failed"}
	}
	return nil
}

func checkMongo(ctx context.Context, cfg *config.Config) (string, bool, error) {
	db, err := database.Connect(cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		return "", false, err
	}
	defer db.Disconnect(context.Background())

	if err := auth.NewRepository(db.Database).EnsureIndexes(ctx); err != nil {
		return "", false, err
	}
	return "database " + cfg.MongoDB + ", user indexes in place", false, nil
}

func checkFirebase(ctx context.Context, cfg *config.Config) (string, bool, error) {
	if cfg.AuthProvider != config.ProviderFirebase {
		return "auth provider is " + cfg.AuthProvider, true, nil
	}
	if _, err := auth.InitFirebase(ctx, cfg.FirebaseServiceAccountPath); err != nil {
		return "", false, err
	}
	return "auth client initialized", false, nil
}

func checkCloudinary(_ context.Context, cfg *config.Config) (string, bool, error) {
	if !cfg.CloudinaryEnabled() {
		return "not configured, provider avatars are stored as-is", true, nil
	}
	svc, err := cloudinary.NewService(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret, cfg.CloudinaryUploadFolder)
	if err != nil {
		return "", false, err
	}
	return "cloud " + svc.CloudName(), false, nil
}
