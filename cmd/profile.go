package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/plateful/plateful/internal/api"
	"github.com/plateful/plateful/internal/model"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Inspect and update the account profile",
}

// ─── profile show ─────────────────────────────────────────────────────────────

var profileShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the cached profile",
	Long: `Show the last profile cached in the local database. Works offline;
use 'plateful profile sync' to fetch a fresh copy from the backend.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		deps, err := buildDeps()
		if err != nil {
			return err
		}
		defer deps.Close()

		p, found := deps.Session.CachedProfile()
		if !found {
			fmt.Fprintln(cmd.OutOrStdout(), "No cached profile. Run 'plateful profile sync' first.")
			return nil
		}
		printProfile(cmd, p)
		return nil
	},
}

// ─── profile sync ─────────────────────────────────────────────────────────────

var profileSyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Fetch the profile from the backend",
	RunE: func(cmd *cobra.Command, args []string) error {
		deps, err := buildDeps()
		if err != nil {
			return err
		}
		defer deps.Close()
		if err := requireRemote(deps); err != nil {
			return err
		}

		deps.Session.HandleSignIn(cmd.Context(), deps.Identity())
		p, _ := deps.Session.Profile()
		if !p.IsProfileComplete {
			fmt.Fprintln(cmd.OutOrStdout(), "Note: profile is incomplete (backend record missing or partial).")
		}
		printProfile(cmd, p)
		return nil
	},
}

// ─── profile refresh ──────────────────────────────────────────────────────────

var profileRefreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Re-fetch the profile (throttled)",
	RunE: func(cmd *cobra.Command, args []string) error {
		deps, err := buildDeps()
		if err != nil {
			return err
		}
		defer deps.Close()
		if err := requireRemote(deps); err != nil {
			return err
		}

		if !deps.Session.RefreshProfile(cmd.Context()) {
			if msg := deps.Session.Err(); msg != "" {
				return storeErr("refreshing profile", msg)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Refresh skipped (throttled or signed out).")
			return nil
		}
		p, _ := deps.Session.Profile()
		printProfile(cmd, p)
		return nil
	},
}

// ─── profile update ───────────────────────────────────────────────────────────

var profileUpdateFlags struct {
	UserName string
	FullName string
	Bio      string
	Image    string
}

var profileUpdateCmd = &cobra.Command{
	Use:   "update",
	Short: "Update profile fields on the backend",
	Example: `  plateful profile update --full-name "Dana K" --bio "weeknight cook"
  plateful profile update --image ./avatar.jpg`,
	RunE: func(cmd *cobra.Command, args []string) error {
		deps, err := buildDeps()
		if err != nil {
			return err
		}
		defer deps.Close()
		if err := requireRemote(deps); err != nil {
			return err
		}

		form := api.ProfileForm{
			Email:    deps.Config.Email,
			UserName: profileUpdateFlags.UserName,
			FullName: profileUpdateFlags.FullName,
			Bio:      profileUpdateFlags.Bio,
		}
		if profileUpdateFlags.Image != "" {
			f, err := os.Open(profileUpdateFlags.Image)
			if err != nil {
				return fmt.Errorf("opening image: %w", err)
			}
			defer f.Close()
			form.Image = f
			form.ImageName = filepath.Base(profileUpdateFlags.Image)
		}

		if !deps.Session.UpdateProfile(cmd.Context(), form) {
			return storeErr("updating profile", deps.Session.Err())
		}
		p, _ := deps.Session.Profile()
		fmt.Fprintln(cmd.OutOrStdout(), "✓ Profile updated")
		printProfile(cmd, p)
		return nil
	},
}

// ─── profile register ─────────────────────────────────────────────────────────

var profileRegisterFlags struct {
	Email    string
	UserName string
	FullName string
}

var profileRegisterCmd = &cobra.Command{
	Use:   "register",
	Short: "Create the backend account",
	RunE: func(cmd *cobra.Command, args []string) error {
		deps, err := buildDeps()
		if err != nil {
			return err
		}
		defer deps.Close()
		if err := requireRemote(deps); err != nil {
			return err
		}

		form := api.ProfileForm{
			Email:    profileRegisterFlags.Email,
			UserName: profileRegisterFlags.UserName,
			FullName: profileRegisterFlags.FullName,
		}
		if form.Email == "" {
			form.Email = deps.Config.Email
		}
		if !deps.Session.Register(cmd.Context(), form) {
			return storeErr("registering", deps.Session.Err())
		}
		p, _ := deps.Session.Profile()
		fmt.Fprintln(cmd.OutOrStdout(), "✓ Account created")
		printProfile(cmd, p)
		return nil
	},
}

// ─── profile check-username ───────────────────────────────────────────────────

var profileCheckUsernameCmd = &cobra.Command{
	Use:   "check-username <NAME>",
	Short: "Check whether a username is available",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		deps, err := buildDeps()
		if err != nil {
			return err
		}
		defer deps.Close()
		if err := requireRemote(deps); err != nil {
			return err
		}

		available, ok := deps.Session.CheckUsername(cmd.Context(), args[0])
		if !ok {
			return storeErr("checking username", deps.Session.Err())
		}
		if available {
			fmt.Fprintf(cmd.OutOrStdout(), "%q is available\n", args[0])
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "%q is taken\n", args[0])
		}
		return nil
	},
}

// ─── Rendering ────────────────────────────────────────────────────────────────

func printProfile(cmd *cobra.Command, p model.Profile) {
	rows := [][]string{
		{"username", p.UserName},
		{"email", p.Email},
		{"full name", p.FullName},
		{"bio", truncate(p.Bio, 60)},
		{"complete", checkbox(p.IsProfileComplete)},
		{"chef", checkbox(p.IsChef)},
		{"pro", checkbox(p.IsPro)},
	}
	if p.Subscription != nil {
		rows = append(rows, []string{"plan", p.Subscription.Plan})
	}
	printKVTable(cmd.OutOrStdout(), rows)
}

// ─── Registration ─────────────────────────────────────────────────────────────

func init() {
	rootCmd.AddCommand(profileCmd)
	profileCmd.AddCommand(profileShowCmd)
	profileCmd.AddCommand(profileSyncCmd)
	profileCmd.AddCommand(profileRefreshCmd)
	profileCmd.AddCommand(profileUpdateCmd)
	profileCmd.AddCommand(profileRegisterCmd)
	profileCmd.AddCommand(profileCheckUsernameCmd)

	uf := profileUpdateCmd.Flags()
	uf.StringVar(&profileUpdateFlags.UserName, "username", "", "new username")
	uf.StringVar(&profileUpdateFlags.FullName, "full-name", "", "new full name")
	uf.StringVar(&profileUpdateFlags.Bio, "bio", "", "new bio")
	uf.StringVar(&profileUpdateFlags.Image, "image", "", "path to profile image")

	rf := profileRegisterCmd.Flags()
	rf.StringVar(&profileRegisterFlags.Email, "email", "", "account email (defaults to configured email)")
	rf.StringVar(&profileRegisterFlags.UserName, "username", "", "desired username (required)")
	rf.StringVar(&profileRegisterFlags.FullName, "full-name", "", "full name")
}
