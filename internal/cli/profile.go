package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fanpulse/fanpulse/internal/domain"
)

func init() {
	authCmd.Flags().StringVar(&authProvider, "provider", "google", "Identity provider")
	authCmd.Flags().StringVar(&authName, "name", "", "Display name returned by the provider")
	authCmd.Flags().StringVar(&authEmail, "email", "", "Email returned by the provider")
	authCmd.Flags().BoolVar(&authVerified, "verified", false, "Provider confirmed the identity")

	rootCmd.AddCommand(connectCmd)
	rootCmd.AddCommand(profileCmd)
	rootCmd.AddCommand(authCmd)
	rootCmd.AddCommand(teamCmd)
}

var (
	authProvider string
	authName     string
	authEmail    string
	authVerified bool
)

var connectCmd = &cobra.Command{
	Use:   "connect USER PLATFORM",
	Short: "Connect a social platform (facebook, instagram, x, youtube)",
	Args:  cobra.ExactArgs(2),
	RunE:  runConnect,
}

var profileCmd = &cobra.Command{
	Use:   "profile USER ITEM [VALUE]",
	Short: "Complete an optional profile item (dob, gender, home_ground)",
	Args:  cobra.RangeArgs(2, 3),
	RunE:  runProfile,
}

var authCmd = &cobra.Command{
	Use:   "auth USER",
	Short: "Record a verified sign-in",
	Args:  cobra.ExactArgs(1),
	RunE:  runAuth,
}

var teamCmd = &cobra.Command{
	Use:   "team USER TEAM",
	Short: "Select the fan's team",
	Args:  cobra.ExactArgs(2),
	RunE:  runTeam,
}

func runConnect(cmd *cobra.Command, args []string) error {
	d, cleanup, err := openDaemon()
	if err != nil {
		return err
	}
	defer cleanup()

	res, err := d.Engine.RecordSocialConnect(context.Background(), args[0], args[1])
	if err != nil {
		return err
	}
	printResult(res)
	return nil
}

func runProfile(cmd *cobra.Command, args []string) error {
	d, cleanup, err := openDaemon()
	if err != nil {
		return err
	}
	defer cleanup()

	var value string
	if len(args) == 3 {
		value = args[2]
	}
	res, err := d.Engine.CompleteProfileItem(context.Background(), args[0], args[1], value)
	if err != nil {
		return err
	}
	printResult(res)
	return nil
}

func runAuth(cmd *cobra.Command, args []string) error {
	d, cleanup, err := openDaemon()
	if err != nil {
		return err
	}
	defer cleanup()

	res, err := d.Engine.Authenticate(context.Background(), args[0], domain.Identity{
		Provider: authProvider,
		Verified: authVerified,
		Name:     authName,
		Email:    authEmail,
	})
	if err != nil {
		return err
	}
	printResult(res)
	return nil
}

func runTeam(cmd *cobra.Command, args []string) error {
	d, cleanup, err := openDaemon()
	if err != nil {
		return err
	}
	defer cleanup()

	res, err := d.Engine.SelectTeam(context.Background(), args[0], args[1])
	if err != nil {
		return err
	}
	fmt.Printf("%s now supports %s\n", res.View.UserID, res.View.Team)
	printResult(res)
	return nil
}
