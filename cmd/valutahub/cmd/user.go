package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var registerCmd = &cobra.Command{
	Use:   "register <username> <password>",
	Short: "Register a new user",
	Long: `Create a new account with an empty USD wallet. Usernames are unique
and passwords are stored as salted hashes.

Example:
  valutahub register alice secret123`,
	Args: cobra.ExactArgs(2),
	RunE: runRegister,
}

var loginCmd = &cobra.Command{
	Use:   "login <username> <password>",
	Short: "Verify a user's credentials",
	Args:  cobra.ExactArgs(2),
	RunE:  runLogin,
}

var passwdCmd = &cobra.Command{
	Use:   "passwd <username> <old-password> <new-password>",
	Short: "Change a user's password",
	Args:  cobra.ExactArgs(3),
	RunE:  runPasswd,
}

func init() {
	rootCmd.AddCommand(registerCmd)
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(passwdCmd)
}

func runRegister(cmd *cobra.Command, args []string) error {
	app, err := openApp()
	if err != nil {
		return err
	}
	defer app.Close()

	user, err := app.users.Register(args[0], args[1])
	if err != nil {
		return err
	}

	fmt.Printf("✓ Registered %s (user %d)\n", user.Username, user.ID)
	return nil
}

func runLogin(cmd *cobra.Command, args []string) error {
	app, err := openApp()
	if err != nil {
		return err
	}
	defer app.Close()

	user, err := app.users.Login(args[0], args[1])
	if err != nil {
		return err
	}

	fmt.Printf("✓ Welcome back, %s (user %d)\n", user.Username, user.ID)
	return nil
}

func runPasswd(cmd *cobra.Command, args []string) error {
	app, err := openApp()
	if err != nil {
		return err
	}
	defer app.Close()

	user, err := app.users.Lookup(args[0])
	if err != nil {
		return err
	}
	if err := app.users.ChangePassword(user.ID, args[1], args[2]); err != nil {
		return err
	}

	fmt.Printf("✓ Password changed for %s\n", user.Username)
	return nil
}
