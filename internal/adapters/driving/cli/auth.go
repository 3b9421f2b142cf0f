package cli

import (
	"bufio"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/ragchat-cli/internal/core/domain"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in to the backend",
	Long: `Sign in with email and password. Missing values are prompted for;
the password is read without echo.

Examples:
  ragchat login
  ragchat login --email ana@example.com`,
	Args: cobra.NoArgs,
	RunE: runLogin,
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account and sign in",
	Args:  cobra.NoArgs,
	RunE:  runRegister,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and forget local session data",
	Args:  cobra.NoArgs,
	RunE:  runLogout,
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in user",
	Args:  cobra.NoArgs,
	RunE:  runWhoami,
}

// Flags for login and register.
var (
	authEmail    string
	authPassword string
	authName     string
	authRole     string
)

func init() {
	for _, c := range []*cobra.Command{loginCmd, registerCmd} {
		c.Flags().StringVar(&authEmail, "email", "", "Account email")
		c.Flags().StringVar(&authPassword, "password", "", "Account password (prompted when empty)")
	}
	registerCmd.Flags().StringVar(&authName, "name", "", "Display name")
	registerCmd.Flags().StringVar(&authRole, "role", "", "Role: student, professor or admin")
	addJSONFlag(whoamiCmd)

	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(registerCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)
}

// credentials fills email and password from flags or prompts.
func credentials(cmd *cobra.Command) (domain.Credentials, error) {
	reader := bufio.NewReader(cmd.InOrStdin())
	creds := domain.Credentials{Email: authEmail, Password: authPassword}

	var err error
	if creds.Email == "" {
		if creds.Email, err = prompt(cmd, reader, "Email: "); err != nil {
			return creds, err
		}
	}
	if creds.Password == "" {
		if creds.Password, err = readPassword(cmd, reader, "Password: "); err != nil {
			return creds, err
		}
	}
	return creds, nil
}

func runLogin(cmd *cobra.Command, _ []string) error {
	if authService == nil {
		return errNotConfigured("auth")
	}

	creds, err := credentials(cmd)
	if err != nil {
		return err
	}
	user, err := authService.Login(cmd.Context(), creds)
	if err != nil {
		return err
	}

	cmd.Printf("Signed in as %s (%s)\n", user.Email, user.Role)
	loadUserConfig(cmd, user)
	return nil
}

func runRegister(cmd *cobra.Command, _ []string) error {
	if authService == nil {
		return errNotConfigured("auth")
	}

	creds, err := credentials(cmd)
	if err != nil {
		return err
	}
	user, err := authService.Register(cmd.Context(), domain.RegisterRequest{
		Email:    creds.Email,
		Password: creds.Password,
		Name:     authName,
		Role:     domain.UserRole(authRole),
	})
	if err != nil {
		return err
	}

	cmd.Printf("Account created. Signed in as %s\n", user.Email)
	loadUserConfig(cmd, user)
	return nil
}

// loadUserConfig pulls the user's SystemConfig after sign-in. Failures
// only cost the cache.
func loadUserConfig(cmd *cobra.Command, user *domain.AuthUser) {
	if settingsService == nil || user == nil {
		return
	}
	if _, err := settingsService.LoadSystemConfig(cmd.Context(), user.ID.String()); err != nil {
		cmd.PrintErrf("Warning: could not load settings: %v\n", err)
	}
}

func runLogout(cmd *cobra.Command, _ []string) error {
	if authService == nil {
		return errNotConfigured("auth")
	}
	if err := authService.Logout(cmd.Context()); err != nil {
		return err
	}
	cmd.Println("Signed out")
	return nil
}

func runWhoami(cmd *cobra.Command, _ []string) error {
	if authService == nil {
		return errNotConfigured("auth")
	}

	user, err := authService.CurrentUser(cmd.Context())
	if err != nil {
		return describeError(err)
	}
	if jsonOutput {
		return printJSON(cmd, user)
	}

	cmd.Printf("Email:  %s\n", user.Email)
	if user.Name != "" {
		cmd.Printf("Name:   %s\n", user.Name)
	}
	cmd.Printf("Role:   %s\n", user.Role)
	cmd.Printf("ID:     %s\n", user.ID)
	return nil
}
