package cli

import (
	"bufio"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/ragchat-cli/internal/core/domain"
)

var usersCmd = &cobra.Command{
	Use:     "users",
	Aliases: []string{"user"},
	Short:   "Administer user accounts",
}

var usersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List users",
	Args:  cobra.NoArgs,
	RunE:  runUsersList,
}

var usersCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a user",
	Long:  `Create a user. Missing email or password is prompted for.`,
	Args:  cobra.NoArgs,
	RunE:  runUsersCreate,
}

var usersUpdateCmd = &cobra.Command{
	Use:   "update [user-id]",
	Short: "Update a user",
	Long:  `Update a user. Only the flags given are changed.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runUsersUpdate,
}

var usersDeleteCmd = &cobra.Command{
	Use:   "delete [user-id]",
	Short: "Delete a user",
	Args:  cobra.ExactArgs(1),
	RunE:  runUsersDelete,
}

var usersToggleCmd = &cobra.Command{
	Use:   "toggle [user-id]",
	Short: "Activate or deactivate a user",
	Args:  cobra.ExactArgs(1),
	RunE:  runUsersToggle,
}

var usersStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarise the user base",
	Args:  cobra.NoArgs,
	RunE:  runUsersStats,
}

var (
	userEmail    string
	userName     string
	userPassword string
	userRole     string
)

func init() {
	for _, c := range []*cobra.Command{usersCreateCmd, usersUpdateCmd} {
		c.Flags().StringVar(&userEmail, "email", "", "Email address")
		c.Flags().StringVar(&userName, "name", "", "Display name")
		c.Flags().StringVar(&userPassword, "password", "", "Password")
		c.Flags().StringVar(&userRole, "role", "", "Role: student, professor or admin")
	}
	addJSONFlag(usersListCmd, usersStatsCmd)

	usersCmd.AddCommand(usersListCmd)
	usersCmd.AddCommand(usersCreateCmd)
	usersCmd.AddCommand(usersUpdateCmd)
	usersCmd.AddCommand(usersDeleteCmd)
	usersCmd.AddCommand(usersToggleCmd)
	usersCmd.AddCommand(usersStatsCmd)
	rootCmd.AddCommand(usersCmd)
}

func runUsersList(cmd *cobra.Command, _ []string) error {
	if userService == nil {
		return errNotConfigured("user")
	}

	users, err := userService.List(cmd.Context())
	if err != nil {
		return describeError(err)
	}
	if jsonOutput {
		return printJSON(cmd, users)
	}
	if len(users) == 0 {
		cmd.Println("No users")
		return nil
	}

	rows := make([][]string, 0, len(users))
	for _, u := range users {
		lastLogin := "-"
		if u.LastLogin != nil {
			lastLogin = humanTime(*u.LastLogin)
		}
		rows = append(rows, []string{
			u.ID.String(), u.Email, u.Name, string(u.Role), strconv.FormatBool(u.IsActive), lastLogin,
		})
	}
	return printTable(cmd, []string{"ID", "EMAIL", "NAME", "ROLE", "ACTIVE", "LAST LOGIN"}, rows)
}

func runUsersCreate(cmd *cobra.Command, _ []string) error {
	if userService == nil {
		return errNotConfigured("user")
	}

	reader := bufio.NewReader(cmd.InOrStdin())
	var err error
	if userEmail == "" {
		if userEmail, err = prompt(cmd, reader, "Email: "); err != nil {
			return err
		}
	}
	if userPassword == "" {
		if userPassword, err = readPassword(cmd, reader, "Password: "); err != nil {
			return err
		}
	}

	user, err := userService.Create(cmd.Context(), domain.CreateUserRequest{
		Email:    userEmail,
		Name:     userName,
		Password: userPassword,
		Role:     domain.UserRole(userRole),
	})
	if err != nil {
		return describeError(err)
	}
	cmd.Printf("Created %s (%s) with role %s\n", user.Email, user.ID, user.Role)
	return nil
}

func runUsersUpdate(cmd *cobra.Command, args []string) error {
	if userService == nil {
		return errNotConfigured("user")
	}

	var req domain.UpdateUserRequest
	flags := cmd.Flags()
	if flags.Changed("email") {
		req.Email = &userEmail
	}
	if flags.Changed("name") {
		req.Name = &userName
	}
	if flags.Changed("password") {
		req.Password = &userPassword
	}
	if flags.Changed("role") {
		role := domain.UserRole(userRole)
		req.Role = &role
	}

	user, err := userService.Update(cmd.Context(), domain.ID(args[0]), req)
	if err != nil {
		return describeError(err)
	}
	cmd.Printf("Updated %s (%s)\n", user.Email, user.ID)
	return nil
}

func runUsersDelete(cmd *cobra.Command, args []string) error {
	if userService == nil {
		return errNotConfigured("user")
	}

	if err := userService.Delete(cmd.Context(), domain.ID(args[0])); err != nil {
		return describeError(err)
	}
	cmd.Printf("Deleted user %s\n", args[0])
	return nil
}

func runUsersToggle(cmd *cobra.Command, args []string) error {
	if userService == nil {
		return errNotConfigured("user")
	}

	user, err := userService.ToggleStatus(cmd.Context(), domain.ID(args[0]))
	if err != nil {
		return describeError(err)
	}
	state := "deactivated"
	if user.IsActive {
		state = "activated"
	}
	cmd.Printf("%s %s\n", user.Email, state)
	return nil
}

func runUsersStats(cmd *cobra.Command, _ []string) error {
	if userService == nil {
		return errNotConfigured("user")
	}

	stats, err := userService.Stats(cmd.Context())
	if err != nil {
		return describeError(err)
	}
	if jsonOutput {
		return printJSON(cmd, stats)
	}
	cmd.Printf("Total:    %d\n", stats.Total)
	cmd.Printf("Active:   %d\n", stats.Active)
	cmd.Printf("Inactive: %d\n", stats.Inactive)
	for _, role := range []domain.UserRole{domain.RoleStudent, domain.RoleProfessor, domain.RoleAdmin} {
		if n, ok := stats.ByRole[role]; ok {
			cmd.Printf("  %-10s %d\n", role, n)
		}
	}
	return nil
}
