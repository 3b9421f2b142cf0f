package cli

import (
	"sort"
	"time"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show backend and session status",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	cmd.Printf("API:     %s\n", apiURL)
	if healthChecker == nil {
		cmd.Println("Backend: unknown")
	} else if health, err := healthChecker.Health(ctx); err != nil {
		cmd.Printf("Backend: unreachable (%v)\n", err)
	} else {
		cmd.Println("Backend: ok")
		keys := make([]string, 0, len(health))
		for k := range health {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			cmd.Printf("  %s: %v\n", k, health[k])
		}
	}

	if authService == nil {
		return nil
	}
	session, err := authService.Session(ctx)
	switch {
	case err != nil:
		cmd.Printf("Session: error (%v)\n", err)
	case session == nil || !session.IsAuthenticated():
		cmd.Println("Session: signed out")
	default:
		who := "unknown user"
		if session.User != nil {
			who = session.User.Email + " (" + string(session.User.Role) + ")"
		}
		cmd.Printf("Session: %s\n", who)
		if !session.Expiry.IsZero() {
			if session.Expiry.After(time.Now()) {
				cmd.Printf("Token:   expires %s\n", humanTime(session.Expiry))
			} else {
				cmd.Println("Token:   expired, refreshed on next request")
			}
		}
	}
	return nil
}
