package cli

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/ragchat-cli/internal/core/domain"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage settings",
	Long: `View and change settings.

  prompt   The system prompt the backend uses for every answer
  general  Backend-wide settings (admin)
  config   Your own display preferences, kept locally per user`,
	RunE: runConfigShow,
}

var settingsPromptCmd = &cobra.Command{
	Use:   "prompt",
	Short: "Show the system prompt",
	Args:  cobra.NoArgs,
	RunE:  runPromptShow,
}

var settingsPromptSetCmd = &cobra.Command{
	Use:   "set [prompt...]",
	Short: "Replace the system prompt",
	Long:  `Replace the system prompt. Without arguments the prompt is read from stdin.`,
	RunE:  runPromptSet,
}

var settingsPromptResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Restore the default system prompt",
	Args:  cobra.NoArgs,
	RunE:  runPromptReset,
}

var settingsGeneralCmd = &cobra.Command{
	Use:   "general",
	Short: "Show backend settings",
	Args:  cobra.NoArgs,
	RunE:  runGeneralShow,
}

var settingsGeneralSetCmd = &cobra.Command{
	Use:   "set [key=value...]",
	Short: "Change backend settings",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runGeneralSet,
}

var settingsGeneralResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Restore backend defaults",
	Args:  cobra.NoArgs,
	RunE:  runGeneralReset,
}

var settingsConfigCmd = &cobra.Command{
	Use:   "config",
	Short: "Show your preferences",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

var settingsConfigSetCmd = &cobra.Command{
	Use:   "set [key=value...]",
	Short: "Change your preferences",
	Long: `Change your preferences. Keys:

  system_name    Name shown in the title bar
  theme          light or dark
  language       Interface language, e.g. pt-BR
  notifications  true or false
  auto_save      true or false`,
	Args: cobra.MinimumNArgs(1),
	RunE: runConfigSet,
}

var settingsConfigResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Restore default preferences",
	Args:  cobra.NoArgs,
	RunE:  runConfigReset,
}

func init() {
	addJSONFlag(settingsPromptCmd, settingsGeneralCmd, settingsConfigCmd)

	settingsPromptCmd.AddCommand(settingsPromptSetCmd)
	settingsPromptCmd.AddCommand(settingsPromptResetCmd)
	settingsGeneralCmd.AddCommand(settingsGeneralSetCmd)
	settingsGeneralCmd.AddCommand(settingsGeneralResetCmd)
	settingsConfigCmd.AddCommand(settingsConfigSetCmd)
	settingsConfigCmd.AddCommand(settingsConfigResetCmd)

	settingsCmd.AddCommand(settingsPromptCmd)
	settingsCmd.AddCommand(settingsGeneralCmd)
	settingsCmd.AddCommand(settingsConfigCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runPromptShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errNotConfigured("settings")
	}

	prompt, err := settingsService.SystemPrompt(cmd.Context())
	if err != nil {
		return describeError(err)
	}
	if jsonOutput {
		return printJSON(cmd, prompt)
	}
	cmd.Println(prompt.Prompt)
	if !prompt.UpdatedAt.IsZero() {
		cmd.Printf("\n(updated %s)\n", humanTime(prompt.UpdatedAt))
	}
	return nil
}

func runPromptSet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errNotConfigured("settings")
	}

	text := strings.Join(args, " ")
	if len(args) == 0 {
		data, err := readAll(cmd)
		if err != nil {
			return err
		}
		text = data
	}

	if _, err := settingsService.UpdateSystemPrompt(cmd.Context(), text); err != nil {
		return describeError(err)
	}
	cmd.Println("System prompt updated")
	return nil
}

func runPromptReset(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errNotConfigured("settings")
	}

	prompt, err := settingsService.ResetSystemPrompt(cmd.Context())
	if err != nil {
		return describeError(err)
	}
	cmd.Println("System prompt restored:")
	cmd.Println(prompt.Prompt)
	return nil
}

func runGeneralShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errNotConfigured("settings")
	}

	settings, err := settingsService.GeneralSettings(cmd.Context())
	if err != nil {
		return describeError(err)
	}
	if jsonOutput {
		return printJSON(cmd, settings)
	}
	printGeneral(cmd, settings)
	return nil
}

func runGeneralSet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errNotConfigured("settings")
	}

	pairs, err := parsePairs(args)
	if err != nil {
		return err
	}
	update := domain.GeneralSettings{}
	for k, v := range pairs {
		update[k] = parseValue(v)
	}

	settings, err := settingsService.UpdateGeneralSettings(cmd.Context(), update)
	if err != nil {
		return describeError(err)
	}
	printGeneral(cmd, settings)
	return nil
}

func runGeneralReset(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errNotConfigured("settings")
	}

	settings, err := settingsService.ResetGeneralSettings(cmd.Context())
	if err != nil {
		return describeError(err)
	}
	printGeneral(cmd, settings)
	return nil
}

func printGeneral(cmd *cobra.Command, settings domain.GeneralSettings) {
	if len(settings) == 0 {
		cmd.Println("No settings")
		return
	}
	keys := make([]string, 0, len(settings))
	for k := range settings {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		cmd.Printf("%s = %v\n", k, settings[k])
	}
}

// currentUserID returns the signed-in user's ID, or "" when signed out.
func currentUserID(cmd *cobra.Command) string {
	if authService == nil {
		return ""
	}
	session, err := authService.Session(cmd.Context())
	if err != nil || session == nil || session.User == nil {
		return ""
	}
	return string(session.User.ID)
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errNotConfigured("settings")
	}

	cfg := settingsService.ReloadSystemConfig(currentUserID(cmd))
	if jsonOutput {
		return printJSON(cmd, cfg)
	}
	printSystemConfig(cmd, cfg)
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errNotConfigured("settings")
	}

	pairs, err := parsePairs(args)
	if err != nil {
		return err
	}
	userID := currentUserID(cmd)
	cfg := settingsService.ReloadSystemConfig(userID)
	for k, v := range pairs {
		if err := applyConfigValue(&cfg, k, v); err != nil {
			return err
		}
	}

	if err := settingsService.SaveSystemConfig(userID, cfg); err != nil {
		return describeError(err)
	}
	if userID == "" {
		cmd.PrintErrln("Not signed in: preferences apply to this run only.")
	}
	printSystemConfig(cmd, settingsService.SystemConfig())
	return nil
}

func runConfigReset(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errNotConfigured("settings")
	}

	cfg := settingsService.ResetSystemConfig()
	if err := settingsService.SaveSystemConfig(currentUserID(cmd), cfg); err != nil {
		return describeError(err)
	}
	printSystemConfig(cmd, cfg)
	return nil
}

func printSystemConfig(cmd *cobra.Command, cfg domain.SystemConfig) {
	cmd.Printf("system_name   = %s\n", cfg.SystemName)
	cmd.Printf("theme         = %s\n", cfg.Theme)
	cmd.Printf("language      = %s\n", cfg.Language)
	cmd.Printf("notifications = %t\n", cfg.Notifications)
	cmd.Printf("auto_save     = %t\n", cfg.AutoSave)
}

func applyConfigValue(cfg *domain.SystemConfig, key, value string) error {
	switch key {
	case "system_name", "systemName":
		cfg.SystemName = value
	case "theme":
		theme := domain.Theme(strings.ToLower(value))
		if theme != domain.ThemeLight && theme != domain.ThemeDark {
			return fmt.Errorf("theme: expected light or dark, got %q", value)
		}
		cfg.Theme = theme
	case "language":
		cfg.Language = value
	case "notifications", "auto_save", "autoSave":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%s: expected true or false, got %q", key, value)
		}
		if key == "notifications" {
			cfg.Notifications = b
		} else {
			cfg.AutoSave = b
		}
	default:
		return fmt.Errorf("unknown preference %q", key)
	}
	return nil
}

// parsePairs splits key=value arguments.
func parsePairs(args []string) (map[string]string, error) {
	pairs := make(map[string]string, len(args))
	for _, arg := range args {
		k, v, ok := strings.Cut(arg, "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			return nil, fmt.Errorf("expected key=value, got %q", arg)
		}
		pairs[k] = strings.TrimSpace(v)
	}
	return pairs, nil
}

// parseValue keeps booleans and numbers typed so the backend sees JSON
// values rather than strings.
func parseValue(v string) any {
	if b, err := strconv.ParseBool(v); err == nil {
		return b
	}
	if i, err := strconv.ParseInt(v, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		return f
	}
	return v
}
