package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/ragchat-cli/internal/core/domain"
)

var storeCmd = &cobra.Command{
	Use:     "store",
	Aliases: []string{"stores"},
	Short:   "Manage RAG stores",
	Long: `List, create, update, or delete document stores and manage who can
access them. Stores can be referenced by id, name, or display name.`,
}

var storeListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stores",
	Args:  cobra.NoArgs,
	RunE:  runStoreList,
}

var storeGetCmd = &cobra.Command{
	Use:   "get [store]",
	Short: "Show store info",
	Args:  cobra.ExactArgs(1),
	RunE:  runStoreGet,
}

var storeCreateCmd = &cobra.Command{
	Use:   "create [name]",
	Short: "Create a store",
	Args:  cobra.ExactArgs(1),
	RunE:  runStoreCreate,
}

var storeUpdateCmd = &cobra.Command{
	Use:   "update [store]",
	Short: "Rename or describe a store",
	Args:  cobra.ExactArgs(1),
	RunE:  runStoreUpdate,
}

var storeDeleteCmd = &cobra.Command{
	Use:   "delete [store]",
	Short: "Delete a store",
	Args:  cobra.ExactArgs(1),
	RunE:  runStoreDelete,
}

var storePermissionsCmd = &cobra.Command{
	Use:     "permissions",
	Aliases: []string{"perms"},
	Short:   "Manage store access",
}

var storePermListCmd = &cobra.Command{
	Use:   "list [store]",
	Short: "List users with access",
	Args:  cobra.ExactArgs(1),
	RunE:  runStorePermList,
}

var storePermGrantCmd = &cobra.Command{
	Use:   "grant [store] [user-id]",
	Short: "Give a user access",
	Args:  cobra.ExactArgs(2),
	RunE:  runStorePermGrant,
}

var storePermRevokeCmd = &cobra.Command{
	Use:   "revoke [store] [user-id]",
	Short: "Remove a user's access",
	Args:  cobra.ExactArgs(2),
	RunE:  runStorePermRevoke,
}

// Flags for store commands.
var (
	storeDisplayName string
	storeDescription string
	storeNewName     string
	permLevel        string
)

func init() {
	storeCreateCmd.Flags().StringVar(&storeDisplayName, "display-name", "", "Display name")
	storeCreateCmd.Flags().StringVar(&storeDescription, "description", "", "Description")
	storeUpdateCmd.Flags().StringVar(&storeNewName, "name", "", "New name")
	storeUpdateCmd.Flags().StringVar(&storeDisplayName, "display-name", "", "New display name")
	storeUpdateCmd.Flags().StringVar(&storeDescription, "description", "", "New description")
	storePermGrantCmd.Flags().StringVar(&permLevel, "level", string(domain.PermissionRead), "read, write or admin")
	addJSONFlag(storeListCmd, storeGetCmd, storePermListCmd)

	storePermissionsCmd.AddCommand(storePermListCmd)
	storePermissionsCmd.AddCommand(storePermGrantCmd)
	storePermissionsCmd.AddCommand(storePermRevokeCmd)

	storeCmd.AddCommand(storeListCmd)
	storeCmd.AddCommand(storeGetCmd)
	storeCmd.AddCommand(storeCreateCmd)
	storeCmd.AddCommand(storeUpdateCmd)
	storeCmd.AddCommand(storeDeleteCmd)
	storeCmd.AddCommand(storePermissionsCmd)
	rootCmd.AddCommand(storeCmd)
}

func runStoreList(cmd *cobra.Command, _ []string) error {
	if storeService == nil {
		return errNotConfigured("store")
	}

	stores, err := storeService.List(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list stores: %w", err)
	}
	if jsonOutput {
		return printJSON(cmd, stores)
	}
	if len(stores) == 0 {
		cmd.Println("No stores yet. Create one with 'ragchat store create <name>'.")
		return nil
	}

	rows := make([][]string, 0, len(stores))
	for i := range stores {
		st := &stores[i]
		rows = append(rows, []string{st.ID.String(), st.Label(), strconv.Itoa(st.DocumentCount), humanTime(st.CreatedAt)})
	}
	return printTable(cmd, []string{"ID", "NAME", "DOCUMENTS", "CREATED"}, rows)
}

func runStoreGet(cmd *cobra.Command, args []string) error {
	if storeService == nil {
		return errNotConfigured("store")
	}

	store, err := storeService.Find(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	if jsonOutput {
		return printJSON(cmd, store)
	}

	cmd.Printf("Store: %s\n\n", store.Label())
	cmd.Printf("  ID:        %s\n", store.ID)
	cmd.Printf("  Name:      %s\n", store.Name)
	cmd.Printf("  RAG store: %s\n", store.RagStoreName)
	cmd.Printf("  Documents: %d\n", store.DocumentCount)
	if store.Description != "" {
		cmd.Printf("  About:     %s\n", store.Description)
	}
	cmd.Printf("  Created:   %s\n", humanTime(store.CreatedAt))
	return nil
}

func runStoreCreate(cmd *cobra.Command, args []string) error {
	if storeService == nil {
		return errNotConfigured("store")
	}

	store, err := storeService.Create(cmd.Context(), domain.StoreInput{
		Name:        args[0],
		DisplayName: storeDisplayName,
		Description: storeDescription,
	})
	if err != nil {
		return fmt.Errorf("failed to create store: %w", err)
	}
	cmd.Printf("Created store %s (%s)\n", store.Label(), store.ID)
	return nil
}

func runStoreUpdate(cmd *cobra.Command, args []string) error {
	if storeService == nil {
		return errNotConfigured("store")
	}
	if storeNewName == "" && storeDisplayName == "" && storeDescription == "" {
		return fmt.Errorf("%w: nothing to update", domain.ErrInvalidInput)
	}
	ctx := cmd.Context()

	store, err := storeService.Find(ctx, args[0])
	if err != nil {
		return err
	}
	updated, err := storeService.Update(ctx, store.ID, domain.StoreInput{
		Name:        storeNewName,
		DisplayName: storeDisplayName,
		Description: storeDescription,
	})
	if err != nil {
		return fmt.Errorf("failed to update store: %w", err)
	}
	cmd.Printf("Updated store %s\n", updated.Label())
	return nil
}

func runStoreDelete(cmd *cobra.Command, args []string) error {
	if storeService == nil {
		return errNotConfigured("store")
	}
	ctx := cmd.Context()

	store, err := storeService.Find(ctx, args[0])
	if err != nil {
		return err
	}
	if err := storeService.Delete(ctx, store.ID); err != nil {
		return fmt.Errorf("failed to delete store: %w", err)
	}
	cmd.Printf("Deleted store %s\n", store.Label())
	return nil
}

func runStorePermList(cmd *cobra.Command, args []string) error {
	if storeService == nil {
		return errNotConfigured("store")
	}
	ctx := cmd.Context()

	store, err := storeService.Find(ctx, args[0])
	if err != nil {
		return err
	}
	perms, err := storeService.ListPermissions(ctx, store.ID)
	if err != nil {
		return err
	}
	if jsonOutput {
		return printJSON(cmd, perms)
	}
	if len(perms) == 0 {
		cmd.Printf("Only the owner can access %s\n", store.Label())
		return nil
	}

	rows := make([][]string, 0, len(perms))
	for _, p := range perms {
		rows = append(rows, []string{p.UserID.String(), p.UserEmail, string(p.Permission)})
	}
	return printTable(cmd, []string{"USER", "EMAIL", "LEVEL"}, rows)
}

func runStorePermGrant(cmd *cobra.Command, args []string) error {
	if storeService == nil {
		return errNotConfigured("store")
	}
	ctx := cmd.Context()

	store, err := storeService.Find(ctx, args[0])
	if err != nil {
		return err
	}
	perm, err := storeService.Grant(ctx, store.ID, domain.ID(args[1]), domain.PermissionLevel(permLevel))
	if err != nil {
		return err
	}
	cmd.Printf("Granted %s access to %s for user %s\n", perm.Permission, store.Label(), args[1])
	return nil
}

func runStorePermRevoke(cmd *cobra.Command, args []string) error {
	if storeService == nil {
		return errNotConfigured("store")
	}
	ctx := cmd.Context()

	store, err := storeService.Find(ctx, args[0])
	if err != nil {
		return err
	}
	if err := storeService.Revoke(ctx, store.ID, domain.ID(args[1])); err != nil {
		return err
	}
	cmd.Printf("Revoked access to %s for user %s\n", store.Label(), args[1])
	return nil
}
