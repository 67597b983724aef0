package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"curator/internal/storage"
)

func newStoreCommand(ctx *commandContext) *cobra.Command {
	storeCmd := &cobra.Command{
		Use:   "store",
		Short: "Manage the asset store",
	}

	storeCmd.AddCommand(newStoreAddCommand(ctx))
	storeCmd.AddCommand(newStoreListCommand(ctx))
	storeCmd.AddCommand(newStoreGetCommand(ctx))
	storeCmd.AddCommand(newStoreRemoveCommand(ctx))
	storeCmd.AddCommand(newStoreContainsCommand(ctx))

	return storeCmd
}

func newStoreAddCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "add <file>...",
		Short: "Read media files and add them to the store",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			registry, err := ctx.ensureRegistry()
			if err != nil {
				return err
			}
			return ctx.withLockedStore(func(store *storage.FileStore) error {
				for _, path := range args {
					a, err := registry.ReadFile(cmd.Context(), path)
					if err != nil {
						return fmt.Errorf("read %s: %w", path, err)
					}
					id, err := store.Add(cmd.Context(), a)
					if err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "Stored %s as asset %s\n", path, id)
				}
				return nil
			})
		},
	}
}

type storeEntry struct {
	ID        string    `json:"id"`
	MIMEType  string    `json:"mime_type"`
	Size      int64     `json:"size"`
	CreatedAt time.Time `json:"created_at"`
}

func newStoreListCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored assets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(store *storage.FileStore) error {
				entries, err := store.List(cmd.Context())
				if err != nil {
					return err
				}
				if asJSON {
					payload := make([]storeEntry, 0, len(entries))
					for _, entry := range entries {
						payload = append(payload, storeEntry{
							ID:        entry.ID,
							MIMEType:  entry.MIMEType,
							Size:      entry.Size,
							CreatedAt: entry.CreatedAt,
						})
					}
					return writeJSON(cmd, payload)
				}
				out := cmd.OutOrStdout()
				if len(entries) == 0 {
					fmt.Fprintln(out, "Store is empty")
					return nil
				}
				rows := make([][]string, 0, len(entries))
				for _, entry := range entries {
					added := ""
					if !entry.CreatedAt.IsZero() {
						added = entry.CreatedAt.Local().Format("2006-01-02 15:04")
					}
					rows = append(rows, []string{
						entry.ID,
						entry.MIMEType,
						humanize.IBytes(uint64(entry.Size)),
						added,
					})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"ID", "Type", "Size", "Added"},
					rows,
					[]columnAlignment{alignRight, alignLeft, alignRight, alignLeft},
				))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit JSON instead of a table")
	return cmd
}

func newStoreGetCommand(ctx *commandContext) *cobra.Command {
	var output string
	var essenceOnly bool

	cmd := &cobra.Command{
		Use:   "get <id>",
		Short: "Write a stored asset back to a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			registry, err := ctx.ensureRegistry()
			if err != nil {
				return err
			}
			return ctx.withStore(func(store *storage.FileStore) error {
				a, found, err := store.Get(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if !found {
					return fmt.Errorf("asset %s not found", args[0])
				}
				target := strings.TrimSpace(output)
				if target == "" {
					target = "asset-" + args[0] + extensionForMIME(a.MIMEType(), ".bin")
				}
				return writeAssetOutput(cmd, registry, a, target, essenceOnly)
			})
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output path (defaults to asset-<id> in the working directory)")
	cmd.Flags().BoolVar(&essenceOnly, "essence-only", false, "Write the bare essence without metadata")
	return cmd
}

func newStoreRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <id>",
		Short: "Remove a stored asset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withLockedStore(func(store *storage.FileStore) error {
				a, found, err := store.Get(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if !found {
					return fmt.Errorf("asset %s not found", args[0])
				}
				if err := store.Remove(cmd.Context(), a); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed asset %s\n", args[0])
				return nil
			})
		},
	}
}

func newStoreContainsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "contains <file>",
		Short: "Check whether an equal asset is already stored",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			registry, err := ctx.ensureRegistry()
			if err != nil {
				return err
			}
			return ctx.withStore(func(store *storage.FileStore) error {
				a, err := registry.ReadFile(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				found, err := store.Contains(cmd.Context(), a)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), yesNo(found))
				return nil
			})
		},
	}
}
