// ABOUTME: CLI commands for on-chain journal entries.
// ABOUTME: Provides list, read, create, update, delete, and address subcommands.
package main

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/spf13/cobra"

	"github.com/2389-research/chainjournal/internal/journal"
	"github.com/2389-research/chainjournal/internal/models"
	"github.com/2389-research/chainjournal/internal/program"
)

var entriesCmd = &cobra.Command{
	Use:   "entries",
	Short: "List journal entries",
	Long:  "List every journal entry stored by the program on the active cluster, sorted by title.",
	RunE:  runEntries,
}

var entryCmd = &cobra.Command{
	Use:   "entry",
	Short: "Manage a journal entry",
	Long:  "Read, create, update, and delete individual journal entries.",
}

var entryReadCmd = &cobra.Command{
	Use:   "read [address]",
	Short: "Read a journal entry",
	Long:  "Read an entry by account address, or by --title for the loaded keypair.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runEntryRead,
}

var entryCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a journal entry",
	Long:  "Create a journal entry signed by the loaded keypair.",
	RunE:  runEntryCreate,
}

var entryUpdateCmd = &cobra.Command{
	Use:   "update",
	Short: "Update a journal entry",
	Long:  "Replace the message of an entry owned by the loaded keypair.",
	RunE:  runEntryUpdate,
}

var entryDeleteCmd = &cobra.Command{
	Use:   "delete <title>",
	Short: "Delete a journal entry",
	Long:  "Close the entry with the given title owned by the loaded keypair.",
	Args:  cobra.ExactArgs(1),
	RunE:  runEntryDelete,
}

var entryAddressCmd = &cobra.Command{
	Use:   "address <title>",
	Short: "Derive an entry address",
	Long:  "Print the account address an entry title maps to for an owner.",
	Args:  cobra.ExactArgs(1),
	RunE:  runEntryAddress,
}

// Flags
var (
	entryTitle     string
	entryMessage   string
	entryOwner     string
	entriesLimit   int
	entriesRefresh bool
)

const listPreviewLen = 60

func init() {
	rootCmd.AddCommand(entriesCmd)
	rootCmd.AddCommand(entryCmd)
	entryCmd.AddCommand(entryReadCmd)
	entryCmd.AddCommand(entryCreateCmd)
	entryCmd.AddCommand(entryUpdateCmd)
	entryCmd.AddCommand(entryDeleteCmd)
	entryCmd.AddCommand(entryAddressCmd)

	entriesCmd.Flags().IntVar(&entriesLimit, "limit", 0, "Maximum number of entries to show (0 for all)")
	entriesCmd.Flags().BoolVar(&entriesRefresh, "refresh", false, "Reload from the cluster instead of the cache")

	entryReadCmd.Flags().StringVar(&entryTitle, "title", "", "Entry title owned by the loaded keypair")

	for _, c := range []*cobra.Command{entryCreateCmd, entryUpdateCmd} {
		c.Flags().StringVar(&entryTitle, "title", "", "Entry title")
		c.Flags().StringVar(&entryMessage, "message", "", "Entry message")
		_ = c.MarkFlagRequired("title")
	}

	entryAddressCmd.Flags().StringVar(&entryOwner, "owner", "", "Owner public key (default: the loaded keypair)")
}

func runEntries(cmd *cobra.Command, args []string) error {
	var q journal.Query[[]models.JournalEntry]
	if entriesRefresh {
		q = globalProgram.Refresh(cmd.Context())
	} else {
		q = globalProgram.Entries(cmd.Context())
	}
	if q.IsError() {
		return fmt.Errorf("failed to list entries: %w", q.Err)
	}

	entries := q.Data
	if len(entries) == 0 {
		fmt.Println("No entries found.")
		return nil
	}
	if entriesLimit > 0 && len(entries) > entriesLimit {
		entries = entries[:entriesLimit]
	}

	for _, entry := range entries {
		fmt.Printf("%s  %s  %s\n",
			entry.Address,
			entry.Title,
			models.Preview(entry.Message, listPreviewLen),
		)
	}
	return nil
}

func runEntryRead(cmd *cobra.Command, args []string) error {
	var accessor *journal.EntryAccessor
	switch {
	case len(args) == 1:
		addr, err := solana.PublicKeyFromBase58(args[0])
		if err != nil {
			return fmt.Errorf("invalid address %q: %w", args[0], err)
		}
		accessor = globalProgram.Account(addr)
	case entryTitle != "":
		if err := requireWallet(); err != nil {
			return err
		}
		a, err := globalProgram.AccountByTitle(entryTitle)
		if err != nil {
			return err
		}
		accessor = a
	default:
		return fmt.Errorf("an address argument or --title is required")
	}

	q := accessor.Entry(cmd.Context())
	if q.IsError() {
		return fmt.Errorf("failed to read entry: %w", q.Err)
	}
	entry := q.Data

	fmt.Printf("Title:   %s\n", entry.Title)
	fmt.Printf("Owner:   %s\n", entry.Owner)
	fmt.Printf("Address: %s\n", entry.Address)
	fmt.Println()
	fmt.Println(entry.Message)
	return nil
}

func runEntryCreate(cmd *cobra.Command, args []string) error {
	if err := requireWallet(); err != nil {
		return err
	}
	res := globalProgram.CreateEntry(cmd.Context(), models.CreateEntryArgs{
		Title:   entryTitle,
		Message: entryMessage,
		Owner:   globalProgram.Owner(),
	})
	return settled(res)
}

func runEntryUpdate(cmd *cobra.Command, args []string) error {
	if err := requireWallet(); err != nil {
		return err
	}
	accessor, err := globalProgram.AccountByTitle(entryTitle)
	if err != nil {
		return err
	}
	res := accessor.UpdateEntry(cmd.Context(), models.CreateEntryArgs{
		Title:   entryTitle,
		Message: entryMessage,
		Owner:   globalProgram.Owner(),
	})
	return settled(res)
}

func runEntryDelete(cmd *cobra.Command, args []string) error {
	if err := requireWallet(); err != nil {
		return err
	}
	title := args[0]
	accessor, err := globalProgram.AccountByTitle(title)
	if err != nil {
		return err
	}
	return settled(accessor.DeleteEntry(cmd.Context(), title))
}

func runEntryAddress(cmd *cobra.Command, args []string) error {
	owner := globalProgram.Owner()
	if entryOwner != "" {
		pk, err := solana.PublicKeyFromBase58(entryOwner)
		if err != nil {
			return fmt.Errorf("invalid owner %q: %w", entryOwner, err)
		}
		owner = pk
	}
	if owner.IsZero() {
		return fmt.Errorf("--owner is required when no keypair is loaded")
	}

	addr, err := program.DeriveEntryAddress(globalProgram.ProgramID(), args[0], owner)
	if err != nil {
		return err
	}
	fmt.Println(addr)
	return nil
}

// settled turns a mutation result into the command's exit status. The toast
// subscriber has already reported the outcome.
func settled(res journal.Result) error {
	if !res.Ok() {
		return errReported
	}
	return nil
}
