// ABOUTME: MCP tool implementations for on-chain journal operations.
// ABOUTME: Registers entry CRUD, address derivation, program account, and cache reset tools.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/gagliardetto/solana-go"
	gomcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/2389-research/chainjournal/internal/journal"
	"github.com/2389-research/chainjournal/internal/models"
	"github.com/2389-research/chainjournal/internal/program"
)

const previewLen = 60

func (s *Server) registerJournalTools() {
	s.mcp.AddTool(&gomcp.Tool{
		Name:        "list_entries",
		Description: "List journal entries stored by the program on the active cluster, sorted by title.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"limit": {"type": "number", "description": "Maximum number of entries to return (default: all)"},
				"refresh": {"type": "boolean", "description": "Bypass the cache and reload from the cluster"}
			}
		}`),
	}, s.handleListEntries)

	s.mcp.AddTool(&gomcp.Tool{
		Name:        "read_entry",
		Description: "Read one journal entry by account address, or by title for the connected wallet.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"address": {"type": "string", "description": "Base58 entry account address"},
				"title": {"type": "string", "description": "Entry title owned by the connected wallet"}
			}
		}`),
	}, s.handleReadEntry)

	s.mcp.AddTool(&gomcp.Tool{
		Name:        "create_entry",
		Description: "Create a journal entry signed by the connected wallet.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"title": {"type": "string", "description": "Entry title, unique per owner"},
				"message": {"type": "string", "description": "Entry body"}
			},
			"required": ["title", "message"]
		}`),
	}, s.handleCreateEntry)

	s.mcp.AddTool(&gomcp.Tool{
		Name:        "update_entry",
		Description: "Replace the message of an existing journal entry owned by the connected wallet.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"title": {"type": "string", "description": "Title of the entry to update"},
				"message": {"type": "string", "description": "New entry body"}
			},
			"required": ["title", "message"]
		}`),
	}, s.handleUpdateEntry)

	s.mcp.AddTool(&gomcp.Tool{
		Name:        "delete_entry",
		Description: "Close a journal entry owned by the connected wallet.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"title": {"type": "string", "description": "Title of the entry to delete"}
			},
			"required": ["title"]
		}`),
	}, s.handleDeleteEntry)

	s.mcp.AddTool(&gomcp.Tool{
		Name:        "entry_address",
		Description: "Derive the account address of an entry from its title and owner.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"title": {"type": "string", "description": "Entry title"},
				"owner": {"type": "string", "description": "Owner public key (default: connected wallet)"}
			},
			"required": ["title"]
		}`),
	}, s.handleEntryAddress)

	s.mcp.AddTool(&gomcp.Tool{
		Name:        "get_program_account",
		Description: "Show parsed account info for the journal program on the active cluster.",
		InputSchema: json.RawMessage(`{"type": "object", "properties": {}}`),
	}, s.handleGetProgramAccount)

	s.mcp.AddTool(&gomcp.Tool{
		Name:        "reset_cache",
		Description: "Drop every cached read for the active cluster so the next read reloads from the network.",
		InputSchema: json.RawMessage(`{"type": "object", "properties": {}}`),
	}, s.handleResetCache)
}

func (s *Server) handleListEntries(ctx context.Context, req *gomcp.CallToolRequest) (*gomcp.CallToolResult, error) {
	var args struct {
		Limit   int  `json:"limit"`
		Refresh bool `json:"refresh"`
	}
	if err := unmarshalArgs(req, &args); err != nil {
		return toolError("invalid arguments: %v", err), nil
	}

	var q journal.Query[[]models.JournalEntry]
	if args.Refresh {
		q = s.program.Refresh(ctx)
	} else {
		q = s.program.Entries(ctx)
	}
	if q.IsError() {
		return toolError("failed to list entries: %v", q.Err), nil
	}

	entries := q.Data
	if len(entries) == 0 {
		return textResult("No journal entries found."), nil
	}
	if args.Limit > 0 && len(entries) > args.Limit {
		entries = entries[:args.Limit]
	}

	var sb strings.Builder
	for _, entry := range entries {
		sb.WriteString(fmt.Sprintf("- %s (%s) %s\n",
			entry.Title,
			entry.Address,
			models.Preview(entry.Message, previewLen),
		))
	}
	return textResult(sb.String()), nil
}

func (s *Server) handleReadEntry(ctx context.Context, req *gomcp.CallToolRequest) (*gomcp.CallToolResult, error) {
	var args struct {
		Address string `json:"address"`
		Title   string `json:"title"`
	}
	if err := unmarshalArgs(req, &args); err != nil {
		return toolError("invalid arguments: %v", err), nil
	}

	var accessor *journal.EntryAccessor
	switch {
	case args.Address != "":
		addr, err := solana.PublicKeyFromBase58(args.Address)
		if err != nil {
			return toolError("invalid address: %v", err), nil
		}
		accessor = s.program.Account(addr)
	case args.Title != "":
		if s.program.Owner().IsZero() {
			return toolError("reading by title needs a connected wallet; pass address instead"), nil
		}
		a, err := s.program.AccountByTitle(args.Title)
		if err != nil {
			return toolError("failed to derive entry address: %v", err), nil
		}
		accessor = a
	default:
		return toolError("address or title is required"), nil
	}

	q := accessor.Entry(ctx)
	if q.IsError() {
		return toolError("failed to read entry: %v", q.Err), nil
	}
	return textResult(formatEntry(q.Data)), nil
}

func (s *Server) handleCreateEntry(ctx context.Context, req *gomcp.CallToolRequest) (*gomcp.CallToolResult, error) {
	args, errResult := s.titleMessageArgs(req)
	if errResult != nil {
		return errResult, nil
	}
	res := s.program.CreateEntry(ctx, args)
	return s.mutationResult("Entry created", res), nil
}

func (s *Server) handleUpdateEntry(ctx context.Context, req *gomcp.CallToolRequest) (*gomcp.CallToolResult, error) {
	args, errResult := s.titleMessageArgs(req)
	if errResult != nil {
		return errResult, nil
	}
	accessor, err := s.program.AccountByTitle(args.Title)
	if err != nil {
		return toolError("failed to derive entry address: %v", err), nil
	}
	res := accessor.UpdateEntry(ctx, args)
	return s.mutationResult("Entry updated", res), nil
}

func (s *Server) handleDeleteEntry(ctx context.Context, req *gomcp.CallToolRequest) (*gomcp.CallToolResult, error) {
	var args struct {
		Title string `json:"title"`
	}
	if err := unmarshalArgs(req, &args); err != nil {
		return toolError("invalid arguments: %v", err), nil
	}
	if args.Title == "" {
		return toolError("title is required"), nil
	}
	accessor, err := s.program.AccountByTitle(args.Title)
	if err != nil {
		return toolError("failed to derive entry address: %v", err), nil
	}
	res := accessor.DeleteEntry(ctx, args.Title)
	return s.mutationResult("Entry deleted", res), nil
}

func (s *Server) handleEntryAddress(ctx context.Context, req *gomcp.CallToolRequest) (*gomcp.CallToolResult, error) {
	var args struct {
		Title string `json:"title"`
		Owner string `json:"owner"`
	}
	if err := unmarshalArgs(req, &args); err != nil {
		return toolError("invalid arguments: %v", err), nil
	}
	if args.Title == "" {
		return toolError("title is required"), nil
	}

	owner := s.program.Owner()
	if args.Owner != "" {
		pk, err := solana.PublicKeyFromBase58(args.Owner)
		if err != nil {
			return toolError("invalid owner: %v", err), nil
		}
		owner = pk
	}
	if owner.IsZero() {
		return toolError("owner is required when no wallet is connected"), nil
	}

	addr, err := program.DeriveEntryAddress(s.program.ProgramID(), args.Title, owner)
	if err != nil {
		return toolError("failed to derive entry address: %v", err), nil
	}
	return textResult(fmt.Sprintf("Address: %s\nExplorer: %s",
		addr, s.program.Cluster().ExplorerAddressURL(addr.String()))), nil
}

func (s *Server) handleGetProgramAccount(ctx context.Context, req *gomcp.CallToolRequest) (*gomcp.CallToolResult, error) {
	q := s.program.ProgramAccount(ctx)
	if q.IsError() {
		return toolError("failed to get program account: %v", q.Err), nil
	}
	acct := q.Data
	if acct == nil {
		return textResult(fmt.Sprintf("Program %s is not deployed on %s.",
			s.program.ProgramID(), s.program.Cluster().Name)), nil
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Program: %s\n", acct.Address))
	sb.WriteString(fmt.Sprintf("Cluster: %s\n", s.program.Cluster().Name))
	sb.WriteString(fmt.Sprintf("Owner: %s\n", acct.Owner))
	sb.WriteString(fmt.Sprintf("Lamports: %d\n", acct.Lamports))
	sb.WriteString(fmt.Sprintf("Executable: %t\n", acct.Executable))
	if len(acct.Parsed) > 0 {
		sb.WriteString(fmt.Sprintf("Parsed: %s\n", string(acct.Parsed)))
	}
	return textResult(sb.String()), nil
}

func (s *Server) handleResetCache(ctx context.Context, req *gomcp.CallToolRequest) (*gomcp.CallToolResult, error) {
	n := s.program.Reset()
	return textResult(fmt.Sprintf("Dropped %d cached reads for %s.", n, s.program.Cluster().Name)), nil
}

func (s *Server) titleMessageArgs(req *gomcp.CallToolRequest) (models.CreateEntryArgs, *gomcp.CallToolResult) {
	var args struct {
		Title   string `json:"title"`
		Message string `json:"message"`
	}
	if err := unmarshalArgs(req, &args); err != nil {
		return models.CreateEntryArgs{}, toolError("invalid arguments: %v", err)
	}
	if args.Title == "" {
		return models.CreateEntryArgs{}, toolError("title is required")
	}
	return models.CreateEntryArgs{Title: args.Title, Message: args.Message, Owner: s.program.Owner()}, nil
}

// mutationResult renders a settled mutation. Failures carry the same text the
// error notification shows.
func (s *Server) mutationResult(action string, res journal.Result) *gomcp.CallToolResult {
	if !res.Ok() {
		return toolError("%s", journal.FailureMessage(res.Err))
	}
	sig := res.Signature.String()
	return textResult(fmt.Sprintf("%s.\nSignature: %s\nExplorer: %s",
		action, sig, s.program.Cluster().ExplorerTxURL(sig)))
}

func formatEntry(entry *models.JournalEntry) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Title: %s\n", entry.Title))
	sb.WriteString(fmt.Sprintf("Owner: %s\n", entry.Owner))
	sb.WriteString(fmt.Sprintf("Address: %s\n", entry.Address))
	sb.WriteString(fmt.Sprintf("\n%s\n", entry.Message))
	return sb.String()
}

func unmarshalArgs(req *gomcp.CallToolRequest, v interface{}) error {
	if len(req.Params.Arguments) == 0 {
		return nil
	}
	return json.Unmarshal(req.Params.Arguments, v)
}

func textResult(text string) *gomcp.CallToolResult {
	return &gomcp.CallToolResult{
		Content: []gomcp.Content{&gomcp.TextContent{Text: text}},
	}
}

// toolError creates an error result for MCP tool responses.
func toolError(format string, args ...interface{}) *gomcp.CallToolResult {
	return &gomcp.CallToolResult{
		Content: []gomcp.Content{&gomcp.TextContent{Text: fmt.Sprintf(format, args...)}},
		IsError: true,
	}
}
