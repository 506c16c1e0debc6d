// ABOUTME: Anchor wire encoding for the journal program.
// ABOUTME: Builds instruction data, decodes JournalEntryState accounts, and derives entry addresses.
package program

import (
	"bytes"
	"crypto/sha256"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"

	"github.com/2389-research/chainjournal/internal/models"
)

// Instruction names as declared by the program.
const (
	ixCreate = "create_journal_entry"
	ixUpdate = "update_journal_entry"
	ixDelete = "delete_journal_entry"

	entryAccountName = "JournalEntryState"
)

// EntryDiscriminator prefixes every JournalEntryState account.
var EntryDiscriminator = discriminator("account", entryAccountName)

// discriminator returns the first 8 bytes of sha256("<namespace>:<name>").
func discriminator(namespace, name string) [8]byte {
	sum := sha256.Sum256([]byte(namespace + ":" + name))
	var d [8]byte
	copy(d[:], sum[:8])
	return d
}

// InstructionDiscriminator returns the Anchor discriminator for an instruction name.
func InstructionDiscriminator(name string) [8]byte {
	return discriminator("global", name)
}

type titleMessageArgs struct {
	Title   string
	Message string
}

type titleArgs struct {
	Title string
}

// entryState mirrors the Borsh layout of JournalEntryState after the discriminator.
type entryState struct {
	Owner   solana.PublicKey
	Title   string
	Message string
}

// encodeInstruction writes the discriminator for name followed by Borsh-encoded args.
func encodeInstruction(name string, args interface{}) ([]byte, error) {
	buf := new(bytes.Buffer)
	enc := bin.NewBorshEncoder(buf)
	d := InstructionDiscriminator(name)
	if err := enc.WriteBytes(d[:], false); err != nil {
		return nil, fmt.Errorf("failed to write discriminator: %w", err)
	}
	if err := enc.Encode(args); err != nil {
		return nil, fmt.Errorf("failed to encode %s args: %w", name, err)
	}
	return buf.Bytes(), nil
}

// DecodeEntry decodes raw JournalEntryState account data stored at address.
func DecodeEntry(address solana.PublicKey, data []byte) (*models.JournalEntry, error) {
	if len(data) < 8 {
		return nil, fmt.Errorf("account %s: data too short (%d bytes)", address, len(data))
	}
	if !bytes.Equal(data[:8], EntryDiscriminator[:]) {
		return nil, fmt.Errorf("account %s is not a %s", address, entryAccountName)
	}

	var state entryState
	if err := bin.NewBorshDecoder(data[8:]).Decode(&state); err != nil {
		return nil, fmt.Errorf("failed to decode %s at %s: %w", entryAccountName, address, err)
	}
	return &models.JournalEntry{
		Address: address,
		Owner:   state.Owner,
		Title:   state.Title,
		Message: state.Message,
	}, nil
}

// EncodeEntry produces account data for an entry. Used by fakes and tests.
func EncodeEntry(entry models.JournalEntry) ([]byte, error) {
	buf := new(bytes.Buffer)
	enc := bin.NewBorshEncoder(buf)
	if err := enc.WriteBytes(EntryDiscriminator[:], false); err != nil {
		return nil, err
	}
	if err := enc.Encode(entryState{Owner: entry.Owner, Title: entry.Title, Message: entry.Message}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DeriveEntryAddress returns the PDA seeded by [title, owner] under programID.
func DeriveEntryAddress(programID solana.PublicKey, title string, owner solana.PublicKey) (solana.PublicKey, error) {
	addr, _, err := solana.FindProgramAddress([][]byte{[]byte(title), owner.Bytes()}, programID)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("failed to derive entry address for %q: %w", title, err)
	}
	return addr, nil
}

// entryInstruction builds a journal instruction over the standard account list.
func entryInstruction(programID, owner solana.PublicKey, title, name string, args interface{}) (solana.Instruction, error) {
	entry, err := DeriveEntryAddress(programID, title, owner)
	if err != nil {
		return nil, err
	}
	data, err := encodeInstruction(name, args)
	if err != nil {
		return nil, err
	}
	accounts := solana.AccountMetaSlice{
		solana.Meta(entry).WRITE(),
		solana.Meta(owner).WRITE().SIGNER(),
		solana.Meta(solana.SystemProgramID),
	}
	return solana.NewInstruction(programID, accounts, data), nil
}
