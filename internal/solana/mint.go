package solana

import (
	"encoding/base64"
	"encoding/binary"
	"fmt"

	"github.com/mr-tron/base58"
)

// splMintLen is the serialized size of an SPL Token mint account.
const splMintLen = 82

// MintState is the decoded state of an SPL mint account.
type MintState struct {
	MintAuthority   *string // nil when revoked
	FreezeAuthority *string // nil when revoked
	Supply          uint64  // raw units
	Decimals        uint8
	Initialized     bool
}

// ParseMint decodes the base64 account data of an SPL Token mint.
//
// Layout: mint_authority COption<Pubkey> (4+32), supply u64, decimals u8,
// is_initialized u8, freeze_authority COption<Pubkey> (4+32).
func ParseMint(data string) (*MintState, error) {
	decoded, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return nil, fmt.Errorf("decode mint account data: %w", err)
	}
	if len(decoded) < splMintLen {
		return nil, fmt.Errorf("mint account data too short: %d bytes", len(decoded))
	}

	state := &MintState{}

	if binary.LittleEndian.Uint32(decoded[0:4]) == 1 {
		auth := base58.Encode(decoded[4:36])
		state.MintAuthority = &auth
	}

	state.Supply = binary.LittleEndian.Uint64(decoded[36:44])
	state.Decimals = decoded[44]
	state.Initialized = decoded[45] == 1

	if binary.LittleEndian.Uint32(decoded[46:50]) == 1 {
		auth := base58.Encode(decoded[50:82])
		state.FreezeAuthority = &auth
	}

	return state, nil
}
