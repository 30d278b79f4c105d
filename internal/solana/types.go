package solana

// Well-known program and mint addresses.
const (
	SystemProgram  = "11111111111111111111111111111111"
	TokenProgram   = "TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA"
	WrappedSOLMint = "So11111111111111111111111111111111111111112"
	LamportsPerSOL = 1_000_000_000
)

// SignatureInfo is one entry from getSignaturesForAddress.
type SignatureInfo struct {
	Signature string
	Slot      int64
	BlockTime *int64
	Err       interface{}
}

// SignaturesOpts configures signature pagination.
type SignaturesOpts struct {
	Before string
	Until  string
	Limit  int
}

// TokenBalance is a pre/post token balance entry from transaction meta.
type TokenBalance struct {
	AccountIndex int
	Mint         string
	Owner        string
	Amount       float64 // ui amount
}

// Transaction is a confirmed transaction with the meta the scanner needs:
// native balance deltas for funding traces, token balance deltas for
// transfer-topology classification.
type Transaction struct {
	Signature         string
	Slot              int64
	BlockTime         int64
	Failed            bool
	AccountKeys       []string
	PreBalances       []uint64
	PostBalances      []uint64
	PreTokenBalances  []TokenBalance
	PostTokenBalances []TokenBalance
	LogMessages       []string
}

// AccountInfo is raw Solana account state.
type AccountInfo struct {
	Lamports   uint64
	Owner      string
	Data       string // base64 encoded
	Executable bool
}

// TokenAccountBalance is one entry from getTokenLargestAccounts.
type TokenAccountBalance struct {
	Address string
	Amount  float64 // ui amount
}
