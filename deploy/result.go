package deploy

import "github.com/avense/inkdeploy/types"

// Result is the terminal, immutable outcome of one deployment attempt.
// Exactly one Result is produced per submission.
type Result struct {
	// Address is the deployed contract address; set only on success.
	Address types.AccountID

	// BlockHash references the finalizing block on success, or the block
	// in which the rejection was observed.
	BlockHash types.Hash

	// Kind classifies the failure; KindNone on success.
	Kind ErrorKind

	// Err carries the failure diagnostic; nil on success.
	Err error
}

// Successful reports whether the deployment finalized with an address.
func (r Result) Successful() bool {
	return r.Kind == KindNone && r.Err == nil
}

func success(addr types.AccountID, block types.Hash) Result {
	return Result{Address: addr, BlockHash: block}
}

func failure(kind ErrorKind, err error) Result {
	return Result{Kind: kind, Err: err}
}
