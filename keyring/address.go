package keyring

import (
	"golang.org/x/crypto/blake2b"

	"github.com/mr-tron/base58"

	"github.com/avense/inkdeploy/types"
)

// ss58Prefix is the context string mixed into the SS58 checksum.
var ss58Prefix = []byte("SS58PRE")

// contractAddrContext is the derivation domain for contract addresses.
var contractAddrContext = []byte("contract_addr_v1")

// SS58Address renders an account id in SS58 form for the given network
// prefix (0 = Polkadot, 42 = generic Substrate).
func SS58Address(account types.AccountID, network uint16) string {
	ident := network & 0x3FFF
	var payload []byte
	if ident < 64 {
		payload = append(payload, byte(ident))
	} else {
		// Two-byte prefix form for identifiers 64..16383.
		first := byte(ident&0b0000_0000_1111_1100)>>2 | 0b0100_0000
		second := byte(ident>>8) | byte(ident&0b0000_0000_0000_0011)<<6
		payload = append(payload, first, second)
	}
	payload = append(payload, account[:]...)

	h, _ := blake2b.New512(nil)
	h.Write(ss58Prefix)
	h.Write(payload)
	sum := h.Sum(nil)

	payload = append(payload, sum[:2]...)
	return base58.Encode(payload)
}

// ContractAddress derives the deterministic address a chain assigns to an
// instantiated contract: blake2b-256 over the derivation context, the
// deploying account, the code hash, the constructor input and the salt.
func ContractAddress(deployer types.AccountID, codeHash types.Hash, input, salt []byte) types.AccountID {
	h, _ := blake2b.New256(nil)
	h.Write(contractAddrContext)
	h.Write(deployer[:])
	h.Write(codeHash[:])
	h.Write(input)
	h.Write(salt)

	var addr types.AccountID
	copy(addr[:], h.Sum(nil))
	return addr
}
