package ledger

import (
	"fmt"
	"math/big"

	"github.com/stellar/go/strkey"
	"github.com/stellar/go/txnbuild"
	"github.com/stellar/go/xdr"
)

// buildTransferInvocation assembles an InvokeHostFunction operation calling
// a SEP-41 style token contract's transfer(from, to, amount: i128) method.
func buildTransferInvocation(params ContractTransferParams) (*txnbuild.InvokeHostFunction, error) {
	contractID, err := strkey.Decode(strkey.VersionByteContract, params.ContractID)
	if err != nil {
		return nil, fmt.Errorf("invalid contract id %q: %w", params.ContractID, err)
	}
	var contractIDHash xdr.ContractId
	copy(contractIDHash[:], contractID)

	fromArg, err := scAddressForAccount(params.From)
	if err != nil {
		return nil, err
	}
	toArg, err := scAddressForAccount(params.To)
	if err != nil {
		return nil, err
	}
	amountArg := scValForI128(params.AmountAtomic)

	invokeArgs := xdr.InvokeContractArgs{
		ContractAddress: xdr.ScAddress{
			Type:       xdr.ScAddressTypeScAddressTypeContract,
			ContractId: &contractIDHash,
		},
		FunctionName: "transfer",
		Args: xdr.ScVec{fromArg, toArg, amountArg},
	}

	return &txnbuild.InvokeHostFunction{
		HostFunction: xdr.HostFunction{
			Type:           xdr.HostFunctionTypeHostFunctionTypeInvokeContract,
			InvokeContract: &invokeArgs,
		},
	}, nil
}

// scAddressForAccount wraps a G... or C... strkey address as an ScVal
// address, matching whichever kind transfer's from/to arguments require.
func scAddressForAccount(address string) (xdr.ScVal, error) {
	var scAddr xdr.ScAddress
	switch {
	case strkey.IsValidEd25519PublicKey(address):
		raw, err := strkey.Decode(strkey.VersionByteAccountID, address)
		if err != nil {
			return xdr.ScVal{}, fmt.Errorf("decode account address: %w", err)
		}
		var accountID xdr.AccountId
		var key xdr.Uint256
		copy(key[:], raw)
		accountID.Ed25519 = &key
		scAddr = xdr.ScAddress{Type: xdr.ScAddressTypeScAddressTypeAccount, AccountId: &accountID}
	case strkey.IsValidContract(address):
		raw, err := strkey.Decode(strkey.VersionByteContract, address)
		if err != nil {
			return xdr.ScVal{}, fmt.Errorf("decode contract address: %w", err)
		}
		var contractID xdr.ContractId
		copy(contractID[:], raw)
		scAddr = xdr.ScAddress{Type: xdr.ScAddressTypeScAddressTypeContract, ContractId: &contractID}
	default:
		return xdr.ScVal{}, fmt.Errorf("not a valid account or contract address: %q", address)
	}
	return xdr.ScVal{Type: xdr.ScValTypeScvAddress, Address: &scAddr}, nil
}

// scValForI128 encodes amount as an i128 ScVal, the wire shape SEP-41 token
// contracts use for amounts.
func scValForI128(amount *big.Int) xdr.ScVal {
	hi, lo := i128Parts(amount)
	parts := xdr.Int128Parts{Hi: hi, Lo: xdr.Uint64(lo)}
	return xdr.ScVal{Type: xdr.ScValTypeScvI128, I128: &parts}
}

func i128Parts(amount *big.Int) (xdr.Int64, uint64) {
	mask := new(big.Int).SetUint64(^uint64(0))
	lo := new(big.Int).And(amount, mask)
	hi := new(big.Int).Rsh(amount, 64)
	return xdr.Int64(hi.Int64()), lo.Uint64()
}
