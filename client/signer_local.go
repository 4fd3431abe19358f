package client

import (
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/binary"
	"fmt"

	"github.com/stellar/go/keypair"
	"github.com/tyler-smith/go-bip39"
)

// LocalSigner signs synchronously from a raw secret key held in process
// memory. Grounded on the svm signer's WithPrivateKey/WithKeygenFile
// options.
type LocalSigner struct {
	full *keypair.Full
}

// NewLocalSignerFromSeed builds a LocalSigner from a Stellar secret seed
// ("S..." strkey).
func NewLocalSignerFromSeed(secretSeed string) (*LocalSigner, error) {
	full, err := keypair.ParseFull(secretSeed)
	if err != nil {
		return nil, fmt.Errorf("parse secret seed: %w", err)
	}
	return &LocalSigner{full: full}, nil
}

// NewLocalSignerFromMnemonic derives a Stellar keypair from a SEP-5 BIP-39
// mnemonic at path m/44'/148'/<account>', the account-index derivation
// scheme SEP-5 defines for Stellar. Grounded on the svm signer's
// WithKeygenFile option, generalized from a raw keyfile to a recoverable
// mnemonic since that is the key-management idiom for this ledger family.
func NewLocalSignerFromMnemonic(mnemonic, passphrase string, account uint32) (*LocalSigner, error) {
	if !bip39.IsMnemonicValid(mnemonic) {
		return nil, fmt.Errorf("invalid SEP-5 mnemonic")
	}
	seed := bip39.NewSeed(mnemonic, passphrase)
	rawKey, err := derivePath(seed, []uint32{hardened(44), hardened(148), hardened(account)})
	if err != nil {
		return nil, fmt.Errorf("derive SEP-5 key: %w", err)
	}
	full, err := keypair.FromRawSeed(rawKey)
	if err != nil {
		return nil, fmt.Errorf("build keypair from derived seed: %w", err)
	}
	return &LocalSigner{full: full}, nil
}

func (s *LocalSigner) PublicKey(ctx context.Context) (string, error) {
	return s.full.Address(), nil
}

func (s *LocalSigner) Sign(ctx context.Context, hash [32]byte) ([]byte, error) {
	sig, err := s.full.Sign(hash[:])
	if err != nil {
		return nil, fmt.Errorf("sign hash: %w", err)
	}
	return sig, nil
}

const hardenedOffset = uint32(1) << 31

func hardened(index uint32) uint32 { return index + hardenedOffset }

// derivePath implements SLIP-0010's Ed25519 derivation, the only variant
// compatible with Ed25519 keys (every level must be hardened). No
// third-party Go SLIP-0010 implementation appears among this module's
// dependencies, and the algorithm is a fixed, short HMAC-SHA512 chain, so
// it is implemented directly against crypto/hmac and crypto/sha512 rather
// than adding an unvetted dependency for roughly thirty lines of code.
func derivePath(seed []byte, path []uint32) ([32]byte, error) {
	key, chainCode := masterKeyEd25519(seed)
	for _, index := range path {
		if index < hardenedOffset {
			return [32]byte{}, fmt.Errorf("ed25519 derivation requires every path level to be hardened")
		}
		key, chainCode = ckdPrivEd25519(key, chainCode, index)
	}
	return key, nil
}

func masterKeyEd25519(seed []byte) ([32]byte, [32]byte) {
	mac := hmac.New(sha512.New, []byte("ed25519 seed"))
	mac.Write(seed)
	sum := mac.Sum(nil)
	var key, chainCode [32]byte
	copy(key[:], sum[:32])
	copy(chainCode[:], sum[32:])
	return key, chainCode
}

func ckdPrivEd25519(key, chainCode [32]byte, index uint32) ([32]byte, [32]byte) {
	var data [37]byte
	data[0] = 0x00
	copy(data[1:33], key[:])
	binary.BigEndian.PutUint32(data[33:], index)

	mac := hmac.New(sha512.New, chainCode[:])
	mac.Write(data[:])
	sum := mac.Sum(nil)
	var childKey, childChainCode [32]byte
	copy(childKey[:], sum[:32])
	copy(childChainCode[:], sum[32:])
	return childKey, childChainCode
}

var _ Signer = (*LocalSigner)(nil)
