package client

import (
	"context"
	"testing"

	"github.com/stellar/go/keypair"
	"github.com/tyler-smith/go-bip39"
)

func TestLocalSignerFromSeedSignsAndReportsPublicKey(t *testing.T) {
	kp, err := keypair.Random()
	if err != nil {
		t.Fatalf("generate keypair: %v", err)
	}
	signer, err := NewLocalSignerFromSeed(kp.Seed())
	if err != nil {
		t.Fatalf("NewLocalSignerFromSeed: %v", err)
	}

	pub, err := signer.PublicKey(context.Background())
	if err != nil {
		t.Fatalf("PublicKey: %v", err)
	}
	if pub != kp.Address() {
		t.Fatalf("expected %s, got %s", kp.Address(), pub)
	}

	sig, err := signer.Sign(context.Background(), [32]byte{1, 2, 3})
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	if len(sig) == 0 {
		t.Fatal("expected a non-empty signature")
	}
}

func TestLocalSignerFromSeedRejectsInvalidSeed(t *testing.T) {
	if _, err := NewLocalSignerFromSeed("not-a-seed"); err == nil {
		t.Fatal("expected an error for an invalid secret seed")
	}
}

func TestLocalSignerFromMnemonicIsDeterministic(t *testing.T) {
	entropy, err := bip39.NewEntropy(128)
	if err != nil {
		t.Fatalf("NewEntropy: %v", err)
	}
	mnemonic, err := bip39.NewMnemonic(entropy)
	if err != nil {
		t.Fatalf("NewMnemonic: %v", err)
	}

	first, err := NewLocalSignerFromMnemonic(mnemonic, "", 0)
	if err != nil {
		t.Fatalf("NewLocalSignerFromMnemonic: %v", err)
	}
	second, err := NewLocalSignerFromMnemonic(mnemonic, "", 0)
	if err != nil {
		t.Fatalf("NewLocalSignerFromMnemonic: %v", err)
	}

	firstPub, _ := first.PublicKey(context.Background())
	secondPub, _ := second.PublicKey(context.Background())
	if firstPub != secondPub {
		t.Fatalf("expected derivation to be deterministic, got %s and %s", firstPub, secondPub)
	}
}

func TestLocalSignerFromMnemonicDiffersByAccountIndex(t *testing.T) {
	entropy, err := bip39.NewEntropy(128)
	if err != nil {
		t.Fatalf("NewEntropy: %v", err)
	}
	mnemonic, err := bip39.NewMnemonic(entropy)
	if err != nil {
		t.Fatalf("NewMnemonic: %v", err)
	}

	account0, err := NewLocalSignerFromMnemonic(mnemonic, "", 0)
	if err != nil {
		t.Fatalf("NewLocalSignerFromMnemonic: %v", err)
	}
	account1, err := NewLocalSignerFromMnemonic(mnemonic, "", 1)
	if err != nil {
		t.Fatalf("NewLocalSignerFromMnemonic: %v", err)
	}

	pub0, _ := account0.PublicKey(context.Background())
	pub1, _ := account1.PublicKey(context.Background())
	if pub0 == pub1 {
		t.Fatal("expected different account indices to derive different keys")
	}
}

func TestLocalSignerFromMnemonicRejectsInvalidMnemonic(t *testing.T) {
	if _, err := NewLocalSignerFromMnemonic("not a valid mnemonic phrase", "", 0); err == nil {
		t.Fatal("expected an error for an invalid mnemonic")
	}
}
