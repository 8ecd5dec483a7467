// Copyright (c) 2024 The miniscript developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package descriptor

import (
	"crypto/sha256"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/txscript"

	"github.com/pkt-cash/miniscript/key"
	"github.com/pkt-cash/miniscript/miniscript"
	"github.com/pkt-cash/miniscript/mserr"
)

// ScriptPubKey renders the scriptPubKey this descriptor is paid to.
func (d Descriptor[K]) ScriptPubKey() ([]byte, error) {
	switch d.Kind {
	case Pk:
		return payToPubKey(d.Key)
	case Pkh:
		return payToPubKeyHash(d.Key)
	case Wpkh:
		return payToWitnessPubKeyHash(d.Key)
	case ShWpkh:
		redeem, err := payToWitnessPubKeyHash(d.Key)
		if err != nil {
			return nil, err
		}
		return payToScriptHashOf(redeem)
	case Bare:
		return miniscript.Encode(d.Inner)
	case Sh:
		redeem, err := miniscript.Encode(d.Inner)
		if err != nil {
			return nil, err
		}
		return payToScriptHashOf(redeem)
	case Wsh:
		witness, err := miniscript.Encode(d.Inner)
		if err != nil {
			return nil, err
		}
		return payToWitnessScriptHashOf(witness)
	case ShWsh:
		witness, err := miniscript.Encode(d.Inner)
		if err != nil {
			return nil, err
		}
		redeem, err := payToWitnessScriptHashOf(witness)
		if err != nil {
			return nil, err
		}
		return payToScriptHashOf(redeem)
	default:
		return nil, mserrUnknownKind(d.Kind)
	}
}

// Address derives the address this descriptor pays to, under params.
func (d Descriptor[K]) Address(params *chaincfg.Params) (btcutil.Address, error) {
	switch d.Kind {
	case Pk:
		pub, err := d.Key.ToPublicKey()
		if err != nil {
			return nil, err
		}
		return btcutil.NewAddressPubKey(pub[:], params)
	case Pkh:
		h, err := d.Key.Hash160()
		if err != nil {
			return nil, err
		}
		return btcutil.NewAddressPubKeyHash(h[:], params)
	case Wpkh:
		h, err := d.Key.Hash160()
		if err != nil {
			return nil, err
		}
		return btcutil.NewAddressWitnessPubKeyHash(h[:], params)
	case ShWpkh:
		redeem, err := payToWitnessPubKeyHash(d.Key)
		if err != nil {
			return nil, err
		}
		return btcutil.NewAddressScriptHash(redeem, params)
	case Sh:
		redeem, err := miniscript.Encode(d.Inner)
		if err != nil {
			return nil, err
		}
		return btcutil.NewAddressScriptHash(redeem, params)
	case Wsh:
		witness, err := miniscript.Encode(d.Inner)
		if err != nil {
			return nil, err
		}
		h := sha256.Sum256(witness)
		return btcutil.NewAddressWitnessScriptHash(h[:], params)
	case ShWsh:
		witness, err := miniscript.Encode(d.Inner)
		if err != nil {
			return nil, err
		}
		redeem, err := payToWitnessScriptHashOf(witness)
		if err != nil {
			return nil, err
		}
		return btcutil.NewAddressScriptHash(redeem, params)
	default:
		return nil, mserrUnknownKind(d.Kind)
	}
}

// UnsignedScriptSig is the scriptSig a spender can fill in before any
// signatures exist: empty for every envelope except the two P2SH-wrapped
// segwit forms, whose redeemScript push is known up front (only the
// witness changes once signatures arrive).
func (d Descriptor[K]) UnsignedScriptSig() ([]byte, error) {
	switch d.Kind {
	case ShWpkh:
		redeem, err := payToWitnessPubKeyHash(d.Key)
		if err != nil {
			return nil, err
		}
		return legacyScriptSig(nil, redeem), nil
	case ShWsh:
		witness, err := miniscript.Encode(d.Inner)
		if err != nil {
			return nil, err
		}
		redeem, err := payToWitnessScriptHashOf(witness)
		if err != nil {
			return nil, err
		}
		return legacyScriptSig(nil, redeem), nil
	default:
		return nil, nil
	}
}

// WitnessScript is the underlying script before any hashing is done: for
// the hash-commitment envelopes the redeem/witness script the spender must
// reveal, and for the direct envelopes the scriptPubKey program itself.
func (d Descriptor[K]) WitnessScript() ([]byte, error) {
	switch d.Kind {
	case Pk:
		return payToPubKey(d.Key)
	case Pkh, Wpkh:
		return payToPubKeyHash(d.Key)
	case ShWpkh:
		return payToWitnessPubKeyHash(d.Key)
	case Bare, Sh, Wsh, ShWsh:
		return miniscript.Encode(d.Inner)
	default:
		return nil, mserrUnknownKind(d.Kind)
	}
}

func payToPubKey(k key.Key) ([]byte, error) {
	pub, err := k.ToPublicKey()
	if err != nil {
		return nil, err
	}
	return txscript.NewScriptBuilder().
		AddData(pub[:]).
		AddOp(txscript.OP_CHECKSIG).
		Script()
}

func payToPubKeyHash(k key.Key) ([]byte, error) {
	h, err := k.Hash160()
	if err != nil {
		return nil, err
	}
	return txscript.NewScriptBuilder().
		AddOp(txscript.OP_DUP).
		AddOp(txscript.OP_HASH160).
		AddData(h[:]).
		AddOp(txscript.OP_EQUALVERIFY).
		AddOp(txscript.OP_CHECKSIG).
		Script()
}

func payToWitnessPubKeyHash(k key.Key) ([]byte, error) {
	h, err := k.Hash160()
	if err != nil {
		return nil, err
	}
	return txscript.NewScriptBuilder().
		AddOp(txscript.OP_0).
		AddData(h[:]).
		Script()
}

func payToScriptHashOf(redeem []byte) ([]byte, error) {
	h := btcutil.Hash160(redeem)
	return txscript.NewScriptBuilder().
		AddOp(txscript.OP_HASH160).
		AddData(h).
		AddOp(txscript.OP_EQUAL).
		Script()
}

func payToWitnessScriptHashOf(witness []byte) ([]byte, error) {
	h := sha256.Sum256(witness)
	return txscript.NewScriptBuilder().
		AddOp(txscript.OP_0).
		AddData(h[:]).
		Script()
}

func mserrUnknownKind(k Kind) error {
	return mserr.ErrBadDescriptor.Newf("unknown descriptor kind %v", k)
}
