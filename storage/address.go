// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package storage

import (
	"filippo.io/edwards25519"
	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/utils/hashing"

	"github.com/ava-labs/hypercounter/codec"
	"github.com/ava-labs/hypercounter/consts"
)

// CounterAddressTypeID marks addresses derived for counter records. Principal
// addresses use the auth type IDs, which are all below it.
const CounterAddressTypeID uint8 = 0x80

var addressDomain = []byte("hypercounter/counter-address")

// CreateCounterAddress derives the record address for [tag] using a known
// [bump]. A derivation that lands on the ed25519 curve is rejected: some key
// could sign for such an address.
func CreateCounterAddress(tag []byte, bump uint8) (codec.Address, error) {
	if len(tag) > consts.MaxTagLen {
		return codec.EmptyAddress, ErrTagTooLarge
	}
	preimage := make([]byte, 0, len(tag)+consts.Uint8Len+len(addressDomain))
	preimage = append(preimage, tag...)
	preimage = append(preimage, bump)
	preimage = append(preimage, addressDomain...)
	digest := ids.ID(hashing.ComputeHash256Array(preimage))

	if onCurve(digest[:]) {
		return codec.EmptyAddress, ErrBumpOnCurve
	}
	return codec.CreateAddress(CounterAddressTypeID, digest), nil
}

// FindCounterAddress searches bumps from 255 downward and returns the first
// address off the curve together with the bump that produced it. The result
// depends only on [tag].
func FindCounterAddress(tag []byte) (codec.Address, uint8, error) {
	for bump := int(consts.MaxUint8); bump >= 0; bump-- {
		addr, err := CreateCounterAddress(tag, uint8(bump))
		switch err {
		case nil:
			return addr, uint8(bump), nil
		case ErrBumpOnCurve:
			continue
		default:
			return codec.EmptyAddress, 0, err
		}
	}
	return codec.EmptyAddress, 0, ErrNoViableBump
}

// VerifyCounterAddress checks that [bump] re-derives [addr] from [tag].
func VerifyCounterAddress(tag []byte, bump uint8, addr codec.Address) error {
	derived, err := CreateCounterAddress(tag, bump)
	if err != nil {
		return err
	}
	if derived != addr {
		return ErrAddressMismatch
	}
	return nil
}

func onCurve(b []byte) bool {
	_, err := new(edwards25519.Point).SetBytes(b)
	return err == nil
}
